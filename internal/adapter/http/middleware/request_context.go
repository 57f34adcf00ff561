package middleware

import (
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/iho/wealthengine/internal/domain"
)

// ActorHeader names the caller on whose behalf a request runs.
const ActorHeader = "X-Actor"

// RequestContext copies the chi request ID and the X-Actor header into the
// domain context consumed by the audit trail.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
			ctx = domain.WithRequestID(ctx, reqID)
		}
		if actor := strings.TrimSpace(r.Header.Get(ActorHeader)); actor != "" {
			ctx = domain.WithActor(ctx, actor)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
