package handler

import (
	"context"
	"net/http"

	"github.com/iho/wealthengine/internal/adapter/http/dto"
	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/usecase"
)

// RateService defines the behavior needed by RateHandler.
type RateService interface {
	Latest(ctx context.Context, userID string) (*domain.ExchangeRateSet, error)
	Save(ctx context.Context, input usecase.SaveRatesInput) (*domain.ExchangeRateSet, error)
}

// RateHandler handles exchange rate requests.
type RateHandler struct {
	rateUC RateService
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rateUC RateService) *RateHandler {
	return &RateHandler{rateUC: rateUC}
}

// Get returns the user's current rate snapshot.
func (h *RateHandler) Get(w http.ResponseWriter, r *http.Request) {
	set, err := h.rateUC.Latest(r.Context(), userIDParam(r))
	if err != nil {
		writeDomainError(w, "failed to get rates", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RatesFromDomain(set))
}

// Save replaces the user's rate snapshot.
func (h *RateHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveRatesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	set, err := h.rateUC.Save(r.Context(), req.ToUseCaseInput(userIDParam(r)))
	if err != nil {
		writeDomainError(w, "failed to save rates", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RatesFromDomain(set))
}
