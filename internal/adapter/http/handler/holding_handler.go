package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/wealthengine/internal/adapter/http/dto"
	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/engine"
	"github.com/iho/wealthengine/internal/usecase"
)

// HoldingService defines the behavior needed by HoldingHandler.
type HoldingService interface {
	ApplyLot(ctx context.Context, input usecase.ApplyLotInput) (*domain.Holding, error)
	SetPrice(ctx context.Context, input usecase.SetPriceInput) (*domain.Holding, error)
	Reconcile(ctx context.Context, userID string) ([]engine.ReconciliationReport, error)
	FixValue(ctx context.Context, userID, holdingID string) (*domain.Holding, engine.ReconciliationReport, error)
	History(ctx context.Context, userID, holdingID string, limit int) ([]*domain.AuditLog, error)
}

// HoldingHandler handles holding mutation and reconciliation requests.
type HoldingHandler struct {
	holdingUC HoldingService
	now       func() time.Time
}

// NewHoldingHandler creates a new HoldingHandler.
func NewHoldingHandler(holdingUC HoldingService) *HoldingHandler {
	return &HoldingHandler{
		holdingUC: holdingUC,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ApplyLot records a purchase lot against a holding.
func (h *HoldingHandler) ApplyLot(w http.ResponseWriter, r *http.Request) {
	var req dto.ApplyLotRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	holding, err := h.holdingUC.ApplyLot(r.Context(),
		req.ToUseCaseInput(userIDParam(r), chi.URLParam(r, "holdingID"), h.now()))
	if err != nil {
		writeDomainError(w, "failed to apply lot", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HoldingFromDomain(holding))
}

// SetPrice updates a holding's current unit price.
func (h *HoldingHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	var req dto.SetPriceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	holding, err := h.holdingUC.SetPrice(r.Context(),
		req.ToUseCaseInput(userIDParam(r), chi.URLParam(r, "holdingID"), h.now()))
	if err != nil {
		writeDomainError(w, "failed to set price", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HoldingFromDomain(holding))
}

// Reconcile reports value drift for every holding of the user.
func (h *HoldingHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	reports, err := h.holdingUC.Reconcile(r.Context(), userIDParam(r))
	if err != nil {
		writeDomainError(w, "failed to reconcile holdings", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationsFromEngine(reports))
}

// FixValue rewrites a holding's stored value from quantity and price.
func (h *HoldingHandler) FixValue(w http.ResponseWriter, r *http.Request) {
	holding, report, err := h.holdingUC.FixValue(r.Context(), userIDParam(r), chi.URLParam(r, "holdingID"))
	if err != nil {
		writeDomainError(w, "failed to fix holding value", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FixValueResponse{
		Holding: dto.HoldingFromDomain(holding),
		Report:  dto.ReconciliationFromEngine(report),
	})
}

// History lists audited changes to a holding, newest first.
func (h *HoldingHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", usecase.DefaultAuditLimit)

	logs, err := h.holdingUC.History(r.Context(), userIDParam(r), chi.URLParam(r, "holdingID"), limit)
	if err != nil {
		writeDomainError(w, "failed to list holding history", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}
