package handler

import (
	"context"
	"net/http"

	"github.com/iho/wealthengine/internal/adapter/http/dto"
	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/engine"
	"github.com/iho/wealthengine/internal/usecase"
)

// PortfolioService defines the behavior needed by PortfolioHandler.
type PortfolioService interface {
	Snapshot(ctx context.Context, userID string, display domain.Currency) (*engine.PortfolioSnapshot, error)
	Drift(ctx context.Context, userID string, display domain.Currency) (*usecase.DriftReport, error)
}

// PortfolioHandler handles portfolio valuation requests.
type PortfolioHandler struct {
	portfolioUC PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioUC PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioUC: portfolioUC}
}

// Snapshot values the user's portfolio in the requested display currency.
func (h *PortfolioHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	display, err := displayCurrency(r)
	if err != nil {
		writeDomainError(w, "invalid display currency", err)
		return
	}

	snapshot, err := h.portfolioUC.Snapshot(r.Context(), userIDParam(r), display)
	if err != nil {
		writeDomainError(w, "failed to value portfolio", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SnapshotFromEngine(snapshot))
}

// Drift compares current allocation with targets and proposes rebalancing trades.
func (h *PortfolioHandler) Drift(w http.ResponseWriter, r *http.Request) {
	display, err := displayCurrency(r)
	if err != nil {
		writeDomainError(w, "invalid display currency", err)
		return
	}

	report, err := h.portfolioUC.Drift(r.Context(), userIDParam(r), display)
	if err != nil {
		writeDomainError(w, "failed to compute allocation drift", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DriftFromUseCase(report))
}
