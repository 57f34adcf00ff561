package handler

import (
	"context"
	"net/http"

	"github.com/iho/wealthengine/internal/adapter/http/dto"
	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/usecase"
)

// PerformanceService defines the behavior needed by PerformanceHandler.
type PerformanceService interface {
	Rollup(ctx context.Context, userID string) ([]domain.YearlyRecord, error)
	Series(ctx context.Context, userID string) (*usecase.PerformanceSeries, error)
	RebuildYearly(ctx context.Context, userID string) ([]domain.YearlyRecord, error)
	RecordMonth(ctx context.Context, snapshot *domain.MonthlySnapshot) error
	SaveYearly(ctx context.Context, record *domain.YearlyRecord) error
}

// PerformanceHandler handles yearly performance requests.
type PerformanceHandler struct {
	performanceUC PerformanceService
}

// NewPerformanceHandler creates a new PerformanceHandler.
func NewPerformanceHandler(performanceUC PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{performanceUC: performanceUC}
}

// Rollup aggregates monthly snapshots into yearly records without storing them.
func (h *PerformanceHandler) Rollup(w http.ResponseWriter, r *http.Request) {
	records, err := h.performanceUC.Rollup(r.Context(), userIDParam(r))
	if err != nil {
		writeDomainError(w, "failed to roll up monthly snapshots", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.YearlyRecordsFromDomain(records))
}

// Series returns the merged yearly series with derived metrics and a summary.
func (h *PerformanceHandler) Series(w http.ResponseWriter, r *http.Request) {
	series, err := h.performanceUC.Series(r.Context(), userIDParam(r))
	if err != nil {
		writeDomainError(w, "failed to build performance series", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SeriesFromUseCase(series))
}

// Rebuild persists yearly records derived from monthly snapshots.
func (h *PerformanceHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	records, err := h.performanceUC.RebuildYearly(r.Context(), userIDParam(r))
	if err != nil {
		writeDomainError(w, "failed to rebuild yearly records", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.YearlyRecordsFromDomain(records))
}

// RecordMonth stores one monthly snapshot.
func (h *PerformanceHandler) RecordMonth(w http.ResponseWriter, r *http.Request) {
	var req dto.MonthlySnapshotRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	snapshot := req.ToDomain(userIDParam(r))
	if err := h.performanceUC.RecordMonth(r.Context(), snapshot); err != nil {
		writeDomainError(w, "failed to record monthly snapshot", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MonthlySnapshotFromDomain(snapshot))
}

// SaveYearly stores a user-entered yearly record.
func (h *PerformanceHandler) SaveYearly(w http.ResponseWriter, r *http.Request) {
	var req dto.YearlyRecordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	record := req.ToDomain(userIDParam(r))
	if err := h.performanceUC.SaveYearly(r.Context(), record); err != nil {
		writeDomainError(w, "failed to save yearly record", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.YearlyRecordFromDomain(*record))
}
