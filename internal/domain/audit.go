package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records a state-changing engine operation invoked by a caller.
type AuditLog struct {
	ID           string
	UserID       string // Owner of the data
	Actor        string // Who triggered the action
	Action       AuditAction
	ResourceType string // holding, rates, yearly_record
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       AuditStatus
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionLotApply      AuditAction = "holding.lot_apply"
	AuditActionPriceSet      AuditAction = "holding.price_set"
	AuditActionValueFix      AuditAction = "holding.value_fix"
	AuditActionRatesSave     AuditAction = "rates.save"
	AuditActionYearlyRebuild AuditAction = "yearly.rebuild"
	AuditActionYearlySave    AuditAction = "yearly.save"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	UserID       string
	Action       AuditAction
	ResourceType string
	ResourceID   string
	Limit        int
}
