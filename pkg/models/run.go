package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a reconciliation run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// MatchParams are the tunable thresholds of the tiered matching engine.
// WordFloor is the per-token similarity a word pair must reach to count as a
// strong match in pass 1 (0-1); the remaining values are score cutoffs on the
// 0-100 scale.
type MatchParams struct {
	WordFloor      float64 `json:"word_floor" validate:"gte=0,lte=1"`
	UltraCutoff    float64 `json:"ultra_cutoff" validate:"gte=0,lte=100"`
	VerifiedCutoff float64 `json:"verified_cutoff" validate:"gte=0,lte=100"`
	StrictFloor    float64 `json:"strict_floor" validate:"gte=0,lte=100"`
	StrictCeiling  float64 `json:"strict_ceiling" validate:"gte=0,lte=100"`
}

func (p *MatchParams) Scan(src any) error {
	if src == nil {
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("MatchParams.Scan: expected []byte, got %T", src)
	}
	return json.Unmarshal(b, p)
}

func (p MatchParams) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// ReconciliationRun is one execution of the engine over a dataset pair
type ReconciliationRun struct {
	ID                 string      `json:"id" db:"id"`
	TenantID           string      `json:"tenant_id" db:"tenant_id"`
	PrimaryDatasetID   string      `json:"primary_dataset_id" db:"primary_dataset_id"`
	SecondaryDatasetID string      `json:"secondary_dataset_id" db:"secondary_dataset_id"`
	RuleSetID          string      `json:"rule_set_id" db:"rule_set_id"`
	Params             MatchParams `json:"params" db:"params"`
	Status             RunStatus   `json:"status" db:"status"`
	TotalResults       int         `json:"total_results" db:"total_results"`
	UltraStrictCount   int         `json:"ultra_strict_count" db:"ultra_strict_count"`
	StrictCount        int         `json:"strict_count" db:"strict_count"`
	PossibleCount      int         `json:"possible_count" db:"possible_count"`
	NoMatchCount       int         `json:"no_match_count" db:"no_match_count"`
	Error              *string     `json:"error,omitempty" db:"error"`
	StartedAt          *time.Time  `json:"started_at,omitempty" db:"started_at"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}

// CreateRunRequest is the request to execute a reconciliation run
type CreateRunRequest struct {
	PrimaryDatasetID   string       `json:"primary_dataset_id" validate:"required"`
	SecondaryDatasetID string       `json:"secondary_dataset_id" validate:"required"`
	RuleSetID          string       `json:"rule_set_id" validate:"required"`
	Params             *MatchParams `json:"params,omitempty"`
}
