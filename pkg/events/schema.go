package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of event
type EventType string

const (
	// Run events
	EventTypeRunCompleted EventType = "run.completed"
	EventTypeRunFailed    EventType = "run.failed"

	// Dataset events
	EventTypeDatasetIngested EventType = "dataset.ingested"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	TenantID      string    `json:"tenant_id"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// RunCompletedEvent is emitted when a reconciliation run finishes
type RunCompletedEvent struct {
	BaseEvent
	RunID              string `json:"run_id"`
	RuleSetID          string `json:"rule_set_id"`
	PrimaryDatasetID   string `json:"primary_dataset_id"`
	SecondaryDatasetID string `json:"secondary_dataset_id"`
	TotalResults       int    `json:"total_results"`
	UltraStrictCount   int    `json:"ultra_strict_count"`
	StrictCount        int    `json:"strict_count"`
	PossibleCount      int    `json:"possible_count"`
	NoMatchCount       int    `json:"no_match_count"`
}

// RunFailedEvent is emitted when a reconciliation run errors out
type RunFailedEvent struct {
	BaseEvent
	RunID string `json:"run_id"`
	Error string `json:"error"`
}

// DatasetIngestedEvent is emitted after a batch of records lands in a dataset
type DatasetIngestedEvent struct {
	BaseEvent
	DatasetID   string `json:"dataset_id"`
	Name        string `json:"name"`
	RecordCount int    `json:"record_count"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType EventType, tenantID string) BaseEvent {
	return BaseEvent{
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		TenantID:      tenantID,
		Timestamp:     time.Now().UTC(),
		CorrelationID: uuid.New().String(),
	}
}
