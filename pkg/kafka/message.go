package kafka

import (
	"encoding/json"
	"time"

	"github.com/Ramsey-B/clover/pkg/models"
)

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Parsed content
	RecordBatch *RecordBatchMessage
}

// RecordBatchMessage carries dataset records pushed by an upstream feed.
// Each entry in Records becomes one dataset record, appended in order.
type RecordBatchMessage struct {
	Type      string              `json:"type"` // "records.push"
	TenantID  string              `json:"tenant_id"`
	DatasetID string              `json:"dataset_id"`
	Records   []models.Attributes `json:"records"`
	Timestamp time.Time           `json:"timestamp"`
}

// ParseRecordBatch parses the message value as a record batch
func (m *IncomingMessage) ParseRecordBatch() error {
	var batch RecordBatchMessage
	if err := json.Unmarshal(m.Value, &batch); err != nil {
		return err
	}
	m.RecordBatch = &batch
	return nil
}

// GetTenantID returns the tenant ID from the parsed batch, falling back to
// the tenant_id header.
func (m *IncomingMessage) GetTenantID() string {
	if m.RecordBatch != nil && m.RecordBatch.TenantID != "" {
		return m.RecordBatch.TenantID
	}
	return m.Headers["tenant_id"]
}

// GetDatasetID returns the dataset the batch targets
func (m *IncomingMessage) GetDatasetID() string {
	if m.RecordBatch != nil {
		return m.RecordBatch.DatasetID
	}
	return ""
}

// IsRecordBatch checks whether the message looks like a records.push event
func (m *IncomingMessage) IsRecordBatch() bool {
	if msgType := m.Headers["type"]; msgType == "records.push" {
		return true
	}

	var batch RecordBatchMessage
	if err := json.Unmarshal(m.Value, &batch); err == nil {
		return batch.Type == "records.push"
	}

	return false
}
