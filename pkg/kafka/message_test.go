package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecordBatch(t *testing.T) {
	msg := &IncomingMessage{
		Value: []byte(`{
			"type": "records.push",
			"tenant_id": "tenant-1",
			"dataset_id": "ds-1",
			"records": [
				{"name": "Acme Corp", "units": "100"},
				{"name": "Globex"}
			]
		}`),
	}

	require.NoError(t, msg.ParseRecordBatch())
	require.NotNil(t, msg.RecordBatch)
	assert.Equal(t, "records.push", msg.RecordBatch.Type)
	assert.Equal(t, "tenant-1", msg.RecordBatch.TenantID)
	assert.Equal(t, "ds-1", msg.RecordBatch.DatasetID)
	require.Len(t, msg.RecordBatch.Records, 2)
	assert.Equal(t, "Acme Corp", msg.RecordBatch.Records[0]["name"])
}

func TestParseRecordBatch_Malformed(t *testing.T) {
	msg := &IncomingMessage{Value: []byte(`{not json`)}

	assert.Error(t, msg.ParseRecordBatch())
	assert.Nil(t, msg.RecordBatch)
}

func TestGetTenantID(t *testing.T) {
	t.Run("prefers batch body", func(t *testing.T) {
		msg := &IncomingMessage{
			Headers:     map[string]string{"tenant_id": "header-tenant"},
			RecordBatch: &RecordBatchMessage{TenantID: "body-tenant"},
		}
		assert.Equal(t, "body-tenant", msg.GetTenantID())
	})

	t.Run("falls back to header", func(t *testing.T) {
		msg := &IncomingMessage{
			Headers:     map[string]string{"tenant_id": "header-tenant"},
			RecordBatch: &RecordBatchMessage{},
		}
		assert.Equal(t, "header-tenant", msg.GetTenantID())
	})

	t.Run("empty when unparsed and no header", func(t *testing.T) {
		msg := &IncomingMessage{Headers: map[string]string{}}
		assert.Empty(t, msg.GetTenantID())
	})
}

func TestGetDatasetID(t *testing.T) {
	msg := &IncomingMessage{RecordBatch: &RecordBatchMessage{DatasetID: "ds-9"}}
	assert.Equal(t, "ds-9", msg.GetDatasetID())

	unparsed := &IncomingMessage{}
	assert.Empty(t, unparsed.GetDatasetID())
}

func TestIsRecordBatch(t *testing.T) {
	t.Run("by header", func(t *testing.T) {
		msg := &IncomingMessage{
			Headers: map[string]string{"type": "records.push"},
			Value:   []byte(`{}`),
		}
		assert.True(t, msg.IsRecordBatch())
	})

	t.Run("by body type", func(t *testing.T) {
		msg := &IncomingMessage{
			Headers: map[string]string{},
			Value:   []byte(`{"type": "records.push"}`),
		}
		assert.True(t, msg.IsRecordBatch())
	})

	t.Run("other event type", func(t *testing.T) {
		msg := &IncomingMessage{
			Headers: map[string]string{"type": "records.delete"},
			Value:   []byte(`{"type": "records.delete"}`),
		}
		assert.False(t, msg.IsRecordBatch())
	})

	t.Run("malformed body", func(t *testing.T) {
		msg := &IncomingMessage{
			Headers: map[string]string{},
			Value:   []byte(`not json`),
		}
		assert.False(t, msg.IsRecordBatch())
	})
}
