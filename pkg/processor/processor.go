// Package processor handles incoming record batches and appends them to
// datasets. This is the ingestion layer; reconciliation runs read the
// persisted records later.
package processor

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	datasetrepo "github.com/Ramsey-B/clover/internal/repositories/dataset"
	recordrepo "github.com/Ramsey-B/clover/internal/repositories/record"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Processor handles record batch messages for dataset ingestion
type Processor struct {
	logger      ectologger.Logger
	datasetRepo *datasetrepo.Repository
	recordRepo  *recordrepo.Repository
	emitter     *events.Emitter
}

// NewProcessor creates a new message processor for ingestion
func NewProcessor(
	logger ectologger.Logger,
	datasetRepo *datasetrepo.Repository,
	recordRepo *recordrepo.Repository,
	emitter *events.Emitter,
) *Processor {
	return &Processor{
		logger:      logger,
		datasetRepo: datasetRepo,
		recordRepo:  recordRepo,
		emitter:     emitter,
	}
}

// ProcessMessage handles an incoming Kafka message
func (p *Processor) ProcessMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.ProcessMessage")
	defer span.End()

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"key":    msg.Key,
		"topic":  msg.Topic,
		"offset": msg.Offset,
	})

	if msg.RecordBatch == nil {
		if err := msg.ParseRecordBatch(); err != nil {
			log.WithError(err).Error("Failed to parse record batch")
			return err
		}
	}

	if !msg.IsRecordBatch() {
		log.Warn("Unknown message type, skipping")
		return nil
	}

	tenantID := msg.GetTenantID()
	if tenantID == "" {
		log.Error("Missing tenant_id in message")
		return nil // Skip message, don't retry
	}

	datasetID := msg.GetDatasetID()
	if datasetID == "" {
		log.WithFields(map[string]any{"tenant_id": tenantID}).Error("Missing dataset_id in message")
		return nil
	}

	return p.processBatch(ctx, tenantID, datasetID, msg.RecordBatch, log)
}

func (p *Processor) processBatch(ctx context.Context, tenantID, datasetID string, batch *kafka.RecordBatchMessage, log ectologger.Logger) error {
	ctx, span := tracing.StartSpan(ctx, "processor.processBatch")
	defer span.End()

	log = log.WithFields(map[string]any{
		"tenant_id":  tenantID,
		"dataset_id": datasetID,
		"batch_size": len(batch.Records),
	})

	if len(batch.Records) == 0 {
		log.Debug("Empty record batch, skipping")
		return nil
	}

	dataset, err := p.datasetRepo.Get(ctx, tenantID, datasetID)
	if err != nil {
		log.WithError(err).Error("Failed to load target dataset")
		return err
	}

	nextIndex, err := p.recordRepo.NextRowIndex(ctx, tenantID, datasetID)
	if err != nil {
		log.WithError(err).Error("Failed to get next row index")
		return err
	}

	now := time.Now().UTC()
	records := make([]models.Record, len(batch.Records))
	for i, attributes := range batch.Records {
		records[i] = models.Record{
			ID:         uuid.New().String(),
			DatasetID:  datasetID,
			TenantID:   tenantID,
			RowIndex:   nextIndex + i,
			Attributes: attributes,
			CreatedAt:  now,
		}
	}

	if err := p.recordRepo.CreateBatch(ctx, records); err != nil {
		log.WithError(err).Error("Failed to insert record batch")
		return err
	}

	total := nextIndex + len(records)
	if err := p.datasetRepo.SetRecordCount(ctx, tenantID, datasetID, total); err != nil {
		log.WithError(err).Error("Failed to update dataset record count")
		return err
	}

	log.WithFields(map[string]any{"record_count": total}).Info("Record batch ingested")

	if p.emitter != nil {
		dataset.RecordCount = total
		if err := p.emitter.EmitDatasetIngested(ctx, dataset); err != nil {
			// Records landed; an unemitted event is not worth a redelivery
			log.WithError(err).Warn("Failed to emit dataset.ingested event")
		}
	}

	return nil
}
