// Package events handles event emission for run and dataset lifecycle changes
package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Emitter handles event emission for Clover
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitRunCompleted emits a run completed event
func (e *Emitter) EmitRunCompleted(ctx context.Context, run *models.ReconciliationRun) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRunCompleted")
	defer span.End()

	event := &kafka.RunEvent{
		EventType:          string(EventTypeRunCompleted),
		TenantID:           run.TenantID,
		RunID:              run.ID,
		RuleSetID:          run.RuleSetID,
		PrimaryDatasetID:   run.PrimaryDatasetID,
		SecondaryDatasetID: run.SecondaryDatasetID,
		TotalResults:       run.TotalResults,
		UltraStrictCount:   run.UltraStrictCount,
		StrictCount:        run.StrictCount,
		PossibleCount:      run.PossibleCount,
		NoMatchCount:       run.NoMatchCount,
	}

	if err := e.producer.PublishRunEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit run.completed event")
		return err
	}

	return nil
}

// EmitRunFailed emits a run failed event
func (e *Emitter) EmitRunFailed(ctx context.Context, run *models.ReconciliationRun, runErr string) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRunFailed")
	defer span.End()

	event := &kafka.RunEvent{
		EventType:          string(EventTypeRunFailed),
		TenantID:           run.TenantID,
		RunID:              run.ID,
		RuleSetID:          run.RuleSetID,
		PrimaryDatasetID:   run.PrimaryDatasetID,
		SecondaryDatasetID: run.SecondaryDatasetID,
		Error:              runErr,
	}

	if err := e.producer.PublishRunEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit run.failed event")
		return err
	}

	return nil
}

// EmitDatasetIngested emits a dataset ingested event
func (e *Emitter) EmitDatasetIngested(ctx context.Context, dataset *models.Dataset) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitDatasetIngested")
	defer span.End()

	event := &kafka.DatasetEvent{
		EventType:   string(EventTypeDatasetIngested),
		TenantID:    dataset.TenantID,
		DatasetID:   dataset.ID,
		Name:        dataset.Name,
		RecordCount: dataset.RecordCount,
	}

	if err := e.producer.PublishDatasetEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit dataset.ingested event")
		return err
	}

	return nil
}
