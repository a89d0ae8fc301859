// Package reconcile orchestrates reconciliation runs: it loads the dataset
// pair and rule set, executes the matching engine, and persists the
// classified results.
package reconcile

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	datasetrepo "github.com/Ramsey-B/clover/internal/repositories/dataset"
	resultrepo "github.com/Ramsey-B/clover/internal/repositories/matchresult"
	recordrepo "github.com/Ramsey-B/clover/internal/repositories/record"
	rulesetrepo "github.com/Ramsey-B/clover/internal/repositories/ruleset"
	runrepo "github.com/Ramsey-B/clover/internal/repositories/run"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/report"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Service executes reconciliation runs
type Service struct {
	logger      ectologger.Logger
	datasetRepo *datasetrepo.Repository
	recordRepo  *recordrepo.Repository
	ruleSetRepo *rulesetrepo.Repository
	runRepo     *runrepo.Repository
	resultRepo  *resultrepo.Repository
	engine      *matching.Engine
	emitter     *events.Emitter
}

// NewService creates a new reconciliation service
func NewService(
	logger ectologger.Logger,
	datasetRepo *datasetrepo.Repository,
	recordRepo *recordrepo.Repository,
	ruleSetRepo *rulesetrepo.Repository,
	runRepo *runrepo.Repository,
	resultRepo *resultrepo.Repository,
	emitter *events.Emitter,
) *Service {
	return &Service{
		logger:      logger,
		datasetRepo: datasetRepo,
		recordRepo:  recordRepo,
		ruleSetRepo: ruleSetRepo,
		runRepo:     runRepo,
		resultRepo:  resultRepo,
		engine:      matching.NewEngine(logger),
		emitter:     emitter,
	}
}

// Execute runs the engine for a pending run and persists its results. The run
// transitions pending -> running -> completed, or -> failed with the error
// recorded on the run.
func (s *Service) Execute(ctx context.Context, tenantID string, runID string) (*models.ReconciliationRun, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Service.Execute")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id": tenantID,
		"run_id":    runID,
	})

	run, err := s.runRepo.Get(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}

	ruleSet, err := s.ruleSetRepo.Get(ctx, tenantID, run.RuleSetID)
	if err != nil {
		return nil, err
	}

	primary, err := s.recordRepo.ListAllByDataset(ctx, tenantID, run.PrimaryDatasetID)
	if err != nil {
		return nil, err
	}

	secondary, err := s.recordRepo.ListAllByDataset(ctx, tenantID, run.SecondaryDatasetID)
	if err != nil {
		return nil, err
	}

	if err := s.runRepo.MarkRunning(ctx, tenantID, runID); err != nil {
		return nil, err
	}

	log.WithFields(map[string]any{
		"primary_count":   len(primary),
		"secondary_count": len(secondary),
	}).Info("Executing reconciliation run")

	matches, err := s.engine.Run(ctx, primary, secondary, ruleSet.Rules, matching.FromModel(run.Params))
	if err != nil {
		return nil, s.failRun(ctx, run, err, log)
	}

	results := buildResults(run, matches)
	if err := s.resultRepo.CreateBatch(ctx, results); err != nil {
		return nil, s.failRun(ctx, run, err, log)
	}

	summary := report.FromMatches(matches)
	counts := runrepo.TierCounts{
		Total:       summary.Total,
		UltraStrict: summary.UltraStrict,
		Strict:      summary.Strict,
		Possible:    summary.Possible,
		NoMatch:     summary.NoMatch,
	}
	if err := s.runRepo.Complete(ctx, tenantID, runID, counts); err != nil {
		return nil, err
	}

	completed, err := s.runRepo.Get(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}

	log.WithFields(map[string]any{
		"total_results":      summary.Total,
		"ultra_strict_count": summary.UltraStrict,
		"strict_count":       summary.Strict,
		"possible_count":     summary.Possible,
		"no_match_count":     summary.NoMatch,
	}).Info("Reconciliation run completed")

	if s.emitter != nil {
		if err := s.emitter.EmitRunCompleted(ctx, completed); err != nil {
			log.WithError(err).Warn("Failed to emit run.completed event")
		}
	}

	return completed, nil
}

// failRun records the failure on the run and returns the original error
func (s *Service) failRun(ctx context.Context, run *models.ReconciliationRun, runErr error, log ectologger.Logger) error {
	if err := s.runRepo.Fail(ctx, run.TenantID, run.ID, runErr.Error()); err != nil {
		log.WithError(err).Error("Failed to mark run as failed")
	}

	if s.emitter != nil {
		if err := s.emitter.EmitRunFailed(ctx, run, runErr.Error()); err != nil {
			log.WithError(err).Warn("Failed to emit run.failed event")
		}
	}

	return runErr
}

// buildResults materializes engine matches as persisted rows. Position records
// the final classification order so reads and exports reproduce it without
// re-sorting.
func buildResults(run *models.ReconciliationRun, matches []matching.Match) []models.MatchResult {
	now := time.Now().UTC()
	results := make([]models.MatchResult, len(matches))
	for i := range matches {
		m := &matches[i]
		res := models.MatchResult{
			ID:        uuid.New().String(),
			RunID:     run.ID,
			TenantID:  run.TenantID,
			Position:  i,
			Tier:      m.Tier,
			Status:    m.Status,
			Score:     m.Score,
			CreatedAt: now,
		}
		if m.Primary != nil {
			res.PrimaryRecordID = &m.Primary.ID
			res.PrimaryAttributes = m.Primary.Attributes
		}
		if m.Secondary != nil {
			res.SecondaryRecordID = &m.Secondary.ID
			res.SecondaryAttributes = m.Secondary.Attributes
		}
		results[i] = res
	}
	return results
}
