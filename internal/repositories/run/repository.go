package run

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const runColumns = "id, tenant_id, primary_dataset_id, secondary_dataset_id, rule_set_id, params, status, total_results, ultra_strict_count, strict_count, possible_count, no_match_count, error, started_at, completed_at, created_at, updated_at"

// TierCounts are the per-tier totals stored on a completed run
type TierCounts struct {
	Total       int
	UltraStrict int
	Strict      int
	Possible    int
	NoMatch     int
}

// Repository handles reconciliation run persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new run repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a pending run
func (r *Repository) Create(ctx context.Context, tenantID string, req models.CreateRunRequest, params models.MatchParams) (*models.ReconciliationRun, error) {
	ctx, span := tracing.StartSpan(ctx, "run.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":               "Create",
		"tenant_id":            tenantID,
		"primary_dataset_id":   req.PrimaryDatasetID,
		"secondary_dataset_id": req.SecondaryDatasetID,
		"rule_set_id":          req.RuleSetID,
	})

	now := time.Now().UTC()
	run := &models.ReconciliationRun{
		ID:                 uuid.New().String(),
		TenantID:           tenantID,
		PrimaryDatasetID:   req.PrimaryDatasetID,
		SecondaryDatasetID: req.SecondaryDatasetID,
		RuleSetID:          req.RuleSetID,
		Params:             params,
		Status:             models.RunStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("reconciliation_runs")
	sb.Cols("id", "tenant_id", "primary_dataset_id", "secondary_dataset_id", "rule_set_id", "params", "status", "created_at", "updated_at")
	sb.Values(run.ID, run.TenantID, run.PrimaryDatasetID, run.SecondaryDatasetID, run.RuleSetID, run.Params, run.Status, run.CreatedAt, run.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to create run")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create run")
	}

	log.WithFields(map[string]any{"id": run.ID}).Info("Created reconciliation run")
	return run, nil
}

// Get retrieves a run by ID
func (r *Repository) Get(ctx context.Context, tenantID string, id string) (*models.ReconciliationRun, error) {
	ctx, span := tracing.StartSpan(ctx, "run.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(runColumns)
	sb.From("reconciliation_runs")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	var run models.ReconciliationRun
	if err := r.db.GetContext(ctx, &run, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("run %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get run")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get run")
	}

	return &run, nil
}

// List retrieves runs for a tenant, newest first
func (r *Repository) List(ctx context.Context, tenantID string, status *models.RunStatus, page, pageSize int) ([]models.ReconciliationRun, int, error) {
	ctx, span := tracing.StartSpan(ctx, "run.Repository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("reconciliation_runs")
	countWhere := []string{countSb.Equal("tenant_id", tenantID)}
	if status != nil {
		countWhere = append(countWhere, countSb.Equal("status", *status))
	}
	countSb.Where(countWhere...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count runs")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count runs")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(runColumns)
	sb.From("reconciliation_runs")
	where := []string{sb.Equal("tenant_id", tenantID)}
	if status != nil {
		where = append(where, sb.Equal("status", *status))
	}
	sb.Where(where...)
	sb.OrderBy("created_at DESC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var runs []models.ReconciliationRun
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list runs")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list runs")
	}

	return runs, totalCount, nil
}

// MarkRunning transitions a run to running
func (r *Repository) MarkRunning(ctx context.Context, tenantID string, id string) error {
	ctx, span := tracing.StartSpan(ctx, "run.Repository.MarkRunning")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("reconciliation_runs")
	sb.Set(
		sb.Assign("status", models.RunStatusRunning),
		sb.Assign("started_at", now),
		sb.Assign("updated_at", now),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to mark run running")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to mark run running")
	}

	return nil
}

// Complete transitions a run to completed and stores its tier counts
func (r *Repository) Complete(ctx context.Context, tenantID string, id string, counts TierCounts) error {
	ctx, span := tracing.StartSpan(ctx, "run.Repository.Complete")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("reconciliation_runs")
	sb.Set(
		sb.Assign("status", models.RunStatusCompleted),
		sb.Assign("total_results", counts.Total),
		sb.Assign("ultra_strict_count", counts.UltraStrict),
		sb.Assign("strict_count", counts.Strict),
		sb.Assign("possible_count", counts.Possible),
		sb.Assign("no_match_count", counts.NoMatch),
		sb.Assign("completed_at", now),
		sb.Assign("updated_at", now),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to complete run")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to complete run")
	}

	return nil
}

// Fail transitions a run to failed with an error message
func (r *Repository) Fail(ctx context.Context, tenantID string, id string, message string) error {
	ctx, span := tracing.StartSpan(ctx, "run.Repository.Fail")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("reconciliation_runs")
	sb.Set(
		sb.Assign("status", models.RunStatusFailed),
		sb.Assign("error", message),
		sb.Assign("completed_at", now),
		sb.Assign("updated_at", now),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to mark run failed")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to mark run failed")
	}

	return nil
}
