package matchresult

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const resultColumns = "id, run_id, tenant_id, position, tier, status, score, primary_record_id, secondary_record_id, primary_attributes, secondary_attributes, created_at"

// Repository handles match result persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new match result repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts a run's classified results
func (r *Repository) CreateBatch(ctx context.Context, results []models.MatchResult) error {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.CreateBatch")
	defer span.End()

	if len(results) == 0 {
		return nil
	}

	ib := database.NewInsertBuilder().
		InsertInto("match_results").
		Cols("id", "run_id", "tenant_id", "position", "tier", "status", "score", "primary_record_id", "secondary_record_id", "primary_attributes", "secondary_attributes", "created_at")
	for i := range results {
		res := &results[i]
		ib = ib.Values(res.ID, res.RunID, res.TenantID, res.Position, res.Tier, res.Status, res.Score, res.PrimaryRecordID, res.SecondaryRecordID, res.PrimaryAttributes, res.SecondaryAttributes, res.CreatedAt)
	}

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"result_count": len(results),
		}).Error("Failed to insert match results")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert match results")
	}

	return nil
}

// ListByRun retrieves one page of a run's results in classification order
func (r *Repository) ListByRun(ctx context.Context, tenantID, runID string, tier *models.MatchTier, page, pageSize int) ([]models.MatchResult, int, error) {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.ListByRun")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("match_results")
	countWhere := []string{
		countSb.Equal("tenant_id", tenantID),
		countSb.Equal("run_id", runID),
	}
	if tier != nil {
		countWhere = append(countWhere, countSb.Equal("tier", *tier))
	}
	countSb.Where(countWhere...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count match results")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count match results")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(resultColumns)
	sb.From("match_results")
	where := []string{
		sb.Equal("tenant_id", tenantID),
		sb.Equal("run_id", runID),
	}
	if tier != nil {
		where = append(where, sb.Equal("tier", *tier))
	}
	sb.Where(where...)
	sb.OrderBy("position ASC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var results []models.MatchResult
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list match results")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list match results")
	}

	return results, totalCount, nil
}

// ListAllByRun retrieves every result of a run in classification order. Used
// by the CSV export.
func (r *Repository) ListAllByRun(ctx context.Context, tenantID, runID string) ([]models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.ListAllByRun")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(resultColumns)
	sb.From("match_results")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("run_id", runID),
	)
	sb.OrderBy("position ASC")

	query, args := sb.Build()
	var results []models.MatchResult
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load match results")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load match results")
	}

	return results, nil
}

// CountByStatus returns how many of a run's results hold each review status
func (r *Repository) CountByStatus(ctx context.Context, tenantID, runID string) (map[models.MatchStatus]int, error) {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.CountByStatus")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("status", "COUNT(*) AS total")
	sb.From("match_results")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("run_id", runID),
	)
	sb.GroupBy("status")

	query, args := sb.Build()
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count results by status")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count results by status")
	}
	defer rows.Close()

	counts := make(map[models.MatchStatus]int)
	for rows.Next() {
		var row struct {
			Status models.MatchStatus `db:"status"`
			Total  int                `db:"total"`
		}
		if err := rows.StructScan(&row); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to scan status count")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count results by status")
		}
		counts[row.Status] = row.Total
	}
	if err := rows.Err(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read status counts")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count results by status")
	}

	return counts, nil
}

// DeleteByRun removes a run's results
func (r *Repository) DeleteByRun(ctx context.Context, tenantID, runID string) error {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.DeleteByRun")
	defer span.End()

	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom("match_results")
	db.Where(
		db.Equal("tenant_id", tenantID),
		db.Equal("run_id", runID),
	)

	query, args := db.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete match results")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete match results")
	}

	return nil
}
