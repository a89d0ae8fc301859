package record

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

const recordColumns = "id, dataset_id, tenant_id, row_index, attributes, created_at"

// Repository handles dataset record persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new record repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts a batch of records. Rows that collide on id are left
// untouched so replayed ingestion messages stay idempotent.
func (r *Repository) CreateBatch(ctx context.Context, records []models.Record) error {
	ctx, span := tracing.StartSpan(ctx, "record.Repository.CreateBatch")
	defer span.End()

	if len(records) == 0 {
		return nil
	}

	ib := database.NewInsertBuilder().
		InsertInto("dataset_records").
		Cols("id", "dataset_id", "tenant_id", "row_index", "attributes", "created_at")
	for i := range records {
		rec := &records[i]
		ib = ib.Values(rec.ID, rec.DatasetID, rec.TenantID, rec.RowIndex, rec.Attributes, rec.CreatedAt)
	}
	ib.OnConflictDoNothing()

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"record_count": len(records),
		}).Error("Failed to insert records")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert records")
	}

	return nil
}

// ListByDataset retrieves one page of a dataset's records in row order
func (r *Repository) ListByDataset(ctx context.Context, tenantID, datasetID string, page, pageSize int) ([]models.Record, int, error) {
	ctx, span := tracing.StartSpan(ctx, "record.Repository.ListByDataset")
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
	countSb.From("dataset_records")
	countSb.Where(
		countSb.Equal("tenant_id", tenantID),
		countSb.Equal("dataset_id", datasetID),
	)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count records")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count records")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(recordColumns)
	sb.From("dataset_records")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("dataset_id", datasetID),
	)
	sb.OrderBy("row_index ASC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var records []models.Record
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list records")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list records")
	}

	return records, totalCount, nil
}

// ListAllByDataset retrieves every record of a dataset in row order. Used by
// reconciliation runs, which need the full collection in its original order.
func (r *Repository) ListAllByDataset(ctx context.Context, tenantID, datasetID string) ([]models.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "record.Repository.ListAllByDataset")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(recordColumns)
	sb.From("dataset_records")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("dataset_id", datasetID),
	)
	sb.OrderBy("row_index ASC")

	query, args := sb.Build()
	var records []models.Record
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load dataset records")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load dataset records")
	}

	return records, nil
}

// NextRowIndex returns the row index the next appended record should take
func (r *Repository) NextRowIndex(ctx context.Context, tenantID, datasetID string) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "record.Repository.NextRowIndex")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COALESCE(MAX(row_index) + 1, 0)")
	sb.From("dataset_records")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("dataset_id", datasetID),
	)

	query, args := sb.Build()
	var next int
	if err := r.db.GetContext(ctx, &next, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get next row index")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get next row index")
	}

	return next, nil
}

// DeleteByDataset removes all records of a dataset
func (r *Repository) DeleteByDataset(ctx context.Context, tenantID, datasetID string) error {
	ctx, span := tracing.StartSpan(ctx, "record.Repository.DeleteByDataset")
	defer span.End()

	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom("dataset_records")
	db.Where(
		db.Equal("tenant_id", tenantID),
		db.Equal("dataset_id", datasetID),
	)

	query, args := db.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete dataset records")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete dataset records")
	}

	return nil
}
