package dataset

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

const datasetColumns = "id, tenant_id, name, role, columns, source_filename, record_count, created_at, updated_at, deleted_at"

// Repository handles dataset persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new dataset repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new dataset
func (r *Repository) Create(ctx context.Context, tenantID string, req models.CreateDatasetRequest) (*models.Dataset, error) {
	ctx, span := tracing.StartSpan(ctx, "dataset.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Create",
		"tenant_id": tenantID,
		"name":      req.Name,
	})

	now := time.Now().UTC()
	dataset := &models.Dataset{
		ID:             uuid.New().String(),
		TenantID:       tenantID,
		Name:           req.Name,
		Role:           req.Role,
		Columns:        req.Columns,
		SourceFilename: req.SourceFilename,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("datasets")
	sb.Cols("id", "tenant_id", "name", "role", "columns", "source_filename", "record_count", "created_at", "updated_at")
	sb.Values(dataset.ID, dataset.TenantID, dataset.Name, dataset.Role, dataset.Columns, dataset.SourceFilename, dataset.RecordCount, dataset.CreatedAt, dataset.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to create dataset")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create dataset")
	}

	log.WithFields(map[string]any{"id": dataset.ID}).Info("Created dataset")
	return dataset, nil
}

// Get retrieves a dataset by ID
func (r *Repository) Get(ctx context.Context, tenantID string, id string) (*models.Dataset, error) {
	ctx, span := tracing.StartSpan(ctx, "dataset.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(datasetColumns)
	sb.From("datasets")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var dataset models.Dataset
	if err := r.db.GetContext(ctx, &dataset, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("dataset %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get dataset")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get dataset")
	}

	return &dataset, nil
}

// List retrieves datasets for a tenant, newest first
func (r *Repository) List(ctx context.Context, tenantID string, role *string, page, pageSize int) ([]models.Dataset, int, error) {
	ctx, span := tracing.StartSpan(ctx, "dataset.Repository.List")
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
	countSb.From("datasets")
	countWhere := []string{
		countSb.Equal("tenant_id", tenantID),
		countSb.IsNull("deleted_at"),
	}
	if role != nil {
		countWhere = append(countWhere, countSb.Equal("role", *role))
	}
	countSb.Where(countWhere...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count datasets")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count datasets")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(datasetColumns)
	sb.From("datasets")
	where := []string{
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	}
	if role != nil {
		where = append(where, sb.Equal("role", *role))
	}
	sb.Where(where...)
	sb.OrderBy("created_at DESC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var datasets []models.Dataset
	if err := r.db.SelectContext(ctx, &datasets, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list datasets")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list datasets")
	}

	return datasets, totalCount, nil
}

// SetRecordCount stores the dataset's record count after an ingest
func (r *Repository) SetRecordCount(ctx context.Context, tenantID string, id string, count int) error {
	ctx, span := tracing.StartSpan(ctx, "dataset.Repository.SetRecordCount")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("datasets")
	sb.Set(
		sb.Assign("record_count", count),
		sb.Assign("updated_at", time.Now().UTC()),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update dataset record count")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update dataset record count")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("dataset %s not found", id))
	}

	return nil
}

// Delete soft deletes a dataset
func (r *Repository) Delete(ctx context.Context, tenantID string, id string) error {
	ctx, span := tracing.StartSpan(ctx, "dataset.Repository.Delete")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("datasets")
	sb.Set(sb.Assign("deleted_at", time.Now().UTC()))
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete dataset")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete dataset")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("dataset %s not found", id))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Deleted dataset")
	return nil
}
