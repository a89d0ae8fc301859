package dataset

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	datasetrepo "github.com/Ramsey-B/clover/internal/repositories/dataset"
	recordrepo "github.com/Ramsey-B/clover/internal/repositories/record"
	ctxutil "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tabular"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Register registers dataset routes
func Register(g *echo.Group) {
	g.POST("", Upload)
	g.GET("", List)
	g.GET("/:id", Get)
	g.GET("/:id/records", ListRecords)
	g.GET("/:id/columns/suggest", SuggestColumns)
	g.DELETE("/:id", Delete)
}

// ListResponse is the paged dataset list envelope
type ListResponse struct {
	Items      []models.Dataset `json:"items"`
	TotalCount int              `json:"total_count"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
}

// RecordListResponse is the paged record list envelope
type RecordListResponse struct {
	Items      []models.Record `json:"items"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

// Upload creates a dataset from a multipart CSV file. The form carries the
// file under "file" plus optional "name" and "role" fields; the CSV header row
// becomes the dataset's column list.
func Upload(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "dataset_handler.Upload")
	defer span.End()

	tenantID := ctxutil.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	sheet, err := tabular.Read(file)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid CSV: "+err.Error())
	}

	name := c.FormValue("name")
	if name == "" {
		name = fileHeader.Filename
	}

	var role *string
	if r := c.FormValue("role"); r != "" {
		if r != string(models.DatasetRolePrimary) && r != string(models.DatasetRoleSecondary) {
			return httperror.NewHTTPError(http.StatusBadRequest, "role must be primary or secondary")
		}
		role = &r
	}

	ctx, repo, err := ectoinject.GetContext[*datasetrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	ctx, records, err := ectoinject.GetContext[*recordrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	filename := fileHeader.Filename
	created, err := repo.Create(ctx, tenantID, models.CreateDatasetRequest{
		Name:           name,
		Role:           role,
		Columns:        sheet.Headers,
		SourceFilename: &filename,
	})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	batch := make([]models.Record, len(sheet.Rows))
	for i, row := range sheet.Rows {
		batch[i] = models.Record{
			ID:         uuid.New().String(),
			DatasetID:  created.ID,
			TenantID:   tenantID,
			RowIndex:   i,
			Attributes: row,
			CreatedAt:  now,
		}
	}

	if err := records.CreateBatch(ctx, batch); err != nil {
		return err
	}

	if err := repo.SetRecordCount(ctx, tenantID, created.ID, len(batch)); err != nil {
		return err
	}
	created.RecordCount = len(batch)

	ctx, logger, _ := ectoinject.GetContext[ectologger.Logger](ctx)
	if logger != nil {
		logger.WithContext(ctx).WithFields(map[string]any{
			"dataset_id":   created.ID,
			"record_count": len(batch),
		}).Info("Dataset uploaded")
	}

	ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx)
	if err == nil && emitter != nil {
		if err := emitter.EmitDatasetIngested(ctx, created); err != nil && logger != nil {
			logger.WithContext(ctx).WithError(err).Warn("Failed to emit dataset.ingested event")
		}
	}

	return c.JSON(http.StatusCreated, created)
}

// List returns the tenant's datasets, optionally filtered by role
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "dataset_handler.List")
	defer span.End()

	tenantID := ctxutil.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	page, pageSize := pagination(c)

	var role *string
	if r := c.QueryParam("role"); r != "" {
		role = &r
	}

	ctx, repo, err := ectoinject.GetContext[*datasetrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, totalCount, err := repo.List(ctx, tenantID, role, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Get returns a single dataset by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "dataset_handler.Get")
	defer span.End()

	tenantID := ctxutil.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, repo, err := ectoinject.GetContext[*datasetrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	dataset, err := repo.Get(ctx, tenantID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dataset)
}

// ListRecords returns one page of a dataset's records in row order
func ListRecords(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "dataset_handler.ListRecords")
	defer span.End()

	tenantID := ctxutil.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	page, pageSize := pagination(c)

	ctx, records, err := ectoinject.GetContext[*recordrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, totalCount, err := records.ListByDataset(ctx, tenantID, c.Param("id"), page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, RecordListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// SuggestColumns returns name/units/account column suggestions for a dataset
func SuggestColumns(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "dataset_handler.SuggestColumns")
	defer span.End()

	tenantID := ctxutil.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, repo, err := ectoinject.GetContext[*datasetrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	dataset, err := repo.Get(ctx, tenantID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tabular.SuggestColumns(dataset.Columns))
}

// Delete soft-deletes a dataset and removes its records
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "dataset_handler.Delete")
	defer span.End()

	tenantID := ctxutil.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*datasetrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	ctx, records, err := ectoinject.GetContext[*recordrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	if err := records.DeleteByDataset(ctx, tenantID, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func pagination(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize
}
