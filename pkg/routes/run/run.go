package run

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/config"
	datasetrepo "github.com/Ramsey-B/clover/internal/repositories/dataset"
	resultrepo "github.com/Ramsey-B/clover/internal/repositories/matchresult"
	rulesetrepo "github.com/Ramsey-B/clover/internal/repositories/ruleset"
	runrepo "github.com/Ramsey-B/clover/internal/repositories/run"
	ctxutil "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/reconcile"
	"github.com/Ramsey-B/clover/pkg/report"
	"github.com/Ramsey-B/clover/pkg/tabular"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var validate = validator.New()

// Register registers reconciliation run routes
func Register(g *echo.Group) {
	g.POST("", Create)
	g.GET("", List)
	g.GET("/:id", Get)
	g.GET("/:id/results", ListResults)
	g.GET("/:id/summary", Summary)
	g.GET("/:id/export", Export)
}

// ListResponse is the paged run list envelope
type ListResponse struct {
	Items      []models.ReconciliationRun `json:"items"`
	TotalCount int                        `json:"total_count"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"page_size"`
}

// ResultListResponse is the paged result list envelope
type ResultListResponse struct {
	Items      []models.MatchResult `json:"items"`
	TotalCount int                  `json:"total_count"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
}

// Create registers a run and executes it synchronously. The response carries
// the completed (or failed) run with its tier counts.
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "run_handler.Create")
	defer span.End()

	tenantID := ctxutil.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	var req models.CreateRunRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, datasets, err := ectoinject.GetContext[*datasetrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	ctx, ruleSets, err := ectoinject.GetContext[*rulesetrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	ctx, runs, err := ectoinject.GetContext[*runrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	// Referenced rows must exist before the run row is written
	if _, err := datasets.Get(ctx, tenantID, req.PrimaryDatasetID); err != nil {
		return err
	}
	if _, err := datasets.Get(ctx, tenantID, req.SecondaryDatasetID); err != nil {
		return err
	}
	if _, err := ruleSets.Get(ctx, tenantID, req.RuleSetID); err != nil {
		return err
	}

	params := req.Params
	if params == nil {
		ctx2, cfg, err := ectoinject.GetContext[*config.Config](ctx)
		if err != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get config")
		}
		ctx = ctx2
		defaults := cfg.MatchDefaults()
		params = &defaults
	}

	created, err := runs.Create(ctx, tenantID, req, *params)
	if err != nil {
		return err
	}

	ctx, service, err := ectoinject.GetContext[*reconcile.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get reconcile service")
	}

	completed, err := service.Execute(ctx, tenantID, created.ID)
	if err != nil {
		// The run row records the failure; surface it with the run attached
		failed, getErr := runs.Get(ctx, tenantID, created.ID)
		if getErr == nil && failed.Status == models.RunStatusFailed {
			return c.JSON(http.StatusUnprocessableEntity, failed)
		}
		return err
	}

	return c.JSON(http.StatusCreated, completed)
}

// List returns the tenant's runs, optionally filtered by status
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "run_handler.List")
	defer span.End()

	tenantID := ctxutil.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	page, pageSize := pagination(c)

	var status *models.RunStatus
	if s := c.QueryParam("status"); s != "" {
		st := models.RunStatus(s)
		status = &st
	}

	ctx, runs, err := ectoinject.GetContext[*runrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, totalCount, err := runs.List(ctx, tenantID, status, page, pageSize)
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

// Get returns a single run by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "run_handler.Get")
	defer span.End()

	tenantID := ctxutil.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, runs, err := ectoinject.GetContext[*runrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	run, err := runs.Get(ctx, tenantID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, run)
}

// ListResults returns one page of a run's results in classification order,
// optionally filtered by tier.
func ListResults(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "run_handler.ListResults")
	defer span.End()

	tenantID := ctxutil.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	page, pageSize := pagination(c)

	var tier *models.MatchTier
	if t := c.QueryParam("tier"); t != "" {
		mt := models.MatchTier(t)
		tier = &mt
	}

	ctx, results, err := ectoinject.GetContext[*resultrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, totalCount, err := results.ListByRun(ctx, tenantID, c.Param("id"), tier, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ResultListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Summary returns tier and status counts for a completed run
func Summary(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "run_handler.Summary")
	defer span.End()

	tenantID := ctxutil.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, runs, err := ectoinject.GetContext[*runrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	ctx, results, err := ectoinject.GetContext[*resultrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	run, err := runs.Get(ctx, tenantID, c.Param("id"))
	if err != nil {
		return err
	}

	statuses, err := results.CountByStatus(ctx, tenantID, run.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, report.FromCounts(run, statuses))
}

// Export streams a run's results as CSV in the original export layout. Query
// params name the attribute columns: primary_name, secondary_name,
// primary_units, secondary_units, account. Unnamed columns export blank.
func Export(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "run_handler.Export")
	defer span.End()

	tenantID := ctxutil.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, runs, err := ectoinject.GetContext[*runrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	ctx, results, err := ectoinject.GetContext[*resultrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	run, err := runs.Get(ctx, tenantID, c.Param("id"))
	if err != nil {
		return err
	}

	items, err := results.ListAllByRun(ctx, tenantID, run.ID)
	if err != nil {
		return err
	}

	columns := tabular.ExportColumns{
		PrimaryName:    c.QueryParam("primary_name"),
		SecondaryName:  c.QueryParam("secondary_name"),
		PrimaryUnits:   c.QueryParam("primary_units"),
		SecondaryUnits: c.QueryParam("secondary_units"),
		Account:        c.QueryParam("account"),
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="run-`+run.ID+`.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	return tabular.WriteResults(c.Response(), items, columns)
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
