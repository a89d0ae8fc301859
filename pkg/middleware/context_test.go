package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ctxutil "github.com/Ramsey-B/clover/pkg/context"
)

func runContextMiddleware(t *testing.T, headers map[string]string) (requestID, tenantID string) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Context()(func(c echo.Context) error {
		ctx := c.Request().Context()
		requestID = ctxutil.GetRequestID(ctx)
		tenantID = ctxutil.GetTenantID(ctx)
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	return requestID, tenantID
}

func TestContext_CopiesHeaders(t *testing.T) {
	requestID, tenantID := runContextMiddleware(t, map[string]string{
		echo.HeaderXRequestID: "req-42",
		HeaderTenantID:        "tenant-7",
	})

	assert.Equal(t, "req-42", requestID)
	assert.Equal(t, "tenant-7", tenantID)
}

func TestContext_GeneratesRequestID(t *testing.T) {
	requestID, tenantID := runContextMiddleware(t, nil)

	assert.NotEmpty(t, requestID)
	assert.Empty(t, tenantID)
}
