package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	ctx := SetRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", GetRequestID(ctx))
}

func TestTenantID(t *testing.T) {
	ctx := SetTenantID(context.Background(), "tenant-1")
	assert.Equal(t, "tenant-1", GetTenantID(ctx))
}

func TestGetters_Unset(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetTenantID(ctx))
}
