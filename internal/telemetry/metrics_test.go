package telemetry_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nikolayk812/storefront/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExposedOnScrapeHandler(t *testing.T) {
	handler, mp, err := telemetry.InitMeterProvider("storefront-test", "test")
	require.NoError(t, err)
	defer func() { _ = mp.Shutdown(t.Context()) }()

	metrics, err := telemetry.NewMetrics(mp)
	require.NoError(t, err)

	ctx := t.Context()
	metrics.CartMutation(ctx, "add")
	metrics.CartMutation(ctx, "add")
	metrics.OrderCreated(ctx)
	metrics.OrderStatusChanged(ctx, "shipped")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `storefront_cart_mutations_total{`)
	assert.Contains(t, string(body), `op="add"`)
	assert.Contains(t, string(body), `storefront_orders_created_total`)
	assert.Contains(t, string(body), `status="shipped"`)
}

func TestNoopMetrics(t *testing.T) {
	metrics := telemetry.NoopMetrics()

	assert.NotPanics(t, func() {
		metrics.CartMutation(t.Context(), "clear")
		metrics.OrderCreated(t.Context())
		metrics.OrderStatusChanged(t.Context(), "pending")
	})
}
