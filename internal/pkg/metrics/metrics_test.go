package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	app := fiber.New()
	app.Use(c.Middleware())
	app.Put("/isPinned/:id", func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusOK)
	})

	for _, id := range []string{"a", "b"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodPut, "/isPinned/"+id, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requests.WithLabelValues("PUT", "/isPinned/:id", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.latency))
}

func TestRecordAuthFailure(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordAuthFailure("missing_token")
	c.RecordAuthFailure("missing_token")
	c.RecordAuthFailure("invalid_token")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.authFailures.WithLabelValues("missing_token")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.authFailures.WithLabelValues("invalid_token")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordAuthFailure("invalid_token")

	app := fiber.New()
	app.Get("/metrics", Handler(reg))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `notes_auth_failures_total{reason="invalid_token"} 1`)
}
