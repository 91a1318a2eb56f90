package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoute(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/metrics", Handler())

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("204", "GET", "/items/:id"))
	for _, id := range []string{"1", "2"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/items/"+id, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("204", "GET", "/items/:id"))
	assert.Equal(t, 2.0, after-before)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(productMutations.WithLabelValues("delete", "error"))
	RecordProductMutation("delete", errors.New("fk"))
	assert.Equal(t, 1.0, testutil.ToFloat64(productMutations.WithLabelValues("delete", "error"))-before)

	hits := testutil.ToFloat64(cacheLookups.WithLabelValues("hit"))
	RecordCacheLookup(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(cacheLookups.WithLabelValues("hit"))-hits)

	placed := testutil.ToFloat64(ordersPlaced)
	RecordOrderPlaced()
	assert.Equal(t, 1.0, testutil.ToFloat64(ordersPlaced)-placed)
}
