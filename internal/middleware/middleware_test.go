package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-registry/internal/observability"
)

func TestCorrelationIDReusesIncomingHeader(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetCorrelationID(c))
	})

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, "req-42", string(body))
	require.Equal(t, "req-42", resp.Header.Get("X-Correlation-ID"))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))
}

func TestObservabilityCountsRequestsByRoute(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Use(Observability(zerolog.New(io.Discard)))
	app.Get("/faculties/:id/edit", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/broken", func(c *fiber.Ctx) error { return fiber.ErrNotFound })
	app.Get("/metrics", observability.MetricsHandler())

	for _, path := range []string{"/faculties/1/edit", "/faculties/2/edit", "/broken"} {
		_, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	metrics := string(body)

	require.Contains(t, metrics, `registry_http_requests_total{method="GET",route="/faculties/:id/edit",status="200"}`)
	require.Contains(t, metrics, `registry_http_errors_total{method="GET",route="/broken",status="404"}`)
	require.False(t, strings.Contains(metrics, `route="/metrics"`))
}

func TestRateLimitOnlyThrottlesPosts(t *testing.T) {
	app := fiber.New()
	app.Use(RateLimit("test", 1, time.Minute))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestCorrelationIDRejectsOversizedHeader(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(CorrelationIDFromContext(c.UserContext()))
	})

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(CorrelationHeader, strings.Repeat("x", 200))
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	require.Len(t, string(body), 36)
	require.Equal(t, string(body), resp.Header.Get(CorrelationHeader))
}
