package handler_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-registry/internal/config"
	"github.com/noah-isme/campus-registry/internal/handler"
)

type healthBody struct {
	Success bool                   `json:"success"`
	Data    handler.HealthResponse `json:"data"`
}

func TestHealthCheck(t *testing.T) {
	cfg := config.Config{
		AppName: "Campus Registry",
		AppEnv:  "test",
	}

	app := fiber.New()
	app.Get("/api/v1/health", handler.HealthCheck(cfg, nil))

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload healthBody
	decodeResponse(t, resp, &payload)
	assert.True(t, payload.Success)
	assert.Equal(t, "ok", payload.Data.Status)
	assert.Equal(t, "unknown", payload.Data.Database)
	assert.Equal(t, cfg.AppName, payload.Data.Service)
	assert.Equal(t, cfg.AppEnv, payload.Data.Environment)
	assert.WithinDuration(t, time.Now().UTC(), payload.Data.Timestamp, 2*time.Second)
}

func TestHealthCheckProbesDatabase(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.get(t, "/api/v1/health")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "campus-test", resp.Header.Get("X-Application"))

	var payload healthBody
	decodeResponse(t, resp, &payload)
	require.Equal(t, "up", payload.Data.Database)
}

func TestWelcomeAndMissingPages(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.get(t, "/")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, readBody(t, resp), "Перейти к факультетам")

	resp = srv.get(t, "/no/such/page")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Contains(t, readBody(t, resp), "Страница не найдена.")

	resp = srv.get(t, "/api/v1/nothing")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Contains(t, resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
}
