package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ventas-api/internal/application/ports"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Ventas-api/internal/interfaces/http"
)

func idempotentApp(store ports.IdempotencyStore, handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(recover.New())
	app.Post("/ventas", apphttp.Idempotency(store, apphttp.IdempotencyOptions{TTL: time.Hour, PendingTTL: time.Minute}, zerolog.Nop()), handler)
	return app
}

func postWithKey(t *testing.T, app *fiber.App, key, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ventas", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apphttp.HeaderIdempotencyKey, key)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// Un panic del handler no deja la clave en curso: el reintento vuelve a ejecutarse.
func TestIdempotency_PanicLiberaLaClave(t *testing.T) {
	calls := 0
	app := idempotentApp(memory.NewIdempotencyStore(), func(c *fiber.Ctx) error {
		calls++
		if calls == 1 {
			panic("fallo inesperado")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": "s1"})
	})

	first := postWithKey(t, app, "k-panic", `{"n":1}`)
	second := postWithKey(t, app, "k-panic", `{"n":1}`)

	assert.Equal(t, http.StatusInternalServerError, first.StatusCode)
	assert.Equal(t, http.StatusCreated, second.StatusCode)
	assert.Equal(t, 2, calls)
}

func TestIdempotency_ErrorDelHandlerLiberaLaClave(t *testing.T) {
	calls := 0
	app := idempotentApp(memory.NewIdempotencyStore(), func(c *fiber.Ctx) error {
		calls++
		if calls == 1 {
			return errors.New("sin conexión")
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	first := postWithKey(t, app, "k-err", `{}`)
	second := postWithKey(t, app, "k-err", `{}`)

	assert.Equal(t, http.StatusInternalServerError, first.StatusCode)
	assert.Equal(t, http.StatusCreated, second.StatusCode)
	assert.Equal(t, 2, calls)
}

func TestIdempotency_ClaveDemasiadoLarga(t *testing.T) {
	app := idempotentApp(memory.NewIdempotencyStore(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	resp := postWithKey(t, app, strings.Repeat("k", 129), `{}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Almacén caído
// ──────────────────────────────────────────────────────────────────────────────

type failingIdempotencyStore struct{}

func (failingIdempotencyStore) Begin(_ context.Context, _ string, _ time.Duration) (*ports.StoredResponse, bool, error) {
	return nil, false, errors.New("redis caído")
}

func (failingIdempotencyStore) Complete(context.Context, string, ports.StoredResponse, time.Duration) error {
	return nil
}

func (failingIdempotencyStore) Release(context.Context, string) error { return nil }

func TestIdempotency_AlmacenCaido_503(t *testing.T) {
	calls := 0
	app := idempotentApp(failingIdempotencyStore{}, func(c *fiber.Ctx) error {
		calls++
		return c.SendStatus(fiber.StatusCreated)
	})

	resp := postWithKey(t, app, "k", `{}`)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Zero(t, calls)
}
