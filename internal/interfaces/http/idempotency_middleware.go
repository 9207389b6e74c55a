package http

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/ports"
)

const (
	// HeaderIdempotencyKey cabecera opcional en POST /api/sales.
	HeaderIdempotencyKey = "Idempotency-Key"

	// HeaderIdempotencyReplayed marca una respuesta reproducida desde el almacén.
	HeaderIdempotencyReplayed = "Idempotency-Replayed"

	// DefaultPendingTTL vigencia del marcador "en curso" si no se configura otra.
	DefaultPendingTTL = time.Minute

	maxIdempotencyKeyLen = 128
)

// IdempotencyOptions vigencias de las claves.
// TTL aplica a la respuesta 201 guardada; PendingTTL al marcador mientras el handler corre,
// de modo que un proceso caído no bloquee la clave más allá de ese plazo.
type IdempotencyOptions struct {
	TTL        time.Duration
	PendingTTL time.Duration
}

// Idempotency reproduce la respuesta 201 ya confirmada para una Idempotency-Key repetida.
// Debe usarse DESPUÉS de AuthMiddleware: la clave se aísla por empleado.
//
// Comportamiento:
//   - Sin cabecera → la petición sigue normal.
//   - Clave completada con el mismo cuerpo → mismo status y cuerpo, cabecera Idempotency-Replayed: true.
//   - Clave completada con otro cuerpo → 422 IDEMPOTENCY_KEY_REUSED.
//   - Clave en curso → 409 IDEMPOTENCY_IN_PROGRESS.
//   - Fallo del almacén → 503 IDEMPOTENCY_UNAVAILABLE (no se arriesga una venta duplicada).
//   - Cualquier respuesta distinta de 201, o un panic del handler, libera la clave.
func Idempotency(store ports.IdempotencyStore, opts IdempotencyOptions, log zerolog.Logger) fiber.Handler {
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = DefaultPendingTTL
	}
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeyLen {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado larga", Field: HeaderIdempotencyKey})
		}
		scoped := GetUserID(c) + ":" + key
		fingerprint := bodyFingerprint(c.Body())

		stored, acquired, err := store.Begin(c.Context(), scoped, opts.PendingTTL)
		if err != nil {
			log.Error().Err(err).Msg("idempotency begin")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "IDEMPOTENCY_UNAVAILABLE",
				Message: "no se pudo verificar la Idempotency-Key, intente más tarde",
			})
		}
		if stored != nil {
			if stored.Fingerprint != "" && stored.Fingerprint != fingerprint {
				return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
					Code:    "IDEMPOTENCY_KEY_REUSED",
					Message: "la Idempotency-Key ya se usó con otro cuerpo",
					Field:   HeaderIdempotencyKey,
				})
			}
			c.Set(HeaderIdempotencyReplayed, "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(stored.Status).Send(stored.Body)
		}
		if !acquired {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Code:    "IDEMPOTENCY_IN_PROGRESS",
				Message: "otra petición con la misma Idempotency-Key está en curso",
			})
		}

		release := func() {
			if err := store.Release(c.Context(), scoped); err != nil {
				log.Error().Err(err).Msg("idempotency release")
			}
		}
		defer func() {
			if r := recover(); r != nil {
				release()
				panic(r)
			}
		}()

		nextErr := c.Next()
		status := c.Response().StatusCode()
		if nextErr == nil && status == fiber.StatusCreated {
			body := append([]byte(nil), c.Response().Body()...)
			resp := ports.StoredResponse{Status: status, Body: body, Fingerprint: fingerprint}
			if err := store.Complete(c.Context(), scoped, resp, opts.TTL); err != nil {
				log.Error().Err(err).Msg("idempotency complete")
			}
			return nil
		}
		release()
		return nextErr
	}
}

func bodyFingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
