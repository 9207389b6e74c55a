package ports

import (
	"context"
	"time"
)

// StoredResponse respuesta ya confirmada asociada a una Idempotency-Key.
// Fingerprint identifica el cuerpo de la petición original.
type StoredResponse struct {
	Status      int    `json:"status"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// IdempotencyStore reserva claves de idempotencia para POST /api/sales.
//
// Begin devuelve la respuesta guardada si la clave ya se completó; si no, intenta reservarla
// con un marcador "en curso" que vence tras pendingTTL.
// acquired=false con stored=nil significa que otra petición con la misma clave sigue en curso.
// Complete reemplaza el marcador por la respuesta, que se conserva durante ttl.
type IdempotencyStore interface {
	Begin(ctx context.Context, key string, pendingTTL time.Duration) (stored *StoredResponse, acquired bool, err error)
	Complete(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}
