package ports

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/domain"
)

// Motivos de rechazo usados como etiqueta en métricas.
const (
	RejectValidation  = "validation"
	RejectNotFound    = "not_found"
	RejectStock       = "insufficient_stock"
	RejectPersistence = "persistence"
)

// Metrics contadores de negocio del núcleo de ventas e inventario.
type Metrics interface {
	SaleCommitted(lines int, total decimal.Decimal)
	SaleRejected(reason string)
	MovementRecorded(movementType string)
	MovementRejected(reason string)
}

// NopMetrics no registra nada.
type NopMetrics struct{}

func (NopMetrics) SaleCommitted(int, decimal.Decimal) {}
func (NopMetrics) SaleRejected(string)                {}
func (NopMetrics) MovementRecorded(string)            {}
func (NopMetrics) MovementRejected(string)            {}

// RejectReason clasifica un error para la etiqueta "reason".
func RejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return RejectStock
	case errors.Is(err, domain.ErrNotFound):
		return RejectNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return RejectValidation
	default:
		return RejectPersistence
	}
}
