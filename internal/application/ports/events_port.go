package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SaleCreatedEvent se publica después del commit de una venta.
type SaleCreatedEvent struct {
	SaleID        string          `json:"sale_id"`
	ClientID      string          `json:"client_id"`
	EmployeeID    string          `json:"employee_id"`
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	Lines         int             `json:"lines"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// MovementRecordedEvent se publica después del commit de un movimiento manual.
type MovementRecordedEvent struct {
	MovementID  string    `json:"movement_id"`
	ProductID   string    `json:"product_id"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	StockBefore int       `json:"stock_before"`
	StockAfter  int       `json:"stock_after"`
	EmployeeID  string    `json:"employee_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// LowStockEvent avisa que un producto quedó por debajo de su stock mínimo.
type LowStockEvent struct {
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	Stock        int       `json:"stock"`
	StockMinimum int       `json:"stock_minimum"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventPublisher notifica a reportes y tablero sobre registros ya confirmados.
// Un fallo al publicar nunca revierte la venta o el movimiento.
type EventPublisher interface {
	PublishSaleCreated(ctx context.Context, ev SaleCreatedEvent) error
	PublishMovementRecorded(ctx context.Context, ev MovementRecordedEvent) error
	PublishLowStock(ctx context.Context, ev LowStockEvent) error
}

// NopPublisher descarta los eventos (mensajería deshabilitada).
type NopPublisher struct{}

func (NopPublisher) PublishSaleCreated(context.Context, SaleCreatedEvent) error           { return nil }
func (NopPublisher) PublishMovementRecorded(context.Context, MovementRecordedEvent) error { return nil }
func (NopPublisher) PublishLowStock(context.Context, LowStockEvent) error                 { return nil }
