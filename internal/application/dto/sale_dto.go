package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest body para POST /api/sales.
// El precio no se acepta del cliente: se lee del producto al momento de la venta.
type CreateSaleRequest struct {
	ClientID      string            `json:"client_id"`
	PaymentMethod string            `json:"payment_method"` // cash | card | transfer
	Note          string            `json:"note,omitempty"`
	Items         []SaleItemRequest `json:"items"`
}

// SaleItemRequest línea solicitada (producto y cantidad).
type SaleItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// SaleResponse venta confirmada con su detalle.
type SaleResponse struct {
	ID            string                 `json:"id"`
	CreatedAt     time.Time              `json:"created_at"`
	ClientID      string                 `json:"client_id"`
	EmployeeID    string                 `json:"employee_id"`
	PaymentMethod string                 `json:"payment_method"`
	Note          string                 `json:"note,omitempty"`
	Total         decimal.Decimal        `json:"total"`
	Items         []SaleLineItemResponse `json:"items"`
}

// SaleLineItemResponse línea de la venta con precio congelado.
type SaleLineItemResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}
