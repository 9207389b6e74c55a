package dto

import "time"

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	Type      string `json:"type"` // inbound | outbound
	Quantity  int    `json:"quantity"`
	ProductID string `json:"product_id"`
	Note      string `json:"note,omitempty"`
}

// MovementResponse movimiento registrado.
type MovementResponse struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	ProductID   string    `json:"product_id"`
	EmployeeID  string    `json:"employee_id"`
	Note        string    `json:"note,omitempty"`
	StockBefore int       `json:"stock_before"`
	StockAfter  int       `json:"stock_after"`
}

// MovementListResponse listado paginado de movimientos de un producto.
type MovementListResponse struct {
	Page      PageResponse       `json:"page"`
	Movements []MovementResponse `json:"movements"`
}
