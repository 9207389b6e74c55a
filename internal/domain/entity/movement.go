package entity

import "time"

// Tipos de movimiento manual de inventario.
const (
	MovementTypeInbound  = "inbound"  // entrada
	MovementTypeOutbound = "outbound" // salida
)

// Movement ajuste manual de stock de un producto, independiente de una venta.
// StockBefore / StockAfter quedan como auditoría del contador.
type Movement struct {
	ID          string
	CreatedAt   time.Time
	Type        string
	Quantity    int
	ProductID   string
	EmployeeID  string
	Note        string
	StockBefore int
	StockAfter  int
}
