package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
// El CRUD es externo; este núcleo solo modifica Stock.
type Product struct {
	ID           string
	Name         string
	Code         string          // código interno / barras
	SalePrice    decimal.Decimal // precio de venta unitario
	CostPrice    decimal.Decimal // precio de costo unitario
	Stock        int             // existencias actuales, nunca negativas
	StockMinimum int             // umbral de alerta de reposición
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BelowMinimum indica si el stock quedó por debajo del mínimo configurado.
func (p *Product) BelowMinimum() bool {
	return p.Stock < p.StockMinimum
}
