package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medios de pago aceptados.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
)

// Topes de una solicitud. Con ambos, la suma de cantidades de un producto nunca desborda int.
const (
	MaxQuantity  = 1_000_000 // por línea o movimiento
	MaxSaleLines = 500
)

// ValidPaymentMethod indica si el medio de pago pertenece al enumerado.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return true
	}
	return false
}

// Sale cabecera de una venta. Se crea una sola vez junto con sus líneas y no se modifica después.
type Sale struct {
	ID            string
	CreatedAt     time.Time
	PaymentMethod string
	Total         decimal.Decimal // siempre igual a la suma de los subtotales
	ClientID      string
	EmployeeID    string
	Note          string
	Items         []*SaleLineItem
}

// SaleLineItem línea de venta con el precio congelado al momento de la venta.
type SaleLineItem struct {
	ID        string
	SaleID    string
	Position  int
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// NewSaleLineItem calcula el subtotal (cantidad × precio unitario) sin redondeos adicionales.
func NewSaleLineItem(id, saleID string, position int, productID string, quantity int, unitPrice decimal.Decimal) *SaleLineItem {
	return &SaleLineItem{
		ID:        id,
		SaleID:    saleID,
		Position:  position,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// SumSubtotals total de una colección de líneas.
func SumSubtotals(items []*SaleLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}
	return total
}
