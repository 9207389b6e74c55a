package inventory

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/domain"
)

// Line par (producto, cantidad) solicitado.
type Line struct {
	ProductID string
	Quantity  int
}

// Verdict resultado tipado de la validación previa. Sin faltantes = aprobado.
type Verdict struct {
	Shortages []domain.StockShortage
}

// OK indica que todas las líneas se pueden satisfacer.
func (v Verdict) OK() bool { return len(v.Shortages) == 0 }

// Err convierte un veredicto rechazado en *domain.InsufficientStockError (nil si aprobado).
func (v Verdict) Err() error {
	if v.OK() {
		return nil
	}
	return &domain.InsufficientStockError{Shortages: v.Shortages}
}

// Guard validación previa compartida por ventas y movimientos: ninguna mutación
// parcial es visible porque se rechaza la solicitud completa antes de escribir.
type Guard struct {
	ledger *Ledger
}

// NewGuard construye el guardián sobre el libro de stock.
func NewGuard(ledger *Ledger) *Guard {
	return &Guard{ledger: ledger}
}

// ValidateSaleRequest verifica todas las líneas contra el stock. Las cantidades del mismo
// producto se suman antes de comparar. El veredicto lista todos los productos faltantes,
// en el orden en que aparecen en la solicitud. El error se reserva para fallos de almacenamiento.
func (g *Guard) ValidateSaleRequest(ctx context.Context, lines []Line) (Verdict, error) {
	order := make([]string, 0, len(lines))
	requested := make(map[string]int, len(lines))
	for _, ln := range lines {
		if _, seen := requested[ln.ProductID]; !seen {
			order = append(order, ln.ProductID)
		}
		requested[ln.ProductID] += ln.Quantity
	}

	var verdict Verdict
	for _, productID := range order {
		check, err := g.ledger.Check(ctx, productID, requested[productID])
		if err != nil {
			return Verdict{}, err
		}
		if !check.Sufficient {
			verdict.Shortages = append(verdict.Shortages, domain.StockShortage{
				ProductID: productID,
				Requested: requested[productID],
				Available: check.Available,
			})
		}
	}
	return verdict, nil
}

// ValidateOutboundMovement misma regla para una salida manual de un solo producto.
func (g *Guard) ValidateOutboundMovement(ctx context.Context, productID string, quantity int) (Verdict, error) {
	return g.ValidateSaleRequest(ctx, []Line{{ProductID: productID, Quantity: quantity}})
}
