package inventory

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// StockCheck resultado de consultar si hay existencias suficientes.
type StockCheck struct {
	Sufficient bool
	Available  int
}

// Ledger es la única fuente de verdad del contador de stock de un producto.
// Opera sobre un producto a la vez; el caller lo ejecuta dentro de una transacción
// con repositorios atados a ella (ver ports.TxRunner).
type Ledger struct {
	stock repository.StockRepository
}

// NewLedger construye el libro de stock sobre el repositorio dado (normalmente atado a una tx).
func NewLedger(stock repository.StockRepository) *Ledger {
	return &Ledger{stock: stock}
}

// Check consulta el stock sin modificarlo.
func (l *Ledger) Check(ctx context.Context, productID string, quantity int) (StockCheck, error) {
	if quantity < 0 {
		return StockCheck{}, domain.NewValidationError("quantity", "no puede ser negativa")
	}
	available, err := l.stock.GetForUpdate(ctx, productID)
	if err != nil {
		return StockCheck{}, err
	}
	return StockCheck{Sufficient: available >= quantity, Available: available}, nil
}

// Decrement resta quantity del stock y devuelve el nuevo valor.
// Si el resultado fuese negativo retorna *domain.InsufficientStockError y no escribe nada.
func (l *Ledger) Decrement(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity < 0 {
		return 0, domain.NewValidationError("quantity", "no puede ser negativa")
	}
	current, err := l.stock.GetForUpdate(ctx, productID)
	if err != nil {
		return 0, err
	}
	if current < quantity {
		return current, &domain.InsufficientStockError{Shortages: []domain.StockShortage{
			{ProductID: productID, Requested: quantity, Available: current},
		}}
	}
	next := current - quantity
	if err := l.stock.SetStock(ctx, productID, next); err != nil {
		return current, err
	}
	return next, nil
}

// Increment suma quantity al stock y devuelve el nuevo valor.
func (l *Ledger) Increment(ctx context.Context, productID string, quantity int) (int, error) {
	if quantity < 0 {
		return 0, domain.NewValidationError("quantity", "no puede ser negativa")
	}
	current, err := l.stock.GetForUpdate(ctx, productID)
	if err != nil {
		return 0, err
	}
	next := current + quantity
	if err := l.stock.SetStock(ctx, productID, next); err != nil {
		return current, err
	}
	return next, nil
}
