package repository

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// StockRepository puerto del contador de stock por producto.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// LockProducts bloquea las filas de los productos indicados (SELECT ... FOR UPDATE, orden por id)
	// y las devuelve indexadas por id. Los ids inexistentes no aparecen en el mapa.
	LockProducts(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	// GetForUpdate obtiene el stock actual de un producto bloqueando su fila.
	GetForUpdate(ctx context.Context, productID string) (int, error)
	// SetStock fija el nuevo valor del contador.
	SetStock(ctx context.Context, productID string, stock int) error
}
