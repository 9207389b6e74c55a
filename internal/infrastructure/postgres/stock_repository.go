package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo contador de stock sobre la columna products.stock. Debe usarse con una tx.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar la tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// LockProducts bloquea las filas en orden de id: dos ventas con productos en común
// siempre toman los locks en el mismo orden y no pueden bloquearse mutuamente.
func (r *StockRepo) LockProducts(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*entity.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan locked product: %w", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	return out, nil
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE). Si la fila ya está
// bloqueada por esta tx, Postgres no vuelve a esperar.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (int, error) {
	var stock int
	err := r.q.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, &domain.NotFoundError{Resource: "product", ID: productID}
		}
		return 0, fmt.Errorf("get stock for update: %w", err)
	}
	return stock, nil
}

// SetStock fija el contador. El CHECK (stock >= 0) de la tabla rechaza cualquier valor negativo.
func (r *StockRepo) SetStock(ctx context.Context, productID string, stock int) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`, productID, stock)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("stock negativo para %s: %w", productID, err)
		}
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "product", ID: productID}
	}
	return nil
}
