package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la cabecera de la venta.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (id, created_at, payment_method, total, client_id, employee_id, note)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))`
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.CreatedAt, sale.PaymentMethod, sale.Total, sale.ClientID, sale.EmployeeID, sale.Note,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert sale %s: %w", sale.ID, domain.ErrConflict)
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateLineItem persiste una línea con el precio congelado.
func (r *SaleRepo) CreateLineItem(ctx context.Context, item *entity.SaleLineItem) error {
	query := `
		INSERT INTO sale_line_items (id, sale_id, position, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.SaleID, item.Position, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert sale line item: %w", err)
	}
	return nil
}

// SetTotal escribe el total final dentro de la misma tx que creó la venta.
func (r *SaleRepo) SetTotal(ctx context.Context, saleID string, total decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE sales SET total = $2 WHERE id = $1`, saleID, total)
	if err != nil {
		return fmt.Errorf("update sale total: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update sale total: venta %s inexistente", saleID)
	}
	return nil
}

// GetByID obtiene la cabecera de una venta (sin líneas).
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	query := `
		SELECT id, created_at, payment_method, total, client_id, employee_id, COALESCE(note, '')
		FROM sales WHERE id = $1`
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.CreatedAt, &s.PaymentMethod, &s.Total, &s.ClientID, &s.EmployeeID, &s.Note,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return &s, nil
}

// GetLineItems lista las líneas en el orden en que se registraron.
func (r *SaleRepo) GetLineItems(ctx context.Context, saleID string) ([]*entity.SaleLineItem, error) {
	query := `
		SELECT id, sale_id, position, product_id, quantity, unit_price, subtotal
		FROM sale_line_items WHERE sale_id = $1
		ORDER BY position`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale line items: %w", err)
	}
	defer rows.Close()

	var list []*entity.SaleLineItem
	for rows.Next() {
		var it entity.SaleLineItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.Position, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan sale line item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}
