package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// SaleRepository puerto de persistencia para ventas y sus líneas.
// No existe Update ni Delete: una venta confirmada es inmutable (salvo el total escrito en la misma tx).
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateLineItem(ctx context.Context, item *entity.SaleLineItem) error
	SetTotal(ctx context.Context, saleID string, total decimal.Decimal) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetLineItems(ctx context.Context, saleID string) ([]*entity.SaleLineItem, error)
}
