package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Stock (solo dentro de Run)
// ──────────────────────────────────────────────────────────────────────────────

type stockRepo struct {
	s *Store
}

func (r *stockRepo) LockProducts(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	if err := r.s.fault("stock.lock"); err != nil {
		return nil, err
	}
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.state.products[id]; ok {
			cp := p
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *stockRepo) GetForUpdate(_ context.Context, productID string) (int, error) {
	p, ok := r.s.state.products[productID]
	if !ok {
		return 0, &domain.NotFoundError{Resource: "product", ID: productID}
	}
	return p.Stock, nil
}

func (r *stockRepo) SetStock(_ context.Context, productID string, stock int) error {
	if err := r.s.fault("stock.set"); err != nil {
		return err
	}
	p, ok := r.s.state.products[productID]
	if !ok {
		return &domain.NotFoundError{Resource: "product", ID: productID}
	}
	// mismo efecto que el CHECK (stock >= 0) de la tabla products
	if stock < 0 {
		return fmt.Errorf("stock negativo para producto %s", productID)
	}
	p.Stock = stock
	r.s.state.products[productID] = p
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos, clientes y empleados
// ──────────────────────────────────────────────────────────────────────────────

type productRepo struct {
	s *Store
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.state.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type clientRepo struct {
	s *Store
}

func (r *clientRepo) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.state.clients[id]
	return ok, nil
}

type employeeRepo struct {
	s *Store
}

// Exists solo cuenta empleados activos.
func (r *employeeRepo) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.state.employees[id]
	return ok && e.Active, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

type saleRepo struct {
	s  *Store
	tx bool
}

func (r *saleRepo) Create(_ context.Context, sale *entity.Sale) (err error) {
	r.s.do(r.tx, func() {
		if err = r.s.fault("sales.create"); err != nil {
			return
		}
		if _, dup := r.s.state.sales[sale.ID]; dup {
			err = fmt.Errorf("venta %s duplicada", sale.ID)
			return
		}
		cp := *sale
		cp.Items = nil
		r.s.state.sales[sale.ID] = cp
	})
	return err
}

func (r *saleRepo) CreateLineItem(_ context.Context, item *entity.SaleLineItem) (err error) {
	r.s.do(r.tx, func() {
		if err = r.s.fault("sales.create_line_item"); err != nil {
			return
		}
		if _, ok := r.s.state.sales[item.SaleID]; !ok {
			err = fmt.Errorf("venta %s inexistente", item.SaleID)
			return
		}
		r.s.state.lineItems[item.SaleID] = append(r.s.state.lineItems[item.SaleID], *item)
	})
	return err
}

func (r *saleRepo) SetTotal(_ context.Context, saleID string, total decimal.Decimal) (err error) {
	r.s.do(r.tx, func() {
		if err = r.s.fault("sales.set_total"); err != nil {
			return
		}
		sale, ok := r.s.state.sales[saleID]
		if !ok {
			err = fmt.Errorf("venta %s inexistente", saleID)
			return
		}
		sale.Total = total
		r.s.state.sales[saleID] = sale
	})
	return err
}

func (r *saleRepo) GetByID(_ context.Context, id string) (sale *entity.Sale, err error) {
	r.s.do(r.tx, func() {
		if v, ok := r.s.state.sales[id]; ok {
			sale = &v
		}
	})
	return sale, nil
}

func (r *saleRepo) GetLineItems(_ context.Context, saleID string) (items []*entity.SaleLineItem, err error) {
	r.s.do(r.tx, func() {
		stored := r.s.state.lineItems[saleID]
		items = make([]*entity.SaleLineItem, 0, len(stored))
		for i := range stored {
			it := stored[i]
			items = append(items, &it)
		}
	})
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return items, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

type movementRepo struct {
	s  *Store
	tx bool
}

func (r *movementRepo) Create(_ context.Context, m *entity.Movement) (err error) {
	r.s.do(r.tx, func() {
		if err = r.s.fault("movements.create"); err != nil {
			return
		}
		r.s.state.movements = append(r.s.state.movements, *m)
	})
	return err
}

func (r *movementRepo) GetByID(_ context.Context, id string) (mov *entity.Movement, err error) {
	r.s.do(r.tx, func() {
		for i := range r.s.state.movements {
			if r.s.state.movements[i].ID == id {
				m := r.s.state.movements[i]
				mov = &m
				return
			}
		}
	})
	return mov, nil
}

// ListByProduct más recientes primero (orden de inserción inverso).
// limit <= 0 no devuelve filas, igual que LIMIT 0 en PostgreSQL.
func (r *movementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) (list []*entity.Movement, err error) {
	if limit <= 0 {
		return nil, nil
	}
	if offset < 0 {
		offset = 0
	}
	r.s.do(r.tx, func() {
		skipped := 0
		for i := len(r.s.state.movements) - 1; i >= 0; i-- {
			m := r.s.state.movements[i]
			if m.ProductID != productID {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			if len(list) >= limit {
				return
			}
			list = append(list, &m)
		}
	})
	return list, nil
}
