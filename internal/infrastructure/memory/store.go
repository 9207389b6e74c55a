// Package memory implementa los puertos de persistencia en memoria.
// Las transacciones se serializan con un mutex y restauran una copia del estado si fallan,
// con el mismo contrato todo-o-nada que el adaptador de PostgreSQL.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/application/ports"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

// Store estado completo en memoria.
type Store struct {
	mu     sync.Mutex
	state  state
	faults map[string]error
}

type state struct {
	products  map[string]entity.Product
	clients   map[string]entity.Client
	employees map[string]entity.Employee
	sales     map[string]entity.Sale
	lineItems map[string][]entity.SaleLineItem
	movements []entity.Movement
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		state: state{
			products:  map[string]entity.Product{},
			clients:   map[string]entity.Client{},
			employees: map[string]entity.Employee{},
			sales:     map[string]entity.Sale{},
			lineItems: map[string][]entity.SaleLineItem{},
		},
		faults: map[string]error{},
	}
}

// clone copia lo que una transacción puede modificar; clientes y empleados son de solo lectura aquí.
func (st state) clone() state {
	c := state{
		products:  make(map[string]entity.Product, len(st.products)),
		clients:   st.clients,
		employees: st.employees,
		sales:     make(map[string]entity.Sale, len(st.sales)),
		lineItems: make(map[string][]entity.SaleLineItem, len(st.lineItems)),
		movements: append([]entity.Movement(nil), st.movements...),
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.sales {
		c.sales[k] = v
	}
	for k, v := range st.lineItems {
		c.lineItems[k] = append([]entity.SaleLineItem(nil), v...)
	}
	return c
}

// Run ejecuta fn con repositorios atados a la transacción; si fn o el commit fallan se restaura el estado previo.
func (s *Store) Run(ctx context.Context, fn func(repos ports.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return &domain.PersistenceError{Op: "begin transaction", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	err := fn(ports.TxRepos{
		Stock:     &stockRepo{s: s},
		Sales:     &saleRepo{s: s, tx: true},
		Movements: &movementRepo{s: s, tx: true},
	})
	if err == nil {
		if ferr := s.fault("commit"); ferr != nil {
			err = &domain.PersistenceError{Op: "commit transaction", Err: ferr}
		}
	}
	if err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// FailOn inyecta un error una sola vez en la operación indicada:
// stock.lock, stock.set, sales.create, sales.create_line_item, sales.set_total, movements.create, commit.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	if err, ok := s.faults[op]; ok {
		delete(s.faults, op)
		return err
	}
	return nil
}

// do toma el mutex salvo que la llamada venga de dentro de Run, que ya lo tiene.
func (s *Store) do(tx bool, fn func()) {
	if !tx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn()
}

// Repositorios fuera de transacción.

func (s *Store) Products() repository.ProductRepository   { return &productRepo{s: s} }
func (s *Store) Clients() repository.ClientRepository     { return &clientRepo{s: s} }
func (s *Store) Employees() repository.EmployeeRepository { return &employeeRepo{s: s} }
func (s *Store) Sales() repository.SaleRepository         { return &saleRepo{s: s} }
func (s *Store) Movements() repository.MovementRepository { return &movementRepo{s: s} }

// ──────────────────────────────────────────────────────────────────────────────
// Carga de datos (el CRUD de catálogo, clientes y empleados es externo)
// ──────────────────────────────────────────────────────────────────────────────

// PutProduct inserta o reemplaza un producto.
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[p.ID] = p
}

// PutClient inserta o reemplaza un cliente.
func (s *Store) PutClient(c entity.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.clients[c.ID] = c
}

// PutEmployee inserta o reemplaza un empleado.
func (s *Store) PutEmployee(e entity.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.employees[e.ID] = e
}

// Product devuelve una copia del producto.
func (s *Store) Product(id string) (entity.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.products[id]
	return p, ok
}

// Counts número de ventas, líneas y movimientos persistidos.
func (s *Store) Counts() (sales, lineItems, movements int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, items := range s.state.lineItems {
		lineItems += len(items)
	}
	return len(s.state.sales), lineItems, len(s.state.movements)
}

type seedProduct struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Code         string          `json:"code"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	Stock        int             `json:"stock"`
	StockMinimum int             `json:"stock_minimum"`
	Active       *bool           `json:"active"`
}

type seedFile struct {
	Products  []seedProduct `json:"products"`
	Clients   []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"clients"`
	Employees []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Role string `json:"role"`
	} `json:"employees"`
}

// LoadSeed carga catálogo, clientes y empleados desde JSON (modo DB_DRIVER=memory).
// Un producto sin "active" se considera activo.
func (s *Store) LoadSeed(r io.Reader) error {
	var seed seedFile
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}
	for _, p := range seed.Products {
		if p.ID == "" {
			return fmt.Errorf("seed: producto sin id")
		}
		if p.Stock < 0 || p.StockMinimum < 0 {
			return fmt.Errorf("seed: producto %s con stock negativo", p.ID)
		}
		active := p.Active == nil || *p.Active
		s.PutProduct(entity.Product{
			ID: p.ID, Name: p.Name, Code: p.Code,
			SalePrice: p.SalePrice, CostPrice: p.CostPrice,
			Stock: p.Stock, StockMinimum: p.StockMinimum, Active: active,
		})
	}
	for _, c := range seed.Clients {
		s.PutClient(entity.Client{ID: c.ID, Name: c.Name})
	}
	for _, e := range seed.Employees {
		s.PutEmployee(entity.Employee{ID: e.ID, Name: e.Name, Role: e.Role, Active: true})
	}
	return nil
}
