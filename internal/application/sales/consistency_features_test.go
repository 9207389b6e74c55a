package sales_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/memory"
)

type consistencyContext struct {
	store     *memory.Store
	sales     *sales.CreateSaleUseCase
	movements *inventory.RegisterMovementUseCase
	employee  string
	client    string
	sale      *entity.Sale
	err       error
}

func (c *consistencyContext) reset() {
	c.store = memory.NewStore()
	c.sales = sales.NewCreateSaleUseCase(c.store, c.store.Products(), c.store.Clients(), c.store.Employees(), c.store.Sales(), nil, nil, zerolog.Nop())
	c.movements = inventory.NewRegisterMovementUseCase(c.store, c.store.Products(), c.store.Employees(), c.store.Movements(), nil, nil, zerolog.Nop())
	c.employee, c.client = "", ""
	c.sale, c.err = nil, nil
}

func (c *consistencyContext) clienteYEmpleado(client, employee string) error {
	c.client, c.employee = client, employee
	c.store.PutClient(entity.Client{ID: client, Name: "Cliente " + client})
	c.store.PutEmployee(entity.Employee{ID: employee, Name: "Empleado " + employee, Role: entity.RoleAdmin, Active: true})
	return nil
}

func (c *consistencyContext) productoConPrecioYStock(id, price string, stock int) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	c.store.PutProduct(entity.Product{ID: id, Name: "Producto " + id, SalePrice: p, Stock: stock, Active: true})
	return nil
}

func (c *consistencyContext) vender(ctx context.Context, items ...sales.SaleItemInput) {
	c.sale, c.err = c.sales.CreateSale(ctx, sales.CreateSaleInput{
		EmployeeID:    c.employee,
		ClientID:      c.client,
		PaymentMethod: entity.PaymentMethodCash,
		Items:         items,
	})
}

func (c *consistencyContext) vendeUnidades(ctx context.Context, qty int, id string) error {
	c.vender(ctx, sales.SaleItemInput{ProductID: id, Quantity: qty})
	return nil
}

func (c *consistencyContext) vendeDosLineas(ctx context.Context, qty1 int, id1 string, qty2 int, id2 string) error {
	c.vender(ctx,
		sales.SaleItemInput{ProductID: id1, Quantity: qty1},
		sales.SaleItemInput{ProductID: id2, Quantity: qty2},
	)
	return nil
}

func (c *consistencyContext) registraMovimiento(movementType string) func(context.Context, int, string) error {
	return func(ctx context.Context, qty int, id string) error {
		_, c.err = c.movements.RegisterMovement(ctx, inventory.MovementInput{
			EmployeeID: c.employee,
			ProductID:  id,
			Type:       movementType,
			Quantity:   qty,
		})
		return nil
	}
}

func (c *consistencyContext) ventaConfirmadaConTotal(total string) error {
	if c.err != nil {
		return fmt.Errorf("se esperaba venta confirmada, error: %v", c.err)
	}
	want := decimal.RequireFromString(total)
	if !c.sale.Total.Equal(want) {
		return fmt.Errorf("total esperado %s, obtenido %s", want, c.sale.Total)
	}
	return nil
}

func (c *consistencyContext) rechazoPorStock(id string) error {
	var stockErr *domain.InsufficientStockError
	if !errors.As(c.err, &stockErr) {
		return fmt.Errorf("se esperaba InsufficientStockError, obtenido %v", c.err)
	}
	for _, s := range stockErr.Shortages {
		if s.ProductID == id {
			return nil
		}
	}
	return fmt.Errorf("%q no aparece en los faltantes %+v", id, stockErr.Shortages)
}

func (c *consistencyContext) stockEs(id string, want int) error {
	p, ok := c.store.Product(id)
	if !ok {
		return fmt.Errorf("producto %q no existe", id)
	}
	if p.Stock != want {
		return fmt.Errorf("stock de %q: esperado %d, obtenido %d", id, want, p.Stock)
	}
	return nil
}

func (c *consistencyContext) ventasRegistradas(want int) error {
	n, _, _ := c.store.Counts()
	if n != want {
		return fmt.Errorf("ventas: esperado %d, obtenido %d", want, n)
	}
	return nil
}

func (c *consistencyContext) movimientosRegistrados(want int) error {
	_, _, n := c.store.Counts()
	if n != want {
		return fmt.Errorf("movimientos: esperado %d, obtenido %d", want, n)
	}
	return nil
}

func initializeConsistencyScenario(ctx *godog.ScenarioContext) {
	tc := &consistencyContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^el cliente "([^"]*)" y el empleado "([^"]*)"$`, tc.clienteYEmpleado)
	ctx.Step(`^el producto "([^"]*)" con precio "([^"]*)" y stock (\d+)$`, tc.productoConPrecioYStock)
	ctx.Step(`^el empleado vende (\d+) unidades de "([^"]*)"$`, tc.vendeUnidades)
	ctx.Step(`^el empleado vende (\d+) unidades de "([^"]*)" y (\d+) unidades de "([^"]*)"$`, tc.vendeDosLineas)
	ctx.Step(`^el empleado registra una salida de (\d+) unidades de "([^"]*)"$`, tc.registraMovimiento(entity.MovementTypeOutbound))
	ctx.Step(`^el empleado registra una entrada de (\d+) unidades de "([^"]*)"$`, tc.registraMovimiento(entity.MovementTypeInbound))
	ctx.Step(`^la venta se confirma con total "([^"]*)"$`, tc.ventaConfirmadaConTotal)
	ctx.Step(`^la operación se rechaza por stock insuficiente de "([^"]*)"$`, tc.rechazoPorStock)
	ctx.Step(`^el stock de "([^"]*)" es (\d+)$`, tc.stockEs)
	ctx.Step(`^hay (\d+) ventas registradas$`, tc.ventasRegistradas)
	ctx.Step(`^hay (\d+) movimientos registrados$`, tc.movimientosRegistrados)
}

func TestConsistencyFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeConsistencyScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/consistency.feature"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("escenarios de consistencia fallidos")
	}
}
