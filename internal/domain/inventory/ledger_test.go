package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Doble de prueba: contador de stock en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeStock struct {
	stock   map[string]int
	writes  int
	failSet error
}

func newFakeStock(initial map[string]int) *fakeStock {
	return &fakeStock{stock: initial}
}

func (f *fakeStock) LockProducts(_ context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if s, ok := f.stock[id]; ok {
			out[id] = &entity.Product{ID: id, Stock: s, Active: true}
		}
	}
	return out, nil
}

func (f *fakeStock) GetForUpdate(_ context.Context, productID string) (int, error) {
	s, ok := f.stock[productID]
	if !ok {
		return 0, &domain.NotFoundError{Resource: "product", ID: productID}
	}
	return s, nil
}

func (f *fakeStock) SetStock(_ context.Context, productID string, stock int) error {
	if f.failSet != nil {
		return f.failSet
	}
	f.writes++
	f.stock[productID] = stock
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Check
// ──────────────────────────────────────────────────────────────────────────────

func TestLedgerCheck_SuficienteSinEfectos(t *testing.T) {
	st := newFakeStock(map[string]int{"p1": 10})
	ledger := inventory.NewLedger(st)

	check, err := ledger.Check(context.Background(), "p1", 10)
	require.NoError(t, err)
	assert.True(t, check.Sufficient)
	assert.Equal(t, 10, check.Available)
	assert.Zero(t, st.writes, "Check no debe escribir")
}

func TestLedgerCheck_Insuficiente(t *testing.T) {
	ledger := inventory.NewLedger(newFakeStock(map[string]int{"p1": 2}))

	check, err := ledger.Check(context.Background(), "p1", 5)
	require.NoError(t, err)
	assert.False(t, check.Sufficient)
	assert.Equal(t, 2, check.Available)
}

func TestLedgerCheck_ProductoInexistente(t *testing.T) {
	ledger := inventory.NewLedger(newFakeStock(map[string]int{}))

	_, err := ledger.Check(context.Background(), "nope", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Decrement / Increment
// ──────────────────────────────────────────────────────────────────────────────

func TestLedgerDecrement_RestaCantidad(t *testing.T) {
	st := newFakeStock(map[string]int{"p1": 10})
	ledger := inventory.NewLedger(st)

	next, err := ledger.Decrement(context.Background(), "p1", 4)
	require.NoError(t, err)
	assert.Equal(t, 6, next)
	assert.Equal(t, 6, st.stock["p1"])
}

func TestLedgerDecrement_HastaCero(t *testing.T) {
	st := newFakeStock(map[string]int{"p1": 3})
	next, err := inventory.NewLedger(st).Decrement(context.Background(), "p1", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, next)
}

func TestLedgerDecrement_InsuficienteNoModifica(t *testing.T) {
	st := newFakeStock(map[string]int{"p1": 2})
	ledger := inventory.NewLedger(st)

	_, err := ledger.Decrement(context.Background(), "p1", 5)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	require.Len(t, insufficient.Shortages, 1)
	assert.Equal(t, domain.StockShortage{ProductID: "p1", Requested: 5, Available: 2}, insufficient.Shortages[0])
	assert.Equal(t, 2, st.stock["p1"], "el stock debe quedar intacto")
	assert.Zero(t, st.writes)
}

func TestLedgerDecrement_ErrorDeEscrituraSePropaga(t *testing.T) {
	boom := errors.New("disco lleno")
	st := newFakeStock(map[string]int{"p1": 5})
	st.failSet = boom

	_, err := inventory.NewLedger(st).Decrement(context.Background(), "p1", 1)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 5, st.stock["p1"])
}

func TestLedgerIncrement_SumaSiempre(t *testing.T) {
	st := newFakeStock(map[string]int{"p1": 0})
	ledger := inventory.NewLedger(st)

	next, err := ledger.Increment(context.Background(), "p1", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, next)
	assert.Equal(t, 7, st.stock["p1"])
}

func TestLedger_CantidadNegativaInvalida(t *testing.T) {
	ledger := inventory.NewLedger(newFakeStock(map[string]int{"p1": 5}))
	ctx := context.Background()

	_, err := ledger.Increment(ctx, "p1", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = ledger.Decrement(ctx, "p1", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = ledger.Check(ctx, "p1", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
