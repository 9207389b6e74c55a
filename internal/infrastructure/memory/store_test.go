package memory_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ventas-api/internal/application/ports"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/memory"
)

func newStoreWithProduct(stock int) *memory.Store {
	s := memory.NewStore()
	s.PutProduct(entity.Product{ID: "p1", Name: "Arroz", SalePrice: decimal.NewFromInt(10), Stock: stock, Active: true})
	return s
}

func TestRun_CommitPersisteCambios(t *testing.T) {
	s := newStoreWithProduct(10)
	ctx := context.Background()

	err := s.Run(ctx, func(repos ports.TxRepos) error {
		require.NoError(t, repos.Sales.Create(ctx, &entity.Sale{ID: "s1"}))
		return repos.Stock.SetStock(ctx, "p1", 7)
	})

	require.NoError(t, err)
	p, _ := s.Product("p1")
	assert.Equal(t, 7, p.Stock)
	sales, _, _ := s.Counts()
	assert.Equal(t, 1, sales)
}

func TestRun_ErrorRestauraEstado(t *testing.T) {
	s := newStoreWithProduct(10)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Run(ctx, func(repos ports.TxRepos) error {
		require.NoError(t, repos.Sales.Create(ctx, &entity.Sale{ID: "s1"}))
		require.NoError(t, repos.Sales.CreateLineItem(ctx, &entity.SaleLineItem{ID: "l1", SaleID: "s1", ProductID: "p1", Quantity: 3}))
		require.NoError(t, repos.Stock.SetStock(ctx, "p1", 7))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	p, _ := s.Product("p1")
	assert.Equal(t, 10, p.Stock)
	sales, items, movements := s.Counts()
	assert.Zero(t, sales)
	assert.Zero(t, items)
	assert.Zero(t, movements)
}

func TestRun_FalloEnCommit(t *testing.T) {
	s := newStoreWithProduct(10)
	ctx := context.Background()
	s.FailOn("commit", errors.New("conexión perdida"))

	err := s.Run(ctx, func(repos ports.TxRepos) error {
		return repos.Stock.SetStock(ctx, "p1", 1)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	p, _ := s.Product("p1")
	assert.Equal(t, 10, p.Stock)
}

func TestFailOn_SeConsumeUnaVez(t *testing.T) {
	s := newStoreWithProduct(10)
	ctx := context.Background()
	s.FailOn("stock.set", errors.New("disco lleno"))

	first := s.Run(ctx, func(repos ports.TxRepos) error { return repos.Stock.SetStock(ctx, "p1", 9) })
	second := s.Run(ctx, func(repos ports.TxRepos) error { return repos.Stock.SetStock(ctx, "p1", 9) })

	assert.Error(t, first)
	assert.NoError(t, second)
}

func TestSetStock_RechazaNegativo(t *testing.T) {
	s := newStoreWithProduct(1)
	ctx := context.Background()

	err := s.Run(ctx, func(repos ports.TxRepos) error { return repos.Stock.SetStock(ctx, "p1", -1) })

	assert.Error(t, err)
	p, _ := s.Product("p1")
	assert.Equal(t, 1, p.Stock)
}

func TestLockProducts_OmiteInexistentes(t *testing.T) {
	s := newStoreWithProduct(4)
	ctx := context.Background()

	var locked map[string]*entity.Product
	require.NoError(t, s.Run(ctx, func(repos ports.TxRepos) error {
		var err error
		locked, err = repos.Stock.LockProducts(ctx, []string{"p1", "nope"})
		return err
	}))

	require.Contains(t, locked, "p1")
	assert.NotContains(t, locked, "nope")
	assert.Equal(t, 4, locked["p1"].Stock)
}

func TestListByProduct_RecientesPrimeroConPaginacion(t *testing.T) {
	s := newStoreWithProduct(0)
	ctx := context.Background()
	repo := s.Movements()
	for _, id := range []string{"m1", "m2", "m3"} {
		require.NoError(t, repo.Create(ctx, &entity.Movement{ID: id, ProductID: "p1", Type: entity.MovementTypeInbound, Quantity: 1}))
	}
	require.NoError(t, repo.Create(ctx, &entity.Movement{ID: "otro", ProductID: "p2", Type: entity.MovementTypeInbound, Quantity: 1}))

	page, err := repo.ListByProduct(ctx, "p1", 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "m3", page[0].ID)
	assert.Equal(t, "m2", page[1].ID)

	rest, err := repo.ListByProduct(ctx, "p1", 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "m1", rest[0].ID)
}

// Mismo contrato que LIMIT 0 / OFFSET en PostgreSQL.
func TestListByProduct_LimitCeroSinFilas(t *testing.T) {
	s := newStoreWithProduct(0)
	ctx := context.Background()
	repo := s.Movements()
	require.NoError(t, repo.Create(ctx, &entity.Movement{ID: "m1", ProductID: "p1", Type: entity.MovementTypeInbound, Quantity: 1}))

	none, err := repo.ListByProduct(ctx, "p1", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := repo.ListByProduct(ctx, "p1", 10, -5)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEmployees_SoloActivos(t *testing.T) {
	s := memory.NewStore()
	s.PutEmployee(entity.Employee{ID: "e1", Active: true})
	s.PutEmployee(entity.Employee{ID: "e2", Active: false})

	ok, err := s.Employees().Exists(context.Background(), "e1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = s.Employees().Exists(context.Background(), "e2")
	assert.False(t, ok)
}

func TestLoadSeed(t *testing.T) {
	s := memory.NewStore()
	seed := `{
		"products": [
			{"id": "p1", "name": "Arroz", "sale_price": "2.50", "stock": 10, "stock_minimum": 2},
			{"id": "p2", "name": "Aceite", "sale_price": "8", "stock": 3, "active": false}
		],
		"clients": [{"id": "c1", "name": "Mostrador"}],
		"employees": [{"id": "e1", "name": "Ana", "role": "vendedor"}]
	}`

	require.NoError(t, s.LoadSeed(strings.NewReader(seed)))

	p1, ok := s.Product("p1")
	require.True(t, ok)
	assert.True(t, p1.Active)
	assert.True(t, decimal.RequireFromString("2.50").Equal(p1.SalePrice))
	p2, _ := s.Product("p2")
	assert.False(t, p2.Active)
	ok, _ = s.Clients().Exists(context.Background(), "c1")
	assert.True(t, ok)
}

func TestLoadSeed_StockNegativo(t *testing.T) {
	s := memory.NewStore()
	err := s.LoadSeed(strings.NewReader(`{"products":[{"id":"p1","stock":-1}]}`))
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia
// ──────────────────────────────────────────────────────────────────────────────

func TestIdempotencyStore_Flujo(t *testing.T) {
	store := memory.NewIdempotencyStore()
	ctx := context.Background()
	ttl := time.Minute

	stored, acquired, err := store.Begin(ctx, "k1", ttl)
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.True(t, acquired)

	// Segunda petición mientras la primera sigue en curso
	stored, acquired, err = store.Begin(ctx, "k1", ttl)
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.False(t, acquired)

	require.NoError(t, store.Complete(ctx, "k1", ports.StoredResponse{Status: 201, Body: []byte(`{"id":"s1"}`)}, ttl))
	stored, acquired, err = store.Begin(ctx, "k1", ttl)
	require.NoError(t, err)
	assert.False(t, acquired)
	require.NotNil(t, stored)
	assert.Equal(t, 201, stored.Status)
}

// El marcador en curso vence con su propio plazo; la respuesta guardada con el suyo.
func TestIdempotencyStore_MarcadorEnCursoVence(t *testing.T) {
	store := memory.NewIdempotencyStore()
	ctx := context.Background()

	_, acquired, err := store.Begin(ctx, "k1", 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, acquired)

	time.Sleep(30 * time.Millisecond)
	_, acquired, err = store.Begin(ctx, "k1", 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, acquired, "un proceso caído no bloquea la clave")

	require.NoError(t, store.Complete(ctx, "k1", ports.StoredResponse{Status: 201, Body: []byte(`{}`), Fingerprint: "abc"}, time.Hour))
	time.Sleep(30 * time.Millisecond)
	stored, acquired, err := store.Begin(ctx, "k1", 10*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, acquired)
	require.NotNil(t, stored)
	assert.Equal(t, "abc", stored.Fingerprint)
}

func TestIdempotencyStore_ReleaseLiberaClave(t *testing.T) {
	store := memory.NewIdempotencyStore()
	ctx := context.Background()

	_, _, _ = store.Begin(ctx, "k1", time.Minute)
	require.NoError(t, store.Release(ctx, "k1"))

	_, acquired, err := store.Begin(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}
