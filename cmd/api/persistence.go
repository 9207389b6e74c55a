package main

import (
	"context"
	"os"

	"github.com/jhoicas/Ventas-api/internal/application/ports"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/memory"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Ventas-api/pkg/config"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

// persistence repositorios fuera de transacción más el runner de la unidad atómica.
type persistence struct {
	tx        ports.TxRunner
	products  repository.ProductRepository
	clients   repository.ClientRepository
	employees repository.EmployeeRepository
	sales     repository.SaleRepository
	movements repository.MovementRepository
}

// openPersistence abre PostgreSQL (por defecto) o el almacén en memoria (DB_DRIVER=memory).
func openPersistence(ctx context.Context, cfg *config.Config, log *logger.Logger) (persistence, func()) {
	if cfg.DB.Driver == config.DriverMemory {
		store := memory.NewStore()
		if cfg.DB.SeedPath != "" {
			f, err := os.Open(cfg.DB.SeedPath)
			if err != nil {
				log.Fatal().Err(err).Str("path", cfg.DB.SeedPath).Msg("abrir seed")
			}
			if err := store.LoadSeed(f); err != nil {
				log.Fatal().Err(err).Msg("cargar seed")
			}
			_ = f.Close()
		}
		log.Warn().Msg("persistencia en memoria: los datos se pierden al reiniciar")
		return persistence{
			tx:        store,
			products:  store.Products(),
			clients:   store.Clients(),
			employees: store.Employees(),
			sales:     store.Sales(),
			movements: store.Movements(),
		}, func() {}
	}

	if cfg.DB.MigrateOnStart {
		if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	return persistence{
		tx:        postgres.NewTxRunner(pool),
		products:  postgres.NewProductRepository(pool),
		clients:   postgres.NewClientRepository(pool),
		employees: postgres.NewEmployeeRepository(pool),
		sales:     postgres.NewSaleRepository(pool),
		movements: postgres.NewMovementRepository(pool),
	}, pool.Close
}
