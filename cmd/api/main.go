package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/application/ports"
	"github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/memory"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/messaging"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/redisstore"
	httpRouter "github.com/jhoicas/Ventas-api/internal/interfaces/http"
	"github.com/jhoicas/Ventas-api/pkg/config"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

var migrateOnly = flag.Bool("migrate-only", false, "aplicar migraciones y salir")

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	if *migrateOnly {
		if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
		return
	}

	ctx := context.Background()
	repos, closeRepos := openPersistence(ctx, cfg, log)
	defer closeRepos()

	// Eventos post-commit (NATS opcional)
	var publisher ports.EventPublisher = ports.NopPublisher{}
	if cfg.NATS.URL != "" {
		conn, err := messaging.Connect(cfg.NATS.URL, cfg.App.Name, log.Component("nats"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a NATS")
		}
		defer conn.Drain()
		publisher = messaging.NewNATSPublisher(conn, cfg.NATS.SubjectPrefix, log.Component("events"))
	}

	// Idempotency-Key: Redis si está configurado, memoria local si no
	var idempotency ports.IdempotencyStore = memory.NewIdempotencyStore()
	if cfg.Redis.Addr != "" {
		client, err := redisstore.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		idempotency = redisstore.NewIdempotencyStore(client)
	}

	var businessMetrics ports.Metrics = ports.NopMetrics{}
	if cfg.Metrics.Enabled {
		businessMetrics = metrics.NewPrometheus("ventas", prometheus.DefaultRegisterer)
	}

	createSaleUC := sales.NewCreateSaleUseCase(
		repos.tx, repos.products, repos.clients, repos.employees, repos.sales,
		publisher, businessMetrics, log.Component("sales"),
	)
	registerMovementUC := inventory.NewRegisterMovementUseCase(
		repos.tx, repos.products, repos.employees, repos.movements,
		publisher, businessMetrics, log.Component("inventory"),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Ventas API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "db_driver": cfg.DB.Driver})
	})
	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(prometheus.DefaultGatherer)))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateSale:       createSaleUC,
		RegisterMovement: registerMovementUC,
		Idempotency:      idempotency,
		IdempotencyTTL:   cfg.Idempotency.TTL,
		IdempotencyLock:  cfg.Idempotency.PendingTTL,
		JWTSecret:        cfg.JWT.Secret,
		JWTIssuer:        cfg.JWT.Issuer,
		Log:              log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
