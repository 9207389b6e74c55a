package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/application/ports"
	"github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateSale       *sales.CreateSaleUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	Idempotency      ports.IdempotencyStore
	IdempotencyTTL   time.Duration
	IdempotencyLock  time.Duration // vigencia del marcador en curso
	JWTSecret        string
	JWTIssuer        string
	Log              zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todas las rutas requieren Bearer Token; el token lo emite el servicio de autenticación
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	// Sales (vendedor, admin)
	salesGroup := protected.Group("/sales", RequireRole(entity.RoleAdmin, entity.RoleVendedor))
	saleHandler := NewSaleHandler(deps.CreateSale, deps.Log)
	salesGroup.Post("/", Idempotency(deps.Idempotency, IdempotencyOptions{TTL: deps.IdempotencyTTL, PendingTTL: deps.IdempotencyLock}, deps.Log), saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)

	// Inventory movements (bodeguero, admin)
	invGroup := protected.Group("/inventory", RequireRole(entity.RoleAdmin, entity.RoleBodeguero))
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.Log)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
}
