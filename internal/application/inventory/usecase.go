package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Ventas-api/internal/application/ports"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/inventory"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// RegisterMovementUseCase registra entradas y salidas manuales de stock de forma transaccional,
// con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type RegisterMovementUseCase struct {
	txRunner     ports.TxRunner
	productRepo  repository.ProductRepository
	employeeRepo repository.EmployeeRepository
	movementRepo repository.MovementRepository
	publisher    ports.EventPublisher
	metrics      ports.Metrics
	log          zerolog.Logger
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner ports.TxRunner,
	productRepo repository.ProductRepository,
	employeeRepo repository.EmployeeRepository,
	movementRepo repository.MovementRepository,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	log zerolog.Logger,
) *RegisterMovementUseCase {
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &RegisterMovementUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		employeeRepo: employeeRepo,
		movementRepo: movementRepo,
		publisher:    publisher,
		metrics:      metrics,
		log:          log,
	}
}

// MovementInput entrada para registrar un movimiento manual.
type MovementInput struct {
	EmployeeID string
	ProductID  string
	Type       string // inbound | outbound
	Quantity   int
	Note       string
}

type movementOutcome struct {
	movement *entity.Movement
	lowStock *ports.LowStockEvent
}

// RegisterMovement valida, bloquea la fila del producto, corre la validación previa en salidas
// y crea el movimiento junto con el ajuste de stock en una sola transacción.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, in MovementInput) (*entity.Movement, error) {
	out, err := uc.registerMovement(ctx, in)
	if err != nil {
		uc.metrics.MovementRejected(ports.RejectReason(err))
		ev := uc.log.Warn()
		if !domain.IsBusinessError(err) {
			ev = uc.log.Error()
		}
		ev.Err(err).Str("product_id", in.ProductID).Str("type", in.Type).Int("quantity", in.Quantity).Msg("movimiento rechazado")
		return nil, err
	}

	mov := out.movement
	uc.metrics.MovementRecorded(mov.Type)
	uc.log.Info().
		Str("movement_id", mov.ID).
		Str("product_id", mov.ProductID).
		Str("type", mov.Type).
		Int("stock_after", mov.StockAfter).
		Msg("movimiento registrado")

	if err := uc.publisher.PublishMovementRecorded(ctx, ports.MovementRecordedEvent{
		MovementID:  mov.ID,
		ProductID:   mov.ProductID,
		Type:        mov.Type,
		Quantity:    mov.Quantity,
		StockBefore: mov.StockBefore,
		StockAfter:  mov.StockAfter,
		EmployeeID:  mov.EmployeeID,
		OccurredAt:  mov.CreatedAt,
	}); err != nil {
		uc.log.Error().Err(err).Str("movement_id", mov.ID).Msg("publicar movement.recorded")
	}
	if out.lowStock != nil {
		if err := uc.publisher.PublishLowStock(ctx, *out.lowStock); err != nil {
			uc.log.Error().Err(err).Str("product_id", mov.ProductID).Msg("publicar stock.low")
		}
	}
	return mov, nil
}

func (uc *RegisterMovementUseCase) registerMovement(ctx context.Context, in MovementInput) (*movementOutcome, error) {
	// Validar tipo y campos
	switch in.Type {
	case entity.MovementTypeInbound, entity.MovementTypeOutbound:
	default:
		return nil, domain.NewValidationError("type", "debe ser inbound u outbound")
	}
	if in.ProductID == "" {
		return nil, domain.NewValidationError("product_id", "requerido")
	}
	if in.EmployeeID == "" {
		return nil, domain.NewValidationError("employee_id", "requerido")
	}
	if in.Quantity < 1 || in.Quantity > entity.MaxQuantity {
		return nil, domain.NewValidationError("quantity", fmt.Sprintf("debe estar entre 1 y %d", entity.MaxQuantity))
	}

	ok, err := uc.employeeRepo.Exists(ctx, in.EmployeeID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "check employee", Err: err}
	}
	if !ok {
		return nil, &domain.NotFoundError{Resource: "employee", ID: in.EmployeeID}
	}
	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get product", Err: err}
	}
	if product == nil {
		return nil, &domain.NotFoundError{Resource: "product", ID: in.ProductID}
	}

	return ports.Atomically(ctx, uc.txRunner, "register movement", func(repos ports.TxRepos) (*movementOutcome, error) {
		// Bloquea la fila del producto para serializar contra ventas y otros movimientos
		locked, err := repos.Stock.LockProducts(ctx, []string{in.ProductID})
		if err != nil {
			return nil, err
		}
		p, ok := locked[in.ProductID]
		if !ok {
			return nil, &domain.NotFoundError{Resource: "product", ID: in.ProductID}
		}

		ledger := inventory.NewLedger(repos.Stock)
		if in.Type == entity.MovementTypeOutbound {
			verdict, err := inventory.NewGuard(ledger).ValidateOutboundMovement(ctx, in.ProductID, in.Quantity)
			if err != nil {
				return nil, err
			}
			if !verdict.OK() {
				return nil, verdict.Err()
			}
		}

		mov := &entity.Movement{
			ID:          uuid.New().String(),
			CreatedAt:   time.Now().UTC(),
			Type:        in.Type,
			Quantity:    in.Quantity,
			ProductID:   in.ProductID,
			EmployeeID:  in.EmployeeID,
			Note:        in.Note,
			StockBefore: p.Stock,
		}
		if in.Type == entity.MovementTypeInbound {
			mov.StockAfter = p.Stock + in.Quantity
		} else {
			mov.StockAfter = p.Stock - in.Quantity
		}
		if err := repos.Movements.Create(ctx, mov); err != nil {
			return nil, err
		}

		var after int
		if in.Type == entity.MovementTypeInbound {
			after, err = ledger.Increment(ctx, in.ProductID, in.Quantity)
		} else {
			after, err = ledger.Decrement(ctx, in.ProductID, in.Quantity)
		}
		if err != nil {
			return nil, err
		}

		out := &movementOutcome{movement: mov}
		if p.Stock >= p.StockMinimum && after < p.StockMinimum {
			out.lowStock = &ports.LowStockEvent{
				ProductID:    p.ID,
				ProductName:  p.Name,
				Stock:        after,
				StockMinimum: p.StockMinimum,
				OccurredAt:   mov.CreatedAt,
			}
		}
		return out, nil
	})
}

// MaxPageSize tope de movimientos por página.
const MaxPageSize = 100

// ListMovements lista los movimientos de un producto, más recientes primero.
func (uc *RegisterMovementUseCase) ListMovements(ctx context.Context, productID string, limit, offset int) ([]*entity.Movement, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "requerido")
	}
	if limit < 1 || limit > MaxPageSize {
		return nil, domain.NewValidationError("limit", fmt.Sprintf("debe estar entre 1 y %d", MaxPageSize))
	}
	if offset < 0 {
		return nil, domain.NewValidationError("offset", "no puede ser negativo")
	}
	list, err := uc.movementRepo.ListByProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list movements", Err: err}
	}
	return list, nil
}
