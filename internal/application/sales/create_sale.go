package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/application/ports"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/inventory"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// CreateSaleUseCase es el único camino que crea una venta: valida todas las líneas contra el
// stock y persiste venta, líneas y descuentos de stock en una sola transacción, o nada.
type CreateSaleUseCase struct {
	txRunner     ports.TxRunner
	productRepo  repository.ProductRepository
	clientRepo   repository.ClientRepository
	employeeRepo repository.EmployeeRepository
	saleRepo     repository.SaleRepository
	publisher    ports.EventPublisher
	metrics      ports.Metrics
	log          zerolog.Logger
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(
	txRunner ports.TxRunner,
	productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository,
	employeeRepo repository.EmployeeRepository,
	saleRepo repository.SaleRepository,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	log zerolog.Logger,
) *CreateSaleUseCase {
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &CreateSaleUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		clientRepo:   clientRepo,
		employeeRepo: employeeRepo,
		saleRepo:     saleRepo,
		publisher:    publisher,
		metrics:      metrics,
		log:          log,
	}
}

// CreateSaleInput entrada del caso de uso. EmployeeID sale del token, no del body.
type CreateSaleInput struct {
	EmployeeID    string
	ClientID      string
	PaymentMethod string
	Note          string
	Items         []SaleItemInput
}

// SaleItemInput línea solicitada. No lleva precio: se lee del producto.
type SaleItemInput struct {
	ProductID string
	Quantity  int
}

// saleOutcome venta confirmada más los productos que cruzaron el stock mínimo.
type saleOutcome struct {
	sale     *entity.Sale
	lowStock []ports.LowStockEvent
}

// CreateSale valida, bloquea los productos, corre la validación previa y confirma la venta.
// Errores: *domain.ValidationError, *domain.NotFoundError, *domain.InsufficientStockError
// (todos antes de escribir) y *domain.PersistenceError (rollback completo).
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, in CreateSaleInput) (*entity.Sale, error) {
	out, err := uc.createSale(ctx, in)
	if err != nil {
		uc.metrics.SaleRejected(ports.RejectReason(err))
		ev := uc.log.Warn()
		if !domain.IsBusinessError(err) {
			ev = uc.log.Error()
		}
		ev.Err(err).Str("employee_id", in.EmployeeID).Int("lines", len(in.Items)).Msg("venta rechazada")
		return nil, err
	}

	sale := out.sale
	uc.metrics.SaleCommitted(len(sale.Items), sale.Total)
	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("total", sale.Total.StringFixed(2)).
		Int("lines", len(sale.Items)).
		Msg("venta registrada")

	if err := uc.publisher.PublishSaleCreated(ctx, ports.SaleCreatedEvent{
		SaleID:        sale.ID,
		ClientID:      sale.ClientID,
		EmployeeID:    sale.EmployeeID,
		PaymentMethod: sale.PaymentMethod,
		Total:         sale.Total,
		Lines:         len(sale.Items),
		OccurredAt:    sale.CreatedAt,
	}); err != nil {
		uc.log.Error().Err(err).Str("sale_id", sale.ID).Msg("publicar sale.created")
	}
	for _, low := range out.lowStock {
		if err := uc.publisher.PublishLowStock(ctx, low); err != nil {
			uc.log.Error().Err(err).Str("product_id", low.ProductID).Msg("publicar stock.low")
		}
	}
	return sale, nil
}

func (uc *CreateSaleUseCase) createSale(ctx context.Context, in CreateSaleInput) (*saleOutcome, error) {
	if err := validateSaleInput(in); err != nil {
		return nil, err
	}

	// Referencias externas (fuera de la tx, solo lectura)
	if err := mustExist(ctx, uc.employeeRepo.Exists, "employee", in.EmployeeID); err != nil {
		return nil, err
	}
	if err := mustExist(ctx, uc.clientRepo.Exists, "client", in.ClientID); err != nil {
		return nil, err
	}
	productIDs := uniqueProductIDs(in.Items)
	for _, id := range productIDs {
		product, err := uc.productRepo.GetByID(ctx, id)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "get product", Err: err}
		}
		if product == nil {
			return nil, &domain.NotFoundError{Resource: "product", ID: id}
		}
	}

	return ports.Atomically(ctx, uc.txRunner, "create sale", func(repos ports.TxRepos) (*saleOutcome, error) {
		// 1) Bloquear filas de productos (orden por id) y releer precio y stock
		locked, err := repos.Stock.LockProducts(ctx, productIDs)
		if err != nil {
			return nil, err
		}
		for _, id := range productIDs {
			p, ok := locked[id]
			if !ok {
				return nil, &domain.NotFoundError{Resource: "product", ID: id}
			}
			if !p.Active {
				return nil, domain.NewValidationError("items", fmt.Sprintf("producto %s inactivo", id))
			}
		}

		// 2) Validación previa: cualquier faltante rechaza la venta completa sin escribir
		ledger := inventory.NewLedger(repos.Stock)
		guard := inventory.NewGuard(ledger)
		lines := make([]inventory.Line, len(in.Items))
		for i, it := range in.Items {
			lines[i] = inventory.Line{ProductID: it.ProductID, Quantity: it.Quantity}
		}
		verdict, err := guard.ValidateSaleRequest(ctx, lines)
		if err != nil {
			return nil, err
		}
		if !verdict.OK() {
			return nil, verdict.Err()
		}

		// 3) Cabecera con total 0, líneas con precio congelado, descuentos y total final
		now := time.Now().UTC()
		sale := &entity.Sale{
			ID:            uuid.New().String(),
			CreatedAt:     now,
			PaymentMethod: in.PaymentMethod,
			Total:         decimal.Zero,
			ClientID:      in.ClientID,
			EmployeeID:    in.EmployeeID,
			Note:          in.Note,
		}
		if err := repos.Sales.Create(ctx, sale); err != nil {
			return nil, err
		}

		total := decimal.Zero
		stockAfter := make(map[string]int, len(productIDs))
		for i, it := range in.Items {
			product := locked[it.ProductID]
			item := entity.NewSaleLineItem(uuid.New().String(), sale.ID, i+1, it.ProductID, it.Quantity, product.SalePrice)
			if err := repos.Sales.CreateLineItem(ctx, item); err != nil {
				return nil, err
			}
			total = total.Add(item.Subtotal)
			next, err := ledger.Decrement(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return nil, err
			}
			stockAfter[it.ProductID] = next
			sale.Items = append(sale.Items, item)
		}
		if err := repos.Sales.SetTotal(ctx, sale.ID, total); err != nil {
			return nil, err
		}
		sale.Total = total

		out := &saleOutcome{sale: sale}
		for _, id := range productIDs {
			p := locked[id]
			if crossedMinimum(p.Stock, stockAfter[id], p.StockMinimum) {
				out.lowStock = append(out.lowStock, ports.LowStockEvent{
					ProductID:    id,
					ProductName:  p.Name,
					Stock:        stockAfter[id],
					StockMinimum: p.StockMinimum,
					OccurredAt:   now,
				})
			}
		}
		return out, nil
	})
}

// GetSale obtiene una venta confirmada con su detalle.
func (uc *CreateSaleUseCase) GetSale(ctx context.Context, id string) (*entity.Sale, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "requerido")
	}
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get sale", Err: err}
	}
	if sale == nil {
		return nil, &domain.NotFoundError{Resource: "sale", ID: id}
	}
	items, err := uc.saleRepo.GetLineItems(ctx, id)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get sale items", Err: err}
	}
	sale.Items = items
	return sale, nil
}

func validateSaleInput(in CreateSaleInput) error {
	if in.EmployeeID == "" {
		return domain.NewValidationError("employee_id", "requerido")
	}
	if in.ClientID == "" {
		return domain.NewValidationError("client_id", "requerido")
	}
	if !entity.ValidPaymentMethod(in.PaymentMethod) {
		return domain.NewValidationError("payment_method", "debe ser cash, card o transfer")
	}
	if len(in.Items) == 0 {
		return domain.NewValidationError("items", "se requiere al menos una línea")
	}
	if len(in.Items) > entity.MaxSaleLines {
		return domain.NewValidationError("items", fmt.Sprintf("máximo %d líneas", entity.MaxSaleLines))
	}
	for i, it := range in.Items {
		if it.ProductID == "" {
			return domain.NewValidationError(fmt.Sprintf("items[%d].product_id", i), "requerido")
		}
		if it.Quantity < 1 || it.Quantity > entity.MaxQuantity {
			return domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), fmt.Sprintf("debe estar entre 1 y %d", entity.MaxQuantity))
		}
	}
	return nil
}

func uniqueProductIDs(items []SaleItemInput) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}

func mustExist(ctx context.Context, exists func(context.Context, string) (bool, error), resource, id string) error {
	ok, err := exists(ctx, id)
	if err != nil {
		return &domain.PersistenceError{Op: "check " + resource, Err: err}
	}
	if !ok {
		return &domain.NotFoundError{Resource: resource, ID: id}
	}
	return nil
}

// crossedMinimum true solo cuando el stock pasa de >= mínimo a < mínimo.
func crossedMinimum(before, after, minimum int) bool {
	return before >= minimum && after < minimum
}
