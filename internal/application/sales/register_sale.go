package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	"github.com/jhoicas/Ventas-api/internal/domain/sale"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

const instrumentationName = "github.com/jhoicas/Ventas-api/sales"

// DefaultTxTimeout tope por defecto de cada intento de registro.
const DefaultTxTimeout = 10 * time.Second

// RegisterSaleUseCase coordina el registro de una venta: valida, calcula importes y persiste
// cabecera, líneas, salidas de inventario y auditoría en una sola transacción.
// Cada intento termina confirmado o revertido por completo; no reintenta ni es idempotente.
type RegisterSaleUseCase struct {
	validator   *Validator
	txRunner    repository.TxRunner
	inventoryUC InventoryUseCase
	log         *logger.Logger
	timeout     time.Duration
	now         func() time.Time

	tracer     trace.Tracer
	registered metric.Int64Counter
	amount     metric.Float64Histogram
}

// NewRegisterSaleUseCase construye el coordinador. timeout <= 0 usa DefaultTxTimeout.
func NewRegisterSaleUseCase(
	validator *Validator,
	txRunner repository.TxRunner,
	inventoryUC InventoryUseCase,
	log *logger.Logger,
	timeout time.Duration,
) *RegisterSaleUseCase {
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	meter := otel.Meter(instrumentationName)
	registered, err := meter.Int64Counter("sales_registered_total",
		metric.WithDescription("Intentos de registro de venta por código de retorno"))
	if err != nil {
		registered = noop.Int64Counter{}
	}
	amount, err := meter.Float64Histogram("sales_total_amount",
		metric.WithDescription("Total de las ventas confirmadas"))
	if err != nil {
		amount = noop.Float64Histogram{}
	}
	return &RegisterSaleUseCase{
		validator:   validator,
		txRunner:    txRunner,
		inventoryUC: inventoryUC,
		log:         log.Component("sales"),
		timeout:     timeout,
		now:         time.Now,
		tracer:      otel.Tracer(instrumentationName),
		registered:  registered,
		amount:      amount,
	}
}

// Register expone el contrato numérico: rc y el id de la venta (nil si rc != 0).
func (uc *RegisterSaleUseCase) Register(ctx context.Context, actorID int64, lines []dto.SaleLineRequest) dto.RegisterSaleResult {
	id, err := uc.RegisterSale(ctx, actorID, lines)
	if err != nil {
		return dto.RegisterSaleResult{RC: int(domain.CodeOf(err)), Msg: PublicMessage(err)}
	}
	return dto.RegisterSaleResult{RC: int(domain.CodeOK), SaleID: &id}
}

// RegisterSale registra la venta y devuelve su id. El error conserva el sentinel de dominio
// (domain.CodeOf lo traduce a rc); cualquier error implica que nada de este intento quedó escrito.
func (uc *RegisterSaleUseCase) RegisterSale(ctx context.Context, actorID int64, lines []dto.SaleLineRequest) (int64, error) {
	ctx, span := uc.tracer.Start(ctx, "sales.RegisterSale", trace.WithAttributes(
		attribute.Int64("sale.actor_id", actorID),
		attribute.Int("sale.lines", len(lines)),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	saleID, totals, err := uc.register(ctx, actorID, lines)
	rc := domain.CodeOf(err)
	uc.registered.Add(ctx, 1, metric.WithAttributes(attribute.Int("rc", int(rc))))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		ev := uc.log.Warn()
		if rc == domain.CodeGeneral {
			ev = uc.log.Error()
		}
		ev.Err(err).
			Int64("actor_id", actorID).
			Int("lines", len(lines)).
			Int("rc", int(rc)).
			Msg("venta rechazada")
		return 0, err
	}

	span.SetAttributes(attribute.Int64("sale.id", saleID))
	uc.amount.Record(ctx, totals.Total.InexactFloat64())
	uc.log.Info().
		Int64("actor_id", actorID).
		Int64("sale_id", saleID).
		Int("lines", len(lines)).
		Str("total", totals.Total.StringFixed(sale.MoneyPlaces)).
		Int("rc", int(rc)).
		Msg("venta registrada")
	return saleID, nil
}

func (uc *RegisterSaleUseCase) register(ctx context.Context, actorID int64, lines []dto.SaleLineRequest) (int64, sale.Totals, error) {
	vctx, vspan := uc.tracer.Start(ctx, "sales.validate")
	validated, err := uc.validator.Validate(vctx, actorID, lines)
	vspan.End()
	if err != nil {
		return 0, sale.Totals{}, err
	}

	calc := make([]sale.Line, len(validated))
	ids := make([]int64, len(validated))
	requested := make(map[int64]int64, len(validated))
	for i, l := range validated {
		calc[i] = l.calcLine()
		ids[i] = l.Product.ID
		requested[l.Product.ID] += l.Quantity
	}
	amounts, totals := sale.Calculate(calc)

	now := uc.now()
	txID := uuid.New().String()

	ctx, span := uc.tracer.Start(ctx, "sales.persist")
	defer span.End()

	var saleID int64
	err = uc.txRunner.Run(ctx, func(tx repository.TxRepos) error {
		locked, err := uc.inventoryUC.LockProducts(ctx, tx, ids)
		if err != nil {
			return err
		}
		// Re-verificación autoritativa antes de escribir nada.
		for id, qty := range requested {
			if p := locked[id]; qty > p.StockQuantity {
				return fmt.Errorf("%w: producto %s (disponible %d, solicitado %d)",
					domain.ErrInsufficientStock, p.Code, p.StockQuantity, qty)
			}
		}

		header := &entity.Sale{
			Date:      now,
			UserID:    actorID,
			Subtotal:  totals.Subtotal,
			Discounts: totals.Discounts,
			Total:     totals.Total,
			CreatedAt: now,
		}
		if err := tx.Sales.Create(ctx, header); err != nil {
			return err
		}

		for i, l := range validated {
			item := &entity.SaleLineItem{
				SaleID:      header.ID,
				Position:    i + 1,
				ProductID:   l.Product.ID,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				DiscountPct: l.DiscountPct,
				Subtotal:    amounts[i].Subtotal,
				Discount:    amounts[i].Discount,
				Total:       amounts[i].Total,
			}
			if err := tx.Sales.CreateItem(ctx, item); err != nil {
				return err
			}
			if _, err := uc.inventoryUC.RegisterOUTInTx(ctx, tx, locked[l.Product.ID], inventory.SaleOutput{
				SaleID:        header.ID,
				TransactionID: txID,
				ActorID:       actorID,
				Quantity:      l.Quantity,
				UnitPrice:     l.UnitPrice,
				At:            now,
			}); err != nil {
				return err
			}
		}

		if err := tx.Audit.Create(ctx, saleAudit(header)); err != nil {
			return err
		}
		saleID = header.ID
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return 0, sale.Totals{}, err
	}
	return saleID, totals, nil
}

type saleAuditPayload struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discounts decimal.Decimal `json:"discounts"`
	Total     decimal.Decimal `json:"total"`
}

func saleAudit(s *entity.Sale) *entity.AuditRecord {
	// decimal.Decimal siempre serializa; el error de Marshal no puede ocurrir aquí.
	after, _ := json.Marshal(saleAuditPayload{Subtotal: s.Subtotal, Discounts: s.Discounts, Total: s.Total})
	return &entity.AuditRecord{
		Entity:    entity.AuditEntitySale,
		Operation: entity.AuditOperationCreate,
		UserID:    s.UserID,
		EntityID:  s.ID,
		After:     after,
		CreatedAt: s.CreatedAt,
	}
}

// PublicMessage mensaje apto para el cliente: el detalle de los errores de dominio
// y un texto genérico para fallos de infraestructura.
func PublicMessage(err error) string {
	if domain.CodeOf(err) == domain.CodeGeneral {
		return "error interno, la venta no fue registrada"
	}
	return err.Error()
}
