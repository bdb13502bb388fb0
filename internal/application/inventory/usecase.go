package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/inventory"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// RegisterMovementUseCase registra movimientos de inventario de forma transaccional (IN, OUT)
// con bloqueo de fila (GetForUpdate) y Commit/Rollback. También expone la salida por venta
// que el coordinador de ventas ejecuta dentro de su propia transacción.
type RegisterMovementUseCase struct {
	txRunner    repository.TxRunner
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	now         func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner repository.TxRunner,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// MovementInputDTO entrada para registrar un movimiento manual.
// UnitCost es opcional en IN; si viene, recalcula el costo promedio ponderado.
type MovementInputDTO struct {
	ActorID   int64
	ProductID int64
	Type      string
	Quantity  int64
	UnitCost  *decimal.Decimal
	Reason    string
}

// MovementResult movimiento persistido y stock resultante.
type MovementResult struct {
	Movement *entity.InventoryMovement
	NewStock int64
}

type stockSnapshot struct {
	StockQuantity int64           `json:"stock_quantity"`
	CostPrice     decimal.Decimal `json:"cost_price"`
}

// RegisterMovement valida, abre una transacción, bloquea el producto, aplica IN u OUT,
// guarda el movimiento y su registro de auditoría. Cualquier error revierte todo.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) (*MovementResult, error) {
	input.Reason = strings.TrimSpace(input.Reason)
	switch input.Type {
	case entity.MovementTypeIN, entity.MovementTypeOUT:
	default:
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, input.Type)
	}
	if input.ProductID <= 0 || input.Quantity <= 0 || input.Reason == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.UnitCost != nil && input.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: costo unitario negativo", domain.ErrInvalidInput)
	}

	user, err := uc.userRepo.GetByID(ctx, input.ActorID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive() {
		return nil, domain.ErrActorInvalid
	}
	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	now := uc.now()
	txID := uuid.New().String()
	var result *MovementResult

	err = uc.txRunner.Run(ctx, func(tx repository.TxRepos) error {
		locked, err := tx.Products.GetForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		before := stockSnapshot{StockQuantity: locked.StockQuantity, CostPrice: locked.CostPrice}

		var mov *entity.InventoryMovement
		switch input.Type {
		case entity.MovementTypeIN:
			mov, err = uc.doIN(ctx, tx, locked, input, now, txID)
		default:
			mov, err = uc.doOUT(ctx, tx, locked, input, now, txID)
		}
		if err != nil {
			return err
		}

		after := stockSnapshot{StockQuantity: locked.StockQuantity, CostPrice: locked.CostPrice}
		if err := writeAudit(ctx, tx.Audit, entity.AuditEntityInventoryMovement, input.ActorID, mov.ID, before, after, now); err != nil {
			return err
		}
		result = &MovementResult{Movement: mov, NewStock: locked.StockQuantity}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// doIN: CostCalculator si hay costo de entrada, actualiza costo, suma stock, guarda movimiento.
func (uc *RegisterMovementUseCase) doIN(
	ctx context.Context,
	tx repository.TxRepos,
	product *entity.Product,
	input MovementInputDTO,
	now time.Time, txID string,
) (*entity.InventoryMovement, error) {
	unitCost := product.CostPrice
	if input.UnitCost != nil {
		unitCost = *input.UnitCost
		newCost := inventory.CostCalculator(product.StockQuantity, product.CostPrice, input.Quantity, unitCost)
		if err := tx.Products.UpdateCost(ctx, product.ID, newCost); err != nil {
			return nil, err
		}
		product.CostPrice = newCost
	}
	newStock, err := tx.Products.IncreaseStock(ctx, product.ID, input.Quantity)
	if err != nil {
		return nil, err
	}
	product.StockQuantity = newStock

	mov := &entity.InventoryMovement{
		TransactionID: txID,
		ProductID:     product.ID,
		Type:          entity.MovementTypeIN,
		Quantity:      input.Quantity,
		UnitCost:      unitCost,
		UnitPrice:     product.SalePrice,
		Reason:        input.Reason,
		CreatedBy:     input.ActorID,
		CreatedAt:     now,
	}
	if err := tx.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// doOUT: verifica stock >= cantidad, resta y guarda el movimiento al costo promedio actual.
func (uc *RegisterMovementUseCase) doOUT(
	ctx context.Context,
	tx repository.TxRepos,
	product *entity.Product,
	input MovementInputDTO,
	now time.Time, txID string,
) (*entity.InventoryMovement, error) {
	if err := decrease(ctx, tx.Products, product, input.Quantity); err != nil {
		return nil, err
	}
	mov := &entity.InventoryMovement{
		TransactionID: txID,
		ProductID:     product.ID,
		Type:          entity.MovementTypeOUT,
		Quantity:      input.Quantity,
		UnitCost:      product.CostPrice,
		UnitPrice:     product.SalePrice,
		Reason:        input.Reason,
		CreatedBy:     input.ActorID,
		CreatedAt:     now,
	}
	if err := tx.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// LockProducts bloquea los productos en orden ascendente de ID (evita deadlocks entre ventas
// de varias líneas) y devuelve las filas leídas dentro de la transacción.
func (uc *RegisterMovementUseCase) LockProducts(ctx context.Context, tx repository.TxRepos, ids []int64) (map[int64]*entity.Product, error) {
	sorted := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			sorted = append(sorted, id)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	locked := make(map[int64]*entity.Product, len(sorted))
	for _, id := range sorted {
		p, err := tx.Products.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, id)
		}
		locked[id] = p
	}
	return locked, nil
}

// SaleOutput datos de una línea de venta para su salida de inventario.
type SaleOutput struct {
	SaleID        int64
	TransactionID string
	ActorID       int64
	Quantity      int64
	UnitPrice     decimal.Decimal
	At            time.Time
}

// RegisterOUTInTx ejecuta la salida de una línea de venta usando los repositorios de la
// transacción del caller. product debe venir de LockProducts; su stock se actualiza en memoria
// para que varias líneas del mismo producto vean el saldo acumulado.
func (uc *RegisterMovementUseCase) RegisterOUTInTx(
	ctx context.Context,
	tx repository.TxRepos,
	product *entity.Product,
	out SaleOutput,
) (*entity.InventoryMovement, error) {
	if err := decrease(ctx, tx.Products, product, out.Quantity); err != nil {
		return nil, err
	}
	saleID := out.SaleID
	mov := &entity.InventoryMovement{
		TransactionID: out.TransactionID,
		ProductID:     product.ID,
		Type:          entity.MovementTypeOUT,
		Quantity:      out.Quantity,
		UnitCost:      product.CostPrice,
		UnitPrice:     out.UnitPrice,
		Reason:        entity.MovementReasonSale,
		SaleID:        &saleID,
		CreatedBy:     out.ActorID,
		CreatedAt:     out.At,
	}
	if err := tx.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// decrease re-verifica el stock y lo descuenta con la escritura condicional del repositorio.
func decrease(ctx context.Context, products repository.ProductRepository, product *entity.Product, quantity int64) error {
	if product.StockQuantity < quantity {
		return fmt.Errorf("%w: producto %d (disponible %d, solicitado %d)",
			domain.ErrInsufficientStock, product.ID, product.StockQuantity, quantity)
	}
	newStock, err := products.DecreaseStock(ctx, product.ID, quantity)
	if err != nil {
		return err
	}
	product.StockQuantity = newStock
	return nil
}

func writeAudit(ctx context.Context, repo repository.AuditRepository, entityName string, userID, entityID int64, before, after any, at time.Time) error {
	rec := &entity.AuditRecord{
		Entity:    entityName,
		Operation: entity.AuditOperationCreate,
		UserID:    userID,
		EntityID:  entityID,
		CreatedAt: at,
	}
	if before != nil {
		b, err := json.Marshal(before)
		if err != nil {
			return fmt.Errorf("audit before: %w", err)
		}
		rec.Before = b
	}
	b, err := json.Marshal(after)
	if err != nil {
		return fmt.Errorf("audit after: %w", err)
	}
	rec.After = b
	return repo.Create(ctx, rec)
}
