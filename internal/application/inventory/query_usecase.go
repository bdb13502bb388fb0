package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// QueryUseCase consultas del libro de inventario (solo datos confirmados).
type QueryUseCase struct {
	productRepo  repository.ProductRepository
	movementRepo repository.InventoryMovementRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(productRepo repository.ProductRepository, movementRepo repository.InventoryMovementRepository) *QueryUseCase {
	return &QueryUseCase{productRepo: productRepo, movementRepo: movementRepo}
}

// History movimientos de un producto, más recientes primero.
func (uc *QueryUseCase) History(ctx context.Context, productID int64, from, to *time.Time, limit, offset int) ([]dto.MovementResponse, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	movs, err := uc.movementRepo.ListByProduct(ctx, productID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, ToMovementResponse(m))
	}
	return out, nil
}

// Reconcile pliega los movimientos del producto (IN suma, OUT resta) y lo compara con su stock.
func (uc *QueryUseCase) Reconcile(ctx context.Context, productID int64) (*dto.ReconcileResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	totals, err := uc.movementRepo.TotalsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &dto.ReconcileResponse{
		ProductID:  productID,
		Stock:      product.StockQuantity,
		In:         totals.In,
		Out:        totals.Out,
		Ledger:     totals.Balance(),
		Consistent: totals.Balance() == product.StockQuantity,
	}, nil
}

func (uc *QueryUseCase) requireProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return domain.ErrInvalidInput
	}
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	return nil
}
