package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// ReplenishmentUseCase lista los productos en stock crítico con la cantidad sugerida de pedido.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo}
}

// LowStock devuelve los productos con stock <= mínimo ordenados por urgencia:
// primero los agotados, luego mayor déficit respecto al mínimo y por último código.
func (uc *ReplenishmentUseCase) LowStock(ctx context.Context) ([]dto.LowStockResponse, error) {
	products, err := uc.productRepo.ListCritical(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockResponse, 0, len(products))
	for _, p := range products {
		ideal := decimal.NewFromInt(p.StockMinimum).Mul(decimal.NewFromFloat(1.5)).Ceil().IntPart()
		suggested := ideal - p.StockQuantity
		if suggested < 0 {
			suggested = 0
		}
		out = append(out, dto.LowStockResponse{
			ProductID:     p.ID,
			Code:          p.Code,
			Name:          p.Name,
			Stock:         p.StockQuantity,
			Minimum:       p.StockMinimum,
			IdealStock:    ideal,
			SuggestedQty:  suggested,
			UnitCost:      p.CostPrice,
			EstimatedCost: p.CostPrice.Mul(decimal.NewFromInt(suggested)).Round(2),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Stock == 0) != (b.Stock == 0) {
			return a.Stock == 0
		}
		defA, defB := a.Minimum-a.Stock, b.Minimum-b.Stock
		if defA != defB {
			return defA > defB
		}
		return a.Code < b.Code
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}
