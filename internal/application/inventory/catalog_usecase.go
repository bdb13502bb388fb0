package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// CatalogUseCase consultas de solo lectura del catálogo (búsqueda para armar el carrito).
type CatalogUseCase struct {
	productRepo repository.ProductRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(productRepo repository.ProductRepository) *CatalogUseCase {
	return &CatalogUseCase{productRepo: productRepo}
}

// Search busca por código o nombre.
func (uc *CatalogUseCase) Search(ctx context.Context, in dto.ProductSearchRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	list, err := uc.productRepo.List(ctx, strings.TrimSpace(in.Search), in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductListResponse{
		Items: make([]dto.ProductResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}
	for _, p := range list {
		out.Items = append(out.Items, ToProductResponse(p))
	}
	return out, nil
}

// GetByCode busca un producto por su código exacto (lector de código de barras).
func (uc *CatalogUseCase) GetByCode(ctx context.Context, code string) (*dto.ProductResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidInput
	}
	p, err := uc.productRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	out := ToProductResponse(p)
	return &out, nil
}

// ToProductResponse convierte la entidad al DTO.
func ToProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:             p.ID,
		Code:           p.Code,
		Name:           p.Name,
		SalePrice:      p.SalePrice,
		CostPrice:      p.CostPrice,
		StockQuantity:  p.StockQuantity,
		StockMinimum:   p.StockMinimum,
		MaxDiscountPct: p.MaxDiscountPct,
		Status:         p.Status,
		Critical:       p.IsCritical(),
		UpdatedAt:      p.UpdatedAt,
	}
}
