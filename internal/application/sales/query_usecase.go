package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// DateLayout formato de fechas en filtros de consulta.
const DateLayout = "2006-01-02"

// QueryUseCase consultas sobre ventas confirmadas.
type QueryUseCase struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(saleRepo repository.SaleRepository, productRepo repository.ProductRepository) *QueryUseCase {
	return &QueryUseCase{saleRepo: saleRepo, productRepo: productRepo}
}

// GetSale devuelve la cabecera con sus líneas en el orden original.
func (uc *QueryUseCase) GetSale(ctx context.Context, id int64) (*dto.SaleResponse, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidInput
	}
	s, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.saleRepo.GetItems(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toSaleResponse(s)
	names := make(map[int64]*entity.Product)
	resp.Items = make([]dto.SaleItemResponse, 0, len(items))
	for _, it := range items {
		p, ok := names[it.ProductID]
		if !ok {
			// Sin el producto el ítem se muestra igual, solo sin código ni nombre.
			p, _ = uc.productRepo.GetByID(ctx, it.ProductID)
			names[it.ProductID] = p
		}
		ir := dto.SaleItemResponse{
			Position:    it.Position,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			DiscountPct: it.DiscountPct,
			Subtotal:    it.Subtotal,
			Discount:    it.Discount,
			Total:       it.Total,
		}
		if p != nil {
			ir.ProductCode = p.Code
			ir.ProductName = p.Name
		}
		resp.Items = append(resp.Items, ir)
	}
	return &resp, nil
}

// ListSales ventas por rango de fechas y usuario, con los totales de la página.
func (uc *QueryUseCase) ListSales(ctx context.Context, in dto.ListSalesRequest) (*dto.SalesListResponse, error) {
	from, to, err := ParseDateRange(in.From, in.To)
	if err != nil {
		return nil, err
	}
	in.DefaultPage()
	filter := repository.SaleFilter{From: from, To: to, Limit: in.Limit, Offset: in.Offset}
	if in.UserID > 0 {
		uid := in.UserID
		filter.UserID = &uid
	}
	list, err := uc.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.SalesListResponse{
		Items:     make([]dto.SaleResponse, 0, len(list)),
		Subtotal:  decimal.Zero,
		Discounts: decimal.Zero,
		Total:     decimal.Zero,
		Page:      dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}
	for _, s := range list {
		out.Items = append(out.Items, toSaleResponse(s))
		out.Subtotal = out.Subtotal.Add(s.Subtotal)
		out.Discounts = out.Discounts.Add(s.Discounts)
		out.Total = out.Total.Add(s.Total)
	}
	return out, nil
}

// TopProducts productos más vendidos en el rango (limit por defecto 10, máximo 100).
func (uc *QueryUseCase) TopProducts(ctx context.Context, fromStr, toStr string, limit int) ([]dto.TopProductResponse, error) {
	from, to, err := ParseDateRange(fromStr, toStr)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	rows, err := uc.saleRepo.TopProducts(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TopProductResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopProductResponse{
			ProductID: r.ProductID,
			Code:      r.Code,
			Name:      r.Name,
			Units:     r.Units,
			Revenue:   r.Revenue,
		})
	}
	return out, nil
}

// ParseDateRange interpreta fechas YYYY-MM-DD (UTC). to es inclusivo para el usuario
// y se devuelve como el inicio del día siguiente (exclusivo).
func ParseDateRange(fromStr, toStr string) (from, to *time.Time, err error) {
	if fromStr != "" {
		t, err := time.Parse(DateLayout, fromStr)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: fecha desde %q", domain.ErrInvalidInput, fromStr)
		}
		from = &t
	}
	if toStr != "" {
		t, err := time.Parse(DateLayout, toStr)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: fecha hasta %q", domain.ErrInvalidInput, toStr)
		}
		t = t.AddDate(0, 0, 1)
		to = &t
	}
	if from != nil && to != nil && !to.After(*from) {
		return nil, nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	return from, to, nil
}

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	return dto.SaleResponse{
		ID:        s.ID,
		Date:      s.Date.Format(time.RFC3339),
		UserID:    s.UserID,
		Subtotal:  s.Subtotal,
		Discounts: s.Discounts,
		Total:     s.Total,
	}
}
