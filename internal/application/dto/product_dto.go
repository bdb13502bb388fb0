package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductResponse producto del catálogo tal como lo ve la pantalla de venta.
type ProductResponse struct {
	ID             int64           `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	StockQuantity  int64           `json:"stock_quantity"`
	StockMinimum   int64           `json:"stock_minimum"`
	MaxDiscountPct decimal.Decimal `json:"max_discount_pct"`
	Status         string          `json:"status"`
	Critical       bool            `json:"critical"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProductSearchRequest query de GET /api/products.
type ProductSearchRequest struct {
	Search string `query:"search" validate:"max=100"`
	PageRequest
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
