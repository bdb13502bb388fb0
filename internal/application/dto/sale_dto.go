package dto

import "github.com/shopspring/decimal"

// SaleLineRequest línea de la solicitud de venta.
// UnitPrice nil toma el precio de venta del catálogo. Sin tags validate: el validador de
// ventas aplica las reglas en orden (actor, líneas, producto, tope, stock) y decide el rc.
type SaleLineRequest struct {
	ProductID   int64            `json:"product_id"`
	Quantity    int64            `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountPct decimal.Decimal  `json:"discount_pct"`
}

// RegisterSaleRequest body para POST /api/sales. El actor sale del token, nunca del body.
type RegisterSaleRequest struct {
	Lines []SaleLineRequest `json:"lines"`
}

// RegisterSaleResult resultado del registro: rc numérico y id de la venta (nil si rc != 0).
type RegisterSaleResult struct {
	RC     int    `json:"rc"`
	SaleID *int64 `json:"sale_id"`
	Msg    string `json:"msg,omitempty"`
}

// OK indica registro exitoso.
func (r RegisterSaleResult) OK() bool {
	return r.RC == 0
}

// SaleItemResponse línea de venta en respuestas.
type SaleItemResponse struct {
	Position    int             `json:"position"`
	ProductID   int64           `json:"product_id"`
	ProductCode string          `json:"product_code,omitempty"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

// SaleResponse venta con detalle para GET /api/sales/:id.
type SaleResponse struct {
	ID        int64              `json:"id"`
	Date      string             `json:"date"`
	UserID    int64              `json:"user_id"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	Discounts decimal.Decimal    `json:"discounts"`
	Total     decimal.Decimal    `json:"total"`
	Items     []SaleItemResponse `json:"items,omitempty"`
}

// ListSalesRequest filtros en query de GET /api/sales. Fechas en formato YYYY-MM-DD.
type ListSalesRequest struct {
	From   string `query:"from"`
	To     string `query:"to"`
	UserID int64  `query:"user_id" validate:"omitempty,gt=0"`
	PageRequest
}

// SalesListResponse listado paginado de ventas.
type SalesListResponse struct {
	Items     []SaleResponse  `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discounts decimal.Decimal `json:"discounts"`
	Total     decimal.Decimal `json:"total"` // ingreso del período listado
	Page      PageResponse    `json:"page"`
}

// TopProductResponse fila del reporte de productos más vendidos.
type TopProductResponse struct {
	ProductID int64           `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Units     int64           `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}
