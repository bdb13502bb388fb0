package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale representa la cabecera de una venta. Se crea una sola vez junto con sus ítems y no se modifica.
type Sale struct {
	ID        int64
	Date      time.Time
	UserID    int64
	Subtotal  decimal.Decimal
	Discounts decimal.Decimal
	Total     decimal.Decimal
	CreatedAt time.Time
}

// SaleLineItem representa una línea de la venta.
type SaleLineItem struct {
	ID          int64
	SaleID      int64
	Position    int // orden de la línea en la solicitud original
	ProductID   int64
	Quantity    int64
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
	Subtotal    decimal.Decimal // Quantity * UnitPrice
	Discount    decimal.Decimal // Subtotal * DiscountPct / 100
	Total       decimal.Decimal // Subtotal - Discount
}
