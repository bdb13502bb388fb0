package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de producto.
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product representa un producto del catálogo.
// StockQuantity es el agregado de sus movimientos de inventario (IN suma, OUT resta) y nunca es negativo.
type Product struct {
	ID             int64
	Code           string // código único
	Name           string
	CostPrice      decimal.Decimal // costo promedio ponderado
	SalePrice      decimal.Decimal // precio de venta
	StockQuantity  int64
	StockMinimum   int64
	MaxDiscountPct decimal.Decimal // tope de descuento por línea, 0..100
	Status         string          // active, inactive
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsActive indica si el producto se puede vender.
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// IsCritical indica si el stock está en o por debajo del mínimo.
func (p *Product) IsCritical() bool {
	return p.StockQuantity <= p.StockMinimum
}
