package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida
)

// Motivos usados por el sistema.
const (
	MovementReasonSale    = "sale"
	MovementReasonInitial = "saldo inicial"
)

// InventoryMovement representa un asiento del libro de inventario. Solo se inserta, nunca se modifica.
type InventoryMovement struct {
	ID            int64
	TransactionID string // agrupa los movimientos de una misma operación
	ProductID     int64
	Type          string
	Quantity      int64 // siempre positivo; el signo lo da Type
	UnitCost      decimal.Decimal
	UnitPrice     decimal.Decimal
	Reason        string
	SaleID        *int64
	CreatedBy     int64
	CreatedAt     time.Time
}

// SignedQuantity devuelve la cantidad con signo (IN positivo, OUT negativo).
func (m *InventoryMovement) SignedQuantity() int64 {
	if m.Type == MovementTypeOUT {
		return -m.Quantity
	}
	return m.Quantity
}
