package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// MovementTotals agregados de movimientos de un producto.
type MovementTotals struct {
	In  int64
	Out int64
}

// Balance es el stock que resulta de plegar los movimientos.
func (t MovementTotals) Balance() int64 {
	return t.In - t.Out
}

// InventoryMovementRepository define el puerto de persistencia para el libro de inventario (solo inserción).
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	// ListByProduct devuelve los movimientos más recientes primero; from inclusivo, to exclusivo.
	ListByProduct(ctx context.Context, productID int64, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
	ListBySale(ctx context.Context, saleID int64) ([]*entity.InventoryMovement, error)
	TotalsByProduct(ctx context.Context, productID int64) (MovementTotals, error)
}
