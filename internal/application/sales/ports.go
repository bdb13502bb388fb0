package sales

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// InventoryUseCase interfaz para integrar ventas con el libro de inventario.
// Ambas operaciones usan los repositorios de la transacción del caller; si retornan
// error (ej: ErrInsufficientStock) el caller debe hacer rollback.
type InventoryUseCase interface {
	LockProducts(ctx context.Context, tx repository.TxRepos, ids []int64) (map[int64]*entity.Product, error)
	RegisterOUTInTx(ctx context.Context, tx repository.TxRepos, product *entity.Product, out inventory.SaleOutput) (*entity.InventoryMovement, error)
}

// TicketItem línea del ticket con los datos del producto.
type TicketItem struct {
	entity.SaleLineItem
	ProductCode string
	ProductName string
}

// Ticket datos necesarios para el comprobante de una venta.
type Ticket struct {
	StoreName string
	Sale      *entity.Sale
	Cashier   string
	Items     []TicketItem
}

// TicketPDFGenerator genera el PDF del ticket de venta.
type TicketPDFGenerator interface {
	GenerateTicketPDF(ctx context.Context, ticket *Ticket) ([]byte, error)
}
