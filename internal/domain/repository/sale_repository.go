package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// SaleFilter filtros del listado de ventas. From es inclusivo y To exclusivo.
type SaleFilter struct {
	From   *time.Time
	To     *time.Time
	UserID *int64
	Limit  int
	Offset int
}

// TopProductResult fila del ranking de productos más vendidos.
type TopProductResult struct {
	ProductID int64
	Code      string
	Name      string
	Units     int64
	Revenue   decimal.Decimal
}

// SaleRepository define el puerto de persistencia del libro de ventas.
// No hay operaciones de actualización ni borrado: las ventas son inmutables.
type SaleRepository interface {
	// Create inserta la cabecera y asigna sale.ID.
	Create(ctx context.Context, sale *entity.Sale) error
	// CreateItem inserta una línea y asigna item.ID.
	CreateItem(ctx context.Context, item *entity.SaleLineItem) error
	// GetByID devuelve (nil, nil) si la venta no existe.
	GetByID(ctx context.Context, id int64) (*entity.Sale, error)
	// GetItems devuelve las líneas ordenadas por Position.
	GetItems(ctx context.Context, saleID int64) ([]*entity.SaleLineItem, error)
	// List devuelve las ventas más recientes primero.
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, error)
	// TopProducts ordena por unidades vendidas (desc) y luego por ingreso. from/to como en SaleFilter.
	TopProducts(ctx context.Context, from, to *time.Time, limit int) ([]TopProductResult, error)
}
