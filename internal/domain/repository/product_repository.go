package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (catálogo).
// GetByID y GetForUpdate devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	// GetForUpdate bloquea la fila para escritura hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id int64) (*entity.Product, error)
	// DecreaseStock resta quantity solo si stock_quantity >= quantity; si no, ErrInsufficientStock.
	DecreaseStock(ctx context.Context, id int64, quantity int64) (newStock int64, err error)
	IncreaseStock(ctx context.Context, id int64, quantity int64) (newStock int64, err error)
	UpdateCost(ctx context.Context, id int64, cost decimal.Decimal) error
	List(ctx context.Context, search string, limit, offset int) ([]*entity.Product, error)
	ListCritical(ctx context.Context) ([]*entity.Product, error)
}
