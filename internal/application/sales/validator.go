package sales

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	"github.com/jhoicas/Ventas-api/internal/domain/sale"
)

var hundred = decimal.NewFromInt(100)

// ValidatedLine línea aceptada por el validador, con el producto tal como se observó al validar.
type ValidatedLine struct {
	Product     *entity.Product
	Quantity    int64
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
}

func (l ValidatedLine) calcLine() sale.Line {
	return sale.Line{Quantity: l.Quantity, UnitPrice: l.UnitPrice, DiscountPct: l.DiscountPct}
}

// Validator verifica una solicitud de venta antes de tocar el almacenamiento. Solo lectura.
type Validator struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
}

// NewValidator construye el validador.
func NewValidator(userRepo repository.UserRepository, productRepo repository.ProductRepository) *Validator {
	return &Validator{userRepo: userRepo, productRepo: productRepo}
}

// Validate comprueba actor, líneas y productos. La verificación de stock es orientativa:
// suma las cantidades de líneas repetidas del mismo producto y se repite dentro de la transacción.
func (v *Validator) Validate(ctx context.Context, actorID int64, lines []dto.SaleLineRequest) ([]ValidatedLine, error) {
	user, err := v.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive() {
		return nil, domain.ErrActorInvalid
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: la venta no tiene líneas", domain.ErrInvalidInput)
	}

	products := make(map[int64]*entity.Product, len(lines))
	requested := make(map[int64]int64, len(lines))
	out := make([]ValidatedLine, 0, len(lines))

	for i, l := range lines {
		n := i + 1
		if l.ProductID <= 0 {
			return nil, fmt.Errorf("%w: línea %d sin producto", domain.ErrInvalidInput, n)
		}
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: línea %d: la cantidad debe ser mayor que cero", domain.ErrInvalidInput, n)
		}
		if l.UnitPrice != nil && l.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: línea %d: precio unitario negativo", domain.ErrInvalidInput, n)
		}
		if l.DiscountPct.IsNegative() || l.DiscountPct.GreaterThan(hundred) {
			return nil, fmt.Errorf("%w: línea %d: descuento fuera de rango", domain.ErrInvalidInput, n)
		}
		// Precio y porcentaje se guardan con 2 decimales; más precisión no se redondea en silencio.
		if l.UnitPrice != nil && !fitsMoney(*l.UnitPrice) {
			return nil, fmt.Errorf("%w: línea %d: precio unitario con más de %d decimales", domain.ErrInvalidInput, n, sale.MoneyPlaces)
		}
		if !fitsMoney(l.DiscountPct) {
			return nil, fmt.Errorf("%w: línea %d: descuento con más de %d decimales", domain.ErrInvalidInput, n, sale.MoneyPlaces)
		}

		p, ok := products[l.ProductID]
		if !ok {
			p, err = v.productRepo.GetByID(ctx, l.ProductID)
			if err != nil {
				return nil, err
			}
			if p == nil {
				return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, l.ProductID)
			}
			products[l.ProductID] = p
		}
		if !p.IsActive() {
			return nil, fmt.Errorf("%w: producto %s no disponible para la venta", domain.ErrInvalidInput, p.Code)
		}
		if l.DiscountPct.GreaterThan(p.MaxDiscountPct) {
			return nil, fmt.Errorf("%w: línea %d: descuento %s%% supera el máximo %s%% del producto %s",
				domain.ErrInvalidInput, n, l.DiscountPct.String(), p.MaxDiscountPct.String(), p.Code)
		}
		requested[l.ProductID] += l.Quantity
		if requested[l.ProductID] > p.StockQuantity {
			return nil, fmt.Errorf("%w: producto %s (disponible %d, solicitado %d)",
				domain.ErrInsufficientStock, p.Code, p.StockQuantity, requested[l.ProductID])
		}

		price := p.SalePrice
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		}
		out = append(out, ValidatedLine{
			Product:     p,
			Quantity:    l.Quantity,
			UnitPrice:   price,
			DiscountPct: l.DiscountPct,
		})
	}
	return out, nil
}

// fitsMoney indica si d se representa sin pérdida con sale.MoneyPlaces decimales ("0.500" sí, "0.005" no).
func fitsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(sale.MoneyPlaces))
}
