package sale_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Ventas-api/internal/domain/sale"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Escenario de referencia: 2 x 50.00 con 10% → 100.00 / 10.00 / 90.00.
func TestCalculate_EscenarioDeReferencia(t *testing.T) {
	amounts, totals := sale.Calculate([]sale.Line{
		{Quantity: 2, UnitPrice: dec("50.00"), DiscountPct: dec("10")},
	})

	assert.Len(t, amounts, 1)
	assert.True(t, amounts[0].Subtotal.Equal(dec("100.00")), "subtotal de línea: %s", amounts[0].Subtotal)
	assert.True(t, amounts[0].Discount.Equal(dec("10.00")), "descuento de línea: %s", amounts[0].Discount)
	assert.True(t, amounts[0].Total.Equal(dec("90.00")), "total de línea: %s", amounts[0].Total)

	assert.True(t, totals.Subtotal.Equal(dec("100.00")))
	assert.True(t, totals.Discounts.Equal(dec("10.00")))
	assert.True(t, totals.Total.Equal(dec("90.00")))
}

func TestCalculateLine_RedondeoBancario(t *testing.T) {
	// 1 x 0.25 con 10% → descuento 0.025 → half-even → 0.02
	a := sale.CalculateLine(sale.Line{Quantity: 1, UnitPrice: dec("0.25"), DiscountPct: dec("10")})
	assert.Equal(t, "0.02", a.Discount.StringFixed(2))
	assert.Equal(t, "0.23", a.Total.StringFixed(2))

	// 1 x 0.35 con 10% → descuento 0.035 → half-even → 0.04
	a = sale.CalculateLine(sale.Line{Quantity: 1, UnitPrice: dec("0.35"), DiscountPct: dec("10")})
	assert.Equal(t, "0.04", a.Discount.StringFixed(2))
}

func TestCalculate_TotalIgualSumaDeLineas(t *testing.T) {
	lines := []sale.Line{
		{Quantity: 3, UnitPrice: dec("19.99"), DiscountPct: dec("15")},
		{Quantity: 7, UnitPrice: dec("1.13"), DiscountPct: dec("33.3")},
		{Quantity: 1, UnitPrice: dec("1000"), DiscountPct: dec("0")},
		{Quantity: 12, UnitPrice: dec("0.07"), DiscountPct: dec("100")},
	}
	amounts, totals := sale.Calculate(lines)

	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a.Total)
	}
	assert.True(t, totals.Total.Equal(sum), "total %s != Σ líneas %s", totals.Total, sum)
	assert.True(t, totals.Total.Equal(totals.Subtotal.Sub(totals.Discounts)))

	// Contra la fórmula sin redondeo: la diferencia no supera medio centavo por línea.
	exact := decimal.Zero
	for _, l := range lines {
		factor := decimal.NewFromInt(1).Sub(l.DiscountPct.Div(decimal.NewFromInt(100)))
		exact = exact.Add(decimal.NewFromInt(l.Quantity).Mul(l.UnitPrice).Mul(factor))
	}
	tolerance := dec("0.005").Mul(decimal.NewFromInt(int64(len(lines))))
	assert.True(t, totals.Total.Sub(exact).Abs().LessThanOrEqual(tolerance))
}

func TestCalculate_SinLineas(t *testing.T) {
	amounts, totals := sale.Calculate(nil)
	assert.Empty(t, amounts)
	assert.True(t, totals.Total.IsZero())
}
