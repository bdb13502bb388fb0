// Package sale contiene el cálculo monetario de una venta (servicio de dominio).
//
// Regla de redondeo: cada importe de línea se redondea a 2 decimales con
// redondeo bancario (half-even). Los totales de la venta son sumas exactas
// de los importes de línea ya redondeados, de modo que
// Total == Subtotal - Discounts == Σ línea.Total sin deriva.
package sale

import "github.com/shopspring/decimal"

// MoneyPlaces decimales de todos los importes monetarios.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Line entrada del cálculo de una línea.
type Line struct {
	Quantity    int64
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
}

// LineAmounts importes calculados de una línea.
type LineAmounts struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Totals importes agregados de la venta.
type Totals struct {
	Subtotal  decimal.Decimal
	Discounts decimal.Decimal
	Total     decimal.Decimal
}

// Round aplica la regla de redondeo monetario.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(MoneyPlaces)
}

// CalculateLine: Subtotal = Quantity * UnitPrice; Discount = Subtotal * DiscountPct / 100; Total = Subtotal - Discount.
func CalculateLine(l Line) LineAmounts {
	subtotal := Round(decimal.NewFromInt(l.Quantity).Mul(l.UnitPrice))
	discount := Round(subtotal.Mul(l.DiscountPct).Div(hundred))
	return LineAmounts{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}
}

// Calculate devuelve los importes de cada línea (en el mismo orden) y los totales de la venta.
func Calculate(lines []Line) ([]LineAmounts, Totals) {
	amounts := make([]LineAmounts, len(lines))
	totals := Totals{Subtotal: decimal.Zero, Discounts: decimal.Zero}
	for i, l := range lines {
		a := CalculateLine(l)
		amounts[i] = a
		totals.Subtotal = totals.Subtotal.Add(a.Subtotal)
		totals.Discounts = totals.Discounts.Add(a.Discount)
	}
	totals.Total = totals.Subtotal.Sub(totals.Discounts)
	return amounts, totals
}
