// Package pdf genera el ticket (comprobante) de una venta con Maroto v2.
//
// Layout:
//
//	┌──────────────────────────────────────────────┐
//	│  Nombre del local        │  Ticket N° + Fecha│
//	│  ──────────────────────────────────────────  │
//	│  Cajero                                      │
//	│  ──────────────────────────────────────────  │
//	│  # | Código | Producto | Cant | P.Unit | Desc│
//	│  ──────────────────────────────────────────  │
//	│  Subtotal / Descuentos / TOTAL               │
//	└──────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Ventas-api/internal/application/sales"
)

var _ sales.TicketPDFGenerator = (*TicketGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// TicketGenerator implementa sales.TicketPDFGenerator usando Maroto v2.
type TicketGenerator struct {
	printer *message.Printer
}

// NewTicketGenerator construye el generador; los montos se formatean en español (1.234,50).
func NewTicketGenerator() *TicketGenerator {
	return &TicketGenerator{printer: message.NewPrinter(language.Spanish)}
}

// GenerateTicketPDF genera el PDF y devuelve sus bytes.
func (g *TicketGenerator) GenerateTicketPDF(ctx context.Context, t *sales.Ticket) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t == nil || t.Sale == nil {
		return nil, fmt.Errorf("pdf: ticket sin venta")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Ticket %06d", t.Sale.ID), true).
		WithAuthor(nonEmpty(t.StoreName, "Ventas"), true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(g.headerRow(t))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(cashierRow(t))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableHeaderRow())
	m.AddRows(g.itemRows(t.Items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(t))
	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New("Gracias por su compra.", props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 2}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *TicketGenerator) headerRow(t *sales.Ticket) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(t.StoreName, "Ventas"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New("TICKET DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N° %06d", t.Sale.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+t.Sale.Date.Local().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func cashierRow(t *sales.Ticket) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New("Atendido por: "+nonEmpty(t.Cashier, "—"), props.Text{Size: 8, Top: 2, Color: colorGray}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Código", 2, align.Left),
		h("Producto", 3, align.Left),
		h("Cant.", 1, align.Center),
		h("P. Unit.", 2, align.Right),
		h("Desc.", 1, align.Right),
		h("Total", 2, align.Right),
	)
}

func (g *TicketGenerator) itemRows(items []sales.TicketItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		cell := func(s string, size int, a align.Type) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
		}
		rows = append(rows, row.New(7).Add(
			cell(fmt.Sprint(it.Position), 1, align.Center),
			cell(it.ProductCode, 2, align.Left),
			cell(it.ProductName, 3, align.Left),
			cell(fmt.Sprint(it.Quantity), 1, align.Center),
			cell(g.money(it.UnitPrice), 2, align.Right),
			cell(it.DiscountPct.String()+"%", 1, align.Right),
			cell(g.money(it.Total), 2, align.Right),
		))
	}
	return rows
}

func (g *TicketGenerator) totalsRow(t *sales.Ticket) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 1),
			label("Descuentos:", 7),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 13}),
		),
		col.New(3).Add(
			value(g.money(t.Sale.Subtotal), 1),
			value("-"+g.money(t.Sale.Discounts), 7),
			text.New(g.money(t.Sale.Total), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 13}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// money formatea con separadores locales y dos decimales: 1234.5 → "$1.234,50".
func (g *TicketGenerator) money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return g.printer.Sprintf("$%.2f", f)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
