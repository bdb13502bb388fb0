package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

func sampleTicket() *sales.Ticket {
	d := decimal.RequireFromString
	return &sales.Ticket{
		StoreName: "Tienda Centro",
		Cashier:   "Caja Uno",
		Sale: &entity.Sale{
			ID: 42, Date: time.Date(2026, 3, 10, 15, 4, 0, 0, time.UTC), UserID: 1,
			Subtotal: d("100.00"), Discounts: d("10.00"), Total: d("90.00"),
		},
		Items: []sales.TicketItem{{
			SaleLineItem: entity.SaleLineItem{
				Position: 1, ProductID: 7, Quantity: 2, UnitPrice: d("50.00"), DiscountPct: d("10"),
				Subtotal: d("100.00"), Discount: d("10.00"), Total: d("90.00"),
			},
			ProductCode: "P-001",
			ProductName: "Producto uno",
		}},
	}
}

func TestGenerateTicketPDF_DevuelvePDF(t *testing.T) {
	g := NewTicketGenerator()
	out, err := g.GenerateTicketPDF(context.Background(), sampleTicket())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "debe ser un documento PDF")
}

func TestGenerateTicketPDF_SinVenta(t *testing.T) {
	_, err := NewTicketGenerator().GenerateTicketPDF(context.Background(), &sales.Ticket{})
	assert.Error(t, err)
}

func TestGenerateTicketPDF_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTicketGenerator().GenerateTicketPDF(ctx, sampleTicket())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMoney_FormatoEspanol(t *testing.T) {
	g := NewTicketGenerator()
	assert.Equal(t, "$90,00", g.money(decimal.RequireFromString("90")))
	assert.Equal(t, "$1,51", g.money(decimal.RequireFromString("1.51")))
}
