package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// TicketUseCase genera el comprobante PDF que se entrega tras registrar una venta.
type TicketUseCase struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	generator   TicketPDFGenerator
	storeName   string
}

// NewTicketUseCase construye el caso de uso inyectando todas sus dependencias.
func NewTicketUseCase(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	generator TicketPDFGenerator,
	storeName string,
) *TicketUseCase {
	return &TicketUseCase{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		generator:   generator,
		storeName:   storeName,
	}
}

// Ticket devuelve (pdfBytes, filename, nil) o domain.ErrNotFound si la venta no existe.
func (uc *TicketUseCase) Ticket(ctx context.Context, saleID int64) ([]byte, string, error) {
	// ── 1. Cargar venta ───────────────────────────────────────────────────────
	s, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("ticket: obtener venta: %w", err)
	}
	if s == nil {
		return nil, "", domain.ErrNotFound
	}

	// ── 2. Cargar líneas + enriquecer con datos del producto ─────────────────
	items, err := uc.saleRepo.GetItems(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("ticket: obtener líneas: %w", err)
	}
	ticket := &Ticket{StoreName: uc.storeName, Sale: s, Items: make([]TicketItem, 0, len(items))}
	for _, it := range items {
		ti := TicketItem{SaleLineItem: *it, ProductName: fmt.Sprintf("Producto %d", it.ProductID)}
		if p, pErr := uc.productRepo.GetByID(ctx, it.ProductID); pErr == nil && p != nil {
			ti.ProductCode = p.Code
			ti.ProductName = p.Name
		}
		ticket.Items = append(ticket.Items, ti)
	}

	// ── 3. Cajero ─────────────────────────────────────────────────────────────
	if u, uErr := uc.userRepo.GetByID(ctx, s.UserID); uErr == nil && u != nil {
		ticket.Cashier = u.Name
	}

	// ── 4. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err := uc.generator.GenerateTicketPDF(ctx, ticket)
	if err != nil {
		return nil, "", fmt.Errorf("ticket: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("ticket_%06d.pdf", s.ID), nil
}
