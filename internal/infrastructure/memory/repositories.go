package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository           = (*ProductRepo)(nil)
	_ repository.UserRepository              = (*UserRepo)(nil)
	_ repository.SaleRepository              = (*SaleRepo)(nil)
	_ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)
	_ repository.AuditRepository             = (*AuditRepo)(nil)
)

// ── Productos ─────────────────────────────────────────────────────────────────

// ProductRepo productos en memoria.
type ProductRepo struct{ base }

// Create asigna ID; el código es único.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.mutate(ctx, func(s *state) error {
		for _, existing := range s.products {
			if existing.Code == p.Code {
				return domain.ErrDuplicate
			}
		}
		if p.StockQuantity < 0 {
			return fmt.Errorf("%w: stock negativo", domain.ErrInvalidInput)
		}
		if p.MaxDiscountPct.IsNegative() || p.MaxDiscountPct.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("%w: descuento máximo fuera de 0..100", domain.ErrInvalidInput)
		}
		p.ID = s.nextID("products")
		if p.Status == "" {
			p.Status = entity.ProductStatusActive
		}
		s.products[p.ID] = *p
		return nil
	})
}

// GetByID devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	err := r.view(ctx, func(s *state) {
		if p, ok := s.products[id]; ok {
			out = &p
		}
	})
	return out, err
}

// GetByCode devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	var out *entity.Product
	err := r.view(ctx, func(s *state) {
		for _, p := range s.products {
			if p.Code == code {
				out = &p
				return
			}
		}
	})
	return out, err
}

// GetForUpdate dentro de una transacción el escritor único ya tiene el bloqueo.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// DecreaseStock resta solo si alcanza.
func (r *ProductRepo) DecreaseStock(ctx context.Context, id int64, quantity int64) (int64, error) {
	var newStock int64
	err := r.mutate(ctx, func(s *state) error {
		p, ok := s.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		if p.StockQuantity < quantity {
			return domain.ErrInsufficientStock
		}
		p.StockQuantity -= quantity
		p.UpdatedAt = time.Now()
		s.products[id] = p
		newStock = p.StockQuantity
		return nil
	})
	return newStock, err
}

// IncreaseStock suma quantity.
func (r *ProductRepo) IncreaseStock(ctx context.Context, id int64, quantity int64) (int64, error) {
	var newStock int64
	err := r.mutate(ctx, func(s *state) error {
		p, ok := s.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.StockQuantity += quantity
		p.UpdatedAt = time.Now()
		s.products[id] = p
		newStock = p.StockQuantity
		return nil
	})
	return newStock, err
}

// UpdateCost actualiza el costo promedio.
func (r *ProductRepo) UpdateCost(ctx context.Context, id int64, cost decimal.Decimal) error {
	return r.mutate(ctx, func(s *state) error {
		p, ok := s.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.CostPrice = cost
		p.UpdatedAt = time.Now()
		s.products[id] = p
		return nil
	})
}

// List filtra por código o nombre (sin distinguir mayúsculas), ordenado por código.
func (r *ProductRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Product, error) {
	search = strings.ToLower(strings.TrimSpace(search))
	var list []*entity.Product
	err := r.view(ctx, func(s *state) {
		for _, p := range s.products {
			if search != "" && !strings.Contains(strings.ToLower(p.Code), search) && !strings.Contains(strings.ToLower(p.Name), search) {
				continue
			}
			list = append(list, &p)
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return page(list, limit, offset), err
}

// ListCritical productos activos con stock <= mínimo.
func (r *ProductRepo) ListCritical(ctx context.Context) ([]*entity.Product, error) {
	var list []*entity.Product
	err := r.view(ctx, func(s *state) {
		for _, p := range s.products {
			if p.IsActive() && p.IsCritical() {
				list = append(list, &p)
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, err
}

// ── Usuarios ──────────────────────────────────────────────────────────────────

// UserRepo usuarios en memoria.
type UserRepo struct{ base }

// Create asigna ID; el username es único.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	return r.mutate(ctx, func(s *state) error {
		for _, existing := range s.users {
			if existing.Username == u.Username {
				return domain.ErrDuplicate
			}
		}
		u.ID = s.nextID("users")
		s.users[u.ID] = *u
		return nil
	})
}

// GetByID devuelve (nil, nil) si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	var out *entity.User
	err := r.view(ctx, func(s *state) {
		if u, ok := s.users[id]; ok {
			out = &u
		}
	})
	return out, err
}

// ── Ventas ────────────────────────────────────────────────────────────────────

// SaleRepo ventas en memoria.
type SaleRepo struct{ base }

// Create asigna ID a la cabecera.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	return r.mutate(ctx, func(s *state) error {
		if _, ok := s.users[sale.UserID]; !ok {
			return fmt.Errorf("insert sale: usuario %d inexistente", sale.UserID)
		}
		sale.ID = s.nextID("sales")
		s.sales[sale.ID] = *sale
		return nil
	})
}

// CreateItem exige que la cabecera exista (clave foránea).
func (r *SaleRepo) CreateItem(ctx context.Context, item *entity.SaleLineItem) error {
	return r.mutate(ctx, func(s *state) error {
		if _, ok := s.sales[item.SaleID]; !ok {
			return fmt.Errorf("insert sale item: venta %d inexistente", item.SaleID)
		}
		if _, ok := s.products[item.ProductID]; !ok {
			return fmt.Errorf("insert sale item: producto %d inexistente", item.ProductID)
		}
		item.ID = s.nextID("sale_items")
		s.items = append(s.items, *item)
		return nil
	})
}

// GetByID devuelve (nil, nil) si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.view(ctx, func(s *state) {
		if v, ok := s.sales[id]; ok {
			out = &v
		}
	})
	return out, err
}

// GetItems líneas ordenadas por Position.
func (r *SaleRepo) GetItems(ctx context.Context, saleID int64) ([]*entity.SaleLineItem, error) {
	var list []*entity.SaleLineItem
	err := r.view(ctx, func(s *state) {
		for _, it := range s.items {
			if it.SaleID == saleID {
				list = append(list, &it)
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Position < list[j].Position })
	return list, err
}

// List más recientes primero.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	var list []*entity.Sale
	err := r.view(ctx, func(s *state) {
		for _, v := range s.sales {
			if !inRange(v.Date, f.From, f.To) {
				continue
			}
			if f.UserID != nil && v.UserID != *f.UserID {
				continue
			}
			list = append(list, &v)
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].ID > list[j].ID
	})
	return page(list, f.Limit, f.Offset), err
}

// TopProducts agrega unidades e ingreso por producto.
func (r *SaleRepo) TopProducts(ctx context.Context, from, to *time.Time, limit int) ([]repository.TopProductResult, error) {
	acc := make(map[int64]*repository.TopProductResult)
	err := r.view(ctx, func(s *state) {
		for _, it := range s.items {
			sale := s.sales[it.SaleID]
			if !inRange(sale.Date, from, to) {
				continue
			}
			row, ok := acc[it.ProductID]
			if !ok {
				p := s.products[it.ProductID]
				row = &repository.TopProductResult{ProductID: it.ProductID, Code: p.Code, Name: p.Name, Revenue: decimal.Zero}
				acc[it.ProductID] = row
			}
			row.Units += it.Quantity
			row.Revenue = row.Revenue.Add(it.Total)
		}
	})
	out := make([]repository.TopProductResult, 0, len(acc))
	for _, row := range acc {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].ProductID < out[j].ProductID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

// ── Movimientos ───────────────────────────────────────────────────────────────

// InventoryMovementRepo libro de inventario en memoria (solo inserción).
type InventoryMovementRepo struct{ base }

// Create asigna ID.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	return r.mutate(ctx, func(s *state) error {
		if _, ok := s.products[m.ProductID]; !ok {
			return fmt.Errorf("insert movement: producto %d inexistente", m.ProductID)
		}
		if m.SaleID != nil {
			if _, ok := s.sales[*m.SaleID]; !ok {
				return fmt.Errorf("insert movement: venta %d inexistente", *m.SaleID)
			}
		}
		m.ID = s.nextID("inventory_movements")
		s.movements = append(s.movements, *m)
		return nil
	})
}

// ListByProduct más recientes primero.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID int64, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	var list []*entity.InventoryMovement
	err := r.view(ctx, func(s *state) {
		for i := len(s.movements) - 1; i >= 0; i-- {
			m := s.movements[i]
			if m.ProductID == productID && inRange(m.CreatedAt, from, to) {
				list = append(list, &m)
			}
		}
	})
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), err
}

// ListBySale movimientos generados por una venta, en orden de inserción.
func (r *InventoryMovementRepo) ListBySale(ctx context.Context, saleID int64) ([]*entity.InventoryMovement, error) {
	var list []*entity.InventoryMovement
	err := r.view(ctx, func(s *state) {
		for _, m := range s.movements {
			if m.SaleID != nil && *m.SaleID == saleID {
				list = append(list, &m)
			}
		}
	})
	return list, err
}

// TotalsByProduct suma entradas y salidas.
func (r *InventoryMovementRepo) TotalsByProduct(ctx context.Context, productID int64) (repository.MovementTotals, error) {
	var t repository.MovementTotals
	err := r.view(ctx, func(s *state) {
		for _, m := range s.movements {
			if m.ProductID != productID {
				continue
			}
			if m.Type == entity.MovementTypeIN {
				t.In += m.Quantity
			} else {
				t.Out += m.Quantity
			}
		}
	})
	return t, err
}

// ── Auditoría ─────────────────────────────────────────────────────────────────

// AuditRepo bitácora en memoria (solo inserción).
type AuditRepo struct{ base }

// Create asigna ID.
func (r *AuditRepo) Create(ctx context.Context, rec *entity.AuditRecord) error {
	return r.mutate(ctx, func(s *state) error {
		rec.ID = s.nextID("audit_log")
		s.audit = append(s.audit, *rec)
		return nil
	})
}

// ListByEntity registros de una entidad en orden de inserción.
func (r *AuditRepo) ListByEntity(ctx context.Context, entityName string, entityID int64) ([]*entity.AuditRecord, error) {
	var list []*entity.AuditRecord
	err := r.view(ctx, func(s *state) {
		for _, rec := range s.audit {
			if rec.Entity == entityName && rec.EntityID == entityID {
				list = append(list, &rec)
			}
		}
	})
	return list, err
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}

func page[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}
