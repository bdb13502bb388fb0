package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
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

const productColumns = `id, code, name, cost_price, sale_price, stock_quantity, stock_minimum, max_discount_pct, status, created_at, updated_at`

// ProductRepo catálogo sobre SQLite.
type ProductRepo struct {
	q Querier
}

// Create inserta y asigna product.ID.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	if p.Status == "" {
		p.Status = entity.ProductStatusActive
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO products (code, name, cost_price, sale_price, stock_quantity, stock_minimum, max_discount_pct, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		p.Code, p.Name, p.CostPrice.String(), p.SalePrice.String(), p.StockQuantity, p.StockMinimum,
		p.MaxDiscountPct.String(), p.Status, fmtTime(now), fmtTime(now),
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
}

// GetByCode devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE code = ?`, code)
}

// GetForUpdate en SQLite la transacción IMMEDIATE ya tiene el bloqueo de escritura de toda la base.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// DecreaseStock resta solo si stock_quantity >= quantity.
func (r *ProductRepo) DecreaseStock(ctx context.Context, id int64, quantity int64) (int64, error) {
	var newStock int64
	err := r.q.QueryRowContext(ctx, `
		UPDATE products SET stock_quantity = stock_quantity - ?, updated_at = ?
		WHERE id = ? AND stock_quantity >= ?
		RETURNING stock_quantity`,
		quantity, fmtTime(time.Time{}), id, quantity,
	).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			p, getErr := r.GetByID(ctx, id)
			if getErr != nil {
				return 0, getErr
			}
			if p == nil {
				return 0, domain.ErrNotFound
			}
			return 0, domain.ErrInsufficientStock
		}
		return 0, fmt.Errorf("decrease stock: %w", err)
	}
	return newStock, nil
}

// IncreaseStock suma quantity.
func (r *ProductRepo) IncreaseStock(ctx context.Context, id int64, quantity int64) (int64, error) {
	var newStock int64
	err := r.q.QueryRowContext(ctx, `
		UPDATE products SET stock_quantity = stock_quantity + ?, updated_at = ?
		WHERE id = ?
		RETURNING stock_quantity`,
		quantity, fmtTime(time.Time{}), id,
	).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("increase stock: %w", err)
	}
	return newStock, nil
}

// UpdateCost actualiza el costo promedio.
func (r *ProductRepo) UpdateCost(ctx context.Context, id int64, cost decimal.Decimal) error {
	res, err := r.q.ExecContext(ctx, `UPDATE products SET cost_price = ?, updated_at = ? WHERE id = ?`,
		cost.String(), fmtTime(time.Time{}), id)
	if err != nil {
		return fmt.Errorf("update cost: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List filtra por código o nombre (LIKE no distingue mayúsculas en ASCII), ordenado por código.
func (r *ProductRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if search = strings.TrimSpace(search); search != "" {
		query += ` WHERE code LIKE ? OR name LIKE ?`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY code LIMIT ? OFFSET ?`
	args = append(args, limitOrAll(limit), offset)
	return r.list(ctx, query, args...)
}

// ListCritical productos activos con stock <= mínimo.
func (r *ProductRepo) ListCritical(ctx context.Context) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products
		WHERE status = 'active' AND stock_quantity <= stock_minimum ORDER BY code`)
}

func (r *ProductRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*entity.Product, error) {
	var p entity.Product
	var createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.CostPrice, &p.SalePrice, &p.StockQuantity,
		&p.StockMinimum, &p.MaxDiscountPct, &p.Status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// ── Usuarios ──────────────────────────────────────────────────────────────────

// UserRepo usuarios sobre SQLite.
type UserRepo struct {
	q Querier
}

// Create inserta y asigna user.ID.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	if u.Status == "" {
		u.Status = entity.UserStatusActive
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO users (username, name, role, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		u.Username, u.Name, u.Role, u.Status, fmtTime(now), fmtTime(now),
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	var u entity.User
	var createdAt, updatedAt string
	err := r.q.QueryRowContext(ctx, `
		SELECT id, username, name, role, status, created_at, updated_at
		FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.Name, &u.Role, &u.Status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// ── Ventas ────────────────────────────────────────────────────────────────────

const saleColumns = `id, date, user_id, subtotal, discounts, total, created_at`

// SaleRepo libro de ventas sobre SQLite.
type SaleRepo struct {
	q Querier
}

// Create inserta la cabecera y asigna sale.ID.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO sales (date, user_id, subtotal, discounts, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		fmtTime(s.Date), s.UserID, s.Subtotal.String(), s.Discounts.String(), s.Total.String(), fmtTime(s.CreatedAt),
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateItem inserta una línea y asigna item.ID.
func (r *SaleRepo) CreateItem(ctx context.Context, it *entity.SaleLineItem) error {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO sale_items (sale_id, position, product_id, quantity, unit_price, discount_pct, subtotal, discount, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		it.SaleID, it.Position, it.ProductID, it.Quantity, it.UnitPrice.String(), it.DiscountPct.String(),
		it.Subtotal.String(), it.Discount.String(), it.Total.String(),
	).Scan(&it.ID)
	if err != nil {
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// GetItems líneas ordenadas por posición.
func (r *SaleRepo) GetItems(ctx context.Context, saleID int64) ([]*entity.SaleLineItem, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, sale_id, position, product_id, quantity, unit_price, discount_pct, subtotal, discount, total
		FROM sale_items WHERE sale_id = ? ORDER BY position`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleLineItem
	for rows.Next() {
		var it entity.SaleLineItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.Position, &it.ProductID, &it.Quantity,
			&it.UnitPrice, &it.DiscountPct, &it.Subtotal, &it.Discount, &it.Total); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// List más recientes primero.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	where, args := dateRange("date", f.From, f.To)
	if f.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *f.UserID)
	}
	query := `SELECT ` + saleColumns + ` FROM sales`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limitOrAll(f.Limit), f.Offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// TopProducts agrega en Go: SUM sobre TEXT en SQLite pasaría por REAL y perdería precisión.
func (r *SaleRepo) TopProducts(ctx context.Context, from, to *time.Time, limit int) ([]repository.TopProductResult, error) {
	where, args := dateRange("s.date", from, to)
	query := `
		SELECT p.id, p.code, p.name, i.quantity, i.total
		FROM sale_items i
		JOIN sales s    ON s.id = i.sale_id
		JOIN products p ON p.id = i.product_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sales.TopProducts: %w", err)
	}
	defer rows.Close()

	acc := make(map[int64]*repository.TopProductResult)
	for rows.Next() {
		var (
			row   repository.TopProductResult
			qty   int64
			total decimal.Decimal
		)
		if err := rows.Scan(&row.ProductID, &row.Code, &row.Name, &qty, &total); err != nil {
			return nil, fmt.Errorf("sales.TopProducts scan: %w", err)
		}
		cur, ok := acc[row.ProductID]
		if !ok {
			row.Revenue = decimal.Zero
			cur = &row
			acc[row.ProductID] = cur
		}
		cur.Units += qty
		cur.Revenue = cur.Revenue.Add(total)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sales.TopProducts rows: %w", err)
	}

	results := make([]repository.TopProductResult, 0, len(acc))
	for _, v := range acc {
		results = append(results, *v)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Units != results[j].Units {
			return results[i].Units > results[j].Units
		}
		if !results[i].Revenue.Equal(results[j].Revenue) {
			return results[i].Revenue.GreaterThan(results[j].Revenue)
		}
		return results[i].ProductID < results[j].ProductID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func scanSale(row scanner) (*entity.Sale, error) {
	var s entity.Sale
	var date, createdAt string
	if err := row.Scan(&s.ID, &date, &s.UserID, &s.Subtotal, &s.Discounts, &s.Total, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if s.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func dateRange(column string, from, to *time.Time) ([]string, []any) {
	var where []string
	var args []any
	if from != nil {
		where = append(where, column+" >= ?")
		args = append(args, fmtTime(*from))
	}
	if to != nil {
		where = append(where, column+" < ?")
		args = append(args, fmtTime(*to))
	}
	return where, args
}

// ── Movimientos ───────────────────────────────────────────────────────────────

const movementColumns = `id, transaction_id, product_id, type, quantity, unit_cost, unit_price, reason, sale_id, created_by, created_at`

// InventoryMovementRepo libro de inventario (solo inserción).
type InventoryMovementRepo struct {
	q Querier
}

// Create inserta y asigna m.ID.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.TransactionID == "" {
		m.TransactionID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	var saleID sql.NullInt64
	if m.SaleID != nil {
		saleID = sql.NullInt64{Int64: *m.SaleID, Valid: true}
	}
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO inventory_movements (transaction_id, product_id, type, quantity, unit_cost, unit_price, reason, sale_id, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		m.TransactionID, m.ProductID, m.Type, m.Quantity, m.UnitCost.String(), m.UnitPrice.String(),
		m.Reason, saleID, m.CreatedBy, fmtTime(m.CreatedAt),
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// ListByProduct más recientes primero, [from, to).
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID int64, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	where, args := dateRange("created_at", from, to)
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE product_id = ?`
	for _, cond := range where {
		query += " AND " + cond
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append([]any{productID}, args...)
	args = append(args, limitOrAll(limit), offset)
	return r.list(ctx, query, args...)
}

// ListBySale movimientos de una venta en orden de inserción.
func (r *InventoryMovementRepo) ListBySale(ctx context.Context, saleID int64) ([]*entity.InventoryMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM inventory_movements WHERE sale_id = ? ORDER BY id`, saleID)
}

// TotalsByProduct suma entradas y salidas (cantidades enteras: SUM exacto).
func (r *InventoryMovementRepo) TotalsByProduct(ctx context.Context, productID int64) (repository.MovementTotals, error) {
	var t repository.MovementTotals
	err := r.q.QueryRowContext(ctx, `
		SELECT
		    COALESCE(SUM(CASE WHEN type = 'IN'  THEN quantity END), 0),
		    COALESCE(SUM(CASE WHEN type = 'OUT' THEN quantity END), 0)
		FROM inventory_movements WHERE product_id = ?`, productID,
	).Scan(&t.In, &t.Out)
	if err != nil {
		return t, fmt.Errorf("movement totals: %w", err)
	}
	return t, nil
}

func (r *InventoryMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		var saleID sql.NullInt64
		var createdAt string
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.ProductID, &m.Type, &m.Quantity,
			&m.UnitCost, &m.UnitPrice, &m.Reason, &saleID, &m.CreatedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if saleID.Valid {
			id := saleID.Int64
			m.SaleID = &id
		}
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// ── Auditoría ─────────────────────────────────────────────────────────────────

// AuditRepo bitácora (solo inserción).
type AuditRepo struct {
	q Querier
}

// Create inserta y asigna rec.ID.
func (r *AuditRepo) Create(ctx context.Context, rec *entity.AuditRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO audit_log (entity, operation, user_id, entity_id, before, after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		rec.Entity, rec.Operation, rec.UserID, rec.EntityID,
		nullJSON(rec.Before), nullJSON(rec.After), fmtTime(rec.CreatedAt),
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// ListByEntity registros en orden de inserción.
func (r *AuditRepo) ListByEntity(ctx context.Context, entityName string, entityID int64) ([]*entity.AuditRecord, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, entity, operation, user_id, entity_id, before, after, created_at
		FROM audit_log WHERE entity = ? AND entity_id = ? ORDER BY id`, entityName, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditRecord
	for rows.Next() {
		var rec entity.AuditRecord
		var before, after sql.NullString
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Entity, &rec.Operation, &rec.UserID, &rec.EntityID,
			&before, &after, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		if before.Valid {
			rec.Before = []byte(before.String)
		}
		if after.Valid {
			rec.After = []byte(after.String)
		}
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}

func nullJSON(raw []byte) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}
