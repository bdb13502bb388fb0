package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo libro de ventas sobre PostgreSQL. Solo inserta y consulta.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera y asigna sale.ID.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (date, user_id, subtotal, discounts, total, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		sale.Date, sale.UserID, sale.Subtotal, sale.Discounts, sale.Total, nullTime(sale.CreatedAt),
	).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateItem inserta una línea y asigna item.ID.
func (r *SaleRepo) CreateItem(ctx context.Context, item *entity.SaleLineItem) error {
	query := `
		INSERT INTO sale_items (sale_id, position, product_id, quantity, unit_price, discount_pct, subtotal, discount, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		item.SaleID, item.Position, item.ProductID, item.Quantity, item.UnitPrice,
		item.DiscountPct, item.Subtotal, item.Discount, item.Total,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de una venta.
func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*entity.Sale, error) {
	query := `
		SELECT id, date, user_id, subtotal, discounts, total, created_at
		FROM sales WHERE id = $1`
	s, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// GetItems líneas de la venta en el orden de la solicitud.
func (r *SaleRepo) GetItems(ctx context.Context, saleID int64) ([]*entity.SaleLineItem, error) {
	query := `
		SELECT id, sale_id, position, product_id, quantity, unit_price, discount_pct, subtotal, discount, total
		FROM sale_items WHERE sale_id = $1
		ORDER BY position`
	rows, err := r.q.Query(ctx, query, saleID)
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

// List ventas más recientes primero, con filtros opcionales de fecha y usuario.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	query := `
		SELECT id, date, user_id, subtotal, discounts, total, created_at
		FROM sales`
	where, args := dateRangeWhere("date", f.From, f.To, nil)
	if f.UserID != nil {
		args = append(args, *f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY date DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limitOrAll(f.Limit), f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
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

// TopProducts ranking por unidades vendidas; el ingreso es la suma de los totales de línea.
func (r *SaleRepo) TopProducts(ctx context.Context, from, to *time.Time, limit int) ([]repository.TopProductResult, error) {
	where, args := dateRangeWhere("s.date", from, to, nil)
	query := `
	SELECT
	    p.id,
	    p.code,
	    p.name,
	    SUM(i.quantity)  AS units,
	    SUM(i.total)     AS revenue
	FROM sale_items i
	JOIN sales s    ON s.id = i.sale_id
	JOIN products p ON p.id = i.product_id`
	if len(where) > 0 {
		query += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(`
	GROUP BY p.id, p.code, p.name
	ORDER BY units DESC, revenue DESC, p.id
	LIMIT $%d`, len(args)+1)
	args = append(args, limitOrAll(limit))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sales.TopProducts: %w", err)
	}
	defer rows.Close()

	results := []repository.TopProductResult{}
	for rows.Next() {
		var item repository.TopProductResult
		if err := rows.Scan(&item.ProductID, &item.Code, &item.Name, &item.Units, &item.Revenue); err != nil {
			return nil, fmt.Errorf("sales.TopProducts scan: %w", err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sales.TopProducts rows: %w", err)
	}
	return results, nil
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	if err := row.Scan(&s.ID, &s.Date, &s.UserID, &s.Subtotal, &s.Discounts, &s.Total, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// dateRangeWhere arma las condiciones [from, to) numerando los placeholders a continuación de args.
func dateRangeWhere(column string, from, to *time.Time, args []any) ([]string, []any) {
	var where []string
	if from != nil {
		args = append(args, *from)
		where = append(where, fmt.Sprintf("%s >= $%d", column, len(args)))
	}
	if to != nil {
		args = append(args, *to)
		where = append(where, fmt.Sprintf("%s < $%d", column, len(args)))
	}
	return where, args
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
