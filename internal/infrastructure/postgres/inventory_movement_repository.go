package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `id, transaction_id::text, product_id, type, quantity, unit_cost, unit_price, reason, sale_id, created_by, created_at`

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario y asigna movement.ID.
func (r *InventoryMovementRepo) Create(ctx context.Context, movement *entity.InventoryMovement) error {
	if movement.TransactionID == "" {
		movement.TransactionID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (transaction_id, product_id, type, quantity, unit_cost, unit_price, reason, sale_id, created_by, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()))
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		movement.TransactionID, movement.ProductID, movement.Type, movement.Quantity,
		movement.UnitCost, movement.UnitPrice, movement.Reason, movement.SaleID,
		movement.CreatedBy, nullTime(movement.CreatedAt),
	).Scan(&movement.ID, &movement.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("create inventory movement: referencia inexistente: %w", err)
		}
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// ListByProduct lista movimientos de un producto en [from, to), más recientes primero.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID int64, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE product_id = $1`
	where, args := dateRangeWhere("created_at", from, to, []any{productID})
	for _, cond := range where {
		query += " AND " + cond
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limitOrAll(limit), offset)
	return r.list(ctx, query, args...)
}

// ListBySale movimientos generados por una venta, en orden de inserción.
func (r *InventoryMovementRepo) ListBySale(ctx context.Context, saleID int64) ([]*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE sale_id = $1 ORDER BY id`
	return r.list(ctx, query, saleID)
}

// TotalsByProduct suma entradas y salidas del producto.
func (r *InventoryMovementRepo) TotalsByProduct(ctx context.Context, productID int64) (repository.MovementTotals, error) {
	query := `
		SELECT
		    COALESCE(SUM(quantity) FILTER (WHERE type = 'IN'), 0),
		    COALESCE(SUM(quantity) FILTER (WHERE type = 'OUT'), 0)
		FROM inventory_movements WHERE product_id = $1`
	var t repository.MovementTotals
	if err := r.q.QueryRow(ctx, query, productID).Scan(&t.In, &t.Out); err != nil {
		return t, fmt.Errorf("movement totals: %w", err)
	}
	return t, nil
}

func (r *InventoryMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var m entity.InventoryMovement
	err := row.Scan(&m.ID, &m.TransactionID, &m.ProductID, &m.Type, &m.Quantity,
		&m.UnitCost, &m.UnitPrice, &m.Reason, &m.SaleID, &m.CreatedBy, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
