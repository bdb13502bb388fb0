package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo bitácora de auditoría (audit_log), solo inserción.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create inserta el registro y asigna record.ID.
func (r *AuditRepo) Create(ctx context.Context, record *entity.AuditRecord) error {
	query := `
		INSERT INTO audit_log (entity, operation, user_id, entity_id, before, after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		record.Entity, record.Operation, record.UserID, record.EntityID,
		jsonOrNil(record.Before), jsonOrNil(record.After), nullTime(record.CreatedAt),
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// ListByEntity registros de una entidad en orden de inserción.
func (r *AuditRepo) ListByEntity(ctx context.Context, entityName string, entityID int64) ([]*entity.AuditRecord, error) {
	query := `
		SELECT id, entity, operation, user_id, entity_id, before, after, created_at
		FROM audit_log WHERE entity = $1 AND entity_id = $2
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, entityName, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditRecord
	for rows.Next() {
		var rec entity.AuditRecord
		var before, after []byte
		if err := rows.Scan(&rec.ID, &rec.Entity, &rec.Operation, &rec.UserID, &rec.EntityID,
			&before, &after, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.Before, rec.After = before, after
		list = append(list, &rec)
	}
	return list, rows.Err()
}

// jsonOrNil envía NULL en vez de un jsonb vacío (inválido).
func jsonOrNil(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
