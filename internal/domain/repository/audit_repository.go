package repository

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// AuditRepository define el puerto de la bitácora de auditoría (solo inserción).
type AuditRepository interface {
	Create(ctx context.Context, record *entity.AuditRecord) error
	ListByEntity(ctx context.Context, entityName string, entityID int64) ([]*entity.AuditRecord, error)
}
