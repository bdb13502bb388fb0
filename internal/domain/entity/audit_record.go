package entity

import (
	"encoding/json"
	"time"
)

// Operaciones de auditoría.
const (
	AuditOperationCreate = "CREATE"
)

// Entidades auditadas.
const (
	AuditEntitySale              = "Sale"
	AuditEntityInventoryMovement = "InventoryMovement"
)

// AuditRecord describe una mutación para reportes posteriores. Solo se inserta.
type AuditRecord struct {
	ID        int64
	Entity    string
	Operation string
	UserID    int64
	EntityID  int64
	Before    json.RawMessage
	After     json.RawMessage
	CreatedAt time.Time
}
