package repository

import "context"

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Products  ProductRepository
	Movements InventoryMovementRepository
	Sales     SaleRepository
	Audit     AuditRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn retorna nil, Rollback en cualquier otro caso.
// Las escrituras hechas a través de TxRepos solo son visibles para otros lectores tras el Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx TxRepos) error) error
}
