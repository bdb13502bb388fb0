// Package storage elige el adaptador de persistencia según DB_DRIVER y expone sus repositorios.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/memory"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/Ventas-api/pkg/config"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

// Storage repositorios fuera de transacción más el runner transaccional del mismo adaptador.
type Storage struct {
	Runner    repository.TxRunner
	Products  repository.ProductRepository
	Users     repository.UserRepository
	Sales     repository.SaleRepository
	Movements repository.InventoryMovementRepository
	Audit     repository.AuditRepository

	close func()
}

// Open conecta el driver configurado. En postgres aplica el esquema si AutoMigrate está activo;
// sqlite y memory lo aplican siempre.
func Open(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Storage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			log.Info().Msg("esquema PostgreSQL aplicado")
		}
		return &Storage{
			Runner:    postgres.NewTxRunner(pool),
			Products:  postgres.NewProductRepository(pool),
			Users:     postgres.NewUserRepository(pool),
			Sales:     postgres.NewSaleRepository(pool),
			Movements: postgres.NewInventoryMovementRepository(pool),
			Audit:     postgres.NewAuditRepository(pool),
			close:     pool.Close,
		}, nil

	case config.DriverSQLite:
		st, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("base SQLite abierta")
		return &Storage{
			Runner:    st,
			Products:  st.Products(),
			Users:     st.Users(),
			Sales:     st.Sales(),
			Movements: st.Movements(),
			Audit:     st.Audit(),
			close:     func() { _ = st.Close() },
		}, nil

	case config.DriverMemory:
		st := memory.New()
		log.Warn().Msg("persistencia en memoria: los datos se pierden al reiniciar")
		return &Storage{
			Runner:    st,
			Products:  st.Products(),
			Users:     st.Users(),
			Sales:     st.Sales(),
			Movements: st.Movements(),
			Audit:     st.Audit(),
			close:     func() {},
		}, nil
	}
	return nil, fmt.Errorf("DB_DRIVER desconocido: %q", cfg.Driver)
}

// Close libera conexiones.
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}
