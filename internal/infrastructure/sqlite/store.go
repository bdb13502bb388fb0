// Package sqlite implementa los puertos de persistencia sobre SQLite (database/sql + go-sqlite3).
//
// Pensado para instalaciones de una sola caja o desarrollo local: un único escritor,
// transacciones BEGIN IMMEDIATE y esquema migrado al abrir.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

//go:embed schema.sql
var schemaSQL string

var _ repository.TxRunner = (*Store)(nil)

// Querier lo cumplen *sql.DB y *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store base SQLite con sus repositorios.
type Store struct {
	db *sql.DB
}

// New abre (o crea) la base en path y aplica el esquema. ":memory:" crea una base efímera.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	// Una sola conexión: SQLite admite un escritor a la vez y ":memory:" es por conexión.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrar sqlite: %w", err)
	}
	return s, nil
}

func dsn(path string) string {
	params := "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	if path != ":memory:" {
		params += "&_journal_mode=WAL"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + params
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}

// Close cierra la base.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run ejecuta fn en una transacción BEGIN IMMEDIATE: Commit si fn retorna nil, Rollback en otro caso.
func (s *Store) Run(ctx context.Context, fn func(tx repository.TxRepos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(reposFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func reposFor(q Querier) repository.TxRepos {
	return repository.TxRepos{
		Products:  &ProductRepo{q: q},
		Movements: &InventoryMovementRepo{q: q},
		Sales:     &SaleRepo{q: q},
		Audit:     &AuditRepo{q: q},
	}
}

// Products repositorio fuera de transacción (autocommit).
func (s *Store) Products() *ProductRepo { return &ProductRepo{q: s.db} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{q: s.db} }

// Sales repositorio de ventas.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{q: s.db} }

// Movements libro de inventario.
func (s *Store) Movements() *InventoryMovementRepo { return &InventoryMovementRepo{q: s.db} }

// Audit bitácora.
func (s *Store) Audit() *AuditRepo { return &AuditRepo{q: s.db} }

// ── Utilidades ────────────────────────────────────────────────────────────────

// timeLayout ancho fijo: el orden de texto coincide con el cronológico.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func fmtTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha inválida %q: %w", s, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func isCheckViolation(err error) bool {
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.ExtendedCode == sqlite3.ErrConstraintCheck
	}
	return false
}

func limitOrAll(limit int) int {
	if limit <= 0 {
		return -1 // LIMIT -1: sin límite en SQLite
	}
	return limit
}
