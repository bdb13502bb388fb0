// Package memory implementa los puertos de persistencia en memoria (tests y desarrollo).
//
// Las transacciones se serializan con un único escritor: cada Run trabaja sobre una copia
// del estado confirmado y la publica solo al hacer Commit. Los lectores fuera de una
// transacción ven siempre el último estado confirmado.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

// Store estado en memoria.
type Store struct {
	mu        sync.RWMutex  // protege committed
	writer    chan struct{} // semáforo de un solo escritor
	committed *state
}

type state struct {
	seq       map[string]int64
	users     map[int64]entity.User
	products  map[int64]entity.Product
	sales     map[int64]entity.Sale
	items     []entity.SaleLineItem
	movements []entity.InventoryMovement
	audit     []entity.AuditRecord
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		writer: make(chan struct{}, 1),
		committed: &state{
			seq:      make(map[string]int64),
			users:    make(map[int64]entity.User),
			products: make(map[int64]entity.Product),
			sales:    make(map[int64]entity.Sale),
		},
	}
}

func (s *state) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func (s *state) clone() *state {
	c := &state{
		seq:       make(map[string]int64, len(s.seq)),
		users:     make(map[int64]entity.User, len(s.users)),
		products:  make(map[int64]entity.Product, len(s.products)),
		sales:     make(map[int64]entity.Sale, len(s.sales)),
		items:     append([]entity.SaleLineItem(nil), s.items...),
		movements: append([]entity.InventoryMovement(nil), s.movements...),
		audit:     append([]entity.AuditRecord(nil), s.audit...),
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	return c
}

// Run ejecuta fn con repositorios sobre una copia privada del estado; Commit si fn retorna nil.
// Espera su turno de escritor respetando la cancelación de ctx.
func (st *Store) Run(ctx context.Context, fn func(tx repository.TxRepos) error) error {
	return st.write(ctx, func(staged *state) error {
		return fn(st.reposFor(staged))
	})
}

func (st *Store) write(ctx context.Context, fn func(staged *state) error) error {
	select {
	case st.writer <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("begin transaction: %w", ctx.Err())
	}
	defer func() { <-st.writer }()

	st.mu.RLock()
	staged := st.committed.clone()
	st.mu.RUnlock()

	if err := fn(staged); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	st.mu.Lock()
	st.committed = staged
	st.mu.Unlock()
	return nil
}

func (st *Store) read(fn func(s *state)) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	fn(st.committed)
}

func (st *Store) reposFor(staged *state) repository.TxRepos {
	b := base{store: st, tx: staged}
	return repository.TxRepos{
		Products:  &ProductRepo{b},
		Movements: &InventoryMovementRepo{b},
		Sales:     &SaleRepo{b},
		Audit:     &AuditRepo{b},
	}
}

// Products repositorio de productos fuera de transacción (cada escritura es su propio commit).
func (st *Store) Products() *ProductRepo { return &ProductRepo{base{store: st}} }

// Users repositorio de usuarios.
func (st *Store) Users() *UserRepo { return &UserRepo{base{store: st}} }

// Sales repositorio de ventas (lectura de datos confirmados).
func (st *Store) Sales() *SaleRepo { return &SaleRepo{base{store: st}} }

// Movements repositorio del libro de inventario.
func (st *Store) Movements() *InventoryMovementRepo { return &InventoryMovementRepo{base{store: st}} }

// Audit repositorio de auditoría.
func (st *Store) Audit() *AuditRepo { return &AuditRepo{base{store: st}} }

// base enruta lecturas y escrituras: dentro de una transacción al estado preparado,
// fuera de ella al estado confirmado (con autocommit).
type base struct {
	store *Store
	tx    *state
}

func (b base) view(ctx context.Context, fn func(s *state)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.tx != nil {
		fn(b.tx)
		return nil
	}
	b.store.read(fn)
	return nil
}

func (b base) mutate(ctx context.Context, fn func(s *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.tx != nil {
		return fn(b.tx)
	}
	return b.store.write(ctx, fn)
}
