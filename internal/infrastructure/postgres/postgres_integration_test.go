//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Ventas-api/pkg/config"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Contenedor PostgreSQL compartido
// ──────────────────────────────────────────────────────────────────────────────

type env struct {
	pool   *pgxpool.Pool
	runner *postgres.TxRunner
	inv    *inventory.RegisterMovementUseCase
	uc     *sales.RegisterSaleUseCase
	actor  *entity.User
}

func setupPostgres(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcPostgres.WithDatabase("ventas_test"),
		tcPostgres.WithUsername("ventas"),
		tcPostgres.WithPassword("ventas"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	url, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{Driver: config.DriverPostgres, DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))
	// Segunda vez: el esquema es idempotente.
	require.NoError(t, postgres.Migrate(ctx, pool))

	users := postgres.NewUserRepository(pool)
	products := postgres.NewProductRepository(pool)
	actor := &entity.User{Username: "caja1", Name: "Caja Uno", Role: entity.RoleSecretario}
	require.NoError(t, users.Create(ctx, actor))

	runner := postgres.NewTxRunner(pool)
	inv := inventory.NewRegisterMovementUseCase(runner, products, users)
	uc := sales.NewRegisterSaleUseCase(sales.NewValidator(users, products), runner, inv, logger.Nop(), 5*time.Second)
	return &env{pool: pool, runner: runner, inv: inv, uc: uc, actor: actor}
}

func (e *env) product(t *testing.T, code, price, maxDiscount string, stock int64) *entity.Product {
	t.Helper()
	ctx := context.Background()
	p := &entity.Product{
		Code:           code,
		Name:           "Producto " + code,
		CostPrice:      decimal.RequireFromString("20.00"),
		SalePrice:      decimal.RequireFromString(price),
		StockMinimum:   1,
		MaxDiscountPct: decimal.RequireFromString(maxDiscount),
	}
	require.NoError(t, postgres.NewProductRepository(e.pool).Create(ctx, p))
	_, err := e.inv.RegisterMovement(ctx, inventory.MovementInputDTO{
		ActorID: e.actor.ID, ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: stock, Reason: entity.MovementReasonInitial,
	})
	require.NoError(t, err)
	return p
}

func (e *env) stock(t *testing.T, id int64) int64 {
	t.Helper()
	p, err := postgres.NewProductRepository(e.pool).GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.StockQuantity
}

func pct(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestPostgres_VentaDeReferencia(t *testing.T) {
	e := setupPostgres(t)
	ctx := context.Background()
	p := e.product(t, "P-001", "50.00", "20", 10)

	price := decimal.RequireFromString("50.00")
	res := e.uc.Register(ctx, e.actor.ID, []dto.SaleLineRequest{{ProductID: p.ID, Quantity: 2, UnitPrice: &price, DiscountPct: pct("10")}})
	require.Equal(t, int(domain.CodeOK), res.RC, res.Msg)
	require.NotNil(t, res.SaleID)

	salesRepo := postgres.NewSaleRepository(e.pool)
	s, err := salesRepo.GetByID(ctx, *res.SaleID)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "100", s.Subtotal.String())
	assert.Equal(t, "10", s.Discounts.String())
	assert.Equal(t, "90", s.Total.String())
	assert.Equal(t, int64(8), e.stock(t, p.ID))

	items, err := salesRepo.GetItems(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Position)

	movs, err := postgres.NewInventoryMovementRepository(e.pool).ListBySale(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeOUT, movs[0].Type)
	assert.Equal(t, int64(2), movs[0].Quantity)

	totals, err := postgres.NewInventoryMovementRepository(e.pool).TotalsByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), totals.Balance())

	audit, err := postgres.NewAuditRepository(e.pool).ListByEntity(ctx, entity.AuditEntitySale, s.ID)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.JSONEq(t, `{"subtotal":"100","discounts":"10","total":"90"}`, string(audit[0].After))

	top, err := salesRepo.TopProducts(ctx, nil, nil, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(2), top[0].Units)
	assert.True(t, top[0].Revenue.Equal(decimal.NewFromInt(90)))
}

func TestPostgres_VentasConcurrentesBloqueanLaFila(t *testing.T) {
	e := setupPostgres(t)
	p := e.product(t, "P-002", "10.00", "0", 5)

	var wg sync.WaitGroup
	results := make([]dto.RegisterSaleResult, 2)
	for i, qty := range []int64{3, 4} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = e.uc.Register(context.Background(), e.actor.ID, []dto.SaleLineRequest{{ProductID: p.ID, Quantity: qty, DiscountPct: decimal.Zero}})
		}()
	}
	wg.Wait()

	var ok, short int
	for _, r := range results {
		switch r.RC {
		case int(domain.CodeOK):
			ok++
		case int(domain.CodeInsufficientStock):
			short++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Contains(t, []int64{1, 2}, e.stock(t, p.ID))
}

func TestPostgres_DecreaseStockCondicional(t *testing.T) {
	e := setupPostgres(t)
	ctx := context.Background()
	p := e.product(t, "P-003", "10.00", "0", 2)
	repo := postgres.NewProductRepository(e.pool)

	_, err := repo.DecreaseStock(ctx, p.ID, 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	_, err = repo.DecreaseStock(ctx, 9999, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	n, err := repo.DecreaseStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestPostgres_RollbackNoDejaRastro(t *testing.T) {
	e := setupPostgres(t)
	ctx := context.Background()
	p := e.product(t, "P-004", "10.00", "0", 5)

	err := e.runner.Run(ctx, func(tx repository.TxRepos) error {
		if _, err := tx.Products.DecreaseStock(ctx, p.ID, 5); err != nil {
			return err
		}
		return domain.ErrInvalidInput
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(5), e.stock(t, p.ID))
}

func TestPostgres_FiltrosDeListado(t *testing.T) {
	e := setupPostgres(t)
	ctx := context.Background()
	p := e.product(t, "P-005", "10.00", "0", 10)
	for range 3 {
		res := e.uc.Register(ctx, e.actor.ID, []dto.SaleLineRequest{{ProductID: p.ID, Quantity: 1, DiscountPct: decimal.Zero}})
		require.Equal(t, int(domain.CodeOK), res.RC, res.Msg)
	}
	repo := postgres.NewSaleRepository(e.pool)

	all, err := repo.List(ctx, repository.SaleFilter{UserID: &e.actor.ID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Greater(t, all[0].ID, all[2].ID, "más recientes primero")

	page, err := repo.List(ctx, repository.SaleFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	future := time.Now().Add(time.Hour)
	none, err := repo.List(ctx, repository.SaleFilter{From: &future})
	require.NoError(t, err)
	assert.Empty(t, none)

	hist, err := postgres.NewInventoryMovementRepository(e.pool).ListByProduct(ctx, p.ID, nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Len(t, hist, 4)

	crit, err := postgres.NewProductRepository(e.pool).ListCritical(ctx)
	require.NoError(t, err)
	assert.Empty(t, crit)
}
