package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

type env struct {
	store *sqlite.Store
	inv   *inventory.RegisterMovementUseCase
	uc    *sales.RegisterSaleUseCase
	actor *entity.User
}

func setup(t *testing.T) *env {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "ventas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	actor := &entity.User{Username: "caja1", Name: "Caja Uno", Role: entity.RoleSecretario}
	require.NoError(t, st.Users().Create(context.Background(), actor))

	inv := inventory.NewRegisterMovementUseCase(st, st.Products(), st.Users())
	uc := sales.NewRegisterSaleUseCase(sales.NewValidator(st.Users(), st.Products()), st, inv, logger.Nop(), 5*time.Second)
	return &env{store: st, inv: inv, uc: uc, actor: actor}
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
	require.NoError(t, e.store.Products().Create(ctx, p))
	if stock > 0 {
		_, err := e.inv.RegisterMovement(ctx, inventory.MovementInputDTO{
			ActorID: e.actor.ID, ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: stock, Reason: entity.MovementReasonInitial,
		})
		require.NoError(t, err)
	}
	return p
}

func (e *env) stock(t *testing.T, id int64) int64 {
	t.Helper()
	p, err := e.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.StockQuantity
}

func saleLine(productID, qty int64, pct string) dto.SaleLineRequest {
	return dto.SaleLineRequest{ProductID: productID, Quantity: qty, DiscountPct: decimal.RequireFromString(pct)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Venta completa sobre SQLite
// ──────────────────────────────────────────────────────────────────────────────

func TestSQLite_VentaDeReferencia(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	p := e.product(t, "P-001", "50.00", "20", 10)

	res := e.uc.Register(ctx, e.actor.ID, []dto.SaleLineRequest{saleLine(p.ID, 2, "10")})
	require.True(t, res.OK(), res.Msg)

	s, err := e.store.Sales().GetByID(ctx, *res.SaleID)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.True(t, s.Subtotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, s.Discounts.Equal(decimal.NewFromInt(10)))
	assert.True(t, s.Total.Equal(decimal.NewFromInt(90)))
	assert.Equal(t, e.actor.ID, s.UserID)
	assert.Equal(t, int64(8), e.stock(t, p.ID))

	items, err := e.store.Sales().GetItems(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Discount.Equal(decimal.NewFromInt(10)))

	movs, err := e.store.Movements().ListBySale(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	require.NotNil(t, movs[0].SaleID)
	assert.Equal(t, s.ID, *movs[0].SaleID)
	assert.Equal(t, entity.MovementReasonSale, movs[0].Reason)

	totals, err := e.store.Movements().TotalsByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.MovementTotals{In: 10, Out: 2}, totals)

	audit, err := e.store.Audit().ListByEntity(ctx, entity.AuditEntitySale, s.ID)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.JSONEq(t, `{"subtotal":"100","discounts":"10","total":"90"}`, string(audit[0].After))
	assert.Empty(t, audit[0].Before)
}

func TestSQLite_DescuentoSobreElTopeNoEscribe(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	p := e.product(t, "P-002", "50.00", "10", 10)

	res := e.uc.Register(ctx, e.actor.ID, []dto.SaleLineRequest{saleLine(p.ID, 1, "15")})
	assert.Equal(t, int(domain.CodeInvalidInput), res.RC)
	assert.Nil(t, res.SaleID)

	list, err := e.store.Sales().List(ctx, repository.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int64(10), e.stock(t, p.ID))
}

func TestSQLite_VentasConcurrentes(t *testing.T) {
	e := setup(t)
	p := e.product(t, "P-003", "10.00", "0", 5)

	var wg sync.WaitGroup
	results := make([]dto.RegisterSaleResult, 2)
	for i, qty := range []int64{3, 4} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = e.uc.Register(context.Background(), e.actor.ID, []dto.SaleLineRequest{saleLine(p.ID, qty, "0")})
		}()
	}
	wg.Wait()

	rcs := []int{results[0].RC, results[1].RC}
	assert.ElementsMatch(t, []int{int(domain.CodeOK), int(domain.CodeInsufficientStock)}, rcs)
	assert.Contains(t, []int64{1, 2}, e.stock(t, p.ID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacción y repositorios
// ──────────────────────────────────────────────────────────────────────────────

func TestSQLite_RollbackDescartaEscrituras(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	p := e.product(t, "P-004", "10.00", "0", 5)
	boom := errors.New("falla simulada")

	err := e.store.Run(ctx, func(tx repository.TxRepos) error {
		if _, err := tx.Products.DecreaseStock(ctx, p.ID, 5); err != nil {
			return err
		}
		sale := &entity.Sale{Date: time.Now(), UserID: e.actor.ID, Subtotal: decimal.Zero, Discounts: decimal.Zero, Total: decimal.Zero}
		if err := tx.Sales.Create(ctx, sale); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int64(5), e.stock(t, p.ID))

	list, err := e.store.Sales().List(ctx, repository.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSQLite_DecreaseStockCondicional(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	p := e.product(t, "P-005", "10.00", "0", 2)

	_, err := e.store.Products().DecreaseStock(ctx, p.ID, 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	_, err = e.store.Products().DecreaseStock(ctx, 999, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	n, err := e.store.Products().DecreaseStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	crit, err := e.store.Products().ListCritical(ctx)
	require.NoError(t, err)
	require.Len(t, crit, 1)
	assert.Equal(t, "P-005", crit[0].Code)
}

func TestSQLite_CodigoDuplicado(t *testing.T) {
	e := setup(t)
	e.product(t, "P-006", "10.00", "0", 0)
	dup := &entity.Product{Code: "P-006", Name: "Otro", SalePrice: decimal.NewFromInt(1)}
	assert.ErrorIs(t, e.store.Products().Create(context.Background(), dup), domain.ErrDuplicate)
}

func TestSQLite_DescuentoMaximoFueraDeRango(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	for _, pct := range []string{"-0.5", "101"} {
		p := &entity.Product{Code: "X" + pct, Name: "x", SalePrice: decimal.NewFromInt(1), MaxDiscountPct: decimal.RequireFromString(pct)}
		assert.ErrorIs(t, e.store.Products().Create(ctx, p), domain.ErrInvalidInput, pct)
	}
	ok := &entity.Product{Code: "X100", Name: "x", SalePrice: decimal.NewFromInt(1), MaxDiscountPct: decimal.NewFromInt(100)}
	assert.NoError(t, e.store.Products().Create(ctx, ok))
}

func TestSQLite_ListadosYRanking(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	a := e.product(t, "A-1", "10.00", "0", 20)
	b := e.product(t, "B-1", "3.35", "0", 20)

	for _, lines := range [][]dto.SaleLineRequest{
		{saleLine(a.ID, 2, "0"), saleLine(b.ID, 1, "0")},
		{saleLine(b.ID, 3, "0")},
		{saleLine(b.ID, 1, "0")},
	} {
		res := e.uc.Register(ctx, e.actor.ID, lines)
		require.True(t, res.OK(), res.Msg)
	}

	all, err := e.store.Sales().List(ctx, repository.SaleFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Greater(t, all[0].ID, all[1].ID, "más recientes primero")

	page, err := e.store.Sales().List(ctx, repository.SaleFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	other := int64(999)
	none, err := e.store.Sales().List(ctx, repository.SaleFilter{UserID: &other})
	require.NoError(t, err)
	assert.Empty(t, none)

	top, err := e.store.Sales().TopProducts(ctx, nil, nil, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, b.ID, top[0].ProductID)
	assert.Equal(t, int64(5), top[0].Units)
	assert.Equal(t, "16.75", top[0].Revenue.StringFixed(2))
	assert.Equal(t, a.ID, top[1].ProductID)

	past := time.Now().Add(-time.Hour)
	hist, err := e.store.Movements().ListByProduct(ctx, b.ID, &past, nil, 2, 0)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, entity.MovementTypeOUT, hist[0].Type)
	assert.False(t, hist[0].CreatedAt.Before(hist[1].CreatedAt))

	found, err := e.store.Products().List(ctx, "b-", 0, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "B-1", found[0].Code)
}
