package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

func newProduct(t *testing.T, st *Store, code string, stock int64) *entity.Product {
	t.Helper()
	p := &entity.Product{Code: code, Name: code, SalePrice: decimal.NewFromInt(1), CostPrice: decimal.NewFromInt(1), StockQuantity: stock}
	require.NoError(t, st.Products().Create(context.Background(), p))
	return p
}

func TestRun_RollbackDescartaCambios(t *testing.T) {
	st := New()
	ctx := context.Background()
	p := newProduct(t, st, "A", 5)

	boom := errors.New("boom")
	err := st.Run(ctx, func(tx repository.TxRepos) error {
		_, err := tx.Products.DecreaseStock(ctx, p.ID, 2)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := st.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.StockQuantity)
}

func TestRun_LectoresVenSoloDatosConfirmados(t *testing.T) {
	st := New()
	ctx := context.Background()
	p := newProduct(t, st, "A", 5)

	err := st.Run(ctx, func(tx repository.TxRepos) error {
		_, err := tx.Products.DecreaseStock(ctx, p.ID, 3)
		require.NoError(t, err)

		outside, err := st.Products().GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), outside.StockQuantity, "sin lecturas sucias")

		inside, err := tx.Products.GetForUpdate(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), inside.StockQuantity)
		return nil
	})
	require.NoError(t, err)

	got, err := st.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.StockQuantity)
}

func TestRun_EsperaAlEscritorRespetandoElContexto(t *testing.T) {
	st := New()
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = st.Run(context.Background(), func(repository.TxRepos) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := st.Run(ctx, func(repository.TxRepos) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
}

func TestProductRepo_DecreaseStockCondicional(t *testing.T) {
	st := New()
	ctx := context.Background()
	p := newProduct(t, st, "A", 2)

	_, err := st.Products().DecreaseStock(ctx, p.ID, 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	n, err := st.Products().DecreaseStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = st.Products().DecreaseStock(ctx, 99, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepo_CodigoDuplicado(t *testing.T) {
	st := New()
	newProduct(t, st, "A", 0)
	err := st.Products().Create(context.Background(), &entity.Product{Code: "A"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductRepo_DescuentoMaximoFueraDeRango(t *testing.T) {
	st := New()
	for _, pct := range []string{"-1", "100.01", "150"} {
		p := &entity.Product{Code: "D" + pct, Name: "d", SalePrice: decimal.NewFromInt(1), MaxDiscountPct: decimal.RequireFromString(pct)}
		assert.ErrorIs(t, st.Products().Create(context.Background(), p), domain.ErrInvalidInput, pct)
	}
	ok := &entity.Product{Code: "D100", Name: "d", SalePrice: decimal.NewFromInt(1), MaxDiscountPct: decimal.NewFromInt(100)}
	assert.NoError(t, st.Products().Create(context.Background(), ok))
}

func TestSaleRepo_ItemRequiereCabecera(t *testing.T) {
	st := New()
	ctx := context.Background()
	p := newProduct(t, st, "A", 1)
	err := st.Run(ctx, func(tx repository.TxRepos) error {
		return tx.Sales.CreateItem(ctx, &entity.SaleLineItem{SaleID: 42, ProductID: p.ID, Quantity: 1})
	})
	assert.Error(t, err)
}
