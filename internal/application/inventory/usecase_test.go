package inventory_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/memory"
)

func setup(t *testing.T) (*memory.Store, *inventory.RegisterMovementUseCase, *entity.User, *entity.Product) {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	actor := &entity.User{Username: "admin", Name: "Admin", Role: entity.RoleAdmin, Status: entity.UserStatusActive}
	require.NoError(t, st.Users().Create(ctx, actor))
	p := &entity.Product{
		Code:           "P001",
		Name:           "Cuaderno",
		CostPrice:      decimal.RequireFromString("10.00"),
		SalePrice:      decimal.RequireFromString("15.00"),
		StockMinimum:   3,
		MaxDiscountPct: decimal.RequireFromString("5"),
		Status:         entity.ProductStatusActive,
	}
	require.NoError(t, st.Products().Create(ctx, p))
	return st, inventory.NewRegisterMovementUseCase(st, st.Products(), st.Users()), actor, p
}

func cost(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestRegisterMovement_EntradaRecalculaCostoPromedio(t *testing.T) {
	st, uc, actor, p := setup(t)
	ctx := context.Background()

	_, err := uc.RegisterMovement(ctx, inventory.MovementInputDTO{
		ActorID: actor.ID, ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 10, UnitCost: cost("10.00"), Reason: "compra",
	})
	require.NoError(t, err)
	res, err := uc.RegisterMovement(ctx, inventory.MovementInputDTO{
		ActorID: actor.ID, ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 10, UnitCost: cost("20.00"), Reason: "compra",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20), res.NewStock)
	assert.True(t, res.Movement.UnitCost.Equal(decimal.RequireFromString("20.00")))

	got, err := st.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.CostPrice.Equal(decimal.RequireFromString("15")), "costo promedio %s", got.CostPrice)

	audit, err := st.Audit().ListByEntity(ctx, entity.AuditEntityInventoryMovement, res.Movement.ID)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	var before, after map[string]any
	require.NoError(t, json.Unmarshal(audit[0].Before, &before))
	require.NoError(t, json.Unmarshal(audit[0].After, &after))
	assert.EqualValues(t, 10, before["stock_quantity"])
	assert.EqualValues(t, 20, after["stock_quantity"])
}

func TestRegisterMovement_SalidaSinStockSuficiente(t *testing.T) {
	st, uc, actor, p := setup(t)
	ctx := context.Background()
	_, err := uc.RegisterMovement(ctx, inventory.MovementInputDTO{
		ActorID: actor.ID, ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 2, Reason: "saldo inicial",
	})
	require.NoError(t, err)

	_, err = uc.RegisterMovement(ctx, inventory.MovementInputDTO{
		ActorID: actor.ID, ProductID: p.ID, Type: entity.MovementTypeOUT, Quantity: 3, Reason: "merma",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := st.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.StockQuantity)
	movs, err := st.Movements().ListByProduct(ctx, p.ID, nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 1, "la salida rechazada no deja movimiento")
}

func TestRegisterMovement_Validaciones(t *testing.T) {
	_, uc, actor, p := setup(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   inventory.MovementInputDTO
		want error
	}{
		{"tipo desconocido", inventory.MovementInputDTO{ActorID: actor.ID, ProductID: p.ID, Type: "ADJUSTMENT", Quantity: 1, Reason: "x"}, domain.ErrInvalidInput},
		{"cantidad cero", inventory.MovementInputDTO{ActorID: actor.ID, ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 0, Reason: "x"}, domain.ErrInvalidInput},
		{"sin motivo", inventory.MovementInputDTO{ActorID: actor.ID, ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 1, Reason: "  "}, domain.ErrInvalidInput},
		{"costo negativo", inventory.MovementInputDTO{ActorID: actor.ID, ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 1, UnitCost: cost("-1"), Reason: "x"}, domain.ErrInvalidInput},
		{"actor inexistente", inventory.MovementInputDTO{ActorID: 99, ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 1, Reason: "x"}, domain.ErrActorInvalid},
		{"producto inexistente", inventory.MovementInputDTO{ActorID: actor.ID, ProductID: 99, Type: entity.MovementTypeIN, Quantity: 1, Reason: "x"}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.RegisterMovement(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRegisterOUTInTx_ActualizaSnapshotBloqueado(t *testing.T) {
	st, uc, actor, p := setup(t)
	ctx := context.Background()
	_, err := uc.RegisterMovement(ctx, inventory.MovementInputDTO{
		ActorID: actor.ID, ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 5, Reason: "saldo inicial",
	})
	require.NoError(t, err)

	err = st.Run(ctx, func(tx repository.TxRepos) error {
		locked, err := uc.LockProducts(ctx, tx, []int64{p.ID, p.ID})
		require.NoError(t, err)
		require.Len(t, locked, 1)
		sale := &entity.Sale{UserID: actor.ID}
		require.NoError(t, tx.Sales.Create(ctx, sale))

		out := inventory.SaleOutput{SaleID: sale.ID, TransactionID: "tx-1", ActorID: actor.ID, Quantity: 3, UnitPrice: p.SalePrice}
		_, err = uc.RegisterOUTInTx(ctx, tx, locked[p.ID], out)
		require.NoError(t, err)
		assert.Equal(t, int64(2), locked[p.ID].StockQuantity)

		out.Quantity = 3
		_, err = uc.RegisterOUTInTx(ctx, tx, locked[p.ID], out)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := st.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.StockQuantity, "rollback completo")
}

func TestLockProducts_ProductoInexistente(t *testing.T) {
	st, uc, _, p := setup(t)
	ctx := context.Background()
	err := st.Run(ctx, func(tx repository.TxRepos) error {
		_, err := uc.LockProducts(ctx, tx, []int64{p.ID, 404})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterMovementFromRequest(t *testing.T) {
	_, uc, actor, p := setup(t)
	resp, newStock, err := uc.RegisterMovementFromRequest(context.Background(), actor.ID, dto.RegisterMovementRequest{
		ProductID: p.ID, Type: entity.MovementTypeIN, Quantity: 4, Reason: "compra",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), newStock)
	assert.Equal(t, "compra", resp.Reason)
	assert.Equal(t, actor.ID, resp.CreatedBy)
	assert.NotEmpty(t, resp.TransactionID)
}
