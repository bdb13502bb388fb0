package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RegisterMovement(ctx, MovementInputDTO).
// actorID llega del token, nunca del body.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, actorID int64, in dto.RegisterMovementRequest) (*dto.MovementResponse, int64, error) {
	res, err := uc.RegisterMovement(ctx, MovementInputDTO{
		ActorID:   actorID,
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		Reason:    in.Reason,
	})
	if err != nil {
		return nil, 0, err
	}
	out := ToMovementResponse(res.Movement)
	return &out, res.NewStock, nil
}

// ToMovementResponse convierte la entidad al DTO de respuesta.
func ToMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		ProductID:     m.ProductID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		UnitPrice:     m.UnitPrice,
		Reason:        m.Reason,
		SaleID:        m.SaleID,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
}
