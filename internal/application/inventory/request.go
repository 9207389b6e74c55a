package inventory

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RegisterMovement.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, employeeID string, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	mov, err := uc.RegisterMovement(ctx, MovementInput{
		EmployeeID: employeeID,
		ProductID:  in.ProductID,
		Type:       in.Type,
		Quantity:   in.Quantity,
		Note:       in.Note,
	})
	if err != nil {
		return nil, err
	}
	resp := ToMovementResponse(mov)
	return &resp, nil
}

// ToMovementResponse convierte la entidad en el DTO de respuesta.
func ToMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		CreatedAt:   m.CreatedAt,
		Type:        m.Type,
		Quantity:    m.Quantity,
		ProductID:   m.ProductID,
		EmployeeID:  m.EmployeeID,
		Note:        m.Note,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
	}
}
