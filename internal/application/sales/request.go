package sales

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// CreateSaleFromRequest adapta el request HTTP al caso de uso CreateSale.
func (uc *CreateSaleUseCase) CreateSaleFromRequest(ctx context.Context, employeeID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	input := CreateSaleInput{
		EmployeeID:    employeeID,
		ClientID:      in.ClientID,
		PaymentMethod: in.PaymentMethod,
		Note:          in.Note,
		Items:         make([]SaleItemInput, 0, len(in.Items)),
	}
	for _, it := range in.Items {
		input.Items = append(input.Items, SaleItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	sale, err := uc.CreateSale(ctx, input)
	if err != nil {
		return nil, err
	}
	return ToSaleResponse(sale), nil
}

// ToSaleResponse convierte la entidad en el DTO de respuesta.
func ToSaleResponse(sale *entity.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            sale.ID,
		CreatedAt:     sale.CreatedAt,
		ClientID:      sale.ClientID,
		EmployeeID:    sale.EmployeeID,
		PaymentMethod: sale.PaymentMethod,
		Note:          sale.Note,
		Total:         sale.Total,
		Items:         make([]dto.SaleLineItemResponse, 0, len(sale.Items)),
	}
	for _, it := range sale.Items {
		resp.Items = append(resp.Items, dto.SaleLineItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	return resp
}
