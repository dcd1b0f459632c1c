package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gfranca/retaguarda-api/internal/application/dto"
	"github.com/gfranca/retaguarda-api/internal/application/estoque"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
)

// EstoqueHandler trata as requisições do razão de estoque (protegido).
type EstoqueHandler struct {
	uc *estoque.UseCase
}

// NewEstoqueHandler constrói o handler.
func NewEstoqueHandler(uc *estoque.UseCase) *EstoqueHandler {
	return &EstoqueHandler{uc: uc}
}

// RegisterMovement godoc
// @Summary      Registrar movimento de estoque
// @Tags         estoque
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID do produto"
// @Param        body  body  dto.MovementRequest  true  "Movimento (entrada, saida ou ajuste)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [post]
func (h *EstoqueHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	res, err := h.uc.RegisterMovement(c.Context(), ActorFromCtx(c), estoque.MovementInput{
		ProductID: c.Params("id"),
		Kind:      in.Kind,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(res.Movement))
}

// GetAccount godoc
// @Summary      Saldo de estoque do produto
// @Tags         estoque
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID do produto"
// @Success      200  {object}  dto.AccountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *EstoqueHandler) GetAccount(c *fiber.Ctx) error {
	acc, err := h.uc.GetAccount(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.AccountResponse{
		ProductID: acc.ProductID,
		Balance:   acc.Balance,
		Version:   acc.Version,
		UpdatedAt: acc.UpdatedAt,
	})
}

// ListMovements godoc
// @Summary      Histórico de movimentos do produto
// @Tags         estoque
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID do produto"
// @Param        limit   query  int     false  "Limite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}  dto.MovementResponse
// @Router       /api/products/{id}/movements [get]
func (h *EstoqueHandler) ListMovements(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	movs, err := h.uc.ListMovements(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(out)
}

// ListLowStock godoc
// @Summary      Produtos abaixo do estoque mínimo
// @Tags         estoque
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LowStockResponse
// @Router       /api/estoque/low-stock [get]
func (h *EstoqueHandler) ListLowStock(c *fiber.Ctx) error {
	items, err := h.uc.ListLowStock(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.LowStockResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LowStockResponse{
			ProductID:   it.ProductID,
			SKU:         it.SKU,
			ProductName: it.ProductName,
			Balance:     it.Balance,
			MinStock:    it.MinStock,
		})
	}
	return c.JSON(out)
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:              m.ID,
		AccountID:       m.AccountID,
		Kind:            m.Kind,
		Quantity:        m.Quantity,
		PreviousBalance: m.PreviousBalance,
		NewBalance:      m.NewBalance,
		ActorID:         m.ActorID,
		ActorName:       m.ActorName,
		ProductName:     m.ProductName,
		Reason:          m.Reason,
		CreatedAt:       m.CreatedAt,
	}
}
