package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gfranca/retaguarda-api/internal/application/dto"
	"github.com/gfranca/retaguarda-api/internal/application/vendas"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
)

// VendasHandler trata as requisições do ponto de venda (protegido).
type VendasHandler struct {
	uc *vendas.SaleUseCase
}

// NewVendasHandler constrói o handler.
func NewVendasHandler(uc *vendas.SaleUseCase) *VendasHandler {
	return &VendasHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar venda
// @Tags         vendas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Itens e forma de pagamento"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/vendas [post]
func (h *VendasHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	items := make([]vendas.SaleItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, vendas.SaleItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	out, err := h.uc.RegisterSale(c.Context(), ActorFromCtx(c), vendas.SaleInput{
		PaymentMethod: in.PaymentMethod,
		Items:         items,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(out.Sale, out.CashRecorded, out.Pending))
}

// GetByID godoc
// @Summary      Obter venda por ID
// @Tags         vendas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID da venda"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vendas/{id} [get]
func (h *VendasHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.uc.GetSale(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toSaleResponse(sale, sale.SessionID != "", nil))
}

// List godoc
// @Summary      Listar vendas
// @Tags         vendas
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Limite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {array}  dto.SaleResponse
// @Router       /api/vendas [get]
func (h *VendasHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	sales, err := h.uc.ListSales(c.Context(), limit, offset)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, toSaleResponse(s, s.SessionID != "", nil))
	}
	return c.JSON(out)
}

func toSaleResponse(s *entity.Sale, cashRecorded bool, pending []string) dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		})
	}
	return dto.SaleResponse{
		ID:            s.ID,
		OperatorID:    s.OperatorID,
		OperatorName:  s.OperatorName,
		SessionID:     s.SessionID,
		PaymentMethod: s.PaymentMethod,
		Total:         s.Total,
		Items:         items,
		CashRecorded:  cashRecorded,
		Pending:       pending,
		CreatedAt:     s.CreatedAt,
	}
}
