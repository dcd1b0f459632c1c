package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gfranca/retaguarda-api/internal/application/dto"
	"github.com/gfranca/retaguarda-api/internal/application/folha"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
)

// FolhaHandler trata as requisições da folha de pagamento (protegido,
// restrito a admin e gerente no router).
type FolhaHandler struct {
	uc *folha.UseCase
}

// NewFolhaHandler constrói o handler.
func NewFolhaHandler(uc *folha.UseCase) *FolhaHandler {
	return &FolhaHandler{uc: uc}
}

// Create godoc
// @Summary      Criar lançamento de folha
// @Tags         folha
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PayrollEntryRequest  true  "Lançamento"
// @Success      201   {object}  dto.PayrollEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/folha [post]
func (h *FolhaHandler) Create(c *fiber.Ctx) error {
	var in dto.PayrollEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	entry, err := h.uc.CreateEntry(c.Context(), toEntryInput(in))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPayrollResponse(entry))
}

// GetByID godoc
// @Summary      Obter lançamento por ID
// @Tags         folha
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID do lançamento"
// @Success      200  {object}  dto.PayrollEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/folha/{id} [get]
func (h *FolhaHandler) GetByID(c *fiber.Ctx) error {
	entry, err := h.uc.GetEntry(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toPayrollResponse(entry))
}

// ListByPeriod godoc
// @Summary      Listar folha de uma competência
// @Tags         folha
// @Security     Bearer
// @Produce      json
// @Param        period  query  string  true  "Competência YYYY-MM"
// @Success      200     {array}  dto.PayrollEntryResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/folha [get]
func (h *FolhaHandler) ListByPeriod(c *fiber.Ctx) error {
	entries, err := h.uc.ListByPeriod(c.Context(), c.Query("period"))
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.PayrollEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toPayrollResponse(e))
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Atualizar lançamento não pago
// @Tags         folha
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID do lançamento"
// @Param        body  body  dto.PayrollEntryRequest  true  "Novos valores"
// @Success      200   {object}  dto.PayrollEntryResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/folha/{id} [put]
func (h *FolhaHandler) Update(c *fiber.Ctx) error {
	var in dto.PayrollEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	entry, err := h.uc.UpdateEntry(c.Context(), c.Params("id"), toEntryInput(in))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toPayrollResponse(entry))
}

// MarkPaid godoc
// @Summary      Marcar lançamento como pago
// @Tags         folha
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID do lançamento"
// @Success      200  {object}  dto.PayrollEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/folha/{id}/pay [post]
func (h *FolhaHandler) MarkPaid(c *fiber.Ctx) error {
	entry, err := h.uc.MarkPaid(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toPayrollResponse(entry))
}

// Delete godoc
// @Summary      Remover lançamento não pago
// @Tags         folha
// @Security     Bearer
// @Param        id  path  string  true  "ID do lançamento"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/folha/{id} [delete]
func (h *FolhaHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteEntry(c.Context(), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func toEntryInput(in dto.PayrollEntryRequest) folha.EntryInput {
	return folha.EntryInput{
		UserID:      in.UserID,
		Period:      in.Period,
		GrossAmount: in.GrossAmount,
		Deductions:  in.Deductions,
		Notes:       in.Notes,
	}
}

func toPayrollResponse(e *entity.PayrollEntry) dto.PayrollEntryResponse {
	return dto.PayrollEntryResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		UserName:    e.UserName,
		Period:      e.Period,
		GrossAmount: e.GrossAmount,
		Deductions:  e.Deductions,
		NetAmount:   e.NetAmount,
		Notes:       e.Notes,
		PaidAt:      e.PaidAt,
		CreatedAt:   e.CreatedAt,
	}
}
