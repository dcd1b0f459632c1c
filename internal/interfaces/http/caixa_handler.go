package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gfranca/retaguarda-api/internal/application/caixa"
	"github.com/gfranca/retaguarda-api/internal/application/dto"
	"github.com/gfranca/retaguarda-api/internal/domain/entity"
)

// CaixaHandler trata as requisições de sessões de caixa (protegido).
type CaixaHandler struct {
	mgr *caixa.Manager
}

// NewCaixaHandler constrói o handler.
func NewCaixaHandler(mgr *caixa.Manager) *CaixaHandler {
	return &CaixaHandler{mgr: mgr}
}

// Open godoc
// @Summary      Abrir sessão de caixa
// @Tags         caixa
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenSessionRequest  true  "Fundo de troco"
// @Success      201   {object}  dto.SessionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/caixa/sessions [post]
func (h *CaixaHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	sess, err := h.mgr.Open(c.Context(), ActorFromCtx(c), in.OpeningAmount, in.Notes)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSessionResponse(sess))
}

// Current godoc
// @Summary      Sessão aberta do operador autenticado
// @Tags         caixa
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/caixa/sessions/current [get]
func (h *CaixaHandler) Current(c *fiber.Ctx) error {
	sess, err := h.mgr.OpenByOwner(c.Context(), GetUserID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toSessionResponse(sess))
}

// GetByID godoc
// @Summary      Obter sessão por ID
// @Tags         caixa
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID da sessão"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/caixa/sessions/{id} [get]
func (h *CaixaHandler) GetByID(c *fiber.Ctx) error {
	sess, err := h.mgr.GetSession(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toSessionResponse(sess))
}

// List godoc
// @Summary      Listar sessões de caixa
// @Tags         caixa
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Limite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {array}  dto.SessionResponse
// @Router       /api/caixa/sessions [get]
func (h *CaixaHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	sessions, err := h.mgr.ListSessions(c.Context(), limit, offset)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	return c.JSON(out)
}

// Record godoc
// @Summary      Lançar movimento na sessão (venda, suprimento ou sangria)
// @Tags         caixa
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID da sessão"
// @Param        body  body  dto.CashMovementRequest  true  "Movimento"
// @Success      201   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/caixa/sessions/{id}/movements [post]
func (h *CaixaHandler) Record(c *fiber.Ctx) error {
	var in dto.CashMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	res, err := h.mgr.Record(c.Context(), ActorFromCtx(c), c.Params("id"), in.Kind, in.Amount, in.Reason)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(res.Movement))
}

// ListMovements godoc
// @Summary      Histórico de movimentos da sessão
// @Tags         caixa
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID da sessão"
// @Param        limit   query  int     false  "Limite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}  dto.MovementResponse
// @Router       /api/caixa/sessions/{id}/movements [get]
func (h *CaixaHandler) ListMovements(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	movs, err := h.mgr.ListMovements(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(out)
}

// Close godoc
// @Summary      Fechar sessão com o valor contado
// @Tags         caixa
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID da sessão"
// @Param        body  body  dto.CloseSessionRequest  true  "Valor contado"
// @Success      200   {object}  dto.SessionResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/caixa/sessions/{id}/close [post]
func (h *CaixaHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	sess, err := h.mgr.Close(c.Context(), ActorFromCtx(c), c.Params("id"), in.ClosingAmount, in.Notes)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toSessionResponse(sess))
}

// Report godoc
// @Summary      Relatório de fechamento (PDF)
// @Tags         caixa
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID da sessão"
// @Success      200  {file}  file
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/caixa/sessions/{id}/report [get]
func (h *CaixaHandler) Report(c *fiber.Ctx) error {
	pdfBytes, err := h.mgr.ClosingReport(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="fechamento-`+c.Params("id")+`.pdf"`)
	return c.Send(pdfBytes)
}

func toSessionResponse(s *entity.CashSession) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:            s.ID,
		OwnerID:       s.OwnerID,
		OwnerName:     s.OwnerName,
		Status:        s.Status,
		OpeningAmount: s.OpeningAmount,
		Balance:       s.Balance,
		Notes:         s.Notes,
		OpenedAt:      s.OpenedAt,
		ClosedAt:      s.ClosedAt,
	}
	if s.Status == entity.SessionFechada {
		closing, expected, diff := s.ClosingAmount, s.ExpectedAmount, s.Difference
		resp.ClosingAmount = &closing
		resp.ExpectedAmount = &expected
		resp.Difference = &diff
	}
	return resp
}
