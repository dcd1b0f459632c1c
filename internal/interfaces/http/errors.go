package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/gfranca/retaguarda-api/internal/application/dto"
	"github.com/gfranca/retaguarda-api/internal/domain"
)

// errorResponse mapeia os erros sentinela do domínio para status HTTP e
// devolve o corpo de erro padronizado.
func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidMovementKind):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		status, code = fiber.StatusConflict, "EMAIL_EXISTS"
	case errors.Is(err, domain.ErrSessionAlreadyOpen):
		status, code = fiber.StatusConflict, "SESSION_OPEN"
	case errors.Is(err, domain.ErrSessionClosed):
		status, code = fiber.StatusConflict, "SESSION_CLOSED"
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = fiber.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrSangriaExceedsBalance):
		status, code = fiber.StatusUnprocessableEntity, "SANGRIA_EXCEEDS_BALANCE"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrVersionConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}
