package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/domain"
)

// statusByCode mapeo rc → estado HTTP. Lo que no figura es 500.
var statusByCode = map[domain.ErrorCode]struct {
	status int
	code   string
}{
	domain.CodeInvalidInput:      {fiber.StatusBadRequest, "VALIDATION"},
	domain.CodeDuplicate:         {fiber.StatusConflict, "DUPLICATE"},
	domain.CodeNotFound:          {fiber.StatusNotFound, "NOT_FOUND"},
	domain.CodeActorInvalid:      {fiber.StatusForbidden, "ACTOR_INVALID"},
	domain.CodeInsufficientStock: {fiber.StatusConflict, "INSUFFICIENT_STOCK"},
}

// HTTPStatus estado HTTP para un rc.
func HTTPStatus(rc domain.ErrorCode) int {
	if rc == domain.CodeOK {
		return fiber.StatusOK
	}
	if m, ok := statusByCode[rc]; ok {
		return m.status
	}
	return fiber.StatusInternalServerError
}

// writeError responde con dto.ErrorResponse; los fallos de infraestructura no exponen detalle.
func writeError(c *fiber.Ctx, err error) error {
	rc := domain.CodeOf(err)
	code := "INTERNAL"
	if m, ok := statusByCode[rc]; ok {
		code = m.code
	}
	return c.Status(HTTPStatus(rc)).JSON(dto.ErrorResponse{
		Code:    code,
		Message: sales.PublicMessage(err),
		RC:      int(rc),
	})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg, RC: int(domain.CodeInvalidInput)})
}
