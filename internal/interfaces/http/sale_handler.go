package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/domain"
)

// SaleHandler maneja el registro y la consulta de ventas (protegido).
type SaleHandler struct {
	register *sales.RegisterSaleUseCase
	query    *sales.QueryUseCase
	ticket   *sales.TicketUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(register *sales.RegisterSaleUseCase, query *sales.QueryUseCase, ticket *sales.TicketUseCase) *SaleHandler {
	return &SaleHandler{register: register, query: query, ticket: ticket}
}

// Register godoc
// @Summary      Registrar venta
// @Description  Valida, calcula montos y persiste cabecera, líneas, salidas de inventario y auditoría en una sola transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterSaleRequest  true  "líneas: product_id, quantity, unit_price (opcional), discount_pct"
// @Success      201   {object}  dto.RegisterSaleResult
// @Failure      400   {object}  dto.RegisterSaleResult  "rc 1"
// @Failure      403   {object}  dto.RegisterSaleResult  "rc 6"
// @Failure      404   {object}  dto.RegisterSaleResult  "rc 3"
// @Failure      409   {object}  dto.RegisterSaleResult  "rc 11"
// @Failure      500   {object}  dto.RegisterSaleResult  "rc 5"
// @Router       /api/sales [post]
func (h *SaleHandler) Register(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID <= 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	res := h.register.Register(c.UserContext(), actorID, in.Lines)
	if res.OK() {
		return c.Status(fiber.StatusCreated).JSON(res)
	}
	return c.Status(HTTPStatus(domain.ErrorCode(res.RC))).JSON(res)
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        from     query  string  false  "YYYY-MM-DD (inclusive)"
// @Param        to       query  string  false  "YYYY-MM-DD (inclusive)"
// @Param        user_id  query  int     false  "usuario que registró la venta"
// @Param        limit    query  int     false  "máx. 100"
// @Param        offset   query  int     false  "desplazamiento"
// @Success      200  {object}  dto.SalesListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var in dto.ListSalesRequest
	if ok, err := bindQuery(c, &in); !ok {
		return err
	}
	out, err := h.query.ListSales(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta con sus líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	out, err := h.query.GetSale(c.UserContext(), int64(id))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Ticket godoc
// @Summary      Descargar ticket PDF de la venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/ticket [get]
func (h *SaleHandler) Ticket(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	pdf, filename, err := h.ticket.Ticket(c.UserContext(), int64(id))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}

// TopProducts godoc
// @Summary      Productos más vendidos
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from   query  string  false  "YYYY-MM-DD (inclusive)"
// @Param        to     query  string  false  "YYYY-MM-DD (inclusive)"
// @Param        limit  query  int     false  "por defecto 10, máx. 100"
// @Success      200  {object}  map[string]interface{}  "total, items: []dto.TopProductResponse"
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/top-products [get]
func (h *SaleHandler) TopProducts(c *fiber.Ctx) error {
	out, err := h.query.TopProducts(c.UserContext(), c.Query("from"), c.Query("to"), c.QueryInt("limit", 10))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}
