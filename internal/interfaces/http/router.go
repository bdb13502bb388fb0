package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegisterSale     *sales.RegisterSaleUseCase
	SalesQuery       *sales.QueryUseCase
	Ticket           *sales.TicketUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	InventoryQuery   *inventory.QueryUseCase
	Replenishment    *inventory.ReplenishmentUseCase
	Catalog          *inventory.CatalogUseCase
	JWTSecret        string
	ServiceName      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleSecretario)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Ventas (caja: admin y secretario)
	saleHandler := NewSaleHandler(deps.RegisterSale, deps.SalesQuery, deps.Ticket)
	salesGroup := protected.Group("/sales", anyRole)
	salesGroup.Post("/", saleHandler.Register)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/ticket", saleHandler.Ticket)

	// Reportes (solo admin)
	reports := protected.Group("/reports", adminOnly)
	reports.Get("/top-products", saleHandler.TopProducts)

	// Catálogo (lectura para armar el carrito)
	productHandler := NewProductHandler(deps.Catalog)
	products := protected.Group("/products", anyRole)
	products.Get("/", productHandler.Search)
	products.Get("/code/:code", productHandler.GetByCode)

	// Inventario: consultas para ambos roles, movimientos manuales solo admin
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.InventoryQuery, deps.Replenishment)
	invGroup := protected.Group("/inventory", anyRole)
	invGroup.Post("/movements", adminOnly, inventoryHandler.RegisterMovement)
	invGroup.Get("/products/:id/movements", inventoryHandler.History)
	invGroup.Get("/products/:id/reconcile", inventoryHandler.Reconcile)
	invGroup.Get("/low-stock", inventoryHandler.LowStock)
}
