package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	infrapdf "github.com/jhoicas/Ventas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/Ventas-api/internal/interfaces/http"
	"github.com/jhoicas/Ventas-api/pkg/config"
	"github.com/jhoicas/Ventas-api/pkg/logger"
	"github.com/jhoicas/Ventas-api/pkg/telemetry"
)

// version se reemplaza en build con -ldflags "-X main.version=...".
var version = "dev"

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, version)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar telemetría")
	}

	store, err := storage.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir persistencia")
	}
	defer store.Close()

	if cfg.DB.Driver == config.DriverMemory {
		// Sin base persistente no hay usuarios: se crea un admin (id 1) para poder operar.
		admin := &entity.User{Username: "admin", Name: "Administrador", Role: entity.RoleAdmin, Status: entity.UserStatusActive}
		if err := store.Users.Create(ctx, admin); err != nil {
			log.Fatal().Err(err).Msg("crear usuario admin en memoria")
		}
		log.Info().Int64("user_id", admin.ID).Msg("usuario admin creado")
	}

	registerMovementUC := inventory.NewRegisterMovementUseCase(store.Runner, store.Products, store.Users)
	registerSaleUC := sales.NewRegisterSaleUseCase(
		sales.NewValidator(store.Users, store.Products),
		store.Runner,
		registerMovementUC,
		log,
		cfg.Sales.TxTimeout,
	)
	salesQueryUC := sales.NewQueryUseCase(store.Sales, store.Products)
	ticketUC := sales.NewTicketUseCase(store.Sales, store.Products, store.Users, infrapdf.NewTicketGenerator(), cfg.App.Name)
	inventoryQueryUC := inventory.NewQueryUseCase(store.Products, store.Movements)
	replenishmentUC := inventory.NewReplenishmentUseCase(store.Products)
	catalogUC := inventory.NewCatalogUseCase(store.Products)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Ventas API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		RegisterSale:     registerSaleUC,
		SalesQuery:       salesQueryUC,
		Ticket:           ticketUC,
		RegisterMovement: registerMovementUC,
		InventoryQuery:   inventoryQueryUC,
		Replenishment:    replenishmentUC,
		Catalog:          catalogUC,
		JWTSecret:        cfg.JWT.Secret,
		ServiceName:      cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre de telemetría")
	}

	log.Info().Msg("aplicación detenida")
}
