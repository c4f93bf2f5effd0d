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

	"github.com/dcastro/kardex-api/internal/application/ledger"
	"github.com/dcastro/kardex-api/internal/application/processors"
	"github.com/dcastro/kardex-api/internal/application/reports"
	"github.com/dcastro/kardex-api/internal/application/usecase"
	"github.com/dcastro/kardex-api/internal/domain/repository"
	"github.com/dcastro/kardex-api/internal/infrastructure/memory"
	"github.com/dcastro/kardex-api/internal/infrastructure/postgres"
	httpRouter "github.com/dcastro/kardex-api/internal/interfaces/http"
	"github.com/dcastro/kardex-api/pkg/config"
	"github.com/dcastro/kardex-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Ledger.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	lockTimeout := time.Duration(cfg.Ledger.LockTimeoutMS) * time.Millisecond

	// Almacenamiento: postgres en operación normal; memory para desarrollo y
	// demos sin base de datos. Ambos cumplen el mismo contrato transaccional.
	var (
		txRunner  ledger.TxRunner
		itemRepo  repository.ItemRepository
		accounts  repository.StockAccountRepository
		movements repository.StockMovementRepository
		costs     repository.CostHistoryRepository
	)
	switch cfg.Ledger.StoreDriver {
	case "memory":
		store := memory.NewStore(lockTimeout)
		txRunner = store
		itemRepo = store.Items()
		accounts = store.Accounts()
		movements = store.Movements()
		costs = store.Costs()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool, lockTimeout)
		itemRepo = postgres.NewItemRepository(pool)
		accounts = postgres.NewStockAccountRepository(pool)
		movements = postgres.NewStockMovementRepository(pool)
		costs = postgres.NewCostHistoryRepository(pool)
	}

	stockLedger := ledger.NewStockLedger(txRunner)
	recountEngine := ledger.NewRecountEngine(txRunner, stockLedger, log)
	costInitializer := ledger.NewCostInitializer(txRunner, log)

	purchaseProc := processors.NewPurchaseProcessor(txRunner, stockLedger)
	saleProc := processors.NewSaleProcessor(txRunner, stockLedger)
	returnProc := processors.NewReturnProcessor(txRunner, stockLedger)
	auditProc := processors.NewAuditProcessor(txRunner, stockLedger)

	itemUC := usecase.NewItemUseCase(txRunner, itemRepo)
	valuationUC := reports.NewValuationUseCase(accounts)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Kardex API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:      itemUC,
		Ledger:      stockLedger,
		Purchases:   purchaseProc,
		Sales:       saleProc,
		Returns:     returnProc,
		Audits:      auditProc,
		Recount:     recountEngine,
		Backfill:    costInitializer,
		Valuation:   valuationUC,
		Accounts:    accounts,
		Movements:   movements,
		CostHistory: costs,
		JWTSecret:   cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}
