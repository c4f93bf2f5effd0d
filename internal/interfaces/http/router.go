package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dcastro/kardex-api/internal/application/ledger"
	"github.com/dcastro/kardex-api/internal/application/processors"
	"github.com/dcastro/kardex-api/internal/application/reports"
	"github.com/dcastro/kardex-api/internal/application/usecase"
	"github.com/dcastro/kardex-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC      *usecase.ItemUseCase
	Ledger      *ledger.StockLedger
	Purchases   *processors.PurchaseProcessor
	Sales       *processors.SaleProcessor
	Returns     *processors.ReturnProcessor
	Audits      *processors.AuditProcessor
	Recount     *ledger.RecountEngine
	Backfill    *ledger.CostInitializer
	Valuation   *reports.ValuationUseCase
	Accounts    repository.StockAccountRepository
	Movements   repository.StockMovementRepository
	CostHistory repository.CostHistoryRepository
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Items (protegido)
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)

	// Stock: libro de inventario (protegido)
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.Ledger, deps.Accounts, deps.Movements, deps.CostHistory)
	stock.Post("/in", stockHandler.AddStock)
	stock.Post("/out", stockHandler.ReduceStock)
	stock.Post("/reserve", stockHandler.Reserve)
	stock.Post("/release", stockHandler.Release)
	stock.Get("/accounts", stockHandler.ListAccounts)
	stock.Get("/accounts/:item_id", stockHandler.GetAccount)
	stock.Get("/movements/:item_id", stockHandler.ListMovements)
	stock.Get("/cost-history/:item_id", stockHandler.ListCostHistory)

	// Documentos multilínea (protegido)
	documents := protected.Group("/documents")
	documentHandler := NewDocumentHandler(deps.Purchases, deps.Sales, deps.Returns, deps.Audits)
	documents.Post("/purchases", documentHandler.CreatePurchase)
	documents.Post("/sales", documentHandler.CreateSale)
	documents.Post("/returns", documentHandler.CreateReturn)
	documents.Post("/audits", documentHandler.CreateAudit)

	// Reportes (protegido)
	reportsGroup := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.Valuation)
	reportsGroup.Get("/valuation", reportHandler.GetValuation)

	// Mantenimiento del libro (protegido, solo admin)
	maintenance := protected.Group("/maintenance", RequireRole(RoleAdmin))
	maintenanceHandler := NewMaintenanceHandler(deps.Recount, deps.Backfill)
	maintenance.Post("/recount", maintenanceHandler.Recount)
	maintenance.Post("/backfill", maintenanceHandler.Backfill)
}
