package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dcastro/kardex-api/internal/application/dto"
	"github.com/dcastro/kardex-api/internal/application/ledger"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
)

// StockHandler maneja las peticiones HTTP del libro de inventario (protegido):
// entradas, salidas, reservas y las lecturas de cuenta, movimientos e historial
// de costo.
type StockHandler struct {
	ledger    *ledger.StockLedger
	accounts  repository.StockAccountRepository
	movements repository.StockMovementRepository
	costs     repository.CostHistoryRepository
}

// NewStockHandler construye el handler. Los repositorios son los de lectura
// directa (fuera de transacción).
func NewStockHandler(
	l *ledger.StockLedger,
	accounts repository.StockAccountRepository,
	movements repository.StockMovementRepository,
	costs repository.CostHistoryRepository,
) *StockHandler {
	return &StockHandler{ledger: l, accounts: accounts, movements: movements, costs: costs}
}

// AddStock godoc
// @Summary      Registrar entrada de inventario
// @Description  Suma unidades y recalcula el costo promedio ponderado.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddStockRequest  true  "item_id, quantity, source_type, unit_cost"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/in [post]
func (h *StockHandler) AddStock(c *fiber.Ctx) error {
	var in dto.AddStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movementID, err := h.ledger.AddStock(c.Context(), ledger.AddStockInput{
		ItemID:     in.ItemID,
		Quantity:   in.Quantity,
		SourceType: in.SourceType,
		SourceID:   in.SourceID,
		Note:       in.Note,
		ActorID:    GetUserID(c),
		UnitCost:   in.UnitCost,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"movement_id": movementID})
}

// ReduceStock godoc
// @Summary      Registrar salida de inventario
// @Description  Descuenta unidades y devuelve el COGS. La insuficiencia de stock
//
//	se reporta como success=false con HTTP 200, no como error.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReduceStockRequest  true  "item_id, quantity, source_type"
// @Success      200   {object}  dto.ReduceStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/out [post]
func (h *StockHandler) ReduceStock(c *fiber.Ctx) error {
	var in dto.ReduceStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.ledger.ReduceStock(c.Context(), ledger.ReduceStockInput{
		ItemID:           in.ItemID,
		Quantity:         in.Quantity,
		SourceType:       in.SourceType,
		SourceID:         in.SourceID,
		Note:             in.Note,
		ActorID:          GetUserID(c),
		UnitCostOverride: in.UnitCostOverride,
		ReleaseReserved:  in.ReleaseReserved,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ReduceStockResponse{Success: res.Success, MovementID: res.MovementID, COGS: res.COGS}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return c.JSON(out)
}

// Reserve godoc
// @Summary      Reservar unidades
// @Description  Aparta unidades contra una operación pendiente de confirmar.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveRequest  true  "item_id, quantity"
// @Success      200   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/reserve [post]
func (h *StockHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.ledger.Reserve(c.Context(), in.ItemID, in.Quantity); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "unidades reservadas"})
}

// Release godoc
// @Summary      Liberar unidades reservadas
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveRequest  true  "item_id, quantity"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/release [post]
func (h *StockHandler) Release(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.ledger.Release(c.Context(), in.ItemID, in.Quantity); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reserva liberada"})
}

// GetAccount godoc
// @Summary      Consultar cuenta de stock
// @Description  Cantidad en mano, reservada, disponible y costo promedio vigente.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        item_id  path  string  true  "ID del artículo"
// @Success      200  {object}  dto.StockAccountResponse
// @Router       /api/stock/accounts/{item_id} [get]
func (h *StockHandler) GetAccount(c *fiber.Ctx) error {
	account, err := h.accounts.Get(c.Params("item_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAccountResponse(account))
}

// ListAccounts godoc
// @Summary      Listar cuentas de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Tamaño de página (default 20)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {array}  dto.StockAccountResponse
// @Router       /api/stock/accounts [get]
func (h *StockHandler) ListAccounts(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	list, err := h.accounts.List(page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.StockAccountResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAccountResponse(a))
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Listar movimientos de un artículo
// @Description  Registro append-only, más reciente primero. from/to en RFC3339.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        item_id  path   string  true   "ID del artículo"
// @Param        from     query  string  false  "Fecha inicial (RFC3339)"
// @Param        to       query  string  false  "Fecha final (RFC3339)"
// @Param        limit    query  int     false  "Tamaño de página (default 20)"
// @Param        offset   query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{item_id} [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	from, to, err := parseRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from/to deben ser RFC3339"})
	}
	list, err := h.movements.ListByItem(c.Params("item_id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.MovementResponse{
			ID:             m.ID,
			ItemID:         m.ItemID,
			Direction:      m.Direction,
			Quantity:       m.Quantity,
			QuantityBefore: m.QuantityBefore,
			QuantityAfter:  m.QuantityAfter,
			SourceType:     m.SourceType,
			SourceID:       m.SourceID,
			Note:           m.Note,
			ActorID:        m.ActorID,
			CreatedAt:      m.CreatedAt,
		})
	}
	return c.JSON(dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// ListCostHistory godoc
// @Summary      Listar historial de costo promedio de un artículo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        item_id  path   string  true   "ID del artículo"
// @Param        limit    query  int     false  "Tamaño de página (default 20)"
// @Param        offset   query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.CostHistoryListResponse
// @Router       /api/stock/cost-history/{item_id} [get]
func (h *StockHandler) ListCostHistory(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	list, err := h.costs.ListByItem(c.Params("item_id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.CostHistoryResponse, 0, len(list))
	for _, e := range list {
		items = append(items, dto.CostHistoryResponse{
			ID:             e.ID,
			ItemID:         e.ItemID,
			OldAverageCost: e.OldAverageCost,
			NewAverageCost: e.NewAverageCost,
			TriggerType:    e.TriggerType,
			SourceID:       e.SourceID,
			CreatedAt:      e.CreatedAt,
		})
	}
	return c.JSON(dto.CostHistoryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

func toAccountResponse(a *entity.StockAccount) dto.StockAccountResponse {
	return dto.StockAccountResponse{
		ItemID:               a.ItemID,
		Quantity:             a.Quantity,
		Reserved:             a.Reserved,
		Available:            a.Available(),
		AverageCost:          a.AverageCost,
		AverageCostUpdatedAt: a.AverageCostUpdatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

// parseRange lee los query params from/to como RFC3339 (ambos opcionales).
func parseRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if v := c.Query("from"); v != "" {
		t, perr := time.Parse(time.RFC3339, v)
		if perr != nil {
			return nil, nil, perr
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, perr := time.Parse(time.RFC3339, v)
		if perr != nil {
			return nil, nil, perr
		}
		to = &t
	}
	return from, to, nil
}
