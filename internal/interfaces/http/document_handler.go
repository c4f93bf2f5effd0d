package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dcastro/kardex-api/internal/application/dto"
	"github.com/dcastro/kardex-api/internal/application/processors"
)

// DocumentHandler maneja los documentos multilínea: compras, ventas,
// devoluciones y conteos físicos. Cada documento se aplica en una sola
// transacción por su procesador.
type DocumentHandler struct {
	purchases *processors.PurchaseProcessor
	sales     *processors.SaleProcessor
	returns   *processors.ReturnProcessor
	audits    *processors.AuditProcessor
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(
	purchases *processors.PurchaseProcessor,
	sales *processors.SaleProcessor,
	returns *processors.ReturnProcessor,
	audits *processors.AuditProcessor,
) *DocumentHandler {
	return &DocumentHandler{purchases: purchases, sales: sales, returns: returns, audits: audits}
}

// CreatePurchase godoc
// @Summary      Registrar documento de compra
// @Description  Todo-o-nada: una línea inválida revierte el documento completo.
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PurchaseDocumentRequest  true  "lines con item_id, quantity, unit_cost"
// @Success      201   {object}  processors.PurchaseResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/documents/purchases [post]
func (h *DocumentHandler) CreatePurchase(c *fiber.Ctx) error {
	var in dto.PurchaseDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.purchases.Process(c.Context(), processors.PurchaseInput{
		Lines:      in.Lines,
		ActorID:    GetUserID(c),
		Note:       in.Note,
		OccurredAt: in.OccurredAt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// CreateSale godoc
// @Summary      Registrar documento de venta
// @Description  En modo no estricto las líneas sin stock se reportan y el resto
//
//	continúa; strict=true revierte el documento completo ante cualquier falla.
//
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaleDocumentRequest  true  "lines con item_id, quantity"
// @Success      201   {object}  processors.SaleResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/documents/sales [post]
func (h *DocumentHandler) CreateSale(c *fiber.Ctx) error {
	var in dto.SaleDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.sales.Process(c.Context(), processors.SaleInput{
		Lines:      in.Lines,
		ActorID:    GetUserID(c),
		Note:       in.Note,
		Strict:     in.Strict,
		OccurredAt: in.OccurredAt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// CreateReturn godoc
// @Summary      Registrar documento de devolución
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReturnDocumentRequest  true  "direction (in|out) y lines"
// @Success      201   {object}  processors.ReturnResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/documents/returns [post]
func (h *DocumentHandler) CreateReturn(c *fiber.Ctx) error {
	var in dto.ReturnDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.returns.Process(c.Context(), processors.ReturnInput{
		Direction:  in.Direction,
		Lines:      in.Lines,
		ActorID:    GetUserID(c),
		Note:       in.Note,
		OccurredAt: in.OccurredAt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// CreateAudit godoc
// @Summary      Registrar conteo físico (opname)
// @Description  Reconcilia la cantidad contada contra el sistema: la variación
//
//	positiva entra al precio de compra, la negativa sale al costo promedio.
//
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AuditDocumentRequest  true  "lines con item_id, counted_qty"
// @Success      201   {object}  processors.AuditResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/documents/audits [post]
func (h *DocumentHandler) CreateAudit(c *fiber.Ctx) error {
	var in dto.AuditDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.audits.Process(c.Context(), processors.AuditInput{
		Lines:      in.Lines,
		ActorID:    GetUserID(c),
		Note:       in.Note,
		OccurredAt: in.OccurredAt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
