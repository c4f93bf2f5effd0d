package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dcastro/kardex-api/internal/application/dto"
	"github.com/dcastro/kardex-api/internal/application/ledger"
)

// MaintenanceHandler maneja las operaciones administrativas del libro:
// recuento total y backfill de costo promedio. Las rutas exigen rol admin.
type MaintenanceHandler struct {
	recount  *ledger.RecountEngine
	backfill *ledger.CostInitializer
}

// NewMaintenanceHandler construye el handler.
func NewMaintenanceHandler(recount *ledger.RecountEngine, backfill *ledger.CostInitializer) *MaintenanceHandler {
	return &MaintenanceHandler{recount: recount, backfill: backfill}
}

// Recount godoc
// @Summary      Recuento total del libro
// @Description  Destruye movimientos, historial de costo y cuentas, y los
//
//	reconstruye reproduciendo los documentos origen en orden cronológico.
//	Requiere confirm=true y debe ejecutarse sin tráfico de mutación.
//
// @Tags         maintenance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecountRequest  true  "confirm"
// @Success      200   {object}  ledger.RecountSummary
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/maintenance/recount [post]
func (h *MaintenanceHandler) Recount(c *fiber.Ctx) error {
	var in dto.RecountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	summary, err := h.recount.Recount(c.Context(), in.Confirm)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// Backfill godoc
// @Summary      Backfill de costo promedio
// @Description  Siembra el costo promedio desde el precio de compra de los
//
//	artículos cuyas cuentas están en cero o sin inicializar. Idempotente;
//	reset_all=true sobreescribe todas las cuentas.
//
// @Tags         maintenance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BackfillRequest  true  "reset_all"
// @Success      200   {object}  ledger.BackfillSummary
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/maintenance/backfill [post]
func (h *MaintenanceHandler) Backfill(c *fiber.Ctx) error {
	var in dto.BackfillRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	summary, err := h.backfill.Backfill(c.Context(), in.ResetAll)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
