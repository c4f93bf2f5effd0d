package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dcastro/kardex-api/internal/application/reports"
)

// ReportHandler maneja los reportes de solo lectura.
type ReportHandler struct {
	valuation *reports.ValuationUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(valuation *reports.ValuationUseCase) *ReportHandler {
	return &ReportHandler{valuation: valuation}
}

// GetValuation godoc
// @Summary      Valorización del inventario
// @Description  Valor en libros por artículo (cantidad × costo promedio) y su
//
//	participación porcentual sobre el total, ordenado por valor descendente.
//
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ValuationReportDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reports/valuation [get]
func (h *ReportHandler) GetValuation(c *fiber.Ctx) error {
	report, err := h.valuation.GetValuation(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}
