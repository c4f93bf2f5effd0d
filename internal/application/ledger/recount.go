package ledger

import (
	"context"

	"github.com/dcastro/kardex-api/internal/domain"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
	"github.com/dcastro/kardex-api/pkg/logger"
)

// RecountEngine reconstruye el libro completo desde los documentos origen:
// trunca movimientos e historial de costo, reinicia todas las cuentas y
// reproduce cada línea en orden cronológico de negocio a través del mismo
// StockLedger. Todo ocurre en una sola transacción: una falla de
// infraestructura revierte el lote entero; una línea con datos malos solo se
// cuenta como fallida y el lote continúa.
//
// Precondición operativa: el recuento exige acceso exclusivo al libro; debe
// ejecutarse con el tráfico normal de mutación detenido.
type RecountEngine struct {
	txRunner TxRunner
	ledger   *StockLedger
	log      *logger.Logger
}

// NewRecountEngine construye el motor de recuento.
func NewRecountEngine(txRunner TxRunner, ledger *StockLedger, log *logger.Logger) *RecountEngine {
	return &RecountEngine{txRunner: txRunner, ledger: ledger, log: log}
}

// RecountSummary resumen para el operador: líneas procesadas y fallidas, más
// los conteos finales de filas para verificación.
type RecountSummary struct {
	Processed   int   `json:"processed"`
	Failed      int   `json:"failed"`
	Movements   int64 `json:"movements"`
	CostEntries int64 `json:"cost_entries"`
}

// Recount ejecuta el recuento total. Requiere confirm=true: es una operación
// destructiva sobre todo el estado derivado.
func (e *RecountEngine) Recount(ctx context.Context, confirm bool) (*RecountSummary, error) {
	if !confirm {
		return nil, domain.ErrInvalidInput
	}

	summary := &RecountSummary{}
	err := e.txRunner.Run(ctx, func(
		accounts repository.StockAccountRepository,
		movements repository.StockMovementRepository,
		costs repository.CostHistoryRepository,
		items repository.ItemRepository,
		sources repository.SourceLineRepository,
	) error {
		// 1. Borrar el estado derivado: registros en cero, cuentas en cero.
		if err := movements.Truncate(); err != nil {
			return err
		}
		if err := costs.Truncate(); err != nil {
			return err
		}
		if err := accounts.ResetAll(); err != nil {
			return err
		}

		// 2. Cargar las líneas origen por su timestamp de negocio original.
		lines, err := sources.ListChronological()
		if err != nil {
			return err
		}

		// 3. Reproducir cada línea por el mismo contrato del libro, con el
		// timestamp original enhebrado explícitamente: la replay regenera las
		// filas pero no altera las fechas reportadas.
		for _, line := range lines {
			if err := e.replayLine(accounts, movements, costs, items, line, summary); err != nil {
				return err
			}
		}

		summary.Movements, err = movements.Count()
		if err != nil {
			return err
		}
		summary.CostEntries, err = costs.Count()
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Int("processed", summary.Processed).
		Int("failed", summary.Failed).
		Int64("movements", summary.Movements).
		Int64("cost_entries", summary.CostEntries).
		Msg("recuento total completado")
	return summary, nil
}

// replayLine reproduce una línea origen. Los rechazos de datos se cuentan como
// fallidos sin abortar; cualquier otro error sube y revierte el lote.
func (e *RecountEngine) replayLine(
	accounts repository.StockAccountRepository,
	movements repository.StockMovementRepository,
	costs repository.CostHistoryRepository,
	items repository.ItemRepository,
	line *entity.SourceLine,
	summary *RecountSummary,
) error {
	occurred := line.OccurredAt

	switch line.Direction {
	case entity.DirectionIn:
		_, err := e.ledger.AddStockInTx(accounts, movements, costs, items, AddStockInput{
			ItemID:      line.ItemID,
			Quantity:    line.Quantity,
			SourceType:  line.Kind,
			SourceID:    &line.DocumentID,
			Note:        line.Note,
			ActorID:     line.ActorID,
			UnitCost:    line.UnitCost,
			OccurredAt:  &occurred,
			CostTrigger: entity.TriggerRecount,
		})
		if err != nil {
			if domain.IsDomainRejection(err) {
				summary.Failed++
				e.log.Warn().Err(err).Str("line_id", line.ID).Str("item_id", line.ItemID).
					Msg("línea origen descartada en el recuento")
				return nil
			}
			return err
		}
	case entity.DirectionOut:
		unitCost := line.UnitCost
		res, err := e.ledger.ReduceStockInTx(accounts, movements, items, ReduceStockInput{
			ItemID:           line.ItemID,
			Quantity:         line.Quantity,
			SourceType:       line.Kind,
			SourceID:         &line.DocumentID,
			Note:             line.Note,
			ActorID:          line.ActorID,
			UnitCostOverride: &unitCost,
			OccurredAt:       &occurred,
		})
		if err != nil {
			if domain.IsDomainRejection(err) {
				summary.Failed++
				e.log.Warn().Err(err).Str("line_id", line.ID).Str("item_id", line.ItemID).
					Msg("línea origen descartada en el recuento")
				return nil
			}
			return err
		}
		if !res.Success {
			// Insuficiencia en la replay: se salta la línea, el lote sigue.
			summary.Failed++
			e.log.Warn().Err(res.Err).Str("line_id", line.ID).Str("item_id", line.ItemID).
				Msg("salida sin stock suficiente en el recuento")
			return nil
		}
	default:
		summary.Failed++
		e.log.Warn().Str("line_id", line.ID).Str("direction", line.Direction).
			Msg("línea origen con dirección desconocida")
		return nil
	}

	summary.Processed++
	return nil
}
