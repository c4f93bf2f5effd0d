package processors

import (
	"context"
	"time"

	"github.com/dcastro/kardex-api/internal/application/ledger"
	"github.com/dcastro/kardex-api/internal/domain"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
)

// SaleProcessor registra ventas: cada línea sale del libro al costo promedio
// vigente (u override explícito) y libera la reserva del carrito que se está
// confirmando. En modo no estricto, las líneas sin stock suficiente se reportan
// y el resto del documento continúa; en modo estricto cualquier línea fallida
// revierte el documento completo.
type SaleProcessor struct {
	txRunner ledger.TxRunner
	ledger   *ledger.StockLedger
}

// NewSaleProcessor construye el procesador de ventas.
func NewSaleProcessor(txRunner ledger.TxRunner, l *ledger.StockLedger) *SaleProcessor {
	return &SaleProcessor{txRunner: txRunner, ledger: l}
}

// SaleLine línea de venta. UnitCostOverride reemplaza el costo promedio como
// base del COGS (nil = promedio vigente).
type SaleLine struct {
	ItemID           string `json:"item_id"`
	Quantity         int64  `json:"quantity"`
	UnitCostOverride *int64 `json:"unit_cost_override,omitempty"`
}

// SaleInput documento de venta.
type SaleInput struct {
	Lines      []SaleLine
	ActorID    string
	Note       string
	Strict     bool
	OccurredAt *time.Time
}

// SaleResult resultado del documento, con el COGS por línea aplicada.
type SaleResult struct {
	DocumentID string       `json:"document_id"`
	TotalCOGS  int64        `json:"total_cogs"`
	Failed     int          `json:"failed"`
	Lines      []LineResult `json:"lines"`
}

// Process aplica el documento de venta en una sola transacción.
func (p *SaleProcessor) Process(ctx context.Context, in SaleInput) (*SaleResult, error) {
	if len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}

	docID := newDocumentID()
	occurred := businessTime(in.OccurredAt)
	lines := sortByItemID(in.Lines, func(l SaleLine) string { return l.ItemID })

	result := &SaleResult{DocumentID: docID}
	err := p.txRunner.Run(ctx, func(
		accounts repository.StockAccountRepository,
		movements repository.StockMovementRepository,
		_ repository.CostHistoryRepository,
		items repository.ItemRepository,
		sources repository.SourceLineRepository,
	) error {
		for _, line := range lines {
			res, err := p.ledger.ReduceStockInTx(accounts, movements, items, ledger.ReduceStockInput{
				ItemID:           line.ItemID,
				Quantity:         line.Quantity,
				SourceType:       entity.SourceSale,
				SourceID:         &docID,
				Note:             in.Note,
				ActorID:          in.ActorID,
				UnitCostOverride: line.UnitCostOverride,
				ReleaseReserved:  true,
				OccurredAt:       &occurred,
			})
			if err != nil {
				if !in.Strict && domain.IsDomainRejection(err) {
					result.Failed++
					result.Lines = append(result.Lines, LineResult{ItemID: line.ItemID, Error: err.Error()})
					continue
				}
				return err
			}
			if !res.Success {
				if in.Strict {
					return res.Err
				}
				result.Failed++
				result.Lines = append(result.Lines, LineResult{ItemID: line.ItemID, Error: res.Err.Error()})
				continue
			}

			// La línea origen guarda el costo unitario realmente aplicado, para
			// que la replay del recuento reproduzca el mismo COGS.
			if err := sources.Create(&entity.SourceLine{
				DocumentID: docID,
				Kind:       entity.SourceSale,
				Direction:  entity.DirectionOut,
				ItemID:     line.ItemID,
				Quantity:   line.Quantity,
				UnitCost:   res.COGS / line.Quantity,
				ActorID:    in.ActorID,
				Note:       in.Note,
				OccurredAt: occurred,
			}); err != nil {
				return err
			}
			result.TotalCOGS += res.COGS
			result.Lines = append(result.Lines, LineResult{
				ItemID: line.ItemID, MovementID: res.MovementID, Success: true, COGS: res.COGS,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
