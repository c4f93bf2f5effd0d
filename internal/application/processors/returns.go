package processors

import (
	"context"
	"time"

	"github.com/dcastro/kardex-api/internal/application/ledger"
	"github.com/dcastro/kardex-api/internal/domain"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
)

// ReturnProcessor registra devoluciones. Las devoluciones entrantes ingresan al
// libro con la base de costo de la mercadería devuelta (AddStock); las
// salientes que afectan stock egresan por ReduceStock con esa misma base.
type ReturnProcessor struct {
	txRunner ledger.TxRunner
	ledger   *ledger.StockLedger
}

// NewReturnProcessor construye el procesador de devoluciones.
func NewReturnProcessor(txRunner ledger.TxRunner, l *ledger.StockLedger) *ReturnProcessor {
	return &ReturnProcessor{txRunner: txRunner, ledger: l}
}

// ReturnLine línea de devolución: cantidad y base de costo de lo devuelto.
type ReturnLine struct {
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
	UnitCost int64  `json:"unit_cost"`
}

// ReturnInput documento de devolución. Direction decide el lado del libro:
// entity.DirectionIn (entra mercadería) o entity.DirectionOut (sale).
type ReturnInput struct {
	Direction  string
	Lines      []ReturnLine
	ActorID    string
	Note       string
	OccurredAt *time.Time
}

// ReturnResult resultado del documento.
type ReturnResult struct {
	DocumentID string       `json:"document_id"`
	Failed     int          `json:"failed"`
	Lines      []LineResult `json:"lines"`
}

// Process aplica el documento de devolución en una sola transacción.
func (p *ReturnProcessor) Process(ctx context.Context, in ReturnInput) (*ReturnResult, error) {
	if len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Direction != entity.DirectionIn && in.Direction != entity.DirectionOut {
		return nil, domain.ErrInvalidInput
	}

	docID := newDocumentID()
	occurred := businessTime(in.OccurredAt)
	lines := sortByItemID(in.Lines, func(l ReturnLine) string { return l.ItemID })

	result := &ReturnResult{DocumentID: docID}
	err := p.txRunner.Run(ctx, func(
		accounts repository.StockAccountRepository,
		movements repository.StockMovementRepository,
		costs repository.CostHistoryRepository,
		items repository.ItemRepository,
		sources repository.SourceLineRepository,
	) error {
		for _, line := range lines {
			var (
				movementID string
				cogs       int64
			)
			if in.Direction == entity.DirectionIn {
				id, err := p.ledger.AddStockInTx(accounts, movements, costs, items, ledger.AddStockInput{
					ItemID:     line.ItemID,
					Quantity:   line.Quantity,
					SourceType: entity.SourceReturn,
					SourceID:   &docID,
					Note:       in.Note,
					ActorID:    in.ActorID,
					UnitCost:   line.UnitCost,
					OccurredAt: &occurred,
				})
				if err != nil {
					return err
				}
				movementID = id
			} else {
				unitCost := line.UnitCost
				res, err := p.ledger.ReduceStockInTx(accounts, movements, items, ledger.ReduceStockInput{
					ItemID:           line.ItemID,
					Quantity:         line.Quantity,
					SourceType:       entity.SourceReturn,
					SourceID:         &docID,
					Note:             in.Note,
					ActorID:          in.ActorID,
					UnitCostOverride: &unitCost,
					OccurredAt:       &occurred,
				})
				if err != nil {
					return err
				}
				if !res.Success {
					result.Failed++
					result.Lines = append(result.Lines, LineResult{ItemID: line.ItemID, Error: res.Err.Error()})
					continue
				}
				movementID = res.MovementID
				cogs = res.COGS
			}

			if err := sources.Create(&entity.SourceLine{
				DocumentID: docID,
				Kind:       entity.SourceReturn,
				Direction:  in.Direction,
				ItemID:     line.ItemID,
				Quantity:   line.Quantity,
				UnitCost:   line.UnitCost,
				ActorID:    in.ActorID,
				Note:       in.Note,
				OccurredAt: occurred,
			}); err != nil {
				return err
			}
			result.Lines = append(result.Lines, LineResult{
				ItemID: line.ItemID, MovementID: movementID, Success: true, COGS: cogs,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
