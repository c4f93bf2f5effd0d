package processors

import (
	"context"
	"errors"
	"time"

	"github.com/dcastro/kardex-api/internal/application/ledger"
	"github.com/dcastro/kardex-api/internal/domain"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
)

// AuditProcessor reconcilia un conteo físico (opname) contra la cantidad del
// sistema: la variación positiva entra al libro al precio de compra actual del
// artículo, la negativa sale al costo promedio vigente. La cantidad del sistema
// se lee bajo el mismo bloqueo de fila que aplica el ajuste.
type AuditProcessor struct {
	txRunner ledger.TxRunner
	ledger   *ledger.StockLedger
}

// NewAuditProcessor construye el procesador de conteos.
func NewAuditProcessor(txRunner ledger.TxRunner, l *ledger.StockLedger) *AuditProcessor {
	return &AuditProcessor{txRunner: txRunner, ledger: l}
}

// AuditLine línea de conteo: la cantidad física contada para un artículo.
type AuditLine struct {
	ItemID     string `json:"item_id"`
	CountedQty int64  `json:"counted_qty"`
}

// AuditInput documento de conteo físico.
type AuditInput struct {
	Lines      []AuditLine
	ActorID    string
	Note       string
	OccurredAt *time.Time
}

// AuditAdjustment resultado por línea: variación con signo aplicada.
type AuditAdjustment struct {
	ItemID     string `json:"item_id"`
	SystemQty  int64  `json:"system_qty"`
	CountedQty int64  `json:"counted_qty"`
	Variance   int64  `json:"variance"`
	MovementID string `json:"movement_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// AuditResult resultado del documento.
type AuditResult struct {
	DocumentID  string            `json:"document_id"`
	Failed      int               `json:"failed"`
	Adjustments []AuditAdjustment `json:"adjustments"`
}

// Process aplica el conteo en una sola transacción. Las líneas con variación
// cero no generan movimiento.
func (p *AuditProcessor) Process(ctx context.Context, in AuditInput) (*AuditResult, error) {
	if len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, line := range in.Lines {
		if line.CountedQty < 0 {
			return nil, domain.ErrInvalidInput
		}
	}

	docID := newDocumentID()
	occurred := businessTime(in.OccurredAt)
	lines := sortByItemID(in.Lines, func(l AuditLine) string { return l.ItemID })

	result := &AuditResult{DocumentID: docID}
	err := p.txRunner.Run(ctx, func(
		accounts repository.StockAccountRepository,
		movements repository.StockMovementRepository,
		costs repository.CostHistoryRepository,
		items repository.ItemRepository,
		sources repository.SourceLineRepository,
	) error {
		for _, line := range lines {
			item, err := items.GetByID(line.ItemID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			if err != nil || !item.TrackStock {
				result.Failed++
				result.Adjustments = append(result.Adjustments, AuditAdjustment{
					ItemID: line.ItemID, CountedQty: line.CountedQty,
					Error: domain.ErrNotFound.Error(),
				})
				continue
			}

			// Lee la cantidad del sistema bajo bloqueo; el ajuste que sigue usa
			// la misma fila bloqueada, así la variación no puede quedar obsoleta.
			account, err := accounts.GetForUpdate(line.ItemID)
			if err != nil {
				return err
			}
			variance := line.CountedQty - account.Quantity
			adj := AuditAdjustment{
				ItemID:     line.ItemID,
				SystemQty:  account.Quantity,
				CountedQty: line.CountedQty,
				Variance:   variance,
			}
			if variance == 0 {
				result.Adjustments = append(result.Adjustments, adj)
				continue
			}

			var (
				direction string
				qty       int64
				unitCost  int64
			)
			if variance > 0 {
				direction = entity.DirectionIn
				qty = variance
				unitCost = item.PurchasePrice
				adj.MovementID, err = p.ledger.AddStockInTx(accounts, movements, costs, items, ledger.AddStockInput{
					ItemID:     line.ItemID,
					Quantity:   qty,
					SourceType: entity.SourceAudit,
					SourceID:   &docID,
					Note:       in.Note,
					ActorID:    in.ActorID,
					UnitCost:   unitCost,
					OccurredAt: &occurred,
				})
				if err != nil {
					return err
				}
			} else {
				direction = entity.DirectionOut
				qty = -variance
				unitCost = account.AverageCost
				res, err := p.ledger.ReduceStockInTx(accounts, movements, items, ledger.ReduceStockInput{
					ItemID:     line.ItemID,
					Quantity:   qty,
					SourceType: entity.SourceAudit,
					SourceID:   &docID,
					Note:       in.Note,
					ActorID:    in.ActorID,
					OccurredAt: &occurred,
				})
				if err != nil {
					return err
				}
				if !res.Success {
					result.Failed++
					adj.Error = res.Err.Error()
					result.Adjustments = append(result.Adjustments, adj)
					continue
				}
				adj.MovementID = res.MovementID
			}

			if err := sources.Create(&entity.SourceLine{
				DocumentID: docID,
				Kind:       entity.SourceAudit,
				Direction:  direction,
				ItemID:     line.ItemID,
				Quantity:   qty,
				UnitCost:   unitCost,
				ActorID:    in.ActorID,
				Note:       in.Note,
				OccurredAt: occurred,
			}); err != nil {
				return err
			}
			result.Adjustments = append(result.Adjustments, adj)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
