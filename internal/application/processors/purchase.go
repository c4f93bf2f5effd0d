package processors

import (
	"context"
	"time"

	"github.com/dcastro/kardex-api/internal/application/ledger"
	"github.com/dcastro/kardex-api/internal/domain"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
)

// PurchaseProcessor registra compras a proveedor: cada línea entra al libro con
// su costo unitario de compra. Un documento de compra es todo-o-nada: una línea
// inválida revierte el documento completo.
type PurchaseProcessor struct {
	txRunner ledger.TxRunner
	ledger   *ledger.StockLedger
}

// NewPurchaseProcessor construye el procesador de compras.
func NewPurchaseProcessor(txRunner ledger.TxRunner, l *ledger.StockLedger) *PurchaseProcessor {
	return &PurchaseProcessor{txRunner: txRunner, ledger: l}
}

// PurchaseLine línea de compra: cantidad y costo unitario por artículo.
type PurchaseLine struct {
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
	UnitCost int64  `json:"unit_cost"`
}

// PurchaseInput documento de compra. OccurredAt es el timestamp de negocio del
// documento (nil = ahora).
type PurchaseInput struct {
	Lines      []PurchaseLine
	ActorID    string
	Note       string
	OccurredAt *time.Time
}

// PurchaseResult resultado del documento.
type PurchaseResult struct {
	DocumentID string       `json:"document_id"`
	Lines      []LineResult `json:"lines"`
}

// Process aplica el documento de compra en una sola transacción.
func (p *PurchaseProcessor) Process(ctx context.Context, in PurchaseInput) (*PurchaseResult, error) {
	if len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}

	docID := newDocumentID()
	occurred := businessTime(in.OccurredAt)
	lines := sortByItemID(in.Lines, func(l PurchaseLine) string { return l.ItemID })

	result := &PurchaseResult{DocumentID: docID}
	err := p.txRunner.Run(ctx, func(
		accounts repository.StockAccountRepository,
		movements repository.StockMovementRepository,
		costs repository.CostHistoryRepository,
		items repository.ItemRepository,
		sources repository.SourceLineRepository,
	) error {
		for _, line := range lines {
			movementID, err := p.ledger.AddStockInTx(accounts, movements, costs, items, ledger.AddStockInput{
				ItemID:     line.ItemID,
				Quantity:   line.Quantity,
				SourceType: entity.SourcePurchase,
				SourceID:   &docID,
				Note:       in.Note,
				ActorID:    in.ActorID,
				UnitCost:   line.UnitCost,
				OccurredAt: &occurred,
			})
			if err != nil {
				return err
			}
			if err := sources.Create(&entity.SourceLine{
				DocumentID: docID,
				Kind:       entity.SourcePurchase,
				Direction:  entity.DirectionIn,
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
				ItemID: line.ItemID, MovementID: movementID, Success: true,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
