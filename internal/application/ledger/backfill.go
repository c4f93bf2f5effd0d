package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/dcastro/kardex-api/internal/domain"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
	"github.com/dcastro/kardex-api/pkg/logger"
)

// CostInitializer siembra el costo promedio desde el precio de compra
// configurado del artículo. No es un evento de cantidad: no crea movimientos,
// solo puede crear filas de historial de costo con trigger "init".
type CostInitializer struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewCostInitializer construye el inicializador de costos.
func NewCostInitializer(txRunner TxRunner, log *logger.Logger) *CostInitializer {
	return &CostInitializer{txRunner: txRunner, log: log}
}

// BackfillSummary resumen para el operador.
type BackfillSummary struct {
	Seeded  int `json:"seeded"`
	Skipped int `json:"skipped"`
}

// Backfill siembra el costo promedio de las cuentas que lo tienen en cero o sin
// inicializar. Es idempotente: una segunda corrida no encuentra cuentas por
// sembrar y no produce historial nuevo. Con resetAll=true sobreescribe
// incondicionalmente el costo de todas las cuentas desde su precio de compra
// actual; es una corrección operativa explícita, no parte de la operación normal.
func (c *CostInitializer) Backfill(ctx context.Context, resetAll bool) (*BackfillSummary, error) {
	summary := &BackfillSummary{}
	err := c.txRunner.Run(ctx, func(
		accounts repository.StockAccountRepository,
		_ repository.StockMovementRepository,
		costs repository.CostHistoryRepository,
		items repository.ItemRepository,
		_ repository.SourceLineRepository,
	) error {
		var (
			targets []*entity.StockAccount
			err     error
		)
		if resetAll {
			targets, err = accounts.List(0, 0)
		} else {
			targets, err = accounts.ListZeroCost()
		}
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, account := range targets {
			item, err := items.GetByID(account.ItemID)
			if errors.Is(err, domain.ErrNotFound) {
				// Cuenta huérfana: sin artículo no hay precio que sembrar.
				summary.Skipped++
				continue
			}
			if err != nil {
				return err
			}
			if !item.TrackStock || item.PurchasePrice <= 0 {
				// Sin precio de compra no hay nada que sembrar; se deja la
				// cuenta como está para que la corrida siga siendo idempotente.
				summary.Skipped++
				continue
			}
			if !resetAll && account.AverageCost != 0 {
				summary.Skipped++
				continue
			}
			if account.AverageCost == item.PurchasePrice {
				summary.Skipped++
				continue
			}

			if err := costs.Create(&entity.CostHistory{
				ItemID:         account.ItemID,
				OldAverageCost: account.AverageCost,
				NewAverageCost: item.PurchasePrice,
				TriggerType:    entity.TriggerInit,
				CreatedAt:      now,
			}); err != nil {
				return err
			}
			account.AverageCost = item.PurchasePrice
			ts := now
			account.AverageCostUpdatedAt = &ts
			account.UpdatedAt = now
			if err := accounts.Upsert(account); err != nil {
				return err
			}
			summary.Seeded++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Info().
		Bool("reset_all", resetAll).
		Int("seeded", summary.Seeded).
		Int("skipped", summary.Skipped).
		Msg("backfill de costo promedio completado")
	return summary, nil
}
