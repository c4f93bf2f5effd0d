package ledger

import (
	"context"

	"github.com/dcastro/kardex-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el libro de stock:
// o se escriben cuenta, movimiento e historial de costo juntos, o nada.
//
// El runner debe aplicar el tiempo máximo de espera de bloqueo configurado;
// superarlo se reporta como domain.ErrConcurrencyTimeout y el llamador puede
// reintentar.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		accounts repository.StockAccountRepository,
		movements repository.StockMovementRepository,
		costs repository.CostHistoryRepository,
		items repository.ItemRepository,
		sources repository.SourceLineRepository,
	) error) error
}
