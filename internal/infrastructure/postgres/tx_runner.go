package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dcastro/kardex-api/internal/application/ledger"
	"github.com/dcastro/kardex-api/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con el tiempo
// máximo de espera de bloqueo configurado. Un SELECT FOR UPDATE que espere más
// que ese límite falla con 55P03 y el repositorio lo traduce a
// domain.ErrConcurrencyTimeout.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool y el lock timeout.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia una transacción, ejecuta fn con los repositorios atados a la tx y
// hace Commit o Rollback. SET LOCAL limita el lock_timeout a esta transacción.
func (r *TxRunner) Run(ctx context.Context, fn func(
	accounts repository.StockAccountRepository,
	movements repository.StockMovementRepository,
	costs repository.CostHistoryRepository,
	items repository.ItemRepository,
	sources repository.SourceLineRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		query := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, query); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	accounts := NewStockAccountRepository(tx)
	movements := NewStockMovementRepository(tx)
	costs := NewCostHistoryRepository(tx)
	items := NewItemRepository(tx)
	sources := NewSourceLineRepository(tx)

	if err := fn(accounts, movements, costs, items, sources); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
