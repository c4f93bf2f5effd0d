package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dcastro/kardex-api/internal/domain"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
)

var _ repository.StockAccountRepository = (*StockAccountRepo)(nil)

// StockAccountRepo implementación de StockAccountRepository sobre PostgreSQL
// (usable con pool o tx).
type StockAccountRepo struct {
	q Querier
}

// NewStockAccountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAccountRepository(q Querier) *StockAccountRepo {
	return &StockAccountRepo{q: q}
}

const accountColumns = `item_id, quantity, reserved, average_cost, average_cost_updated_at, updated_at`

// Get obtiene la cuenta de stock de un artículo. Si aún no existe fila devuelve
// una cuenta cero-valuada (el primer movimiento la materializa con Upsert).
func (r *StockAccountRepo) Get(itemID string) (*entity.StockAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM stock_accounts WHERE item_id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, itemID), itemID, "get stock account")
}

// GetForUpdate obtiene la cuenta y bloquea la fila (SELECT FOR UPDATE) hasta el
// commit de la transacción. Si el lock_timeout se agota devuelve
// domain.ErrConcurrencyTimeout.
func (r *StockAccountRepo) GetForUpdate(itemID string) (*entity.StockAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM stock_accounts WHERE item_id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, itemID), itemID, "get stock account for update")
}

func (r *StockAccountRepo) scanOne(row pgx.Row, itemID, op string) (*entity.StockAccount, error) {
	var a entity.StockAccount
	err := row.Scan(&a.ItemID, &a.Quantity, &a.Reserved, &a.AverageCost, &a.AverageCostUpdatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockAccount{ItemID: itemID}, nil
		}
		if isLockNotAvailable(err) {
			return nil, domain.ErrConcurrencyTimeout
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &a, nil
}

// Upsert inserta o actualiza la cuenta de un artículo.
func (r *StockAccountRepo) Upsert(account *entity.StockAccount) error {
	query := `
		INSERT INTO stock_accounts (item_id, quantity, reserved, average_cost, average_cost_updated_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (item_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, reserved = EXCLUDED.reserved,
			average_cost = EXCLUDED.average_cost,
			average_cost_updated_at = EXCLUDED.average_cost_updated_at,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		account.ItemID, account.Quantity, account.Reserved,
		account.AverageCost, account.AverageCostUpdatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stock account: %w", err)
	}
	return nil
}

// List lista cuentas paginadas. limit <= 0 lista todas.
func (r *StockAccountRepo) List(limit, offset int) ([]*entity.StockAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM stock_accounts ORDER BY item_id LIMIT $1 OFFSET $2`
	return r.list(query, []any{sqlLimit(limit), offset}, "list stock accounts")
}

// ListZeroCost devuelve las cuentas con costo promedio cero o sin inicializar (backfill).
func (r *StockAccountRepo) ListZeroCost() ([]*entity.StockAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM stock_accounts
		WHERE average_cost = 0 OR average_cost_updated_at IS NULL
		ORDER BY item_id`
	return r.list(query, nil, "list zero-cost stock accounts")
}

func (r *StockAccountRepo) list(query string, args []any, op string) ([]*entity.StockAccount, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.StockAccount
	for rows.Next() {
		var a entity.StockAccount
		if err := rows.Scan(&a.ItemID, &a.Quantity, &a.Reserved, &a.AverageCost, &a.AverageCostUpdatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock account: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// ResetAll deja todas las cuentas en cero. Solo lo invoca el recuento total,
// dentro de su transacción.
func (r *StockAccountRepo) ResetAll() error {
	query := `UPDATE stock_accounts SET quantity = 0, reserved = 0,
		average_cost = 0, average_cost_updated_at = NULL, updated_at = now()`
	if _, err := r.q.Exec(context.Background(), query); err != nil {
		return fmt.Errorf("reset stock accounts: %w", err)
	}
	return nil
}

// ListValuation devuelve la valorización por artículo. El producto se calcula
// en NUMERIC del lado de la base y llega como decimal vía el codec registrado
// en el pool.
func (r *StockAccountRepo) ListValuation(ctx context.Context) ([]repository.ValuationRow, error) {
	query := `
		SELECT a.item_id, i.sku, i.name, a.quantity, a.average_cost,
			(a.quantity::numeric * a.average_cost::numeric) AS stock_value
		FROM stock_accounts a
		JOIN items i ON i.id = a.item_id
		WHERE i.track_stock
		ORDER BY stock_value DESC`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list valuation: %w", err)
	}
	defer rows.Close()
	var list []repository.ValuationRow
	for rows.Next() {
		var v repository.ValuationRow
		if err := rows.Scan(&v.ItemID, &v.SKU, &v.Name, &v.Quantity, &v.AverageCost, &v.StockValue); err != nil {
			return nil, fmt.Errorf("scan valuation row: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}
