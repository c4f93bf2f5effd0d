package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
)

var _ repository.CostHistoryRepository = (*CostHistoryRepo)(nil)

// CostHistoryRepo implementación sobre PostgreSQL (usable con pool o tx).
// Append-only, como el registro de movimientos.
type CostHistoryRepo struct {
	q Querier
}

// NewCostHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCostHistoryRepository(q Querier) *CostHistoryRepo {
	return &CostHistoryRepo{q: q}
}

// Create persiste una entrada del historial de costo.
func (r *CostHistoryRepo) Create(entry *entity.CostHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO cost_history (id, item_id, old_average_cost, new_average_cost, trigger_type, source_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.ItemID, entry.OldAverageCost, entry.NewAverageCost,
		entry.TriggerType, entry.SourceID, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create cost history entry: %w", err)
	}
	return nil
}

// ListByItem lista el historial de costo de un artículo, más reciente primero.
func (r *CostHistoryRepo) ListByItem(itemID string, limit, offset int) ([]*entity.CostHistory, error) {
	query := `
		SELECT id, item_id, old_average_cost, new_average_cost, trigger_type, source_id, created_at
		FROM cost_history WHERE item_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, itemID, sqlLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list cost history by item: %w", err)
	}
	defer rows.Close()
	var list []*entity.CostHistory
	for rows.Next() {
		var e entity.CostHistory
		if err := rows.Scan(&e.ID, &e.ItemID, &e.OldAverageCost, &e.NewAverageCost,
			&e.TriggerType, &e.SourceID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cost history entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// Count devuelve el total de entradas del historial.
func (r *CostHistoryRepo) Count() (int64, error) {
	var n int64
	err := r.q.QueryRow(context.Background(), `SELECT count(*) FROM cost_history`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count cost history: %w", err)
	}
	return n, nil
}

// Truncate vacía el historial completo (solo recuento total, dentro de su tx).
func (r *CostHistoryRepo) Truncate() error {
	if _, err := r.q.Exec(context.Background(), `TRUNCATE TABLE cost_history`); err != nil {
		return fmt.Errorf("truncate cost history: %w", err)
	}
	return nil
}
