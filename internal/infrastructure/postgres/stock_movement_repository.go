package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dcastro/kardex-api/internal/domain"
	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// La tabla es append-only: no existe Update ni Delete individual.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, item_id, direction, quantity, quantity_before, quantity_after,
	source_type, source_id, note, actor_id, created_at`

// Create persiste un movimiento de stock.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	actorID := (*string)(nil)
	if movement.ActorID != "" {
		actorID = &movement.ActorID
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ItemID, movement.Direction,
		movement.Quantity, movement.QuantityBefore, movement.QuantityAfter,
		movement.SourceType, movement.SourceID, movement.Note, actorID, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	var m entity.StockMovement
	var actorID *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.ItemID, &m.Direction, &m.Quantity, &m.QuantityBefore, &m.QuantityAfter,
		&m.SourceType, &m.SourceID, &m.Note, &actorID, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	if actorID != nil {
		m.ActorID = *actorID
	}
	return &m, nil
}

// ListByItem lista movimientos de un artículo en un rango de fechas.
func (r *StockMovementRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE item_id = $1`
	args := []any{itemID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, sqlLimit(limit), offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements by item: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var actorID *string
		if err := rows.Scan(&m.ID, &m.ItemID, &m.Direction, &m.Quantity, &m.QuantityBefore, &m.QuantityAfter,
			&m.SourceType, &m.SourceID, &m.Note, &actorID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		if actorID != nil {
			m.ActorID = *actorID
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// Count devuelve el total de movimientos registrados.
func (r *StockMovementRepo) Count() (int64, error) {
	var n int64
	err := r.q.QueryRow(context.Background(), `SELECT count(*) FROM stock_movements`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count stock movements: %w", err)
	}
	return n, nil
}

// Truncate vacía el registro completo (solo recuento total, dentro de su tx).
func (r *StockMovementRepo) Truncate() error {
	if _, err := r.q.Exec(context.Background(), `TRUNCATE TABLE stock_movements`); err != nil {
		return fmt.Errorf("truncate stock movements: %w", err)
	}
	return nil
}
