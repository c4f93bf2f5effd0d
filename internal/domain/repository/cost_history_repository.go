package repository

import "github.com/dcastro/kardex-api/internal/domain/entity"

// CostHistoryRepository define el puerto de persistencia para el historial de
// costo promedio (append-only, igual que los movimientos).
type CostHistoryRepository interface {
	Create(entry *entity.CostHistory) error
	// ListByItem lista más reciente primero; limit <= 0 lista todo.
	ListByItem(itemID string, limit, offset int) ([]*entity.CostHistory, error)
	Count() (int64, error)
	// Truncate vacía el historial completo (solo recuento total).
	Truncate() error
}
