package repository

import (
	"time"

	"github.com/dcastro/kardex-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para el registro de
// movimientos (append-only: no hay Update ni Delete individual).
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	// GetByID devuelve domain.ErrNotFound cuando el movimiento no existe.
	GetByID(id string) (*entity.StockMovement, error)
	// ListByItem lista más reciente primero dentro del rango; limit <= 0 lista todo.
	ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	Count() (int64, error)
	// Truncate vacía el registro completo. Solo lo invoca el recuento total,
	// dentro de su transacción de mantenimiento.
	Truncate() error
}
