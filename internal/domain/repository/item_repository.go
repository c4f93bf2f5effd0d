package repository

import "github.com/dcastro/kardex-api/internal/domain/entity"

// ItemRepository define el puerto de persistencia para Item (DIP).
// Los Get devuelven domain.ErrNotFound cuando el artículo no existe.
type ItemRepository interface {
	Create(item *entity.Item) error
	GetByID(id string) (*entity.Item, error)
	GetBySKU(sku string) (*entity.Item, error)
	// List lista ordenado por SKU; limit <= 0 lista todo.
	List(limit, offset int) ([]*entity.Item, error)
}
