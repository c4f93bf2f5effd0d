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

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id, sku, name, purchase_price, track_stock, allow_backorder, created_at, updated_at`

// Create persiste un artículo nuevo.
func (r *ItemRepo) Create(item *entity.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.SKU, item.Name, item.PurchasePrice,
		item.TrackStock, item.AllowBackorder, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID.
func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get item")
}

// GetBySKU obtiene un artículo por SKU.
func (r *ItemRepo) GetBySKU(sku string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE sku = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, sku), "get item by sku")
}

func (r *ItemRepo) scanOne(row pgx.Row, op string) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(&it.ID, &it.SKU, &it.Name, &it.PurchasePrice,
		&it.TrackStock, &it.AllowBackorder, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &it, nil
}

// List lista artículos con paginación.
func (r *ItemRepo) List(limit, offset int) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY sku LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, sqlLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		var it entity.Item
		if err := rows.Scan(&it.ID, &it.SKU, &it.Name, &it.PurchasePrice,
			&it.TrackStock, &it.AllowBackorder, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}
