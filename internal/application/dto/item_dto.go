package dto

import "time"

// CreateItemRequest body para POST /api/items. PurchasePrice en unidad mínima
// de moneda; es la fuente del backfill de costo promedio.
type CreateItemRequest struct {
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	PurchasePrice  int64  `json:"purchase_price"`
	TrackStock     bool   `json:"track_stock"`
	AllowBackorder bool   `json:"allow_backorder"`
}

// ItemResponse representación de un artículo.
type ItemResponse struct {
	ID             string    `json:"id"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	PurchasePrice  int64     `json:"purchase_price"`
	TrackStock     bool      `json:"track_stock"`
	AllowBackorder bool      `json:"allow_backorder"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ItemListResponse listado paginado de artículos.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
