package entity

import "time"

// Item representa un artículo del catálogo sujeto a control de inventario.
// PurchasePrice es el precio de compra configurado (unidad mínima de moneda,
// sin decimales) y es la fuente del costo promedio cuando se ejecuta el backfill.
type Item struct {
	ID             string
	SKU            string
	Name           string
	PurchasePrice  int64
	TrackStock     bool
	AllowBackorder bool // permite vender bajo cero (backorder) explícitamente
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
