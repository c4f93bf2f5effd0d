package dto

import "github.com/shopspring/decimal"

// ValuationItemDTO valor en libros de un artículo: cantidad × costo promedio,
// y su participación porcentual sobre el total del inventario.
type ValuationItemDTO struct {
	ItemID      string          `json:"item_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Quantity    int64           `json:"quantity"`
	AverageCost int64           `json:"average_cost"`
	StockValue  decimal.Decimal `json:"stock_value"`
	SharePct    decimal.Decimal `json:"share_pct"`
}

// ValuationReportDTO reporte de valorización del inventario completo.
type ValuationReportDTO struct {
	TotalValue decimal.Decimal    `json:"total_value"`
	Items      []ValuationItemDTO `json:"items"`
}
