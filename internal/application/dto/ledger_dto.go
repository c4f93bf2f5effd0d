package dto

import "time"

// AddStockRequest body para POST /api/stock/in.
type AddStockRequest struct {
	ItemID     string  `json:"item_id"`
	Quantity   int64   `json:"quantity"`
	SourceType string  `json:"source_type"`
	SourceID   *string `json:"source_id,omitempty"`
	Note       string  `json:"note,omitempty"`
	UnitCost   int64   `json:"unit_cost"`
}

// ReduceStockRequest body para POST /api/stock/out.
type ReduceStockRequest struct {
	ItemID           string  `json:"item_id"`
	Quantity         int64   `json:"quantity"`
	SourceType       string  `json:"source_type"`
	SourceID         *string `json:"source_id,omitempty"`
	Note             string  `json:"note,omitempty"`
	UnitCostOverride *int64  `json:"unit_cost_override,omitempty"`
	ReleaseReserved  bool    `json:"release_reserved,omitempty"`
}

// ReduceStockResponse resultado explícito de una salida: el llamador recibe
// success=false con el motivo en lugar de un error HTTP cuando falta stock.
type ReduceStockResponse struct {
	Success    bool   `json:"success"`
	MovementID string `json:"movement_id,omitempty"`
	COGS       int64  `json:"cogs,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ReserveRequest body para POST /api/stock/reserve y /api/stock/release.
type ReserveRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
}

// StockAccountResponse estado vigente de la cuenta de un artículo.
type StockAccountResponse struct {
	ItemID               string     `json:"item_id"`
	Quantity             int64      `json:"quantity"`
	Reserved             int64      `json:"reserved"`
	Available            int64      `json:"available"`
	AverageCost          int64      `json:"average_cost"`
	AverageCostUpdatedAt *time.Time `json:"average_cost_updated_at,omitempty"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// MovementResponse una entrada del registro de movimientos.
type MovementResponse struct {
	ID             string    `json:"id"`
	ItemID         string    `json:"item_id"`
	Direction      string    `json:"direction"`
	Quantity       int64     `json:"quantity"`
	QuantityBefore int64     `json:"quantity_before"`
	QuantityAfter  int64     `json:"quantity_after"`
	SourceType     string    `json:"source_type"`
	SourceID       *string   `json:"source_id,omitempty"`
	Note           string    `json:"note,omitempty"`
	ActorID        string    `json:"actor_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// CostHistoryResponse una entrada del historial de costo promedio.
type CostHistoryResponse struct {
	ID             string    `json:"id"`
	ItemID         string    `json:"item_id"`
	OldAverageCost int64     `json:"old_average_cost"`
	NewAverageCost int64     `json:"new_average_cost"`
	TriggerType    string    `json:"trigger_type"`
	SourceID       *string   `json:"source_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// MovementListResponse listado paginado de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CostHistoryListResponse listado paginado del historial de costo.
type CostHistoryListResponse struct {
	Items []CostHistoryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
