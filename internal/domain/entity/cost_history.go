package entity

import "time"

// Disparadores de un cambio de costo promedio, además de los tipos de documento
// (purchase, return, audit) que generan entradas de inventario.
const (
	TriggerInit    = "init"    // backfill: siembra desde el precio de compra
	TriggerRecount = "recount" // filas regeneradas por el recuento total
)

// CostHistory es una entrada del historial de costo promedio: inmutable y solo
// de anexado. Se escribe si y solo si una entrada de inventario (o el backfill)
// cambia el costo promedio; las salidas jamás la producen.
type CostHistory struct {
	ID             string
	ItemID         string
	OldAverageCost int64
	NewAverageCost int64
	TriggerType    string
	SourceID       *string
	CreatedAt      time.Time
}
