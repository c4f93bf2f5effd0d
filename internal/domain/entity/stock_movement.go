package entity

import "time"

// Direcciones de un movimiento de stock.
const (
	DirectionIn  = "in"  // entrada
	DirectionOut = "out" // salida
)

// Tipos de documento origen de un movimiento.
const (
	SourcePurchase = "purchase" // compra a proveedor
	SourceSale     = "sale"     // venta
	SourceReturn   = "return"   // devolución (la dirección distingue entrada/salida)
	SourceAudit    = "audit"    // conteo físico / opname
)

// StockMovement es una entrada del registro de movimientos: inmutable y solo de
// anexado. Nunca se edita ni se borra; una corrección se hace anexando un
// movimiento compensatorio por la misma API.
//
// Invariante: QuantityAfter = QuantityBefore + Quantity para "in" y
// QuantityBefore - Quantity para "out" (Quantity siempre positiva).
type StockMovement struct {
	ID             string
	ItemID         string
	Direction      string
	Quantity       int64
	QuantityBefore int64
	QuantityAfter  int64
	SourceType     string
	SourceID       *string // referencia al documento origen (puede ser nil)
	Note           string
	ActorID        string
	CreatedAt      time.Time
}

// ValidSourceForDirection indica si el tipo de documento puede generar un
// movimiento en la dirección dada (las ventas nunca entran, las compras nunca salen).
func ValidSourceForDirection(sourceType, direction string) bool {
	switch direction {
	case DirectionIn:
		return sourceType == SourcePurchase || sourceType == SourceReturn || sourceType == SourceAudit
	case DirectionOut:
		return sourceType == SourceSale || sourceType == SourceReturn || sourceType == SourceAudit
	}
	return false
}
