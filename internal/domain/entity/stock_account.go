package entity

import "time"

// StockAccount es el estado vigente del inventario de un artículo: cantidad en
// mano, cantidad reservada y costo promedio ponderado. Se muta únicamente a
// través del StockLedger; un recuento total la reinicia a cero y la reconstruye.
//
// Invariantes: 0 <= Reserved <= Quantity (salvo backorder, donde Quantity puede
// ser negativa y Reserved se ajusta a cero), y Quantity es igual al valor inicial
// más la suma con signo de los movimientos del artículo.
type StockAccount struct {
	ItemID               string
	Quantity             int64
	Reserved             int64
	AverageCost          int64 // unidad mínima de moneda; solo cambia por entradas
	AverageCostUpdatedAt *time.Time
	UpdatedAt            time.Time
}

// Available devuelve las unidades disponibles para salida (Quantity - Reserved).
// Es un valor derivado: nunca se persiste por separado.
func (a *StockAccount) Available() int64 {
	return a.Quantity - a.Reserved
}

// ClampReserved recorta Reserved al rango válido tras una mutación de Quantity.
func (a *StockAccount) ClampReserved() {
	if a.Reserved < 0 {
		a.Reserved = 0
	}
	if a.Reserved > a.Quantity {
		if a.Quantity > 0 {
			a.Reserved = a.Quantity
		} else {
			a.Reserved = 0
		}
	}
}
