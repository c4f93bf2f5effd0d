package costing

// Servicio de dominio para el costo promedio ponderado. Todo en aritmética
// entera sobre la unidad mínima de moneda: la división redondea siempre hacia
// arriba para no subvalorar el inventario, y el resultado debe ser reproducible
// bit a bit en una replay de auditoría (prohibido el punto flotante aquí).

// WeightedAverage calcula el nuevo costo promedio tras una entrada:
//
//	ceil((quantity*averageCost + inQty*unitCost) / (quantity + inQty))
//
// Si no hay stock previo (quantity <= 0), el costo de la entrada manda.
func WeightedAverage(quantity, averageCost, inQty, unitCost int64) int64 {
	if inQty <= 0 {
		return averageCost
	}
	if quantity <= 0 {
		return unitCost
	}
	num := quantity*averageCost + inQty*unitCost
	den := quantity + inQty
	return ceilDiv(num, den)
}

// COGS devuelve el costo de venta de una salida: qty unidades al costo unitario
// dado (el costo promedio vigente, o un override explícito del documento).
func COGS(qty, unitCost int64) int64 {
	return qty * unitCost
}

// ceilDiv divide enteros no negativos redondeando hacia arriba.
func ceilDiv(num, den int64) int64 {
	if den == 0 {
		return 0
	}
	return (num + den - 1) / den
}
