package entity

import "time"

// SourceLine es una línea de documento origen persistida para poder reconstruir
// el libro de inventario: cada compra, venta, devolución o ajuste de conteo deja
// aquí su rastro con el timestamp de negocio original (OccurredAt), que es el
// orden de reproducción del recuento, no la fecha de inserción.
type SourceLine struct {
	ID         string
	DocumentID string // agrupa las líneas de un mismo documento
	Kind       string // purchase | sale | return | audit
	Direction  string // in | out (resuelve devoluciones y signo de la variación de conteo)
	ItemID     string
	Quantity   int64 // siempre positiva; para audit es el valor absoluto de la variación
	UnitCost   int64 // costo unitario aplicado en la línea
	ActorID    string
	Note       string
	OccurredAt time.Time
	CreatedAt  time.Time
}
