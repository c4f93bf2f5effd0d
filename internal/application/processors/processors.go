// Package processors contiene los procesadores de documentos (compras, ventas,
// devoluciones y conteos físicos). Son los llamadores del StockLedger: cada uno
// procesa su documento línea por línea en una sola transacción, adquiriendo los
// bloqueos en orden ascendente de item id para evitar deadlocks entre
// documentos multilínea concurrentes, y persiste las líneas origen que el
// recuento total reproduce después.
package processors

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// LineResult resultado por línea de documento. Error va vacío en éxito.
type LineResult struct {
	ItemID     string `json:"item_id"`
	MovementID string `json:"movement_id,omitempty"`
	Success    bool   `json:"success"`
	COGS       int64  `json:"cogs,omitempty"`
	Error      string `json:"error,omitempty"`
}

// newDocumentID genera el identificador del documento.
func newDocumentID() string {
	return uuid.New().String()
}

// businessTime devuelve el timestamp de negocio del documento (ahora si no vino).
func businessTime(occurredAt *time.Time) time.Time {
	if occurredAt != nil {
		return occurredAt.UTC()
	}
	return time.Now().UTC()
}

// sortByItemID ordena índices de líneas por item id ascendente (orden fijo de bloqueo).
func sortByItemID[T any](lines []T, itemID func(T) string) []T {
	sorted := make([]T, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return itemID(sorted[i]) < itemID(sorted[j])
	})
	return sorted
}
