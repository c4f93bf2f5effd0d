package dto

// RecountRequest body para POST /api/maintenance/recount. Confirm debe venir
// en true: la operación destruye y reconstruye todo el estado derivado.
type RecountRequest struct {
	Confirm bool `json:"confirm"`
}

// BackfillRequest body para POST /api/maintenance/backfill.
type BackfillRequest struct {
	ResetAll bool `json:"reset_all"`
}
