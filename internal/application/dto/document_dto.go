package dto

import (
	"time"

	"github.com/dcastro/kardex-api/internal/application/processors"
)

// PurchaseDocumentRequest body para POST /api/documents/purchases.
type PurchaseDocumentRequest struct {
	Lines      []processors.PurchaseLine `json:"lines"`
	Note       string                    `json:"note,omitempty"`
	OccurredAt *time.Time                `json:"occurred_at,omitempty"`
}

// SaleDocumentRequest body para POST /api/documents/sales. Strict hace que
// cualquier línea sin stock revierta el documento completo.
type SaleDocumentRequest struct {
	Lines      []processors.SaleLine `json:"lines"`
	Note       string                `json:"note,omitempty"`
	Strict     bool                  `json:"strict,omitempty"`
	OccurredAt *time.Time            `json:"occurred_at,omitempty"`
}

// ReturnDocumentRequest body para POST /api/documents/returns.
type ReturnDocumentRequest struct {
	Direction  string                  `json:"direction"` // in | out
	Lines      []processors.ReturnLine `json:"lines"`
	Note       string                  `json:"note,omitempty"`
	OccurredAt *time.Time              `json:"occurred_at,omitempty"`
}

// AuditDocumentRequest body para POST /api/documents/audits.
type AuditDocumentRequest struct {
	Lines      []processors.AuditLine `json:"lines"`
	Note       string                 `json:"note,omitempty"`
	OccurredAt *time.Time             `json:"occurred_at,omitempty"`
}
