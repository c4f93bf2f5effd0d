package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dcastro/kardex-api/internal/domain/entity"
	"github.com/dcastro/kardex-api/internal/domain/repository"
)

var _ repository.SourceLineRepository = (*SourceLineRepo)(nil)

// SourceLineRepo implementación sobre PostgreSQL (usable con pool o tx).
type SourceLineRepo struct {
	q Querier
}

// NewSourceLineRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSourceLineRepository(q Querier) *SourceLineRepo {
	return &SourceLineRepo{q: q}
}

const sourceLineColumns = `id, document_id, kind, direction, item_id, quantity, unit_cost,
	actor_id, note, occurred_at, created_at`

// Create persiste una línea de documento origen.
func (r *SourceLineRepo) Create(line *entity.SourceLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	if line.CreatedAt.IsZero() {
		line.CreatedAt = line.OccurredAt
	}
	query := `
		INSERT INTO source_lines (` + sourceLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.DocumentID, line.Kind, line.Direction, line.ItemID,
		line.Quantity, line.UnitCost, line.ActorID, line.Note, line.OccurredAt, line.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create source line: %w", err)
	}
	return nil
}

// ListByDocument lista las líneas de un documento.
func (r *SourceLineRepo) ListByDocument(documentID string) ([]*entity.SourceLine, error) {
	query := `SELECT ` + sourceLineColumns + ` FROM source_lines
		WHERE document_id = $1 ORDER BY item_id`
	return r.list(query, []any{documentID}, "list source lines by document")
}

// ListChronological devuelve todas las líneas en el orden de reproducción del
// recuento: timestamp de negocio ascendente, con desempate estable por fecha de
// inserción e id para que dos corridas recorran exactamente la misma secuencia.
func (r *SourceLineRepo) ListChronological() ([]*entity.SourceLine, error) {
	query := `SELECT ` + sourceLineColumns + ` FROM source_lines
		ORDER BY occurred_at ASC, created_at ASC, id ASC`
	return r.list(query, nil, "list source lines chronologically")
}

func (r *SourceLineRepo) list(query string, args []any, op string) ([]*entity.SourceLine, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.SourceLine
	for rows.Next() {
		var l entity.SourceLine
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.Kind, &l.Direction, &l.ItemID,
			&l.Quantity, &l.UnitCost, &l.ActorID, &l.Note, &l.OccurredAt, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan source line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
