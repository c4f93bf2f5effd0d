package repository

import "github.com/dcastro/kardex-api/internal/domain/entity"

// SourceLineRepository define el puerto de persistencia para las líneas de
// documento origen. ListChronological es el insumo del recuento: todas las
// líneas ordenadas ascendentemente por su timestamp de negocio original.
type SourceLineRepository interface {
	Create(line *entity.SourceLine) error
	ListByDocument(documentID string) ([]*entity.SourceLine, error)
	ListChronological() ([]*entity.SourceLine, error)
}
