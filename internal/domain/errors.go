package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrItemNotTracked     = errors.New("el artículo no maneja inventario")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrConcurrencyTimeout = errors.New("tiempo de espera de bloqueo agotado")
)

// IsDomainRejection indica si un error es un rechazo a nivel de datos (cantidad
// inválida, artículo desconocido o sin seguimiento) que un orquestador por lotes
// puede contar como línea fallida y continuar. Cualquier otro error se trata como
// falla de infraestructura y aborta la transacción completa.
func IsDomainRejection(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrItemNotTracked)
}
