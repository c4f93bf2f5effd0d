package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// sqlLimit traduce la convención limit <= 0 = sin tope al parámetro de LIMIT:
// NULL hace que postgres no aplique tope, igual que LIMIT ALL.
func sqlLimit(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

// isLockNotAvailable verifica si un error es un lock_timeout agotado (55P03).
// Es la señal de que otra transacción retiene la fila más allá del tiempo
// máximo de espera configurado.
func isLockNotAvailable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "55P03" // lock_not_available
	}
	return strings.Contains(err.Error(), "55P03")
}
