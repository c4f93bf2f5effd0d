package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestSQLLimit_SinTopeConCeroONegativo(t *testing.T) {
	// LIMIT NULL = sin tope, misma convención limit <= 0 del almacén en memoria.
	assert.Nil(t, sqlLimit(0))
	assert.Nil(t, sqlLimit(-1))
	assert.Equal(t, 20, sqlLimit(20))
}

func TestIsLockNotAvailable(t *testing.T) {
	assert.True(t, isLockNotAvailable(&pgconn.PgError{Code: "55P03"}))
	assert.False(t, isLockNotAvailable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isLockNotAvailable(errors.New("connection refused")))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(errors.New("otra cosa")))
}
