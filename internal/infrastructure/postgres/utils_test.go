package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Ventas-api/internal/domain"
)

func TestIsConflict(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"serialización":    {&pgconn.PgError{Code: "40001"}, true},
		"deadlock":         {fmt.Errorf("update stock: %w", &pgconn.PgError{Code: "40P01"}), true},
		"lock no obtenido": {&pgconn.PgError{Code: "55P03"}, true},
		"único":            {&pgconn.PgError{Code: "23505"}, false},
		"genérico":         {errors.New("conexión cerrada"), false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, isConflict(tc.err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(errors.New("ERROR: duplicate key (SQLSTATE 23505)")))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23514"}))
}

func TestClassify(t *testing.T) {
	conflict := classify("commit transaction", &pgconn.PgError{Code: "40001"})
	assert.True(t, conflict.Conflict)
	assert.ErrorIs(t, conflict, domain.ErrPersistence)

	plain := classify("begin transaction", errors.New("timeout"))
	assert.False(t, plain.Conflict)
	assert.Equal(t, "begin transaction", plain.Op)
}
