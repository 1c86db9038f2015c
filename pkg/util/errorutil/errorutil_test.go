package errorutil

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{name: "domain error passes through", err: NewInvalidParent("c1"), code: CodeInvalidParent, status: http.StatusUnprocessableEntity},
		{name: "wrapped domain error", err: fmt.Errorf("apply: %w", NewForbidden("no")), code: CodeForbidden, status: http.StatusForbidden},
		{name: "no rows", err: pgx.ErrNoRows, code: CodeNotFound, status: http.StatusNotFound},
		{name: "memory not found", err: fmt.Errorf("get: %w", ErrNotFound), code: CodeNotFound, status: http.StatusNotFound},
		{name: "malformed uuid", err: fmt.Errorf("load: %w", &pgconn.PgError{Code: "22P02"}), code: CodeNotFound, status: http.StatusNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, code: CodeConflict, status: http.StatusConflict},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503"}, code: CodeConflict, status: http.StatusConflict},
		{name: "still referenced", err: fmt.Errorf("delete asset: %w", ErrReferenced), code: CodeConflict, status: http.StatusConflict},
		{name: "anything else", err: fmt.Errorf("boom"), code: CodeInternal, status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			require.NotNil(t, de)
			assert.Equal(t, tc.code, de.Code)
			assert.Equal(t, tc.status, de.HTTPStatus)
		})
	}
}

func TestMapErrorKeepsNil(t *testing.T) {
	assert.NoError(t, MapError(nil))
	assert.Nil(t, ToDomainError(nil))
}

func TestInternalErrorHidesCause(t *testing.T) {
	err := NewInternalError(fmt.Errorf("connection reset"))
	de := ToDomainError(err)
	assert.Equal(t, "internal server error", de.Message)
	assert.ErrorContains(t, err, "connection reset")
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(NewInvalidStatus("s"), CodeInvalidStatus))
	assert.False(t, HasCode(NewInvalidStatus("s"), CodeNotFound))
	assert.False(t, HasCode(fmt.Errorf("plain"), CodeNotFound))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(pgx.ErrNoRows))
	assert.True(t, IsNotFound(fmt.Errorf("get: %w", ErrNotFound)))
	assert.True(t, IsNotFound(&pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "nope"`}))
	assert.False(t, IsNotFound(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsNotFound(fmt.Errorf("boom")))
}
