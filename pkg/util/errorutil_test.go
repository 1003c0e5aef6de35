package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorPassesNilThrough(t *testing.T) {
	// The returned interface must be a literal nil, not a typed-nil
	// *DomainError, or every `return MapError(err)` tail call would report
	// failure on success.
	err := MapError(nil)
	require.NoError(t, err)
	assert.True(t, err == nil)
}

func TestMapErrorTranslatesNoRows(t *testing.T) {
	err := MapError(fmt.Errorf("loading row: %w", pgx.ErrNoRows))

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	assert.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)
}

func TestMapErrorKeepsDomainErrors(t *testing.T) {
	original := NewForbidden("insufficient role")

	err := MapError(fmt.Errorf("checking access: %w", original))

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestMapErrorWrapsUnknownErrors(t *testing.T) {
	err := MapError(errors.New("connection reset"))

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INTERNAL_ERROR", domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(fmt.Errorf("inserting user: %w", unique)))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("not a pg error")))
	assert.False(t, IsUniqueViolation(nil))
}
