package util_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focusmate-ai/focus-service/pkg/util"
)

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := util.NewValidationError("bad input", nil)

	converted := util.ToDomainError(original)
	require.NotNil(t, converted)
	assert.Equal(t, "VALIDATION_FAILED", converted.Code)
	assert.Equal(t, http.StatusBadRequest, converted.HTTPStatus)
}

func TestToDomainErrorWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("boom")

	converted := util.ToDomainError(cause)
	require.NotNil(t, converted)
	assert.Equal(t, "INTERNAL_ERROR", converted.Code)
	assert.Equal(t, http.StatusInternalServerError, converted.HTTPStatus)
	assert.ErrorIs(t, converted, cause, "the cause stays reachable for logs")
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, util.ToDomainError(nil))
}

func TestToDomainErrorUnwrapsNestedDomainError(t *testing.T) {
	wrapped := util.NewInternalError(util.NewNotFound("task", nil))

	converted := util.ToDomainError(wrapped)
	require.NotNil(t, converted)
	assert.Equal(t, "INTERNAL_ERROR", converted.Code, "the outermost taxonomy error wins")
}
