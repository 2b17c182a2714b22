package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_AppError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, ErrInactiveUser)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "INACTIVE_USER", body["code"])
	assert.Equal(t, "Inactive user", body["message"])
	_, hasDetail := body["detail"]
	assert.False(t, hasDetail)
}

func TestWriteError_UnknownErrorIsOpaque(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, stderrors.New("pg: connection refused at 10.0.0.3"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "10.0.0.3")
	assert.Contains(t, rr.Body.String(), "INTERNAL_SERVER_ERROR")
}

func TestWriteError_UnauthorizedSetsChallenge(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, ErrUnauthorized)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
}

func TestCopiesDoNotMutateBase(t *testing.T) {
	cause := stderrors.New("boom")
	e := ErrTokenMissing.WithStatus(http.StatusBadRequest).WithCause(cause).WithDetail("x")

	assert.Equal(t, http.StatusUnauthorized, ErrTokenMissing.HTTPStatus)
	assert.Nil(t, ErrTokenMissing.Err)
	assert.Empty(t, ErrTokenMissing.Detail)

	assert.Equal(t, http.StatusBadRequest, e.HTTPStatus)
	assert.ErrorIs(t, e, cause)
}

func TestFromError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("controller: %w", ErrTaskNotFound)
	assert.Same(t, ErrTaskNotFound, FromError(wrapped))
}
