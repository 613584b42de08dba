package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("submit assessment: %w", Validation("Sleep hours must be between 4 and 12"))
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "Sleep hours must be between 4 and 12", PublicMessage(err))
	assert.Equal(t, http.StatusBadRequest, Status(KindOf(err)))
}

func TestUpstreamMatchesGeneration(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := Upstream("Failed to generate plan", cause)
	assert.True(t, errors.Is(err, ErrGeneration))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, http.StatusBadGateway, Status(KindOf(err)))
}

func TestPlainErrorIsInternal(t *testing.T) {
	err := errors.New("connection refused")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Empty(t, PublicMessage(err))
	assert.Equal(t, http.StatusInternalServerError, Status(KindOf(err)))
}

func TestNotFoundMatchesSentinel(t *testing.T) {
	assert.True(t, errors.Is(NotFound("Assessment not found"), ErrNotFound))
}
