package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errAlreadyProcessed = State("already_processed")

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("approve sale 42: %w", errAlreadyProcessed)

	assert.True(t, errors.Is(err, errAlreadyProcessed))
	assert.Equal(t, KindState, KindOf(err))
	assert.Equal(t, "already_processed", CodeOf(err))
	assert.True(t, IsState(err))
	assert.False(t, IsValidation(err))
}

func TestNotFoundIsValidation(t *testing.T) {
	err := NotFound("sale_not_found")
	assert.True(t, IsValidation(err))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestPersistence(t *testing.T) {
	assert.Nil(t, Persistence(nil))

	cause := errors.New("connection reset")
	err := Persistence(cause)
	assert.Equal(t, KindPersistence, KindOf(err))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "persistence_error: connection reset", err.Error())

	// already classified errors keep their kind
	assert.Equal(t, KindState, KindOf(Persistence(errAlreadyProcessed)))
}

func TestUnclassified(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "internal_error", CodeOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}
