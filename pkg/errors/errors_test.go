package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestIsMatchesByCode(t *testing.T) {
	cloned := Clone(ErrSlotTaken, "slot 1 on 2025-01-07 is taken")
	wrapped := fmt.Errorf("book: %w", cloned)

	assert.True(t, errors.Is(wrapped, ErrSlotTaken))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "slot already taken", ErrSlotTaken.Message)
}

func TestWithReasonsCopies(t *testing.T) {
	reasons := []string{"date is a holiday"}
	appErr := WithReasons(ErrValidation, reasons)
	reasons[0] = "mutated"

	assert.Equal(t, []string{"date is a holiday"}, appErr.Reasons)
	assert.Empty(t, ErrValidation.Reasons)
}
