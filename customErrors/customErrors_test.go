package customErrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("failed to save limit: %w", New(ErrDuplicateLimit, "limit for %s exists", "2025-06"))

	require.Equal(t, ErrDuplicateLimit, CodeOf(wrapped))
	require.True(t, HasCode(wrapped, ErrDuplicateLimit))
	require.False(t, HasCode(wrapped, ErrNotFound))
	require.Equal(t, "limit for 2025-06 exists", MessageOf(wrapped))
}

func TestCodeOfUnknownError(t *testing.T) {
	err := errors.New("connection reset")

	require.Equal(t, ErrInternal, CodeOf(err))
	require.False(t, HasCode(err, ErrInternal))
	require.Equal(t, "Something went wrong, try again later.", MessageOf(err))
}
