package errs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	t.Run("status comes from the table", func(t *testing.T) {
		err := NewError(ErrSummaryNotFound)
		require.Equal(t, http.StatusNotFound, err.Status)
		require.Equal(t, "No summary found for this room.", err.Message)
	})

	t.Run("details fill the template", func(t *testing.T) {
		err := NewError(ErrIdentityRequired, "to_identity")
		require.Equal(t, "to_identity is required.", err.Message)
		require.Equal(t, http.StatusBadRequest, err.Status)
	})

	t.Run("template without details uses a generic field name", func(t *testing.T) {
		err := NewError(ErrFieldTooLong)
		require.Equal(t, "field is too long.", err.Message)
	})

	t.Run("unknown code collapses to ErrUnknown", func(t *testing.T) {
		err := NewError(987654)
		require.Equal(t, ErrUnknown, err.Code)
		require.Equal(t, http.StatusInternalServerError, err.Status)
	})

	t.Run("configuration errors map to 500", func(t *testing.T) {
		err := NewError(ErrSigningKeyMissing)
		require.Equal(t, http.StatusInternalServerError, err.Status)
		require.Contains(t, err.Error(), "4001")
	})
}
