package participant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"warmtransfer/internal/pkg/errs"
)

func TestParticipant_Validate(t *testing.T) {
	t.Run("valid after normalize", func(t *testing.T) {
		p := Participant{Identity: "  alice ", Name: " Alice "}.Normalize()
		require.Equal(t, "alice", p.Identity)
		require.Equal(t, "Alice", p.Name)
		require.Nil(t, p.Validate("identity"))
	})

	t.Run("blank identity names the field", func(t *testing.T) {
		err := Participant{Identity: "   "}.Normalize().Validate("to_identity")
		require.NotNil(t, err)
		require.Equal(t, errs.ErrIdentityRequired, err.Code)
		require.Equal(t, "to_identity is required.", err.Message)
	})

	t.Run("identity too long", func(t *testing.T) {
		err := Participant{Identity: strings.Repeat("a", MaxIdentityLength+1)}.Validate("identity")
		require.NotNil(t, err)
		require.Equal(t, errs.ErrFieldTooLong, err.Code)
	})

	t.Run("metadata too large", func(t *testing.T) {
		err := Participant{Identity: "a", Metadata: strings.Repeat("m", MaxMetadataBytes+1)}.Validate("identity")
		require.NotNil(t, err)
		require.Equal(t, "metadata is too long.", err.Message)
	})
}

func TestValidateRoom(t *testing.T) {
	require.Nil(t, ValidateRoom(NormalizeRoom(" r1 ")))

	err := ValidateRoom(NormalizeRoom(""))
	require.NotNil(t, err)
	require.Equal(t, errs.ErrRoomRequired, err.Code)

	err = ValidateRoom(strings.Repeat("r", MaxRoomLength+1))
	require.NotNil(t, err)
	require.Equal(t, errs.ErrFieldTooLong, err.Code)
}
