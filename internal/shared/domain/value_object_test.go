package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunID(t *testing.T) {
	t.Run("generates a non-zero RunID", func(t *testing.T) {
		id := NewRunID()

		assert.False(t, id.IsZero())
		assert.NotEmpty(t, id.String())
	})

	t.Run("generates distinct RunIDs", func(t *testing.T) {
		a := NewRunID()
		b := NewRunID()

		assert.False(t, a.Equals(b))
	})
}

func TestParseRunID(t *testing.T) {
	t.Run("round-trips through String", func(t *testing.T) {
		original := NewRunID()

		parsed, err := ParseRunID(original.String())
		require.NoError(t, err)

		assert.True(t, original.Equals(parsed))
	})

	t.Run("rejects a malformed string", func(t *testing.T) {
		_, err := ParseRunID("not-a-uuid")

		assert.Error(t, err)
	})
}

func TestRunID_Equals(t *testing.T) {
	t.Run("returns true for equal RunIDs", func(t *testing.T) {
		a, err := ParseRunID("11111111-1111-1111-1111-111111111111")
		require.NoError(t, err)
		b, err := ParseRunID("11111111-1111-1111-1111-111111111111")
		require.NoError(t, err)

		assert.True(t, a.Equals(b))
	})

	t.Run("returns false for different RunIDs", func(t *testing.T) {
		a := NewRunID()
		b := NewRunID()

		assert.False(t, a.Equals(b))
	})

	t.Run("returns false for a different value object type", func(t *testing.T) {
		a := NewRunID()
		other := mockValueObject{value: a.String()}

		assert.False(t, a.Equals(other))
	})
}

func TestRunID_IsZero(t *testing.T) {
	t.Run("returns true for the zero value", func(t *testing.T) {
		var id RunID

		assert.True(t, id.IsZero())
	})

	t.Run("returns false for a generated RunID", func(t *testing.T) {
		id := NewRunID()

		assert.False(t, id.IsZero())
	})
}

func TestRunID_ValueAndScan(t *testing.T) {
	t.Run("Value renders the same string as String", func(t *testing.T) {
		id := NewRunID()

		v, err := id.Value()
		require.NoError(t, err)
		assert.Equal(t, id.String(), v)
	})

	t.Run("Scan reconstructs the RunID from its stored string", func(t *testing.T) {
		id := NewRunID()

		var scanned RunID
		require.NoError(t, scanned.Scan(id.String()))

		assert.True(t, id.Equals(scanned))
	})

	t.Run("Scan rejects an incompatible source type", func(t *testing.T) {
		var scanned RunID

		assert.Error(t, scanned.Scan(42))
	})
}

// mockValueObject is a test double for testing Equals with different types.
type mockValueObject struct {
	value string
}

func (m mockValueObject) Equals(other ValueObject) bool {
	if otherMock, ok := other.(mockValueObject); ok {
		return m.value == otherMock.value
	}
	return false
}
