package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roopaish/post-it/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 30, 45, 123_000_000, time.UTC)

	cursor := EncodeCursor(created)
	assert.Equal(t, "1709296245123", cursor)

	decoded, err := DecodeCursor(cursor)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.True(t, decoded.Equal(created))
}

func TestDecodeCursor_Empty(t *testing.T) {
	decoded, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeCursor_Malformed(t *testing.T) {
	for _, cursor := range []string{"not-a-number", "12.5", "2024-03-01", "12x"} {
		_, err := DecodeCursor(cursor)
		assert.ErrorIs(t, err, domain.ErrBadCursor, "cursor %q", cursor)
	}
}
