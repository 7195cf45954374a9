package app

import (
	"strconv"
	"time"

	"github.com/Roopaish/post-it/internal/domain"
)

// The feed cursor is opaque to clients: the Unix-millisecond creation time of
// the last row of the previous page, as a decimal string. A page request with
// a cursor fetches rows created strictly before that instant.

// EncodeCursor renders a creation timestamp as a feed cursor.
func EncodeCursor(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// DecodeCursor parses a feed cursor. An empty cursor decodes to nil,
// meaning "from the newest post".
func DecodeCursor(cursor string) (*time.Time, error) {
	if cursor == "" {
		return nil, nil
	}
	ms, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil {
		return nil, domain.ErrBadCursor
	}
	t := time.UnixMilli(ms).UTC()
	return &t, nil
}
