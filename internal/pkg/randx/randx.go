/*
Package randx generates identifiers used in URLs and object keys.
*/
package randx

import (
	"strings"

	"github.com/google/uuid"
)

// ClipID returns a random identifier for a playback clip.
func ClipID() string {
	return uuid.NewString()
}

// ArchiveID returns a time-ordered identifier (UUIDv7) so archived records sort by creation.
// It falls back to a random UUID if the clock source fails.
func ArchiveID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// PathSegment makes s safe to embed as a single URL path or object key segment.
func PathSegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "_"
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
