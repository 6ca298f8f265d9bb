/*
Package participant holds the identity of someone joining a media room and the
rules every room/identity pair must satisfy before a token is issued for it.
*/
package participant

import (
	"strings"
	"unicode/utf8"

	"warmtransfer/internal/pkg/errs"
)

const (
	// MaxRoomLength is the maximum room name length in characters.
	MaxRoomLength = 256

	// MaxIdentityLength is the maximum identity and display name length in characters.
	MaxIdentityLength = 256

	// MaxMetadataBytes bounds the opaque metadata string carried in the token.
	MaxMetadataBytes = 64 << 10
)

// Participant is a room member as it appears in an access token.
// Name and Metadata are optional; empty means absent and is omitted from the token.
type Participant struct {
	Identity string `json:"identity"`
	Name     string `json:"name,omitempty"`
	Metadata string `json:"metadata,omitempty"`
}

// Normalize trims surrounding whitespace from the identity and display name.
// Metadata is opaque and left untouched.
func (p Participant) Normalize() Participant {
	p.Identity = strings.TrimSpace(p.Identity)
	p.Name = strings.TrimSpace(p.Name)
	return p
}

// Validate checks a normalized participant. field names the identity in error
// messages ("identity", "to_identity", ...).
func (p Participant) Validate(field string) *errs.CustomError {
	if p.Identity == "" {
		return errs.NewError(errs.ErrIdentityRequired, field)
	}
	if utf8.RuneCountInString(p.Identity) > MaxIdentityLength {
		return errs.NewError(errs.ErrFieldTooLong, field)
	}
	if utf8.RuneCountInString(p.Name) > MaxIdentityLength {
		return errs.NewError(errs.ErrFieldTooLong, "name")
	}
	if len(p.Metadata) > MaxMetadataBytes {
		return errs.NewError(errs.ErrFieldTooLong, "metadata")
	}
	return nil
}

// NormalizeRoom trims a room name.
func NormalizeRoom(room string) string {
	return strings.TrimSpace(room)
}

// ValidateRoom checks a normalized room name.
func ValidateRoom(room string) *errs.CustomError {
	if room == "" {
		return errs.NewError(errs.ErrRoomRequired)
	}
	if utf8.RuneCountInString(room) > MaxRoomLength {
		return errs.NewError(errs.ErrFieldTooLong, "room")
	}
	return nil
}
