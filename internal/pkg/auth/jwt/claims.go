package jwt

import "github.com/golang-jwt/jwt"

// VideoGrant is the room permission block understood by the media server.
type VideoGrant struct {
	// Room is the only room the holder may join.
	Room string `json:"room"`

	// RoomJoin must be true for the media server to admit the holder.
	RoomJoin bool `json:"roomJoin"`
}

// AccessClaims is the claim set of a room access token.
//
// The embedded StandardClaims flatten into the top-level iss/sub/nbf/exp fields:
// Issuer is the service API key, Subject the participant identity.
type AccessClaims struct {
	jwt.StandardClaims

	// Name is the participant's display name, omitted when empty.
	Name string `json:"name,omitempty"`

	// Metadata is an opaque string forwarded to other room members, omitted when empty.
	Metadata string `json:"metadata,omitempty"`

	// Video carries the room grant.
	Video VideoGrant `json:"video"`
}

// Identity returns the participant identity (the sub claim).
func (c *AccessClaims) Identity() string {
	return c.Subject
}

// Room returns the granted room.
func (c *AccessClaims) Room() string {
	return c.Video.Room
}
