/*
Package jwt issues and verifies the signed access tokens a participant presents
to the media server (and to the handoff WebSocket) to join a room.
*/
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"warmtransfer/internal/app/participant"
)

// AccessTokenTTL is the lifetime of every issued token: exp is always nbf + 3600s.
const AccessTokenTTL = 3600 * time.Second

var (
	// ErrSigningKeyMissing is returned when the API key or secret is not configured.
	ErrSigningKeyMissing = errors.New("jwt: signing key material is not configured")

	// ErrRoomMissing is returned by Parse for tokens without a room grant.
	ErrRoomMissing = errors.New("jwt: token carries no room grant")
)

// NowTimeFunc returns the issuance time. Tests override it.
var NowTimeFunc = time.Now

// Issuer signs room access tokens with HS256 using the service's API key/secret pair.
type Issuer struct {
	apiKey string
	secret []byte
}

// NewIssuer returns an Issuer. Empty credentials are accepted here so the
// service can start; Issue and Parse then fail with ErrSigningKeyMissing.
func NewIssuer(apiKey, apiSecret string) *Issuer {
	return &Issuer{
		apiKey: apiKey,
		secret: []byte(apiSecret),
	}
}

// Configured reports whether both the API key and secret are present.
func (i *Issuer) Configured() bool {
	return i.apiKey != "" && len(i.secret) > 0
}

// Issue signs a token granting p permission to join room for AccessTokenTTL.
// Callers validate room and participant first; Issue only refuses to sign
// without credentials.
func (i *Issuer) Issue(room string, p participant.Participant) (string, *AccessClaims, error) {
	if !i.Configured() {
		return "", nil, ErrSigningKeyMissing
	}

	now := NowTimeFunc()

	claims := &AccessClaims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    i.apiKey,
			Subject:   p.Identity,
			NotBefore: now.Unix(),
			ExpiresAt: now.Add(AccessTokenTTL).Unix(),
		},
		Name:     p.Name,
		Metadata: p.Metadata,
		Video: VideoGrant{
			Room:     room,
			RoomJoin: true,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign access token: %w", err)
	}

	return signed, claims, nil
}

// Parse verifies the signature, signing method, issuer, and validity window of
// tokenString and returns its claims.
func (i *Issuer) Parse(tokenString string) (*AccessClaims, error) {
	if !i.Configured() {
		return nil, ErrSigningKeyMissing
	}

	claims := &AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("jwt: invalid or expired token")
	}

	if claims.Issuer != i.apiKey {
		return nil, fmt.Errorf("jwt: unexpected issuer %q", claims.Issuer)
	}

	if claims.Video.Room == "" || !claims.Video.RoomJoin {
		return nil, ErrRoomMissing
	}

	return claims, nil
}
