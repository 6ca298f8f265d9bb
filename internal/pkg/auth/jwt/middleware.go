package jwt

import (
	"context"
	"net/http"
	"strings"

	"warmtransfer/internal/pkg/errs"
	"warmtransfer/internal/pkg/logx"
	"warmtransfer/internal/pkg/resp"
)

type contextKey string

// ContextClaimsKey stores the verified *AccessClaims in the request context.
const ContextClaimsKey contextKey = "access_claims"

// TokenQueryParam is the query parameter consulted when no Authorization header
// is present. Browsers cannot set headers on WebSocket upgrades.
const TokenQueryParam = "token"

// tokenFromRequest extracts a bearer token from the Authorization header or the query string.
func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	return r.URL.Query().Get(TokenQueryParam)
}

// RequireRoomToken rejects requests that do not carry a valid access token for
// the room returned by roomOf. Verified claims are stored in the request context.
func RequireRoomToken(issuer *Issuer, roomOf func(*http.Request) string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			claims, err := issuer.Parse(tokenString)
			if err != nil {
				logx.Warn("Rejected access token", "error", err.Error(), "path", r.URL.Path)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			if claims.Room() != roomOf(r) {
				logx.Warn("Access token room mismatch",
					"token_room", claims.Room(),
					"identity", claims.Identity(),
				)
				resp.RespondError(w, r, errs.NewError(errs.ErrRoomMismatch))
				return
			}

			ctx := context.WithValue(r.Context(), ContextClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by RequireRoomToken, or nil.
func ClaimsFromContext(ctx context.Context) *AccessClaims {
	claims, ok := ctx.Value(ContextClaimsKey).(*AccessClaims)
	if !ok {
		return nil
	}
	return claims
}
