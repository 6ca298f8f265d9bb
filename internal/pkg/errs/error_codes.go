/*
Package errs provides the coded error type returned by HTTP handlers.

Codes are grouped by range so clients can branch on them without parsing text:
1xxx request decoding, 2xxx transfer/summary domain, 3xxx authentication,
4xxx configuration, 5xxx internal.
*/
package errs

// 1xxx: request handling
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the Content-Type is not application/json.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates a syntax or type error in the JSON body.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing data after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates the body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates the client IP exhausted its token bucket.
	ErrRateLimitExceeded = 1007
)

// 2xxx: transfer and summary domain
const (
	// ErrRoomRequired indicates an empty room name.
	ErrRoomRequired = 2101

	// ErrIdentityRequired indicates an empty participant identity; the detail names the field.
	ErrIdentityRequired = 2102

	// ErrFieldTooLong indicates a field exceeded its maximum length; the detail names the field.
	ErrFieldTooLong = 2103

	// ErrSummaryNotFound indicates no (unexpired) summary is stored for the room.
	ErrSummaryNotFound = 2201
)

// 3xxx: authentication
const (
	// ErrUnauthorized indicates a missing, malformed, or expired access token.
	ErrUnauthorized = 3001

	// ErrRoomMismatch indicates a valid token that was issued for another room.
	ErrRoomMismatch = 3002
)

// 4xxx: configuration
const (
	// ErrSigningKeyMissing indicates the token signing credentials are not configured.
	ErrSigningKeyMissing = 4001
)

// 5xxx: internal
const (
	// ErrUnknown represents an unclassified server error.
	ErrUnknown = 5000

	// ErrStoreUnavailable indicates the summary store backend failed.
	ErrStoreUnavailable = 5001
)
