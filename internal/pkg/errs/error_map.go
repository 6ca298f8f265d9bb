package errs

import "net/http"

// errorMap holds the client message and HTTP status for every code.
var errorMap = map[int]CustomError{
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Content-Type must be application/json.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Malformed JSON body.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	ErrRoomRequired:     {Code: ErrRoomRequired, Message: "room is required.", Status: http.StatusBadRequest},
	ErrIdentityRequired: {Code: ErrIdentityRequired, Message: "%s is required.", Status: http.StatusBadRequest},
	ErrFieldTooLong:     {Code: ErrFieldTooLong, Message: "%s is too long.", Status: http.StatusBadRequest},
	ErrSummaryNotFound:  {Code: ErrSummaryNotFound, Message: "No summary found for this room.", Status: http.StatusNotFound},

	ErrUnauthorized: {Code: ErrUnauthorized, Message: "A valid access token is required.", Status: http.StatusUnauthorized},
	ErrRoomMismatch: {Code: ErrRoomMismatch, Message: "Access token was not issued for this room.", Status: http.StatusForbidden},

	ErrSigningKeyMissing: {Code: ErrSigningKeyMissing, Message: "Token signing is not configured.", Status: http.StatusInternalServerError},

	ErrUnknown:          {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStoreUnavailable: {Code: ErrStoreUnavailable, Message: "Summary storage is unavailable.", Status: http.StatusServiceUnavailable},
}
