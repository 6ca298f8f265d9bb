/*
Package req binds HTTP request bodies into handler input structs.
*/
package req

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"warmtransfer/internal/pkg/errs"
)

// MaxJSONBodySize caps request bodies. Transcripts are the largest payloads accepted.
const MaxJSONBodySize int64 = 1 << 20 // 1 MiB

// BindJSON decodes a single JSON document from the request body into dst.
// Unknown fields are ignored so older clients sending extra keys keep working.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
