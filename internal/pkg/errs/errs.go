package errs

import (
	"fmt"
	"net/http"
	"strings"

	"warmtransfer/internal/pkg/logx"
)

// CustomError carries a business code, a client-facing message, and the HTTP
// status used when it is rendered as a response.
type CustomError struct {
	Code    int
	Message string
	Status  int
}

// Error implements the error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError builds a *CustomError from the code table.
//
// For ErrUnknown the first detail, if it is an error, is logged and not exposed.
// For other codes the details fill printf verbs in the message template.
// Unknown codes collapse to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("no entry for error code %d", code),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &unknownErr
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusBadRequest
	}

	if code == ErrUnknown {
		if len(details) > 0 {
			if originalErr, ok := details[0].(error); ok {
				logx.Error(originalErr, "Handling ErrUnknown with underlying error")
			}
		}
		return &customErr
	}

	if strings.Contains(customErr.Message, "%") {
		if len(details) == 0 {
			details = []any{"field"}
		}
		customErr.Message = fmt.Sprintf(customErr.Message, details...)
	} else if len(details) > 0 {
		logx.Warn("Details provided for an error without placeholders. Details ignored.", "code", code)
	}

	return &customErr
}
