package handler

import (
	"errors"
	"net/http"

	"warmtransfer/internal/app/transfer"
	"warmtransfer/internal/pkg/errs"
	"warmtransfer/internal/pkg/req"
	"warmtransfer/internal/pkg/resp"
)

// HandleTransfer hands the call in a room over to another agent.
// Summary generation failures are reported in summary_status, not as an error status.
func HandleTransfer(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input transfer.Request

		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		result, err := deps.Transfers.Transfer(r.Context(), input)
		if err != nil {
			var customErr *errs.CustomError
			if errors.As(err, &customErr) {
				resp.RespondError(w, r, customErr)
				return
			}
			resp.RespondError(w, r, issueError(err))
			return
		}

		resp.RespondSuccess(w, r, result)
	}
}
