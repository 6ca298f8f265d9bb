package handler

import (
	"errors"
	"net/http"

	"warmtransfer/internal/app/summary"
	"warmtransfer/internal/pkg/errs"
	"warmtransfer/internal/pkg/logx"
	"warmtransfer/internal/pkg/resp"
)

type SummaryOutput struct {
	Room    string `json:"room"`
	Summary string `json:"summary"`
}

// HandleGetSummary returns the latest summary stored for the room in the path.
func HandleGetSummary(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomParam(r)
		if room == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrSummaryNotFound))
			return
		}

		entry, err := deps.Summaries.Get(r.Context(), room)
		if err != nil {
			if errors.Is(err, summary.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrSummaryNotFound))
				return
			}

			logx.Error(err, "Summary lookup failed", "room", room, "store", deps.Summaries.Kind())
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreUnavailable))
			return
		}

		resp.RespondSuccess(w, r, SummaryOutput{Room: room, Summary: entry.Summary})
	}
}
