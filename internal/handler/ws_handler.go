package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"warmtransfer/internal/app/handoff"
	"warmtransfer/internal/app/summary"
	"warmtransfer/internal/pkg/auth/jwt"
	"warmtransfer/internal/pkg/errs"
	"warmtransfer/internal/pkg/logx"
	"warmtransfer/internal/pkg/resp"
)

// HandleHandoffSocket subscribes an agent holding a token for the room to its handoff events.
// It must run behind jwt.RequireRoomToken.
func HandleHandoffSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := jwt.ClaimsFromContext(r.Context())
		if claims == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		roomName := claims.Room()
		identity := claims.Identity()

		room := deps.Hub.Room(roomName)
		if room == nil {
			logx.Warn("Handoff connection rejected: hub is shutting down", "room", roomName)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		initial := handoff.InitPayload{Identity: identity}
		entry, err := deps.Summaries.Get(r.Context(), roomName)
		switch {
		case err == nil:
			initial.Summary = entry.Summary
		case !errors.Is(err, summary.ErrNotFound):
			logx.Warn("Could not load summary for new subscriber", "room", roomName, "error", err.Error())
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket", "room", roomName)
			return
		}

		logx.Info("Handoff subscriber connected", "room", roomName, "identity", identity)

		handoff.NewClient(room, conn, identity).Serve(initial)
	}
}
