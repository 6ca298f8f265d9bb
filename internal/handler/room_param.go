package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"warmtransfer/internal/app/participant"
	"warmtransfer/internal/pkg/errs"
	"warmtransfer/internal/pkg/logx"
	"warmtransfer/internal/pkg/resp"
)

type contextKey string

const contextRoomKey contextKey = "room"

// withRoom decodes and normalizes the {room} path parameter once for the
// handlers and middleware behind it. chi matches on RawPath when the request
// has one, in which case the parameter is still percent-encoded.
func withRoom(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		room := chi.URLParam(r, "room")

		if r.URL.RawPath != "" {
			decoded, err := url.PathUnescape(room)
			if err != nil {
				logx.Warn("Rejected malformed room path parameter", "room", room)
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			room = decoded
		}

		ctx := context.WithValue(r.Context(), contextRoomKey, participant.NormalizeRoom(room))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// roomParam returns the room stored by withRoom.
func roomParam(r *http.Request) string {
	room, _ := r.Context().Value(contextRoomKey).(string)
	return room
}
