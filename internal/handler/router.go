package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"warmtransfer/internal/pkg/auth/jwt"
	"warmtransfer/internal/pkg/logx"
	"warmtransfer/internal/pkg/resp"
)

const ServiceName = "Warm Transfer Backend"

// Router sets up the HTTP routing table with CORS, request ids, request
// logging, panic recovery, and per-route IP rate limits.
func Router(deps *AppDeps) http.Handler {
	if deps.Limiters == nil {
		deps.Limiters = NewLimiters()
	}

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{"message": ServiceName + " is running"})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": ServiceName,
			"store":   deps.Summaries.Kind(),
		}
		// Clients read the media server URL from here before joining with a token.
		if deps.Config.LiveKitHost != "" {
			data["livekit_host"] = deps.Config.LiveKitHost
		}
		resp.RespondSuccess(w, r, data)
	})

	r.With(deps.Limiters.Token.Middleware).Post("/get_token", HandleGetToken(deps))
	r.With(deps.Limiters.Transfer.Middleware).Post("/transfer", HandleTransfer(deps))
	r.With(withRoom).Get("/get_summary/{room}", HandleGetSummary(deps))

	r.With(
		deps.Limiters.Handoff.Middleware,
		withRoom,
		jwt.RequireRoomToken(deps.Issuer, roomParam),
	).Get("/ws/handoff/{room}", HandleHandoffSocket(wsUpgrader, deps))

	return r
}
