/*
Package handler provides the HTTP handlers of the warm transfer service.
*/
package handler

import (
	"errors"
	"net/http"

	"warmtransfer/internal/app/participant"
	"warmtransfer/internal/pkg/auth/jwt"
	"warmtransfer/internal/pkg/errs"
	"warmtransfer/internal/pkg/logx"
	"warmtransfer/internal/pkg/req"
	"warmtransfer/internal/pkg/resp"
)

type TokenInput struct {
	Room     string `json:"room"`
	Identity string `json:"identity"`
	Name     string `json:"name,omitempty"`
	Metadata string `json:"metadata,omitempty"`
}

type TokenOutput struct {
	Token string `json:"token"`
}

// HandleGetToken issues a room access token for a participant.
func HandleGetToken(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input TokenInput

		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		room := participant.NormalizeRoom(input.Room)
		if customErr := participant.ValidateRoom(room); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		p := participant.Participant{
			Identity: input.Identity,
			Name:     input.Name,
			Metadata: input.Metadata,
		}.Normalize()
		if customErr := p.Validate("identity"); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token, _, err := deps.Issuer.Issue(room, p)
		if err != nil {
			resp.RespondError(w, r, issueError(err))
			return
		}

		logx.Info("Access token issued", "room", room, "identity", p.Identity)
		resp.RespondSuccess(w, r, TokenOutput{Token: token})
	}
}

// issueError maps token signing failures to response errors.
func issueError(err error) *errs.CustomError {
	if errors.Is(err, jwt.ErrSigningKeyMissing) {
		logx.Error(err, "Token requested but LIVEKIT_API_KEY/LIVEKIT_API_SECRET are not set")
		return errs.NewError(errs.ErrSigningKeyMissing)
	}
	return errs.NewError(errs.ErrUnknown, err)
}
