package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/jigsawroom/internal/agent"
	"github.com/myrjola/jigsawroom/internal/errors"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// apiChat sends a message to the supervisor and answers with the whole reply. A new session id is generated when
// the request has none.
func (app *application) apiChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		app.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Now().Add(replyTimeout)); err != nil {
		app.serverError(w, r, errors.Wrap(err, "extend write deadline"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), replyTimeout)
	defer cancel()

	var reply string
	in, err := app.roster.Input(agent.SupervisorID, req.SessionID, req.Message, nil)
	if err == nil {
		reply, err = agent.Collect(ctx, app.invoker, in)
	}
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "supervisor invocation failed", errors.SlogError(err))
	}

	app.writeJSON(w, r, http.StatusOK, chatResponse{
		SessionID: req.SessionID,
		Reply:     agent.ReplyText(reply, err),
	})
}
