package main

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/myrjola/jigsawroom/internal/agent"
	"github.com/myrjola/jigsawroom/internal/contexthelpers"
	"github.com/myrjola/jigsawroom/internal/errors"
	"github.com/myrjola/jigsawroom/internal/models"
	"github.com/myrjola/jigsawroom/internal/repositories"
)

// deliveryTimeout is how long a reply chunk waits for the SSE handler before the reply is only persisted.
const deliveryTimeout = 10 * time.Second

type sentMessagesTemplateData struct {
	Messages []messageView
}

// sendMessage stores the player message and starts the reply of the addressed target.
func (app *application) sendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := contexthelpers.AgentSessionID(ctx)
	text := formValue(r, "message")
	targetID := formValue(r, "target")
	if targetID == "" {
		targetID = agent.SupervisorID
	}
	if text == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	if _, ok := app.roster.Get(targetID); !ok {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	question, err := app.chats.Insert(ctx, sessionID, models.RoleUser, targetID, text)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "insert question"))
		return
	}

	var reply *models.ChatMessage
	in, err := app.roster.Input(targetID, sessionID, text, app.selectedAgents(r))
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "agent not configured", errors.SlogError(err))
		reply, err = app.chats.Insert(ctx, sessionID, models.RoleAssistant, targetID, agent.ReplyText("", err))
	} else {
		reply, err = app.chats.CreatePending(ctx, sessionID, targetID)
		if err == nil {
			app.startReply(r, reply.ID, in)
		}
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "insert reply"))
		return
	}

	h := app.htmx.NewHandler(w, r)
	if !h.Request().HxRequest {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	app.renderPartial(w, r, http.StatusOK, "home", "messages", sentMessagesTemplateData{
		Messages: []messageView{app.newMessageView(*question), app.newMessageView(*reply)},
	})
}

// startReply invokes the agent in the background and stores the reply in the pending message messageID. The
// chunks are published for the SSE handler under messageID.
func (app *application) startReply(r *http.Request, messageID string, in agent.Input) {
	out := make(chan string)
	app.replies.Publish(messageID, out)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), replyTimeout)
	stop := context.AfterFunc(app.stopping, cancel)
	app.replyStreams.Add(1)
	go func() {
		defer app.replyStreams.Done()
		defer cancel()
		defer stop()

		reply, err := app.relay(ctx, in, out)
		if err != nil {
			app.logger.LogAttrs(ctx, slog.LevelWarn, "agent invocation failed", errors.SlogError(err))
		}
		content := agent.ReplyText(reply, err)
		if err = app.chats.Complete(context.WithoutCancel(ctx), messageID, content); err != nil {
			app.logger.LogAttrs(ctx, slog.LevelError, "could not store reply", errors.SlogError(err))
		}
		close(out)
		app.replies.Unpublish(messageID)
	}()
}

// relay streams the reply to in and forwards each chunk to out. A subscriber that does not read a chunk within
// deliveryTimeout is dropped. The whole reply is returned either way.
func (app *application) relay(ctx context.Context, in agent.Input, out chan<- string) (string, error) {
	chunks := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.invoker.Stream(ctx, in, chunks)
		close(chunks)
	}()

	var b strings.Builder
	delivering := true
	for c := range chunks {
		b.WriteString(c)
		if delivering {
			delivering = deliver(ctx, out, c)
		}
	}
	return b.String(), <-errCh
}

func deliver(ctx context.Context, out chan<- string, chunk string) bool {
	timer := time.NewTimer(deliveryTimeout)
	defer timer.Stop()
	select {
	case out <- chunk:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// streamReply streams the chunks of a pending reply as "chunk" events and finishes with a "done" event carrying
// the rendered message. A finished reply, or one streamed to another connection, is sent from the database.
func (app *application) streamReply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := contexthelpers.AgentSessionID(ctx)
	id := r.PathValue("id")
	msg, err := app.chats.Get(ctx, sessionID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "get message"))
		return
	}

	rc := http.NewResponseController(w)
	if err = rc.SetWriteDeadline(time.Now().Add(replyTimeout)); err != nil {
		app.serverError(w, r, errors.Wrap(err, "extend write deadline"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if msg.Pending {
		if err = app.forwardChunks(ctx, w, rc, id); err != nil {
			app.logger.LogAttrs(ctx, slog.LevelDebug, "stream interrupted", errors.SlogError(err))
			return
		}
		if msg, err = app.chats.Get(ctx, sessionID, id); err != nil {
			app.logger.LogAttrs(ctx, slog.LevelError, "could not read reply", errors.SlogError(err))
			return
		}
	}

	var buf bytes.Buffer
	if err = app.executeTemplate(&buf, r, "home", "message", app.newMessageView(*msg)); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "could not render reply", errors.SlogError(err))
		return
	}
	if err = writeSSE(w, "done", buf.String()); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelDebug, "stream interrupted", errors.SlogError(err))
		return
	}
	_ = rc.Flush()
}

// forwardChunks writes the published chunks of message id until the producer closes the channel. It returns
// right away when another connection already receives them.
func (app *application) forwardChunks(ctx context.Context, w io.Writer, rc *http.ResponseController, id string) error {
	var (
		chunks chan string
		ok     bool
	)
	select {
	case chunks, ok = <-app.replies.Subscribe(id):
		if !ok {
			return nil
		}
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "wait for reply")
	}
	for {
		select {
		case chunk, open := <-chunks:
			if !open {
				return nil
			}
			if err := writeSSE(w, "chunk", template.HTMLEscapeString(chunk)); err != nil {
				return err
			}
			if err := rc.Flush(); err != nil {
				return errors.Wrap(err, "flush")
			}
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "stream reply")
		}
	}
}

// writeSSE writes one server-sent event. Every line of data becomes its own data field.
func writeSSE(w io.Writer, event, data string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "event: %s\n", event)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Wrap(err, "write event", slog.String("event", event))
	}
	return nil
}
