package main

import (
	"io/fs"
	"net/http"

	"github.com/justinas/alice"
	"github.com/myrjola/jigsawroom/ui"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	static, err := fs.Sub(ui.Files, "static")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	mux.Handle("GET /static/", cacheForeverHeaders(http.StripPrefix("/static", http.FileServerFS(static))))

	session := alice.New(app.sessionManager.LoadAndSave, noSurf, app.agentSession, commonContext)
	page := session.Append(func(next http.Handler) http.Handler {
		return timeoutHandler(next, defaultTimeout)
	})

	mux.Handle("GET /{$}", page.ThenFunc(app.home))
	mux.Handle("POST /agents", page.ThenFunc(app.selectAgents))
	mux.Handle("POST /challenges/select", page.ThenFunc(app.selectChallenge))
	mux.Handle("POST /challenges/clear", page.ThenFunc(app.clearChallenge))
	mux.Handle("POST /messages", page.ThenFunc(app.sendMessage))
	mux.Handle("POST /answers", page.ThenFunc(app.submitAnswer))

	// Replies are streamed for longer than the regular timeouts allow.
	stream := alice.New(app.serverSentEventMiddleware, app.agentSession)
	mux.Handle("GET /messages/{id}/stream", stream.ThenFunc(app.streamReply))
	chat := alice.New(noSurf).ThenFunc(app.apiChat)
	mux.Handle("POST /chat", chat)
	mux.Handle("POST /api/chat", chat)

	mux.HandleFunc("GET /health", app.health)
	mux.HandleFunc("GET /api/healthy", app.healthy)

	return alice.New(app.recoverPanic, app.logRequest, app.secureHeaders).Then(mux)
}
