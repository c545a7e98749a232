package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/myrjola/jigsawroom/internal/errors"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", method), slog.String("uri", uri), slog.Any("formdata", r.Form))
	http.Error(w, http.StatusText(status), status)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound)
}

// redirectHome finishes a form post. htmx requests get a redirect header so the whole page is reloaded.
func (app *application) redirectHome(w http.ResponseWriter, r *http.Request) {
	h := app.htmx.NewHandler(w, r)
	if h.Request().HxRequest {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// selectedAgents returns the collaborator IDs the player picked. All collaborators are selected until the player
// changes the selection.
func (app *application) selectedAgents(r *http.Request) []string {
	ctx := r.Context()
	if !app.sessionManager.Exists(ctx, selectedAgentsSessionKey) {
		var ids []string
		for _, t := range app.roster.Collaborators() {
			ids = append(ids, t.ID)
		}
		return ids
	}
	ids, _ := app.sessionManager.Get(ctx, selectedAgentsSessionKey).([]string)
	return ids
}

// formValue returns the trimmed form value.
func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}
