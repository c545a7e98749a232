package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/jigsawroom/internal/challenge"
	"github.com/myrjola/jigsawroom/internal/textnorm"
)

// selectChallenge loads a challenge as the prompt. The form either names a workshop challenge by key, the whole
// workshop document with title "Oficina", or an extra challenge by title or label.
func (app *application) selectChallenge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := formValue(r, "key")
	title := formValue(r, "title")

	var (
		selected     challenge.Extra
		challengeKey string
		found        bool
	)
	switch {
	case key != "":
		want := textnorm.TitleKey(key)
		for _, rec := range app.personas.Challenges() {
			if rec.Key == want {
				selected = challenge.Extra{
					Title:       rec.Key,
					Category:    "oficina",
					Difficulty:  "n/a",
					Description: rec.Title + "\n\n" + rec.Description,
				}
				challengeKey = rec.Key
				found = true
				break
			}
		}
	case title == "Oficina" && app.personas.Oficina != "":
		selected, found = challenge.Oficina(app.personas.Oficina), true
	case title != "":
		selected, found = app.extras.Get(ctx).Find(title)
	}
	if !found {
		app.logger.LogAttrs(ctx, slog.LevelDebug, "unknown challenge",
			slog.String("key", key), slog.String("title", title))
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	app.sessionManager.Put(ctx, selectedChallengeSessionKey, selected)
	if challengeKey != "" {
		app.sessionManager.Put(ctx, challengeKeySessionKey, challengeKey)
	} else {
		app.sessionManager.Remove(ctx, challengeKeySessionKey)
	}
	app.redirectHome(w, r)
}

func (app *application) clearChallenge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app.sessionManager.Remove(ctx, selectedChallengeSessionKey)
	app.sessionManager.Remove(ctx, challengeKeySessionKey)
	app.redirectHome(w, r)
}
