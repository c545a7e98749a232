package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/jigsawroom/internal/contexthelpers"
	"github.com/myrjola/jigsawroom/internal/errors"
	"github.com/myrjola/jigsawroom/internal/textnorm"
)

// submitAnswer judges an answer against the answer key and records the attempt. Without a challenge in the form
// the selected workshop challenge is used.
func (app *application) submitAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	title := formValue(r, "challenge")
	if title == "" {
		title = app.sessionManager.GetString(ctx, challengeKeySessionKey)
	}
	submitted := formValue(r, "answer")
	if title == "" || submitted == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	key := app.answerKey.Get(ctx)
	challengeKey := textnorm.TitleKey(title)
	if rec, ok := key.Lookup(title); ok {
		challengeKey = rec.Key
	}
	verdict := key.Verify(title, submitted)
	app.logger.LogAttrs(ctx, slog.LevelInfo, "answer submitted",
		slog.String("challenge", challengeKey), slog.String("verdict", string(verdict)))

	if _, err := app.attempts.Record(ctx, contexthelpers.AgentSessionID(ctx), challengeKey, submitted,
		verdict); err != nil {
		app.serverError(w, r, errors.Wrap(err, "record attempt"))
		return
	}

	h := app.htmx.NewHandler(w, r)
	if !h.Request().HxRequest {
		app.sessionManager.Put(ctx, flashSessionKey, string(verdict))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	app.renderPartial(w, r, http.StatusOK, "home", "verdict", &verdictView{Challenge: challengeKey, Verdict: verdict})
}
