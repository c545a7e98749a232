package main

import (
	"net/http"
	"slices"

	"github.com/myrjola/jigsawroom/internal/challenge"
	"github.com/myrjola/jigsawroom/internal/contexthelpers"
	"github.com/myrjola/jigsawroom/internal/errors"
	"github.com/myrjola/jigsawroom/internal/models"
)

type homeTemplateData struct {
	BaseTemplateData

	Targets  []targetView
	Messages []messageView

	Oficina           string
	OficinaChallenges []challenge.Record

	Extras       challenge.Extras
	Categories   []string
	Difficulties []string
	Category     string
	Difficulty   string

	Selected     *challenge.Extra
	ChallengeKey string
	Prompt       string

	AnswerChallenges []challenge.Record
	Attempts         []models.AnswerAttempt
	Solved           int
	Verdict          *verdictView
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := contexthelpers.AgentSessionID(ctx)

	messages, err := app.chats.ListBySession(ctx, sessionID)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list messages"))
		return
	}
	attempts, err := app.attempts.ListBySession(ctx, sessionID)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list attempts"))
		return
	}
	solved, err := app.attempts.SolvedCount(ctx, sessionID)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "count solved"))
		return
	}

	selectedAgents := app.selectedAgents(r)
	var targets []targetView
	for _, t := range app.roster.Targets() {
		p, _ := app.personas.Get(t.PersonaID)
		targets = append(targets, targetView{
			Target:   t,
			Persona:  p,
			Selected: slices.Contains(selectedAgents, t.ID),
		})
	}

	extras := app.extras.Get(ctx)
	category := r.URL.Query().Get("category")
	difficulty := r.URL.Query().Get("difficulty")

	data := homeTemplateData{
		BaseTemplateData:  newBaseTemplateData(r),
		Targets:           targets,
		Messages:          nil,
		Oficina:           app.personas.Oficina,
		OficinaChallenges: app.personas.Challenges(),
		Extras:            extras.Filter(category, difficulty),
		Categories:        extras.Categories(),
		Difficulties:      extras.Difficulties(),
		Category:          category,
		Difficulty:        difficulty,
		Selected:          nil,
		ChallengeKey:      app.sessionManager.GetString(ctx, challengeKeySessionKey),
		Prompt:            "",
		AnswerChallenges:  app.answerKey.Get(ctx).Records(),
		Attempts:          attempts,
		Solved:            solved,
		Verdict:           nil,
	}
	for _, msg := range messages {
		data.Messages = append(data.Messages, app.newMessageView(msg))
	}
	if selected, ok := app.sessionManager.Get(ctx, selectedChallengeSessionKey).(challenge.Extra); ok {
		data.Selected = &selected
		data.Prompt = selected.Description
	}
	if flash := app.sessionManager.PopString(ctx, flashSessionKey); flash != "" && len(attempts) > 0 {
		data.Verdict = &verdictView{Challenge: attempts[0].ChallengeKey, Verdict: challenge.Verdict(flash)}
	}

	app.render(w, r, http.StatusOK, "home", data)
}
