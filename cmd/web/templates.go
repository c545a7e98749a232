package main

import (
	"net/http"

	"github.com/myrjola/jigsawroom/internal/agent"
	"github.com/myrjola/jigsawroom/internal/challenge"
	"github.com/myrjola/jigsawroom/internal/contexthelpers"
	"github.com/myrjola/jigsawroom/internal/models"
	"github.com/myrjola/jigsawroom/internal/persona"
)

type BaseTemplateData struct {
	CurrentPath string
}

func newBaseTemplateData(r *http.Request) BaseTemplateData {
	return BaseTemplateData{
		CurrentPath: contexthelpers.CurrentPath(r.Context()),
	}
}

// targetView is a roster entry on the page.
type targetView struct {
	agent.Target
	Persona  persona.Persona
	Selected bool
}

// messageView is a transcript entry on the page.
type messageView struct {
	models.ChatMessage
	Label string
}

// verdictView is the feedback on a submitted answer.
type verdictView struct {
	Challenge string
	Verdict   challenge.Verdict
}

func (v verdictView) Text() string {
	switch v.Verdict {
	case challenge.VerdictCorrect:
		return "✅ Correct! Challenge solved."
	case challenge.VerdictIncorrect:
		return "❌ Not quite. Try again."
	case challenge.VerdictNoKey:
		return "No answer key available for this challenge."
	default:
		return string(v.Verdict)
	}
}

func (app *application) newMessageView(msg models.ChatMessage) messageView {
	label := "You"
	if msg.Role == models.RoleAssistant {
		label = msg.Target
		if t, ok := app.roster.Get(msg.Target); ok {
			label = t.Icon + " " + t.Label
		}
	}
	return messageView{ChatMessage: msg, Label: label}
}
