package main

import (
	"net/http"
	"slices"
)

// selectAgents stores the collaborators the supervisor is told to work with.
func (app *application) selectAgents(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	requested := r.PostForm["agent"]
	selected := []string{}
	for _, t := range app.roster.Collaborators() {
		if slices.Contains(requested, t.ID) {
			selected = append(selected, t.ID)
		}
	}
	app.sessionManager.Put(r.Context(), selectedAgentsSessionKey, selected)
	app.redirectHome(w, r)
}
