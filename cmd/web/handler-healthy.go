package main

import (
	"encoding/json"
	"net/http"
)

// healthy responds with a JSON object indicating that the server is healthy.
func (app *application) healthy(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

type healthResponse struct {
	Status            string `json:"status"`
	Region            string `json:"region"`
	SupervisorAgentID bool   `json:"supervisor_agent_id"`
	SupervisorAliasID bool   `json:"supervisor_alias_id"`
}

// health reports the region and whether the supervisor agent is configured, without revealing the ids.
func (app *application) health(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, healthResponse{
		Status:            "ok",
		Region:            app.cfg.Region,
		SupervisorAgentID: app.cfg.SupervisorAgentID != "",
		SupervisorAliasID: app.cfg.SupervisorAliasID != "",
	})
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
