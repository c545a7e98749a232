// Package agent invokes the Jigsaw Room agents: the supervisor game master and the collaborators a player can
// also address directly.
package agent

import (
	"fmt"
	"strings"

	"github.com/myrjola/jigsawroom/internal/errors"
)

// ErrTargetNotConfigured is returned when a target lacks its agent or alias id.
var ErrTargetNotConfigured = errors.NewSentinel("Missing Agent ID/Alias for target")

const SupervisorID = "supervisor"

// IDs are the Bedrock agent and alias ids of one target.
type IDs struct {
	AgentID string
	AliasID string
}

// Configured reports whether both ids are set.
func (ids IDs) Configured() bool {
	return ids.AgentID != "" && ids.AliasID != ""
}

// Target is an agent the player can talk to.
type Target struct {
	ID          string
	Label       string
	Description string
	Specialties string
	Icon        string
	// PersonaID names the persona directory with the character texts.
	PersonaID string
	// Instruction is the character prompt used when provisioning and by the OpenAI backend.
	Instruction string
	IDs         IDs
}

// IsSupervisor reports whether the target is the game master.
func (t Target) IsSupervisor() bool {
	return t.ID == SupervisorID
}

var defaultTargets = []Target{
	{
		ID:          SupervisorID,
		Label:       "Supervisor",
		Description: "Game master",
		Specialties: "Breaks tasks down, delegates to the best collaborator and synthesizes a final answer",
		Icon:        "🧩",
		PersonaID:   "",
		Instruction: "You are the game master in a locked-room puzzle. " +
			"Coordinate specialized teammates to crack codes quickly and safely. " +
			"Break tasks down, delegate to the best collaborator, and synthesize a final answer.",
		IDs: IDs{AgentID: "", AliasID: ""},
	},
	{
		ID:          "gustavo",
		Label:       "Gustavo",
		Description: "Senior Software Engineer",
		Specialties: "Logic, ciphers, code-breaking, step-by-step analysis",
		Icon:        "🔧",
		PersonaID:   "gustavo",
		Instruction: "You are Gustavo, a senior software engineer. " +
			"Expert in logic, ciphers, code-breaking. " +
			"Be concise, think step-by-step, propose exact next actions.",
		IDs: IDs{AgentID: "", AliasID: ""},
	},
	{
		ID:          "maya",
		Label:       "Maya",
		Description: "Psychologist",
		Specialties: "Social cues, people puzzles, behavioral analysis",
		Icon:        "🧠",
		PersonaID:   "maya",
		Instruction: "You are Maya, a psychologist who excels at reading social cues and riddles involving people. " +
			"Explain reasoning plainly; verify assumptions.",
		IDs: IDs{AgentID: "", AliasID: ""},
	},
	{
		ID:          "dra_caroline",
		Label:       "Dra. Caroline",
		Description: "Química/Docente",
		Specialties: "Laboratorial, método científico, ensino",
		Icon:        "🧪",
		PersonaID:   "dra_caroline",
		Instruction: "You are Dra. Caroline, a chemist and teacher. " +
			"Apply the scientific method to laboratory puzzles and explain each step as if teaching.",
		IDs: IDs{AgentID: "", AliasID: ""},
	},
}

// Roster is the fixed list of targets with their configured ids.
type Roster struct {
	targets []Target
}

// NewRoster builds the roster, taking the ids of each target from ids keyed by target ID.
func NewRoster(ids map[string]IDs) Roster {
	targets := make([]Target, len(defaultTargets))
	copy(targets, defaultTargets)
	for i := range targets {
		targets[i].IDs = ids[targets[i].ID]
	}
	return Roster{targets: targets}
}

// Targets returns every target, supervisor first.
func (r Roster) Targets() []Target {
	out := make([]Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// Collaborators returns the targets the supervisor can delegate to.
func (r Roster) Collaborators() []Target {
	var out []Target
	for _, t := range r.targets {
		if !t.IsSupervisor() {
			out = append(out, t)
		}
	}
	return out
}

// Get returns the target with the given ID.
func (r Roster) Get(id string) (Target, bool) {
	for _, t := range r.targets {
		if t.ID == id {
			return t, true
		}
	}
	return Target{}, false //nolint:exhaustruct // zero value
}

// Labels maps collaborator IDs to labels in roster order, skipping unknown IDs.
func (r Roster) Labels(ids []string) []string {
	var labels []string
	for _, t := range r.targets {
		for _, id := range ids {
			if t.ID == id && !t.IsSupervisor() {
				labels = append(labels, t.Label)
				break
			}
		}
	}
	return labels
}

// Input resolves the invocation of targetID with text. When the supervisor is addressed and collaborators are
// selected the prompt tells the supervisor who is on the team.
func (r Roster) Input(targetID, sessionID, text string, selected []string) (Input, error) {
	t, ok := r.Get(targetID)
	if !ok {
		return Input{}, fmt.Errorf("%w: %s", ErrTargetNotConfigured, targetID) //nolint:exhaustruct // error path
	}
	if !t.IDs.Configured() {
		// The message is shown in the transcript as is.
		return Input{}, fmt.Errorf("%w: %s", ErrTargetNotConfigured, t.Label) //nolint:exhaustruct // error path
	}
	if t.IsSupervisor() {
		text = SupervisorPrompt(text, r.Labels(selected))
	}
	return Input{
		TargetID:  t.ID,
		AgentID:   t.IDs.AgentID,
		AliasID:   t.IDs.AliasID,
		SessionID: sessionID,
		Text:      text,
	}, nil
}

// SupervisorPrompt appends the team roster to prompt. Without team members prompt is returned unchanged.
func SupervisorPrompt(prompt string, teamMembers []string) string {
	if len(teamMembers) == 0 {
		return prompt
	}
	return prompt + "\n\nAvailable team members: " + strings.Join(teamMembers, ", ") + ". Collaborate with them as needed."
}
