package agent_test

import (
	"context"
	"testing"

	"github.com/myrjola/jigsawroom/internal/agent"
	"github.com/myrjola/jigsawroom/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configuredRoster() agent.Roster {
	return agent.NewRoster(map[string]agent.IDs{
		agent.SupervisorID: {AgentID: "SUP", AliasID: "SUPALIAS"},
		"gustavo":          {AgentID: "GUS", AliasID: "GUSALIAS"},
		"maya":             {AgentID: "MAYA", AliasID: ""},
	})
}

func TestRoster(t *testing.T) {
	r := configuredRoster()

	targets := r.Targets()
	require.Len(t, targets, 4)
	assert.Equal(t, agent.SupervisorID, targets[0].ID)
	assert.True(t, targets[0].IsSupervisor())

	var ids []string
	for _, c := range r.Collaborators() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"gustavo", "maya", "dra_caroline"}, ids)

	caroline, ok := r.Get("dra_caroline")
	require.True(t, ok)
	assert.Equal(t, "Dra. Caroline", caroline.Label)
	assert.Equal(t, "dra_caroline", caroline.PersonaID)
	assert.False(t, caroline.IDs.Configured())

	assert.Equal(t, []string{"Gustavo", "Dra. Caroline"}, r.Labels([]string{"dra_caroline", "unknown", "gustavo", "supervisor"}))
}

func TestRoster_Input(t *testing.T) {
	r := configuredRoster()
	tests := []struct {
		name     string
		target   string
		text     string
		selected []string
		want     agent.Input
		wantErr  error
		wantMsg  string
	}{
		{
			name:     "supervisor with team",
			target:   agent.SupervisorID,
			text:     "Resolva o desafio",
			selected: []string{"gustavo", "maya"},
			want: agent.Input{
				TargetID:  agent.SupervisorID,
				AgentID:   "SUP",
				AliasID:   "SUPALIAS",
				SessionID: "session-1",
				Text:      "Resolva o desafio\n\nAvailable team members: Gustavo, Maya. Collaborate with them as needed.",
			},
			wantErr: nil,
		},
		{
			name:     "supervisor without team",
			target:   agent.SupervisorID,
			text:     "Olá",
			selected: nil,
			want: agent.Input{
				TargetID: agent.SupervisorID, AgentID: "SUP", AliasID: "SUPALIAS", SessionID: "session-1", Text: "Olá",
			},
			wantErr: nil,
		},
		{
			name:     "direct target ignores team",
			target:   "gustavo",
			text:     "KHOOR",
			selected: []string{"maya"},
			want: agent.Input{
				TargetID: "gustavo", AgentID: "GUS", AliasID: "GUSALIAS", SessionID: "session-1", Text: "KHOOR",
			},
			wantErr: nil,
		},
		{
			name:     "missing alias",
			target:   "maya",
			text:     "Oi",
			selected: nil,
			want:     agent.Input{},
			wantErr:  agent.ErrTargetNotConfigured,
			wantMsg:  "Missing Agent ID/Alias for target: Maya",
		},
		{
			name:     "unknown target",
			target:   "ivy",
			text:     "Oi",
			selected: nil,
			want:     agent.Input{},
			wantErr:  agent.ErrTargetNotConfigured,
			wantMsg:  "Missing Agent ID/Alias for target: ivy",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Input(tt.target, "session-1", tt.text, tt.selected)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.EqualError(t, err, tt.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSupervisorPrompt(t *testing.T) {
	assert.Equal(t, "p", agent.SupervisorPrompt("p", nil))
	assert.Equal(t, "p\n\nAvailable team members: Maya. Collaborate with them as needed.",
		agent.SupervisorPrompt("p", []string{"Maya"}))
}

func TestReplyText(t *testing.T) {
	assert.Equal(t, "resposta", agent.ReplyText("resposta", nil))
	assert.Equal(t, agent.NoReply, agent.ReplyText("", nil))
	assert.Equal(t, "Error: boom", agent.ReplyText("partial", errors.New("boom")))
}

type scriptedInvoker struct {
	chunks []string
	err    error
}

func (s scriptedInvoker) Stream(_ context.Context, _ agent.Input, chunks chan<- string) error {
	for _, c := range s.chunks {
		chunks <- c
	}
	return s.err
}

func TestCollect(t *testing.T) {
	reply, err := agent.Collect(t.Context(), scriptedInvoker{chunks: []string{"Olá, ", "detetive"}, err: nil}, agent.Input{})
	require.NoError(t, err)
	assert.Equal(t, "Olá, detetive", reply)

	boom := errors.New("boom")
	reply, err = agent.Collect(t.Context(), scriptedInvoker{chunks: []string{"meia"}, err: boom}, agent.Input{})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "meia", reply)
}
