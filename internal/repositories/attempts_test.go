package repositories_test

import (
	"io"
	"testing"

	"github.com/myrjola/jigsawroom/internal/challenge"
	"github.com/myrjola/jigsawroom/internal/repositories"
	"github.com/myrjola/jigsawroom/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptRepository(t *testing.T) {
	ctx := t.Context()
	repo := repositories.NewAttemptRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	attempts := []struct {
		challenge string
		submitted string
		verdict   challenge.Verdict
	}{
		{challenge: "DESAFIO 1 — A", submitted: "x", verdict: challenge.VerdictIncorrect},
		{challenge: "DESAFIO 1 — A", submitted: "y", verdict: challenge.VerdictCorrect},
		{challenge: "DESAFIO 1 — A", submitted: "y", verdict: challenge.VerdictCorrect},
		{challenge: "DESAFIO 2 — B", submitted: "z", verdict: challenge.VerdictNoKey},
	}
	for _, a := range attempts {
		recorded, err := repo.Record(ctx, "session-a", a.challenge, a.submitted, a.verdict)
		require.NoError(t, err)
		assert.Equal(t, string(a.verdict), recorded.Verdict)
		assert.Equal(t, a.verdict == challenge.VerdictCorrect, recorded.Solved())
	}
	_, err := repo.Record(ctx, "session-b", "DESAFIO 2 — B", "z", challenge.VerdictCorrect)
	require.NoError(t, err)

	list, err := repo.ListBySession(ctx, "session-a")
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "DESAFIO 2 — B", list[0].ChallengeKey, "newest first")
	assert.Equal(t, "x", list[3].Submitted)

	solved, err := repo.SolvedCount(ctx, "session-a")
	require.NoError(t, err)
	assert.Equal(t, 1, solved)

	solved, err = repo.SolvedCount(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, solved)
}

func TestAttemptRepository_invalidVerdict(t *testing.T) {
	repo := repositories.NewAttemptRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))
	_, err := repo.Record(t.Context(), "session-a", "DESAFIO 1 — A", "x", challenge.Verdict("maybe"))
	require.Error(t, err)
}
