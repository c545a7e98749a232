package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/myrjola/jigsawroom/internal/challenge"
	"github.com/myrjola/jigsawroom/internal/errors"
	"github.com/myrjola/jigsawroom/internal/models"
	"github.com/myrjola/jigsawroom/internal/sqlite"
)

type AttemptRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewAttemptRepository(db *sqlite.Database, logger *slog.Logger) *AttemptRepository {
	return &AttemptRepository{
		db:     db,
		logger: logger.With("source", "AttemptRepository"),
	}
}

// Record stores the verdict of a submitted answer.
func (r *AttemptRepository) Record(
	ctx context.Context,
	sessionID string,
	challengeKey string,
	submitted string,
	verdict challenge.Verdict,
) (*models.AnswerAttempt, error) {
	stmt := `INSERT INTO answer_attempts (session_id, challenge_key, submitted, verdict)
VALUES (@session_id, @challenge_key, @submitted, @verdict)`
	params := []any{
		sql.Named("session_id", sessionID),
		sql.Named("challenge_key", challengeKey),
		sql.Named("submitted", submitted),
		sql.Named("verdict", string(verdict)),
	}
	result, err := r.db.ReadWrite.ExecContext(ctx, stmt, params...)
	if err != nil {
		return nil, errors.Wrap(err, "insert answer attempt", slog.String("challenge", challengeKey))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "last insert id")
	}
	var attempt models.AnswerAttempt
	stmt = `SELECT id, session_id, challenge_key, submitted, verdict, created FROM answer_attempts WHERE id = ?`
	if err = r.db.ReadWrite.GetContext(ctx, &attempt, stmt, id); err != nil {
		return nil, errors.Wrap(err, "read answer attempt", slog.Int64("id", id))
	}
	return &attempt, nil
}

// ListBySession returns the attempts of a session, newest first.
func (r *AttemptRepository) ListBySession(ctx context.Context, sessionID string) ([]models.AnswerAttempt, error) {
	var attempts []models.AnswerAttempt
	stmt := `SELECT id, session_id, challenge_key, submitted, verdict, created
FROM answer_attempts
WHERE session_id = ?
ORDER BY id DESC`
	if err := r.db.ReadOnly.SelectContext(ctx, &attempts, stmt, sessionID); err != nil {
		return nil, errors.Wrap(err, "list answer attempts")
	}
	return attempts, nil
}

// SolvedCount returns how many distinct challenges the session has answered correctly.
func (r *AttemptRepository) SolvedCount(ctx context.Context, sessionID string) (int, error) {
	var count int
	stmt := `SELECT COUNT(DISTINCT challenge_key) FROM answer_attempts WHERE session_id = ? AND verdict = 'correct'`
	if err := r.db.ReadOnly.GetContext(ctx, &count, stmt, sessionID); err != nil {
		return 0, errors.Wrap(err, "count solved challenges")
	}
	return count, nil
}
