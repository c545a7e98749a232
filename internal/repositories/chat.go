package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/myrjola/jigsawroom/internal/errors"
	"github.com/myrjola/jigsawroom/internal/models"
	"github.com/myrjola/jigsawroom/internal/sqlite"
)

// ErrNotFound is returned when a queried record does not exist.
var ErrNotFound = errors.NewSentinel("not found")

const chatColumns = `id, session_id, role, target, content, pending, created`

type ChatRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewChatRepository(db *sqlite.Database, logger *slog.Logger) *ChatRepository {
	return &ChatRepository{
		db:     db,
		logger: logger.With("source", "ChatRepository"),
	}
}

// Insert stores a finished message and returns it with its generated ID.
func (r *ChatRepository) Insert(
	ctx context.Context,
	sessionID string,
	role models.Role,
	target string,
	content string,
) (*models.ChatMessage, error) {
	return r.insert(ctx, sessionID, role, target, content, false)
}

// CreatePending stores an empty assistant message that is filled in by Complete once the reply has been
// streamed.
func (r *ChatRepository) CreatePending(ctx context.Context, sessionID string, target string) (*models.ChatMessage, error) {
	return r.insert(ctx, sessionID, models.RoleAssistant, target, "", true)
}

func (r *ChatRepository) insert(
	ctx context.Context,
	sessionID string,
	role models.Role,
	target string,
	content string,
	pending bool,
) (*models.ChatMessage, error) {
	stmt := `INSERT INTO chat_messages (id, session_id, role, target, content, pending)
VALUES (@id, @session_id, @role, @target, @content, @pending)`
	id := uuid.NewString()
	params := []any{
		sql.Named("id", id),
		sql.Named("session_id", sessionID),
		sql.Named("role", role),
		sql.Named("target", target),
		sql.Named("content", content),
		sql.Named("pending", pending),
	}
	if _, err := r.db.ReadWrite.ExecContext(ctx, stmt, params...); err != nil {
		return nil, errors.Wrap(err, "insert chat message", slog.String("role", string(role)))
	}
	return r.getFrom(ctx, r.db.ReadWrite.GetContext, id)
}

// Complete stores the final content of a pending message.
func (r *ChatRepository) Complete(ctx context.Context, id string, content string) error {
	stmt := `UPDATE chat_messages SET content = @content, pending = 0 WHERE id = @id`
	result, err := r.db.ReadWrite.ExecContext(ctx, stmt, sql.Named("id", id), sql.Named("content", content))
	if err != nil {
		return errors.Wrap(err, "complete chat message", slog.String("id", id))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return errors.Wrap(ErrNotFound, "complete chat message", slog.String("id", id))
	}
	return nil
}

// Get reads a message of the given session.
func (r *ChatRepository) Get(ctx context.Context, sessionID string, id string) (*models.ChatMessage, error) {
	msg, err := r.getFrom(ctx, r.db.ReadOnly.GetContext, id)
	if err != nil {
		return nil, err
	}
	if msg.SessionID != sessionID {
		return nil, errors.Wrap(ErrNotFound, "chat message of another session", slog.String("id", id))
	}
	return msg, nil
}

type getFunc func(ctx context.Context, dest any, query string, args ...any) error

func (r *ChatRepository) getFrom(ctx context.Context, get getFunc, id string) (*models.ChatMessage, error) {
	var msg models.ChatMessage
	stmt := `SELECT ` + chatColumns + ` FROM chat_messages WHERE id = ?`
	if err := get(ctx, &msg, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "read chat message", slog.String("id", id))
		}
		return nil, errors.Wrap(err, "read chat message", slog.String("id", id))
	}
	return &msg, nil
}

// ListBySession returns the transcript of a session, oldest first.
func (r *ChatRepository) ListBySession(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	stmt := `SELECT ` + chatColumns + ` FROM chat_messages WHERE session_id = ? ORDER BY created, rowid`
	if err := r.db.ReadOnly.SelectContext(ctx, &messages, stmt, sessionID); err != nil {
		return nil, errors.Wrap(err, "list chat messages")
	}
	return messages, nil
}
