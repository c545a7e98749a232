// Package models holds the persisted records of the game.
package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the transcript of an agent session.
type ChatMessage struct {
	ID        string `db:"id"`
	SessionID string `db:"session_id"`
	Role      Role   `db:"role"`
	// Target is the roster ID of the agent the message was sent to or came from.
	Target  string `db:"target"`
	Content string `db:"content"`
	// Pending is set while the assistant reply is still streaming.
	Pending bool      `db:"pending"`
	Created time.Time `db:"created"`
}
