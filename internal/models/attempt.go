package models

import "time"

// AnswerAttempt records an answer submitted for a challenge and how it was judged.
type AnswerAttempt struct {
	ID           int64     `db:"id"`
	SessionID    string    `db:"session_id"`
	ChallengeKey string    `db:"challenge_key"`
	Submitted    string    `db:"submitted"`
	Verdict      string    `db:"verdict"`
	Created      time.Time `db:"created"`
}

// Solved reports whether the attempt was judged correct.
func (a AnswerAttempt) Solved() bool {
	return a.Verdict == "correct"
}
