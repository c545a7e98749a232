package agent

import (
	"context"
	"strings"
)

// NoReply is shown when an agent answers without any text.
const NoReply = "(no reply)"

// Input is one message to an agent.
type Input struct {
	// TargetID is the roster ID of the addressed target.
	TargetID  string
	AgentID   string
	AliasID   string
	SessionID string
	Text      string
}

// Invoker sends a message to an agent and streams the reply.
type Invoker interface {
	// Stream sends each reply fragment to chunks as it arrives and returns when the reply is complete. The caller
	// owns chunks and closes it after Stream returns.
	Stream(ctx context.Context, in Input, chunks chan<- string) error
}

// Collect invokes inv and concatenates the streamed reply. The text received before a failure is returned along
// with the error.
func Collect(ctx context.Context, inv Invoker, in Input) (string, error) {
	chunks := make(chan string)
	done := make(chan struct{})
	var b strings.Builder
	go func() {
		defer close(done)
		for c := range chunks {
			b.WriteString(c)
		}
	}()
	err := inv.Stream(ctx, in, chunks)
	close(chunks)
	<-done
	return b.String(), err
}

// ReplyText turns the outcome of an invocation into the transcript text. A failure becomes "Error: <message>"
// and an empty reply becomes [NoReply].
func ReplyText(reply string, err error) string {
	if err != nil {
		return "Error: " + err.Error()
	}
	if reply == "" {
		return NoReply
	}
	return reply
}
