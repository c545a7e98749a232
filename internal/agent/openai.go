package agent

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/myrjola/jigsawroom/internal/errors"
	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultOpenAIModel is used when no model is configured.
	DefaultOpenAIModel = openai.GPT3Dot5Turbo
	// maxHistory bounds the remembered messages per conversation, system prompt excluded.
	maxHistory = 40
)

// OpenAIInvoker plays the roster characters with an OpenAI chat model. It serves local development without
// deployed Bedrock agents. Conversations are remembered in memory per session and target.
type OpenAIInvoker struct {
	client *openai.Client
	roster Roster
	model  string
	logger *slog.Logger

	mu      sync.Mutex
	history map[string][]openai.ChatCompletionMessage
}

// NewOpenAIInvoker creates an invoker with the given client. An empty model selects [DefaultOpenAIModel].
func NewOpenAIInvoker(client *openai.Client, roster Roster, model string, logger *slog.Logger) *OpenAIInvoker {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIInvoker{
		client:  client,
		roster:  roster,
		model:   model,
		logger:  logger,
		mu:      sync.Mutex{},
		history: map[string][]openai.ChatCompletionMessage{},
	}
}

// Stream streams the completion for in. The target instruction is the system prompt. The exchange is added to
// the conversation history once the reply is complete.
func (o *OpenAIInvoker) Stream(ctx context.Context, in Input, chunks chan<- string) error {
	target, ok := o.roster.Get(in.TargetID)
	if !ok {
		return errors.Wrap(ErrTargetNotConfigured, "unknown target", slog.String("target", in.TargetID))
	}
	key := in.SessionID + "/" + target.ID
	userMessage := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: in.Text} //nolint:exhaustruct // optional fields

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: o.systemPrompt(target)}, //nolint:exhaustruct // optional fields
	}
	o.mu.Lock()
	messages = append(messages, o.history[key]...)
	o.mu.Unlock()
	messages = append(messages, userMessage)

	stream, err := o.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{ //nolint:exhaustruct // optional fields
		Model:    o.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return errors.Wrap(err, "create chat completion stream", slog.String("target", target.ID))
	}
	defer stream.Close()

	var reply []byte
	for {
		var resp openai.ChatCompletionStreamResponse
		resp, err = stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return errors.Wrap(err, "receive completion chunk", slog.String("target", target.ID))
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}
		content := resp.Choices[0].Delta.Content
		reply = append(reply, content...)
		select {
		case chunks <- content:
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "send completion chunk")
		}
	}

	o.remember(key, userMessage, openai.ChatCompletionMessage{ //nolint:exhaustruct // optional fields
		Role:    openai.ChatMessageRoleAssistant,
		Content: string(reply),
	})
	o.logger.LogAttrs(ctx, slog.LevelDebug, "completion streamed",
		slog.String("target", target.ID), slog.Int("reply_bytes", len(reply)))
	return nil
}

func (o *OpenAIInvoker) systemPrompt(target Target) string {
	if target.IsSupervisor() {
		return SupervisorPrompt(target.Instruction, o.roster.Labels(collaboratorIDs(o.roster)))
	}
	return target.Instruction
}

func collaboratorIDs(r Roster) []string {
	var ids []string
	for _, t := range r.Collaborators() {
		ids = append(ids, t.ID)
	}
	return ids
}

func (o *OpenAIInvoker) remember(key string, messages ...openai.ChatCompletionMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	h := append(o.history[key], messages...)
	if len(h) > maxHistory {
		h = h[len(h)-maxHistory:]
	}
	o.history[key] = h
}

// OpenAIIDs returns placeholder ids for every roster target so that the roster treats them as configured when
// the OpenAI backend serves them.
func OpenAIIDs() map[string]IDs {
	ids := make(map[string]IDs, len(defaultTargets))
	for _, t := range defaultTargets {
		ids[t.ID] = IDs{AgentID: "openai", AliasID: t.ID}
	}
	return ids
}
