package agent

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/myrjola/jigsawroom/internal/errors"
)

// RuntimeAPI is the part of the Bedrock agent runtime client used by [BedrockInvoker].
type RuntimeAPI interface {
	InvokeAgent(ctx context.Context, params *bedrockagentruntime.InvokeAgentInput,
		optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.InvokeAgentOutput, error)
}

// BedrockInvoker talks to deployed Bedrock agents.
type BedrockInvoker struct {
	api    RuntimeAPI
	logger *slog.Logger
}

// NewBedrockInvoker creates an invoker using the runtime client built from cfg.
func NewBedrockInvoker(cfg aws.Config, logger *slog.Logger) *BedrockInvoker {
	return NewBedrockInvokerWithAPI(bedrockagentruntime.NewFromConfig(cfg), logger)
}

// NewBedrockInvokerWithAPI creates an invoker around an existing runtime client.
func NewBedrockInvokerWithAPI(api RuntimeAPI, logger *slog.Logger) *BedrockInvoker {
	return &BedrockInvoker{api: api, logger: logger}
}

// Stream invokes the agent and forwards the text of every chunk event.
func (b *BedrockInvoker) Stream(ctx context.Context, in Input, chunks chan<- string) error {
	if in.AgentID == "" || in.AliasID == "" {
		return errors.Wrap(ErrTargetNotConfigured, "invoke agent", slog.String("target", in.TargetID))
	}
	out, err := b.api.InvokeAgent(ctx, &bedrockagentruntime.InvokeAgentInput{ //nolint:exhaustruct // optional fields
		AgentId:      aws.String(in.AgentID),
		AgentAliasId: aws.String(in.AliasID),
		SessionId:    aws.String(in.SessionID),
		InputText:    aws.String(in.Text),
	})
	if err != nil {
		return errors.Wrap(err, "invoke agent", slog.String("agent_id", in.AgentID))
	}
	stream := out.GetStream()
	defer func() {
		if closeErr := stream.Close(); closeErr != nil {
			b.logger.LogAttrs(ctx, slog.LevelWarn, "close agent stream", errors.SlogError(closeErr))
		}
	}()
	if err = collectEvents(ctx, stream.Events(), chunks, b.logger); err != nil {
		return err
	}
	if err = stream.Err(); err != nil {
		return errors.Wrap(err, "read agent stream", slog.String("agent_id", in.AgentID))
	}
	return nil
}

// collectEvents forwards chunk payloads until events is closed. Other event kinds are skipped.
func collectEvents(ctx context.Context, events <-chan types.ResponseStream, chunks chan<- string, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "wait for agent chunk")
		case event, ok := <-events:
			if !ok {
				return nil
			}
			chunk, isChunk := event.(*types.ResponseStreamMemberChunk)
			if !isChunk {
				logger.LogAttrs(ctx, slog.LevelDebug, "skip agent event", slog.String("type", eventType(event)))
				continue
			}
			if len(chunk.Value.Bytes) == 0 {
				continue
			}
			select {
			case chunks <- string(chunk.Value.Bytes):
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), "send agent chunk")
			}
		}
	}
}

func eventType(event types.ResponseStream) string {
	switch event.(type) {
	case *types.ResponseStreamMemberTrace:
		return "trace"
	case *types.ResponseStreamMemberReturnControl:
		return "return_control"
	case *types.ResponseStreamMemberFiles:
		return "files"
	default:
		return "unknown"
	}
}
