// Package mcpserver exposes the answer key as Model Context Protocol tools, so agents and other tools can list the
// challenges and grade answers without seeing the canonical answers.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/myrjola/jigsawroom/internal/challenge"
	"github.com/myrjola/jigsawroom/internal/errors"
)

const (
	serverName    = "jigsaw-room"
	serverVersion = "1.0.0"
)

// AnswerKeySource returns the current answer key, e.g. a [challenge.Cache].
type AnswerKeySource interface {
	Get(ctx context.Context) challenge.AnswerKey
}

// ChallengeSummary is one entry of the list_challenges result.
type ChallengeSummary struct {
	Key       string `json:"key"`
	Number    string `json:"number"`
	Name      string `json:"name"`
	HasAnswer bool   `json:"has_answer"`
}

type Server struct {
	answers AnswerKeySource
	logger  *slog.Logger
	mcp     *server.MCPServer
}

func New(answers AnswerKeySource, logger *slog.Logger) *Server {
	s := &Server{
		answers: answers,
		logger:  logger.With("source", "mcpserver"),
		mcp:     server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false)),
	}
	s.mcp.AddTool(mcp.NewTool("list_challenges",
		mcp.WithDescription("List the Jigsaw Room challenges of the answer key."),
	), s.ListChallenges)
	s.mcp.AddTool(mcp.NewTool("verify_answer",
		mcp.WithDescription("Check an answer for a challenge. Returns correct, incorrect or no_key."),
		mcp.WithString("challenge", mcp.Required(),
			mcp.Description(`Challenge title or key, e.g. "DESAFIO 1 — Cofre"`)),
		mcp.WithString("answer", mcp.Required(), mcp.Description("The submitted answer.")),
	), s.VerifyAnswer)
	return s
}

// ServeStdio serves the tools over stdin and stdout until the input is closed.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP over stdio")
	if err := server.ServeStdio(s.mcp); err != nil {
		return errors.Wrap(err, "serve stdio")
	}
	return nil
}

func (s *Server) ListChallenges(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records := s.answers.Get(ctx).Records()
	summaries := make([]ChallengeSummary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, ChallengeSummary{
			Key:       r.Key,
			Number:    r.Number,
			Name:      r.Name,
			HasAnswer: r.HasAnswer(),
		})
	}
	out, err := json.Marshal(summaries)
	if err != nil {
		return nil, errors.Wrap(err, "marshal challenges")
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) VerifyAnswer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("challenge")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	answer, err := request.RequireString("answer")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	verdict := s.answers.Get(ctx).Verify(title, answer)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "verified answer",
		slog.String("challenge", title), slog.String("verdict", string(verdict)))
	return mcp.NewToolResultText(string(verdict)), nil
}
