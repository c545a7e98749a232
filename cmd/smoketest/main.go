package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/myrjola/jigsawroom/internal/e2etest"
	"github.com/myrjola/jigsawroom/internal/errors"
	"github.com/myrjola/jigsawroom/internal/logging"
)

// TestHealth checks that the deployed instance knows its supervisor agent.
func TestHealth(ctx context.Context, client *e2etest.Client) error {
	resp, err := client.Get(ctx, "/health")
	if err != nil {
		return errors.Wrap(err, "get health")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return errors.New("unexpected status", slog.Int("status", resp.StatusCode))
	}
	var health struct {
		Region            string `json:"region"`
		SupervisorAgentID bool   `json:"supervisor_agent_id"`
		SupervisorAliasID bool   `json:"supervisor_alias_id"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return errors.Wrap(err, "decode health")
	}
	if !health.SupervisorAgentID || !health.SupervisorAliasID {
		return errors.New("supervisor agent not configured", slog.String("region", health.Region))
	}
	return nil
}

// TestHome checks that the chat page renders the message and answer forms.
func TestHome(ctx context.Context, client *e2etest.Client) error {
	doc, err := client.GetDoc(ctx, "/")
	if err != nil {
		return errors.Wrap(err, "get home")
	}
	for _, selector := range []string{"form[action='/messages']", "select[name=target] option"} {
		if doc.Find(selector).Length() == 0 {
			return errors.New("element missing", slog.String("selector", selector))
		}
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		url      = "https://" + hostname
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1) //nolint:gocritic // cancel is not needed when exiting
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestHealth(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing health", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestHome(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing home page", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
}
