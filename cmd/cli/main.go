package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/myrjola/jigsawroom/cmd/cli/agents"
	"github.com/myrjola/jigsawroom/cmd/cli/answers"
	"github.com/myrjola/jigsawroom/cmd/cli/mcp"
	"github.com/myrjola/jigsawroom/internal/errors"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(agents.Group, answers.Group, mcp.Group)
	rootCmd.AddCommand(agents.Command, answers.Command, mcp.Command)
}

var rootCmd = &cobra.Command{
	Use:          "jigsaw-cli",
	Long:         `Command line utilities for Jigsaw Room: agent provisioning, answer key tools and the MCP server.`,
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
