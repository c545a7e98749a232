// Package mcp serves the answer key tools over the Model Context Protocol.
package mcp

import (
	"github.com/myrjola/jigsawroom/internal/challenge"
	"github.com/myrjola/jigsawroom/internal/logging"
	"github.com/myrjola/jigsawroom/internal/mcpserver"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "mcp",
	Title: "Model Context Protocol",
}

var answerKeyPath string

var Command = &cobra.Command{
	Use:     "mcp",
	GroupID: "mcp",
	Short:   "Model Context Protocol server",
}

func init() {
	serve.Flags().StringVarP(&answerKeyPath, "file", "f", "respostas.txt", "answer key file")
	Command.AddCommand(serve)
}

var serve = &cobra.Command{
	Use:   "serve",
	Short: "Serve list_challenges and verify_answer over stdio",
	Long:  "Serves the tools over stdin and stdout. The answer key is reloaded when the file changes.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Stdout carries the protocol, so logs go to stderr.
		logger := logging.NewLogger(cmd.ErrOrStderr(), false)
		return mcpserver.New(challenge.NewAnswerKeyCache(logger, answerKeyPath), logger).ServeStdio()
	},
}
