// Package answers inspects the answer key and checks answers against it.
package answers

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/myrjola/jigsawroom/internal/challenge"
	"github.com/myrjola/jigsawroom/internal/errors"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "answers",
	Title: "Answer key",
}

var (
	answerKeyPath string
	challengeKey  string
)

var Command = &cobra.Command{
	Use:     "answers",
	GroupID: "answers",
	Short:   "Inspect the answer key",
}

func init() {
	Command.PersistentFlags().StringVarP(&answerKeyPath, "file", "f", "respostas.txt", "answer key file")
	check.Flags().StringVarP(&challengeKey, "challenge", "c", "", `challenge title or key, e.g. "DESAFIO 1 — Cofre"`)
	_ = check.MarkFlagRequired("challenge")
	Command.AddCommand(list, check)
}

var list = &cobra.Command{
	Use:   "list",
	Short: "List the challenges of the answer key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, err := loadAnswerKey()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // padding
		_, _ = fmt.Fprintln(w, "CHALLENGE\tANSWER")
		for _, r := range key.Records() {
			answer := "yes"
			if !r.HasAnswer() {
				answer = "no"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\n", r.Key, answer)
		}
		return errors.Wrap(w.Flush(), "flush")
	},
}

var check = &cobra.Command{
	Use:   "check <answer>",
	Short: "Check an answer and print the verdict: correct, incorrect or no_key",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := loadAnswerKey()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), key.Verify(challengeKey, strings.Join(args, " ")))
		return nil
	},
}

// loadAnswerKey reads the answer key. Unlike the web application a missing file is an error.
func loadAnswerKey() (challenge.AnswerKey, error) {
	if _, err := os.Stat(answerKeyPath); err != nil {
		return challenge.AnswerKey{}, errors.Wrap(err, "stat answer key", slog.String("path", answerKeyPath))
	}
	return challenge.LoadAnswerKey(answerKeyPath), nil
}
