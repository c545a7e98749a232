// Package agents provisions the Bedrock agents and prints their ids as environment variables for the web
// application.
package agents

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/myrjola/jigsawroom/internal/errors"
	"github.com/myrjola/jigsawroom/internal/logging"
	"github.com/myrjola/jigsawroom/internal/provision"
	"github.com/spf13/cobra"
)

// supervisorEnvPrefix is the prefix the web application reads the supervisor ids from, whatever its name.
const supervisorEnvPrefix = "SUPERVISOR"

var Group = &cobra.Group{
	ID:    "agents",
	Title: "Bedrock agents",
}

var configPath string

var Command = &cobra.Command{
	Use:     "agents",
	GroupID: "agents",
	Short:   "Provision the Bedrock agents",
	Long: "Creates the collaborator and supervisor agents described in a YAML file. The ids are printed as " +
		"environment variables, ready to be appended to .env.",
}

func init() {
	Command.PersistentFlags().StringVarP(&configPath, "file", "f", "agents.yaml", "provisioning file")
	Command.AddCommand(create, supervisor, setup)
}

var create = &cobra.Command{
	Use:   "create",
	Short: "Create the collaborator agents with their aliases",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := newProvisioner(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		collaborators, err := p.CreateCollaborators(cmd.Context())
		printCollaborators(cmd.OutOrStdout(), collaborators)
		return err
	},
}

var supervisor = &cobra.Command{
	Use:   "supervisor",
	Short: "Create the supervisor for the collaborators listed with ids in the provisioning file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := newProvisioner(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		collaborators, err := p.ConfiguredCollaborators()
		if err != nil {
			return errors.Wrap(err, "read collaborator ids")
		}
		s, err := p.CreateSupervisor(cmd.Context(), collaborators)
		if err != nil {
			return errors.Wrap(err, "create supervisor")
		}
		printEnv(cmd.OutOrStdout(), supervisorEnvPrefix, s)
		return nil
	},
}

var setup = &cobra.Command{
	Use:   "setup",
	Short: "Create the collaborators and then the supervisor delegating to them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := newProvisioner(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		collaborators, err := p.CreateCollaborators(cmd.Context())
		printCollaborators(cmd.OutOrStdout(), collaborators)
		if err != nil {
			return err
		}
		s, err := p.CreateSupervisor(cmd.Context(), collaborators)
		if err != nil {
			return errors.Wrap(err, "create supervisor")
		}
		printEnv(cmd.OutOrStdout(), supervisorEnvPrefix, s)
		return nil
	},
}

func newProvisioner(ctx context.Context, logSink io.Writer) (*provision.Provisioner, error) {
	cfg, err := provision.LoadConfig(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "load provisioning file", slog.String("path", configPath))
	}
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load AWS config")
	}
	return provision.NewFromConfig(awsCfg, cfg, logging.NewLogger(logSink, false)), nil
}

func printCollaborators(w io.Writer, collaborators []provision.Agent) {
	for _, c := range collaborators {
		printEnv(w, c.EnvPrefix(), c)
	}
}

func printEnv(w io.Writer, prefix string, a provision.Agent) {
	_, _ = fmt.Fprintf(w, "%s_AGENT_ID=%s\n%s_ALIAS_ID=%s\n", prefix, a.AgentID, prefix, a.AliasID)
}
