// Package provision creates the Bedrock agents of the game: the collaborator characters and the supervisor that
// delegates to them.
package provision

import (
	"os"
	"time"

	"github.com/myrjola/jigsawroom/internal/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultIdleSessionTTL  = 600
	defaultPollInterval    = 5 * time.Second
	defaultTimeout         = 5 * time.Minute
	defaultCollabAliasName = "test"
	defaultSupervisorAlias = "prod"
)

// Config describes the agents to provision.
type Config struct {
	Region                string         `yaml:"region"`
	FoundationModel       string         `yaml:"foundation_model"`
	RoleARN               string         `yaml:"role_arn"`
	IdleSessionTTLSeconds int32          `yaml:"idle_session_ttl_seconds"`
	PollInterval          time.Duration  `yaml:"poll_interval"`
	Timeout               time.Duration  `yaml:"timeout"`
	Collaborators         []Collaborator `yaml:"collaborators"`
	Supervisor            Supervisor     `yaml:"supervisor"`
}

// Collaborator is a character agent. AgentID and AliasID are set for agents that already exist, which is what
// the supervisor setup needs.
type Collaborator struct {
	Name                     string `yaml:"name"`
	Instruction              string `yaml:"instruction"`
	CollaborationInstruction string `yaml:"collaboration_instruction"`
	AliasName                string `yaml:"alias_name"`
	AgentID                  string `yaml:"agent_id"`
	AliasID                  string `yaml:"alias_id"`
}

// Supervisor is the game master agent.
type Supervisor struct {
	Name        string `yaml:"name"`
	Instruction string `yaml:"instruction"`
	AliasName   string `yaml:"alias_name"`
}

// LoadConfig reads the YAML file at path and fills in defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read provisioning file")
	}
	if cfg, err = ParseConfig(b); err != nil {
		return cfg, errors.Wrap(err, "parse provisioning file")
	}
	return cfg, nil
}

// ParseConfig decodes YAML and fills in defaults.
func ParseConfig(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.Wrap(err, "unmarshal yaml")
	}
	cfg.applyDefaults()
	if cfg.FoundationModel == "" {
		return cfg, errors.New("foundation_model is required")
	}
	if cfg.RoleARN == "" {
		return cfg, errors.New("role_arn is required")
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.IdleSessionTTLSeconds == 0 {
		c.IdleSessionTTLSeconds = defaultIdleSessionTTL
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	for i := range c.Collaborators {
		if c.Collaborators[i].AliasName == "" {
			c.Collaborators[i].AliasName = defaultCollabAliasName
		}
	}
	if c.Supervisor.AliasName == "" {
		c.Supervisor.AliasName = defaultSupervisorAlias
	}
}
