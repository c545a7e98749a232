package provision

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent/types"
	"github.com/myrjola/jigsawroom/internal/errors"
)

var (
	// ErrTimeout is returned when an agent does not reach the awaited state in time.
	ErrTimeout = errors.NewSentinel("timed out waiting for agent")
	// ErrAgentFailed is returned when an agent ends up in the FAILED state.
	ErrAgentFailed = errors.NewSentinel("agent failed")
)

const draftVersion = "DRAFT"

// API is the part of the Bedrock agent control plane client used for provisioning.
type API interface {
	CreateAgent(ctx context.Context, params *bedrockagent.CreateAgentInput,
		optFns ...func(*bedrockagent.Options)) (*bedrockagent.CreateAgentOutput, error)
	GetAgent(ctx context.Context, params *bedrockagent.GetAgentInput,
		optFns ...func(*bedrockagent.Options)) (*bedrockagent.GetAgentOutput, error)
	PrepareAgent(ctx context.Context, params *bedrockagent.PrepareAgentInput,
		optFns ...func(*bedrockagent.Options)) (*bedrockagent.PrepareAgentOutput, error)
	CreateAgentAlias(ctx context.Context, params *bedrockagent.CreateAgentAliasInput,
		optFns ...func(*bedrockagent.Options)) (*bedrockagent.CreateAgentAliasOutput, error)
	GetAgentAlias(ctx context.Context, params *bedrockagent.GetAgentAliasInput,
		optFns ...func(*bedrockagent.Options)) (*bedrockagent.GetAgentAliasOutput, error)
	AssociateAgentCollaborator(ctx context.Context, params *bedrockagent.AssociateAgentCollaboratorInput,
		optFns ...func(*bedrockagent.Options)) (*bedrockagent.AssociateAgentCollaboratorOutput, error)
}

// Agent is a provisioned agent with its alias.
type Agent struct {
	Name    string
	AgentID string
	AliasID string
}

// EnvPrefix is the environment variable prefix the web application reads the ids of this agent from,
// e.g. "DRA_CAROLINE" for "Dra. Caroline".
func (a Agent) EnvPrefix() string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToUpper(a.Name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// Provisioner runs the create, prepare and alias workflows against the control plane.
type Provisioner struct {
	api    API
	cfg    Config
	logger *slog.Logger
	// sleep waits between status polls. Tests replace it.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a provisioner for cfg.
func New(api API, cfg Config, logger *slog.Logger) *Provisioner {
	cfg.applyDefaults()
	return &Provisioner{api: api, cfg: cfg, logger: logger, sleep: sleepContext}
}

// NewFromConfig creates a provisioner using the control plane client built from awsCfg.
func NewFromConfig(awsCfg aws.Config, cfg Config, logger *slog.Logger) *Provisioner {
	return New(bedrockagent.NewFromConfig(awsCfg), cfg, logger)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "sleep")
	case <-t.C:
		return nil
	}
}

// CreateAgentWithAlias creates a collaborator agent, prepares its draft and points a new alias at it.
func (p *Provisioner) CreateAgentWithAlias(ctx context.Context, c Collaborator) (Agent, error) {
	agentID, err := p.createAgent(ctx, c.Name, c.Instruction, types.AgentCollaborationDisabled)
	if err != nil {
		return Agent{}, err //nolint:exhaustruct // error path
	}
	aliasID, err := p.prepareAndAlias(ctx, agentID, c.AliasName)
	if err != nil {
		return Agent{}, err //nolint:exhaustruct // error path
	}
	return Agent{Name: c.Name, AgentID: agentID, AliasID: aliasID}, nil
}

// CreateCollaborators provisions every collaborator of the configuration in order.
func (p *Provisioner) CreateCollaborators(ctx context.Context) ([]Agent, error) {
	agents := make([]Agent, 0, len(p.cfg.Collaborators))
	for _, c := range p.cfg.Collaborators {
		a, err := p.CreateAgentWithAlias(ctx, c)
		if err != nil {
			return agents, errors.Wrap(err, "create collaborator", slog.String("name", c.Name))
		}
		agents = append(agents, a)
	}
	return agents, nil
}

// CreateSupervisor creates the supervisor agent and associates the given collaborators with it. Collaborator
// instructions are taken from the configuration by name.
func (p *Provisioner) CreateSupervisor(ctx context.Context, collaborators []Agent) (Agent, error) {
	s := p.cfg.Supervisor
	agentID, err := p.createAgent(ctx, s.Name, s.Instruction, types.AgentCollaborationSupervisor)
	if err != nil {
		return Agent{}, err //nolint:exhaustruct // error path
	}
	for _, c := range collaborators {
		if err = p.associate(ctx, agentID, c); err != nil {
			return Agent{}, err //nolint:exhaustruct // error path
		}
	}
	aliasID, err := p.prepareAndAlias(ctx, agentID, s.AliasName)
	if err != nil {
		return Agent{}, err //nolint:exhaustruct // error path
	}
	return Agent{Name: s.Name, AgentID: agentID, AliasID: aliasID}, nil
}

// ConfiguredCollaborators returns the collaborators of the configuration that carry existing ids.
func (p *Provisioner) ConfiguredCollaborators() ([]Agent, error) {
	agents := make([]Agent, 0, len(p.cfg.Collaborators))
	for _, c := range p.cfg.Collaborators {
		if c.AgentID == "" || c.AliasID == "" {
			return nil, errors.New("collaborator without agent_id and alias_id", slog.String("name", c.Name))
		}
		agents = append(agents, Agent{Name: c.Name, AgentID: c.AgentID, AliasID: c.AliasID})
	}
	return agents, nil
}

func (p *Provisioner) createAgent(
	ctx context.Context,
	name, instruction string,
	collaboration types.AgentCollaboration,
) (string, error) {
	out, err := p.api.CreateAgent(ctx, &bedrockagent.CreateAgentInput{ //nolint:exhaustruct // optional fields
		AgentName:               aws.String(name),
		FoundationModel:         aws.String(p.cfg.FoundationModel),
		Instruction:             aws.String(instruction),
		AgentResourceRoleArn:    aws.String(p.cfg.RoleARN),
		IdleSessionTTLInSeconds: aws.Int32(p.cfg.IdleSessionTTLSeconds),
		AgentCollaboration:      collaboration,
	})
	if err != nil {
		return "", errors.Wrap(err, "create agent", slog.String("name", name))
	}
	agentID := aws.ToString(out.Agent.AgentId)
	p.logger.LogAttrs(ctx, slog.LevelInfo, "agent created", slog.String("name", name), slog.String("agent_id", agentID))

	if _, err = p.waitFor(ctx, agentID, "created", func(s types.AgentStatus) bool {
		return s != types.AgentStatusCreating
	}); err != nil {
		return "", err
	}
	return agentID, nil
}

func (p *Provisioner) prepareAndAlias(ctx context.Context, agentID, aliasName string) (string, error) {
	if _, err := p.api.PrepareAgent(ctx, &bedrockagent.PrepareAgentInput{AgentId: aws.String(agentID)}); err != nil {
		return "", errors.Wrap(err, "prepare agent", slog.String("agent_id", agentID))
	}
	if _, err := p.waitFor(ctx, agentID, "prepared", func(s types.AgentStatus) bool {
		return s != "" && s != types.AgentStatusPreparing && s != types.AgentStatusNotPrepared
	}); err != nil {
		return "", err
	}
	out, err := p.api.CreateAgentAlias(ctx, &bedrockagent.CreateAgentAliasInput{ //nolint:exhaustruct // optional fields
		AgentId:        aws.String(agentID),
		AgentAliasName: aws.String(aliasName),
	})
	if err != nil {
		return "", errors.Wrap(err, "create agent alias", slog.String("agent_id", agentID))
	}
	aliasID := aws.ToString(out.AgentAlias.AgentAliasId)
	p.logger.LogAttrs(ctx, slog.LevelInfo, "agent alias created",
		slog.String("agent_id", agentID), slog.String("alias_id", aliasID))
	return aliasID, nil
}

func (p *Provisioner) associate(ctx context.Context, supervisorID string, c Agent) error {
	alias, err := p.api.GetAgentAlias(ctx, &bedrockagent.GetAgentAliasInput{
		AgentId:      aws.String(c.AgentID),
		AgentAliasId: aws.String(c.AliasID),
	})
	if err != nil {
		return errors.Wrap(err, "get collaborator alias", slog.String("name", c.Name))
	}
	var instruction string
	for _, cc := range p.cfg.Collaborators {
		if cc.Name == c.Name {
			instruction = cc.CollaborationInstruction
		}
	}
	if _, err = p.api.AssociateAgentCollaborator(ctx, &bedrockagent.AssociateAgentCollaboratorInput{ //nolint:exhaustruct // optional fields
		AgentId:                  aws.String(supervisorID),
		AgentVersion:             aws.String(draftVersion),
		AgentDescriptor:          &types.AgentDescriptor{AliasArn: alias.AgentAlias.AgentAliasArn},
		CollaboratorName:         aws.String(c.Name),
		CollaborationInstruction: aws.String(instruction),
		RelayConversationHistory: types.RelayConversationHistoryToCollaborator,
	}); err != nil {
		return errors.Wrap(err, "associate collaborator", slog.String("name", c.Name))
	}
	p.logger.LogAttrs(ctx, slog.LevelInfo, "collaborator associated",
		slog.String("supervisor_id", supervisorID), slog.String("name", c.Name))
	return nil
}

// waitFor polls the agent status until done reports true. A FAILED status ends the wait with ErrAgentFailed.
func (p *Provisioner) waitFor(
	ctx context.Context,
	agentID, state string,
	done func(types.AgentStatus) bool,
) (types.AgentStatus, error) {
	deadline := time.Now().Add(p.cfg.Timeout)
	for {
		out, err := p.api.GetAgent(ctx, &bedrockagent.GetAgentInput{AgentId: aws.String(agentID)})
		if err != nil {
			return "", errors.Wrap(err, "get agent", slog.String("agent_id", agentID))
		}
		status := out.Agent.AgentStatus
		if status == types.AgentStatusFailed {
			return status, errors.Wrap(ErrAgentFailed, "wait for agent "+state,
				slog.String("agent_id", agentID), slog.Any("failure_reasons", out.Agent.FailureReasons))
		}
		if done(status) {
			return status, nil
		}
		if !time.Now().Before(deadline) {
			return status, errors.Wrap(ErrTimeout, "wait for agent "+state,
				slog.String("agent_id", agentID), slog.String("last_status", string(status)),
				slog.Duration("timeout", p.cfg.Timeout))
		}
		p.logger.LogAttrs(ctx, slog.LevelDebug, "agent not ready",
			slog.String("agent_id", agentID), slog.String("status", string(status)), slog.String("awaiting", state))
		if err = p.sleep(ctx, p.cfg.PollInterval); err != nil {
			return status, err
		}
	}
}
