package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/donseba/go-htmx"
	"github.com/joho/godotenv"
	"github.com/myrjola/jigsawroom/internal/agent"
	"github.com/myrjola/jigsawroom/internal/broker"
	"github.com/myrjola/jigsawroom/internal/challenge"
	"github.com/myrjola/jigsawroom/internal/envstruct"
	"github.com/myrjola/jigsawroom/internal/errors"
	"github.com/myrjola/jigsawroom/internal/logging"
	"github.com/myrjola/jigsawroom/internal/persona"
	"github.com/myrjola/jigsawroom/internal/pprofserver"
	"github.com/myrjola/jigsawroom/internal/repositories"
	"github.com/myrjola/jigsawroom/internal/sqlite"
	"github.com/sashabaranov/go-openai"
	"github.com/yuin/goldmark"
)

const (
	backendBedrock = "bedrock"
	backendOpenAI  = "openai"
)

type application struct {
	logger         *slog.Logger
	cfg            appConfig
	sessionManager *scs.SessionManager
	htmx           *htmx.HTMX
	markdown       goldmark.Markdown
	roster         agent.Roster
	invoker        agent.Invoker
	replies        *broker.ChannelBroker[string, string]
	answerKey      *challenge.Cache[challenge.AnswerKey]
	extras         *challenge.Cache[challenge.Extras]
	personas       persona.Catalog
	chats          *repositories.ChatRepository
	attempts       *repositories.AttemptRepository

	// stopping is cancelled when the server shuts down. Reply streams started by POST /messages are tracked with
	// replyStreams and stop with it.
	stopping     context.Context //nolint:containedctx // outlives the requests that start reply streams
	replyStreams sync.WaitGroup
}

type appConfig struct {
	// Addr is the address the HTTP server listens on.
	Addr string `env:"JIGSAW_ADDR" envDefault:"localhost:4000"`
	// SqliteURL is the path to the database file, or :memory: for an in-memory database.
	SqliteURL string `env:"JIGSAW_SQLITE_URL" envDefault:"./jigsaw.sqlite"`
	// PprofPort serves pprof on the loopback interface when set, e.g. ":6060".
	PprofPort      string `env:"JIGSAW_PPROF_PORT" envDefault:""`
	AnswerKeyPath  string `env:"JIGSAW_ANSWER_KEY" envDefault:"./respostas.txt"`
	ChallengesPath string `env:"JIGSAW_CHALLENGES" envDefault:"./challenges.json"`
	PersonasDir    string `env:"JIGSAW_PERSONAS_DIR" envDefault:"./agents_description"`
	// AgentBackend is either bedrock or openai.
	AgentBackend      string `env:"JIGSAW_AGENT_BACKEND" envDefault:"bedrock"`
	Region            string `env:"AWS_REGION,REGION" envDefault:"us-east-1"`
	SupervisorAgentID string `env:"SUPERVISOR_AGENT_ID" envDefault:""`
	SupervisorAliasID string `env:"SUPERVISOR_ALIAS_ID" envDefault:""`
	GustavoAgentID    string `env:"GUSTAVO_AGENT_ID" envDefault:""`
	GustavoAliasID    string `env:"GUSTAVO_ALIAS_ID" envDefault:""`
	MayaAgentID       string `env:"MAYA_AGENT_ID" envDefault:""`
	MayaAliasID       string `env:"MAYA_ALIAS_ID" envDefault:""`
	CarolineAgentID   string `env:"CAROLINE_AGENT_ID,DRA_CAROLINE_AGENT_ID" envDefault:""`
	CarolineAliasID   string `env:"CAROLINE_ALIAS_ID,DRA_CAROLINE_ALIAS_ID" envDefault:""`
	OpenAIAPIKey      string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIBaseURL     string `env:"OPENAI_BASE_URL" envDefault:""`
	OpenAIModel       string `env:"OPENAI_MODEL" envDefault:""`
}

// agentIDs maps the roster target IDs to the configured Bedrock ids.
func (c appConfig) agentIDs() map[string]agent.IDs {
	return map[string]agent.IDs{
		agent.SupervisorID: {AgentID: c.SupervisorAgentID, AliasID: c.SupervisorAliasID},
		"gustavo":          {AgentID: c.GustavoAgentID, AliasID: c.GustavoAliasID},
		"maya":             {AgentID: c.MayaAgentID, AliasID: c.MayaAliasID},
		"dra_caroline":     {AgentID: c.CarolineAgentID, AliasID: c.CarolineAliasID},
	}
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg appConfig
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.PprofPort != "" {
		pprofserver.Launch(ctx, cfg.PprofPort, logger)
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close database", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	roster, invoker, err := newAgents(ctx, cfg, logger)
	if err != nil {
		return errors.Wrap(err, "configure agents", slog.String("backend", cfg.AgentBackend))
	}

	store := sqlite3store.NewWithCleanupInterval(db.SessionDB(), 24*time.Hour) //nolint:mnd // once a day
	defer store.StopCleanup()
	sessionManager := scs.New()
	sessionManager.Store = store
	sessionManager.Lifetime = 12 * time.Hour //nolint:mnd // half a day

	replies := broker.NewChannelBroker[string, string]()
	go replies.Start(ctx)

	app := &application{
		logger:         logger,
		cfg:            cfg,
		sessionManager: sessionManager,
		htmx:           htmx.New(),
		markdown:       newMarkdown(),
		roster:         roster,
		invoker:        invoker,
		replies:        replies,
		answerKey:      challenge.NewAnswerKeyCache(logger, cfg.AnswerKeyPath),
		extras:         challenge.NewExtrasCache(logger, cfg.ChallengesPath),
		personas:       persona.LoadCatalog(cfg.PersonasDir),
		chats:          repositories.NewChatRepository(db, logger),
		attempts:       repositories.NewAttemptRepository(db, logger),
		stopping:       ctx,
		replyStreams:   sync.WaitGroup{},
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}

// newAgents builds the roster and the invoker of the configured backend.
func newAgents(ctx context.Context, cfg appConfig, logger *slog.Logger) (agent.Roster, agent.Invoker, error) {
	switch cfg.AgentBackend {
	case backendBedrock:
		roster := agent.NewRoster(cfg.agentIDs())
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
		if err != nil {
			return agent.Roster{}, nil, errors.Wrap(err, "load AWS config")
		}
		return roster, agent.NewBedrockInvoker(awsCfg, logger), nil
	case backendOpenAI:
		roster := agent.NewRoster(agent.OpenAIIDs())
		clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
		if cfg.OpenAIBaseURL != "" {
			clientCfg.BaseURL = cfg.OpenAIBaseURL
		}
		client := openai.NewClientWithConfig(clientCfg)
		return roster, agent.NewOpenAIInvoker(client, roster, cfg.OpenAIModel, logger), nil
	default:
		return agent.Roster{}, nil, errors.New("unknown agent backend", slog.String("backend", cfg.AgentBackend))
	}
}

func main() {
	ctx := context.Background()
	logger := logging.NewLogger(os.Stdout, true)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelWarn, "could not load .env", errors.SlogError(errors.Wrap(err, "load .env")))
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
