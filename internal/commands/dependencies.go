package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/diogo/bookrag/internal/api"
	"github.com/diogo/bookrag/internal/chat"
	"github.com/diogo/bookrag/internal/config"
	"github.com/diogo/bookrag/internal/logging"
	"github.com/diogo/bookrag/internal/render"
	"github.com/diogo/bookrag/internal/session"
	"github.com/diogo/bookrag/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctx context.Context, c *chat.Chat, opts tui.Options) error
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctx context.Context, c *chat.Chat, opts tui.Options) error {
	return tui.RunChat(ctx, c, opts)
}

// Dependencies holds the external dependencies for the commands.
// Client and Sessions are created on first use, so commands that need
// neither work without credentials.
type Dependencies struct {
	Config   config.Config
	Client   api.ChatClient
	Sessions chat.SessionSource
	TUI      TUIInterface
	Log      zerolog.Logger

	Out io.Writer
	Err io.Writer
}

// NewDependencies loads the configuration, applies command-line overrides
// and installs the logger
func NewDependencies() (*Dependencies, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlags(&cfg); err != nil {
		return nil, err
	}

	log := logging.Setup(logging.Options{Level: cfg.LogLevel, Verbose: cfg.Verbose})
	if theme, ok := render.TUIThemeByName(cfg.TUITheme); ok {
		tui.ApplyTheme(theme)
	}

	return &Dependencies{
		Config: cfg,
		TUI:    &DefaultTUI{},
		Log:    log,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}, nil
}

// loadDependencies is replaced in tests
var loadDependencies = NewDependencies

// applyFlags overrides config values with persistent flags
func applyFlags(cfg *config.Config) error {
	if baseURLFlag != "" {
		cfg.BaseURL = baseURLFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	if verboseFlag {
		cfg.Verbose = true
	}
	if ephemeralFlag {
		cfg.SessionMode = config.SessionModeEphemeral
	}
	return cfg.Validate()
}

// client returns the chat client, creating it from the stored credentials
func (d *Dependencies) client() (api.ChatClient, error) {
	if d.Client != nil {
		return d.Client, nil
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(creds,
		api.WithBaseURL(d.Config.BaseURL),
		api.WithTimeout(time.Duration(d.Config.TimeoutSeconds)*time.Second),
		api.WithLogger(logging.Component("api")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	d.Client = client
	return client, nil
}

// sessions returns the session manager for the configured session mode
func (d *Dependencies) sessions() (chat.SessionSource, error) {
	if d.Sessions != nil {
		return d.Sessions, nil
	}

	var store session.Store
	if d.Config.SessionMode == config.SessionModeEphemeral {
		store = session.NewMemoryStore()
	} else {
		path, err := config.GetSessionPath()
		if err != nil {
			return nil, err
		}
		store = session.NewFileStore(path)
	}

	manager, err := session.NewManager(store, session.WithLogger(logging.Component("session")))
	if err != nil {
		return nil, err
	}

	d.Sessions = manager
	return manager, nil
}

// newChat wires a chat orchestrator from the client and session manager
func (d *Dependencies) newChat() (*chat.Chat, error) {
	client, err := d.client()
	if err != nil {
		return nil, err
	}
	sessions, err := d.sessions()
	if err != nil {
		return nil, err
	}
	return chat.New(client, sessions, chat.WithLogger(logging.Component("chat"))), nil
}

// close releases the client if one was created
func (d *Dependencies) close() {
	if d.Client != nil {
		d.Client.Close()
	}
}
