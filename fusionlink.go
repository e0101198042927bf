package fusionlink

import (
	"context"
	"log/slog"

	"github.com/fusionlink/fusionlink/internal/logging"
	"github.com/fusionlink/fusionlink/pkg/actions"
	"github.com/fusionlink/fusionlink/pkg/adapters/memhost"
	"github.com/fusionlink/fusionlink/pkg/adapters/memory"
	"github.com/fusionlink/fusionlink/pkg/bridge"
	"github.com/fusionlink/fusionlink/pkg/executor"
	"github.com/fusionlink/fusionlink/pkg/ports"
	"github.com/fusionlink/fusionlink/pkg/script"
)

// Version is the released version of fusionlink.
const Version = "0.1.0"

// Bridge is the explicit context object wiring host, executor,
// actions and server together. It is created once at process start
// and torn down at shutdown; there are no package-level singletons.
type Bridge struct {
	Host     *memhost.Host
	Journal  ports.JournalStore
	Executor *executor.Executor
	Registry *actions.Registry
	Server   *bridge.Server

	logger *slog.Logger
}

// Option defines a functional option for configuring the Bridge.
type Option func(*config)

type config struct {
	addr     string
	port     int
	logger   *slog.Logger
	journal  ports.JournalStore
	hostOpts []memhost.Option
}

// WithAddr overrides the default loopback bind (localhost:3600).
func WithAddr(host string, port int) Option {
	return func(c *config) {
		c.addr = host
		c.port = port
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithJournal injects a custom transaction journal, bypassing the
// default in-memory one.
func WithJournal(store ports.JournalStore) Option {
	return func(c *config) {
		c.journal = store
	}
}

// WithHostOptions configures the embedded reference host.
func WithHostOptions(opts ...memhost.Option) Option {
	return func(c *config) {
		c.hostOpts = append(c.hostOpts, opts...)
	}
}

// New wires a complete bridge around the in-memory reference host.
func New(opts ...Option) (*Bridge, error) {
	cfg := &config{
		addr: bridge.DefaultHost,
		port: bridge.DefaultPort,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	if cfg.journal == nil {
		cfg.journal = memory.NewJournal()
	}

	hostOpts := append([]memhost.Option{
		memhost.WithName("fusionlink-host"),
		memhost.WithVersion(Version),
		memhost.WithLogger(cfg.logger),
	}, cfg.hostOpts...)
	host := memhost.New(hostOpts...)

	exec := executor.New(host, script.New(),
		executor.WithJournal(cfg.journal),
		executor.WithLogger(cfg.logger),
	)

	registry := actions.NewRegistry(actions.Deps{
		Host:     host,
		Executor: exec,
		Journal:  cfg.journal,
		Logger:   cfg.logger,
	})

	srv := bridge.NewServer(registry,
		bridge.WithAddr(cfg.addr, cfg.port),
		bridge.WithLogger(cfg.logger),
	)

	return &Bridge{
		Host:     host,
		Journal:  cfg.journal,
		Executor: exec,
		Registry: registry,
		Server:   srv,
		logger:   cfg.logger,
	}, nil
}

// Run starts the HTTP server and drives the host's event pump on the
// calling goroutine until ctx is canceled. The calling goroutine is
// the host's dispatch thread for the lifetime of the bridge.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.Server.Start(); err != nil {
		return err
	}
	defer b.Server.Stop()

	b.Host.Run(ctx)
	return nil
}
