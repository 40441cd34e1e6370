// Axon coordination hub for autonomous agents.
// Stdio stream for local clients, HTTP for remote agents and the dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/axonhq/axon/internal/config"
	"github.com/axonhq/axon/internal/dashboard"
	"github.com/axonhq/axon/internal/engine"
	"github.com/axonhq/axon/internal/logger"
	"github.com/axonhq/axon/internal/server"
	"github.com/axonhq/axon/internal/store"
	"github.com/axonhq/axon/internal/store/memory"
	"github.com/axonhq/axon/internal/store/sqlite"
)

// Version and Commit are set by -ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
)

const (
	exitOK      = 0
	exitConfig  = 1
	exitStorage = 2
	exitStartup = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

type cliFlags struct {
	transport   string
	databaseURL string
	listen      string
	logLevel    string
	logFormat   string
	configPath  string
	showVersion bool
}

func newFlagSet() (*flag.FlagSet, *cliFlags) {
	fs := flag.NewFlagSet("axon", flag.ContinueOnError)
	cli := &cliFlags{}
	fs.StringVar(&cli.transport, "transport", "", "transport: stream (stdio) or http")
	fs.StringVar(&cli.databaseURL, "database-url", "", "SQLite database path, file: URI, or :memory:")
	fs.StringVar(&cli.listen, "listen", "", "HTTP listen address (host:port)")
	fs.StringVar(&cli.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&cli.logFormat, "log-format", "", "log format: console or json")
	fs.StringVar(&cli.configPath, "config", "", "path to YAML config file")
	fs.BoolVar(&cli.showVersion, "version", false, "print version and exit")
	return fs, cli
}

func run(args []string) int {
	fs, cli := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}
	if cli.showVersion {
		fmt.Printf("axon %s (%s)\n", Version, Commit)
		return exitOK
	}

	cfg, configPath, err := buildConfig(fs, cli)
	if err != nil {
		fmt.Fprintln(os.Stderr, "axon:", err)
		return exitConfig
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "axon:", err)
		return exitConfig
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "axon:", err)
		return exitConfig
	}
	defer log.Sync()

	st, err := openStore(cfg, log)
	if err != nil {
		log.WithError(err).Error("open store")
		return exitStorage
	}
	defer st.Close()

	eng := engine.New(st, log, engine.WithOpTimeout(cfg.OpTimeout()))
	reg := server.NewRegistry()
	mcpSrv := server.New(eng, reg, log, Version)

	// Keep running when daemonized; SIGINT/SIGTERM shut down.
	signal.Ignore(syscall.SIGHUP)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if configPath != "" {
		watcher := config.NewWatcher(configPath, log)
		g.Go(func() error {
			watcher.Run(ctx)
			return nil
		})
	}

	log.Info("starting",
		zap.String("version", Version),
		zap.String("transport", cfg.Transport),
		zap.String("database", cfg.DatabaseURL))

	switch cfg.Transport {
	case config.TransportHTTP:
		dash := dashboard.NewHandler(eng, reg)
		host := server.NewHost(cfg, mcpSrv, reg, log, dash)
		g.Go(func() error {
			defer stop()
			return host.Run(ctx)
		})
	default:
		g.Go(func() error {
			defer stop()
			return server.RunStdio(ctx, mcpSrv, log)
		})
	}

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server failed")
		return exitStartup
	}
	log.Info("server stopped")
	return exitOK
}

// buildConfig applies the precedence chain: built-in defaults, then the YAML
// file, then explicitly set flags, then environment variables. Returns the
// resolved config and the config file path (for the hot-reload watcher).
func buildConfig(fs *flag.FlagSet, cli *cliFlags) (*config.Config, string, error) {
	path := cli.configPath
	if path == "" {
		path = os.Getenv("AXON_CONFIG")
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
	}

	// Only flags the user actually passed override the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "transport":
			cfg.Transport = cli.transport
		case "database-url":
			cfg.DatabaseURL = cli.databaseURL
		case "listen":
			cfg.Listen = cli.listen
		case "log-level":
			cfg.Log.Level = cli.logLevel
		case "log-format":
			cfg.Log.Format = cli.logFormat
		}
	})

	cfg.ApplyEnv()
	return cfg, path, nil
}

func openStore(cfg *config.Config, log *logger.Logger) (store.Store, error) {
	if cfg.InMemory() {
		log.Info("using in-memory store (non-durable)")
		return memory.New(), nil
	}
	path := cfg.DatabasePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return sqlite.New(path, cfg.ReaderConns)
}
