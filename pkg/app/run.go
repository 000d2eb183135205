// Package app provides the shared entry point for the parley binary.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/core"
	"github.com/parleychat/parley/internal/provider"
	"github.com/parleychat/parley/internal/secret"
	"github.com/parleychat/parley/internal/telemetry"
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called; when no file exists
	// anywhere, built-in defaults apply.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// DataDir overrides the default persistent data directory.
	DataDir string

	// LogLevel sets the minimum log level when the config has no log
	// section. Defaults to slog.LevelInfo.
	LogLevel slog.Level
}

// Run loads configuration, starts all modules, and blocks until a
// shutdown signal is received.
func Run(params RunParams) error {
	cfg, cfgPath, err := loadConfig(params.ConfigPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	// Every log line passes through the redactor so stored API keys
	// never reach the output.
	redactor := secret.NewRedactor()
	logger := newLogger(cfg.Log, params.LogLevel, redactor)

	shutdownTraces, err := telemetry.Setup(context.Background(), cfg.Telemetry, logger)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTraces(context.Background()) }()

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("creating data directory %s: %w", dataDir, err)
	}

	appCtx := core.NewAppContext(logger, dataDir)
	appCtx = appCtx.WithModuleConfigs(cfg.Modules)
	if cfgPath != "" {
		appCtx.RegisterService("config.path", cfgPath)
	}
	appCtx.RegisterService("secret.redactor", redactor)

	// The provider modules register their adapters here during Provision.
	appCtx.RegisterService("provider.registry", provider.NewRegistry())

	application := core.NewApp(appCtx)
	ids := config.Resolve(cfg)
	if err := application.LoadModules(ids); err != nil {
		return err
	}

	// Wire the chat core between LoadModules and Start: the storage
	// module has registered its gateway, the HTTP gateway resolves the
	// stores at Start.
	if err := wireChat(appCtx, logger, redactor); err != nil {
		return err
	}

	logger.Info("parley starting",
		"version", params.Version, "data_dir", dataDir, "modules", len(ids))
	return application.Run()
}

// loadConfig resolves and loads the configuration file. A missing file
// is not an error: the built-in defaults stand.
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		resolved, err := ResolveConfigPath()
		if err != nil {
			return &config.Config{Version: "1"}, "", nil
		}
		path = resolved
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newLogger builds the redacting slog logger per the log config.
func newLogger(cfg config.LogConfig, fallback slog.Level, redactor *secret.Redactor) *slog.Logger {
	level := fallback
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var inner slog.Handler
	if cfg.Format == "json" {
		inner = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		inner = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(secret.NewRedactingHandler(inner, redactor))
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/parley/parley.yaml →
// ~/.config/parley/parley.yaml → ./parley.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "parley", "parley.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "parley", "parley.yaml"))
	}

	candidates = append(candidates, "parley.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/parley if set, otherwise ~/.local/share/parley.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "parley")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "parley")
}
