package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/chatvault/chatvault/internal/adapter/handler"
	"github.com/chatvault/chatvault/internal/adapter/host"
	"github.com/chatvault/chatvault/internal/app"
	"github.com/chatvault/chatvault/internal/domain/entity"
	"github.com/chatvault/chatvault/internal/infrastructure/config"
	"github.com/chatvault/chatvault/internal/infrastructure/observability"
	"github.com/chatvault/chatvault/internal/infrastructure/server"
	"github.com/chatvault/chatvault/internal/infrastructure/settings"
	"github.com/chatvault/chatvault/internal/infrastructure/uploader"
	"github.com/chatvault/chatvault/internal/usecase/history"
	"github.com/chatvault/chatvault/internal/usecase/lists"
	"github.com/chatvault/chatvault/internal/usecase/retention"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)

	args := os.Args[1:]
	command := "run"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "run":
		runEngine(cfg, logger)
	case "lists":
		runLists(cfg, logger, args)
	case "export":
		runExport(cfg, logger, args)
	case "import":
		runImport(cfg, logger, args)
	case "stats":
		runStats(cfg, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\nusage: chatvault [run|lists|export|import|stats]\n", command)
		os.Exit(1)
	}
}

// runEngine consumes the host event stream on stdin, writes reconciled
// history pages to stdout, and serves /metrics and /health locally.
func runEngine(cfg *config.Config, logger *slog.Logger) {
	settingsStore, err := settings.NewStore(cfg.Settings.Path, logger)
	if err != nil {
		logger.Error("failed to open settings", "error", err, "path", cfg.Settings.Path)
		os.Exit(1)
	}

	store, closer, err := app.NewMessageStore(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}

	telemetry, err := observability.NewTelemetry(observability.ServiceName, version)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer telemetry.Shutdown(context.Background())

	settingsStore.Watch(func(_ *entity.PolicyState) {
		telemetry.Metrics.SettingsReloadsTotal.Add(context.Background(), 1)
	})

	useCaseLogger := &slogAdapter{logger: logger}
	directory := host.NewStateDirectory()
	sink := app.NewDecisionSink(logger, telemetry.Metrics)
	evaluator := retention.NewEvaluateUseCase(directory, sink)
	reconciler := history.NewReconcileUseCase(store, useCaseLogger)
	engine := app.NewEngine(settingsStore, store, directory, evaluator, reconciler, telemetry.Metrics, useCaseLogger)
	runner := host.NewRunner(engine, directory, useCaseLogger)

	handlers := &server.Handlers{
		Health:  handler.NewHealthHandler(store),
		Metrics: handler.NewMetricsHandler(),
	}
	srv := server.New(cfg.Server, server.NewRouter(handlers), logger)

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	logger.Info("starting chatvault",
		"storage_type", cfg.Storage.Type,
		"settings_path", cfg.Settings.Path,
		"server_port", cfg.Server.Port,
	)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run(ctx)
	}()

	if err := runner.Run(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		logger.Error("event stream error", "error", err)
	}

	cancel()
	if err := <-serverErr; err != nil {
		logger.Error("server error", "error", err)
	}

	logger.Info("chatvault stopped")
}

func runLists(cfg *config.Config, logger *slog.Logger, args []string) {
	if len(args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: chatvault lists [add|remove|move] [whitelistedIds|blacklistedIds] <id>")
		os.Exit(1)
	}
	verb, name, id := args[0], lists.ListName(args[1]), args[2]

	settingsStore, err := settings.NewStore(cfg.Settings.Path, logger)
	if err != nil {
		logger.Error("failed to open settings", "error", err)
		os.Exit(1)
	}
	uc := lists.NewManageListsUseCase(settingsStore, &slogAdapter{logger: logger})

	switch verb {
	case "add":
		err = uc.AddTo(name, id)
	case "remove":
		err = uc.RemoveFrom(name, id)
	case "move":
		err = uc.AddToAndRemoveFromOpposite(name, id)
	default:
		fmt.Fprintf(os.Stderr, "unknown lists verb: %s\n", verb)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("list update failed", "error", err)
		os.Exit(1)
	}
}

func runExport(cfg *config.Config, logger *slog.Logger, args []string) {
	settingsStore, err := settings.NewStore(cfg.Settings.Path, logger)
	if err != nil {
		logger.Error("failed to open settings", "error", err)
		os.Exit(1)
	}
	policy, err := settingsStore.Load()
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		os.Exit(1)
	}

	out := os.Stdout
	if len(args) > 0 {
		f, err := os.Create(args[0])
		if err != nil {
			logger.Error("failed to create export file", "error", err, "path", args[0])
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := settings.Export(out, policy); err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	if cfg.IsUploaderEnabled() && len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			logger.Error("failed to re-read export", "error", err)
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		up, err := uploader.New(ctx, cfg.Uploader, logger)
		if err != nil {
			logger.Error("failed to initialize uploader", "error", err)
			os.Exit(1)
		}
		name := fmt.Sprintf("chatvault-export-%s.yaml", time.Now().UTC().Format("20060102T150405Z"))
		if err := up.UploadSnapshot(ctx, name, data); err != nil {
			logger.Error("snapshot upload failed", "error", err)
			os.Exit(1)
		}
	}
}

func runImport(cfg *config.Config, logger *slog.Logger, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: chatvault import <file>")
		os.Exit(1)
	}

	f, err := os.Open(args[0])
	if err != nil {
		logger.Error("failed to open import file", "error", err, "path", args[0])
		os.Exit(1)
	}
	defer f.Close()

	policy, err := settings.Import(f)
	if err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}

	settingsStore, err := settings.NewStore(cfg.Settings.Path, logger)
	if err != nil {
		logger.Error("failed to open settings", "error", err)
		os.Exit(1)
	}
	if err := settingsStore.Save(policy); err != nil {
		logger.Error("failed to save imported settings", "error", err)
		os.Exit(1)
	}

	logger.Info("settings imported",
		"whitelisted", policy.Whitelist.Len(),
		"blacklisted", policy.Blacklist.Len(),
	)
}

func runStats(cfg *config.Config, logger *slog.Logger) {
	store, closer, err := app.NewMessageStore(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := store.Stats(ctx)
	if err != nil {
		logger.Error("failed to read stats", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stats); err != nil {
		logger.Error("failed to encode stats", "error", err)
		os.Exit(1)
	}
}

// setupLogger creates and configures the logger.
func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	// Logs go to stderr; stdout belongs to the host event stream.
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(h)
}

// slogAdapter adapts slog.Logger to the use case Logger interfaces.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Debug(msg string, keysAndValues ...any) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a *slogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Info(msg, keysAndValues...)
}

func (a *slogAdapter) Warn(msg string, keysAndValues ...any) {
	a.logger.Warn(msg, keysAndValues...)
}

func (a *slogAdapter) Error(msg string, keysAndValues ...any) {
	a.logger.Error(msg, keysAndValues...)
}
