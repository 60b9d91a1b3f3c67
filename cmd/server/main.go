package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/revrebgame/revreb-server-go/internal/config"
	"github.com/revrebgame/revreb-server-go/internal/game"
	"github.com/revrebgame/revreb-server-go/internal/game/card"
	"github.com/revrebgame/revreb-server-go/internal/game/rules"
	"github.com/revrebgame/revreb-server-go/internal/repository"
	"github.com/revrebgame/revreb-server-go/internal/server"
)

var (
	configPath = flag.String("config", "", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting game server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	registry, err := loadRegistry(cfg.Cards)
	if err != nil {
		logger.Fatal("failed to load card data", zap.Error(err))
	}
	logger.Info("card registry loaded", zap.Int("cards", registry.Len()))

	store, cleanup, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer cleanup()

	opts := game.Options{
		Scoring: rules.ScoringPolicy{
			WinningPoints:     cfg.Game.WinningPoints,
			MaxRounds:         cfg.Game.MaxRounds,
			RoundPoints:       cfg.Game.RoundPoints,
			ComboBonus:        cfg.Game.ComboBonus,
			ReplenishHandSize: cfg.Game.ReplenishHandSize,
		},
		RedrawLimit: cfg.Game.RedrawLimit,
	}
	if cfg.Replay.Enabled {
		opts.Recorder = game.NewRecorder(cfg.Replay.Dir, logger)
		logger.Info("replay recording enabled", zap.String("dir", cfg.Replay.Dir))
	}

	engine := game.NewEngine(registry, store, opts, logger)
	srv := server.New(cfg, engine, logger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("listening", zap.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Error("http server error", zap.Error(serveErr))
		}
	}()

	if cfg.Server.AllowInject {
		logger.Warn("state injection endpoint enabled; do not use in production")
	}

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

// loadRegistry reads card data from the configured path, falling back to the
// embedded set.
func loadRegistry(cfg config.CardsConfig) (*card.Registry, error) {
	if cfg.Path == "" {
		return card.LoadDefaultSet()
	}
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open card data %q: %w", cfg.Path, err)
	}
	defer f.Close()
	return card.LoadYAML(f)
}

// buildStore selects the game-document store from configuration.
func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := repository.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresStore(pool), pool.Close, nil
	case "file":
		store, err := repository.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "memory":
		return repository.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// initLogger initializes the zap logger based on configuration.
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
