package bootstrap

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"receiving/barcode"
	"receiving/config"
	"receiving/service"
)

// App holds the initialized receiving components.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	Stores  *Stores
	Service *service.ReceivingService
}

// Options tune NewApp
type Options struct {
	// ConfigFile overrides the config search path
	ConfigFile string
	// LogLevel overrides logging.level when non-empty
	LogLevel string
	// LogOutput receives log lines; nil means stderr
	LogOutput io.Writer
}

// NewApp loads the configuration, opens the stores and builds the service.
func NewApp(ctx context.Context, opts Options) (*App, error) {
	cfg, err := InitConfig(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, sugar, err := InitLogger(level, opts.LogOutput)
	if err != nil {
		return nil, err
	}
	sugar.Debugw("Configuration loaded", "config", cfg.Masked())

	stores, err := InitStorage(ctx, cfg, sugar)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	decoder, err := barcode.NewDecoder(cfg.GetRegexTimeout(), cfg.Barcode.PatternCacheSize, sugar)
	if err != nil {
		_ = stores.Close()
		return nil, fmt.Errorf("failed to create barcode decoder: %w", err)
	}
	validator := barcode.NewValidator(decoder, cfg.Barcode.BloodGroupDisambiguator, sugar)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Sugar:   sugar,
		Stores:  stores,
		Service: service.NewReceivingService(stores.Configuration, stores.Consequences, validator, sugar),
	}, nil
}

// Shutdown releases the stores and flushes the logger.
func (a *App) Shutdown() {
	if a.Stores != nil {
		if err := a.Stores.Close(); err != nil {
			a.Sugar.Warnw("Failed to close stores", "error", err)
		}
	}
	_ = a.Logger.Sync()
}
