package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/modkit/internal/ctxlog"
	"github.com/vk/modkit/internal/module"
	"github.com/vk/modkit/internal/registry"
)

// App encapsulates the loader's dependencies and configuration.
type App struct {
	config   *Config
	logger   *slog.Logger
	resolver *module.Resolver
	factory  *module.Factory
	registry *registry.Registry
}

// NewApp builds an App whose logs go to logW. Factory options are passed
// through, which lets callers add dispatch rows or change capabilities. An
// unknown log level or format is an error.
func NewApp(logW io.Writer, cfg *Config, opts ...module.Option) (*App, error) {
	s := cfg.Settings
	logger, err := newLogger(s.LogLevel, s.LogFormat, logW)
	if err != nil {
		return nil, fmt.Errorf("configure logger: %w", err)
	}
	logger.Debug("Logger configured successfully.")

	resolver := module.NewResolver(s)
	factory := module.NewFactory(resolver, opts...)

	var regOpts []registry.Option
	if cfg.Strict {
		regOpts = append(regOpts, registry.Strict())
	}

	logger.Debug("Module factory ready.", "supported", factory.Supported(), "debug", s.DebugMode(), "data_dir", s.AppDataDir(), "data_dir_overridden", s.DataDirOverridden())
	return &App{
		config:   cfg,
		logger:   logger,
		resolver: resolver,
		factory:  factory,
		registry: registry.New(factory, regOpts...),
	}, nil
}

// Context returns ctx carrying the app's logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Load discovers modules and builds their instances.
func (a *App) Load(ctx context.Context) error {
	ctx = a.Context(ctx)
	a.logger.Debug("Loading modules...", "modules_path", a.config.ModulesPath)

	if err := a.registry.LoadDirectory(ctx, a.config.ModulesPath); err != nil {
		return fmt.Errorf("failed to load modules: %w", err)
	}
	if a.config.InstancesPath != "" {
		if err := a.registry.LoadInstances(ctx, a.config.InstancesPath); err != nil {
			if a.config.Strict {
				return fmt.Errorf("failed to load instances: %w", err)
			}
			a.logger.Warn("Some instances could not be loaded.", "path", a.config.InstancesPath, "error", err)
		}
	}
	return nil
}

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Resolver returns the configuration resolver.
func (a *App) Resolver() *module.Resolver {
	return a.resolver
}
