// Package app provides the main application logic for declarr.
package app

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/declarr/internal/adapters/logging"
	"github.com/felixgeelhaar/declarr/internal/domain/config"
	"github.com/felixgeelhaar/declarr/internal/domain/guides"
	"github.com/felixgeelhaar/declarr/internal/domain/manager"
	"github.com/felixgeelhaar/declarr/internal/domain/pipeline"
	"github.com/felixgeelhaar/declarr/internal/domain/resolver"
	"github.com/felixgeelhaar/declarr/internal/plugin/prowlarr"
	"github.com/felixgeelhaar/declarr/internal/plugin/radarr"
	"github.com/felixgeelhaar/declarr/internal/plugin/sonarr"
	"github.com/felixgeelhaar/declarr/internal/ports"
)

// Declarr is the main application orchestrator.
type Declarr struct {
	registry      *manager.Registry
	loader        *config.Loader
	logger        ports.Logger
	fixedLogLevel bool
}

// Option configures the application.
type Option func(*Declarr)

// WithLogger sets the logger used by the pipeline (default: console logger).
func WithLogger(logger ports.Logger) Option {
	return func(d *Declarr) {
		d.logger = logger
	}
}

// WithFixedLogLevel keeps the logger at its configured level, ignoring any
// log_level set in the configuration file. Used when the level was forced on
// the command line.
func WithFixedLogLevel() Option {
	return func(d *Declarr) {
		d.fixedLogLevel = true
	}
}

// New creates a new Declarr application with the built-in plugin managers
// registered.
func New(opts ...Option) *Declarr {
	registry := manager.NewRegistry()
	for _, m := range []manager.Manager{
		sonarr.New(),
		radarr.New(),
		prowlarr.New(),
	} {
		if err := registry.Register(m); err != nil {
			// Built-in managers have unique, non-empty names.
			panic(fmt.Sprintf("registering built-in plugin: %v", err))
		}
	}

	d := &Declarr{
		registry: registry,
		loader:   config.NewLoader(),
		logger:   logging.NewConsoleLogger(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Registry returns the plugin manager registry.
func (d *Declarr) Registry() *manager.Registry {
	return d.registry
}

// ValidateResult carries the outcome of one validation run.
type ValidateResult struct {
	// RunID uniquely identifies the run.
	RunID string
	// ConfigPath is the configuration file that was validated.
	ConfigPath string
	// Order is the resolved instance execution order. Empty when the run
	// failed before dependency resolution.
	Order resolver.ExecutionOrder
	// Stages holds the outcome of every stage that ran, in order.
	Stages []pipeline.StageResult
}

// Validate runs the full validation pipeline against the configuration file
// at configPath. Plugins limits validation to the named plugins; an empty
// slice validates every registered plugin.
//
// The returned result is non-nil even on failure and reports the stages that
// ran before the run stopped.
func (d *Declarr) Validate(ctx context.Context, configPath string, plugins []manager.PluginName) (*ValidateResult, error) {
	st := pipeline.NewState(configPath)
	defer func() {
		if err := st.ReleaseWorkspace(); err != nil {
			d.logger.Warn(ctx, "failed to remove guides workspace", ports.F("error", err))
		}
	}()

	ctrl := pipeline.NewController(d.logger)
	err := ctrl.Run(ctx, st,
		pipeline.LoadConfigStage(d.loader, !d.fixedLogLevel),
		pipeline.LoadManagersStage(d.registry, plugins),
		pipeline.LoadInstancesStage(),
		pipeline.CheckActiveStage(),
		pipeline.ResolveStage(),
		pipeline.FetchGuidesStage(guides.NewFetcher(d.logger)),
		pipeline.RenderGuidesStage(),
	)

	result := &ValidateResult{
		RunID:      st.RunID,
		ConfigPath: configPath,
		Order:      st.Order,
		Stages:     ctrl.Results(),
	}
	if err != nil {
		return result, err
	}

	d.logger.Info(ctx, "Configuration test successful.")
	return result, nil
}
