package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/declarr/internal/domain/config"
	"github.com/felixgeelhaar/declarr/internal/domain/guides"
	"github.com/felixgeelhaar/declarr/internal/domain/manager"
	"github.com/felixgeelhaar/declarr/internal/domain/resolver"
	"github.com/felixgeelhaar/declarr/internal/ports"
)

// Stage display names, in run order.
const (
	StageLoadConfig    = "Loading configuration"
	StageLoadManagers  = "Loading plugin managers"
	StageLoadInstances = "Loading instance configurations"
	StageCheckActive   = "Checking configured plugins"
	StageResolve       = "Resolving instance dependencies"
	StageFetchGuides   = "Fetching TRaSH-Guides metadata"
	StageRenderGuides  = "Rendering TRaSH-Guides metadata"
)

// LoadConfigStage reads and parses the configuration file at st.ConfigPath.
// With applyLogLevel set, the configured log_level takes effect for the rest
// of the run; a CLI-level override passes false.
func LoadConfigStage(loader *config.Loader, applyLogLevel bool) Stage {
	return Stage{
		Name: StageLoadConfig,
		Run: func(ctx context.Context, st *State, log ports.Logger) error {
			cfg, err := loader.Load(st.ConfigPath)
			if err != nil {
				return err
			}
			st.Config = cfg
			if applyLogLevel {
				if level, err := ports.ParseLevel(cfg.Global.LogLevel); err == nil {
					log.SetLevel(level)
				}
			}
			log.Debug(ctx, "configuration loaded",
				ports.F("path", cfg.Path),
				ports.F("log_level", cfg.Global.LogLevel),
				ports.F("sections", strings.Join(cfg.SectionNames(), ", ")))
			return nil
		},
	}
}

// LoadManagersStage selects the plugin managers for this run and checks that
// every configuration section belongs to a known plugin.
func LoadManagersStage(registry *manager.Registry, filter []manager.PluginName) Stage {
	return Stage{
		Name: StageLoadManagers,
		Run: func(ctx context.Context, st *State, log ports.Logger) error {
			managers, err := registry.Select(filter)
			if err != nil {
				return err
			}
			for _, section := range st.Config.SectionNames() {
				if _, ok := registry.Get(manager.PluginName(section)); !ok {
					return &manager.UnknownPluginError{Name: manager.PluginName(section)}
				}
			}
			st.Managers = managers
			names := make([]string, len(managers))
			for i, m := range managers {
				names[i] = string(m.Name())
			}
			log.Debug(ctx, "plugin managers loaded", ports.F("plugins", strings.Join(names, ", ")))
			return nil
		},
	}
}

// LoadInstancesStage decodes the instance configurations for every selected
// plugin that has a configuration section.
func LoadInstancesStage() Stage {
	return Stage{
		Name: StageLoadInstances,
		Run: func(ctx context.Context, st *State, log ports.Logger) error {
			for _, m := range st.Managers {
				section := st.Config.Section(string(m.Name()))
				if section == nil {
					log.Debug(ctx, "plugin not configured", ports.F("plugin", string(m.Name())))
					continue
				}
				configs, err := m.DecodeInstances(section)
				if err != nil {
					return err
				}
				if len(configs) == 0 {
					continue
				}
				st.Instances[m.Name()] = configs
			}
			for _, key := range st.Instances.Keys() {
				cfg, _ := st.Instances.Get(key)
				scoped := log.With(
					ports.F("plugin", string(key.Plugin)),
					ports.F("instance", string(key.Instance)))
				scoped.Debug(ctx, "instance configuration loaded", ports.F("host", cfg.Host()))
			}
			return nil
		},
	}
}

// CheckActiveStage fails the run when no selected plugin has any instance
// configured.
func CheckActiveStage() Stage {
	return Stage{
		Name: StageCheckActive,
		Run: func(ctx context.Context, st *State, log ports.Logger) error {
			if st.Instances.Count() == 0 {
				return ErrNoActiveConfiguration
			}
			active := st.ActivePlugins()
			names := make([]string, len(active))
			for i, name := range active {
				names[i] = string(name)
			}
			log.Debug(ctx, "running with plugins", ports.F("plugins", strings.Join(names, ", ")))
			return nil
		},
	}
}

// ResolveStage builds the instance dependency graph and computes the
// execution order.
func ResolveStage() Stage {
	return Stage{
		Name: StageResolve,
		Run: func(ctx context.Context, st *State, log ports.Logger) error {
			graph, err := resolver.Build(st.Managers, st.Instances)
			if err != nil {
				return err
			}
			order, err := graph.Sort()
			if err != nil {
				return err
			}
			st.Graph = graph
			st.Order = order
			log.Debug(ctx, "execution order resolved")
			for i, key := range order {
				log.Debug(ctx, fmt.Sprintf("  %d. %s", i+1, key))
			}
			return nil
		},
	}
}

func guidesSkip(st *State) (string, bool) {
	if st.GuidesRequired() {
		return "", false
	}
	return "not required", true
}

// FetchGuidesStage creates the guides workspace and downloads the metadata
// into it. Skipped when no configured instance references guides metadata.
func FetchGuidesStage(fetcher *guides.Fetcher) Stage {
	return Stage{
		Name: StageFetchGuides,
		Skip: guidesSkip,
		Run: func(ctx context.Context, st *State, log ports.Logger) error {
			ws, err := guides.NewWorkspace()
			if err != nil {
				return err
			}
			st.SetWorkspace(ws)
			log.Debug(ctx, "fetching guides metadata", ports.F("dir", ws.Dir()))
			if err := fetcher.Fetch(ctx, ws.Dir(), st.Config.Global.Guides); err != nil {
				return err
			}
			log.Debug(ctx, "finished fetching guides metadata")
			return nil
		},
	}
}

// RenderGuidesStage renders the guides metadata into every instance
// configuration that references it. Skipped together with the fetch stage.
func RenderGuidesStage() Stage {
	return Stage{
		Name: StageRenderGuides,
		Skip: guidesSkip,
		Run: func(ctx context.Context, st *State, log ports.Logger) error {
			root := filepath.Join(st.WorkspaceDir(), st.Config.Global.Guides.DirPrefix)
			for _, key := range st.Instances.Keys() {
				m, ok := st.Manager(key.Plugin)
				if !ok {
					continue
				}
				cfg, ok := st.Instances.Get(key)
				if !ok || !m.UsesGuides(cfg) {
					continue
				}
				scoped := log.With(
					ports.F("plugin", string(key.Plugin)),
					ports.F("instance", string(key.Instance)))
				scoped.Debug(ctx, "rendering guides metadata")
				if err := m.RenderGuides(root, cfg); err != nil {
					return &guides.RenderError{Key: key, Err: err}
				}
			}
			return nil
		},
	}
}
