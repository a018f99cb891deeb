// Package prowlarr implements the plugin manager for Prowlarr, the indexer
// management application. Prowlarr instances push indexers to Sonarr and
// Radarr instances, so their application entries are cross-plugin
// dependencies.
package prowlarr

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/declarr/internal/domain/config"
	"github.com/felixgeelhaar/declarr/internal/domain/manager"
	"github.com/felixgeelhaar/declarr/internal/plugin/arr"
)

const pluginName = manager.PluginName("prowlarr")

// Supported Prowlarr version range. The upper bound is a major version.
const (
	minVersion = "v1.0.0"
	maxVersion = "v1"
)

// appTypes are the application types Prowlarr can push indexers to.
var appTypes = map[string]bool{
	"sonarr": true,
	"radarr": true,
}

// syncLevels are the accepted application sync levels.
var syncLevels = map[string]bool{
	"":         true,
	"addOnly":  true,
	"fullSync": true,
}

// Section is the prowlarr block of the configuration file.
type Section struct {
	Instances map[string]*Instance `yaml:"instances"`
}

// Instance is one Prowlarr deployment.
type Instance struct {
	arr.Connection `yaml:",inline"`

	// Applications are the Sonarr and Radarr instances this Prowlarr pushes
	// indexers to.
	Applications map[string]*Application `yaml:"apps,omitempty"`
}

// Application connects a Prowlarr instance to one target application
// instance.
type Application struct {
	// Type is the target plugin, "sonarr" or "radarr".
	Type string `yaml:"type"`
	// Instance names the target instance within that plugin.
	Instance string `yaml:"instance"`
	// SyncLevel controls how indexers are synchronized: "addOnly" or
	// "fullSync". Empty uses the Prowlarr default.
	SyncLevel string `yaml:"sync_level,omitempty"`
}

// Manager adapts Prowlarr to the validation pipeline.
type Manager struct{}

// New creates the Prowlarr plugin manager.
func New() *Manager {
	return &Manager{}
}

// Name returns the configuration section key.
func (m *Manager) Name() manager.PluginName {
	return pluginName
}

// Description returns a one-line description of the plugin.
func (m *Manager) Description() string {
	return "Manages Prowlarr indexer management instances"
}

// SupportedVersions returns the supported Prowlarr version range.
func (m *Manager) SupportedVersions() (string, string) {
	return minVersion, maxVersion
}

// DecodeInstances decodes and validates the prowlarr section.
func (m *Manager) DecodeInstances(section *yaml.Node) (map[manager.InstanceName]manager.InstanceConfig, error) {
	out := make(map[manager.InstanceName]manager.InstanceConfig)
	if section == nil {
		return out, nil
	}

	var sec Section
	if err := config.DecodeStrict(section, &sec); err != nil {
		return nil, fmt.Errorf("decoding prowlarr section: %w", err)
	}

	names := make([]string, 0, len(sec.Instances))
	for name := range sec.Instances {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, raw := range names {
		name, err := manager.NewInstanceName(raw)
		if err != nil {
			return nil, &manager.InstanceConfigError{
				Key: manager.InstanceKey{Plugin: pluginName, Instance: manager.InstanceName(raw)},
				Err: err,
			}
		}
		key := manager.InstanceKey{Plugin: pluginName, Instance: name}

		inst := sec.Instances[raw]
		if inst == nil {
			return nil, &manager.InstanceConfigError{Key: key, Err: errors.New("instance configuration is empty")}
		}
		if err := validateInstance(key, inst); err != nil {
			return nil, err
		}
		out[name] = inst
	}
	return out, nil
}

func validateInstance(key manager.InstanceKey, inst *Instance) error {
	if err := arr.CheckConnection(key, inst.HostURL, inst.APIKey); err != nil {
		return err
	}
	if err := arr.CheckVersion(key, inst.Version, minVersion, maxVersion); err != nil {
		return err
	}

	for _, name := range sortedAppNames(inst.Applications) {
		app := inst.Applications[name]
		if app == nil {
			return &manager.InstanceConfigError{
				Key: key,
				Err: fmt.Errorf("app %q has no settings", name),
			}
		}
		if !appTypes[app.Type] {
			return &manager.InstanceConfigError{
				Key: key,
				Err: fmt.Errorf("app %q has unsupported type %q, expected sonarr or radarr", name, app.Type),
			}
		}
		if app.Instance == "" {
			return &manager.InstanceConfigError{
				Key: key,
				Err: fmt.Errorf("app %q must name a target instance", name),
			}
		}
		if !syncLevels[app.SyncLevel] {
			return &manager.InstanceConfigError{
				Key: key,
				Err: fmt.Errorf("app %q has unknown sync_level %q, expected addOnly or fullSync", name, app.SyncLevel),
			}
		}
	}
	return nil
}

func sortedAppNames(apps map[string]*Application) []string {
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dependencies returns the target application instances this Prowlarr
// pushes indexers to, as cross-plugin references.
func (m *Manager) Dependencies(cfg manager.InstanceConfig) []manager.Ref {
	inst, ok := cfg.(*Instance)
	if !ok {
		return nil
	}

	refs := make([]manager.Ref, 0, len(inst.Applications))
	for _, name := range sortedAppNames(inst.Applications) {
		app := inst.Applications[name]
		if app == nil || app.Instance == "" {
			continue
		}
		refs = append(refs, manager.Ref{
			Plugin:   manager.PluginName(app.Type),
			Instance: manager.InstanceName(app.Instance),
		})
	}
	return refs
}

// UsesGuides always reports false; Prowlarr has no quality profiles.
func (m *Manager) UsesGuides(manager.InstanceConfig) bool {
	return false
}

// RenderGuides is a no-op for Prowlarr.
func (m *Manager) RenderGuides(string, manager.InstanceConfig) error {
	return nil
}

var _ manager.Manager = (*Manager)(nil)
