// Package radarr implements the plugin manager for Radarr, the movie
// collection management application.
package radarr

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/declarr/internal/domain/config"
	"github.com/felixgeelhaar/declarr/internal/domain/manager"
	"github.com/felixgeelhaar/declarr/internal/plugin/arr"
)

const pluginName = manager.PluginName("radarr")

// Supported Radarr version range. The upper bound is a major version.
const (
	minVersion = "v4.0.0"
	maxVersion = "v5"
)

// Section is the radarr block of the configuration file.
type Section struct {
	Instances map[string]*Instance `yaml:"instances"`
}

// Instance is one Radarr deployment.
type Instance struct {
	arr.Connection `yaml:",inline"`

	// ImportLists pull movies from other Radarr instances.
	ImportLists map[string]*arr.ImportList `yaml:"import_lists,omitempty"`
	// QualityProfiles declare quality profiles, inline or by trash id.
	QualityProfiles map[string]*arr.QualityProfile `yaml:"quality_profiles,omitempty"`
}

// Manager adapts Radarr to the validation pipeline.
type Manager struct{}

// New creates the Radarr plugin manager.
func New() *Manager {
	return &Manager{}
}

// Name returns the configuration section key.
func (m *Manager) Name() manager.PluginName {
	return pluginName
}

// Description returns a one-line description of the plugin.
func (m *Manager) Description() string {
	return "Manages Radarr movie collection instances"
}

// SupportedVersions returns the supported Radarr version range.
func (m *Manager) SupportedVersions() (string, string) {
	return minVersion, maxVersion
}

// DecodeInstances decodes and validates the radarr section.
func (m *Manager) DecodeInstances(section *yaml.Node) (map[manager.InstanceName]manager.InstanceConfig, error) {
	out := make(map[manager.InstanceName]manager.InstanceConfig)
	if section == nil {
		return out, nil
	}

	var sec Section
	if err := config.DecodeStrict(section, &sec); err != nil {
		return nil, fmt.Errorf("decoding radarr section: %w", err)
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
	if err := arr.ValidateImportLists(key, string(pluginName), inst.ImportLists); err != nil {
		return err
	}
	return arr.ValidateQualityProfiles(key, inst.QualityProfiles)
}

// Dependencies returns the instances this configuration imports movies from.
func (m *Manager) Dependencies(cfg manager.InstanceConfig) []manager.Ref {
	inst, ok := cfg.(*Instance)
	if !ok {
		return nil
	}
	return arr.ImportListRefs(inst.ImportLists)
}

// UsesGuides reports whether any quality profile imports from TRaSH-Guides.
func (m *Manager) UsesGuides(cfg manager.InstanceConfig) bool {
	inst, ok := cfg.(*Instance)
	return ok && arr.UsesGuides(inst.QualityProfiles)
}

// RenderGuides resolves the declared trash ids against the metadata tree.
func (m *Manager) RenderGuides(dir string, cfg manager.InstanceConfig) error {
	inst, ok := cfg.(*Instance)
	if !ok {
		return nil
	}
	return arr.RenderProfiles(dir, string(pluginName), inst.QualityProfiles)
}

var _ manager.Manager = (*Manager)(nil)
