// Package manager defines the contract between the validation pipeline and
// the built-in plugin managers, plus the registry that holds them.
package manager

import (
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// InstanceConfig is one named instance's configuration as decoded by its
// plugin manager. The resolver and the pipeline treat it as opaque; only
// the owning manager looks inside.
type InstanceConfig interface {
	// Host returns the target application URL, for diagnostics.
	Host() string
}

// Manager adapts one target application to the validation pipeline.
// Implementations are stateless; per-instance data lives in the
// InstanceConfig values they decode.
type Manager interface {
	// Name returns the plugin name used as the configuration section key.
	Name() PluginName

	// Description returns a one-line description of the target application.
	Description() string

	// SupportedVersions returns the inclusive semver range of target
	// application versions this manager can configure.
	SupportedVersions() (min, max string)

	// DecodeInstances decodes the plugin's configuration section into named
	// instance configurations. A nil section yields an empty map. A failure
	// for any instance aborts the decode with an *InstanceConfigError.
	DecodeInstances(section *yaml.Node) (map[InstanceName]InstanceConfig, error)

	// Dependencies returns the dependency references cfg declares, in
	// declaration order.
	Dependencies(cfg InstanceConfig) []Ref

	// UsesGuides reports whether cfg references TRaSH-Guides metadata.
	UsesGuides(cfg InstanceConfig) bool

	// RenderGuides resolves guide identifiers inside cfg using metadata
	// previously fetched into dir. Implementations mutate cfg in place.
	RenderGuides(dir string, cfg InstanceConfig) error
}

// Registry holds the registered plugin managers with thread-safe access.
type Registry struct {
	mu       sync.RWMutex
	managers map[PluginName]Manager
}

// NewRegistry creates an empty manager registry.
func NewRegistry() *Registry {
	return &Registry{
		managers: make(map[PluginName]Manager),
	}
}

// Register adds a manager to the registry.
// Returns ErrNilManager if m is nil, ErrEmptyPluginName if its name is
// empty, or a ManagerExistsError if the name is already taken.
func (r *Registry) Register(m Manager) error {
	if m == nil {
		return ErrNilManager
	}
	if m.Name() == "" {
		return ErrEmptyPluginName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.managers[m.Name()]; exists {
		return &ManagerExistsError{Name: m.Name()}
	}
	r.managers[m.Name()] = m
	return nil
}

// Get returns a manager by plugin name.
func (r *Registry) Get(name PluginName) (Manager, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.managers[name]
	return m, ok
}

// Names returns all registered plugin names sorted for deterministic ordering.
func (r *Registry) Names() []PluginName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]PluginName, 0, len(r.managers))
	for name := range r.managers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// All returns all registered managers sorted by plugin name.
func (r *Registry) All() []Manager {
	r.mu.RLock()
	defer r.mu.RUnlock()

	managers := make([]Manager, 0, len(r.managers))
	for _, m := range r.managers {
		managers = append(managers, m)
	}
	sort.Slice(managers, func(i, j int) bool {
		return managers[i].Name() < managers[j].Name()
	})
	return managers
}

// Select returns the managers for the given plugin names, sorted by name.
// An empty names slice selects every registered manager. A name with no
// registered manager fails with an *UnknownPluginError.
func (r *Registry) Select(names []PluginName) ([]Manager, error) {
	if len(names) == 0 {
		return r.All(), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[PluginName]bool, len(names))
	managers := make([]Manager, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		m, ok := r.managers[name]
		if !ok {
			return nil, &UnknownPluginError{Name: name}
		}
		managers = append(managers, m)
	}
	sort.Slice(managers, func(i, j int) bool {
		return managers[i].Name() < managers[j].Name()
	})
	return managers, nil
}

// Count returns the number of registered managers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.managers)
}
