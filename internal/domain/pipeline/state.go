package pipeline

import (
	"github.com/google/uuid"

	"github.com/felixgeelhaar/declarr/internal/domain/config"
	"github.com/felixgeelhaar/declarr/internal/domain/manager"
	"github.com/felixgeelhaar/declarr/internal/domain/resolver"
)

// Workspace is a temporary directory that outlives a single stage. The
// metadata fetch stage creates one and the render stage reads from it.
type Workspace interface {
	// Dir returns the workspace root directory.
	Dir() string
	// Release removes the workspace. Safe to call more than once.
	Release() error
}

// State carries everything the stages produce and consume. Each stage reads
// the fields of the stages before it and fills in its own.
type State struct {
	// RunID uniquely identifies this validation run in log output.
	RunID string

	// ConfigPath is the configuration file being validated.
	ConfigPath string

	// Config is set by the configuration loading stage.
	Config *config.Config

	// Managers holds the selected plugin managers in name order.
	Managers []manager.Manager

	// Instances holds the decoded instance configurations per plugin.
	Instances manager.Instances

	// Graph is the instance dependency graph.
	Graph *resolver.Graph

	// Order is the resolved execution order.
	Order resolver.ExecutionOrder

	guidesRequired *bool
	workspace      Workspace
}

// NewState returns a State for a fresh validation run.
func NewState(configPath string) *State {
	return &State{
		RunID:      uuid.New().String(),
		ConfigPath: configPath,
		Instances:  make(manager.Instances),
	}
}

// Manager returns the selected manager for the given plugin.
func (s *State) Manager(name manager.PluginName) (manager.Manager, bool) {
	for _, m := range s.Managers {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}

// ActivePlugins returns the plugins that have at least one configured
// instance, in name order.
func (s *State) ActivePlugins() []manager.PluginName {
	seen := make(map[manager.PluginName]bool)
	var names []manager.PluginName
	for _, key := range s.Instances.Keys() {
		if !seen[key.Plugin] {
			seen[key.Plugin] = true
			names = append(names, key.Plugin)
		}
	}
	return names
}

// GuidesRequired reports whether any configured instance references guides
// metadata. The scan walks instances in deterministic order and stops at the
// first hit. The answer is computed once per run.
func (s *State) GuidesRequired() bool {
	if s.guidesRequired != nil {
		return *s.guidesRequired
	}
	required := false
	for _, key := range s.Instances.Keys() {
		m, ok := s.Manager(key.Plugin)
		if !ok {
			continue
		}
		cfg, ok := s.Instances.Get(key)
		if !ok {
			continue
		}
		if m.UsesGuides(cfg) {
			required = true
			break
		}
	}
	s.guidesRequired = &required
	return required
}

// SetWorkspace records the guides workspace for later stages and cleanup.
func (s *State) SetWorkspace(ws Workspace) {
	s.workspace = ws
}

// WorkspaceDir returns the guides workspace directory, or empty when no
// workspace has been created.
func (s *State) WorkspaceDir() string {
	if s.workspace == nil {
		return ""
	}
	return s.workspace.Dir()
}

// ReleaseWorkspace removes the guides workspace if one was created. It is
// safe to call on any exit path, including runs that never created one.
func (s *State) ReleaseWorkspace() error {
	if s.workspace == nil {
		return nil
	}
	err := s.workspace.Release()
	s.workspace = nil
	return err
}
