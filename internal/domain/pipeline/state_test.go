package pipeline

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/declarr/internal/domain/manager"
)

// stubConfig is a minimal InstanceConfig for pipeline tests.
type stubConfig struct {
	host   string
	guides bool
	refs   []manager.Ref
}

func (c *stubConfig) Host() string { return c.host }

// stubManager is a canned Manager implementation.
type stubManager struct {
	name      manager.PluginName
	instances map[manager.InstanceName]manager.InstanceConfig
	decodeErr error
	renderErr error
	rendered  []string
}

func (m *stubManager) Name() manager.PluginName { return m.name }
func (m *stubManager) Description() string      { return "stub manager" }

func (m *stubManager) SupportedVersions() (string, string) { return "v3.0.0", "v5.0.0" }

func (m *stubManager) DecodeInstances(_ *yaml.Node) (map[manager.InstanceName]manager.InstanceConfig, error) {
	if m.decodeErr != nil {
		return nil, m.decodeErr
	}
	return m.instances, nil
}

func (m *stubManager) Dependencies(cfg manager.InstanceConfig) []manager.Ref {
	return cfg.(*stubConfig).refs
}

func (m *stubManager) UsesGuides(cfg manager.InstanceConfig) bool {
	return cfg.(*stubConfig).guides
}

func (m *stubManager) RenderGuides(dir string, _ manager.InstanceConfig) error {
	m.rendered = append(m.rendered, dir)
	return m.renderErr
}

var _ manager.Manager = (*stubManager)(nil)

// fakeWorkspace stands in for a guides workspace.
type fakeWorkspace struct {
	dir      string
	released bool
}

func (w *fakeWorkspace) Dir() string { return w.dir }

func (w *fakeWorkspace) Release() error {
	w.released = true
	return nil
}

func instancesOf(plugin manager.PluginName, configs map[manager.InstanceName]manager.InstanceConfig) manager.Instances {
	return manager.Instances{plugin: configs}
}

func TestNewStateAssignsRunID(t *testing.T) {
	a := NewState("a.yaml")
	b := NewState("b.yaml")

	if a.RunID == "" || b.RunID == "" {
		t.Fatal("RunID should not be empty")
	}
	if a.RunID == b.RunID {
		t.Error("two runs share a RunID")
	}
	if a.ConfigPath != "a.yaml" {
		t.Errorf("ConfigPath = %q, want %q", a.ConfigPath, "a.yaml")
	}
}

func TestStateManagerLookup(t *testing.T) {
	st := NewState("declarr.yaml")
	st.Managers = []manager.Manager{
		&stubManager{name: "radarr"},
		&stubManager{name: "sonarr"},
	}

	if m, ok := st.Manager("sonarr"); !ok || m.Name() != "sonarr" {
		t.Errorf("Manager(sonarr) = %v, %v", m, ok)
	}
	if _, ok := st.Manager("lidarr"); ok {
		t.Error("Manager(lidarr) should not be found")
	}
}

func TestStateActivePlugins(t *testing.T) {
	st := NewState("declarr.yaml")
	st.Instances = manager.Instances{
		"sonarr": {"main": &stubConfig{}, "anime": &stubConfig{}},
		"radarr": {"main": &stubConfig{}},
	}

	active := st.ActivePlugins()
	if len(active) != 2 || active[0] != "radarr" || active[1] != "sonarr" {
		t.Errorf("ActivePlugins() = %v, want [radarr sonarr]", active)
	}
}

func TestStateGuidesRequired(t *testing.T) {
	t.Run("no instance references guides", func(t *testing.T) {
		st := NewState("declarr.yaml")
		st.Managers = []manager.Manager{&stubManager{name: "sonarr"}}
		st.Instances = instancesOf("sonarr", map[manager.InstanceName]manager.InstanceConfig{
			"main": &stubConfig{},
		})

		if st.GuidesRequired() {
			t.Error("GuidesRequired() = true, want false")
		}
	})

	t.Run("one instance references guides", func(t *testing.T) {
		st := NewState("declarr.yaml")
		st.Managers = []manager.Manager{&stubManager{name: "sonarr"}}
		st.Instances = instancesOf("sonarr", map[manager.InstanceName]manager.InstanceConfig{
			"plain":  &stubConfig{},
			"guided": &stubConfig{guides: true},
		})

		if !st.GuidesRequired() {
			t.Error("GuidesRequired() = false, want true")
		}
		// Answer is stable across calls.
		if !st.GuidesRequired() {
			t.Error("GuidesRequired() changed between calls")
		}
	})
}

func TestStateWorkspace(t *testing.T) {
	st := NewState("declarr.yaml")

	if st.WorkspaceDir() != "" {
		t.Errorf("WorkspaceDir() = %q before any workspace", st.WorkspaceDir())
	}
	if err := st.ReleaseWorkspace(); err != nil {
		t.Errorf("ReleaseWorkspace() without workspace = %v", err)
	}

	ws := &fakeWorkspace{dir: "/tmp/declarr-guides-test"}
	st.SetWorkspace(ws)

	if st.WorkspaceDir() != ws.dir {
		t.Errorf("WorkspaceDir() = %q, want %q", st.WorkspaceDir(), ws.dir)
	}

	if err := st.ReleaseWorkspace(); err != nil {
		t.Fatalf("ReleaseWorkspace() error = %v", err)
	}
	if !ws.released {
		t.Error("workspace was not released")
	}
	if st.WorkspaceDir() != "" {
		t.Error("WorkspaceDir() should be empty after release")
	}
}
