package prowlarr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/declarr/internal/domain/manager"
)

func sectionNode(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	require.NotEmpty(t, doc.Content)
	return doc.Content[0]
}

func TestManagerMetadata(t *testing.T) {
	m := New()
	assert.Equal(t, manager.PluginName("prowlarr"), m.Name())
	assert.False(t, m.UsesGuides(nil))

	min, max := m.SupportedVersions()
	assert.Equal(t, "v1.0.0", min)
	assert.Equal(t, "v1", max)
}

func TestDependenciesAreCrossPlugin(t *testing.T) {
	node := sectionNode(t, `
instances:
  indexers:
    host: http://localhost:9696
    api_key: prowlarr-key
    apps:
      series:
        type: sonarr
        instance: main
        sync_level: fullSync
      movies:
        type: radarr
        instance: movies
`)

	m := New()
	instances, err := m.DecodeInstances(node)
	require.NoError(t, err)

	refs := m.Dependencies(instances["indexers"])
	require.Len(t, refs, 2)
	// Ordered by app entry name: movies before series.
	assert.Equal(t, manager.Ref{Plugin: "radarr", Instance: "movies"}, refs[0])
	assert.Equal(t, manager.Ref{Plugin: "sonarr", Instance: "main"}, refs[1])

	// Cross-plugin references keep their plugin when resolved.
	key := refs[1].Resolve(m.Name())
	assert.Equal(t, manager.InstanceKey{Plugin: "sonarr", Instance: "main"}, key)
}

func TestDecodeInstancesRejectsUnknownAppType(t *testing.T) {
	node := sectionNode(t, `
instances:
  indexers:
    host: http://localhost:9696
    api_key: prowlarr-key
    apps:
      music:
        type: lidarr
        instance: main
`)

	_, err := New().DecodeInstances(node)
	require.Error(t, err)

	var instErr *manager.InstanceConfigError
	require.ErrorAs(t, err, &instErr)
	assert.Contains(t, err.Error(), `unsupported type "lidarr"`)
}

func TestDecodeInstancesRequiresTargetInstance(t *testing.T) {
	node := sectionNode(t, `
instances:
  indexers:
    host: http://localhost:9696
    api_key: prowlarr-key
    apps:
      series:
        type: sonarr
`)

	_, err := New().DecodeInstances(node)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must name a target instance")
}

func TestDecodeInstancesRejectsUnknownSyncLevel(t *testing.T) {
	node := sectionNode(t, `
instances:
  indexers:
    host: http://localhost:9696
    api_key: prowlarr-key
    apps:
      series:
        type: sonarr
        instance: main
        sync_level: everything
`)

	_, err := New().DecodeInstances(node)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown sync_level "everything"`)
}

func TestRenderGuidesIsNoOp(t *testing.T) {
	m := New()
	require.NoError(t, m.RenderGuides(t.TempDir(), nil))
}
