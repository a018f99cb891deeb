package integration

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/declarr/internal/app"
	"github.com/felixgeelhaar/declarr/internal/domain/config"
	"github.com/felixgeelhaar/declarr/internal/domain/guides"
	"github.com/felixgeelhaar/declarr/internal/domain/manager"
	"github.com/felixgeelhaar/declarr/internal/domain/pipeline"
)

func stageStatuses(result *app.ValidateResult) map[string]pipeline.Status {
	statuses := make(map[string]pipeline.Status, len(result.Stages))
	for _, stage := range result.Stages {
		statuses[stage.Stage] = stage.Status
	}
	return statuses
}

func TestWorkflow_FullStack(t *testing.T) {
	t.Parallel()

	h := NewHarness(t)

	configPath := h.CreateConfig(`
declarr:
  log_level: INFO

sonarr:
  instances:
    a:
      host: http://sonarr-a:8989
      api_key: key-a
    b:
      host: http://sonarr-b:8989
      api_key: key-b
      import_lists:
        from-a:
          type: sonarr
          instance: a

radarr:
  instances:
    movies:
      host: http://radarr:7878
      api_key: key-movies

prowlarr:
  instances:
    indexers:
      host: http://prowlarr:9696
      api_key: key-idx
      apps:
        tv:
          type: sonarr
          instance: a
          sync_level: fullSync
        film:
          type: radarr
          instance: movies
`)

	result, err := h.Validate(configPath)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, []string{
		"radarr.instances[movies]",
		"sonarr.instances[a]",
		"prowlarr.instances[indexers]",
		"sonarr.instances[b]",
	}, result.Order.Strings())

	statuses := stageStatuses(result)
	require.Len(t, statuses, 7)
	assert.Equal(t, pipeline.StatusPassed, statuses[pipeline.StageResolve])
	assert.Equal(t, pipeline.StatusSkipped, statuses[pipeline.StageFetchGuides])
	assert.Equal(t, pipeline.StatusSkipped, statuses[pipeline.StageRenderGuides])
}

func TestWorkflow_DeterministicOrder(t *testing.T) {
	t.Parallel()

	cfg := `
sonarr:
  instances:
    alpha:
      host: http://alpha:8989
      api_key: key
    beta:
      host: http://beta:8989
      api_key: key
    gamma:
      host: http://gamma:8989
      api_key: key
`

	first := NewHarness(t)
	second := NewHarness(t)

	r1, err := first.Validate(first.CreateConfig(cfg))
	require.NoError(t, err)
	r2, err := second.Validate(second.CreateConfig(cfg))
	require.NoError(t, err)

	assert.Equal(t, r1.Order.Strings(), r2.Order.Strings())
	assert.Equal(t, []string{
		"sonarr.instances[alpha]",
		"sonarr.instances[beta]",
		"sonarr.instances[gamma]",
	}, r1.Order.Strings())
}

func TestWorkflow_EnvExpansion(t *testing.T) {
	t.Setenv("DECLARR_TEST_API_KEY", "secret-from-env")

	h := NewHarness(t)
	configPath := h.CreateConfig(`
sonarr:
  instances:
    main:
      host: http://sonarr:8989
      api_key: ${DECLARR_TEST_API_KEY}
`)

	result, err := h.Validate(configPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"sonarr.instances[main]"}, result.Order.Strings())
}

func TestWorkflow_MissingEnvVar(t *testing.T) {
	t.Parallel()

	h := NewHarness(t)
	configPath := h.CreateConfig(`
sonarr:
  instances:
    main:
      host: http://sonarr:8989
      api_key: ${DECLARR_TEST_UNSET_VAR}
`)

	result, err := h.Validate(configPath)
	require.Error(t, err)
	assert.True(t, config.IsUserError(err, config.ErrCodeEnvNotSet))

	stageErr, ok := pipeline.IsStageError(err)
	require.True(t, ok)
	assert.Equal(t, pipeline.StageLoadConfig, stageErr.Stage)
	assert.Equal(t, pipeline.StatusFailed, stageStatuses(result)[pipeline.StageLoadConfig])
}

func TestWorkflow_GuidesCacheReuse(t *testing.T) {
	t.Parallel()

	gs := NewGuidesServer(t, "Guides-master", map[string]string{
		"docs/json/sonarr/quality-profiles/hd.json": `{"trash_id":"sonarr-hd","name":"HD"}`,
	})

	h := NewHarness(t)
	cfg := fmt.Sprintf(`
declarr:
  guides:
    metadata_url: %s
    cache_dir: %s

sonarr:
  instances:
    main:
      host: http://sonarr:8989
      api_key: key
      quality_profiles:
        web:
          trash_id: sonarr-hd
`, gs.URL, h.CacheDir())

	configPath := h.CreateConfig(cfg)

	result, err := h.Validate(configPath)
	require.NoError(t, err)
	statuses := stageStatuses(result)
	assert.Equal(t, pipeline.StatusPassed, statuses[pipeline.StageFetchGuides])
	assert.Equal(t, pipeline.StatusPassed, statuses[pipeline.StageRenderGuides])

	// The second run must come from the cache, not the server.
	_, err = h.Validate(configPath)
	require.NoError(t, err)
	assert.Equal(t, 1, gs.Hits)
}

func TestWorkflow_GuidesIntegrityMismatch(t *testing.T) {
	t.Parallel()

	gs := NewGuidesServer(t, "Guides-master", map[string]string{
		"docs/json/sonarr/quality-profiles/hd.json": `{"trash_id":"sonarr-hd","name":"HD"}`,
	})

	h := NewHarness(t)
	configPath := h.CreateConfig(fmt.Sprintf(`
declarr:
  guides:
    metadata_url: %s
    integrity: %s

sonarr:
  instances:
    main:
      host: http://sonarr:8989
      api_key: key
      quality_profiles:
        web:
          trash_id: sonarr-hd
`, gs.URL, strings.Repeat("00", 32)))

	result, err := h.Validate(configPath)
	require.Error(t, err)
	assert.True(t, guides.IsFetchError(err))
	assert.Contains(t, err.Error(), "integrity check failed")

	stageErr, ok := pipeline.IsStageError(err)
	require.True(t, ok)
	assert.Equal(t, pipeline.StageFetchGuides, stageErr.Stage)
	assert.Equal(t, pipeline.StatusFailed, stageStatuses(result)[pipeline.StageFetchGuides])
}

func TestWorkflow_UnsupportedVersion(t *testing.T) {
	t.Parallel()

	h := NewHarness(t)
	configPath := h.CreateConfig(`
sonarr:
  instances:
    main:
      host: http://sonarr:8989
      api_key: key
      version: 2.0.0
`)

	_, err := h.Validate(configPath)
	require.Error(t, err)

	var versionErr *manager.UnsupportedVersionError
	require.ErrorAs(t, err, &versionErr)
	assert.Equal(t, "sonarr.instances[main]", versionErr.Key.String())
	assert.Contains(t, err.Error(), "supported range")

	stageErr, ok := pipeline.IsStageError(err)
	require.True(t, ok)
	assert.Equal(t, pipeline.StageLoadInstances, stageErr.Stage)
}

func TestWorkflow_InvalidSchedule(t *testing.T) {
	t.Parallel()

	h := NewHarness(t)
	configPath := h.CreateConfig(`
declarr:
  update_schedule: every day at noon

sonarr:
  instances:
    main:
      host: http://sonarr:8989
      api_key: key
`)

	_, err := h.Validate(configPath)
	require.Error(t, err)
	assert.True(t, config.IsUserError(err, config.ErrCodeScheduleInvalid))

	stageErr, ok := pipeline.IsStageError(err)
	require.True(t, ok)
	assert.Equal(t, pipeline.StageLoadConfig, stageErr.Stage)
}

func TestWorkflow_UnknownInstanceField(t *testing.T) {
	t.Parallel()

	h := NewHarness(t)
	configPath := h.CreateConfig(`
sonarr:
  instances:
    main:
      host: http://sonarr:8989
      api_token: key
`)

	_, err := h.Validate(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_token")

	stageErr, ok := pipeline.IsStageError(err)
	require.True(t, ok)
	assert.Equal(t, pipeline.StageLoadInstances, stageErr.Stage)
}
