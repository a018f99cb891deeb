//go:build e2e

package scenarios

import (
	"testing"

	"github.com/felixgeelhaar/declarr/e2e/framework"
)

const twoInstanceConfig = `
sonarr:
  instances:
    main:
      host: http://sonarr:8989
      api_key: key-main

radarr:
  instances:
    movies:
      host: http://radarr:7878
      api_key: key-movies
`

func TestVersion_ShowsVersion(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	scenario := framework.NewScenario(t)

	scenario.
		When("I run declarr version", func(r *framework.Runner) *framework.Result {
			return r.Version()
		}).
		Then("the command succeeds", func(t *testing.T, r *framework.Result) {
			framework.AssertSuccess(t, r)
		}).
		And("the output shows version information", func(t *testing.T, r *framework.Result) {
			framework.AssertStdoutContains(t, r, "declarr")
			framework.AssertStdoutContains(t, r, "commit:")
		})
}

func TestValidate_WithValidConfig(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	scenario := framework.NewScenario(t)

	scenario.
		Given("a config with two independent instances", func(env *framework.Environment) {
			env.WriteConfig(twoInstanceConfig)
		}).
		When("I run declarr validate without arguments", func(r *framework.Runner) *framework.Result {
			return r.Validate()
		}).
		Then("the command succeeds", func(t *testing.T, r *framework.Result) {
			framework.AssertExitCode(t, r, 0)
		}).
		And("the report lists every stage and the execution order", func(t *testing.T, r *framework.Result) {
			framework.AssertOutputMatches(t, r,
				"Loading configuration",
				"Resolving instance dependencies",
				"Execution order:",
				"radarr.instances[movies]",
				"sonarr.instances[main]",
				"Configuration is valid",
			)
		})
}

func TestValidate_MissingConfigFile(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	scenario := framework.NewScenario(t)

	scenario.
		When("I run declarr validate without a configuration file", func(r *framework.Runner) *framework.Result {
			return r.Validate()
		}).
		Then("the command exits with the load failure code", func(t *testing.T, r *framework.Result) {
			framework.AssertExitCode(t, r, 2)
		}).
		And("the error is reported on stderr", func(t *testing.T, r *framework.Result) {
			framework.AssertStderrContains(t, r, "Error:")
			framework.AssertStderrContains(t, r, "not found")
		})
}

func TestValidate_CyclicDependency(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	scenario := framework.NewScenario(t)

	scenario.
		Given("two instances importing from each other", func(env *framework.Environment) {
			env.WriteConfig(`
sonarr:
  instances:
    a:
      host: http://sonarr-a:8989
      api_key: key-a
      import_lists:
        from-b:
          type: sonarr
          instance: b
    b:
      host: http://sonarr-b:8989
      api_key: key-b
      import_lists:
        from-a:
          type: sonarr
          instance: a
`)
		}).
		When("I run declarr validate", func(r *framework.Runner) *framework.Result {
			return r.Validate()
		}).
		Then("the command fails with the validation error code", func(t *testing.T, r *framework.Result) {
			framework.AssertExitCode(t, r, 1)
		}).
		And("the report names the full cycle", func(t *testing.T, r *framework.Result) {
			framework.AssertStdoutContains(t, r, "dependency cycle detected")
			framework.AssertStdoutContains(t, r, "sonarr.instances[a] -> sonarr.instances[b] -> sonarr.instances[a]")
		}).
		And("no execution order is printed", func(t *testing.T, r *framework.Result) {
			framework.AssertStdoutNotContains(t, r, "Execution order:")
		})
}

func TestValidate_JSONOutput(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	scenario := framework.NewScenario(t)

	scenario.
		Given("a config with two independent instances", func(env *framework.Environment) {
			env.WriteConfig(twoInstanceConfig)
		}).
		When("I run declarr validate --json", func(r *framework.Runner) *framework.Result {
			return r.Validate("--json")
		}).
		Then("the command succeeds", func(t *testing.T, r *framework.Result) {
			framework.AssertExitCode(t, r, 0)
		}).
		And("stdout is a machine-readable result", func(t *testing.T, r *framework.Result) {
			parsed := r.JSON(t)
			if parsed["valid"] != true {
				t.Errorf("Expected valid=true, got %v", parsed["valid"])
			}
			if _, ok := parsed["execution_order"]; !ok {
				t.Error("Expected execution_order in JSON output")
			}
		})
}

func TestValidate_EnvExpansion(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	scenario := framework.NewScenario(t)

	scenario.
		Given("an API key supplied through the environment", func(env *framework.Environment) {
			env.SetEnv("DECLARR_E2E_API_KEY", "secret-from-env")
			env.WriteConfig(`
sonarr:
  instances:
    main:
      host: http://sonarr:8989
      api_key: ${DECLARR_E2E_API_KEY}
`)
		}).
		When("I run declarr validate", func(r *framework.Runner) *framework.Result {
			return r.Validate()
		}).
		Then("the command succeeds", func(t *testing.T, r *framework.Result) {
			framework.AssertExitCode(t, r, 0)
			framework.AssertStdoutContains(t, r, "Configuration is valid")
		})
}

func TestValidate_PluginFilter(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	scenario := framework.NewScenario(t)

	scenario.
		Given("a config with sonarr and radarr sections", func(env *framework.Environment) {
			env.WriteConfig(twoInstanceConfig)
		}).
		When("I run declarr validate --plugin sonarr", func(r *framework.Runner) *framework.Result {
			return r.Validate("--plugin", "sonarr")
		}).
		Then("the command succeeds", func(t *testing.T, r *framework.Result) {
			framework.AssertExitCode(t, r, 0)
		}).
		And("only sonarr instances appear in the order", func(t *testing.T, r *framework.Result) {
			framework.AssertStdoutContains(t, r, "sonarr.instances[main]")
			framework.AssertStdoutNotContains(t, r, "radarr.instances[movies]")
		})
}

func TestValidate_VerboseLogging(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	scenario := framework.NewScenario(t)

	scenario.
		Given("a config with two independent instances", func(env *framework.Environment) {
			env.WriteConfig(twoInstanceConfig)
		}).
		When("I run declarr validate --verbose --no-color", func(r *framework.Runner) *framework.Result {
			return r.Validate("--verbose", "--no-color")
		}).
		Then("the command succeeds", func(t *testing.T, r *framework.Result) {
			framework.AssertExitCode(t, r, 0)
		}).
		And("the run banner goes to stderr", func(t *testing.T, r *framework.Result) {
			framework.AssertStderrContains(t, r, "declarr version")
			framework.AssertStderrContains(t, r, "Testing configuration file:")
		})
}
