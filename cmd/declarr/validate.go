package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/declarr/internal/adapters/logging"
	"github.com/felixgeelhaar/declarr/internal/app"
	"github.com/felixgeelhaar/declarr/internal/domain/manager"
	"github.com/felixgeelhaar/declarr/internal/domain/pipeline"
	"github.com/felixgeelhaar/declarr/internal/ports"
)

// defaultConfigFile is looked up in the working directory when no path is
// given on the command line.
const defaultConfigFile = "declarr.yaml"

var validateCmd = &cobra.Command{
	Use:   "validate [config-path]",
	Short: "Validate configuration without contacting any instance",
	Long: `Validate checks a declarr configuration file for errors without touching
the configured instances.

Every check runs locally: plugin sections are decoded, instance settings
are validated, cross-instance references are resolved into an execution
order, and TRaSH-Guides metadata is fetched and rendered when quality
profiles reference it.

Exit codes:
  0 - Valid configuration
  1 - Validation failed
  2 - Could not read configuration

Examples:
  declarr validate
  declarr validate /opt/declarr/declarr.yaml
  declarr validate --plugin sonarr --plugin radarr
  declarr validate --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

var (
	validatePlugins []string
	validateJSON    bool
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringSliceVarP(&validatePlugins, "plugin", "p", nil, "Validate only the named plugins (repeatable)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output results as JSON")

	// Complete --plugin with the registered plugin names
	_ = validateCmd.RegisterFlagCompletionFunc("plugin", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		var comps []string
		for _, m := range app.New().Registry().All() {
			comps = append(comps, fmt.Sprintf("%s\t%s", m.Name(), m.Description()))
		}
		return comps, cobra.ShellCompDirectiveNoFileComp
	})

	// Complete the positional argument with YAML files
	validateCmd.ValidArgsFunction = func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	}
}

func runValidate(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	configPath := defaultConfigFile
	if len(args) > 0 {
		configPath = args[0]
	}
	if abs, err := filepath.Abs(configPath); err == nil {
		configPath = abs
	}

	level := ports.LevelInfo
	if verbose {
		level = ports.LevelDebug
	}
	logger := logging.NewConsoleLogger(
		logging.WithOutput(os.Stderr),
		logging.WithLevel(level),
		logging.WithColor(!noColor),
	)

	opts := []app.Option{app.WithLogger(logger)}
	if verbose {
		// --verbose wins over any log_level in the configuration file.
		opts = append(opts, app.WithFixedLogLevel())
	}
	declarr := app.New(opts...)

	names := declarr.Registry().Names()
	loaded := make([]string, len(names))
	for i, name := range names {
		loaded[i] = string(name)
	}
	logger.Info(ctx, fmt.Sprintf("declarr version %s (log level: %s)", version, level))
	logger.Info(ctx, fmt.Sprintf("Plugins loaded: %s", strings.Join(loaded, ", ")))
	logger.Info(ctx, fmt.Sprintf("Testing configuration file: %s", configPath))

	plugins := make([]manager.PluginName, 0, len(validatePlugins))
	for _, p := range validatePlugins {
		plugins = append(plugins, manager.PluginName(p))
	}

	result, err := declarr.Validate(ctx, configPath, plugins)

	if validateJSON {
		outputValidationJSON(result, err)
	} else {
		outputValidationText(result, err)
	}

	if code := validationExitCode(err); code != 0 {
		os.Exit(code)
	}
	return nil
}

// validationExitCode maps a validation outcome to the CLI exit code:
// 0 on success, 2 when the configuration file itself could not be loaded,
// and 1 for every other failure.
func validationExitCode(err error) int {
	if err == nil {
		return 0
	}
	if stageErr, ok := pipeline.IsStageError(err); ok && stageErr.Stage == pipeline.StageLoadConfig {
		return 2
	}
	return 1
}

func outputValidationJSON(result *app.ValidateResult, err error) {
	type stageReport struct {
		Name   string `json:"name"`
		Status string `json:"status"`
		Reason string `json:"reason,omitempty"`
		Error  string `json:"error,omitempty"`
	}

	output := struct {
		Valid          bool          `json:"valid"`
		RunID          string        `json:"run_id,omitempty"`
		Config         string        `json:"config,omitempty"`
		Stages         []stageReport `json:"stages,omitempty"`
		ExecutionOrder []string      `json:"execution_order,omitempty"`
		Error          string        `json:"error,omitempty"`
	}{
		Valid: err == nil,
	}

	if err != nil {
		output.Error = err.Error()
	}
	if result != nil {
		output.RunID = result.RunID
		output.Config = result.ConfigPath
		if len(result.Order) > 0 {
			output.ExecutionOrder = result.Order.Strings()
		}
		for _, stage := range result.Stages {
			report := stageReport{
				Name:   stage.Stage,
				Status: stage.Status.String(),
				Reason: stage.Reason,
			}
			if stage.Err != nil {
				report.Error = stage.Err.Error()
			}
			output.Stages = append(output.Stages, report)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(output)
}

func outputValidationText(result *app.ValidateResult, err error) {
	fmt.Println()
	for _, stage := range result.Stages {
		switch stage.Status {
		case pipeline.StatusPassed:
			fmt.Printf("  ✓ %s\n", stage.Stage)
		case pipeline.StatusFailed:
			fmt.Printf("  ✗ %s: %v\n", stage.Stage, stage.Err)
		case pipeline.StatusSkipped:
			fmt.Printf("  - %s (skipped: %s)\n", stage.Stage, stage.Reason)
		}
	}

	if len(result.Order) > 0 {
		fmt.Println("\nExecution order:")
		for i, key := range result.Order {
			fmt.Printf("  %d. %s\n", i+1, key)
		}
	}

	fmt.Println()
	if err != nil {
		printError(err)
		return
	}
	fmt.Println("✓ Configuration is valid")
}
