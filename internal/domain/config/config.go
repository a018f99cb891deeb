// Package config loads and validates the top-level declarr.yaml file.
// Plugin sections are kept as raw YAML nodes; decoding them is the owning
// manager's job.
package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"gopkg.in/yaml.v3"
)

// GlobalSection is the key of the declarr settings block.
const GlobalSection = "declarr"

// Default guides metadata source. TRaSH-Guides publishes its metadata as a
// repository archive; the fetch stage downloads and unpacks it.
const (
	DefaultGuidesURL       = "https://github.com/TRaSH-Guides/Guides/archive/refs/heads/master.zip"
	DefaultGuidesDirPrefix = "Guides-master"
	defaultFetchTimeout    = 90 * time.Second
)

// Config is the parsed top-level configuration file.
type Config struct {
	// Path is the file the configuration was loaded from.
	Path string
	// Global holds the declarr section.
	Global Global
	// Sections holds every plugin section by name, undecoded.
	Sections map[string]*yaml.Node
}

// Global is the declarr section of the configuration file.
type Global struct {
	// LogLevel sets the minimum log level (DEBUG, INFO, WARN, ERROR).
	LogLevel string `yaml:"log_level"`
	// UpdateSchedule is an optional five-field cron expression used by the
	// daemon mode; validation only checks it parses.
	UpdateSchedule string `yaml:"update_schedule"`
	// Guides configures the TRaSH-Guides metadata source.
	Guides GuidesSettings `yaml:"guides"`
}

// GuidesSettings configures where quality metadata is fetched from.
type GuidesSettings struct {
	// MetadataURL is the archive to download. Defaults to the TRaSH-Guides
	// repository archive.
	MetadataURL string `yaml:"metadata_url"`
	// DirPrefix is the top-level directory inside the archive.
	DirPrefix string `yaml:"dir_prefix"`
	// CacheDir caches downloaded archives between runs when set.
	CacheDir string `yaml:"cache_dir"`
	// FetchTimeout bounds the download, e.g. "90s". Defaults to 90s.
	FetchTimeout string `yaml:"fetch_timeout"`
	// Integrity pins the archive to a SHA256 hex digest when set.
	Integrity string `yaml:"integrity"`
}

// Timeout returns the parsed fetch timeout.
func (s GuidesSettings) Timeout() time.Duration {
	if s.FetchTimeout == "" {
		return defaultFetchTimeout
	}
	d, err := time.ParseDuration(s.FetchTimeout)
	if err != nil {
		return defaultFetchTimeout
	}
	return d
}

// SectionNames returns the plugin section names in sorted order.
func (c *Config) SectionNames() []string {
	names := make([]string, 0, len(c.Sections))
	for name := range c.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Section returns the raw YAML node for a plugin section, or nil if the
// section is absent.
func (c *Config) Section(name string) *yaml.Node {
	return c.Sections[name]
}

// Parse parses configuration bytes. Values are env-expanded before decoding;
// the declarr section is decoded strictly, plugin sections are stashed raw.
func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	cfg := &Config{Sections: make(map[string]*yaml.Node)}
	applyDefaults(&cfg.Global)

	// An empty file is a valid configuration with no plugins; the pipeline
	// rejects it later as having nothing to validate.
	if len(doc.Content) == 0 {
		return cfg, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return cfg, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, NewConfigInvalidError("top level must be a mapping of sections", "")
	}

	if err := expandEnvNode(root); err != nil {
		return nil, err
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := root.Content[i]
		valNode := root.Content[i+1]
		name := keyNode.Value

		if name == GlobalSection {
			if err := DecodeStrict(valNode, &cfg.Global); err != nil {
				return nil, err
			}
			continue
		}

		if _, dup := cfg.Sections[name]; dup {
			return nil, NewConfigInvalidError(
				fmt.Sprintf("section %q appears more than once", name),
				fmt.Sprintf("line %d", keyNode.Line),
			)
		}
		cfg.Sections[name] = valNode
	}

	applyDefaults(&cfg.Global)
	if err := cfg.Global.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(g *Global) {
	if g.LogLevel == "" {
		g.LogLevel = "INFO"
	}
	if g.Guides.MetadataURL == "" {
		g.Guides.MetadataURL = DefaultGuidesURL
	}
	if g.Guides.DirPrefix == "" {
		g.Guides.DirPrefix = DefaultGuidesDirPrefix
	}
}

func (g *Global) validate() error {
	switch strings.ToUpper(g.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return NewConfigInvalidError(
			fmt.Sprintf("unknown log_level %q, expected DEBUG, INFO, WARN, or ERROR", g.LogLevel),
			"declarr.log_level",
		)
	}

	if g.UpdateSchedule != "" {
		if _, err := cron.ParseStandard(g.UpdateSchedule); err != nil {
			return NewScheduleInvalidError(g.UpdateSchedule, err)
		}
	}

	u, err := url.Parse(g.Guides.MetadataURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return NewConfigInvalidError(
			fmt.Sprintf("guides.metadata_url %q must be an http or https URL", g.Guides.MetadataURL),
			"declarr.guides.metadata_url",
		)
	}

	if g.Guides.FetchTimeout != "" {
		if _, err := time.ParseDuration(g.Guides.FetchTimeout); err != nil {
			return NewConfigInvalidError(
				fmt.Sprintf("guides.fetch_timeout %q is not a duration, e.g. \"90s\"", g.Guides.FetchTimeout),
				"declarr.guides.fetch_timeout",
			)
		}
	}

	return nil
}
