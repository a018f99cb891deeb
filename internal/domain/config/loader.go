package config

import (
	"os"
	"strings"
)

// Loader loads configuration from the filesystem.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the configuration file at path.
func (l *Loader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewConfigNotFoundError(path)
		}
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		// Translate raw YAML errors into user-friendly messages; errors
		// already shaped for the user pass through.
		if ue := GetUserError(err); ue != nil {
			return nil, err
		}
		if strings.Contains(err.Error(), "yaml:") || strings.Contains(err.Error(), "unmarshal") {
			return nil, NewYAMLParseError(path, err)
		}
		return nil, err
	}

	cfg.Path = path
	return cfg, nil
}
