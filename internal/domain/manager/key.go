package manager

import (
	"fmt"
	"regexp"
	"strings"
)

// PluginName identifies a supported target application (e.g. "sonarr").
type PluginName string

// InstanceName identifies one configured instance within a plugin section.
type InstanceName string

// namePattern validates plugin and instance names.
// Must start with a letter; letters, digits, hyphens, and underscores after.
var namePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// NewInstanceName creates a validated InstanceName from a string.
func NewInstanceName(value string) (InstanceName, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", ErrEmptyInstanceName
	}
	if !namePattern.MatchString(trimmed) {
		return "", fmt.Errorf("%w: %q", ErrInvalidInstanceName, value)
	}
	return InstanceName(trimmed), nil
}

// InstanceKey uniquely identifies a configured instance across all plugins.
type InstanceKey struct {
	Plugin   PluginName
	Instance InstanceName
}

// String returns the log form, e.g. "sonarr.instances[main]".
func (k InstanceKey) String() string {
	return fmt.Sprintf("%s.instances[%s]", k.Plugin, k.Instance)
}

// Less orders keys by plugin name, then instance name. Every ordered walk
// over instances in this repo uses this comparison so equal inputs always
// produce identical output.
func (k InstanceKey) Less(other InstanceKey) bool {
	if k.Plugin != other.Plugin {
		return k.Plugin < other.Plugin
	}
	return k.Instance < other.Instance
}

// IsZero returns true if this is a zero-value InstanceKey.
func (k InstanceKey) IsZero() bool {
	return k.Plugin == "" && k.Instance == ""
}

// Ref is a dependency reference declared inside an instance configuration.
// An empty Plugin means the reference targets the declaring plugin.
type Ref struct {
	Plugin   PluginName
	Instance InstanceName
}

// Resolve returns the InstanceKey the reference points at when declared by
// an instance of the given plugin.
func (r Ref) Resolve(declaring PluginName) InstanceKey {
	plugin := r.Plugin
	if plugin == "" {
		plugin = declaring
	}
	return InstanceKey{Plugin: plugin, Instance: r.Instance}
}

// String returns the reference in "plugin.instances[name]" form, or
// "instances[name]" for same-plugin references.
func (r Ref) String() string {
	if r.Plugin == "" {
		return fmt.Sprintf("instances[%s]", r.Instance)
	}
	return fmt.Sprintf("%s.instances[%s]", r.Plugin, r.Instance)
}
