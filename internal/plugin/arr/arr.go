// Package arr holds the configuration building blocks shared by the *arr
// plugin managers: connection settings, version range checks, import list
// references, and TRaSH-Guides quality profile handling.
package arr

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/declarr/internal/domain/manager"
)

// Connection is the access configuration every *arr instance declares.
type Connection struct {
	// HostURL is the base URL of the target application.
	HostURL string `yaml:"host"`
	// APIKey authenticates API requests against the target application.
	APIKey string `yaml:"api_key"`
	// Version optionally pins the target application version.
	Version string `yaml:"version,omitempty"`
}

// Host returns the target application URL.
func (c *Connection) Host() string {
	return c.HostURL
}

// CheckConnection validates the host and API key of one instance.
func CheckConnection(key manager.InstanceKey, host, apiKey string) error {
	if host == "" {
		return &manager.InstanceConfigError{Key: key, Err: errors.New("host is required")}
	}
	u, err := url.Parse(host)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &manager.InstanceConfigError{
			Key: key,
			Err: fmt.Errorf("host %q must be an http or https URL", host),
		}
	}
	if apiKey == "" {
		return &manager.InstanceConfigError{Key: key, Err: errors.New("api_key is required")}
	}
	return nil
}

// CheckVersion validates a declared target application version against a
// manager's supported range. An empty version always passes: it means the
// instance runs whatever is deployed. The upper bound is compared by major
// version only.
func CheckVersion(key manager.InstanceKey, version, min, max string) error {
	if version == "" {
		return nil
	}
	v := Semver(version)
	if !semver.IsValid(v) {
		return &manager.InstanceConfigError{
			Key: key,
			Err: fmt.Errorf("version %q is not a valid version number", version),
		}
	}
	if semver.Compare(v, min) < 0 || semver.Compare(semver.Major(v), semver.Major(max)) > 0 {
		return &manager.UnsupportedVersionError{Key: key, Version: version, Min: min, Max: max}
	}
	return nil
}

// Semver converts an *arr version string to canonical semver form. The
// applications report four-part build numbers like "4.0.10.2544"; the
// fourth component is dropped for comparison.
func Semver(version string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(version), "v")
	parts := strings.Split(trimmed, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return "v" + strings.Join(parts, ".")
}
