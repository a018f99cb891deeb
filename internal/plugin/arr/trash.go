package arr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// TrashProfile is the subset of a TRaSH-Guides quality profile definition
// the validator needs.
type TrashProfile struct {
	TrashID string `json:"trash_id"`
	Name    string `json:"name"`
}

// LoadTrashProfiles reads every quality profile definition for the given
// application from the metadata tree under dir, keyed by trash id.
func LoadTrashProfiles(dir, app string) (map[string]TrashProfile, error) {
	pattern := filepath.Join(dir, "docs", "json", app, "quality-profiles", "*.json")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]TrashProfile, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var profile TrashProfile
		if err := json.Unmarshal(data, &profile); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
		}
		if profile.TrashID != "" {
			profiles[profile.TrashID] = profile
		}
	}
	return profiles, nil
}
