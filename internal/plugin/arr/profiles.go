package arr

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/declarr/internal/domain/manager"
)

// ImportList pulls media from another instance of the same application.
type ImportList struct {
	// Type is the import list implementation; the only supported value is
	// the application's own plugin name.
	Type string `yaml:"type"`
	// Instance names the source instance within the same plugin.
	Instance string `yaml:"instance"`
}

// QualityProfile declares a quality profile, either fully inline or imported
// from TRaSH-Guides by trash id.
type QualityProfile struct {
	// TrashID imports the profile definition from TRaSH-Guides metadata.
	TrashID string `yaml:"trash_id,omitempty"`
	// UpgradeUntil caps automatic quality upgrades.
	UpgradeUntil string `yaml:"upgrade_until,omitempty"`

	resolvedName string
}

// ResolvedName returns the profile name resolved from guides metadata.
// Empty until the profile has been rendered.
func (p *QualityProfile) ResolvedName() string {
	return p.resolvedName
}

func sortedListNames(lists map[string]*ImportList) []string {
	names := make([]string, 0, len(lists))
	for name := range lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedProfileNames(profiles map[string]*QualityProfile) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateImportLists checks the import lists of one instance. listType is
// the only accepted type, the application's own plugin name.
func ValidateImportLists(key manager.InstanceKey, listType string, lists map[string]*ImportList) error {
	for _, name := range sortedListNames(lists) {
		list := lists[name]
		if list == nil {
			return &manager.InstanceConfigError{
				Key: key,
				Err: fmt.Errorf("import list %q has no settings", name),
			}
		}
		if list.Type != listType {
			return &manager.InstanceConfigError{
				Key: key,
				Err: fmt.Errorf("import list %q has unsupported type %q, expected %q", name, list.Type, listType),
			}
		}
		if list.Instance == "" {
			return &manager.InstanceConfigError{
				Key: key,
				Err: fmt.Errorf("import list %q must name a source instance", name),
			}
		}
	}
	return nil
}

// ValidateQualityProfiles checks the quality profile declarations of one
// instance.
func ValidateQualityProfiles(key manager.InstanceKey, profiles map[string]*QualityProfile) error {
	for _, name := range sortedProfileNames(profiles) {
		if profiles[name] == nil {
			return &manager.InstanceConfigError{
				Key: key,
				Err: fmt.Errorf("quality profile %q has no settings", name),
			}
		}
	}
	return nil
}

// ImportListRefs returns the same-plugin dependency references declared by
// the import lists, ordered by list name.
func ImportListRefs(lists map[string]*ImportList) []manager.Ref {
	refs := make([]manager.Ref, 0, len(lists))
	for _, name := range sortedListNames(lists) {
		list := lists[name]
		if list == nil || list.Instance == "" {
			continue
		}
		refs = append(refs, manager.Ref{Instance: manager.InstanceName(list.Instance)})
	}
	return refs
}

// UsesGuides reports whether any profile imports from TRaSH-Guides.
func UsesGuides(profiles map[string]*QualityProfile) bool {
	for _, profile := range profiles {
		if profile != nil && profile.TrashID != "" {
			return true
		}
	}
	return false
}

// RenderProfiles resolves every trash id against the metadata tree under
// dir. app is the application subdirectory of the metadata tree, e.g.
// "sonarr". Profiles without a trash id are left untouched.
func RenderProfiles(dir, app string, profiles map[string]*QualityProfile) error {
	if !UsesGuides(profiles) {
		return nil
	}
	meta, err := LoadTrashProfiles(dir, app)
	if err != nil {
		return err
	}
	for _, name := range sortedProfileNames(profiles) {
		profile := profiles[name]
		if profile == nil || profile.TrashID == "" {
			continue
		}
		m, ok := meta[profile.TrashID]
		if !ok {
			return fmt.Errorf("quality profile %q: trash_id %q not found in guides metadata", name, profile.TrashID)
		}
		profile.resolvedName = m.Name
	}
	return nil
}
