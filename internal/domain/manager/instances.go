package manager

import "sort"

// Instances maps plugin name to that plugin's decoded instance configs.
// It is the working set the resolver and enrichment stages operate on.
type Instances map[PluginName]map[InstanceName]InstanceConfig

// Count returns the total number of configured instances across all plugins.
func (in Instances) Count() int {
	n := 0
	for _, byName := range in {
		n += len(byName)
	}
	return n
}

// Keys returns every configured InstanceKey sorted by plugin name, then
// instance name. Callers that iterate the working set go through here so
// equal inputs always walk in the same order.
func (in Instances) Keys() []InstanceKey {
	keys := make([]InstanceKey, 0, in.Count())
	for plugin, byName := range in {
		for instance := range byName {
			keys = append(keys, InstanceKey{Plugin: plugin, Instance: instance})
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Get returns the configuration for the given key.
func (in Instances) Get(key InstanceKey) (InstanceConfig, bool) {
	byName, ok := in[key.Plugin]
	if !ok {
		return nil, false
	}
	cfg, ok := byName[key.Instance]
	return cfg, ok
}

// Has reports whether the given key is configured.
func (in Instances) Has(key InstanceKey) bool {
	_, ok := in.Get(key)
	return ok
}
