package resolver

import (
	"fmt"

	"github.com/felixgeelhaar/declarr/internal/domain/manager"
)

// Build constructs the dependency graph for the given working set. Every
// configured instance becomes a node; every reference its manager declares
// becomes a dependency, the referenced instance ordered first.
//
// Build is pure over its inputs. A reference to an instance outside the
// working set fails the whole build with a *DanglingDependencyError; no
// partial graph is returned.
func Build(managers []manager.Manager, in manager.Instances) (*Graph, error) {
	byName := make(map[manager.PluginName]manager.Manager, len(managers))
	for _, m := range managers {
		byName[m.Name()] = m
	}

	g := NewGraph()
	for _, key := range in.Keys() {
		g.AddNode(key)
	}

	for _, key := range in.Keys() {
		m, ok := byName[key.Plugin]
		if !ok {
			return nil, fmt.Errorf("no manager registered for plugin %q", key.Plugin)
		}
		cfg, _ := in.Get(key)

		for _, ref := range m.Dependencies(cfg) {
			target := ref.Resolve(key.Plugin)
			if !in.Has(target) {
				return nil, &DanglingDependencyError{From: key, Ref: ref, Target: target}
			}
			if err := g.AddDependency(key, target); err != nil {
				return nil, err
			}
		}
	}

	return g, nil
}
