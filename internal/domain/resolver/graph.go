// Package resolver builds the dependency graph between configured instances
// and computes a deterministic execution order over it.
package resolver

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/declarr/internal/domain/manager"
)

// Graph is a directed graph over configured instances. An edge records that
// one instance must be processed before another.
type Graph struct {
	nodes      map[manager.InstanceKey]bool
	dependsOn  map[manager.InstanceKey][]manager.InstanceKey // node -> nodes it runs after
	dependedBy map[manager.InstanceKey][]manager.InstanceKey // node -> nodes that run after it
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[manager.InstanceKey]bool),
		dependsOn:  make(map[manager.InstanceKey][]manager.InstanceKey),
		dependedBy: make(map[manager.InstanceKey][]manager.InstanceKey),
	}
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// AddNode adds an instance to the graph. Adding an existing node is a no-op;
// the node set is map-keyed, so duplicates cannot occur.
func (g *Graph) AddNode(key manager.InstanceKey) {
	g.nodes[key] = true
}

// Has reports whether the instance is a node of the graph.
func (g *Graph) Has(key manager.InstanceKey) bool {
	return g.nodes[key]
}

// AddDependency records that node must be processed after dep.
// Both endpoints must already be nodes of the graph. Recording the same
// dependency twice is a no-op.
func (g *Graph) AddDependency(node, dep manager.InstanceKey) error {
	if !g.nodes[node] {
		return fmt.Errorf("%w: %s", ErrUnknownNode, node)
	}
	if !g.nodes[dep] {
		return fmt.Errorf("%w: %s", ErrUnknownNode, dep)
	}

	for _, existing := range g.dependsOn[node] {
		if existing == dep {
			return nil
		}
	}
	g.dependsOn[node] = append(g.dependsOn[node], dep)
	g.dependedBy[dep] = append(g.dependedBy[dep], node)
	return nil
}

// DependenciesOf returns the instances that must be processed before node,
// sorted for deterministic ordering.
func (g *Graph) DependenciesOf(node manager.InstanceKey) []manager.InstanceKey {
	return sortedKeys(g.dependsOn[node])
}

// DependentsOf returns the instances that must be processed after node,
// sorted for deterministic ordering.
func (g *Graph) DependentsOf(node manager.InstanceKey) []manager.InstanceKey {
	return sortedKeys(g.dependedBy[node])
}

// Nodes returns all nodes sorted by plugin name, then instance name.
func (g *Graph) Nodes() []manager.InstanceKey {
	keys := make([]manager.InstanceKey, 0, len(g.nodes))
	for key := range g.nodes {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// sortedKeys returns a sorted copy, leaving the adjacency slice untouched.
func sortedKeys(keys []manager.InstanceKey) []manager.InstanceKey {
	out := make([]manager.InstanceKey, len(keys))
	copy(out, keys)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
