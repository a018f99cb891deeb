package resolver

import "github.com/felixgeelhaar/declarr/internal/domain/manager"

// ExecutionOrder is a linear ordering of instances in which every instance
// appears after all of its dependencies.
type ExecutionOrder []manager.InstanceKey

// Strings returns the order in "plugin.instances[name]" form.
func (o ExecutionOrder) Strings() []string {
	out := make([]string, len(o))
	for i, key := range o {
		out[i] = key.String()
	}
	return out
}

// visit marks for the depth-first sort.
type mark int

const (
	unvisited mark = iota
	visiting
	visited
)

// Sort returns the instances in dependency order: dependencies first, then
// their dependents. Root and neighbor visits both walk in (plugin, instance)
// order, so equal graphs produce identical orders on every run. A cycle
// fails the sort with a *CyclicDependencyError carrying the complete loop;
// a partial order is never returned.
func (g *Graph) Sort() (ExecutionOrder, error) {
	s := &sorter{
		graph: g,
		marks: make(map[manager.InstanceKey]mark, len(g.nodes)),
		order: make(ExecutionOrder, 0, len(g.nodes)),
	}

	for _, key := range g.Nodes() {
		if s.marks[key] == unvisited {
			if err := s.visit(key); err != nil {
				return nil, err
			}
		}
	}

	return s.order, nil
}

// sorter carries the state of one depth-first traversal.
type sorter struct {
	graph *Graph
	marks map[manager.InstanceKey]mark
	stack []manager.InstanceKey
	order ExecutionOrder
}

func (s *sorter) visit(node manager.InstanceKey) error {
	s.marks[node] = visiting
	s.stack = append(s.stack, node)

	for _, dep := range s.graph.DependenciesOf(node) {
		switch s.marks[dep] {
		case visiting:
			// Back edge: the cycle is the stack from dep onward,
			// closed by repeating dep.
			return &CyclicDependencyError{Cycle: s.cycleFrom(dep)}
		case unvisited:
			if err := s.visit(dep); err != nil {
				return err
			}
		}
	}

	s.stack = s.stack[:len(s.stack)-1]
	s.marks[node] = visited
	s.order = append(s.order, node)
	return nil
}

// cycleFrom extracts the loop from the traversal stack, starting at the
// instance the back edge points at.
func (s *sorter) cycleFrom(start manager.InstanceKey) []manager.InstanceKey {
	from := 0
	for i, key := range s.stack {
		if key == start {
			from = i
			break
		}
	}

	cycle := make([]manager.InstanceKey, 0, len(s.stack)-from+1)
	cycle = append(cycle, s.stack[from:]...)
	cycle = append(cycle, start)
	return cycle
}
