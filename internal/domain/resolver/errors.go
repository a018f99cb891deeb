package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/declarr/internal/domain/manager"
)

// ErrUnknownNode indicates an edge endpoint that is not a node of the graph.
var ErrUnknownNode = errors.New("instance is not in the dependency graph")

// DanglingDependencyError indicates a declared reference to an instance that
// is not part of the active configuration.
type DanglingDependencyError struct {
	// From is the instance declaring the reference.
	From manager.InstanceKey
	// Ref is the reference as declared, before plugin defaulting.
	Ref manager.Ref
	// Target is the resolved key the reference points at.
	Target manager.InstanceKey
}

func (e *DanglingDependencyError) Error() string {
	return fmt.Sprintf("%s references %s, which is not configured", e.From, e.Target)
}

// CyclicDependencyError indicates instances that depend on each other in a
// loop. Cycle holds the full loop in declaration order, with the starting
// instance repeated at the end.
type CyclicDependencyError struct {
	Cycle []manager.InstanceKey
}

func (e *CyclicDependencyError) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, key := range e.Cycle {
		parts[i] = key.String()
	}
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(parts, " -> "))
}

// IsDanglingDependency returns true if the error indicates a dangling reference.
func IsDanglingDependency(err error) bool {
	var danglingErr *DanglingDependencyError
	return errors.As(err, &danglingErr)
}

// IsCyclicDependency returns true if the error indicates a dependency cycle.
func IsCyclicDependency(err error) bool {
	var cyclicErr *CyclicDependencyError
	return errors.As(err, &cyclicErr)
}
