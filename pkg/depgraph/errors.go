package depgraph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCyclicDependency is wrapped by every CycleError.
var ErrCyclicDependency = errors.New("component dependency graph is not a DAG")

// CycleError reports a cycle found while ordering topologically.
type CycleError struct {
	// Node is the first node reached again while its own visit was still
	// in progress.
	Node string `json:"node"`
	// Path is the cycle as found: Node, the nodes it renders down to the
	// one that rendered Node again, then Node.
	Path []string `json:"path"`
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: at %s (%s)", ErrCyclicDependency, e.Node, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCyclicDependency }
