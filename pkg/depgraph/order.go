package depgraph

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Mode selects how components are ordered.
type Mode string

const (
	ModeAlphabetical Mode = "alpha"
	ModeTopological  Mode = "topo"
)

// CyclePolicy decides what topological ordering does when the graph has a
// cycle.
type CyclePolicy string

const (
	// CycleFail returns a *CycleError and no ordering.
	CycleFail CyclePolicy = "fail"
	// CycleFallback orders alphabetically instead.
	CycleFallback CyclePolicy = "alpha"
	// CycleBreak ignores each back edge found by the traversal and keeps
	// going.
	CycleBreak CyclePolicy = "break"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeAlphabetical, ModeTopological:
		return m, nil
	}
	return "", fmt.Errorf("unknown order mode %q", s)
}

// ParseCyclePolicy validates a cycle policy name.
func ParseCyclePolicy(s string) (CyclePolicy, error) {
	switch p := CyclePolicy(strings.ToLower(s)); p {
	case CycleFail, CycleFallback, CycleBreak:
		return p, nil
	}
	return "", fmt.Errorf("unknown cycle policy %q", s)
}

// Alphabetical returns ids sorted case-insensitively. Names equal under
// case folding are ordered by their exact bytes.
func Alphabetical(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li != lj {
			return li < lj
		}
		return out[i] < out[j]
	})
	return out
}

// Topological orders the nodes of g so that every component comes after
// the components it renders. It fails with a *CycleError on the first
// cycle and returns no partial result.
func Topological(g *Graph) ([]string, error) {
	return topoSort(g, func(from, to string, path []string) error {
		return &CycleError{Node: to, Path: path}
	})
}

// visitState is the per-node traversal state.
type visitState uint8

const (
	unvisited visitState = iota
	visiting
	done
)

type frame struct {
	node string
	next int
}

// onBackEdge is called when the traversal reaches a node that is still
// being visited. path is the cycle closed by the edge from -> to. A nil
// return skips the edge.
type onBackEdge func(from, to string, path []string) error

// topoSort is a depth-first topological sort driven by an explicit stack.
//
// Start nodes are taken in ascending relevance order (ties keep node
// order), so components that render few other known components are visited
// first. Nodes are emitted when they finish, which puts dependencies first,
// so leaves and isolated components lead the result rather than trail it.
// Edges to unknown names are ignored.
func topoSort(g *Graph, backEdge onBackEdge) ([]string, error) {
	priority := g.Nodes()
	relevance := make(map[string]int, len(priority))
	for _, id := range priority {
		relevance[id] = g.Relevance(id)
	}
	sort.SliceStable(priority, func(i, j int) bool {
		return relevance[priority[i]] < relevance[priority[j]]
	})

	state := make(map[string]visitState, len(priority))
	order := make([]string, 0, len(priority))
	var stack []frame

	for _, start := range priority {
		if state[start] != unvisited {
			continue
		}
		state[start] = visiting
		stack = append(stack[:0], frame{node: start})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := g.Edges(top.node)

			if top.next == len(edges) {
				state[top.node] = done
				order = append(order, top.node)
				stack = stack[:len(stack)-1]
				continue
			}

			from, to := top.node, edges[top.next]
			top.next++

			if !g.Has(to) {
				continue
			}
			switch state[to] {
			case done:
				continue
			case visiting:
				if err := backEdge(from, to, cyclePath(stack, to)); err != nil {
					return nil, err
				}
				continue
			}

			state[to] = visiting
			stack = append(stack, frame{node: to})
		}
	}

	return order, nil
}

// cyclePath returns the stack slice starting at node, closed with node.
func cyclePath(stack []frame, node string) []string {
	start := 0
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].node == node {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		path = append(path, f.node)
	}
	return append(path, node)
}

// Resolution is the outcome of ordering a graph.
type Resolution struct {
	Order []string `json:"order"`
	// Mode is the requested mode.
	Mode Mode `json:"mode"`
	// Effective is the mode that produced Order. It differs from Mode only
	// when a cycle forced the alphabetical fallback.
	Effective Mode `json:"effective"`
	// Cycle is the first cycle found, if any.
	Cycle *CycleError `json:"cycle,omitempty"`
	// BrokenEdges lists the back edges ignored under CycleBreak.
	BrokenEdges []Edge `json:"broken_edges,omitempty"`
}

// Resolver orders graphs according to a mode and a cycle policy.
type Resolver struct {
	Mode        Mode
	CyclePolicy CyclePolicy
	Logger      *slog.Logger
}

// Resolve orders the nodes of g. The only error it returns is a
// *CycleError, under CycleFail.
func (r Resolver) Resolve(g *Graph) (*Resolution, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mode := r.Mode
	if mode == "" {
		mode = ModeAlphabetical
	}

	res := &Resolution{Mode: mode, Effective: mode}
	if mode == ModeAlphabetical {
		res.Order = Alphabetical(g.Nodes())
		return res, nil
	}

	switch r.CyclePolicy {
	case CycleBreak:
		order, err := topoSort(g, func(from, to string, path []string) error {
			if res.Cycle == nil {
				res.Cycle = &CycleError{Node: to, Path: path}
			}
			res.BrokenEdges = append(res.BrokenEdges, Edge{From: from, To: to})
			logger.Warn("ignoring render edge that closes a cycle",
				"from", from,
				"to", to,
				"cycle", strings.Join(path, " -> "))
			return nil
		})
		if err != nil {
			return nil, err
		}
		res.Order = order
		return res, nil

	case CycleFallback:
		order, err := Topological(g)
		if err == nil {
			res.Order = order
			return res, nil
		}
		var cycle *CycleError
		if !errors.As(err, &cycle) {
			return nil, err
		}
		logger.Warn("dependency cycle, falling back to alphabetical order",
			"node", cycle.Node,
			"cycle", strings.Join(cycle.Path, " -> "))
		res.Cycle = cycle
		res.Effective = ModeAlphabetical
		res.Order = Alphabetical(g.Nodes())
		return res, nil

	default:
		order, err := Topological(g)
		if err != nil {
			return nil, err
		}
		res.Order = order
		return res, nil
	}
}
