// Package depgraph builds the render-dependency graph between components
// and resolves the order in which they are reported.
package depgraph

import (
	"sort"

	"github.com/gnana997/rendermap/pkg/analyzer"
)

// Edge is a render dependency: From renders To.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph maps each component to the distinct tag names it renders.
//
// Edge targets are plain names and may not be nodes of the graph (native
// elements, library components). Node order is insertion order and is used
// to break ties when ordering.
type Graph struct {
	nodes []string
	edges map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{edges: make(map[string][]string)}
}

// Build creates the graph for a set of records. Nodes are added in sorted
// identifier order; each node's edges follow the first-seen tag order of
// its file.
func Build(records map[string]*analyzer.ComponentRecord) *Graph {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	g := New()
	for _, id := range ids {
		g.AddNode(id, records[id].TagOrder...)
	}
	return g
}

// AddNode adds id with the given edge targets. Duplicate targets are
// dropped. Adding an existing node appends any new targets.
func (g *Graph) AddNode(id string, targets ...string) {
	existing, ok := g.edges[id]
	if !ok {
		g.nodes = append(g.nodes, id)
		existing = []string{}
	}

	seen := make(map[string]bool, len(existing)+len(targets))
	for _, t := range existing {
		seen[t] = true
	}
	for _, t := range targets {
		if seen[t] {
			continue
		}
		seen[t] = true
		existing = append(existing, t)
	}
	g.edges[id] = existing
}

// Nodes returns the node identifiers in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Has reports whether id is a node.
func (g *Graph) Has(id string) bool {
	_, ok := g.edges[id]
	return ok
}

// Edges returns the edge targets of id, known or not.
func (g *Graph) Edges(id string) []string {
	return g.edges[id]
}

// Relevance counts the edges of id that point at nodes of the graph.
func (g *Graph) Relevance(id string) int {
	n := 0
	for _, t := range g.edges[id] {
		if g.Has(t) {
			n++
		}
	}
	return n
}

// InternalEdges returns every edge whose target is a node, in node order.
func (g *Graph) InternalEdges() []Edge {
	var out []Edge
	for _, from := range g.nodes {
		for _, to := range g.edges[from] {
			if g.Has(to) {
				out = append(out, Edge{From: from, To: to})
			}
		}
	}
	return out
}

// Dependents returns, for every node, the nodes that render it.
func (g *Graph) Dependents() map[string][]string {
	out := make(map[string][]string, len(g.nodes))
	for _, e := range g.InternalEdges() {
		out[e.To] = append(out[e.To], e.From)
	}
	return out
}
