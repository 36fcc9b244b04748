package report

import (
	"io"

	"github.com/ddddddO/gtree"

	"github.com/gnana997/rendermap/pkg/depgraph"
)

const (
	cycleMarker    = " (cycle)"
	repeatedMarker = " (...)"
)

// WriteTree draws the render hierarchy under a root labelled title.
//
// Top-level entries are the components no other known component renders,
// in the given order; if every component is rendered by another one, all
// of them are listed. A component is expanded the first time it appears.
// Later appearances are marked "(...)", and a component reached again on
// its own branch is marked "(cycle)".
func WriteTree(w io.Writer, title string, g *depgraph.Graph, order []string) error {
	root := gtree.NewRoot(title)

	dependents := g.Dependents()
	var tops []string
	for _, id := range order {
		if len(dependents[id]) == 0 {
			tops = append(tops, id)
		}
	}
	if len(tops) == 0 {
		tops = order
	}

	t := &treeBuilder{
		graph:    g,
		expanded: make(map[string]bool, g.Len()),
		onPath:   make(map[string]bool),
	}
	for _, id := range tops {
		t.add(root, id)
	}

	return gtree.OutputFromRoot(w, root)
}

type treeBuilder struct {
	graph    *depgraph.Graph
	expanded map[string]bool
	onPath   map[string]bool
}

func (t *treeBuilder) add(parent *gtree.Node, id string) {
	switch {
	case t.onPath[id]:
		parent.Add(id + cycleMarker)
		return
	case t.expanded[id]:
		parent.Add(id + repeatedMarker)
		return
	}

	node := parent.Add(id)
	t.expanded[id] = true
	t.onPath[id] = true
	for _, child := range t.graph.Edges(id) {
		if t.graph.Has(child) {
			t.add(node, child)
		}
	}
	delete(t.onPath, id)
}
