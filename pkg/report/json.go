package report

import (
	"encoding/json"
	"io"

	"github.com/gnana997/rendermap/pkg/analyzer"
	"github.com/gnana997/rendermap/pkg/depgraph"
	"github.com/gnana997/rendermap/pkg/pipeline"
	"github.com/gnana997/rendermap/pkg/walker"
)

// JSONReport is the machine-readable form of a pipeline result. It holds
// no timings, so equal trees produce equal reports.
type JSONReport struct {
	Root        string                      `json:"root"`
	Mode        depgraph.Mode               `json:"mode"`
	Effective   depgraph.Mode               `json:"effective"`
	Order       []string                    `json:"order"`
	Components  []*analyzer.ComponentRecord `json:"components"`
	Edges       []depgraph.Edge             `json:"edges"`
	Collisions  []walker.Collision          `json:"collisions,omitempty"`
	Skipped     []SkippedFile               `json:"skipped,omitempty"`
	Cycle       *depgraph.CycleError        `json:"cycle,omitempty"`
	BrokenEdges []depgraph.Edge             `json:"broken_edges,omitempty"`
}

// SkippedFile is a file the walk could not read.
type SkippedFile struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// NewJSONReport converts a pipeline result. Components follow the resolved
// order.
func NewJSONReport(res *pipeline.Result) *JSONReport {
	coll := res.Collection
	rep := &JSONReport{
		Root:        coll.Root,
		Mode:        res.Resolution.Mode,
		Effective:   res.Resolution.Effective,
		Order:       res.Resolution.Order,
		Components:  make([]*analyzer.ComponentRecord, 0, len(res.Resolution.Order)),
		Edges:       res.Graph.InternalEdges(),
		Collisions:  coll.Collisions,
		Cycle:       res.Resolution.Cycle,
		BrokenEdges: res.Resolution.BrokenEdges,
	}
	if rep.Order == nil {
		rep.Order = []string{}
	}
	if rep.Edges == nil {
		rep.Edges = []depgraph.Edge{}
	}
	for _, id := range res.Resolution.Order {
		if rec, ok := coll.Records[id]; ok {
			rep.Components = append(rep.Components, rec)
		}
	}
	for _, s := range coll.Skipped {
		rep.Skipped = append(rep.Skipped, SkippedFile{Path: s.Path, Error: s.Err.Error()})
	}
	return rep
}

// WriteJSON writes the indented JSON report.
func WriteJSON(w io.Writer, res *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewJSONReport(res))
}
