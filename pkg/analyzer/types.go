// Package analyzer extracts props, state and rendered tags from React
// component sources using line-level pattern matching.
//
// There is no grammar awareness: matches inside comments and string
// literals are reported like any other match.
package analyzer

import "sort"

// UsageMap maps an identifier (prop, state field or tag name) to the
// 1-based line numbers where it occurs, in order of appearance.
// A name used twice on one line appears twice.
type UsageMap map[string][]int

// SortedKeys returns the identifiers sorted by name.
func (m UsageMap) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m UsageMap) add(name string, line int) {
	m[name] = append(m[name], line)
}

// Usage is what a single component file reads and renders.
type Usage struct {
	Props UsageMap `json:"props"`
	State UsageMap `json:"state"`
	Tags  UsageMap `json:"tags"`

	// TagOrder lists Tags keys in first-seen order. Dependency edges are
	// built from it.
	TagOrder []string `json:"-"`
}

// ComponentRecord is one analysed component file.
type ComponentRecord struct {
	// Identifier is the file name without its last extension.
	Identifier string `json:"identifier"`
	FileName   string `json:"file"`
	// Path is slash-separated and relative to the scan root.
	Path string `json:"path"`
	// Dir is the directory part of Path, "" for files at the root.
	Dir string `json:"dir"`

	Usage
}
