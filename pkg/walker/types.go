// Package walker enumerates a source tree, analyses every component file
// and collects the resulting records keyed by component identifier.
package walker

import (
	"errors"
	"sort"

	"github.com/gnana997/rendermap/pkg/analyzer"
)

// ErrInvalidRoot is returned when the scan root is missing or not a
// directory.
var ErrInvalidRoot = errors.New("invalid scan root")

// Options configures file discovery.
type Options struct {
	// Include glob patterns, matched against slash-separated paths
	// relative to the root.
	Include []string
	// Exclude glob patterns. A matching directory is not descended into.
	Exclude []string
	// Workers is the number of files analysed concurrently. Zero sizes the
	// pool from the CPU count.
	Workers int
}

// DefaultOptions matches plain script files and JSX files anywhere under
// the root. Nothing is excluded.
func DefaultOptions() Options {
	return Options{
		Include: []string{
			"**/*.js",
			"**/*.jsx",
		},
	}
}

// FileError records a qualifying file that could not be read.
type FileError struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error { return e.Err }

// Collision records two files that share a component identifier. The
// record from Kept replaced the one from Shadowed.
type Collision struct {
	Identifier string `json:"identifier"`
	Kept       string `json:"kept"`
	Shadowed   string `json:"shadowed"`
}

// Stats tracks walk metrics.
type Stats struct {
	FilesDiscovered int   `json:"files_discovered"`
	FilesAnalyzed   int   `json:"files_analyzed"`
	FilesSkipped    int   `json:"files_skipped"`
	CacheHits       int   `json:"cache_hits"`
	Components      int   `json:"components"`
	DiscoveryTimeMs int64 `json:"discovery_ms"`
	AnalysisTimeMs  int64 `json:"analysis_ms"`
}

// Collection is the result of a walk.
type Collection struct {
	// Root is the absolute scan root.
	Root       string
	Records    map[string]*analyzer.ComponentRecord
	Collisions []Collision
	Skipped    []FileError
	Stats      Stats
}

// Identifiers returns the record keys sorted by name.
func (c *Collection) Identifiers() []string {
	ids := make([]string, 0, len(c.Records))
	for id := range c.Records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
