package analyzer

import (
	"bytes"
	"path"
	"strings"
)

// Analyze scans src line by line and aggregates the matches.
//
// The second return value reports whether src defines a component, i.e.
// whether any line carries a render marker. When it is false the usage is
// nil.
func Analyze(src []byte) (*Usage, bool) {
	usage := &Usage{
		Props: make(UsageMap),
		State: make(UsageMap),
		Tags:  make(UsageMap),
	}
	hasRender := false

	lineNo := 0
	for len(src) > 0 {
		var line []byte
		if i := bytes.IndexByte(src, '\n'); i >= 0 {
			line, src = src[:i], src[i+1:]
		} else {
			line, src = src, nil
		}
		lineNo++
		line = bytes.TrimSuffix(line, []byte{'\r'})

		m := ScanLine(string(line))
		for _, p := range m.Props {
			usage.Props.add(p, lineNo)
		}
		for _, s := range m.State {
			usage.State.add(s, lineNo)
		}
		for _, t := range m.Tags {
			if _, seen := usage.Tags[t]; !seen {
				usage.TagOrder = append(usage.TagOrder, t)
			}
			usage.Tags.add(t, lineNo)
		}
		if m.RenderMarker {
			hasRender = true
		}
	}

	if !hasRender {
		return nil, false
	}
	return usage, true
}

// Identifier derives a component identifier from a file name by removing
// its last extension.
func Identifier(fileName string) string {
	return strings.TrimSuffix(fileName, path.Ext(fileName))
}

// NewRecord builds the record for a component found at relPath, a
// slash-separated path relative to the scan root.
func NewRecord(relPath string, usage *Usage) *ComponentRecord {
	dir, file := path.Split(relPath)
	return &ComponentRecord{
		Identifier: Identifier(file),
		FileName:   file,
		Path:       relPath,
		Dir:        strings.TrimSuffix(dir, "/"),
		Usage:      *usage,
	}
}
