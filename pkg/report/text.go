// Package report renders analysis results as text, JSON or a render tree.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gnana997/rendermap/pkg/analyzer"
)

// WriteText writes one block per component in the given order. Identifiers
// without a record are skipped.
func WriteText(w io.Writer, records map[string]*analyzer.ComponentRecord, order []string) error {
	bw := bufio.NewWriter(w)
	for _, id := range order {
		rec, ok := records[id]
		if !ok {
			continue
		}
		// Blocks end with a blank line and are followed by one more.
		if _, err := bw.WriteString(FormatRecord(rec) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatRecord renders the display block of a single component:
//
//	Button.jsx (/src/ui)
//	    label: [3, 9]
//
//	    state.hover: [4]
//
//	    <Icon>: [2]
func FormatRecord(rec *analyzer.ComponentRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (/%s)\n", rec.FileName, rec.Dir)

	for _, name := range rec.Props.SortedKeys() {
		fmt.Fprintf(&b, "    %s: %s\n", name, formatLines(rec.Props[name]))
	}

	if len(rec.State) > 0 {
		b.WriteString("\n")
	}
	for _, name := range rec.State.SortedKeys() {
		fmt.Fprintf(&b, "    state.%s: %s\n", name, formatLines(rec.State[name]))
	}

	if len(rec.Tags) > 0 {
		b.WriteString("\n")
	}
	for _, name := range rec.Tags.SortedKeys() {
		fmt.Fprintf(&b, "    <%s>: %s\n", name, formatLines(rec.Tags[name]))
	}

	b.WriteString("\n")
	return b.String()
}

func formatLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, n := range lines {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
