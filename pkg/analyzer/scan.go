package analyzer

import "regexp"

var (
	propsPattern  = regexp.MustCompile(`props\.(\w+)`)
	statePattern  = regexp.MustCompile(`state\.(\w+)`)
	renderPattern = regexp.MustCompile(`render\s*\(.*\)`)

	// `<` immediately followed by a word character, so closing tags
	// (`</Foo>`) never match.
	tagPattern = regexp.MustCompile(`<(\w+)`)
)

// LineMatches holds everything ScanLine found on one line.
type LineMatches struct {
	Props        []string
	State        []string
	Tags         []string
	RenderMarker bool
}

// ScanLine matches a single line against the props, state, render and tag
// patterns. Each kind is matched independently and every non-overlapping
// match is reported in order.
func ScanLine(line string) LineMatches {
	return LineMatches{
		Props:        captures(propsPattern, line),
		State:        captures(statePattern, line),
		Tags:         captures(tagPattern, line),
		RenderMarker: renderPattern.MatchString(line),
	}
}

func captures(re *regexp.Regexp, line string) []string {
	matches := re.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m[1]
	}
	return out
}
