package report

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/rendermap/pkg/analyzer"
	"github.com/gnana997/rendermap/pkg/depgraph"
	"github.com/gnana997/rendermap/pkg/pipeline"
	"github.com/gnana997/rendermap/pkg/util"
	"github.com/gnana997/rendermap/pkg/walker"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimPrefix(dedent.Dedent(content), "\n")), 0644))
}

func run(t *testing.T, root string, opts pipeline.Options) *pipeline.Result {
	t.Helper()
	p, err := pipeline.New(walker.DefaultOptions(), util.DiscardLogger())
	require.NoError(t, err)
	res, err := p.Run(context.Background(), root, opts)
	require.NoError(t, err)
	return res
}

func TestFormatRecord(t *testing.T) {
	rec := analyzer.NewRecord("src/ui/Button.jsx", &analyzer.Usage{
		Props: analyzer.UsageMap{"size": {9}, "label": {3, 7}},
		State: analyzer.UsageMap{"hover": {4}},
		Tags:  analyzer.UsageMap{"Icon": {2}, "Badge": {5, 5}},
	})

	want := "Button.jsx (/src/ui)\n" +
		"    label: [3, 7]\n" +
		"    size: [9]\n" +
		"\n" +
		"    state.hover: [4]\n" +
		"\n" +
		"    <Badge>: [5, 5]\n" +
		"    <Icon>: [2]\n" +
		"\n"
	assert.Equal(t, want, FormatRecord(rec))
}

func TestFormatRecord_NoStateNoTags(t *testing.T) {
	rec := analyzer.NewRecord("App.js", &analyzer.Usage{
		Props: analyzer.UsageMap{"title": {1}},
		State: analyzer.UsageMap{},
		Tags:  analyzer.UsageMap{},
	})
	assert.Equal(t, "App.js (/)\n    title: [1]\n\n", FormatRecord(rec))
}

func TestWriteText_ButtonScenario(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "Button.jsx", `
		export default class Button extends React.Component {
		  render() { return <Icon/>; }
		  get label() { return this.props.label; }
		  get hover() { return this.state.hover; }
		}
	`)

	res := run(t, tmp, pipeline.DefaultOptions())

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, res.Collection.Records, res.Resolution.Order))

	want := "Button.jsx (/)\n" +
		"    label: [3]\n" +
		"\n" +
		"    state.hover: [4]\n" +
		"\n" +
		"    <Icon>: [2]\n" +
		"\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteText_OrderAndIdempotence(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "App.jsx", "render() { return <Page/>; }\n")
	writeFile(t, tmp, "pages/Page.jsx", "render() { return <Row/>; }\n")
	writeFile(t, tmp, "pages/Row.jsx", "render() { return <td>{this.props.cell}</td>; }\n")

	opts := pipeline.Options{Mode: depgraph.ModeTopological}

	render := func() string {
		res := run(t, tmp, opts)
		var buf bytes.Buffer
		require.NoError(t, WriteText(&buf, res.Collection.Records, res.Resolution.Order))
		return buf.String()
	}

	first := render()
	assert.Equal(t, first, render())

	rowAt := strings.Index(first, "Row.jsx (/pages)")
	pageAt := strings.Index(first, "Page.jsx (/pages)")
	appAt := strings.Index(first, "App.jsx (/)")
	require.True(t, rowAt >= 0 && pageAt >= 0 && appAt >= 0, first)
	assert.Less(t, rowAt, pageAt)
	assert.Less(t, pageAt, appAt)
}

func TestWriteText_SkipsUnknownIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, map[string]*analyzer.ComponentRecord{}, []string{"Ghost"}))
	assert.Empty(t, buf.String())
}

func TestWriteJSON(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "A.jsx", "render() { return <B/>; }\n")
	writeFile(t, tmp, "B.jsx", "render() { return <A/>; }\n")

	res := run(t, tmp, pipeline.Options{Mode: depgraph.ModeTopological, CyclePolicy: depgraph.CycleBreak})

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, res))

	var got JSONReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, depgraph.ModeTopological, got.Effective)
	assert.Equal(t, []string{"B", "A"}, got.Order)
	require.Len(t, got.Components, 2)
	assert.Equal(t, "B", got.Components[0].Identifier)
	assert.Equal(t, []int{1}, got.Components[0].Tags["A"])
	assert.Equal(t, []depgraph.Edge{{From: "A", To: "B"}, {From: "B", To: "A"}}, got.Edges)
	assert.Equal(t, []depgraph.Edge{{From: "B", To: "A"}}, got.BrokenEdges)
	require.NotNil(t, got.Cycle)
	assert.Equal(t, "A", got.Cycle.Node)
}

func TestWriteJSON_EmptyTree(t *testing.T) {
	res := run(t, t.TempDir(), pipeline.DefaultOptions())

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, res))
	assert.Contains(t, buf.String(), `"order": []`)
	assert.Contains(t, buf.String(), `"components": []`)
	assert.NotContains(t, buf.String(), "cycle")
}

func TestWriteTree(t *testing.T) {
	g := depgraph.New()
	g.AddNode("App", "Header", "Footer", "div")
	g.AddNode("Header", "Logo")
	g.AddNode("Footer", "Logo")
	g.AddNode("Logo")

	var buf bytes.Buffer
	require.NoError(t, WriteTree(&buf, "src", g, []string{"Logo", "Header", "Footer", "App"}))

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6, out)
	assert.Equal(t, "src", lines[0])
	assert.Contains(t, lines[1], "App")
	assert.Contains(t, lines[2], "Header")
	assert.Contains(t, lines[3], "Logo")
	assert.Contains(t, lines[4], "Footer")
	assert.Contains(t, lines[5], "Logo (...)")
	assert.NotContains(t, out, "div")
}

func TestWriteTree_Cycle(t *testing.T) {
	g := depgraph.New()
	g.AddNode("A", "B")
	g.AddNode("B", "A")

	var buf bytes.Buffer
	require.NoError(t, WriteTree(&buf, "root", g, []string{"A", "B"}))

	out := buf.String()
	assert.Contains(t, out, "A (cycle)")
	assert.Contains(t, out, "B (...)")
}
