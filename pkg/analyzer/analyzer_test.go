package analyzer

import (
	"strings"
	"testing"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func source(s string) []byte {
	return []byte(strings.TrimPrefix(dedent.Dedent(s), "\n"))
}

func TestAnalyze_ButtonComponent(t *testing.T) {
	src := source(`
		class Button extends React.Component {
		  render() { return <Icon/>; }
		  label() { return this.props.label; }
		  hovered() { return this.state.hover; }
		  title() { return this.props.label; }
		}
	`)

	usage, ok := Analyze(src)
	require.True(t, ok)
	require.NotNil(t, usage)

	assert.Equal(t, UsageMap{"label": {3, 5}}, usage.Props)
	assert.Equal(t, UsageMap{"hover": {4}}, usage.State)
	assert.Equal(t, UsageMap{"Icon": {2}}, usage.Tags)
	assert.Equal(t, []string{"Icon"}, usage.TagOrder)
}

func TestAnalyze_NotAComponent(t *testing.T) {
	src := source(`
		export function format(props) {
		  return props.value.toFixed(2) + "<b>";
		}
	`)

	usage, ok := Analyze(src)
	assert.False(t, ok)
	assert.Nil(t, usage)
}

func TestAnalyze_TagOrderIsFirstSeen(t *testing.T) {
	src := source(`
		render() {
		  return (
		    <View>
		      <Text>{this.props.title}</Text>
		      <Avatar/>
		      <Text>{this.props.subtitle}</Text>
		    </View>
		  );
		}
	`)

	usage, ok := Analyze(src)
	require.True(t, ok)

	assert.Equal(t, []string{"View", "Text", "Avatar"}, usage.TagOrder)
	assert.Equal(t, []int{4, 6}, usage.Tags["Text"])
	assert.Equal(t, []string{"Avatar", "Text", "View"}, usage.Tags.SortedKeys())
	assert.Equal(t, []string{"subtitle", "title"}, usage.Props.SortedKeys())
}

func TestAnalyze_DuplicateOnOneLine(t *testing.T) {
	usage, ok := Analyze([]byte("render() { return this.props.a + this.props.a; }\n"))
	require.True(t, ok)
	assert.Equal(t, []int{1, 1}, usage.Props["a"])
}

func TestAnalyze_CRLFAndNoTrailingNewline(t *testing.T) {
	usage, ok := Analyze([]byte("render() {\r\n\r\nreturn <Row/>;\r\n}"))
	require.True(t, ok)
	assert.Equal(t, []int{3}, usage.Tags["Row"])
}

func TestAnalyze_Empty(t *testing.T) {
	usage, ok := Analyze(nil)
	assert.False(t, ok)
	assert.Nil(t, usage)
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "Button", Identifier("Button.jsx"))
	assert.Equal(t, "index.android", Identifier("index.android.js"))
	assert.Equal(t, "Makefile", Identifier("Makefile"))
}

func TestNewRecord(t *testing.T) {
	usage := &Usage{Props: UsageMap{}, State: UsageMap{}, Tags: UsageMap{}}

	rec := NewRecord("src/ui/Button.jsx", usage)
	assert.Equal(t, "Button", rec.Identifier)
	assert.Equal(t, "Button.jsx", rec.FileName)
	assert.Equal(t, "src/ui", rec.Dir)

	rec = NewRecord("App.js", usage)
	assert.Equal(t, "App", rec.Identifier)
	assert.Equal(t, "", rec.Dir)
}
