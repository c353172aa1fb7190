package build

import (
	"strings"
	"testing"

	"github.com/kdl-lang/kdl/document"
	"github.com/kdl-lang/kdl/internal/structscan"
	"github.com/kdl-lang/kdl/internal/token"
	"github.com/stretchr/testify/require"
)

const sample = `node1 "hello" 42 key="value" {
  child1 (u8)5
  /-elided-child 1 2 3
  child2 1.5 flag=#true {
    grandchild #null
  }
  /-{
    fully-elided 1 2 3
  }
}
`

func parseViaTokens(t *testing.T, src string) *document.Document {
	t.Helper()
	tz := token.New(strings.NewReader(src), 0, nil)
	sink := NewDocumentSink()
	require.NoError(t, FromTokens(tz, DefaultConfig(), sink))
	return sink.Document()
}

func parseViaIndex(t *testing.T, src string) *document.Document {
	t.Helper()
	idx, err := structscan.ScanAll([]byte(src), 0)
	require.NoError(t, err)
	sink := NewDocumentSink()
	require.NoError(t, FromIndex([]byte(src), idx, DefaultConfig(), sink))
	return sink.Document()
}

func assertSampleShape(t *testing.T, d *document.Document) {
	t.Helper()
	require.Len(t, d.Roots, 1)
	root := d.Roots[0]
	require.Equal(t, "node1", d.NodeName(root))
	require.Len(t, d.ArgumentsOf(root), 2)
	require.Len(t, d.PropertiesOf(root), 1)

	children := d.Children(root)
	require.Len(t, children, 2, "the elided child and elided children block must not appear")
	require.Equal(t, "child1", d.NodeName(children[0]))
	child1Args := d.ArgumentsOf(children[0])
	require.Len(t, child1Args, 1)
	require.Equal(t, "u8", string(d.Strings.Bytes(child1Args[0].TypeAnnotation, d.Source)))

	require.Equal(t, "child2", d.NodeName(children[1]))
	grandchildren := d.Children(children[1])
	require.Len(t, grandchildren, 1)
	require.Equal(t, "grandchild", d.NodeName(grandchildren[0]))
	require.Equal(t, document.KindNull, d.ArgumentsOf(grandchildren[0])[0].Value.Kind)
}

func TestTokenDrivenBuilderShapesDocument(t *testing.T) {
	assertSampleShape(t, parseViaTokens(t, sample))
}

func TestIndexDrivenBuilderShapesDocument(t *testing.T) {
	assertSampleShape(t, parseViaIndex(t, sample))
}

func TestBothBuilderPathsAgree(t *testing.T) {
	byTokens := parseViaTokens(t, sample)
	byIndex := parseViaIndex(t, sample)
	require.Equal(t, len(byTokens.Roots), len(byIndex.Roots))
	require.Equal(t, byTokens.NodeName(byTokens.Roots[0]), byIndex.NodeName(byIndex.Roots[0]))
	require.Equal(t, len(byTokens.ArgumentsOf(byTokens.Roots[0])), len(byIndex.ArgumentsOf(byIndex.Roots[0])))
}

func TestWhitespaceRequiredBeforeEntry(t *testing.T) {
	tz := token.New(strings.NewReader("node\"no-space-before-this-arg\""), 0, nil)
	err := FromTokens(tz, DefaultConfig(), NewDocumentSink())
	require.Error(t, err)
}

func TestNoEntriesAfterChildrenBlock(t *testing.T) {
	tz := token.New(strings.NewReader("node {\n} 1"), 0, nil)
	err := FromTokens(tz, DefaultConfig(), NewDocumentSink())
	require.Error(t, err)
}

func TestMaxDepthEnforced(t *testing.T) {
	tz := token.New(strings.NewReader("a { b { c {\n}\n}\n}"), 0, nil)
	cfg := Config{MaxDepth: 1}
	err := FromTokens(tz, cfg, NewDocumentSink())
	require.Error(t, err)
}

func TestSlashdashedChildrenBlockBeforeRealBlockIsAllowed(t *testing.T) {
	tz := token.New(strings.NewReader("node /-{\n  a 1\n} {\n  b 2\n}"), 0, nil)
	sink := NewDocumentSink()
	require.NoError(t, FromTokens(tz, DefaultConfig(), sink))
	d := sink.Document()
	children := d.Children(d.Roots[0])
	require.Len(t, children, 1, "only the real children block's children should appear")
	require.Equal(t, "b", d.NodeName(children[0]))
}

func TestSlashdashedChildrenBlockAfterRealBlockIsAllowed(t *testing.T) {
	tz := token.New(strings.NewReader("node {\n  b 2\n} /-{\n  a 1\n}"), 0, nil)
	sink := NewDocumentSink()
	require.NoError(t, FromTokens(tz, DefaultConfig(), sink))
	d := sink.Document()
	children := d.Children(d.Roots[0])
	require.Len(t, children, 1, "only the real children block's children should appear")
	require.Equal(t, "b", d.NodeName(children[0]))
}

func TestMultipleSlashdashedChildrenBlocksAroundOneRealBlockAreAllowed(t *testing.T) {
	tz := token.New(strings.NewReader("node /-{\n  a 1\n} {\n  b 2\n} /-{\n  c 3\n}"), 0, nil)
	err := FromTokens(tz, DefaultConfig(), NewDocumentSink())
	require.NoError(t, err)
}

func TestTwoRealChildrenBlocksAreRejected(t *testing.T) {
	tz := token.New(strings.NewReader("node {\n  a 1\n} {\n  b 2\n}"), 0, nil)
	err := FromTokens(tz, DefaultConfig(), NewDocumentSink())
	require.Error(t, err)
}

func TestNoEntriesAfterSlashdashedChildrenBlock(t *testing.T) {
	tz := token.New(strings.NewReader("node /-{\n} 1"), 0, nil)
	err := FromTokens(tz, DefaultConfig(), NewDocumentSink())
	require.Error(t, err, "entries still aren't allowed after a slashdashed children block")
}

func TestBothBuilderPathsRejectMalformedUTF8InString(t *testing.T) {
	src := "node \"a" + string([]byte{0xff}) + "b\""

	tz := token.New(strings.NewReader(src), 0, nil)
	tokenErr := FromTokens(tz, DefaultConfig(), NewDocumentSink())
	require.Error(t, tokenErr, "streaming path must reject invalid UTF-8 rather than substitute U+FFFD")

	idx, err := structscan.ScanAll([]byte(src), 0)
	require.NoError(t, err)
	indexErr := FromIndex([]byte(src), idx, DefaultConfig(), NewDocumentSink())
	require.Error(t, indexErr, "index-driven path must reject invalid UTF-8 the same way")
}
