package kdl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdl-lang/kdl/kdl"
)

func roundTrip(t *testing.T, source string, opts ...kdl.ParseOption) string {
	t.Helper()
	doc, err := kdl.Parse([]byte(source), opts...)
	require.NoError(t, err)
	out, err := kdl.SerializeToBytes(doc)
	require.NoError(t, err)
	return string(out)
}

func TestScenarioBasicNode(t *testing.T) {
	got := roundTrip(t, `node 42 key="value" { child #true }`)
	assert.Equal(t, "node 42 key=value {\n    child #true\n}\n", got)
}

func TestScenarioSlashdashSiblingElided(t *testing.T) {
	got := roundTrip(t, "/-skipped\nkept")
	assert.Equal(t, "kept\n", got)
}

func TestScenarioTypeAnnotations(t *testing.T) {
	got := roundTrip(t, `(type)node (int)42 key=(str)"v"`)
	assert.Equal(t, "(type)node (int)42 key=(str)v\n", got)
}

func TestScenarioMultilineStringDedent(t *testing.T) {
	src := "node \"\"\"\n    hey\n   everyone\n     how goes?\n  \"\"\"\n"
	got := roundTrip(t, src)
	assert.Equal(t, "node \"  hey\\n everyone\\n   how goes?\"\n", got)
}

func TestScenarioFloatOverflowPreservesOriginal(t *testing.T) {
	got := roundTrip(t, "node 1.23E+1000")
	assert.Equal(t, "node 1.23E+1000\n", got)
}

func TestScenarioBareKeywordAsPropertyKeyIsAnError(t *testing.T) {
	_, err := kdl.Parse([]byte("node true=1"))
	require.Error(t, err)
	var kerr *kdl.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kdl.GrammarError, kerr.Kind)
}

func TestParseStrategiesAgree(t *testing.T) {
	src := `node1 "hello" 42 key="value" {
  child1 (u8)5
  child2 1.5 flag=#true {
    grandchild #null
  }
}
`
	streamed, err := kdl.Parse([]byte(src), kdl.WithStrategy(kdl.StrategyStreaming))
	require.NoError(t, err)
	indexed, err := kdl.Parse([]byte(src), kdl.WithStrategy(kdl.StrategyStructuralIndex))
	require.NoError(t, err)
	preprocessed, err := kdl.Parse([]byte(src), kdl.WithStrategy(kdl.StrategyPreprocessed))
	require.NoError(t, err)

	a, err := kdl.SerializeToBytes(streamed)
	require.NoError(t, err)
	b, err := kdl.SerializeToBytes(indexed)
	require.NoError(t, err)
	c, err := kdl.SerializeToBytes(preprocessed)
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b))
	assert.Equal(t, string(a), string(c))
}

func TestParseReaderStreamingMatchesParse(t *testing.T) {
	src := `node 1 2 3 { child "a" }`
	byBytes, err := kdl.Parse([]byte(src))
	require.NoError(t, err)
	byReader, err := kdl.ParseReader(strings.NewReader(src))
	require.NoError(t, err)

	a, err := kdl.SerializeToBytes(byBytes)
	require.NoError(t, err)
	b, err := kdl.SerializeToBytes(byReader)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestParseReaderStructuralIndexBuffersFully(t *testing.T) {
	src := `node 1 2 3 { child "a" }`
	doc, err := kdl.ParseReader(strings.NewReader(src), kdl.WithStrategy(kdl.StrategyStructuralIndex))
	require.NoError(t, err)
	out, err := kdl.SerializeToBytes(doc)
	require.NoError(t, err)
	assert.Equal(t, "node 1 2 3 {\n    child a\n}\n", string(out))
}

func TestMaxDepthExceededIsResourceError(t *testing.T) {
	_, err := kdl.Parse([]byte("a { b {\n}\n}"), kdl.WithMaxDepth(0))
	require.Error(t, err)
	var kerr *kdl.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kdl.ResourceError, kerr.Kind)
}

func TestUnknownHashKeywordSuggestsNearestMatch(t *testing.T) {
	_, err := kdl.Parse([]byte("node #tru"))
	require.Error(t, err)
	var kerr *kdl.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kdl.LexicalError, kerr.Kind)
	assert.Equal(t, "true", kerr.Suggestion)
}
