package kdl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdl-lang/kdl/kdl"
	"github.com/kdl-lang/kdl/event"
)

func drain(it *kdl.ChannelIterator) ([]event.Event, error) {
	var events []event.Event
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		events = append(events, e)
	}
	return events, it.Err()
}

func TestIterateYieldsBalancedStartEndPairs(t *testing.T) {
	it := kdl.Iterate([]byte(`node1 1 { child 2 }; node2 3`))
	events, err := drain(it)
	require.NoError(t, err)

	depth := 0
	maxDepth := 0
	starts, ends := 0, 0
	for _, e := range events {
		switch e.Kind {
		case event.StartNode:
			depth++
			starts++
			if depth > maxDepth {
				maxDepth = depth
			}
		case event.EndNode:
			depth--
			ends++
		}
	}
	assert.Equal(t, 0, depth)
	assert.Equal(t, starts, ends)
	assert.Equal(t, 3, starts)
	assert.Equal(t, 2, maxDepth)
}

func TestIterateSurfacesParseErrors(t *testing.T) {
	it := kdl.Iterate([]byte("node true=1"))
	_, err := drain(it)
	require.Error(t, err)
	var kerr *kdl.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kdl.GrammarError, kerr.Kind)
}

func TestIterateCloseBeforeEOFDoesNotHang(t *testing.T) {
	it := kdl.Iterate([]byte(`node1 1 { child 2 } node2 3`))
	_, ok := it.Next()
	require.True(t, ok)
	it.Close()
}
