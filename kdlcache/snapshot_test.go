package kdlcache_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdl-lang/kdl/kdl"
	"github.com/kdl-lang/kdl/kdlcache"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	src := []byte(`node1 "hello" 42 key="value" {
    child1 (u8)5
    child2 1.5 flag=#true
}
`)
	doc, err := kdl.Parse(src)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, kdlcache.Save(&buf, doc, src))

	snap, err := kdlcache.Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, kdlcache.Fingerprint(src), snap.Fingerprint)

	wantOut, err := kdl.SerializeToBytes(doc)
	require.NoError(t, err)
	gotOut, err := kdl.SerializeToBytes(snap.Document)
	require.NoError(t, err)
	assert.Equal(t, string(wantOut), string(gotOut))
}

func TestLoadRejectsWrongMagic(t *testing.T) {
	_, err := kdlcache.Load(bytes.NewReader([]byte("not a snapshot")))
	require.Error(t, err)
}

func TestLoadFormatVersionMismatchIsCacheMiss(t *testing.T) {
	src := []byte("node 1\n")
	doc, err := kdl.Parse(src)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, kdlcache.Save(&buf, doc, src))

	raw := buf.Bytes()
	// Flip the embedded format_version string to something that parses as
	// valid semver but doesn't match CurrentFormatVersion, by relying on
	// the fact that a freshly Saved header always contains the literal
	// current version string.
	patched := bytes.Replace(raw, []byte(kdlcache.CurrentFormatVersion), []byte("v9.9.9"), 1)
	require.NotEqual(t, raw, patched, "fixture must actually contain the version string to patch")

	_, err = kdlcache.Load(bytes.NewReader(patched))
	require.ErrorIs(t, err, kdlcache.ErrCacheMiss)
}

func TestFingerprintIsDeterministic(t *testing.T) {
	src := []byte("node 1 2 3\n")
	assert.Equal(t, kdlcache.Fingerprint(src), kdlcache.Fingerprint(src))
	assert.NotEqual(t, kdlcache.Fingerprint(src), kdlcache.Fingerprint([]byte("node 1 2 4\n")))
}
