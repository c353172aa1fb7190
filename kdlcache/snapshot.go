// Package kdlcache persists a parsed Document to a compact binary snapshot
// so a caller can skip re-lexing and re-building unchanged input. A
// snapshot is keyed by a blake2b-256 fingerprint of the source bytes it
// was built from; loading a snapshot whose format_version has drifted
// from the one this build understands is treated as a cache miss rather
// than a decode error.
package kdlcache

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/mod/semver"

	"github.com/kdl-lang/kdl/document"
)

// CurrentFormatVersion is the snapshot header format this build writes
// and expects to read. Bump it whenever the wirePayload shape changes
// incompatibly.
const CurrentFormatVersion = "v1.0.0"

const magic = "KDLC"

// ErrCacheMiss is returned by Load when the snapshot is well-formed CBOR
// but its format_version does not match CurrentFormatVersion: the caller
// is expected to fall back to a fresh parse, not treat this as a fatal
// error.
var ErrCacheMiss = errors.New("kdlcache: format version mismatch, cache miss")

// Snapshot is the result of a successful Load.
type Snapshot struct {
	Document    *document.Document
	Fingerprint [32]byte
}

// wireHeader is the on-disk envelope: magic and format_version are
// checked before the payload is ever decoded, so a foreign or
// incompatible file is rejected cheaply.
type wireHeader struct {
	Magic             string
	FormatVersion     string
	SourceFingerprint [32]byte
	Payload           []byte
}

// wirePayload mirrors document.Document's SoA fields with exported types
// cbor can walk directly. document.NodeHandle, document.StringRef,
// document.Range, document.Argument, and document.Property are already
// plain exported structs; only the pool's backing buffer needs an
// explicit accessor (document.StringPool.RawBytes/RestoreStringPool).
type wirePayload struct {
	Names           []document.StringRef
	TypeAnnotations []document.StringRef
	Parents         []document.NodeHandle
	FirstChild      []document.NodeHandle
	NextSibling     []document.NodeHandle
	Args            []document.Range
	Props           []document.Range
	Roots           []document.NodeHandle
	Pool            []byte
	Arguments       []document.Argument
	Properties      []document.Property
	Source          []byte
}

// Fingerprint returns the blake2b-256 digest of source, used both as the
// cache key Save embeds and as the value a caller recomputes over a
// candidate source to decide whether a loaded Snapshot is still valid.
func Fingerprint(source []byte) [32]byte {
	return blake2b.Sum256(source)
}

// Save writes a snapshot of doc, built from source, to w.
func Save(w io.Writer, doc *document.Document, source []byte) error {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return fmt.Errorf("kdlcache: build cbor encoder: %w", err)
	}

	payload := wirePayload{
		Names:           doc.Names,
		TypeAnnotations: doc.TypeAnnotations,
		Parents:         doc.Parents,
		FirstChild:      doc.FirstChild,
		NextSibling:     doc.NextSibling,
		Args:            doc.Args,
		Props:           doc.Props,
		Roots:           doc.Roots,
		Pool:            doc.Strings.RawBytes(),
		Arguments:       doc.Arguments,
		Properties:      doc.Properties,
		Source:          doc.Source,
	}
	payloadBytes, err := encMode.Marshal(&payload)
	if err != nil {
		return fmt.Errorf("kdlcache: encode payload: %w", err)
	}

	header := wireHeader{
		Magic:             magic,
		FormatVersion:     CurrentFormatVersion,
		SourceFingerprint: Fingerprint(source),
		Payload:           payloadBytes,
	}
	headerBytes, err := encMode.Marshal(&header)
	if err != nil {
		return fmt.Errorf("kdlcache: encode header: %w", err)
	}

	_, err = w.Write(headerBytes)
	return err
}

// Load reads a snapshot written by Save. A format_version mismatch
// yields (nil, ErrCacheMiss): the snapshot itself is intact, it simply
// predates or postdates the format this build speaks, so the caller
// should re-parse rather than treat the cache as corrupt.
func Load(r io.Reader) (*Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("kdlcache: read snapshot: %w", err)
	}

	var header wireHeader
	if err := cbor.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("kdlcache: decode header: %w", err)
	}
	if header.Magic != magic {
		return nil, fmt.Errorf("kdlcache: not a kdlcache snapshot (bad magic %q)", header.Magic)
	}
	if !semver.IsValid(header.FormatVersion) {
		return nil, fmt.Errorf("kdlcache: malformed format_version %q", header.FormatVersion)
	}
	if semver.Compare(header.FormatVersion, CurrentFormatVersion) != 0 {
		return nil, ErrCacheMiss
	}

	var payload wirePayload
	if err := cbor.Unmarshal(header.Payload, &payload); err != nil {
		return nil, fmt.Errorf("kdlcache: decode payload: %w", err)
	}

	doc := &document.Document{
		Names:           payload.Names,
		TypeAnnotations: payload.TypeAnnotations,
		Parents:         payload.Parents,
		FirstChild:      payload.FirstChild,
		NextSibling:     payload.NextSibling,
		Args:            payload.Args,
		Props:           payload.Props,
		Roots:           payload.Roots,
		Strings:         document.RestoreStringPool(payload.Pool),
		Arguments:       payload.Arguments,
		Properties:      payload.Properties,
		Source:          payload.Source,
	}

	return &Snapshot{Document: doc, Fingerprint: header.SourceFingerprint}, nil
}
