// Package wire turns on-chain SCALE-encoded metadata bytes into a
// metadata.Metadata, trying each of the byte envelopes a chain might
// emit in turn and converging every supported wire version on the same
// normalized model.
//
// Grounded on the teacher's internal/format (signature + version-field
// dispatch) and internal/reader (try-this-then-that resolution with
// accumulated diagnostics, see internal/reader/diagnose.go) — and, in the
// domain itself, on original_source/metadata/src/lib.rs's
// decode_runtime_metadata, which tries the prefixed envelope, then the
// bare version-discriminated payload, then recursively unwraps an
// opaque-bytes-of-bytes wrapping, in exactly that order.
package wire

import (
	"github.com/dynascale/scalekit/chainerr"
	"github.com/dynascale/scalekit/internal/scalebuf"
	"github.com/dynascale/scalekit/internal/wireadapt"
	"github.com/dynascale/scalekit/metadata"
)

// magic is the four-byte signature ("meta") that precedes the version
// byte in the prefixed envelope.
var magic = [4]byte{'m', 'e', 't', 'a'}

// Decode converts SCALE-encoded metadata bytes into a Metadata, trying
// the prefixed envelope, then a bare version-discriminated payload, then
// an opaque-bytes-of-bytes wrapping, accumulating each attempt's failure
// so the final error names everything that was tried.
func Decode(b []byte) (*metadata.Metadata, error) {
	const op = "wire.Decode"

	var attempts []error

	if md, err := tryPrefixed(b); err == nil {
		return md, nil
	} else {
		attempts = append(attempts, err)
	}

	if md, err := tryBare(b); err == nil {
		return md, nil
	} else {
		attempts = append(attempts, err)
	}

	if md, err := tryOpaque(b); err == nil {
		return md, nil
	} else {
		attempts = append(attempts, err)
	}

	return nil, chainerr.Inputf(op, "no supported wire envelope matched (prefixed: %v; bare: %v; opaque: %v)",
		attempts[0], attempts[1], attempts[2])
}

func tryPrefixed(b []byte) (*metadata.Metadata, error) {
	const op = "wire.tryPrefixed"
	if len(b) < 5 || b[0] != magic[0] || b[1] != magic[1] || b[2] != magic[2] || b[3] != magic[3] {
		return nil, chainerr.Shapef(op, 0, "", "missing %q magic", string(magic[:]))
	}
	version := b[4]
	cur := scalebuf.NewCursor(b[5:])
	md, err := dispatchVersion(version, cur)
	if err != nil {
		return nil, chainerr.Wrap(op, err)
	}
	return md, nil
}

func tryBare(b []byte) (*metadata.Metadata, error) {
	const op = "wire.tryBare"
	if len(b) < 1 {
		return nil, chainerr.Inputf(op, "empty input")
	}
	version := b[0]
	cur := scalebuf.NewCursor(b[1:])
	md, err := dispatchVersion(version, cur)
	if err != nil {
		return nil, chainerr.Wrap(op, err)
	}
	return md, nil
}

func tryOpaque(b []byte) (*metadata.Metadata, error) {
	const op = "wire.tryOpaque"
	cur := scalebuf.NewCursor(b)
	n, err := cur.Compact()
	if err != nil {
		return nil, chainerr.Wrap(op, err)
	}
	if !n.IsUint64() || n.Uint64() != uint64(cur.Remaining()) {
		return nil, chainerr.Shapef(op, 0, "", "compact length %s does not match remaining input (%d bytes)", n.String(), cur.Remaining())
	}
	md, err := Decode(cur.Rest())
	if err != nil {
		return nil, chainerr.Wrap(op, err)
	}
	return md, nil
}

func dispatchVersion(version uint8, cur *scalebuf.Cursor) (*metadata.Metadata, error) {
	const op = "wire.dispatchVersion"
	switch version {
	case wireadapt.CurrentVersion:
		return wireadapt.DecodeCurrent(cur)
	case wireadapt.IntermediateVersion:
		return wireadapt.DecodeIntermediate(cur)
	case wireadapt.LegacyVersion:
		return wireadapt.DecodeLegacy(cur)
	default:
		return nil, chainerr.NotFoundf(op, idVersionName(version), "supported wire versions")
	}
}

func idVersionName(v uint8) string {
	const hexDigits = "0123456789abcdef"
	return "0x" + string([]byte{hexDigits[v>>4], hexDigits[v&0xf]})
}
