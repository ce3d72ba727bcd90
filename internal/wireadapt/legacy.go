package wireadapt

import (
	"github.com/dynascale/scalekit/chainerr"
	"github.com/dynascale/scalekit/internal/scalebuf"
	"github.com/dynascale/scalekit/metadata"
)

// LegacyVersion is the version discriminant byte this adapter handles:
// a portable type registry, but pallets carry three independent dispatch
// indices (call/event/error need not agree, per spec.md's ambiguity
// note) and no dispatch-error type, associated types, view functions,
// Runtime APIs or custom values — none of those existed on this wire
// version.
const LegacyVersion uint8 = 13

var legacyFeatures = palletFeatures{} // UnifiedIndices: false

// DecodeLegacy parses the body following LegacyVersion's discriminant
// byte.
func DecodeLegacy(cur *scalebuf.Cursor) (*metadata.Metadata, error) {
	const op = "wireadapt.DecodeLegacy"

	reg, err := decodeTypeRegistry(cur)
	if err != nil {
		return nil, chainerr.Wrap(op, err)
	}
	pallets, err := decodePallets(cur, legacyFeatures)
	if err != nil {
		return nil, chainerr.Wrap(op, err)
	}
	extrinsic, err := decodeExtrinsicFormat(cur)
	if err != nil {
		return nil, chainerr.Wrap(op, err)
	}
	outerEnums, err := decodeOuterEnums(cur)
	if err != nil {
		return nil, chainerr.Wrap(op, err)
	}

	md := metadata.New(reg)
	for _, p := range pallets {
		md.AddPallet(p)
	}
	md.SetExtrinsicFormat(extrinsic)
	md.SetOuterEnums(outerEnums)
	return md, nil
}

// EncodeLegacy is DecodeLegacy's structural inverse, used by fixtures and
// round-trip tests.
func EncodeLegacy(md *metadata.Metadata) []byte {
	buf := scalebuf.NewBuffer(256)
	encodeTypeRegistry(buf, md.Registry())
	encodePallets(buf, md.Pallets(), legacyFeatures)
	encodeExtrinsicFormat(buf, md.ExtrinsicFormat())
	encodeOuterEnums(buf, md.OuterEnums())
	return buf.Bytes()
}
