package wireadapt

import (
	"github.com/dynascale/scalekit/chainerr"
	"github.com/dynascale/scalekit/internal/scalebuf"
	"github.com/dynascale/scalekit/metadata"
)

// IntermediateVersion is the version discriminant byte this adapter
// handles: a portable type registry and unified pallet dispatch indices,
// but no associated types, view functions, Runtime APIs or custom
// values — the layout between legacy's per-context dispatch indices and
// the current version's full feature set.
const IntermediateVersion uint8 = 14

var intermediateFeatures = palletFeatures{UnifiedIndices: true}

// DecodeIntermediate parses the body following IntermediateVersion's
// discriminant byte.
func DecodeIntermediate(cur *scalebuf.Cursor) (*metadata.Metadata, error) {
	const op = "wireadapt.DecodeIntermediate"

	reg, err := decodeTypeRegistry(cur)
	if err != nil {
		return nil, chainerr.Wrap(op, err)
	}
	pallets, err := decodePallets(cur, intermediateFeatures)
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
	dispatchErrorType, hasDispatchError, err := readOptionTypeID(cur)
	if err != nil {
		return nil, chainerr.Wrap(op, err)
	}

	md := metadata.New(reg)
	for _, p := range pallets {
		md.AddPallet(p)
	}
	md.SetExtrinsicFormat(extrinsic)
	md.SetOuterEnums(outerEnums)
	if hasDispatchError {
		md.SetDispatchErrorType(dispatchErrorType)
	}
	return md, nil
}

// EncodeIntermediate is DecodeIntermediate's structural inverse, used by
// fixtures and by round-trip tests.
func EncodeIntermediate(md *metadata.Metadata) []byte {
	buf := scalebuf.NewBuffer(256)
	encodeTypeRegistry(buf, md.Registry())
	encodePallets(buf, md.Pallets(), intermediateFeatures)
	encodeExtrinsicFormat(buf, md.ExtrinsicFormat())
	encodeOuterEnums(buf, md.OuterEnums())
	errType, hasErr := md.DispatchErrorType()
	putOptionTypeID(buf, errType, hasErr)
	return buf.Bytes()
}
