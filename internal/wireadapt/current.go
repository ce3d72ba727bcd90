package wireadapt

import (
	"github.com/dynascale/scalekit/chainerr"
	"github.com/dynascale/scalekit/internal/scalebuf"
	"github.com/dynascale/scalekit/metadata"
)

// CurrentVersion is the version discriminant byte this adapter handles:
// the modern wire layout with a portable type registry, unified pallet
// dispatch indices, associated types, view functions, Runtime APIs and
// custom values.
const CurrentVersion uint8 = 15

var currentFeatures = palletFeatures{AssociatedTypes: true, ViewFunctions: true, UnifiedIndices: true}

// DecodeCurrent parses the body that follows the version discriminant
// byte for CurrentVersion.
func DecodeCurrent(cur *scalebuf.Cursor) (*metadata.Metadata, error) {
	const op = "wireadapt.DecodeCurrent"

	reg, err := decodeTypeRegistry(cur)
	if err != nil {
		return nil, chainerr.Wrap(op, err)
	}
	pallets, err := decodePallets(cur, currentFeatures)
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
	apis, err := decodeRuntimeAPIs(cur)
	if err != nil {
		return nil, chainerr.Wrap(op, err)
	}
	custom, err := decodeCustomValues(cur)
	if err != nil {
		return nil, chainerr.Wrap(op, err)
	}

	md := metadata.New(reg)
	for _, p := range pallets {
		md.AddPallet(p)
	}
	for _, a := range apis {
		md.AddRuntimeAPI(a)
	}
	for _, c := range custom {
		md.AddCustomValue(c)
	}
	md.SetExtrinsicFormat(extrinsic)
	md.SetOuterEnums(outerEnums)
	if hasDispatchError {
		md.SetDispatchErrorType(dispatchErrorType)
	}
	return md, nil
}

// EncodeCurrent produces the body bytes DecodeCurrent parses, for tests
// and for re-encoding a Metadata built/stripped in memory back to the
// wire. Not required by spec.md's external interface (decode-only), but
// kept as the decode's exact structural inverse so fixtures can be built
// without hand-assembling SCALE bytes byte by byte.
func EncodeCurrent(md *metadata.Metadata) []byte {
	buf := scalebuf.NewBuffer(256)
	encodeTypeRegistry(buf, md.Registry())
	encodePallets(buf, md.Pallets(), currentFeatures)
	encodeExtrinsicFormat(buf, md.ExtrinsicFormat())
	encodeOuterEnums(buf, md.OuterEnums())
	errType, hasErr := md.DispatchErrorType()
	putOptionTypeID(buf, errType, hasErr)
	encodeRuntimeAPIs(buf, md.RuntimeAPIs())
	encodeCustomValues(buf, md.CustomValues())
	return buf.Bytes()
}
