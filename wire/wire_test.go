package wire_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dynascale/scalekit/internal/scalebuf"
	"github.com/dynascale/scalekit/internal/wireadapt"
	"github.com/dynascale/scalekit/metadata"
	"github.com/dynascale/scalekit/typeregistry"
	"github.com/dynascale/scalekit/wire"
)

func buildSimpleMetadata() *metadata.Metadata {
	const (
		idCall typeregistry.TypeID = iota
		idAddress
		idSignature
	)
	reg := typeregistry.New([]typeregistry.TypeDescriptor{
		{Path: []string{"runtime", "Call"}, Def: typeregistry.Definition{Kind: typeregistry.KindVariant, Variants: []typeregistry.VariantDef{{Name: "doThing", Index: 0}}}},
		{Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.U32}},
		{Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.U8}},
	})
	md := metadata.New(reg)
	md.AddPallet(&metadata.Pallet{
		Name: "System", Index: 0, CallIndex: 0, EventIndex: 0, ErrorIndex: 0,
		CallType: idCall, HasCall: true,
		AssociatedTypes: map[string]typeregistry.TypeID{"AccountId": idAddress},
	})
	md.SetExtrinsicFormat(metadata.ExtrinsicFormat{
		AddressType: idAddress, SignatureType: idSignature,
		SupportedVersions: []uint8{4},
		Extensions:        map[uint8][]metadata.TransactionExtension{4: nil},
	})
	md.SetOuterEnums(metadata.OuterEnums{CallType: idCall, EventType: idCall, ErrorType: idCall})
	return md
}

func withPrefixedEnvelope(version uint8, body []byte) []byte {
	out := []byte{'m', 'e', 't', 'a', version}
	return append(out, body...)
}

func TestDecodePrefixedEnvelopeCurrent(t *testing.T) {
	md := buildSimpleMetadata()
	body := wireadapt.EncodeCurrent(md)
	b := withPrefixedEnvelope(wireadapt.CurrentVersion, body)

	out, err := wire.Decode(b)
	require.NoError(t, err)
	require.Len(t, out.Pallets(), 1)
	sys, err := out.PalletByName("System")
	require.NoError(t, err)
	require.Contains(t, sys.AssociatedTypes, "AccountId")
}

func TestDecodeBareVersionDiscriminated(t *testing.T) {
	md := buildSimpleMetadata()
	body := wireadapt.EncodeIntermediate(md)
	b := append([]byte{wireadapt.IntermediateVersion}, body...)

	out, err := wire.Decode(b)
	require.NoError(t, err)
	require.Len(t, out.Pallets(), 1)
}

func TestDecodeOpaqueBytesOfBytes(t *testing.T) {
	md := buildSimpleMetadata()
	body := wireadapt.EncodeLegacy(md)
	inner := append([]byte{wireadapt.LegacyVersion}, body...)

	buf := scalebuf.NewBuffer(len(inner) + 8)
	buf.PutCompact(big.NewInt(int64(len(inner))))
	buf.Write(inner)

	out, err := wire.Decode(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, out.Pallets(), 1)
}

func TestDecodeUnsupportedVersionErrors(t *testing.T) {
	_, err := wire.Decode(withPrefixedEnvelope(200, nil))
	require.Error(t, err)
}

func TestDecodeGarbageErrors(t *testing.T) {
	_, err := wire.Decode([]byte{0xFF, 0xFF, 0xFF})
	require.Error(t, err)
}
