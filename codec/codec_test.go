package codec_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dynascale/scalekit/codec"
	"github.com/dynascale/scalekit/internal/scalebuf"
	"github.com/dynascale/scalekit/typeregistry"
	"github.com/dynascale/scalekit/value"
)

func TestPrimitiveRoundTrips(t *testing.T) {
	reg := buildFixtureRegistry()

	cases := []struct {
		name string
		v    value.Value
		id   typeregistry.TypeID
	}{
		{"bool-true", value.Bool(true), idBool},
		{"bool-false", value.Bool(false), idBool},
		{"u8-zero", value.UintFromU64(0), idU8},
		{"u8-max", value.UintFromU64(255), idU8},
		{"u32-max", value.UintFromU64(1<<32 - 1), idU32},
		{"u64-one", value.UintFromU64(1), idU64},
		{"i8-min", value.IntFromI64(-128), idI8},
		{"i8-max", value.IntFromI64(127), idI8},
		{"i32-negative", value.IntFromI64(-12345), idI32},
		{"char-ascii", value.Char('A'), idChar},
		{"char-multibyte", value.Char('✓'), idChar},
		{"str-empty", value.Str(""), idStr},
		{"str-ascii", value.Str("hello"), idStr},
		{"str-multibyte", value.Str("héllo✓"), idStr},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, err := codec.Encode(c.v, c.id, reg)
			require.NoError(t, err)
			cur := scalebuf.NewCursor(b)
			out, err := codec.Decode(cur, c.id, reg)
			require.NoError(t, err)
			require.Zero(t, cur.Remaining())
			require.True(t, c.v.Equal(out.EraseContext()), "got %+v", out)
		})
	}
}

func TestBoolKnownBytes(t *testing.T) {
	reg := buildFixtureRegistry()
	b, err := codec.Encode(value.Bool(true), idBool, reg)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01}, b)
	b, err = codec.Encode(value.Bool(false), idBool, reg)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00}, b)
}

func TestU16KnownBytes(t *testing.T) {
	reg := buildFixtureRegistry()
	b, err := codec.Encode(value.UintFromU64(0x0102), idU16, reg)
	require.NoError(t, err)
	require.Equal(t, []byte{0x02, 0x01}, b)
}

func TestIntegerCapacityError(t *testing.T) {
	reg := buildFixtureRegistry()
	_, err := codec.Encode(value.UintFromU64(256), idU8, reg)
	require.Error(t, err)
}

func TestIntegerWidthCoercion(t *testing.T) {
	// A u32-shaped Value encodes fine into a u8 slot as long as it fits.
	reg := buildFixtureRegistry()
	b, err := codec.Encode(value.UintFromU64(10), idU8, reg)
	require.NoError(t, err)
	require.Equal(t, []byte{10}, b)
}

func TestTupleCompactBoolScenario(t *testing.T) {
	// S3: Compact(1u128 << 70) followed by bool(false) against a tuple
	// (Compact<u128>, bool).
	reg := buildFixtureRegistry()
	n := new(big.Int).Lsh(big.NewInt(1), 70)
	in := value.NewComposite(value.Uint(n), value.Bool(false))
	b, err := codec.Encode(in, idTupleCompactBool, reg)
	require.NoError(t, err)

	cur := scalebuf.NewCursor(b)
	out, err := codec.Decode(cur, idTupleCompactBool, reg)
	require.NoError(t, err)
	require.Zero(t, cur.Remaining())
	require.True(t, in.EqualSemantic(out.EraseContext()))

	c := out.AsComposite()
	require.Len(t, c.Unnamed, 2)
	require.Equal(t, 0, c.Unnamed[0].AsBigInt().Cmp(n))
	require.False(t, c.Unnamed[1].AsBool())
}

func TestVariantDiscriminantScenario(t *testing.T) {
	// S2: bytes [0x00, 0x01] against Variant{Foo(idx1), Bar(bool)(idx0)}
	// decode to Bar(true).
	reg := buildFixtureRegistry()
	cur := scalebuf.NewCursor([]byte{0x00, 0x01})
	out, err := codec.Decode(cur, idVariantFooBar, reg)
	require.NoError(t, err)
	require.Zero(t, cur.Remaining())
	require.Equal(t, "Bar", out.VariantName())
	fields := out.VariantFields()
	require.Len(t, fields.Unnamed, 1)
	require.True(t, fields.Unnamed[0].AsBool())
}

func TestVariantUnknownDiscriminantErrors(t *testing.T) {
	reg := buildFixtureRegistry()
	cur := scalebuf.NewCursor([]byte{0x09})
	_, err := codec.Decode(cur, idVariantFooBar, reg)
	require.Error(t, err)
}

func TestVariantUnknownNameErrorsOnEncode(t *testing.T) {
	reg := buildFixtureRegistry()
	_, err := codec.Encode(value.Variant("Nope"), idVariantFooBar, reg)
	require.Error(t, err)
}

func TestCallTransferScenario(t *testing.T) {
	// S1: encoding transfer{dest, value} against the pallet's call type
	// produces the discriminant byte followed by the concatenation of the
	// two fields' own encodings.
	reg := buildFixtureRegistry()
	addr := value.UintFromU64(42)
	amount := value.UintFromU64(10_000)
	in := value.NamedVariant("transfer", value.Field("dest", addr), value.Field("value", amount))

	got, err := codec.Encode(in, idCallTransfer, reg)
	require.NoError(t, err)
	require.Equal(t, byte(7), got[0])

	wantDest, err := codec.Encode(addr, idCallDest, reg)
	require.NoError(t, err)
	wantValue, err := codec.Encode(amount, idCompactU128, reg)
	require.NoError(t, err)
	want := append([]byte{7}, append(append([]byte{}, wantDest...), wantValue...)...)
	require.Equal(t, want, got)
}

func TestSequenceRoundTrip(t *testing.T) {
	reg := buildFixtureRegistry()
	in := value.NewComposite(value.UintFromU64(1), value.UintFromU64(2), value.UintFromU64(3))
	b, err := codec.Encode(in, idSeqU8, reg)
	require.NoError(t, err)
	require.Equal(t, []byte{0x0c, 1, 2, 3}, b) // compact(3)=0x0c, then 3 raw bytes

	cur := scalebuf.NewCursor(b)
	out, err := codec.Decode(cur, idSeqU8, reg)
	require.NoError(t, err)
	require.True(t, in.EqualSemantic(out.EraseContext()))
}

func TestSequenceEmpty(t *testing.T) {
	reg := buildFixtureRegistry()
	in := value.NewComposite()
	b, err := codec.Encode(in, idSeqU8, reg)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00}, b)
}

func TestArrayLengthMismatchErrors(t *testing.T) {
	reg := buildFixtureRegistry()
	in := value.NewComposite(value.UintFromU64(1), value.UintFromU64(2))
	_, err := codec.Encode(in, idArrU8x32, reg)
	require.Error(t, err)
}

func TestArrayRoundTrip(t *testing.T) {
	reg := buildFixtureRegistry()
	elems := make([]value.Value, 32)
	for i := range elems {
		elems[i] = value.UintFromU64(uint64(i))
	}
	in := value.NewComposite(elems...)
	b, err := codec.Encode(in, idArrU8x32, reg)
	require.NoError(t, err)
	require.Len(t, b, 32)

	cur := scalebuf.NewCursor(b)
	out, err := codec.Decode(cur, idArrU8x32, reg)
	require.NoError(t, err)
	require.True(t, in.EqualSemantic(out.EraseContext()))
}

func TestU256CoercesToByteArray(t *testing.T) {
	reg := buildFixtureRegistry()
	n := new(big.Int).Lsh(big.NewInt(1), 200)
	b, err := codec.Encode(value.Uint(n), idArrU8x32, reg)
	require.NoError(t, err)
	require.Len(t, b, 32)

	cur := scalebuf.NewCursor(b)
	out, err := codec.Decode(cur, idArrU8x32, reg)
	require.NoError(t, err)
	// decoding is strict: it yields the canonical composite-of-u8 shape,
	// not a re-coerced integer.
	require.Equal(t, value.ShapeComposite, out.Shape())
	require.Len(t, out.AsComposite().Unnamed, 32)
}

func TestSingleFieldCompositeUnwrapCoercion(t *testing.T) {
	reg := buildFixtureRegistry()
	// idWrapperU32 has exactly one named field; a bare u32 Value encodes
	// straight through without needing to be wrapped in a composite.
	b, err := codec.Encode(value.UintFromU64(99), idWrapperU32, reg)
	require.NoError(t, err)
	require.Equal(t, []byte{99, 0, 0, 0}, b)

	cur := scalebuf.NewCursor(b)
	out, err := codec.Decode(cur, idWrapperU32, reg)
	require.NoError(t, err)
	require.Equal(t, value.ShapeComposite, out.Shape())
}

func TestSingleFieldUnwrapInsideSequence(t *testing.T) {
	reg := buildFixtureRegistry()
	in := value.NewComposite(value.UintFromU64(1), value.UintFromU64(2))
	b, err := codec.Encode(in, idSeqWrapperU32, reg)
	require.NoError(t, err)
	cur := scalebuf.NewCursor(b)
	out, err := codec.Decode(cur, idSeqWrapperU32, reg)
	require.NoError(t, err)
	require.Len(t, out.AsComposite().Unnamed, 2)
}

func TestCompactRoundTripBignum(t *testing.T) {
	reg := buildFixtureRegistry()
	n := new(big.Int).Lsh(big.NewInt(1), 100)
	b, err := codec.Encode(value.Uint(n), idCompactU128, reg)
	require.NoError(t, err)
	cur := scalebuf.NewCursor(b)
	out, err := codec.Decode(cur, idCompactU128, reg)
	require.NoError(t, err)
	require.Zero(t, out.AsBigInt().Cmp(n))
}

func TestCompactRejectsOutOfRange(t *testing.T) {
	reg := buildFixtureRegistry()
	n := new(big.Int).Lsh(big.NewInt(1), 129)
	_, err := codec.Encode(value.Uint(n), idCompactU128, reg)
	require.Error(t, err)
}

func TestBitSequenceRoundTrip(t *testing.T) {
	reg := buildFixtureRegistry()
	// Six of the eight order/store-width pairs (Msb0-u32 and Lsb0-u64 have
	// no fixture), exercised here as a round-trip over the same lengths.
	shapes := []struct {
		name string
		id   typeregistry.TypeID
	}{
		{"lsb0-u8", idBitSeqLsb0U8},
		{"msb0-u8", idBitSeqMsb0U8},
		{"lsb0-u16", idBitSeqLsb0U16},
		{"msb0-u16", idBitSeqMsb0U16},
		{"lsb0-u32", idBitSeqLsb0U32},
		{"msb0-u64", idBitSeqMsb0U64},
	}
	for _, shape := range shapes {
		t.Run(shape.name, func(t *testing.T) {
			for _, n := range []int{0, 1, 7, 8, 9, 64, 65} {
				bits := make([]value.Bit, n)
				for i := range bits {
					bits[i] = i%2 == 0
				}
				in := value.BitSeq(bits...)
				b, err := codec.Encode(in, shape.id, reg)
				require.NoError(t, err)
				cur := scalebuf.NewCursor(b)
				out, err := codec.Decode(cur, shape.id, reg)
				require.NoError(t, err)
				require.Zero(t, cur.Remaining())
				require.Equal(t, bits, out.AsBits())
			}
		})
	}
}

func TestBitSequenceMsb0U16KnownBitsScenario(t *testing.T) {
	// S6: a bit sequence stored as BitVec<u16, Msb0> representing bits
	// [0,1,1,0,1,0] decodes to booleans [false,true,true,false,true,false],
	// and re-encoding yields the original bytes.
	reg := buildFixtureRegistry()
	want := []value.Bit{false, true, true, false, true, false}
	wire := []byte{0x18, 0x00, 0x68} // compact(6), then one u16LE word 0x6800

	cur := scalebuf.NewCursor(wire)
	out, err := codec.Decode(cur, idBitSeqMsb0U16, reg)
	require.NoError(t, err)
	require.Zero(t, cur.Remaining())
	require.Equal(t, want, out.AsBits())

	b, err := codec.Encode(value.BitSeq(want...), idBitSeqMsb0U16, reg)
	require.NoError(t, err)
	require.Equal(t, wire, b)
}

func TestBitSequenceBoolCompositeCoercion(t *testing.T) {
	reg := buildFixtureRegistry()
	in := value.NewComposite(value.Bool(true), value.Bool(false), value.Bool(true))
	b, err := codec.Encode(in, idBitSeqLsb0U8, reg)
	require.NoError(t, err)
	cur := scalebuf.NewCursor(b)
	out, err := codec.Decode(cur, idBitSeqLsb0U8, reg)
	require.NoError(t, err)
	require.Equal(t, []value.Bit{true, false, true}, out.AsBits())
}

func TestUnrecognizedBitOrderPathErrors(t *testing.T) {
	descs := []typeregistry.TypeDescriptor{
		{Path: []string{"bitvec", "order", "Unknown"}},
		{Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.U8}},
		{Def: typeregistry.Definition{Kind: typeregistry.KindBitSequence, BitOrderType: 0, BitStoreType: 1}},
	}
	reg := typeregistry.New(descs)
	_, err := codec.Encode(value.BitSeq(true), 2, reg)
	require.Error(t, err)
}
