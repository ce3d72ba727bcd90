package codec

import (
	"math/big"

	"github.com/dynascale/scalekit/chainerr"
	"github.com/dynascale/scalekit/internal/scalebuf"
	"github.com/dynascale/scalekit/typeregistry"
	"github.com/dynascale/scalekit/value"
)

// isU8Element reports whether elemID resolves to the u8 primitive, the
// gate for the u256/i256 byte-array coercion: it only fires for [u8; 32]
// and sequences of u8, never for sequences/arrays of other element types.
func isU8Element(reg *typeregistry.Registry, elemID typeregistry.TypeID) bool {
	desc, err := reg.Resolve(elemID)
	if err != nil {
		return false
	}
	return desc.Def.Kind == typeregistry.KindPrimitive && desc.Def.Primitive == typeregistry.U8
}

// bigIntAsByteSlice renders v as its 32-byte little-endian two's-complement
// representation, the documented u256/i256 coercion into a byte
// array/sequence. want is the expected length (32) or 0 to accept any.
func bigIntAsByteSlice(v value.Value, want int) ([]byte, bool) {
	if v.Shape() != value.ShapeUint && v.Shape() != value.ShapeInt {
		return nil, false
	}
	if want != 0 && want != 32 {
		return nil, false
	}
	n := v.AsBigInt()
	out := make([]byte, 32)
	if n.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), 256)
		n = new(big.Int).Add(mod, n)
	}
	be := n.Bytes()
	for i := 0; i < len(be) && i < 32; i++ {
		out[i] = be[len(be)-1-i]
	}
	return out, true
}

// resolveCompactInner follows single-field composite/tuple unwrapping at
// the type level to find the unsigned integer primitive a Compact<T>
// ultimately encodes, per the documented coercion ("Compact resolves,
// through repeated single-field unwrapping, to an unsigned integer of at
// most 128 bits").
func resolveCompactInner(reg *typeregistry.Registry, id typeregistry.TypeID) (typeregistry.PrimitiveKind, error) {
	desc, err := reg.Resolve(id)
	if err != nil {
		return 0, chainerr.Wrap("codec.resolveCompactInner", err)
	}
	switch desc.Def.Kind {
	case typeregistry.KindPrimitive:
		k := desc.Def.Primitive
		if k.Signed() || k.BitWidth() > 128 {
			return 0, chainerr.Capacityf("codec.resolveCompactInner", "compact inner type %d must be an unsigned integer of at most 128 bits", id)
		}
		return k, nil
	case typeregistry.KindComposite:
		if len(desc.Def.Fields) == 1 {
			return resolveCompactInner(reg, desc.Def.Fields[0].Type)
		}
	case typeregistry.KindTuple:
		if len(desc.Def.Tuple) == 1 {
			return resolveCompactInner(reg, desc.Def.Tuple[0])
		}
	}
	return 0, chainerr.Capacityf("codec.resolveCompactInner", "type %d %q is not compact-encodable", id, desc.PathString())
}

// extractCompactMagnitude unwraps v through single-field composites to the
// underlying integer value, mirroring resolveCompactInner on the value side.
func extractCompactMagnitude(v value.Value) (*big.Int, error) {
	switch v.Shape() {
	case value.ShapeUint, value.ShapeInt:
		return v.AsBigInt(), nil
	case value.ShapeComposite:
		c := v.AsComposite()
		if c.Len() == 1 {
			if c.Shape == value.Named {
				return extractCompactMagnitude(c.Named[0].Value)
			}
			return extractCompactMagnitude(c.Unnamed[0])
		}
	}
	return nil, chainerr.Shapef("codec.Encode", 0, "", "value is not compact-encodable")
}

func encodeCompact(buf *scalebuf.Buffer, v value.Value, innerID typeregistry.TypeID, reg *typeregistry.Registry) error {
	kind, err := resolveCompactInner(reg, innerID)
	if err != nil {
		return err
	}
	n, err := extractCompactMagnitude(v)
	if err != nil {
		return err
	}
	if err := scalebuf.CheckFitsBits("codec.Encode", n, kind.BitWidth()); err != nil {
		return err
	}
	buf.PutCompact(n)
	return nil
}

func decodeCompact(cur *scalebuf.Cursor, innerID typeregistry.TypeID, reg *typeregistry.Registry) (value.Value, error) {
	kind, err := resolveCompactInner(reg, innerID)
	if err != nil {
		return value.Value{}, err
	}
	n, err := cur.Compact()
	if err != nil {
		return value.Value{}, err
	}
	if err := scalebuf.CheckFitsBits("codec.Decode", n, kind.BitWidth()); err != nil {
		return value.Value{}, err
	}
	return value.Uint(n), nil
}
