package codec

import (
	"math/big"
	"unicode/utf8"

	"github.com/dynascale/scalekit/chainerr"
	"github.com/dynascale/scalekit/internal/scalebuf"
	"github.com/dynascale/scalekit/typeregistry"
	"github.com/dynascale/scalekit/value"
)

func bigFromInt(n int64) *big.Int { return big.NewInt(n) }

// numericValue extracts a big.Int magnitude from v for encoding into an
// integer primitive, applying the documented coercions: integers of any
// width, and char (as its Unicode scalar value) when the target is
// unsigned and at least 32 bits wide.
func numericValue(v value.Value, kind typeregistry.PrimitiveKind) (*big.Int, error) {
	switch v.Shape() {
	case value.ShapeUint, value.ShapeInt:
		return v.AsBigInt(), nil
	case value.ShapeChar:
		if kind.Signed() || kind.BitWidth() < 32 {
			return nil, chainerr.Shapef("codec.numericValue", 0, kind.String(), "char only coerces to an unsigned integer of at least 32 bits")
		}
		return big.NewInt(int64(v.AsChar())), nil
	default:
		return nil, chainerr.Shapef("codec.numericValue", 0, kind.String(), "value shape %v is not coercible to an integer", v.Shape())
	}
}

func encodePrimitive(buf *scalebuf.Buffer, v value.Value, kind typeregistry.PrimitiveKind) error {
	switch kind {
	case typeregistry.Bool:
		if v.Shape() != value.ShapeBool {
			return chainerr.Shapef("codec.Encode", 0, "bool", "expected bool value, got %v", v.Shape())
		}
		if v.AsBool() {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		return nil
	case typeregistry.Char:
		if v.Shape() != value.ShapeChar {
			return chainerr.Shapef("codec.Encode", 0, "char", "expected char value, got %v", v.Shape())
		}
		buf.PutU32LE(uint32(v.AsChar()))
		return nil
	case typeregistry.Str:
		if v.Shape() != value.ShapeStr {
			return chainerr.Shapef("codec.Encode", 0, "str", "expected str value, got %v", v.Shape())
		}
		s := v.AsStr()
		buf.PutCompact(bigFromInt(int64(len(s))))
		buf.Write([]byte(s))
		return nil
	default:
		return encodeIntPrimitive(buf, v, kind)
	}
}

func encodeIntPrimitive(buf *scalebuf.Buffer, v value.Value, kind typeregistry.PrimitiveKind) error {
	n, err := numericValue(v, kind)
	if err != nil {
		return err
	}
	width := kind.BitWidth()
	if kind.Signed() {
		if err := checkFitsSigned("codec.Encode", n, width); err != nil {
			return err
		}
	} else {
		if err := scalebuf.CheckFitsBits("codec.Encode", n, width); err != nil {
			return err
		}
	}
	writeLEFixed(buf, n, width/8)
	return nil
}

// checkFitsSigned reports a Capacity error unless n fits in a two's
// complement signed integer of the given bit width.
func checkFitsSigned(op string, n *big.Int, bits int) error {
	half := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	min := new(big.Int).Neg(half)
	max := new(big.Int).Sub(half, big.NewInt(1))
	if n.Cmp(min) < 0 || n.Cmp(max) > 0 {
		return chainerr.Capacityf(op, "value %s does not fit in a signed %d-bit integer", n.String(), bits)
	}
	return nil
}

// writeLEFixed writes n (two's-complement for negative values) as
// nBytes little-endian bytes.
func writeLEFixed(buf *scalebuf.Buffer, n *big.Int, nBytes int) {
	out := make([]byte, nBytes)
	if n.Sign() < 0 {
		// two's complement: (1<<bits) + n
		mod := new(big.Int).Lsh(big.NewInt(1), uint(nBytes*8))
		n = new(big.Int).Add(mod, n)
	}
	be := n.Bytes()
	// be is big-endian, minimal length; place it right-aligned then reverse.
	for i := 0; i < len(be) && i < nBytes; i++ {
		out[i] = be[len(be)-1-i]
	}
	buf.Write(out)
}

func readLEFixed(b []byte, signed bool) *big.Int {
	le := make([]byte, len(b))
	for i, c := range b {
		le[len(b)-1-i] = c
	}
	u := new(big.Int).SetBytes(le)
	if !signed {
		return u
	}
	bits := len(b) * 8
	half := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	if u.Cmp(half) >= 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(bits))
		u = new(big.Int).Sub(u, mod)
	}
	return u
}

func decodePrimitive(cur *scalebuf.Cursor, kind typeregistry.PrimitiveKind) (value.Value, error) {
	switch kind {
	case typeregistry.Bool:
		b, err := cur.Byte()
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(b != 0), nil
	case typeregistry.Char:
		u, err := cur.U32LE()
		if err != nil {
			return value.Value{}, err
		}
		r := rune(u)
		if !utf8.ValidRune(r) {
			return value.Value{}, chainerr.Shapef("codec.Decode", 0, "char", "invalid Unicode scalar value 0x%X", u)
		}
		return value.Char(r), nil
	case typeregistry.Str:
		n, err := cur.Compact()
		if err != nil {
			return value.Value{}, err
		}
		raw, err := cur.Take(int(n.Int64()))
		if err != nil {
			return value.Value{}, err
		}
		if !utf8.Valid(raw) {
			return value.Value{}, chainerr.Shapef("codec.Decode", 0, "str", "invalid UTF-8")
		}
		return value.Str(string(raw)), nil
	default:
		return decodeIntPrimitive(cur, kind)
	}
}

func decodeIntPrimitive(cur *scalebuf.Cursor, kind typeregistry.PrimitiveKind) (value.Value, error) {
	width := kind.BitWidth()
	raw, err := cur.Take(width / 8)
	if err != nil {
		return value.Value{}, err
	}
	n := readLEFixed(raw, kind.Signed())
	if kind.Signed() {
		return value.Int(n), nil
	}
	return value.Uint(n), nil
}
