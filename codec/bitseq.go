package codec

import (
	"github.com/dynascale/scalekit/chainerr"
	"github.com/dynascale/scalekit/internal/scalebuf"
	"github.com/dynascale/scalekit/typeregistry"
	"github.com/dynascale/scalekit/value"
)

// bitOrder distinguishes which end of each storage word the first bit of
// a sequence occupies.
type bitOrder uint8

const (
	lsb0 bitOrder = iota
	msb0
)

// bitSeqShape is one of the eight concrete representations the spec names:
// store width (u8/u16/u32/u64) crossed with bit order (Lsb0/Msb0).
type bitSeqShape struct {
	order    bitOrder
	widthBits int
}

// resolveBitSeqShape matches the order and store types referenced by a
// BitSequence definition against the fixed set of known paths, per spec
// §4.4 ("Both order and store types are identified by matching their
// declared path against a fixed set of known paths; an unknown path is a
// bit-sequence error").
func resolveBitSeqShape(reg *typeregistry.Registry, orderType, storeType typeregistry.TypeID) (bitSeqShape, error) {
	orderDesc, err := reg.Resolve(orderType)
	if err != nil {
		return bitSeqShape{}, chainerr.Wrap("codec.resolveBitSeqShape", err)
	}
	var order bitOrder
	switch lastSegment(orderDesc.Path) {
	case "Lsb0":
		order = lsb0
	case "Msb0":
		order = msb0
	default:
		return bitSeqShape{}, chainerr.Capacityf("codec.resolveBitSeqShape", "unrecognized bit-sequence order path %q (type %d)", orderDesc.PathString(), orderType)
	}

	storeDesc, err := reg.Resolve(storeType)
	if err != nil {
		return bitSeqShape{}, chainerr.Wrap("codec.resolveBitSeqShape", err)
	}
	if storeDesc.Def.Kind != typeregistry.KindPrimitive {
		return bitSeqShape{}, chainerr.Capacityf("codec.resolveBitSeqShape", "bit-sequence store type %q (type %d) is not a primitive", storeDesc.PathString(), storeType)
	}
	var width int
	switch storeDesc.Def.Primitive {
	case typeregistry.U8:
		width = 8
	case typeregistry.U16:
		width = 16
	case typeregistry.U32:
		width = 32
	case typeregistry.U64:
		width = 64
	default:
		return bitSeqShape{}, chainerr.Capacityf("codec.resolveBitSeqShape", "unrecognized bit-sequence store width %q (type %d)", storeDesc.PathString(), storeType)
	}
	return bitSeqShape{order: order, widthBits: width}, nil
}

func lastSegment(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}

func encodeBitSeq(buf *scalebuf.Buffer, bits []bool, shape bitSeqShape) {
	n := len(bits)
	buf.PutCompact(bigFromInt(int64(n)))
	w := shape.widthBits
	numWords := (n + w - 1) / w
	for wi := 0; wi < numWords; wi++ {
		var word uint64
		for p := 0; p < w; p++ {
			g := wi*w + p
			if g >= n {
				break
			}
			if !bits[g] {
				continue
			}
			word |= bitPosMask(shape.order, w, p)
		}
		putWord(buf, word, w)
	}
}

func decodeBitSeq(cur *scalebuf.Cursor, shape bitSeqShape) ([]bool, error) {
	nBig, err := cur.Compact()
	if err != nil {
		return nil, err
	}
	n := int(nBig.Int64())
	w := shape.widthBits
	numWords := (n + w - 1) / w
	bits := make([]bool, n)
	for wi := 0; wi < numWords; wi++ {
		word, err := takeWord(cur, w)
		if err != nil {
			return nil, err
		}
		for p := 0; p < w; p++ {
			g := wi*w + p
			if g >= n {
				break
			}
			bits[g] = word&bitPosMask(shape.order, w, p) != 0
		}
	}
	return bits, nil
}

// bitPosMask returns the mask for logical position p (0 = first bit of the
// word in sequence order) within a word of width w bits, for the given order.
func bitPosMask(order bitOrder, w, p int) uint64 {
	switch order {
	case lsb0:
		return uint64(1) << uint(p)
	default: // msb0: first bit occupies the most-significant position
		return uint64(1) << uint(w-1-p)
	}
}

func putWord(buf *scalebuf.Buffer, word uint64, width int) {
	switch width {
	case 8:
		buf.WriteByte(byte(word))
	case 16:
		buf.PutU16LE(uint16(word))
	case 32:
		buf.PutU32LE(uint32(word))
	case 64:
		buf.PutU64LE(word)
	}
}

func takeWord(cur *scalebuf.Cursor, width int) (uint64, error) {
	switch width {
	case 8:
		b, err := cur.Byte()
		return uint64(b), err
	case 16:
		v, err := cur.U16LE()
		return uint64(v), err
	case 32:
		v, err := cur.U32LE()
		return uint64(v), err
	default:
		return cur.U64LE()
	}
}

// coerceBoolsToBits implements the documented coercion: an unnamed
// composite of booleans coerces to a bit sequence of the same length.
func coerceBoolsToBits(v value.Value) ([]bool, bool) {
	if v.Shape() != value.ShapeComposite {
		return nil, false
	}
	c := v.AsComposite()
	if c.Shape != value.Unnamed {
		return nil, false
	}
	out := make([]bool, len(c.Unnamed))
	for i, f := range c.Unnamed {
		if f.Shape() != value.ShapeBool {
			return nil, false
		}
		out[i] = f.AsBool()
	}
	return out, true
}
