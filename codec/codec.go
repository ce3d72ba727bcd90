// Package codec implements the SCALE dynamic codec: encoding and decoding
// of a value.Value tree against a type id resolved from a
// typeregistry.Registry, without generated per-type code. It is grounded
// on the teacher's hive/builder (encode side) and internal/reader (decode
// side), generalized from the teacher's fixed registry-cell layout to an
// arbitrary, recursively-defined type graph.
package codec

import (
	"github.com/dynascale/scalekit/chainerr"
	"github.com/dynascale/scalekit/internal/scalebuf"
	"github.com/dynascale/scalekit/typeregistry"
	"github.com/dynascale/scalekit/value"
)

// Encode renders v as the SCALE bytes for the type named by id, resolved
// against reg. See package docs and the per-kind helpers in this package
// for the coercions applied when v's shape does not exactly match the
// type's declared shape.
func Encode(v value.Value, id typeregistry.TypeID, reg *typeregistry.Registry) ([]byte, error) {
	buf := scalebuf.NewBuffer(64)
	if err := encodeInto(buf, v, id, reg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads the SCALE bytes for the type named by id from cur,
// producing a value.Value tagged with id as its Context. Decoding is
// strict: it always produces the canonical shape for id, never the
// coerced alternatives Encode accepts.
func Decode(cur *scalebuf.Cursor, id typeregistry.TypeID, reg *typeregistry.Registry) (value.Value, error) {
	return decodeFrom(cur, id, reg)
}

func encodeInto(buf *scalebuf.Buffer, v value.Value, id typeregistry.TypeID, reg *typeregistry.Registry) error {
	desc, err := reg.Resolve(id)
	if err != nil {
		return chainerr.Wrap("codec.Encode", err)
	}
	switch desc.Def.Kind {
	case typeregistry.KindComposite:
		return encodeComposite(buf, v, desc.Def.Fields, reg)
	case typeregistry.KindVariant:
		return encodeVariant(buf, v, desc.Def.Variants, reg)
	case typeregistry.KindSequence:
		return encodeSequence(buf, v, desc.Def.Element, reg)
	case typeregistry.KindArray:
		return encodeArray(buf, v, desc.Def.Element, desc.Def.Length, reg)
	case typeregistry.KindTuple:
		return encodeTuple(buf, v, desc.Def.Tuple, reg)
	case typeregistry.KindPrimitive:
		return encodePrimitive(buf, v, desc.Def.Primitive)
	case typeregistry.KindCompact:
		return encodeCompact(buf, v, desc.Def.Element, reg)
	case typeregistry.KindBitSequence:
		return encodeBitSequenceValue(buf, v, desc.Def.BitOrderType, desc.Def.BitStoreType, reg)
	default:
		return chainerr.Shapef("codec.Encode", uint64(id), desc.PathString(), "unknown definition kind %v", desc.Def.Kind)
	}
}

func decodeFrom(cur *scalebuf.Cursor, id typeregistry.TypeID, reg *typeregistry.Registry) (value.Value, error) {
	desc, err := reg.Resolve(id)
	if err != nil {
		return value.Value{}, chainerr.Wrap("codec.Decode", err)
	}
	var out value.Value
	switch desc.Def.Kind {
	case typeregistry.KindComposite:
		out, err = decodeComposite(cur, desc.Def.Fields, reg)
	case typeregistry.KindVariant:
		out, err = decodeVariant(cur, desc.Def.Variants, reg)
	case typeregistry.KindSequence:
		out, err = decodeSequence(cur, desc.Def.Element, reg)
	case typeregistry.KindArray:
		out, err = decodeArray(cur, desc.Def.Element, desc.Def.Length, reg)
	case typeregistry.KindTuple:
		out, err = decodeTuple(cur, desc.Def.Tuple, reg)
	case typeregistry.KindPrimitive:
		out, err = decodePrimitive(cur, desc.Def.Primitive)
	case typeregistry.KindCompact:
		out, err = decodeCompact(cur, desc.Def.Element, reg)
	case typeregistry.KindBitSequence:
		out, err = decodeBitSequenceValue(cur, desc.Def.BitOrderType, desc.Def.BitStoreType, reg)
	default:
		return value.Value{}, chainerr.Shapef("codec.Decode", uint64(id), desc.PathString(), "unknown definition kind %v", desc.Def.Kind)
	}
	if err != nil {
		return value.Value{}, err
	}
	return out.WithContext(id), nil
}

// compositeElements returns the element values of a composite Value in
// order (the Unnamed values, or the values of the Named fields) for
// encoding as a Sequence/Array/Tuple; ok is false when v is not a
// composite. The single-element and u256/i256 byte-array coercions are
// applied by its callers, not here.
func compositeElements(op string, v value.Value) ([]value.Value, bool) {
	if v.Shape() != value.ShapeComposite {
		return nil, false
	}
	c := v.AsComposite()
	if c.Shape == value.Unnamed {
		return c.Unnamed, true
	}
	out := make([]value.Value, len(c.Named))
	for i, f := range c.Named {
		out[i] = f.Value
	}
	return out, true
}

func encodeSequence(buf *scalebuf.Buffer, v value.Value, elemID typeregistry.TypeID, reg *typeregistry.Registry) error {
	if isU8Element(reg, elemID) {
		if bytesV, ok := bigIntAsByteSlice(v, 32); ok {
			buf.PutCompact(bigFromInt(int64(len(bytesV))))
			for _, b := range bytesV {
				if err := encodeInto(buf, value.UintFromU64(uint64(b)), elemID, reg); err != nil {
					return err
				}
			}
			return nil
		}
	}
	elems, ok := compositeElements("codec.Encode", v)
	if !ok {
		return chainerr.Shapef("codec.Encode", 0, "", "expected a sequence value, got %v", v.Shape())
	}
	buf.PutCompact(bigFromInt(int64(len(elems))))
	for _, e := range elems {
		if err := encodeInto(buf, e, elemID, reg); err != nil {
			return err
		}
	}
	return nil
}

func decodeSequence(cur *scalebuf.Cursor, elemID typeregistry.TypeID, reg *typeregistry.Registry) (value.Value, error) {
	n, err := cur.Compact()
	if err != nil {
		return value.Value{}, err
	}
	count := int(n.Int64())
	out := make([]value.Value, count)
	for i := 0; i < count; i++ {
		ev, err := decodeFrom(cur, elemID, reg)
		if err != nil {
			return value.Value{}, err
		}
		out[i] = ev
	}
	return value.NewComposite(out...), nil
}

func encodeArray(buf *scalebuf.Buffer, v value.Value, elemID typeregistry.TypeID, length uint32, reg *typeregistry.Registry) error {
	if length == 32 && isU8Element(reg, elemID) {
		if bytesV, ok := bigIntAsByteSlice(v, 32); ok {
			for _, b := range bytesV {
				if err := encodeInto(buf, value.UintFromU64(uint64(b)), elemID, reg); err != nil {
					return err
				}
			}
			return nil
		}
	}
	elems, ok := compositeElements("codec.Encode", v)
	if !ok {
		return chainerr.Shapef("codec.Encode", 0, "", "expected an array value, got %v", v.Shape())
	}
	if len(elems) != int(length) {
		return chainerr.Capacityf("codec.Encode", "expected %d array elements, got %d", length, len(elems))
	}
	for _, e := range elems {
		if err := encodeInto(buf, e, elemID, reg); err != nil {
			return err
		}
	}
	return nil
}

func decodeArray(cur *scalebuf.Cursor, elemID typeregistry.TypeID, length uint32, reg *typeregistry.Registry) (value.Value, error) {
	out := make([]value.Value, length)
	for i := range out {
		ev, err := decodeFrom(cur, elemID, reg)
		if err != nil {
			return value.Value{}, err
		}
		out[i] = ev
	}
	return value.NewComposite(out...), nil
}

func encodeTuple(buf *scalebuf.Buffer, v value.Value, elems []typeregistry.TypeID, reg *typeregistry.Registry) error {
	if len(elems) == 1 && v.Shape() != value.ShapeComposite {
		return encodeInto(buf, v, elems[0], reg)
	}
	got, ok := compositeElements("codec.Encode", v)
	if !ok {
		return chainerr.Shapef("codec.Encode", 0, "", "expected a tuple value, got %v", v.Shape())
	}
	if len(got) != len(elems) {
		return chainerr.Capacityf("codec.Encode", "expected %d tuple elements, got %d", len(elems), len(got))
	}
	for i, id := range elems {
		if err := encodeInto(buf, got[i], id, reg); err != nil {
			return err
		}
	}
	return nil
}

func decodeTuple(cur *scalebuf.Cursor, elems []typeregistry.TypeID, reg *typeregistry.Registry) (value.Value, error) {
	out := make([]value.Value, len(elems))
	for i, id := range elems {
		ev, err := decodeFrom(cur, id, reg)
		if err != nil {
			return value.Value{}, err
		}
		out[i] = ev
	}
	return value.NewComposite(out...), nil
}

func encodeBitSequenceValue(buf *scalebuf.Buffer, v value.Value, orderType, storeType typeregistry.TypeID, reg *typeregistry.Registry) error {
	shape, err := resolveBitSeqShape(reg, orderType, storeType)
	if err != nil {
		return err
	}
	bits := v.AsBits()
	if v.Shape() != value.ShapeBitSequence {
		coerced, ok := coerceBoolsToBits(v)
		if !ok {
			return chainerr.Shapef("codec.Encode", 0, "", "expected a bit-sequence value, got %v", v.Shape())
		}
		bits = coerced
	}
	encodeBitSeq(buf, bits, shape)
	return nil
}

func decodeBitSequenceValue(cur *scalebuf.Cursor, orderType, storeType typeregistry.TypeID, reg *typeregistry.Registry) (value.Value, error) {
	shape, err := resolveBitSeqShape(reg, orderType, storeType)
	if err != nil {
		return value.Value{}, err
	}
	bits, err := decodeBitSeq(cur, shape)
	if err != nil {
		return value.Value{}, err
	}
	return value.BitSeq(bits...), nil
}
