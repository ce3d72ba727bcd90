// Package valueserde bridges the runtime value tree (package value) to a
// self-describing external representation built from plain Go values
// (map[string]any, []any, string, bool) plus two small JSON-tagged struct
// forms for variants and bit sequences — the shape a JSON/text encoder
// can render without knowing anything about SCALE or a type registry.
//
// Grounded on the teacher's hive/printer package, which separates one
// internal tree shape (registry keys/values) from multiple serialization
// back-ends (json.go, text.go, reg.go); here the "back end" is simply
// encoding/json (or any other marshaler) applied to the plain Go value
// ToSelfDescribing returns, matching printer.go's json.go use of the
// standard library's encoding/json directly rather than a bespoke writer.
package valueserde

import (
	"math/big"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/dynascale/scalekit/chainerr"
	"github.com/dynascale/scalekit/typeregistry"
	"github.com/dynascale/scalekit/value"
)

// variantForm is the self-describing shape of a ShapeVariant value:
// {"name": "...", "values": <fields>}.
type variantForm struct {
	Name   string `json:"name"`
	Values any    `json:"values"`
}

// bitSeqForm is the compact map form for ShapeBitSequence values, storing
// bits packed into bytes (LSb0 within each byte) alongside their count so
// a reader doesn't need to infer padding.
type bitSeqForm struct {
	Len  int    `json:"len"`
	Bits string `json:"bits"` // hex-encoded packed bytes
}

// ToSelfDescribing converts v into a tree of plain Go values: named
// composites become map[string]any, unnamed composites and sequences
// become []any (except that one of two or more unsigned integers in
// 0..255 becomes a string via PresentBytesAsText), variants become
// variantForm, bit sequences become
// bitSeqForm, and Uint/Int become decimal strings (so 128/256-bit values
// survive a JSON round trip without float64 precision loss).
func ToSelfDescribing(v value.Value) any {
	switch v.Shape() {
	case value.ShapeBool:
		return v.AsBool()
	case value.ShapeChar:
		return string(v.AsChar())
	case value.ShapeStr:
		return v.AsStr()
	case value.ShapeUint, value.ShapeInt:
		return v.AsBigInt().String()
	case value.ShapeComposite:
		return compositeToSelfDescribing(v.AsComposite())
	case value.ShapeVariant:
		return variantForm{Name: v.VariantName(), Values: compositeToSelfDescribing(v.VariantFields())}
	case value.ShapeBitSequence:
		return bitsToSelfDescribing(v.AsBits())
	default:
		return nil
	}
}

func compositeToSelfDescribing(c value.Composite) any {
	if c.Shape == value.Named {
		out := make(map[string]any, len(c.Named))
		for _, f := range c.Named {
			out[f.Name] = ToSelfDescribing(f.Value)
		}
		return out
	}
	if raw, ok := asByteSequence(c); ok {
		return PresentBytesAsText(raw)
	}
	out := make([]any, len(c.Unnamed))
	for i, f := range c.Unnamed {
		out[i] = ToSelfDescribing(f)
	}
	return out
}

func bitsToSelfDescribing(bits []value.Bit) bitSeqForm {
	packed := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			packed[i/8] |= 1 << uint(i%8)
		}
	}
	return bitSeqForm{Len: len(bits), Bits: hexEncode(packed)}
}

// FromSelfDescribing reconstructs a value.Value from data, shaped
// according to id's definition in reg. It is permissive the way the
// codec's encode side is: integers may arrive as a decimal string,
// float64, int, int64 or uint64 by way of toBigInt; a u8 sequence/array
// may be read back from either a []any of small integers or the text
// PresentBytesAsText produced, as may an unnamed composite; and variants
// and bit sequences are accepted both as variantForm/bitSeqForm and as
// the equivalent map[string]any.
func FromSelfDescribing(data any, id typeregistry.TypeID, reg *typeregistry.Registry) (value.Value, error) {
	const op = "valueserde.FromSelfDescribing"
	desc, err := reg.Resolve(id)
	if err != nil {
		return value.Value{}, chainerr.Wrap(op, err)
	}
	switch desc.Def.Kind {
	case typeregistry.KindPrimitive:
		return primitiveFromSelfDescribing(desc.Def.Primitive, data)
	case typeregistry.KindComposite:
		return compositeFromSelfDescribing(data, desc.Def.Fields, reg)
	case typeregistry.KindVariant:
		return variantFromSelfDescribing(data, desc.Def.Variants, reg)
	case typeregistry.KindSequence:
		return sequenceFromSelfDescribing(data, desc.Def.Element, reg)
	case typeregistry.KindArray:
		return arrayFromSelfDescribing(data, desc.Def.Element, desc.Def.Length, reg)
	case typeregistry.KindTuple:
		return tupleFromSelfDescribing(data, desc.Def.Tuple, reg)
	case typeregistry.KindCompact:
		return FromSelfDescribing(data, desc.Def.Element, reg)
	case typeregistry.KindBitSequence:
		return bitSeqFromSelfDescribing(data)
	default:
		return value.Value{}, chainerr.Shapef(op, uint64(id), desc.PathString(), "unsupported definition kind")
	}
}

func primitiveFromSelfDescribing(p typeregistry.PrimitiveKind, data any) (value.Value, error) {
	const op = "valueserde.primitiveFromSelfDescribing"
	switch p {
	case typeregistry.Bool:
		b, ok := data.(bool)
		if !ok {
			return value.Value{}, chainerr.Shapef(op, 0, "", "expected bool, got %T", data)
		}
		return value.Bool(b), nil
	case typeregistry.Char:
		s, ok := data.(string)
		if !ok {
			return value.Value{}, chainerr.Shapef(op, 0, "", "expected single-rune string, got %T", data)
		}
		r := []rune(s)
		if len(r) != 1 {
			return value.Value{}, chainerr.Shapef(op, 0, "", "expected exactly one rune, got %d", len(r))
		}
		return value.Char(r[0]), nil
	case typeregistry.Str:
		s, ok := data.(string)
		if !ok {
			return value.Value{}, chainerr.Shapef(op, 0, "", "expected string, got %T", data)
		}
		return value.Str(s), nil
	default:
		n, err := toBigInt(data)
		if err != nil {
			return value.Value{}, chainerr.Wrap(op, err)
		}
		if p.Signed() {
			return value.Int(n), nil
		}
		return value.Uint(n), nil
	}
}

func toBigInt(data any) (*big.Int, error) {
	const op = "valueserde.toBigInt"
	switch v := data.(type) {
	case string:
		n, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return nil, chainerr.Shapef(op, 0, "", "not a decimal integer string: %q", v)
		}
		return n, nil
	case float64:
		return big.NewInt(int64(v)), nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, chainerr.Shapef(op, 0, "", "cannot convert %T to an integer", data)
	}
}

func compositeFromSelfDescribing(data any, fields []typeregistry.Field, reg *typeregistry.Registry) (value.Value, error) {
	const op = "valueserde.compositeFromSelfDescribing"
	if named(fields) {
		m, ok := data.(map[string]any)
		if !ok {
			return value.Value{}, chainerr.Shapef(op, 0, "", "expected an object, got %T", data)
		}
		out := make([]value.NamedField, len(fields))
		for i, f := range fields {
			raw, ok := m[f.Name]
			if !ok {
				return value.Value{}, chainerr.NotFoundf(op, f.Name, "object")
			}
			v, err := FromSelfDescribing(raw, f.Type, reg)
			if err != nil {
				return value.Value{}, chainerr.Wrap(op, err)
			}
			out[i] = value.Field(f.Name, v)
		}
		return value.NewNamedComposite(out...), nil
	}
	items, err := asSlice(data)
	if s, ok := data.(string); ok {
		// ToSelfDescribing presents an unnamed composite of small unsigned
		// integers as text; read it back one element per byte.
		items, err = make([]any, len(s)), nil
		for i := 0; i < len(s); i++ {
			items[i] = int(s[i])
		}
	}
	if err != nil {
		return value.Value{}, chainerr.Wrap(op, err)
	}
	if len(items) != len(fields) {
		return value.Value{}, chainerr.Shapef(op, 0, "", "expected %d fields, got %d", len(fields), len(items))
	}
	out := make([]value.Value, len(fields))
	for i, f := range fields {
		out[i], err = FromSelfDescribing(items[i], f.Type, reg)
		if err != nil {
			return value.Value{}, chainerr.Wrap(op, err)
		}
	}
	return value.NewComposite(out...), nil
}

func variantFromSelfDescribing(data any, variants []typeregistry.VariantDef, reg *typeregistry.Registry) (value.Value, error) {
	const op = "valueserde.variantFromSelfDescribing"
	if vf, ok := data.(variantForm); ok {
		data = map[string]any{"name": vf.Name, "values": vf.Values}
	}
	m, ok := data.(map[string]any)
	if !ok {
		return value.Value{}, chainerr.Shapef(op, 0, "", "expected an object with name/values, got %T", data)
	}
	name, ok := m["name"].(string)
	if !ok {
		return value.Value{}, chainerr.Shapef(op, 0, "", "missing string \"name\"")
	}
	for _, vd := range variants {
		if vd.Name != name {
			continue
		}
		fieldsVal, err := compositeFromSelfDescribing(m["values"], vd.Fields, reg)
		if err != nil {
			return value.Value{}, chainerr.Wrap(op, err)
		}
		c := fieldsVal.AsComposite()
		if c.Shape == value.Named {
			return value.NamedVariant(name, c.Named...), nil
		}
		return value.Variant(name, c.Unnamed...), nil
	}
	return value.Value{}, chainerr.NotFoundf(op, name, "variant")
}

func sequenceFromSelfDescribing(data any, elem typeregistry.TypeID, reg *typeregistry.Registry) (value.Value, error) {
	const op = "valueserde.sequenceFromSelfDescribing"
	if s, ok := data.(string); ok {
		return bytesAsComposite(s, elem, reg)
	}
	items, err := asSlice(data)
	if err != nil {
		return value.Value{}, chainerr.Wrap(op, err)
	}
	out := make([]value.Value, len(items))
	for i, it := range items {
		out[i], err = FromSelfDescribing(it, elem, reg)
		if err != nil {
			return value.Value{}, err
		}
	}
	return value.NewComposite(out...), nil
}

func arrayFromSelfDescribing(data any, elem typeregistry.TypeID, length uint32, reg *typeregistry.Registry) (value.Value, error) {
	const op = "valueserde.arrayFromSelfDescribing"
	if s, ok := data.(string); ok {
		v, err := bytesAsComposite(s, elem, reg)
		if err != nil {
			return value.Value{}, err
		}
		if uint32(v.AsComposite().Len()) != length {
			return value.Value{}, chainerr.Capacityf(op, "expected %d elements, got %d", length, v.AsComposite().Len())
		}
		return v, nil
	}
	items, err := asSlice(data)
	if err != nil {
		return value.Value{}, chainerr.Wrap(op, err)
	}
	if uint32(len(items)) != length {
		return value.Value{}, chainerr.Capacityf(op, "expected %d elements, got %d", length, len(items))
	}
	out := make([]value.Value, len(items))
	for i, it := range items {
		out[i], err = FromSelfDescribing(it, elem, reg)
		if err != nil {
			return value.Value{}, err
		}
	}
	return value.NewComposite(out...), nil
}

// bytesAsComposite reconstructs a byte-element composite from the text
// form PresentBytesAsText produced. Windows-1252 fallback is one-way
// (the decoder cannot tell which legacy encoding originally produced a
// given string), so this path assumes UTF-8 and is exact for the common
// case where PresentBytesAsText took its UTF-8-passthrough branch.
func bytesAsComposite(s string, elem typeregistry.TypeID, reg *typeregistry.Registry) (value.Value, error) {
	const op = "valueserde.bytesAsComposite"
	desc, err := reg.Resolve(elem)
	if err != nil {
		return value.Value{}, chainerr.Wrap(op, err)
	}
	if desc.Def.Kind != typeregistry.KindPrimitive || desc.Def.Primitive != typeregistry.U8 {
		return value.Value{}, chainerr.Shapef(op, uint64(elem), desc.PathString(), "string form only valid for a u8 element type")
	}
	raw := []byte(s)
	out := make([]value.Value, len(raw))
	for i, b := range raw {
		out[i] = value.Uint(big.NewInt(int64(b)))
	}
	return value.NewComposite(out...), nil
}

func tupleFromSelfDescribing(data any, elems []typeregistry.TypeID, reg *typeregistry.Registry) (value.Value, error) {
	const op = "valueserde.tupleFromSelfDescribing"
	items, err := asSlice(data)
	if err != nil {
		return value.Value{}, chainerr.Wrap(op, err)
	}
	if len(items) != len(elems) {
		return value.Value{}, chainerr.Shapef(op, 0, "", "expected %d tuple elements, got %d", len(elems), len(items))
	}
	out := make([]value.Value, len(elems))
	for i, id := range elems {
		out[i], err = FromSelfDescribing(items[i], id, reg)
		if err != nil {
			return value.Value{}, err
		}
	}
	return value.NewComposite(out...), nil
}

func bitSeqFromSelfDescribing(data any) (value.Value, error) {
	const op = "valueserde.bitSeqFromSelfDescribing"
	if bf, ok := data.(bitSeqForm); ok {
		data = map[string]any{"len": bf.Len, "bits": bf.Bits}
	}
	m, ok := data.(map[string]any)
	if !ok {
		return value.Value{}, chainerr.Shapef(op, 0, "", "expected bit-sequence object, got %T", data)
	}
	n, err := toBigInt(m["len"])
	if err != nil {
		return value.Value{}, chainerr.Wrap(op, err)
	}
	hexStr, ok := m["bits"].(string)
	if !ok {
		return value.Value{}, chainerr.Shapef(op, 0, "", "missing string \"bits\"")
	}
	packed, err := hexDecode(hexStr)
	if err != nil {
		return value.Value{}, chainerr.Wrap(op, err)
	}
	count := int(n.Int64())
	bits := make([]value.Bit, count)
	for i := 0; i < count; i++ {
		bits[i] = packed[i/8]&(1<<uint(i%8)) != 0
	}
	return value.BitSeq(bits...), nil
}

// asByteSequence recognizes an unnamed composite where every element is an
// untagged u8 (an Unnamed Uint in 0..255 with no nested fields) and returns
// its packed bytes. A single-element composite is left as a regular array
// so a lone byte doesn't get misread as "text".
func asByteSequence(c value.Composite) ([]byte, bool) {
	if c.Shape != value.Unnamed || len(c.Unnamed) < 2 {
		return nil, false
	}
	out := make([]byte, len(c.Unnamed))
	for i, f := range c.Unnamed {
		if f.Shape() != value.ShapeUint {
			return nil, false
		}
		n := f.AsBigInt()
		if !n.IsUint64() || n.Uint64() > 0xff {
			return nil, false
		}
		out[i] = byte(n.Uint64())
	}
	return out, true
}

// PresentBytesAsText renders a byte sequence for self-describing output:
// valid UTF-8 passes through unchanged, otherwise the bytes are decoded as
// Windows-1252 (the corpus's fallback legacy encoding for raw byte data),
// matching the teacher's internal/reader/value.go decode-with-fallback
// approach to turning arbitrary on-disk bytes into presentable text.
func PresentBytesAsText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return hexEncode(raw)
	}
	return string(decoded)
}

func named(fields []typeregistry.Field) bool {
	for _, f := range fields {
		if f.Named() {
			return true
		}
	}
	return len(fields) == 0
}

func asSlice(data any) ([]any, error) {
	const op = "valueserde.asSlice"
	s, ok := data.([]any)
	if !ok {
		return nil, chainerr.Shapef(op, 0, "", "expected an array, got %T", data)
	}
	return s, nil
}

const hexDigits = "0123456789abcdef"

func hexEncode(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexDigits[v>>4]
		out[i*2+1] = hexDigits[v&0xf]
	}
	return string(out)
}

func hexDecode(s string) ([]byte, error) {
	const op = "valueserde.hexDecode"
	if len(s)%2 != 0 {
		return nil, chainerr.Shapef(op, 0, "", "odd-length hex string")
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi, err := hexNibble(s[i*2])
		if err != nil {
			return nil, err
		}
		lo, err := hexNibble(s[i*2+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, chainerr.Shapef("valueserde.hexNibble", 0, "", "invalid hex digit %q", c)
	}
}
