// Package value holds the runtime-polymorphic value tree produced by
// decoding, built by user code, or produced by a generic deserializer, and
// consumed by the encoder or by a generic serializer. A Value is immutable
// once built; changes are made by constructing a new tree.
package value

import (
	"math/big"

	"github.com/dynascale/scalekit/typeregistry"
)

// Shape tags which alternative of the Value algebra a node holds.
type Shape uint8

const (
	ShapeBool Shape = iota
	ShapeChar
	ShapeStr
	ShapeUint // unsigned integer of any width up to 256 bits, held as big.Int
	ShapeInt  // signed integer of any width up to 256 bits, held as big.Int
	ShapeComposite
	ShapeVariant
	ShapeBitSequence
)

// CompositeShape distinguishes named-field structs from positional tuples.
type CompositeShape uint8

const (
	Unnamed CompositeShape = iota
	Named
)

// NamedField is one (name, value) pair of a Named composite. Order is
// preserved as produced (by the decoder, in declared field order) even
// though consumers matching fields for decode/encode purposes treat the
// order as irrelevant.
type NamedField struct {
	Name  string
	Value Value
}

// Composite is the shared payload of ShapeComposite and of a Variant's
// fields: either a Named list (order-sensitive for round-trip fidelity,
// order-insensitive for semantic field matching) or an Unnamed list
// (position-sensitive).
type Composite struct {
	Shape    CompositeShape
	Named    []NamedField
	Unnamed  []Value
}

// Len returns the number of fields regardless of shape.
func (c Composite) Len() int {
	if c.Shape == Named {
		return len(c.Named)
	}
	return len(c.Unnamed)
}

// Bit is one element of a BitSequence.
type Bit = bool

// Value is an immutable node of the runtime value tree. The zero Value is
// not meaningful; always construct through the functions in this package.
type Value struct {
	shape Shape

	boolVal bool
	charVal rune
	strVal  string
	intVal  *big.Int // ShapeUint / ShapeInt

	composite Composite // ShapeComposite, or a Variant's fields

	variantName string // ShapeVariant

	bits []Bit // ShapeBitSequence

	ctx    typeregistry.TypeID
	hasCtx bool
}

// Shape reports which alternative v holds.
func (v Value) Shape() Shape { return v.shape }

// Context returns the registry type id that produced v during decode, if
// any. User-constructed values (and values after EraseContext) have
// hasCtx == false.
func (v Value) Context() (typeregistry.TypeID, bool) { return v.ctx, v.hasCtx }

// WithContext returns a copy of v tagged with the given type id.
func (v Value) WithContext(id typeregistry.TypeID) Value {
	v.ctx, v.hasCtx = id, true
	return v
}

// EraseContext returns a copy of v (recursively) with all context tags
// removed, for comparing decoded trees against user-constructed ones per
// the round-trip testable property.
func (v Value) EraseContext() Value {
	v.hasCtx = false
	switch v.shape {
	case ShapeComposite:
		v.composite = eraseComposite(v.composite)
	case ShapeVariant:
		v.composite = eraseComposite(v.composite)
	}
	return v
}

func eraseComposite(c Composite) Composite {
	switch c.Shape {
	case Named:
		out := make([]NamedField, len(c.Named))
		for i, f := range c.Named {
			out[i] = NamedField{Name: f.Name, Value: f.Value.EraseContext()}
		}
		return Composite{Shape: Named, Named: out}
	default:
		out := make([]Value, len(c.Unnamed))
		for i, f := range c.Unnamed {
			out[i] = f.EraseContext()
		}
		return Composite{Shape: Unnamed, Unnamed: out}
	}
}

// --- constructors ---

// Bool constructs a boolean primitive value.
func Bool(b bool) Value { return Value{shape: ShapeBool, boolVal: b} }

// Char constructs a Unicode scalar value primitive.
func Char(r rune) Value { return Value{shape: ShapeChar, charVal: r} }

// Str constructs a UTF-8 string primitive.
func Str(s string) Value { return Value{shape: ShapeStr, strVal: s} }

// Uint constructs an unsigned integer primitive of any width up to 256
// bits (u8..u128, u256).
func Uint(n *big.Int) Value { return Value{shape: ShapeUint, intVal: new(big.Int).Set(n)} }

// UintFromU64 is a convenience constructor for small unsigned values.
func UintFromU64(n uint64) Value { return Uint(new(big.Int).SetUint64(n)) }

// Int constructs a signed integer primitive of any width up to 256 bits
// (i8..i128, i256).
func Int(n *big.Int) Value { return Value{shape: ShapeInt, intVal: new(big.Int).Set(n)} }

// IntFromI64 is a convenience constructor for small signed values.
func IntFromI64(n int64) Value { return Int(big.NewInt(n)) }

// Bool/Char/Str/Uint/Int accessors. Calling the wrong accessor for the
// held Shape returns the zero value; callers that need strict checking
// should inspect Shape first (the codec always does).

func (v Value) AsBool() bool    { return v.boolVal }
func (v Value) AsChar() rune    { return v.charVal }
func (v Value) AsStr() string   { return v.strVal }
func (v Value) AsBigInt() *big.Int {
	if v.intVal == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v.intVal)
}

// NewComposite builds an unnamed (positional) composite value.
func NewComposite(fields ...Value) Value {
	return Value{shape: ShapeComposite, composite: Composite{Shape: Unnamed, Unnamed: fields}}
}

// NewNamedComposite builds a named composite value.
func NewNamedComposite(fields ...NamedField) Value {
	return Value{shape: ShapeComposite, composite: Composite{Shape: Named, Named: fields}}
}

// Field is a convenience constructor for a NamedField.
func Field(name string, v Value) NamedField { return NamedField{Name: name, Value: v} }

// AsComposite returns the composite payload of a ShapeComposite value.
func (v Value) AsComposite() Composite { return v.composite }

// Variant builds a variant value with unnamed (positional) fields.
func Variant(name string, fields ...Value) Value {
	return Value{shape: ShapeVariant, variantName: name, composite: Composite{Shape: Unnamed, Unnamed: fields}}
}

// NamedVariant builds a variant value with named fields.
func NamedVariant(name string, fields ...NamedField) Value {
	return Value{shape: ShapeVariant, variantName: name, composite: Composite{Shape: Named, Named: fields}}
}

// VariantName returns the name of a ShapeVariant value.
func (v Value) VariantName() string { return v.variantName }

// VariantFields returns the fields composite of a ShapeVariant value.
func (v Value) VariantFields() Composite { return v.composite }

// BitSeq builds a bit-sequence value from individual bits, in declared
// (not necessarily byte-packed) order.
func BitSeq(bits ...Bit) Value {
	return Value{shape: ShapeBitSequence, bits: append(make([]Bit, 0, len(bits)), bits...)}
}

// AsBits returns the bits of a ShapeBitSequence value.
func (v Value) AsBits() []Bit { return v.bits }

// Equal reports structural equality. Named composite comparison is
// order-sensitive (round-trip fidelity with ordered wire data); callers
// wanting semantic (order-insensitive) field matching should use
// EqualSemantic or match fields by name themselves.
func (v Value) Equal(o Value) bool {
	if v.shape != o.shape {
		return false
	}
	switch v.shape {
	case ShapeBool:
		return v.boolVal == o.boolVal
	case ShapeChar:
		return v.charVal == o.charVal
	case ShapeStr:
		return v.strVal == o.strVal
	case ShapeUint, ShapeInt:
		return v.AsBigInt().Cmp(o.AsBigInt()) == 0
	case ShapeComposite:
		return compositeEqual(v.composite, o.composite, false)
	case ShapeVariant:
		return v.variantName == o.variantName && compositeEqual(v.composite, o.composite, false)
	case ShapeBitSequence:
		return bitsEqual(v.bits, o.bits)
	default:
		return false
	}
}

// EqualSemantic is like Equal but treats Named composite field order as
// irrelevant, matching the decoder's own variant/field-matching semantics.
func (v Value) EqualSemantic(o Value) bool {
	if v.shape != o.shape {
		return false
	}
	switch v.shape {
	case ShapeComposite:
		return compositeEqual(v.composite, o.composite, true)
	case ShapeVariant:
		return v.variantName == o.variantName && compositeEqual(v.composite, o.composite, true)
	default:
		return v.Equal(o)
	}
}

func bitsEqual(a, b []Bit) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func compositeEqual(a, b Composite, unordered bool) bool {
	if a.Shape != b.Shape {
		return false
	}
	if a.Shape == Unnamed {
		if len(a.Unnamed) != len(b.Unnamed) {
			return false
		}
		for i := range a.Unnamed {
			if !a.Unnamed[i].EqualSemantic(b.Unnamed[i]) {
				return false
			}
		}
		return true
	}
	if len(a.Named) != len(b.Named) {
		return false
	}
	if !unordered {
		for i := range a.Named {
			if a.Named[i].Name != b.Named[i].Name || !a.Named[i].Value.EqualSemantic(b.Named[i].Value) {
				return false
			}
		}
		return true
	}
	byName := make(map[string]Value, len(b.Named))
	for _, f := range b.Named {
		byName[f.Name] = f.Value
	}
	for _, f := range a.Named {
		other, ok := byName[f.Name]
		if !ok || !f.Value.EqualSemantic(other) {
			return false
		}
	}
	return true
}
