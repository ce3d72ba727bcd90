// Package typeregistry holds the portable registry of type descriptors
// referenced by chain metadata: a contiguous, numerically-indexed
// collection supporting O(1) resolution, bulk retention with id remapping,
// and structural traversal of the reference graph.
//
// The registry is built once from wire bytes (see package wire), optionally
// compacted by package strip, and is read-only thereafter.
package typeregistry

// TypeID indexes a TypeDescriptor within a Registry. Ids are stable for the
// lifetime of a Registry and are only ever renumbered by Retain, which
// returns an IDMap for rewriting ids stored outside the registry.
type TypeID uint32

// PrimitiveKind enumerates the SCALE primitive kinds.
type PrimitiveKind uint8

const (
	Bool PrimitiveKind = iota
	Char
	Str
	U8
	U16
	U32
	U64
	U128
	I8
	I16
	I32
	I64
	I128
	U256
	I256
)

func (p PrimitiveKind) String() string {
	switch p {
	case Bool:
		return "bool"
	case Char:
		return "char"
	case Str:
		return "str"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case U128:
		return "u128"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case I128:
		return "i128"
	case U256:
		return "u256"
	case I256:
		return "i256"
	default:
		return "unknown-primitive"
	}
}

// Signed reports whether p is a signed integer kind.
func (p PrimitiveKind) Signed() bool {
	switch p {
	case I8, I16, I32, I64, I128, I256:
		return true
	default:
		return false
	}
}

// BitWidth returns the bit width of an integer primitive kind, or 0 for
// bool/char/str.
func (p PrimitiveKind) BitWidth() int {
	switch p {
	case U8, I8:
		return 8
	case U16, I16:
		return 16
	case U32, I32:
		return 32
	case U64, I64:
		return 64
	case U128, I128:
		return 128
	case U256, I256:
		return 256
	default:
		return 0
	}
}

// DefinitionKind tags which shape a Definition holds. A tagged struct
// (rather than an interface hierarchy) keeps the codec's per-kind dispatch
// a simple, closed switch, matching how this corpus favors small stable
// tagged unions over virtual dispatch for a fixed, known set of shapes.
type DefinitionKind uint8

const (
	KindComposite DefinitionKind = iota
	KindVariant
	KindSequence
	KindArray
	KindTuple
	KindPrimitive
	KindCompact
	KindBitSequence
)

func (k DefinitionKind) String() string {
	switch k {
	case KindComposite:
		return "composite"
	case KindVariant:
		return "variant"
	case KindSequence:
		return "sequence"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindPrimitive:
		return "primitive"
	case KindCompact:
		return "compact"
	case KindBitSequence:
		return "bitsequence"
	default:
		return "unknown-kind"
	}
}

// Field is an optional name plus a type id.
type Field struct {
	Name     string // empty for unnamed fields
	Type     TypeID
	TypeName string // best-effort display name of Type's path, for error messages
	Docs     []string
}

// Named reports whether the field has a name.
func (f Field) Named() bool { return f.Name != "" }

// VariantDef is one alternative of a Variant definition: a name, its
// on-wire discriminant byte, and its fields.
type VariantDef struct {
	Name   string
	Index  uint8
	Fields []Field
	Docs   []string
}

// TypeParam is a generic type parameter: a name plus an optional
// concrete-type reference (absent when the parameter is itself generic
// and unresolved in this registry).
type TypeParam struct {
	Name    string
	Type    TypeID
	HasType bool
}

// Definition is the shape of a type: exactly one of the kinds named by
// Kind is populated; the rest are zero values.
type Definition struct {
	Kind DefinitionKind

	// KindComposite
	Fields []Field

	// KindVariant
	Variants []VariantDef

	// KindSequence, KindArray, KindCompact: Element is the element/inner
	// type id.
	Element TypeID

	// KindArray
	Length uint32

	// KindTuple
	Tuple []TypeID

	// KindPrimitive
	Primitive PrimitiveKind

	// KindBitSequence
	BitOrderType TypeID
	BitStoreType TypeID
}

// TypeDescriptor is one entry of the registry: a path (namespace segments +
// identifier), optional generic parameters, and a definition.
type TypeDescriptor struct {
	Path   []string // e.g. ["frame_system", "pallet", "Call"]
	Params []TypeParam
	Def    Definition
	Docs   []string
}

// PathString renders Path as a double-colon-joined display name, or
// "<anonymous>" for types with no path (tuples, primitives, etc.).
func (d *TypeDescriptor) PathString() string {
	if len(d.Path) == 0 {
		return "<anonymous>"
	}
	out := d.Path[0]
	for _, seg := range d.Path[1:] {
		out += "::" + seg
	}
	return out
}
