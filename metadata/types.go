// Package metadata holds the pallet/runtime-API/extrinsic catalog decoded
// from a chain's wire metadata: an ordered, name- and index-searchable
// model that owns a type registry (package typeregistry) and is read-only
// once built. It is built by package wire, optionally compacted by package
// strip, and consumed by package codec and package hash.
package metadata

import "github.com/dynascale/scalekit/typeregistry"

// StorageHasher enumerates the hashing functions usable on a storage map
// key part. Distinct from the content hash of package hash.
type StorageHasher uint8

const (
	Blake2_128 StorageHasher = iota
	Blake2_256
	Blake2_128Concat
	Twox128
	Twox256
	Twox64Concat
	Identity
)

func (h StorageHasher) String() string {
	switch h {
	case Blake2_128:
		return "Blake2_128"
	case Blake2_256:
		return "Blake2_256"
	case Blake2_128Concat:
		return "Blake2_128Concat"
	case Twox128:
		return "Twox128"
	case Twox256:
		return "Twox256"
	case Twox64Concat:
		return "Twox64Concat"
	case Identity:
		return "Identity"
	default:
		return "unknown-hasher"
	}
}

// StorageModifier describes whether a storage entry has a declared
// default or is Optional (None when absent).
type StorageModifier uint8

const (
	Optional StorageModifier = iota
	DefaultValue
)

// StorageKeyPart is one key component of a map-style storage entry: its
// type id and the hasher used to mix it into the storage key.
type StorageKeyPart struct {
	Hasher StorageHasher
	Type   typeregistry.TypeID
}

// StorageEntry describes one storage item of a pallet.
type StorageEntry struct {
	Name      string
	Modifier  StorageModifier
	KeyParts  []StorageKeyPart // empty for a plain (non-map) value
	ValueType typeregistry.TypeID
	Default   []byte // raw SCALE-encoded default, when Modifier == DefaultValue
	Docs      []string
}

// Constant is a pallet-scoped named constant with a fixed encoded value.
type Constant struct {
	Name  string
	Type  typeregistry.TypeID
	Value []byte // raw SCALE-encoded value
	Docs  []string
}

// ViewFunction is a modern-metadata-only read query exposed by a pallet,
// distinct from a Runtime API method in that it is pallet-scoped and
// identified by a 32-byte query id rather than a trait/method name pair.
type ViewFunction struct {
	Name       string
	ID         [32]byte
	Inputs     []NamedInput
	OutputType typeregistry.TypeID
	Docs       []string
}

// NamedInput is a named, typed parameter — shared shape for view function
// and runtime API method inputs.
type NamedInput struct {
	Name string
	Type typeregistry.TypeID
}

// Pallet is one module of the runtime's callable/storable surface.
type Pallet struct {
	Name string
	// Index is the pallet's position in the outer Call/Event/Error enums
	// for modern metadata. CallIndex/EventIndex/ErrorIndex below are the
	// dispatch bytes actually used to decode each kind and may diverge
	// from Index (and from each other) for legacy metadata — see spec
	// Design Note on the ambiguity between call/event/error pallet
	// indices in older wire versions.
	Index uint8

	CallIndex  uint8
	EventIndex uint8
	ErrorIndex uint8

	CallType  typeregistry.TypeID
	HasCall   bool
	EventType typeregistry.TypeID
	HasEvent  bool
	ErrorType typeregistry.TypeID
	HasError  bool

	Storage       *StorageSection
	Constants     []Constant
	ViewFunctions []ViewFunction // modern versions only; nil otherwise
	// AssociatedTypes maps a name (e.g. "Hasher", "AccountId") to a type
	// id, letting a client derive chain-wide defaults without hard-coding
	// them. Preserved across stripping even when the pallet is otherwise
	// emptied (the System-pallet special case, spec §4.5 step 2).
	AssociatedTypes map[string]typeregistry.TypeID

	Docs []string

	constants *orderedMap[Constant]
	storageByName *orderedMap[StorageEntry]
}

// StorageSection groups a pallet's storage entries under their common
// prefix (used to build storage keys, see metadata.StorageEntry.Key).
type StorageSection struct {
	Prefix  string
	Entries []StorageEntry
}

// RuntimeAPIMethod is one read-only query method of a Runtime API trait.
type RuntimeAPIMethod struct {
	Name       string
	Inputs     []NamedInput
	OutputType typeregistry.TypeID
	Docs       []string
}

// RuntimeAPI is a named trait of methods the runtime exposes for
// client-side, non-dispatching queries.
type RuntimeAPI struct {
	Name    string
	Methods []RuntimeAPIMethod
	Docs    []string

	methodsByName *orderedMap[RuntimeAPIMethod]
}

// TransactionExtension is one named fragment of per-transaction metadata
// carried by the extrinsic format.
type TransactionExtension struct {
	Identifier string
	ExtraType    typeregistry.TypeID // encoded in the transaction bytes
	ImplicitType typeregistry.TypeID // mixed into the signed payload only
}

// ExtrinsicFormat describes how extrinsics are assembled/parsed: the
// address and signature types, the supported format versions, and a
// versioned map of transaction-extension chains (v5 metadata can declare
// more than one chain, selected by an explicit extension-version byte;
// v4 metadata declares exactly one, used implicitly).
type ExtrinsicFormat struct {
	AddressType   typeregistry.TypeID
	SignatureType typeregistry.TypeID
	// SupportedVersions is non-empty; the highest is used for new
	// encoding and for decoding legacy transactions lacking an explicit
	// extension version.
	SupportedVersions []uint8
	// Extensions maps an extension-chain version byte to its ordered
	// list of extensions. For v4-only metadata this has exactly one
	// entry keyed by that metadata's only version.
	Extensions map[uint8][]TransactionExtension
}

// HighestVersion returns the largest entry of SupportedVersions.
func (e ExtrinsicFormat) HighestVersion() uint8 {
	var max uint8
	for i, v := range e.SupportedVersions {
		if i == 0 || v > max {
			max = v
		}
	}
	return max
}

// OuterEnums names the umbrella types for Call/Event/Error, one variant
// per pallet.
type OuterEnums struct {
	CallType  typeregistry.TypeID
	EventType typeregistry.TypeID
	ErrorType typeregistry.TypeID
}

// CustomValue is a name-keyed, caller-defined addition to the metadata: a
// type id plus its raw encoded bytes.
type CustomValue struct {
	Name  string
	Type  typeregistry.TypeID
	Value []byte
}
