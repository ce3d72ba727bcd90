// Package hash computes a content hash of a metadata.Metadata (or a piece
// of it) that is stable under reordering of unordered collections
// (pallets, constants, storage entries, variants, named fields) and
// sensitive to any rename or retyping. It is grounded on the teacher's
// hive/subkeys.Hash (a small self-contained hash over names) and
// hive/verify.Checksum (an XOR-accumulation over fixed-size words — the
// same composition law this package uses for unordered bags), built atop
// github.com/cespare/xxhash/v2 as the per-node primitive.
package hash

import (
	"github.com/dynascale/scalekit/internal/twox"
	"github.com/dynascale/scalekit/metadata"
	"github.com/dynascale/scalekit/typeregistry"
)

// Sum is the 32-byte content hash output, matching the original
// implementation's HASH_LEN.
type Sum [32]byte

// Tag bytes distinguish node kinds so that, for instance, a length-1
// Composite never hashes the same as the single field it wraps.
const (
	tagPrimitive byte = iota
	tagComposite
	tagField
	tagVariantType
	tagVariant
	tagSequence
	tagArray
	tagTuple
	tagCompact
	tagBitSequence
	tagPallet
	tagConstant
	tagStorageEntry
	tagStorageKeyPart
	tagViewFunction
	tagNamedInput
	tagRuntimeAPI
	tagRuntimeAPIMethod
	tagCustomValue
	tagExtrinsicFormat
	tagTransactionExtension
	tagOuterEnums
	tagMetadata
)

// cycleSentinel is substituted for the hash of a type id already on the
// active recursion path, breaking cycles (e.g. a self-referential
// DispatchError type) without needing unbounded recursion bookkeeping
// beyond the active path itself.
var cycleSentinel = leaf(0xff, []byte("scalekit.hash.cycle"))

func leaf(tag byte, data []byte) Sum {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, tag)
	buf = append(buf, data...)
	return Sum(twox.Sum256(buf))
}

func node(tag byte, parts ...[]byte) Sum {
	total := 1
	for _, p := range parts {
		total += len(p)
	}
	buf := make([]byte, 0, total)
	buf = append(buf, tag)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return Sum(twox.Sum256(buf))
}

func bytesOf(s Sum) []byte { return s[:] }

// bag combines child hashes order-independently: XOR-accumulate them, then
// fold the accumulator through one more hash (tagged) so the result
// doesn't leak as a bare XOR of its children. Declaration order of
// pallets, constants, storage entries, variants, and named fields never
// affects the result.
func bag(tag byte, parts []Sum) Sum {
	var acc [32]byte
	for _, p := range parts {
		for i := range acc {
			acc[i] ^= p[i]
		}
	}
	return node(tag, acc[:])
}

// seq combines child hashes order-sensitively by concatenation: used for
// tuple elements and anywhere position carries meaning.
func seq(tag byte, parts []Sum) Sum {
	bufs := make([][]byte, len(parts))
	for i, p := range parts {
		bufs[i] = bytesOf(p)
	}
	return node(tag, bufs...)
}

// typeHash computes the structural hash of a type, independent of its
// numeric id (ids are not stable across a strip/remap, so hashing them
// directly would defeat the point of a content hash).
func typeHash(reg *typeregistry.Registry, id typeregistry.TypeID, active map[typeregistry.TypeID]bool) Sum {
	if active[id] {
		return cycleSentinel
	}
	desc, err := reg.Resolve(id)
	if err != nil {
		return leaf(0xfe, []byte("scalekit.hash.unresolved"))
	}
	active[id] = true
	defer delete(active, id)

	switch desc.Def.Kind {
	case typeregistry.KindPrimitive:
		return leaf(tagPrimitive, []byte{byte(desc.Def.Primitive)})
	case typeregistry.KindComposite:
		fields := make([]Sum, len(desc.Def.Fields))
		for i, f := range desc.Def.Fields {
			fields[i] = fieldHash(reg, f, active)
		}
		return bag(tagComposite, fields)
	case typeregistry.KindVariant:
		variants := make([]Sum, len(desc.Def.Variants))
		for i, vd := range desc.Def.Variants {
			fieldSeq := make([]Sum, len(vd.Fields))
			for j, f := range vd.Fields {
				fieldSeq[j] = fieldHash(reg, f, active)
			}
			variants[i] = node(tagVariant, []byte(vd.Name), []byte{vd.Index}, bytesOf(bag(tagVariant, fieldSeq)))
		}
		return bag(tagVariantType, variants)
	case typeregistry.KindSequence:
		inner := typeHash(reg, desc.Def.Element, active)
		return node(tagSequence, bytesOf(inner))
	case typeregistry.KindArray:
		inner := typeHash(reg, desc.Def.Element, active)
		return node(tagArray, []byte{byte(desc.Def.Length >> 24), byte(desc.Def.Length >> 16), byte(desc.Def.Length >> 8), byte(desc.Def.Length)}, bytesOf(inner))
	case typeregistry.KindTuple:
		elems := make([]Sum, len(desc.Def.Tuple))
		for i, id := range desc.Def.Tuple {
			elems[i] = typeHash(reg, id, active)
		}
		return seq(tagTuple, elems)
	case typeregistry.KindCompact:
		inner := typeHash(reg, desc.Def.Element, active)
		return node(tagCompact, bytesOf(inner))
	case typeregistry.KindBitSequence:
		order := typeHash(reg, desc.Def.BitOrderType, active)
		store := typeHash(reg, desc.Def.BitStoreType, active)
		return node(tagBitSequence, bytesOf(order), bytesOf(store))
	default:
		return leaf(0xfd, []byte("scalekit.hash.unknown-kind"))
	}
}

// fieldHash is hash(name) ⊕ hash(type) for a named field, or just the
// type hash for an unnamed one — renaming a field changes the hash even
// when the binary layout (the type) is unchanged, per spec.
func fieldHash(reg *typeregistry.Registry, f typeregistry.Field, active map[typeregistry.TypeID]bool) Sum {
	t := typeHash(reg, f.Type, active)
	if !f.Named() {
		return t
	}
	n := leaf(tagField, []byte(f.Name))
	var out Sum
	for i := range out {
		out[i] = n[i] ^ t[i]
	}
	return out
}

// Type hashes a single type by id, for callers that want to compare two
// types in isolation (e.g. confirming a pallet's AssociatedTypes entry is
// unchanged across a strip).
func Type(reg *typeregistry.Registry, id typeregistry.TypeID) Sum {
	return typeHash(reg, id, make(map[typeregistry.TypeID]bool))
}

// Constant hashes one pallet-scoped constant.
func Constant(reg *typeregistry.Registry, c metadata.Constant) Sum { return constantHash(reg, c) }

// StorageEntry hashes one pallet-scoped storage entry.
func StorageEntry(reg *typeregistry.Registry, e metadata.StorageEntry) Sum {
	return storageEntryHash(reg, e)
}

// CallVariant hashes a single variant definition in isolation — usable for
// any of a pallet's Call/Event/Error variants, found via the matching
// metadata.Pallet lookup method.
func CallVariant(reg *typeregistry.Registry, vd *typeregistry.VariantDef) Sum {
	fields := make([]Sum, len(vd.Fields))
	active := make(map[typeregistry.TypeID]bool)
	for i, f := range vd.Fields {
		fields[i] = fieldHash(reg, f, active)
	}
	return node(tagVariant, []byte(vd.Name), []byte{vd.Index}, bytesOf(bag(tagVariant, fields)))
}

func constantHash(reg *typeregistry.Registry, c metadata.Constant) Sum {
	t := typeHash(reg, c.Type, make(map[typeregistry.TypeID]bool))
	return node(tagConstant, []byte(c.Name), bytesOf(t), c.Value)
}

func storageKeyPartHash(reg *typeregistry.Registry, p metadata.StorageKeyPart) Sum {
	t := typeHash(reg, p.Type, make(map[typeregistry.TypeID]bool))
	return node(tagStorageKeyPart, []byte{byte(p.Hasher)}, bytesOf(t))
}

func storageEntryHash(reg *typeregistry.Registry, e metadata.StorageEntry) Sum {
	parts := make([]Sum, len(e.KeyParts))
	for i, p := range e.KeyParts {
		parts[i] = storageKeyPartHash(reg, p)
	}
	keySeq := seq(tagStorageEntry, parts)
	valueType := typeHash(reg, e.ValueType, make(map[typeregistry.TypeID]bool))
	return node(tagStorageEntry, []byte(e.Name), []byte{byte(e.Modifier)}, bytesOf(keySeq), bytesOf(valueType), e.Default)
}

func namedInputHash(reg *typeregistry.Registry, in metadata.NamedInput) Sum {
	t := typeHash(reg, in.Type, make(map[typeregistry.TypeID]bool))
	return node(tagNamedInput, []byte(in.Name), bytesOf(t))
}

func viewFunctionHash(reg *typeregistry.Registry, vf metadata.ViewFunction) Sum {
	inputs := make([]Sum, len(vf.Inputs))
	for i, in := range vf.Inputs {
		inputs[i] = namedInputHash(reg, in)
	}
	inputSeq := seq(tagViewFunction, inputs)
	out := typeHash(reg, vf.OutputType, make(map[typeregistry.TypeID]bool))
	return node(tagViewFunction, []byte(vf.Name), vf.ID[:], bytesOf(inputSeq), bytesOf(out))
}

// Pallet hashes one pallet's declared surface: its call/event/error
// variant types, storage, constants, and view functions. Constants,
// storage entries, and view functions are unordered bags; a pallet's
// call/event/error type is itself whatever KindVariant's own (also
// unordered) hash already is.
func Pallet(reg *typeregistry.Registry, p *metadata.Pallet) Sum {
	var callHash, eventHash, errorHash Sum
	if p.HasCall {
		callHash = typeHash(reg, p.CallType, make(map[typeregistry.TypeID]bool))
	}
	if p.HasEvent {
		eventHash = typeHash(reg, p.EventType, make(map[typeregistry.TypeID]bool))
	}
	if p.HasError {
		errorHash = typeHash(reg, p.ErrorType, make(map[typeregistry.TypeID]bool))
	}

	constants := make([]Sum, len(p.Constants))
	for i, c := range p.Constants {
		constants[i] = constantHash(reg, c)
	}
	constantsHash := bag(tagConstant, constants)

	var storageHash Sum
	if p.Storage != nil {
		entries := make([]Sum, len(p.Storage.Entries))
		for i, e := range p.Storage.Entries {
			entries[i] = storageEntryHash(reg, e)
		}
		storageHash = node(tagStorageEntry, []byte(p.Storage.Prefix), bytesOf(bag(tagStorageEntry, entries)))
	}

	views := make([]Sum, len(p.ViewFunctions))
	for i, vf := range p.ViewFunctions {
		views[i] = viewFunctionHash(reg, vf)
	}
	viewsHash := bag(tagViewFunction, views)

	return node(tagPallet,
		[]byte(p.Name),
		[]byte{p.CallIndex, p.EventIndex, p.ErrorIndex},
		bytesOf(callHash), bytesOf(eventHash), bytesOf(errorHash),
		bytesOf(constantsHash), bytesOf(storageHash), bytesOf(viewsHash),
	)
}

func runtimeAPIMethodHash(reg *typeregistry.Registry, m metadata.RuntimeAPIMethod) Sum {
	inputs := make([]Sum, len(m.Inputs))
	for i, in := range m.Inputs {
		inputs[i] = namedInputHash(reg, in)
	}
	inputSeq := seq(tagRuntimeAPIMethod, inputs)
	out := typeHash(reg, m.OutputType, make(map[typeregistry.TypeID]bool))
	return node(tagRuntimeAPIMethod, []byte(m.Name), bytesOf(inputSeq), bytesOf(out))
}

// RuntimeAPI hashes one Runtime API trait: its methods, as an unordered bag.
func RuntimeAPI(reg *typeregistry.Registry, a *metadata.RuntimeAPI) Sum {
	methods := make([]Sum, len(a.Methods))
	for i, m := range a.Methods {
		methods[i] = runtimeAPIMethodHash(reg, m)
	}
	return node(tagRuntimeAPI, []byte(a.Name), bytesOf(bag(tagRuntimeAPIMethod, methods)))
}

// CustomValue hashes one named custom value.
func CustomValue(reg *typeregistry.Registry, c metadata.CustomValue) Sum {
	t := typeHash(reg, c.Type, make(map[typeregistry.TypeID]bool))
	return node(tagCustomValue, []byte(c.Name), bytesOf(t), c.Value)
}

func extensionHash(reg *typeregistry.Registry, e metadata.TransactionExtension) Sum {
	extra := typeHash(reg, e.ExtraType, make(map[typeregistry.TypeID]bool))
	implicit := typeHash(reg, e.ImplicitType, make(map[typeregistry.TypeID]bool))
	return node(tagTransactionExtension, []byte(e.Identifier), bytesOf(extra), bytesOf(implicit))
}

func extrinsicFormatHash(reg *typeregistry.Registry, e metadata.ExtrinsicFormat) Sum {
	addr := typeHash(reg, e.AddressType, make(map[typeregistry.TypeID]bool))
	sig := typeHash(reg, e.SignatureType, make(map[typeregistry.TypeID]bool))

	versions := append([]byte(nil), e.SupportedVersions...)

	chainHashes := make([]Sum, 0, len(e.Extensions))
	for version, chain := range e.Extensions {
		exts := make([]Sum, len(chain))
		for i, ext := range chain {
			exts[i] = extensionHash(reg, ext)
		}
		chainHashes = append(chainHashes, node(tagTransactionExtension, []byte{version}, bytesOf(seq(tagTransactionExtension, exts))))
	}
	// Extensions is keyed by version byte, so the set of (version, chain)
	// pairs is itself an unordered bag across versions.
	extChainsHash := bag(tagTransactionExtension, chainHashes)

	return node(tagExtrinsicFormat, bytesOf(addr), bytesOf(sig), versions, bytesOf(extChainsHash))
}

func outerEnumsHash(reg *typeregistry.Registry, o metadata.OuterEnums) Sum {
	call := typeHash(reg, o.CallType, make(map[typeregistry.TypeID]bool))
	event := typeHash(reg, o.EventType, make(map[typeregistry.TypeID]bool))
	err := typeHash(reg, o.ErrorType, make(map[typeregistry.TypeID]bool))
	return node(tagOuterEnums, bytesOf(call), bytesOf(event), bytesOf(err))
}

// Metadata computes the whole-metadata content hash: an unordered bag over
// pallets, Runtime APIs, and custom values, combined with the (ordered,
// fixed-shape) extrinsic format and outer enums, plus the dispatch-error
// type when present — which always survives stripping (spec §4.5) so its
// hash is meaningful to compare across a strip.
func Metadata(md *metadata.Metadata) Sum {
	return MetadataSubset(md, nil, nil)
}

// MetadataSubset is Metadata restricted to the named pallets and/or
// Runtime APIs (nil meaning "all"); non-listed items are ignored
// entirely, not hashed as absent, matching the optional-subset scoped hash
// spec.md describes.
func MetadataSubset(md *metadata.Metadata, palletNames, apiNames []string) Sum {
	reg := md.Registry()

	pallets := md.Pallets()
	if palletNames != nil {
		want := make(map[string]bool, len(palletNames))
		for _, n := range palletNames {
			want[n] = true
		}
		filtered := pallets[:0:0]
		for _, p := range pallets {
			if want[p.Name] {
				filtered = append(filtered, p)
			}
		}
		pallets = filtered
	}
	palletHashes := make([]Sum, len(pallets))
	for i, p := range pallets {
		palletHashes[i] = Pallet(reg, p)
	}
	palletsHash := bag(tagPallet, palletHashes)

	apis := md.RuntimeAPIs()
	if apiNames != nil {
		want := make(map[string]bool, len(apiNames))
		for _, n := range apiNames {
			want[n] = true
		}
		filtered := apis[:0:0]
		for _, a := range apis {
			if want[a.Name] {
				filtered = append(filtered, a)
			}
		}
		apis = filtered
	}
	apiHashes := make([]Sum, len(apis))
	for i, a := range apis {
		apiHashes[i] = RuntimeAPI(reg, a)
	}
	apisHash := bag(tagRuntimeAPI, apiHashes)

	customs := md.CustomValues()
	customHashes := make([]Sum, len(customs))
	for i, c := range customs {
		customHashes[i] = CustomValue(reg, c)
	}
	customsHash := bag(tagCustomValue, customHashes)

	var dispatchHash Sum
	if id, ok := md.DispatchErrorType(); ok {
		dispatchHash = typeHash(reg, id, make(map[typeregistry.TypeID]bool))
	}

	return node(tagMetadata,
		bytesOf(palletsHash), bytesOf(apisHash), bytesOf(customsHash),
		bytesOf(extrinsicFormatHash(reg, md.ExtrinsicFormat())),
		bytesOf(outerEnumsHash(reg, md.OuterEnums())),
		bytesOf(dispatchHash),
	)
}
