// Package wireadapt holds one adapter file per supported wire version
// (legacy.go, intermediate.go, current.go), each translating its version's
// byte layout into the version-independent metadata.Metadata model. This
// file holds the decode/encode primitives shared by all three: the
// portable type registry, pallets, extrinsic format and the small
// variable-length scalars (strings, compact-prefixed vectors, options)
// that don't depend on wire version.
//
// Grounded on the teacher's internal/reader (structural, hand-written
// decode of a binary tree shape, not generic over a schema) and
// internal/format (signature + version-field dispatch).
package wireadapt

import (
	"math/big"
	"unicode/utf8"

	"github.com/dynascale/scalekit/chainerr"
	"github.com/dynascale/scalekit/internal/scalebuf"
	"github.com/dynascale/scalekit/metadata"
	"github.com/dynascale/scalekit/typeregistry"
)

func bigFromUint64(v uint64) *big.Int { return new(big.Int).SetUint64(v) }

const opPrefix = "wireadapt"

func readCompactU32(cur *scalebuf.Cursor) (uint32, error) {
	n, err := cur.Compact()
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() || n.Uint64() > 0xFFFFFFFF {
		return 0, chainerr.Capacityf(opPrefix+".readCompactU32", "compact value %s does not fit in 32 bits", n.String())
	}
	return uint32(n.Uint64()), nil
}

func readTypeID(cur *scalebuf.Cursor) (typeregistry.TypeID, error) {
	n, err := readCompactU32(cur)
	return typeregistry.TypeID(n), err
}

func readBool(cur *scalebuf.Cursor) (bool, error) {
	b, err := cur.Byte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, chainerr.Shapef(opPrefix+".readBool", 0, "", "invalid bool discriminant %d", b)
	}
}

func readBytes(cur *scalebuf.Cursor) ([]byte, error) {
	n, err := readCompactU32(cur)
	if err != nil {
		return nil, err
	}
	return cur.Take(int(n))
}

func readString(cur *scalebuf.Cursor) (string, error) {
	b, err := readBytes(cur)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", chainerr.Shapef(opPrefix+".readString", 0, "", "invalid UTF-8")
	}
	return string(b), nil
}

func readStringSlice(cur *scalebuf.Cursor) ([]string, error) {
	n, err := readCompactU32(cur)
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := range out {
		out[i], err = readString(cur)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// readOptionTypeID decodes Option<Compact<u32>>: a presence byte (0/1)
// followed by the type id when present.
func readOptionTypeID(cur *scalebuf.Cursor) (typeregistry.TypeID, bool, error) {
	present, err := readBool(cur)
	if err != nil || !present {
		return 0, false, err
	}
	id, err := readTypeID(cur)
	return id, err == nil, err
}

func putCompactU32(buf *scalebuf.Buffer, v uint32) {
	buf.PutCompact(bigFromUint64(uint64(v)))
}

func putTypeID(buf *scalebuf.Buffer, id typeregistry.TypeID) { putCompactU32(buf, uint32(id)) }

func putBool(buf *scalebuf.Buffer, b bool) {
	if b {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func putBytes(buf *scalebuf.Buffer, b []byte) {
	putCompactU32(buf, uint32(len(b)))
	buf.Write(b)
}

func putString(buf *scalebuf.Buffer, s string) { putBytes(buf, []byte(s)) }

func putStringSlice(buf *scalebuf.Buffer, ss []string) {
	putCompactU32(buf, uint32(len(ss)))
	for _, s := range ss {
		putString(buf, s)
	}
}

func putOptionTypeID(buf *scalebuf.Buffer, id typeregistry.TypeID, has bool) {
	putBool(buf, has)
	if has {
		putTypeID(buf, id)
	}
}

// --- type registry ---

// decodeTypeRegistry decodes Compact<len> followed by that many
// (id, TypeDescriptor) pairs, in ascending, contiguous id order starting
// at 0 — the layout every adapter's type section shares regardless of
// wire version.
func decodeTypeRegistry(cur *scalebuf.Cursor) (*typeregistry.Registry, error) {
	const op = opPrefix + ".decodeTypeRegistry"
	n, err := readCompactU32(cur)
	if err != nil {
		return nil, chainerr.Wrap(op, err)
	}
	descs := make([]typeregistry.TypeDescriptor, n)
	for i := uint32(0); i < n; i++ {
		id, err := readTypeID(cur)
		if err != nil {
			return nil, chainerr.Wrap(op, err)
		}
		if id != typeregistry.TypeID(i) {
			return nil, chainerr.Shapef(op, uint64(id), "", "type registry ids must be contiguous ascending from 0, expected %d got %d", i, id)
		}
		d, err := decodeTypeDescriptor(cur)
		if err != nil {
			return nil, chainerr.Wrap(op, err)
		}
		descs[i] = d
	}
	return typeregistry.New(descs), nil
}

func encodeTypeRegistry(buf *scalebuf.Buffer, reg *typeregistry.Registry) {
	putCompactU32(buf, uint32(reg.Len()))
	for i := 0; i < reg.Len(); i++ {
		d := reg.MustResolve(typeregistry.TypeID(i))
		putTypeID(buf, typeregistry.TypeID(i))
		encodeTypeDescriptor(buf, d)
	}
}

func decodeTypeDescriptor(cur *scalebuf.Cursor) (typeregistry.TypeDescriptor, error) {
	const op = opPrefix + ".decodeTypeDescriptor"
	path, err := readStringSlice(cur)
	if err != nil {
		return typeregistry.TypeDescriptor{}, chainerr.Wrap(op, err)
	}
	paramCount, err := readCompactU32(cur)
	if err != nil {
		return typeregistry.TypeDescriptor{}, chainerr.Wrap(op, err)
	}
	params := make([]typeregistry.TypeParam, paramCount)
	for i := range params {
		name, err := readString(cur)
		if err != nil {
			return typeregistry.TypeDescriptor{}, chainerr.Wrap(op, err)
		}
		id, has, err := readOptionTypeID(cur)
		if err != nil {
			return typeregistry.TypeDescriptor{}, chainerr.Wrap(op, err)
		}
		params[i] = typeregistry.TypeParam{Name: name, Type: id, HasType: has}
	}
	def, err := decodeDefinition(cur)
	if err != nil {
		return typeregistry.TypeDescriptor{}, chainerr.Wrap(op, err)
	}
	docs, err := readStringSlice(cur)
	if err != nil {
		return typeregistry.TypeDescriptor{}, chainerr.Wrap(op, err)
	}
	return typeregistry.TypeDescriptor{Path: path, Params: params, Def: def, Docs: docs}, nil
}

func encodeTypeDescriptor(buf *scalebuf.Buffer, d *typeregistry.TypeDescriptor) {
	putStringSlice(buf, d.Path)
	putCompactU32(buf, uint32(len(d.Params)))
	for _, p := range d.Params {
		putString(buf, p.Name)
		putOptionTypeID(buf, p.Type, p.HasType)
	}
	encodeDefinition(buf, d.Def)
	putStringSlice(buf, d.Docs)
}

func decodeDefinition(cur *scalebuf.Cursor) (typeregistry.Definition, error) {
	const op = opPrefix + ".decodeDefinition"
	kind, err := cur.Byte()
	if err != nil {
		return typeregistry.Definition{}, err
	}
	switch typeregistry.DefinitionKind(kind) {
	case typeregistry.KindComposite:
		fields, err := decodeFields(cur)
		if err != nil {
			return typeregistry.Definition{}, chainerr.Wrap(op, err)
		}
		return typeregistry.Definition{Kind: typeregistry.KindComposite, Fields: fields}, nil
	case typeregistry.KindVariant:
		variants, err := decodeVariants(cur)
		if err != nil {
			return typeregistry.Definition{}, chainerr.Wrap(op, err)
		}
		return typeregistry.Definition{Kind: typeregistry.KindVariant, Variants: variants}, nil
	case typeregistry.KindSequence:
		elem, err := readTypeID(cur)
		if err != nil {
			return typeregistry.Definition{}, chainerr.Wrap(op, err)
		}
		return typeregistry.Definition{Kind: typeregistry.KindSequence, Element: elem}, nil
	case typeregistry.KindArray:
		length, err := readCompactU32(cur)
		if err != nil {
			return typeregistry.Definition{}, chainerr.Wrap(op, err)
		}
		elem, err := readTypeID(cur)
		if err != nil {
			return typeregistry.Definition{}, chainerr.Wrap(op, err)
		}
		return typeregistry.Definition{Kind: typeregistry.KindArray, Length: length, Element: elem}, nil
	case typeregistry.KindTuple:
		n, err := readCompactU32(cur)
		if err != nil {
			return typeregistry.Definition{}, chainerr.Wrap(op, err)
		}
		ids := make([]typeregistry.TypeID, n)
		for i := range ids {
			ids[i], err = readTypeID(cur)
			if err != nil {
				return typeregistry.Definition{}, chainerr.Wrap(op, err)
			}
		}
		return typeregistry.Definition{Kind: typeregistry.KindTuple, Tuple: ids}, nil
	case typeregistry.KindPrimitive:
		p, err := cur.Byte()
		if err != nil {
			return typeregistry.Definition{}, err
		}
		return typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.PrimitiveKind(p)}, nil
	case typeregistry.KindCompact:
		elem, err := readTypeID(cur)
		if err != nil {
			return typeregistry.Definition{}, chainerr.Wrap(op, err)
		}
		return typeregistry.Definition{Kind: typeregistry.KindCompact, Element: elem}, nil
	case typeregistry.KindBitSequence:
		store, err := readTypeID(cur)
		if err != nil {
			return typeregistry.Definition{}, chainerr.Wrap(op, err)
		}
		order, err := readTypeID(cur)
		if err != nil {
			return typeregistry.Definition{}, chainerr.Wrap(op, err)
		}
		return typeregistry.Definition{Kind: typeregistry.KindBitSequence, BitStoreType: store, BitOrderType: order}, nil
	default:
		return typeregistry.Definition{}, chainerr.Shapef(op, 0, "", "unknown definition kind byte %d", kind)
	}
}

func encodeDefinition(buf *scalebuf.Buffer, d typeregistry.Definition) {
	buf.WriteByte(byte(d.Kind))
	switch d.Kind {
	case typeregistry.KindComposite:
		encodeFields(buf, d.Fields)
	case typeregistry.KindVariant:
		encodeVariants(buf, d.Variants)
	case typeregistry.KindSequence:
		putTypeID(buf, d.Element)
	case typeregistry.KindArray:
		putCompactU32(buf, d.Length)
		putTypeID(buf, d.Element)
	case typeregistry.KindTuple:
		putCompactU32(buf, uint32(len(d.Tuple)))
		for _, id := range d.Tuple {
			putTypeID(buf, id)
		}
	case typeregistry.KindPrimitive:
		buf.WriteByte(byte(d.Primitive))
	case typeregistry.KindCompact:
		putTypeID(buf, d.Element)
	case typeregistry.KindBitSequence:
		putTypeID(buf, d.BitStoreType)
		putTypeID(buf, d.BitOrderType)
	}
}

func decodeFields(cur *scalebuf.Cursor) ([]typeregistry.Field, error) {
	n, err := readCompactU32(cur)
	if err != nil {
		return nil, err
	}
	out := make([]typeregistry.Field, n)
	for i := range out {
		name, err := readString(cur)
		if err != nil {
			return nil, err
		}
		id, err := readTypeID(cur)
		if err != nil {
			return nil, err
		}
		typeName, err := readString(cur)
		if err != nil {
			return nil, err
		}
		docs, err := readStringSlice(cur)
		if err != nil {
			return nil, err
		}
		out[i] = typeregistry.Field{Name: name, Type: id, TypeName: typeName, Docs: docs}
	}
	return out, nil
}

func encodeFields(buf *scalebuf.Buffer, fields []typeregistry.Field) {
	putCompactU32(buf, uint32(len(fields)))
	for _, f := range fields {
		putString(buf, f.Name)
		putTypeID(buf, f.Type)
		putString(buf, f.TypeName)
		putStringSlice(buf, f.Docs)
	}
}

func decodeVariants(cur *scalebuf.Cursor) ([]typeregistry.VariantDef, error) {
	n, err := readCompactU32(cur)
	if err != nil {
		return nil, err
	}
	out := make([]typeregistry.VariantDef, n)
	for i := range out {
		name, err := readString(cur)
		if err != nil {
			return nil, err
		}
		idx, err := cur.Byte()
		if err != nil {
			return nil, err
		}
		fields, err := decodeFields(cur)
		if err != nil {
			return nil, err
		}
		docs, err := readStringSlice(cur)
		if err != nil {
			return nil, err
		}
		out[i] = typeregistry.VariantDef{Name: name, Index: idx, Fields: fields, Docs: docs}
	}
	return out, nil
}

func encodeVariants(buf *scalebuf.Buffer, variants []typeregistry.VariantDef) {
	putCompactU32(buf, uint32(len(variants)))
	for _, v := range variants {
		putString(buf, v.Name)
		buf.WriteByte(v.Index)
		encodeFields(buf, v.Fields)
		putStringSlice(buf, v.Docs)
	}
}

// --- named inputs / view functions / constants / storage ---

func decodeNamedInputs(cur *scalebuf.Cursor) ([]metadata.NamedInput, error) {
	n, err := readCompactU32(cur)
	if err != nil {
		return nil, err
	}
	out := make([]metadata.NamedInput, n)
	for i := range out {
		name, err := readString(cur)
		if err != nil {
			return nil, err
		}
		id, err := readTypeID(cur)
		if err != nil {
			return nil, err
		}
		out[i] = metadata.NamedInput{Name: name, Type: id}
	}
	return out, nil
}

func encodeNamedInputs(buf *scalebuf.Buffer, inputs []metadata.NamedInput) {
	putCompactU32(buf, uint32(len(inputs)))
	for _, in := range inputs {
		putString(buf, in.Name)
		putTypeID(buf, in.Type)
	}
}

func decodeConstants(cur *scalebuf.Cursor) ([]metadata.Constant, error) {
	n, err := readCompactU32(cur)
	if err != nil {
		return nil, err
	}
	out := make([]metadata.Constant, n)
	for i := range out {
		name, err := readString(cur)
		if err != nil {
			return nil, err
		}
		id, err := readTypeID(cur)
		if err != nil {
			return nil, err
		}
		val, err := readBytes(cur)
		if err != nil {
			return nil, err
		}
		docs, err := readStringSlice(cur)
		if err != nil {
			return nil, err
		}
		out[i] = metadata.Constant{Name: name, Type: id, Value: val, Docs: docs}
	}
	return out, nil
}

func encodeConstants(buf *scalebuf.Buffer, cs []metadata.Constant) {
	putCompactU32(buf, uint32(len(cs)))
	for _, c := range cs {
		putString(buf, c.Name)
		putTypeID(buf, c.Type)
		putBytes(buf, c.Value)
		putStringSlice(buf, c.Docs)
	}
}

func decodeStorage(cur *scalebuf.Cursor) (*metadata.StorageSection, error) {
	present, err := readBool(cur)
	if err != nil || !present {
		return nil, err
	}
	prefix, err := readString(cur)
	if err != nil {
		return nil, err
	}
	n, err := readCompactU32(cur)
	if err != nil {
		return nil, err
	}
	entries := make([]metadata.StorageEntry, n)
	for i := range entries {
		name, err := readString(cur)
		if err != nil {
			return nil, err
		}
		modByte, err := cur.Byte()
		if err != nil {
			return nil, err
		}
		keyCount, err := readCompactU32(cur)
		if err != nil {
			return nil, err
		}
		keyParts := make([]metadata.StorageKeyPart, keyCount)
		for j := range keyParts {
			hasherByte, err := cur.Byte()
			if err != nil {
				return nil, err
			}
			id, err := readTypeID(cur)
			if err != nil {
				return nil, err
			}
			keyParts[j] = metadata.StorageKeyPart{Hasher: metadata.StorageHasher(hasherByte), Type: id}
		}
		valueType, err := readTypeID(cur)
		if err != nil {
			return nil, err
		}
		def, err := readBytes(cur)
		if err != nil {
			return nil, err
		}
		docs, err := readStringSlice(cur)
		if err != nil {
			return nil, err
		}
		entries[i] = metadata.StorageEntry{
			Name: name, Modifier: metadata.StorageModifier(modByte),
			KeyParts: keyParts, ValueType: valueType, Default: def, Docs: docs,
		}
	}
	return &metadata.StorageSection{Prefix: prefix, Entries: entries}, nil
}

func encodeStorage(buf *scalebuf.Buffer, s *metadata.StorageSection) {
	putBool(buf, s != nil)
	if s == nil {
		return
	}
	putString(buf, s.Prefix)
	putCompactU32(buf, uint32(len(s.Entries)))
	for _, e := range s.Entries {
		putString(buf, e.Name)
		buf.WriteByte(byte(e.Modifier))
		putCompactU32(buf, uint32(len(e.KeyParts)))
		for _, kp := range e.KeyParts {
			buf.WriteByte(byte(kp.Hasher))
			putTypeID(buf, kp.Type)
		}
		putTypeID(buf, e.ValueType)
		putBytes(buf, e.Default)
		putStringSlice(buf, e.Docs)
	}
}

func decodeViewFunctions(cur *scalebuf.Cursor) ([]metadata.ViewFunction, error) {
	n, err := readCompactU32(cur)
	if err != nil {
		return nil, err
	}
	out := make([]metadata.ViewFunction, n)
	for i := range out {
		name, err := readString(cur)
		if err != nil {
			return nil, err
		}
		idBytes, err := cur.Take(32)
		if err != nil {
			return nil, err
		}
		var id [32]byte
		copy(id[:], idBytes)
		inputs, err := decodeNamedInputs(cur)
		if err != nil {
			return nil, err
		}
		outputType, err := readTypeID(cur)
		if err != nil {
			return nil, err
		}
		docs, err := readStringSlice(cur)
		if err != nil {
			return nil, err
		}
		out[i] = metadata.ViewFunction{Name: name, ID: id, Inputs: inputs, OutputType: outputType, Docs: docs}
	}
	return out, nil
}

func encodeViewFunctions(buf *scalebuf.Buffer, vfs []metadata.ViewFunction) {
	putCompactU32(buf, uint32(len(vfs)))
	for _, vf := range vfs {
		putString(buf, vf.Name)
		buf.Write(vf.ID[:])
		encodeNamedInputs(buf, vf.Inputs)
		putTypeID(buf, vf.OutputType)
		putStringSlice(buf, vf.Docs)
	}
}

func decodeAssociatedTypes(cur *scalebuf.Cursor) (map[string]typeregistry.TypeID, error) {
	n, err := readCompactU32(cur)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make(map[string]typeregistry.TypeID, n)
	for i := uint32(0); i < n; i++ {
		name, err := readString(cur)
		if err != nil {
			return nil, err
		}
		id, err := readTypeID(cur)
		if err != nil {
			return nil, err
		}
		out[name] = id
	}
	return out, nil
}

func encodeAssociatedTypes(buf *scalebuf.Buffer, m map[string]typeregistry.TypeID) {
	putCompactU32(buf, uint32(len(m)))
	for name, id := range m {
		putString(buf, name)
		putTypeID(buf, id)
	}
}

// --- extrinsic format ---

func decodeExtrinsicFormat(cur *scalebuf.Cursor) (metadata.ExtrinsicFormat, error) {
	addr, err := readTypeID(cur)
	if err != nil {
		return metadata.ExtrinsicFormat{}, err
	}
	sig, err := readTypeID(cur)
	if err != nil {
		return metadata.ExtrinsicFormat{}, err
	}
	nVersions, err := readCompactU32(cur)
	if err != nil {
		return metadata.ExtrinsicFormat{}, err
	}
	versions := make([]uint8, nVersions)
	for i := range versions {
		versions[i], err = cur.Byte()
		if err != nil {
			return metadata.ExtrinsicFormat{}, err
		}
	}
	nChains, err := readCompactU32(cur)
	if err != nil {
		return metadata.ExtrinsicFormat{}, err
	}
	extensions := make(map[uint8][]metadata.TransactionExtension, nChains)
	for i := uint32(0); i < nChains; i++ {
		version, err := cur.Byte()
		if err != nil {
			return metadata.ExtrinsicFormat{}, err
		}
		nExt, err := readCompactU32(cur)
		if err != nil {
			return metadata.ExtrinsicFormat{}, err
		}
		chain := make([]metadata.TransactionExtension, nExt)
		for j := range chain {
			ident, err := readString(cur)
			if err != nil {
				return metadata.ExtrinsicFormat{}, err
			}
			extraType, err := readTypeID(cur)
			if err != nil {
				return metadata.ExtrinsicFormat{}, err
			}
			implicitType, err := readTypeID(cur)
			if err != nil {
				return metadata.ExtrinsicFormat{}, err
			}
			chain[j] = metadata.TransactionExtension{Identifier: ident, ExtraType: extraType, ImplicitType: implicitType}
		}
		extensions[version] = chain
	}
	return metadata.ExtrinsicFormat{
		AddressType: addr, SignatureType: sig,
		SupportedVersions: versions, Extensions: extensions,
	}, nil
}

func encodeExtrinsicFormat(buf *scalebuf.Buffer, e metadata.ExtrinsicFormat) {
	putTypeID(buf, e.AddressType)
	putTypeID(buf, e.SignatureType)
	putCompactU32(buf, uint32(len(e.SupportedVersions)))
	for _, v := range e.SupportedVersions {
		buf.WriteByte(v)
	}
	putCompactU32(buf, uint32(len(e.Extensions)))
	for version, chain := range e.Extensions {
		buf.WriteByte(version)
		putCompactU32(buf, uint32(len(chain)))
		for _, ext := range chain {
			putString(buf, ext.Identifier)
			putTypeID(buf, ext.ExtraType)
			putTypeID(buf, ext.ImplicitType)
		}
	}
}

// --- outer enums / dispatch error / custom values ---

func decodeOuterEnums(cur *scalebuf.Cursor) (metadata.OuterEnums, error) {
	call, err := readTypeID(cur)
	if err != nil {
		return metadata.OuterEnums{}, err
	}
	event, err := readTypeID(cur)
	if err != nil {
		return metadata.OuterEnums{}, err
	}
	errType, err := readTypeID(cur)
	if err != nil {
		return metadata.OuterEnums{}, err
	}
	return metadata.OuterEnums{CallType: call, EventType: event, ErrorType: errType}, nil
}

func encodeOuterEnums(buf *scalebuf.Buffer, o metadata.OuterEnums) {
	putTypeID(buf, o.CallType)
	putTypeID(buf, o.EventType)
	putTypeID(buf, o.ErrorType)
}

func decodeCustomValues(cur *scalebuf.Cursor) ([]metadata.CustomValue, error) {
	n, err := readCompactU32(cur)
	if err != nil {
		return nil, err
	}
	out := make([]metadata.CustomValue, n)
	for i := range out {
		name, err := readString(cur)
		if err != nil {
			return nil, err
		}
		id, err := readTypeID(cur)
		if err != nil {
			return nil, err
		}
		val, err := readBytes(cur)
		if err != nil {
			return nil, err
		}
		out[i] = metadata.CustomValue{Name: name, Type: id, Value: val}
	}
	return out, nil
}

func encodeCustomValues(buf *scalebuf.Buffer, cs []metadata.CustomValue) {
	putCompactU32(buf, uint32(len(cs)))
	for _, c := range cs {
		putString(buf, c.Name)
		putTypeID(buf, c.Type)
		putBytes(buf, c.Value)
	}
}

func decodeRuntimeAPIs(cur *scalebuf.Cursor) ([]*metadata.RuntimeAPI, error) {
	n, err := readCompactU32(cur)
	if err != nil {
		return nil, err
	}
	out := make([]*metadata.RuntimeAPI, n)
	for i := range out {
		name, err := readString(cur)
		if err != nil {
			return nil, err
		}
		methodCount, err := readCompactU32(cur)
		if err != nil {
			return nil, err
		}
		methods := make([]metadata.RuntimeAPIMethod, methodCount)
		for j := range methods {
			mName, err := readString(cur)
			if err != nil {
				return nil, err
			}
			inputs, err := decodeNamedInputs(cur)
			if err != nil {
				return nil, err
			}
			outType, err := readTypeID(cur)
			if err != nil {
				return nil, err
			}
			docs, err := readStringSlice(cur)
			if err != nil {
				return nil, err
			}
			methods[j] = metadata.RuntimeAPIMethod{Name: mName, Inputs: inputs, OutputType: outType, Docs: docs}
		}
		docs, err := readStringSlice(cur)
		if err != nil {
			return nil, err
		}
		out[i] = &metadata.RuntimeAPI{Name: name, Methods: methods, Docs: docs}
	}
	return out, nil
}

// palletFeatures toggles the pallet fields that differ across wire
// versions: modern metadata carries associated types and view functions
// and uses one dispatch index for calls/events/errors alike; legacy
// metadata carries none of the former and may use three distinct indices.
type palletFeatures struct {
	AssociatedTypes bool
	ViewFunctions   bool
	UnifiedIndices  bool
}

func decodePallet(cur *scalebuf.Cursor, feat palletFeatures) (*metadata.Pallet, error) {
	name, err := readString(cur)
	if err != nil {
		return nil, err
	}
	index, err := cur.Byte()
	if err != nil {
		return nil, err
	}
	callIndex, eventIndex, errorIndex := index, index, index
	if !feat.UnifiedIndices {
		if callIndex, err = cur.Byte(); err != nil {
			return nil, err
		}
		if eventIndex, err = cur.Byte(); err != nil {
			return nil, err
		}
		if errorIndex, err = cur.Byte(); err != nil {
			return nil, err
		}
	}
	callType, hasCall, err := readOptionTypeID(cur)
	if err != nil {
		return nil, err
	}
	eventType, hasEvent, err := readOptionTypeID(cur)
	if err != nil {
		return nil, err
	}
	errorType, hasError, err := readOptionTypeID(cur)
	if err != nil {
		return nil, err
	}
	storage, err := decodeStorage(cur)
	if err != nil {
		return nil, err
	}
	constants, err := decodeConstants(cur)
	if err != nil {
		return nil, err
	}
	var viewFns []metadata.ViewFunction
	if feat.ViewFunctions {
		viewFns, err = decodeViewFunctions(cur)
		if err != nil {
			return nil, err
		}
	}
	var assoc map[string]typeregistry.TypeID
	if feat.AssociatedTypes {
		assoc, err = decodeAssociatedTypes(cur)
		if err != nil {
			return nil, err
		}
	}
	docs, err := readStringSlice(cur)
	if err != nil {
		return nil, err
	}
	return &metadata.Pallet{
		Name: name, Index: index,
		CallIndex: callIndex, EventIndex: eventIndex, ErrorIndex: errorIndex,
		CallType: callType, HasCall: hasCall,
		EventType: eventType, HasEvent: hasEvent,
		ErrorType: errorType, HasError: hasError,
		Storage: storage, Constants: constants,
		ViewFunctions: viewFns, AssociatedTypes: assoc,
		Docs: docs,
	}, nil
}

func encodePallet(buf *scalebuf.Buffer, p *metadata.Pallet, feat palletFeatures) {
	putString(buf, p.Name)
	buf.WriteByte(p.Index)
	if !feat.UnifiedIndices {
		buf.WriteByte(p.CallIndex)
		buf.WriteByte(p.EventIndex)
		buf.WriteByte(p.ErrorIndex)
	}
	putOptionTypeID(buf, p.CallType, p.HasCall)
	putOptionTypeID(buf, p.EventType, p.HasEvent)
	putOptionTypeID(buf, p.ErrorType, p.HasError)
	encodeStorage(buf, p.Storage)
	encodeConstants(buf, p.Constants)
	if feat.ViewFunctions {
		encodeViewFunctions(buf, p.ViewFunctions)
	}
	if feat.AssociatedTypes {
		encodeAssociatedTypes(buf, p.AssociatedTypes)
	}
	putStringSlice(buf, p.Docs)
}

func decodePallets(cur *scalebuf.Cursor, feat palletFeatures) ([]*metadata.Pallet, error) {
	n, err := readCompactU32(cur)
	if err != nil {
		return nil, err
	}
	out := make([]*metadata.Pallet, n)
	for i := range out {
		out[i], err = decodePallet(cur, feat)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func encodePallets(buf *scalebuf.Buffer, pallets []*metadata.Pallet, feat palletFeatures) {
	putCompactU32(buf, uint32(len(pallets)))
	for _, p := range pallets {
		encodePallet(buf, p, feat)
	}
}

func encodeRuntimeAPIs(buf *scalebuf.Buffer, apis []*metadata.RuntimeAPI) {
	putCompactU32(buf, uint32(len(apis)))
	for _, a := range apis {
		putString(buf, a.Name)
		putCompactU32(buf, uint32(len(a.Methods)))
		for _, m := range a.Methods {
			putString(buf, m.Name)
			encodeNamedInputs(buf, m.Inputs)
			putTypeID(buf, m.OutputType)
			putStringSlice(buf, m.Docs)
		}
		putStringSlice(buf, a.Docs)
	}
}
