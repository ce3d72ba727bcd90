// Package strip removes pallets and Runtime APIs a downstream consumer
// doesn't need, then compacts the type registry to drop everything no
// longer reachable, remapping every surviving id. Grounded on the
// teacher's hive/merge (computes a plan, then applies it) and
// internal/edit (old-id -> new-id bookkeeping during a rebuild).
package strip

import (
	"github.com/dynascale/scalekit/chainerr"
	"github.com/dynascale/scalekit/metadata"
	"github.com/dynascale/scalekit/typeregistry"
)

// Predicate reports whether a named pallet or Runtime API should survive
// stripping. A nil Predicate keeps everything.
type Predicate func(name string) bool

func keepAll(string) bool { return true }

// Strip returns a new Metadata containing only the pallets and Runtime
// APIs keepPallet/keepAPI accept, with its type registry compacted to
// exactly the ids still reachable, and every id stored anywhere in the
// returned Metadata rewritten through the resulting typeregistry.IDMap.
//
// The System pallet is special-cased (spec step 2): if it would be
// dropped, a stub pallet is kept instead, carrying only its Name, Index,
// call/event/error indices and AssociatedTypes, so that AssociatedTypes lookups (e.g. "Hasher",
// "AccountId") keep working for clients that build storage keys using
// chain-wide defaults even when they don't otherwise need System's own
// calls/events/errors.
func Strip(md *metadata.Metadata, keepPallet, keepAPI Predicate) (*metadata.Metadata, typeregistry.IDMap, error) {
	if keepPallet == nil {
		keepPallet = keepAll
	}
	if keepAPI == nil {
		keepAPI = keepAll
	}

	reg := md.Registry()

	keptPallets := make([]*metadata.Pallet, 0, len(md.Pallets()))
	for _, p := range md.Pallets() {
		switch {
		case keepPallet(p.Name):
			keptPallets = append(keptPallets, p)
		case p.Name == "System":
			keptPallets = append(keptPallets, systemStub(p))
		}
	}

	keptAPIs := make([]*metadata.RuntimeAPI, 0, len(md.RuntimeAPIs()))
	for _, a := range md.RuntimeAPIs() {
		if keepAPI(a.Name) {
			keptAPIs = append(keptAPIs, a)
		}
	}

	// Optional outer-enum stripping (spec §4.5): decide, per outer enum,
	// whether it can be variant-pruned by checking reachability from every
	// *other* decode-relevant root with the three outer enum ids themselves
	// excluded from that root set — an id that turns up anyway means some
	// retained type still references the umbrella enum directly (e.g. an
	// opaque-call wrapper), so it must keep every variant.
	decodeRoots := decodeRelevantRoots(md, keptPallets, keptAPIs)
	reachableOther, err := reg.Reachable(decodeRoots...)
	if err != nil {
		return nil, typeregistry.IDMap{}, chainerr.Wrap("strip.Strip", err)
	}

	enums := md.OuterEnums()
	outerIDs := [3]typeregistry.TypeID{enums.CallType, enums.EventType, enums.ErrorType}
	var prune [3]bool
	for i, id := range outerIDs {
		prune[i] = !reachableOther[id]
	}
	workingReg, err := pruneOuterEnumVariants(reg, outerIDs, prune, keepPallet)
	if err != nil {
		return nil, typeregistry.IDMap{}, chainerr.Wrap("strip.Strip", err)
	}

	roots := append(append([]typeregistry.TypeID{}, decodeRoots...), encodeOnlyRoots(md, keptPallets, keptAPIs)...)
	roots = append(roots, outerIDs[0], outerIDs[1], outerIDs[2])
	reachable, err := workingReg.Reachable(roots...)
	if err != nil {
		return nil, typeregistry.IDMap{}, chainerr.Wrap("strip.Strip", err)
	}

	newReg, idMap := workingReg.Retain(func(id typeregistry.TypeID) bool { return reachable[id] })

	out := metadata.New(newReg)
	for _, p := range keptPallets {
		out.AddPallet(remapPallet(p, idMap))
	}
	for _, a := range keptAPIs {
		out.AddRuntimeAPI(remapAPI(a, idMap))
	}
	for _, c := range md.CustomValues() {
		if newID, ok := idMap.Map(c.Type); ok {
			c.Type = newID
			out.AddCustomValue(c)
		}
		// A custom value whose type didn't survive reachability (it was
		// never rooted by any kept pallet/API) is dropped along with it.
	}
	out.SetExtrinsicFormat(remapExtrinsicFormat(md.ExtrinsicFormat(), idMap))
	out.SetOuterEnums(stripOuterEnums(md.OuterEnums(), idMap))
	if id, ok := md.DispatchErrorType(); ok {
		out.SetDispatchErrorType(idMap.MustMap(id))
	}

	return out, idMap, nil
}

// systemStub produces the pruned System pallet kept solely for its
// AssociatedTypes and Index, per spec step 2.
func systemStub(p *metadata.Pallet) *metadata.Pallet {
	return &metadata.Pallet{
		Name:            p.Name,
		Index:           p.Index,
		CallIndex:       p.CallIndex,
		EventIndex:      p.EventIndex,
		ErrorIndex:      p.ErrorIndex,
		AssociatedTypes: p.AssociatedTypes,
	}
}

// decodeRelevantRoots enumerates the type ids a client must be able to
// *decode*: event/error/associated types, storage, constants, view-function
// and Runtime API outputs, transaction-extension Extra/Implicit types, and
// — unconditionally — the dispatch-error type. This is the root set used to
// decide whether an outer Call/Event/Error enum can be variant-pruned
// (spec §4.5): a pallet's own CallType is deliberately excluded (calls are
// only ever encoded, never decoded) and so are Runtime API/view-function
// *inputs* — matching the split in the teacher's reference algorithm
// (_examples/original_source/cli/src/commands/metadata/retain.rs,
// IterateTypeIds), which keeps decode-relevant ids in one set and
// encode-only/envelope ids in another.
func decodeRelevantRoots(md *metadata.Metadata, pallets []*metadata.Pallet, apis []*metadata.RuntimeAPI) []typeregistry.TypeID {
	var roots []typeregistry.TypeID
	for _, p := range pallets {
		if p.HasEvent {
			roots = append(roots, p.EventType)
		}
		if p.HasError {
			roots = append(roots, p.ErrorType)
		}
		for _, id := range p.AssociatedTypes {
			roots = append(roots, id)
		}
		for _, c := range p.Constants {
			roots = append(roots, c.Type)
		}
		if p.Storage != nil {
			for _, e := range p.Storage.Entries {
				roots = append(roots, e.ValueType)
				for _, kp := range e.KeyParts {
					roots = append(roots, kp.Type)
				}
			}
		}
		for _, vf := range p.ViewFunctions {
			roots = append(roots, vf.OutputType)
		}
	}
	for _, a := range apis {
		for _, m := range a.Methods {
			roots = append(roots, m.OutputType)
		}
	}
	ef := md.ExtrinsicFormat()
	for _, chain := range ef.Extensions {
		for _, e := range chain {
			roots = append(roots, e.ExtraType, e.ImplicitType)
		}
	}
	if id, ok := md.DispatchErrorType(); ok {
		roots = append(roots, id)
	}
	return roots
}

// encodeOnlyRoots enumerates the type ids that must survive stripping but
// never gate whether an outer enum can be variant-pruned: a pallet's own
// CallType (never decoded — see decodeRelevantRoots), Runtime API and
// view-function inputs, and the extrinsic envelope's address/signature
// types.
func encodeOnlyRoots(md *metadata.Metadata, pallets []*metadata.Pallet, apis []*metadata.RuntimeAPI) []typeregistry.TypeID {
	var roots []typeregistry.TypeID
	for _, p := range pallets {
		if p.HasCall {
			roots = append(roots, p.CallType)
		}
		for _, vf := range p.ViewFunctions {
			for _, in := range vf.Inputs {
				roots = append(roots, in.Type)
			}
		}
	}
	for _, a := range apis {
		for _, m := range a.Methods {
			for _, in := range m.Inputs {
				roots = append(roots, in.Type)
			}
		}
	}
	ef := md.ExtrinsicFormat()
	roots = append(roots, ef.AddressType, ef.SignatureType)
	return roots
}

// pruneOuterEnumVariants returns a copy of reg in which each outer enum id
// marked in prune has its Variants list filtered down to the variants whose
// Name passes keepPallet — mirroring the teacher reference's
// strip_variants_in_enum_type, which retains a variant iff the pallet
// filter accepts its name. The original registry is left untouched: Resolve
// hands back a pointer into its internal slice, so mutating in place would
// corrupt the caller's md.
func pruneOuterEnumVariants(reg *typeregistry.Registry, ids [3]typeregistry.TypeID, prune [3]bool, keepPallet Predicate) (*typeregistry.Registry, error) {
	n := reg.Len()
	descs := make([]typeregistry.TypeDescriptor, n)
	for i := 0; i < n; i++ {
		d, err := reg.Resolve(typeregistry.TypeID(i))
		if err != nil {
			return nil, err
		}
		descs[i] = *d
	}
	for i, id := range ids {
		if !prune[i] {
			continue
		}
		d := descs[id]
		kept := make([]typeregistry.VariantDef, 0, len(d.Def.Variants))
		for _, v := range d.Def.Variants {
			if keepPallet(v.Name) {
				kept = append(kept, v)
			}
		}
		d.Def.Variants = kept
		descs[id] = d
	}
	return typeregistry.New(descs), nil
}

func remapPallet(p *metadata.Pallet, m typeregistry.IDMap) *metadata.Pallet {
	out := *p
	if p.HasCall {
		out.CallType = m.MustMap(p.CallType)
	}
	if p.HasEvent {
		out.EventType = m.MustMap(p.EventType)
	}
	if p.HasError {
		out.ErrorType = m.MustMap(p.ErrorType)
	}
	if p.AssociatedTypes != nil {
		out.AssociatedTypes = make(map[string]typeregistry.TypeID, len(p.AssociatedTypes))
		for name, id := range p.AssociatedTypes {
			out.AssociatedTypes[name] = m.MustMap(id)
		}
	}
	out.Constants = make([]metadata.Constant, len(p.Constants))
	for i, c := range p.Constants {
		c.Type = m.MustMap(c.Type)
		out.Constants[i] = c
	}
	if p.Storage != nil {
		storage := &metadata.StorageSection{Prefix: p.Storage.Prefix, Entries: make([]metadata.StorageEntry, len(p.Storage.Entries))}
		for i, e := range p.Storage.Entries {
			e.ValueType = m.MustMap(e.ValueType)
			e.KeyParts = append([]metadata.StorageKeyPart(nil), e.KeyParts...)
			for j, kp := range e.KeyParts {
				kp.Type = m.MustMap(kp.Type)
				e.KeyParts[j] = kp
			}
			storage.Entries[i] = e
		}
		out.Storage = storage
	}
	if p.ViewFunctions != nil {
		out.ViewFunctions = make([]metadata.ViewFunction, len(p.ViewFunctions))
		for i, vf := range p.ViewFunctions {
			vf.OutputType = m.MustMap(vf.OutputType)
			vf.Inputs = append([]metadata.NamedInput(nil), vf.Inputs...)
			for j, in := range vf.Inputs {
				in.Type = m.MustMap(in.Type)
				vf.Inputs[j] = in
			}
			out.ViewFunctions[i] = vf
		}
	}
	return &out
}

func remapAPI(a *metadata.RuntimeAPI, m typeregistry.IDMap) *metadata.RuntimeAPI {
	out := *a
	out.Methods = make([]metadata.RuntimeAPIMethod, len(a.Methods))
	for i, meth := range a.Methods {
		meth.OutputType = m.MustMap(meth.OutputType)
		meth.Inputs = append([]metadata.NamedInput(nil), meth.Inputs...)
		for j, in := range meth.Inputs {
			in.Type = m.MustMap(in.Type)
			meth.Inputs[j] = in
		}
		out.Methods[i] = meth
	}
	return &out
}

func remapExtrinsicFormat(e metadata.ExtrinsicFormat, m typeregistry.IDMap) metadata.ExtrinsicFormat {
	out := e
	out.AddressType = m.MustMap(e.AddressType)
	out.SignatureType = m.MustMap(e.SignatureType)
	out.Extensions = make(map[uint8][]metadata.TransactionExtension, len(e.Extensions))
	for version, chain := range e.Extensions {
		newChain := make([]metadata.TransactionExtension, len(chain))
		for i, ext := range chain {
			ext.ExtraType = m.MustMap(ext.ExtraType)
			ext.ImplicitType = m.MustMap(ext.ImplicitType)
			newChain[i] = ext
		}
		out.Extensions[version] = newChain
	}
	return out
}

// stripOuterEnums remaps the outer-enum type ids through m. Any variant
// pruning has already happened (pruneOuterEnumVariants, before Retain), so
// this is a plain id remap; the three ids are always present in m because
// Strip explicitly roots them for the final Retain pass.
func stripOuterEnums(o metadata.OuterEnums, m typeregistry.IDMap) metadata.OuterEnums {
	return metadata.OuterEnums{
		CallType:  m.MustMap(o.CallType),
		EventType: m.MustMap(o.EventType),
		ErrorType: m.MustMap(o.ErrorType),
	}
}
