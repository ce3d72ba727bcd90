package typeregistry

import "github.com/dynascale/scalekit/chainerr"

// Registry is a contiguous, indexed collection of TypeDescriptors. Every id
// referenced by any descriptor in a well-formed Registry resolves within
// the same Registry; this invariant is established at construction time by
// package wire and re-established by Retain.
type Registry struct {
	descs []TypeDescriptor
}

// New builds a Registry from descriptors already in final id order (id i
// is descs[i]). Callers assembling a registry from wire bytes should append
// in id order as they decode, then call New once.
func New(descs []TypeDescriptor) *Registry {
	return &Registry{descs: descs}
}

// Len returns the number of descriptors in the registry.
func (r *Registry) Len() int { return len(r.descs) }

// Resolve looks up the descriptor for id. A Registry is supposed to be
// closed under reference (every id in it resolves), so a NotFound here
// means either malformed wire input (if id came from decoding bytes) or a
// broken invariant elsewhere in the core (if id came from this registry's
// own descriptors) — callers close to untrusted input should surface it as
// a typed decode error; callers operating purely on an already-validated
// registry may treat it as a bug.
func (r *Registry) Resolve(id TypeID) (*TypeDescriptor, error) {
	if int(id) < 0 || int(id) >= len(r.descs) {
		return nil, chainerr.NotFoundf("typeregistry.Resolve", idName(id), "registry")
	}
	return &r.descs[id], nil
}

// MustResolve resolves id, panicking if it is missing. Reserved for call
// sites operating on a registry whose closure has already been validated
// (e.g. walking the registry's own descriptors when re-encoding it) — see
// spec Design Notes on panics being reserved for broken invariants.
func (r *Registry) MustResolve(id TypeID) *TypeDescriptor {
	d, err := r.Resolve(id)
	if err != nil {
		panic(err)
	}
	return d
}

func idName(id TypeID) string {
	return "#" + itoa(uint64(id))
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// DirectRefs enumerates every id directly reachable from id's own
// definition and type parameters: composite field types, variant field
// types, sequence/array elements, tuple fields, compact inner types,
// bit-sequence order/store types, and type-parameter ids. Reachable, and
// through it the stripper, builds on it; package hash walks definitions
// directly instead.
func (r *Registry) DirectRefs(id TypeID) ([]TypeID, error) {
	d, err := r.Resolve(id)
	if err != nil {
		return nil, err
	}
	return directRefs(d), nil
}

func directRefs(d *TypeDescriptor) []TypeID {
	var out []TypeID
	switch d.Def.Kind {
	case KindComposite:
		for _, f := range d.Def.Fields {
			out = append(out, f.Type)
		}
	case KindVariant:
		for _, v := range d.Def.Variants {
			for _, f := range v.Fields {
				out = append(out, f.Type)
			}
		}
	case KindSequence, KindArray, KindCompact:
		out = append(out, d.Def.Element)
	case KindTuple:
		out = append(out, d.Def.Tuple...)
	case KindBitSequence:
		out = append(out, d.Def.BitOrderType, d.Def.BitStoreType)
	case KindPrimitive:
		// no references
	}
	for _, p := range d.Params {
		if p.HasType {
			out = append(out, p.Type)
		}
	}
	return out
}

// Reachable returns the set of ids reachable from roots by repeated
// DirectRefs traversal, including the roots themselves. Cycles (e.g. a
// recursive DispatchError type) are broken by tracking visited ids.
func (r *Registry) Reachable(roots ...TypeID) (map[TypeID]bool, error) {
	seen := make(map[TypeID]bool, len(roots)*4)
	stack := append([]TypeID(nil), roots...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		refs, err := r.DirectRefs(id)
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			if !seen[ref] {
				stack = append(stack, ref)
			}
		}
	}
	return seen, nil
}

// IDMap is the old-id→new-id lookup returned by Retain, used to rewrite ids
// stored outside the registry (in the owning Metadata's pallets, storage
// entries, extrinsic format, and so on).
type IDMap struct {
	old2new map[TypeID]TypeID
}

// Map translates an old id to its new id. ok is false when old was dropped
// by the Retain call that produced this IDMap.
func (m IDMap) Map(old TypeID) (TypeID, bool) {
	n, ok := m.old2new[old]
	return n, ok
}

// MustMap translates old, panicking if it was dropped. Reserved for
// call sites that have already verified (via Reachable, before calling
// Retain) that old survives — a miss here is a broken invariant, not a
// recoverable condition.
func (m IDMap) MustMap(old TypeID) TypeID {
	n, ok := m.Map(old)
	if !ok {
		panic("typeregistry: IDMap.MustMap: id was dropped by Retain: " + idName(old))
	}
	return n
}

// Retain compacts the registry, keeping only ids for which keep returns
// true, and returns the old id→new id mapping. Order among kept ids is
// preserved. Retain rewrites the references inside the kept descriptors
// itself and leaves the receiver unchanged; ids stored outside the
// registry are rewritten by callers (typically package strip) through the
// returned IDMap, since Retain cannot know which external collections
// store them.
func (r *Registry) Retain(keep func(TypeID) bool) (*Registry, IDMap) {
	m := IDMap{old2new: make(map[TypeID]TypeID, len(r.descs))}
	kept := make([]TypeDescriptor, 0, len(r.descs))
	for i := range r.descs {
		old := TypeID(i)
		if !keep(old) {
			continue
		}
		m.old2new[old] = TypeID(len(kept))
		kept = append(kept, r.descs[i])
	}
	// Rewrite references within the kept descriptors themselves so the
	// compacted registry is immediately closed under reference.
	for i := range kept {
		rewriteDescriptor(&kept[i], m)
	}
	return &Registry{descs: kept}, m
}

func rewriteDescriptor(d *TypeDescriptor, m IDMap) {
	// d is a shallow copy of a receiver descriptor; copy its slices before
	// rewriting so the receiver's descriptors are not modified.
	d.Params = append([]TypeParam(nil), d.Params...)
	switch d.Def.Kind {
	case KindComposite:
		d.Def.Fields = append([]Field(nil), d.Def.Fields...)
		for i := range d.Def.Fields {
			d.Def.Fields[i].Type = m.MustMap(d.Def.Fields[i].Type)
		}
	case KindVariant:
		d.Def.Variants = append([]VariantDef(nil), d.Def.Variants...)
		for vi := range d.Def.Variants {
			d.Def.Variants[vi].Fields = append([]Field(nil), d.Def.Variants[vi].Fields...)
			for fi := range d.Def.Variants[vi].Fields {
				d.Def.Variants[vi].Fields[fi].Type = m.MustMap(d.Def.Variants[vi].Fields[fi].Type)
			}
		}
	case KindSequence, KindArray, KindCompact:
		d.Def.Element = m.MustMap(d.Def.Element)
	case KindTuple:
		d.Def.Tuple = append([]TypeID(nil), d.Def.Tuple...)
		for i := range d.Def.Tuple {
			d.Def.Tuple[i] = m.MustMap(d.Def.Tuple[i])
		}
	case KindBitSequence:
		d.Def.BitOrderType = m.MustMap(d.Def.BitOrderType)
		d.Def.BitStoreType = m.MustMap(d.Def.BitStoreType)
	}
	for i := range d.Params {
		if d.Params[i].HasType {
			d.Params[i].Type = m.MustMap(d.Params[i].Type)
		}
	}
}
