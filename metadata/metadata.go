package metadata

import (
	"github.com/dynascale/scalekit/chainerr"
	"github.com/dynascale/scalekit/typeregistry"
)

// Metadata is the normalized, wire-version-independent catalog of a
// chain's callable surface plus the type registry it references. It is
// built by package wire (package strip builds a compacted copy rather than
// changing it) and read-only thereafter; concurrent readers may freely call any lookup,
// Encode/Decode, or hash operation without coordination (spec §5).
type Metadata struct {
	registry *typeregistry.Registry

	pallets          *orderedMap[*Pallet]
	palletsByCall    map[uint8]*Pallet
	palletsByEvent   map[uint8]*Pallet
	palletsByError   map[uint8]*Pallet

	apis *orderedMap[*RuntimeAPI]

	extrinsic  ExtrinsicFormat
	outerEnums OuterEnums

	dispatchErrorType typeregistry.TypeID
	hasDispatchError  bool

	custom *orderedMap[CustomValue]
}

// New builds an empty Metadata over reg; package wire populates it via the
// Add* methods while translating a specific wire version, then discards
// its own builder state.
func New(reg *typeregistry.Registry) *Metadata {
	return &Metadata{
		registry:       reg,
		pallets:        newOrderedMap[*Pallet](func(p *Pallet) string { return p.Name }),
		palletsByCall:  make(map[uint8]*Pallet),
		palletsByEvent: make(map[uint8]*Pallet),
		palletsByError: make(map[uint8]*Pallet),
		apis:           newOrderedMap[*RuntimeAPI](func(a *RuntimeAPI) string { return a.Name }),
		custom:         newOrderedMap[CustomValue](func(c CustomValue) string { return c.Name }),
	}
}

// AddPallet registers p, indexing it by name and by its three dispatch
// bytes. For modern wire versions these three bytes are identical; legacy
// adapters may pass differing values.
func (m *Metadata) AddPallet(p *Pallet) {
	p.constants = newOrderedMap[Constant](func(c Constant) string { return c.Name })
	for _, c := range p.Constants {
		p.constants.add(c)
	}
	if p.Storage != nil {
		p.storageByName = newOrderedMap[StorageEntry](func(e StorageEntry) string { return e.Name })
		for _, e := range p.Storage.Entries {
			p.storageByName.add(e)
		}
	}
	m.pallets.add(p)
	m.palletsByCall[p.CallIndex] = p
	m.palletsByEvent[p.EventIndex] = p
	m.palletsByError[p.ErrorIndex] = p
}

// AddRuntimeAPI registers a Runtime API trait by name.
func (m *Metadata) AddRuntimeAPI(a *RuntimeAPI) {
	a.methodsByName = newOrderedMap[RuntimeAPIMethod](func(meth RuntimeAPIMethod) string { return meth.Name })
	for _, meth := range a.Methods {
		a.methodsByName.add(meth)
	}
	m.apis.add(a)
}

// AddCustomValue registers a custom value by name.
func (m *Metadata) AddCustomValue(c CustomValue) { m.custom.add(c) }

// SetExtrinsicFormat sets the extrinsic envelope description.
func (m *Metadata) SetExtrinsicFormat(e ExtrinsicFormat) { m.extrinsic = e }

// SetOuterEnums sets the Call/Event/Error umbrella type ids.
func (m *Metadata) SetOuterEnums(o OuterEnums) { m.outerEnums = o }

// SetDispatchErrorType records the type id the runtime uses to report
// failed execution, when the wire metadata carries one.
func (m *Metadata) SetDispatchErrorType(id typeregistry.TypeID) {
	m.dispatchErrorType = id
	m.hasDispatchError = true
}

// Registry returns a shared read borrow of the owned type registry.
func (m *Metadata) Registry() *typeregistry.Registry { return m.registry }

// SetRegistry replaces the owned registry. Ids stored in the Metadata's
// own collections are not rewritten; package strip does not use it and
// builds a new Metadata over the compacted registry instead.
func (m *Metadata) SetRegistry(reg *typeregistry.Registry) { m.registry = reg }

// ExtrinsicFormat returns the extrinsic envelope description.
func (m *Metadata) ExtrinsicFormat() ExtrinsicFormat { return m.extrinsic }

// OuterEnums returns the Call/Event/Error umbrella type ids.
func (m *Metadata) OuterEnums() OuterEnums { return m.outerEnums }

// DispatchErrorType returns the dispatch-error type id, if present.
func (m *Metadata) DispatchErrorType() (typeregistry.TypeID, bool) {
	return m.dispatchErrorType, m.hasDispatchError
}

// --- pallet lookups ---

// PalletByName finds a pallet by name.
func (m *Metadata) PalletByName(name string) (*Pallet, error) {
	p, ok := m.pallets.get(name)
	if !ok {
		return nil, chainerr.NotFoundf("metadata.PalletByName", name, "metadata")
	}
	return p, nil
}

// PalletByCallIndex finds the pallet that owns dispatch byte idx in the
// Call context.
func (m *Metadata) PalletByCallIndex(idx uint8) (*Pallet, error) {
	p, ok := m.palletsByCall[idx]
	if !ok {
		return nil, chainerr.NotFoundf("metadata.PalletByCallIndex", idName(idx), "call index")
	}
	return p, nil
}

// PalletByEventIndex finds the pallet that owns dispatch byte idx in the
// Event context.
func (m *Metadata) PalletByEventIndex(idx uint8) (*Pallet, error) {
	p, ok := m.palletsByEvent[idx]
	if !ok {
		return nil, chainerr.NotFoundf("metadata.PalletByEventIndex", idName(idx), "event index")
	}
	return p, nil
}

// PalletByErrorIndex finds the pallet that owns dispatch byte idx in the
// Error context.
func (m *Metadata) PalletByErrorIndex(idx uint8) (*Pallet, error) {
	p, ok := m.palletsByError[idx]
	if !ok {
		return nil, chainerr.NotFoundf("metadata.PalletByErrorIndex", idName(idx), "error index")
	}
	return p, nil
}

// Pallets iterates pallets in metadata-declared order.
func (m *Metadata) Pallets() []*Pallet { return m.pallets.all() }

// --- runtime API lookups ---

// RuntimeAPIByName finds a Runtime API trait by name.
func (m *Metadata) RuntimeAPIByName(name string) (*RuntimeAPI, error) {
	a, ok := m.apis.get(name)
	if !ok {
		return nil, chainerr.NotFoundf("metadata.RuntimeAPIByName", name, "metadata")
	}
	return a, nil
}

// RuntimeAPIs iterates Runtime API traits in metadata-declared order.
func (m *Metadata) RuntimeAPIs() []*RuntimeAPI { return m.apis.all() }

// --- custom value lookups ---

// CustomValueByName finds a custom value by name.
func (m *Metadata) CustomValueByName(name string) (CustomValue, error) {
	c, ok := m.custom.get(name)
	if !ok {
		return CustomValue{}, chainerr.NotFoundf("metadata.CustomValueByName", name, "metadata")
	}
	return c, nil
}

// CustomValues iterates custom values in metadata-declared order.
func (m *Metadata) CustomValues() []CustomValue { return m.custom.all() }

// --- pallet-scoped lookups ---

// CallVariant finds a call variant definition by name within p's call
// type (which must resolve to a Variant descriptor).
func (p *Pallet) CallVariant(reg *typeregistry.Registry, name string) (*typeregistry.VariantDef, error) {
	return variantByName(reg, p.CallType, p.HasCall, name, "metadata.Pallet.CallVariant", p.Name)
}

// CallVariantByIndex finds a call variant definition by discriminant byte.
func (p *Pallet) CallVariantByIndex(reg *typeregistry.Registry, idx uint8) (*typeregistry.VariantDef, error) {
	return variantByIndex(reg, p.CallType, p.HasCall, idx, "metadata.Pallet.CallVariantByIndex", p.Name)
}

// EventVariant finds an event variant definition by name.
func (p *Pallet) EventVariant(reg *typeregistry.Registry, name string) (*typeregistry.VariantDef, error) {
	return variantByName(reg, p.EventType, p.HasEvent, name, "metadata.Pallet.EventVariant", p.Name)
}

// EventVariantByIndex finds an event variant definition by discriminant byte.
func (p *Pallet) EventVariantByIndex(reg *typeregistry.Registry, idx uint8) (*typeregistry.VariantDef, error) {
	return variantByIndex(reg, p.EventType, p.HasEvent, idx, "metadata.Pallet.EventVariantByIndex", p.Name)
}

// ErrorVariant finds an error variant definition by name.
func (p *Pallet) ErrorVariant(reg *typeregistry.Registry, name string) (*typeregistry.VariantDef, error) {
	return variantByName(reg, p.ErrorType, p.HasError, name, "metadata.Pallet.ErrorVariant", p.Name)
}

// ErrorVariantByIndex finds an error variant definition by discriminant byte.
func (p *Pallet) ErrorVariantByIndex(reg *typeregistry.Registry, idx uint8) (*typeregistry.VariantDef, error) {
	return variantByIndex(reg, p.ErrorType, p.HasError, idx, "metadata.Pallet.ErrorVariantByIndex", p.Name)
}

func variantByName(reg *typeregistry.Registry, id typeregistry.TypeID, has bool, name, op, container string) (*typeregistry.VariantDef, error) {
	if !has {
		return nil, chainerr.NotFoundf(op, name, container)
	}
	desc, err := reg.Resolve(id)
	if err != nil {
		return nil, chainerr.Wrap(op, err)
	}
	if desc.Def.Kind != typeregistry.KindVariant {
		return nil, chainerr.Shapef(op, uint64(id), desc.PathString(), "type is not a Variant")
	}
	for i := range desc.Def.Variants {
		if desc.Def.Variants[i].Name == name {
			return &desc.Def.Variants[i], nil
		}
	}
	return nil, chainerr.NotFoundf(op, name, container)
}

func variantByIndex(reg *typeregistry.Registry, id typeregistry.TypeID, has bool, idx uint8, op, container string) (*typeregistry.VariantDef, error) {
	if !has {
		return nil, chainerr.NotFoundf(op, idName(idx), container)
	}
	desc, err := reg.Resolve(id)
	if err != nil {
		return nil, chainerr.Wrap(op, err)
	}
	if desc.Def.Kind != typeregistry.KindVariant {
		return nil, chainerr.Shapef(op, uint64(id), desc.PathString(), "type is not a Variant")
	}
	for i := range desc.Def.Variants {
		if desc.Def.Variants[i].Index == idx {
			return &desc.Def.Variants[i], nil
		}
	}
	return nil, chainerr.NotFoundf(op, idName(idx), container)
}

func idName(b uint8) string {
	const hexDigits = "0123456789abcdef"
	return "0x" + string([]byte{hexDigits[b>>4], hexDigits[b&0xf]})
}

// ConstantByName finds a constant by name within p.
func (p *Pallet) ConstantByName(name string) (Constant, error) {
	c, ok := p.constants.get(name)
	if !ok {
		return Constant{}, chainerr.NotFoundf("metadata.Pallet.ConstantByName", name, p.Name)
	}
	return c, nil
}

// StorageEntryByName finds a storage entry by name within p.
func (p *Pallet) StorageEntryByName(name string) (StorageEntry, error) {
	if p.storageByName == nil {
		return StorageEntry{}, chainerr.NotFoundf("metadata.Pallet.StorageEntryByName", name, p.Name)
	}
	e, ok := p.storageByName.get(name)
	if !ok {
		return StorageEntry{}, chainerr.NotFoundf("metadata.Pallet.StorageEntryByName", name, p.Name)
	}
	return e, nil
}

// MethodByName finds a Runtime API method by name within a.
func (a *RuntimeAPI) MethodByName(name string) (RuntimeAPIMethod, error) {
	m, ok := a.methodsByName.get(name)
	if !ok {
		return RuntimeAPIMethod{}, chainerr.NotFoundf("metadata.RuntimeAPI.MethodByName", name, a.Name)
	}
	return m, nil
}
