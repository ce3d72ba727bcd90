package strip_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dynascale/scalekit/metadata"
	"github.com/dynascale/scalekit/strip"
	"github.com/dynascale/scalekit/typeregistry"
)

// buildABCMetadata builds three pallets A, B, C, each with its own call
// type, plus a shared dispatch-error type unreferenced by any pallet (as
// a runtime-level root would be).
func buildABCMetadata(t *testing.T) (*metadata.Metadata, map[string]typeregistry.TypeID) {
	t.Helper()
	const (
		idACall typeregistry.TypeID = iota
		idBCall
		idCCall
		idDispatchError
		idAddress
		idSignature
	)
	descs := []typeregistry.TypeDescriptor{
		idACall:         {Def: typeregistry.Definition{Kind: typeregistry.KindVariant, Variants: []typeregistry.VariantDef{{Name: "doA", Index: 0}}}},
		idBCall:         {Def: typeregistry.Definition{Kind: typeregistry.KindVariant, Variants: []typeregistry.VariantDef{{Name: "doB", Index: 0}}}},
		idCCall:         {Def: typeregistry.Definition{Kind: typeregistry.KindVariant, Variants: []typeregistry.VariantDef{{Name: "doC", Index: 0}}}},
		idDispatchError: {Def: typeregistry.Definition{Kind: typeregistry.KindVariant, Variants: []typeregistry.VariantDef{{Name: "BadOrigin", Index: 0}}}},
		idAddress:       {Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.U32}},
		idSignature:     {Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.U8}},
	}
	reg := typeregistry.New(descs)
	md := metadata.New(reg)
	md.AddPallet(&metadata.Pallet{Name: "A", CallType: idACall, HasCall: true, CallIndex: 0, EventIndex: 0, ErrorIndex: 0})
	md.AddPallet(&metadata.Pallet{Name: "B", CallType: idBCall, HasCall: true, CallIndex: 1, EventIndex: 1, ErrorIndex: 1})
	md.AddPallet(&metadata.Pallet{Name: "C", CallType: idCCall, HasCall: true, CallIndex: 2, EventIndex: 2, ErrorIndex: 2})
	md.SetExtrinsicFormat(metadata.ExtrinsicFormat{
		AddressType:       idAddress,
		SignatureType:     idSignature,
		SupportedVersions: []uint8{4},
		Extensions:        map[uint8][]metadata.TransactionExtension{4: nil},
	})
	md.SetOuterEnums(metadata.OuterEnums{CallType: idACall, EventType: idACall, ErrorType: idACall})
	md.SetDispatchErrorType(idDispatchError)

	ids := map[string]typeregistry.TypeID{
		"A": idACall, "B": idBCall, "C": idCCall, "dispatchError": idDispatchError,
	}
	return md, ids
}

func TestStripKeepOnlyA(t *testing.T) {
	md, ids := buildABCMetadata(t)

	out, idMap, err := strip.Strip(md, func(name string) bool { return name == "A" }, nil)
	require.NoError(t, err)

	require.Len(t, out.Pallets(), 1)
	require.Equal(t, "A", out.Pallets()[0].Name)

	// B and C's call types must not survive in the new registry.
	_, bOK := idMap.Map(ids["B"])
	require.False(t, bOK)
	_, cOK := idMap.Map(ids["C"])
	require.False(t, cOK)

	// A's own call type, and the dispatch-error type, must survive.
	_, aOK := idMap.Map(ids["A"])
	require.True(t, aOK)
	_, errOK := idMap.Map(ids["dispatchError"])
	require.True(t, errOK)

	errID, hasErr := out.DispatchErrorType()
	require.True(t, hasErr)
	_, resolveErr := out.Registry().Resolve(errID)
	require.NoError(t, resolveErr)

	// Every id the kept pallet A references must resolve in the new registry.
	aPallet, err := out.PalletByName("A")
	require.NoError(t, err)
	_, err = out.Registry().Resolve(aPallet.CallType)
	require.NoError(t, err)
}

func TestStripIsIdempotent(t *testing.T) {
	md, _ := buildABCMetadata(t)
	once, _, err := strip.Strip(md, func(name string) bool { return name == "A" }, nil)
	require.NoError(t, err)

	twice, _, err := strip.Strip(once, func(name string) bool { return name == "A" }, nil)
	require.NoError(t, err)

	require.Equal(t, len(once.Pallets()), len(twice.Pallets()))
	require.Equal(t, once.Registry().Len(), twice.Registry().Len())
}

func TestStripPreservesSystemAssociatedTypes(t *testing.T) {
	const (
		idSysCall typeregistry.TypeID = iota
		idAccountID
		idAddress
		idSignature
		idOtherCall
	)
	descs := []typeregistry.TypeDescriptor{
		idSysCall:    {Def: typeregistry.Definition{Kind: typeregistry.KindVariant}},
		idAccountID:  {Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.U32}},
		idAddress:    {Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.U32}},
		idSignature:  {Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.U8}},
		idOtherCall:  {Def: typeregistry.Definition{Kind: typeregistry.KindVariant, Variants: []typeregistry.VariantDef{{Name: "doX", Index: 0, Fields: []typeregistry.Field{{Type: idAccountID}}}}}},
	}
	reg := typeregistry.New(descs)
	md := metadata.New(reg)
	md.AddPallet(&metadata.Pallet{
		Name: "System", HasCall: true, CallType: idSysCall,
		AssociatedTypes: map[string]typeregistry.TypeID{"AccountId": idAccountID},
	})
	md.AddPallet(&metadata.Pallet{Name: "Other", HasCall: true, CallType: idOtherCall})
	md.SetExtrinsicFormat(metadata.ExtrinsicFormat{
		AddressType: idAddress, SignatureType: idSignature,
		SupportedVersions: []uint8{4}, Extensions: map[uint8][]metadata.TransactionExtension{4: nil},
	})
	md.SetOuterEnums(metadata.OuterEnums{CallType: idOtherCall, EventType: idOtherCall, ErrorType: idOtherCall})

	out, _, err := strip.Strip(md, func(name string) bool { return name == "Other" }, nil)
	require.NoError(t, err)

	sys, err := out.PalletByName("System")
	require.NoError(t, err)
	require.False(t, sys.HasCall)
	require.Contains(t, sys.AssociatedTypes, "AccountId")
}

// buildOuterEnumMetadata builds pallets A, B, C each with their own call
// type, plus a genuine outer Call enum type whose variants ("A", "B", "C")
// each carry one field referencing the matching pallet's call type —
// modeling the real umbrella-enum shape the optional stripping rule (spec
// §4.5) operates on. If referencedFromStorage is true, pallet A gets a
// storage entry whose value type is the outer enum id itself (an
// "OpaqueCall"-style wrapper), making the outer enum reachable from a
// decode-relevant root and therefore ineligible for variant pruning.
func buildOuterEnumMetadata(t *testing.T, referencedFromStorage bool) (*metadata.Metadata, map[string]typeregistry.TypeID) {
	t.Helper()
	const (
		idACall typeregistry.TypeID = iota
		idBCall
		idCCall
		idOuterCall
		idDispatchError
		idAddress
		idSignature
	)
	descs := []typeregistry.TypeDescriptor{
		idACall:         {Def: typeregistry.Definition{Kind: typeregistry.KindVariant, Variants: []typeregistry.VariantDef{{Name: "doA", Index: 0}}}},
		idBCall:         {Def: typeregistry.Definition{Kind: typeregistry.KindVariant, Variants: []typeregistry.VariantDef{{Name: "doB", Index: 0}}}},
		idCCall:         {Def: typeregistry.Definition{Kind: typeregistry.KindVariant, Variants: []typeregistry.VariantDef{{Name: "doC", Index: 0}}}},
		idOuterCall: {Def: typeregistry.Definition{Kind: typeregistry.KindVariant, Variants: []typeregistry.VariantDef{
			{Name: "A", Index: 0, Fields: []typeregistry.Field{{Type: idACall}}},
			{Name: "B", Index: 1, Fields: []typeregistry.Field{{Type: idBCall}}},
			{Name: "C", Index: 2, Fields: []typeregistry.Field{{Type: idCCall}}},
		}}},
		idDispatchError: {Def: typeregistry.Definition{Kind: typeregistry.KindVariant, Variants: []typeregistry.VariantDef{{Name: "BadOrigin", Index: 0}}}},
		idAddress:       {Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.U32}},
		idSignature:     {Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.U8}},
	}
	reg := typeregistry.New(descs)
	md := metadata.New(reg)

	aPallet := &metadata.Pallet{Name: "A", CallType: idACall, HasCall: true, CallIndex: 0, EventIndex: 0, ErrorIndex: 0}
	if referencedFromStorage {
		aPallet.Storage = &metadata.StorageSection{Prefix: "A", Entries: []metadata.StorageEntry{
			{Name: "PendingCall", ValueType: idOuterCall},
		}}
	}
	md.AddPallet(aPallet)
	md.AddPallet(&metadata.Pallet{Name: "B", CallType: idBCall, HasCall: true, CallIndex: 1, EventIndex: 1, ErrorIndex: 1})
	md.AddPallet(&metadata.Pallet{Name: "C", CallType: idCCall, HasCall: true, CallIndex: 2, EventIndex: 2, ErrorIndex: 2})
	md.SetExtrinsicFormat(metadata.ExtrinsicFormat{
		AddressType:       idAddress,
		SignatureType:     idSignature,
		SupportedVersions: []uint8{4},
		Extensions:        map[uint8][]metadata.TransactionExtension{4: nil},
	})
	md.SetOuterEnums(metadata.OuterEnums{CallType: idOuterCall, EventType: idOuterCall, ErrorType: idOuterCall})
	md.SetDispatchErrorType(idDispatchError)

	ids := map[string]typeregistry.TypeID{
		"A": idACall, "B": idBCall, "C": idCCall, "outer": idOuterCall, "dispatchError": idDispatchError,
	}
	return md, ids
}

// TestStripPrunesOuterEnumVariantForDroppedPallet covers the optional
// outer-enum stripping rule (spec §4.5): when the outer Call enum id is not
// reachable from anything else kept, dropping pallet C must also drop C's
// variant from the outer enum.
func TestStripPrunesOuterEnumVariantForDroppedPallet(t *testing.T) {
	md, ids := buildOuterEnumMetadata(t, false)

	out, idMap, err := strip.Strip(md, func(name string) bool { return name == "A" || name == "B" }, nil)
	require.NoError(t, err)

	outerID := out.OuterEnums().CallType
	outerDesc, err := out.Registry().Resolve(outerID)
	require.NoError(t, err)
	require.Len(t, outerDesc.Def.Variants, 2)
	var names []string
	for _, v := range outerDesc.Def.Variants {
		names = append(names, v.Name)
	}
	require.ElementsMatch(t, []string{"A", "B"}, names)

	// C's own call type must not survive: nothing roots it once its outer
	// enum variant was pruned.
	_, cOK := idMap.Map(ids["C"])
	require.False(t, cOK)
}

// TestStripKeepsAllOuterEnumVariantsWhenStillReferenced covers the other
// half of the same rule: when some retained type still references the
// outer enum id directly, it must not be variant-pruned even though pallet
// C was dropped — downstream decoders could otherwise fail to decode an
// existing C-variant value.
func TestStripKeepsAllOuterEnumVariantsWhenStillReferenced(t *testing.T) {
	md, ids := buildOuterEnumMetadata(t, true)

	out, idMap, err := strip.Strip(md, func(name string) bool { return name == "A" || name == "B" }, nil)
	require.NoError(t, err)

	outerID := out.OuterEnums().CallType
	outerDesc, err := out.Registry().Resolve(outerID)
	require.NoError(t, err)
	require.Len(t, outerDesc.Def.Variants, 3)

	// C's call type is still referenced (via the unpruned outer enum
	// variant) and must survive, even though pallet C itself was dropped.
	_, cOK := idMap.Map(ids["C"])
	require.True(t, cOK)
	require.Len(t, out.Pallets(), 2)
}
