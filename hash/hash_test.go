package hash_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dynascale/scalekit/hash"
	"github.com/dynascale/scalekit/metadata"
	"github.com/dynascale/scalekit/typeregistry"
)

func buildRegistry() *typeregistry.Registry {
	return typeregistry.New([]typeregistry.TypeDescriptor{
		{Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.U128}},
		{Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.U32}},
	})
}

const (
	idU128 typeregistry.TypeID = iota
	idU32
)

func buildPallet(constants []metadata.Constant) *metadata.Pallet {
	md := metadata.New(buildRegistry())
	p := &metadata.Pallet{
		Name:      "Balances",
		CallIndex: 1, EventIndex: 1, ErrorIndex: 1,
		Constants: constants,
	}
	md.AddPallet(p)
	return p
}

func TestHashOrderIndependentAcrossConstants(t *testing.T) {
	reg := buildRegistry()
	a := buildPallet([]metadata.Constant{
		{Name: "ExistentialDeposit", Type: idU128, Value: []byte{1}},
		{Name: "MaxLocks", Type: idU32, Value: []byte{2}},
	})
	b := buildPallet([]metadata.Constant{
		{Name: "MaxLocks", Type: idU32, Value: []byte{2}},
		{Name: "ExistentialDeposit", Type: idU128, Value: []byte{1}},
	})
	require.Equal(t, hash.Pallet(reg, a), hash.Pallet(reg, b))
}

func TestHashSensitiveToRename(t *testing.T) {
	reg := buildRegistry()
	a := buildPallet([]metadata.Constant{
		{Name: "ExistentialDeposit", Type: idU128, Value: []byte{1}},
	})
	b := buildPallet([]metadata.Constant{
		{Name: "MinDeposit", Type: idU128, Value: []byte{1}},
	})
	require.NotEqual(t, hash.Pallet(reg, a), hash.Pallet(reg, b))
}

func TestHashSensitiveToValueChange(t *testing.T) {
	reg := buildRegistry()
	a := buildPallet([]metadata.Constant{{Name: "X", Type: idU128, Value: []byte{1}}})
	b := buildPallet([]metadata.Constant{{Name: "X", Type: idU128, Value: []byte{2}}})
	require.NotEqual(t, hash.Pallet(reg, a), hash.Pallet(reg, b))
}

func TestTypeHashStableIndependentOfID(t *testing.T) {
	regA := typeregistry.New([]typeregistry.TypeDescriptor{
		{Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.Bool}},
	})
	regB := typeregistry.New([]typeregistry.TypeDescriptor{
		{Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.U8}}, // padding, different id layout
		{Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.Bool}},
	})
	require.Equal(t, hash.Type(regA, 0), hash.Type(regB, 1))
}

func TestTypeHashBreaksCycles(t *testing.T) {
	// A self-referential composite (its only field refers back to itself)
	// must terminate rather than recurse forever.
	descs := []typeregistry.TypeDescriptor{
		{Def: typeregistry.Definition{Kind: typeregistry.KindComposite, Fields: []typeregistry.Field{{Name: "next", Type: 0}}}},
	}
	reg := typeregistry.New(descs)
	require.NotPanics(t, func() {
		hash.Type(reg, 0)
	})
}
