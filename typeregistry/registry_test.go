package typeregistry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func boolDesc() TypeDescriptor {
	return TypeDescriptor{Def: Definition{Kind: KindPrimitive, Primitive: Bool}}
}

func u32Desc() TypeDescriptor {
	return TypeDescriptor{Def: Definition{Kind: KindPrimitive, Primitive: U32}}
}

// buildSample constructs: 0=bool, 1=u32, 2=Seq<u32>, 3=Tuple(bool,u32), 4=unreferenced u8.
func buildSample() *Registry {
	return New([]TypeDescriptor{
		boolDesc(),
		u32Desc(),
		{Def: Definition{Kind: KindSequence, Element: 1}},
		{Def: Definition{Kind: KindTuple, Tuple: []TypeID{0, 1}}},
		{Def: Definition{Kind: KindPrimitive, Primitive: U8}},
	})
}

func TestResolve(t *testing.T) {
	r := buildSample()
	d, err := r.Resolve(1)
	require.NoError(t, err)
	require.Equal(t, U32, d.Def.Primitive)

	_, err = r.Resolve(99)
	require.Error(t, err)
}

func TestDirectRefs(t *testing.T) {
	r := buildSample()
	refs, err := r.DirectRefs(3)
	require.NoError(t, err)
	require.ElementsMatch(t, []TypeID{0, 1}, refs)
}

func TestReachable(t *testing.T) {
	r := buildSample()
	seen, err := r.Reachable(3)
	require.NoError(t, err)
	require.True(t, seen[0])
	require.True(t, seen[1])
	require.True(t, seen[3])
	require.False(t, seen[2])
	require.False(t, seen[4])
}

func TestRetainCompactsAndRewrites(t *testing.T) {
	r := buildSample()
	keep := map[TypeID]bool{0: true, 1: true, 3: true}
	out, m := r.Retain(func(id TypeID) bool { return keep[id] })

	require.Equal(t, 3, out.Len())

	newBool, ok := m.Map(0)
	require.True(t, ok)
	newU32, ok := m.Map(1)
	require.True(t, ok)
	newTuple, ok := m.Map(3)
	require.True(t, ok)

	_, ok = m.Map(2)
	require.False(t, ok, "dropped sequence should not map")

	desc, err := out.Resolve(newTuple)
	require.NoError(t, err)
	require.Equal(t, []TypeID{newBool, newU32}, desc.Def.Tuple)
}

func TestRetainPreservesOrder(t *testing.T) {
	r := buildSample()
	out, _ := r.Retain(func(id TypeID) bool { return id == 1 || id == 4 })
	require.Equal(t, 2, out.Len())
	d0, _ := out.Resolve(0)
	require.Equal(t, U32, d0.Def.Primitive)
	d1, _ := out.Resolve(1)
	require.Equal(t, U8, d1.Def.Primitive)
}
