package value

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestEqualNamedOrderSensitive(t *testing.T) {
	a := NewNamedComposite(Field("x", Bool(true)), Field("y", Str("hi")))
	b := NewNamedComposite(Field("y", Str("hi")), Field("x", Bool(true)))

	require.False(t, a.Equal(b), "named composite equality must be order-sensitive")
	require.True(t, a.EqualSemantic(b), "semantic equality must ignore field order")
}

func TestEraseContextRecursesThroughComposite(t *testing.T) {
	inner := Bool(true).WithContext(7)
	outer := NewComposite(inner).WithContext(1)

	erased := outer.EraseContext()
	_, ok := erased.Context()
	require.False(t, ok)

	innerErased := erased.AsComposite().Unnamed[0]
	_, ok = innerErased.Context()
	require.False(t, ok)
}

func TestVariantRoundTripEquality(t *testing.T) {
	a := Variant("Bar", Bool(true))
	b := Variant("Bar", Bool(true))
	if diff := cmp.Diff(a.AsBits(), b.AsBits()); diff != "" {
		t.Fatalf("unexpected diff: %s", diff)
	}
	require.True(t, a.Equal(b))

	c := Variant("Bar", Bool(false))
	require.False(t, a.Equal(c))
}

func TestUintPreservesMagnitudeAcrossWidth(t *testing.T) {
	v := UintFromU64(1 << 40)
	require.Equal(t, uint64(1<<40), v.AsBigInt().Uint64())
}
