package xferr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dynascale/scalekit/internal/xferr"
	"github.com/dynascale/scalekit/value"
)

func TestDecodeModule(t *testing.T) {
	errBytes := value.NewComposite(
		value.UintFromU64(1), value.UintFromU64(2), value.UintFromU64(3), value.UintFromU64(4),
	)
	v := value.NamedVariant("Module", value.Field("index", value.UintFromU64(7)), value.Field("error", errBytes))

	out, err := xferr.Decode(v)
	require.NoError(t, err)
	require.Equal(t, xferr.KindModule, out.Kind)
	require.Equal(t, uint8(7), out.PalletIndex)
	require.Equal(t, [4]byte{1, 2, 3, 4}, out.ErrorBytes)
}

func TestDecodeBadOrigin(t *testing.T) {
	out, err := xferr.Decode(value.Variant("BadOrigin"))
	require.NoError(t, err)
	require.Equal(t, xferr.KindBadOrigin, out.Kind)
}

func TestDecodeArithmetic(t *testing.T) {
	v := value.Variant("Arithmetic", value.Variant("Overflow"))
	out, err := xferr.Decode(v)
	require.NoError(t, err)
	require.Equal(t, xferr.KindArithmetic, out.Kind)
	require.Equal(t, "Overflow", out.Detail)
}

func TestDecodeOther(t *testing.T) {
	v := value.Variant("Other", value.Str("boom"))
	out, err := xferr.Decode(v)
	require.NoError(t, err)
	require.Equal(t, xferr.KindOther, out.Kind)
	require.Equal(t, "boom", out.Message)
}

func TestDecodeUnrecognizedVariant(t *testing.T) {
	out, err := xferr.Decode(value.Variant("SomeFutureVariant"))
	require.NoError(t, err)
	require.Equal(t, xferr.KindUnrecognized, out.Kind)
	require.Equal(t, "SomeFutureVariant", out.RawVariant)
}

func TestDecodeRejectsNonVariant(t *testing.T) {
	_, err := xferr.Decode(value.Bool(true))
	require.Error(t, err)
}
