package scalebuf

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTripCompact(t *testing.T, n int64) {
	t.Helper()
	buf := NewBuffer(8)
	buf.PutCompact(big.NewInt(n))
	cur := NewCursor(buf.Bytes())
	got, err := cur.Compact()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(n).String(), got.String())
	require.Equal(t, len(buf.Bytes()), cur.Pos(), "cursor must consume exactly what was written")
}

func TestCompactRoundTripFixtures(t *testing.T) {
	for _, n := range []int64{0, 1, 63, 64, 16383, 16384, 1073741823, 1073741824} {
		roundTripCompact(t, n)
	}
}

func TestCompactKnownBytes(t *testing.T) {
	cases := []struct {
		n    int64
		want []byte
	}{
		{0, []byte{0x00}},
		{63, []byte{0xFC}},
		{64, []byte{0x01, 0x01}},
		{16383, []byte{0xFD, 0xFF}},
		{16384, []byte{0x02, 0x00, 0x01, 0x00}},
	}
	for _, tc := range cases {
		buf := NewBuffer(8)
		buf.PutCompact(big.NewInt(tc.n))
		require.Equal(t, tc.want, buf.Bytes(), "n=%d", tc.n)
	}
}

func TestCompactBignumMode(t *testing.T) {
	n := new(big.Int).Lsh(big.NewInt(1), 70) // exceeds u64 compact modes
	buf := NewBuffer(8)
	buf.PutCompact(n)
	cur := NewCursor(buf.Bytes())
	got, err := cur.Compact()
	require.NoError(t, err)
	require.Equal(t, n.String(), got.String())
}

func TestCompactMaxU64FittingModes(t *testing.T) {
	n := new(big.Int).SetUint64(^uint64(0))
	buf := NewBuffer(16)
	buf.PutCompact(n)
	cur := NewCursor(buf.Bytes())
	got, err := cur.Compact()
	require.NoError(t, err)
	require.Equal(t, n.String(), got.String())
}
