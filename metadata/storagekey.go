package metadata

import (
	"golang.org/x/crypto/blake2b"

	"github.com/dynascale/scalekit/chainerr"
	"github.com/dynascale/scalekit/internal/twox"
)

// hashKeyPart applies h to raw, returning the bytes that go on the wire
// for that key part: Identity passes the raw bytes through unchanged,
// *Concat hashers append the raw bytes after the hash (so the original
// value can be recovered by a chain scanning storage keys), and the plain
// hashers emit only the digest.
func hashKeyPart(h StorageHasher, raw []byte) ([]byte, error) {
	switch h {
	case Identity:
		return append([]byte(nil), raw...), nil
	case Twox64Concat:
		sum := twox.Sum64(raw)
		return append(sum[:], raw...), nil
	case Twox128:
		sum := twox.Sum128(raw)
		return sum[:], nil
	case Twox256:
		sum := twox.Sum256(raw)
		return sum[:], nil
	case Blake2_128Concat:
		sum := blake2b128(raw)
		return append(sum[:], raw...), nil
	case Blake2_128:
		sum := blake2b128(raw)
		return sum[:], nil
	case Blake2_256:
		sum := blake2b256(raw)
		return sum[:], nil
	default:
		return nil, chainerr.Shapef("metadata.hashKeyPart", 0, "", "unknown storage hasher %d", h)
	}
}

func blake2b128(data []byte) [16]byte {
	h, _ := blake2b.New(16, nil)
	_, _ = h.Write(data)
	var out [16]byte
	copy(out[:], h.Sum(nil))
	return out
}

func blake2b256(data []byte) [32]byte {
	return blake2b.Sum256(data)
}

// Key builds the full storage key bytes for one map-entry lookup:
// Twox128(palletPrefix) ++ Twox128(entryName) ++ hashed key parts in
// declared order. partsEncoded must already hold each key part's raw
// SCALE-encoded bytes, in the order StorageEntry.KeyParts declares them;
// package codec produces these via Encode against each part's Type.
func (e StorageEntry) Key(palletPrefix string, partsEncoded [][]byte) ([]byte, error) {
	if len(partsEncoded) != len(e.KeyParts) {
		return nil, chainerr.Capacityf("metadata.StorageEntry.Key", "expected %d key parts, got %d", len(e.KeyParts), len(partsEncoded))
	}
	prefixSum := twox.Sum128([]byte(palletPrefix))
	nameSum := twox.Sum128([]byte(e.Name))

	out := make([]byte, 0, 32+64)
	out = append(out, prefixSum[:]...)
	out = append(out, nameSum[:]...)
	for i, part := range e.KeyParts {
		hashed, err := hashKeyPart(part.Hasher, partsEncoded[i])
		if err != nil {
			return nil, err
		}
		out = append(out, hashed...)
	}
	return out, nil
}
