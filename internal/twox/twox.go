// Package twox implements the storage-key hashing scheme used by the
// Twox128/Twox256/Twox64Concat hashers: one or more xxHash-64 passes over
// the input, each seeded differently, concatenated to reach the target
// width. It is the fast, non-cryptographic hash family storage keys use —
// distinct from, and unrelated to, package hash's metadata content hash.
package twox

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// seededSum64 hashes seed||data with xxHash-64, giving each pass a
// distinct output without requiring a seeded-digest constructor.
func seededSum64(seed uint64, data []byte) uint64 {
	d := xxhash.New()
	var seedBuf [8]byte
	binary.LittleEndian.PutUint64(seedBuf[:], seed)
	_, _ = d.Write(seedBuf[:])
	_, _ = d.Write(data)
	return d.Sum64()
}

// Sum64 is the bare single-pass hash used by Twox64Concat: 8 bytes.
func Sum64(data []byte) [8]byte {
	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], seededSum64(0, data))
	return out
}

// Sum128 is the two-pass hash used by Twox128 and by the pallet and entry
// prefixes of a storage key: 16 bytes.
func Sum128(data []byte) [16]byte {
	var out [16]byte
	binary.LittleEndian.PutUint64(out[0:8], seededSum64(0, data))
	binary.LittleEndian.PutUint64(out[8:16], seededSum64(1, data))
	return out
}

// Sum256 is the four-pass hash used by Twox256: 32 bytes.
func Sum256(data []byte) [32]byte {
	var out [32]byte
	binary.LittleEndian.PutUint64(out[0:8], seededSum64(0, data))
	binary.LittleEndian.PutUint64(out[8:16], seededSum64(1, data))
	binary.LittleEndian.PutUint64(out[16:24], seededSum64(2, data))
	binary.LittleEndian.PutUint64(out[24:32], seededSum64(3, data))
	return out
}
