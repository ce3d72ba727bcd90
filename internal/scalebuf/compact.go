package scalebuf

import (
	"math/big"

	"github.com/dynascale/scalekit/chainerr"
)

// SCALE compact encoding packs a non-negative integer into 1, 2, 4, or a
// variable number of bytes depending on magnitude:
//
//	mode 0b00: value fits in 6 bits   -> 1 byte,  value<<2 | 0b00
//	mode 0b01: value fits in 14 bits  -> 2 bytes, value<<2 | 0b01 (LE u16)
//	mode 0b10: value fits in 30 bits  -> 4 bytes, value<<2 | 0b10 (LE u32)
//	mode 0b11: bignum mode            -> 1 length byte ((n-4)<<2 | 0b11)
//	           followed by n little-endian bytes of the value, n = minimal
//	           byte count (at least 4).
const (
	compactMode0Max = 1<<6 - 1
	compactMode1Max = 1<<14 - 1
	compactMode2Max = 1<<30 - 1
)

// PutCompact appends the SCALE-compact encoding of a non-negative v.
func (b *Buffer) PutCompact(v *big.Int) {
	if v.Sign() < 0 {
		// Guarded by callers (Compact only wraps unsigned primitives); a
		// negative value here is a programming error, not user input.
		panic("scalebuf: PutCompact: negative value")
	}
	switch {
	case v.IsUint64() && v.Uint64() <= compactMode0Max:
		b.WriteByte(byte(v.Uint64()<<2) | 0b00)
	case v.IsUint64() && v.Uint64() <= compactMode1Max:
		b.PutU16LE(uint16(v.Uint64()<<2) | 0b01)
	case v.IsUint64() && v.Uint64() <= compactMode2Max:
		b.PutU32LE(uint32(v.Uint64()<<2) | 0b10)
	default:
		be := v.Bytes() // big-endian, minimal
		le := reverseBytes(be)
		n := len(le)
		if n < 4 {
			n = 4
			padded := make([]byte, 4)
			copy(padded, le)
			le = padded
		}
		b.WriteByte(byte((n-4)<<2) | 0b11)
		b.Write(le)
	}
}

// Compact decodes a SCALE-compact integer, returning it as a big.Int.
func (c *Cursor) Compact() (*big.Int, error) {
	first, err := c.Byte()
	if err != nil {
		return nil, err
	}
	switch first & 0b11 {
	case 0b00:
		return big.NewInt(int64(first >> 2)), nil
	case 0b01:
		second, err := c.Byte()
		if err != nil {
			return nil, err
		}
		v := uint16(first) | uint16(second)<<8
		return big.NewInt(int64(v >> 2)), nil
	case 0b10:
		rest, err := c.Take(3)
		if err != nil {
			return nil, err
		}
		v := uint32(first) | uint32(rest[0])<<8 | uint32(rest[1])<<16 | uint32(rest[2])<<24
		return big.NewInt(int64(v >> 2)), nil
	default: // 0b11, bignum mode
		n := int(first>>2) + 4
		bytesLE, err := c.Take(n)
		if err != nil {
			return nil, err
		}
		be := reverseBytes(bytesLE)
		return new(big.Int).SetBytes(be), nil
	}
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// CheckFitsBits reports whether v fits in an unsigned integer of the given
// bit width, returning a Capacity error naming op otherwise.
func CheckFitsBits(op string, v *big.Int, bits int) error {
	if v.Sign() < 0 {
		return chainerr.Capacityf(op, "value %s is negative, expected unsigned", v.String())
	}
	max := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	if v.Cmp(max) >= 0 {
		return chainerr.Capacityf(op, "value %s does not fit in %d bits", v.String(), bits)
	}
	return nil
}
