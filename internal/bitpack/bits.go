package bitpack

import "math/bits"

// wordBits is the width of one output word. The whole format is defined in
// terms of 32-bit words: packed payloads, trailer metadata and overflow-area
// entries all occupy uint32 slots.
const wordBits = 32

// extractBits returns the n-bit field of w starting at bit start
// (bit 0 is the least significant). Requires 0 < n <= 32-start.
func extractBits(w uint32, start, n uint) uint32 {
	mask := uint32((uint64(1)<<n - 1) << start)
	return (w & mask) >> start
}

// setBits returns w with bits [start, start+n) replaced by the low n bits
// of v. Other bits are unchanged. Requires 0 < n <= 32-start.
func setBits(w, v uint32, start, n uint) uint32 {
	mask := uint32((uint64(1)<<n - 1) << start)
	return (w &^ mask) | (v << start & mask)
}

// readBits reads n bits starting at absolute bit offset off, most
// significant chunk first, crossing word boundaries as needed. A read past
// the end of words returns whatever was read so far; callers bound their
// offsets so this only happens on corrupt input.
func readBits(words []uint32, off uint64, n uint) uint32 {
	var v uint32
	read := uint(0)
	for read < n {
		idx := int(off / wordBits)
		if idx >= len(words) {
			break
		}
		sub := uint(off % wordBits)
		take := n - read
		if avail := wordBits - sub; take > avail {
			take = avail
		}
		v |= extractBits(words[idx], sub, take) << (n - read - take)
		read += take
		off += uint64(take)
	}
	return v
}

// magnitude returns |v| as an unsigned value. Unlike a plain int32 negation
// it is also defined for MinInt32 (1<<31).
func magnitude(v int32) uint32 {
	if v < 0 {
		return uint32(-int64(v))
	}
	return uint32(v)
}

// hasNegative reports whether any value in vs is negative.
func hasNegative(vs []int32) bool {
	for _, v := range vs {
		if v < 0 {
			return true
		}
	}
	return false
}

// widthFor returns the minimum number of bits that can hold every value in
// vs. Without negatives that is floor(log2(maxAbs))+1; with negatives the
// offset scheme needs one extra bit so that maxAbs fits in k-1 bits, giving
// the symmetric range [-(2^(k-1)-1), 2^(k-1)-1]. All zeros count as 1 bit.
// The result can exceed 32 (only for a magnitude of 1<<31); callers reject
// that as out of range.
func widthFor(vs []int32) uint {
	if len(vs) == 0 {
		return 0
	}
	var maxAbs uint32
	neg := false
	for _, v := range vs {
		if v < 0 {
			neg = true
		}
		if a := magnitude(v); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs == 0 {
		return 1
	}
	w := uint(bits.Len32(maxAbs))
	if neg {
		w++ // ceil(log2(maxAbs+1)) + 1 == Len32(maxAbs) + 1
	}
	return w
}

// valueWidth returns the magnitude-only width of a single value, the measure
// the overflow classifier ranks values by. Zero counts as 1 bit.
func valueWidth(v int32) uint {
	a := magnitude(v)
	if a == 0 {
		return 1
	}
	return uint(bits.Len32(a))
}

// bitsForIndices returns the width of an overflow-area index for n entries:
// 0 for an empty area, at least 1 otherwise.
func bitsForIndices(n int) uint {
	if n == 0 {
		return 0
	}
	if n == 1 {
		return 1
	}
	return uint(bits.Len32(uint32(n)))
}

// encodeValue maps v onto its k-bit stored form. Non-negative values are
// stored as-is; when the value population contains negatives, a negative v
// is stored as threshold+|v| with threshold = 2^(k-1). This is an explicit
// sign-magnitude offset scheme, not two's complement.
func encodeValue(v int32, k uint, neg bool) uint32 {
	if neg && v < 0 {
		return uint32(1)<<(k-1) + magnitude(v)
	}
	return uint32(v)
}

// decodeValue reverses encodeValue. Stored values above threshold-1 are
// negatives; threshold itself decodes to -0 == 0, an accepted redundancy of
// the scheme.
func decodeValue(s uint32, k uint, neg bool) int32 {
	if !neg {
		return int32(s)
	}
	threshold := uint32(1) << (k - 1)
	if s > threshold-1 {
		return -int32(s - threshold)
	}
	return int32(s)
}
