// Package bitpack compresses ordered sequences of signed integers into
// dense streams of 32-bit words using the minimum bit width that represents
// every value. Four codec variants are provided: elements either may or may
// not straddle word boundaries, each with an optional overflow mode that
// routes statistical outliers to a side area so the common case uses fewer
// bits per element.
package bitpack

import (
	"fmt"
	"strings"
)

// Kind identifies one of the four codec variants.
type Kind int

const (
	// Consecutive packs fixed-width elements back to back; an element may
	// span two adjacent words.
	Consecutive Kind = iota
	// NonConsecutive packs floor(32/width) elements per word and zero-pads
	// the rest; no element ever spans a word boundary.
	NonConsecutive
	// OverflowConsecutive adds a per-element flag bit routing outliers to a
	// side area, with straddling payloads.
	OverflowConsecutive
	// OverflowNonConsecutive is the overflow layout with variable-size
	// elements that never cross a word boundary.
	OverflowNonConsecutive
)

func (k Kind) String() string {
	switch k {
	case Consecutive:
		return "consecutive"
	case NonConsecutive:
		return "non_consecutive"
	case OverflowConsecutive:
		return "overflow_consecutive"
	case OverflowNonConsecutive:
		return "overflow_non_consecutive"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Codec packs integer sequences. Codec values are stateless; every call to
// Compress returns a fresh, immutable Packed handle that owns all state for
// subsequent Decompress and Get calls.
type Codec interface {
	// Compress packs values into 32-bit words. It never fails on empty
	// input (the handle decodes to an empty sequence); it fails only when a
	// value cannot be represented in the final encoding.
	Compress(values []int32) (*Packed, error)
}

// Names returns the accepted codec tags, in factory order.
func Names() []string {
	return []string{
		Consecutive.String(),
		NonConsecutive.String(),
		OverflowConsecutive.String(),
		OverflowNonConsecutive.String(),
	}
}

// New returns the codec for the given tag. Tags are case-insensitive and
// surrounding whitespace is ignored.
func New(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Consecutive.String():
		return consecutiveCodec{}, nil
	case NonConsecutive.String():
		return nonConsecutiveCodec{}, nil
	case OverflowConsecutive.String():
		return overflowCodec{straddle: true}, nil
	case OverflowNonConsecutive.String():
		return overflowCodec{straddle: false}, nil
	}
	return nil, fmt.Errorf("unknown compression type %q (valid: %s)",
		name, strings.Join(Names(), ", "))
}
