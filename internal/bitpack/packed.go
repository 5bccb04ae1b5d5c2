package bitpack

import "fmt"

// Packed is the result of a Compress call: the packed word stream plus the
// metadata needed to decode it. A Packed is immutable once built, so any
// number of goroutines may call Decompress and Get concurrently.
//
// For the two overflow kinds the word stream is self-describing (it ends in
// a metadata trailer) and can be re-parsed by DecodeOverflow with no shared
// state. The two plain kinds deliberately do not serialize their metadata:
// their words can only be decoded through the Packed that produced them.
type Packed struct {
	kind  Kind
	words []uint32
	// number of elements in the original input
	length int
	// offset decoding applies iff the encoded population had negatives
	negative bool

	// plain kinds: fixed element width
	width uint

	// overflow kinds
	valueBits  uint
	indexBits  uint
	payloadLen int      // words[:payloadLen] is packed data, the rest is trailer
	area       []int32  // outlier values, referenced by index
	areaIdx    []int    // original positions routed to the area
	offsets    []uint64 // absolute bit offset of each element in the payload
}

// Words returns the full compressed stream. For overflow kinds this
// includes the metadata trailer and overflow area.
func (p *Packed) Words() []uint32 { return p.words }

// Len returns the number of elements in the original input.
func (p *Packed) Len() int { return p.length }

// Kind returns the codec variant that produced this handle.
func (p *Packed) Kind() Kind { return p.kind }

// OverflowArea returns the outlier values stored out of line, in area
// order. It is empty for the plain kinds and for inputs where the
// classifier routed nothing to the area.
func (p *Packed) OverflowArea() []int32 { return p.area }

// OverflowIndices returns the original positions of the values in the
// overflow area. Handles built by DecodeOverflow recover these by scanning
// the flag bits.
func (p *Packed) OverflowIndices() []int { return p.areaIdx }

// Decompress decodes the full original sequence. An empty handle decodes to
// an empty slice.
func (p *Packed) Decompress() []int32 {
	if p.length == 0 || len(p.words) == 0 {
		return nil
	}
	out := make([]int32, 0, p.length)
	switch p.kind {
	case Consecutive:
		for i := 0; i < p.length; i++ {
			s := readBits(p.words, uint64(i)*uint64(p.width), p.width)
			out = append(out, decodeValue(s, p.width, p.negative))
		}
	case NonConsecutive:
		perWord := int(wordBits / p.width)
		for i := 0; i < p.length; i++ {
			word := i / perWord
			start := uint(i%perWord) * p.width
			s := extractBits(p.words[word], start, p.width)
			out = append(out, decodeValue(s, p.width, p.negative))
		}
	case OverflowConsecutive, OverflowNonConsecutive:
		for i := 0; i < p.length; i++ {
			out = append(out, p.overflowAt(i))
		}
	}
	return out
}

// Get returns the i-th original value without decompressing the rest.
func (p *Packed) Get(i int) (int32, error) {
	if i < 0 || i >= p.length || len(p.words) == 0 {
		return 0, fmt.Errorf("index %d out of range [0, %d)", i, p.length)
	}
	switch p.kind {
	case Consecutive:
		s := readBits(p.words, uint64(i)*uint64(p.width), p.width)
		return decodeValue(s, p.width, p.negative), nil
	case NonConsecutive:
		perWord := int(wordBits / p.width)
		word := i / perWord
		start := uint(i%perWord) * p.width
		s := extractBits(p.words[word], start, p.width)
		return decodeValue(s, p.width, p.negative), nil
	default:
		return p.overflowAt(i), nil
	}
}

// overflowAt decodes element i of an overflow-kind handle using the
// memoized offset table: flag bit first, then either the inline value or an
// index into the overflow area. An index past the area bounds decodes to 0
// rather than failing.
func (p *Packed) overflowAt(i int) int32 {
	payload := p.words[:p.payloadLen]
	off := p.offsets[i]
	if readBits(payload, off, 1) == 1 {
		idx := int(readBits(payload, off+1, p.indexBits))
		if idx < len(p.area) {
			return p.area[idx]
		}
		return 0
	}
	s := readBits(payload, off+1, p.valueBits)
	return decodeValue(s, p.valueBits, p.negative)
}

// elementSize returns the total packed size of one element given its flag
// bit: 1 flag bit plus either the inline value or the area index.
func (p *Packed) elementSize(flag uint32) uint64 {
	if flag == 1 {
		return 1 + uint64(p.indexBits)
	}
	return 1 + uint64(p.valueBits)
}

// buildOffsets walks the flag bits of an overflow payload once and records
// the starting bit offset of every element, restoring O(1) random access to
// the variable-width layouts. It also recovers the area index positions for
// handles parsed from a raw stream. The no-straddle walk applies the
// writer's placement rule: an element whose size would cross the current
// word boundary starts at the next word, where its flag must be re-read.
func (p *Packed) buildOffsets() {
	payload := p.words[:p.payloadLen]
	p.offsets = make([]uint64, p.length)
	var areaIdx []int

	if p.kind == OverflowConsecutive {
		var pos uint64
		for i := 0; i < p.length; i++ {
			p.offsets[i] = pos
			flag := readBits(payload, pos, 1)
			if flag == 1 {
				areaIdx = append(areaIdx, i)
			}
			pos += p.elementSize(flag)
		}
	} else {
		// The flag at the old position decides a word break: after a break
		// it is zero padding, whose size (1+valueBits) cannot fit either,
		// so the walk lands on the next word and re-reads the real flag.
		// That only holds while valueBits >= indexBits; past that the
		// writer breaks every element on the widest size, which needs no
		// flag at all.
		uniform := p.indexBits > p.valueBits
		maxSize := 1 + uint64(p.indexBits)
		var word, pos uint64
		for i := 0; i < p.length; i++ {
			flag := readBits(payload, word*wordBits+pos, 1)
			size := p.elementSize(flag)
			breakSize := size
			if uniform {
				breakSize = maxSize
			}
			if pos+breakSize > wordBits {
				word++
				pos = 0
				flag = readBits(payload, word*wordBits, 1)
				size = p.elementSize(flag)
			}
			p.offsets[i] = word*wordBits + pos
			if flag == 1 {
				areaIdx = append(areaIdx, i)
			}
			pos += size
			if pos >= wordBits {
				word++
				pos = 0
			}
		}
	}
	if p.areaIdx == nil {
		p.areaIdx = areaIdx
	}
}
