package bitpack

import (
	"errors"
	"fmt"
	"sort"
)

// Trailer layout, appended after the packed payload so a fresh decoder can
// recover everything from the flat word stream:
//
//	[sentinel 0xFFFFFFFF] [count] [areaSize] [valueBits|signFlag] [indexBits] [idxCount] [area...]
//
// The decoder scans backward over at most the last trailerScanWindow-1
// words; a payload word that happens to equal the sentinel is rejected by
// the sanity bounds on the five metadata words that follow it.
//
// The sanity bounds also cap what DecodeOverflow will accept: Compress does
// not enforce them, so a stream whose element count or overflow area
// reaches the limits below is still valid but decodes only through the
// handle that produced it.
const (
	trailerSentinel    = 0xFFFFFFFF
	trailerWords       = 5
	trailerScanWindow  = 100
	trailerSignFlag    = uint32(1) << 31
	maxTrailerElements = 1000000
	maxTrailerArea     = 1000
)

// ErrNoTrailer is returned when a word stream holds no sentinel with sane
// metadata and therefore cannot be decoded independently.
var ErrNoTrailer = errors.New("no valid metadata trailer found")

// overflowCodec packs each element as a flag bit plus a payload: flag 0
// carries the value inline at valueBits wide, flag 1 carries an index into
// the overflow area where outlier values are stored as full words. The
// straddle field selects whether payloads may cross word boundaries.
type overflowCodec struct {
	straddle bool
}

func (c overflowCodec) kind() Kind {
	if c.straddle {
		return OverflowConsecutive
	}
	return OverflowNonConsecutive
}

func (c overflowCodec) Compress(values []int32) (*Packed, error) {
	p := &Packed{kind: c.kind()}
	if len(values) == 0 {
		return p, nil
	}
	p.length = len(values)

	regular, area, positions := classify(values)
	p.area = area
	p.areaIdx = positions
	if len(regular) == 0 {
		// Everything is an outlier; elements carry only flag and index.
		p.valueBits = 1
		p.indexBits = bitsForIndices(len(area))
		p.negative = hasNegative(values)
	} else {
		p.valueBits = widthFor(regular)
		p.indexBits = bitsForIndices(len(area))
		p.negative = hasNegative(regular)
	}
	if p.valueBits > wordBits {
		return nil, fmt.Errorf("regular values need %d bits, more than one %d-bit word", p.valueBits, wordBits)
	}
	payloadBits := p.valueBits
	if p.indexBits > payloadBits {
		payloadBits = p.indexBits
	}
	if !c.straddle && 1+payloadBits > wordBits {
		return nil, fmt.Errorf("element needs %d bits with its flag, more than one %d-bit word", 1+payloadBits, wordBits)
	}

	areaSlot := make(map[int]int, len(positions))
	for slot, pos := range positions {
		areaSlot[pos] = slot
	}

	if c.straddle {
		p.words = c.packStraddle(values, p, areaSlot)
	} else {
		p.words = c.packNoStraddle(values, p, areaSlot)
	}
	p.payloadLen = len(p.words)

	vbWord := uint32(p.valueBits)
	if p.negative {
		vbWord |= trailerSignFlag
	}
	p.words = append(p.words,
		trailerSentinel,
		uint32(p.length),
		uint32(len(p.area)),
		vbWord,
		uint32(p.indexBits),
		uint32(len(p.areaIdx)),
	)
	for _, v := range p.area {
		p.words = append(p.words, uint32(v))
	}

	p.buildOffsets()
	return p, nil
}

// packStraddle writes flag then payload back to back, most significant
// chunk first, letting payloads flow across word boundaries.
func (c overflowCodec) packStraddle(values []int32, p *Packed, areaSlot map[int]int) []uint32 {
	var words []uint32
	var cur uint32
	pos := uint(0)

	write := func(val uint32, n uint) {
		for n > 0 {
			take := n
			if avail := uint(wordBits) - pos; take > avail {
				take = avail
			}
			cur = setBits(cur, val>>(n-take), pos, take)
			pos += take
			n -= take
			if pos >= wordBits {
				words = append(words, cur)
				cur = 0
				pos = 0
			}
		}
	}

	for i, v := range values {
		if slot, ok := areaSlot[i]; ok {
			write(1, 1)
			write(uint32(slot), p.indexBits)
		} else {
			write(0, 1)
			write(encodeValue(v, p.valueBits, p.negative), p.valueBits)
		}
	}
	if pos > 0 {
		words = append(words, cur)
	}
	return words
}

// packNoStraddle writes each element whole: if flag plus payload would
// cross the current word boundary, the element starts a fresh word and the
// remaining bits stay zero. When the area index is wider than the value
// payload, every element breaks on the widest size instead: the zero
// padding after a break reads back as a regular flag, and a reader sizing
// the element by that flag would conclude a short overflow entry had fit
// when it did not. Breaking uniformly keeps the word-break positions
// flag-independent, so reader and writer always agree.
func (c overflowCodec) packNoStraddle(values []int32, p *Packed, areaSlot map[int]int) []uint32 {
	var words []uint32
	var cur uint32
	pos := uint(0)
	uniform := p.indexBits > p.valueBits

	for i, v := range values {
		var flag, payload uint32
		var n uint
		if slot, ok := areaSlot[i]; ok {
			flag, payload, n = 1, uint32(slot), p.indexBits
		} else {
			flag, payload, n = 0, encodeValue(v, p.valueBits, p.negative), p.valueBits
		}
		breakBits := n
		if uniform {
			breakBits = p.indexBits
		}
		if pos+1+breakBits > wordBits {
			words = append(words, cur)
			cur = 0
			pos = 0
		}
		cur = setBits(cur, flag, pos, 1)
		pos++
		cur = setBits(cur, payload, pos, n)
		pos += n
	}
	return append(words, cur)
}

// classify splits values into regular and overflow populations. Per-value
// magnitude widths are ranked; anything wider than median + max(3,median/2)
// is a provisional outlier. The split is abandoned when it does not save
// space and outliers exceed 30% of the input. Deterministic: identical
// input always yields the identical partition.
func classify(values []int32) (regular, area []int32, positions []int) {
	if len(values) == 0 {
		return nil, nil, nil
	}

	widths := make([]uint, len(values))
	maxWidth := uint(0)
	for i, v := range values {
		widths[i] = valueWidth(v)
		if widths[i] > maxWidth {
			maxWidth = widths[i]
		}
	}

	sorted := make([]uint, len(widths))
	copy(sorted, widths)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	median := sorted[len(sorted)/2]

	margin := median / 2
	if margin < 3 {
		margin = 3
	}
	overflowThreshold := median + margin

	for i, v := range values {
		if widths[i] > overflowThreshold {
			area = append(area, v)
			positions = append(positions, i)
		} else {
			regular = append(regular, v)
		}
	}

	if len(area) > 0 {
		regularWidth := uint(1)
		for _, v := range regular {
			if w := valueWidth(v); w > regularWidth {
				regularWidth = w
			}
		}
		totalWithout := int(maxWidth) * len(values)
		totalWith := int(regularWidth+1)*len(values) + len(area)*wordBits
		tooMany := len(area)*10 > len(values)*3 // outlier ratio above 30%
		if totalWith > totalWithout && tooMany {
			return values, nil, nil
		}
	}
	return regular, area, positions
}

// DecodeOverflow parses a self-describing overflow stream with no shared
// state: it locates the metadata trailer, validates it, and returns a
// handle over the payload. Empty input yields an empty handle; a stream
// without a sane trailer yields ErrNoTrailer.
func DecodeOverflow(words []uint32, straddle bool) (*Packed, error) {
	c := overflowCodec{straddle: straddle}
	if len(words) == 0 {
		return &Packed{kind: c.kind()}, nil
	}

	n := len(words)
	for i := n - 1; i >= 0 && i > n-trailerScanWindow; i-- {
		if words[i] != trailerSentinel || i+trailerWords >= n {
			continue
		}
		count := words[i+1]
		areaSize := words[i+2]
		vbWord := words[i+3]
		indexBits := words[i+4]
		idxCount := words[i+5]

		valueBits := uint(vbWord &^ trailerSignFlag)
		ok := count > 0 && count < maxTrailerElements &&
			areaSize < maxTrailerArea &&
			valueBits >= 1 && valueBits <= wordBits &&
			uint(indexBits) <= wordBits &&
			(areaSize == 0 || idxCount <= areaSize) &&
			i+1+trailerWords+int(areaSize) <= n
		if !ok {
			continue
		}

		p := &Packed{
			kind:       c.kind(),
			words:      words,
			length:     int(count),
			negative:   vbWord&trailerSignFlag != 0,
			valueBits:  valueBits,
			indexBits:  uint(indexBits),
			payloadLen: i,
		}
		for j := 0; j < int(areaSize); j++ {
			p.area = append(p.area, int32(words[i+1+trailerWords+j]))
		}
		p.buildOffsets()
		return p, nil
	}
	return nil, ErrNoTrailer
}
