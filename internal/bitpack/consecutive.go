package bitpack

import "fmt"

// consecutiveCodec packs every element as exactly widthFor(values) bits,
// back to back with no padding. The most significant chunk of a value is
// written first; the remainder flows into the next word. Output length is
// ceil(n*width/32) words.
type consecutiveCodec struct{}

func (consecutiveCodec) Compress(values []int32) (*Packed, error) {
	p := &Packed{kind: Consecutive}
	if len(values) == 0 {
		return p, nil
	}

	p.length = len(values)
	p.negative = hasNegative(values)
	p.width = widthFor(values)
	if p.width > wordBits {
		return nil, fmt.Errorf("values need %d bits per element, more than one %d-bit word", p.width, wordBits)
	}

	var cur uint32
	pos := uint(0)
	for _, v := range values {
		enc := encodeValue(v, p.width, p.negative)
		remaining := p.width
		for remaining > 0 {
			n := remaining
			if avail := wordBits - pos; n > avail {
				n = avail
			}
			cur = setBits(cur, enc>>(remaining-n), pos, n)
			pos += n
			remaining -= n
			if pos >= wordBits {
				p.words = append(p.words, cur)
				cur = 0
				pos = 0
			}
		}
	}
	if pos > 0 {
		p.words = append(p.words, cur)
	}
	return p, nil
}
