package bitpack

import "fmt"

// nonConsecutiveCodec packs floor(32/width) elements into each word and
// leaves the remaining bits zero. No element ever spans a word boundary,
// trading padding waste for position-independent random access. Output
// length is ceil(n / floor(32/width)) words.
type nonConsecutiveCodec struct{}

func (nonConsecutiveCodec) Compress(values []int32) (*Packed, error) {
	p := &Packed{kind: NonConsecutive}
	if len(values) == 0 {
		return p, nil
	}

	p.length = len(values)
	p.negative = hasNegative(values)
	p.width = widthFor(values)
	if p.width > wordBits {
		return nil, fmt.Errorf("values need %d bits per element, more than one %d-bit word", p.width, wordBits)
	}

	perWord := int(wordBits / p.width)
	var cur uint32
	pos := uint(0)
	inCur := 0
	for _, v := range values {
		if inCur >= perWord {
			p.words = append(p.words, cur)
			cur = 0
			pos = 0
			inCur = 0
		}
		cur = setBits(cur, encodeValue(v, p.width, p.negative), pos, p.width)
		pos += p.width
		inCur++
	}
	if inCur > 0 {
		p.words = append(p.words, cur)
	}
	return p, nil
}
