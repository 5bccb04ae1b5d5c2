package bitpack_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/packbits/bitpack/internal/bitpack"
)

var allKinds = []string{
	"consecutive",
	"non_consecutive",
	"overflow_consecutive",
	"overflow_non_consecutive",
}

func TestFactoryKnownTags(t *testing.T) {
	for _, name := range allKinds {
		t.Run(name, func(t *testing.T) {
			codec, err := bitpack.New(name)
			require.NoError(t, err)
			require.NotNil(t, codec)
		})
	}
}

func TestFactoryNormalizesTags(t *testing.T) {
	codec, err := bitpack.New("  Overflow_Consecutive ")
	require.NoError(t, err)
	p, err := codec.Compress([]int32{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, bitpack.OverflowConsecutive, p.Kind())
}

func TestFactoryRejectsUnknownTag(t *testing.T) {
	_, err := bitpack.New("zigzag")
	require.Error(t, err)
	for _, name := range allKinds {
		require.Contains(t, err.Error(), name)
	}
}

func TestRoundTripAllKinds(t *testing.T) {
	inputs := []struct {
		name   string
		values []int32
	}{
		{"empty", nil},
		{"single", []int32{42}},
		{"small positives", []int32{1, 2, 3, 4, 5}},
		{"all zeros", []int32{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
		{"mixed signs", []int32{-5, -3, -1, 0, 1, 3, 5}},
		{"outliers", []int32{1, 2, 3, 1024, 4, 5, 2048}},
		{"medium", []int32{100, 200, 300, 400, 500}},
		{"negative outliers", []int32{-5, -3, -1, 0, 1, 3, 5, 4096}},
		{"boundary straddles", []int32{
			100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 111, 112,
		}},
		{"word filling", []int32{
			300, -300, 299, -12, 0, 7, 511, -511, 1, -1, 256, 13, -99,
			300, -300, 299, -12, 0, 7, 511, -511, 1, -1, 256, 13, -99,
		}},
	}
	for _, name := range allKinds {
		codec, err := bitpack.New(name)
		require.NoError(t, err)
		for _, in := range inputs {
			t.Run(name+"/"+in.name, func(t *testing.T) {
				p, err := codec.Compress(in.values)
				require.NoError(t, err)
				require.Equal(t, len(in.values), p.Len())

				got := p.Decompress()
				require.Equal(t, len(in.values), len(got))
				for i := range in.values {
					require.Equal(t, in.values[i], got[i], "element %d", i)
				}
			})
		}
	}
}

func TestGetMatchesOriginal(t *testing.T) {
	values := []int32{
		-300, 299, -12, 0, 7, 511, -511, 1, -1, 256, 13, -99, 4,
		100000, 2, -7, 42, 100000, 8, 3,
	}
	for _, name := range allKinds {
		t.Run(name, func(t *testing.T) {
			codec, err := bitpack.New(name)
			require.NoError(t, err)
			p, err := codec.Compress(values)
			require.NoError(t, err)
			for i, want := range values {
				got, err := p.Get(i)
				require.NoError(t, err)
				require.Equal(t, want, got, "element %d", i)
			}
		})
	}
}

func TestGetRejectsBadIndex(t *testing.T) {
	for _, name := range allKinds {
		t.Run(name, func(t *testing.T) {
			codec, err := bitpack.New(name)
			require.NoError(t, err)

			p, err := codec.Compress([]int32{1, 2, 3})
			require.NoError(t, err)
			_, err = p.Get(-1)
			require.Error(t, err)
			_, err = p.Get(3)
			require.Error(t, err)

			// Queries on an empty handle fail with a range error too.
			empty, err := codec.Compress(nil)
			require.NoError(t, err)
			_, err = empty.Get(0)
			require.Error(t, err)
			require.Empty(t, empty.Decompress())
		})
	}
}

func TestCompressRejectsUnencodableValues(t *testing.T) {
	// MinInt32's magnitude needs 32 bits, so the signed offset scheme would
	// need 33 — past the representable range of one word.
	for _, name := range allKinds {
		t.Run(name, func(t *testing.T) {
			codec, err := bitpack.New(name)
			require.NoError(t, err)
			_, err = codec.Compress([]int32{-2147483648})
			require.Error(t, err)
		})
	}
}

func TestConsecutiveScenario(t *testing.T) {
	codec, err := bitpack.New("consecutive")
	require.NoError(t, err)
	p, err := codec.Compress([]int32{1, 2, 3, 4, 5})
	require.NoError(t, err)

	// 3 bits per element, 15 bits total, one output word:
	// 0b101_100_011_010_001 with element 0 in the low bits.
	require.Equal(t, []uint32{0b101_100_011_010_001}, p.Words())
	require.Equal(t, []int32{1, 2, 3, 4, 5}, p.Decompress())

	v, err := p.Get(3)
	require.NoError(t, err)
	require.Equal(t, int32(4), v)
}

func TestWordCountFormulas(t *testing.T) {
	// Nine 7-bit elements: the straddling layout needs ceil(63/32) = 2
	// words, the padded layout floor(32/7) = 4 per word -> 3 words.
	values := []int32{100, 101, 102, 103, 104, 105, 106, 107, 108}

	cons, err := bitpack.New("consecutive")
	require.NoError(t, err)
	pc, err := cons.Compress(values)
	require.NoError(t, err)
	require.Len(t, pc.Words(), 2)

	ncons, err := bitpack.New("non_consecutive")
	require.NoError(t, err)
	pn, err := ncons.Compress(values)
	require.NoError(t, err)
	require.Len(t, pn.Words(), 3)

	require.GreaterOrEqual(t, len(pn.Words()), len(pc.Words()))
}
