package blockio_test

import (
	"testing"

	"github.com/packbits/bitpack/internal/blockio"
)

func TestMarshalWordsRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		words []uint32
	}{
		{"empty", nil},
		{"single", []uint32{0xDEADBEEF}},
		{"several", []uint32{0, 1, 0xFFFFFFFF, 42, 1 << 31}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := blockio.MarshalWords(tt.words)
			if len(data) != 4*len(tt.words) {
				t.Fatalf("expected %d bytes, got %d", 4*len(tt.words), len(data))
			}
			got, err := blockio.UnmarshalWords(data)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.words) {
				t.Fatalf("expected %d words, got %d", len(tt.words), len(got))
			}
			for i := range tt.words {
				if got[i] != tt.words[i] {
					t.Fatalf("word %d: expected %#x, got %#x", i, tt.words[i], got[i])
				}
			}
		})
	}
}

func TestUnmarshalWordsRejectsRaggedPayload(t *testing.T) {
	if _, err := blockio.UnmarshalWords([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for payload not a multiple of 4")
	}
}

func TestBlockRoundTrip(t *testing.T) {
	// Repetitive words compress well; the mixed set likely does not and
	// exercises the MethodNone downgrade inside WriteBlock.
	repetitive := make([]uint32, 256)
	for i := range repetitive {
		repetitive[i] = 7
	}
	mixed := []uint32{0x2654435, 0x9E3779B9, 0xDEADBEEF, 0x12345678, 0xCAFEBABE}

	codecs := []struct {
		name  string
		codec blockio.Codec
	}{
		{"none", blockio.NoneCodec{}},
		{"lz4", blockio.LZ4Codec{}},
	}
	inputs := [][]uint32{repetitive, mixed, {42}}

	for _, c := range codecs {
		for _, words := range inputs {
			block, err := blockio.WriteBlock(c.codec, words)
			if err != nil {
				t.Fatalf("%s: write: %v", c.name, err)
			}
			got, err := blockio.ReadBlock(block)
			if err != nil {
				t.Fatalf("%s: read: %v", c.name, err)
			}
			if len(got) != len(words) {
				t.Fatalf("%s: expected %d words, got %d", c.name, len(words), len(got))
			}
			for i := range words {
				if got[i] != words[i] {
					t.Fatalf("%s: word %d: expected %#x, got %#x", c.name, i, words[i], got[i])
				}
			}
		}
	}
}

func TestLZ4ShrinksRepetitiveBlocks(t *testing.T) {
	words := make([]uint32, 1024)
	for i := range words {
		words[i] = 3
	}
	block, err := blockio.WriteBlock(blockio.LZ4Codec{}, words)
	if err != nil {
		t.Fatal(err)
	}
	if len(block) >= 4*len(words) {
		t.Fatalf("expected lz4 block smaller than %d raw bytes, got %d", 4*len(words), len(block))
	}
	if block[0] != blockio.MethodLZ4 {
		t.Fatalf("expected method byte %#x, got %#x", blockio.MethodLZ4, block[0])
	}
}

func TestLZ4IncompressibleFallsBackToNone(t *testing.T) {
	// High-entropy words cannot shrink under LZ4; the block must carry
	// MethodNone so readers skip a pointless decompression.
	words := []uint32{0x2654435, 0x9E3779B9, 0xDEADBEEF, 0x12345678, 0xCAFEBABE}
	block, err := blockio.WriteBlock(blockio.LZ4Codec{}, words)
	if err != nil {
		t.Fatal(err)
	}
	if block[0] != blockio.MethodNone {
		t.Fatalf("expected method byte %#x, got %#x", blockio.MethodNone, block[0])
	}
	got, err := blockio.ReadBlock(block)
	if err != nil {
		t.Fatal(err)
	}
	for i := range words {
		if got[i] != words[i] {
			t.Fatalf("word %d: expected %#x, got %#x", i, words[i], got[i])
		}
	}
}

func TestReadBlockRejectsCorruptHeaders(t *testing.T) {
	good, err := blockio.WriteBlock(blockio.NoneCodec{}, []uint32{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"truncated header", good[:5]},
		{"unknown method", append([]byte{0x7F}, good[1:]...)},
		{"oversized total", func() []byte {
			bad := append([]byte{}, good...)
			bad[1] = 0xFF // total size far beyond the buffer
			bad[2] = 0xFF
			return bad
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := blockio.ReadBlock(tt.data); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
