package blockio

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// LZ4Codec implements LZ4 block compression for block payloads.
//
// Compress reports incompressible input by returning an empty slice;
// WriteBlock owns the fallback and writes such payloads as MethodNone
// blocks.
type LZ4Codec struct{}

func (LZ4Codec) MethodByte() byte { return MethodLZ4 }

func (LZ4Codec) Compress(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return []byte{}, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return dst[:n], nil
}

func (LZ4Codec) Decompress(src []byte, rawSize int) ([]byte, error) {
	if rawSize == 0 {
		return []byte{}, nil
	}
	dst := make([]byte, rawSize)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if n != rawSize {
		return nil, fmt.Errorf("lz4 decompress: expected %d bytes, got %d", rawSize, n)
	}
	return dst, nil
}
