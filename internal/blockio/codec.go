// Package blockio frames packed word streams as byte blocks for storage or
// transport. A block is a small header followed by the payload, optionally
// LZ4-compressed:
//
//	[method (1)] [total_size_with_header (4 LE)] [raw_size (4 LE)] [payload]
//
// The bit-level layout of the words themselves is owned entirely by the
// bitpack package; blockio only moves them in and out of byte form.
package blockio

// Codec compresses and decompresses block payloads.
type Codec interface {
	// MethodByte returns the single-byte codec identifier written into
	// the block header.
	MethodByte() byte
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte, rawSize int) ([]byte, error)
}

// Method bytes. Values are part of the on-disk format.
const (
	MethodNone byte = 0x01
	MethodLZ4  byte = 0x02
)

// NoneCodec stores payloads verbatim.
type NoneCodec struct{}

func (NoneCodec) MethodByte() byte { return MethodNone }

func (NoneCodec) Compress(src []byte) ([]byte, error) {
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst, nil
}

func (NoneCodec) Decompress(src []byte, rawSize int) ([]byte, error) {
	dst := make([]byte, rawSize)
	copy(dst, src)
	return dst, nil
}
