package blockio

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed block header length:
// method byte + total size (4) + raw size (4).
const HeaderSize = 9

// MarshalWords lays out words as little-endian bytes.
func MarshalWords(words []uint32) []byte {
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[4*i:], w)
	}
	return buf
}

// UnmarshalWords reverses MarshalWords. The byte length must be a multiple
// of the word size.
func UnmarshalWords(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("payload length %d is not a multiple of 4", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[4*i:])
	}
	return words, nil
}

// WriteBlock frames a packed word stream as a byte block. When the codec
// reports incompressible input (empty result) or fails to shrink the
// payload, the block is written with MethodNone instead, so readers never
// pay for a decompression that saved nothing.
func WriteBlock(codec Codec, words []uint32) ([]byte, error) {
	raw := MarshalWords(words)
	payload, err := codec.Compress(raw)
	if err != nil {
		return nil, err
	}
	method := codec.MethodByte()
	if len(payload) == 0 || len(payload) >= len(raw) {
		payload = raw
		method = MethodNone
	}

	block := make([]byte, HeaderSize+len(payload))
	block[0] = method
	binary.LittleEndian.PutUint32(block[1:5], uint32(HeaderSize+len(payload)))
	binary.LittleEndian.PutUint32(block[5:9], uint32(len(raw)))
	copy(block[HeaderSize:], payload)
	return block, nil
}

// ReadBlock validates a block header, decompresses the payload and returns
// the packed words.
func ReadBlock(data []byte) ([]uint32, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("block too small: %d bytes", len(data))
	}
	method := data[0]
	totalSize := binary.LittleEndian.Uint32(data[1:5])
	rawSize := binary.LittleEndian.Uint32(data[5:9])
	if int(totalSize) > len(data) || totalSize < HeaderSize {
		return nil, fmt.Errorf("block size mismatch: header says %d, have %d", totalSize, len(data))
	}
	payload := data[HeaderSize:totalSize]

	var codec Codec
	switch method {
	case MethodNone:
		codec = NoneCodec{}
	case MethodLZ4:
		codec = LZ4Codec{}
	default:
		return nil, fmt.Errorf("unknown compression method: 0x%02x", method)
	}
	raw, err := codec.Decompress(payload, int(rawSize))
	if err != nil {
		return nil, err
	}
	return UnmarshalWords(raw)
}
