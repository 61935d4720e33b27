// Package wire converts between in-memory byte segments and the two
// length-prefix encodings the Hadoop RPC protocol mixes within a single
// stream: protobuf base-128 varint prefixes and 4-byte big-endian prefixes.
//
// All functions are pure with respect to their inputs; the Read* variants
// consume exactly the bytes of one element from the stream. A stream that
// ends before an element is complete yields a *common.TruncatedStreamError,
// never a partial value.
package wire

import (
	"encoding/binary"
	"io"

	"github.com/spotify/snakebite/rpc/common"

	"google.golang.org/protobuf/encoding/protowire"
)

// maxVarintLen is the longest encoding accepted for a length varint.
// Lengths are 32-bit quantities; anything longer is a corrupt stream.
const maxVarintLen = 5

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// AppendVarint appends n in protobuf varint encoding: 7 data bits per byte,
// continuation bit set on all but the last byte, little-endian group order.
func AppendVarint(dst []byte, n uint64) []byte {
	return protowire.AppendVarint(dst, n)
}

// EncodeVarintPrefixed prefixes payload with its length as a varint.
func EncodeVarintPrefixed(payload []byte) []byte {
	buf := protowire.AppendVarint(make([]byte, 0, len(payload)+maxVarintLen), uint64(len(payload)))
	return append(buf, payload...)
}

// EncodeFixedU32Prefixed prefixes payload with its length as a 4-byte
// big-endian unsigned integer.
func EncodeFixedU32Prefixed(payload []byte) []byte {
	buf := make([]byte, 4, 4+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	return append(buf, payload...)
}

// --------------------------------------------------------------------------
// Decoding
// --------------------------------------------------------------------------

// DecodeVarint decodes a varint from the front of buf and returns the value
// and the number of bytes consumed.
func DecodeVarint(buf []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return 0, 0, &common.TruncatedStreamError{Segment: "varint"}
	}
	return v, n, nil
}

// ReadVarint reads a varint from the stream one byte at a time, stopping at
// the first byte without a continuation bit. It returns the value and the
// number of bytes consumed.
func ReadVarint(r io.Reader) (uint64, int, error) {
	var (
		value uint64
		one   [1]byte
	)
	for i := 0; i < maxVarintLen*2; i++ {
		if _, err := io.ReadFull(r, one[:]); err != nil {
			return 0, i, &common.TruncatedStreamError{Segment: "varint"}
		}
		b := one[0]
		value |= uint64(b&0x7f) << (7 * uint(i))
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, maxVarintLen * 2, &common.TruncatedStreamError{Segment: "varint"}
}

// ReadFixedU32 reads a 4-byte big-endian unsigned integer.
func ReadFixedU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, &common.TruncatedStreamError{Segment: "fixed u32"}
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// ReadVarintPrefixed reads one varint-length-prefixed segment.
func ReadVarintPrefixed(r io.Reader) ([]byte, error) {
	length, _, err := ReadVarint(r)
	if err != nil {
		return nil, err
	}
	return readSegment(r, length, "varint-prefixed segment")
}

// ReadFixedU32Prefixed reads one u32-length-prefixed segment.
func ReadFixedU32Prefixed(r io.Reader) ([]byte, error) {
	length, err := ReadFixedU32(r)
	if err != nil {
		return nil, err
	}
	return readSegment(r, uint64(length), "u32-prefixed segment")
}

func readSegment(r io.Reader, length uint64, what string) ([]byte, error) {
	if length > uint64(1)<<31 {
		return nil, &common.TruncatedStreamError{Segment: what}
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, &common.TruncatedStreamError{Segment: what}
	}
	return buf, nil
}
