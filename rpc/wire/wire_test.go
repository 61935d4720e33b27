package wire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spotify/snakebite/rpc/common"
)

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16383, 16384, 1<<31 - 1, 1 << 32}

	for _, want := range values {
		encoded := AppendVarint(nil, want)

		got, n, err := DecodeVarint(encoded)
		if err != nil {
			t.Fatalf("DecodeVarint(%d): %v", want, err)
		}
		if got != want || n != len(encoded) {
			t.Errorf("DecodeVarint(%d) = (%d, %d), want (%d, %d)", want, got, n, want, len(encoded))
		}

		got, n, err = ReadVarint(bytes.NewReader(encoded))
		if err != nil {
			t.Fatalf("ReadVarint(%d): %v", want, err)
		}
		if got != want || n != len(encoded) {
			t.Errorf("ReadVarint(%d) = (%d, %d), want (%d, %d)", want, got, n, want, len(encoded))
		}
	}
}

func TestReadVarintConsumesExactBytes(t *testing.T) {
	// One varint (300 = 0xac 0x02) followed by unrelated bytes.
	r := bytes.NewReader([]byte{0xac, 0x02, 0xff, 0xff})

	got, n, err := ReadVarint(r)
	if err != nil {
		t.Fatal(err)
	}
	if got != 300 || n != 2 {
		t.Errorf("ReadVarint = (%d, %d), want (300, 2)", got, n)
	}
	if r.Len() != 2 {
		t.Errorf("reader has %d bytes left, want 2", r.Len())
	}
}

func TestVarintPrefixedRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		[]byte("x"),
		[]byte("hello hadoop"),
		bytes.Repeat([]byte{0xab}, 1000),
	}

	for _, payload := range payloads {
		r := bytes.NewReader(EncodeVarintPrefixed(payload))

		got, err := ReadVarintPrefixed(r)
		if err != nil {
			t.Fatalf("ReadVarintPrefixed(len %d): %v", len(payload), err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("payload of len %d did not survive the round trip", len(payload))
		}
		if r.Len() != 0 {
			t.Errorf("reader has %d bytes left, want 0", r.Len())
		}
	}
}

func TestFixedU32PrefixedRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		[]byte("y"),
		bytes.Repeat([]byte{0x01}, 300),
	}

	for _, payload := range payloads {
		encoded := EncodeFixedU32Prefixed(payload)
		if len(encoded) != len(payload)+4 {
			t.Errorf("encoded length = %d, want %d", len(encoded), len(payload)+4)
		}

		r := bytes.NewReader(encoded)
		got, err := ReadFixedU32Prefixed(r)
		if err != nil {
			t.Fatalf("ReadFixedU32Prefixed(len %d): %v", len(payload), err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("payload of len %d did not survive the round trip", len(payload))
		}
	}
}

func TestTruncatedStreams(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		read  func(r *bytes.Reader) error
	}{
		{
			name:  "empty stream instead of varint",
			input: []byte{},
			read:  func(r *bytes.Reader) error { _, _, err := ReadVarint(r); return err },
		},
		{
			name:  "varint cut before final byte",
			input: []byte{0x80, 0x80},
			read:  func(r *bytes.Reader) error { _, _, err := ReadVarint(r); return err },
		},
		{
			name:  "u32 prefix cut short",
			input: []byte{0x00, 0x00},
			read:  func(r *bytes.Reader) error { _, err := ReadFixedU32(r); return err },
		},
		{
			name:  "varint prefix promises more than the stream has",
			input: []byte{0x0a, 'a', 'b'},
			read:  func(r *bytes.Reader) error { _, err := ReadVarintPrefixed(r); return err },
		},
		{
			name:  "u32 prefix promises more than the stream has",
			input: []byte{0x00, 0x00, 0x00, 0x10, 'a'},
			read:  func(r *bytes.Reader) error { _, err := ReadFixedU32Prefixed(r); return err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(bytes.NewReader(tt.input))
			var truncated *common.TruncatedStreamError
			if !errors.As(err, &truncated) {
				t.Errorf("got %v, want a TruncatedStreamError", err)
			}
		})
	}
}

func TestDecodeVarintRejectsEmptyBuffer(t *testing.T) {
	_, _, err := DecodeVarint(nil)
	var truncated *common.TruncatedStreamError
	if !errors.As(err, &truncated) {
		t.Errorf("got %v, want a TruncatedStreamError", err)
	}
}
