package hadoop

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// fieldReader walks the fields of one serialized protobuf message. Unknown
// fields are skipped so newer servers with extra fields stay decodable.
type fieldReader struct {
	buf []byte
	err error
}

func newFieldReader(buf []byte) *fieldReader {
	return &fieldReader{buf: buf}
}

// next advances to the next field and returns its number and wire type.
// It returns ok=false at end of input or on a malformed tag.
func (d *fieldReader) next() (protowire.Number, protowire.Type, bool) {
	if d.err != nil || len(d.buf) == 0 {
		return 0, 0, false
	}
	num, typ, n := protowire.ConsumeTag(d.buf)
	if n < 0 {
		d.err = fmt.Errorf("malformed field tag: %v", protowire.ParseError(n))
		return 0, 0, false
	}
	d.buf = d.buf[n:]
	return num, typ, true
}

func (d *fieldReader) varint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := protowire.ConsumeVarint(d.buf)
	if n < 0 {
		d.err = fmt.Errorf("malformed varint field: %v", protowire.ParseError(n))
		return 0
	}
	d.buf = d.buf[n:]
	return v
}

func (d *fieldReader) bytes() []byte {
	if d.err != nil {
		return nil
	}
	v, n := protowire.ConsumeBytes(d.buf)
	if n < 0 {
		d.err = fmt.Errorf("malformed bytes field: %v", protowire.ParseError(n))
		return nil
	}
	d.buf = d.buf[n:]
	return v
}

func (d *fieldReader) string() string {
	return string(d.bytes())
}

func (d *fieldReader) bool() bool {
	return d.varint() != 0
}

// skip consumes a field of any wire type without interpreting it.
func (d *fieldReader) skip(num protowire.Number, typ protowire.Type) {
	if d.err != nil {
		return
	}
	n := protowire.ConsumeFieldValue(num, typ, d.buf)
	if n < 0 {
		d.err = fmt.Errorf("malformed field %d: %v", num, protowire.ParseError(n))
		return
	}
	d.buf = d.buf[n:]
}
