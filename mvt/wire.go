package mvt

import (
	"encoding/binary"
	"math"
)

// Protobuf wire types.
const (
	wireVarint  = 0
	wireFixed64 = 1
	wireBytes   = 2
	wireFixed32 = 5
)

// reader walks a protobuf-encoded buffer. Length-delimited fields are
// returned as sub-slices of the input, never copied.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) done() bool {
	return r.pos >= len(r.buf)
}

// varint reads one base-128 varint.
func (r *reader) varint() (uint64, error) {
	var v uint64
	var shift uint
	for i := 0; i < 10; i++ {
		if r.pos >= len(r.buf) {
			return 0, malformedf("truncated varint at offset %d", r.pos)
		}
		b := r.buf[r.pos]
		r.pos++
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, nil
		}
		shift += 7
	}
	return 0, malformedf("varint longer than 10 bytes at offset %d", r.pos)
}

// key reads a field key and splits it into field number and wire type.
func (r *reader) key() (uint32, uint8, error) {
	k, err := r.varint()
	if err != nil {
		return 0, 0, err
	}
	field := uint32(k >> 3)
	if field == 0 {
		return 0, 0, malformedf("field number 0 at offset %d", r.pos)
	}
	return field, uint8(k & 7), nil
}

// bytes reads a length-delimited field.
func (r *reader) bytes() ([]byte, error) {
	n, err := r.varint()
	if err != nil {
		return nil, err
	}
	if n > uint64(len(r.buf)-r.pos) {
		return nil, malformedf("length %d exceeds remaining %d bytes", n, len(r.buf)-r.pos)
	}
	b := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}

func (r *reader) fixed32() (uint32, error) {
	if len(r.buf)-r.pos < 4 {
		return 0, malformedf("truncated fixed32 at offset %d", r.pos)
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) fixed64() (uint64, error) {
	if len(r.buf)-r.pos < 8 {
		return 0, malformedf("truncated fixed64 at offset %d", r.pos)
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// skip consumes a field of the given wire type. Unknown fields are legal
// protobuf; skipping them keeps the decoder forward-compatible.
func (r *reader) skip(wire uint8) error {
	switch wire {
	case wireVarint:
		_, err := r.varint()
		return err
	case wireFixed64:
		_, err := r.fixed64()
		return err
	case wireBytes:
		_, err := r.bytes()
		return err
	case wireFixed32:
		_, err := r.fixed32()
		return err
	default:
		return malformedf("unsupported wire type %d", wire)
	}
}

// packedUint32 decodes a packed repeated uint32 field. The same field may
// legally appear unpacked; callers handle that case separately.
func packedUint32(data []byte, dst []uint32) ([]uint32, error) {
	r := &reader{buf: data}
	for !r.done() {
		v, err := r.varint()
		if err != nil {
			return nil, err
		}
		if v > math.MaxUint32 {
			return nil, malformedf("packed value %d overflows uint32", v)
		}
		dst = append(dst, uint32(v))
	}
	return dst, nil
}

// unzigzag decodes zigzag-encoded signed values.
func unzigzag(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}
