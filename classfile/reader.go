package classfile

import (
	"encoding/binary"
)

// reader is a big-endian cursor over a byte slice. The first failure is
// sticky: later reads return zero values and leave err untouched.
type reader struct {
	buf  []byte
	pos  int
	base int
	err  error
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

// offset returns the absolute position of the cursor in the class file.
func (r *reader) offset() int {
	return r.base + r.pos
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.remaining() < n {
		r.fail(newError(KindTruncated).
			offset(r.offset()).
			detail("need %d bytes, have %d", n, r.remaining()).
			build())
		return false
	}
	return true
}

func (r *reader) readU1() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *reader) readU2() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) readU4() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) readS1() int8  { return int8(r.readU1()) }
func (r *reader) readS2() int16 { return int16(r.readU2()) }
func (r *reader) readS4() int32 { return int32(r.readU4()) }

func (r *reader) readBytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	v := r.buf[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return v
}

// sub carves the next n bytes into an independent reader and advances past
// them. Reads beyond those n bytes fail on the sub-reader only.
func (r *reader) sub(n int) *reader {
	start := r.offset()
	b := r.readBytes(n)
	if r.err != nil {
		return &reader{err: r.err}
	}
	return &reader{buf: b, base: start}
}

// readIndex reads a u2 constant-pool index that must resolve to one of tags.
func (r *reader) readIndex(cp ConstantPool, tags ...ConstantTag) uint16 {
	at := r.offset()
	index := r.readU2()
	if r.err != nil {
		return 0
	}
	if err := cp.expect(index, tags...); err != nil {
		r.fail(withOffset(err, at))
	}
	return index
}

// readOptionalIndex is readIndex where zero means "absent".
func (r *reader) readOptionalIndex(cp ConstantPool, tags ...ConstantTag) uint16 {
	at := r.offset()
	index := r.readU2()
	if r.err != nil || index == 0 {
		return index
	}
	if err := cp.expect(index, tags...); err != nil {
		r.fail(withOffset(err, at))
	}
	return index
}

func (r *reader) readIndexList(cp ConstantPool, tags ...ConstantTag) []uint16 {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	out := make([]uint16, count)
	for i := range out {
		out[i] = r.readIndex(cp, tags...)
	}
	return out
}

func withOffset(err error, off int) error {
	if de, ok := err.(*DecodeError); ok && de.Offset < 0 {
		cp := *de
		cp.Offset = off
		return &cp
	}
	return err
}

func (r *reader) malformed(at int, msg string, args ...any) {
	r.fail(newError(KindMalformed).offset(at).detail(msg, args...).build())
}
