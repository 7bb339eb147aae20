package format

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/dhamidi/classreader/classfile"
)

// classBuilder assembles class file bytes. Pool entries are appended in call
// order and deduplicated, so tests can predict every index.
type classBuilder struct {
	pool    bytes.Buffer
	next    uint16
	seen    map[string]uint16
	access  classfile.AccessFlags
	this    uint16
	super   uint16
	fields  [][]byte
	methods [][]byte
	attrs   [][]byte
}

func newClassBuilder(name, super string) *classBuilder {
	b := &classBuilder{next: 1, seen: map[string]uint16{}, access: classfile.AccPublic | classfile.AccSuper}
	b.this = b.class(name)
	b.super = b.class(super)
	return b
}

func u2(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }
func u4(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }

func concat(parts ...[]byte) []byte { return bytes.Join(parts, nil) }

func (b *classBuilder) entry(tag classfile.ConstantTag, payload ...[]byte) uint16 {
	body := concat(append([][]byte{{byte(tag)}}, payload...)...)
	if idx, ok := b.seen[string(body)]; ok {
		return idx
	}
	idx := b.next
	b.pool.Write(body)
	b.seen[string(body)] = idx
	b.next++
	return idx
}

func (b *classBuilder) utf8(s string) uint16 {
	return b.entry(classfile.ConstantUtf8, u2(uint16(len(s))), []byte(s))
}

func (b *classBuilder) class(name string) uint16 {
	return b.entry(classfile.ConstantClass, u2(b.utf8(name)))
}

func (b *classBuilder) str(s string) uint16 {
	return b.entry(classfile.ConstantString, u2(b.utf8(s)))
}

func (b *classBuilder) methodref(owner, name, desc string) uint16 {
	class := b.class(owner)
	nat := b.entry(classfile.ConstantNameAndType, u2(b.utf8(name)), u2(b.utf8(desc)))
	return b.entry(classfile.ConstantMethodref, u2(class), u2(nat))
}

func (b *classBuilder) attr(name string, body ...[]byte) []byte {
	payload := concat(body...)
	return concat(u2(b.utf8(name)), u4(uint32(len(payload))), payload)
}

type handler struct {
	start, end, pc, catchType uint16
}

func (b *classBuilder) code(maxStack, maxLocals uint16, code []byte, handlers []handler, attrs ...[]byte) []byte {
	var table []byte
	for _, h := range handlers {
		table = concat(table, u2(h.start), u2(h.end), u2(h.pc), u2(h.catchType))
	}
	return b.attr("Code",
		u2(maxStack), u2(maxLocals),
		u4(uint32(len(code))), code,
		u2(uint16(len(handlers))), table,
		u2(uint16(len(attrs))), concat(attrs...),
	)
}

func (b *classBuilder) member(access classfile.AccessFlags, name, desc string, attrs [][]byte) []byte {
	return concat(u2(uint16(access)), u2(b.utf8(name)), u2(b.utf8(desc)), u2(uint16(len(attrs))), concat(attrs...))
}

func (b *classBuilder) field(access classfile.AccessFlags, name, desc string, attrs ...[]byte) *classBuilder {
	b.fields = append(b.fields, b.member(access, name, desc, attrs))
	return b
}

func (b *classBuilder) method(access classfile.AccessFlags, name, desc string, attrs ...[]byte) *classBuilder {
	b.methods = append(b.methods, b.member(access, name, desc, attrs))
	return b
}

func (b *classBuilder) bytes() []byte {
	var out bytes.Buffer
	out.Write(u4(classfile.Magic))
	out.Write(u2(0))
	out.Write(u2(61))
	out.Write(u2(b.next))
	out.Write(b.pool.Bytes())
	out.Write(u2(uint16(b.access)))
	out.Write(u2(b.this))
	out.Write(u2(b.super))
	out.Write(u2(0))
	for _, list := range [][][]byte{b.fields, b.methods, b.attrs} {
		out.Write(u2(uint16(len(list))))
		for _, item := range list {
			out.Write(item)
		}
	}
	return out.Bytes()
}

func (b *classBuilder) parse(t *testing.T) *classfile.ClassFile {
	t.Helper()
	cf, err := classfile.ParseBytes(b.bytes())
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	return cf
}
