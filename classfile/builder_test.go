package classfile

import (
	"bytes"
	"encoding/binary"
	"math"
)

// classBuilder assembles class file bytes for tests. Pool entries are
// appended on demand and deduplicated by content.
type classBuilder struct {
	pool       bytes.Buffer
	next       uint16
	seen       map[string]uint16
	access     AccessFlags
	this       uint16
	super      uint16
	interfaces []uint16
	fields     [][]byte
	methods    [][]byte
	attributes [][]byte
	trailing   []byte
}

func newClassBuilder(name, super string) *classBuilder {
	b := &classBuilder{next: 1, seen: map[string]uint16{}, access: AccPublic | AccSuper}
	b.this = b.class(name)
	if super != "" {
		b.super = b.class(super)
	}
	return b
}

func u1(v uint8) []byte { return []byte{v} }

func u2(v uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, v)
}

func u4(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

// entry appends a raw pool entry and returns its index.
func (b *classBuilder) entry(tag ConstantTag, payload ...[]byte) uint16 {
	body := concat(append([][]byte{u1(uint8(tag))}, payload...)...)
	key := string(body)
	if idx, ok := b.seen[key]; ok {
		return idx
	}
	idx := b.next
	b.pool.Write(body)
	b.seen[key] = idx
	b.next++
	if tag == ConstantLong || tag == ConstantDouble {
		b.next++
	}
	return idx
}

func (b *classBuilder) utf8(s string) uint16 {
	return b.entry(ConstantUtf8, u2(uint16(len(s))), []byte(s))
}

func (b *classBuilder) class(name string) uint16 {
	return b.entry(ConstantClass, u2(b.utf8(name)))
}

func (b *classBuilder) str(s string) uint16 {
	return b.entry(ConstantString, u2(b.utf8(s)))
}

func (b *classBuilder) integer(v int32) uint16 {
	return b.entry(ConstantInteger, u4(uint32(v)))
}

func (b *classBuilder) long(v int64) uint16 {
	return b.entry(ConstantLong, u4(uint32(uint64(v)>>32)), u4(uint32(v)))
}

func (b *classBuilder) double(v float64) uint16 {
	bits := math.Float64bits(v)
	return b.entry(ConstantDouble, u4(uint32(bits>>32)), u4(uint32(bits)))
}

func (b *classBuilder) nameAndType(name, desc string) uint16 {
	return b.entry(ConstantNameAndType, u2(b.utf8(name)), u2(b.utf8(desc)))
}

func (b *classBuilder) fieldref(owner, name, desc string) uint16 {
	return b.entry(ConstantFieldref, u2(b.class(owner)), u2(b.nameAndType(name, desc)))
}

func (b *classBuilder) methodref(owner, name, desc string) uint16 {
	return b.entry(ConstantMethodref, u2(b.class(owner)), u2(b.nameAndType(name, desc)))
}

func (b *classBuilder) interfaceMethodref(owner, name, desc string) uint16 {
	return b.entry(ConstantInterfaceMethodref, u2(b.class(owner)), u2(b.nameAndType(name, desc)))
}

func (b *classBuilder) methodHandle(kind MethodHandleKind, ref uint16) uint16 {
	return b.entry(ConstantMethodHandle, u1(uint8(kind)), u2(ref))
}

func (b *classBuilder) invokeDynamic(bootstrap uint16, name, desc string) uint16 {
	return b.entry(ConstantInvokeDynamic, u2(bootstrap), u2(b.nameAndType(name, desc)))
}

func (b *classBuilder) implements(names ...string) *classBuilder {
	for _, name := range names {
		b.interfaces = append(b.interfaces, b.class(name))
	}
	return b
}

// attr encodes an attribute with a correct length header.
func (b *classBuilder) attr(name string, body ...[]byte) []byte {
	payload := concat(body...)
	return concat(u2(b.utf8(name)), u4(uint32(len(payload))), payload)
}

// attrWithLength encodes an attribute whose header declares length.
func (b *classBuilder) attrWithLength(name string, length uint32, body ...[]byte) []byte {
	return concat(u2(b.utf8(name)), u4(length), concat(body...))
}

func (b *classBuilder) code(maxStack, maxLocals uint16, code []byte, handlers []ExceptionHandler, attrs ...[]byte) []byte {
	var table []byte
	for _, h := range handlers {
		table = concat(table, u2(h.StartPC), u2(h.EndPC), u2(h.HandlerPC), u2(h.CatchType))
	}
	return b.attr("Code",
		u2(maxStack), u2(maxLocals),
		u4(uint32(len(code))), code,
		u2(uint16(len(handlers))), table,
		u2(uint16(len(attrs))), concat(attrs...),
	)
}

func (b *classBuilder) member(access AccessFlags, name, desc string, attrs [][]byte) []byte {
	return concat(
		u2(uint16(access)), u2(b.utf8(name)), u2(b.utf8(desc)),
		u2(uint16(len(attrs))), concat(attrs...),
	)
}

func (b *classBuilder) field(access AccessFlags, name, desc string, attrs ...[]byte) *classBuilder {
	b.fields = append(b.fields, b.member(access, name, desc, attrs))
	return b
}

func (b *classBuilder) method(access AccessFlags, name, desc string, attrs ...[]byte) *classBuilder {
	b.methods = append(b.methods, b.member(access, name, desc, attrs))
	return b
}

func (b *classBuilder) classAttr(attrs ...[]byte) *classBuilder {
	b.attributes = append(b.attributes, attrs...)
	return b
}

func (b *classBuilder) bytes() []byte {
	var out bytes.Buffer
	out.Write(u4(Magic))
	out.Write(u2(0))
	out.Write(u2(65))
	out.Write(u2(b.next))
	out.Write(b.pool.Bytes())
	out.Write(u2(uint16(b.access)))
	out.Write(u2(b.this))
	out.Write(u2(b.super))
	out.Write(u2(uint16(len(b.interfaces))))
	for _, i := range b.interfaces {
		out.Write(u2(i))
	}
	out.Write(u2(uint16(len(b.fields))))
	for _, f := range b.fields {
		out.Write(f)
	}
	out.Write(u2(uint16(len(b.methods))))
	for _, m := range b.methods {
		out.Write(m)
	}
	out.Write(u2(uint16(len(b.attributes))))
	for _, a := range b.attributes {
		out.Write(a)
	}
	out.Write(b.trailing)
	return out.Bytes()
}

func (b *classBuilder) parse() (*ClassFile, error) {
	return ParseBytes(b.bytes())
}

// sampleClass is a small class resembling:
//
//	public class com.example.Sample implements java.lang.Runnable {
//	    public static final int LIMIT = 10;
//	    private String name;
//	    public Sample() { super(); }
//	    public String getName() { return this.name; }
//	    public void run() {}
//	}
func sampleClass() *classBuilder {
	b := newClassBuilder("com/example/Sample", "java/lang/Object").
		implements("java/lang/Runnable")

	limit := b.integer(10)
	b.field(AccPublic|AccStatic|AccFinal, "LIMIT", "I", b.attr("ConstantValue", u2(limit)))
	b.field(AccPrivate, "name", "Ljava/lang/String;")

	super := b.methodref("java/lang/Object", "<init>", "()V")
	b.method(AccPublic, "<init>", "()V",
		b.code(1, 1, concat(u1(0x2a), u1(0xb7), u2(super), u1(0xb1)), nil,
			b.attr("LineNumberTable", u2(1), u2(0), u2(3)),
		),
	)

	name := b.fieldref("com/example/Sample", "name", "Ljava/lang/String;")
	b.method(AccPublic, "getName", "()Ljava/lang/String;",
		b.code(1, 1, concat(u1(0x2a), u1(0xb4), u2(name), u1(0xb0)), nil,
			b.attr("LocalVariableTable", u2(1),
				u2(0), u2(5), u2(b.utf8("this")), u2(b.utf8("Lcom/example/Sample;")), u2(0)),
		),
	)

	b.method(AccPublic, "run", "()V", b.code(0, 1, u1(0xb1), nil))
	b.classAttr(b.attr("SourceFile", u2(b.utf8("Sample.java"))))
	return b
}
