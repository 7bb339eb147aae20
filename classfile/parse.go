package classfile

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
)

// ParseFile reads and decodes the class file at path.
func ParseFile(path string) (*ClassFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class file: %w", err)
	}
	return parse(data)
}

// Parse reads rd to the end and decodes one class file from it.
func Parse(rd io.Reader) (*ClassFile, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to read class file: %w", err)
	}
	return parse(data)
}

// ParseBytes decodes one class file. The returned ClassFile does not alias
// data.
func ParseBytes(data []byte) (*ClassFile, error) {
	return parse(bytes.Clone(data))
}

func parse(data []byte) (*ClassFile, error) {
	r := newReader(data)

	magic := r.readU4()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", r.err)
	}
	if magic != Magic {
		return nil, newError(KindBadMagic).
			offset(0).
			detail("0x%08X (expected 0xCAFEBABE)", magic).
			build()
	}

	cf := &ClassFile{
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to read version: %w", r.err)
	}

	cp, err := readConstantPool(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read constant pool: %w", err)
	}
	cf.ConstantPool = cp

	cf.AccessFlags = AccessFlags(r.readU2())
	cf.ThisClass = r.readIndex(cp, ConstantClass)
	cf.SuperClass = r.readOptionalIndex(cp, ConstantClass)
	if r.err != nil {
		return nil, fmt.Errorf("failed to read class info: %w", r.err)
	}
	className := cf.ClassName()
	fail := func(what string, err error) (*ClassFile, error) {
		return nil, fmt.Errorf("failed to read %s: %w", what, withClass(err, className))
	}

	cf.Interfaces = r.readIndexList(cp, ConstantClass)
	if r.err != nil {
		return fail("interfaces", r.err)
	}

	fieldsCount := r.readU2()
	if r.err != nil {
		return fail("fields count", r.err)
	}
	cf.Fields = make([]FieldInfo, fieldsCount)
	for i := range cf.Fields {
		cf.Fields[i] = FieldInfo{
			AccessFlags:     AccessFlags(r.readU2()),
			NameIndex:       r.readIndex(cp, ConstantUtf8),
			DescriptorIndex: r.readIndex(cp, ConstantUtf8),
			Attributes:      readAttributes(r, cp),
		}
		if r.err != nil {
			return fail(fmt.Sprintf("field %d", i), r.err)
		}
	}

	methodsCount := r.readU2()
	if r.err != nil {
		return fail("methods count", r.err)
	}
	cf.Methods = make([]MethodInfo, methodsCount)
	for i := range cf.Methods {
		cf.Methods[i] = MethodInfo{
			AccessFlags:     AccessFlags(r.readU2()),
			NameIndex:       r.readIndex(cp, ConstantUtf8),
			DescriptorIndex: r.readIndex(cp, ConstantUtf8),
			Attributes:      readAttributes(r, cp),
		}
		if r.err != nil {
			return fail(fmt.Sprintf("method %d", i), r.err)
		}
	}

	cf.Attributes = readAttributes(r, cp)
	if r.err != nil {
		return fail("attributes", r.err)
	}

	if r.remaining() != 0 {
		return fail("end of class", newError(KindTrailingData).
			offset(r.offset()).
			detail("%d bytes after the last attribute", r.remaining()).
			build())
	}

	if err := checkBootstrapIndices(cf); err != nil {
		return fail("constant pool", err)
	}

	return cf, nil
}

func readConstantPool(r *reader) (ConstantPool, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, r.err
	}
	if count == 0 {
		return nil, newError(KindMalformed).
			offset(r.offset() - 2).
			detail("constant_pool_count is zero").
			build()
	}

	cp := make(ConstantPool, count)
	for i := 1; i < int(count); i++ {
		at := r.offset()
		entry := readConstantPoolEntry(r)
		if r.err != nil {
			return nil, withIndex(r.err, i)
		}
		cp[i] = entry
		switch entry.(type) {
		case *ConstantLongInfo, *ConstantDoubleInfo:
			if i+1 >= int(count) {
				return nil, newError(KindConstantIndex).
					index(i).
					offset(at).
					detail("%s entry needs two slots", entry.Tag()).
					build()
			}
			i++
		}
	}

	if err := cp.validate(); err != nil {
		return nil, err
	}
	return cp, nil
}

// withIndex records the pool index of the entry being decoded.
func withIndex(err error, index int) error {
	if de, ok := err.(*DecodeError); ok && de.Index == 0 {
		cp := *de
		cp.Index = index
		return &cp
	}
	return err
}

func readConstantPoolEntry(r *reader) ConstantPoolEntry {
	at := r.offset()
	tag := ConstantTag(r.readU1())
	if r.err != nil {
		return nil
	}

	switch tag {
	case ConstantUtf8:
		length := r.readU2()
		return &ConstantUtf8Info{Value: decodeModifiedUtf8(r.readBytes(int(length)))}

	case ConstantInteger:
		return &ConstantIntegerInfo{Value: r.readS4()}

	case ConstantFloat:
		return &ConstantFloatInfo{Value: math.Float32frombits(r.readU4())}

	case ConstantLong:
		high := r.readU4()
		low := r.readU4()
		return &ConstantLongInfo{Value: int64(high)<<32 | int64(low)}

	case ConstantDouble:
		high := r.readU4()
		low := r.readU4()
		return &ConstantDoubleInfo{Value: math.Float64frombits(uint64(high)<<32 | uint64(low))}

	case ConstantClass:
		return &ConstantClassInfo{NameIndex: r.readU2()}

	case ConstantString:
		return &ConstantStringInfo{StringIndex: r.readU2()}

	case ConstantFieldref:
		return &ConstantFieldrefInfo{
			ClassIndex:       r.readU2(),
			NameAndTypeIndex: r.readU2(),
		}

	case ConstantMethodref:
		return &ConstantMethodrefInfo{
			ClassIndex:       r.readU2(),
			NameAndTypeIndex: r.readU2(),
		}

	case ConstantInterfaceMethodref:
		return &ConstantInterfaceMethodrefInfo{
			ClassIndex:       r.readU2(),
			NameAndTypeIndex: r.readU2(),
		}

	case ConstantNameAndType:
		return &ConstantNameAndTypeInfo{
			NameIndex:       r.readU2(),
			DescriptorIndex: r.readU2(),
		}

	case ConstantMethodHandle:
		return &ConstantMethodHandleInfo{
			ReferenceKind:  MethodHandleKind(r.readU1()),
			ReferenceIndex: r.readU2(),
		}

	case ConstantMethodType:
		return &ConstantMethodTypeInfo{DescriptorIndex: r.readU2()}

	case ConstantDynamic:
		return &ConstantDynamicInfo{
			BootstrapMethodAttrIndex: r.readU2(),
			NameAndTypeIndex:         r.readU2(),
		}

	case ConstantInvokeDynamic:
		return &ConstantInvokeDynamicInfo{
			BootstrapMethodAttrIndex: r.readU2(),
			NameAndTypeIndex:         r.readU2(),
		}

	case ConstantModule:
		return &ConstantModuleInfo{NameIndex: r.readU2()}

	case ConstantPackage:
		return &ConstantPackageInfo{NameIndex: r.readU2()}

	default:
		r.fail(newError(KindConstantTag).
			offset(at).
			detail("unknown constant pool tag %d", tag).
			build())
		return nil
	}
}

// checkBootstrapIndices verifies that dynamic constants point into the
// class's BootstrapMethods table.
func checkBootstrapIndices(cf *ClassFile) error {
	bootstrap, _ := FindAttribute[*BootstrapMethodsAttribute](cf.Attributes)
	n := 0
	if bootstrap != nil {
		n = len(bootstrap.Methods)
	}
	for i, entry := range cf.ConstantPool {
		var index uint16
		switch e := entry.(type) {
		case *ConstantDynamicInfo:
			index = e.BootstrapMethodAttrIndex
		case *ConstantInvokeDynamicInfo:
			index = e.BootstrapMethodAttrIndex
		default:
			continue
		}
		if int(index) >= n {
			return newError(KindConstantIndex).
				index(i).
				detail("bootstrap method %d out of range [0, %d)", index, n).
				build()
		}
	}
	return nil
}

// decodeModifiedUtf8 decodes the JVM's modified UTF-8: NUL is encoded in two
// bytes and supplementary characters as surrogate pairs of three bytes each.
// Malformed bytes are kept as Latin-1 code points.
func decodeModifiedUtf8(b []byte) string {
	runes := make([]rune, 0, len(b))
	i := 0
	for i < len(b) {
		c := b[i]
		switch {
		case c&0x80 == 0:
			runes = append(runes, rune(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b) && b[i+1]&0xC0 == 0x80:
			runes = append(runes, rune(c&0x1F)<<6|rune(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b) && b[i+1]&0xC0 == 0x80 && b[i+2]&0xC0 == 0x80:
			r := rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(b) && b[i+3] == 0xED && b[i+4]&0xF0 == 0xB0 {
				low := rune(b[i+3]&0x0F)<<12 | rune(b[i+4]&0x3F)<<6 | rune(b[i+5]&0x3F)
				runes = append(runes, 0x10000+(r-0xD800)<<10+(low-0xDC00))
				i += 6
				continue
			}
			runes = append(runes, r)
			i += 3
		default:
			runes = append(runes, rune(c))
			i++
		}
	}
	return string(runes)
}
