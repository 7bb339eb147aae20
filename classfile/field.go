package classfile

import "strings"

type FieldInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []Attribute
}

func (f *FieldInfo) Accept(v Visitor) { v.VisitField(f) }

func (f *FieldInfo) Name(cp ConstantPool) string {
	return cp.GetUtf8(f.NameIndex)
}

func (f *FieldInfo) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(f.DescriptorIndex)
}

func (f *FieldInfo) GetAttribute(name string) Attribute {
	return findNamed(f.Attributes, name)
}

// ConstantValue returns the constant pool index of the field's initial
// value, or zero.
func (f *FieldInfo) ConstantValue() uint16 {
	if cv, ok := FindAttribute[*ConstantValueAttribute](f.Attributes); ok {
		return cv.ValueIndex
	}
	return 0
}

func (f *FieldInfo) IsPublic() bool    { return f.AccessFlags.IsPublic() }
func (f *FieldInfo) IsPrivate() bool   { return f.AccessFlags.IsPrivate() }
func (f *FieldInfo) IsProtected() bool { return f.AccessFlags.IsProtected() }
func (f *FieldInfo) IsStatic() bool    { return f.AccessFlags.IsStatic() }
func (f *FieldInfo) IsFinal() bool     { return f.AccessFlags.IsFinal() }
func (f *FieldInfo) IsVolatile() bool  { return f.AccessFlags.IsVolatile() }
func (f *FieldInfo) IsTransient() bool { return f.AccessFlags.IsTransient() }
func (f *FieldInfo) IsSynthetic() bool { return f.AccessFlags.IsSynthetic() }
func (f *FieldInfo) IsEnum() bool      { return f.AccessFlags.IsEnum() }

func (f *FieldInfo) ParsedDescriptor(cp ConstantPool) (*FieldType, error) {
	return ParseFieldDescriptor(f.Descriptor(cp))
}

// Type renders the field's type in source form, preferring the generic
// signature when one was compiled in.
func (f *FieldInfo) Type(cp ConstantPool) string {
	desc := f.Descriptor(cp)
	if sig, ok := FindAttribute[*SignatureAttribute](f.Attributes); ok {
		desc = sig.Signature(cp)
	}
	t, err := ConvertType(desc)
	if err != nil {
		return desc
	}
	return t
}

// Declaration renders the field as it would appear in source, e.g.
// "private static final int count".
func (f *FieldInfo) Declaration(cp ConstantPool) string {
	var sb strings.Builder
	writeModifiers(&sb, f.AccessFlags, AccPublic, AccProtected, AccPrivate,
		AccStatic, AccFinal, AccVolatile, AccTransient)
	sb.WriteString(f.Type(cp))
	sb.WriteByte(' ')
	sb.WriteString(f.Name(cp))
	return sb.String()
}

var modifierNames = map[AccessFlags]string{
	AccPublic:       "public",
	AccProtected:    "protected",
	AccPrivate:      "private",
	AccStatic:       "static",
	AccFinal:        "final",
	AccSynchronized: "synchronized",
	AccVolatile:     "volatile",
	AccTransient:    "transient",
	AccNative:       "native",
	AccAbstract:     "abstract",
}

// writeModifiers writes the keywords for the flags that are set, in the
// order given.
func writeModifiers(sb *strings.Builder, flags AccessFlags, order ...AccessFlags) {
	for _, flag := range order {
		if flags&flag != 0 {
			sb.WriteString(modifierNames[flag])
			sb.WriteByte(' ')
		}
	}
}
