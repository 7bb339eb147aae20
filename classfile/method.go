package classfile

import "strings"

type MethodInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []Attribute
}

func (m *MethodInfo) Accept(v Visitor) { v.VisitMethod(m) }

func (m *MethodInfo) Name(cp ConstantPool) string {
	return cp.GetUtf8(m.NameIndex)
}

func (m *MethodInfo) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(m.DescriptorIndex)
}

func (m *MethodInfo) GetAttribute(name string) Attribute {
	return findNamed(m.Attributes, name)
}

// Code returns the method's Code attribute, or nil for abstract and native
// methods.
func (m *MethodInfo) Code() *CodeAttribute {
	code, _ := FindAttribute[*CodeAttribute](m.Attributes)
	return code
}

// Exceptions returns the source names of the declared checked exceptions.
func (m *MethodInfo) Exceptions(cp ConstantPool) []string {
	attr, ok := FindAttribute[*ExceptionsAttribute](m.Attributes)
	if !ok {
		return nil
	}
	names := make([]string, len(attr.ExceptionIndexTable))
	for i, idx := range attr.ExceptionIndexTable {
		names[i] = InternalToSourceName(cp.GetClassName(idx))
	}
	return names
}

// Parameters returns the MethodParameters entries, if present.
func (m *MethodInfo) Parameters() []MethodParameter {
	if attr, ok := FindAttribute[*MethodParametersAttribute](m.Attributes); ok {
		return attr.Parameters
	}
	return nil
}

// ParameterAnnotations returns the visible parameter annotations followed
// by the invisible ones, one slice entry per attribute.
func (m *MethodInfo) ParameterAnnotations() [][]ParameterAnnotations {
	var out [][]ParameterAnnotations
	for _, attr := range m.Attributes {
		switch a := attr.(type) {
		case *RuntimeVisibleParameterAnnotationsAttribute:
			out = append(out, a.Parameters)
		case *RuntimeInvisibleParameterAnnotationsAttribute:
			out = append(out, a.Parameters)
		}
	}
	return out
}

func (m *MethodInfo) IsPublic() bool       { return m.AccessFlags.IsPublic() }
func (m *MethodInfo) IsPrivate() bool      { return m.AccessFlags.IsPrivate() }
func (m *MethodInfo) IsProtected() bool    { return m.AccessFlags.IsProtected() }
func (m *MethodInfo) IsStatic() bool       { return m.AccessFlags.IsStatic() }
func (m *MethodInfo) IsFinal() bool        { return m.AccessFlags.IsFinal() }
func (m *MethodInfo) IsSynchronized() bool { return m.AccessFlags.IsSynchronized() }
func (m *MethodInfo) IsBridge() bool       { return m.AccessFlags.IsBridge() }
func (m *MethodInfo) IsVarargs() bool      { return m.AccessFlags.IsVarargs() }
func (m *MethodInfo) IsNative() bool       { return m.AccessFlags.IsNative() }
func (m *MethodInfo) IsAbstract() bool     { return m.AccessFlags.IsAbstract() }
func (m *MethodInfo) IsStrict() bool       { return m.AccessFlags.IsStrict() }
func (m *MethodInfo) IsSynthetic() bool    { return m.AccessFlags.IsSynthetic() }

func (m *MethodInfo) IsConstructor(cp ConstantPool) bool {
	return m.Name(cp) == "<init>"
}

func (m *MethodInfo) IsStaticInitializer(cp ConstantPool) bool {
	return m.Name(cp) == "<clinit>"
}

func (m *MethodInfo) ParsedDescriptor(cp ConstantPool) (*MethodDescriptor, error) {
	return ParseMethodDescriptor(m.Descriptor(cp))
}

// Signature returns the generic signature if present, else the descriptor.
func (m *MethodInfo) Signature(cp ConstantPool) string {
	if sig, ok := FindAttribute[*SignatureAttribute](m.Attributes); ok {
		return sig.Signature(cp)
	}
	return m.Descriptor(cp)
}

// ReturnType renders the return type in source form.
func (m *MethodInfo) ReturnType(cp ConstantPool) string {
	t, err := ReturnType(m.Signature(cp))
	if err != nil {
		return ""
	}
	return t
}

// Declaration renders the method header of a member of cf, e.g.
// "public static int max(int, int) throws java.io.IOException". Constructors
// take the class's simple name; the static initializer is "static {}".
func (m *MethodInfo) Declaration(cf *ClassFile) string {
	cp := cf.ConstantPool
	clinit := m.IsStaticInitializer(cp)
	ctor := m.IsConstructor(cp)

	var sb strings.Builder
	writeModifiers(&sb, m.AccessFlags, AccPublic, AccProtected, AccPrivate)
	if m.IsStatic() && !clinit {
		sb.WriteString("static ")
	}
	writeModifiers(&sb, m.AccessFlags, AccFinal, AccSynchronized, AccNative, AccAbstract)

	if !ctor && !clinit {
		sb.WriteString(m.ReturnType(cp))
		sb.WriteByte(' ')
	}

	params := displaySignature(m.Signature(cp))
	switch {
	case clinit:
		sb.WriteString("static {}")
	case ctor:
		sb.WriteString(constructorName(cf.SimpleName()))
		sb.WriteString(params)
	default:
		sb.WriteString(m.Name(cp))
		sb.WriteString(params)
	}

	if exceptions := m.Exceptions(cp); len(exceptions) > 0 {
		sb.WriteString(" throws ")
		sb.WriteString(strings.Join(exceptions, ", "))
	}
	return sb.String()
}

// constructorName drops the enclosing class prefix from a nested class name.
func constructorName(simple string) string {
	if i := strings.LastIndexByte(simple, '$'); i >= 0 {
		return simple[i+1:]
	}
	return simple
}
