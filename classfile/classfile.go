package classfile

import (
	"strings"
)

type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []Attribute
}

func (cf *ClassFile) Accept(v Visitor) { v.VisitClassFile(cf) }

// InternalName returns the slash separated name of this class.
func (cf *ClassFile) InternalName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

// ClassName returns the fully qualified source name, e.g. java.lang.String.
func (cf *ClassFile) ClassName() string {
	return InternalToSourceName(cf.InternalName())
}

func (cf *ClassFile) PackageName() string {
	name := cf.ClassName()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

// SimpleName strips the package, keeping any enclosing class prefix.
func (cf *ClassFile) SimpleName() string {
	name := cf.ClassName()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func (cf *ClassFile) HasSuperClass() bool {
	return cf.SuperClass != 0
}

func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	return InternalToSourceName(cf.ConstantPool.GetClassName(cf.SuperClass))
}

func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		names[i] = InternalToSourceName(cf.ConstantPool.GetClassName(idx))
	}
	return names
}

func (cf *ClassFile) IsClass() bool {
	return !cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsModule()
}

func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsAnnotation() bool {
	return cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsEnum() bool {
	return cf.AccessFlags.IsEnum()
}

func (cf *ClassFile) IsModule() bool {
	return cf.AccessFlags.IsModule()
}

func (cf *ClassFile) IsRecord() bool {
	_, ok := FindAttribute[*RecordAttribute](cf.Attributes)
	return ok
}

func (cf *ClassFile) IsDeprecated() bool {
	_, ok := FindAttribute[*DeprecatedAttribute](cf.Attributes)
	return ok
}

// SourceFile returns the SourceFile attribute's value, or "".
func (cf *ClassFile) SourceFile() string {
	if sf, ok := FindAttribute[*SourceFileAttribute](cf.Attributes); ok {
		return sf.SourceFile(cf.ConstantPool)
	}
	return ""
}

// Declaration renders the class header as Java source, without the body.
func (cf *ClassFile) Declaration() string {
	var sb strings.Builder

	if cf.AccessFlags.IsPublic() {
		sb.WriteString("public ")
	}
	if cf.AccessFlags.IsFinal() {
		sb.WriteString("final ")
	}

	interfaces := cf.InterfaceNames()
	if cf.AccessFlags.IsInterface() {
		if cf.IsAnnotation() {
			sb.WriteString("@")
		}
		sb.WriteString("interface ")
		sb.WriteString(cf.ClassName())
		if len(interfaces) > 0 {
			sb.WriteString(" extends ")
			sb.WriteString(strings.Join(interfaces, ", "))
		}
		return sb.String()
	}

	if cf.AccessFlags.IsAbstract() {
		sb.WriteString("abstract ")
	}
	sb.WriteString("class ")
	sb.WriteString(cf.ClassName())
	if cf.HasSuperClass() {
		sb.WriteString(" extends ")
		sb.WriteString(cf.SuperClassName())
	}
	if len(interfaces) > 0 {
		sb.WriteString(" implements ")
		sb.WriteString(strings.Join(interfaces, ", "))
	}
	return sb.String()
}

func (cf *ClassFile) GetField(name string) *FieldInfo {
	return cf.FindField(func(f *FieldInfo) bool {
		return f.Name(cf.ConstantPool) == name
	})
}

// GetMethod finds a method by name, and by descriptor unless it is empty.
func (cf *ClassFile) GetMethod(name, descriptor string) *MethodInfo {
	return cf.FindMethod(func(m *MethodInfo) bool {
		if m.Name(cf.ConstantPool) != name {
			return false
		}
		return descriptor == "" || m.Descriptor(cf.ConstantPool) == descriptor
	})
}

func (cf *ClassFile) GetMethods(name string) []*MethodInfo {
	var methods []*MethodInfo
	for i := range cf.Methods {
		if cf.Methods[i].Name(cf.ConstantPool) == name {
			methods = append(methods, &cf.Methods[i])
		}
	}
	return methods
}

func (cf *ClassFile) FindField(match func(*FieldInfo) bool) *FieldInfo {
	for i := range cf.Fields {
		if match(&cf.Fields[i]) {
			return &cf.Fields[i]
		}
	}
	return nil
}

func (cf *ClassFile) FindMethod(match func(*MethodInfo) bool) *MethodInfo {
	for i := range cf.Methods {
		if match(&cf.Methods[i]) {
			return &cf.Methods[i]
		}
	}
	return nil
}

// GetAttribute returns the first attribute with the given name, including
// custom attributes.
func (cf *ClassFile) GetAttribute(name string) Attribute {
	return findNamed(cf.Attributes, name)
}

func findNamed(attrs []Attribute, name string) Attribute {
	for _, a := range attrs {
		if a.Name() == name {
			return a
		}
	}
	return nil
}

// ClassResolver finds other decoded classes by source name. Lookups that
// cross class boundaries go through it.
type ClassResolver interface {
	Classfile(name string) *ClassFile
}

// LocateField searches this class, then its superclass chain, then its
// interfaces. Inherited fields must be visible to subclasses: public,
// protected, or package-private in the same package as cf.
// Fields from interfaces must be public or protected.
func (cf *ClassFile) LocateField(resolver ClassResolver, match func(*ClassFile, *FieldInfo) bool) (*ClassFile, *FieldInfo) {
	return locateField(cf, resolver, match, map[string]bool{})
}

func locateField(cf *ClassFile, resolver ClassResolver, match func(*ClassFile, *FieldInfo) bool, seen map[string]bool) (*ClassFile, *FieldInfo) {
	if seen[cf.ClassName()] {
		return nil, nil
	}
	seen[cf.ClassName()] = true

	if f := cf.FindField(func(f *FieldInfo) bool { return match(cf, f) }); f != nil {
		return cf, f
	}

	if super := resolver.Classfile(cf.SuperClassName()); cf.HasSuperClass() && super != nil {
		owner, f := locateField(super, resolver, match, seen)
		if f != nil && inheritable(f.AccessFlags, owner, cf) {
			return owner, f
		}
	}

	for _, name := range cf.InterfaceNames() {
		iface := resolver.Classfile(name)
		if iface == nil {
			continue
		}
		owner, f := locateField(iface, resolver, match, seen)
		if f != nil && (f.IsPublic() || f.IsProtected()) {
			return owner, f
		}
	}
	return nil, nil
}

// LocateMethod applies the same search order and visibility rules as
// LocateField.
func (cf *ClassFile) LocateMethod(resolver ClassResolver, match func(*ClassFile, *MethodInfo) bool) (*ClassFile, *MethodInfo) {
	return locateMethod(cf, resolver, match, map[string]bool{})
}

func locateMethod(cf *ClassFile, resolver ClassResolver, match func(*ClassFile, *MethodInfo) bool, seen map[string]bool) (*ClassFile, *MethodInfo) {
	if seen[cf.ClassName()] {
		return nil, nil
	}
	seen[cf.ClassName()] = true

	if m := cf.FindMethod(func(m *MethodInfo) bool { return match(cf, m) }); m != nil {
		return cf, m
	}

	if super := resolver.Classfile(cf.SuperClassName()); cf.HasSuperClass() && super != nil {
		owner, m := locateMethod(super, resolver, match, seen)
		if m != nil && inheritable(m.AccessFlags, owner, cf) {
			return owner, m
		}
	}

	for _, name := range cf.InterfaceNames() {
		iface := resolver.Classfile(name)
		if iface == nil {
			continue
		}
		owner, m := locateMethod(iface, resolver, match, seen)
		if m != nil && (m.IsPublic() || m.IsProtected()) {
			return owner, m
		}
	}
	return nil, nil
}

// LocateMethodDeclarations returns the topmost declarations matching match
// along the supertypes of cf, or cf's own matching methods when no
// supertype declares one.
func (cf *ClassFile) LocateMethodDeclarations(resolver ClassResolver, match func(*ClassFile, *MethodInfo) bool) []*MethodInfo {
	var declarations []*MethodInfo
	supertypes := cf.InterfaceNames()
	if cf.HasSuperClass() {
		supertypes = append(supertypes, cf.SuperClassName())
	}
	for _, name := range supertypes {
		if super := resolver.Classfile(name); super != nil {
			declarations = append(declarations, super.LocateMethodDeclarations(resolver, match)...)
		}
	}
	if len(declarations) > 0 {
		return declarations
	}
	for i := range cf.Methods {
		if match(cf, &cf.Methods[i]) {
			declarations = append(declarations, &cf.Methods[i])
		}
	}
	return declarations
}

func inheritable(flags AccessFlags, owner, from *ClassFile) bool {
	if flags.IsPublic() || flags.IsProtected() {
		return true
	}
	return flags.IsPackage() && owner.PackageName() == from.PackageName()
}
