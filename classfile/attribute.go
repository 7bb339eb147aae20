package classfile

// Attribute is implemented by every decoded attribute. The set is closed:
// names without a decoder below become a CustomAttribute.
type Attribute interface {
	Name() string
	Accept(v Visitor)
	header() *AttributeHeader
}

// AttributeHeader records the attribute_name_index and attribute_length as
// they appeared in the class file.
type AttributeHeader struct {
	NameIndex uint16
	Length    uint32
}

func (h *AttributeHeader) header() *AttributeHeader { return h }

// FindAttribute returns the first attribute of type T.
func FindAttribute[T Attribute](attrs []Attribute) (T, bool) {
	for _, a := range attrs {
		if t, ok := a.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

type ConstantValueAttribute struct {
	AttributeHeader
	ValueIndex uint16
}

type CodeAttribute struct {
	AttributeHeader
	MaxStack          uint16
	MaxLocals         uint16
	Code              []byte
	ExceptionHandlers []ExceptionHandler
	Attributes        []Attribute
}

type ExceptionHandler struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16 // zero catches everything
}

type StackMapTableAttribute struct {
	AttributeHeader
	Entries []StackMapFrame
}

type ExceptionsAttribute struct {
	AttributeHeader
	ExceptionIndexTable []uint16
}

type InnerClassesAttribute struct {
	AttributeHeader
	Classes []InnerClass
}

type InnerClass struct {
	InnerClassInfoIndex uint16
	OuterClassInfoIndex uint16
	InnerNameIndex      uint16
	AccessFlags         AccessFlags
}

type EnclosingMethodAttribute struct {
	AttributeHeader
	ClassIndex  uint16
	MethodIndex uint16
}

type SyntheticAttribute struct {
	AttributeHeader
}

type SignatureAttribute struct {
	AttributeHeader
	SignatureIndex uint16
}

type SourceFileAttribute struct {
	AttributeHeader
	SourceFileIndex uint16
}

type SourceDebugExtensionAttribute struct {
	AttributeHeader
	DebugExtension string
}

type LineNumberTableAttribute struct {
	AttributeHeader
	LineNumbers []LineNumber
}

type LineNumber struct {
	StartPC    uint16
	LineNumber uint16
}

type LocalVariableTableAttribute struct {
	AttributeHeader
	LocalVariables []LocalVariable
}

type LocalVariable struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

type LocalVariableTypeTableAttribute struct {
	AttributeHeader
	LocalVariableTypes []LocalVariableType
}

type LocalVariableType struct {
	StartPC        uint16
	Length         uint16
	NameIndex      uint16
	SignatureIndex uint16
	Index          uint16
}

type DeprecatedAttribute struct {
	AttributeHeader
}

type RuntimeVisibleAnnotationsAttribute struct {
	AttributeHeader
	Annotations []Annotation
}

type RuntimeInvisibleAnnotationsAttribute struct {
	AttributeHeader
	Annotations []Annotation
}

type RuntimeVisibleParameterAnnotationsAttribute struct {
	AttributeHeader
	Parameters []ParameterAnnotations
}

type RuntimeInvisibleParameterAnnotationsAttribute struct {
	AttributeHeader
	Parameters []ParameterAnnotations
}

type RuntimeVisibleTypeAnnotationsAttribute struct {
	AttributeHeader
	Annotations []TypeAnnotation
}

type RuntimeInvisibleTypeAnnotationsAttribute struct {
	AttributeHeader
	Annotations []TypeAnnotation
}

type AnnotationDefaultAttribute struct {
	AttributeHeader
	DefaultValue ElementValue
}

type BootstrapMethodsAttribute struct {
	AttributeHeader
	Methods []BootstrapMethod
}

type BootstrapMethod struct {
	MethodRef uint16
	Arguments []uint16
}

type MethodParametersAttribute struct {
	AttributeHeader
	Parameters []MethodParameter
}

type MethodParameter struct {
	NameIndex   uint16 // zero for a nameless parameter
	AccessFlags AccessFlags
}

type ModulePackagesAttribute struct {
	AttributeHeader
	PackageIndex []uint16
}

type ModuleMainClassAttribute struct {
	AttributeHeader
	MainClassIndex uint16
}

type NestHostAttribute struct {
	AttributeHeader
	HostClassIndex uint16
}

type NestMembersAttribute struct {
	AttributeHeader
	Classes []uint16
}

type RecordAttribute struct {
	AttributeHeader
	Components []RecordComponent
}

type RecordComponent struct {
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []Attribute
}

type PermittedSubclassesAttribute struct {
	AttributeHeader
	Classes []uint16
}

// CustomAttribute keeps the raw bytes of an attribute this package does not
// interpret.
type CustomAttribute struct {
	AttributeHeader
	AttributeName string
	Info          []byte
}

func (*ConstantValueAttribute) Name() string                        { return "ConstantValue" }
func (*CodeAttribute) Name() string                                 { return "Code" }
func (*StackMapTableAttribute) Name() string                        { return "StackMapTable" }
func (*ExceptionsAttribute) Name() string                           { return "Exceptions" }
func (*InnerClassesAttribute) Name() string                         { return "InnerClasses" }
func (*EnclosingMethodAttribute) Name() string                      { return "EnclosingMethod" }
func (*SyntheticAttribute) Name() string                            { return "Synthetic" }
func (*SignatureAttribute) Name() string                            { return "Signature" }
func (*SourceFileAttribute) Name() string                           { return "SourceFile" }
func (*SourceDebugExtensionAttribute) Name() string                 { return "SourceDebugExtension" }
func (*LineNumberTableAttribute) Name() string                      { return "LineNumberTable" }
func (*LocalVariableTableAttribute) Name() string                   { return "LocalVariableTable" }
func (*LocalVariableTypeTableAttribute) Name() string               { return "LocalVariableTypeTable" }
func (*DeprecatedAttribute) Name() string                           { return "Deprecated" }
func (*RuntimeVisibleAnnotationsAttribute) Name() string            { return "RuntimeVisibleAnnotations" }
func (*RuntimeInvisibleAnnotationsAttribute) Name() string          { return "RuntimeInvisibleAnnotations" }
func (*RuntimeVisibleParameterAnnotationsAttribute) Name() string   { return "RuntimeVisibleParameterAnnotations" }
func (*RuntimeInvisibleParameterAnnotationsAttribute) Name() string { return "RuntimeInvisibleParameterAnnotations" }
func (*RuntimeVisibleTypeAnnotationsAttribute) Name() string        { return "RuntimeVisibleTypeAnnotations" }
func (*RuntimeInvisibleTypeAnnotationsAttribute) Name() string      { return "RuntimeInvisibleTypeAnnotations" }
func (*AnnotationDefaultAttribute) Name() string                    { return "AnnotationDefault" }
func (*BootstrapMethodsAttribute) Name() string                     { return "BootstrapMethods" }
func (*MethodParametersAttribute) Name() string                     { return "MethodParameters" }
func (*ModuleAttribute) Name() string                               { return "Module" }
func (*ModulePackagesAttribute) Name() string                       { return "ModulePackages" }
func (*ModuleMainClassAttribute) Name() string                      { return "ModuleMainClass" }
func (*NestHostAttribute) Name() string                             { return "NestHost" }
func (*NestMembersAttribute) Name() string                          { return "NestMembers" }
func (*RecordAttribute) Name() string                               { return "Record" }
func (*PermittedSubclassesAttribute) Name() string                  { return "PermittedSubclasses" }
func (a *CustomAttribute) Name() string                             { return a.AttributeName }

func (a *ConstantValueAttribute) Accept(v Visitor)        { v.VisitConstantValueAttribute(a) }
func (a *CodeAttribute) Accept(v Visitor)                 { v.VisitCodeAttribute(a) }
func (a *StackMapTableAttribute) Accept(v Visitor)        { v.VisitStackMapTableAttribute(a) }
func (a *ExceptionsAttribute) Accept(v Visitor)           { v.VisitExceptionsAttribute(a) }
func (a *InnerClassesAttribute) Accept(v Visitor)         { v.VisitInnerClassesAttribute(a) }
func (a *EnclosingMethodAttribute) Accept(v Visitor)      { v.VisitEnclosingMethodAttribute(a) }
func (a *SyntheticAttribute) Accept(v Visitor)            { v.VisitSyntheticAttribute(a) }
func (a *SignatureAttribute) Accept(v Visitor)            { v.VisitSignatureAttribute(a) }
func (a *SourceFileAttribute) Accept(v Visitor)           { v.VisitSourceFileAttribute(a) }
func (a *SourceDebugExtensionAttribute) Accept(v Visitor) { v.VisitSourceDebugExtensionAttribute(a) }
func (a *LineNumberTableAttribute) Accept(v Visitor)      { v.VisitLineNumberTableAttribute(a) }
func (a *LocalVariableTableAttribute) Accept(v Visitor)   { v.VisitLocalVariableTableAttribute(a) }
func (a *LocalVariableTypeTableAttribute) Accept(v Visitor) {
	v.VisitLocalVariableTypeTableAttribute(a)
}
func (a *DeprecatedAttribute) Accept(v Visitor) { v.VisitDeprecatedAttribute(a) }
func (a *RuntimeVisibleAnnotationsAttribute) Accept(v Visitor) {
	v.VisitRuntimeVisibleAnnotationsAttribute(a)
}
func (a *RuntimeInvisibleAnnotationsAttribute) Accept(v Visitor) {
	v.VisitRuntimeInvisibleAnnotationsAttribute(a)
}
func (a *RuntimeVisibleParameterAnnotationsAttribute) Accept(v Visitor) {
	v.VisitRuntimeVisibleParameterAnnotationsAttribute(a)
}
func (a *RuntimeInvisibleParameterAnnotationsAttribute) Accept(v Visitor) {
	v.VisitRuntimeInvisibleParameterAnnotationsAttribute(a)
}
func (a *RuntimeVisibleTypeAnnotationsAttribute) Accept(v Visitor) {
	v.VisitRuntimeVisibleTypeAnnotationsAttribute(a)
}
func (a *RuntimeInvisibleTypeAnnotationsAttribute) Accept(v Visitor) {
	v.VisitRuntimeInvisibleTypeAnnotationsAttribute(a)
}
func (a *AnnotationDefaultAttribute) Accept(v Visitor)   { v.VisitAnnotationDefaultAttribute(a) }
func (a *BootstrapMethodsAttribute) Accept(v Visitor)    { v.VisitBootstrapMethodsAttribute(a) }
func (a *MethodParametersAttribute) Accept(v Visitor)    { v.VisitMethodParametersAttribute(a) }
func (a *ModuleAttribute) Accept(v Visitor)              { v.VisitModuleAttribute(a) }
func (a *ModulePackagesAttribute) Accept(v Visitor)      { v.VisitModulePackagesAttribute(a) }
func (a *ModuleMainClassAttribute) Accept(v Visitor)     { v.VisitModuleMainClassAttribute(a) }
func (a *NestHostAttribute) Accept(v Visitor)            { v.VisitNestHostAttribute(a) }
func (a *NestMembersAttribute) Accept(v Visitor)         { v.VisitNestMembersAttribute(a) }
func (a *RecordAttribute) Accept(v Visitor)              { v.VisitRecordAttribute(a) }
func (a *PermittedSubclassesAttribute) Accept(v Visitor) { v.VisitPermittedSubclassesAttribute(a) }
func (a *CustomAttribute) Accept(v Visitor)              { v.VisitCustomAttribute(a) }

func (h *ExceptionHandler) Accept(v Visitor)  { v.VisitExceptionHandler(h) }
func (c *InnerClass) Accept(v Visitor)        { v.VisitInnerClass(c) }
func (l *LineNumber) Accept(v Visitor)        { v.VisitLineNumber(l) }
func (l *LocalVariable) Accept(v Visitor)     { v.VisitLocalVariable(l) }
func (l *LocalVariableType) Accept(v Visitor) { v.VisitLocalVariableType(l) }
func (b *BootstrapMethod) Accept(v Visitor)   { v.VisitBootstrapMethod(b) }
func (p *MethodParameter) Accept(v Visitor)   { v.VisitMethodParameter(p) }
func (c *RecordComponent) Accept(v Visitor)   { v.VisitRecordComponent(c) }

// HasCatchType reports whether the handler is restricted to one class.
func (h *ExceptionHandler) HasCatchType() bool { return h.CatchType != 0 }

func (l *LocalVariable) Name(cp ConstantPool) string       { return cp.GetUtf8(l.NameIndex) }
func (l *LocalVariable) Descriptor(cp ConstantPool) string { return cp.GetUtf8(l.DescriptorIndex) }

// Covers reports whether pc lies inside the variable's live range
// [start_pc, start_pc+length).
func (l *LocalVariable) Covers(pc int) bool {
	return pc >= int(l.StartPC) && pc < int(l.StartPC)+int(l.Length)
}

func (l *LocalVariableType) Name(cp ConstantPool) string      { return cp.GetUtf8(l.NameIndex) }
func (l *LocalVariableType) Signature(cp ConstantPool) string { return cp.GetUtf8(l.SignatureIndex) }

func (c *RecordComponent) Name(cp ConstantPool) string       { return cp.GetUtf8(c.NameIndex) }
func (c *RecordComponent) Descriptor(cp ConstantPool) string { return cp.GetUtf8(c.DescriptorIndex) }

func (a *SourceFileAttribute) SourceFile(cp ConstantPool) string { return cp.GetUtf8(a.SourceFileIndex) }
func (a *SignatureAttribute) Signature(cp ConstantPool) string   { return cp.GetUtf8(a.SignatureIndex) }

// LocalVariableAt finds the local variable occupying slot index at pc in the
// code's LocalVariableTable, if one was compiled in.
func (c *CodeAttribute) LocalVariableAt(index, pc int) *LocalVariable {
	for _, attr := range c.Attributes {
		table, ok := attr.(*LocalVariableTableAttribute)
		if !ok {
			continue
		}
		for i := range table.LocalVariables {
			lv := &table.LocalVariables[i]
			if int(lv.Index) == index && lv.Covers(pc) {
				return lv
			}
		}
	}
	return nil
}

// Instructions decodes the bytecode. The code was validated during parsing,
// so an error here means the attribute was built by hand.
func (c *CodeAttribute) Instructions() ([]Instruction, error) {
	return DecodeInstructions(c.Code)
}

func readAttributes(r *reader, cp ConstantPool) []Attribute {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	attrs := make([]Attribute, 0, count)
	for i := uint16(0); i < count && r.err == nil; i++ {
		if a := readAttribute(r, cp); a != nil {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

func readAttribute(r *reader, cp ConstantPool) Attribute {
	nameIndex := r.readIndex(cp, ConstantUtf8)
	length := r.readU4()
	if r.err != nil {
		return nil
	}
	name := cp.GetUtf8(nameIndex)

	body := r.sub(int(length))
	if r.err != nil {
		r.err = withAttribute(r.err, name)
		return nil
	}

	attr := decodeAttribute(name, body, cp)
	if body.err == nil && body.remaining() != 0 {
		body.fail(newError(KindLengthMismatch).
			offset(body.offset()).
			detail("declared %d bytes, decoded %d", length, body.pos).
			build())
	}
	if body.err != nil {
		err := body.err
		if de, ok := err.(*DecodeError); ok && de.Kind == KindTruncated {
			err = newError(KindLengthMismatch).
				offset(de.Offset).
				detail("declared %d bytes, decoding needs more", length).
				cause(de).
				build()
		}
		r.fail(withAttribute(err, name))
		return nil
	}

	h := attr.header()
	h.NameIndex = nameIndex
	h.Length = length
	return attr
}

func decodeAttribute(name string, r *reader, cp ConstantPool) Attribute {
	switch name {
	case "ConstantValue":
		return &ConstantValueAttribute{ValueIndex: r.readIndex(cp,
			ConstantInteger, ConstantFloat, ConstantLong, ConstantDouble, ConstantString)}
	case "Code":
		return readCode(r, cp)
	case "StackMapTable":
		return &StackMapTableAttribute{Entries: readStackMapFrames(r, cp)}
	case "Exceptions":
		return &ExceptionsAttribute{ExceptionIndexTable: r.readIndexList(cp, ConstantClass)}
	case "InnerClasses":
		return readInnerClasses(r, cp)
	case "EnclosingMethod":
		return &EnclosingMethodAttribute{
			ClassIndex:  r.readIndex(cp, ConstantClass),
			MethodIndex: r.readOptionalIndex(cp, ConstantNameAndType),
		}
	case "Synthetic":
		return &SyntheticAttribute{}
	case "Signature":
		return &SignatureAttribute{SignatureIndex: r.readIndex(cp, ConstantUtf8)}
	case "SourceFile":
		return &SourceFileAttribute{SourceFileIndex: r.readIndex(cp, ConstantUtf8)}
	case "SourceDebugExtension":
		return &SourceDebugExtensionAttribute{
			DebugExtension: decodeModifiedUtf8(r.readBytes(r.remaining())),
		}
	case "LineNumberTable":
		return readLineNumbers(r)
	case "LocalVariableTable":
		return readLocalVariables(r, cp)
	case "LocalVariableTypeTable":
		return readLocalVariableTypes(r, cp)
	case "Deprecated":
		return &DeprecatedAttribute{}
	case "RuntimeVisibleAnnotations":
		return &RuntimeVisibleAnnotationsAttribute{Annotations: readAnnotations(r, cp)}
	case "RuntimeInvisibleAnnotations":
		return &RuntimeInvisibleAnnotationsAttribute{Annotations: readAnnotations(r, cp)}
	case "RuntimeVisibleParameterAnnotations":
		return &RuntimeVisibleParameterAnnotationsAttribute{Parameters: readParameterAnnotations(r, cp)}
	case "RuntimeInvisibleParameterAnnotations":
		return &RuntimeInvisibleParameterAnnotationsAttribute{Parameters: readParameterAnnotations(r, cp)}
	case "RuntimeVisibleTypeAnnotations":
		return &RuntimeVisibleTypeAnnotationsAttribute{Annotations: readTypeAnnotations(r, cp)}
	case "RuntimeInvisibleTypeAnnotations":
		return &RuntimeInvisibleTypeAnnotationsAttribute{Annotations: readTypeAnnotations(r, cp)}
	case "AnnotationDefault":
		return &AnnotationDefaultAttribute{DefaultValue: readElementValue(r, cp)}
	case "BootstrapMethods":
		return readBootstrapMethods(r, cp)
	case "MethodParameters":
		return readMethodParameters(r, cp)
	case "Module":
		return readModule(r, cp)
	case "ModulePackages":
		return &ModulePackagesAttribute{PackageIndex: r.readIndexList(cp, ConstantPackage)}
	case "ModuleMainClass":
		return &ModuleMainClassAttribute{MainClassIndex: r.readIndex(cp, ConstantClass)}
	case "NestHost":
		return &NestHostAttribute{HostClassIndex: r.readIndex(cp, ConstantClass)}
	case "NestMembers":
		return &NestMembersAttribute{Classes: r.readIndexList(cp, ConstantClass)}
	case "Record":
		return readRecord(r, cp)
	case "PermittedSubclasses":
		return &PermittedSubclassesAttribute{Classes: r.readIndexList(cp, ConstantClass)}
	default:
		info := make([]byte, r.remaining())
		copy(info, r.readBytes(r.remaining()))
		return &CustomAttribute{AttributeName: name, Info: info}
	}
}

func readCode(r *reader, cp ConstantPool) *CodeAttribute {
	code := &CodeAttribute{
		MaxStack:  r.readU2(),
		MaxLocals: r.readU2(),
	}
	codeLength := r.readU4()
	codeStart := r.offset()
	code.Code = r.readBytes(int(codeLength))

	handlers := r.readU2()
	if r.err != nil {
		return code
	}
	code.ExceptionHandlers = make([]ExceptionHandler, handlers)
	for i := range code.ExceptionHandlers {
		code.ExceptionHandlers[i] = ExceptionHandler{
			StartPC:   r.readU2(),
			EndPC:     r.readU2(),
			HandlerPC: r.readU2(),
			CatchType: r.readOptionalIndex(cp, ConstantClass),
		}
	}

	code.Attributes = readAttributes(r, cp)
	if r.err == nil {
		if err := validateCode(code.Code, cp); err != nil {
			r.fail(relocate(err, codeStart))
		}
	}
	return code
}

// relocate turns a code-relative instruction offset into a file offset.
func relocate(err error, base int) error {
	if de, ok := err.(*DecodeError); ok && de.Offset >= 0 {
		cp := *de
		cp.Offset += base
		return &cp
	}
	return err
}

func readInnerClasses(r *reader, cp ConstantPool) *InnerClassesAttribute {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	a := &InnerClassesAttribute{Classes: make([]InnerClass, count)}
	for i := range a.Classes {
		a.Classes[i] = InnerClass{
			InnerClassInfoIndex: r.readIndex(cp, ConstantClass),
			OuterClassInfoIndex: r.readOptionalIndex(cp, ConstantClass),
			InnerNameIndex:      r.readOptionalIndex(cp, ConstantUtf8),
			AccessFlags:         AccessFlags(r.readU2()),
		}
	}
	return a
}

func readLineNumbers(r *reader) *LineNumberTableAttribute {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	a := &LineNumberTableAttribute{LineNumbers: make([]LineNumber, count)}
	for i := range a.LineNumbers {
		a.LineNumbers[i] = LineNumber{StartPC: r.readU2(), LineNumber: r.readU2()}
	}
	return a
}

func readLocalVariables(r *reader, cp ConstantPool) *LocalVariableTableAttribute {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	a := &LocalVariableTableAttribute{LocalVariables: make([]LocalVariable, count)}
	for i := range a.LocalVariables {
		a.LocalVariables[i] = LocalVariable{
			StartPC:         r.readU2(),
			Length:          r.readU2(),
			NameIndex:       r.readIndex(cp, ConstantUtf8),
			DescriptorIndex: r.readIndex(cp, ConstantUtf8),
			Index:           r.readU2(),
		}
	}
	return a
}

func readLocalVariableTypes(r *reader, cp ConstantPool) *LocalVariableTypeTableAttribute {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	a := &LocalVariableTypeTableAttribute{LocalVariableTypes: make([]LocalVariableType, count)}
	for i := range a.LocalVariableTypes {
		a.LocalVariableTypes[i] = LocalVariableType{
			StartPC:        r.readU2(),
			Length:         r.readU2(),
			NameIndex:      r.readIndex(cp, ConstantUtf8),
			SignatureIndex: r.readIndex(cp, ConstantUtf8),
			Index:          r.readU2(),
		}
	}
	return a
}

func readBootstrapMethods(r *reader, cp ConstantPool) *BootstrapMethodsAttribute {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	a := &BootstrapMethodsAttribute{Methods: make([]BootstrapMethod, count)}
	for i := range a.Methods {
		a.Methods[i].MethodRef = r.readIndex(cp, ConstantMethodHandle)
		a.Methods[i].Arguments = r.readIndexList(cp)
	}
	return a
}

func readMethodParameters(r *reader, cp ConstantPool) *MethodParametersAttribute {
	count := r.readU1()
	if r.err != nil {
		return nil
	}
	a := &MethodParametersAttribute{Parameters: make([]MethodParameter, count)}
	for i := range a.Parameters {
		a.Parameters[i] = MethodParameter{
			NameIndex:   r.readOptionalIndex(cp, ConstantUtf8),
			AccessFlags: AccessFlags(r.readU2()),
		}
	}
	return a
}

func readRecord(r *reader, cp ConstantPool) *RecordAttribute {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	a := &RecordAttribute{Components: make([]RecordComponent, count)}
	for i := range a.Components {
		a.Components[i] = RecordComponent{
			NameIndex:       r.readIndex(cp, ConstantUtf8),
			DescriptorIndex: r.readIndex(cp, ConstantUtf8),
			Attributes:      readAttributes(r, cp),
		}
	}
	return a
}
