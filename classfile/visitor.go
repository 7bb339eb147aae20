package classfile

// Visitor receives one call per node of a decoded class. Every node type
// has an Accept method that calls the matching Visit method, so a visitor
// only needs to override the nodes it cares about; BaseVisitor supplies the
// rest.
type Visitor interface {
	VisitClassFile(cf *ClassFile)
	VisitField(f *FieldInfo)
	VisitMethod(m *MethodInfo)

	VisitConstantPool(cp ConstantPool)
	VisitUtf8(c *ConstantUtf8Info)
	VisitInteger(c *ConstantIntegerInfo)
	VisitFloat(c *ConstantFloatInfo)
	VisitLong(c *ConstantLongInfo)
	VisitDouble(c *ConstantDoubleInfo)
	VisitClass(c *ConstantClassInfo)
	VisitString(c *ConstantStringInfo)
	VisitFieldref(c *ConstantFieldrefInfo)
	VisitMethodref(c *ConstantMethodrefInfo)
	VisitInterfaceMethodref(c *ConstantInterfaceMethodrefInfo)
	VisitNameAndType(c *ConstantNameAndTypeInfo)
	VisitMethodHandle(c *ConstantMethodHandleInfo)
	VisitMethodType(c *ConstantMethodTypeInfo)
	VisitDynamic(c *ConstantDynamicInfo)
	VisitInvokeDynamic(c *ConstantInvokeDynamicInfo)
	VisitModule(c *ConstantModuleInfo)
	VisitPackage(c *ConstantPackageInfo)

	VisitConstantValueAttribute(a *ConstantValueAttribute)
	VisitCodeAttribute(a *CodeAttribute)
	VisitStackMapTableAttribute(a *StackMapTableAttribute)
	VisitExceptionsAttribute(a *ExceptionsAttribute)
	VisitInnerClassesAttribute(a *InnerClassesAttribute)
	VisitEnclosingMethodAttribute(a *EnclosingMethodAttribute)
	VisitSyntheticAttribute(a *SyntheticAttribute)
	VisitSignatureAttribute(a *SignatureAttribute)
	VisitSourceFileAttribute(a *SourceFileAttribute)
	VisitSourceDebugExtensionAttribute(a *SourceDebugExtensionAttribute)
	VisitLineNumberTableAttribute(a *LineNumberTableAttribute)
	VisitLocalVariableTableAttribute(a *LocalVariableTableAttribute)
	VisitLocalVariableTypeTableAttribute(a *LocalVariableTypeTableAttribute)
	VisitDeprecatedAttribute(a *DeprecatedAttribute)
	VisitRuntimeVisibleAnnotationsAttribute(a *RuntimeVisibleAnnotationsAttribute)
	VisitRuntimeInvisibleAnnotationsAttribute(a *RuntimeInvisibleAnnotationsAttribute)
	VisitRuntimeVisibleParameterAnnotationsAttribute(a *RuntimeVisibleParameterAnnotationsAttribute)
	VisitRuntimeInvisibleParameterAnnotationsAttribute(a *RuntimeInvisibleParameterAnnotationsAttribute)
	VisitRuntimeVisibleTypeAnnotationsAttribute(a *RuntimeVisibleTypeAnnotationsAttribute)
	VisitRuntimeInvisibleTypeAnnotationsAttribute(a *RuntimeInvisibleTypeAnnotationsAttribute)
	VisitAnnotationDefaultAttribute(a *AnnotationDefaultAttribute)
	VisitBootstrapMethodsAttribute(a *BootstrapMethodsAttribute)
	VisitMethodParametersAttribute(a *MethodParametersAttribute)
	VisitModuleAttribute(a *ModuleAttribute)
	VisitModulePackagesAttribute(a *ModulePackagesAttribute)
	VisitModuleMainClassAttribute(a *ModuleMainClassAttribute)
	VisitNestHostAttribute(a *NestHostAttribute)
	VisitNestMembersAttribute(a *NestMembersAttribute)
	VisitRecordAttribute(a *RecordAttribute)
	VisitPermittedSubclassesAttribute(a *PermittedSubclassesAttribute)
	VisitCustomAttribute(a *CustomAttribute)

	VisitInstruction(in *Instruction)
	VisitExceptionHandler(h *ExceptionHandler)
	VisitInnerClass(c *InnerClass)
	VisitLineNumber(l *LineNumber)
	VisitLocalVariable(l *LocalVariable)
	VisitLocalVariableType(l *LocalVariableType)
	VisitBootstrapMethod(b *BootstrapMethod)
	VisitMethodParameter(p *MethodParameter)
	VisitRecordComponent(c *RecordComponent)

	VisitModuleRequires(m *ModuleRequires)
	VisitModuleExports(m *ModuleExports)
	VisitModuleOpens(m *ModuleOpens)
	VisitModuleProvides(m *ModuleProvides)

	VisitAnnotation(a *Annotation)
	VisitParameterAnnotations(p *ParameterAnnotations)
	VisitElementValuePair(p *ElementValuePair)
	VisitConstElementValue(e *ConstElementValue)
	VisitEnumElementValue(e *EnumElementValue)
	VisitClassElementValue(e *ClassElementValue)
	VisitAnnotationElementValue(e *AnnotationElementValue)
	VisitArrayElementValue(e *ArrayElementValue)

	VisitTypeAnnotation(a *TypeAnnotation)
	VisitTypeParameterTarget(t *TypeParameterTarget)
	VisitSupertypeTarget(t *SupertypeTarget)
	VisitTypeParameterBoundTarget(t *TypeParameterBoundTarget)
	VisitEmptyTarget(t *EmptyTarget)
	VisitFormalParameterTarget(t *FormalParameterTarget)
	VisitThrowsTarget(t *ThrowsTarget)
	VisitLocalVarTarget(t *LocalVarTarget)
	VisitCatchTarget(t *CatchTarget)
	VisitOffsetTarget(t *OffsetTarget)
	VisitTypeArgumentTarget(t *TypeArgumentTarget)
	VisitTypePath(p TypePath)

	VisitSameFrame(f *SameFrame)
	VisitSameLocals1StackItemFrame(f *SameLocals1StackItemFrame)
	VisitSameLocals1StackItemFrameExtended(f *SameLocals1StackItemFrameExtended)
	VisitChopFrame(f *ChopFrame)
	VisitSameFrameExtended(f *SameFrameExtended)
	VisitAppendFrame(f *AppendFrame)
	VisitFullFrame(f *FullFrame)

	VisitTopVariable(t *TopVariable)
	VisitIntegerVariable(t *IntegerVariable)
	VisitFloatVariable(t *FloatVariable)
	VisitDoubleVariable(t *DoubleVariable)
	VisitLongVariable(t *LongVariable)
	VisitNullVariable(t *NullVariable)
	VisitUninitializedThisVariable(t *UninitializedThisVariable)
	VisitObjectVariable(t *ObjectVariable)
	VisitUninitializedVariable(t *UninitializedVariable)
}

// BaseVisitor implements every Visitor method. Composite nodes are walked
// in class-file order; leaves do nothing.
//
// Embed it in a concrete visitor and call Bind with the outer value so that
// the traversal dispatches back to the overriding methods:
//
//	type counter struct {
//		classfile.BaseVisitor
//		n int
//	}
//
//	c := &counter{}
//	c.Bind(c)
//	cf.Accept(c)
//
// VisitClassFile walks fields, methods and attributes. The constant pool is
// not walked implicitly; call cf.ConstantPool.Accept to include it.
type BaseVisitor struct {
	self    Visitor
	current uint16
}

var _ Visitor = (*BaseVisitor)(nil)

// Bind sets the visitor that receives calls made during traversal.
func (b *BaseVisitor) Bind(self Visitor) {
	b.self = self
}

func (b *BaseVisitor) visitor() Visitor {
	if b.self != nil {
		return b.self
	}
	return b
}

// CurrentIndex returns the pool index of the entry being visited by
// VisitConstantPool, or zero outside of it.
func (b *BaseVisitor) CurrentIndex() uint16 {
	return b.current
}

func (b *BaseVisitor) VisitClassFile(cf *ClassFile) {
	v := b.visitor()
	for i := range cf.Fields {
		cf.Fields[i].Accept(v)
	}
	for i := range cf.Methods {
		cf.Methods[i].Accept(v)
	}
	b.visitAttributes(cf.Attributes)
}

func (b *BaseVisitor) VisitField(f *FieldInfo) {
	b.visitAttributes(f.Attributes)
}

func (b *BaseVisitor) VisitMethod(m *MethodInfo) {
	b.visitAttributes(m.Attributes)
}

func (b *BaseVisitor) visitAttributes(attrs []Attribute) {
	v := b.visitor()
	for _, a := range attrs {
		a.Accept(v)
	}
}

// VisitConstantPool visits each usable entry in index order, skipping slot
// zero and the slot after every long or double.
func (b *BaseVisitor) VisitConstantPool(cp ConstantPool) {
	v := b.visitor()
	defer func() { b.current = 0 }()
	for i := 1; i < len(cp); i++ {
		if cp[i] == nil {
			continue
		}
		b.current = uint16(i)
		cp[i].Accept(v)
	}
}

func (b *BaseVisitor) VisitUtf8(c *ConstantUtf8Info)                             {}
func (b *BaseVisitor) VisitInteger(c *ConstantIntegerInfo)                       {}
func (b *BaseVisitor) VisitFloat(c *ConstantFloatInfo)                           {}
func (b *BaseVisitor) VisitLong(c *ConstantLongInfo)                             {}
func (b *BaseVisitor) VisitDouble(c *ConstantDoubleInfo)                         {}
func (b *BaseVisitor) VisitClass(c *ConstantClassInfo)                           {}
func (b *BaseVisitor) VisitString(c *ConstantStringInfo)                         {}
func (b *BaseVisitor) VisitFieldref(c *ConstantFieldrefInfo)                     {}
func (b *BaseVisitor) VisitMethodref(c *ConstantMethodrefInfo)                   {}
func (b *BaseVisitor) VisitInterfaceMethodref(c *ConstantInterfaceMethodrefInfo) {}
func (b *BaseVisitor) VisitNameAndType(c *ConstantNameAndTypeInfo)               {}
func (b *BaseVisitor) VisitMethodHandle(c *ConstantMethodHandleInfo)             {}
func (b *BaseVisitor) VisitMethodType(c *ConstantMethodTypeInfo)                 {}
func (b *BaseVisitor) VisitDynamic(c *ConstantDynamicInfo)                       {}
func (b *BaseVisitor) VisitInvokeDynamic(c *ConstantInvokeDynamicInfo)           {}
func (b *BaseVisitor) VisitModule(c *ConstantModuleInfo)                         {}
func (b *BaseVisitor) VisitPackage(c *ConstantPackageInfo)                       {}

func (b *BaseVisitor) VisitConstantValueAttribute(a *ConstantValueAttribute) {}

// VisitCodeAttribute visits instructions, then exception handlers, then the
// nested attributes. Code that fails to decode is skipped; Parse has already
// validated it.
func (b *BaseVisitor) VisitCodeAttribute(a *CodeAttribute) {
	v := b.visitor()
	if instructions, err := a.Instructions(); err == nil {
		for i := range instructions {
			instructions[i].Accept(v)
		}
	}
	for i := range a.ExceptionHandlers {
		a.ExceptionHandlers[i].Accept(v)
	}
	b.visitAttributes(a.Attributes)
}

func (b *BaseVisitor) VisitStackMapTableAttribute(a *StackMapTableAttribute) {
	v := b.visitor()
	for _, f := range a.Entries {
		f.Accept(v)
	}
}

func (b *BaseVisitor) VisitExceptionsAttribute(a *ExceptionsAttribute) {}

func (b *BaseVisitor) VisitInnerClassesAttribute(a *InnerClassesAttribute) {
	v := b.visitor()
	for i := range a.Classes {
		a.Classes[i].Accept(v)
	}
}

func (b *BaseVisitor) VisitEnclosingMethodAttribute(a *EnclosingMethodAttribute)           {}
func (b *BaseVisitor) VisitSyntheticAttribute(a *SyntheticAttribute)                       {}
func (b *BaseVisitor) VisitSignatureAttribute(a *SignatureAttribute)                       {}
func (b *BaseVisitor) VisitSourceFileAttribute(a *SourceFileAttribute)                     {}
func (b *BaseVisitor) VisitSourceDebugExtensionAttribute(a *SourceDebugExtensionAttribute) {}

func (b *BaseVisitor) VisitLineNumberTableAttribute(a *LineNumberTableAttribute) {
	v := b.visitor()
	for i := range a.LineNumbers {
		a.LineNumbers[i].Accept(v)
	}
}

func (b *BaseVisitor) VisitLocalVariableTableAttribute(a *LocalVariableTableAttribute) {
	v := b.visitor()
	for i := range a.LocalVariables {
		a.LocalVariables[i].Accept(v)
	}
}

func (b *BaseVisitor) VisitLocalVariableTypeTableAttribute(a *LocalVariableTypeTableAttribute) {
	v := b.visitor()
	for i := range a.LocalVariableTypes {
		a.LocalVariableTypes[i].Accept(v)
	}
}

func (b *BaseVisitor) VisitDeprecatedAttribute(a *DeprecatedAttribute) {}

func (b *BaseVisitor) VisitRuntimeVisibleAnnotationsAttribute(a *RuntimeVisibleAnnotationsAttribute) {
	b.visitAnnotations(a.Annotations)
}

func (b *BaseVisitor) VisitRuntimeInvisibleAnnotationsAttribute(a *RuntimeInvisibleAnnotationsAttribute) {
	b.visitAnnotations(a.Annotations)
}

func (b *BaseVisitor) VisitRuntimeVisibleParameterAnnotationsAttribute(a *RuntimeVisibleParameterAnnotationsAttribute) {
	v := b.visitor()
	for i := range a.Parameters {
		a.Parameters[i].Accept(v)
	}
}

func (b *BaseVisitor) VisitRuntimeInvisibleParameterAnnotationsAttribute(a *RuntimeInvisibleParameterAnnotationsAttribute) {
	v := b.visitor()
	for i := range a.Parameters {
		a.Parameters[i].Accept(v)
	}
}

func (b *BaseVisitor) VisitRuntimeVisibleTypeAnnotationsAttribute(a *RuntimeVisibleTypeAnnotationsAttribute) {
	b.visitTypeAnnotations(a.Annotations)
}

func (b *BaseVisitor) VisitRuntimeInvisibleTypeAnnotationsAttribute(a *RuntimeInvisibleTypeAnnotationsAttribute) {
	b.visitTypeAnnotations(a.Annotations)
}

func (b *BaseVisitor) VisitAnnotationDefaultAttribute(a *AnnotationDefaultAttribute) {
	if a.DefaultValue != nil {
		a.DefaultValue.Accept(b.visitor())
	}
}

func (b *BaseVisitor) VisitBootstrapMethodsAttribute(a *BootstrapMethodsAttribute) {
	v := b.visitor()
	for i := range a.Methods {
		a.Methods[i].Accept(v)
	}
}

func (b *BaseVisitor) VisitMethodParametersAttribute(a *MethodParametersAttribute) {
	v := b.visitor()
	for i := range a.Parameters {
		a.Parameters[i].Accept(v)
	}
}

func (b *BaseVisitor) VisitModuleAttribute(a *ModuleAttribute) {
	v := b.visitor()
	for i := range a.Requires {
		a.Requires[i].Accept(v)
	}
	for i := range a.Exports {
		a.Exports[i].Accept(v)
	}
	for i := range a.Opens {
		a.Opens[i].Accept(v)
	}
	for i := range a.Provides {
		a.Provides[i].Accept(v)
	}
}

func (b *BaseVisitor) VisitModulePackagesAttribute(a *ModulePackagesAttribute)   {}
func (b *BaseVisitor) VisitModuleMainClassAttribute(a *ModuleMainClassAttribute) {}
func (b *BaseVisitor) VisitNestHostAttribute(a *NestHostAttribute)               {}
func (b *BaseVisitor) VisitNestMembersAttribute(a *NestMembersAttribute)         {}

func (b *BaseVisitor) VisitRecordAttribute(a *RecordAttribute) {
	v := b.visitor()
	for i := range a.Components {
		a.Components[i].Accept(v)
	}
}

func (b *BaseVisitor) VisitPermittedSubclassesAttribute(a *PermittedSubclassesAttribute) {}
func (b *BaseVisitor) VisitCustomAttribute(a *CustomAttribute)                           {}

func (b *BaseVisitor) VisitInstruction(in *Instruction)            {}
func (b *BaseVisitor) VisitExceptionHandler(h *ExceptionHandler)   {}
func (b *BaseVisitor) VisitInnerClass(c *InnerClass)               {}
func (b *BaseVisitor) VisitLineNumber(l *LineNumber)               {}
func (b *BaseVisitor) VisitLocalVariable(l *LocalVariable)         {}
func (b *BaseVisitor) VisitLocalVariableType(l *LocalVariableType) {}
func (b *BaseVisitor) VisitBootstrapMethod(m *BootstrapMethod)     {}
func (b *BaseVisitor) VisitMethodParameter(p *MethodParameter)     {}

func (b *BaseVisitor) VisitRecordComponent(c *RecordComponent) {
	b.visitAttributes(c.Attributes)
}

func (b *BaseVisitor) VisitModuleRequires(m *ModuleRequires) {}
func (b *BaseVisitor) VisitModuleExports(m *ModuleExports)   {}
func (b *BaseVisitor) VisitModuleOpens(m *ModuleOpens)       {}
func (b *BaseVisitor) VisitModuleProvides(m *ModuleProvides) {}

func (b *BaseVisitor) visitAnnotations(annotations []Annotation) {
	v := b.visitor()
	for i := range annotations {
		annotations[i].Accept(v)
	}
}

func (b *BaseVisitor) visitTypeAnnotations(annotations []TypeAnnotation) {
	v := b.visitor()
	for i := range annotations {
		annotations[i].Accept(v)
	}
}

func (b *BaseVisitor) VisitAnnotation(a *Annotation) {
	v := b.visitor()
	for i := range a.Pairs {
		a.Pairs[i].Accept(v)
	}
}

func (b *BaseVisitor) VisitParameterAnnotations(p *ParameterAnnotations) {
	b.visitAnnotations(p.Annotations)
}

func (b *BaseVisitor) VisitElementValuePair(p *ElementValuePair) {
	if p.Value != nil {
		p.Value.Accept(b.visitor())
	}
}

func (b *BaseVisitor) VisitConstElementValue(e *ConstElementValue) {}
func (b *BaseVisitor) VisitEnumElementValue(e *EnumElementValue)   {}
func (b *BaseVisitor) VisitClassElementValue(e *ClassElementValue) {}

func (b *BaseVisitor) VisitAnnotationElementValue(e *AnnotationElementValue) {
	e.Annotation.Accept(b.visitor())
}

func (b *BaseVisitor) VisitArrayElementValue(e *ArrayElementValue) {
	v := b.visitor()
	for _, value := range e.Values {
		if value != nil {
			value.Accept(v)
		}
	}
}

// VisitTypeAnnotation visits the target, then the type path, then the
// annotation itself.
func (b *BaseVisitor) VisitTypeAnnotation(a *TypeAnnotation) {
	v := b.visitor()
	if a.Target != nil {
		a.Target.Accept(v)
	}
	a.Path.Accept(v)
	a.Annotation.Accept(v)
}

func (b *BaseVisitor) VisitTypeParameterTarget(t *TypeParameterTarget)           {}
func (b *BaseVisitor) VisitSupertypeTarget(t *SupertypeTarget)                   {}
func (b *BaseVisitor) VisitTypeParameterBoundTarget(t *TypeParameterBoundTarget) {}
func (b *BaseVisitor) VisitEmptyTarget(t *EmptyTarget)                           {}
func (b *BaseVisitor) VisitFormalParameterTarget(t *FormalParameterTarget)       {}
func (b *BaseVisitor) VisitThrowsTarget(t *ThrowsTarget)                         {}
func (b *BaseVisitor) VisitLocalVarTarget(t *LocalVarTarget)                     {}
func (b *BaseVisitor) VisitCatchTarget(t *CatchTarget)                           {}
func (b *BaseVisitor) VisitOffsetTarget(t *OffsetTarget)                         {}
func (b *BaseVisitor) VisitTypeArgumentTarget(t *TypeArgumentTarget)             {}
func (b *BaseVisitor) VisitTypePath(p TypePath)                                  {}

// VisitFullFrame visits locals, then stack. The other composite frames
// visit their verification types in the same order.
func (b *BaseVisitor) VisitFullFrame(f *FullFrame) {
	v := b.visitor()
	for _, t := range f.Locals {
		t.Accept(v)
	}
	for _, t := range f.Stack {
		t.Accept(v)
	}
}

func (b *BaseVisitor) VisitSameFrame(f *SameFrame) {}

func (b *BaseVisitor) VisitSameLocals1StackItemFrame(f *SameLocals1StackItemFrame) {
	if f.Stack != nil {
		f.Stack.Accept(b.visitor())
	}
}

func (b *BaseVisitor) VisitSameLocals1StackItemFrameExtended(f *SameLocals1StackItemFrameExtended) {
	if f.Stack != nil {
		f.Stack.Accept(b.visitor())
	}
}

func (b *BaseVisitor) VisitChopFrame(f *ChopFrame)                 {}
func (b *BaseVisitor) VisitSameFrameExtended(f *SameFrameExtended) {}

func (b *BaseVisitor) VisitAppendFrame(f *AppendFrame) {
	v := b.visitor()
	for _, t := range f.Locals {
		t.Accept(v)
	}
}

func (b *BaseVisitor) VisitTopVariable(t *TopVariable)                             {}
func (b *BaseVisitor) VisitIntegerVariable(t *IntegerVariable)                     {}
func (b *BaseVisitor) VisitFloatVariable(t *FloatVariable)                         {}
func (b *BaseVisitor) VisitDoubleVariable(t *DoubleVariable)                       {}
func (b *BaseVisitor) VisitLongVariable(t *LongVariable)                           {}
func (b *BaseVisitor) VisitNullVariable(t *NullVariable)                           {}
func (b *BaseVisitor) VisitUninitializedThisVariable(t *UninitializedThisVariable) {}
func (b *BaseVisitor) VisitObjectVariable(t *ObjectVariable)                       {}
func (b *BaseVisitor) VisitUninitializedVariable(t *UninitializedVariable)         {}
