package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/classreader/classfile"
)

// TextPrinter disassembles a class: the constant pool, the declaration, then
// every field and method with its bytecode.
type TextPrinter struct {
	classfile.BaseVisitor

	w    io.Writer
	sb   strings.Builder
	cf   *classfile.ClassFile
	code *classfile.CodeAttribute
}

func NewTextPrinter(w io.Writer) *TextPrinter {
	p := &TextPrinter{w: w}
	p.Bind(p)
	return p
}

func (p *TextPrinter) Encode(cf *classfile.ClassFile) error {
	p.sb.Reset()
	cf.Accept(p)
	_, err := io.WriteString(p.w, p.sb.String())
	return err
}

// MarshalText returns what the last Encode wrote.
func (p *TextPrinter) MarshalText() ([]byte, error) {
	return []byte(p.sb.String()), nil
}

func (p *TextPrinter) printf(format string, args ...any) {
	fmt.Fprintf(&p.sb, format, args...)
}

func (p *TextPrinter) eol() {
	p.sb.WriteByte('\n')
}

func (p *TextPrinter) VisitClassFile(cf *classfile.ClassFile) {
	p.cf = cf
	cf.ConstantPool.Accept(p)
	p.eol()

	p.printf("%s {\n", cf.Declaration())
	for i := range cf.Fields {
		cf.Fields[i].Accept(p)
	}
	for i := range cf.Methods {
		cf.Methods[i].Accept(p)
	}
	p.printf("}\n")
}

func (p *TextPrinter) entry(label, text string) {
	p.printf("%d: %s%s\n", p.CurrentIndex(), label, text)
}

func (p *TextPrinter) cp() classfile.ConstantPool { return p.cf.ConstantPool }

func (p *TextPrinter) VisitUtf8(c *classfile.ConstantUtf8Info) {
	p.entry("", strconv.Quote(c.Value))
}

func (p *TextPrinter) VisitInteger(c *classfile.ConstantIntegerInfo) {
	p.entry("Integer ", entryText(p.cp(), c))
}

func (p *TextPrinter) VisitFloat(c *classfile.ConstantFloatInfo) {
	p.entry("Float ", entryText(p.cp(), c))
}

func (p *TextPrinter) VisitLong(c *classfile.ConstantLongInfo) {
	p.entry("Long ", entryText(p.cp(), c))
}

func (p *TextPrinter) VisitDouble(c *classfile.ConstantDoubleInfo) {
	p.entry("Double ", entryText(p.cp(), c))
}

func (p *TextPrinter) VisitClass(c *classfile.ConstantClassInfo) {
	p.entry("Class ", entryText(p.cp(), c))
}

func (p *TextPrinter) VisitString(c *classfile.ConstantStringInfo) {
	p.entry("String ", strconv.Quote(entryText(p.cp(), c)))
}

func (p *TextPrinter) VisitFieldref(c *classfile.ConstantFieldrefInfo) {
	p.entry("Field ", entryText(p.cp(), c))
}

func (p *TextPrinter) VisitMethodref(c *classfile.ConstantMethodrefInfo) {
	p.entry("Method ", entryText(p.cp(), c))
}

func (p *TextPrinter) VisitInterfaceMethodref(c *classfile.ConstantInterfaceMethodrefInfo) {
	p.entry("Interface Method ", entryText(p.cp(), c))
}

func (p *TextPrinter) VisitNameAndType(c *classfile.ConstantNameAndTypeInfo) {
	p.entry("Name and Type ", entryText(p.cp(), c))
}

func (p *TextPrinter) VisitMethodHandle(c *classfile.ConstantMethodHandleInfo) {
	p.entry("Method Handle ", entryText(p.cp(), c))
}

func (p *TextPrinter) VisitMethodType(c *classfile.ConstantMethodTypeInfo) {
	p.entry("Method Type ", entryText(p.cp(), c))
}

func (p *TextPrinter) VisitDynamic(c *classfile.ConstantDynamicInfo) {
	p.entry("Dynamic ", fmt.Sprintf("%d %s", c.BootstrapMethodAttrIndex, entryText(p.cp(), c)))
}

func (p *TextPrinter) VisitInvokeDynamic(c *classfile.ConstantInvokeDynamicInfo) {
	p.entry("Invoke Dynamic ", fmt.Sprintf("%d %s", c.BootstrapMethodAttrIndex, entryText(p.cp(), c)))
}

func (p *TextPrinter) VisitModule(c *classfile.ConstantModuleInfo) {
	p.entry("Module ", entryText(p.cp(), c))
}

func (p *TextPrinter) VisitPackage(c *classfile.ConstantPackageInfo) {
	p.entry("Package ", entryText(p.cp(), c))
}

func (p *TextPrinter) VisitField(f *classfile.FieldInfo) {
	p.printf("    %s;\n", f.Declaration(p.cp()))
}

// VisitMethod prints the declaration and, unless the method is abstract or
// native, its code.
func (p *TextPrinter) VisitMethod(m *classfile.MethodInfo) {
	p.eol()
	p.printf("    %s", m.Declaration(p.cf))
	if !m.IsStaticInitializer(p.cp()) {
		p.printf(";")
	}
	p.eol()

	if m.IsAbstract() || m.IsNative() {
		return
	}
	if code := m.Code(); code != nil {
		code.Accept(p)
	}
}

func (p *TextPrinter) VisitCodeAttribute(a *classfile.CodeAttribute) {
	p.code = a
	defer func() { p.code = nil }()

	p.printf("        CODE\n")
	if instructions, err := a.Instructions(); err == nil {
		for i := range instructions {
			instructions[i].Accept(p)
		}
	}
	if len(a.ExceptionHandlers) > 0 {
		p.printf("        EXCEPTION HANDLING\n")
		for i := range a.ExceptionHandlers {
			a.ExceptionHandlers[i].Accept(p)
		}
	}
}

func (p *TextPrinter) VisitInstruction(in *classfile.Instruction) {
	p.printf("        %d:\t%s", in.Start, in.Mnemonic())

	switch in.Shape() {
	case classfile.ShapeInvokeDynamic:
		name, _ := p.cp().GetNameAndType(p.invokeDynamicNameAndType(in))
		p.printf(" %s", name)
	case classfile.ShapeBranch, classfile.ShapeBranchWide:
		p.printf(" %d (%+d)", in.Target(), in.Offset)
	case classfile.ShapeTableSwitch, classfile.ShapeLookupSwitch:
		p.printf(" %s", switchText(in))
	}
	if in.UsesConstantPool() && in.Shape() != classfile.ShapeInvokeDynamic {
		p.printf(" %s", constantText(p.cp(), uint16(in.Index)))
	}
	if in.UsesLocal() {
		p.localVariable(in)
	}
	switch in.Shape() {
	case classfile.ShapeByteValue, classfile.ShapeShortValue, classfile.ShapeIinc:
		p.printf(" %d", in.Value)
	}
	p.eol()
}

func (p *TextPrinter) invokeDynamicNameAndType(in *classfile.Instruction) uint16 {
	entry, err := p.cp().Resolve(uint16(in.Index))
	if err != nil {
		return 0
	}
	switch e := entry.(type) {
	case *classfile.ConstantInvokeDynamicInfo:
		return e.NameAndTypeIndex
	case *classfile.ConstantDynamicInfo:
		return e.NameAndTypeIndex
	}
	return 0
}

// localVariable appends the slot's declared type and name when a
// LocalVariableTable covers the instruction. Stores are looked up just past
// the instruction, where the variable's scope begins.
func (p *TextPrinter) localVariable(in *classfile.Instruction) {
	if p.code != nil {
		var lv *classfile.LocalVariable
		if strings.Contains(in.Mnemonic(), "store") {
			lv = storedVariable(p.code, in.Index, in.Start+in.Length())
		}
		if lv == nil {
			lv = p.code.LocalVariableAt(in.Index, in.Start)
		}
		if lv != nil {
			t, err := classfile.ConvertType(lv.Descriptor(p.cp()))
			if err != nil {
				t = lv.Descriptor(p.cp())
			}
			p.printf(" %s %s", t, lv.Name(p.cp()))
		}
	}
	if in.Shape() != classfile.ShapeImplicitLocal {
		p.printf(" (#%d)", in.Index)
	}
}

// storedVariable finds the variable in slot index whose scope begins at pc,
// or else one whose scope contains pc, counting the end of the scope. A
// value stored and never read gets a scope of length zero, which
// LocalVariableAt does not match.
func storedVariable(code *classfile.CodeAttribute, index, pc int) *classfile.LocalVariable {
	var found *classfile.LocalVariable
	for _, attr := range code.Attributes {
		table, ok := attr.(*classfile.LocalVariableTableAttribute)
		if !ok {
			continue
		}
		for i := range table.LocalVariables {
			lv := &table.LocalVariables[i]
			if int(lv.Index) != index {
				continue
			}
			start := int(lv.StartPC)
			if start == pc {
				return lv
			}
			if found == nil && pc > start && pc <= start+int(lv.Length) {
				found = lv
			}
		}
	}
	return found
}

func switchText(in *classfile.Instruction) string {
	if in.Switch == nil {
		return ""
	}
	parts := []string{fmt.Sprintf("default:%d", in.Start+int(in.Switch.Default))}
	for _, c := range in.Switch.Cases {
		parts = append(parts, fmt.Sprintf("%d:%d", c.Match, in.Start+int(c.Offset)))
	}
	return strings.Join(parts, " | ")
}

func (p *TextPrinter) VisitExceptionHandler(h *classfile.ExceptionHandler) {
	p.printf("        %d-%d: %d", h.StartPC, h.EndPC, h.HandlerPC)
	if h.HasCatchType() {
		p.printf(" (%s)", constantText(p.cp(), h.CatchType))
	}
	p.eol()
}
