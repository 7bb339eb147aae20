package format

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/classreader/classfile"
)

// EscapeXML makes text safe as XML character data. Ampersands and angle
// brackets become entities. Any code point below U+0020 or above U+007E
// becomes a &#xHEX; reference, and the whole result is then wrapped in a
// CDATA section.
func EscapeXML(text string) string {
	var sb strings.Builder
	control := false
	for _, r := range text {
		switch {
		case r == '&':
			sb.WriteString("&amp;")
		case r == '<':
			sb.WriteString("&lt;")
		case r == '>':
			sb.WriteString("&gt;")
		case r < 0x20 || r > 0x7E:
			control = true
			fmt.Fprintf(&sb, "&#x%X;", r)
		default:
			sb.WriteRune(r)
		}
	}
	if control {
		return "<![CDATA[" + sb.String() + "]]>"
	}
	return sb.String()
}

// XMLPrinter writes one <classfile> element per class.
type XMLPrinter struct {
	classfile.BaseVisitor

	w      io.Writer
	sb     strings.Builder
	cf     *classfile.ClassFile
	indent int
}

func NewXMLPrinter(w io.Writer) *XMLPrinter {
	p := &XMLPrinter{w: w}
	p.Bind(p)
	return p
}

func (p *XMLPrinter) Encode(cf *classfile.ClassFile) error {
	p.sb.Reset()
	p.indent = 0
	p.sb.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\" ?>\n")
	cf.Accept(p)
	_, err := io.WriteString(p.w, p.sb.String())
	return err
}

// MarshalText returns what the last Encode wrote.
func (p *XMLPrinter) MarshalText() ([]byte, error) {
	return []byte(p.sb.String()), nil
}

func (p *XMLPrinter) line(format string, args ...any) {
	p.sb.WriteString(strings.Repeat("    ", p.indent))
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *XMLPrinter) open(format string, args ...any) {
	p.line("<"+format+">", args...)
	p.indent++
}

func (p *XMLPrinter) close(tag string) {
	p.indent--
	p.line("</%s>", tag)
}

func (p *XMLPrinter) text(tag, value string) {
	p.line("<%s>%s</%s>", tag, EscapeXML(value), tag)
}

func (p *XMLPrinter) cp() classfile.ConstantPool { return p.cf.ConstantPool }

func (p *XMLPrinter) VisitClassFile(cf *classfile.ClassFile) {
	p.cf = cf
	p.open(`classfile magic-number="0x%08X" minor-version="%d" major-version="%d" access-flags="0x%04X"`,
		classfile.Magic, cf.MinorVersion, cf.MajorVersion, uint16(cf.AccessFlags))

	p.open("constant-pool")
	cf.ConstantPool.Accept(p)
	p.close("constant-pool")

	p.text("declaration", cf.Declaration())
	p.text("this-class", cf.ClassName())
	if cf.HasSuperClass() {
		p.text("superclass", cf.SuperClassName())
	}
	if names := cf.InterfaceNames(); len(names) > 0 {
		p.open("interfaces")
		for _, name := range names {
			p.text("class", name)
		}
		p.close("interfaces")
	}

	if len(cf.Fields) > 0 {
		p.open("fields")
		for i := range cf.Fields {
			cf.Fields[i].Accept(p)
		}
		p.close("fields")
	}
	if len(cf.Methods) > 0 {
		p.open("methods")
		for i := range cf.Methods {
			cf.Methods[i].Accept(p)
		}
		p.close("methods")
	}
	p.attributes(cf.Attributes)

	p.close("classfile")
}

func (p *XMLPrinter) entry(tag string, value string) {
	p.line(`<%s index="%d">%s</%s>`, tag, p.CurrentIndex(), EscapeXML(value), tag)
}

func (p *XMLPrinter) VisitUtf8(c *classfile.ConstantUtf8Info) {
	p.entry("utf8-info", c.Value)
}

func (p *XMLPrinter) VisitInteger(c *classfile.ConstantIntegerInfo) {
	p.entry("integer-info", entryText(p.cp(), c))
}

func (p *XMLPrinter) VisitFloat(c *classfile.ConstantFloatInfo) {
	p.entry("float-info", entryText(p.cp(), c))
}

func (p *XMLPrinter) VisitLong(c *classfile.ConstantLongInfo) {
	p.entry("long-info", entryText(p.cp(), c))
}

func (p *XMLPrinter) VisitDouble(c *classfile.ConstantDoubleInfo) {
	p.entry("double-info", entryText(p.cp(), c))
}

func (p *XMLPrinter) VisitClass(c *classfile.ConstantClassInfo) {
	p.entry("class-info", entryText(p.cp(), c))
}

func (p *XMLPrinter) VisitString(c *classfile.ConstantStringInfo) {
	p.entry("string-info", entryText(p.cp(), c))
}

func (p *XMLPrinter) VisitFieldref(c *classfile.ConstantFieldrefInfo) {
	p.entry("field-ref-info", entryText(p.cp(), c))
}

func (p *XMLPrinter) VisitMethodref(c *classfile.ConstantMethodrefInfo) {
	p.entry("method-ref-info", entryText(p.cp(), c))
}

func (p *XMLPrinter) VisitInterfaceMethodref(c *classfile.ConstantInterfaceMethodrefInfo) {
	p.entry("interface-method-ref-info", entryText(p.cp(), c))
}

func (p *XMLPrinter) VisitNameAndType(c *classfile.ConstantNameAndTypeInfo) {
	p.entry("name-and-type-info", entryText(p.cp(), c))
}

func (p *XMLPrinter) VisitMethodHandle(c *classfile.ConstantMethodHandleInfo) {
	p.entry("method-handle-info", entryText(p.cp(), c))
}

func (p *XMLPrinter) VisitMethodType(c *classfile.ConstantMethodTypeInfo) {
	p.entry("method-type-info", entryText(p.cp(), c))
}

func (p *XMLPrinter) VisitDynamic(c *classfile.ConstantDynamicInfo) {
	p.entry("dynamic-info", entryText(p.cp(), c))
}

func (p *XMLPrinter) VisitInvokeDynamic(c *classfile.ConstantInvokeDynamicInfo) {
	p.entry("invoke-dynamic-info", entryText(p.cp(), c))
}

func (p *XMLPrinter) VisitModule(c *classfile.ConstantModuleInfo) {
	p.entry("module-info", entryText(p.cp(), c))
}

func (p *XMLPrinter) VisitPackage(c *classfile.ConstantPackageInfo) {
	p.entry("package-info", entryText(p.cp(), c))
}

func (p *XMLPrinter) VisitField(f *classfile.FieldInfo) {
	p.open(`field-info access-flags="0x%04X"`, uint16(f.AccessFlags))
	p.text("name", f.Name(p.cp()))
	p.text("type", f.Type(p.cp()))
	p.text("declaration", f.Declaration(p.cp()))
	p.attributes(f.Attributes)
	p.close("field-info")
}

func (p *XMLPrinter) VisitMethod(m *classfile.MethodInfo) {
	p.open(`method-info access-flags="0x%04X"`, uint16(m.AccessFlags))
	p.text("name", m.Name(p.cp()))
	p.text("signature", signatureText(m.Signature(p.cp())))
	if !m.IsConstructor(p.cp()) && !m.IsStaticInitializer(p.cp()) {
		p.text("return-type", m.ReturnType(p.cp()))
	}
	p.text("declaration", m.Declaration(p.cf))
	p.attributes(m.Attributes)
	p.close("method-info")
}

// attributes lists attrs. Attributes without a dedicated element are
// listed by name.
func (p *XMLPrinter) attributes(attrs []classfile.Attribute) {
	if len(attrs) == 0 {
		return
	}
	p.open("attributes")
	for _, a := range attrs {
		mark := p.sb.Len()
		a.Accept(p)
		if p.sb.Len() == mark {
			p.line(`<attribute name="%s"/>`, EscapeXML(a.Name()))
		}
	}
	p.close("attributes")
}

func (p *XMLPrinter) VisitConstantValueAttribute(a *classfile.ConstantValueAttribute) {
	p.text("constant-value-attribute", constantText(p.cp(), a.ValueIndex))
}

func (p *XMLPrinter) VisitCodeAttribute(a *classfile.CodeAttribute) {
	p.open(`code-attribute max-stack="%d" max-locals="%d" length="%d"`, a.MaxStack, a.MaxLocals, len(a.Code))
	if instructions, err := a.Instructions(); err == nil && len(instructions) > 0 {
		p.open("instructions")
		for i := range instructions {
			instructions[i].Accept(p)
		}
		p.close("instructions")
	}
	if len(a.ExceptionHandlers) > 0 {
		p.open("exception-handlers")
		for i := range a.ExceptionHandlers {
			a.ExceptionHandlers[i].Accept(p)
		}
		p.close("exception-handlers")
	}
	p.attributes(a.Attributes)
	p.close("code-attribute")
}

func (p *XMLPrinter) VisitInstruction(in *classfile.Instruction) {
	text := in.Mnemonic()
	switch {
	case in.UsesConstantPool():
		text += " " + constantText(p.cp(), uint16(in.Index))
	case in.IsBranch():
		text += fmt.Sprintf(" %d", in.Target())
	case in.Switch != nil:
		text += " " + switchText(in)
	}
	p.line(`<instruction pc="%d" length="%d">%s</instruction>`, in.Start, in.Length(), EscapeXML(text))
}

func (p *XMLPrinter) VisitExceptionHandler(h *classfile.ExceptionHandler) {
	catchType := ""
	if h.HasCatchType() {
		catchType = constantText(p.cp(), h.CatchType)
	}
	p.line(`<exception-handler start-pc="%d" end-pc="%d" handler-pc="%d">%s</exception-handler>`,
		h.StartPC, h.EndPC, h.HandlerPC, EscapeXML(catchType))
}

func (p *XMLPrinter) VisitExceptionsAttribute(a *classfile.ExceptionsAttribute) {
	p.open("exceptions-attribute")
	for _, index := range a.ExceptionIndexTable {
		p.text("exception", constantText(p.cp(), index))
	}
	p.close("exceptions-attribute")
}

func (p *XMLPrinter) VisitSourceFileAttribute(a *classfile.SourceFileAttribute) {
	p.text("source-file-attribute", a.SourceFile(p.cp()))
}

func (p *XMLPrinter) VisitSignatureAttribute(a *classfile.SignatureAttribute) {
	p.text("signature-attribute", a.Signature(p.cp()))
}

func (p *XMLPrinter) VisitDeprecatedAttribute(a *classfile.DeprecatedAttribute) {
	p.line("<deprecated-attribute/>")
}

func (p *XMLPrinter) VisitSyntheticAttribute(a *classfile.SyntheticAttribute) {
	p.line("<synthetic-attribute/>")
}

func (p *XMLPrinter) VisitLineNumberTableAttribute(a *classfile.LineNumberTableAttribute) {
	p.open("line-number-table-attribute")
	for _, ln := range a.LineNumbers {
		p.line(`<line-number pc="%d" line="%d"/>`, ln.StartPC, ln.LineNumber)
	}
	p.close("line-number-table-attribute")
}

func (p *XMLPrinter) VisitLocalVariableTableAttribute(a *classfile.LocalVariableTableAttribute) {
	p.open("local-variable-table-attribute")
	for i := range a.LocalVariables {
		lv := &a.LocalVariables[i]
		p.line(`<local-variable pc="%d" length="%d" index="%d">%s</local-variable>`,
			lv.StartPC, lv.Length, lv.Index, EscapeXML(lv.Name(p.cp())))
	}
	p.close("local-variable-table-attribute")
}

func (p *XMLPrinter) VisitCustomAttribute(a *classfile.CustomAttribute) {
	p.line(`<custom-attribute name="%s">%s</custom-attribute>`,
		EscapeXML(a.Name()), strings.ToUpper(hex.EncodeToString(a.Info)))
}
