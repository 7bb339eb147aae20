package format

import (
	"encoding"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dhamidi/classreader/classfile"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(cf *classfile.ClassFile) error
}

var encoders = map[string]func(io.Writer) Encoder{
	"text": func(w io.Writer) Encoder { return NewTextPrinter(w) },
	"xml":  func(w io.Writer) Encoder { return NewXMLPrinter(w) },
	"json": func(w io.Writer) Encoder { return NewJSONEncoder(w) },
	"line": func(w io.Writer) Encoder { return NewLineEncoder(w) },
}

// New returns the encoder registered under name.
func New(name string, w io.Writer) (Encoder, error) {
	newEncoder, ok := encoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return newEncoder(w), nil
}

// Names lists the registered format names in sorted order.
func Names() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func classKind(cf *classfile.ClassFile) string {
	switch {
	case cf.IsAnnotation():
		return "annotation"
	case cf.IsEnum():
		return "enum"
	case cf.IsInterface():
		return "interface"
	case cf.IsModule():
		return "module"
	case cf.IsRecord():
		return "record"
	default:
		return "class"
	}
}

func visibility(flags classfile.AccessFlags) string {
	switch {
	case flags.IsPublic():
		return "public"
	case flags.IsProtected():
		return "protected"
	case flags.IsPrivate():
		return "private"
	default:
		return "package"
	}
}

func classModifiers(cf *classfile.ClassFile) []string {
	var mods []string
	if cf.AccessFlags.IsFinal() {
		mods = append(mods, "final")
	}
	if cf.AccessFlags.IsAbstract() && !cf.IsInterface() {
		mods = append(mods, "abstract")
	}
	if cf.AccessFlags.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	if _, ok := classfile.FindAttribute[*classfile.PermittedSubclassesAttribute](cf.Attributes); ok {
		mods = append(mods, "sealed")
	}
	if cf.IsDeprecated() {
		mods = append(mods, "deprecated")
	}
	return mods
}

func fieldModifiers(f *classfile.FieldInfo) []string {
	var mods []string
	if f.IsStatic() {
		mods = append(mods, "static")
	}
	if f.IsFinal() {
		mods = append(mods, "final")
	}
	if f.IsVolatile() {
		mods = append(mods, "volatile")
	}
	if f.IsTransient() {
		mods = append(mods, "transient")
	}
	if f.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	if f.IsEnum() {
		mods = append(mods, "enum")
	}
	return mods
}

func methodModifiers(m *classfile.MethodInfo) []string {
	var mods []string
	if m.IsStatic() {
		mods = append(mods, "static")
	}
	if m.IsFinal() {
		mods = append(mods, "final")
	}
	if m.IsAbstract() {
		mods = append(mods, "abstract")
	}
	if m.IsSynchronized() {
		mods = append(mods, "synchronized")
	}
	if m.IsNative() {
		mods = append(mods, "native")
	}
	if m.IsBridge() {
		mods = append(mods, "bridge")
	}
	if m.IsVarargs() {
		mods = append(mods, "varargs")
	}
	if m.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	return mods
}

// parameterTypes renders each declared parameter type in source form.
func parameterTypes(cp classfile.ConstantPool, m *classfile.MethodInfo) []string {
	md, err := m.ParsedDescriptor(cp)
	if err != nil {
		return nil
	}
	types := make([]string, len(md.Parameters))
	for i := range md.Parameters {
		types[i] = md.Parameters[i].String()
	}
	return types
}
