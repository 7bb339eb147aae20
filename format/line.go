package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/classreader/classfile"
)

// LineEncoder writes one tab separated record per class, field, method and
// record component. Empty lists are written as "-".
type LineEncoder struct {
	w     io.Writer
	class *classfile.ClassFile
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(class *classfile.ClassFile) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	c := e.class
	cp := c.ConstantPool

	mods := append([]string{visibility(c.AccessFlags)}, classModifiers(c)...)
	fmt.Fprintf(&sb, "%s\t%s\t%s\n", classKind(c), c.ClassName(), joinOrDash(mods))

	for i := range c.Fields {
		f := &c.Fields[i]
		fmt.Fprintf(&sb, "field\t%s\t%s\t%s\t%s\n",
			f.Name(cp),
			f.Type(cp),
			visibility(f.AccessFlags),
			joinOrDash(fieldModifiers(f)),
		)
	}

	for i := range c.Methods {
		m := &c.Methods[i]
		returnType := "-"
		if !m.IsConstructor(cp) && !m.IsStaticInitializer(cp) {
			returnType = m.ReturnType(cp)
		}
		fmt.Fprintf(&sb, "method\t%s\t%s\t%s\t%s\t%s\n",
			m.Name(cp),
			returnType,
			joinOrDash(parameterTypes(cp, m)),
			visibility(m.AccessFlags),
			joinOrDash(methodModifiers(m)),
		)
	}

	if record, ok := classfile.FindAttribute[*classfile.RecordAttribute](c.Attributes); ok {
		for i := range record.Components {
			rc := &record.Components[i]
			t, err := classfile.ConvertType(rc.Descriptor(cp))
			if err != nil {
				t = rc.Descriptor(cp)
			}
			fmt.Fprintf(&sb, "component\t%s\t%s\n", rc.Name(cp), t)
		}
	}

	return []byte(sb.String()), nil
}

func joinOrDash(parts []string) string {
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
