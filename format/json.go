package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/classreader/classfile"
)

type JSONEncoder struct {
	w     io.Writer
	class *classfile.ClassFile
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(class *classfile.ClassFile) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data := e.buildClassData()
	return json.MarshalIndent(data, "", "  ")
}

type jsonClass struct {
	Name       string       `json:"name"`
	SimpleName string       `json:"simpleName"`
	Package    string       `json:"package"`
	SuperClass string       `json:"superClass,omitempty"`
	Interfaces []string     `json:"interfaces,omitempty"`
	Visibility string       `json:"visibility"`
	Kind       string       `json:"kind"`
	Modifiers  []string     `json:"modifiers,omitempty"`
	SourceFile string       `json:"sourceFile,omitempty"`
	Version    jsonVersion  `json:"version"`
	Fields     []jsonField  `json:"fields,omitempty"`
	Methods    []jsonMethod `json:"methods,omitempty"`
	Components []jsonField  `json:"components,omitempty"`
}

type jsonVersion struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
}

type jsonField struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Visibility string   `json:"visibility,omitempty"`
	Modifiers  []string `json:"modifiers,omitempty"`
}

type jsonMethod struct {
	Name       string   `json:"name"`
	ReturnType string   `json:"returnType,omitempty"`
	Parameters []string `json:"parameters,omitempty"`
	Exceptions []string `json:"exceptions,omitempty"`
	Visibility string   `json:"visibility"`
	Modifiers  []string `json:"modifiers,omitempty"`
}

func (e *JSONEncoder) buildClassData() jsonClass {
	c := e.class
	return jsonClass{
		Name:       c.ClassName(),
		SimpleName: c.SimpleName(),
		Package:    c.PackageName(),
		SuperClass: c.SuperClassName(),
		Interfaces: c.InterfaceNames(),
		Visibility: visibility(c.AccessFlags),
		Kind:       classKind(c),
		Modifiers:  classModifiers(c),
		SourceFile: c.SourceFile(),
		Version: jsonVersion{
			Major: c.MajorVersion,
			Minor: c.MinorVersion,
		},
		Fields:     e.buildFields(),
		Methods:    e.buildMethods(),
		Components: e.buildComponents(),
	}
}

func (e *JSONEncoder) buildFields() []jsonField {
	cp := e.class.ConstantPool
	fields := e.class.Fields
	result := make([]jsonField, len(fields))
	for i := range fields {
		f := &fields[i]
		result[i] = jsonField{
			Name:       f.Name(cp),
			Type:       f.Type(cp),
			Visibility: visibility(f.AccessFlags),
			Modifiers:  fieldModifiers(f),
		}
	}
	return result
}

func (e *JSONEncoder) buildMethods() []jsonMethod {
	cp := e.class.ConstantPool
	methods := e.class.Methods
	result := make([]jsonMethod, len(methods))
	for i := range methods {
		m := &methods[i]
		jm := jsonMethod{
			Name:       m.Name(cp),
			Parameters: parameterTypes(cp, m),
			Exceptions: m.Exceptions(cp),
			Visibility: visibility(m.AccessFlags),
			Modifiers:  methodModifiers(m),
		}
		if !m.IsConstructor(cp) && !m.IsStaticInitializer(cp) {
			jm.ReturnType = m.ReturnType(cp)
		}
		result[i] = jm
	}
	return result
}

// buildComponents lists record components; they have no access flags of
// their own.
func (e *JSONEncoder) buildComponents() []jsonField {
	cp := e.class.ConstantPool
	record, ok := classfile.FindAttribute[*classfile.RecordAttribute](e.class.Attributes)
	if !ok {
		return nil
	}
	result := make([]jsonField, len(record.Components))
	for i := range record.Components {
		rc := &record.Components[i]
		t, err := classfile.ConvertType(rc.Descriptor(cp))
		if err != nil {
			t = rc.Descriptor(cp)
		}
		result[i] = jsonField{Name: rc.Name(cp), Type: t}
	}
	return result
}
