package classfile

import (
	"strconv"
	"strings"
)

type FieldType struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

func (ft *FieldType) String() string {
	var sb strings.Builder
	if ft.BaseType != "" {
		sb.WriteString(ft.BaseType)
	} else if ft.ClassName != "" {
		sb.WriteString(InternalToSourceName(ft.ClassName))
	}
	for i := 0; i < ft.ArrayDepth; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

func (ft *FieldType) IsArray() bool {
	return ft.ArrayDepth > 0
}

func (ft *FieldType) IsPrimitive() bool {
	return ft.BaseType != "" && ft.ArrayDepth == 0
}

func (ft *FieldType) IsReference() bool {
	return ft.ClassName != "" || ft.ArrayDepth > 0
}

type MethodDescriptor struct {
	Parameters []FieldType
	ReturnType *FieldType // nil for void
}

func (md *MethodDescriptor) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for i, p := range md.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(")")
	if md.ReturnType != nil {
		sb.WriteString(" ")
		sb.WriteString(md.ReturnType.String())
	} else {
		sb.WriteString(" void")
	}
	return sb.String()
}

func ParseFieldDescriptor(desc string) (*FieldType, error) {
	ft, n, err := parseFieldType(desc, 0)
	if err != nil {
		return nil, err
	}
	if n != len(desc) {
		return nil, descriptorError(desc, n, "trailing characters")
	}
	return ft, nil
}

func ParseMethodDescriptor(desc string) (*MethodDescriptor, error) {
	if len(desc) == 0 || desc[0] != '(' {
		return nil, descriptorError(desc, 0, "expected '('")
	}

	md := &MethodDescriptor{}
	i := 1

	for i < len(desc) && desc[i] != ')' {
		ft, consumed, err := parseFieldType(desc, i)
		if err != nil {
			return nil, err
		}
		md.Parameters = append(md.Parameters, *ft)
		i += consumed
	}

	if i >= len(desc) {
		return nil, descriptorError(desc, i, "expected ')'")
	}
	i++

	if i < len(desc) && desc[i] == 'V' && i+1 == len(desc) {
		return md, nil
	}
	ft, consumed, err := parseFieldType(desc, i)
	if err != nil {
		return nil, err
	}
	if i+consumed != len(desc) {
		return nil, descriptorError(desc, i+consumed, "trailing characters")
	}
	md.ReturnType = ft
	return md, nil
}

var baseTypes = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

func parseFieldType(desc string, start int) (*FieldType, int, error) {
	ft := &FieldType{}
	i := start

	for i < len(desc) && desc[i] == '[' {
		ft.ArrayDepth++
		i++
	}

	if i >= len(desc) {
		return nil, 0, descriptorError(desc, i, "unexpected end")
	}

	if base, ok := baseTypes[desc[i]]; ok {
		ft.BaseType = base
		return ft, i - start + 1, nil
	}
	if desc[i] != 'L' {
		return nil, 0, descriptorError(desc, i, "unknown type code %q", desc[i])
	}
	semicolon := strings.IndexByte(desc[i:], ';')
	if semicolon == -1 {
		return nil, 0, descriptorError(desc, i, "unterminated class name")
	}
	if semicolon == 1 {
		return nil, 0, descriptorError(desc, i, "empty class name")
	}
	ft.ClassName = desc[i+1 : i+semicolon]
	return ft, i - start + semicolon + 1, nil
}

func descriptorError(desc string, pos int, msg string, args ...any) *DecodeError {
	e := newError(KindDescriptor).offset(pos).detail(msg, args...).build()
	e.Detail += " in " + strconv.Quote(desc)
	return e
}

// sigParser walks both plain descriptors and generic signatures.
type sigParser struct {
	s   string
	pos int
}

func (p *sigParser) fail(msg string, args ...any) error {
	return descriptorError(p.s, p.pos, msg, args...)
}

func (p *sigParser) peek() byte {
	if p.pos < len(p.s) {
		return p.s[p.pos]
	}
	return 0
}

// skipTypeParameters consumes a leading <T:...;U::...;> block.
func (p *sigParser) skipTypeParameters() error {
	if p.peek() != '<' {
		return nil
	}
	p.pos++
	for p.peek() != '>' {
		if p.pos >= len(p.s) {
			return p.fail("unterminated type parameters")
		}
		colon := strings.IndexByte(p.s[p.pos:], ':')
		if colon <= 0 {
			return p.fail("malformed type parameter")
		}
		p.pos += colon
		for p.peek() == ':' {
			p.pos++
			if c := p.peek(); c == ':' || c == '>' {
				continue
			}
			if p.peek() == 0 {
				return p.fail("unterminated type parameters")
			}
			if _, err := p.referenceType(); err != nil {
				return err
			}
		}
	}
	p.pos++
	return nil
}

// javaType parses one type and returns its source-level rendering.
func (p *sigParser) javaType() (string, error) {
	dims := 0
	for p.peek() == '[' {
		dims++
		p.pos++
	}
	c := p.peek()
	var base string
	if name, ok := baseTypes[c]; ok {
		base = name
		p.pos++
	} else if c == 0 {
		return "", p.fail("unexpected end")
	} else {
		t, err := p.referenceType()
		if err != nil {
			return "", err
		}
		base = t
	}
	return base + strings.Repeat("[]", dims), nil
}

func (p *sigParser) referenceType() (string, error) {
	switch p.peek() {
	case 'L':
		return p.classType()
	case 'T':
		end := strings.IndexByte(p.s[p.pos:], ';')
		if end < 0 {
			return "", p.fail("unterminated type variable")
		}
		if end == 1 {
			return "", p.fail("empty type variable")
		}
		name := p.s[p.pos+1 : p.pos+end]
		p.pos += end + 1
		return name, nil
	case '[':
		return p.javaType()
	case 0:
		return "", p.fail("unexpected end")
	default:
		return "", p.fail("unknown type code %q", p.peek())
	}
}

func (p *sigParser) classType() (string, error) {
	p.pos++ // 'L'
	var sb strings.Builder
	start := p.pos
	for {
		if p.pos >= len(p.s) {
			return "", descriptorError(p.s, start-1, "unterminated class name")
		}
		switch c := p.s[p.pos]; c {
		case ';':
			if p.pos == start {
				return "", p.fail("empty class name")
			}
			p.pos++
			return sb.String(), nil
		case '<':
			p.pos++
			args, err := p.typeArguments()
			if err != nil {
				return "", err
			}
			sb.WriteString("<" + strings.Join(args, ", ") + ">")
		case '/', '.':
			sb.WriteByte('.')
			p.pos++
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
}

func (p *sigParser) typeArguments() ([]string, error) {
	var args []string
	for p.peek() != '>' {
		switch p.peek() {
		case 0:
			return nil, p.fail("unterminated type arguments")
		case '*':
			p.pos++
			args = append(args, "?")
		case '+':
			p.pos++
			t, err := p.referenceType()
			if err != nil {
				return nil, err
			}
			args = append(args, "? extends "+t)
		case '-':
			p.pos++
			t, err := p.referenceType()
			if err != nil {
				return nil, err
			}
			args = append(args, "? super "+t)
		default:
			t, err := p.referenceType()
			if err != nil {
				return nil, err
			}
			args = append(args, t)
		}
	}
	p.pos++
	return args, nil
}

// parameters parses the "(...)" section and leaves the cursor on the
// return type.
func (p *sigParser) parameters() ([]string, error) {
	if err := p.skipTypeParameters(); err != nil {
		return nil, err
	}
	if p.peek() != '(' {
		return nil, p.fail("expected '('")
	}
	p.pos++
	var params []string
	for p.peek() != ')' {
		if p.pos >= len(p.s) {
			return nil, p.fail("expected ')'")
		}
		t, err := p.javaType()
		if err != nil {
			return nil, err
		}
		params = append(params, t)
	}
	p.pos++
	return params, nil
}

func (p *sigParser) returnType() (string, error) {
	if p.peek() == 'V' {
		p.pos++
		return "void", nil
	}
	return p.javaType()
}

// method parses a whole method descriptor or signature: parameters, the
// return type and any throws clauses, up to the end of the input.
func (p *sigParser) method() (params []string, ret string, err error) {
	if params, err = p.parameters(); err != nil {
		return nil, "", err
	}
	if ret, err = p.returnType(); err != nil {
		return nil, "", err
	}
	for p.peek() == '^' {
		p.pos++
		if _, err := p.referenceType(); err != nil {
			return nil, "", err
		}
	}
	if p.pos != len(p.s) {
		return nil, "", p.fail("trailing characters")
	}
	return params, ret, nil
}

// Signature renders the parameter list of a method descriptor or generic
// method signature: "(II)V" becomes "(int, int)".
func Signature(descriptor string) (string, error) {
	params, _, err := (&sigParser{s: descriptor}).method()
	if err != nil {
		return "", err
	}
	return "(" + strings.Join(params, ", ") + ")", nil
}

// ParameterCount returns the number of declared parameters.
func ParameterCount(descriptor string) (int, error) {
	params, _, err := (&sigParser{s: descriptor}).method()
	if err != nil {
		return 0, err
	}
	return len(params), nil
}

// ReturnType renders the return type of a method descriptor, "void" for V.
func ReturnType(descriptor string) (string, error) {
	_, ret, err := (&sigParser{s: descriptor}).method()
	if err != nil {
		return "", err
	}
	return ret, nil
}

// ConvertType renders a single field descriptor or field signature:
// "[I" becomes "int[]", "TT;" becomes "T".
func ConvertType(descriptor string) (string, error) {
	p := &sigParser{s: descriptor}
	if descriptor == "V" {
		return "void", nil
	}
	t, err := p.javaType()
	if err != nil {
		return "", err
	}
	if p.pos != len(p.s) {
		return "", p.fail("trailing characters")
	}
	return t, nil
}

// ClassDisplayName converts the name held by a Class constant to source
// form. Array classes are named by descriptor there.
func ClassDisplayName(internal string) string {
	if strings.HasPrefix(internal, "[") {
		if t, err := ConvertType(internal); err == nil {
			return t
		}
	}
	return InternalToSourceName(internal)
}

func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
