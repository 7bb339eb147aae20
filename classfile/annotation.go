package classfile

type Annotation struct {
	TypeIndex uint16
	Pairs     []ElementValuePair
}

func (a *Annotation) Accept(v Visitor) { v.VisitAnnotation(a) }

// Type returns the annotation type in source form.
func (a *Annotation) Type(cp ConstantPool) string {
	t, err := ConvertType(cp.GetUtf8(a.TypeIndex))
	if err != nil {
		return cp.GetUtf8(a.TypeIndex)
	}
	return t
}

type ElementValuePair struct {
	NameIndex uint16
	Value     ElementValue
}

func (p *ElementValuePair) Accept(v Visitor) { v.VisitElementValuePair(p) }

func (p *ElementValuePair) Name(cp ConstantPool) string {
	return cp.GetUtf8(p.NameIndex)
}

// ElementValue is one of ConstElementValue, EnumElementValue,
// ClassElementValue, AnnotationElementValue or ArrayElementValue.
type ElementValue interface {
	Tag() byte
	Accept(v Visitor)
	isElementValue()
}

// ConstElementValue covers the primitive tags B C D F I J S Z and the
// string tag s.
type ConstElementValue struct {
	ValueTag   byte
	ConstIndex uint16
}

func (e *ConstElementValue) Tag() byte        { return e.ValueTag }
func (e *ConstElementValue) Accept(v Visitor) { v.VisitConstElementValue(e) }
func (*ConstElementValue) isElementValue()    {}

type EnumElementValue struct {
	TypeNameIndex  uint16
	ConstNameIndex uint16
}

func (e *EnumElementValue) Tag() byte        { return 'e' }
func (e *EnumElementValue) Accept(v Visitor) { v.VisitEnumElementValue(e) }
func (*EnumElementValue) isElementValue()    {}

type ClassElementValue struct {
	ClassInfoIndex uint16
}

func (e *ClassElementValue) Tag() byte        { return 'c' }
func (e *ClassElementValue) Accept(v Visitor) { v.VisitClassElementValue(e) }
func (*ClassElementValue) isElementValue()    {}

type AnnotationElementValue struct {
	Annotation Annotation
}

func (e *AnnotationElementValue) Tag() byte        { return '@' }
func (e *AnnotationElementValue) Accept(v Visitor) { v.VisitAnnotationElementValue(e) }
func (*AnnotationElementValue) isElementValue()    {}

type ArrayElementValue struct {
	Values []ElementValue
}

func (e *ArrayElementValue) Tag() byte        { return '[' }
func (e *ArrayElementValue) Accept(v Visitor) { v.VisitArrayElementValue(e) }
func (*ArrayElementValue) isElementValue()    {}

// ParameterAnnotations holds the annotations of one formal parameter.
type ParameterAnnotations struct {
	Annotations []Annotation
}

func (p *ParameterAnnotations) Accept(v Visitor) { v.VisitParameterAnnotations(p) }

type TypeAnnotation struct {
	TargetType uint8
	Target     TargetInfo
	Path       TypePath
	Annotation Annotation
}

func (a *TypeAnnotation) Accept(v Visitor) { v.VisitTypeAnnotation(a) }

// TargetInfo is the target_info union of a type annotation.
type TargetInfo interface {
	Accept(v Visitor)
	isTargetInfo()
}

// TypeParameterTarget is used by target types 0x00 and 0x01.
type TypeParameterTarget struct {
	TypeParameterIndex uint8
}

// SupertypeTarget is used by target type 0x10. Index 65535 means the
// superclass; otherwise it indexes the interfaces table.
type SupertypeTarget struct {
	SupertypeIndex uint16
}

// TypeParameterBoundTarget is used by target types 0x11 and 0x12.
type TypeParameterBoundTarget struct {
	TypeParameterIndex uint8
	BoundIndex         uint8
}

// EmptyTarget is used by target types 0x13, 0x14 and 0x15.
type EmptyTarget struct{}

// FormalParameterTarget is used by target type 0x16.
type FormalParameterTarget struct {
	FormalParameterIndex uint8
}

// ThrowsTarget is used by target type 0x17.
type ThrowsTarget struct {
	ThrowsTypeIndex uint16
}

// LocalVarTarget is used by target types 0x40 and 0x41.
type LocalVarTarget struct {
	Table []LocalVarTargetEntry
}

type LocalVarTargetEntry struct {
	StartPC uint16
	Length  uint16
	Index   uint16
}

// CatchTarget is used by target type 0x42.
type CatchTarget struct {
	ExceptionTableIndex uint16
}

// OffsetTarget is used by target types 0x43 through 0x46.
type OffsetTarget struct {
	Offset uint16
}

// TypeArgumentTarget is used by target types 0x47 through 0x4B.
type TypeArgumentTarget struct {
	Offset            uint16
	TypeArgumentIndex uint8
}

func (t *TypeParameterTarget) Accept(v Visitor)      { v.VisitTypeParameterTarget(t) }
func (t *SupertypeTarget) Accept(v Visitor)          { v.VisitSupertypeTarget(t) }
func (t *TypeParameterBoundTarget) Accept(v Visitor) { v.VisitTypeParameterBoundTarget(t) }
func (t *EmptyTarget) Accept(v Visitor)              { v.VisitEmptyTarget(t) }
func (t *FormalParameterTarget) Accept(v Visitor)    { v.VisitFormalParameterTarget(t) }
func (t *ThrowsTarget) Accept(v Visitor)             { v.VisitThrowsTarget(t) }
func (t *LocalVarTarget) Accept(v Visitor)           { v.VisitLocalVarTarget(t) }
func (t *CatchTarget) Accept(v Visitor)              { v.VisitCatchTarget(t) }
func (t *OffsetTarget) Accept(v Visitor)             { v.VisitOffsetTarget(t) }
func (t *TypeArgumentTarget) Accept(v Visitor)       { v.VisitTypeArgumentTarget(t) }

func (*TypeParameterTarget) isTargetInfo()      {}
func (*SupertypeTarget) isTargetInfo()          {}
func (*TypeParameterBoundTarget) isTargetInfo() {}
func (*EmptyTarget) isTargetInfo()              {}
func (*FormalParameterTarget) isTargetInfo()    {}
func (*ThrowsTarget) isTargetInfo()             {}
func (*LocalVarTarget) isTargetInfo()           {}
func (*CatchTarget) isTargetInfo()              {}
func (*OffsetTarget) isTargetInfo()             {}
func (*TypeArgumentTarget) isTargetInfo()       {}

type TypePath []TypePathEntry

func (p TypePath) Accept(v Visitor) { v.VisitTypePath(p) }

type TypePathEntry struct {
	Kind              uint8
	TypeArgumentIndex uint8
}

func readAnnotations(r *reader, cp ConstantPool) []Annotation {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	out := make([]Annotation, count)
	for i := range out {
		out[i] = readAnnotation(r, cp)
	}
	return out
}

func readAnnotation(r *reader, cp ConstantPool) Annotation {
	a := Annotation{TypeIndex: r.readIndex(cp, ConstantUtf8)}
	count := r.readU2()
	if r.err != nil {
		return a
	}
	a.Pairs = make([]ElementValuePair, count)
	for i := range a.Pairs {
		a.Pairs[i].NameIndex = r.readIndex(cp, ConstantUtf8)
		a.Pairs[i].Value = readElementValue(r, cp)
	}
	return a
}

func readElementValue(r *reader, cp ConstantPool) ElementValue {
	at := r.offset()
	tag := r.readU1()
	if r.err != nil {
		return nil
	}
	switch tag {
	case 'B', 'C', 'I', 'S', 'Z':
		return &ConstElementValue{ValueTag: tag, ConstIndex: r.readIndex(cp, ConstantInteger)}
	case 'D':
		return &ConstElementValue{ValueTag: tag, ConstIndex: r.readIndex(cp, ConstantDouble)}
	case 'F':
		return &ConstElementValue{ValueTag: tag, ConstIndex: r.readIndex(cp, ConstantFloat)}
	case 'J':
		return &ConstElementValue{ValueTag: tag, ConstIndex: r.readIndex(cp, ConstantLong)}
	case 's':
		return &ConstElementValue{ValueTag: tag, ConstIndex: r.readIndex(cp, ConstantUtf8)}
	case 'e':
		return &EnumElementValue{
			TypeNameIndex:  r.readIndex(cp, ConstantUtf8),
			ConstNameIndex: r.readIndex(cp, ConstantUtf8),
		}
	case 'c':
		return &ClassElementValue{ClassInfoIndex: r.readIndex(cp, ConstantUtf8)}
	case '@':
		return &AnnotationElementValue{Annotation: readAnnotation(r, cp)}
	case '[':
		count := r.readU2()
		if r.err != nil {
			return nil
		}
		arr := &ArrayElementValue{Values: make([]ElementValue, count)}
		for i := range arr.Values {
			arr.Values[i] = readElementValue(r, cp)
		}
		return arr
	default:
		r.malformed(at, "unknown element value tag %q", tag)
		return nil
	}
}

func readParameterAnnotations(r *reader, cp ConstantPool) []ParameterAnnotations {
	count := r.readU1()
	if r.err != nil {
		return nil
	}
	out := make([]ParameterAnnotations, count)
	for i := range out {
		out[i].Annotations = readAnnotations(r, cp)
	}
	return out
}

func readTypeAnnotations(r *reader, cp ConstantPool) []TypeAnnotation {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	out := make([]TypeAnnotation, count)
	for i := range out {
		out[i] = readTypeAnnotation(r, cp)
	}
	return out
}

func readTypeAnnotation(r *reader, cp ConstantPool) TypeAnnotation {
	at := r.offset()
	ta := TypeAnnotation{TargetType: r.readU1()}
	if r.err != nil {
		return ta
	}

	switch tt := ta.TargetType; {
	case tt == 0x00 || tt == 0x01:
		ta.Target = &TypeParameterTarget{TypeParameterIndex: r.readU1()}
	case tt == 0x10:
		ta.Target = &SupertypeTarget{SupertypeIndex: r.readU2()}
	case tt == 0x11 || tt == 0x12:
		ta.Target = &TypeParameterBoundTarget{
			TypeParameterIndex: r.readU1(),
			BoundIndex:         r.readU1(),
		}
	case tt >= 0x13 && tt <= 0x15:
		ta.Target = &EmptyTarget{}
	case tt == 0x16:
		ta.Target = &FormalParameterTarget{FormalParameterIndex: r.readU1()}
	case tt == 0x17:
		ta.Target = &ThrowsTarget{ThrowsTypeIndex: r.readU2()}
	case tt == 0x40 || tt == 0x41:
		count := r.readU2()
		t := &LocalVarTarget{Table: make([]LocalVarTargetEntry, count)}
		for i := range t.Table {
			t.Table[i] = LocalVarTargetEntry{
				StartPC: r.readU2(),
				Length:  r.readU2(),
				Index:   r.readU2(),
			}
		}
		ta.Target = t
	case tt == 0x42:
		ta.Target = &CatchTarget{ExceptionTableIndex: r.readU2()}
	case tt >= 0x43 && tt <= 0x46:
		ta.Target = &OffsetTarget{Offset: r.readU2()}
	case tt >= 0x47 && tt <= 0x4B:
		ta.Target = &TypeArgumentTarget{
			Offset:            r.readU2(),
			TypeArgumentIndex: r.readU1(),
		}
	default:
		r.malformed(at, "unknown type annotation target 0x%02X", tt)
		return ta
	}

	pathLength := r.readU1()
	if r.err != nil {
		return ta
	}
	ta.Path = make(TypePath, pathLength)
	for i := range ta.Path {
		ta.Path[i] = TypePathEntry{Kind: r.readU1(), TypeArgumentIndex: r.readU1()}
	}

	ta.Annotation = readAnnotation(r, cp)
	return ta
}
