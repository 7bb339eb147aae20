package classfile

// StackMapFrame is one entry of a StackMapTable attribute.
type StackMapFrame interface {
	FrameType() uint8
	OffsetDelta() uint16
	Accept(v Visitor)
}

type SameFrame struct {
	Type uint8
}

type SameLocals1StackItemFrame struct {
	Type  uint8
	Stack VerificationTypeInfo
}

type SameLocals1StackItemFrameExtended struct {
	Delta uint16
	Stack VerificationTypeInfo
}

type ChopFrame struct {
	Type  uint8
	Delta uint16
}

type SameFrameExtended struct {
	Delta uint16
}

type AppendFrame struct {
	Type   uint8
	Delta  uint16
	Locals []VerificationTypeInfo
}

type FullFrame struct {
	Delta  uint16
	Locals []VerificationTypeInfo
	Stack  []VerificationTypeInfo
}

func (f *SameFrame) FrameType() uint8                         { return f.Type }
func (f *SameLocals1StackItemFrame) FrameType() uint8         { return f.Type }
func (f *SameLocals1StackItemFrameExtended) FrameType() uint8 { return 247 }
func (f *ChopFrame) FrameType() uint8                         { return f.Type }
func (f *SameFrameExtended) FrameType() uint8                 { return 251 }
func (f *AppendFrame) FrameType() uint8                       { return f.Type }
func (f *FullFrame) FrameType() uint8                         { return 255 }

func (f *SameFrame) OffsetDelta() uint16                         { return uint16(f.Type) }
func (f *SameLocals1StackItemFrame) OffsetDelta() uint16         { return uint16(f.Type - 64) }
func (f *SameLocals1StackItemFrameExtended) OffsetDelta() uint16 { return f.Delta }
func (f *ChopFrame) OffsetDelta() uint16                         { return f.Delta }
func (f *SameFrameExtended) OffsetDelta() uint16                 { return f.Delta }
func (f *AppendFrame) OffsetDelta() uint16                       { return f.Delta }
func (f *FullFrame) OffsetDelta() uint16                         { return f.Delta }

func (f *SameFrame) Accept(v Visitor)                         { v.VisitSameFrame(f) }
func (f *SameLocals1StackItemFrame) Accept(v Visitor)         { v.VisitSameLocals1StackItemFrame(f) }
func (f *SameLocals1StackItemFrameExtended) Accept(v Visitor) { v.VisitSameLocals1StackItemFrameExtended(f) }
func (f *ChopFrame) Accept(v Visitor)                         { v.VisitChopFrame(f) }
func (f *SameFrameExtended) Accept(v Visitor)                 { v.VisitSameFrameExtended(f) }
func (f *AppendFrame) Accept(v Visitor)                       { v.VisitAppendFrame(f) }
func (f *FullFrame) Accept(v Visitor)                         { v.VisitFullFrame(f) }

// Chopped returns how many locals the frame removes.
func (f *ChopFrame) Chopped() int { return 251 - int(f.Type) }

// VerificationTypeInfo tags.
const (
	ItemTop               uint8 = 0
	ItemInteger           uint8 = 1
	ItemFloat             uint8 = 2
	ItemDouble            uint8 = 3
	ItemLong              uint8 = 4
	ItemNull              uint8 = 5
	ItemUninitializedThis uint8 = 6
	ItemObject            uint8 = 7
	ItemUninitialized     uint8 = 8
)

type VerificationTypeInfo interface {
	Tag() uint8
	Accept(v Visitor)
}

type TopVariable struct{}
type IntegerVariable struct{}
type FloatVariable struct{}
type DoubleVariable struct{}
type LongVariable struct{}
type NullVariable struct{}
type UninitializedThisVariable struct{}

type ObjectVariable struct {
	ClassIndex uint16
}

// UninitializedVariable points at the new instruction that created the
// value.
type UninitializedVariable struct {
	Offset uint16
}

func (*TopVariable) Tag() uint8               { return ItemTop }
func (*IntegerVariable) Tag() uint8           { return ItemInteger }
func (*FloatVariable) Tag() uint8             { return ItemFloat }
func (*DoubleVariable) Tag() uint8            { return ItemDouble }
func (*LongVariable) Tag() uint8              { return ItemLong }
func (*NullVariable) Tag() uint8              { return ItemNull }
func (*UninitializedThisVariable) Tag() uint8 { return ItemUninitializedThis }
func (*ObjectVariable) Tag() uint8            { return ItemObject }
func (*UninitializedVariable) Tag() uint8     { return ItemUninitialized }

func (t *TopVariable) Accept(v Visitor)               { v.VisitTopVariable(t) }
func (t *IntegerVariable) Accept(v Visitor)           { v.VisitIntegerVariable(t) }
func (t *FloatVariable) Accept(v Visitor)             { v.VisitFloatVariable(t) }
func (t *DoubleVariable) Accept(v Visitor)            { v.VisitDoubleVariable(t) }
func (t *LongVariable) Accept(v Visitor)              { v.VisitLongVariable(t) }
func (t *NullVariable) Accept(v Visitor)              { v.VisitNullVariable(t) }
func (t *UninitializedThisVariable) Accept(v Visitor) { v.VisitUninitializedThisVariable(t) }
func (t *ObjectVariable) Accept(v Visitor)            { v.VisitObjectVariable(t) }
func (t *UninitializedVariable) Accept(v Visitor)     { v.VisitUninitializedVariable(t) }

func readStackMapFrames(r *reader, cp ConstantPool) []StackMapFrame {
	count := r.readU2()
	if r.err != nil {
		return nil
	}
	frames := make([]StackMapFrame, 0, count)
	for i := uint16(0); i < count && r.err == nil; i++ {
		if f := readStackMapFrame(r, cp); f != nil {
			frames = append(frames, f)
		}
	}
	return frames
}

func readStackMapFrame(r *reader, cp ConstantPool) StackMapFrame {
	at := r.offset()
	ft := r.readU1()
	if r.err != nil {
		return nil
	}
	switch {
	case ft <= 63:
		return &SameFrame{Type: ft}
	case ft <= 127:
		return &SameLocals1StackItemFrame{Type: ft, Stack: readVerificationType(r, cp)}
	case ft <= 246:
		r.malformed(at, "reserved stack map frame type %d", ft)
		return nil
	case ft == 247:
		return &SameLocals1StackItemFrameExtended{Delta: r.readU2(), Stack: readVerificationType(r, cp)}
	case ft <= 250:
		return &ChopFrame{Type: ft, Delta: r.readU2()}
	case ft == 251:
		return &SameFrameExtended{Delta: r.readU2()}
	case ft <= 254:
		f := &AppendFrame{Type: ft, Delta: r.readU2()}
		f.Locals = readVerificationTypes(r, cp, int(ft)-251)
		return f
	default:
		f := &FullFrame{Delta: r.readU2()}
		f.Locals = readVerificationTypes(r, cp, int(r.readU2()))
		f.Stack = readVerificationTypes(r, cp, int(r.readU2()))
		return f
	}
}

func readVerificationTypes(r *reader, cp ConstantPool, n int) []VerificationTypeInfo {
	if r.err != nil {
		return nil
	}
	out := make([]VerificationTypeInfo, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, readVerificationType(r, cp))
	}
	return out
}

func readVerificationType(r *reader, cp ConstantPool) VerificationTypeInfo {
	at := r.offset()
	tag := r.readU1()
	if r.err != nil {
		return nil
	}
	switch tag {
	case ItemTop:
		return &TopVariable{}
	case ItemInteger:
		return &IntegerVariable{}
	case ItemFloat:
		return &FloatVariable{}
	case ItemDouble:
		return &DoubleVariable{}
	case ItemLong:
		return &LongVariable{}
	case ItemNull:
		return &NullVariable{}
	case ItemUninitializedThis:
		return &UninitializedThisVariable{}
	case ItemObject:
		return &ObjectVariable{ClassIndex: r.readIndex(cp, ConstantClass)}
	case ItemUninitialized:
		return &UninitializedVariable{Offset: r.readU2()}
	default:
		r.malformed(at, "unknown verification type tag %d", tag)
		return nil
	}
}
