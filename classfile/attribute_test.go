package classfile

import (
	"bytes"
	"errors"
	"testing"
)

func TestAttributeLengthMismatch(t *testing.T) {
	tests := []struct {
		name string
		attr func(b *classBuilder) []byte
	}{
		{
			name: "underrun",
			attr: func(b *classBuilder) []byte {
				return b.attrWithLength("SourceFile", 3, u2(b.utf8("A.java")), u1(0))
			},
		},
		{
			name: "body shorter than decoder needs",
			attr: func(b *classBuilder) []byte {
				return b.attrWithLength("SourceFile", 1, u1(0))
			},
		},
		{
			name: "nested table longer than body",
			attr: func(b *classBuilder) []byte {
				return b.attrWithLength("NestMembers", 4, u2(5), u2(b.class("A")))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newClassBuilder("A", "")
			b.classAttr(tt.attr(b))
			_, err := b.parse()
			if !errors.Is(err, ErrLengthMismatch) {
				t.Fatalf("ParseBytes() error = %v, want %v", err, ErrLengthMismatch)
			}
			var de *DecodeError
			errors.As(err, &de)
			if de.Class != "A" {
				t.Errorf("Class = %q, want %q", de.Class, "A")
			}
		})
	}
}

func TestLocalVariableCovers(t *testing.T) {
	lv := LocalVariable{StartPC: 4, Length: 3}

	tests := []struct {
		pc   int
		want bool
	}{
		{3, false},
		{4, true},
		{6, true},
		{7, false},
	}

	for _, tt := range tests {
		if got := lv.Covers(tt.pc); got != tt.want {
			t.Errorf("Covers(%d) = %v, want %v", tt.pc, got, tt.want)
		}
	}

	empty := LocalVariable{StartPC: 4}
	if empty.Covers(4) {
		t.Errorf("Covers(4) = true for an empty range, want false")
	}
}

func TestCustomAttribute(t *testing.T) {
	b := newClassBuilder("A", "")
	payload := []byte{1, 2, 3, 4, 5}
	b.classAttr(b.attr("org.example.Marker", payload))
	cf, err := b.parse()
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	attr := cf.GetAttribute("org.example.Marker")
	custom, ok := attr.(*CustomAttribute)
	if !ok {
		t.Fatalf("GetAttribute() = %T, want *CustomAttribute", attr)
	}
	if custom.Name() != "org.example.Marker" {
		t.Errorf("Name() = %q, want %q", custom.Name(), "org.example.Marker")
	}
	if !bytes.Equal(custom.Info, payload) {
		t.Errorf("Info = %v, want %v", custom.Info, payload)
	}
	if custom.Length != uint32(len(payload)) {
		t.Errorf("Length = %d, want %d", custom.Length, len(payload))
	}
}

func TestAttributeNameMustBeUtf8(t *testing.T) {
	b := newClassBuilder("A", "")
	b.classAttr(concat(u2(b.class("A")), u4(0)))
	_, err := b.parse()
	if !errors.Is(err, ErrConstantTag) {
		t.Errorf("ParseBytes() error = %v, want %v", err, ErrConstantTag)
	}
}

func TestStackMapTable(t *testing.T) {
	b := newClassBuilder("A", "java/lang/Object")
	object := b.class("java/lang/String")
	frames := concat(
		u2(6),
		// same_frame
		u1(3),
		// same_locals_1_stack_item_frame
		u1(64+2), u1(ItemInteger),
		// same_locals_1_stack_item_frame_extended
		u1(247), u2(100), u1(ItemNull),
		// chop_frame, two locals
		u1(249), u2(4),
		// append_frame, two locals
		u1(253), u2(7), u1(ItemLong), u1(ItemObject), u2(object),
		// full_frame
		u1(255), u2(9), u2(1), u1(ItemUninitialized), u2(12), u2(1), u1(ItemTop),
	)
	b.method(AccStatic, "m", "()V", b.code(0, 4, u1(0xb1), nil, b.attr("StackMapTable", frames)))

	cf, err := b.parse()
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	table, ok := FindAttribute[*StackMapTableAttribute](cf.Methods[0].Code().Attributes)
	if !ok {
		t.Fatal("Expected StackMapTable")
	}
	if len(table.Entries) != 6 {
		t.Fatalf("len(Entries) = %d, want 6", len(table.Entries))
	}

	tests := []struct {
		frameType uint8
		delta     uint16
	}{
		{3, 3},
		{66, 2},
		{247, 100},
		{249, 4},
		{253, 7},
		{255, 9},
	}
	for i, tt := range tests {
		f := table.Entries[i]
		if f.FrameType() != tt.frameType || f.OffsetDelta() != tt.delta {
			t.Errorf("Entries[%d] = (%d, %d), want (%d, %d)", i, f.FrameType(), f.OffsetDelta(), tt.frameType, tt.delta)
		}
	}

	if chop := table.Entries[3].(*ChopFrame); chop.Chopped() != 2 {
		t.Errorf("Chopped() = %d, want 2", chop.Chopped())
	}
	appendFrame := table.Entries[4].(*AppendFrame)
	if obj, ok := appendFrame.Locals[1].(*ObjectVariable); !ok || obj.ClassIndex != object {
		t.Errorf("Locals[1] = %+v, want object #%d", appendFrame.Locals[1], object)
	}
	full := table.Entries[5].(*FullFrame)
	if u, ok := full.Locals[0].(*UninitializedVariable); !ok || u.Offset != 12 {
		t.Errorf("Locals[0] = %+v, want uninitialized(12)", full.Locals[0])
	}
}

func TestStackMapReservedFrameType(t *testing.T) {
	b := newClassBuilder("A", "")
	b.method(AccStatic, "m", "()V", b.code(0, 0, u1(0xb1), nil, b.attr("StackMapTable", u2(1), u1(200))))
	_, err := b.parse()
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("ParseBytes() error = %v, want %v", err, ErrMalformed)
	}
}

func TestAnnotations(t *testing.T) {
	b := newClassBuilder("A", "java/lang/Object")
	annotation := concat(
		u2(b.utf8("Lcom/example/Marker;")), u2(4),
		u2(b.utf8("count")), u1('I'), u2(b.integer(3)),
		u2(b.utf8("kind")), u1('e'), u2(b.utf8("Lcom/example/Kind;")), u2(b.utf8("FAST")),
		u2(b.utf8("type")), u1('c'), u2(b.utf8("Ljava/lang/String;")),
		u2(b.utf8("tags")), u1('['), u2(2),
		u1('s'), u2(b.utf8("a")),
		u1('@'), u2(b.utf8("Lcom/example/Inner;")), u2(0),
	)
	b.classAttr(b.attr("RuntimeVisibleAnnotations", u2(1), annotation))
	b.method(AccPublic|AccAbstract, "m", "(I)V",
		b.attr("RuntimeInvisibleParameterAnnotations", u1(1), u2(1), u2(b.utf8("Ljavax/annotation/Nonnull;")), u2(0)),
		b.attr("AnnotationDefault", u1('Z'), u2(b.integer(1))),
	)

	cf, err := b.parse()
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	rva, ok := FindAttribute[*RuntimeVisibleAnnotationsAttribute](cf.Attributes)
	if !ok || len(rva.Annotations) != 1 {
		t.Fatalf("RuntimeVisibleAnnotations = %+v", rva)
	}
	a := rva.Annotations[0]
	if got := a.Type(cf.ConstantPool); got != "com.example.Marker" {
		t.Errorf("Type() = %q, want %q", got, "com.example.Marker")
	}
	if len(a.Pairs) != 4 {
		t.Fatalf("len(Pairs) = %d, want 4", len(a.Pairs))
	}
	if _, ok := a.Pairs[1].Value.(*EnumElementValue); !ok {
		t.Errorf("Pairs[1].Value = %T, want *EnumElementValue", a.Pairs[1].Value)
	}
	arr, ok := a.Pairs[3].Value.(*ArrayElementValue)
	if !ok || len(arr.Values) != 2 {
		t.Fatalf("Pairs[3].Value = %+v", a.Pairs[3].Value)
	}
	if nested, ok := arr.Values[1].(*AnnotationElementValue); !ok || nested.Annotation.Type(cf.ConstantPool) != "com.example.Inner" {
		t.Errorf("nested annotation = %+v", arr.Values[1])
	}

	m := &cf.Methods[0]
	params := m.ParameterAnnotations()
	if len(params) != 1 || len(params[0]) != 1 || len(params[0][0].Annotations) != 1 {
		t.Errorf("ParameterAnnotations() = %+v", params)
	}
	def, ok := FindAttribute[*AnnotationDefaultAttribute](m.Attributes)
	if !ok || def.DefaultValue.Tag() != 'Z' {
		t.Errorf("AnnotationDefault = %+v", def)
	}
}

func TestAnnotationConstantKindChecked(t *testing.T) {
	b := newClassBuilder("A", "")
	// 'J' requires a Long constant
	b.classAttr(b.attr("RuntimeVisibleAnnotations", u2(1),
		u2(b.utf8("LM;")), u2(1), u2(b.utf8("v")), u1('J'), u2(b.integer(1))))
	_, err := b.parse()
	if !errors.Is(err, ErrConstantTag) {
		t.Errorf("ParseBytes() error = %v, want %v", err, ErrConstantTag)
	}
}

func TestTypeAnnotations(t *testing.T) {
	b := newClassBuilder("A", "java/lang/Object")
	marker := b.utf8("Lcom/example/NonNull;")
	body := concat(
		u2(3),
		// extends clause
		u1(0x10), u2(0xFFFF), u1(0), u2(marker), u2(0),
		// local variable, path into type argument 0
		u1(0x40), u2(1), u2(0), u2(5), u2(1), u1(1), u1(3), u1(0), u2(marker), u2(0),
		// cast
		u1(0x47), u2(8), u1(1), u1(0), u2(marker), u2(0),
	)
	b.classAttr(b.attr("RuntimeVisibleTypeAnnotations", body))

	cf, err := b.parse()
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	attr, _ := FindAttribute[*RuntimeVisibleTypeAnnotationsAttribute](cf.Attributes)
	if len(attr.Annotations) != 3 {
		t.Fatalf("len(Annotations) = %d, want 3", len(attr.Annotations))
	}
	if st, ok := attr.Annotations[0].Target.(*SupertypeTarget); !ok || st.SupertypeIndex != 0xFFFF {
		t.Errorf("Target[0] = %+v", attr.Annotations[0].Target)
	}
	lv, ok := attr.Annotations[1].Target.(*LocalVarTarget)
	if !ok || len(lv.Table) != 1 || lv.Table[0].Length != 5 {
		t.Errorf("Target[1] = %+v", attr.Annotations[1].Target)
	}
	if path := attr.Annotations[1].Path; len(path) != 1 || path[0].Kind != 3 {
		t.Errorf("Path = %+v", path)
	}
	if ta, ok := attr.Annotations[2].Target.(*TypeArgumentTarget); !ok || ta.Offset != 8 || ta.TypeArgumentIndex != 1 {
		t.Errorf("Target[2] = %+v", attr.Annotations[2].Target)
	}
}

func TestModuleAttribute(t *testing.T) {
	b := newClassBuilder("module-info", "")
	b.access = AccModule
	module := b.entry(ConstantModule, u2(b.utf8("com.example")))
	base := b.entry(ConstantModule, u2(b.utf8("java.base")))
	pkg := b.entry(ConstantPackage, u2(b.utf8("com/example/api")))
	service := b.class("com/example/Service")
	impl := b.class("com/example/Impl")

	body := concat(
		u2(module), u2(0), u2(0),
		u2(1), u2(base), u2(uint16(AccMandated)), u2(0),
		u2(1), u2(pkg), u2(0), u2(0),
		u2(1), u2(pkg), u2(0), u2(1), u2(base),
		u2(1), u2(service),
		u2(1), u2(service), u2(1), u2(impl),
	)
	b.classAttr(
		b.attr("Module", body),
		b.attr("ModulePackages", u2(1), u2(pkg)),
		b.attr("ModuleMainClass", u2(impl)),
	)

	cf, err := b.parse()
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if !cf.IsModule() {
		t.Error("IsModule() = false")
	}
	m, ok := FindAttribute[*ModuleAttribute](cf.Attributes)
	if !ok {
		t.Fatal("Expected Module attribute")
	}
	if got := m.ModuleName(cf.ConstantPool); got != "com.example" {
		t.Errorf("ModuleName() = %q, want %q", got, "com.example")
	}
	if got := m.Requires[0].Module(cf.ConstantPool); got != "java.base" {
		t.Errorf("Requires[0].Module() = %q, want %q", got, "java.base")
	}
	if got := m.Exports[0].Package(cf.ConstantPool); got != "com.example.api" {
		t.Errorf("Exports[0].Package() = %q, want %q", got, "com.example.api")
	}
	if len(m.Opens[0].OpensToIndex) != 1 || len(m.Uses) != 1 || len(m.Provides[0].ProvidesWithIndex) != 1 {
		t.Errorf("Module = %+v", m)
	}
}

func TestRecordAndMiscAttributes(t *testing.T) {
	b := newClassBuilder("com/example/Point", "java/lang/Record")
	b.access |= AccFinal
	bsm := b.methodHandle(RefInvokeStatic, b.methodref("java/lang/runtime/ObjectMethods", "bootstrap", "()V"))
	b.invokeDynamic(0, "toString", "(Lcom/example/Point;)Ljava/lang/String;")
	outer := b.class("com/example/Outer")

	b.classAttr(
		b.attr("Record", u2(2),
			u2(b.utf8("x")), u2(b.utf8("I")), u2(0),
			u2(b.utf8("y")), u2(b.utf8("I")), u2(1), b.attr("Signature", u2(b.utf8("I"))),
		),
		b.attr("BootstrapMethods", u2(1), u2(bsm), u2(1), u2(b.class("com/example/Point"))),
		b.attr("InnerClasses", u2(1), u2(b.this), u2(outer), u2(b.utf8("Point")), u2(uint16(AccPublic|AccStatic))),
		b.attr("NestHost", u2(outer)),
		b.attr("EnclosingMethod", u2(outer), u2(0)),
		b.attr("Deprecated"),
		b.attr("Synthetic"),
		b.attr("SourceDebugExtension", []byte("SMAP\n")),
	)
	b.method(AccPublic, "m", "(II)V",
		b.attr("MethodParameters", u1(2), u2(b.utf8("a")), u2(0), u2(0), u2(uint16(AccSynthetic))),
		b.attr("Exceptions", u2(1), u2(b.class("java/io/IOException"))),
	)

	cf, err := b.parse()
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	if !cf.IsRecord() || !cf.IsDeprecated() {
		t.Errorf("IsRecord(), IsDeprecated() = %v, %v, want true, true", cf.IsRecord(), cf.IsDeprecated())
	}
	record, _ := FindAttribute[*RecordAttribute](cf.Attributes)
	if len(record.Components) != 2 || record.Components[1].Name(cf.ConstantPool) != "y" {
		t.Errorf("Components = %+v", record.Components)
	}
	if len(record.Components[1].Attributes) != 1 {
		t.Errorf("len(Components[1].Attributes) = %d, want 1", len(record.Components[1].Attributes))
	}
	bootstrap, _ := FindAttribute[*BootstrapMethodsAttribute](cf.Attributes)
	if len(bootstrap.Methods) != 1 || len(bootstrap.Methods[0].Arguments) != 1 {
		t.Errorf("BootstrapMethods = %+v", bootstrap)
	}
	sde, _ := FindAttribute[*SourceDebugExtensionAttribute](cf.Attributes)
	if sde.DebugExtension != "SMAP\n" {
		t.Errorf("DebugExtension = %q, want %q", sde.DebugExtension, "SMAP\n")
	}

	m := &cf.Methods[0]
	params := m.Parameters()
	if len(params) != 2 || params[1].NameIndex != 0 {
		t.Errorf("Parameters() = %+v", params)
	}
	expected := "public void m(int, int) throws java.io.IOException"
	if got := m.Declaration(cf); got != expected {
		t.Errorf("Declaration() = %q, want %q", got, expected)
	}
}

func TestExceptionHandlers(t *testing.T) {
	b := newClassBuilder("A", "java/lang/Object")
	catchType := b.class("java/lang/Exception")
	handlers := []ExceptionHandler{
		{StartPC: 0, EndPC: 1, HandlerPC: 2, CatchType: catchType},
		{StartPC: 0, EndPC: 1, HandlerPC: 2},
	}
	b.method(AccStatic, "m", "()V", b.code(1, 0, concat(u1(0xb1), u1(0x57), u1(0xb1)), handlers))
	cf, err := b.parse()
	if err != nil {
		t.Fatal(err)
	}
	code := cf.Methods[0].Code()
	if len(code.ExceptionHandlers) != 2 {
		t.Fatalf("len(ExceptionHandlers) = %d, want 2", len(code.ExceptionHandlers))
	}
	if !code.ExceptionHandlers[0].HasCatchType() || code.ExceptionHandlers[1].HasCatchType() {
		t.Errorf("HasCatchType() = %v, %v, want true, false",
			code.ExceptionHandlers[0].HasCatchType(), code.ExceptionHandlers[1].HasCatchType())
	}

	b = newClassBuilder("A", "")
	b.method(AccStatic, "m", "()V", b.code(0, 0, u1(0xb1), []ExceptionHandler{{CatchType: 77}}))
	if _, err := b.parse(); !errors.Is(err, ErrConstantIndex) {
		t.Errorf("ParseBytes() error = %v, want %v", err, ErrConstantIndex)
	}
}
