package classfile

import (
	"errors"
	"testing"
)

func TestConstantPoolResolve(t *testing.T) {
	b := newClassBuilder("A", "java/lang/Object")
	long := b.long(1 << 40)
	after := b.str("after")
	cf, err := b.parse()
	if err != nil {
		t.Fatal(err)
	}
	cp := cf.ConstantPool

	t.Run("count", func(t *testing.T) {
		if cp.Count() != int(b.next) {
			t.Errorf("Count() = %d, want %d", cp.Count(), b.next)
		}
	})

	t.Run("valid indices", func(t *testing.T) {
		for i := 1; i < cp.Count(); i++ {
			if uint16(i) == long+1 {
				continue
			}
			if _, err := cp.Resolve(uint16(i)); err != nil {
				t.Errorf("Resolve(%d) error = %v", i, err)
			}
		}
	})

	t.Run("invalid indices", func(t *testing.T) {
		for _, index := range []uint16{0, long + 1, uint16(cp.Count()), 0xFFFF} {
			_, err := cp.Resolve(index)
			if !errors.Is(err, ErrConstantIndex) {
				t.Errorf("Resolve(%d) error = %v, want %v", index, err, ErrConstantIndex)
			}
		}
	})

	t.Run("entry after long", func(t *testing.T) {
		if after != long+2 {
			t.Fatalf("string index = %d, want %d", after, long+2)
		}
		if got := cp.GetString(after); got != "after" {
			t.Errorf("GetString(%d) = %q, want %q", after, got, "after")
		}
		if v, ok := cp.GetLong(long); !ok || v != 1<<40 {
			t.Errorf("GetLong(%d) = %d, %v, want %d, true", long, v, ok, int64(1<<40))
		}
	})
}

func TestConstantPoolGetters(t *testing.T) {
	b := newClassBuilder("com/example/A", "java/lang/Object")
	field := b.fieldref("com/example/A", "count", "I")
	method := b.methodref("java/lang/Object", "equals", "(Ljava/lang/Object;)Z")
	iface := b.interfaceMethodref("java/util/List", "size", "()I")
	handle := b.methodHandle(RefInvokeStatic, method)
	array := b.class("[Ljava/lang/String;")
	d := b.double(2.5)
	cf, err := b.parse()
	if err != nil {
		t.Fatal(err)
	}
	cp := cf.ConstantPool

	t.Run("class names", func(t *testing.T) {
		if got := cp.GetClassName(cf.ThisClass); got != "com/example/A" {
			t.Errorf("GetClassName() = %q, want %q", got, "com/example/A")
		}
		if got := cp.GetClassName(cf.SuperClass); got != "java/lang/Object" {
			t.Errorf("GetClassName(super) = %q, want %q", got, "java/lang/Object")
		}
	})

	t.Run("refs", func(t *testing.T) {
		owner, name, desc := cp.GetFieldref(field)
		if owner != "com/example/A" || name != "count" || desc != "I" {
			t.Errorf("GetFieldref() = %q, %q, %q", owner, name, desc)
		}
		if owner, _, _ := cp.GetMethodref(field); owner != "" {
			t.Errorf("GetMethodref(fieldref) = %q, want empty", owner)
		}
		if _, name, _ := cp.GetInterfaceMethodref(iface); name != "size" {
			t.Errorf("GetInterfaceMethodref() name = %q, want %q", name, "size")
		}
		if h := cp.GetMethodHandle(handle); h == nil || h.ReferenceKind != RefInvokeStatic {
			t.Errorf("GetMethodHandle() = %+v", h)
		}
	})

	t.Run("display", func(t *testing.T) {
		tests := []struct {
			index uint16
			want  string
		}{
			{cf.ThisClass, "com.example.A"},
			{array, "java.lang.String[]"},
			{field, "com.example.A.count"},
			{method, "java.lang.Object.equals(java.lang.Object)"},
			{iface, "java.util.List.size()"},
			{handle, "REF_invokeStatic java.lang.Object.equals(java.lang.Object)"},
			{d, "2.5"},
			{0, ""},
		}
		for _, tt := range tests {
			if got := cp.Display(tt.index); got != tt.want {
				t.Errorf("Display(%d) = %q, want %q", tt.index, got, tt.want)
			}
		}
	})

	t.Run("lenient getters", func(t *testing.T) {
		if got := cp.GetUtf8(0); got != "" {
			t.Errorf("GetUtf8(0) = %q, want empty", got)
		}
		if got := cp.GetUtf8(0xFFFF); got != "" {
			t.Errorf("GetUtf8(0xFFFF) = %q, want empty", got)
		}
		if _, ok := cp.GetInteger(cf.ThisClass); ok {
			t.Error("GetInteger(class) ok = true, want false")
		}
	})
}

func TestConstantPoolValidation(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *classBuilder)
		want  error
	}{
		{
			name: "method handle kind",
			build: func(b *classBuilder) {
				b.entry(ConstantMethodHandle, u1(10), u2(b.methodref("A", "m", "()V")))
			},
			want: ErrConstantTag,
		},
		{
			name: "getfield handle to methodref",
			build: func(b *classBuilder) {
				b.methodHandle(RefGetField, b.methodref("A", "m", "()V"))
			},
			want: ErrConstantTag,
		},
		{
			name: "fieldref class out of range",
			build: func(b *classBuilder) {
				b.entry(ConstantFieldref, u2(500), u2(b.nameAndType("f", "I")))
			},
			want: ErrConstantIndex,
		},
		{
			name: "name and type to class",
			build: func(b *classBuilder) {
				b.entry(ConstantNameAndType, u2(b.class("A")), u2(b.utf8("I")))
			},
			want: ErrConstantTag,
		},
		{
			name: "reference to slot after double",
			build: func(b *classBuilder) {
				d := b.double(1)
				b.entry(ConstantString, u2(d+1))
			},
			want: ErrConstantIndex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newClassBuilder("A", "")
			tt.build(b)
			_, err := b.parse()
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseBytes() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConstantTagString(t *testing.T) {
	if got := ConstantMethodHandle.String(); got != "MethodHandle" {
		t.Errorf("String() = %q, want %q", got, "MethodHandle")
	}
	if got := ConstantTag(2).String(); got == "" {
		t.Error("String() of unknown tag is empty")
	}
}
