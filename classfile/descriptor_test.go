package classfile

import (
	"errors"
	"testing"
)

func TestSignature(t *testing.T) {
	tests := []struct {
		descriptor string
		want       string
		count      int
	}{
		{"()V", "()", 0},
		{"(II)V", "(int, int)", 2},
		{"(Ljava/lang/String;)V", "(java.lang.String)", 1},
		{"([I[[Ljava/lang/Object;)V", "(int[], java.lang.Object[][])", 2},
		{"(JDZ)Ljava/lang/Object;", "(long, double, boolean)", 3},
		{"<T:Ljava/lang/Object;>(TT;ILjava/lang/String;)V", "(T, int, java.lang.String)", 3},
		{"<K::Ljava/lang/Comparable<TK;>;V:Ljava/lang/Object;>(TK;TV;)V", "(K, V)", 2},
		{"(Ljava/util/List<+Ljava/lang/Number;>;)V", "(java.util.List<? extends java.lang.Number>)", 1},
		{"(Ljava/util/Map<**>;)V", "(java.util.Map<?, ?>)", 1},
		{"(Ljava/util/Map<TK;TV;>.Entry<TK;>;)V", "(java.util.Map<K, V>.Entry<K>)", 1},
		{"(Ljava/util/Map$Entry;)V", "(java.util.Map$Entry)", 1},
		{"<E:Ljava/lang/Exception;>(I)V^TE;^Ljava/io/IOException;", "(int)", 1},
	}

	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			got, err := Signature(tt.descriptor)
			if err != nil {
				t.Fatalf("Signature(%q) error = %v", tt.descriptor, err)
			}
			if got != tt.want {
				t.Errorf("Signature(%q) = %q, want %q", tt.descriptor, got, tt.want)
			}
			count, err := ParameterCount(tt.descriptor)
			if err != nil {
				t.Fatalf("ParameterCount(%q) error = %v", tt.descriptor, err)
			}
			if count != tt.count {
				t.Errorf("ParameterCount(%q) = %d, want %d", tt.descriptor, count, tt.count)
			}
		})
	}
}

func TestSignatureErrors(t *testing.T) {
	tests := []string{
		"(Ljava/lang/String",
		"(Q)V",
		"(I",
		"II",
		"",
		"<T:Ljava/lang/Object;(TT;)V",
		"(TT)V",
		"(II)",
		"(II)X",
		"(II)Vjunk",
		"()V^",
		"()V^I",
	}

	for _, descriptor := range tests {
		t.Run(descriptor, func(t *testing.T) {
			if _, err := Signature(descriptor); !errors.Is(err, ErrDescriptor) {
				t.Errorf("Signature(%q) error = %v, want descriptor error", descriptor, err)
			}
			if _, err := ParameterCount(descriptor); !errors.Is(err, ErrDescriptor) {
				t.Errorf("ParameterCount(%q) error = %v, want descriptor error", descriptor, err)
			}
			if _, err := ReturnType(descriptor); !errors.Is(err, ErrDescriptor) {
				t.Errorf("ReturnType(%q) error = %v, want descriptor error", descriptor, err)
			}
		})
	}
}

func TestReturnType(t *testing.T) {
	tests := []struct {
		descriptor string
		want       string
	}{
		{"()V", "void"},
		{"()I", "int"},
		{"(II)[J", "long[]"},
		{"()Ljava/lang/String;", "java.lang.String"},
		{"<T:Ljava/lang/Object;>()TT;", "T"},
		{"()V^Ljava/io/IOException;", "void"},
	}

	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			got, err := ReturnType(tt.descriptor)
			if err != nil {
				t.Fatalf("ReturnType(%q) error = %v", tt.descriptor, err)
			}
			if got != tt.want {
				t.Errorf("ReturnType(%q) = %q, want %q", tt.descriptor, got, tt.want)
			}
		})
	}
}

func TestConvertType(t *testing.T) {
	tests := []struct {
		descriptor string
		want       string
	}{
		{"I", "int"},
		{"V", "void"},
		{"[I", "int[]"},
		{"[[Ljava/lang/String;", "java.lang.String[][]"},
		{"Ljava/lang/String;", "java.lang.String"},
		{"TT;", "T"},
	}

	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			got, err := ConvertType(tt.descriptor)
			if err != nil {
				t.Fatalf("ConvertType(%q) error = %v", tt.descriptor, err)
			}
			if got != tt.want {
				t.Errorf("ConvertType(%q) = %q, want %q", tt.descriptor, got, tt.want)
			}
		})
	}

	if _, err := ConvertType("II"); !errors.Is(err, ErrDescriptor) {
		t.Errorf("ConvertType(%q) error = %v, want descriptor error", "II", err)
	}
}

func TestParseFieldDescriptor(t *testing.T) {
	tests := []struct {
		desc       string
		baseType   string
		className  string
		arrayDepth int
	}{
		{"I", "int", "", 0},
		{"Z", "boolean", "", 0},
		{"Ljava/lang/String;", "", "java/lang/String", 0},
		{"[I", "int", "", 1},
		{"[[D", "double", "", 2},
		{"[Ljava/lang/Object;", "", "java/lang/Object", 1},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			ft, err := ParseFieldDescriptor(tt.desc)
			if err != nil {
				t.Fatalf("ParseFieldDescriptor(%q) error = %v", tt.desc, err)
			}
			if ft.BaseType != tt.baseType {
				t.Errorf("BaseType = %q, want %q", ft.BaseType, tt.baseType)
			}
			if ft.ClassName != tt.className {
				t.Errorf("ClassName = %q, want %q", ft.ClassName, tt.className)
			}
			if ft.ArrayDepth != tt.arrayDepth {
				t.Errorf("ArrayDepth = %d, want %d", ft.ArrayDepth, tt.arrayDepth)
			}
		})
	}

	for _, bad := range []string{"", "Ljava/lang/String", "X", "II", "["} {
		if _, err := ParseFieldDescriptor(bad); err == nil {
			t.Errorf("ParseFieldDescriptor(%q) error = nil", bad)
		}
	}
}

func TestParseMethodDescriptor(t *testing.T) {
	tests := []struct {
		desc        string
		numParams   int
		returnsVoid bool
		display     string
	}{
		{"()V", 0, true, "() void"},
		{"()I", 0, false, "() int"},
		{"(I)V", 1, true, "(int) void"},
		{"(II)I", 2, false, "(int, int) int"},
		{"(Ljava/lang/String;)V", 1, true, "(java.lang.String) void"},
		{"(IDLjava/lang/Thread;)Ljava/lang/Object;", 3, false, "(int, double, java.lang.Thread) java.lang.Object"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			md, err := ParseMethodDescriptor(tt.desc)
			if err != nil {
				t.Fatalf("ParseMethodDescriptor(%q) error = %v", tt.desc, err)
			}
			if len(md.Parameters) != tt.numParams {
				t.Errorf("len(Parameters) = %d, want %d", len(md.Parameters), tt.numParams)
			}
			if (md.ReturnType == nil) != tt.returnsVoid {
				t.Errorf("ReturnType = %v, want void %v", md.ReturnType, tt.returnsVoid)
			}
			if got := md.String(); got != tt.display {
				t.Errorf("String() = %q, want %q", got, tt.display)
			}
		})
	}
}

func TestClassDisplayName(t *testing.T) {
	tests := []struct {
		internal string
		want     string
	}{
		{"java/lang/Object", "java.lang.Object"},
		{"[Ljava/lang/String;", "java.lang.String[]"},
		{"[I", "int[]"},
		{"Outer$Inner", "Outer$Inner"},
	}

	for _, tt := range tests {
		if got := ClassDisplayName(tt.internal); got != tt.want {
			t.Errorf("ClassDisplayName(%q) = %q, want %q", tt.internal, got, tt.want)
		}
	}
}
