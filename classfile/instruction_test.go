package classfile

import (
	"errors"
	"io"
	"reflect"
	"testing"
)

func TestDecodeInstructions(t *testing.T) {
	code := concat(
		u1(0x03),                  // 0: iconst_0
		u1(0x3c),                  // 1: istore_1
		u1(0x10), u1(0xfe),        // 2: bipush -2
		u1(0x11), u2(0x1234),      // 4: sipush 4660
		u1(0x84), u1(1), u1(0xff), // 7: iinc 1, -1
		u1(0x1b),                  // 10: iload_1
		u1(0x99), u2(0xfff6),      // 11: ifeq -10
		u1(0xc8), u4(0xfffffff3),  // 14: goto_w -13
		u1(0x02),                  // 19: iconst_m1
		u1(0x0f),                  // 20: dconst_1
		u1(0xb1),                  // 21: return
	)

	instructions, err := DecodeInstructions(code)
	if err != nil {
		t.Fatalf("DecodeInstructions() error = %v", err)
	}

	tests := []struct {
		start    int
		mnemonic string
		length   int
		index    int
		value    int32
		target   int
	}{
		{0, "iconst_0", 1, 0, 0, -1},
		{1, "istore_1", 1, 1, 0, -1},
		{2, "bipush", 2, 0, -2, -1},
		{4, "sipush", 3, 0, 0x1234, -1},
		{7, "iinc", 3, 1, -1, -1},
		{10, "iload_1", 1, 1, 0, -1},
		{11, "ifeq", 3, 0, 0, 1},
		{14, "goto_w", 5, 0, 0, 1},
		{19, "iconst_m1", 1, 0, -1, -1},
		{20, "dconst_1", 1, 0, 1, -1},
		{21, "return", 1, 0, 0, -1},
	}

	if len(instructions) != len(tests) {
		t.Fatalf("len(instructions) = %d, want %d", len(instructions), len(tests))
	}

	total := 0
	for i, tt := range tests {
		in := instructions[i]
		t.Run(tt.mnemonic, func(t *testing.T) {
			if in.Start != tt.start {
				t.Errorf("Start = %d, want %d", in.Start, tt.start)
			}
			if in.Mnemonic() != tt.mnemonic {
				t.Errorf("Mnemonic() = %q, want %q", in.Mnemonic(), tt.mnemonic)
			}
			if in.Length() != tt.length {
				t.Errorf("Length() = %d, want %d", in.Length(), tt.length)
			}
			if in.Index != tt.index {
				t.Errorf("Index = %d, want %d", in.Index, tt.index)
			}
			if in.Value != tt.value {
				t.Errorf("Value = %d, want %d", in.Value, tt.value)
			}
			if tt.target >= 0 {
				if !in.IsBranch() {
					t.Errorf("IsBranch() = false")
				}
				if in.Target() != tt.target {
					t.Errorf("Target() = %d, want %d", in.Target(), tt.target)
				}
			}
		})
		total += in.Length()
	}

	if total != len(code) {
		t.Errorf("sum of lengths = %d, want %d", total, len(code))
	}
}

func TestInstructionReaderReplay(t *testing.T) {
	code := concat(u1(0x2a), u1(0xb6), u2(7), u1(0x57), u1(0xb1))

	first, err := DecodeInstructions(code)
	if err != nil {
		t.Fatal(err)
	}
	second, err := DecodeInstructions(code)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second decode = %+v, want %+v", second, first)
	}

	ir := NewInstructionReader(code)
	for range first {
		if _, err := ir.Next(); err != nil {
			t.Fatalf("Next() error = %v", err)
		}
	}
	if ir.Offset() != len(code) {
		t.Errorf("Offset() = %d, want %d", ir.Offset(), len(code))
	}
	if _, err := ir.Next(); err != io.EOF {
		t.Errorf("Next() at end error = %v, want io.EOF", err)
	}
}

func TestWideInstructions(t *testing.T) {
	code := concat(
		u1(0xc4), u1(0x15), u2(300),             // 0: wide iload 300
		u1(0xc4), u1(0x84), u2(260), u2(0xfc18), // 4: wide iinc 260, -1000
		u1(0xc4), u1(0xa9), u2(257),             // 10: wide ret 257
	)

	instructions, err := DecodeInstructions(code)
	if err != nil {
		t.Fatalf("DecodeInstructions() error = %v", err)
	}
	if len(instructions) != 3 {
		t.Fatalf("len(instructions) = %d, want 3", len(instructions))
	}

	load := instructions[0]
	if !load.Wide || load.Opcode != OpIload || load.Index != 300 || load.Length() != 4 {
		t.Errorf("wide iload = %+v", load)
	}
	iinc := instructions[1]
	if !iinc.Wide || iinc.Opcode != OpIinc || iinc.Index != 260 || iinc.Value != -1000 || iinc.Length() != 6 {
		t.Errorf("wide iinc = %+v", iinc)
	}
	ret := instructions[2]
	if ret.Start != 10 || ret.Index != 257 {
		t.Errorf("wide ret = %+v", ret)
	}

	_, err = DecodeInstructions(concat(u1(0xc4), u1(0xb1)))
	if !errors.Is(err, ErrInstruction) {
		t.Errorf("wide return error = %v, want %v", err, ErrInstruction)
	}
}

func TestSwitchPadding(t *testing.T) {
	tests := []struct {
		start   int
		padding int
	}{
		{0, 3},
		{1, 2},
		{2, 1},
		{3, 0},
		{4, 3},
	}

	for _, tt := range tests {
		code := make([]byte, tt.start)
		for i := range code {
			code[i] = 0x00 // nop
		}
		code = concat(code,
			u1(0xaa), make([]byte, tt.padding),
			u4(20), u4(1), u4(2), // default, low, high
			u4(30), u4(40),
		)

		instructions, err := DecodeInstructions(code)
		if err != nil {
			t.Fatalf("start %d: DecodeInstructions() error = %v", tt.start, err)
		}
		ts := instructions[len(instructions)-1]
		if ts.Switch == nil {
			t.Fatalf("start %d: Switch = nil", tt.start)
		}
		if ts.Switch.Padding != tt.padding {
			t.Errorf("start %d: Padding = %d, want %d", tt.start, ts.Switch.Padding, tt.padding)
		}
		if ts.Length() != 1+tt.padding+20 {
			t.Errorf("start %d: Length() = %d, want %d", tt.start, ts.Length(), 1+tt.padding+20)
		}
		want := []SwitchCase{{Match: 1, Offset: 30}, {Match: 2, Offset: 40}}
		if !reflect.DeepEqual(ts.Switch.Cases, want) {
			t.Errorf("start %d: Cases = %+v, want %+v", tt.start, ts.Switch.Cases, want)
		}
	}
}

func TestLookupSwitch(t *testing.T) {
	code := concat(
		u1(0x1a),                  // 0: iload_0
		u1(0xab), make([]byte, 2), // 1: lookupswitch, 2 padding bytes
		u4(36),                    // default
		u4(2),                     // npairs
		u4(10), u4(28),
		u4(20), u4(32),
	)

	instructions, err := DecodeInstructions(code)
	if err != nil {
		t.Fatalf("DecodeInstructions() error = %v", err)
	}
	ls := instructions[1]
	if ls.Switch.Default != 36 {
		t.Errorf("Default = %d, want 36", ls.Switch.Default)
	}
	want := []SwitchCase{{Match: 10, Offset: 28}, {Match: 20, Offset: 32}}
	if !reflect.DeepEqual(ls.Switch.Cases, want) {
		t.Errorf("Cases = %+v, want %+v", ls.Switch.Cases, want)
	}
	if ls.Start+ls.Length() != len(code) {
		t.Errorf("end = %d, want %d", ls.Start+ls.Length(), len(code))
	}
}

func TestInstructionErrors(t *testing.T) {
	tests := []struct {
		name   string
		code   []byte
		offset int
	}{
		{"unknown opcode", []byte{0x00, 0xcb}, 1},
		{"truncated sipush", []byte{0x00, 0x00, 0x11, 0x01}, 2},
		{"truncated invokevirtual", []byte{0xb6, 0x00}, 0},
		{"bad newarray type", []byte{0xbc, 0x02}, 0},
		{"tableswitch low above high", concat(u1(0xaa), make([]byte, 3), u4(0), u4(5), u4(1)), 0},
		{"lookupswitch pairs past end", concat(u1(0xab), make([]byte, 3), u4(0), u4(100)), 0},
		{"truncated wide", []byte{0xc4}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeInstructions(tt.code)
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("DecodeInstructions() error = %v, want *DecodeError", err)
			}
			if de.Kind != KindInstruction {
				t.Errorf("Kind = %q, want %q", de.Kind, KindInstruction)
			}
			if de.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", de.Offset, tt.offset)
			}
		})
	}
}

func TestCodeValidatesConstantOperands(t *testing.T) {
	b := newClassBuilder("A", "java/lang/Object")
	field := b.fieldref("A", "f", "I")
	// invokevirtual pointing at a Fieldref
	b.method(AccPublic, "m", "()V", b.code(1, 1, concat(u1(0x2a), u1(0xb6), u2(field), u1(0xb1)), nil))

	_, err := b.parse()
	if !errors.Is(err, ErrConstantTag) {
		t.Fatalf("ParseBytes() error = %v, want %v", err, ErrConstantTag)
	}
	var de *DecodeError
	errors.As(err, &de)
	if de.Attribute != "Code" {
		t.Errorf("Attribute = %q, want %q", de.Attribute, "Code")
	}
}
