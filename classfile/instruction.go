package classfile

import (
	"fmt"
	"io"
)

// Instruction is one decoded bytecode instruction. Operand fields that do
// not apply to the opcode's shape are zero.
type Instruction struct {
	Start  int
	Opcode Opcode
	// Wide is set when the instruction was prefixed by wide; Opcode is then
	// the modified instruction.
	Wide bool
	// Index is a local variable slot or a constant pool index.
	Index int
	// Offset is the branch offset relative to Start.
	Offset int32
	// Value is the immediate operand of bipush, sipush, iinc and newarray,
	// or the constant pushed by the xconst_n family.
	Value int32
	// Count is the invokeinterface count or multianewarray dimensions.
	Count  uint8
	Switch *SwitchTable
	length int
}

// SwitchTable holds the jump table of tableswitch and lookupswitch. All
// offsets are relative to the switch instruction's start.
type SwitchTable struct {
	Padding int
	Default int32
	Low     int32
	High    int32
	Cases   []SwitchCase
}

type SwitchCase struct {
	Match  int32
	Offset int32
}

func (in *Instruction) Accept(v Visitor) { v.VisitInstruction(in) }

func (in *Instruction) Mnemonic() string {
	return in.Opcode.String()
}

func (in *Instruction) Shape() OperandShape {
	return in.Opcode.Shape()
}

// Length is the number of code bytes the instruction occupies, including a
// wide prefix.
func (in *Instruction) Length() int {
	return in.length
}

// Target is the absolute code offset a branch jumps to.
func (in *Instruction) Target() int {
	return in.Start + int(in.Offset)
}

// UsesConstantPool reports whether Index refers to the constant pool.
func (in *Instruction) UsesConstantPool() bool {
	switch in.Shape() {
	case ShapeConstantU1, ShapeConstantU2, ShapeInvokeInterface, ShapeInvokeDynamic, ShapeMultiANewArray:
		return true
	}
	return false
}

// UsesLocal reports whether Index is a local variable slot.
func (in *Instruction) UsesLocal() bool {
	switch in.Shape() {
	case ShapeLocal, ShapeImplicitLocal, ShapeIinc:
		return true
	}
	return false
}

// IsBranch reports whether the instruction carries a branch offset.
func (in *Instruction) IsBranch() bool {
	s := in.Shape()
	return s == ShapeBranch || s == ShapeBranchWide
}

// InstructionReader decodes a code array one instruction at a time. It
// holds nothing but its cursor, so a new reader over the same bytes yields
// the same sequence.
type InstructionReader struct {
	code []byte
	pos  int
}

func NewInstructionReader(code []byte) *InstructionReader {
	return &InstructionReader{code: code}
}

// Offset returns the position of the next instruction.
func (ir *InstructionReader) Offset() int {
	return ir.pos
}

// Next decodes the next instruction. It returns io.EOF exactly at the end of
// the code array.
func (ir *InstructionReader) Next() (Instruction, error) {
	if ir.pos == len(ir.code) {
		return Instruction{}, io.EOF
	}
	in, err := decodeInstruction(ir.code, ir.pos)
	if err != nil {
		return Instruction{}, err
	}
	ir.pos += in.length
	return in, nil
}

// DecodeInstructions decodes a whole code array.
func DecodeInstructions(code []byte) ([]Instruction, error) {
	var out []Instruction
	ir := NewInstructionReader(code)
	for {
		in, err := ir.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
}

func instructionError(start int, op Opcode, msg string, args ...any) *DecodeError {
	return newError(KindInstruction).
		offset(start).
		detail("%s at pc %d: %s", op, start, fmt.Sprintf(msg, args...)).
		build()
}

func decodeInstruction(code []byte, start int) (Instruction, error) {
	r := &reader{buf: code, pos: start}
	in := Instruction{Start: start, Opcode: Opcode(r.readU1())}

	if !in.Opcode.Valid() {
		return in, instructionError(start, in.Opcode, "unknown opcode 0x%02X", uint8(in.Opcode))
	}

	switch in.Opcode.Shape() {
	case ShapeNone:
	case ShapeImplicitLocal:
		in.Index = implicitLocal(in.Opcode)
	case ShapeImplicitValue:
		in.Value = implicitValue(in.Opcode)
	case ShapeLocal:
		in.Index = int(r.readU1())
	case ShapeIinc:
		in.Index = int(r.readU1())
		in.Value = int32(r.readS1())
	case ShapeByteValue:
		in.Value = int32(r.readS1())
	case ShapeShortValue:
		in.Value = int32(r.readS2())
	case ShapeNewArray:
		in.Value = int32(r.readU1())
		if in.Value < 4 || in.Value > 11 {
			r.fail(instructionError(start, in.Opcode, "invalid array type %d", in.Value))
		}
	case ShapeConstantU1:
		in.Index = int(r.readU1())
	case ShapeConstantU2:
		in.Index = int(r.readU2())
	case ShapeInvokeInterface:
		in.Index = int(r.readU2())
		in.Count = r.readU1()
		r.readU1()
	case ShapeInvokeDynamic:
		in.Index = int(r.readU2())
		r.readU2()
	case ShapeMultiANewArray:
		in.Index = int(r.readU2())
		in.Count = r.readU1()
	case ShapeBranch:
		in.Offset = int32(r.readS2())
	case ShapeBranchWide:
		in.Offset = r.readS4()
	case ShapeTableSwitch:
		in.Switch = readTableSwitch(r, start)
	case ShapeLookupSwitch:
		in.Switch = readLookupSwitch(r, start)
	case ShapeWide:
		modified := Opcode(r.readU1())
		if r.err != nil {
			break
		}
		in.Wide = true
		in.Opcode = modified
		switch in.Opcode.Shape() {
		case ShapeLocal:
			in.Index = int(r.readU2())
		case ShapeIinc:
			in.Index = int(r.readU2())
			in.Value = int32(r.readS2())
		default:
			return in, instructionError(start, OpWide, "cannot widen %s", in.Opcode)
		}
	}

	if r.err != nil {
		if de, ok := r.err.(*DecodeError); ok && de.Kind == KindInstruction {
			return in, de
		}
		return in, instructionError(start, in.Opcode, "operands run past end of code (%d bytes)", len(code))
	}
	in.length = r.pos - start
	return in, nil
}

// switchPadding is the number of bytes after the opcode needed to reach a
// 4-byte boundary measured from the start of the code array.
func switchPadding(start int) int {
	return (4 - (start+1)%4) % 4
}

func readTableSwitch(r *reader, start int) *SwitchTable {
	st := &SwitchTable{Padding: switchPadding(start)}
	r.readBytes(st.Padding)
	st.Default = r.readS4()
	st.Low = r.readS4()
	st.High = r.readS4()
	if r.err != nil {
		return st
	}
	if st.Low > st.High {
		r.fail(instructionError(start, OpTableswitch, "low %d greater than high %d", st.Low, st.High))
		return st
	}
	n := int64(st.High) - int64(st.Low) + 1
	if n*4 > int64(r.remaining()) {
		r.fail(instructionError(start, OpTableswitch, "%d offsets run past end of code", n))
		return st
	}
	st.Cases = make([]SwitchCase, n)
	for i := range st.Cases {
		st.Cases[i] = SwitchCase{Match: st.Low + int32(i), Offset: r.readS4()}
	}
	return st
}

func readLookupSwitch(r *reader, start int) *SwitchTable {
	st := &SwitchTable{Padding: switchPadding(start)}
	r.readBytes(st.Padding)
	st.Default = r.readS4()
	npairs := r.readS4()
	if r.err != nil {
		return st
	}
	if npairs < 0 {
		r.fail(instructionError(start, OpLookupswitch, "negative pair count %d", npairs))
		return st
	}
	if int64(npairs)*8 > int64(r.remaining()) {
		r.fail(instructionError(start, OpLookupswitch, "%d pairs run past end of code", npairs))
		return st
	}
	st.Cases = make([]SwitchCase, npairs)
	for i := range st.Cases {
		st.Cases[i] = SwitchCase{Match: r.readS4(), Offset: r.readS4()}
	}
	return st
}

// validateCode decodes every instruction once and checks that constant pool
// operands resolve to entries of the right kind.
func validateCode(code []byte, cp ConstantPool) error {
	ir := NewInstructionReader(code)
	for {
		in, err := ir.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		tags := operandTags(in.Opcode)
		if tags == nil {
			continue
		}
		if err := cp.expect(uint16(in.Index), tags...); err != nil {
			if de, ok := err.(*DecodeError); ok {
				operandErr := *de
				operandErr.Offset = in.Start
				operandErr.Detail = fmt.Sprintf("%s at pc %d: %s", in.Opcode, in.Start, de.Detail)
				return &operandErr
			}
			return err
		}
	}
}

func operandTags(op Opcode) []ConstantTag {
	switch op {
	case OpLdc, OpLdcW:
		return []ConstantTag{ConstantInteger, ConstantFloat, ConstantString, ConstantClass,
			ConstantMethodType, ConstantMethodHandle, ConstantDynamic}
	case OpLdc2W:
		return []ConstantTag{ConstantLong, ConstantDouble, ConstantDynamic}
	case OpGetstatic, OpPutstatic, OpGetfield, OpPutfield:
		return []ConstantTag{ConstantFieldref}
	case OpInvokevirtual:
		return []ConstantTag{ConstantMethodref}
	case OpInvokespecial, OpInvokestatic:
		return []ConstantTag{ConstantMethodref, ConstantInterfaceMethodref}
	case OpInvokeinterface:
		return []ConstantTag{ConstantInterfaceMethodref}
	case OpInvokedynamic:
		return []ConstantTag{ConstantInvokeDynamic}
	case OpNew, OpAnewarray, OpCheckcast, OpInstanceof, OpMultianewarray:
		return []ConstantTag{ConstantClass}
	}
	return nil
}
