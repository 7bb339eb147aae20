package classfile

import (
	"fmt"
	"strings"
)

// Kind categorizes a structural decode failure.
type Kind string

const (
	KindTruncated      Kind = "truncated"
	KindBadMagic       Kind = "bad_magic"
	KindConstantIndex  Kind = "constant_index"
	KindConstantTag    Kind = "constant_tag"
	KindLengthMismatch Kind = "length_mismatch"
	KindInstruction    Kind = "instruction"
	KindDescriptor     Kind = "descriptor"
	KindTrailingData   Kind = "trailing_data"
	KindMalformed      Kind = "malformed"
)

// Sentinels for errors.Is. Matching is by Kind only.
var (
	ErrTruncated      = &DecodeError{Kind: KindTruncated, Offset: -1}
	ErrBadMagic       = &DecodeError{Kind: KindBadMagic, Offset: -1}
	ErrConstantIndex  = &DecodeError{Kind: KindConstantIndex, Offset: -1}
	ErrConstantTag    = &DecodeError{Kind: KindConstantTag, Offset: -1}
	ErrLengthMismatch = &DecodeError{Kind: KindLengthMismatch, Offset: -1}
	ErrInstruction    = &DecodeError{Kind: KindInstruction, Offset: -1}
	ErrDescriptor     = &DecodeError{Kind: KindDescriptor, Offset: -1}
	ErrTrailingData   = &DecodeError{Kind: KindTrailingData, Offset: -1}
	ErrMalformed      = &DecodeError{Kind: KindMalformed, Offset: -1}
)

// DecodeError is returned for every structural problem found while decoding
// a class file or a descriptor. Offset is -1 when unknown.
type DecodeError struct {
	Cause     error
	Kind      Kind
	Class     string
	Attribute string
	Detail    string
	Index     int
	Offset    int
}

func (e *DecodeError) Error() string {
	var b strings.Builder

	b.WriteString("classfile: ")
	b.WriteString(string(e.Kind))

	var where []string
	if e.Class != "" {
		where = append(where, "class "+e.Class)
	}
	if e.Attribute != "" {
		where = append(where, "attribute "+e.Attribute)
	}
	if e.Index > 0 {
		where = append(where, fmt.Sprintf("index #%d", e.Index))
	}
	if e.Offset >= 0 {
		where = append(where, fmt.Sprintf("offset %d", e.Offset))
	}
	if len(where) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(where, ", "))
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DecodeError of the same Kind.
func (e *DecodeError) Is(target error) bool {
	if t, ok := target.(*DecodeError); ok {
		return e.Kind == t.Kind
	}
	return false
}

type errorBuilder struct {
	err DecodeError
}

func newError(kind Kind) *errorBuilder {
	return &errorBuilder{err: DecodeError{Kind: kind, Offset: -1}}
}

func (b *errorBuilder) attribute(name string) *errorBuilder {
	b.err.Attribute = name
	return b
}

func (b *errorBuilder) index(i int) *errorBuilder {
	b.err.Index = i
	return b
}

func (b *errorBuilder) offset(off int) *errorBuilder {
	b.err.Offset = off
	return b
}

func (b *errorBuilder) cause(err error) *errorBuilder {
	b.err.Cause = err
	return b
}

func (b *errorBuilder) detail(msg string, args ...any) *errorBuilder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

func (b *errorBuilder) build() *DecodeError {
	return &b.err
}

// withClass fills in the class name on a DecodeError that does not carry one yet.
func withClass(err error, class string) error {
	if de, ok := err.(*DecodeError); ok && de.Class == "" && class != "" {
		cp := *de
		cp.Class = class
		return &cp
	}
	return err
}

// withAttribute fills in the attribute name on a DecodeError that does not
// carry one yet.
func withAttribute(err error, name string) error {
	if de, ok := err.(*DecodeError); ok && de.Attribute == "" {
		cp := *de
		cp.Attribute = name
		return &cp
	}
	return err
}
