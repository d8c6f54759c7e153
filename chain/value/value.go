// Package value holds schema-less runtime values: a tree of composites,
// variants and primitives, each node carrying a context of type C.
//
// Values decoded from chain storage carry the registry TypeID they were
// decoded with. Before such a value is encoded as a call argument its
// context is erased with MapContext, so it can be matched structurally
// against the argument's own type.
package value

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

type Kind int

const (
	KindComposite Kind = iota
	KindVariant
	KindUint
	KindU128
	KindBool
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindComposite:
		return "composite"
	case KindVariant:
		return "variant"
	case KindUint:
		return "uint"
	case KindU128:
		return "u128"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Field is a possibly named member of a composite or variant.
type Field[C any] struct {
	Name  string
	Value Value[C]
}

// Value is one node of the tree.
type Value[C any] struct {
	Context C
	Kind    Kind

	// Variant is the variant name, for KindVariant.
	Variant string
	// Fields holds composite members or variant payload.
	Fields []Field[C]

	Uint  uint64
	Big   *uint256.Int
	Bool  bool
	Bytes []byte
}

// Unit is the context of values that are not tied to any type.
type Unit = struct{}

func Composite[C any](fields ...Field[C]) Value[C] {
	return Value[C]{Kind: KindComposite, Fields: fields}
}

func Named[C any](name string, v Value[C]) Field[C] {
	return Field[C]{Name: name, Value: v}
}

func Unnamed[C any](v Value[C]) Field[C] {
	return Field[C]{Value: v}
}

func Variant[C any](name string, fields ...Field[C]) Value[C] {
	return Value[C]{Kind: KindVariant, Variant: name, Fields: fields}
}

func Uint[C any](v uint64) Value[C] {
	return Value[C]{Kind: KindUint, Uint: v}
}

func U128[C any](v *uint256.Int) Value[C] {
	return Value[C]{Kind: KindU128, Big: v}
}

func Bool[C any](v bool) Value[C] {
	return Value[C]{Kind: KindBool, Bool: v}
}

func Bytes[C any](b []byte) Value[C] {
	return Value[C]{Kind: KindBytes, Bytes: b}
}

// MapContext rewrites the context of every node in the tree.
func MapContext[C, D any](v Value[C], f func(C) D) Value[D] {
	out := Value[D]{
		Context: f(v.Context),
		Kind:    v.Kind,
		Variant: v.Variant,
		Uint:    v.Uint,
		Big:     v.Big,
		Bool:    v.Bool,
		Bytes:   v.Bytes,
	}
	if v.Fields != nil {
		out.Fields = make([]Field[D], len(v.Fields))
		for i, fl := range v.Fields {
			out.Fields[i] = Field[D]{Name: fl.Name, Value: MapContext(fl.Value, f)}
		}
	}
	return out
}

// Erase drops the context of every node.
func Erase[C any](v Value[C]) Value[Unit] {
	return MapContext(v, func(C) Unit { return Unit{} })
}

// Field returns the member with the given name.
func (v Value[C]) Field(name string) (Value[C], bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value[C]{}, false
}

// At returns the i-th member.
func (v Value[C]) At(i int) (Value[C], bool) {
	if i < 0 || i >= len(v.Fields) {
		return Value[C]{}, false
	}
	return v.Fields[i].Value, true
}

func (v Value[C]) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v Value[C]) write(sb *strings.Builder) {
	switch v.Kind {
	case KindUint:
		fmt.Fprintf(sb, "%d", v.Uint)
	case KindU128:
		if v.Big == nil {
			sb.WriteString("0")
		} else {
			sb.WriteString(v.Big.Dec())
		}
	case KindBool:
		fmt.Fprintf(sb, "%t", v.Bool)
	case KindBytes:
		fmt.Fprintf(sb, "0x%x", v.Bytes)
	case KindVariant:
		sb.WriteString(v.Variant)
		if len(v.Fields) > 0 {
			writeFields(sb, v.Fields, "(", ")")
		}
	case KindComposite:
		writeFields(sb, v.Fields, "{", "}")
	}
}

func writeFields[C any](sb *strings.Builder, fields []Field[C], open, close string) {
	sb.WriteString(open)
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		if f.Name != "" {
			sb.WriteString(f.Name)
			sb.WriteString(": ")
		}
		f.Value.write(sb)
	}
	sb.WriteString(close)
}
