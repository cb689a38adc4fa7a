// Package ir holds the types shared by every later stage of the pipeline:
// the closed Type lattice (§3.1), the Operation/Operand/OpKind shapes
// emitted by the parser (§3.5), and the Function/Program containers that
// the type checker, the machine and the bytecode codec all operate on.
// It is the Stackyy analogue of the teacher's lang/compiler package, which
// likewise sits between the parser/resolver and the machine and carries no
// executable behavior of its own, only shapes and bookkeeping.
package ir

import (
	"fmt"
	"strings"
)

// Kind is the tag of the closed Type variant set (§3.1).
type Kind uint8

const (
	KindAny Kind = iota
	KindInt
	KindString
	KindBool
	KindPointer
	KindFunction
	KindFunctionPointer
	KindDescriptor
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindInt:
		return "int"
	case KindString:
		return "str"
	case KindBool:
		return "bool"
	case KindPointer:
		return "ptr"
	case KindFunction:
		return "fn"
	case KindFunctionPointer:
		return "fnptr"
	case KindDescriptor:
		return "rsc"
	default:
		return "invalid"
	}
}

// Type is a value of the closed variant set from §3.1. FunctionPointer is
// the only recursive variant, carrying its own (ins, outs) contract; Ins
// and Outs are nil for every other Kind.
type Type struct {
	Kind Kind
	Ins  []Type
	Outs []Type
}

// The non-parameterized types are singletons; FunctionPointer values are
// built with the FunctionPointer constructor below.
var (
	Any        = Type{Kind: KindAny}
	Int        = Type{Kind: KindInt}
	String     = Type{Kind: KindString}
	Bool       = Type{Kind: KindBool}
	Pointer    = Type{Kind: KindPointer}
	Function   = Type{Kind: KindFunction}
	Descriptor = Type{Kind: KindDescriptor}
)

// FunctionPointer builds the parameterized FunctionPointer(ins, outs) type.
func FunctionPointer(ins, outs []Type) Type {
	return Type{Kind: KindFunctionPointer, Ins: ins, Outs: outs}
}

// namedTypes maps the closed set of type names usable in a function
// signature (§4.2) to their Type. "any" and "fnptr" are deliberately
// absent: Any only appears in diagnostic expectation lists (§3.1), and a
// FunctionPointer's concrete contract cannot be spelled in signature
// syntax, only produced by a function declaration or `#name(...)` literal.
var namedTypes = map[string]Type{
	"int":  Int,
	"str":  String,
	"bool": Bool,
	"ptr":  Pointer,
	"fn":   Function,
	"rsc":  Descriptor,
}

// LookupTypeName resolves one of the six declarable type names to its
// Type, reporting false for anything else (§4.2).
func LookupTypeName(name string) (Type, bool) {
	t, ok := namedTypes[name]
	return t, ok
}

// Equal reports whether t and o denote the same type, recursively for
// FunctionPointer.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	if t.Kind != KindFunctionPointer {
		return true
	}
	return typesEqual(t.Ins, o.Ins) && typesEqual(t.Outs, o.Outs)
}

func typesEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// AssignableFrom reports whether a stack-top value of type actual may
// stand in where a value of type t (e.g. a declared parameter or Call
// operand) is expected. Any is a wildcard and accepts every actual type
// (§3.1: it is how print/println/to-string/drop accept any value). Beyond
// plain equality, a bare Function type accepts any FunctionPointer: the
// runtime Value that backs both is the same Function value (§3.2), the
// Type merely remembers whether its specific contract is statically known.
func (t Type) AssignableFrom(actual Type) bool {
	if t.Kind == KindAny {
		return true
	}
	if t.Equal(actual) {
		return true
	}
	return t.Kind == KindFunction && actual.Kind == KindFunctionPointer
}

func (t Type) String() string {
	if t.Kind != KindFunctionPointer {
		return t.Kind.String()
	}
	return fmt.Sprintf("fnptr(%s -> %s)", JoinTypes(t.Ins), JoinTypes(t.Outs))
}

// JoinTypes renders a type list the way a diagnostic's expected-types
// context does: comma-separated, in order.
func JoinTypes(ts []Type) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
