// Package values implements the runtime Value variants of §3.2: Int, Bool,
// String, Pointer, Function and Descriptor. It plays the same role the
// teacher's lang/machine value files (nil.go, function.go, tuple.go) play
// for Lua-family values, simplified because Stackyy has no garbage
// collector, no freezing, and no container types: every Value here is a
// plain, comparable-by-content leaf except Descriptor, which wraps the
// reference-counted lang/descriptor.Descriptor.
package values

import (
	"fmt"

	"github.com/mna/stackyy/lang/descriptor"
	"github.com/mna/stackyy/lang/ir"
)

// Value is the interface implemented by every runtime value the machine
// manipulates. Type returns the ir.Type the value carries on the shadow
// type stack, so the two stacks can be checked against each other for the
// desync invariant of §3.8.
type Value interface {
	String() string
	Type() ir.Type
}

// Int is a Value backed by a 32-bit integer (§3.2: Int(i32)).
type Int int32

func (i Int) String() string { return fmt.Sprintf("%d", int32(i)) }
func (i Int) Type() ir.Type  { return ir.Int }

// Bool is a Value backed by a boolean.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Bool) Type() ir.Type { return ir.Bool }

// String is a Value backed by text, rendered as its literal content (no
// surrounding quotes: §3.2 to-string rules).
type String string

func (s String) String() string { return string(s) }
func (s String) Type() ir.Type  { return ir.String }

// Pointer is an opaque 32-bit handle, rendered as "*0xHEX".
type Pointer uint32

func (p Pointer) String() string { return fmt.Sprintf("*0x%X", uint32(p)) }
func (p Pointer) Type() ir.Type  { return ir.Pointer }

// Function is a Value naming a function by its (possibly reflection-
// mutated) name string and static contract. It backs both a bare function
// reference pushed by `~name` and a FunctionPointer produced by `#name(...)`
// (ir.Type.AssignableFrom accepts a FunctionPointer wherever a plain
// Function type is expected).
type Function struct {
	Name string
	Ins  []ir.Type
	Outs []ir.Type
}

func (f *Function) String() string { return fmt.Sprintf("*%s()", f.Name) }

// Type returns the precise FunctionPointer(ins, outs) contract carried by
// this value, as §4.6 requires for dynamic Call/CallIf checking.
func (f *Function) Type() ir.Type { return ir.FunctionPointer(f.Ins, f.Outs) }

// WithName returns a copy of f with a different name, leaving the contract
// untouched; the reflection ops (§4.4) mutate a function pointer's name
// string without touching its type.
func (f *Function) WithName(name string) *Function {
	return &Function{Name: name, Ins: f.Ins, Outs: f.Outs}
}

// Descriptor is a Value wrapping a reference-counted resource handle.
type Descriptor struct {
	D *descriptor.Descriptor
}

func (d *Descriptor) String() string { return d.D.String() }
func (d *Descriptor) Type() ir.Type  { return ir.Descriptor }

// Clone duplicates the Value the way dup/dup-stack do: for Descriptor this
// shares the underlying resource (descriptor.Descriptor.Clone increments
// its refcount); every other variant is already a plain immutable copy.
func Clone(v Value) Value {
	if d, ok := v.(*Descriptor); ok {
		return &Descriptor{D: d.D.Clone()}
	}
	return v
}

// Drop releases a value discarded from the operand stack. Only Descriptor
// has lifecycle behavior (§3.8: Close runs once the last reference drops);
// every other variant is a no-op.
func Drop(v Value) error {
	if d, ok := v.(*Descriptor); ok {
		return d.D.Drop()
	}
	return nil
}
