// Package descriptor implements the typed resource-handle subsystem of
// §4.5: a closed set of descriptor types (currently just file), a closed
// set of actions (Open, ReadAll, WriteAll, ToString, Close), and the
// per-(type, action) static contract the type checker enforces. The
// runtime value itself is reference-counted with interior mutability
// (§3.2) so that duplicating a Descriptor on the operand stack shares one
// underlying resource, closed only once its last reference is dropped.
//
// The teacher has no equivalent subsystem (Lua-family values have no
// exclusive-resource variant), so this package is grounded on the shape of
// §4.5 itself rather than adapted from any one teacher file; its Handle
// abstraction and os.File-backed implementation follow the same plain,
// interface-plus-concrete-struct style the teacher uses throughout
// lang/machine for its Value variants.
package descriptor

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/mna/stackyy/lang/ir"
)

// Type is the closed set of descriptor kinds. Only file exists today; the
// design leaves room for more without touching the action contracts below.
type Type string

// TypeFile is the only descriptor type currently implemented.
const TypeFile Type = "file"

// LookupType resolves a source-level type name (the `<typ>` in `!<typ>-
// <action>`) to its Type.
func LookupType(name string) (Type, bool) {
	if Type(name) == TypeFile {
		return TypeFile, true
	}
	return "", false
}

// Action is the closed set of operations a descriptor supports.
type Action uint8

const (
	Open Action = iota
	ReadAll
	WriteAll
	ToString
	Close
)

var actionNames = [...]string{
	Open:     "open",
	ReadAll:  "read-all",
	WriteAll: "write-all",
	ToString: "to-string",
	Close:    "close",
}

func (a Action) String() string { return actionNames[a] }

// LookupAction resolves a source-level action suffix to its Action. Close
// is deliberately excluded: it has no `!<typ>-close` spelling, it only runs
// from the executor's Drop of a Descriptor value (§4.5).
func LookupAction(suffix string) (Action, bool) {
	for a, name := range actionNames {
		if Action(a) == Close {
			continue
		}
		if name == suffix {
			return Action(a), true
		}
	}
	return 0, false
}

// Contract is the type-side (ins, outs) of one (type, action) pair, as the
// type checker's Descriptor op handler needs it (§4.6).
type Contract struct {
	Ins  []ir.Type
	Outs []ir.Type
}

// Ins/Outs are listed bottom-to-top, matching the convention used for plain
// function contracts (§4.6). WriteAll's extra String input is pushed by the
// caller on top of an already-open Descriptor (method-chaining keeps the
// descriptor on top between calls, per the runtime protocol below), so its
// stack order at call time is [Descriptor, String] even though §4.5's prose
// lists the pair the other way round.
var fileContracts = map[Action]Contract{
	Open:     {Ins: []ir.Type{ir.String}, Outs: []ir.Type{ir.Descriptor}},
	ReadAll:  {Ins: []ir.Type{ir.Descriptor}, Outs: []ir.Type{ir.String, ir.Descriptor}},
	WriteAll: {Ins: []ir.Type{ir.Descriptor, ir.String}, Outs: []ir.Type{ir.Descriptor}},
	ToString: {Ins: []ir.Type{ir.Descriptor}, Outs: []ir.Type{ir.String, ir.Descriptor}},
}

// ContractFor resolves a (type, action) pair to its static contract. Close
// has none: it is never type-checked as a standalone operation.
func ContractFor(t Type, a Action) (Contract, bool) {
	if t != TypeFile {
		return Contract{}, false
	}
	c, ok := fileContracts[a]
	return c, ok
}

// Handle is what a concrete descriptor type implements: the three
// non-lifecycle actions plus Close.
type Handle interface {
	ReadAll() (string, error)
	WriteAll(content string) error
	ToString() (string, error)
	Close() error
}

// state is the shared, reference-counted payload behind every clone of a
// Descriptor value; it is what makes duplicating a Descriptor on the
// operand stack refer to the same open resource.
type state struct {
	handle Handle
	refs   int32
}

// Descriptor is the runtime value backing the ir.Descriptor type. Its zero
// value is not usable; build one with Open.
type Descriptor struct {
	typ   Type
	id    string
	state *state
}

// Open creates a new descriptor of type t for the given path, ready for
// both reading and writing, creating the file if it does not exist.
func Open(t Type, path string) (*Descriptor, error) {
	if t != TypeFile {
		return nil, fmt.Errorf("descriptor: unsupported type %q", t)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	return &Descriptor{
		typ: t,
		id:  path,
		state: &state{
			handle: &fileHandle{f: f, path: path},
			refs:   1,
		},
	}, nil
}

// Type reports the descriptor's type.
func (d *Descriptor) Type() Type { return d.typ }

// String renders the descriptor the way a generic to-string on a
// Descriptor value does: "TypeDescriptor(pathOrId)".
func (d *Descriptor) String() string {
	return fmt.Sprintf("%sDescriptor(%s)", capitalize(string(d.typ)), d.id)
}

// Clone increments the shared reference count and returns a new handle
// value referring to the same underlying resource, modelling what happens
// when dup or dup-stack duplicate a Descriptor on the operand stack.
func (d *Descriptor) Clone() *Descriptor {
	atomic.AddInt32(&d.state.refs, 1)
	return &Descriptor{typ: d.typ, id: d.id, state: d.state}
}

// ReadAll reads the whole resource, per the file ReadAll contract.
func (d *Descriptor) ReadAll() (string, error) { return d.state.handle.ReadAll() }

// WriteAll overwrites the whole resource, per the file WriteAll contract.
func (d *Descriptor) WriteAll(content string) error { return d.state.handle.WriteAll(content) }

// ToString returns the descriptor's display form, per the file ToString
// contract; unlike ReadAll it never touches the resource's content.
func (d *Descriptor) ToString() (string, error) { return d.state.handle.ToString() }

// Drop releases one reference; once the last one goes, the underlying
// resource's Close runs (§3.8: "released by the executor's Drop on the
// operand stack (runs Close action)").
func (d *Descriptor) Drop() error {
	if atomic.AddInt32(&d.state.refs, -1) > 0 {
		return nil
	}
	return d.state.handle.Close()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// fileHandle is the file-backed Handle implementation.
type fileHandle struct {
	f    *os.File
	path string
}

func (h *fileHandle) ReadAll() (string, error) {
	if _, err := h.f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	b, err := io.ReadAll(h.f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *fileHandle) WriteAll(content string) error {
	if err := h.f.Truncate(0); err != nil {
		return err
	}
	if _, err := h.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	_, err := h.f.WriteString(content)
	return err
}

func (h *fileHandle) ToString() (string, error) {
	return fmt.Sprintf("FileDescriptor(%s)", h.path), nil
}

func (h *fileHandle) Close() error { return h.f.Close() }
