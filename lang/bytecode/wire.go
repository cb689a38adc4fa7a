// Package bytecode implements the compiled-program codec of §4.8 and §6.4:
// a compact binary encoding and a human-readable text encoding, both built
// over the same intermediate "wire" representation so the two formats can
// never drift out of step with each other.
//
// The teacher has no on-disk bytecode format of its own (a Lua-family
// interpreter here just re-parses source every run), so this package is
// grounded on §4.8/§6.4 directly, using gopkg.in/yaml.v3 for the text
// encoding the same way the teacher's internal/maincmd would reach for it
// for any structured config or report file, and the standard
// encoding/binary + bytes primitives for the tagged binary variant records
// — no third-party binary serialization library appears anywhere in the
// example pack to ground a different choice on.
package bytecode

import (
	"fmt"

	"github.com/mna/stackyy/lang/ir"
	"github.com/mna/stackyy/lang/token"
)

// wireMeta mirrors ir.Meta with yaml tags for the text encoding and meta.yml
// files (§6.2).
type wireMeta struct {
	Name        string  `yaml:"name"`
	Version     string  `yaml:"version"`
	Author      *string `yaml:"author,omitempty"`
	Description *string `yaml:"description,omitempty"`
}

// wireProgram mirrors ir.Program, with Functions as a sorted slice (by
// ir.Program.Names) so both encodings are deterministic byte-for-byte.
type wireProgram struct {
	Meta      wireMeta       `yaml:"meta"`
	Functions []wireFunction `yaml:"functions"`
}

// wireFunction mirrors ir.Function. Ins/Outs store the declarable type
// names (int, str, bool, ptr, fn, rsc): a function signature can never
// contain a parameterized FunctionPointer, only the six named types.
type wireFunction struct {
	Name string          `yaml:"name"`
	Ins  []string        `yaml:"ins,omitempty"`
	Outs []string        `yaml:"outs,omitempty"`
	Body []wireOperation `yaml:"body"`
}

// wireDebug mirrors token.DebugInfo. A nil *wireDebug means DebugNone.
// Tok is reduced to (Raw, Pos): those are the only two fields DebugInfo
// ever exposes through Position()/FormatInfo(), so they are the only two
// that round-tripping through bytecode needs to preserve; the classifying
// fields of the original token (Kind, Int, Str, Keyword, Sig) never survive
// compilation, the same way the executor never needs them once parsing is
// done.
type wireDebug struct {
	Kind   string `yaml:"kind"` // "token", "position"
	File   string `yaml:"file,omitempty"`
	Line   int    `yaml:"line,omitempty"`
	Column int    `yaml:"column,omitempty"`
	Text   string `yaml:"text,omitempty"`
}

// wireOperand mirrors ir.Operand. A nil *wireOperand means the dynamic
// Call/CallIf shape (OpKindCall or OpKindCallIf with no Operand).
type wireOperand struct {
	Kind string `yaml:"kind"`

	Int  int32  `yaml:"int,omitempty"`
	Str  string `yaml:"str,omitempty"`
	Bool bool   `yaml:"bool,omitempty"`

	Internal string `yaml:"internal,omitempty"`

	FuncName string   `yaml:"func_name,omitempty"`
	FuncIns  []string `yaml:"func_ins,omitempty"`
	FuncOuts []string `yaml:"func_outs,omitempty"`

	Call string `yaml:"call,omitempty"`

	DescType   string `yaml:"desc_type,omitempty"`
	DescAction string `yaml:"desc_action,omitempty"`
}

// wireOperation mirrors ir.Operation.
type wireOperation struct {
	Op      string       `yaml:"op"`
	Debug   *wireDebug   `yaml:"debug,omitempty"`
	Operand *wireOperand `yaml:"operand,omitempty"`
}

// operandKindNames/opKindNames back the wire "kind"/"op" string tags: one
// source of truth shared by both the binary encoding (which maps the names
// back to their tag bytes through operandKindByName/opKindByName) and the
// text encoding, so a word only ever needs spelling once.
var operandKindNames = [...]string{
	ir.OperandNone:             "none",
	ir.OperandInt:              "int",
	ir.OperandStr:              "str",
	ir.OperandBool:             "bool",
	ir.OperandInternal:         "internal",
	ir.OperandPushFunction:     "push-function",
	ir.OperandCall:             "call",
	ir.OperandDescriptorAction: "descriptor-action",
}

var operandKindByName = func() map[string]ir.OperandKind {
	m := make(map[string]ir.OperandKind, len(operandKindNames))
	for k, name := range operandKindNames {
		m[name] = ir.OperandKind(k)
	}
	return m
}()

var opKindNames = [...]string{
	ir.OpKindPush:         "push",
	ir.OpKindPushFunction: "push-function",
	ir.OpKindInternal:     "internal",
	ir.OpKindDescriptor:   "descriptor",
	ir.OpKindCall:         "call",
	ir.OpKindCallIf:       "call-if",
	ir.OpKindJump:         "jump",
	ir.OpKindJumpIf:       "jump-if",
}

var opKindByName = func() map[string]ir.OpKind {
	m := make(map[string]ir.OpKind, len(opKindNames))
	for k, name := range opKindNames {
		m[name] = ir.OpKind(k)
	}
	return m
}()

func toWireTypeNames(ts []ir.Type) []string {
	if len(ts) == 0 {
		return nil
	}
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	return names
}

func fromWireTypeNames(names []string) ([]ir.Type, error) {
	if len(names) == 0 {
		return nil, nil
	}
	ts := make([]ir.Type, len(names))
	for i, n := range names {
		t, ok := ir.LookupTypeName(n)
		if !ok {
			return nil, fmt.Errorf("bytecode: unknown type name %q", n)
		}
		ts[i] = t
	}
	return ts, nil
}

func toWireDebug(d token.DebugInfo) *wireDebug {
	switch d.Kind {
	case token.DebugToken:
		pos := d.Position()
		return &wireDebug{Kind: "token", File: pos.File, Line: pos.Line, Column: pos.Column, Text: d.Tok.Raw}
	case token.DebugPosition:
		pos := d.Position()
		return &wireDebug{Kind: "position", File: pos.File, Line: pos.Line, Column: pos.Column}
	default:
		return nil
	}
}

func fromWireDebug(w *wireDebug) token.DebugInfo {
	if w == nil {
		return token.NoDebug
	}
	pos := token.Position{File: w.File, Line: w.Line, Column: w.Column}
	switch w.Kind {
	case "token":
		return token.NewTokenDebug(token.Value{Raw: w.Text, Pos: pos})
	case "position":
		return token.NewPositionDebug(pos)
	default:
		return token.NoDebug
	}
}

func toWireOperand(op *ir.Operand) (*wireOperand, error) {
	if op == nil {
		return nil, nil
	}
	w := &wireOperand{Kind: operandKindNames[op.Kind]}
	switch op.Kind {
	case ir.OperandInt:
		w.Int = op.Int
	case ir.OperandStr:
		w.Str = op.Str
	case ir.OperandBool:
		w.Bool = op.Bool
	case ir.OperandInternal:
		w.Internal = op.Internal.String()
	case ir.OperandPushFunction:
		w.FuncName = op.PushFunction.Name
		w.FuncIns = toWireTypeNames(op.PushFunction.Ins)
		w.FuncOuts = toWireTypeNames(op.PushFunction.Outs)
	case ir.OperandCall:
		w.Call = op.Call
	case ir.OperandDescriptorAction:
		w.DescType = op.DescriptorAction.Type
		w.DescAction = op.DescriptorAction.Action
	default:
		return nil, fmt.Errorf("bytecode: unsupported operand kind %v", op.Kind)
	}
	return w, nil
}

func fromWireOperand(w *wireOperand) (*ir.Operand, error) {
	if w == nil {
		return nil, nil
	}
	kind, ok := operandKindByName[w.Kind]
	if !ok {
		return nil, fmt.Errorf("bytecode: unknown operand kind %q", w.Kind)
	}
	op := &ir.Operand{Kind: kind}
	switch kind {
	case ir.OperandInt:
		op.Int = w.Int
	case ir.OperandStr:
		op.Str = w.Str
	case ir.OperandBool:
		op.Bool = w.Bool
	case ir.OperandInternal:
		internalOp, ok := ir.LookupInternalOp(w.Internal)
		if !ok {
			return nil, fmt.Errorf("bytecode: unknown internal opcode %q", w.Internal)
		}
		op.Internal = internalOp
	case ir.OperandPushFunction:
		ins, err := fromWireTypeNames(w.FuncIns)
		if err != nil {
			return nil, err
		}
		outs, err := fromWireTypeNames(w.FuncOuts)
		if err != nil {
			return nil, err
		}
		op.PushFunction = ir.FuncRef{Name: w.FuncName, Ins: ins, Outs: outs}
	case ir.OperandCall:
		op.Call = w.Call
	case ir.OperandDescriptorAction:
		op.DescriptorAction = ir.DescriptorActionRef{Type: w.DescType, Action: w.DescAction}
	}
	return op, nil
}

func toWireOperation(op ir.Operation, level token.StripLevel) (wireOperation, error) {
	operand, err := toWireOperand(op.Operand)
	if err != nil {
		return wireOperation{}, err
	}
	name, ok := opKindNames2(op.Op)
	if !ok {
		return wireOperation{}, fmt.Errorf("bytecode: unsupported opcode %v", op.Op)
	}
	return wireOperation{Op: name, Debug: toWireDebug(op.Debug.Strip(level)), Operand: operand}, nil
}

func opKindNames2(k ir.OpKind) (string, bool) {
	if int(k) >= len(opKindNames) {
		return "", false
	}
	return opKindNames[k], true
}

func fromWireOperation(w wireOperation) (ir.Operation, error) {
	kind, ok := opKindByName[w.Op]
	if !ok {
		return ir.Operation{}, fmt.Errorf("bytecode: unknown opcode %q", w.Op)
	}
	operand, err := fromWireOperand(w.Operand)
	if err != nil {
		return ir.Operation{}, err
	}
	return ir.Operation{Op: kind, Debug: fromWireDebug(w.Debug), Operand: operand}, nil
}

func toWireFunction(fn *ir.Function, level token.StripLevel) (wireFunction, error) {
	body := make([]wireOperation, len(fn.Body))
	for i, op := range fn.Body {
		wop, err := toWireOperation(op, level)
		if err != nil {
			return wireFunction{}, fmt.Errorf("function %q: %w", fn.Name, err)
		}
		body[i] = wop
	}
	return wireFunction{
		Name: fn.Name,
		Ins:  toWireTypeNames(fn.Ins),
		Outs: toWireTypeNames(fn.Outs),
		Body: body,
	}, nil
}

func fromWireFunction(w wireFunction) (*ir.Function, error) {
	ins, err := fromWireTypeNames(w.Ins)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", w.Name, err)
	}
	outs, err := fromWireTypeNames(w.Outs)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", w.Name, err)
	}
	body := make([]ir.Operation, len(w.Body))
	for i, wop := range w.Body {
		op, err := fromWireOperation(wop)
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", w.Name, err)
		}
		body[i] = op
	}
	return &ir.Function{Name: w.Name, Ins: ins, Outs: outs, Body: body}, nil
}

func toWireMeta(m ir.Meta) wireMeta {
	return wireMeta{Name: m.Name, Version: m.Version, Author: m.Author, Description: m.Description}
}

func fromWireMeta(w wireMeta) ir.Meta {
	return ir.Meta{Name: w.Name, Version: w.Version, Author: w.Author, Description: w.Description}
}

func toWireProgram(p *ir.Program, level token.StripLevel) (*wireProgram, error) {
	names := p.Names()
	fns := make([]wireFunction, len(names))
	for i, name := range names {
		wf, err := toWireFunction(p.Lookup(name), level)
		if err != nil {
			return nil, err
		}
		fns[i] = wf
	}
	return &wireProgram{Meta: toWireMeta(p.Meta), Functions: fns}, nil
}

func fromWireProgram(w *wireProgram) (*ir.Program, error) {
	p := ir.NewProgram(fromWireMeta(w.Meta))
	for _, wf := range w.Functions {
		fn, err := fromWireFunction(wf)
		if err != nil {
			return nil, err
		}
		p.Define(fn)
	}
	return p, nil
}
