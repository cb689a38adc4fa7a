package typecheck

import (
	"fmt"

	"github.com/mna/stackyy/lang/descriptor"
	"github.com/mna/stackyy/lang/internals"
	"github.com/mna/stackyy/lang/ir"
	"golang.org/x/exp/slices"
)

// ErrorKind is the closed ErrorTypes variant set of §4.6.
type ErrorKind uint8

//nolint:revive
const (
	ErrNone ErrorKind = iota
	ErrTooFewElements
	ErrWrongData
	ErrInvalidTypes
	ErrClosureError
	ErrRaw
)

// Violation is what a failed type handler returns: the ErrorKind together
// with the expected type list and a snapshot of the offending stack, the
// context §4.6 says every ErrorTypes variant carries for diagnostics.
type Violation struct {
	Kind     ErrorKind
	Expected []ir.Type
	Got      []ir.Type
	Raw      string
}

func (v *Violation) Error() string {
	if v.Kind == ErrRaw {
		return v.Raw
	}
	return formatError(v.Kind, v.Expected, v.Got)
}

func formatError(kind ErrorKind, expected, got []ir.Type) string {
	switch kind {
	case ErrTooFewElements:
		return fmt.Sprintf("too few elements on the stack: expected [%s], got [%s]", ir.JoinTypes(expected), ir.JoinTypes(got))
	case ErrWrongData:
		return fmt.Sprintf("wrong data on the stack: expected [%s], got [%s]", ir.JoinTypes(expected), ir.JoinTypes(got))
	case ErrInvalidTypes:
		return fmt.Sprintf("invalid types: expected matching [%s], got [%s]", ir.JoinTypes(expected), ir.JoinTypes(got))
	case ErrClosureError:
		return fmt.Sprintf("closure error: dynamic call ins [%s] must equal outs [%s] to type check both branches of '@if'", ir.JoinTypes(expected), ir.JoinTypes(got))
	default:
		return "type error"
	}
}

func rawViolation(format string, args ...any) *Violation {
	return &Violation{Kind: ErrRaw, Raw: fmt.Sprintf(format, args...)}
}

// Stack is the shadow type stack, shared by the compile-time checker (one
// Stack per checked function) and the machine's runtime type handler (one
// Stack for a thread's whole call tree) (§4.7: "the shadow stack... keeps
// the compile-time type discipline in force during interpretation").
type Stack struct {
	types []ir.Type
}

// NewStack builds a Stack seeded with initial (typically a function's Ins).
func NewStack(initial []ir.Type) *Stack {
	return &Stack{types: append([]ir.Type(nil), initial...)}
}

// Push appends t to the top of the stack.
func (s *Stack) Push(t ir.Type) { s.types = append(s.types, t) }

// Pop removes and returns the top element, or false if the stack is empty.
func (s *Stack) Pop() (ir.Type, bool) {
	if len(s.types) == 0 {
		return ir.Type{}, false
	}
	t := s.types[len(s.types)-1]
	s.types = s.types[:len(s.types)-1]
	return t, true
}

// Len reports the current depth.
func (s *Stack) Len() int { return len(s.types) }

// Snapshot returns a copy of the stack's contents, bottom-to-top.
func (s *Stack) Snapshot() []ir.Type {
	cp := make([]ir.Type, len(s.types))
	copy(cp, s.types)
	return cp
}

// ApplyOperation mutates st according to op's static effect (§4.6), using
// program to resolve a static Call's target contract. It returns nil on
// success, or the Violation that should abort checking this operation —
// the compile-time checker turns that into a batched diagnostic with the
// enclosing function's name and op's position; the machine turns it into an
// immediate fatal runtime error (§4.7's "type handler... in runtime mode").
func ApplyOperation(program *ir.Program, st *Stack, op ir.Operation) *Violation {
	switch op.Op {
	case ir.OpKindPush:
		return applyPush(st, op)
	case ir.OpKindInternal:
		return applyInternal(st, op)
	case ir.OpKindDescriptor:
		return applyDescriptor(st, op)
	case ir.OpKindCall:
		return applyCall(program, st, op)
	case ir.OpKindCallIf:
		return applyCallIf(st)
	default:
		return rawViolation("unsupported opcode '%s'", op.Op)
	}
}

func applyPush(st *Stack, op ir.Operation) *Violation {
	switch op.Operand.Kind {
	case ir.OperandInt:
		st.Push(ir.Int)
	case ir.OperandStr:
		st.Push(ir.String)
	case ir.OperandBool:
		st.Push(ir.Bool)
	case ir.OperandPushFunction:
		ref := op.Operand.PushFunction
		st.Push(ir.FunctionPointer(ref.Ins, ref.Outs))
	default:
		return rawViolation("push with no literal operand")
	}
	return nil
}

func applyInternal(st *Stack, op ir.Operation) *Violation {
	contract, ok := internals.ContractForOp(op.Operand.Internal)
	if !ok {
		return rawViolation("unknown internal opcode '%s'", op.Operand.Internal)
	}
	switch contract.Shape {
	case internals.ShapeFixed:
		return applyContract(st, contract.Ins, contract.Outs)
	case internals.ShapeNone:
		return applyShapeNone(st, op)
	case internals.ShapeSwap:
		return applySwap(st)
	case internals.ShapeDup:
		return applyDup(st)
	case internals.ShapeCompare:
		return applyCompare(st)
	default:
		return rawViolation("internal opcode with unknown contract shape")
	}
}

func applySwap(st *Stack) *Violation {
	b, ok := st.Pop()
	if !ok {
		return &Violation{Kind: ErrTooFewElements, Expected: []ir.Type{ir.Any, ir.Any}, Got: st.Snapshot()}
	}
	a, ok := st.Pop()
	if !ok {
		return &Violation{Kind: ErrTooFewElements, Expected: []ir.Type{ir.Any, ir.Any}, Got: append(st.Snapshot(), b)}
	}
	st.Push(b)
	st.Push(a)
	return nil
}

func applyDup(st *Stack) *Violation {
	a, ok := st.Pop()
	if !ok {
		return &Violation{Kind: ErrTooFewElements, Expected: []ir.Type{ir.Any}, Got: st.Snapshot()}
	}
	st.Push(a)
	st.Push(a)
	return nil
}

func applyCompare(st *Stack) *Violation {
	b, ok := st.Pop()
	if !ok {
		return &Violation{Kind: ErrTooFewElements, Expected: []ir.Type{ir.Any, ir.Any}, Got: st.Snapshot()}
	}
	a, ok := st.Pop()
	if !ok {
		return &Violation{Kind: ErrTooFewElements, Expected: []ir.Type{ir.Any, ir.Any}, Got: append(st.Snapshot(), b)}
	}
	if !comparable(a.Kind) || a.Kind != b.Kind {
		return &Violation{Kind: ErrInvalidTypes, Expected: []ir.Type{a}, Got: []ir.Type{a, b}}
	}
	st.Push(ir.Bool)
	return nil
}

func comparable(k ir.Kind) bool {
	return k == ir.KindInt || k == ir.KindString || k == ir.KindBool
}

// applyShapeNone handles the stack-wide and nullary internals (§4.4): their
// fixed (ins, outs) is empty, but several of them still rearrange the
// shadow stack so later operations see the right types.
func applyShapeNone(st *Stack, op ir.Operation) *Violation {
	switch op.Operand.Internal {
	case ir.OpRevStack:
		n := len(st.types)
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			st.types[i], st.types[j] = st.types[j], st.types[i]
		}
	case ir.OpDupStack:
		st.types = append(st.types, st.Snapshot()...)
	case ir.OpDropStack:
		st.types = st.types[:0]
	case ir.OpNoop, ir.OpDbgStack:
		// no stack effect
	}
	return nil
}

func applyDescriptor(st *Stack, op ir.Operation) *Violation {
	ref := op.Operand.DescriptorAction
	typ, ok := descriptor.LookupType(ref.Type)
	if !ok {
		return rawViolation("unknown descriptor type '%s'", ref.Type)
	}
	action, ok := descriptor.LookupAction(ref.Action)
	if !ok {
		return rawViolation("unknown descriptor action '%s'", ref.Action)
	}
	contract, ok := descriptor.ContractFor(typ, action)
	if !ok {
		return rawViolation("no contract for '%s-%s'", ref.Type, ref.Action)
	}
	return applyContract(st, contract.Ins, contract.Outs)
}

func applyCall(program *ir.Program, st *Stack, op ir.Operation) *Violation {
	if op.Operand == nil {
		top, ok := st.Pop()
		if !ok {
			return &Violation{Kind: ErrTooFewElements, Expected: []ir.Type{ir.FunctionPointer(nil, nil)}, Got: st.Snapshot()}
		}
		if top.Kind != ir.KindFunctionPointer {
			return &Violation{Kind: ErrWrongData, Expected: []ir.Type{ir.FunctionPointer(nil, nil)}, Got: []ir.Type{top}}
		}
		return applyContract(st, top.Ins, top.Outs)
	}

	target := program.Lookup(op.Operand.Call)
	if target == nil {
		return rawViolation("call to undefined function '%s'", op.Operand.Call)
	}
	return applyContract(st, target.Ins, target.Outs)
}

func applyCallIf(st *Stack) *Violation {
	b, ok := st.Pop()
	if !ok || b.Kind != ir.KindBool {
		return &Violation{Kind: ErrTooFewElements, Expected: []ir.Type{ir.FunctionPointer(nil, nil), ir.Bool}, Got: st.Snapshot()}
	}
	f, ok := st.Pop()
	if !ok || f.Kind != ir.KindFunctionPointer {
		return &Violation{Kind: ErrWrongData, Expected: []ir.Type{ir.FunctionPointer(nil, nil), ir.Bool}, Got: st.Snapshot()}
	}
	if !contractMatches(f.Ins, f.Outs) {
		return &Violation{Kind: ErrClosureError, Expected: f.Ins, Got: f.Outs}
	}
	return applyContract(st, f.Ins, f.Outs)
}

// applyContract consumes the top len(ins) elements of st (bottom-to-top,
// matching ins positionally) and pushes outs (§4.6's "compare top |ins| of
// the stack equal-by-type").
func applyContract(st *Stack, ins, outs []ir.Type) *Violation {
	n := len(ins)
	if st.Len() < n {
		return &Violation{Kind: ErrTooFewElements, Expected: ins, Got: st.Snapshot()}
	}
	top := st.types[len(st.types)-n:]
	for i, want := range ins {
		if !want.AssignableFrom(top[i]) {
			return &Violation{Kind: ErrWrongData, Expected: ins, Got: st.Snapshot()}
		}
	}
	st.types = st.types[:len(st.types)-n]
	for _, o := range outs {
		st.Push(o)
	}
	return nil
}

// contractMatches reports whether got satisfies want positionally, used
// both for ins==outs CallIf checking and the function-exit residual check.
func contractMatches(want, got []ir.Type) bool {
	return slices.EqualFunc(want, got, func(w, g ir.Type) bool {
		return w.AssignableFrom(g)
	})
}
