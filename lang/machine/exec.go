package machine

import (
	"fmt"

	"github.com/mna/stackyy/lang/descriptor"
	"github.com/mna/stackyy/lang/errs"
	"github.com/mna/stackyy/lang/ir"
	"github.com/mna/stackyy/lang/values"
)

// exec runs op's runtime handler against t's operand stack, the second half
// of the per-op loop of §4.7 (the type handler already ran in typecheck.
// ApplyOperation by the time this is called).
func (t *Thread) exec(fn *ir.Function, op ir.Operation) error {
	switch op.Op {
	case ir.OpKindPush:
		return t.execPush(op)
	case ir.OpKindInternal:
		return t.execInternal(op)
	case ir.OpKindDescriptor:
		return t.execDescriptor(op)
	case ir.OpKindCall:
		return t.execCall(op)
	case ir.OpKindCallIf:
		return t.execCallIf(op)
	default:
		return errs.Runtime(op.Debug, "unsupported opcode '%s'", op.Op)
	}
}

func (t *Thread) execPush(op ir.Operation) error {
	switch op.Operand.Kind {
	case ir.OperandInt:
		t.push(values.Int(op.Operand.Int))
	case ir.OperandStr:
		t.push(values.String(op.Operand.Str))
	case ir.OperandBool:
		t.push(values.Bool(op.Operand.Bool))
	case ir.OperandPushFunction:
		ref := op.Operand.PushFunction
		t.push(&values.Function{Name: ref.Name, Ins: ref.Ins, Outs: ref.Outs})
	default:
		return errs.Runtime(op.Debug, "push with no literal operand")
	}
	return nil
}

// execCall implements §4.7's dynamic call enforcement: a Call with no
// inline operand pops a function pointer off the stack, and the target's
// declared contract must equal the pointer's own contract exactly, guarding
// against a reflection-constructed name/contract mismatch.
func (t *Thread) execCall(op ir.Operation) error {
	if op.Operand == nil {
		f, err := t.popFunction(op)
		if err != nil {
			return err
		}
		return t.dynamicCall(op, f)
	}
	target := t.Program.Lookup(op.Operand.Call)
	if target == nil {
		return errs.Runtime(op.Debug, "call to undefined function '%s'", op.Operand.Call)
	}
	return t.call(target)
}

func (t *Thread) execCallIf(op ir.Operation) error {
	b, err := t.popBool(op)
	if err != nil {
		return err
	}
	f, err := t.popFunction(op)
	if err != nil {
		return err
	}
	if !b {
		return nil
	}
	return t.dynamicCall(op, f)
}

func (t *Thread) dynamicCall(op ir.Operation, f *values.Function) error {
	target := t.Program.Lookup(f.Name)
	if target == nil {
		return errs.Runtime(op.Debug, "call to undefined function '%s'", f.Name)
	}
	if !target.ContractEqual(f.Ins, f.Outs) {
		return errs.Runtime(op.Debug, "function pointer contract for '%s' no longer matches its declaration", f.Name)
	}
	return t.call(target)
}

func (t *Thread) execDescriptor(op ir.Operation) error {
	ref := op.Operand.DescriptorAction
	typ, ok := descriptor.LookupType(ref.Type)
	if !ok {
		return errs.Runtime(op.Debug, "unknown descriptor type '%s'", ref.Type)
	}
	action, ok := descriptor.LookupAction(ref.Action)
	if !ok {
		return errs.Runtime(op.Debug, "unknown descriptor action '%s'", ref.Action)
	}

	switch action {
	case descriptor.Open:
		path, err := t.popString(op)
		if err != nil {
			return err
		}
		d, err := descriptor.Open(typ, string(path))
		if err != nil {
			return errs.Runtime(op.Debug, "open '%s' failed: %s", path, err)
		}
		t.push(&values.Descriptor{D: d})

	case descriptor.ReadAll:
		dv, err := t.popDescriptor(op)
		if err != nil {
			return err
		}
		content, err := dv.D.ReadAll()
		if err != nil {
			return errs.Runtime(op.Debug, "read-all failed: %s", err)
		}
		t.push(values.String(content))
		t.push(dv)

	case descriptor.WriteAll:
		content, err := t.popString(op)
		if err != nil {
			return err
		}
		dv, err := t.popDescriptor(op)
		if err != nil {
			return err
		}
		if err := dv.D.WriteAll(string(content)); err != nil {
			return errs.Runtime(op.Debug, "write-all failed: %s", err)
		}
		t.push(dv)

	case descriptor.ToString:
		dv, err := t.popDescriptor(op)
		if err != nil {
			return err
		}
		s, err := dv.D.ToString()
		if err != nil {
			return errs.Runtime(op.Debug, "to-string failed: %s", err)
		}
		t.push(values.String(s))
		t.push(dv)

	default:
		return errs.Runtime(op.Debug, "unsupported descriptor action '%s'", ref.Action)
	}
	return nil
}

// execInternal dispatches a builtin opcode (§4.4) to its runtime effect.
func (t *Thread) execInternal(op ir.Operation) error {
	switch op.Operand.Internal {
	case ir.OpNoop:
		return nil
	case ir.OpPrint:
		v, err := t.pop(op)
		if err != nil {
			return err
		}
		if err := writeString(t.Stdout, v.String()); err != nil {
			return errs.Runtime(op.Debug, "print failed: %s", err)
		}
		if f, ok := t.Stdout.(flusher); ok {
			return f.Flush()
		}
		return nil
	case ir.OpPrintln:
		v, err := t.pop(op)
		if err != nil {
			return err
		}
		if err := writeString(t.Stdout, v.String()+"\n"); err != nil {
			return errs.Runtime(op.Debug, "println failed: %s", err)
		}
		return nil
	case ir.OpToString:
		v, err := t.pop(op)
		if err != nil {
			return err
		}
		t.push(values.String(v.String()))
		return nil

	case ir.OpSwap:
		b, err := t.pop(op)
		if err != nil {
			return err
		}
		a, err := t.pop(op)
		if err != nil {
			return err
		}
		t.push(b)
		t.push(a)
		return nil
	case ir.OpDrop:
		v, err := t.pop(op)
		if err != nil {
			return err
		}
		if err := values.Drop(v); err != nil {
			return errs.Runtime(op.Debug, "drop failed: %s", err)
		}
		return nil
	case ir.OpDup:
		v, err := t.pop(op)
		if err != nil {
			return err
		}
		t.push(v)
		t.push(values.Clone(v))
		return nil
	case ir.OpRevStack:
		for i, j := 0, len(t.stack)-1; i < j; i, j = i+1, j-1 {
			t.stack[i], t.stack[j] = t.stack[j], t.stack[i]
		}
		return nil
	case ir.OpDropStack:
		for _, v := range t.stack {
			if err := values.Drop(v); err != nil {
				return errs.Runtime(op.Debug, "drop-stack failed: %s", err)
			}
		}
		t.stack = t.stack[:0]
		return nil
	case ir.OpDupStack:
		clones := make([]values.Value, len(t.stack))
		for i, v := range t.stack {
			clones[i] = values.Clone(v)
		}
		t.stack = append(t.stack, clones...)
		return nil
	case ir.OpDbgStack:
		for i, v := range t.stack {
			if err := writeString(t.Stdout, fmt.Sprintf("[%d] -> %s\n", i, v.String())); err != nil {
				return errs.Runtime(op.Debug, "dbg-stack failed: %s", err)
			}
		}
		return nil

	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod:
		return t.execMath(op)
	case ir.OpSquared:
		a, err := t.popInt(op)
		if err != nil {
			return err
		}
		t.push(a * a)
		return nil
	case ir.OpCubed:
		a, err := t.popInt(op)
		if err != nil {
			return err
		}
		t.push(a * a * a)
		return nil

	case ir.OpNot, ir.OpPeekNot:
		b, err := t.popBool(op)
		if err != nil {
			return err
		}
		t.push(!b)
		return nil
	case ir.OpEq, ir.OpLt, ir.OpGt, ir.OpLe, ir.OpGe:
		return t.execCompare(op)

	case ir.OpRefRemStr, ir.OpRefRemStrDrop, ir.OpRefPush, ir.OpRefClear:
		return t.execReflection(op)

	default:
		return errs.Runtime(op.Debug, "unimplemented internal opcode '%s'", op.Operand.Internal)
	}
}

// execMath implements the non-commutative operators reading `a b OP` as
// `a OP b`: the value popped first (the operand pushed last, i.e. on top)
// is the right-hand side, and the value popped second is the left-hand
// side. So `6 3 -` computes `6 - 3`, and `6 3 /` computes `6 / 3`.
func (t *Thread) execMath(op ir.Operation) error {
	top, err := t.popInt(op)
	if err != nil {
		return err
	}
	bottom, err := t.popInt(op)
	if err != nil {
		return err
	}
	switch op.Operand.Internal {
	case ir.OpAdd:
		t.push(top + bottom)
	case ir.OpSub:
		t.push(bottom - top)
	case ir.OpMul:
		t.push(top * bottom)
	case ir.OpDiv:
		if top == 0 {
			return errs.Runtime(op.Debug, "Divison by 0 is undefined")
		}
		t.push(bottom / top)
	case ir.OpMod:
		if top == 0 {
			return errs.Runtime(op.Debug, "modulo by 0 is undefined")
		}
		t.push(bottom % top)
	}
	return nil
}

// execCompare reads its operands the opposite way round from execMath: the
// value popped first (top) is the left operand, so `5 3 >` pops a=3 (top) then b=5 (second) and evaluates `a > b`, i.e. `3 >
// 5`, false. Equality is symmetric so the ordering is immaterial there.
func (t *Thread) execCompare(op ir.Operation) error {
	a, err := t.pop(op)
	if err != nil {
		return err
	}
	b, err := t.pop(op)
	if err != nil {
		return err
	}
	switch op.Operand.Internal {
	case ir.OpEq:
		t.push(values.Bool(a.String() == b.String() && a.Type().Equal(b.Type())))
		return nil
	}

	ai, aok := a.(values.Int)
	bi, bok := b.(values.Int)
	if !aok || !bok {
		return errs.Runtime(op.Debug, "ordering comparison requires two Ints, got %s and %s", a.Type(), b.Type())
	}
	var result bool
	switch op.Operand.Internal {
	case ir.OpLt:
		result = ai < bi
	case ir.OpGt:
		result = ai > bi
	case ir.OpLe:
		result = ai <= bi
	case ir.OpGe:
		result = ai >= bi
	}
	t.push(values.Bool(result))
	return nil
}

// execReflection implements §4.4's reflection ops against a function
// pointer's name string. ref-clear resets the name without consuming a
// second operand: unlike the other three ops it takes only the pointer
// itself on the stack (its declared contract is `(FnPtr) -> (FnPtr)`).
func (t *Thread) execReflection(op ir.Operation) error {
	f, err := t.popFunction(op)
	if err != nil {
		return err
	}

	switch op.Operand.Internal {
	case ir.OpRefRemStr, ir.OpRefRemStrDrop:
		n, err := t.popInt(op)
		if err != nil {
			return err
		}
		name := []rune(f.Name)
		if len(name) == 0 {
			return errs.Runtime(op.Debug, "cannot remove string from empty function name")
		}
		if int(n) > len(name) {
			return errs.Runtime(op.Debug, "tried to remove too much from function name")
		}
		tail := name[len(name)-int(n):]
		removed := make([]rune, len(tail))
		for i, r := range tail {
			removed[len(tail)-1-i] = r
		}
		next := f.WithName(string(name[:len(name)-int(n)]))
		if op.Operand.Internal == ir.OpRefRemStr {
			t.push(values.String(string(removed)))
		}
		t.push(next)

	case ir.OpRefPush:
		s, err := t.popString(op)
		if err != nil {
			return err
		}
		t.push(f.WithName(f.Name + string(s)))

	case ir.OpRefClear:
		t.push(f.WithName(""))
	}
	return nil
}
