package ir

import "github.com/mna/stackyy/lang/token"

// OpKind is the tag of the closed Operation variant set (§3.5).
type OpKind uint8

//nolint:revive
const (
	OpKindPush OpKind = iota
	OpKindPushFunction
	OpKindInternal
	OpKindDescriptor
	OpKindCall
	OpKindCallIf
	OpKindJump   // reserved: not emitted by the current grammar (§3.5, §4.3)
	OpKindJumpIf // reserved: not emitted by the current grammar (§3.5, §4.3)
)

func (k OpKind) String() string {
	switch k {
	case OpKindPush:
		return "push"
	case OpKindPushFunction:
		return "push-function"
	case OpKindInternal:
		return "internal"
	case OpKindDescriptor:
		return "descriptor"
	case OpKindCall:
		return "call"
	case OpKindCallIf:
		return "call-if"
	case OpKindJump:
		return "jump"
	case OpKindJumpIf:
		return "jump-if"
	default:
		return "invalid"
	}
}

// OperandKind is the tag of the closed Operand variant set (§3.5).
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandInt
	OperandStr
	OperandBool
	OperandInternal
	OperandPushFunction
	OperandCall
	OperandDescriptorAction
)

// FuncRef names a function together with its declared contract, the
// payload of a PushFunction operand and of a resolved Call operand.
type FuncRef struct {
	Name string
	Ins  []Type
	Outs []Type
}

// DescriptorActionRef names a descriptor type and the action requested on
// it, the payload of a Descriptor operation's operand (§4.5).
type DescriptorActionRef struct {
	Type   string
	Action string
}

// Operand is the tagged union of data an Operation may carry (§3.5). Call
// has no operand when it represents a dynamic call (`@`/`@if`): the callee
// comes off the stack at runtime instead.
type Operand struct {
	Kind             OperandKind
	Int              int32
	Str              string
	Bool             bool
	Internal         InternalOp
	PushFunction     FuncRef
	Call             string
	DescriptorAction DescriptorActionRef
}

// Operation is one instruction in a Function's body (§3.5): an OpKind, its
// optional Operand, and the DebugInfo surviving whatever strip level the
// program was compiled at.
type Operation struct {
	Op      OpKind
	Debug   token.DebugInfo
	Operand *Operand
}

// Position returns the best source location this operation's DebugInfo can
// offer, or the zero Position if it was stripped away.
func (op Operation) Position() token.Position { return op.Debug.Position() }
