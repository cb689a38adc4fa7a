package ir

// Function is a named, typed, concatenative function (§3.6). (Ins, Outs)
// is its contract: what the type checker and the machine require on the
// operand stack at entry and guarantee at exit.
type Function struct {
	Name string
	Ins  []Type
	Outs []Type
	Body []Operation
}

// Ref returns the FuncRef describing this function's contract, the shape
// carried by PushFunction and Call operands.
func (f *Function) Ref() FuncRef {
	return FuncRef{Name: f.Name, Ins: f.Ins, Outs: f.Outs}
}

// ContractEqual reports whether f's (ins, outs) contract matches the given
// one exactly, the check the machine performs when a dynamically
// constructed Function value is Call'd (§4.7's "dynamic call
// enforcement").
func (f *Function) ContractEqual(ins, outs []Type) bool {
	return typesEqual(f.Ins, ins) && typesEqual(f.Outs, outs)
}
