package token

import "fmt"

// FuncSig is the parsed payload of a function declaration (`@name(ins ->
// outs)`) or function-pointer literal (`#name(ins -> outs)`). Ins and Outs
// are the raw type names from the signature grammar (§4.2); resolving them
// to lang/ir.Type values is the parser's job, not the lexer's, so this
// package has no dependency on the type system.
type FuncSig struct {
	Name string
	Ins  []string
	Outs []string
}

func (s FuncSig) String() string {
	return fmt.Sprintf("%s(%v -> %v)", s.Name, s.Ins, s.Outs)
}

// Value is a classified Token together with its parsed payload (§3.3).
type Value struct {
	Kind Kind
	Raw  string // the original, unprocessed token text
	Pos  Position

	Int     int32   // valid when Kind == INT
	Str     string  // valid when Kind == STR, after escape processing
	Keyword Keyword // valid when Kind == KEYWORD
	Sig     FuncSig // valid when Kind == FUNCDECL or Kind == FUNCPTR
}

// String renders the token the way a human would read it in source.
func (v Value) String() string {
	switch v.Kind {
	case STR:
		return fmt.Sprintf("%q", v.Str)
	default:
		return v.Raw
	}
}

// FormatInfo renders the <info> part of a diagnostic anchored to a Token:
// "file:line:col -> 'text'" (§4.9).
func (v Value) FormatInfo() string {
	if v.Pos.Unknown() {
		return fmt.Sprintf("-> '%s'", v.Raw)
	}
	return fmt.Sprintf("%s -> '%s'", v.Pos.String(), v.Raw)
}
