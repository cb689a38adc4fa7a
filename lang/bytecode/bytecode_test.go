package bytecode

import (
	"testing"

	"github.com/mna/stackyy/lang/ir"
	"github.com/mna/stackyy/lang/limits"
	"github.com/mna/stackyy/lang/parser"
	"github.com/mna/stackyy/lang/token"
	"github.com/stretchr/testify/require"
)

const sampleSrc = `
include "@std/simple-maths"
include "@std/stack-ops"

@square(int->int)
  dup *
end

@main(->int)
  5 ~square @
  42 -
  drop
  0
end
`

func mustParse(t *testing.T) *ir.Program {
	t.Helper()
	program, err := parser.ParseSource("sample.scy", sampleSrc, limits.Default())
	require.NoError(t, err)
	program.Meta = ir.Meta{Name: "sample", Version: "1.0.0"}
	return program
}

// assertStructurallyEqual compares two programs the way the bytecode
// round-trip law in §8 means it: same metadata, same function names, same
// contracts, same operation Op/Operand sequence. DebugInfo.Tok is deliberately
// excluded from the comparison because decoding never reconstructs the full
// original token.Value (see wireDebug's doc comment); FormatInfo and
// Position are compared separately by the caller where relevant.
func assertStructurallyEqual(t *testing.T, want, got *ir.Program) {
	t.Helper()
	require.Equal(t, want.Meta, got.Meta)
	require.Equal(t, want.Names(), got.Names())
	for _, name := range want.Names() {
		wf, gf := want.Lookup(name), got.Lookup(name)
		require.Equal(t, wf.Ins, gf.Ins, "function %q ins", name)
		require.Equal(t, wf.Outs, gf.Outs, "function %q outs", name)
		require.Len(t, gf.Body, len(wf.Body), "function %q body length", name)
		for i := range wf.Body {
			require.Equal(t, wf.Body[i].Op, gf.Body[i].Op, "function %q op %d", name, i)
			require.Equal(t, wf.Body[i].Operand, gf.Body[i].Operand, "function %q operand %d", name, i)
		}
	}
}

func TestEncodeDecodeBinaryRoundTripStripNone(t *testing.T) {
	want := mustParse(t)
	data, err := Encode(want, token.StripNone, Binary)
	require.NoError(t, err)
	got, err := Decode(data, Binary)
	require.NoError(t, err)
	assertStructurallyEqual(t, want, got)

	square := want.Lookup("square")
	gotSquare := got.Lookup("square")
	require.Equal(t, square.Body[0].Position(), gotSquare.Body[0].Position())
	require.Equal(t, square.Body[0].Debug.FormatInfo(), gotSquare.Body[0].Debug.FormatInfo())
}

func TestEncodeDecodeTextRoundTripStripNone(t *testing.T) {
	want := mustParse(t)
	data, err := Encode(want, token.StripNone, Text)
	require.NoError(t, err)
	got, err := Decode(data, Text)
	require.NoError(t, err)
	assertStructurallyEqual(t, want, got)
}

func TestStripPositionKeepsPositionDropsTokenText(t *testing.T) {
	want := mustParse(t)
	data, err := Encode(want, token.StripPosition, Binary)
	require.NoError(t, err)
	got, err := Decode(data, Binary)
	require.NoError(t, err)

	square := want.Lookup("square")
	gotSquare := got.Lookup("square")
	require.Equal(t, token.DebugPosition, gotSquare.Body[0].Debug.Kind)
	require.Equal(t, square.Body[0].Position(), gotSquare.Body[0].Position())
}

func TestStripAllDropsAllDebug(t *testing.T) {
	want := mustParse(t)
	data, err := Encode(want, token.StripAll, Binary)
	require.NoError(t, err)
	got, err := Decode(data, Binary)
	require.NoError(t, err)

	gotSquare := got.Lookup("square")
	for i, op := range gotSquare.Body {
		require.Equal(t, token.DebugNone, op.Debug.Kind, "op %d", i)
		require.True(t, op.Position().Unknown(), "op %d", i)
	}
}

func TestEncodeDecodeDynamicCallOperand(t *testing.T) {
	// square is called dynamically through a `~square` function pointer, so
	// its push-function and nil-operand call must both survive the round trip.
	want := mustParse(t)
	data, err := Encode(want, token.StripNone, Binary)
	require.NoError(t, err)
	got, err := Decode(data, Binary)
	require.NoError(t, err)

	main := got.Lookup("main")
	var sawPushFunction, sawDynamicCall bool
	for _, op := range main.Body {
		if op.Op == ir.OpKindPush && op.Operand != nil && op.Operand.Kind == ir.OperandPushFunction {
			sawPushFunction = true
			require.Equal(t, "square", op.Operand.PushFunction.Name)
			require.Equal(t, []ir.Type{ir.Int}, op.Operand.PushFunction.Ins)
			require.Equal(t, []ir.Type{ir.Int}, op.Operand.PushFunction.Outs)
		}
		if op.Op == ir.OpKindCall && op.Operand == nil {
			sawDynamicCall = true
		}
	}
	require.True(t, sawPushFunction)
	require.True(t, sawDynamicCall)
}

func TestMetaRoundTrip(t *testing.T) {
	author := "a. stacker"
	desc := "a sample program"
	m := ir.Meta{Name: "sample", Version: "1.2.3", Author: &author, Description: &desc}

	data, err := SaveMeta(m)
	require.NoError(t, err)
	got, err := LoadMeta(data)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestMetaRoundTripOptionalFieldsAbsent(t *testing.T) {
	m := ir.Meta{Name: "sample", Version: "1.2.3"}
	data, err := SaveMeta(m)
	require.NoError(t, err)
	got, err := LoadMeta(data)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestLoadMetaMissingRequiredFields(t *testing.T) {
	_, err := LoadMeta([]byte("author: someone\n"))
	require.Error(t, err)

	_, err = LoadMeta([]byte("name: sample\n"))
	require.Error(t, err)
}
