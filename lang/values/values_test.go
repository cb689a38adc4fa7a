package values

import (
	"path/filepath"
	"testing"

	"github.com/mna/stackyy/lang/descriptor"
	"github.com/mna/stackyy/lang/ir"
	"github.com/stretchr/testify/require"
)

func TestScalarStringForms(t *testing.T) {
	require.Equal(t, "42", Int(42).String())
	require.Equal(t, "-1", Int(-1).String())
	require.Equal(t, "true", Bool(true).String())
	require.Equal(t, "false", Bool(false).String())
	require.Equal(t, "hi", String("hi").String())
	require.Equal(t, "*0xFF", Pointer(0xFF).String())
}

func TestScalarTypes(t *testing.T) {
	require.Equal(t, ir.Int, Int(1).Type())
	require.Equal(t, ir.Bool, Bool(true).Type())
	require.Equal(t, ir.String, String("x").Type())
	require.Equal(t, ir.Pointer, Pointer(1).Type())
}

func TestFunctionStringAndType(t *testing.T) {
	f := &Function{Name: "square", Ins: []ir.Type{ir.Int}, Outs: []ir.Type{ir.Int}}
	require.Equal(t, "*square()", f.String())
	require.Equal(t, ir.FunctionPointer([]ir.Type{ir.Int}, []ir.Type{ir.Int}), f.Type())
}

func TestFunctionWithName(t *testing.T) {
	f := &Function{Name: "square", Ins: []ir.Type{ir.Int}, Outs: []ir.Type{ir.Int}}
	renamed := f.WithName("sq2")
	require.Equal(t, "sq2", renamed.Name)
	require.Equal(t, f.Ins, renamed.Ins)
	require.Equal(t, "square", f.Name)
}

func TestDescriptorCloneSharesResource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	d, err := descriptor.Open(descriptor.TypeFile, path)
	require.NoError(t, err)
	v := &Descriptor{D: d}

	cloned := Clone(v).(*Descriptor)
	require.NoError(t, cloned.D.WriteAll("x"))

	got, err := v.D.ReadAll()
	require.NoError(t, err)
	require.Equal(t, "x", got)

	require.NoError(t, Drop(v))
	require.NoError(t, Drop(cloned))
}

func TestDropNoopForScalars(t *testing.T) {
	require.NoError(t, Drop(Int(1)))
	require.NoError(t, Drop(Bool(true)))
	require.NoError(t, Drop(String("x")))
}
