package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/stackyy/lang/descriptor"
	"github.com/mna/stackyy/lang/ir"
	"github.com/mna/stackyy/lang/limits"
	"github.com/stretchr/testify/require"
)

func TestParseHello(t *testing.T) {
	src := `@main(->int) "Hello" println 0 end`
	p, err := ParseSource("hello.scy", src, limits.Default())
	require.NoError(t, err)
	require.True(t, p.Has("main"))

	main := p.Lookup("main")
	require.Empty(t, main.Ins)
	require.Equal(t, []ir.Type{ir.Int}, main.Outs)
	require.Len(t, main.Body, 3)
	require.Equal(t, ir.OpKindPush, main.Body[0].Op)
	require.Equal(t, ir.OpKindInternal, main.Body[1].Op)
	require.Equal(t, ir.OpPrintln, main.Body[1].Operand.Internal)
	require.Equal(t, ir.OpKindPush, main.Body[2].Op)
}

func TestParseUnknownWordIsFatal(t *testing.T) {
	src := `@main(->int) swap 0 end`
	_, err := ParseSource("f.scy", src, limits.Default())
	require.Error(t, err)
}

func TestParseStdIncludeActivatesGroup(t *testing.T) {
	src := `include "@std/stack-ops" @main(->int) 1 dup drop end`
	p, err := ParseSource("f.scy", src, limits.Default())
	require.NoError(t, err)
	main := p.Lookup("main")
	require.Equal(t, ir.OpKindInternal, main.Body[1].Op)
	require.Equal(t, ir.OpDup, main.Body[1].Operand.Internal)
}

func TestParseForwardReferenceCall(t *testing.T) {
	src := `
@main(->int) 5 square end
@square(int->int) dup * end
`
	p, err := ParseSource("f.scy", src, limits.Default())
	require.NoError(t, err)
	main := p.Lookup("main")
	require.Equal(t, ir.OpKindCall, main.Body[1].Op)
	require.Equal(t, "square", main.Body[1].Operand.Call)
}

func TestParseFunctionPointerAndReflection(t *testing.T) {
	src := `
include "@std/reflection"
@square(int->int) dup * end
@main(->int) 5 ~square @ 0 end
`
	p, err := ParseSource("f.scy", src, limits.Default())
	require.NoError(t, err)
	main := p.Lookup("main")
	// push 5, push-function square, dynamic call, push 0
	require.Equal(t, ir.OpKindPush, main.Body[1].Op)
	require.Equal(t, ir.OperandPushFunction, main.Body[1].Operand.Kind)
	require.Equal(t, "square", main.Body[1].Operand.PushFunction.Name)
	require.Equal(t, ir.OpKindCall, main.Body[2].Op)
	require.Nil(t, main.Body[2].Operand)
}

func TestParseDeferredFunctionReferenceResolves(t *testing.T) {
	// ~greet appears before greet's declaration anywhere has been pre-scanned
	// in THIS file's signatures at emission time is impossible here (pre-scan
	// runs first), so exercise the deferred path via an include ordering
	// instead: main is emitted before the included file defines greet.
	dir := t.TempDir()
	greetPath := filepath.Join(dir, "greet.scy")
	require.NoError(t, os.WriteFile(greetPath, []byte("@greet(->) \"hi\" println end"), 0o644))

	src := `
@main(->int) ~greet @ 0 end
include "greet.scy"
`
	p, err := ParseSource(filepath.Join(dir, "main.scy"), src, limits.Default())
	require.NoError(t, err)
	main := p.Lookup("main")
	require.Equal(t, ir.OperandPushFunction, main.Body[0].Operand.Kind)
	require.Equal(t, "greet", main.Body[0].Operand.PushFunction.Name)
}

func TestParseDescriptorWord(t *testing.T) {
	src := `@main(->int) "f.txt" !file-open drop 0 end`
	p, err := ParseSource("f.scy", src, limits.Default())
	require.NoError(t, err)
	main := p.Lookup("main")
	require.Equal(t, ir.OpKindDescriptor, main.Body[1].Op)
	ref := main.Body[1].Operand.DescriptorAction
	require.Equal(t, string(descriptor.TypeFile), ref.Type)
	require.Equal(t, "open", ref.Action)
}

func TestParseIncludeDepthExceeded(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.scy")
	b := filepath.Join(dir, "b.scy")
	c := filepath.Join(dir, "c.scy")
	d := filepath.Join(dir, "d.scy")
	require.NoError(t, os.WriteFile(b, []byte(`include "c.scy"`), 0o644))
	require.NoError(t, os.WriteFile(c, []byte(`include "d.scy"`), 0o644))
	require.NoError(t, os.WriteFile(d, []byte(`include "a.scy"`), 0o644))
	require.NoError(t, os.WriteFile(a, []byte(`@main(->int) 0 end`), 0o644))

	src := `include "b.scy"`
	_, err := ParseSource(filepath.Join(dir, "main.scy"), src, limits.Default())
	require.Error(t, err)
}

func TestParseFunctionInsideFunctionIsFatal(t *testing.T) {
	src := `@main(->int) @inner(->int) 0 end end`
	_, err := ParseSource("f.scy", src, limits.Default())
	require.Error(t, err)
}

func TestParseIncludeInsideFunctionIsFatal(t *testing.T) {
	src := `@main(->int) include "@std/stack-ops" end`
	_, err := ParseSource("f.scy", src, limits.Default())
	require.Error(t, err)
}

func TestParseUnknownTypeNameIsFatal(t *testing.T) {
	src := `@main(->weird) 0 end`
	_, err := ParseSource("f.scy", src, limits.Default())
	require.Error(t, err)
}

func TestParseBundledLoggingLib(t *testing.T) {
	src := `
include "@logging"
@main(->int) "hi" log-info 0 end
`
	p, err := ParseSource("f.scy", src, limits.Default())
	require.NoError(t, err)
	require.True(t, p.Has("log-info"))
	main := p.Lookup("main")
	require.Equal(t, ir.OpKindCall, main.Body[1].Op)
	require.Equal(t, "log-info", main.Body[1].Operand.Call)
}
