package machine

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/stackyy/lang/limits"
	"github.com/mna/stackyy/lang/parser"
	"github.com/stretchr/testify/require"
)

func mustRun(t *testing.T, src string) (int32, string) {
	t.Helper()
	program, err := parser.ParseSource("t.scy", src, limits.Default())
	require.NoError(t, err)
	var out bytes.Buffer
	exit, err := Run(program, limits.Default(), &out)
	require.NoError(t, err)
	return exit, out.String()
}

func TestRunHelloWorld(t *testing.T) {
	exit, out := mustRun(t, `@main(->int) "hi" println 0 end`)
	require.Equal(t, int32(0), exit)
	require.Equal(t, "hi\n", out)
}

func TestRunSubtractionOperandOrder(t *testing.T) {
	// 5 3 - reads as 5 - 3 = 2, the same a-OP-b convention as division
	// and modulo.
	exit, out := mustRun(t, `
include "@std/simple-maths"
include "@std/stack-ops"
@main(->int) 5 3 - to-string println 0 end
`)
	require.Equal(t, int32(0), exit)
	require.Equal(t, "2\n", out)
}

func TestRunComparisonOperandOrder(t *testing.T) {
	// 5 3 > pops a=3 (top), b=5 (second) and evaluates a > b: 3 > 5 is false.
	exit, out := mustRun(t, `
include "@std/bool"
include "@std/stack-ops"
@main(->int) 5 3 > to-string println 0 end
`)
	require.Equal(t, int32(0), exit)
	require.Equal(t, "false\n", out)
}

func TestRunDivisionByZeroIsFatal(t *testing.T) {
	program, err := parser.ParseSource("t.scy", `
include "@std/simple-maths"
include "@std/stack-ops"
@main(->int) 1 0 / drop 0 end
`, limits.Default())
	require.NoError(t, err)
	var out bytes.Buffer
	_, err = Run(program, limits.Default(), &out)
	require.Error(t, err)
}

func TestRunDynamicCallThroughReflection(t *testing.T) {
	exit, out := mustRun(t, `
@greet(->) "hi" println end
@main(->int) ~greet @ 0 end
`)
	require.Equal(t, int32(0), exit)
	require.Equal(t, "hi\n", out)
}

func TestRunReflectionRenamesCall(t *testing.T) {
	// ref-rem-str-drop trims the last 5 characters off "greetdebug",
	// renaming the pointer to "greet" before it is called.
	exit, out := mustRun(t, `
include "@std/reflection"
@greet(->) "hi" println end
@greetdebug(->) "should not print" println end
@main(->int)
  5
  ~greetdebug
  ref-rem-str-drop
  @
  0
end
`)
	require.Equal(t, int32(0), exit)
	require.Equal(t, "hi\n", out)
}

func TestRunDescriptorFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	src := `
include "@files"
@main(->int)
  "` + path + `" "hello" write-file
  "` + path + `" read-file
  println
  0
end
`
	exit, out := mustRun(t, src)
	require.Equal(t, int32(0), exit)
	require.Equal(t, "hello\n", out)
}

func TestRunCallStackOverflowIsFatal(t *testing.T) {
	program, err := parser.ParseSource("t.scy", `
@loop-fn(->) loop-fn end
@main(->int) loop-fn 0 end
`, limits.Default())
	require.NoError(t, err)

	tight := limits.Default()
	tight.MaxCallStackSize = 5

	var out bytes.Buffer
	_, err = Run(program, tight, &out)
	require.Error(t, err)
}

func TestRunCallIfSkipsOnFalse(t *testing.T) {
	exit, out := mustRun(t, `
include "@std/bool"
@shout(->) "should not print" println end
@main(->int) ~shout 1 1 = ! @if 0 end
`)
	require.Equal(t, int32(0), exit)
	require.Equal(t, "", out)
}

func TestRunDupClonesDescriptorRefcount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dup.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	src := `
include "@std/stack-ops"
@main(->int)
  "` + path + `" !file-open
  dup !file-read-all drop drop
  !file-read-all drop drop
  0
end
`
	exit, _ := mustRun(t, src)
	require.Equal(t, int32(0), exit)
}
