package maincmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/mna/stackyy/lang/token"
	"github.com/stretchr/testify/require"
)

func TestScaffoldProjectLayout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, scaffoldProject("greeter", dir))

	base := filepath.Join(dir, "greeter-scy")
	meta, err := os.ReadFile(filepath.Join(base, "greeter-meta.scy.yml"))
	require.NoError(t, err)
	require.Contains(t, string(meta), "name: greeter")

	main, err := os.ReadFile(filepath.Join(base, "greeter-main.scy"))
	require.NoError(t, err)
	require.Contains(t, string(main), "@main(->int)")
}

func TestSimulateFileRunsProgram(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hello.scy")
	require.NoError(t, os.WriteFile(src, []byte(`@main(->int) "hi" println 0 end`), 0o644))

	var out bytes.Buffer
	exit, err := simulateFile(src, mainer.Stdio{Stdout: &out})
	require.NoError(t, err)
	require.Equal(t, int32(0), exit)
	require.Equal(t, "hi\n", out.String())
}

func TestCompileThenInterpretRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hello.scy")
	require.NoError(t, os.WriteFile(src, []byte(`@main(->int) "hi" println 0 end`), 0o644))
	metaPath := filepath.Join(dir, "hello-meta.scy.yml")
	require.NoError(t, os.WriteFile(metaPath, []byte("name: hello\nversion: 1.0.0\n"), 0o644))
	outPath := filepath.Join(dir, "hello.scyc")

	require.NoError(t, compileFile(src, metaPath, outPath, token.StripNone, false))

	var out bytes.Buffer
	exit, err := interpretFile(outPath, mainer.Stdio{Stdout: &out})
	require.NoError(t, err)
	require.Equal(t, int32(0), exit)
	require.Equal(t, "hi\n", out.String())
}

func TestCompileReadableThenInterpretRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hello.scy")
	require.NoError(t, os.WriteFile(src, []byte(`@main(->int) "hi" println 0 end`), 0o644))
	metaPath := filepath.Join(dir, "hello-meta.scy.yml")
	require.NoError(t, os.WriteFile(metaPath, []byte("name: hello\nversion: 1.0.0\n"), 0o644))
	outPath := filepath.Join(dir, "hello.scy.yml")

	require.NoError(t, compileFile(src, metaPath, outPath, token.StripAll, true))

	var out bytes.Buffer
	exit, err := interpretFile(outPath, mainer.Stdio{Stdout: &out})
	require.NoError(t, err)
	require.Equal(t, int32(0), exit)
	require.Equal(t, "hi\n", out.String())
}

func TestInfoFilePrintsMetaAndExports(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hello.scy")
	require.NoError(t, os.WriteFile(src, []byte(`@main(->int) "hi" println 0 end`), 0o644))
	metaPath := filepath.Join(dir, "hello-meta.scy.yml")
	require.NoError(t, os.WriteFile(metaPath, []byte("name: hello\nversion: 1.0.0\nauthor: a. stacker\n"), 0o644))
	outPath := filepath.Join(dir, "hello.scyc")
	require.NoError(t, compileFile(src, metaPath, outPath, token.StripNone, false))

	exportPath := filepath.Join(dir, "exported-meta.yml")
	var out bytes.Buffer
	require.NoError(t, infoFile(outPath, exportPath, mainer.Stdio{Stdout: &out}))
	require.Contains(t, out.String(), "name: hello")
	require.Contains(t, out.String(), "version: 1.0.0")
	require.Contains(t, out.String(), "author: a. stacker")
	require.Contains(t, out.String(), "main( -> int)")

	exported, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	require.Contains(t, string(exported), "hello")
}

func TestCompileFileReportsTypeError(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.scy")
	require.NoError(t, os.WriteFile(src, []byte(`@main(->int) "x" 1 + end`), 0o644))
	metaPath := filepath.Join(dir, "bad-meta.scy.yml")
	require.NoError(t, os.WriteFile(metaPath, []byte("name: bad\nversion: 1.0.0\n"), 0o644))
	outPath := filepath.Join(dir, "bad.scyc")

	err := compileFile(src, metaPath, outPath, token.StripNone, false)
	require.Error(t, err)
}
