package preparse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func texts(toks []RawToken) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func TestParseBasic(t *testing.T) {
	src := "@main(->int)\n  \"Hello\" println // greet\n0 end\n"
	toks, err := Parse("hello.scy", src)
	require.NoError(t, err)
	require.Equal(t, []string{`@main(->int)`, `"Hello"`, "println", "0", "end"}, texts(toks))
}

func TestParseDropsEmptyLinesAndComments(t *testing.T) {
	src := "// just a comment\n\n   \ndup\n"
	toks, err := Parse("f.scy", src)
	require.NoError(t, err)
	require.Equal(t, []string{"dup"}, texts(toks))
}

func TestParseMultiTokenString(t *testing.T) {
	src := `"hello world foo" println`
	toks, err := Parse("f.scy", src)
	require.NoError(t, err)
	require.Equal(t, []string{`"hello world foo"`, "println"}, texts(toks))
}

func TestParseMultiTokenStringAcrossLines(t *testing.T) {
	src := "\"hello\nworld\" println"
	toks, err := Parse("f.scy", src)
	require.NoError(t, err)
	require.Equal(t, []string{"\"hello world\"", "println"}, texts(toks))
}

func TestParseUnclosedStringIsFatal(t *testing.T) {
	_, err := Parse("f.scy", `"hello world`)
	require.Error(t, err)
	var unclosed *UnclosedStringError
	require.ErrorAs(t, err, &unclosed)
	require.Equal(t, 1, unclosed.Pos.Line)
	require.Equal(t, 1, unclosed.Pos.Column)
}

func TestParseColumnsAccountForDroppedTokens(t *testing.T) {
	toks, err := Parse("f.scy", "a  b")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	require.Equal(t, 1, toks[0].Pos.Column)
	require.Equal(t, 4, toks[1].Pos.Column)
}

func TestParseSingleWordClosedString(t *testing.T) {
	toks, err := Parse("f.scy", `"" dup`)
	require.NoError(t, err)
	require.Equal(t, []string{`""`, "dup"}, texts(toks))
}
