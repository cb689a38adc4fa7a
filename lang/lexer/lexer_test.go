package lexer

import (
	"testing"

	"github.com/mna/stackyy/lang/errs"
	"github.com/mna/stackyy/lang/preparse"
	"github.com/mna/stackyy/lang/token"
	"github.com/stretchr/testify/require"
)

func classify(t *testing.T, text string) (token.Value, *errs.List) {
	t.Helper()
	var warnings errs.List
	v, err := Classify(preparse.RawToken{Text: text, Pos: token.Position{File: "f.scy", Line: 1, Column: 1}}, &warnings)
	require.NoError(t, err)
	return v, &warnings
}

func TestClassifyKeywords(t *testing.T) {
	for word, kw := range map[string]token.Keyword{
		"include": token.Include,
		"end":     token.End,
		"@":       token.At,
		"@if":     token.AtIf,
	} {
		v, _ := classify(t, word)
		require.Equal(t, token.KEYWORD, v.Kind)
		require.Equal(t, kw, v.Keyword)
	}
}

func TestClassifyFunctionDecl(t *testing.T) {
	v, _ := classify(t, "@square(int->int)")
	require.Equal(t, token.FUNCDECL, v.Kind)
	require.Equal(t, "square", v.Sig.Name)
	require.Equal(t, []string{"int"}, v.Sig.Ins)
	require.Equal(t, []string{"int"}, v.Sig.Outs)
}

func TestClassifyFunctionDeclNoParams(t *testing.T) {
	v, _ := classify(t, "@main(->int)")
	require.Equal(t, token.FUNCDECL, v.Kind)
	require.Nil(t, v.Sig.Ins)
	require.Equal(t, []string{"int"}, v.Sig.Outs)
}

func TestClassifyFunctionPointer(t *testing.T) {
	v, _ := classify(t, "#square(int->int)")
	require.Equal(t, token.FUNCPTR, v.Kind)
	require.Equal(t, "square", v.Sig.Name)
}

func TestClassifyMultipleArrowsIsFatal(t *testing.T) {
	var warnings errs.List
	_, err := Classify(preparse.RawToken{Text: "@f(int->int->int)", Pos: token.Position{File: "f.scy", Line: 1, Column: 1}}, &warnings)
	require.Error(t, err)
}

func TestClassifyString(t *testing.T) {
	v, _ := classify(t, `"hello world"`)
	require.Equal(t, token.STR, v.Kind)
	require.Equal(t, "hello world", v.Str)
}

func TestClassifyStringEscapes(t *testing.T) {
	v, warnings := classify(t, `"a\nb\tc\"d"`)
	require.Equal(t, "a\nb\tc\"d", v.Str)
	require.Empty(t, warnings.Warnings())
}

func TestClassifyStringUnknownEscapeWarns(t *testing.T) {
	v, warnings := classify(t, `"a\qb"`)
	require.Equal(t, "aqb", v.Str)
	require.Len(t, warnings.Warnings(), 1)
}

func TestClassifyInt(t *testing.T) {
	v, _ := classify(t, "-42")
	require.Equal(t, token.INT, v.Kind)
	require.EqualValues(t, -42, v.Int)
}

func TestClassifyWord(t *testing.T) {
	v, _ := classify(t, "+")
	require.Equal(t, token.WORD, v.Kind)
	require.Equal(t, "+", v.Raw)
}
