package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	for k := Kind(0); k < maxKind; k++ {
		require.NotEmpty(t, k.String())
	}
	require.Equal(t, "invalid kind", Kind(127).String())
}

func TestLookupKeyword(t *testing.T) {
	cases := map[string]Keyword{
		"include": Include,
		"end":     End,
		"@":       At,
		"@if":     AtIf,
		"foo":     NotKeyword,
		"":        NotKeyword,
	}
	for word, want := range cases {
		require.Equal(t, want, LookupKeyword(word), "word %q", word)
	}
}

func TestKeywordString(t *testing.T) {
	require.Equal(t, "include", Include.String())
	require.Equal(t, "<not a keyword>", NotKeyword.String())
}
