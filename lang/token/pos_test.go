package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositionString(t *testing.T) {
	cases := []struct {
		pos  Position
		want string
	}{
		{Position{}, ""},
		{Position{File: "a.scy", Line: 1, Column: 2}, "a.scy:1:2"},
		{Position{File: "a.scy", Line: 0, Column: 2}, ""},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.pos.String())
		require.Equal(t, c.want, c.pos.FormatInfo())
	}
}

func TestDebugInfoStrip(t *testing.T) {
	pos := Position{File: "a.scy", Line: 3, Column: 1}
	tok := Value{Kind: WORD, Raw: "dup", Pos: pos}
	full := NewTokenDebug(tok)

	require.Equal(t, full, full.Strip(StripNone))
	require.Equal(t, NewPositionDebug(pos), full.Strip(StripPosition))
	require.Equal(t, NoDebug, full.Strip(StripAll))

	// stripping never upgrades
	stripped := full.Strip(StripAll)
	require.Equal(t, NoDebug, stripped.Strip(StripNone))
}

func TestDebugInfoFormatInfo(t *testing.T) {
	pos := Position{File: "a.scy", Line: 3, Column: 1}
	tok := Value{Kind: WORD, Raw: "dup", Pos: pos}

	require.Equal(t, "a.scy:3:1 -> 'dup'", NewTokenDebug(tok).FormatInfo())
	require.Equal(t, "a.scy:3:1", NewPositionDebug(pos).FormatInfo())
	require.Equal(t, "", NoDebug.FormatInfo())
}
