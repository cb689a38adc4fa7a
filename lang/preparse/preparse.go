// Package preparse implements the line-wise normalization pass described in
// §4.1: comment stripping, whitespace trimming, single-space tokenizing,
// and multi-token string assembly. Its output feeds lang/lexer, which
// classifies each raw token into a typed token.Value.
//
// Where the teacher's lang/scanner runs a byte-at-a-time state machine over
// an entire file (because Lua-family syntax needs look-ahead across
// arbitrary punctuation), Stackyy's source grammar is line- and
// space-delimited by design, so the pre-parser can work a line at a time
// with a simple split, one sequential fold for the one stateful step
// (string assembly) as specified by §5 ("the multi-token string-assembly
// fold is sequential").
package preparse

import (
	"fmt"
	"strings"

	"github.com/mna/stackyy/lang/token"
)

// RawToken is a positioned, unclassified chunk of source text: the
// pre-parser's sole output (§4.1).
type RawToken struct {
	Pos  token.Position
	Text string
}

// UnclosedStringError reports a string literal that was opened with `"`
// but never closed before end of file (§4.1 step 5, §7).
type UnclosedStringError struct {
	Pos token.Position
}

func (e *UnclosedStringError) Error() string {
	return fmt.Sprintf("unclosed string starting at %s", e.Pos)
}

// Parse runs the pre-parser over src, the contents of the file named path,
// and returns the flat stream of raw tokens it produces.
func Parse(path, src string) ([]RawToken, error) {
	lines := splitLines(src)
	var flat []RawToken
	for i, line := range lines {
		flat = append(flat, tokenizeLine(path, i+1, line)...)
	}
	return assembleStrings(flat)
}

// splitLines enumerates src's lines (§4.1 step 1), tolerating both "\n" and
// "\r\n" line endings.
func splitLines(src string) []string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	return strings.Split(src, "\n")
}

// tokenizeLine strips a trailing "//" comment, trims the result, and
// splits it on single spaces, computing each surviving token's column by
// accumulating the widths (plus separating space) of every token before it
// -- including the empty ones dropped by step 6, so that the accounting
// stays correct even across runs of several spaces (§4.1 steps 2-4, 6).
func tokenizeLine(path string, lineNo int, line string) []RawToken {
	if idx := strings.Index(line, "//"); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	parts := strings.Split(line, " ")
	var toks []RawToken
	col := 1
	for _, part := range parts {
		if part != "" {
			toks = append(toks, RawToken{
				Pos:  token.Position{File: path, Line: lineNo, Column: col},
				Text: part,
			})
		}
		col += len(part) + 1
	}
	return toks
}

// assembleStrings is the sequential fold of §4.1 step 5: a token that
// begins with `"` but does not already end with `"` (as a standalone
// word of length >= 2) opens a string that swallows subsequent tokens,
// rejoining them with single spaces, until one ends with `"`.
func assembleStrings(toks []RawToken) ([]RawToken, error) {
	out := make([]RawToken, 0, len(toks))
	for i := 0; i < len(toks); {
		t := toks[i]
		if !opensString(t.Text) {
			out = append(out, t)
			i++
			continue
		}

		parts := []string{t.Text}
		j := i + 1
		closed := false
		for j < len(toks) {
			parts = append(parts, toks[j].Text)
			j++
			if strings.HasSuffix(toks[j-1].Text, `"`) {
				closed = true
				break
			}
		}
		if !closed {
			return nil, &UnclosedStringError{Pos: t.Pos}
		}
		out = append(out, RawToken{Pos: t.Pos, Text: strings.Join(parts, " ")})
		i = j
	}
	return out, nil
}

// opensString reports whether text begins a multi-token string: it starts
// with a double quote and is not already a complete, single-word string of
// length >= 2 that both starts and ends with one.
func opensString(text string) bool {
	if !strings.HasPrefix(text, `"`) {
		return false
	}
	return !(len(text) >= 2 && strings.HasSuffix(text, `"`))
}
