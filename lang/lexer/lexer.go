// Package lexer classifies the raw tokens produced by lang/preparse into
// typed token.Value instances, following the priority order of §4.2:
// keyword, function declaration, function-pointer declaration, string,
// int, then word. It is the Stackyy analogue of the teacher's
// lang/scanner, shrunk to a pure classifier because the pre-parser has
// already done the character-level work of splitting the source into
// words.
package lexer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mna/stackyy/lang/errs"
	"github.com/mna/stackyy/lang/preparse"
	"github.com/mna/stackyy/lang/token"
)

var (
	funcDeclRe = regexp.MustCompile(`^@([A-Za-z_][A-Za-z0-9_-]*)\((.*)\)$`)
	funcPtrRe  = regexp.MustCompile(`^#([A-Za-z_][A-Za-z0-9_-]*)\((.*)\)$`)
)

// Classify turns one raw token into a typed token.Value. Unknown string
// escapes are recorded as warnings on warnings rather than failing the
// classification (§4.2 rule 4, §7); a malformed function or
// function-pointer signature is returned as a fatal error.
func Classify(raw preparse.RawToken, warnings *errs.List) (token.Value, error) {
	text := raw.Text
	pos := raw.Pos

	if kw := token.LookupKeyword(text); kw != token.NotKeyword {
		return token.Value{Kind: token.KEYWORD, Raw: text, Pos: pos, Keyword: kw}, nil
	}

	if m := funcDeclRe.FindStringSubmatch(text); m != nil {
		sig, err := parseSig(m[1], m[2])
		if err != nil {
			return token.Value{}, fmt.Errorf("%s: %w", pos, err)
		}
		return token.Value{Kind: token.FUNCDECL, Raw: text, Pos: pos, Sig: sig}, nil
	}

	if m := funcPtrRe.FindStringSubmatch(text); m != nil {
		sig, err := parseSig(m[1], m[2])
		if err != nil {
			return token.Value{}, fmt.Errorf("%s: %w", pos, err)
		}
		return token.Value{Kind: token.FUNCPTR, Raw: text, Pos: pos, Sig: sig}, nil
	}

	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		str := unescape(text[1:len(text)-1], pos, warnings)
		return token.Value{Kind: token.STR, Raw: text, Pos: pos, Str: str}, nil
	}

	if n, err := strconv.ParseInt(text, 10, 32); err == nil {
		return token.Value{Kind: token.INT, Raw: text, Pos: pos, Int: int32(n)}, nil
	}

	return token.Value{Kind: token.WORD, Raw: text, Pos: pos}, nil
}

// parseSig parses the "ins -> outs" grammar inside a function or
// function-pointer declaration's parentheses (§4.2). Type names are kept
// as raw strings: resolving them against the closed Type set is the
// parser's job (lang/parser), so an "unknown type name" error is reported
// with full parser context rather than here.
func parseSig(name, inner string) (token.FuncSig, error) {
	if n := strings.Count(inner, "->"); n != 1 {
		return token.FuncSig{}, fmt.Errorf("malformed function signature for %q: expected exactly one '->', found %d", name, n)
	}
	idx := strings.Index(inner, "->")
	ins := splitTypeNames(inner[:idx])
	outs := splitTypeNames(inner[idx+2:])
	return token.FuncSig{Name: name, Ins: ins, Outs: outs}, nil
}

func splitTypeNames(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// unescape processes \n, \t and \" inside a string literal's content.
// Any other backslash escape is a warning: the backslash is dropped and
// the following character is kept as-is (§4.2 rule 4).
func unescape(s string, pos token.Position, warnings *errs.List) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '\\' || i+1 >= len(runes) {
			b.WriteRune(c)
			continue
		}
		next := runes[i+1]
		switch next {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '"':
			b.WriteByte('"')
		default:
			if warnings != nil {
				warnings.AddWarning(errs.StageCompile, pos, "unknown escape '\\%c'", next)
			}
			b.WriteRune(next)
		}
		i++
	}
	return b.String()
}
