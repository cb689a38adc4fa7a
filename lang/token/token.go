package token

// Kind classifies a raw pre-parsed token into one of the categories the
// parser's grammar understands (§4.2).
type Kind int8

//nolint:revive
const (
	ILLEGAL Kind = iota
	EOF

	WORD     // any word that is neither keyword, literal nor declaration: "swap", "+", "my-func"
	INT      // a token that parses as a signed 32-bit integer
	STR      // a double-quoted string, possibly assembled from several raw tokens
	KEYWORD  // one of: include, end, @, @if
	FUNCDECL // @name(ins -> outs)
	FUNCPTR  // #name(ins -> outs)

	maxKind
)

func (k Kind) String() string {
	if k >= 0 && k < maxKind {
		return kindNames[k]
	}
	return "invalid kind"
}

var kindNames = [...]string{
	ILLEGAL:  "illegal token",
	EOF:      "end of file",
	WORD:     "word",
	INT:      "int literal",
	STR:      "string literal",
	KEYWORD:  "keyword",
	FUNCDECL: "function declaration",
	FUNCPTR:  "function-pointer literal",
}

// Keyword enumerates the closed set of keyword tokens (§4.2 rule 1).
type Keyword int8

const (
	NotKeyword Keyword = iota
	Include
	End
	At   // "@"
	AtIf // "@if"
)

var keywords = map[string]Keyword{
	"include": Include,
	"end":     End,
	"@":       At,
	"@if":     AtIf,
}

// LookupKeyword returns the Keyword for word, or NotKeyword if word is not
// one of the four reserved keywords.
func LookupKeyword(word string) Keyword {
	if kw, ok := keywords[word]; ok {
		return kw
	}
	return NotKeyword
}

func (k Keyword) String() string {
	switch k {
	case Include:
		return "include"
	case End:
		return "end"
	case At:
		return "@"
	case AtIf:
		return "@if"
	default:
		return "<not a keyword>"
	}
}
