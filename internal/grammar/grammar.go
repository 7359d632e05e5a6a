// Package grammar resolves language identifiers to lexers.
//
// Resolution is total. A small table of built-in grammars for formats
// the stock registry handles poorly is consulted first, then the
// registry itself, and anything still unknown falls back to plain text.
// Callers never see a resolution failure.
package grammar

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// overrides maps language identifiers to grammars that shadow any
// registry entry with the same name. Matching is exact and
// case-sensitive.
var overrides = map[string]chroma.Lexer{
	"toml": tomlLexer,
	"gdb":  gdbLexer,
}

// Resolve returns the lexer for a language identifier. It never fails:
// unknown identifiers resolve to the plain-text lexer.
func Resolve(language string) chroma.Lexer {
	if lex, ok := overrides[language]; ok {
		return lex
	}
	if lex := lexers.Get(language); lex != nil {
		return lex
	}
	return lexers.Fallback
}
