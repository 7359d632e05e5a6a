package grammar

import "github.com/alecthomas/chroma/v2"

// tomlLexer covers the subset of TOML that config snippets actually use:
// bare keys, strings, booleans, datetimes, numbers and comments. It
// shadows the registry's TOML entry (see overrides in grammar.go).
var tomlLexer = chroma.Coalesce(chroma.MustNewLexer(
	&chroma.Config{
		Name:      "TOML",
		Aliases:   []string{"toml"},
		Filenames: []string{"*.toml"},
	},
	func() chroma.Rules {
		return chroma.Rules{
			"root": {
				{Pattern: `\s+`, Type: chroma.Text},
				{Pattern: `#.*`, Type: chroma.CommentSingle},
				{Pattern: `"(\\\\|\\"|[^"])*"`, Type: chroma.LiteralString},
				{Pattern: `\b(true|false)\b`, Type: chroma.KeywordConstant},
				{Pattern: `[a-zA-Z_][a-zA-Z0-9_\-]*`, Type: chroma.Name},
				{Pattern: `\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z`, Type: chroma.LiteralNumberInteger},
				{Pattern: `(\d+\.\d*|\d*\.\d+)([eE][+-]?[0-9]+)?`, Type: chroma.LiteralNumberFloat},
				{Pattern: `\d+[eE][+-]?[0-9]+`, Type: chroma.LiteralNumberFloat},
				{Pattern: `-?\d+`, Type: chroma.LiteralNumberInteger},
				{Pattern: `[\]\[{}:(),;]`, Type: chroma.Punctuation},
				{Pattern: `\.`, Type: chroma.Punctuation},
				{Pattern: `=`, Type: chroma.Operator},
			},
		}
	},
))
