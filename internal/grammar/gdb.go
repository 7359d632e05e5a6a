package grammar

import "github.com/alecthomas/chroma/v2"

// Building blocks for the GDB session grammar.
const (
	gdbChar       = `[a-zA-Z$._0-9@]`
	gdbIdentifier = `(?:[a-zA-Z$_]` + gdbChar + `*|\.` + gdbChar + `+)`
	gdbNumber     = `(?:0[xX][a-zA-Z0-9]+|\d+)`
	gdbString     = `"[^"]*"`
)

// gdbLexer highlights interactive GDB session transcripts: prompt lines,
// value history variables, struct dumps, symbol references. Struct dumps
// nest, handled by the pushed "struct" state.
var gdbLexer = chroma.Coalesce(chroma.MustNewLexer(
	&chroma.Config{
		Name:      "GDB",
		Aliases:   []string{"gdb"},
		Filenames: []string{"*.gdb"},
	},
	func() chroma.Rules {
		return chroma.Rules{
			"root": {
				{Pattern: `\s+`, Type: chroma.Text},
				{Pattern: `(\(?gdb[\)$]|>)( )(` + gdbIdentifier + `)(/?)(\d*)(\w*)`,
					Type: chroma.ByGroups(chroma.KeywordType, chroma.Text, chroma.NameBuiltin, chroma.Text, chroma.LiteralNumberInteger, chroma.KeywordConstant)},
				{Pattern: gdbNumber, Type: chroma.LiteralNumberHex},
				{Pattern: gdbString, Type: chroma.LiteralString},
				{Pattern: `(\$\d+)( = \{)`, Type: chroma.ByGroups(chroma.NameVariable, chroma.Text), Mutator: chroma.Push("struct")},
				{Pattern: `\$` + gdbIdentifier, Type: chroma.NameVariable},
				{Pattern: `\$` + gdbNumber, Type: chroma.NameVariable},
				{Pattern: `=`, Type: chroma.Operator},
				{Pattern: `#.*`, Type: chroma.Comment},
				{Pattern: `<snip>`, Type: chroma.CommentSpecial},
				{Pattern: `<` + gdbIdentifier + `\+?\d*>`, Type: chroma.NameFunction},
				{Pattern: `->` + gdbIdentifier, Type: chroma.NameAttribute},
				{Pattern: `(\()(\s*struct\s*` + gdbIdentifier + `\s*\*)(\))`, Type: chroma.ByGroups(chroma.Text, chroma.KeywordType, chroma.Text)},
				{Pattern: `\((int|long|short|char)\s*\*?`, Type: chroma.KeywordType},
				{Pattern: `\b(if)\b`, Type: chroma.NameBuiltin},
				{Pattern: `.`, Type: chroma.Text},
			},
			"struct": {
				{Pattern: `(\s*)([^\s]*)( = \{)`, Type: chroma.ByGroups(chroma.Text, chroma.NameVariable, chroma.Text), Mutator: chroma.Push()},
				{Pattern: `(\s*)([^\s]*)( = )`, Type: chroma.ByGroups(chroma.Text, chroma.NameVariable, chroma.Text)},
				{Pattern: `\s*\},?`, Type: chroma.Text, Mutator: chroma.Pop(1)},
				{Pattern: gdbNumber, Type: chroma.LiteralNumberHex},
				{Pattern: gdbString, Type: chroma.LiteralString},
				{Pattern: `.`, Type: chroma.Text},
			},
		}
	},
))
