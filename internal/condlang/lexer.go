// Package condlang parses the textual path-condition language emitted
// alongside each CFG path: a sequence of `lhs==rhs` / `lhs!=rhs` atoms
// joined by the literal separator ` && ` (spec.md §4.2).
package condlang

import "github.com/alecthomas/participle/v2/lexer"

// condLexer tokenizes path-condition tokens. Tokens themselves (the
// `const:iW:V`, `label:...`, identifier, etc. forms) are opaque to the
// grammar — kind/width inference happens downstream in internal/constraints
// — so the lexer only needs to separate atoms from the `==`/`!=`/`&&`
// connectives.
var condLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Whitespace", `[ \t\r\n]+`, nil},
		{"And", `&&`, nil},
		{"Eq", `==`, nil},
		{"Ne", `!=`, nil},
		{"Token", `[^ \t\r\n=!&]+`, nil},
	},
})
