package projectconf

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// iniLexer tokenizes platformio.ini style project files. Values keep
// everything after "=" up to the end of the line, so they may contain "=",
// ";" or "#" themselves. Indented lines following an option continue its
// value.
var iniLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `[;#][^\n]*`},
	{Name: "Continuation", Pattern: `\n[ \t]+[^ \t\r\n;#][^\n]*`},
	{Name: "Newline", Pattern: `\n`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
	{Name: "Header", Pattern: `\[[^\]\n]*\]`},
	{Name: "Key", Pattern: `[A-Za-z0-9_.\-]+`},
	{Name: "Value", Pattern: `=[^\n]*`},
})

// iniFile is the parse tree of a project file.
type iniFile struct {
	Sections []*iniSection `Newline* ( @@ Newline* )*`
}

// iniSection is one "[name]" block.
type iniSection struct {
	Header  string      `@Header Newline*`
	Options []*iniEntry `( @@ Newline* )*`
}

// iniEntry is a "key = value" line plus its continuation lines.
type iniEntry struct {
	Key          string   `@Key`
	Value        string   `@Value`
	Continuation []string `@Continuation*`
}
