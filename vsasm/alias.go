package vsasm

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Alias is one ".alias" line of emitted assembly.
type Alias struct {
	Name     string
	Register Register
	Semantic Semantic
	Value    *Vec4
}

var aliasLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Directive", Pattern: `\.[a-z]+`},
	{Name: "Number", Pattern: `[-+]Inf\b|[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
})

// aliasLine is the grammar of a single ".alias" line.
type aliasLine struct {
	Name     string        `parser:"\".alias\" @Ident"`
	Register string        `parser:"@Ident"`
	Binding  *aliasBinding `parser:"( \"as\" @@ )?"`
}

type aliasBinding struct {
	Lanes    []float32 `parser:"  \"(\" @Number ( \",\" @Number )* \")\""`
	Semantic string    `parser:"| @Ident"`
}

var aliasParser = participle.MustBuild[aliasLine](
	participle.Lexer(aliasLexer),
	participle.Elide("Whitespace"),
)

// ParseAliases reads the ".alias" lines of an assembly listing. Labels and
// instructions are skipped.
func ParseAliases(text string) ([]Alias, error) {
	var aliases []Alias
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, ".alias ") {
			continue
		}
		a, err := parseAlias(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		aliases = append(aliases, a)
	}
	return aliases, nil
}

func parseAlias(line string) (Alias, error) {
	parsed, err := aliasParser.ParseString("", line)
	if err != nil {
		return Alias{}, err
	}

	r, ok := ParseRegister(parsed.Register)
	if !ok {
		return Alias{}, fmt.Errorf("invalid register %q", parsed.Register)
	}
	a := Alias{Name: parsed.Name, Register: r}

	b := parsed.Binding
	switch {
	case b == nil:
	case b.Lanes != nil:
		var v Vec4
		if len(b.Lanes) != len(v) {
			return Alias{}, fmt.Errorf("constant for %s has %d lanes, want %d", a.Name, len(b.Lanes), len(v))
		}
		copy(v[:], b.Lanes)
		a.Value = &v
	default:
		s, ok := ParseSemantic(b.Semantic)
		if !ok {
			return Alias{}, fmt.Errorf("unknown output binding %q", b.Semantic)
		}
		a.Semantic = s
	}
	return a, nil
}
