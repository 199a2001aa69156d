// Package spec parses the grouping and aggregate specification strings
// accepted by the CLI and server, e.g.
//
//	ROLLUP(region, department)
//	CUBE(department, gender)
//	GROUPING SETS ((region, department), (region), ())
//	region, department
//
// for grouping, and
//
//	SUM(salary) AS total_salary, COUNT(*), COUNT(DISTINCT job_title),
//	STRING_AGG(last_name, ', ') AS names
//
// for aggregates. Keywords are case-insensitive; identifiers follow
// SQL rules; string literals use single quotes with '' as the escape.
package spec

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/groupset"
	"github.com/FocuswithJustin/TallyBook/core/tally"
)

// specLexer tokenizes both the grouping and aggregate languages.
// Keyword must precede Ident so reserved words lex as keywords.
var specLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(?:ROLLUP|CUBE|GROUPING|SETS|AS|DISTINCT)\b`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "String", Pattern: `'(?:[^']|'')*'`},
	{Name: "Punct", Pattern: `[(),*]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type groupGrammar struct {
	Rollup *columnList `parser:"'ROLLUP' '(' @@ ')'"`
	Cube   *columnList `parser:"| 'CUBE' '(' @@ ')'"`
	Sets   []setItem   `parser:"| 'GROUPING' 'SETS' '(' @@ ( ',' @@ )* ')'"`
	Plain  *columnList `parser:"| @@"`
}

type columnList struct {
	Columns []string `parser:"@Ident ( ',' @Ident )*"`
}

type setItem struct {
	Columns []string `parser:"'(' ( @Ident ( ',' @Ident )* )? ')'"`
}

type aggListGrammar struct {
	Items []aggItem `parser:"@@ ( ',' @@ )*"`
}

type aggItem struct {
	Func     string  `parser:"@Ident"`
	Star     bool    `parser:"'(' ( @'*'"`
	Distinct bool    `parser:"| ( @'DISTINCT'?"`
	Col      string  `parser:"@Ident"`
	Sep      *string `parser:"( ',' @String )? ) ) ')'"`
	As       string  `parser:"( 'AS' @Ident )?"`
}

var groupParser = participle.MustBuild[groupGrammar](
	participle.Lexer(specLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Keyword"),
)

var aggParser = participle.MustBuild[aggListGrammar](
	participle.Lexer(specLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Keyword"),
)

// ParseGrouping parses a grouping specification string.
func ParseGrouping(s string) (*groupset.Spec, error) {
	input := strings.TrimSpace(s)
	if input == "" {
		return nil, tberrors.NewSpec(s, "empty grouping specification")
	}

	parsed, err := groupParser.ParseString("", input)
	if err != nil {
		return nil, &tberrors.SpecError{Input: input, Message: "syntax error", Err: err}
	}

	switch {
	case parsed.Rollup != nil:
		return groupset.Rollup(toColumns(parsed.Rollup.Columns)...)
	case parsed.Cube != nil:
		return groupset.Cube(toColumns(parsed.Cube.Columns)...)
	case parsed.Sets != nil:
		return buildSets(input, parsed.Sets)
	case parsed.Plain != nil:
		return groupset.GroupBy(toColumns(parsed.Plain.Columns)...)
	default:
		return nil, tberrors.NewSpec(input, "empty grouping specification")
	}
}

func toColumns(names []string) []groupset.Column {
	out := make([]groupset.Column, len(names))
	for i, n := range names {
		out[i] = groupset.Column(n)
	}
	return out
}

// buildSets derives the grouping column universe from the sets
// themselves, in first-appearance order, the way the engine does.
func buildSets(input string, items []setItem) (*groupset.Spec, error) {
	var universe []groupset.Column
	seen := make(map[string]bool)
	sets := make([]groupset.Set, len(items))
	for i, item := range items {
		set := make(groupset.Set, 0, len(item.Columns))
		for _, c := range item.Columns {
			if !seen[c] {
				seen[c] = true
				universe = append(universe, groupset.Column(c))
			}
			set = append(set, groupset.Column(c))
		}
		sets[i] = set
	}
	if len(universe) == 0 {
		return nil, tberrors.NewSpec(input, "grouping sets name no columns")
	}
	return groupset.Sets(universe, sets...)
}

// ParseAggregates parses a comma-separated aggregate list.
func ParseAggregates(s string) ([]tally.AggSpec, error) {
	input := strings.TrimSpace(s)
	if input == "" {
		return nil, tberrors.NewSpec(s, "empty aggregate list")
	}

	parsed, err := aggParser.ParseString("", input)
	if err != nil {
		return nil, &tberrors.SpecError{Input: input, Message: "syntax error", Err: err}
	}

	specs := make([]tally.AggSpec, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		as := tally.AggSpec{
			Func:     strings.ToUpper(item.Func),
			As:       item.As,
			Distinct: item.Distinct,
		}
		if item.Star {
			as.Col = "*"
		} else {
			as.Col = item.Col
		}
		if item.Sep != nil {
			as.Sep = unquote(*item.Sep)
			as.HasSep = true
		}
		specs = append(specs, as)
	}
	return specs, nil
}

// unquote strips the single quotes from a string literal and unescapes
// doubled quotes.
func unquote(s string) string {
	s = s[1 : len(s)-1]
	return strings.ReplaceAll(s, "''", "'")
}
