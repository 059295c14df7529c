package ast

import (
	"fmt"
	"strings"
)

const printIndent = "    "

// Render renders a Strategy back to its .trdr surface syntax. The
// output is indentation-equivalent to, though not necessarily
// byte-identical with, the source it was parsed from — re-parsing it
// yields an AST equal in structure and evaluated behavior to the
// original.
func Render(s *Strategy) string {
	var b strings.Builder
	b.WriteString("STRATEGY\n")
	writeLine(&b, 1, fmt.Sprintf("NAME %q", s.Name))
	writeLine(&b, 1, fmt.Sprintf("DESCRIPTION %q", s.Description))
	writeLine(&b, 1, "ENTRY")
	renderComposite(&b, 2, s.Entry)
	writeLine(&b, 1, "EXIT")
	renderComposite(&b, 2, s.Exit)
	writeLine(&b, 1, "SIZING")
	for _, rule := range s.Sizing.Rules {
		writeLine(&b, 2, "RULE")
		if rule.Condition != nil {
			writeLine(&b, 3, "CONDITION")
			renderComposite(&b, 4, rule.Condition)
		}
		writeLine(&b, 3, "DOLLAR_AMOUNT")
		writeLine(&b, 4, rule.Amount.String())
	}
	return b.String()
}

func writeLine(b *strings.Builder, depth int, text string) {
	b.WriteString(strings.Repeat(printIndent, depth))
	b.WriteString(text)
	b.WriteByte('\n')
}

// renderComposite writes expr at the given depth. A composite
// (AllOf/AnyOf) expands its keyword plus one indented line per child;
// anything else renders as a single line via its String method.
func renderComposite(b *strings.Builder, depth int, expr BoolExpression) {
	switch c := expr.(type) {
	case *AllOf:
		writeLine(b, depth, "ALL_OF")
		for _, child := range c.Children {
			renderComposite(b, depth+1, child)
		}
	case *AnyOf:
		writeLine(b, depth, "ANY_OF")
		for _, child := range c.Children {
			renderComposite(b, depth+1, child)
		}
	default:
		writeLine(b, depth, expr.String())
	}
}
