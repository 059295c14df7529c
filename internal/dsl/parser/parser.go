// Package parser implements the recursive-descent parser that turns a
// DSL token stream into a typed ast.Strategy.
package parser

import (
	"fmt"
	"strings"

	"github.com/eddiefleurent/trdr/internal/dsl/ast"
	"github.com/eddiefleurent/trdr/internal/dsl/lexer"
	"github.com/shopspring/decimal"
)

// Error is raised at the first grammar or semantic-rule violation. The
// line number is always the offending token's.
type Error struct {
	Message string
	Line    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

var maIdentifiers = map[string]bool{
	"MA5": true, "MA20": true, "MA50": true, "MA100": true, "MA200": true,
}

var crossoverOps = map[string]bool{
	"CROSSED_ABOVE": true, "CROSSED_BELOW": true,
}

var compareOps = map[string]bool{
	">": true, "<": true, "==": true,
}

// Parser consumes a token stream produced by the lexer.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New constructs a Parser over tokens.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses a complete STRATEGY document and returns its AST.
func Parse(tokens []lexer.Token) (*ast.Strategy, error) {
	return New(tokens).ParseStrategy()
}

func (p *Parser) current() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	line := 0
	if len(p.tokens) > 0 {
		line = p.tokens[len(p.tokens)-1].Line
	}
	return lexer.Token{Kind: lexer.EOF, Line: line}
}

func (p *Parser) advance() {
	p.pos++
}

func (p *Parser) expect(kind lexer.Kind) (lexer.Token, error) {
	tok := p.current()
	if tok.Kind != kind {
		return lexer.Token{}, &Error{
			Message: fmt.Sprintf("expected %s, got %s %q", kind, tok.Kind, tok.Value),
			Line:    tok.Line,
		}
	}
	p.advance()
	return tok, nil
}

func (p *Parser) expectKeyword(keyword string) (lexer.Token, error) {
	tok := p.current()
	if tok.Kind != lexer.IDENTIFIER || strings.ToUpper(tok.Value) != keyword {
		return lexer.Token{}, &Error{
			Message: fmt.Sprintf("expected %q, got %s %q", keyword, tok.Kind, tok.Value),
			Line:    tok.Line,
		}
	}
	p.advance()
	return tok, nil
}

func unquote(raw string) string {
	return strings.Trim(raw, `"`)
}

// ParseStrategy parses the STRATEGY field block at the top level.
func (p *Parser) ParseStrategy() (*ast.Strategy, error) {
	if _, err := p.expectKeyword("STRATEGY"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.INDENT); err != nil {
		return nil, err
	}

	strat := &ast.Strategy{}
	var haveEntry, haveExit, haveSizing bool

	for p.current().Kind != lexer.DEDENT && p.current().Kind != lexer.EOF {
		fieldTok, err := p.expect(lexer.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		field := strings.ToUpper(fieldTok.Value)
		switch field {
		case "NAME", "DESCRIPTION":
			valTok, err := p.expect(lexer.STRING)
			if err != nil {
				return nil, err
			}
			if field == "NAME" {
				strat.Name = unquote(valTok.Value)
			} else {
				strat.Description = unquote(valTok.Value)
			}
		case "ENTRY":
			expr, err := p.parseEntryOrExit()
			if err != nil {
				return nil, err
			}
			strat.Entry = expr
			haveEntry = true
		case "EXIT":
			expr, err := p.parseEntryOrExit()
			if err != nil {
				return nil, err
			}
			strat.Exit = expr
			haveExit = true
		case "SIZING":
			sizing, err := p.parseSizing()
			if err != nil {
				return nil, err
			}
			strat.Sizing = sizing
			haveSizing = true
		default:
			return nil, &Error{Message: fmt.Sprintf("unknown field %q", fieldTok.Value), Line: fieldTok.Line}
		}
	}

	if _, err := p.expect(lexer.DEDENT); err != nil {
		return nil, err
	}
	if !haveEntry {
		return nil, &Error{Message: "strategy is missing an ENTRY field", Line: fieldLine(p)}
	}
	if !haveExit {
		return nil, &Error{Message: "strategy is missing an EXIT field", Line: fieldLine(p)}
	}
	if !haveSizing {
		return nil, &Error{Message: "strategy is missing a SIZING field", Line: fieldLine(p)}
	}
	return strat, nil
}

func fieldLine(p *Parser) int {
	return p.current().Line
}

// parseEntryOrExit parses the single composite block that must be the
// sole content of an ENTRY or EXIT field.
func (p *Parser) parseEntryOrExit() (ast.BoolExpression, error) {
	if _, err := p.expect(lexer.INDENT); err != nil {
		return nil, err
	}
	tok := p.current()
	if tok.Kind != lexer.IDENTIFIER || !isCompositeOp(tok.Value) {
		return nil, &Error{
			Message: "ENTRY/EXIT block must start with a composite operator (ALL_OF or ANY_OF)",
			Line:    tok.Line,
		}
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.current().Kind != lexer.DEDENT {
		return nil, &Error{
			Message: "ENTRY/EXIT block must contain a single composite expression",
			Line:    tok.Line,
		}
	}
	if _, err := p.expect(lexer.DEDENT); err != nil {
		return nil, err
	}
	boolExpr, ok := expr.(ast.BoolExpression)
	if !ok {
		return nil, &Error{Message: "ENTRY/EXIT expression must be boolean-valued", Line: tok.Line}
	}
	return boolExpr, nil
}

func isCompositeOp(value string) bool {
	v := strings.ToUpper(value)
	return v == "ALL_OF" || v == "ANY_OF"
}

// parseExpression parses either a composite (ALL_OF/ANY_OF) or a bare
// comparison.
func (p *Parser) parseExpression() (ast.Expression, error) {
	tok := p.current()
	if tok.Kind == lexer.IDENTIFIER && isCompositeOp(tok.Value) {
		comp := strings.ToUpper(tok.Value)
		p.advance()
		children, err := p.parseCompositeBlock()
		if err != nil {
			return nil, err
		}
		if comp == "ALL_OF" {
			return &ast.AllOf{Children: children}, nil
		}
		return &ast.AnyOf{Children: children}, nil
	}
	return p.parseComparison()
}

// parseCompositeBlock parses an INDENT Expression+ DEDENT block, where
// every expression must itself be boolean-valued (comparisons,
// crossovers, or nested composites).
func (p *Parser) parseCompositeBlock() ([]ast.BoolExpression, error) {
	if _, err := p.expect(lexer.INDENT); err != nil {
		return nil, err
	}
	var children []ast.BoolExpression
	for p.current().Kind != lexer.DEDENT && p.current().Kind != lexer.EOF {
		tok := p.current()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		boolExpr, ok := expr.(ast.BoolExpression)
		if bin, isBin := expr.(*ast.BinaryOp); isBin && !compareOps[string(bin.Op)] {
			ok = false
		}
		if !ok {
			return nil, &Error{Message: "composite children must be boolean-valued", Line: tok.Line}
		}
		children = append(children, boolExpr)
	}
	if _, err := p.expect(lexer.DEDENT); err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, &Error{Message: "composite block must contain at least one expression", Line: p.current().Line}
	}
	return children, nil
}

// parseComparison parses Arithmetic (CmpOp Arithmetic)?, synthesizing
// either a BinaryOp comparison or a Crossover node.
func (p *Parser) parseComparison() (ast.Expression, error) {
	left, err := p.parseArithmetic()
	if err != nil {
		return nil, err
	}
	tok := p.current()
	opVal := strings.ToUpper(tok.Value)
	isOpToken := tok.Kind == lexer.OPERATOR && compareOps[tok.Value]
	isCrossoverToken := tok.Kind == lexer.IDENTIFIER && crossoverOps[opVal]
	if !isOpToken && !isCrossoverToken {
		return left, nil
	}
	p.advance()
	right, err := p.parseArithmetic()
	if err != nil {
		return nil, err
	}

	if isCrossoverToken {
		leftID, ok := left.(*ast.Identifier)
		if !ok || !maIdentifiers[strings.ToUpper(leftID.Name)] {
			return nil, &Error{Message: fmt.Sprintf("%s requires a moving-average identifier on the left", opVal), Line: tok.Line}
		}
		rightID, ok := right.(*ast.Identifier)
		if !ok || !maIdentifiers[strings.ToUpper(rightID.Name)] {
			return nil, &Error{Message: fmt.Sprintf("%s requires a moving-average identifier on the right", opVal), Line: tok.Line}
		}
		direction := ast.CrossedAbove
		if opVal == "CROSSED_BELOW" {
			direction = ast.CrossedBelow
		}
		return &ast.Crossover{Direction: direction, Left: leftID, Right: rightID}, nil
	}

	return &ast.BinaryOp{Op: ast.ArithOp(tok.Value), Left: left, Right: right}, nil
}

func (p *Parser) parseArithmetic() (ast.Expression, error) {
	expr, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.current().Kind == lexer.OPERATOR && (p.current().Value == "+" || p.current().Value == "-") {
		op := p.current().Value
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryOp{Op: ast.ArithOp(op), Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseTerm() (ast.Expression, error) {
	expr, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.current().Kind == lexer.OPERATOR && (p.current().Value == "*" || p.current().Value == "/") {
		op := p.current().Value
		p.advance()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryOp{Op: ast.ArithOp(op), Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseFactor() (ast.Expression, error) {
	tok := p.current()
	switch tok.Kind {
	case lexer.NUMBER:
		p.advance()
		val, err := decimal.NewFromString(tok.Value)
		if err != nil {
			return nil, &Error{Message: fmt.Sprintf("invalid number %q", tok.Value), Line: tok.Line}
		}
		return &ast.Literal{Value: val}, nil
	case lexer.STRING:
		p.advance()
		// String literals are not numerically meaningful; the grammar
		// only uses them for NAME/DESCRIPTION, handled separately. A
		// string reaching parseFactor is a grammar error in context,
		// but the grammar's Factor production allows it structurally.
		return nil, &Error{Message: "string literal not valid in an arithmetic expression", Line: tok.Line}
	case lexer.IDENTIFIER:
		p.advance()
		return &ast.Identifier{Name: tok.Value}, nil
	case lexer.LEFT_PAREN:
		p.advance()
		expr, err := p.parseArithmetic()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RIGHT_PAREN); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, &Error{Message: fmt.Sprintf("unexpected token %s %q", tok.Kind, tok.Value), Line: tok.Line}
	}
}

// parseSizing parses the SIZING field's RULE+ block.
func (p *Parser) parseSizing() (*ast.Sizing, error) {
	if _, err := p.expect(lexer.INDENT); err != nil {
		return nil, err
	}
	var rules []ast.SizingRule
	for p.current().Kind != lexer.DEDENT && p.current().Kind != lexer.EOF {
		if _, err := p.expectKeyword("RULE"); err != nil {
			return nil, err
		}
		rule, err := p.parseSizingRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if _, err := p.expect(lexer.DEDENT); err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, &Error{Message: "SIZING field must contain at least one RULE", Line: p.current().Line}
	}
	return &ast.Sizing{Rules: rules}, nil
}

func (p *Parser) parseSizingRule() (ast.SizingRule, error) {
	if _, err := p.expect(lexer.INDENT); err != nil {
		return ast.SizingRule{}, err
	}
	var rule ast.SizingRule
	var haveAmount bool

	for p.current().Kind != lexer.DEDENT && p.current().Kind != lexer.EOF {
		fieldTok, err := p.expect(lexer.IDENTIFIER)
		if err != nil {
			return ast.SizingRule{}, err
		}
		switch strings.ToUpper(fieldTok.Value) {
		case "CONDITION":
			cond, err := p.parseConditionBlock()
			if err != nil {
				return ast.SizingRule{}, err
			}
			rule.Condition = cond
		case "DOLLAR_AMOUNT":
			if _, err := p.expect(lexer.INDENT); err != nil {
				return ast.SizingRule{}, err
			}
			amount, err := p.parseArithmetic()
			if err != nil {
				return ast.SizingRule{}, err
			}
			if _, err := p.expect(lexer.DEDENT); err != nil {
				return ast.SizingRule{}, err
			}
			rule.Amount = amount
			haveAmount = true
		default:
			return ast.SizingRule{}, &Error{
				Message: fmt.Sprintf("unexpected field %q in sizing rule", fieldTok.Value),
				Line:    fieldTok.Line,
			}
		}
	}
	tok := p.current()
	if _, err := p.expect(lexer.DEDENT); err != nil {
		return ast.SizingRule{}, err
	}
	if !haveAmount {
		return ast.SizingRule{}, &Error{Message: "sizing rule must have a DOLLAR_AMOUNT", Line: tok.Line}
	}
	return rule, nil
}

// parseConditionBlock parses CONDITION's INDENT (Composite|Expression) DEDENT.
func (p *Parser) parseConditionBlock() (ast.BoolExpression, error) {
	if _, err := p.expect(lexer.INDENT); err != nil {
		return nil, err
	}
	tok := p.current()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.DEDENT); err != nil {
		return nil, err
	}
	boolExpr, ok := expr.(ast.BoolExpression)
	if bin, isBin := expr.(*ast.BinaryOp); isBin && !compareOps[string(bin.Op)] {
		ok = false
	}
	if !ok {
		return nil, &Error{Message: "condition must be boolean-valued", Line: tok.Line}
	}
	return boolExpr, nil
}
