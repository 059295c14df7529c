package parser

import (
	"testing"

	"github.com/eddiefleurent/trdr/internal/dsl/ast"
	"github.com/eddiefleurent/trdr/internal/dsl/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTokenize(t *testing.T, src string) []lexer.Token {
	t.Helper()
	tokens, err := lexer.Tokenize(src)
	require.NoError(t, err)
	return tokens
}

const sampleStrategy = `STRATEGY
    NAME "basic"
    DESCRIPTION "sample"
    ENTRY
        ALL_OF
            MA5 CROSSED_ABOVE MA20
            CURRENT_PRICE > 100
    EXIT
        ANY_OF
            CURRENT_PRICE > AVERAGE_COST * 1.06
            CURRENT_PRICE < AVERAGE_COST * 0.98
    SIZING
        RULE
            CONDITION
                ANY_OF
                    AVAILABLE_CASH > 10000
            DOLLAR_AMOUNT
                2000
        RULE
            DOLLAR_AMOUNT
                AVAILABLE_CASH * 0.20
`

func TestParse_SampleStrategy(t *testing.T) {
	strat, err := Parse(mustTokenize(t, sampleStrategy))
	require.NoError(t, err)

	assert.Equal(t, "basic", strat.Name)
	assert.Equal(t, "sample", strat.Description)
	require.NotNil(t, strat.Entry)
	require.NotNil(t, strat.Exit)
	require.NotNil(t, strat.Sizing)

	entryAllOf, ok := strat.Entry.(*ast.AllOf)
	require.True(t, ok, "ENTRY must parse to an ALL_OF composite")
	require.Len(t, entryAllOf.Children, 2)

	crossover, ok := entryAllOf.Children[0].(*ast.Crossover)
	require.True(t, ok)
	assert.Equal(t, ast.CrossedAbove, crossover.Direction)
	assert.Equal(t, "MA5", crossover.Left.Name)
	assert.Equal(t, "MA20", crossover.Right.Name)

	exitAnyOf, ok := strat.Exit.(*ast.AnyOf)
	require.True(t, ok, "EXIT must parse to an ANY_OF composite")
	require.Len(t, exitAnyOf.Children, 2)

	require.Len(t, strat.Sizing.Rules, 2)
	require.NotNil(t, strat.Sizing.Rules[0].Condition)
	require.Nil(t, strat.Sizing.Rules[1].Condition)
}

func TestParse_EntryMustStartWithComposite(t *testing.T) {
	src := `STRATEGY
    NAME "bad"
    DESCRIPTION "bad"
    ENTRY
        CURRENT_PRICE > 100
    EXIT
        ANY_OF
            CURRENT_PRICE < 1
    SIZING
        RULE
            DOLLAR_AMOUNT
                100
`
	_, err := Parse(mustTokenize(t, src))
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 5, perr.Line)
}

func TestParse_CrossoverRequiresMovingAverageOperands(t *testing.T) {
	src := `STRATEGY
    NAME "bad"
    DESCRIPTION "bad"
    ENTRY
        ALL_OF
            CURRENT_PRICE CROSSED_ABOVE MA20
    EXIT
        ANY_OF
            CURRENT_PRICE < 1
    SIZING
        RULE
            DOLLAR_AMOUNT
                100
`
	_, err := Parse(mustTokenize(t, src))
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
}

func TestParse_SizingRuleMissingDollarAmountFails(t *testing.T) {
	src := `STRATEGY
    NAME "bad"
    DESCRIPTION "bad"
    ENTRY
        ALL_OF
            CURRENT_PRICE > 1
    EXIT
        ANY_OF
            CURRENT_PRICE < 1
    SIZING
        RULE
            CONDITION
                AVAILABLE_CASH > 1
`
	_, err := Parse(mustTokenize(t, src))
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
}

func TestParse_UnknownFieldReportsLine(t *testing.T) {
	src := `STRATEGY
    NAME "bad"
    BOGUS_FIELD
`
	_, err := Parse(mustTokenize(t, src))
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 3, perr.Line)
}

func TestParse_ArithmeticPrecedence(t *testing.T) {
	src := `STRATEGY
    NAME "prec"
    DESCRIPTION "prec"
    ENTRY
        ALL_OF
            CURRENT_PRICE > 1 + 2 * 3
    EXIT
        ANY_OF
            CURRENT_PRICE < 1
    SIZING
        RULE
            DOLLAR_AMOUNT
                100
`
	strat, err := Parse(mustTokenize(t, src))
	require.NoError(t, err)
	entry := strat.Entry.(*ast.AllOf)
	cmp := entry.Children[0].(*ast.BinaryOp)
	rhs := cmp.Right.(*ast.BinaryOp)
	assert.Equal(t, ast.OpAdd, rhs.Op)
	mul := rhs.Right.(*ast.BinaryOp)
	assert.Equal(t, ast.OpMul, mul.Op)
}

func TestRenderParse_RoundTrip(t *testing.T) {
	strat, err := Parse(mustTokenize(t, sampleStrategy))
	require.NoError(t, err)

	rendered := ast.Render(strat)
	reparsed, err := Parse(mustTokenize(t, rendered))
	require.NoError(t, err, "rendered output must re-lex and re-parse:\n%s", rendered)

	assert.Equal(t, strat.Name, reparsed.Name)
	assert.Equal(t, strat.Description, reparsed.Description)
	assert.IsType(t, strat.Entry, reparsed.Entry)
	assert.IsType(t, strat.Exit, reparsed.Exit)
	assert.Len(t, reparsed.Sizing.Rules, len(strat.Sizing.Rules))

	rerendered := ast.Render(reparsed)
	assert.Equal(t, rendered, rerendered, "render must be stable across a second parse/print cycle")
}

func TestParse_ParenthesizedExpression(t *testing.T) {
	src := `STRATEGY
    NAME "paren"
    DESCRIPTION "paren"
    ENTRY
        ALL_OF
            CURRENT_PRICE > (AVERAGE_COST + 1) * 2
    EXIT
        ANY_OF
            CURRENT_PRICE < 1
    SIZING
        RULE
            DOLLAR_AMOUNT
                100
`
	strat, err := Parse(mustTokenize(t, src))
	require.NoError(t, err)
	entry := strat.Entry.(*ast.AllOf)
	cmp := entry.Children[0].(*ast.BinaryOp)
	mul := cmp.Right.(*ast.BinaryOp)
	assert.Equal(t, ast.OpMul, mul.Op)
	add := mul.Left.(*ast.BinaryOp)
	assert.Equal(t, ast.OpAdd, add.Op)
}
