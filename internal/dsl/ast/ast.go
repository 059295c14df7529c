// Package ast holds the strategy DSL's typed syntax tree and its
// context-driven evaluator. Nodes are a closed set of tagged variants —
// there is no base-class hierarchy, only the Expression interface and
// the handful of concrete types that implement it.
package ast

import (
	"fmt"

	"github.com/eddiefleurent/trdr/internal/tradectx"
	"github.com/shopspring/decimal"
)

// MissingContextValue is raised when an Identifier has no value in the
// current StrategyContext. The trading engine recovers from this by
// skipping the symbol for the cycle.
type MissingContextValue struct {
	Name string
}

func (e *MissingContextValue) Error() string {
	return fmt.Sprintf("missing context value: %s", e.Name)
}

// SizingError is raised when no SizingRule's condition matched.
type SizingError struct {
	Message string
}

func (e *SizingError) Error() string {
	return e.Message
}

// EvalError wraps a fatal arithmetic failure, such as division by zero.
type EvalError struct {
	Message string
}

func (e *EvalError) Error() string {
	return e.Message
}

// Expression is any node that yields a decimal value against a context.
// Comparison and composite nodes also implement BoolExpression.
type Expression interface {
	Eval(ctx *tradectx.Context) (decimal.Decimal, error)
	String() string
}

// BoolExpression is implemented by nodes whose natural result is a
// boolean rather than a numeric decimal: comparisons, crossovers, and
// composites. Eval on these still satisfies Expression but its decimal
// result is not meaningful — EvalBool is the one callers should use.
type BoolExpression interface {
	Expression
	EvalBool(ctx *tradectx.Context) (bool, error)
}

var (
	decimalTrue  = decimal.NewFromInt(1)
	decimalFalse = decimal.NewFromInt(0)
)

func boolToDecimal(b bool) decimal.Decimal {
	if b {
		return decimalTrue
	}
	return decimalFalse
}

// Literal is a constant number.
type Literal struct {
	Value decimal.Decimal
}

// Eval implements Expression.
func (l *Literal) Eval(*tradectx.Context) (decimal.Decimal, error) {
	return l.Value, nil
}

func (l *Literal) String() string {
	return l.Value.String()
}

// Identifier looks a name up in the StrategyContext.
type Identifier struct {
	Name string
}

// Eval implements Expression. Money values yield their amount; other
// numeric values are coerced to decimal.
func (id *Identifier) Eval(ctx *tradectx.Context) (decimal.Decimal, error) {
	val, ok := ctx.Lookup(id.Name)
	if !ok {
		return decimal.Decimal{}, &MissingContextValue{Name: id.Name}
	}
	return val.Amount(), nil
}

func (id *Identifier) String() string {
	return id.Name
}

// ArithOp is the set of arithmetic and comparison operators a BinaryOp
// node may carry.
type ArithOp string

// The operators the parser emits.
const (
	OpAdd   ArithOp = "+"
	OpSub   ArithOp = "-"
	OpMul   ArithOp = "*"
	OpDiv   ArithOp = "/"
	OpGT    ArithOp = ">"
	OpLT    ArithOp = "<"
	OpEQ    ArithOp = "=="
)

func (op ArithOp) isComparison() bool {
	return op == OpGT || op == OpLT || op == OpEQ
}

// BinaryOp is an arithmetic or comparison node: Left OP Right.
type BinaryOp struct {
	Op    ArithOp
	Left  Expression
	Right Expression
}

// Eval implements Expression. For comparison operators the result is
// boolToDecimal of the comparison; callers that need the boolean
// directly should use EvalBool.
func (b *BinaryOp) Eval(ctx *tradectx.Context) (decimal.Decimal, error) {
	left, err := b.Left.Eval(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	right, err := b.Right.Eval(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	switch b.Op {
	case OpAdd:
		return left.Add(right), nil
	case OpSub:
		return left.Sub(right), nil
	case OpMul:
		return left.Mul(right), nil
	case OpDiv:
		if right.IsZero() {
			return decimal.Decimal{}, &EvalError{Message: "division by zero"}
		}
		return left.Div(right), nil
	case OpGT:
		return boolToDecimal(left.GreaterThan(right)), nil
	case OpLT:
		return boolToDecimal(left.LessThan(right)), nil
	case OpEQ:
		return boolToDecimal(left.Equal(right)), nil
	default:
		return decimal.Decimal{}, &EvalError{Message: fmt.Sprintf("unknown operator %q", b.Op)}
	}
}

// EvalBool implements BoolExpression for comparison operators.
func (b *BinaryOp) EvalBool(ctx *tradectx.Context) (bool, error) {
	if !b.Op.isComparison() {
		return false, &EvalError{Message: fmt.Sprintf("operator %q is not a boolean comparison", b.Op)}
	}
	left, err := b.Left.Eval(ctx)
	if err != nil {
		return false, err
	}
	right, err := b.Right.Eval(ctx)
	if err != nil {
		return false, err
	}
	switch b.Op {
	case OpGT:
		return left.GreaterThan(right), nil
	case OpLT:
		return left.LessThan(right), nil
	case OpEQ:
		return left.Equal(right), nil
	default:
		return false, &EvalError{Message: fmt.Sprintf("unknown comparison operator %q", b.Op)}
	}
}

func (b *BinaryOp) String() string {
	return fmt.Sprintf("%s %s %s", operandString(b.Left), string(b.Op), operandString(b.Right))
}

// operandString parenthesizes a nested BinaryOp so the rendered text
// re-parses with the same grouping.
func operandString(e Expression) string {
	if _, ok := e.(*BinaryOp); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}

// CrossoverDirection selects which of Security's crossover queries a
// Crossover node invokes.
type CrossoverDirection string

// The two crossover directions the grammar supports.
const (
	CrossedAbove CrossoverDirection = "CROSSED_ABOVE"
	CrossedBelow CrossoverDirection = "CROSSED_BELOW"
)

// Crossover tests whether a moving-average crossover occurred between
// two identifiers, both of which must name moving averages. It needs
// the current Security, carried alongside StrategyContext by the
// trading engine.
type Crossover struct {
	Direction CrossoverDirection
	Left      *Identifier
	Right     *Identifier
}

// Eval implements Expression by coercing EvalBool to a decimal.
func (c *Crossover) Eval(ctx *tradectx.Context) (decimal.Decimal, error) {
	b, err := c.EvalBool(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return boolToDecimal(b), nil
}

// EvalBool implements BoolExpression.
func (c *Crossover) EvalBool(ctx *tradectx.Context) (bool, error) {
	sec, ok := ctx.Security()
	if !ok {
		return false, &MissingContextValue{Name: "security"}
	}
	shortTf, ok := tradectx.TimeframeForIdentifier(c.Left.Name)
	if !ok {
		return false, &EvalError{Message: fmt.Sprintf("%s is not a moving-average identifier", c.Left.Name)}
	}
	longTf, ok := tradectx.TimeframeForIdentifier(c.Right.Name)
	if !ok {
		return false, &EvalError{Message: fmt.Sprintf("%s is not a moving-average identifier", c.Right.Name)}
	}
	switch c.Direction {
	case CrossedAbove:
		return sec.BullishCrossover(shortTf, longTf), nil
	case CrossedBelow:
		return sec.BearishCrossover(shortTf, longTf), nil
	default:
		return false, &EvalError{Message: fmt.Sprintf("unknown crossover direction %q", c.Direction)}
	}
}

func (c *Crossover) String() string {
	return fmt.Sprintf("%s %s %s", c.Left.String(), string(c.Direction), c.Right.String())
}

// AllOf is a composite that is true iff every child is true. Children
// evaluate in order and evaluation stops at the first false — later
// children are never touched, so an identifier missing from the
// context in an unreached branch never raises MissingContextValue.
type AllOf struct {
	Children []BoolExpression
}

// Eval implements Expression by coercing EvalBool to a decimal.
func (a *AllOf) Eval(ctx *tradectx.Context) (decimal.Decimal, error) {
	b, err := a.EvalBool(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return boolToDecimal(b), nil
}

// EvalBool implements BoolExpression with short-circuit evaluation.
func (a *AllOf) EvalBool(ctx *tradectx.Context) (bool, error) {
	for _, child := range a.Children {
		ok, err := child.EvalBool(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (a *AllOf) String() string {
	return joinComposite("ALL_OF", a.Children)
}

// AnyOf is a composite that is true iff at least one child is true.
// Children evaluate in order and evaluation stops at the first true.
type AnyOf struct {
	Children []BoolExpression
}

// Eval implements Expression by coercing EvalBool to a decimal.
func (a *AnyOf) Eval(ctx *tradectx.Context) (decimal.Decimal, error) {
	b, err := a.EvalBool(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return boolToDecimal(b), nil
}

// EvalBool implements BoolExpression with short-circuit evaluation.
func (a *AnyOf) EvalBool(ctx *tradectx.Context) (bool, error) {
	for _, child := range a.Children {
		ok, err := child.EvalBool(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (a *AnyOf) String() string {
	return joinComposite("ANY_OF", a.Children)
}

func joinComposite(kind string, children []BoolExpression) string {
	s := kind + "("
	for i, c := range children {
		if i > 0 {
			s += ", "
		}
		s += c.String()
	}
	return s + ")"
}

// SizingRule pairs an optional condition with a dollar-amount
// expression. A nil Condition always matches.
type SizingRule struct {
	Condition BoolExpression // nil means "always matches"
	Amount    Expression
}

// Sizing iterates its rules in declaration order and returns the first
// matching rule's amount.
type Sizing struct {
	Rules []SizingRule
}

// Eval returns the dollar amount from the first rule whose condition is
// absent or true. It fails with SizingError if no rule matches.
func (s *Sizing) Eval(ctx *tradectx.Context) (decimal.Decimal, error) {
	for _, rule := range s.Rules {
		if rule.Condition != nil {
			matched, err := rule.Condition.EvalBool(ctx)
			if err != nil {
				return decimal.Decimal{}, err
			}
			if !matched {
				continue
			}
		}
		return rule.Amount.Eval(ctx)
	}
	return decimal.Decimal{}, &SizingError{Message: "no sizing rule matched"}
}

func (s *Sizing) String() string {
	out := fmt.Sprintf("SIZING(%d rules)", len(s.Rules))
	return out
}

// Strategy is the root of a parsed .trdr document.
type Strategy struct {
	Name        string
	Description string
	Entry       BoolExpression
	Exit        BoolExpression
	Sizing      *Sizing
}

func (s *Strategy) String() string {
	return fmt.Sprintf("STRATEGY(%q)", s.Name)
}
