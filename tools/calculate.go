// Arithmetic Calculation Tool.
//
// Information Hiding:
// - Expression parsing and evaluation hidden
//
// The evaluator is a small recursive-descent parser over + - * / % ^ and
// parentheses. Expressions come from LLM extraction, so malformed input is
// expected and reported as a tool failure, never a panic.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CalculateTool evaluates arithmetic expressions.
type CalculateTool struct {
	BaseTool
}

// NewCalculateTool creates a new calculation tool.
func NewCalculateTool() *CalculateTool {
	return &CalculateTool{}
}

// Metadata returns the tool metadata.
func (t *CalculateTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "calculate",
		Description: "Evaluate an arithmetic expression",
		Parameters: []ToolParameter{
			{
				Name:        "expression",
				ParamType:   "string",
				Description: "The arithmetic expression to evaluate, e.g. '2 * (3 + 4)'",
				Required:    true,
			},
		},
	}
}

type calculateArgs struct {
	Expression string `json:"expression"`
}

// Validate validates the tool arguments.
func (t *CalculateTool) Validate(args json.RawMessage) error {
	var a calculateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(a.Expression) == "" {
		return fmt.Errorf("expression cannot be empty")
	}
	return nil
}

// Execute evaluates the expression.
func (t *CalculateTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a calculateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if strings.TrimSpace(a.Expression) == "" {
		return FailureResultf("expression cannot be empty"), nil
	}

	value, err := evalExpression(a.Expression)
	if err != nil {
		return FailureResult(fmt.Errorf("cannot evaluate '%s': %w", a.Expression, err)), nil
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return FailureResultf("'%s' has no finite result", a.Expression), nil
	}

	return SuccessResult(fmt.Sprintf("%s = %s", a.Expression, formatNumber(value))), nil
}

// formatNumber drops the fractional part for whole results.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// exprParser is a recursive-descent parser with standard precedence:
// ^ binds tightest (right associative), then unary minus, then * / %,
// then + -.
type exprParser struct {
	input string
	pos   int
}

func evalExpression(input string) (float64, error) {
	p := &exprParser{input: input}
	value, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	return value, nil
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) parseSum() (float64, error) {
	left, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseProduct() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case '/':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		case '%':
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("modulo by zero")
			}
			left = math.Mod(left, right)
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	if p.peek() == '-' {
		p.pos++
		value, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.parsePower()
}

func (p *exprParser) parsePower() (float64, error) {
	base, err := p.parseAtom()
	if err != nil {
		return 0, err
	}
	if p.peek() == '^' {
		p.pos++
		// Right associative: 2^3^2 is 2^(3^2)
		exponent, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exponent), nil
	}
	return base, nil
}

func (p *exprParser) parseAtom() (float64, error) {
	c := p.peek()
	if c == '(' {
		p.pos++
		value, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return value, nil
	}
	return p.parseNumber()
}

func (p *exprParser) parseNumber() (float64, error) {
	p.skipSpaces()
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}
	if start == p.pos {
		if p.pos >= len(p.input) {
			return 0, fmt.Errorf("unexpected end of expression")
		}
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return value, nil
}
