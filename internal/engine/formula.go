package engine

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Exceed-days reward formulas are small arithmetic expressions over the day
// number n, e.g. "2n+10" or "(n+1)*5". Juxtaposition multiplies: "2n" is 2*n.
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary | primary }
//	unary   = ("+" | "-") unary | primary
//	primary = number | "n" | "(" expr ")"

var formulaCharset = regexp.MustCompile(`^[0-9+\-*/().n\s]+$`)

const maxFormulaLen = 256

var ErrEmptyFormula = errors.New("formula is empty")

type Formula struct {
	src  string
	root formulaNode
}

type formulaNode interface {
	eval(n float64) float64
}

type numberNode float64

func (v numberNode) eval(float64) float64 { return float64(v) }

type varNode struct{}

func (varNode) eval(n float64) float64 { return n }

type negNode struct{ x formulaNode }

func (u negNode) eval(n float64) float64 { return -u.x.eval(n) }

type binaryNode struct {
	op   byte
	l, r formulaNode
}

func (b binaryNode) eval(n float64) float64 {
	l, r := b.l.eval(n), b.r.eval(n)
	switch b.op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	default:
		// Division by zero yields ±Inf or NaN, which callers treat as invalid.
		return l / r
	}
}

// ParseFormula validates and compiles a formula.
func ParseFormula(src string) (*Formula, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmptyFormula
	}
	if len(src) > maxFormulaLen {
		return nil, fmt.Errorf("formula longer than %d characters", maxFormulaLen)
	}
	if !formulaCharset.MatchString(src) {
		return nil, fmt.Errorf("formula %q contains characters other than digits, n, + - * / ( ) and .", src)
	}

	p := &formulaParser{s: strings.Join(strings.Fields(src), "")}
	root, err := p.expr()
	if err != nil {
		return nil, fmt.Errorf("formula %q: %w", src, err)
	}
	if p.pos < len(p.s) {
		return nil, fmt.Errorf("formula %q: unexpected %q at %d", src, p.s[p.pos], p.pos)
	}
	return &Formula{src: src, root: root}, nil
}

func (f *Formula) String() string { return f.src }

// Eval evaluates the formula for day n. The result may be NaN or infinite.
func (f *Formula) Eval(n float64) float64 {
	return f.root.eval(n)
}

// Reward sums the per-day value for days 1..exceedDays, skipping days whose
// value is not a finite non-negative number, and floors the total.
func (f *Formula) Reward(exceedDays int) int {
	if exceedDays <= 0 {
		return 0
	}
	total := 0.0
	for day := 1; day <= exceedDays; day++ {
		v := f.Eval(float64(day))
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			continue
		}
		total += v
	}
	if math.IsInf(total, 0) || total > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(total))
}

// EvaluateExceedDaysReward returns the overdue bonus for a task. An absent or
// malformed formula, or a task that is not overdue, earns 0.
func EvaluateExceedDaysReward(formula string, exceedDays int) int {
	if exceedDays <= 0 || strings.TrimSpace(formula) == "" {
		return 0
	}
	f, err := ParseFormula(formula)
	if err != nil {
		return 0
	}
	return f.Reward(exceedDays)
}

type formulaParser struct {
	s   string
	pos int
}

func (p *formulaParser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *formulaParser) expr() (formulaNode, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, l: left, r: right}
	}
}

func (p *formulaParser) term() (formulaNode, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		switch {
		case op == '*' || op == '/':
			p.pos++
			right, err := p.unary()
			if err != nil {
				return nil, err
			}
			left = binaryNode{op: op, l: left, r: right}
		case startsPrimary(op):
			right, err := p.primary()
			if err != nil {
				return nil, err
			}
			left = binaryNode{op: '*', l: left, r: right}
		default:
			return left, nil
		}
	}
}

func (p *formulaParser) unary() (formulaNode, error) {
	switch p.peek() {
	case '-':
		p.pos++
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negNode{x: x}, nil
	case '+':
		p.pos++
		return p.unary()
	}
	return p.primary()
}

func (p *formulaParser) primary() (formulaNode, error) {
	c := p.peek()
	switch {
	case c == 0:
		return nil, errors.New("unexpected end of formula")
	case c == 'n':
		p.pos++
		return varNode{}, nil
	case c == '(':
		p.pos++
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, fmt.Errorf("missing ) at %d", p.pos)
		}
		p.pos++
		return x, nil
	case isDigit(c) || c == '.':
		start := p.pos
		for p.pos < len(p.s) && (isDigit(p.s[p.pos]) || p.s[p.pos] == '.') {
			p.pos++
		}
		v, err := strconv.ParseFloat(p.s[start:p.pos], 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", p.s[start:p.pos])
		}
		return numberNode(v), nil
	default:
		return nil, fmt.Errorf("unexpected %q at %d", c, p.pos)
	}
}

func startsPrimary(c byte) bool {
	return c == 'n' || c == '(' || c == '.' || isDigit(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
