package numeric

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Eval computes an arithmetic formula such as
// "((revenue - cost) / cost) * 100" against named variables. Supported
// operators: + - * / and parentheses. Unknown identifiers, malformed
// expressions and division by zero are errors.
func Eval(formula string, variables map[string]float64) (float64, error) {
	p := &exprParser{input: formula, vars: variables}
	val, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("unexpected %q at position %d in formula %q", p.input[p.pos], p.pos, formula)
	}
	return val, nil
}

type exprParser struct {
	input string
	pos   int
	vars  map[string]float64
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

// expr := term (('+'|'-') term)*
func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

// term := factor (('*'|'/') factor)*
func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			left *= right
		case '/':
			p.pos++
			right, err := p.parseFactor()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero in formula %q", p.input)
			}
			left /= right
		default:
			return left, nil
		}
	}
}

// factor := number | identifier | '(' expr ')' | '-' factor
func (p *exprParser) parseFactor() (float64, error) {
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		val, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis in formula %q", p.input)
		}
		p.pos++
		return val, nil

	case c == '-':
		p.pos++
		val, err := p.parseFactor()
		return -val, err

	case c >= '0' && c <= '9' || c == '.':
		start := p.pos
		for p.pos < len(p.input) && (p.input[p.pos] >= '0' && p.input[p.pos] <= '9' || p.input[p.pos] == '.') {
			p.pos++
		}
		return strconv.ParseFloat(p.input[start:p.pos], 64)

	case isIdentStart(rune(c)):
		start := p.pos
		for p.pos < len(p.input) && isIdentPart(rune(p.input[p.pos])) {
			p.pos++
		}
		name := strings.ToLower(p.input[start:p.pos])
		val, ok := p.vars[name]
		if !ok {
			return 0, fmt.Errorf("unknown variable %q in formula %q", name, p.input)
		}
		return val, nil

	case c == 0:
		return 0, fmt.Errorf("unexpected end of formula %q", p.input)

	default:
		return 0, fmt.Errorf("unexpected %q in formula %q", c, p.input)
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
