package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrSyntax is returned for malformed dice notation.
var ErrSyntax = errors.New("invalid dice notation")

// Parse reads dice notation into an expression.
//
// Supported forms: integers ("3", "-1", "+2"), dice ("d20", "2d6"),
// keep-highest/keep-lowest pairs ("2d20kh1" for advantage, "2d20kl1" for
// disadvantage), "Adv(d20)" and "Dis(d20)", parentheses, and the four
// arithmetic operators with * and / binding tighter than + and -.
func Parse(s string) (Expr, error) {
	p := &parser{src: s}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.done() {
		return nil, p.errorf("unexpected %q", p.peek())
	}
	return e, nil
}

// MustParse is like Parse but panics on error. Intended for literals.
func MustParse(s string) Expr {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return e
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d in %q", ErrSyntax, fmt.Sprintf(format, args...), p.pos, p.src)
}

func (p *parser) done() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.done() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.done() && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) expr() (Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		var op Op
		switch p.peek() {
		case '+':
			op = OpAdd
		case '-':
			op = OpSub
		default:
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) term() (Expr, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		var op Op
		switch p.peek() {
		case '*':
			op = OpMul
		case '/':
			op = OpDiv
		default:
			return left, nil
		}
		p.pos++
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) factor() (Expr, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == 0:
		return nil, p.errorf("unexpected end of input")
	case c == '+':
		p.pos++
		return p.factor()
	case c == '-':
		p.pos++
		inner, err := p.factor()
		if err != nil {
			return nil, err
		}
		if k, ok := inner.(Const); ok {
			return -k, nil
		}
		return Mul(Const(-1), inner), nil
	case c == '(':
		p.pos++
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, p.errorf("missing closing parenthesis")
		}
		p.pos++
		return inner, nil
	case p.hasPrefixFold("adv("), p.hasPrefixFold("dis("):
		return p.keyword()
	case c == 'd' || c == 'D' || isDigit(c):
		return p.dice()
	default:
		return nil, p.errorf("unexpected %q", c)
	}
}

func (p *parser) hasPrefixFold(prefix string) bool {
	rest := p.src[p.pos:]
	return len(rest) >= len(prefix) && strings.EqualFold(rest[:len(prefix)], prefix)
}

// keyword parses Adv(dN) or Dis(dN), the display form of a single die
// rolled twice.
func (p *parser) keyword() (Expr, error) {
	advantage := strings.EqualFold(p.src[p.pos:p.pos+3], "adv")
	p.pos += 4
	p.skipSpace()
	inner, err := p.dice()
	if err != nil {
		return nil, err
	}
	r, ok := inner.(Roll)
	if !ok || r.Count != 1 {
		return nil, p.errorf("advantage applies to a single die, got %s", inner)
	}
	p.skipSpace()
	if p.peek() != ')' {
		return nil, p.errorf("missing closing parenthesis")
	}
	p.pos++
	if advantage {
		return Adv{Die: r.Die}, nil
	}
	return Dis{Die: r.Die}, nil
}

// dice parses an integer or an NdM term with optional khK / klK suffix.
func (p *parser) dice() (Expr, error) {
	count, hasCount, err := p.number()
	if err != nil {
		return nil, err
	}
	if c := p.peek(); c != 'd' && c != 'D' {
		if !hasCount {
			return nil, p.errorf("expected a number")
		}
		return Const(count), nil
	}
	p.pos++
	sides, ok, err := p.number()
	if err != nil {
		return nil, err
	}
	if !ok || sides < 1 {
		return nil, p.errorf("die needs a positive number of sides")
	}
	if !hasCount {
		count = 1
	}
	if count < 1 {
		return nil, p.errorf("dice count must be positive")
	}
	die := Die(sides)

	if !p.hasPrefixFold("kh") && !p.hasPrefixFold("kl") {
		return Roll{Count: count, Die: die}, nil
	}
	high := p.hasPrefixFold("kh")
	p.pos += 2
	keep, ok, err := p.number()
	if err != nil {
		return nil, err
	}
	if !ok || count != 2 || keep != 1 {
		return nil, p.errorf("only 2dNkh1 and 2dNkl1 are supported")
	}
	if high {
		return Adv{Die: die}, nil
	}
	return Dis{Die: die}, nil
}

func (p *parser) number() (int, bool, error) {
	start := p.pos
	for !p.done() && isDigit(p.peek()) {
		p.pos++
	}
	if start == p.pos {
		return 0, false, nil
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, false, p.errorf("number %q out of range", p.src[start:p.pos])
	}
	return n, true, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
