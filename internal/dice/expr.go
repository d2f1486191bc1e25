// Package dice implements symbolic dice expressions, their evaluation into
// rolled result trees, critical-hit classification and dice notation parsing.
package dice

import (
	"fmt"
	"strconv"
)

// Die is a die identified by its number of sides.
type Die int

const (
	D4   Die = 4
	D6   Die = 6
	D8   Die = 8
	D10  Die = 10
	D12  Die = 12
	D20  Die = 20
	D100 Die = 100
)

func (d Die) String() string {
	return "d" + strconv.Itoa(int(d))
}

// Expr returns a single plain roll of d.
func (d Die) Expr() Expr {
	return Roll{Count: 1, Die: d}
}

// N returns a plain roll of count dice of d.
func (d Die) N(count int) Expr {
	return Roll{Count: count, Die: d}
}

// Expr is an unevaluated dice expression.
//
// The set of implementations is closed: Const, Roll, Adv, Dis and Binary.
// Expressions are immutable; every transform returns a new tree.
type Expr interface {
	fmt.Stringer
	isExpr()
}

// Const is a flat modifier.
type Const int

// Roll is Count dice of the same kind summed together.
//
// BothAdvDis marks a single die that received both advantage and
// disadvantage: it rolls plain and ignores any further toggling.
type Roll struct {
	Count      int
	Die        Die
	BothAdvDis bool
}

// Adv rolls Die twice and keeps the higher result.
type Adv struct {
	Die Die
}

// Dis rolls Die twice and keeps the lower result.
type Dis struct {
	Die Die
}

// Op is an arithmetic operator.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

func (o Op) additive() bool {
	return o == OpAdd || o == OpSub
}

func (o Op) apply(a, b int) int {
	switch o {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		if b == 0 {
			return 0
		}
		return a / b
	default:
		return 0
	}
}

// Binary combines two expressions with an operator.
type Binary struct {
	Op    Op
	Left  Expr
	Right Expr
}

func (Const) isExpr()  {}
func (Roll) isExpr()   {}
func (Adv) isExpr()    {}
func (Dis) isExpr()    {}
func (Binary) isExpr() {}

func Add(a, b Expr) Expr { return Binary{Op: OpAdd, Left: a, Right: b} }
func Sub(a, b Expr) Expr { return Binary{Op: OpSub, Left: a, Right: b} }
func Mul(a, b Expr) Expr { return Binary{Op: OpMul, Left: a, Right: b} }
func Div(a, b Expr) Expr { return Binary{Op: OpDiv, Left: a, Right: b} }

// Sum folds exprs with addition, skipping nil entries.
// An empty sum is Const(0).
func Sum(exprs ...Expr) Expr {
	var out Expr
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if out == nil {
			out = e
			continue
		}
		out = Add(out, e)
	}
	if out == nil {
		return Const(0)
	}
	return out
}

// Advantage applies advantage to every die of e.
//
// A single plain die becomes Adv; Adv stays Adv; Dis collapses into a
// plain die flagged BothAdvDis, which no later transform changes.
// Constants, multi-dice rolls and flagged dice are returned unchanged.
func Advantage(e Expr) Expr {
	switch v := e.(type) {
	case Roll:
		if v.Count == 1 && !v.BothAdvDis {
			return Adv{Die: v.Die}
		}
		return v
	case Adv:
		return v
	case Dis:
		return Roll{Count: 1, Die: v.Die, BothAdvDis: true}
	case Binary:
		return Binary{Op: v.Op, Left: Advantage(v.Left), Right: Advantage(v.Right)}
	default:
		return e
	}
}

// Disadvantage is the mirror of Advantage.
func Disadvantage(e Expr) Expr {
	switch v := e.(type) {
	case Roll:
		if v.Count == 1 && !v.BothAdvDis {
			return Dis{Die: v.Die}
		}
		return v
	case Dis:
		return v
	case Adv:
		return Roll{Count: 1, Die: v.Die, BothAdvDis: true}
	case Binary:
		return Binary{Op: v.Op, Left: Disadvantage(v.Left), Right: Disadvantage(v.Right)}
	default:
		return e
	}
}

// MapRolls rewrites every Roll leaf of e with fn. Adv and Dis leaves are
// left alone.
func MapRolls(e Expr, fn func(Roll) Roll) Expr {
	switch v := e.(type) {
	case Roll:
		return fn(v)
	case Binary:
		return Binary{Op: v.Op, Left: MapRolls(v.Left, fn), Right: MapRolls(v.Right, fn)}
	default:
		return e
	}
}

// DoubleDice doubles the number of dice rolled in e, leaving flat
// modifiers untouched. Used for critical hits.
func DoubleDice(e Expr) Expr {
	return MapRolls(e, func(r Roll) Roll {
		r.Count *= 2
		return r
	})
}

// HasDice reports whether evaluating e rolls anything.
func HasDice(e Expr) bool {
	switch v := e.(type) {
	case Roll, Adv, Dis:
		return true
	case Binary:
		return HasDice(v.Left) || HasDice(v.Right)
	default:
		return false
	}
}
