package dice

import "fmt"

// Tree is an evaluated expression: the same shape as the Expr it came
// from, with every die replaced by the faces that were rolled.
type Tree interface {
	fmt.Stringer
	// Result reduces the tree to a number.
	Result() int
	isTree()
}

// Modifier is an evaluated Const.
type Modifier int

// Rolls holds the faces of an evaluated Roll, in rolling order.
type Rolls struct {
	Die   Die
	Faces []int
}

// AdvRolls holds both faces of an evaluated Adv.
type AdvRolls struct {
	Die  Die
	A, B int
}

// DisRolls holds both faces of an evaluated Dis.
type DisRolls struct {
	Die  Die
	A, B int
}

// BinaryTree is an evaluated Binary.
type BinaryTree struct {
	Op    Op
	Left  Tree
	Right Tree
}

func (Modifier) isTree()   {}
func (Rolls) isTree()      {}
func (AdvRolls) isTree()   {}
func (DisRolls) isTree()   {}
func (BinaryTree) isTree() {}

func (m Modifier) Result() int { return int(m) }

func (r Rolls) Result() int {
	sum := 0
	for _, f := range r.Faces {
		sum += f
	}
	return sum
}

func (r AdvRolls) Result() int { return max(r.A, r.B) }

func (r DisRolls) Result() int { return min(r.A, r.B) }

// Result applies the operator with integer arithmetic. Division truncates
// toward zero; dividing by zero yields 0.
func (b BinaryTree) Result() int {
	return b.Op.apply(b.Left.Result(), b.Right.Result())
}

// Evaluate rolls every die of e, left to right, and returns the result
// tree. A nil roller falls back to the process-wide Default roller, which
// is only consulted when e actually contains dice.
func Evaluate(e Expr, r *Roller) Tree {
	if r == nil && HasDice(e) {
		r = Default()
	}
	return evaluate(e, r)
}

// Static reduces an expression without dice. It reports false, and does
// not roll, when e contains any die.
func Static(e Expr) (int, bool) {
	if HasDice(e) {
		return 0, false
	}
	return evaluate(e, nil).Result(), true
}

func evaluate(e Expr, r *Roller) Tree {
	switch v := e.(type) {
	case Const:
		return Modifier(v)
	case Roll:
		faces := make([]int, 0, max(v.Count, 0))
		for range v.Count {
			faces = append(faces, r.Roll(v.Die))
		}
		return Rolls{Die: v.Die, Faces: faces}
	case Adv:
		a := r.Roll(v.Die)
		b := r.Roll(v.Die)
		return AdvRolls{Die: v.Die, A: a, B: b}
	case Dis:
		a := r.Roll(v.Die)
		b := r.Roll(v.Die)
		return DisRolls{Die: v.Die, A: a, B: b}
	case Binary:
		left := evaluate(v.Left, r)
		right := evaluate(v.Right, r)
		return BinaryTree{Op: v.Op, Left: left, Right: right}
	default:
		return Modifier(0)
	}
}

// Critical classifies a to-hit roll.
type Critical int

const (
	NotCritical Critical = iota
	CriticalSuccess
	CriticalFailure
)

func (c Critical) String() string {
	switch c {
	case CriticalSuccess:
		return "critical success"
	case CriticalFailure:
		return "critical failure"
	default:
		return "not critical"
	}
}

// Criticality walks t looking for the d20 that decides a critical.
//
// A lone d20 showing 20 is a success and showing 1 a failure. An advantage
// pair succeeds when either die shows 20 and fails only when both show 1.
// A disadvantage pair succeeds only when both show 20 and fails only when
// both show 1. Operators return the first classification found, left
// operand first.
func Criticality(t Tree) Critical {
	switch v := t.(type) {
	case Rolls:
		if v.Die != D20 || len(v.Faces) != 1 {
			return NotCritical
		}
		return faceCritical(v.Faces[0])
	case AdvRolls:
		if v.Die != D20 {
			return NotCritical
		}
		switch {
		case v.A == 20 || v.B == 20:
			return CriticalSuccess
		case v.A == 1 && v.B == 1:
			return CriticalFailure
		}
	case DisRolls:
		if v.Die != D20 {
			return NotCritical
		}
		switch {
		case v.A == 20 && v.B == 20:
			return CriticalSuccess
		case v.A == 1 && v.B == 1:
			return CriticalFailure
		}
	case BinaryTree:
		if c := Criticality(v.Left); c != NotCritical {
			return c
		}
		return Criticality(v.Right)
	}
	return NotCritical
}

func faceCritical(face int) Critical {
	switch face {
	case 20:
		return CriticalSuccess
	case 1:
		return CriticalFailure
	default:
		return NotCritical
	}
}
