package dice

import (
	"strconv"
	"strings"
)

func (c Const) String() string {
	return strconv.Itoa(int(c))
}

func (r Roll) String() string {
	if r.Count == 1 {
		return r.Die.String()
	}
	return strconv.Itoa(r.Count) + r.Die.String()
}

func (a Adv) String() string {
	return "Adv(" + a.Die.String() + ")"
}

func (d Dis) String() string {
	return "Dis(" + d.Die.String() + ")"
}

func (b Binary) String() string {
	return formatBinary(b.Op, b.Left, b.Right)
}

func (m Modifier) String() string {
	return strconv.Itoa(int(m))
}

func (r Rolls) String() string {
	if len(r.Faces) == 1 {
		return strconv.Itoa(r.Faces[0])
	}
	parts := make([]string, len(r.Faces))
	for i, f := range r.Faces {
		parts[i] = strconv.Itoa(f)
	}
	return "(" + strings.Join(parts, " + ") + ")"
}

// String marks the discarded die with tildes: Adv(17, ~4~).
func (r AdvRolls) String() string {
	return formatPair("Adv", r.A, r.B, r.A >= r.B)
}

func (r DisRolls) String() string {
	return formatPair("Dis", r.A, r.B, r.A <= r.B)
}

func (b BinaryTree) String() string {
	return formatBinary(b.Op, b.Left, b.Right)
}

func formatPair(name string, a, b int, firstKept bool) string {
	sa, sb := strconv.Itoa(a), strconv.Itoa(b)
	if firstKept {
		sb = "~" + sb + "~"
	} else {
		sa = "~" + sa + "~"
	}
	return name + "(" + sa + ", " + sb + ")"
}

type stringer interface {
	String() string
}

func formatBinary(op Op, left, right stringer) string {
	var sb strings.Builder
	writeOperand(&sb, op, left, false)
	sb.WriteString(" ")
	sb.WriteString(op.String())
	sb.WriteString(" ")
	writeOperand(&sb, op, right, true)
	return sb.String()
}

func writeOperand(sb *strings.Builder, parent Op, child stringer, right bool) {
	if op, ok := binaryOp(child); ok && needsParens(parent, op, right) {
		sb.WriteString("(")
		sb.WriteString(child.String())
		sb.WriteString(")")
		return
	}
	sb.WriteString(child.String())
}

func binaryOp(s stringer) (Op, bool) {
	switch v := s.(type) {
	case Binary:
		return v.Op, true
	case BinaryTree:
		return v.Op, true
	}
	return 0, false
}

// needsParens decides whether a child operation must be bracketed under
// parent. Additive children need brackets under * and /, and on the right
// of -. Multiplicative children only need them on the right of /.
func needsParens(parent, child Op, right bool) bool {
	if child.additive() {
		if parent.additive() {
			return parent == OpSub && right
		}
		return true
	}
	return parent == OpDiv && right
}
