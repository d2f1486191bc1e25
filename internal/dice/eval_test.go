package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateSeedZero(t *testing.T) {
	// D6 + D10 - 2*10 + D10*13
	e := Add(Sub(Add(D6.Expr(), D10.Expr()), Const(2*10)), Mul(D10.Expr(), Const(13)))
	require.Equal(t, "d6 + d10 - 20 + d10 * 13", e.String())

	tree := Evaluate(e, NewRoller(0))

	want := BinaryTree{
		Op: OpAdd,
		Left: BinaryTree{
			Op: OpSub,
			Left: BinaryTree{
				Op:    OpAdd,
				Left:  Rolls{Die: D6, Faces: []int{2}},
				Right: Rolls{Die: D10, Faces: []int{7}},
			},
			Right: Modifier(20),
		},
		Right: BinaryTree{
			Op:    OpMul,
			Left:  Rolls{Die: D10, Faces: []int{4}},
			Right: Modifier(13),
		},
	}
	assert.Equal(t, want, tree)
	assert.Equal(t, "2 + 7 - 20 + 4 * 13", tree.String())
	assert.Equal(t, 41, tree.Result())
}

func TestEvaluateIsReproducible(t *testing.T) {
	e := Add(Mul(D10.Expr(), Const(13)), Add(D6.Expr(), D10.Expr()))
	for _, seed := range []uint64{1, 42, 1 << 40} {
		a := Evaluate(e, NewRoller(seed))
		b := Evaluate(e, NewRoller(seed))
		assert.Equal(t, a, b)
	}
}

func TestRollerSequence(t *testing.T) {
	r := NewRoller(0)
	got := make([]int, 10)
	for i := range got {
		got[i] = r.Roll(D20)
	}
	assert.Equal(t, []int{5, 14, 7, 9, 8, 2, 15, 10, 15, 18}, got)
	assert.Equal(t, uint64(0), r.Seed())
}

func TestEvaluatePairs(t *testing.T) {
	adv := Evaluate(Adv{Die: D20}, NewRoller(7))
	assert.Equal(t, AdvRolls{Die: D20, A: 20, B: 1}, adv)
	assert.Equal(t, 20, adv.Result())
	assert.Equal(t, "Adv(20, ~1~)", adv.String())
	assert.Equal(t, CriticalSuccess, Criticality(adv))

	dis := Evaluate(Dis{Die: D20}, NewRoller(7))
	assert.Equal(t, DisRolls{Die: D20, A: 20, B: 1}, dis)
	assert.Equal(t, 1, dis.Result())
	assert.Equal(t, "Dis(~20~, 1)", dis.String())
	assert.Equal(t, NotCritical, Criticality(dis))
}

func TestResult(t *testing.T) {
	tests := []struct {
		name string
		tree Tree
		want int
	}{
		{"modifier", Modifier(-3), -3},
		{"rolls sum", Rolls{Die: D6, Faces: []int{3, 5}}, 8},
		{"advantage keeps max", AdvRolls{Die: D20, A: 4, B: 17}, 17},
		{"disadvantage keeps min", DisRolls{Die: D20, A: 4, B: 17}, 4},
		{"division truncates", BinaryTree{Op: OpDiv, Left: Modifier(7), Right: Modifier(2)}, 3},
		{"negative division truncates toward zero", BinaryTree{Op: OpDiv, Left: Modifier(-7), Right: Modifier(2)}, -3},
		{"division by zero", BinaryTree{Op: OpDiv, Left: Modifier(7), Right: Modifier(0)}, 0},
		{"multiply", BinaryTree{Op: OpMul, Left: Rolls{Die: D4, Faces: []int{3}}, Right: Modifier(2)}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tree.Result())
		})
	}
}

func TestCriticality(t *testing.T) {
	plus := func(l Tree) Tree { return BinaryTree{Op: OpAdd, Left: l, Right: Modifier(5)} }

	tests := []struct {
		name string
		tree Tree
		want Critical
	}{
		{"natural 20", Rolls{Die: D20, Faces: []int{20}}, CriticalSuccess},
		{"natural 1", Rolls{Die: D20, Faces: []int{1}}, CriticalFailure},
		{"plain roll", Rolls{Die: D20, Faces: []int{12}}, NotCritical},
		{"d4 showing 1 is not a d20", Rolls{Die: D4, Faces: []int{1}}, NotCritical},
		{"advantage with one 20", AdvRolls{Die: D20, A: 3, B: 20}, CriticalSuccess},
		{"advantage with one 1", AdvRolls{Die: D20, A: 1, B: 9}, NotCritical},
		{"advantage double 1", AdvRolls{Die: D20, A: 1, B: 1}, CriticalFailure},
		{"disadvantage with one 20", DisRolls{Die: D20, A: 20, B: 9}, NotCritical},
		{"disadvantage double 20", DisRolls{Die: D20, A: 20, B: 20}, CriticalSuccess},
		{"disadvantage with one 1", DisRolls{Die: D20, A: 1, B: 15}, NotCritical},
		{"disadvantage double 1", DisRolls{Die: D20, A: 1, B: 1}, CriticalFailure},
		{"through operator", plus(Rolls{Die: D20, Faces: []int{20}}), CriticalSuccess},
		{"left operand wins", BinaryTree{Op: OpAdd, Left: Rolls{Die: D20, Faces: []int{1}}, Right: Rolls{Die: D20, Faces: []int{20}}}, CriticalFailure},
		{"right operand searched", BinaryTree{Op: OpAdd, Left: Modifier(3), Right: Rolls{Die: D20, Faces: []int{20}}}, CriticalSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Criticality(tt.tree))
		})
	}
}

func TestDefaultRoller(t *testing.T) {
	t.Cleanup(resetDefault)

	resetDefault()
	assert.Panics(t, func() { Default() })

	assert.True(t, SetSeed(0))
	assert.False(t, SetSeed(1))
	assert.Equal(t, uint64(0), Default().Seed())

	tree := Evaluate(D20.Expr(), nil)
	assert.Equal(t, Rolls{Die: D20, Faces: []int{5}}, tree)
}

func TestStatic(t *testing.T) {
	v, ok := Static(Add(Const(10), Mul(Const(2), Const(3))))
	assert.True(t, ok)
	assert.Equal(t, 16, v)

	_, ok = Static(Add(Const(1), D4.Expr()))
	assert.False(t, ok)

	// no roller is needed for dice-free expressions
	assert.Equal(t, Modifier(3), Evaluate(Const(3), nil))
}
