package stats

import (
	"github.com/udisondev/xander/internal/cause"
	"github.com/udisondev/xander/internal/dice"
)

// Proficiency adds the creature's proficiency bonus.
type Proficiency struct{}

func (Proficiency) Apply(s *StatBlock, v dice.Expr) (dice.Expr, bool) {
	return dice.Add(v, s.ProficiencyBonus.Get()), false
}

// Override replaces the accumulated value for as long as Lifespan lives.
type Override[V any] struct {
	Value    V
	Lifespan cause.Lifespan
}

func (o Override[V]) Apply(_ *StatBlock, v V) (V, bool) {
	if !o.Lifespan.Alive() {
		return v, true
	}
	return o.Value, false
}

// Advantage gives advantage to every die of the value.
type Advantage struct {
	Lifespan cause.Lifespan
}

func (a Advantage) Apply(_ *StatBlock, v dice.Expr) (dice.Expr, bool) {
	if !a.Lifespan.Alive() {
		return v, true
	}
	return dice.Advantage(v), false
}

// Disadvantage gives disadvantage to every die of the value.
type Disadvantage struct {
	Lifespan cause.Lifespan
}

func (d Disadvantage) Apply(_ *StatBlock, v dice.Expr) (dice.Expr, bool) {
	if !d.Lifespan.Alive() {
		return v, true
	}
	return dice.Disadvantage(v), false
}

// Bonus adds Amount on each read. With Uses > 0 every read spends one use
// and the part drops once they run out; zero means unlimited.
//
// A Bonus is stateful: insert a given pointer into one cell only.
type Bonus struct {
	Amount   dice.Expr
	Uses     int
	Lifespan cause.Lifespan
}

func (b *Bonus) Apply(_ *StatBlock, v dice.Expr) (dice.Expr, bool) {
	if !b.Lifespan.Alive() {
		return v, true
	}
	v = dice.Add(v, b.Amount)
	if b.Uses > 0 {
		b.Uses--
		return v, b.Uses == 0
	}
	return v, false
}

// Resistance halves damage of the cell's kind.
type Resistance struct {
	Lifespan cause.Lifespan
}

func (r Resistance) Apply(_ *StatBlock, h Handling) (Handling, bool) {
	if !r.Lifespan.Alive() {
		return h, true
	}
	h.Resistant = true
	return h, false
}

// Vulnerability doubles damage of the cell's kind.
type Vulnerability struct {
	Lifespan cause.Lifespan
}

func (r Vulnerability) Apply(_ *StatBlock, h Handling) (Handling, bool) {
	if !r.Lifespan.Alive() {
		return h, true
	}
	h.Vulnerable = true
	return h, false
}

// Immunity nullifies damage of the cell's kind.
type Immunity struct {
	Lifespan cause.Lifespan
}

func (r Immunity) Apply(_ *StatBlock, h Handling) (Handling, bool) {
	if !r.Lifespan.Alive() {
		return h, true
	}
	h.Immune = true
	return h, false
}

// ConditionImmune makes the creature immune to the cell's condition.
type ConditionImmune struct {
	Lifespan cause.Lifespan
}

func (c ConditionImmune) Apply(_ *StatBlock, v ConditionImmunity) (ConditionImmunity, bool) {
	if !c.Lifespan.Alive() {
		return v, true
	}
	if v.Immune {
		return v, false
	}
	return ConditionImmunity{Immune: true, Lifespan: c.Lifespan}, false
}

// SpeedOverride sets a known speed to Feet. Unknown speeds stay unknown.
type SpeedOverride struct {
	Feet     int
	Lifespan cause.Lifespan
}

func (o SpeedOverride) Apply(_ *StatBlock, v Speed) (Speed, bool) {
	if !o.Lifespan.Alive() {
		return v, true
	}
	if !v.Valid {
		return v, false
	}
	return Feet(o.Feet), false
}
