package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/xander/internal/cause"
	"github.com/udisondev/xander/internal/dice"
)

func TestApplyAndRemoveCondition(t *testing.T) {
	s := newBlock(t)

	res := s.ApplyCondition(Grappled, cause.Indefinite)
	require.True(t, res.Applied)
	assert.True(t, s.HasCondition(Grappled))
	ft, ok := s.Speed(Walking)
	assert.True(t, ok)
	assert.Equal(t, 0, ft)

	assert.True(t, s.RemoveCondition(Grappled))
	assert.False(t, s.HasCondition(Grappled))
	ft, _ = s.Speed(Walking)
	assert.Equal(t, 30, ft)
	assert.Equal(t, 0, s.Speeds[Walking].Len())

	assert.False(t, s.RemoveCondition(Grappled))
}

func TestConditionEndsWithCause(t *testing.T) {
	s := newBlock(t)
	src := cause.New("ray of sickness", cause.Magic)
	s.ApplyCondition(Poisoned, cause.Of(src))

	assert.Equal(t, dice.Dis{Die: dice.D20}, s.AttackDie.Get())
	assert.Equal(t, dice.Dis{Die: dice.D20}, s.CheckDie.Get())

	src.End()
	assert.False(t, s.HasCondition(Poisoned))
	assert.Equal(t, dice.D20.Expr(), s.AttackDie.Get())
	assert.Equal(t, dice.D20.Expr(), s.CheckDie.Get())
}

func TestReapplyReplacesEffects(t *testing.T) {
	s := newBlock(t)
	s.ApplyCondition(Restrained, cause.Indefinite)
	s.ApplyCondition(Restrained, cause.Indefinite)

	assert.Equal(t, dice.Dis{Die: dice.D20}, s.SaveDie[Dexterity].Get())
	// the first application's parts expired on that read
	assert.Equal(t, 1, s.SaveDie[Dexterity].Len())
	assert.Equal(t, dice.D20.Expr(), s.SaveDie[Strength].Get())
}

func TestConditionImmunity(t *testing.T) {
	s := newBlock(t)
	ring := cause.New("ring of free action", cause.Magic)
	s.ConditionImmunities[Paralyzed].Insert(ConditionImmune{Lifespan: cause.Of(ring)})

	res := s.ApplyCondition(Paralyzed, cause.Indefinite)
	assert.False(t, res.Applied)
	assert.Same(t, ring, res.Immunity.Cause())
	assert.False(t, s.HasCondition(Paralyzed))
	assert.False(t, s.Incapacitated())

	ring.End()
	res = s.ApplyCondition(Paralyzed, cause.Indefinite)
	assert.True(t, res.Applied)
	assert.True(t, s.Incapacitated())
}

func TestInvisibleGrantsAdvantage(t *testing.T) {
	s := newBlock(t)
	s.ApplyCondition(Invisible, cause.Indefinite)
	assert.Equal(t, dice.Adv{Die: dice.D20}, s.AttackDie.Get())

	// blinded and invisible cancel out
	s.ApplyCondition(Blinded, cause.Indefinite)
	assert.Equal(t, dice.Roll{Count: 1, Die: dice.D20, BothAdvDis: true}, s.AttackDie.Get())
}

func TestActiveConditions(t *testing.T) {
	s := newBlock(t)
	s.ApplyCondition(Prone, cause.Indefinite)
	s.ApplyCondition(Charmed, cause.Indefinite)
	assert.Equal(t, []Condition{Charmed, Prone}, s.Conditions.Active())
}

func TestParseCondition(t *testing.T) {
	c, err := ParseCondition("Unconscious")
	require.NoError(t, err)
	assert.Equal(t, Unconscious, c)

	_, err = ParseCondition("sleepy")
	assert.Error(t, err)
}
