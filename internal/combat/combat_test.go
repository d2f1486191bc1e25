package combat

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/udisondev/xander/internal/dice"
	"github.com/udisondev/xander/internal/geom"
	"github.com/udisondev/xander/internal/stats"
	"github.com/udisondev/xander/internal/testutil"
)

var dagger = Attack{
	Name:   "Dagger",
	ToHit:  dice.Const(4),
	Range:  Reach(5),
	Damage: []stats.DamageRoll{{Amount: dice.Add(dice.D4.Expr(), dice.Const(2)), Kind: stats.Piercing}},
}

// newBlock is a medium fighter with DEX 14 (AC 12), 30 ft walking speed
// and 20 HP.
func newBlock(t testutil.T, name string) *stats.StatBlock {
	t.Helper()
	return testutil.Build(t, testutil.FighterParams(name))
}

func newCombat(seed uint64) *Combat {
	return New(dice.NewRoller(seed), NewSimpleArena(100, 100))
}

func join(t testutil.T, c *Combat, name string, init int, pos geom.Point) *Combatant {
	t.Helper()
	cb, err := c.Join(Entrant{
		Name:       name,
		Stats:      newBlock(t, name),
		Position:   pos,
		Attacks:    []Attack{dagger},
		Initiative: &init,
	})
	require.NoError(t, err)
	return cb
}

func names(cs []*Combatant) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func TestInitiativeOrder(t *testing.T) {
	c := newCombat(0)
	join(t, c, "a", 10, geom.Pt(0, 0))
	join(t, c, "b", 15, geom.Pt(5, 0))
	join(t, c, "c", 10, geom.Pt(10, 0))
	join(t, c, "d", 15, geom.Pt(15, 0))

	assert.Equal(t, []string{"b", "d", "a", "c"}, names(c.Initiative().Order()))

	// ties keep their order on later insertions
	join(t, c, "e", 10, geom.Pt(20, 0))
	join(t, c, "f", 20, geom.Pt(25, 0))
	assert.Equal(t, []string{"f", "b", "d", "a", "c", "e"}, names(c.Initiative().Order()))
}

func TestRolledInitiative(t *testing.T) {
	c := newCombat(0)
	cb, err := c.Join(Entrant{Name: "rolled", Stats: newBlock(t, "rolled")})
	require.NoError(t, err)

	// d20 rolls 5, DEX +2
	require.NotNil(t, cb.InitiativeRoll())
	assert.Equal(t, "5 + 2", cb.InitiativeRoll().String())
	assert.Equal(t, 7, cb.Initiative())
}

func TestJoinValidates(t *testing.T) {
	c := newCombat(0)
	_, err := c.Join(Entrant{Name: "ghost"})
	assert.Error(t, err)
}

func TestAddKeepsActingCombatant(t *testing.T) {
	c := newCombat(0)
	join(t, c, "a", 10, geom.Pt(0, 0))
	join(t, c, "b", 5, geom.Pt(5, 0))
	c.Step()
	c.Initiative().AdvanceTurn()
	require.Equal(t, "b", c.Initiative().Current().Name)

	join(t, c, "fast", 20, geom.Pt(10, 0))
	assert.Equal(t, "b", c.Initiative().Current().Name)
	assert.Equal(t, 2, c.Initiative().Index())
}

func TestStepCreatesTurnOnce(t *testing.T) {
	c := newCombat(0)
	assert.Nil(t, c.Step())

	join(t, c, "a", 10, geom.Pt(0, 0))
	first := c.Step()
	require.NotNil(t, first)
	assert.Same(t, first, c.Step())
	assert.Same(t, first, c.Initiative().Turn())
}

func TestFirstTurnGoesToHighestRoll(t *testing.T) {
	c := newCombat(0)
	join(t, c, "slow", 5, geom.Pt(0, 0))
	join(t, c, "mid", 12, geom.Pt(5, 0))
	join(t, c, "fast", 20, geom.Pt(10, 0))

	require.Equal(t, []string{"fast", "mid", "slow"}, names(c.Initiative().Order()))
	assert.Equal(t, 0, c.Initiative().Index())

	turn := c.Step()
	require.NotNil(t, turn)
	cb, err := turn.Combatant()
	require.NoError(t, err)
	assert.Equal(t, "fast", cb.Name)

	c.Initiative().AdvanceTurn()
	assert.Equal(t, "mid", c.Initiative().Current().Name)
}

func TestAdvanceTurnWraps(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "combatants")
		c := newCombat(0)
		for i := range n {
			join(rt, c, string(rune('a'+i)), rapid.IntRange(1, 25).Draw(rt, "init"), geom.Pt(float64(i)*5, 0))
		}
		c.Step()
		for range n {
			c.Initiative().AdvanceTurn()
		}
		if got := c.Initiative().Index(); got != 0 {
			rt.Fatalf("index after %d advances = %d", n, got)
		}
		if got := c.Initiative().Round(); got != 2 {
			rt.Fatalf("round after %d advances = %d", n, got)
		}
	})
}

func TestRemove(t *testing.T) {
	c := newCombat(0)
	a := join(t, c, "a", 20, geom.Pt(0, 0))
	b := join(t, c, "b", 15, geom.Pt(5, 0))
	join(t, c, "c", 10, geom.Pt(10, 0))
	c.Step()
	c.Initiative().AdvanceTurn()
	require.Same(t, b, c.Initiative().Current())

	assert.True(t, c.Initiative().Remove(a))
	assert.Same(t, b, c.Initiative().Current())

	assert.True(t, c.Initiative().Remove(b))
	assert.Nil(t, c.Initiative().Turn())
	assert.Equal(t, "c", c.Initiative().Current().Name)
	assert.False(t, c.Initiative().Remove(b))
}

func TestClose(t *testing.T) {
	c := newCombat(0)
	a := join(t, c, "a", 10, geom.Pt(0, 0))
	turn := c.Step()

	c.Close()
	c.Close()

	_, err := a.Combat()
	assert.ErrorIs(t, err, ErrGone)
	_, err = turn.TryMove(stats.Walking, geom.Pt(5, 0))
	assert.ErrorIs(t, err, ErrGone)
	_, err = c.Join(Entrant{Name: "late", Stats: newBlock(t, "late")})
	assert.ErrorIs(t, err, ErrGone)
	assert.Empty(t, c.Arena().At(geom.Pt(0, 0)).Combatants)
}

// departedTurn returns the turn of a combatant that has since left the
// combat, keeping no strong reference to it.
//
//go:noinline
func departedTurn(t *testing.T, c *Combat) *TurnCtx {
	cb := join(t, c, "leaver", 10, geom.Pt(0, 0))
	turn := c.Step()
	c.Initiative().Remove(cb)
	return turn
}

func TestTurnOfDepartedCombatant(t *testing.T) {
	c := newCombat(0)
	turn := departedTurn(t, c)
	runtime.GC()
	runtime.GC()

	_, err := turn.Combatant()
	assert.ErrorIs(t, err, ErrGone)
	_, err = turn.Movement.AnyMovementLeft(stats.Walking)
	assert.ErrorIs(t, err, ErrGone)
}
