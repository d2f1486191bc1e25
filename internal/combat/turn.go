package combat

import (
	"sync"
	"weak"

	"github.com/udisondev/xander/internal/geom"
	"github.com/udisondev/xander/internal/legality"
	"github.com/udisondev/xander/internal/stats"
)

// TurnCtx is one combatant's turn: what it has moved and which actions it
// has used. A fresh TurnCtx is created every time a turn begins.
type TurnCtx struct {
	combatant weak.Pointer[Combatant]
	Movement  *Movement
	Actions   *Actions
}

func newTurnCtx(c *Combatant) *TurnCtx {
	w := weak.Make(c)
	return &TurnCtx{
		combatant: w,
		Movement:  &Movement{combatant: w},
		Actions:   &Actions{max: 1},
	}
}

// Combatant resolves whose turn this is.
func (t *TurnCtx) Combatant() (*Combatant, error) {
	c := t.combatant.Value()
	if c == nil {
		return nil, ErrGone
	}
	return c, nil
}

// resolve returns the combatant and its combat, and whether t is still the
// running turn.
func (t *TurnCtx) resolve() (*Combatant, *Combat, bool, error) {
	c, err := t.Combatant()
	if err != nil {
		return nil, nil, false, err
	}
	cb, err := c.Combat()
	if err != nil {
		return nil, nil, false, err
	}
	return c, cb, cb.initiative.isTurn(t), nil
}

// TryMove moves the combatant if it is still its turn.
func (t *TurnCtx) TryMove(mode stats.SpeedMode, displacement geom.Point) (legality.Legality[legality.Unit], error) {
	_, _, current, err := t.resolve()
	if err != nil {
		return legality.Legality[legality.Unit]{}, err
	}
	if !current {
		return legality.Illegal[legality.Unit](legality.NotYourTurn), nil
	}
	return t.Movement.TryMove(mode, displacement)
}

// Attack makes one of the combatant's attacks, spending an action.
//
// Checks, in order:
//   - the turn is still running (NOT_YOUR_TURN)
//   - the combatant can act (INCAPACITATED)
//   - an action is left (NO_ACTIONS_LEFT_IN_TURN)
//
// The action is spent only when the attack itself is legal.
func (t *TurnCtx) Attack(a Attack, delta geom.Point) (legality.Legality[AttackResult], error) {
	c, _, current, err := t.resolve()
	if err != nil {
		return legality.Legality[AttackResult]{}, err
	}
	if !current {
		return legality.Illegal[AttackResult](legality.NotYourTurn), nil
	}
	if c.Stats.Incapacitated() {
		return legality.Illegal[AttackResult](legality.Incapacitated), nil
	}
	if can := t.Actions.CanUse(); !can.IsLegal() {
		return legality.Recast[AttackResult](can), nil
	}

	res, err := MakeAttack(c, a, delta)
	if err != nil {
		return res, err
	}
	if res.IsLegal() {
		t.Actions.MarkUsed()
	}
	return res, nil
}

// EndTurn passes the turn on and returns the next one.
func (t *TurnCtx) EndTurn() (legality.Legality[*TurnCtx], error) {
	_, cb, current, err := t.resolve()
	if err != nil {
		return legality.Legality[*TurnCtx]{}, err
	}
	if !current {
		return legality.Illegal[*TurnCtx](legality.NotYourTurn), nil
	}
	return legality.Legal(cb.initiative.AdvanceTurn()), nil
}

// Actions counts the actions used this turn.
//
// Thread-safe: counters are protected by sync.RWMutex.
type Actions struct {
	mu   sync.RWMutex
	used int
	max  int
}

// CanUse is legal while at least one action is left.
func (a *Actions) CanUse() legality.Legality[legality.Unit] {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return legality.Check(a.used < a.max, legality.NoActionsLeftInTurn)
}

func (a *Actions) MarkUsed() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.used++
}

func (a *Actions) Used() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.used
}

// Left returns how many actions remain.
func (a *Actions) Left() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return max(a.max-a.used, 0)
}
