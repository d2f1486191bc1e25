// Package combat runs encounters: the initiative roster and turn order,
// per-turn movement and action budgets, attack resolution and the arena
// that answers occupancy questions.
//
// The package is synchronous. Every shared collection is guarded by a
// sync.RWMutex so that an inspecting goroutine may read while the driving
// loop mutates. Back-references (combatant to combat, turn to combatant,
// arena to combat) are weak; resolving one after its target was closed or
// collected yields ErrGone.
package combat

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/udisondev/xander/internal/dice"
	"github.com/udisondev/xander/internal/geom"
	"github.com/udisondev/xander/internal/stats"
)

var (
	// ErrGone is returned when a back-reference no longer resolves: its
	// combat was closed or its combatant left and was collected.
	ErrGone = errors.New("combat: referent is gone")
	// ErrUnsupportedMode is returned for movement modes that are not
	// implemented, as opposed to modes the creature has no speed for.
	ErrUnsupportedMode = errors.New("combat: movement mode not supported")
)

// TargetSelector picks the target of an attack among the occupants of the
// attacked square. Returning nil means nobody can be targeted.
type TargetSelector func(actor *Combatant, occupants []*Combatant) *Combatant

// FirstOther picks the first occupant that is not the actor.
func FirstOther(actor *Combatant, occupants []*Combatant) *Combatant {
	for _, c := range occupants {
		if c != actor {
			return c
		}
	}
	return nil
}

// ArenaConstructor builds the arena of a new combat. It receives a weak
// reference so the arena can look up combatants without owning the combat.
type ArenaConstructor func(weak.Pointer[Combat]) Arena

// Combat owns the initiative roster, the arena and the dice roller of one
// encounter.
type Combat struct {
	initiative *Initiative
	arena      Arena
	roller     *dice.Roller
	selector   TargetSelector
	closed     atomic.Bool

	// attackObserver is called after each resolved attack (nil by default).
	observerMu     sync.RWMutex
	attackObserver func(AttackResult)
}

// Option configures a Combat.
type Option func(*Combat)

// WithTargetSelector replaces FirstOther.
func WithTargetSelector(s TargetSelector) Option {
	return func(c *Combat) { c.selector = s }
}

// New creates an empty combat. Every roll made by the combat goes through
// r, so two combats built with equally seeded rollers replay identically.
func New(r *dice.Roller, arena ArenaConstructor, opts ...Option) *Combat {
	c := &Combat{
		initiative: newInitiative(),
		roller:     r,
		selector:   FirstOther,
	}
	for _, o := range opts {
		o(c)
	}
	c.arena = arena(weak.Make(c))
	return c
}

// Initiative returns the roster.
func (c *Combat) Initiative() *Initiative { return c.initiative }

// Arena returns the arena.
func (c *Combat) Arena() Arena { return c.arena }

// Roller returns the combat's dice roller.
func (c *Combat) Roller() *dice.Roller { return c.roller }

// Len returns the number of combatants.
func (c *Combat) Len() int { return c.initiative.Len() }

// Step starts the current combatant's turn if none is running. It does
// not necessarily change whose turn it is.
func (c *Combat) Step() *TurnCtx {
	return c.initiative.Step()
}

// Close ends the combat. Back-references into it resolve to ErrGone from
// now on. Idempotent.
func (c *Combat) Close() {
	if c.closed.Swap(true) {
		return
	}
	slog.Debug("combat closed", "combatants", c.Len(), "round", c.initiative.Round())
}

// Closed reports whether Close was called.
func (c *Combat) Closed() bool {
	return c.closed.Load()
}

// SetAttackObserver sets a callback invoked with every resolved attack.
func (c *Combat) SetAttackObserver(fn func(AttackResult)) {
	c.observerMu.Lock()
	defer c.observerMu.Unlock()
	c.attackObserver = fn
}

func (c *Combat) observeAttack(res AttackResult) {
	c.observerMu.RLock()
	fn := c.attackObserver
	c.observerMu.RUnlock()
	if fn != nil {
		fn(res)
	}
}

// Entrant describes a creature joining a combat.
type Entrant struct {
	Name     string
	Stats    *stats.StatBlock
	Position geom.Point
	Attacks  []Attack
	// Initiative fixes the initiative total; nil rolls the stat block's
	// initiative cell with the combat's roller.
	Initiative *int
}

// Join adds a combatant to the roster.
func (c *Combat) Join(e Entrant) (*Combatant, error) {
	if c.Closed() {
		return nil, ErrGone
	}
	if e.Stats == nil {
		return nil, fmt.Errorf("join %q: stat block is required", e.Name)
	}

	cb := newCombatant(c, e)
	if e.Initiative != nil {
		cb.initiative = *e.Initiative
	} else {
		cb.initiativeRoll = dice.Evaluate(e.Stats.Initiative.Get(), c.roller)
		cb.initiative = cb.initiativeRoll.Result()
	}
	c.initiative.Add(cb)

	slog.Debug("combatant joined",
		"name", cb.Name,
		"initiative", cb.initiative,
		"position", cb.Position().String())
	return cb, nil
}

// Find returns the first combatant with the given name.
func (c *Combat) Find(name string) (*Combatant, bool) {
	for _, cb := range c.initiative.Order() {
		if cb.Name == name {
			return cb, true
		}
	}
	return nil, false
}
