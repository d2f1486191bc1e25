package stats

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/udisondev/xander/internal/cause"
)

// Condition is a status that alters a creature's capabilities.
type Condition int

const (
	Blinded Condition = iota
	Charmed
	Deafened
	Exhaustion
	Frightened
	Grappled
	Incapacitated
	Invisible
	Paralyzed
	Petrified
	Poisoned
	Prone
	Restrained
	Stunned
	Unconscious
	NumConditions
)

var conditionNames = [NumConditions]string{
	"blinded", "charmed", "deafened", "exhaustion", "frightened", "grappled",
	"incapacitated", "invisible", "paralyzed", "petrified", "poisoned",
	"prone", "restrained", "stunned", "unconscious",
}

func (c Condition) String() string {
	if c < 0 || c >= NumConditions {
		return "unknown"
	}
	return conditionNames[c]
}

func ParseCondition(s string) (Condition, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range conditionNames {
		if n == s {
			return Condition(i), nil
		}
	}
	return 0, fmt.Errorf("unknown condition %q", s)
}

// ConditionImmunity is the value of a condition-immunity cell. Lifespan is
// that of the effect granting the immunity.
type ConditionImmunity struct {
	Immune   bool
	Lifespan cause.Lifespan
}

// ConditionResult reports the outcome of ApplyCondition.
type ConditionResult struct {
	Applied bool
	// Immunity is the lifespan of the effect that blocked the condition.
	Immunity cause.Lifespan
}

func (r ConditionResult) String() string {
	if r.Applied {
		return "applied"
	}
	return "immune"
}

// application is one occupant of a condition slot. It is the cause every
// effect of the condition is tied to, so ending it ends them all.
type application struct {
	kind     Condition
	lifespan cause.Lifespan
	removed  atomic.Bool
}

func (a *application) Alive() bool {
	return !a.removed.Load() && a.lifespan.Alive()
}

// Conditions holds one slot per condition.
//
// Thread-safe: slots are protected by sync.RWMutex. Effect functions run
// after the lock is released.
type Conditions struct {
	owner *StatBlock

	mu    sync.RWMutex
	slots [NumConditions]*application
}

// conditionEffects run once per application against the creature.
var conditionEffects = [NumConditions]func(s *StatBlock, l cause.Lifespan){
	Blinded:    disadvantageOnAttacks,
	Exhaustion: disadvantageOnChecks,
	Frightened: func(s *StatBlock, l cause.Lifespan) {
		disadvantageOnAttacks(s, l)
		disadvantageOnChecks(s, l)
	},
	Grappled: immobile,
	Invisible: func(s *StatBlock, l cause.Lifespan) {
		s.AttackDie.Insert(Advantage{Lifespan: l})
	},
	Paralyzed: immobile,
	Petrified: immobile,
	Poisoned: func(s *StatBlock, l cause.Lifespan) {
		disadvantageOnAttacks(s, l)
		disadvantageOnChecks(s, l)
	},
	Prone: disadvantageOnAttacks,
	Restrained: func(s *StatBlock, l cause.Lifespan) {
		immobile(s, l)
		disadvantageOnAttacks(s, l)
		s.SaveDie[Dexterity].Insert(Disadvantage{Lifespan: l})
	},
	Stunned:     immobile,
	Unconscious: immobile,
}

func immobile(s *StatBlock, l cause.Lifespan) {
	for _, c := range s.Speeds {
		c.Insert(SpeedOverride{Feet: 0, Lifespan: l})
	}
}

func disadvantageOnAttacks(s *StatBlock, l cause.Lifespan) {
	s.AttackDie.Insert(Disadvantage{Lifespan: l})
}

func disadvantageOnChecks(s *StatBlock, l cause.Lifespan) {
	s.CheckDie.Insert(Disadvantage{Lifespan: l})
}

// Apply applies a condition unless the creature is immune to it. A new
// application replaces the previous one, ending its effects.
func (c *Conditions) Apply(kind Condition, l cause.Lifespan) ConditionResult {
	if imm := c.owner.ConditionImmunities[kind].Get(); imm.Immune {
		slog.Debug("condition blocked by immunity", "creature", c.owner.Name, "condition", kind)
		return ConditionResult{Immunity: imm.Lifespan}
	}

	app := &application{kind: kind, lifespan: l}
	c.mu.Lock()
	if old := c.slots[kind]; old != nil {
		old.removed.Store(true)
	}
	c.slots[kind] = app
	c.mu.Unlock()

	if fn := conditionEffects[kind]; fn != nil {
		fn(c.owner, cause.Of(app))
	}
	return ConditionResult{Applied: true}
}

// Remove clears a condition and ends its effects. It reports whether a
// live application was removed.
func (c *Conditions) Remove(kind Condition) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.slots[kind]
	c.slots[kind] = nil
	if old == nil {
		return false
	}
	alive := old.Alive()
	old.removed.Store(true)
	return alive
}

// Has reports whether a live application of kind is present.
func (c *Conditions) Has(kind Condition) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	app := c.slots[kind]
	return app != nil && app.Alive()
}

// Active lists the live conditions in declaration order.
func (c *Conditions) Active() []Condition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Condition
	for k, app := range c.slots {
		if app != nil && app.Alive() {
			out = append(out, Condition(k))
		}
	}
	return out
}

// ApplyCondition is shorthand for s.Conditions.Apply.
func (s *StatBlock) ApplyCondition(kind Condition, l cause.Lifespan) ConditionResult {
	return s.Conditions.Apply(kind, l)
}

// RemoveCondition is shorthand for s.Conditions.Remove.
func (s *StatBlock) RemoveCondition(kind Condition) bool {
	return s.Conditions.Remove(kind)
}

// HasCondition is shorthand for s.Conditions.Has.
func (s *StatBlock) HasCondition(kind Condition) bool {
	return s.Conditions.Has(kind)
}

// Incapacitated reports whether the creature can take no actions.
func (s *StatBlock) Incapacitated() bool {
	for _, k := range []Condition{Incapacitated, Paralyzed, Petrified, Stunned, Unconscious} {
		if s.Conditions.Has(k) {
			return true
		}
	}
	return false
}
