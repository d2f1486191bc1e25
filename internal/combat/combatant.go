package combat

import (
	"sync"
	"weak"

	"github.com/google/uuid"

	"github.com/udisondev/xander/internal/dice"
	"github.com/udisondev/xander/internal/geom"
	"github.com/udisondev/xander/internal/stats"
)

// Combatant is a creature taking part in a combat.
//
// Thread-safe: position is protected by sync.RWMutex; the rest is fixed
// at Join.
type Combatant struct {
	id      uuid.UUID
	Name    string
	Stats   *stats.StatBlock
	Attacks []Attack

	initiative     int
	initiativeRoll dice.Tree

	combat weak.Pointer[Combat]

	mu       sync.RWMutex
	position geom.Point
}

func newCombatant(c *Combat, e Entrant) *Combatant {
	return &Combatant{
		id:       uuid.New(),
		Name:     e.Name,
		Stats:    e.Stats,
		Attacks:  e.Attacks,
		combat:   weak.Make(c),
		position: e.Position,
	}
}

func (c *Combatant) ID() uuid.UUID { return c.id }

// Initiative returns the initiative total the combatant is ordered by.
func (c *Combatant) Initiative() int { return c.initiative }

// InitiativeRoll returns the rolled initiative, nil when it was fixed.
func (c *Combatant) InitiativeRoll() dice.Tree { return c.initiativeRoll }

// Combat resolves the combat the combatant belongs to.
func (c *Combatant) Combat() (*Combat, error) {
	cb := c.combat.Value()
	if cb == nil || cb.Closed() {
		return nil, ErrGone
	}
	return cb, nil
}

func (c *Combatant) Position() geom.Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position
}

func (c *Combatant) setPosition(p geom.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
}

// Attack looks up one of the combatant's attacks by name.
func (c *Combatant) Attack(name string) (Attack, bool) {
	for _, a := range c.Attacks {
		if a.Name == name {
			return a, true
		}
	}
	return Attack{}, false
}

func (c *Combatant) String() string {
	return c.Name
}
