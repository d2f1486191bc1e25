package combat

import (
	"sync"
	"weak"

	"github.com/udisondev/xander/internal/geom"
	"github.com/udisondev/xander/internal/legality"
	"github.com/udisondev/xander/internal/stats"
)

// SquareLength is the side of a grid square in feet.
const SquareLength = 5.0

// Square is what occupies one grid square.
type Square struct {
	Combatants []*Combatant
	Effects    []*geom.AreaEffect
}

// Arena answers spatial questions for a combat.
//
//go:generate mockgen -destination=./mocks/arena_mock.go -package=mocks . Arena
type Arena interface {
	// At returns the combatants standing in the square containing p and
	// the area effects covering p.
	At(p geom.Point) Square
	// IsPassable reports whether a creature of the given size may enter p.
	IsPassable(p geom.Point, size stats.Size) legality.Legality[legality.Unit]
}

// SimpleArena is a walled rectangle from (0, 0) to (width, height) with no
// obstacles or difficult terrain.
//
// Thread-safe: effects are protected by sync.RWMutex.
type SimpleArena struct {
	combat        weak.Pointer[Combat]
	width, height float64

	mu      sync.RWMutex
	effects []*geom.AreaEffect
}

// NewSimpleArena returns a constructor for New.
func NewSimpleArena(width, height float64) ArenaConstructor {
	return func(c weak.Pointer[Combat]) Arena {
		return &SimpleArena{combat: c, width: width, height: height}
	}
}

// Size returns the arena's dimensions in feet.
func (a *SimpleArena) Size() (width, height float64) {
	return a.width, a.height
}

// AddEffect places an area effect. It disappears once its lifespan ends.
func (a *SimpleArena) AddEffect(e *geom.AreaEffect) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.effects = append(a.effects, e)
}

// Effects returns the live area effects.
func (a *SimpleArena) Effects() []*geom.AreaEffect {
	a.mu.Lock()
	defer a.mu.Unlock()
	live := a.effects[:0]
	for _, e := range a.effects {
		if e.Lifespan.Alive() {
			live = append(live, e)
		}
	}
	clear(a.effects[len(live):])
	a.effects = live
	out := make([]*geom.AreaEffect, len(live))
	copy(out, live)
	return out
}

// At snaps p and every combatant's position to the grid and compares them.
// Once the combat is gone the arena is empty.
func (a *SimpleArena) At(p geom.Point) Square {
	var sq Square
	for _, e := range a.Effects() {
		if e.Contains(p) {
			sq.Effects = append(sq.Effects, e)
		}
	}

	c := a.combat.Value()
	if c == nil || c.Closed() {
		return sq
	}
	target := geom.Snap(p, SquareLength)
	for _, cb := range c.initiative.Order() {
		if geom.Snap(cb.Position(), SquareLength) == target {
			sq.Combatants = append(sq.Combatants, cb)
		}
	}
	return sq
}

// IsPassable rejects points outside the arena (OUT_OF_BOUNDS) and squares
// someone already stands in (SPACE_OCCUPIED). Size is not considered yet.
func (a *SimpleArena) IsPassable(p geom.Point, _ stats.Size) legality.Legality[legality.Unit] {
	g := geom.Snap(p, SquareLength)
	if g.X < 0 || g.X >= a.width || g.Y < 0 || g.Y >= a.height {
		return legality.Illegal[legality.Unit](legality.OutOfBounds)
	}
	return legality.Check(len(a.At(p).Combatants) == 0, legality.SpaceOccupied)
}

// passable asks the arena whether mover may enter p. A square is not
// occupied by the creature standing in it, so SPACE_OCCUPIED is overruled
// when mover is the only occupant.
func passable(a Arena, mover *Combatant, p geom.Point) legality.Legality[legality.Unit] {
	res := a.IsPassable(p, mover.Stats.Size)
	if res.IsLegal() || res.Reason() != legality.SpaceOccupied {
		return res
	}
	for _, occ := range a.At(p).Combatants {
		if occ != mover {
			return res
		}
	}
	return legality.Ok()
}
