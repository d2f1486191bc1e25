package combat

import (
	"fmt"
	"sync"
	"weak"

	"github.com/udisondev/xander/internal/geom"
	"github.com/udisondev/xander/internal/legality"
	"github.com/udisondev/xander/internal/stats"
)

// Movement is the movement spent during one turn, per mode.
//
// Thread-safe: counters are protected by sync.RWMutex.
type Movement struct {
	combatant weak.Pointer[Combatant]

	mu   sync.RWMutex
	used [stats.NumSpeedModes]int
}

// Used returns the feet spent with mode.
func (m *Movement) Used(mode stats.SpeedMode) int {
	if mode < 0 || mode >= stats.NumSpeedModes {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.used[mode]
}

// Total returns the feet spent across all modes.
func (m *Movement) Total() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, u := range m.used {
		total += u
	}
	return total
}

func (m *Movement) combatantOf() (*Combatant, error) {
	c := m.combatant.Value()
	if c == nil {
		return nil, ErrGone
	}
	return c, nil
}

// remaining returns the feet left for mode, or CANNOT_USE_MODE.
func (m *Movement) remaining(c *Combatant, mode stats.SpeedMode) (legality.Legality[int], error) {
	if mode == stats.Crawling {
		return legality.Legality[int]{}, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
	if mode < 0 || mode >= stats.NumSpeedModes {
		return legality.Legality[int]{}, fmt.Errorf("%w: %d", ErrUnsupportedMode, mode)
	}
	speed, ok := c.Stats.Speed(mode)
	if !ok {
		return legality.Illegal[int](legality.CannotUseMode), nil
	}
	return legality.Legal(speed - m.Used(mode)), nil
}

// AnyMovementLeft is legal when at least a foot of mode remains.
func (m *Movement) AnyMovementLeft(mode stats.SpeedMode) (legality.Legality[legality.Unit], error) {
	c, err := m.combatantOf()
	if err != nil {
		return legality.Legality[legality.Unit]{}, err
	}
	left, err := m.remaining(c, mode)
	if err != nil {
		return legality.Legality[legality.Unit]{}, err
	}
	if ft, ok := left.Value(); ok && ft <= 0 {
		return legality.Illegal[legality.Unit](legality.NotEnoughMovementLeft), nil
	}
	return legality.Recast[legality.Unit](left), nil
}

// CanMove checks a move without performing it and returns the
// destination and cost.
func (m *Movement) CanMove(mode stats.SpeedMode, displacement geom.Point) (legality.Legality[Step], error) {
	c, err := m.combatantOf()
	if err != nil {
		return legality.Legality[Step]{}, err
	}
	return m.check(c, mode, displacement)
}

// Step is a checked move.
type Step struct {
	To   geom.Point
	Cost int
}

func (m *Movement) check(c *Combatant, mode stats.SpeedMode, displacement geom.Point) (legality.Legality[Step], error) {
	cb, err := c.Combat()
	if err != nil {
		return legality.Legality[Step]{}, err
	}
	left, err := m.remaining(c, mode)
	if err != nil {
		return legality.Legality[Step]{}, err
	}
	ft, ok := left.Value()
	if !ok {
		return legality.Recast[Step](left), nil
	}
	cost, err := geom.GridDistance(displacement)
	if err != nil {
		return legality.Legality[Step]{}, fmt.Errorf("move %s: %w", displacement, err)
	}
	if cost > ft {
		return legality.Illegal[Step](legality.NotEnoughMovementLeft), nil
	}

	to := c.Position().Add(displacement)
	if pass := passable(cb.arena, c, to); !pass.IsLegal() {
		return legality.Recast[Step](pass), nil
	}
	return legality.Legal(Step{To: to, Cost: cost}), nil
}

// TryMove moves the combatant by displacement using mode.
//
// Crawling is rejected with ErrUnsupportedMode and a malformed
// displacement with the geom error. A mode without speed is
// CANNOT_USE_MODE, a move longer than what is left of that mode is
// NOT_ENOUGH_MOVEMENT_LEFT, and an arena refusal is passed through as is.
// On success the cost is charged to mode and the position committed.
func (m *Movement) TryMove(mode stats.SpeedMode, displacement geom.Point) (legality.Legality[legality.Unit], error) {
	c, err := m.combatantOf()
	if err != nil {
		return legality.Legality[legality.Unit]{}, err
	}

	res, err := m.check(c, mode, displacement)
	if err != nil {
		return legality.Legality[legality.Unit]{}, err
	}
	step, ok := res.Value()
	if !ok {
		return legality.Recast[legality.Unit](res), nil
	}

	m.mu.Lock()
	m.used[mode] += step.Cost
	m.mu.Unlock()
	c.setPosition(step.To)
	return legality.Ok(), nil
}

// PossibleDirections returns the one-square moves that are legal right now.
func (m *Movement) PossibleDirections(mode stats.SpeedMode) ([]geom.Point, error) {
	c, err := m.combatantOf()
	if err != nil {
		return nil, err
	}
	var out []geom.Point
	for _, d := range geom.Directions(SquareLength) {
		res, err := m.check(c, mode, d)
		if err != nil {
			return nil, err
		}
		if res.IsLegal() {
			out = append(out, d)
		}
	}
	return out, nil
}
