package combat

import (
	"bytes"
	"cmp"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// pairKey identifies an unordered pair of combatants; a always sorts
// before b byte-wise.
type pairKey struct {
	a, b uuid.UUID
}

func keyOf(x, y uuid.UUID) (pairKey, bool) {
	if bytes.Compare(x[:], y[:]) <= 0 {
		return pairKey{x, y}, false
	}
	return pairKey{y, x}, true
}

// Initiative is the turn order of a combat: highest total first, ties in
// the order the combatants joined.
//
// Every comparison made while sorting is cached per pair, so once two
// combatants have been ordered their relative order never changes, even
// across later insertions.
//
// Thread-safe: members, cache, turn pointer and round counter are
// protected by sync.RWMutex.
type Initiative struct {
	mu      sync.RWMutex
	members []*Combatant
	cache   map[pairKey]int
	current int
	round   int
	turn    *TurnCtx
	// started is set by the first Step; before that the roster is still
	// forming and the highest total acts first.
	started bool
}

func newInitiative() *Initiative {
	return &Initiative{cache: make(map[pairKey]int), round: 1}
}

// compare orders x before y when it returns a negative number. Callers
// hold the write lock.
func (i *Initiative) compare(x, y *Combatant) int {
	key, swapped := keyOf(x.id, y.id)
	if r, ok := i.cache[key]; ok {
		if swapped {
			return -r
		}
		return r
	}
	r := cmp.Compare(y.initiative, x.initiative)
	if swapped {
		i.cache[key] = -r
	} else {
		i.cache[key] = r
	}
	return r
}

// Add inserts a combatant and re-sorts. Once the combat has started,
// whoever is currently acting keeps acting; before that the turn stays with
// the top of the order.
func (i *Initiative) Add(c *Combatant) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var acting *Combatant
	if i.started && i.current < len(i.members) {
		acting = i.members[i.current]
	}
	i.members = append(i.members, c)
	slices.SortStableFunc(i.members, i.compare)
	if acting != nil {
		i.current = slices.Index(i.members, acting)
	}
}

// Remove takes a combatant out of the order. If it was acting its turn
// ends and the next combatant is up once Step is called.
func (i *Initiative) Remove(c *Combatant) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	idx := slices.Index(i.members, c)
	if idx < 0 {
		return false
	}
	i.members = slices.Delete(i.members, idx, idx+1)
	for k := range i.cache {
		if k.a == c.id || k.b == c.id {
			delete(i.cache, k)
		}
	}

	switch {
	case idx < i.current:
		i.current--
	case idx == i.current:
		i.turn = nil
		if i.current >= len(i.members) && len(i.members) > 0 {
			i.current = 0
			i.round++
		}
	}
	if len(i.members) == 0 {
		i.current = 0
	}
	return true
}

func (i *Initiative) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.members)
}

// Order returns a snapshot of the roster in turn order.
func (i *Initiative) Order() []*Combatant {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.members)
}

// Current returns whoever is acting, nil for an empty roster.
func (i *Initiative) Current() *Combatant {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.current >= len(i.members) {
		return nil
	}
	return i.members[i.current]
}

// Index returns the position of the acting combatant in the order.
func (i *Initiative) Index() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.current
}

// Round returns the current round, starting at 1.
func (i *Initiative) Round() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.round
}

// Turn returns the running turn, nil before the first Step.
func (i *Initiative) Turn() *TurnCtx {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.turn
}

// Step starts a turn for the acting combatant unless one is running, and
// returns the running turn. It returns nil for an empty roster.
func (i *Initiative) Step() *TurnCtx {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.turn == nil && i.current < len(i.members) {
		i.turn = newTurnCtx(i.members[i.current])
		i.started = true
	}
	return i.turn
}

// AdvanceTurn passes the turn to the next combatant, wrapping around to
// the first one and starting a new round after the last. It returns the
// new turn, nil for an empty roster.
func (i *Initiative) AdvanceTurn() *TurnCtx {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.members) == 0 {
		return nil
	}

	i.current++
	if i.current >= len(i.members) {
		i.current = 0
		i.round++
		slog.Debug("new round", "round", i.round)
	}
	i.started = true
	i.turn = newTurnCtx(i.members[i.current])
	return i.turn
}

// isTurn reports whether t is the running turn.
func (i *Initiative) isTurn(t *TurnCtx) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.turn == t
}
