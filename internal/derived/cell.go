// Package derived implements values that are recomputed on every read from
// a base rule and an ordered stack of effect parts.
package derived

import (
	"log/slog"
	"sync"
)

// Part is one effect in a cell's stack.
//
// Apply receives the owner and the value accumulated so far and returns
// the new value. Returning expired == true removes the part once the
// current read has finished folding.
type Part[O, V any] interface {
	Apply(owner O, v V) (out V, expired bool)
}

// PartFunc adapts a function to a Part.
type PartFunc[O, V any] func(owner O, v V) (V, bool)

func (f PartFunc[O, V]) Apply(owner O, v V) (V, bool) {
	return f(owner, v)
}

// Cell is a value owned by O.
//
// The base is either a constant or a pure function of the owner's other
// cells. A base function must never read the cell it belongs to.
// Parts are applied in insertion order; later parts see the output of
// earlier ones. Nothing is cached.
//
// Thread-safe: the part stack is protected by sync.RWMutex. Get takes the
// write lock because reads prune expired parts.
type Cell[O, V any] struct {
	mu    sync.RWMutex
	owner O
	base  func(O) V
	parts []Part[O, V]
}

// Const creates a cell whose base is v.
func Const[O, V any](owner O, v V) *Cell[O, V] {
	return &Cell[O, V]{owner: owner, base: func(O) V { return v }}
}

// Derive creates a cell whose base is computed from the owner.
func Derive[O, V any](owner O, base func(O) V) *Cell[O, V] {
	return &Cell[O, V]{owner: owner, base: base}
}

// Get computes the base value, folds every part over it and drops the
// parts that asked to expire.
func (c *Cell[O, V]) Get() V {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := c.base(c.owner)
	var expired []int
	for i, p := range c.parts {
		var done bool
		v, done = p.Apply(c.owner, v)
		if done {
			expired = append(expired, i)
		}
	}
	for i := len(expired) - 1; i >= 0; i-- {
		idx := expired[i]
		c.parts = append(c.parts[:idx], c.parts[idx+1:]...)
	}
	if len(expired) > 0 {
		slog.Debug("effect parts expired", "count", len(expired), "remaining", len(c.parts))
	}
	return v
}

// Base returns the base value without applying any part.
func (c *Cell[O, V]) Base() V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.base(c.owner)
}

// Insert appends p to the end of the stack.
func (c *Cell[O, V]) Insert(p Part[O, V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parts = append(c.parts, p)
}

// SetConst replaces the base with a constant.
func (c *Cell[O, V]) SetConst(v V) {
	c.SetBase(func(O) V { return v })
}

// SetBase replaces the base rule.
func (c *Cell[O, V]) SetBase(base func(O) V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = base
}

// Len returns the number of parts currently stacked, expired or not.
func (c *Cell[O, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.parts)
}

// Clear removes every part.
func (c *Cell[O, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parts = nil
}
