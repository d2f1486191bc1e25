// Package cause tracks what keeps an effect alive.
//
// Effects (a bonus, a resistance, a condition, a pool of temporary hit
// points) are tied to a Cause. When the cause ends, every effect bound to
// it expires on its next read.
package cause

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Cause is anything an effect can depend on.
type Cause interface {
	Alive() bool
}

// Kind classifies a Source.
type Kind int

const (
	// Property is a permanent trait of a creature or item.
	Property Kind = iota
	// Magic is a spell or magical item.
	Magic
	// Environment is terrain, weather, falling and similar.
	Environment
)

func (k Kind) String() string {
	switch k {
	case Property:
		return "property"
	case Magic:
		return "magic"
	case Environment:
		return "environment"
	default:
		return "unknown"
	}
}

// Source is a named cause that lives until End is called.
//
// Thread-safe.
type Source struct {
	id    uuid.UUID
	name  string
	kind  Kind
	ended atomic.Bool
}

// New creates a live source.
func New(name string, kind Kind) *Source {
	return &Source{id: uuid.New(), name: name, kind: kind}
}

func (s *Source) ID() uuid.UUID  { return s.id }
func (s *Source) Name() string   { return s.name }
func (s *Source) Kind() Kind     { return s.kind }
func (s *Source) Magical() bool  { return s.kind == Magic }
func (s *Source) Alive() bool    { return !s.ended.Load() }
func (s *Source) String() string { return s.name }

// End expires the source. Idempotent.
func (s *Source) End() {
	s.ended.Store(true)
}

// Lifespan bounds how long an effect lasts: forever, or as long as a cause.
// The zero value is Indefinite.
type Lifespan struct {
	cause Cause
}

// Indefinite lasts until removed explicitly.
var Indefinite = Lifespan{}

// Of ties a lifespan to c. A nil cause is Indefinite.
func Of(c Cause) Lifespan {
	return Lifespan{cause: c}
}

// Alive reports whether the backing cause is still alive.
func (l Lifespan) Alive() bool {
	return l.cause == nil || l.cause.Alive()
}

// Cause returns the backing cause, nil for Indefinite.
func (l Lifespan) Cause() Cause {
	return l.cause
}

// IsIndefinite reports whether the lifespan has no backing cause.
func (l Lifespan) IsIndefinite() bool {
	return l.cause == nil
}

// Both lives while a and b are both alive.
func Both(a, b Lifespan) Lifespan {
	switch {
	case a.IsIndefinite():
		return b
	case b.IsIndefinite():
		return a
	}
	return Of(both{a, b})
}

type both struct {
	a, b Lifespan
}

func (x both) Alive() bool {
	return x.a.Alive() && x.b.Alive()
}
