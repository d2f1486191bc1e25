package cause

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceLifecycle(t *testing.T) {
	s := New("Bless", Magic)
	assert.True(t, s.Alive())
	assert.True(t, s.Magical())
	assert.Equal(t, "Bless", s.String())

	s.End()
	s.End()
	assert.False(t, s.Alive())
}

func TestSourceIDsAreUnique(t *testing.T) {
	a := New("a", Property)
	b := New("a", Property)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestLifespan(t *testing.T) {
	assert.True(t, Indefinite.Alive())
	assert.True(t, Indefinite.IsIndefinite())
	assert.True(t, Of(nil).IsIndefinite())

	s := New("Rage", Property)
	l := Of(s)
	assert.True(t, l.Alive())
	assert.Same(t, s, l.Cause())

	s.End()
	assert.False(t, l.Alive())
}

func TestBoth(t *testing.T) {
	a := New("a", Property)
	b := New("b", Magic)

	assert.Equal(t, Of(a), Both(Of(a), Indefinite))
	assert.Equal(t, Of(b), Both(Indefinite, Of(b)))

	l := Both(Of(a), Of(b))
	assert.True(t, l.Alive())
	b.End()
	assert.False(t, l.Alive())
}
