package derived

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type owner struct {
	strength *Cell[*owner, int]
	modifier *Cell[*owner, int]
}

func newOwner(score int) *owner {
	o := &owner{}
	o.strength = Const(o, score)
	o.modifier = Derive(o, func(o *owner) int { return (o.strength.Get() - 10) / 2 })
	return o
}

func add(n int) PartFunc[*owner, int] {
	return func(_ *owner, v int) (int, bool) { return v + n, false }
}

func TestCellBaseOnly(t *testing.T) {
	o := newOwner(14)
	assert.Equal(t, 14, o.strength.Get())
	assert.Equal(t, 2, o.modifier.Get())
}

func TestCellRecomputesOnEveryRead(t *testing.T) {
	o := newOwner(14)
	require.Equal(t, 2, o.modifier.Get())

	o.strength.Insert(add(4))
	assert.Equal(t, 18, o.strength.Get())
	assert.Equal(t, 4, o.modifier.Get())
}

func TestCellInsertionOrder(t *testing.T) {
	o := newOwner(10)
	double := PartFunc[*owner, int](func(_ *owner, v int) (int, bool) { return v * 2, false })

	o.strength.Insert(add(1))
	o.strength.Insert(double)
	assert.Equal(t, 22, o.strength.Get())

	o.strength.Clear()
	o.strength.Insert(double)
	o.strength.Insert(add(1))
	assert.Equal(t, 21, o.strength.Get())
}

func TestCellSelfExpiry(t *testing.T) {
	o := newOwner(10)
	uses := 2
	limited := PartFunc[*owner, int](func(_ *owner, v int) (int, bool) {
		uses--
		return v + 5, uses == 0
	})
	o.strength.Insert(add(1))
	o.strength.Insert(limited)
	o.strength.Insert(add(1))

	assert.Equal(t, 17, o.strength.Get())
	assert.Equal(t, 3, o.strength.Len())
	assert.Equal(t, 17, o.strength.Get())
	assert.Equal(t, 2, o.strength.Len())
	assert.Equal(t, 12, o.strength.Get())
}

func TestCellSetBase(t *testing.T) {
	o := newOwner(10)
	o.strength.Insert(add(2))
	o.strength.SetConst(16)
	assert.Equal(t, 16, o.strength.Base())
	assert.Equal(t, 18, o.strength.Get())
}

func TestCellConcurrentReads(t *testing.T) {
	o := newOwner(14)
	o.strength.Insert(add(2))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.Equal(t, 3, o.modifier.Get())
			}
		}()
	}
	wg.Wait()
}
