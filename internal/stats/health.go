package stats

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/udisondev/xander/internal/cause"
	"github.com/udisondev/xander/internal/derived"
	"github.com/udisondev/xander/internal/dice"
)

// ErrTooManyDice is returned when spending more hit dice than remain.
var ErrTooManyDice = errors.New("not enough hit dice")

// DamageResult is the state transition caused by taking damage.
type DamageResult int

const (
	DamageNothing DamageResult = iota
	DamageUnconscious
	DamageDeath
)

func (r DamageResult) String() string {
	switch r {
	case DamageUnconscious:
		return "unconscious"
	case DamageDeath:
		return "death"
	default:
		return "nothing"
	}
}

// DeathSaves counts death saving throws since the creature dropped to 0.
type DeathSaves struct {
	Successes int
	Failures  int
}

// DeathSaveOutcome is the result of one death saving throw.
type DeathSaveOutcome int

const (
	// NotDying means no saves are running: the creature is up, stable or dead.
	NotDying DeathSaveOutcome = iota
	DeathSaveSuccess
	DeathSaveFailure
	// Revived is a natural 20: the creature regains 1 HP.
	Revived
	// Stabilized is the third success.
	Stabilized
	// Died is the third failure.
	Died
)

func (o DeathSaveOutcome) String() string {
	switch o {
	case DeathSaveSuccess:
		return "success"
	case DeathSaveFailure:
		return "failure"
	case Revived:
		return "revived"
	case Stabilized:
		return "stabilized"
	case Died:
		return "died"
	default:
		return "not dying"
	}
}

// Health is a creature's hit point pool.
//
// Thread-safe: all fields are protected by sync.RWMutex. The max-HP cell
// is read before the lock is taken and conditions are applied after it is
// released, so no other lock is ever acquired while holding it.
type Health struct {
	owner *StatBlock

	Max     *IntCell
	HitDice *HitDice

	mu       sync.RWMutex
	current  int
	temp     int
	tempLife cause.Lifespan
	saves    *DeathSaves
	stable   bool
	dead     bool
}

func newHealth(s *StatBlock, maxHP int, hitDice map[dice.Die]int) *Health {
	return &Health{
		owner:   s,
		Max:     derived.Const(s, maxHP),
		HitDice: newHitDice(s, hitDice),
		current: maxHP,
	}
}

// HP returns current hit points.
func (h *Health) HP() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// MaxHP evaluates the max-HP cell.
func (h *Health) MaxHP() int {
	return h.Max.Get()
}

// TempHP returns the live temporary hit points.
func (h *Health) TempHP() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.tempLife.Alive() {
		return 0
	}
	return h.temp
}

func (h *Health) Dead() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dead
}

func (h *Health) Stable() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stable
}

// DeathSaves returns the running tally, false when the creature is not
// making death saves.
func (h *Health) DeathSaves() (DeathSaves, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.saves == nil {
		return DeathSaves{}, false
	}
	return *h.saves, true
}

// GrantTempHP gives temporary hit points tied to l. Temporary hit points
// do not stack: the larger live pool is kept. Reports whether the grant
// replaced the current pool.
func (h *Health) GrantTempHP(amount int, l cause.Lifespan) bool {
	if amount <= 0 || !l.Alive() {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.tempLife.Alive() && h.temp >= amount {
		return false
	}
	h.temp = amount
	h.tempLife = l
	return true
}

// Lose removes amount hit points, already resolved against resistances.
func (h *Health) Lose(amount int) DamageResult {
	if amount <= 0 {
		return DamageNothing
	}
	maxHP := h.Max.Get()

	h.mu.Lock()
	if h.dead {
		h.mu.Unlock()
		return DamageDeath
	}

	if h.tempLife.Alive() && h.temp > 0 {
		if h.temp > amount {
			h.temp -= amount
			h.mu.Unlock()
			return DamageNothing
		}
		amount -= h.temp
		h.temp = 0
		if amount == 0 {
			h.mu.Unlock()
			return DamageNothing
		}
	}

	if h.current == 0 {
		res := h.hitWhileDownLocked(amount, maxHP)
		h.mu.Unlock()
		return res
	}

	if amount < h.current {
		h.current -= amount
		h.mu.Unlock()
		return DamageNothing
	}

	excess := amount - h.current
	h.current = 0
	if excess >= maxHP {
		h.dieLocked()
		h.mu.Unlock()
		slog.Debug("massive damage", "creature", h.owner.Name, "excess", excess, "max_hp", maxHP)
		return DamageDeath
	}
	h.saves = &DeathSaves{}
	h.stable = false
	h.mu.Unlock()

	h.owner.ApplyCondition(Unconscious, cause.Indefinite)
	return DamageUnconscious
}

func (h *Health) hitWhileDownLocked(amount, maxHP int) DamageResult {
	if amount >= maxHP {
		h.dieLocked()
		return DamageDeath
	}
	if h.saves == nil {
		h.saves = &DeathSaves{}
	}
	h.stable = false
	h.saves.Failures++
	if h.saves.Failures >= 3 {
		h.dieLocked()
		return DamageDeath
	}
	return DamageUnconscious
}

func (h *Health) dieLocked() {
	h.dead = true
	h.stable = false
	h.saves = nil
}

// Heal restores hit points up to max. It does nothing to the dead; any
// running death saves are cleared. Healing a creature at 0 HP removes
// Unconscious. Returns the hit points actually restored.
func (h *Health) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	maxHP := h.Max.Get()

	h.mu.Lock()
	if h.dead {
		h.mu.Unlock()
		return 0
	}
	wasDown := h.current == 0
	before := h.current
	h.current = min(h.current+amount, maxHP)
	h.saves = nil
	h.stable = false
	healed := h.current - before
	h.mu.Unlock()

	if wasDown && healed > 0 {
		h.owner.RemoveCondition(Unconscious)
	}
	return healed
}

// DeathSave rolls a death saving throw with r: a natural 20 regains 1 HP,
// a natural 1 counts as two failures, 10 or more is a success. Three
// successes stabilize, three failures kill.
func (h *Health) DeathSave(r *dice.Roller) (DeathSaveOutcome, dice.Tree) {
	h.mu.RLock()
	dying := h.saves != nil && !h.dead
	h.mu.RUnlock()
	if !dying {
		return NotDying, nil
	}

	roll := dice.Evaluate(dice.D20.Expr(), r)
	face := roll.Result()

	h.mu.Lock()
	if h.saves == nil || h.dead {
		h.mu.Unlock()
		return NotDying, roll
	}
	var out DeathSaveOutcome
	switch {
	case face == 20:
		h.current = 1
		h.saves = nil
		out = Revived
	case face == 1:
		h.saves.Failures += 2
		out = DeathSaveFailure
	case face >= 10:
		h.saves.Successes++
		out = DeathSaveSuccess
	default:
		h.saves.Failures++
		out = DeathSaveFailure
	}
	if h.saves != nil {
		switch {
		case h.saves.Failures >= 3:
			h.dieLocked()
			out = Died
		case h.saves.Successes >= 3:
			h.saves = nil
			h.stable = true
			out = Stabilized
		}
	}
	h.mu.Unlock()

	if out == Revived {
		h.owner.RemoveCondition(Unconscious)
	}
	return out, roll
}

// TakeDamage resolves d against the creature's damage handling and removes
// the total from its hit points. It returns the resolved damage alongside
// the state transition.
func (s *StatBlock) TakeDamage(d Damage) (Damage, DamageResult) {
	taken := s.Damage.Resolve(d)
	return taken, s.Health.Lose(taken.Total())
}

// HitDice tracks hit dice by die size.
//
// Thread-safe: counts are protected by sync.RWMutex.
type HitDice struct {
	owner *StatBlock

	mu    sync.RWMutex
	total map[dice.Die]int
	spent map[dice.Die]int
}

func newHitDice(s *StatBlock, total map[dice.Die]int) *HitDice {
	return &HitDice{
		owner: s,
		total: maps.Clone(total),
		spent: make(map[dice.Die]int),
	}
}

// Available returns the unspent dice of size d.
func (h *HitDice) Available(d dice.Die) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total[d] - h.spent[d]
}

// Dice lists the die sizes the creature has, smallest first.
func (h *HitDice) Dice() []dice.Die {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Sorted(maps.Keys(h.total))
}

// Spend marks n dice of size d as spent and returns the healing they
// grant: the dice plus the CON modifier once per die.
func (h *HitDice) Spend(d dice.Die, n int) (dice.Expr, error) {
	if n <= 0 {
		return nil, fmt.Errorf("spend %d hit dice: count must be positive", n)
	}
	con := h.owner.Modifiers[Constitution].Get()

	h.mu.Lock()
	defer h.mu.Unlock()
	if left := h.total[d] - h.spent[d]; n > left {
		return nil, fmt.Errorf("%w: want %d%s, have %d", ErrTooManyDice, n, d, left)
	}
	h.spent[d] += n

	if v, ok := dice.Static(con); ok {
		return dice.Add(d.N(n), dice.Const(n*v)), nil
	}
	// a rolled modifier is rolled once per die
	e := d.N(n)
	for range n {
		e = dice.Add(e, con)
	}
	return e, nil
}

// Restore gives back up to n spent dice of size d.
func (h *HitDice) Restore(d dice.Die, n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.spent[d] = max(h.spent[d]-n, 0)
}

// SpendHitDice spends n dice of size d, rolls them with r and heals the
// result, never less than 0.
func (s *StatBlock) SpendHitDice(d dice.Die, n int, r *dice.Roller) (dice.Tree, error) {
	e, err := s.Health.HitDice.Spend(d, n)
	if err != nil {
		return nil, err
	}
	t := dice.Evaluate(e, r)
	s.Health.Heal(max(t.Result(), 0))
	return t, nil
}
