package stats

import (
	"fmt"
	"strings"
	"sync"
	"weak"

	"github.com/udisondev/xander/internal/cause"
	"github.com/udisondev/xander/internal/derived"
	"github.com/udisondev/xander/internal/dice"
)

// DamageKind is a type of damage.
type DamageKind int

const (
	Acid DamageKind = iota
	Bludgeoning
	Cold
	Fire
	Force
	Lightning
	Necrotic
	Piercing
	Poison
	Psychic
	Radiant
	Slashing
	Thunder
	NumDamageKinds
)

var damageNames = [NumDamageKinds]string{
	"acid", "bludgeoning", "cold", "fire", "force", "lightning", "necrotic",
	"piercing", "poison", "psychic", "radiant", "slashing", "thunder",
}

func (k DamageKind) String() string {
	if k < 0 || k >= NumDamageKinds {
		return "unknown"
	}
	return damageNames[k]
}

func ParseDamageKind(s string) (DamageKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range damageNames {
		if n == s {
			return DamageKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown damage type %q", s)
}

// Handling records how a creature treats a piece of damage.
type Handling struct {
	Resistant  bool
	Vulnerable bool
	Immune     bool
}

// Or merges two handlings; any flag set on either side stays set.
func (h Handling) Or(o Handling) Handling {
	return Handling{
		Resistant:  h.Resistant || o.Resistant,
		Vulnerable: h.Vulnerable || o.Vulnerable,
		Immune:     h.Immune || o.Immune,
	}
}

// Apply wraps amount in the handling: immunity first, then resistance,
// then vulnerability. Vulnerability after resistance means an odd amount
// with both flags loses a point: (A / 2) * 2.
func (h Handling) Apply(amount dice.Tree) dice.Tree {
	if h.Immune {
		amount = dice.BinaryTree{Op: dice.OpMul, Left: amount, Right: dice.Modifier(0)}
	}
	if h.Resistant {
		amount = dice.BinaryTree{Op: dice.OpDiv, Left: amount, Right: dice.Modifier(2)}
	}
	if h.Vulnerable {
		amount = dice.BinaryTree{Op: dice.OpMul, Left: amount, Right: dice.Modifier(2)}
	}
	return amount
}

// DamageCause says where damage came from. A zero Entity means the
// environment.
type DamageCause struct {
	entity  weak.Pointer[StatBlock]
	Source  cause.Cause
	Magical bool
}

// FromEntity attributes damage to a creature without keeping it alive.
func FromEntity(s *StatBlock, magical bool) DamageCause {
	return DamageCause{entity: weak.Make(s), Magical: magical}
}

// Environment is damage with no creature behind it.
func Environment(src cause.Cause) DamageCause {
	return DamageCause{Source: src}
}

// Entity returns the creature that dealt the damage, nil for the
// environment or when the creature no longer exists.
func (c DamageCause) Entity() *StatBlock {
	return c.entity.Value()
}

// DamagePart is one typed, already rolled, chunk of damage.
type DamagePart struct {
	Kind     DamageKind
	Amount   dice.Tree
	Cause    DamageCause
	Handling Handling
}

// Result returns the amount after handling.
func (p DamagePart) Result() int {
	return p.Amount.Result()
}

func (p DamagePart) String() string {
	return fmt.Sprintf("%s %s", p.Amount, p.Kind)
}

// Damage is an ordered list of parts.
type Damage struct {
	Parts []DamagePart
}

// NewDamage evaluates each expression with r and tags it with kind and c.
func NewDamage(c DamageCause, r *dice.Roller, rolls ...DamageRoll) Damage {
	d := Damage{Parts: make([]DamagePart, 0, len(rolls))}
	for _, roll := range rolls {
		d.Parts = append(d.Parts, DamagePart{
			Kind:   roll.Kind,
			Amount: dice.Evaluate(roll.Amount, r),
			Cause:  c,
		})
	}
	return d
}

// DamageRoll is an unrolled damage expression and its type.
type DamageRoll struct {
	Amount dice.Expr
	Kind   DamageKind
}

func (r DamageRoll) String() string {
	return fmt.Sprintf("%s %s", r.Amount, r.Kind)
}

// Total sums every part, clamped at 0.
func (d Damage) Total() int {
	total := 0
	for _, p := range d.Parts {
		total += p.Result()
	}
	return max(total, 0)
}

func (d Damage) String() string {
	parts := make([]string, len(d.Parts))
	for i, p := range d.Parts {
		parts[i] = p.String()
	}
	return strings.Join(parts, " + ")
}

// DamageRule applies a handling to every damage part matching a
// predicate, regardless of kind. "Resistance to bludgeoning, piercing and
// slashing from nonmagical attacks" is three rules.
type DamageRule struct {
	Name     string
	Matches  func(DamagePart) bool
	Handling Handling
	Lifespan cause.Lifespan
}

// Nonmagical matches parts not caused by magic.
func Nonmagical(kinds ...DamageKind) func(DamagePart) bool {
	return func(p DamagePart) bool {
		if p.Cause.Magical {
			return false
		}
		if len(kinds) == 0 {
			return true
		}
		for _, k := range kinds {
			if p.Kind == k {
				return true
			}
		}
		return false
	}
}

// DamageEffectors holds a creature's resistances, vulnerabilities and
// immunities: one cell per damage kind plus rules covering all damage.
//
// Thread-safe: rules are protected by sync.RWMutex, cells by their own lock.
type DamageEffectors struct {
	kinds [NumDamageKinds]*HandlingCell

	mu    sync.RWMutex
	rules []DamageRule
}

func newDamageEffectors(s *StatBlock) *DamageEffectors {
	d := &DamageEffectors{}
	for k := range NumDamageKinds {
		d.kinds[k] = derived.Const(s, Handling{})
	}
	return d
}

// Kind returns the cell for a damage kind.
func (d *DamageEffectors) Kind(k DamageKind) *HandlingCell {
	return d.kinds[k]
}

// AddRule registers a rule that applies to all damage.
func (d *DamageEffectors) AddRule(r DamageRule) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rules = append(d.rules, r)
}

// Handle computes the handling for one part: the all-damage rules first,
// then the per-kind flags OR-ed in. Expired rules are dropped.
func (d *DamageEffectors) Handle(p DamagePart) Handling {
	h := p.Handling

	d.mu.Lock()
	live := d.rules[:0]
	for _, r := range d.rules {
		if !r.Lifespan.Alive() {
			continue
		}
		live = append(live, r)
		if r.Matches == nil || r.Matches(p) {
			h = h.Or(r.Handling)
		}
	}
	clear(d.rules[len(live):])
	d.rules = live
	d.mu.Unlock()

	return h.Or(d.kinds[p.Kind].Get())
}

// Resolve applies handling to every part of dmg and returns the result.
func (d *DamageEffectors) Resolve(dmg Damage) Damage {
	out := Damage{Parts: make([]DamagePart, len(dmg.Parts))}
	for i, p := range dmg.Parts {
		h := d.Handle(p)
		p.Handling = h
		p.Amount = h.Apply(p.Amount)
		out.Parts[i] = p
	}
	return out
}
