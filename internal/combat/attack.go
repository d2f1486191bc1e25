package combat

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/udisondev/xander/internal/dice"
	"github.com/udisondev/xander/internal/geom"
	"github.com/udisondev/xander/internal/legality"
	"github.com/udisondev/xander/internal/stats"
)

// RangeKind distinguishes melee reach from ranged attacks.
type RangeKind int

const (
	ReachRange RangeKind = iota
	RangedRange
)

// Range is how far an attack reaches. Attacks beyond Normal and up to Long
// are made with disadvantage.
type Range struct {
	Kind   RangeKind
	Normal float64
	Long   float64
}

// Reach is a melee attack reaching ft feet.
func Reach(ft float64) Range {
	return Range{Kind: ReachRange, Normal: ft, Long: ft}
}

// Ranged is a ranged attack without a long range.
func Ranged(ft float64) Range {
	return Range{Kind: RangedRange, Normal: ft, Long: ft}
}

// RangedLong is a ranged attack with normal and long range.
func RangedLong(normal, long float64) Range {
	return Range{Kind: RangedRange, Normal: normal, Long: long}
}

func (r Range) String() string {
	n := strconv.FormatFloat(r.Normal, 'f', -1, 64)
	switch {
	case r.Kind == ReachRange:
		return "Reach " + n + "ft."
	case r.Long > r.Normal:
		return "range " + n + "/" + strconv.FormatFloat(r.Long, 'f', -1, 64) + " ft."
	default:
		return "range " + n + " ft."
	}
}

// Targeting is how many creatures an attack affects.
type Targeting int

const (
	Single Targeting = iota
)

func (Targeting) String() string {
	return "one target"
}

// Attack is an attack action from a stat block.
type Attack struct {
	Name        string
	Description string
	// ToHit is added to the attacker's attack die.
	ToHit     dice.Expr
	Range     Range
	Targeting Targeting
	Damage    []stats.DamageRoll
	Magical   bool
}

// String renders the attack the way a stat block does:
// "Bite. Melee Weapon Attack: +0 to hit, Reach 5ft., one target. Hit: 1 piercing."
func (a Attack) String() string {
	var sb strings.Builder
	sb.WriteString(a.Name)
	sb.WriteString(". ")
	if a.Range.Kind == ReachRange {
		sb.WriteString("Melee")
	} else {
		sb.WriteString("Ranged")
	}
	sb.WriteString(" Weapon Attack: ")
	if v, ok := dice.Static(a.toHit()); ok {
		if v >= 0 {
			sb.WriteString("+")
		}
		sb.WriteString(strconv.Itoa(v))
	} else {
		sb.WriteString(a.toHit().String())
	}
	fmt.Fprintf(&sb, " to hit, %s, %s. Hit: ", a.Range, a.Targeting)
	for i, d := range a.Damage {
		if i > 0 {
			sb.WriteString(" plus ")
		}
		sb.WriteString(d.String())
	}
	sb.WriteString(".")
	return sb.String()
}

func (a Attack) toHit() dice.Expr {
	if a.ToHit == nil {
		return dice.Const(0)
	}
	return a.ToHit
}

// AttackResult is a resolved attack.
type AttackResult struct {
	Attack   string
	Attacker *Combatant
	Target   *Combatant
	Hit      bool
	Critical dice.Critical
	ToHit    dice.Tree
	// Damage is what was rolled; Taken is what remained after the
	// target's resistances. Both are empty on a miss.
	Damage  stats.Damage
	Taken   stats.Damage
	Outcome stats.DamageResult
}

func (r AttackResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s -> %s with %s: ", r.Attacker, r.Target, r.Attack)
	switch r.Critical {
	case dice.CriticalSuccess:
		fmt.Fprintf(&sb, "Critical(Success, %s)", r.ToHit)
	case dice.CriticalFailure:
		fmt.Fprintf(&sb, "Critical(Failure, %s)", r.ToHit)
	default:
		sb.WriteString(r.ToHit.String())
	}
	if !r.Hit {
		sb.WriteString(", miss")
		return sb.String()
	}
	fmt.Fprintf(&sb, ", hit for %d (%s)", r.Taken.Total(), r.Taken)
	if r.Outcome != stats.DamageNothing {
		fmt.Fprintf(&sb, ", %s", r.Outcome)
	}
	return sb.String()
}

// advantageConditions on the target grant the attacker advantage.
var advantageConditions = []stats.Condition{
	stats.Blinded, stats.Paralyzed, stats.Restrained, stats.Stunned, stats.Unconscious,
}

// MakeAttack resolves actor's attack a against whoever stands at the
// actor's position plus delta.
//
// Workflow:
//  1. Pick the target with the combat's selector (NO_ONE_TO_TARGET,
//     OUT_OF_RANGE beyond long range).
//  2. Roll the attack die plus ToHit, with advantage or disadvantage
//     from the target's conditions and the distance.
//  3. A natural 1 misses; otherwise the attack hits when the total meets
//     the target's AC. Hits within 5 ft on paralyzed or unconscious
//     targets are critical.
//  4. On a critical hit every damage die is doubled.
//  5. Damage is rolled and dealt to the target.
//
// MakeAttack does not consult turn order or spend actions; TurnCtx.Attack
// does.
func MakeAttack(actor *Combatant, a Attack, delta geom.Point) (legality.Legality[AttackResult], error) {
	cb, err := actor.Combat()
	if err != nil {
		return legality.Legality[AttackResult]{}, err
	}
	dist, err := geom.GridDistance(delta)
	if err != nil {
		return legality.Legality[AttackResult]{}, fmt.Errorf("attack %s: %w", a.Name, err)
	}

	sq := cb.arena.At(actor.Position().Add(delta))
	target := cb.selector(actor, sq.Combatants)
	if target == nil {
		return legality.Illegal[AttackResult](legality.NoOneToTarget), nil
	}
	if float64(dist) > a.Range.Long {
		return legality.Illegal[AttackResult](legality.OutOfRange), nil
	}

	near := dist <= 5
	die := actor.Stats.AttackDie.Get()
	if hasAdvantage(target, near) {
		die = dice.Advantage(die)
	}
	if hasDisadvantage(target, near, float64(dist) > a.Range.Normal) {
		die = dice.Disadvantage(die)
	}

	roll := dice.Evaluate(dice.Add(die, a.toHit()), cb.roller)
	crit := dice.Criticality(roll)
	hit := crit != dice.CriticalFailure && target.Stats.DoesHit(roll.Result(), cb.roller)
	if hit && near && (target.Stats.HasCondition(stats.Paralyzed) || target.Stats.HasCondition(stats.Unconscious)) {
		crit = dice.CriticalSuccess
	}

	res := AttackResult{
		Attack:   a.Name,
		Attacker: actor,
		Target:   target,
		Hit:      hit,
		Critical: crit,
		ToHit:    roll,
	}
	if hit {
		rolls := a.Damage
		if crit == dice.CriticalSuccess {
			rolls = make([]stats.DamageRoll, len(a.Damage))
			for i, d := range a.Damage {
				rolls[i] = stats.DamageRoll{Amount: dice.DoubleDice(d.Amount), Kind: d.Kind}
			}
		}
		res.Damage = stats.NewDamage(stats.FromEntity(actor.Stats, a.Magical), cb.roller, rolls...)
		res.Taken, res.Outcome = target.Stats.TakeDamage(res.Damage)
	}

	slog.Debug("attack resolved",
		"attacker", actor.Name,
		"target", target.Name,
		"attack", a.Name,
		"to_hit", roll.String(),
		"hit", hit,
		"critical", crit.String(),
		"damage", res.Taken.Total())
	cb.observeAttack(res)
	return legality.Legal(res), nil
}

func hasAdvantage(target *Combatant, near bool) bool {
	for _, c := range advantageConditions {
		if target.Stats.HasCondition(c) {
			return true
		}
	}
	return near && target.Stats.HasCondition(stats.Prone)
}

func hasDisadvantage(target *Combatant, near, longRange bool) bool {
	if longRange || target.Stats.HasCondition(stats.Invisible) {
		return true
	}
	return !near && target.Stats.HasCondition(stats.Prone)
}
