// Package stats models a creature's statistics: ability scores and the
// values derived from them, armor class, speeds, damage handling, hit
// points and conditions.
//
// Every derived value lives in a derived.Cell owned by the StatBlock, so
// game effects stack onto it as parts and are re-applied on every read.
package stats

import (
	"errors"
	"fmt"
	"strings"

	"github.com/udisondev/xander/internal/derived"
	"github.com/udisondev/xander/internal/dice"
	"github.com/udisondev/xander/internal/monster"
)

// ErrNoProficiency is returned when a player character is built without a
// proficiency bonus; only monsters derive it from their challenge rating.
var ErrNoProficiency = errors.New("player characters need an explicit proficiency bonus")

// Cells keyed by the value they hold.
type (
	ExprCell     = derived.Cell[*StatBlock, dice.Expr]
	IntCell      = derived.Cell[*StatBlock, int]
	SpeedCell    = derived.Cell[*StatBlock, Speed]
	HandlingCell = derived.Cell[*StatBlock, Handling]
	ImmunityCell = derived.Cell[*StatBlock, ConditionImmunity]
	ExprPart     = derived.Part[*StatBlock, dice.Expr]
	HandlingPart = derived.Part[*StatBlock, Handling]
	SpeedPart    = derived.Part[*StatBlock, Speed]
	ImmunityPart = derived.Part[*StatBlock, ConditionImmunity]
	IntPart      = derived.Part[*StatBlock, int]
)

// Size is a creature's size category.
type Size int

const (
	Tiny Size = iota
	Small
	Medium
	Large
	Huge
	Gargantuan
	numSizes
)

var sizeNames = [numSizes]string{"tiny", "small", "medium", "large", "huge", "gargantuan"}

// sizeSpace is the side of the square a creature controls, in feet.
var sizeSpace = [numSizes]float64{2.5, 5, 5, 10, 15, 20}

func (s Size) String() string {
	if s < 0 || s >= numSizes {
		return "unknown"
	}
	return sizeNames[s]
}

// Space returns the side of the square the creature occupies, in feet.
func (s Size) Space() float64 {
	if s < 0 || s >= numSizes {
		return 5
	}
	return sizeSpace[s]
}

func ParseSize(s string) (Size, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range sizeNames {
		if n == s {
			return Size(i), nil
		}
	}
	return 0, fmt.Errorf("unknown size %q", s)
}

// SpeedMode is a way of moving.
type SpeedMode int

const (
	Walking SpeedMode = iota
	Burrowing
	Climbing
	Flying
	Swimming
	// NumSpeedModes counts the modes that carry a speed. Crawling comes
	// after it: it spends walking speed at double cost and has no cell.
	NumSpeedModes
	Crawling = NumSpeedModes
)

var speedNames = [NumSpeedModes + 1]string{"walking", "burrowing", "climbing", "flying", "swimming", "crawling"}

func (m SpeedMode) String() string {
	if m < 0 || m > Crawling {
		return "unknown"
	}
	return speedNames[m]
}

// ParseSpeedMode accepts "walk" and "walking" style names.
func ParseSpeedMode(s string) (SpeedMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range speedNames {
		if s == n || s == strings.TrimSuffix(n, "ing") {
			return SpeedMode(i), nil
		}
	}
	switch s {
	case "fly":
		return Flying, nil
	case "swim":
		return Swimming, nil
	case "climb":
		return Climbing, nil
	case "burrow":
		return Burrowing, nil
	}
	return 0, fmt.Errorf("unknown speed mode %q", s)
}

// Speed is an optional speed in feet.
type Speed struct {
	Feet  int
	Valid bool
}

// Feet is shorthand for a known speed.
func Feet(ft int) Speed {
	return Speed{Feet: ft, Valid: true}
}

// StatBlock aggregates every statistic of one creature.
//
// A StatBlock is built once by New, with all cells already referencing the
// block, and is never restructured afterwards: only the parts stacked in
// its cells and the fields of Health change.
type StatBlock struct {
	Name string
	// Monster is nil for player characters.
	Monster *monster.Monster
	Size    Size

	Scores    [NumAbilities]*IntCell
	Modifiers [NumAbilities]*ExprCell
	// Saves holds the saving throw modifier per ability; SaveDie the d20
	// rolled for it.
	Saves   [NumAbilities]*ExprCell
	SaveDie [NumAbilities]*ExprCell
	Skills  [NumSkills]*ExprCell

	// CheckDie is the d20 rolled for ability and skill checks.
	CheckDie *ExprCell
	// AttackDie is the d20 rolled for the creature's attacks.
	AttackDie  *ExprCell
	Initiative *ExprCell

	ProficiencyBonus *ExprCell
	AC               *ExprCell
	Speeds           [NumSpeedModes]*SpeedCell

	Damage              *DamageEffectors
	ConditionImmunities [NumConditions]*ImmunityCell
	Conditions          *Conditions

	Health *Health
}

// Params describes a creature to build.
type Params struct {
	Name    string
	Monster *monster.Monster
	Size    Size
	Scores  [NumAbilities]int
	Speeds  map[SpeedMode]int
	// ProficiencyBonus overrides the challenge-rating bonus; required for
	// player characters.
	ProficiencyBonus *int
	// AC defaults to 10 + DEX modifier.
	AC      dice.Expr
	MaxHP   int
	HitDice map[dice.Die]int
}

// New validates p and builds the block.
func New(p Params) (*StatBlock, error) {
	for _, a := range Abilities() {
		if err := ValidateScore(p.Scores[a]); err != nil {
			return nil, fmt.Errorf("%s: %w", a, err)
		}
	}
	if p.MaxHP < 1 {
		return nil, fmt.Errorf("max hp must be at least 1, got %d", p.MaxHP)
	}

	var pb int
	switch {
	case p.ProficiencyBonus != nil:
		pb = *p.ProficiencyBonus
	case p.Monster != nil:
		pb = p.Monster.CR.ProficiencyBonus()
	default:
		return nil, ErrNoProficiency
	}

	s := &StatBlock{
		Name:    p.Name,
		Monster: p.Monster,
		Size:    p.Size,
	}

	for _, a := range Abilities() {
		s.Scores[a] = derived.Const(s, p.Scores[a])
		s.Modifiers[a] = derived.Derive(s, func(s *StatBlock) dice.Expr {
			return dice.Const(Modifier(s.Scores[a].Get()))
		})
		s.Saves[a] = derived.Derive(s, func(s *StatBlock) dice.Expr {
			return s.Modifiers[a].Get()
		})
		s.SaveDie[a] = derived.Const[*StatBlock, dice.Expr](s, dice.D20.Expr())
	}
	for sk := range NumSkills {
		base := sk.Ability()
		s.Skills[sk] = derived.Derive(s, func(s *StatBlock) dice.Expr {
			return s.Modifiers[base].Get()
		})
	}

	s.CheckDie = derived.Const[*StatBlock, dice.Expr](s, dice.D20.Expr())
	s.AttackDie = derived.Const[*StatBlock, dice.Expr](s, dice.D20.Expr())
	s.Initiative = derived.Derive(s, func(s *StatBlock) dice.Expr {
		return dice.Add(dice.D20.Expr(), s.Modifiers[Dexterity].Get())
	})
	s.ProficiencyBonus = derived.Const[*StatBlock, dice.Expr](s, dice.Const(pb))

	if p.AC != nil {
		s.AC = derived.Const(s, p.AC)
	} else {
		s.AC = derived.Derive(s, func(s *StatBlock) dice.Expr {
			return dice.Add(dice.Const(10), s.Modifiers[Dexterity].Get())
		})
	}

	for m := range NumSpeedModes {
		ft, ok := p.Speeds[m]
		s.Speeds[m] = derived.Const(s, Speed{Feet: ft, Valid: ok})
	}

	s.Damage = newDamageEffectors(s)
	for c := range NumConditions {
		s.ConditionImmunities[c] = derived.Const(s, ConditionImmunity{})
	}
	s.Conditions = &Conditions{owner: s}
	s.Health = newHealth(s, p.MaxHP, p.HitDice)

	return s, nil
}

// IsPlayer reports whether the block describes a player character.
func (s *StatBlock) IsPlayer() bool {
	return s.Monster == nil
}

// Score returns the current value of an ability score.
func (s *StatBlock) Score(a Ability) int {
	return s.Scores[a].Get()
}

// Mod returns the current ability modifier as a number. Dice that effects
// put into the modifier are not rolled and count as 0; read the Modifiers
// cell and evaluate it when they matter.
func (s *StatBlock) Mod(a Ability) int {
	return staticOrZero(s.Modifiers[a].Get())
}

// Speed returns the speed for a mode. Crawling never has one.
func (s *StatBlock) Speed(m SpeedMode) (int, bool) {
	if m < 0 || m >= NumSpeedModes {
		return 0, false
	}
	sp := s.Speeds[m].Get()
	return sp.Feet, sp.Valid
}

// ArmorClass evaluates the AC cell. Dice in the expression are rolled with r.
func (s *StatBlock) ArmorClass(r *dice.Roller) int {
	return dice.Evaluate(s.AC.Get(), r).Result()
}

// DoesHit reports whether an attack total meets the armor class.
func (s *StatBlock) DoesHit(total int, r *dice.Roller) bool {
	return total >= s.ArmorClass(r)
}

// Proficiency returns the proficiency bonus as a number. Like Mod, it
// counts dice in the cell as 0.
func (s *StatBlock) Proficiency() int {
	return staticOrZero(s.ProficiencyBonus.Get())
}

func staticOrZero(e dice.Expr) int {
	v, _ := dice.Static(e)
	return v
}

func (s *StatBlock) String() string {
	return s.Name
}
