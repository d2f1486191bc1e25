package stats

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidScore is returned for ability scores outside [1, 30].
var ErrInvalidScore = errors.New("ability score out of range [1, 30]")

const (
	MinScore = 1
	MaxScore = 30
)

// Ability is one of the six ability scores.
type Ability int

const (
	Strength Ability = iota
	Dexterity
	Constitution
	Intelligence
	Wisdom
	Charisma
	NumAbilities
)

var abilityNames = [NumAbilities][2]string{
	{"strength", "STR"},
	{"dexterity", "DEX"},
	{"constitution", "CON"},
	{"intelligence", "INT"},
	{"wisdom", "WIS"},
	{"charisma", "CHA"},
}

// Abilities lists the abilities in stat-block order.
func Abilities() []Ability {
	return []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}
}

func (a Ability) String() string {
	if a < 0 || a >= NumAbilities {
		return "unknown"
	}
	return abilityNames[a][0]
}

// Abbrev returns the three-letter form, e.g. "STR".
func (a Ability) Abbrev() string {
	if a < 0 || a >= NumAbilities {
		return "???"
	}
	return abilityNames[a][1]
}

// ParseAbility accepts full names and abbreviations in any case.
func ParseAbility(s string) (Ability, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range abilityNames {
		if s == n[0] || s == strings.ToLower(n[1]) {
			return Ability(i), nil
		}
	}
	return 0, fmt.Errorf("unknown ability %q", s)
}

// NewScore returns v when it is a legal ability score.
func NewScore(v int) (int, error) {
	if err := ValidateScore(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ValidateScore checks v is a legal ability score.
func ValidateScore(v int) error {
	if v < MinScore || v > MaxScore {
		return fmt.Errorf("%w: %d", ErrInvalidScore, v)
	}
	return nil
}

// Modifier returns floor((score - 10) / 2).
func Modifier(score int) int {
	d := score - 10
	if d < 0 {
		return (d - 1) / 2
	}
	return d / 2
}

// FormatModifier renders a modifier the way stat blocks do: "+2", "-1", "±0".
func FormatModifier(m int) string {
	switch {
	case m > 0:
		return "+" + strconv.Itoa(m)
	case m < 0:
		return strconv.Itoa(m)
	default:
		return "±0"
	}
}

// Skill is one of the eighteen skills.
type Skill int

const (
	Athletics Skill = iota
	Acrobatics
	SleightOfHand
	Stealth
	Arcana
	History
	Investigation
	Nature
	Religion
	AnimalHandling
	Insight
	Medicine
	Perception
	Survival
	Deception
	Intimidation
	Performance
	Persuasion
	NumSkills
)

var skillInfo = [NumSkills]struct {
	name    string
	ability Ability
}{
	{"athletics", Strength},
	{"acrobatics", Dexterity},
	{"sleight of hand", Dexterity},
	{"stealth", Dexterity},
	{"arcana", Intelligence},
	{"history", Intelligence},
	{"investigation", Intelligence},
	{"nature", Intelligence},
	{"religion", Intelligence},
	{"animal handling", Wisdom},
	{"insight", Wisdom},
	{"medicine", Wisdom},
	{"perception", Wisdom},
	{"survival", Wisdom},
	{"deception", Charisma},
	{"intimidation", Charisma},
	{"performance", Charisma},
	{"persuasion", Charisma},
}

func (s Skill) String() string {
	if s < 0 || s >= NumSkills {
		return "unknown"
	}
	return skillInfo[s].name
}

// Ability returns the ability the skill is based on.
func (s Skill) Ability() Ability {
	return skillInfo[s].ability
}

// ParseSkill accepts "sleight of hand", "sleight_of_hand" or
// "Sleight-Of-Hand".
func ParseSkill(s string) (Skill, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	for i, info := range skillInfo {
		if info.name == norm {
			return Skill(i), nil
		}
	}
	return 0, fmt.Errorf("unknown skill %q", s)
}
