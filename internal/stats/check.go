package stats

import (
	"fmt"
	"strconv"

	"github.com/udisondev/xander/internal/dice"
)

// DC is a difficulty class. The zero value is unknown.
type DC struct {
	Value int
	Known bool
}

// UnknownDC is a difficulty the roller does not know yet.
var UnknownDC = DC{}

var (
	DCVeryEasy         = Difficulty(5)
	DCEasy             = Difficulty(10)
	DCMedium           = Difficulty(15)
	DCHard             = Difficulty(20)
	DCVeryHard         = Difficulty(25)
	DCNearlyImpossible = Difficulty(30)
)

// Difficulty returns a known DC.
func Difficulty(v int) DC {
	return DC{Value: v, Known: true}
}

func (d DC) String() string {
	if !d.Known {
		return "DC ?"
	}
	return "DC " + strconv.Itoa(d.Value)
}

// Outcome of a check against a DC.
type Outcome int

const (
	Indeterminate Outcome = iota
	Pass
	Fail
)

func (o Outcome) String() string {
	switch o {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	default:
		return "indeterminate"
	}
}

// CheckResult is an evaluated check.
type CheckResult struct {
	Roll    dice.Tree
	Total   int
	DC      DC
	Outcome Outcome
}

func (r CheckResult) String() string {
	if r.Roll == nil {
		return fmt.Sprintf("automatic %s vs %s", r.Outcome, r.DC)
	}
	return fmt.Sprintf("%s = %d vs %s: %s", r.Roll, r.Total, r.DC, r.Outcome)
}

func judge(t dice.Tree, dc DC) CheckResult {
	res := CheckResult{Roll: t, Total: t.Result(), DC: dc}
	if dc.Known {
		res.Outcome = Fail
		if res.Total >= dc.Value {
			res.Outcome = Pass
		}
	}
	return res
}

// AbilityCheck rolls the check die plus the ability modifier.
func (s *StatBlock) AbilityCheck(a Ability, dc DC, r *dice.Roller) CheckResult {
	e := dice.Add(s.CheckDie.Get(), s.Modifiers[a].Get())
	return judge(dice.Evaluate(e, r), dc)
}

// SkillCheck rolls the check die plus the skill modifier.
func (s *StatBlock) SkillCheck(sk Skill, dc DC, r *dice.Roller) CheckResult {
	e := dice.Add(s.CheckDie.Get(), s.Skills[sk].Get())
	return judge(dice.Evaluate(e, r), dc)
}

// PassiveCheck is 10 plus the skill modifier. Nothing is rolled unless
// an effect put dice into the modifier.
func (s *StatBlock) PassiveCheck(sk Skill, r *dice.Roller) int {
	return dice.Evaluate(dice.Add(dice.Const(10), s.Skills[sk].Get()), r).Result()
}

// SavingThrow rolls the save die plus the save modifier. Strength and
// Dexterity saves fail automatically while paralyzed, stunned, unconscious
// or petrified; the result then carries no roll.
func (s *StatBlock) SavingThrow(a Ability, dc DC, r *dice.Roller) CheckResult {
	if (a == Strength || a == Dexterity) && s.autoFailsPhysicalSaves() {
		return CheckResult{DC: dc, Outcome: Fail}
	}
	e := dice.Add(s.SaveDie[a].Get(), s.Saves[a].Get())
	return judge(dice.Evaluate(e, r), dc)
}

func (s *StatBlock) autoFailsPhysicalSaves() bool {
	for _, c := range []Condition{Paralyzed, Stunned, Unconscious, Petrified} {
		if s.HasCondition(c) {
			return true
		}
	}
	return false
}
