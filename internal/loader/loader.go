// Package loader decodes YAML stat-block documents into stat blocks and the
// attacks the creature can make.
//
// A document looks like:
//
//	name: Rat
//	type: {type: monster, kind: beast, cr: 0, xp: 10, alignment: unaligned}
//	size: tiny
//	scores: {str: 2, dex: 11, con: 9, int: 2, wis: 10, cha: 4}
//	speed: 20
//	skills: {perception: P}
//	health: {max_hp: 1d4 - 1, hit_dice: [1d4]}
//	ac: 10
//	actions:
//	  - type: attack
//	    name: Bite
//	    to_hit: 0
//	    range: reach
//	    damage: [[1, piercing]]
//
// Errors name the offending field, e.g. "scores.str: ability score out of
// range [1, 30]: 31".
package loader

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/xander/internal/combat"
	"github.com/udisondev/xander/internal/dice"
	"github.com/udisondev/xander/internal/monster"
	"github.com/udisondev/xander/internal/stats"
)

var (
	// ErrMissingField is returned when a required field is absent.
	ErrMissingField = errors.New("required field missing")
	// ErrUnknownValue is returned for a value outside a field's vocabulary.
	ErrUnknownValue = errors.New("unrecognized value")
)

// Creature is a decoded stat-block document.
type Creature struct {
	Stats   *stats.StatBlock
	Attacks []combat.Attack
}

// Loader builds creatures. Dice in max_hp are rolled with its roller.
type Loader struct {
	roller *dice.Roller
}

// New creates a loader rolling with r. A nil r uses the global roller.
func New(r *dice.Roller) *Loader {
	return &Loader{roller: r}
}

// LoadFile reads and decodes the document at path.
func (l *Loader) LoadFile(path string) (*Creature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading statblock %s: %w", path, err)
	}
	c, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing statblock %s: %w", path, err)
	}
	return c, nil
}

type document struct {
	Name                string               `yaml:"name"`
	Type                yaml.Node            `yaml:"type"`
	Size                string               `yaml:"size"`
	Scores              map[string]int       `yaml:"scores"`
	Speed               yaml.Node            `yaml:"speed"`
	Skills              map[string]yaml.Node `yaml:"skills"`
	Saves               map[string]yaml.Node `yaml:"saves"`
	DamageEffectors     map[string]string    `yaml:"damage_effectors"`
	ConditionImmunities map[string]string    `yaml:"condition_immunities"`
	Health              healthDoc            `yaml:"health"`
	AC                  yaml.Node            `yaml:"ac"`
	ProficiencyBonus    *int                 `yaml:"proficiency_bonus"`
	Actions             []actionDoc          `yaml:"actions"`
}

type healthDoc struct {
	MaxHP   yaml.Node `yaml:"max_hp"`
	HitDice []string  `yaml:"hit_dice"`
}

type monsterDoc struct {
	Type      string    `yaml:"type"`
	Kind      yaml.Node `yaml:"kind"`
	CR        yaml.Node `yaml:"cr"`
	XP        *int      `yaml:"xp"`
	Alignment string    `yaml:"alignment"`
}

type kindDoc struct {
	Type string   `yaml:"type"`
	Tags []string `yaml:"tags"`
}

type actionDoc struct {
	Type        string      `yaml:"type"`
	AttackType  string      `yaml:"attack_type"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	ToHit       yaml.Node   `yaml:"to_hit"`
	Range       yaml.Node   `yaml:"range"`
	Target      string      `yaml:"target"`
	Damage      []yaml.Node `yaml:"damage"`
	Magical     bool        `yaml:"magical"`
}

type damageDoc struct {
	Amount yaml.Node `yaml:"amount"`
	Type   string    `yaml:"type"`
}

// Parse decodes one document.
//
// Workflow:
//  1. Decode the YAML into a raw document.
//  2. Resolve creature type, scores, speeds, health and AC into Params
//     and build the block.
//  3. Stack skill, save, damage and condition modifiers onto its cells.
//  4. Decode the actions.
func (l *Loader) Parse(data []byte) (*Creature, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if doc.Name == "" {
		return nil, fieldErr("name", ErrMissingField)
	}

	p := stats.Params{Name: doc.Name, ProficiencyBonus: doc.ProficiencyBonus}
	var err error
	if p.Monster, err = creatureType(&doc.Type); err != nil {
		return nil, fieldErr("type", err)
	}
	if p.Size, err = stats.ParseSize(doc.Size); err != nil {
		return nil, fieldErr("size", err)
	}
	if p.Scores, err = scores(doc.Scores); err != nil {
		return nil, err
	}
	if p.Speeds, err = speeds(&doc.Speed); err != nil {
		return nil, fieldErr("speed", err)
	}
	if p.MaxHP, err = l.maxHP(&doc.Health.MaxHP); err != nil {
		return nil, fieldErr("health.max_hp", err)
	}
	if p.HitDice, err = hitDice(doc.Health.HitDice); err != nil {
		return nil, fieldErr("health.hit_dice", err)
	}
	if !isMissing(&doc.AC) {
		if p.AC, err = expr(&doc.AC); err != nil {
			return nil, fieldErr("ac", err)
		}
	}

	s, err := stats.New(p)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", doc.Name, err)
	}

	if err := skills(s, doc.Skills); err != nil {
		return nil, err
	}
	if err := saves(s, doc.Saves); err != nil {
		return nil, err
	}
	if err := damageEffectors(s, doc.DamageEffectors); err != nil {
		return nil, err
	}
	if err := conditionImmunities(s, doc.ConditionImmunities); err != nil {
		return nil, err
	}

	c := &Creature{Stats: s}
	for i := range doc.Actions {
		a, err := attack(&doc.Actions[i])
		if err != nil {
			return nil, fieldErr("actions["+strconv.Itoa(i)+"]", err)
		}
		c.Attacks = append(c.Attacks, a)
	}
	return c, nil
}

func fieldErr(path string, err error) error {
	return fmt.Errorf("%s: %w", path, err)
}

func isMissing(n *yaml.Node) bool {
	return n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// expr reads an integer or dice notation.
func expr(n *yaml.Node) (dice.Expr, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("expected a dice expression at line %d", n.Line)
	}
	return dice.Parse(n.Value)
}

// creatureType decodes "player" or a monster mapping. Players return nil.
func creatureType(n *yaml.Node) (*monster.Monster, error) {
	switch {
	case isMissing(n):
		return nil, ErrMissingField
	case n.Kind == yaml.ScalarNode && strings.EqualFold(n.Value, "player"):
		return nil, nil
	case n.Kind != yaml.MappingNode:
		return nil, fmt.Errorf("%w: expected player or a monster mapping", ErrUnknownValue)
	}

	var m monsterDoc
	if err := n.Decode(&m); err != nil {
		return nil, err
	}
	switch strings.ToLower(m.Type) {
	case "player":
		return nil, nil
	case "monster":
	default:
		return nil, fmt.Errorf("%w: type %q", ErrUnknownValue, m.Type)
	}

	t, tags, err := monsterKind(&m.Kind)
	if err != nil {
		return nil, fmt.Errorf("kind: %w", err)
	}
	cr, err := challenge(&m.CR)
	if err != nil {
		return nil, fmt.Errorf("cr: %w", err)
	}
	align := monster.Unaligned
	if m.Alignment != "" {
		if align, err = monster.ParseAlignment(m.Alignment); err != nil {
			return nil, fmt.Errorf("alignment: %w", err)
		}
	}
	return monster.New(t, cr, m.XP, align, tags...)
}

// monsterKind accepts "beast" or {type: humanoid, tags: [goblinoid]}.
func monsterKind(n *yaml.Node) (monster.Type, []string, error) {
	if isMissing(n) {
		return 0, nil, ErrMissingField
	}
	if n.Kind == yaml.ScalarNode {
		t, err := monster.ParseType(n.Value)
		return t, nil, err
	}
	var k kindDoc
	if err := n.Decode(&k); err != nil {
		return 0, nil, err
	}
	t, err := monster.ParseType(k.Type)
	return t, k.Tags, err
}

// challenge accepts "1/8", 0.125, "3", 3 and 3.0.
func challenge(n *yaml.Node) (monster.CR, error) {
	if isMissing(n) {
		return 0, ErrMissingField
	}
	if n.Tag == "!!float" {
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return 0, err
		}
		switch f {
		case 0.125:
			return monster.ParseCR("1/8")
		case 0.25:
			return monster.ParseCR("1/4")
		case 0.5:
			return monster.ParseCR("1/2")
		}
		if f != float64(int(f)) {
			return 0, fmt.Errorf("%w: %s", monster.ErrUnknownCR, n.Value)
		}
		return monster.IntCR(int(f))
	}
	return monster.ParseCR(n.Value)
}

func scores(raw map[string]int) ([stats.NumAbilities]int, error) {
	var out [stats.NumAbilities]int
	var seen [stats.NumAbilities]bool
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		a, err := stats.ParseAbility(key)
		if err != nil {
			return out, fieldErr("scores."+key, err)
		}
		v, err := stats.NewScore(raw[key])
		if err != nil {
			return out, fieldErr("scores."+key, err)
		}
		out[a], seen[a] = v, true
	}
	for _, a := range stats.Abilities() {
		if !seen[a] {
			return out, fieldErr("scores."+strings.ToLower(a.Abbrev()), ErrMissingField)
		}
	}
	return out, nil
}

// speeds accepts a bare walking speed or a mode-to-feet mapping.
func speeds(n *yaml.Node) (map[stats.SpeedMode]int, error) {
	if isMissing(n) {
		return nil, ErrMissingField
	}
	if n.Kind == yaml.ScalarNode {
		var ft int
		if err := n.Decode(&ft); err != nil {
			return nil, err
		}
		return map[stats.SpeedMode]int{stats.Walking: ft}, nil
	}

	var raw map[string]int
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	out := make(map[stats.SpeedMode]int, len(raw))
	for name, ft := range raw {
		m, err := stats.ParseSpeedMode(name)
		if err != nil {
			return nil, err
		}
		if m == stats.Crawling {
			return nil, fmt.Errorf("%w: crawling has no speed of its own", ErrUnknownValue)
		}
		if ft <= 0 {
			return nil, fmt.Errorf("%s: speed must be positive, got %d", name, ft)
		}
		out[m] = ft
	}
	return out, nil
}

// maxHP evaluates the expression, so "2d8 + 2" rolls once at load time.
func (l *Loader) maxHP(n *yaml.Node) (int, error) {
	if isMissing(n) {
		return 0, ErrMissingField
	}
	e, err := expr(n)
	if err != nil {
		return 0, err
	}
	return max(dice.Evaluate(e, l.roller).Result(), 1), nil
}

func hitDice(raw []string) (map[dice.Die]int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[dice.Die]int, len(raw))
	for _, s := range raw {
		e, err := dice.Parse(s)
		if err != nil {
			return nil, err
		}
		r, ok := e.(dice.Roll)
		if !ok || r.Count < 1 {
			return nil, fmt.Errorf("%w: %q is not a plain dice roll", ErrUnknownValue, s)
		}
		out[r.Die] += r.Count
	}
	return out, nil
}

// modifier is either a derived part ("P", "proficiency") or a fixed
// override (4, "+4", "-1").
func modifier(n *yaml.Node) (stats.ExprPart, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("%w: expected P, proficiency or a number", ErrUnknownValue)
	}
	switch n.Value {
	case "P", "proficiency":
		return stats.Proficiency{}, nil
	}
	v, err := strconv.Atoi(strings.TrimPrefix(n.Value, "+"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q, expected P, proficiency or a number", ErrUnknownValue, n.Value)
	}
	return stats.Override[dice.Expr]{Value: dice.Const(v)}, nil
}

func skills(s *stats.StatBlock, raw map[string]yaml.Node) error {
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		sk, err := stats.ParseSkill(key)
		if err != nil {
			return fieldErr("skills."+key, err)
		}
		n := raw[key]
		part, err := modifier(&n)
		if err != nil {
			return fieldErr("skills."+key, err)
		}
		s.Skills[sk].Insert(part)
	}
	return nil
}

func saves(s *stats.StatBlock, raw map[string]yaml.Node) error {
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		a, err := stats.ParseAbility(key)
		if err != nil {
			return fieldErr("saves."+key, err)
		}
		n := raw[key]
		part, err := modifier(&n)
		if err != nil {
			return fieldErr("saves."+key, err)
		}
		s.Saves[a].Insert(part)
	}
	return nil
}

func damageEffectors(s *stats.StatBlock, raw map[string]string) error {
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		k, err := stats.ParseDamageKind(key)
		if err != nil {
			return fieldErr("damage_effectors."+key, err)
		}
		var part stats.HandlingPart
		switch raw[key] {
		case "R", "resistance":
			part = stats.Resistance{}
		case "V", "vulnerability":
			part = stats.Vulnerability{}
		case "I", "immunity":
			part = stats.Immunity{}
		default:
			return fieldErr("damage_effectors."+key,
				fmt.Errorf("%w: %q, try R, resistance, V, vulnerability, I or immunity", ErrUnknownValue, raw[key]))
		}
		s.Damage.Kind(k).Insert(part)
	}
	return nil
}

func conditionImmunities(s *stats.StatBlock, raw map[string]string) error {
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		c, err := stats.ParseCondition(key)
		if err != nil {
			return fieldErr("condition_immunities."+key, err)
		}
		switch raw[key] {
		case "I", "immunity":
			s.ConditionImmunities[c].Insert(stats.ConditionImmune{})
		case "":
		default:
			return fieldErr("condition_immunities."+key,
				fmt.Errorf("%w: %q, try I or immunity", ErrUnknownValue, raw[key]))
		}
	}
	return nil
}

func attack(a *actionDoc) (combat.Attack, error) {
	if a.Type != "" && a.Type != "attack" {
		return combat.Attack{}, fieldErr("type", fmt.Errorf("%w: %q", ErrUnknownValue, a.Type))
	}
	if a.Name == "" {
		return combat.Attack{}, fieldErr("name", ErrMissingField)
	}
	out := combat.Attack{
		Name:        a.Name,
		Description: a.Description,
		Magical:     a.Magical,
		ToHit:       dice.Const(0),
	}

	var err error
	if !isMissing(&a.ToHit) {
		if out.ToHit, err = expr(&a.ToHit); err != nil {
			return out, fieldErr("to_hit", err)
		}
	}
	if out.Range, err = attackRange(&a.Range, a.AttackType); err != nil {
		return out, fieldErr("range", err)
	}
	switch strings.ToLower(a.Target) {
	case "", "single", "one":
		out.Targeting = combat.Single
	default:
		return out, fieldErr("target", fmt.Errorf("%w: %q", ErrUnknownValue, a.Target))
	}
	for i := range a.Damage {
		d, err := damageRoll(&a.Damage[i])
		if err != nil {
			return out, fieldErr("damage["+strconv.Itoa(i)+"]", err)
		}
		out.Damage = append(out.Damage, d)
	}
	return out, nil
}

// attackRange accepts "reach", {reach: 10}, a single range in feet or a
// [normal, long] pair. A missing range is a 5 ft. reach, or a required
// field for ranged attacks.
func attackRange(n *yaml.Node, attackType string) (combat.Range, error) {
	if isMissing(n) {
		if strings.EqualFold(attackType, "ranged") {
			return combat.Range{}, ErrMissingField
		}
		return combat.Reach(5), nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if strings.EqualFold(n.Value, "reach") {
			return combat.Reach(5), nil
		}
		var ft float64
		if err := n.Decode(&ft); err != nil {
			return combat.Range{}, err
		}
		return combat.Ranged(ft), nil
	case yaml.SequenceNode:
		var pair []float64
		if err := n.Decode(&pair); err != nil {
			return combat.Range{}, err
		}
		if len(pair) != 2 || pair[1] < pair[0] {
			return combat.Range{}, fmt.Errorf("%w: expected [normal, long]", ErrUnknownValue)
		}
		return combat.RangedLong(pair[0], pair[1]), nil
	case yaml.MappingNode:
		var m struct {
			Reach float64 `yaml:"reach"`
		}
		if err := n.Decode(&m); err != nil {
			return combat.Range{}, err
		}
		if m.Reach <= 0 {
			return combat.Range{}, fmt.Errorf("%w: expected {reach: feet}", ErrUnknownValue)
		}
		return combat.Reach(m.Reach), nil
	}
	return combat.Range{}, fmt.Errorf("%w: line %d", ErrUnknownValue, n.Line)
}

// damageRoll accepts [amount, kind] or {amount, type}.
func damageRoll(n *yaml.Node) (stats.DamageRoll, error) {
	var d damageDoc
	switch n.Kind {
	case yaml.SequenceNode:
		if len(n.Content) != 2 {
			return stats.DamageRoll{}, fmt.Errorf("%w: expected [amount, kind]", ErrUnknownValue)
		}
		d.Amount = *n.Content[0]
		d.Type = n.Content[1].Value
	case yaml.MappingNode:
		if err := n.Decode(&d); err != nil {
			return stats.DamageRoll{}, err
		}
	default:
		return stats.DamageRoll{}, fmt.Errorf("%w: expected [amount, kind] or {amount, type}", ErrUnknownValue)
	}

	amount, err := expr(&d.Amount)
	if err != nil {
		return stats.DamageRoll{}, err
	}
	kind, err := stats.ParseDamageKind(d.Type)
	if err != nil {
		return stats.DamageRoll{}, err
	}
	return stats.DamageRoll{Amount: amount, Kind: kind}, nil
}
