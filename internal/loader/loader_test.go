package loader

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/xander/internal/cause"
	"github.com/udisondev/xander/internal/combat"
	"github.com/udisondev/xander/internal/dice"
	"github.com/udisondev/xander/internal/monster"
	"github.com/udisondev/xander/internal/stats"
)

func load(t *testing.T, name string, seed uint64) *Creature {
	t.Helper()
	c, err := New(dice.NewRoller(seed)).LoadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return c
}

func static(t *testing.T, e dice.Expr) int {
	t.Helper()
	v, ok := dice.Static(e)
	require.True(t, ok, "expected a static value, got %s", e)
	return v
}

func TestLoadRat(t *testing.T) {
	// 1d4 rolls 3 with seed 0
	rat := load(t, "rat.yaml", 0)
	s := rat.Stats

	assert.Equal(t, "Rat", s.Name)
	require.NotNil(t, s.Monster)
	assert.Equal(t, monster.Beast, s.Monster.Type)
	assert.Equal(t, monster.CRZero, s.Monster.CR)
	assert.Equal(t, 10, s.Monster.XP)
	assert.Equal(t, stats.Tiny, s.Size)
	assert.Equal(t, 2, s.Score(stats.Strength))
	assert.Equal(t, -1, s.Mod(stats.Constitution))

	walk, ok := s.Speed(stats.Walking)
	assert.True(t, ok)
	assert.Equal(t, 20, walk)
	_, ok = s.Speed(stats.Flying)
	assert.False(t, ok)

	assert.Equal(t, 2, static(t, s.Skills[stats.Perception].Get()))
	assert.Equal(t, 0, static(t, s.Skills[stats.Stealth].Get()))
	assert.Equal(t, 2, s.Health.MaxHP())
	assert.Equal(t, 2, s.Health.HP())
	assert.Equal(t, 1, s.Health.HitDice.Available(dice.D4))
	assert.Equal(t, 10, s.ArmorClass(nil))

	require.Len(t, rat.Attacks, 1)
	bite := rat.Attacks[0]
	assert.Equal(t, "Bite. Melee Weapon Attack: +0 to hit, Reach 5ft., one target. Hit: 1 piercing.", bite.String())
	assert.Equal(t, "The rat bites.", bite.Description)
}

func TestMaxHPIsAtLeastOne(t *testing.T) {
	// 1d4 rolls 1 with seed 1, and 1 - 1 = 0
	rat := load(t, "rat.yaml", 1)
	assert.Equal(t, 1, rat.Stats.Health.MaxHP())
}

func TestLoadGoblin(t *testing.T) {
	gob := load(t, "goblin.yaml", 0)
	s := gob.Stats

	assert.Equal(t, "humanoid (goblinoid), neutral evil", s.Monster.Describe())
	assert.Equal(t, 50, s.Monster.XP)
	assert.Equal(t, stats.Small, s.Size)

	climb, ok := s.Speed(stats.Climbing)
	assert.True(t, ok)
	assert.Equal(t, 15, climb)

	assert.Equal(t, 6, static(t, s.Skills[stats.Stealth].Get()))
	assert.Equal(t, 4, static(t, s.Saves[stats.Dexterity].Get()))
	assert.Equal(t, -1, static(t, s.Saves[stats.Strength].Get()))

	assert.Equal(t, stats.Handling{Vulnerable: true}, s.Damage.Kind(stats.Fire).Get())
	assert.Equal(t, stats.Handling{Resistant: true}, s.Damage.Kind(stats.Poison).Get())
	assert.False(t, s.ApplyCondition(stats.Charmed, cause.Indefinite).Applied)
	assert.True(t, s.ApplyCondition(stats.Poisoned, cause.Indefinite).Applied)

	assert.Equal(t, 7, s.Health.MaxHP())
	assert.Equal(t, 2, s.Health.HitDice.Available(dice.D6))
	assert.Equal(t, 15, s.ArmorClass(nil))

	require.Len(t, gob.Attacks, 2)
	assert.Equal(t, combat.Reach(5), gob.Attacks[0].Range)
	assert.Equal(t, "d6 + 2 slashing", gob.Attacks[0].Damage[0].String())
	assert.Equal(t, combat.RangedLong(80, 320), gob.Attacks[1].Range)
	assert.Equal(t, "Shortbow. Ranged Weapon Attack: +4 to hit, range 80/320 ft., one target. Hit: d6 + 2 piercing.", gob.Attacks[1].String())
}

func TestLoadPlayer(t *testing.T) {
	pc := load(t, "fighter.yaml", 0)
	s := pc.Stats

	assert.True(t, s.IsPlayer())
	assert.Equal(t, 2, s.Proficiency())
	assert.Equal(t, 5, static(t, s.Saves[stats.Strength].Get()))
	assert.Equal(t, 4, static(t, s.Saves[stats.Constitution].Get()))
	assert.Equal(t, 1, static(t, s.Saves[stats.Dexterity].Get()))
	assert.Equal(t, 16, s.ArmorClass(nil))
	require.Len(t, pc.Attacks, 1)
	assert.Equal(t, combat.Reach(5), pc.Attacks[0].Range)
}

const minimal = `
name: Blob
type: {type: monster, kind: ooze, cr: 1}
size: large
scores: {str: 10, dex: 10, con: 10, int: 10, wis: 10, cha: 10}
speed: 10
health: {max_hp: 10}
`

func TestParseDefaults(t *testing.T) {
	c, err := New(dice.NewRoller(0)).Parse([]byte(minimal))
	require.NoError(t, err)
	assert.Equal(t, 10, c.Stats.ArmorClass(nil))
	assert.Equal(t, 2, c.Stats.Proficiency())
	assert.Equal(t, 200, c.Stats.Monster.XP)
	assert.Equal(t, monster.Unaligned, c.Stats.Monster.Alignment)
	assert.Empty(t, c.Attacks)
}

func TestChallengeForms(t *testing.T) {
	tests := []struct {
		cr   string
		want string
	}{
		{"1/8", "1/8"},
		{"0.125", "1/8"},
		{"0.25", "1/4"},
		{"0.5", "1/2"},
		{"'5'", "5"},
		{"5.0", "5"},
		{"30", "30"},
	}
	for _, tt := range tests {
		t.Run(tt.cr, func(t *testing.T) {
			doc := `
name: X
type: {type: monster, kind: giant, cr: ` + tt.cr + `}
size: huge
scores: {str: 10, dex: 10, con: 10, int: 10, wis: 10, cha: 10}
speed: 40
health: {max_hp: 10}
`
			c, err := New(dice.NewRoller(0)).Parse([]byte(doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Stats.Monster.CR.String())
		})
	}
}

func TestParseErrorsNameTheField(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
		wantErr string
		target  error
	}{
		{"score out of range", [2]string{"str: 10", "str: 31"}, "scores.str: ability score out of range [1, 30]: 31", stats.ErrInvalidScore},
		{"missing score", [2]string{"cha: 10", "wis2: 10"}, "scores.wis2", nil},
		{"unknown size", [2]string{"size: large", "size: colossal"}, "size: unknown size", nil},
		{"cr 0 without xp", [2]string{"cr: 1", "cr: 0"}, "type: challenge rating 0 needs an explicit xp value", monster.ErrMissingXP},
		{"bad max hp", [2]string{"max_hp: 10", "max_hp: 2d"}, "health.max_hp", dice.ErrSyntax},
		{"missing max hp", [2]string{"{max_hp: 10}", "{hit_dice: [1d8]}"}, "health.max_hp: required field missing", ErrMissingField},
		{"unknown kind", [2]string{"kind: ooze", "kind: robot"}, "type: kind: unknown monster type", monster.ErrUnknownType},
		{"missing name", [2]string{"name: Blob", "title: Blob"}, "name: required field missing", ErrMissingField},
		{"player without proficiency", [2]string{"{type: monster, kind: ooze, cr: 1}", "player"}, "building Blob", stats.ErrNoProficiency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := replaceOnce(t, minimal, tt.replace[0], tt.replace[1])
			_, err := New(dice.NewRoller(0)).Parse([]byte(doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestModifierErrors(t *testing.T) {
	tests := []struct {
		name    string
		extra   string
		wantErr string
	}{
		{"unknown skill", "skills: {juggling: P}", "skills.juggling"},
		{"bad skill value", "skills: {stealth: expert}", "skills.stealth: unrecognized value"},
		{"bad save", "saves: {luck: P}", "saves.luck"},
		{"bad damage response", "damage_effectors: {fire: X}", "damage_effectors.fire: unrecognized value"},
		{"unknown damage kind", "damage_effectors: {sonic: R}", "damage_effectors.sonic"},
		{"bad condition response", "condition_immunities: {prone: R}", "condition_immunities.prone"},
		{"bad range", "actions: [{name: Zap, range: [60, 30]}]", "actions[0]: range"},
		{"bad damage", "actions: [{name: Zap, damage: [[1d4]]}]", "actions[0]: damage[0]"},
		{"unknown action", "actions: [{type: spell, name: Zap}]", "actions[0]: type"},
		{"ranged without range", "actions: [{name: Zap, attack_type: ranged}]", "actions[0]: range: required field missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(dice.NewRoller(0)).Parse([]byte(minimal + tt.extra + "\n"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := New(nil).LoadFile(filepath.Join("testdata", "nope.yaml"))
	assert.ErrorContains(t, err, "reading statblock")
}

func replaceOnce(t *testing.T, s, from, to string) string {
	t.Helper()
	require.Contains(t, s, from)
	return strings.Replace(s, from, to, 1)
}
