package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/xander/internal/cause"
	"github.com/udisondev/xander/internal/dice"
)

func TestHandlingOrder(t *testing.T) {
	tests := []struct {
		name string
		h    Handling
		want int
	}{
		{"none", Handling{}, 7},
		{"resistant", Handling{Resistant: true}, 3},
		{"vulnerable", Handling{Vulnerable: true}, 14},
		{"resistant then vulnerable", Handling{Resistant: true, Vulnerable: true}, 6},
		{"immune", Handling{Immune: true}, 0},
		{"immune beats everything", Handling{Immune: true, Resistant: true, Vulnerable: true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.h.Apply(dice.Modifier(7)).Result())
		})
	}

	both := Handling{Resistant: true, Vulnerable: true}.Apply(dice.Modifier(7))
	assert.Equal(t, "7 / 2 * 2", both.String())
}

func TestTakeDamagePerKind(t *testing.T) {
	s := newBlock(t)
	s.Damage.Kind(Fire).Insert(Resistance{})

	d := Damage{Parts: []DamagePart{
		{Kind: Fire, Amount: dice.Modifier(7)},
		{Kind: Cold, Amount: dice.Modifier(2)},
	}}
	taken, res := s.TakeDamage(d)

	assert.Equal(t, DamageNothing, res)
	assert.Equal(t, 5, taken.Total())
	assert.True(t, taken.Parts[0].Handling.Resistant)
	assert.False(t, taken.Parts[1].Handling.Resistant)
	assert.Equal(t, 15, s.Health.HP())
}

func TestImmunityAndVulnerability(t *testing.T) {
	s := newBlock(t)
	s.Damage.Kind(Poison).Insert(Immunity{})
	s.Damage.Kind(Radiant).Insert(Vulnerability{})

	taken, _ := s.TakeDamage(Damage{Parts: []DamagePart{
		{Kind: Poison, Amount: dice.Modifier(9)},
		{Kind: Radiant, Amount: dice.Modifier(4)},
	}})
	assert.Equal(t, 8, taken.Total())
	assert.Equal(t, 12, s.Health.HP())
}

func TestNonmagicalRule(t *testing.T) {
	s := newBlock(t)
	attacker := newBlock(t)
	s.Damage.AddRule(DamageRule{
		Name:     "nonmagical slashing",
		Matches:  Nonmagical(Slashing),
		Handling: Handling{Resistant: true},
	})

	mundane := Damage{Parts: []DamagePart{{Kind: Slashing, Amount: dice.Modifier(8), Cause: FromEntity(attacker, false)}}}
	magic := Damage{Parts: []DamagePart{{Kind: Slashing, Amount: dice.Modifier(8), Cause: FromEntity(attacker, true)}}}
	other := Damage{Parts: []DamagePart{{Kind: Piercing, Amount: dice.Modifier(8)}}}

	assert.Equal(t, 4, s.Damage.Resolve(mundane).Total())
	assert.Equal(t, 8, s.Damage.Resolve(magic).Total())
	assert.Equal(t, 8, s.Damage.Resolve(other).Total())
}

func TestDamageRuleExpires(t *testing.T) {
	s := newBlock(t)
	src := cause.New("stoneskin", cause.Magic)
	s.Damage.AddRule(DamageRule{Handling: Handling{Immune: true}, Lifespan: cause.Of(src)})

	d := Damage{Parts: []DamagePart{{Kind: Fire, Amount: dice.Modifier(6)}}}
	assert.Equal(t, 0, s.Damage.Resolve(d).Total())

	src.End()
	assert.Equal(t, 6, s.Damage.Resolve(d).Total())
}

func TestDamageTotalClamps(t *testing.T) {
	d := Damage{Parts: []DamagePart{
		{Kind: Fire, Amount: dice.Modifier(2)},
		{Kind: Cold, Amount: dice.Modifier(-5)},
	}}
	assert.Equal(t, 0, d.Total())
}

func TestNewDamage(t *testing.T) {
	attacker := newBlock(t)
	d := NewDamage(FromEntity(attacker, false), dice.NewRoller(0),
		DamageRoll{Amount: dice.Add(dice.D6.Expr(), dice.Const(3)), Kind: Piercing})

	require.Len(t, d.Parts, 1)
	assert.Equal(t, 5, d.Total())
	assert.Equal(t, "2 + 3 piercing", d.String())
	assert.Same(t, attacker, d.Parts[0].Cause.Entity())
}

func TestEnvironmentCause(t *testing.T) {
	src := cause.New("lava", cause.Environment)
	c := Environment(src)
	assert.Nil(t, c.Entity())
	assert.Same(t, src, c.Source)
}

func TestParseDamageKind(t *testing.T) {
	k, err := ParseDamageKind("Necrotic")
	require.NoError(t, err)
	assert.Equal(t, Necrotic, k)

	_, err = ParseDamageKind("sonic")
	assert.Error(t, err)
}
