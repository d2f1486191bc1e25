package monster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCR(t *testing.T) {
	tests := []struct {
		in    string
		want  CR
		bonus int
		xp    int
	}{
		{"1/8", CREighth, 2, 25},
		{"1/4", CRQuarter, 2, 50},
		{"1/2", CRHalf, 2, 100},
		{"1", CR(4), 2, 200},
		{"4", CR(7), 2, 1_100},
		{"5", CR(8), 3, 1_800},
		{"17", CR(20), 6, 18_000},
		{"30", CR(33), 9, 155_000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cr, err := ParseCR(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cr)
			assert.Equal(t, tt.in, cr.String())
			assert.Equal(t, tt.bonus, cr.ProficiencyBonus())
			xp, ok := cr.XP()
			assert.True(t, ok)
			assert.Equal(t, tt.xp, xp)
		})
	}
}

func TestParseCRErrors(t *testing.T) {
	for _, in := range []string{"31", "-1", "1/3", "abc", ""} {
		_, err := ParseCR(in)
		assert.ErrorIs(t, err, ErrUnknownCR, in)
	}
}

func TestCRZeroNeedsXP(t *testing.T) {
	_, ok := CRZero.XP()
	assert.False(t, ok)

	_, err := New(Beast, CRZero, nil, Unaligned)
	assert.ErrorIs(t, err, ErrMissingXP)

	ten := 10
	m, err := New(Beast, CRZero, &ten, Unaligned)
	require.NoError(t, err)
	assert.Equal(t, 10, m.XP)
	assert.Equal(t, 2, m.CR.ProficiencyBonus())
}

func TestParseType(t *testing.T) {
	assert.Len(t, Types(), 14)
	for _, ty := range Types() {
		got, err := ParseType(ty.String())
		require.NoError(t, err)
		assert.Equal(t, ty, got)
	}
	got, err := ParseType("  Beast ")
	require.NoError(t, err)
	assert.Equal(t, Beast, got)

	_, err = ParseType("robot")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestAlignment(t *testing.T) {
	tests := []struct {
		in   string
		want Alignment
		out  string
	}{
		{"unaligned", Unaligned, "unaligned"},
		{"lawful good", LawfulGood, "lawful good"},
		{"Neutral Good", NeutralGood, "neutral good"},
		{"chaotic good", ChaoticGood, "chaotic good"},
		{"lawful neutral", LawfulNeutral, "lawful neutral"},
		{"neutral", TrueNeutral, "neutral"},
		{"true neutral", TrueNeutral, "neutral"},
		{"neutral neutral", TrueNeutral, "neutral"},
		{"chaotic neutral", ChaoticNeutral, "chaotic neutral"},
		{"lawful evil", LawfulEvil, "lawful evil"},
		{"neutral evil", NeutralEvil, "neutral evil"},
		{"chaotic evil", ChaoticEvil, "chaotic evil"},
		{"any alignment", AnyAlignment, "any alignment"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlignment(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.out, got.String())
		})
	}

	for _, in := range []string{"good", "lawful", "evil good", "chaotic awesome"} {
		_, err := ParseAlignment(in)
		assert.ErrorIs(t, err, ErrUnknownAlignment, in)
	}
}

func TestDescribe(t *testing.T) {
	cr, err := IntCR(1)
	require.NoError(t, err)
	m, err := New(Humanoid, cr, nil, NeutralEvil, "goblinoid")
	require.NoError(t, err)
	assert.Equal(t, "humanoid (goblinoid), neutral evil", m.Describe())
	assert.Equal(t, 200, m.XP)
}
