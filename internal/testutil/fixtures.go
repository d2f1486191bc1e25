package testutil

import (
	"github.com/stretchr/testify/require"

	"github.com/udisondev/xander/internal/stats"
)

// T is satisfied by both *testing.T and *rapid.T.
type T interface {
	require.TestingT
	Helper()
}

// FighterParams describes a medium fighter: DEX 14 (AC 12), 30 ft walking
// speed, proficiency +2 and 20 HP.
func FighterParams(name string) stats.Params {
	pb := 2
	return stats.Params{
		Name:             name,
		Size:             stats.Medium,
		Scores:           [stats.NumAbilities]int{10, 14, 10, 10, 10, 10},
		Speeds:           map[stats.SpeedMode]int{stats.Walking: 30},
		ProficiencyBonus: &pb,
		MaxHP:            20,
	}
}

// GiantParams describes a huge brute with 40 ft walking speed and 105 HP.
func GiantParams(name string) stats.Params {
	pb := 3
	return stats.Params{
		Name:             name,
		Size:             stats.Huge,
		Scores:           [stats.NumAbilities]int{21, 8, 19, 5, 9, 6},
		Speeds:           map[stats.SpeedMode]int{stats.Walking: 40},
		ProficiencyBonus: &pb,
		MaxHP:            105,
	}
}

// Build builds p and fails the test on error.
func Build(t T, p stats.Params) *stats.StatBlock {
	t.Helper()
	s, err := stats.New(p)
	require.NoError(t, err)
	return s
}
