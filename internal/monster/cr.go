// Package monster holds the monster reference tables: challenge rating,
// experience, creature type and alignment.
package monster

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownCR = errors.New("unknown challenge rating")
	// ErrMissingXP is returned for challenge 0, whose XP (0 or 10) must be
	// stated explicitly.
	ErrMissingXP = errors.New("challenge rating 0 needs an explicit xp value")
)

// CR is a challenge rating, stored as its index in the 34-entry table
// 0, 1/8, 1/4, 1/2, 1, 2, ..., 30.
type CR uint8

const (
	CRZero    CR = 0
	CREighth  CR = 1
	CRQuarter CR = 2
	CRHalf    CR = 3
)

const numCRs = 34

var crNames = [numCRs]string{
	"0", "1/8", "1/4", "1/2",
	"1", "2", "3", "4", "5", "6", "7", "8", "9", "10",
	"11", "12", "13", "14", "15", "16", "17", "18", "19", "20",
	"21", "22", "23", "24", "25", "26", "27", "28", "29", "30",
}

var crProficiency = [numCRs]int{
	2, 2, 2, 2, 2, 2, 2, 2,
	3, 3, 3, 3,
	4, 4, 4, 4,
	5, 5, 5, 5,
	6, 6, 6, 6,
	7, 7, 7, 7,
	8, 8, 8, 8,
	9, 9,
}

// crXP is zero for CR 0, which has no single value.
var crXP = [numCRs]int{
	0, 25, 50, 100,
	200, 450, 700, 1_100, 1_800, 2_300, 2_900, 3_900, 5_000, 5_900,
	7_200, 8_400, 10_000, 11_500, 13_000, 15_000, 18_000, 20_000, 22_000, 25_000,
	33_000, 41_000, 50_000, 62_000, 75_000, 90_000, 105_000, 120_000, 135_000, 155_000,
}

// IntCR returns the challenge rating for a whole number in [1, 30], or 0.
func IntCR(rating int) (CR, error) {
	if rating < 0 || rating > 30 {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCR, rating)
	}
	if rating == 0 {
		return CRZero, nil
	}
	return CR(rating + 3), nil
}

// ParseCR accepts "0", "1/8", "1/4", "1/2" and whole numbers up to 30.
func ParseCR(s string) (CR, error) {
	s = strings.TrimSpace(s)
	for i, name := range crNames {
		if name == s {
			return CR(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return IntCR(n)
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCR, s)
}

func (c CR) String() string {
	if int(c) >= numCRs {
		return "CR(?)"
	}
	return crNames[c]
}

// Valid reports whether c is in the table.
func (c CR) Valid() bool {
	return int(c) < numCRs
}

// ProficiencyBonus returns the proficiency bonus a monster of this
// challenge has.
func (c CR) ProficiencyBonus() int {
	if !c.Valid() {
		return 0
	}
	return crProficiency[c]
}

// XP returns the experience awarded for the challenge. CR 0 reports false.
func (c CR) XP() (int, bool) {
	if !c.Valid() || c == CRZero {
		return 0, false
	}
	return crXP[c], true
}

// ResolveXP returns explicit when given, or the table value for c.
func ResolveXP(c CR, explicit *int) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}
	xp, ok := c.XP()
	if !ok {
		return 0, ErrMissingXP
	}
	return xp, nil
}
