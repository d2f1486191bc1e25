package monster

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownType      = errors.New("unknown monster type")
	ErrUnknownAlignment = errors.New("unknown alignment")
)

// Type is the broad category of a monster.
type Type int

const (
	Aberration Type = iota
	Beast
	Celestial
	Construct
	Dragon
	Elemental
	Fey
	Fiend
	Giant
	Humanoid
	Monstrosity
	Ooze
	Plant
	Undead
	numTypes
)

var typeNames = [numTypes]string{
	"aberration", "beast", "celestial", "construct", "dragon", "elemental", "fey",
	"fiend", "giant", "humanoid", "monstrosity", "ooze", "plant", "undead",
}

// Types returns every monster type in table order.
func Types() []Type {
	out := make([]Type, numTypes)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

func (t Type) String() string {
	if t < 0 || t >= numTypes {
		return "unknown"
	}
	return typeNames[t]
}

// ParseType is case-insensitive.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Alignment packs the lawful/chaotic axis in the low three bits and the
// good/evil axis in the next three.
type Alignment uint8

const (
	Unaligned Alignment = 0

	LawfulGood     Alignment = 0b001_001
	LawfulNeutral  Alignment = 0b010_001
	LawfulEvil     Alignment = 0b100_001
	NeutralGood    Alignment = 0b001_010
	TrueNeutral    Alignment = 0b010_010
	NeutralEvil    Alignment = 0b100_010
	ChaoticGood    Alignment = 0b001_100
	ChaoticNeutral Alignment = 0b010_100
	ChaoticEvil    Alignment = 0b100_100

	// AnyAlignment sets every bit; the creature takes on whatever
	// alignment the encounter needs.
	AnyAlignment Alignment = 0b111_111
)

var (
	lawAxis  = [3]string{"lawful", "neutral", "chaotic"}
	goodAxis = [3]string{"good", "neutral", "evil"}
)

func (a Alignment) String() string {
	switch a {
	case Unaligned:
		return "unaligned"
	case TrueNeutral:
		return "neutral"
	case AnyAlignment:
		return "any alignment"
	}
	var parts []string
	for i, name := range lawAxis {
		if a&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	for i, name := range goodAxis {
		if a&(1<<(i+3)) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, " ")
}

// ParseAlignment accepts "lawful good" style pairs, "neutral",
// "true neutral", "unaligned" and "any alignment".
func ParseAlignment(s string) (Alignment, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch lower {
	case "unaligned":
		return Unaligned, nil
	case "neutral", "true neutral":
		return TrueNeutral, nil
	case "any alignment", "any":
		return AnyAlignment, nil
	}
	law, good, ok := strings.Cut(lower, " ")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlignment, s)
	}
	var a Alignment
	switch law {
	case "lawful":
		a |= 0b001
	case "neutral":
		a |= 0b010
	case "chaotic":
		a |= 0b100
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlignment, s)
	}
	switch good {
	case "good":
		a |= 0b001_000
	case "neutral":
		a |= 0b010_000
	case "evil":
		a |= 0b100_000
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlignment, s)
	}
	return a, nil
}

// Monster is the monster-specific part of a stat block.
type Monster struct {
	Type      Type
	Tags      []string
	CR        CR
	XP        int
	Alignment Alignment
}

// New builds a Monster, taking XP from the challenge table unless xp is
// given.
func New(t Type, cr CR, xp *int, alignment Alignment, tags ...string) (*Monster, error) {
	if !cr.Valid() {
		return nil, fmt.Errorf("%w: index %d", ErrUnknownCR, cr)
	}
	resolved, err := ResolveXP(cr, xp)
	if err != nil {
		return nil, err
	}
	return &Monster{Type: t, Tags: tags, CR: cr, XP: resolved, Alignment: alignment}, nil
}

// Describe renders the stat block type line, e.g. "humanoid (goblinoid),
// neutral evil".
func (m *Monster) Describe() string {
	var sb strings.Builder
	sb.WriteString(m.Type.String())
	if len(m.Tags) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(m.Tags, ", "))
		sb.WriteString(")")
	}
	sb.WriteString(", ")
	sb.WriteString(m.Alignment.String())
	return sb.String()
}
