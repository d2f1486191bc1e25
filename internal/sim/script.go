package sim

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoCombatants is returned for a script without combatants.
	ErrNoCombatants = errors.New("script has no combatants")
	// ErrBadCommand is returned for a command naming zero or several actions.
	ErrBadCommand = errors.New("command must name exactly one action")
)

// Script is a scripted encounter: who fights where, and the commands the
// acting combatant issues, in order.
type Script struct {
	Name string `yaml:"name"`
	// Seed overrides the runner's seed when set.
	Seed       *uint64     `yaml:"seed"`
	Arena      *ArenaSize  `yaml:"arena"`
	Combatants []Combatant `yaml:"combatants"`
	Commands   []Command   `yaml:"commands"`
}

// ArenaSize is a rectangle in feet.
type ArenaSize struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Combatant places a stat block in the arena.
type Combatant struct {
	// Name defaults to the stat block's name.
	Name      string     `yaml:"name"`
	Statblock string     `yaml:"statblock"`
	Position  [2]float64 `yaml:"position"`
	// Initiative is rolled when unset.
	Initiative *int `yaml:"initiative"`
}

// Command is one step of the script. Exactly one field is set.
type Command struct {
	Move      *Move      `yaml:"move,omitempty"`
	Attack    *Attack    `yaml:"attack,omitempty"`
	EndTurn   bool       `yaml:"end_turn,omitempty"`
	Heal      *Heal      `yaml:"heal,omitempty"`
	Condition *Condition `yaml:"condition,omitempty"`
	DeathSave bool       `yaml:"death_save,omitempty"`
}

// Move displaces the acting combatant.
type Move struct {
	// Mode defaults to walking.
	Mode string  `yaml:"mode"`
	DX   float64 `yaml:"dx"`
	DY   float64 `yaml:"dy"`
}

// Attack uses one of the acting combatant's attacks on the square at
// (dx, dy) from it.
type Attack struct {
	Action string  `yaml:"action"`
	DX     float64 `yaml:"dx"`
	DY     float64 `yaml:"dy"`
}

// Heal restores hit points to the acting combatant.
type Heal struct {
	Amount int `yaml:"amount"`
}

// Condition applies or removes a condition on the acting combatant.
type Condition struct {
	Apply  string `yaml:"apply"`
	Remove string `yaml:"remove"`
}

// Kind names the action a command carries.
func (c Command) Kind() string {
	switch {
	case c.Move != nil:
		return "move"
	case c.Attack != nil:
		return "attack"
	case c.EndTurn:
		return "end_turn"
	case c.Heal != nil:
		return "heal"
	case c.Condition != nil:
		return "condition"
	case c.DeathSave:
		return "death_save"
	default:
		return "none"
	}
}

func (c Command) count() int {
	n := 0
	for _, set := range []bool{c.Move != nil, c.Attack != nil, c.EndTurn, c.Heal != nil, c.Condition != nil, c.DeathSave} {
		if set {
			n++
		}
	}
	return n
}

// ParseScript decodes and validates a script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScript reads the script at path. A script without a name is named
// after the file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}
	s, err := ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("parsing script %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// Validate checks the script's shape; game rules are left to the replay.
func (s *Script) Validate() error {
	if len(s.Combatants) == 0 {
		return ErrNoCombatants
	}
	for i, c := range s.Combatants {
		if c.Statblock == "" {
			return fmt.Errorf("combatants[%d]: statblock is required", i)
		}
	}
	if s.Arena != nil && (s.Arena.Width <= 0 || s.Arena.Height <= 0) {
		return fmt.Errorf("arena must be positive, got %gx%g", s.Arena.Width, s.Arena.Height)
	}
	for i, c := range s.Commands {
		if c.count() != 1 {
			return fmt.Errorf("commands[%d]: %w", i, ErrBadCommand)
		}
		if c.Condition != nil && (c.Condition.Apply == "") == (c.Condition.Remove == "") {
			return fmt.Errorf("commands[%d]: condition needs exactly one of apply or remove", i)
		}
	}
	return nil
}
