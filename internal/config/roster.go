package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Roster lists the combatants a match starts with.
type Roster struct {
	Stage      StageEntry       `yaml:"stage"`
	Combatants []CombatantEntry `yaml:"combatants"`
}

// StageEntry tunes the stage geometry in pixels.
type StageEntry struct {
	HalfWidth int `yaml:"halfWidth"`
}

// CombatantEntry binds a combatant slot to a compiled pack file.
type CombatantEntry struct {
	ID        string `yaml:"id"`
	Character string `yaml:"character"`
	PackPath  string `yaml:"pack"`
	X         int    `yaml:"x"`
	Y         int    `yaml:"y"`
	Facing    int8   `yaml:"facing"`
	MaxHealth int32  `yaml:"maxHealth"`
}

// LoadRoster reads and validates a roster file.
func LoadRoster(path string) (Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return Roster{}, fmt.Errorf("config: open roster: %w", err)
	}
	defer f.Close()
	return ParseRoster(f)
}

// ParseRoster decodes a roster document.
func ParseRoster(r io.Reader) (Roster, error) {
	var roster Roster
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&roster); err != nil {
		return Roster{}, fmt.Errorf("config: parse roster: %w", err)
	}
	if len(roster.Combatants) == 0 {
		return Roster{}, fmt.Errorf("config: roster has no combatants")
	}
	seen := make(map[string]bool, len(roster.Combatants))
	for i, entry := range roster.Combatants {
		if entry.ID == "" {
			return Roster{}, fmt.Errorf("config: roster combatant %d has no id", i)
		}
		if seen[entry.ID] {
			return Roster{}, fmt.Errorf("config: duplicate roster id %q", entry.ID)
		}
		seen[entry.ID] = true
		if entry.PackPath == "" {
			return Roster{}, fmt.Errorf("config: roster combatant %q has no pack path", entry.ID)
		}
	}
	return roster, nil
}
