// Package config loads server settings from the environment and the match
// roster from a YAML file.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Server holds the environment-driven server settings.
type Server struct {
	Addr string `env:"FIGHTSTATE_ADDR" envDefault:":8080"`

	TickRate         int `env:"FIGHTSTATE_TICK_RATE" envDefault:"60"`
	KeyframeInterval int `env:"FIGHTSTATE_KEYFRAME_INTERVAL" envDefault:"6"`
	JournalCapacity  int `env:"FIGHTSTATE_JOURNAL_CAPACITY" envDefault:"120"`
	CommandCapacity  int `env:"FIGHTSTATE_COMMAND_CAPACITY" envDefault:"256"`
	PerActorLimit    int `env:"FIGHTSTATE_PER_ACTOR_LIMIT" envDefault:"16"`

	RosterPath string `env:"FIGHTSTATE_ROSTER" envDefault:"roster.yaml"`

	LogSeverity string `env:"FIGHTSTATE_LOG_SEVERITY" envDefault:"info"`
	LogJSONPath string `env:"FIGHTSTATE_LOG_JSON_PATH"`
}

// LoadServer reads the server configuration from the environment.
func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) validate() error {
	if c.TickRate <= 0 || c.TickRate > 240 {
		return fmt.Errorf("config: tick rate %d out of range 1..240", c.TickRate)
	}
	if c.KeyframeInterval <= 0 {
		return fmt.Errorf("config: keyframe interval %d must be positive", c.KeyframeInterval)
	}
	if c.JournalCapacity <= 0 {
		return fmt.Errorf("config: journal capacity %d must be positive", c.JournalCapacity)
	}
	return nil
}
