// Package config provides YAML-based configuration for the arena: game
// cadence, the spectator roster, storage, servers and auth.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/snake-arena/internal/games/snake"
)

// Config is the full arena configuration.
type Config struct {
	Game      GameConfig      `yaml:"game"`
	Spectator SpectatorConfig `yaml:"spectator"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
}

// GameConfig controls interactive games.
type GameConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	DefaultMode  string        `yaml:"default_mode"`
	Speedup      SpeedupConfig `yaml:"speedup"`
}

// SpectatorConfig controls the bot games shown to spectators.
type SpectatorConfig struct {
	TickInterval      time.Duration `yaml:"tick_interval"`
	RestartAfterTicks int           `yaml:"restart_after_ticks"`
	Bots              []BotConfig   `yaml:"bots"`
}

// BotConfig is one spectator bot.
type BotConfig struct {
	Username string `yaml:"username"`
	Mode     string `yaml:"mode"`
	// Policy names a registered bot policy; empty means greedy.
	Policy string `yaml:"policy"`
}

// StorageConfig locates the database.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// ServerConfig holds listener settings for `arena serve`.
type ServerConfig struct {
	SSHAddr     string        `yaml:"ssh_addr"`
	HTTPAddr    string        `yaml:"http_addr"`
	HostKeyPath string        `yaml:"host_key_path"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// AuthConfig controls API tokens.
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	CookieName string        `yaml:"cookie_name"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Game: GameConfig{
			TickInterval: 150 * time.Millisecond,
			DefaultMode:  string(snake.ModeWalls),
			Speedup: SpeedupConfig{
				Enabled:     false,
				PerFood:     3 * time.Millisecond,
				MinInterval: 60 * time.Millisecond,
			},
		},
		Spectator: SpectatorConfig{
			TickInterval:      150 * time.Millisecond,
			RestartAfterTicks: 20,
			Bots: []BotConfig{
				{Username: "speedrunner", Mode: string(snake.ModeWalls), Policy: "greedy"},
				{Username: "snakemaster", Mode: string(snake.ModePassThrough), Policy: "greedy"},
			},
		},
		Storage: StorageConfig{
			DBPath: "~/.snake-arena/arena.db",
		},
		Server: ServerConfig{
			SSHAddr:     ":2222",
			HTTPAddr:    ":8080",
			HostKeyPath: ".ssh/arena_ed25519",
			IdleTimeout: 10 * time.Minute,
		},
		Auth: AuthConfig{
			JWTSecret:  "",
			TokenTTL:   14 * 24 * time.Hour,
			CookieName: "snake_token",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Game.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("game.tick_interval must be positive, got %s", c.Game.TickInterval))
	}
	if _, err := snake.ParseMode(c.Game.DefaultMode); err != nil {
		errs = append(errs, fmt.Errorf("game.default_mode: %w", err))
	}
	if err := c.Game.Speedup.validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Spectator.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("spectator.tick_interval must be positive, got %s", c.Spectator.TickInterval))
	}
	if c.Spectator.RestartAfterTicks < 0 {
		errs = append(errs, fmt.Errorf("spectator.restart_after_ticks must not be negative"))
	}
	for i, b := range c.Spectator.Bots {
		if b.Username == "" {
			errs = append(errs, fmt.Errorf("spectator.bots[%d]: username is required", i))
		}
		if _, err := snake.ParseMode(b.Mode); err != nil {
			errs = append(errs, fmt.Errorf("spectator.bots[%d]: %w", i, err))
		}
	}
	if c.Storage.DBPath == "" {
		errs = append(errs, errors.New("storage.db_path is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL))
	}
	if c.Auth.CookieName == "" {
		errs = append(errs, errors.New("auth.cookie_name is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Mode returns the parsed default game mode, falling back to walls.
func (g GameConfig) Mode() snake.Mode {
	m, err := snake.ParseMode(g.DefaultMode)
	if err != nil {
		return snake.ModeWalls
	}
	return m
}
