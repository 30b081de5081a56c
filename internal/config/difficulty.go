package config

import (
	"fmt"
	"time"

	"github.com/vovakirdan/snake-arena/internal/games/snake"
)

// SpeedupConfig shortens the tick interval as the player scores.
type SpeedupConfig struct {
	Enabled     bool          `yaml:"enabled"`
	PerFood     time.Duration `yaml:"per_food"`
	MinInterval time.Duration `yaml:"min_interval"`
}

func (s SpeedupConfig) validate() error {
	if !s.Enabled {
		return nil
	}
	if s.PerFood < 0 {
		return fmt.Errorf("game.speedup.per_food must not be negative")
	}
	if s.MinInterval <= 0 {
		return fmt.Errorf("game.speedup.min_interval must be positive")
	}
	return nil
}

// IntervalFor returns the tick interval for a game at score.
// Without speedup it is always TickInterval.
func (g GameConfig) IntervalFor(score int) time.Duration {
	base := g.TickInterval
	if !g.Speedup.Enabled {
		return base
	}
	eaten := score / snake.FoodReward
	d := base - time.Duration(eaten)*g.Speedup.PerFood
	floor := min(g.Speedup.MinInterval, base)
	return max(d, floor)
}
