package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-arena/internal/account"
	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/games/snake"
	"github.com/vovakirdan/snake-arena/internal/games/snake/bot"
	"github.com/vovakirdan/snake-arena/internal/platform/tui"
	"github.com/vovakirdan/snake-arena/internal/spectator"
)

var flagPlayMode string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play Snake in this terminal",
	Long: `Start the arena in this terminal.

Without --mode you get the menu: play either mode, watch live bot games,
browse the leaderboard, and log in so your scores are saved.

Controls:
  Arrows/WASD  - Steer
  Space/P      - Start / pause / resume
  R            - New game (paused or game over)
  M            - Switch walls / pass-through (before starting)
  Esc/B        - Back to menu
  Q/Ctrl+C     - Quit

Logs are written to ~/.snake-arena/arena.log.

Examples:
  arena play
  arena play --mode pass-through
  arena play --seed 42`,
	Run: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPlayMode, "mode", "", "Start a game right away: walls or pass-through")
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	autoStart := false
	mode := cfg.Game.Mode()
	if flagPlayMode != "" {
		m, err := snake.ParseMode(flagPlayMode)
		if err != nil {
			fail("%v", err)
		}
		mode, autoStart = m, true
	}

	logFile := openLogFile()
	defer logFile.Close()
	logger := newLogger(logFile, "arena", cfg.Log.Level)

	store := openStore(cfg)
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := spectator.NewHub(hubConfig(cfg), bot.Greedy{}, logger.WithPrefix("spectator"), seedOrNow())
	go func() {
		_ = hub.Run(ctx)
	}()

	width, height := terminalSize()
	rc := core.RuntimeConfig{
		ScreenW:      width,
		ScreenH:      height,
		TickInterval: cfg.Game.TickInterval,
		Seed:         flagSeed,
	}

	deps := tui.Deps{
		Accounts:  account.NewService(store, account.WithLogger(logger.WithPrefix("account"))),
		Scores:    store,
		Hub:       hub,
		Pace:      cfg.Game.IntervalFor,
		Mode:      mode,
		AutoStart: autoStart,
		Logger:    logger,
	}

	logger.Info("session started", "mode", mode, "db", cfg.Storage.DBPath)
	if err := tui.Run(ctx, deps, rc); err != nil {
		fail("running game: %v", err)
	}
}
