package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/games/snake/bot"
	"github.com/vovakirdan/snake-arena/internal/platform/tui"
	"github.com/vovakirdan/snake-arena/internal/spectator"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch live bot games",
	Long: `Watch the bot-controlled games side by side.

The roster, cadence and restart delay come from the spectator section of
the config. Press Esc or Q to leave.`,
	Run: runWatch,
}

func runWatch(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	logFile := openLogFile()
	defer logFile.Close()
	logger := newLogger(logFile, "spectator", cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := spectator.NewHub(hubConfig(cfg), bot.Greedy{}, logger, seedOrNow())
	go func() {
		_ = hub.Run(ctx)
	}()

	width, height := terminalSize()
	if err := tui.RunSpectator(ctx, hub, core.RuntimeConfig{ScreenW: width, ScreenH: height}); err != nil {
		fail("running spectator: %v", err)
	}
}
