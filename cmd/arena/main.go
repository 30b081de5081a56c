// arena is a terminal Snake arena: play locally or over SSH, watch bot games,
// and keep a shared leaderboard.
//
// Usage:
//
//	arena play               - Start the arena menu in this terminal
//	arena play --mode walls  - Jump straight into a game
//	arena watch              - Watch live bot games
//	arena bots               - List bot policies and the spectator roster
//	arena scores             - Print the leaderboard
//	arena serve              - Serve the arena over SSH and the JSON API over HTTP
//	arena signup             - Create an account
//	arena seed               - Load demo users and scores into an empty database
//
// Global flags:
//
//	--config <path>     - Config file (default: search ~/.snake-arena, ./configs)
//	--db <path>         - Database path (default from config)
//	--seed <value>      - RNG seed for reproducible games
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/snake-arena/internal/config"
	"github.com/vovakirdan/snake-arena/internal/games/snake"
	"github.com/vovakirdan/snake-arena/internal/registry"
	"github.com/vovakirdan/snake-arena/internal/spectator"
	"github.com/vovakirdan/snake-arena/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagSeed     int64
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Snake Arena - Snake in your terminal, with friends and bots",
	Long: `Snake Arena is a terminal Snake game with accounts, a shared
leaderboard and live bot games to watch.

Available commands:
  play     - Play in this terminal
  watch    - Watch live bot games
  bots     - List bot policies and the roster
  scores   - Print the leaderboard
  serve    - Serve the arena over SSH and HTTP
  signup   - Create an account
  seed     - Load demo data

Examples:
  arena play
  arena play --mode pass-through
  arena scores --mode walls --limit 5
  arena serve --ssh :2222 --http :8080`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to database (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(botsCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(seedCmd)
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// loadConfig reads .env, the config file and the global flag overrides.
func loadConfig() config.Config {
	if err := config.LoadEnv(); err != nil {
		fail("%v", err)
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fail("%v", err)
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg
}

// newLogger builds a charmbracelet logger at the configured level.
func newLogger(w io.Writer, prefix, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// openLogFile opens ~/.snake-arena/arena.log for a full-screen session.
// Logging is discarded when the file cannot be opened.
func openLogFile() io.WriteCloser {
	dir := config.DataDir()
	if dir == "" {
		return nopCloser{io.Discard}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nopCloser{io.Discard}
	}
	f, err := os.OpenFile(filepath.Join(dir, "arena.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nopCloser{io.Discard}
	}
	return f
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func openStore(cfg config.Config) *storage.Store {
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		fail("could not open database: %v", err)
	}
	return store
}

// terminalSize returns the size of stdout, or 80x24.
func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 80, 24
}

func seedOrNow() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}

// hubConfig maps the spectator config section onto the hub.
func hubConfig(cfg config.Config) spectator.Config {
	hc := spectator.DefaultConfig()
	hc.TickInterval = cfg.Spectator.TickInterval
	hc.RestartAfter = cfg.Spectator.RestartAfterTicks
	hc.Bots = make([]spectator.BotSpec, 0, len(cfg.Spectator.Bots))
	for _, b := range cfg.Spectator.Bots {
		mode, err := snake.ParseMode(b.Mode)
		if err != nil {
			mode = snake.ModeWalls
		}
		policy, err := registry.Create(b.Policy)
		if err != nil {
			fail("spectator bot %s: %v", b.Username, err)
		}
		hc.Bots = append(hc.Bots, spectator.BotSpec{Username: b.Username, Mode: mode, Policy: policy})
	}
	return hc
}
