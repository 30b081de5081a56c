package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-arena/internal/account"
	"github.com/vovakirdan/snake-arena/internal/api"
	"github.com/vovakirdan/snake-arena/internal/games/snake/bot"
	"github.com/vovakirdan/snake-arena/internal/platform/tui"
	"github.com/vovakirdan/snake-arena/internal/spectator"
)

var (
	flagSSHAddr     string
	flagHTTPAddr    string
	flagHostKey     string
	flagIdleTimeout time.Duration
	flagSeedDemo    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the arena over SSH and the JSON API over HTTP",
	Long: `Start the SSH server and the HTTP API. Both share one database and
one set of live bot games.

Each SSH connection gets its own session with the arena menu and its own
login. The HTTP API serves accounts, the leaderboard and the live games
as JSON. Set either address to "off" to disable that listener.

Tokens are signed with auth.jwt_secret (or SNAKE_JWT_SECRET). Without one
an ephemeral secret is generated and tokens do not survive a restart.

Examples:
  arena serve
  arena serve --ssh :2222 --http :8080
  arena serve --http off
  arena serve --host-key ./arena_host_key

Users can connect with:
  ssh -p 2222 localhost`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH listen address (default from config)")
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP listen address (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to SSH host key (generated if missing)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Disconnect idle SSH sessions after this long")
	serveCmd.Flags().BoolVar(&flagSeedDemo, "seed-demo", false, "Load demo users and scores when the database is empty")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	if flagSSHAddr != "" {
		cfg.Server.SSHAddr = flagSSHAddr
	}
	if flagHTTPAddr != "" {
		cfg.Server.HTTPAddr = flagHTTPAddr
	}
	if flagHostKey != "" {
		cfg.Server.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.Server.IdleTimeout = flagIdleTimeout
	}

	logger := newLogger(os.Stderr, "arena", cfg.Log.Level)

	store := openStore(cfg)
	defer store.Close()

	accounts := account.NewService(store, account.WithLogger(logger.WithPrefix("account")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagSeedDemo {
		seeded, err := store.Seed(ctx, account.HashPassword)
		if err != nil {
			fail("seeding database: %v", err)
		}
		logger.Info("demo data", "seeded", seeded)
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = ephemeralSecret()
		logger.Warn("auth.jwt_secret not set, using an ephemeral secret")
	}
	tokens, err := account.NewTokenIssuer(secret, cfg.Auth.TokenTTL)
	if err != nil {
		fail("%v", err)
	}

	hub := spectator.NewHub(hubConfig(cfg), bot.Greedy{}, logger.WithPrefix("spectator"), seedOrNow())

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("listener stopped", "component", name, "err", err)
				errs <- err
				stop()
			}
		}()
	}

	run("spectator", hub.Run)

	if cfg.Server.SSHAddr != "off" {
		sshServer, err := tui.NewSSHServer(tui.SSHServerConfig{
			Address:      cfg.Server.SSHAddr,
			HostKeyPath:  cfg.Server.HostKeyPath,
			IdleTimeout:  cfg.Server.IdleTimeout,
			TickInterval: cfg.Game.TickInterval,
		}, tui.Deps{
			Accounts: accounts,
			Scores:   store,
			Hub:      hub,
			Pace:     cfg.Game.IntervalFor,
			Mode:     cfg.Game.Mode(),
			Logger:   logger.WithPrefix("ssh"),
		})
		if err != nil {
			fail("creating SSH server: %v", err)
		}
		run("ssh", sshServer.ListenAndServe)
	}

	if cfg.Server.HTTPAddr != "off" {
		httpServer := api.New(api.Deps{
			Accounts:   accounts,
			Tokens:     tokens,
			Scores:     store,
			Live:       hub,
			Logger:     logger.WithPrefix("http"),
			CookieName: cfg.Auth.CookieName,
		})
		run("http", func(ctx context.Context) error {
			return httpServer.ListenAndServe(ctx, cfg.Server.HTTPAddr)
		})
	}

	logger.Info("arena serving",
		"ssh", cfg.Server.SSHAddr,
		"http", cfg.Server.HTTPAddr,
		"db", cfg.Storage.DBPath,
		"bots", len(cfg.Spectator.Bots),
	)

	<-ctx.Done()
	logger.Info("shutting down...")
	wg.Wait()

	select {
	case err := <-errs:
		fail("%v", err)
	default:
	}
}

func ephemeralSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatal("cannot generate secret", "err", err)
	}
	return hex.EncodeToString(b)
}
