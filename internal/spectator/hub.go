// Package spectator runs bot-controlled Snake games on a fixed cadence and
// streams their state to viewers.
package spectator

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/snake-arena/internal/games/snake"
	"github.com/vovakirdan/snake-arena/internal/games/snake/bot"
)

// BotSpec names one bot-controlled game.
type BotSpec struct {
	Username string
	Mode     snake.Mode
	Policy   bot.Policy // nil uses the hub's policy
}

// Config holds hub settings.
type Config struct {
	TickInterval time.Duration
	// RestartAfter is how many ticks a finished game stays visible before a
	// fresh one replaces it. Zero keeps finished games frozen.
	RestartAfter     int
	Bots             []BotSpec
	SubscriberBuffer int
}

// DefaultConfig returns the stock roster: one bot per boundary mode.
func DefaultConfig() Config {
	return Config{
		TickInterval: 150 * time.Millisecond,
		RestartAfter: 20,
		Bots: []BotSpec{
			{Username: "speedrunner", Mode: snake.ModeWalls},
			{Username: "snakemaster", Mode: snake.ModePassThrough},
		},
		SubscriberBuffer: 8,
	}
}

// ActivePlayer is one live game as shown to spectators.
type ActivePlayer struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Score     int             `json:"score"`
	Mode      snake.Mode      `json:"mode"`
	GameState snake.GameState `json:"gameState"`
	GamesRun  int             `json:"gamesPlayed"`
	BestScore int             `json:"bestScore"`
}

// Frame is the state of every live game after one tick.
type Frame struct {
	Tick    uint64
	Players []ActivePlayer
}

type liveGame struct {
	id        string
	username  string
	policy    bot.Policy
	state     snake.GameState
	frozenFor int
	games     int
	best      int
}

// Hub owns the bot games. Tick is driven by Run or called directly.
type Hub struct {
	cfg    Config
	logger *log.Logger
	subs   *SubscriberRegistry

	mu    sync.RWMutex
	rng   *rand.Rand
	tick  uint64
	games []*liveGame
}

// NewHub creates a hub with one started game per configured bot.
func NewHub(cfg Config, policy bot.Policy, logger *log.Logger, seed int64) *Hub {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	if policy == nil {
		policy = bot.Greedy{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	h := &Hub{
		cfg:    cfg,
		logger: logger,
		subs:   NewSubscriberRegistry(),
		rng:    rand.New(rand.NewSource(seed)),
	}
	for _, b := range cfg.Bots {
		mode := b.Mode
		if !mode.Valid() {
			mode = snake.ModeWalls
		}
		p := b.Policy
		if p == nil {
			p = policy
		}
		h.games = append(h.games, &liveGame{
			id:       uuid.NewString(),
			policy:   p,
			username: b.Username,
			state:    snake.Start(snake.InitialState(mode, h.rng)),
			games:    1,
		})
	}
	return h
}

// Run ticks the hub until ctx is cancelled, then closes all subscriptions.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.cfg.TickInterval)
	defer ticker.Stop()
	defer h.subs.CloseAll()

	h.logger.Info("spectator hub started", "bots", len(h.games), "interval", h.cfg.TickInterval)
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("spectator hub stopped", "ticks", h.Ticks())
			return ctx.Err()
		case <-ticker.C:
			h.Tick()
		}
	}
}

// Tick advances every game one step and broadcasts the resulting frame.
func (h *Hub) Tick() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tick++
	for _, g := range h.games {
		h.advance(g)
	}
	// Sends never block, so fan-out happens under the lock and viewers
	// see frames in tick order.
	h.subs.Broadcast(h.frameLocked())
}

func (h *Hub) advance(g *liveGame) {
	switch g.state.Status {
	case snake.StatusIdle, snake.StatusPaused:
		g.state = snake.Start(snake.Resume(g.state))

	case snake.StatusPlaying:
		dir := g.policy.Decide(g.state)
		g.state = snake.Step(g.state, snake.ChangeDirection(g.state.Snake.Direction, dir), h.rng)
		g.best = max(g.best, g.state.Score)
		if g.state.Status == snake.StatusGameOver {
			g.frozenFor = 0
			h.logger.Debug("bot game over", "bot", g.username, "mode", g.state.Mode, "score", g.state.Score)
		}

	case snake.StatusGameOver:
		if h.cfg.RestartAfter <= 0 {
			return
		}
		g.frozenFor++
		if g.frozenFor >= h.cfg.RestartAfter {
			g.state = snake.Start(snake.Reset(g.state, g.state.Mode, h.rng))
			g.frozenFor = 0
			g.games++
		}
	}
}

// Active returns deep copies of every live game.
func (h *Hub) Active() []ActivePlayer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.frameLocked().Players
}

// Ticks returns how many ticks have run.
func (h *Hub) Ticks() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tick
}

// Interval returns the tick interval.
func (h *Hub) Interval() time.Duration {
	return h.cfg.TickInterval
}

func (h *Hub) frameLocked() Frame {
	players := make([]ActivePlayer, 0, len(h.games))
	for _, g := range h.games {
		players = append(players, ActivePlayer{
			ID:        g.id,
			Username:  g.username,
			Score:     g.state.Score,
			Mode:      g.state.Mode,
			GameState: g.state.Clone(),
			GamesRun:  g.games,
			BestScore: g.best,
		})
	}
	return Frame{Tick: h.tick, Players: players}
}

// Subscribe registers a viewer and immediately sends it the current frame.
func (h *Hub) Subscribe(bufferSize int) *Subscription {
	if bufferSize < 1 {
		bufferSize = h.cfg.SubscriberBuffer
	}
	sub := NewSubscription(bufferSize)
	h.subs.Register(sub)

	h.mu.RLock()
	sub.Send(h.frameLocked())
	h.mu.RUnlock()

	h.logger.Debug("spectator subscribed", "id", sub.ID(), "viewers", h.subs.Count())
	return sub
}

// Unsubscribe closes and removes a viewer.
func (h *Hub) Unsubscribe(id SubscriberID) error {
	s, ok := h.subs.Get(id)
	if !ok {
		return fmt.Errorf("spectator: unknown subscriber %s", id)
	}
	if c, ok := s.(interface{ Close() }); ok {
		c.Close()
	}
	h.subs.Unregister(id)
	return nil
}

// Viewers returns the number of subscribed viewers.
func (h *Hub) Viewers() int {
	return h.subs.Count()
}
