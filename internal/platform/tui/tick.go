// Package tui provides the Bubble Tea front end for the arena: menu, account
// forms, the interactive game, the spectator wall and the leaderboard, served
// locally or over SSH.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snake-arena/internal/spectator"
)

// TickMsg is sent to trigger a game simulation tick. Seq identifies the tick
// loop that produced it so a stale loop can be dropped after a restart.
type TickMsg struct {
	At  time.Time
	Seq int
}

// tickCmd returns a command that sends one TickMsg after interval.
func tickCmd(interval time.Duration, seq int) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{At: t, Seq: seq}
	})
}

// frameMsg carries one spectator frame.
type frameMsg spectator.Frame

// feedClosedMsg reports that the hub closed a subscription.
type feedClosedMsg struct{}

// waitForFrame blocks until the subscription yields a frame or closes.
func waitForFrame(sub *spectator.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case f, ok := <-sub.Updates():
			if !ok {
				return feedClosedMsg{}
			}
			return frameMsg(f)
		case <-sub.Done():
			return feedClosedMsg{}
		}
	}
}
