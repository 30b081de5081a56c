package snake

import (
	"fmt"
	"strings"
)

// Position is a grid cell, 0-indexed from the top-left corner.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p translated by (dx, dy).
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction represents the snake's movement direction.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every direction in enumeration order.
// The bot breaks final ties by this order.
var Directions = [...]Direction{Up, Down, Left, Right}

// Opposite returns the 180° reversal of d.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Delta returns the unit vector for d.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 1, 0
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the direction as "UP", "DOWN", "LEFT" or "RIGHT".
func (d Direction) MarshalText() ([]byte, error) {
	if d < Up || d > Right {
		return nil, fmt.Errorf("snake: invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name, case-insensitively.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection parses a direction name such as "up" or "RIGHT".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UP":
		return Up, nil
	case "DOWN":
		return Down, nil
	case "LEFT":
		return Left, nil
	case "RIGHT":
		return Right, nil
	}
	return Up, fmt.Errorf("snake: unknown direction %q", s)
}

// Mode is the boundary policy of a game. It is fixed for a session.
type Mode string

const (
	ModeWalls       Mode = "walls"
	ModePassThrough Mode = "pass-through"
)

// Modes lists the supported boundary modes.
var Modes = []Mode{ModeWalls, ModePassThrough}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeWalls || m == ModePassThrough
}

// Title returns the display name of the mode.
func (m Mode) Title() string {
	switch m {
	case ModeWalls:
		return "Walls"
	case ModePassThrough:
		return "Pass-Through"
	default:
		return string(m)
	}
}

// Toggle returns the other boundary mode.
func (m Mode) Toggle() Mode {
	if m == ModePassThrough {
		return ModeWalls
	}
	return ModePassThrough
}

// ParseMode accepts "walls", "pass-through" and the underscore spellings
// "pass_through" / "passthrough".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "walls", "wall":
		return ModeWalls, nil
	case "pass-through", "pass_through", "passthrough":
		return ModePassThrough, nil
	}
	return "", fmt.Errorf("snake: unknown mode %q", s)
}

// Status is the lifecycle state of a game.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusPlaying  Status = "playing"
	StatusPaused   Status = "paused"
	StatusGameOver Status = "game-over"
)

// IsTerminal reports whether no further steps can change the game.
func (s Status) IsTerminal() bool {
	return s == StatusGameOver
}

// Snake is the ordered body (head first) plus the current heading.
type Snake struct {
	Body      []Position `json:"body"`
	Direction Direction  `json:"direction"`
}

// GameState is a complete, self-contained game value.
// States are never mutated in place: every transition returns a new value
// with its own body slice.
type GameState struct {
	Snake  Snake    `json:"snake"`
	Food   Position `json:"food"`
	Score  int      `json:"score"`
	Status Status   `json:"status"`
	Mode   Mode     `json:"mode"`
}

// Head returns the first body segment.
func (s GameState) Head() Position {
	if len(s.Snake.Body) == 0 {
		panic("snake: empty body")
	}
	return s.Snake.Body[0]
}

// Clone returns a deep copy of s.
func (s GameState) Clone() GameState {
	c := s
	c.Snake.Body = append([]Position(nil), s.Snake.Body...)
	return c
}

// RandSource is the random source used for food placement.
// *math/rand.Rand satisfies it.
type RandSource interface {
	Intn(n int) int
}
