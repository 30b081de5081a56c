// Package snake implements the Snake game engine: a pure transition function
// over GameState values plus the geometry helpers the bot relies on.
// Nothing here keeps state between calls, owns timers or performs I/O.
package snake

import "fmt"

const (
	// GridSize is the side length N of the square grid.
	GridSize = 20
	// FoodReward is the score gained per food item.
	FoodReward = 10
	// InitialLength is the body length of a fresh snake.
	InitialLength = 3

	maxFoodDraws = 4 * GridSize * GridSize
)

// StartHead is where every new snake's head starts.
var StartHead = Position{X: 10, Y: 10}

// InitialState creates a fresh IDLE game: a horizontal 3-segment snake heading
// RIGHT with its tail trailing to the left, and food on a free cell.
func InitialState(mode Mode, rng RandSource) GameState {
	body := make([]Position, InitialLength)
	for i := range body {
		body[i] = StartHead.Add(-i, 0)
	}
	return GameState{
		Snake:  Snake{Body: body, Direction: Right},
		Food:   PlaceFood(body, rng),
		Score:  0,
		Status: StatusIdle,
		Mode:   mode,
	}
}

// PlaceFood picks a cell not in occupied. It draws uniformly at random first
// and falls back to a uniform choice among the remaining free cells, so it
// always terminates. It panics when the grid has no free cell.
func PlaceFood(occupied []Position, rng RandSource) Position {
	taken := make(map[Position]bool, len(occupied))
	for _, p := range occupied {
		taken[p] = true
	}

	for i := 0; i < maxFoodDraws; i++ {
		p := Position{X: rng.Intn(GridSize), Y: rng.Intn(GridSize)}
		if !taken[p] {
			return p
		}
	}

	free := make([]Position, 0, GridSize*GridSize-len(taken))
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			p := Position{X: x, Y: y}
			if !taken[p] {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		panic(fmt.Sprintf("snake: no free cell for food (%d occupied)", len(taken)))
	}
	return free[rng.Intn(len(free))]
}

// NextHead returns head moved one cell in dir. The result may be off-grid.
func NextHead(head Position, dir Direction) Position {
	dx, dy := dir.Delta()
	return head.Add(dx, dy)
}

// Wrap maps pos onto the grid using true modulo on both axes.
func Wrap(pos Position) Position {
	return Position{X: wrapAxis(pos.X), Y: wrapAxis(pos.Y)}
}

func wrapAxis(v int) int {
	return ((v % GridSize) + GridSize) % GridSize
}

// IsOutOfBounds reports whether pos lies outside the grid.
func IsOutOfBounds(pos Position) bool {
	return pos.X < 0 || pos.X >= GridSize || pos.Y < 0 || pos.Y >= GridSize
}

// SelfCollision reports whether head equals any element of body.
// Callers pass the whole previous body when testing a prospective head.
func SelfCollision(head Position, body []Position) bool {
	for _, p := range body {
		if p == head {
			return true
		}
	}
	return false
}

// ChangeDirection applies a requested heading. A 180° reversal is ignored.
func ChangeDirection(current, requested Direction) Direction {
	if requested == current.Opposite() {
		return current
	}
	return requested
}

// Advance steps the game using the snake's current direction.
func Advance(state GameState, rng RandSource) GameState {
	return Step(state, state.Snake.Direction, rng)
}

// Step advances a PLAYING game by one cell in dir and returns the new state.
// Any other status is returned unchanged. dir is used as given; reversal
// filtering is the caller's job (see ChangeDirection).
//
// The new head is tested against the entire previous body, including the
// tail cell that would be vacated this tick.
func Step(state GameState, dir Direction, rng RandSource) GameState {
	if state.Status != StatusPlaying {
		return state
	}

	oldBody := state.Snake.Body
	newHead := NextHead(state.Head(), dir)

	if state.Mode == ModePassThrough {
		newHead = Wrap(newHead)
	} else if IsOutOfBounds(newHead) {
		return gameOver(state)
	}

	if SelfCollision(newHead, oldBody) {
		return gameOver(state)
	}

	ate := newHead == state.Food

	keep := len(oldBody)
	if !ate {
		keep--
	}
	newBody := make([]Position, 0, keep+1)
	newBody = append(newBody, newHead)
	newBody = append(newBody, oldBody[:keep]...)

	next := GameState{
		Snake:  Snake{Body: newBody, Direction: dir},
		Food:   state.Food,
		Score:  state.Score,
		Status: StatusPlaying,
		Mode:   state.Mode,
	}
	if ate {
		next.Score += FoodReward
		next.Food = PlaceFood(newBody, rng)
	}
	return next
}

// gameOver freezes everything but the status.
func gameOver(state GameState) GameState {
	over := state.Clone()
	over.Status = StatusGameOver
	return over
}
