// Package bot implements a single-step greedy policy for steering a snake
// toward food. It looks one move ahead and does no path planning.
package bot

import (
	"math"

	"github.com/vovakirdan/snake-arena/internal/core"
	"github.com/vovakirdan/snake-arena/internal/games/snake"
)

// TieMargin is how far apart two food distances may be and still count as tied.
const TieMargin = 2

// Policy chooses the next direction for a game state.
type Policy interface {
	Decide(state snake.GameState) snake.Direction
}

// Candidate is a direction that does not kill the snake on the next step.
type Candidate struct {
	Direction snake.Direction
	Head      snake.Position
	// Distance is the Manhattan distance from Head to the food, using the
	// shorter way around each axis in pass-through mode.
	Distance int
	// Safety is the smallest Manhattan distance from Head to any non-head
	// segment of the current body, or math.MaxInt for a 1-segment snake.
	Safety int
}

// Greedy is the default Policy.
type Greedy struct{}

// Decide implements Policy.
func (Greedy) Decide(state snake.GameState) snake.Direction {
	return Decide(state)
}

// Decide returns the best surviving direction, or the current direction when
// every move is fatal. It never returns the reverse of the current direction.
func Decide(state snake.GameState) snake.Direction {
	candidates := Evaluate(state)
	if len(candidates) == 0 {
		return state.Snake.Direction
	}
	return pick(candidates).Direction
}

// Evaluate lists the candidates that survive one step, in enumeration order.
func Evaluate(state snake.GameState) []Candidate {
	current := state.Snake.Direction
	body := state.Snake.Body
	head := state.Head()

	candidates := make([]Candidate, 0, len(snake.Directions)-1)
	for _, dir := range snake.Directions {
		if dir == current.Opposite() {
			continue
		}

		next := snake.NextHead(head, dir)
		if state.Mode == snake.ModePassThrough {
			next = snake.Wrap(next)
		} else if snake.IsOutOfBounds(next) {
			continue
		}
		if snake.SelfCollision(next, body) {
			continue
		}

		candidates = append(candidates, Candidate{
			Direction: dir,
			Head:      next,
			Distance:  distance(next, state.Food, state.Mode),
			Safety:    safety(next, body),
		})
	}
	return candidates
}

// pick selects among candidates whose distance is within TieMargin of the
// best: highest safety first, then shorter distance, then enumeration order.
func pick(candidates []Candidate) Candidate {
	best := candidates[0].Distance
	for _, c := range candidates[1:] {
		best = min(best, c.Distance)
	}

	var winner *Candidate
	for i := range candidates {
		c := &candidates[i]
		if c.Distance > best+TieMargin {
			continue
		}
		if winner == nil ||
			c.Safety > winner.Safety ||
			(c.Safety == winner.Safety && c.Distance < winner.Distance) {
			winner = c
		}
	}
	return *winner
}

func distance(a, b snake.Position, mode snake.Mode) int {
	dx := core.Abs(a.X - b.X)
	dy := core.Abs(a.Y - b.Y)
	if mode == snake.ModePassThrough {
		dx = min(dx, snake.GridSize-dx)
		dy = min(dy, snake.GridSize-dy)
	}
	return dx + dy
}

func safety(head snake.Position, body []snake.Position) int {
	if len(body) <= 1 {
		return math.MaxInt
	}
	nearest := math.MaxInt
	for _, seg := range body[1:] {
		nearest = min(nearest, core.Abs(head.X-seg.X)+core.Abs(head.Y-seg.Y))
	}
	return nearest
}

