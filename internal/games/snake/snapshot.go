package snake

import "fmt"

// Snapshot is a flat summary of a GameState for determinism tests and logs.
type Snapshot struct {
	HeadX    int
	HeadY    int
	SnakeLen int
	Dir      Direction
	FoodX    int
	FoodY    int
	Score    int
	Status   Status
	Mode     Mode
}

// TakeSnapshot summarizes state.
func TakeSnapshot(state GameState) Snapshot {
	headX, headY := 0, 0
	if len(state.Snake.Body) > 0 {
		headX = state.Snake.Body[0].X
		headY = state.Snake.Body[0].Y
	}
	return Snapshot{
		HeadX:    headX,
		HeadY:    headY,
		SnakeLen: len(state.Snake.Body),
		Dir:      state.Snake.Direction,
		FoodX:    state.Food.X,
		FoodY:    state.Food.Y,
		Score:    state.Score,
		Status:   state.Status,
		Mode:     state.Mode,
	}
}

// DebugString returns a one-line description of the snapshot.
func (s Snapshot) DebugString() string {
	return fmt.Sprintf("status=%s mode=%s score=%d len=%d head=(%d,%d) dir=%s food=(%d,%d)",
		s.Status, s.Mode, s.Score, s.SnakeLen, s.HeadX, s.HeadY, s.Dir, s.FoodX, s.FoodY)
}
