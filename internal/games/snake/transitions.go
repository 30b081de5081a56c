package snake

// Driver-issued status transitions:
//
//	IDLE --Start--> PLAYING --Pause--> PAUSED --Resume--> PLAYING
//	PAUSED | GAME_OVER --Reset--> IDLE
//
// An illegal transition returns the state unchanged.

// Start begins an IDLE game.
func Start(state GameState) GameState {
	return transition(state, StatusIdle, StatusPlaying)
}

// Pause suspends a PLAYING game.
func Pause(state GameState) GameState {
	return transition(state, StatusPlaying, StatusPaused)
}

// Resume continues a PAUSED game.
func Resume(state GameState) GameState {
	return transition(state, StatusPaused, StatusPlaying)
}

// TogglePause flips between PLAYING and PAUSED.
func TogglePause(state GameState) GameState {
	switch state.Status {
	case StatusPlaying:
		return Pause(state)
	case StatusPaused:
		return Resume(state)
	default:
		return state
	}
}

// CanReset reports whether Reset would replace the state.
func CanReset(state GameState) bool {
	return state.Status == StatusPaused || state.Status == StatusGameOver || state.Status == StatusIdle
}

// Reset discards a PAUSED or finished game and returns a fresh IDLE one.
// Resetting an IDLE game is allowed too, so the mode can be switched before
// the first move.
func Reset(state GameState, mode Mode, rng RandSource) GameState {
	if !CanReset(state) {
		return state
	}
	return InitialState(mode, rng)
}

func transition(state GameState, from, to Status) GameState {
	if state.Status != from {
		return state
	}
	next := state.Clone()
	next.Status = to
	return next
}
