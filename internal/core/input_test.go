package core

import "testing"

func TestInputFrameKeepsLatestMove(t *testing.T) {
	f := NewInputFrame()
	f.Set(ActionUp)
	f.Set(ActionLeft)

	if f.Move != ActionLeft {
		t.Errorf("Move = %v, expected Left", f.Move)
	}
	if f.Has(ActionUp) {
		t.Error("an overridden movement should not be reported")
	}
	if !f.Has(ActionLeft) {
		t.Error("latest movement should be reported")
	}
}

func TestInputFrameAccumulatesCommands(t *testing.T) {
	var f InputFrame // zero value must be usable
	f.Set(ActionPause)
	f.Set(ActionRestart)

	if !f.Has(ActionPause) || !f.Has(ActionRestart) {
		t.Error("non-movement actions should accumulate")
	}

	f.Clear()
	if f.Has(ActionPause) || f.Move != ActionNone {
		t.Error("Clear should reset all actions")
	}
}
