package registry

import (
	"testing"

	"github.com/vovakirdan/snake-arena/internal/games/snake"
	"github.com/vovakirdan/snake-arena/internal/games/snake/bot"
)

type alwaysUp struct{}

func (alwaysUp) Decide(snake.GameState) snake.Direction { return snake.Up }

func TestDefaultPolicyRegistered(t *testing.T) {
	if !Exists(DefaultPolicy) {
		t.Fatalf("%q should be registered", DefaultPolicy)
	}

	p, err := Create("")
	if err != nil {
		t.Fatalf("Create(\"\") failed: %v", err)
	}
	if _, ok := p.(bot.Greedy); !ok {
		t.Errorf("default policy = %T, expected bot.Greedy", p)
	}
}

func TestCreateUnknown(t *testing.T) {
	if _, err := Create("psychic"); err == nil {
		t.Error("expected an error for an unknown policy")
	}
	if Exists("psychic") {
		t.Error("Exists should be false for an unknown policy")
	}
}

func TestRegisterAndList(t *testing.T) {
	Register("always-up", "test policy", func() bot.Policy { return alwaysUp{} })
	t.Cleanup(func() {
		mu.Lock()
		delete(entries, "always-up")
		mu.Unlock()
	})

	p, err := Create("always-up")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got := p.Decide(snake.GameState{}); got != snake.Up {
		t.Errorf("Decide = %v, expected UP", got)
	}

	list := List()
	for i := 1; i < len(list); i++ {
		if list[i-1].Name >= list[i].Name {
			t.Errorf("List not sorted: %q before %q", list[i-1].Name, list[i].Name)
		}
	}
	found := false
	for _, info := range list {
		if info.Name == "always-up" && info.Description == "test policy" {
			found = true
		}
	}
	if !found {
		t.Error("registered policy missing from List")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register(DefaultPolicy, "dup", func() bot.Policy { return bot.Greedy{} })
}
