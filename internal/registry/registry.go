// Package registry maps policy names to bot factories, so the spectator
// roster can pick a policy per bot from configuration.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/snake-arena/internal/games/snake/bot"
)

// DefaultPolicy is used when a bot names no policy.
const DefaultPolicy = "greedy"

// PolicyInfo contains metadata about a registered policy.
type PolicyInfo struct {
	Name        string
	Description string
}

// Factory creates a new policy instance.
type Factory func() bot.Policy

type entry struct {
	factory     Factory
	description string
}

var (
	entries = make(map[string]entry)
	mu      sync.RWMutex
)

func init() {
	Register(DefaultPolicy, "heads for the food, prefers moves with room to spare",
		func() bot.Policy { return bot.Greedy{} })
}

// Register adds a policy factory.
// Panics if a policy with the same name is already registered.
func Register(name, description string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := entries[name]; exists {
		panic(fmt.Sprintf("registry: policy %q already registered", name))
	}
	entries[name] = entry{factory: f, description: description}
}

// List returns every registered policy, sorted by name.
func List() []PolicyInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]PolicyInfo, 0, len(entries))
	for name, e := range entries {
		result = append(result, PolicyInfo{Name: name, Description: e.description})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Create instantiates a policy by name. An empty name means DefaultPolicy.
func Create(name string) (bot.Policy, error) {
	if name == "" {
		name = DefaultPolicy
	}

	mu.RLock()
	defer mu.RUnlock()

	e, ok := entries[name]
	if !ok {
		return nil, fmt.Errorf("registry: unknown policy %q", name)
	}
	return e.factory(), nil
}

// Exists checks if a policy with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := entries[name]
	return ok
}
