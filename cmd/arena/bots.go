package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-arena/internal/registry"
)

var botsCmd = &cobra.Command{
	Use:   "bots",
	Short: "List bot policies and the spectator roster",
	Long: `List the registered bot policies and the bots configured to play
in the spectator view.`,
	Run: runBots,
}

func runBots(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	fmt.Println("Policies:")
	fmt.Println()
	for _, p := range registry.List() {
		fmt.Printf("  %-12s  %s\n", p.Name, p.Description)
	}

	fmt.Println()
	fmt.Println("Roster:")
	fmt.Println()
	if len(cfg.Spectator.Bots) == 0 {
		fmt.Println("  (no bots configured)")
		return
	}
	for _, b := range cfg.Spectator.Bots {
		policy := b.Policy
		if policy == "" {
			policy = registry.DefaultPolicy
		}
		status := ""
		if !registry.Exists(policy) {
			status = "  (unknown policy)"
		}
		fmt.Printf("  %-16s  %-14s  %s%s\n", b.Username, b.Mode, policy, status)
	}
	fmt.Println()
	fmt.Println("Use 'arena watch' to see them play.")
}
