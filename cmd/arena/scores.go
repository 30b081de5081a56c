package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-arena/internal/games/snake"
)

var (
	flagScoresMode  string
	flagScoresLimit int
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Print the leaderboard",
	Long: `Print the top scores, highest first.

Examples:
  arena scores
  arena scores --mode walls
  arena scores --mode pass-through --limit 20`,
	Run: runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagScoresMode, "mode", "", "Only show one mode: walls or pass-through")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of entries to show (0 = all)")
}

func runScores(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	var mode snake.Mode
	if flagScoresMode != "" {
		m, err := snake.ParseMode(flagScoresMode)
		if err != nil {
			fail("%v", err)
		}
		mode = m
	}

	store := openStore(cfg)
	defer store.Close()

	ctx := context.Background()
	entries, err := store.Leaderboard(ctx, mode, flagScoresLimit)
	if err != nil {
		fail("retrieving scores: %v", err)
	}

	title := "All modes"
	if mode != "" {
		title = mode.Title()
	}
	fmt.Printf("Leaderboard - %s\n", title)
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'arena play' to set the first high score!")
		return
	}

	fmt.Printf("  %-4s  %-16s  %-8s  %-14s  %s\n", "Rank", "Player", "Score", "Mode", "Date")
	fmt.Printf("  %-4s  %-16s  %-8s  %-14s  %s\n", "----", "------", "-----", "----", "----")
	for i, e := range entries {
		fmt.Printf("  %-4d  %-16s  %-8d  %-14s  %s\n", i+1, e.Username, e.Score, e.Mode.Title(), e.Date)
	}

	if stats, err := store.Stats(ctx, mode); err == nil && stats.GamesCount > 0 {
		fmt.Println()
		fmt.Printf("Games: %d   Best: %d   Average: %.1f\n", stats.GamesCount, stats.HighScore, stats.AvgScore)
	}
}
