package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snake-arena/internal/account"
	"github.com/vovakirdan/snake-arena/internal/storage"
)

var (
	flagUsername string
	flagEmail    string
	flagPassword string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Long: `Create an account from the shell.

The password may also come from SNAKE_PASSWORD so it stays out of the
shell history.

Examples:
  arena signup --username ada --email ada@example.com --password hunter22`,
	Run: runSignup,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo users and scores",
	Long: `Insert the demo players and their leaderboard entries.

Nothing happens when the database already has users. Every demo account
uses the password "` + storage.DemoPassword + `".`,
	Run: runSeed,
}

func init() {
	signupCmd.Flags().StringVar(&flagUsername, "username", "", "Username (3-24 letters, digits, underscore)")
	signupCmd.Flags().StringVar(&flagEmail, "email", "", "Email address")
	signupCmd.Flags().StringVar(&flagPassword, "password", "", "Password (8-72 bytes)")
	_ = signupCmd.MarkFlagRequired("username")
	_ = signupCmd.MarkFlagRequired("email")
}

func runSignup(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	password := flagPassword
	if password == "" {
		password = os.Getenv("SNAKE_PASSWORD")
	}

	store := openStore(cfg)
	defer store.Close()

	svc := account.NewService(store, account.WithLogger(newLogger(os.Stderr, "account", cfg.Log.Level)))
	u, err := svc.Signup(context.Background(), flagUsername, flagEmail, password)
	var ve *account.ValidationError
	switch {
	case errors.As(err, &ve):
		fail("%s %s", ve.Field, ve.Message)
	case errors.Is(err, account.ErrUserExists):
		fail("username or email already registered")
	case err != nil:
		fail("%v", err)
	}

	fmt.Printf("Created account %s (%s)\n", u.Username, u.Email)
}

func runSeed(_ *cobra.Command, _ []string) {
	cfg := loadConfig()

	store := openStore(cfg)
	defer store.Close()

	seeded, err := store.Seed(context.Background(), account.HashPassword)
	if err != nil {
		fail("seeding database: %v", err)
	}
	if !seeded {
		fmt.Println("Database already has users; nothing to do.")
		return
	}

	users, err := store.CountUsers(context.Background())
	if err != nil {
		fail("%v", err)
	}
	fmt.Printf("Seeded %d demo users into %s\n", users, cfg.Storage.DBPath)
}
