package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"planner/internal/config"
	"planner/internal/repository"
	"planner/internal/server"

	"github.com/spf13/cobra"
)

var Version = "dev"

var (
	flagPassword string
	flagBoard    int
	flagTimeout  time.Duration
	flagSleep    float64
	flagCommute  float64
	flagWork     float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "planner",
		Short:   "Terminal companion for the planner service",
		Version: Version,
		Long: `planner keeps a session with the planner API, shows boards and day plans,
moves tasks between columns and answers team permission questions.
Settings come from the environment or a .env file, like the HTTP companion.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "Timeout for one command")

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(boardCmd())
	rootCmd.AddCommand(moveCmd())
	rootCmd.AddCommand(canCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// connect opens the configured storage and restores the persisted session.
func connect(ctx context.Context) (*server.Server, error) {
	cfg := config.Load()
	logger := cfg.Logger()
	logger.SetOutput(os.Stderr)

	storage, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	s := server.New(cfg, storage, logger)
	if err := s.Session.Bootstrap(ctx, s.Client); err != nil {
		_ = s.Session.Close()
		return nil, err
	}
	return s, nil
}

// withSession runs fn with a restored session and refuses to run without one.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *server.Server) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	s, err := connect(ctx)
	if err != nil {
		return err
	}
	defer s.Session.Close()

	if !s.Session.IsAuthenticated() {
		return fmt.Errorf("not logged in, run `planner login EMAIL` first")
	}
	return fn(ctx, s)
}
