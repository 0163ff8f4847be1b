// Command deskfixture serves a SQLite-backed ticket service for local
// runs of the dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/nhle/ticketwatch/internal/fixture"
	"github.com/nhle/ticketwatch/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var addr string
	var dbPath string
	var token string
	var seed bool
	var verbose bool

	flagSet := pflag.NewFlagSet("deskfixture", pflag.ContinueOnError)
	flagSet.StringVar(&addr, "addr", ":8000", "listen address")
	flagSet.StringVar(&dbPath, "db", ":memory:", "SQLite database path")
	flagSet.StringVar(&token, "token", os.Getenv("DESKFIXTURE_TOKEN"), "bearer token clients must present (empty disables auth)")
	flagSet.BoolVar(&seed, "seed", true, "load sample data into an empty database")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log every request")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if seed {
		if err := st.Seed(context.Background()); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
	}

	if token == "" {
		logger.Warn("authentication disabled")
	}

	server := fixture.NewServer(st, fixture.Options{Token: token, Logger: logger})
	return server.Run(addr)
}
