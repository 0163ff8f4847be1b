// Command ticketwatch is a terminal dashboard that polls the ticket
// service and turns what changed into notifications.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/nhle/ticketwatch/internal/actions"
	"github.com/nhle/ticketwatch/internal/app"
	"github.com/nhle/ticketwatch/internal/classify"
	"github.com/nhle/ticketwatch/internal/clock"
	"github.com/nhle/ticketwatch/internal/credential"
	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/notify"
	"github.com/nhle/ticketwatch/internal/source/deskapi"
	appsync "github.com/nhle/ticketwatch/internal/sync"
	"github.com/nhle/ticketwatch/internal/theme"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var setToken bool
	var writeConfig bool
	var author string

	flagSet := pflag.NewFlagSet("ticketwatch", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", model.DefaultConfigPath(), "path to config.yaml")
	flagSet.BoolVar(&setToken, "set-token", false, "read an API token from stdin, store it in the keyring and exit")
	flagSet.BoolVar(&writeConfig, "write-config", false, "write the effective config to --config and exit")
	flagSet.StringVar(&author, "author", "", "name used on comments added from the palette")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if writeConfig {
		if err := model.SaveConfig(configPath, cfg); err != nil {
			return err
		}
		fmt.Printf("config written to %s\n", configPath)
		return nil
	}

	vault, err := credential.Open(filepath.Dir(configPath))
	if err != nil {
		return err
	}

	if setToken {
		return storeToken(vault, cfg.Service.TokenKey, os.Stdin)
	}

	logger, closeLog, err := openLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	token, err := credential.ResolveToken(vault, cfg.Service.TokenKey)
	if errors.Is(err, credential.ErrNoToken) {
		logger.Warn("no API token configured; requests are sent unauthenticated",
			"env", credential.TokenEnv, "key", cfg.Service.TokenKey)
	} else if err != nil {
		return err
	}

	theme.ApplyVariant(cfg.Display.Theme)

	clk := clock.Real()
	svc := deskapi.New(cfg.Service.BaseURL, token,
		deskapi.WithTimeout(cfg.RequestTimeout()),
		deskapi.WithClock(clk),
	)

	store := notify.NewStore(clk, cfg.Retention(), logger.With("component", "notify"))
	defer store.Close()

	opts := appsync.Options{
		Clock:        clk,
		Classifier:   classify.New(logger.With("component", "classify")),
		Store:        store,
		Logger:       logger.With("component", "sync"),
		Interval:     cfg.PollInterval(),
		FetchTimeout: cfg.FetchTimeout(),
	}
	tickets := appsync.NewTicketScheduler(svc, opts)
	employees := appsync.NewEmployeeScheduler(svc, opts)
	defer func() {
		tickets.Dispose()
		employees.Dispose()
		tickets.Wait()
		employees.Wait()
	}()

	desk := actions.New(svc, store, actions.Options{
		Logger:    logger.With("component", "actions"),
		Timeout:   cfg.RequestTimeout(),
		Tickets:   tickets,
		Employees: employees,
	})

	root := app.New(app.Deps{
		Store:     store,
		Tickets:   tickets,
		Employees: employees,
		Actions:   desk,
		Service:   svc,
		Clock:     clk,
		Logger:    logger.With("component", "app"),
		Author:    author,

		Config:     cfg,
		ConfigPath: configPath,
		Vault:      vault,

		Check: func(ctx context.Context, baseURL, newToken string) error {
			if newToken == "" {
				newToken = token
			}
			probe := deskapi.New(baseURL, newToken, deskapi.WithTimeout(cfg.RequestTimeout()))
			_, err := probe.FetchEmployees(ctx)
			return err
		},
	})
	defer root.Close()

	tickets.Start()
	employees.Start()
	logger.Info("dashboard started", "base_url", cfg.Service.BaseURL, "interval", cfg.PollInterval())

	program := tea.NewProgram(root, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

// openLogger writes structured logs to the configured file so they do
// not corrupt the terminal UI.
func openLogger(lc model.LogConfig) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		return nil, nil, fmt.Errorf("parsing log level %q: %w", lc.Level, err)
	}

	if lc.File == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(lc.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}

func storeToken(vault *credential.Vault, key string, r io.Reader) error {
	fmt.Fprint(os.Stderr, "API token: ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading token: %w", err)
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return errors.New("empty token")
	}
	if err := vault.Set(key, token); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "token saved")
	return nil
}
