// Package main implements the walletstats API server. It serves the wallet
// statistics refresh endpoints and runs the background workers that do the
// recalculation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/phrazzld/walletstats/internal/config"
	"github.com/phrazzld/walletstats/internal/platform/database"
	"github.com/phrazzld/walletstats/internal/platform/logger"
	"github.com/phrazzld/walletstats/internal/service/auth"
)

// cliFlags are the one-shot operations the server binary can run instead
// of serving.
type cliFlags struct {
	migrate    string
	issueToken string
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "walletstats: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags reads the command line. At most one operation may be given.
func parseFlags(args []string, output io.Writer) (cliFlags, error) {
	var f cliFlags

	fs := flag.NewFlagSet("walletstats", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&f.migrate, "migrate", "",
		"run a migration command and exit ("+strings.Join(database.MigrateCommands, ", ")+")")
	fs.StringVar(&f.issueToken, "issue-token", "",
		"print a signed API token for the given subject and exit")

	if err := fs.Parse(args); err != nil {
		return cliFlags{}, err
	}
	if fs.NArg() > 0 {
		return cliFlags{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if f.migrate != "" && !slices.Contains(database.MigrateCommands, f.migrate) {
		return cliFlags{}, fmt.Errorf("unknown migrate command %q", f.migrate)
	}
	if f.migrate != "" && f.issueToken != "" {
		return cliFlags{}, errors.New("-migrate and -issue-token cannot be combined")
	}
	return f, nil
}

// run loads configuration and performs the requested operation. Without
// flags it serves until SIGINT or SIGTERM.
func run(args []string, stdout io.Writer) error {
	flags, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	log, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flags.issueToken != "" {
		return issueToken(ctx, cfg.Auth, flags.issueToken, stdout)
	}

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	if flags.migrate != "" {
		defer func() { _ = db.Close() }()
		return database.Migrate(ctx, db, cfg.Database.Driver, flags.migrate, log)
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// loadAppConfig loads the application configuration from environment
// variables or config file.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// setupAppLogger configures the application logger from the server config.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(logger.LoggerConfig{
		Level: cfg.Server.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver)
	return l, nil
}

// issueToken prints a signed access token for subject.
func issueToken(ctx context.Context, cfg config.AuthConfig, subject string, out io.Writer) error {
	jwtService, err := auth.NewJWTService(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	token, err := jwtService.GenerateToken(ctx, subject)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
