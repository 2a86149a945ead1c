package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/walletstats/internal/config"
	"github.com/phrazzld/walletstats/internal/jobclient"
	"github.com/phrazzld/walletstats/internal/platform/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagKeys maps persistent flags onto client config keys.
var flagKeys = []struct {
	key  string
	flag string
}{
	{key: "config", flag: "config"},
	{key: "base_url", flag: "base-url"},
	{key: "token", flag: "token"},
	{key: "poll_interval", flag: "poll-interval"},
	{key: "max_attempts", flag: "max-attempts"},
	{key: "request_timeout", flag: "request-timeout"},
	{key: "log_level", flag: "log-level"},
}

// cli holds what every subcommand needs once flags are parsed.
type cli struct {
	v      *viper.Viper
	cfg    *config.ClientConfig
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "refreshctl",
		Short:         "Refresh and inspect wallet statistics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ./config.yaml)")
	flags.String("base-url", "", "wallet stats API base URL")
	flags.String("token", "", "bearer token for the API")
	flags.Duration("poll-interval", 0, "delay between status queries")
	flags.Int("max-attempts", 0, "give up after this many status queries (0 waits indefinitely)")
	flags.Duration("request-timeout", 0, "timeout of a single HTTP request")
	flags.String("log-level", "", "debug, info, warn or error")
	for _, fk := range flagKeys {
		if err := c.v.BindPFlag(fk.key, flags.Lookup(fk.flag)); err != nil {
			// ALLOW-PANIC: flag names are static
			panic(fmt.Sprintf("failed to bind flag %s: %v", fk.flag, err))
		}
	}

	root.AddCommand(
		newRefreshCmd(c),
		newStatusCmd(c),
		newStatsCmd(c),
		newWalletCmd(c),
		newWalletsCmd(c),
		newTokensCmd(c),
	)
	return root
}

// load resolves the client configuration and sets up logging.
func (c *cli) load() error {
	cfg, err := config.LoadClient(c.v)
	if err != nil {
		return err
	}
	log, err := logger.Setup(logger.LoggerConfig{
		Level:  cfg.LogLevel,
		Format: "text",
		Output: c.stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	c.cfg = cfg
	c.logger = log
	return nil
}

func (c *cli) credential() jobclient.CredentialProvider {
	return jobclient.StaticCredential(c.cfg.Token)
}

func (c *cli) statusClient() (*jobclient.StatusClient, error) {
	return jobclient.NewStatusClient(c.cfg.BaseURL, c.credential(),
		jobclient.NewHTTPClient(c.cfg.RequestTimeout), c.logger)
}

func (c *cli) statsClient() (*jobclient.StatsClient, error) {
	return jobclient.NewStatsClient(c.cfg.BaseURL, c.credential(),
		jobclient.NewHTTPClient(c.cfg.RequestTimeout), c.logger)
}

func (c *cli) submissionClient() (*jobclient.SubmissionClient, error) {
	return jobclient.NewSubmissionClient(c.cfg.BaseURL, c.credential(),
		jobclient.NewHTTPClient(c.cfg.RequestTimeout), c.logger)
}
