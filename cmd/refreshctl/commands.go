package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/walletstats/internal/jobclient"
	"github.com/spf13/cobra"
)

func newRefreshCmd(c *cli) *cobra.Command {
	var address, output string

	cmd := &cobra.Command{
		Use:   "refresh --address <wallet>",
		Short: "Recalculate a wallet's statistics and wait for the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			return c.runRefresh(cmd.Context(), strings.TrimSpace(address), output)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "wallet address to refresh")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "stats format: text or yaml")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id>",
		Short: "Query the status of a refresh task once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if _, err := uuid.Parse(id); err != nil {
				return fmt.Errorf("invalid task id %q: %w", id, err)
			}
			return c.runStatus(cmd.Context(), jobclient.JobHandle(id))
		},
	}
}

func newStatsCmd(c *cli) *cobra.Command {
	var address, output string

	cmd := &cobra.Command{
		Use:   "stats --address <wallet>",
		Short: "Print the stored statistics of a wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			client, err := c.statsClient()
			if err != nil {
				return err
			}
			result, err := client.FetchStats(cmd.Context(), address)
			if err != nil {
				return err
			}
			return renderStats(c.stdout, output, result)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "wallet address")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text or yaml")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func newWalletCmd(c *cli) *cobra.Command {
	var address, output string

	cmd := &cobra.Command{
		Use:   "wallet --address <wallet>",
		Short: "Print a tracked wallet with its flags and per-period statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			client, err := c.statsClient()
			if err != nil {
				return err
			}
			result, err := client.FetchWallet(cmd.Context(), address)
			if err != nil {
				return err
			}
			return renderWallet(c.stdout, output, result)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "wallet address")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text or yaml")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func newWalletsCmd(c *cli) *cobra.Command {
	var (
		query   jobclient.WalletQuery
		bot     bool
		scammer bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "wallets",
		Short: "List tracked wallets one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			if cmd.Flags().Changed("bot") {
				query.IsBot = &bot
			}
			if cmd.Flags().Changed("scammer") {
				query.IsScammer = &scammer
			}
			client, err := c.statsClient()
			if err != nil {
				return err
			}
			page, err := client.ListWallets(cmd.Context(), query)
			if err != nil {
				return err
			}
			return renderWallets(c.stdout, output, page)
		},
	}
	cmd.Flags().IntVar(&query.Page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&query.PageSize, "page-size", 10, "wallets per page")
	cmd.Flags().BoolVar(&bot, "bot", false, "only wallets whose bot flag equals this value")
	cmd.Flags().BoolVar(&scammer, "scammer", false, "only wallets whose scammer flag equals this value")
	cmd.Flags().BoolVar(&query.NewestFirst, "newest", false, "most recently tracked wallets first")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text or yaml")
	return cmd
}

func newTokensCmd(c *cli) *cobra.Command {
	var (
		address        string
		page, pageSize int
		output         string
	)

	cmd := &cobra.Command{
		Use:   "tokens --address <wallet>",
		Short: "List the per-token aggregates of a wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			client, err := c.statsClient()
			if err != nil {
				return err
			}
			result, err := client.ListTokens(cmd.Context(), address, page, pageSize)
			if err != nil {
				return err
			}
			return renderTokens(c.stdout, output, result)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "wallet address")
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "tokens per page")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text or yaml")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

// statsPrinter is the refresh trigger of the refresh command: once the job
// succeeds it fetches and prints the new statistics.
type statsPrinter struct {
	ctx     context.Context
	client  *jobclient.StatsClient
	address string
	format  string
	out     io.Writer
	err     error
}

// Refresh implements jobclient.RefreshTrigger.
func (p *statsPrinter) Refresh() {
	result, err := p.client.FetchStats(p.ctx, p.address)
	if err != nil {
		p.err = fmt.Errorf("refresh finished but stats could not be read: %w", err)
		return
	}
	p.err = renderStats(p.out, p.format, result)
}

func (c *cli) runRefresh(ctx context.Context, address, output string) error {
	submitter, err := c.submissionClient()
	if err != nil {
		return err
	}
	querier, err := c.statusClient()
	if err != nil {
		return err
	}
	stats, err := c.statsClient()
	if err != nil {
		return err
	}

	printer := &statsPrinter{ctx: ctx, client: stats, address: address, format: output, out: c.stdout}
	notifier := newConsoleNotifier(c.stderr)

	poller, err := jobclient.NewPoller(querier, notifier, printer, jobclient.PollerConfig{
		Interval:       c.cfg.PollInterval,
		MaxAttempts:    c.cfg.MaxAttempts,
		SerializeTicks: true,
	}, c.logger)
	if err != nil {
		return err
	}
	refresher, err := jobclient.NewRefresher(submitter, poller, notifier, c.logger)
	if err != nil {
		return err
	}

	state, err := refresher.Run(ctx, jobclient.JobRequest{Address: address})
	if err != nil {
		var subErr *jobclient.SubmissionError
		if errors.As(err, &subErr) && subErr.Message != "" {
			return fmt.Errorf("refresh rejected: %s", subErr.Message)
		}
		return err
	}
	c.logger.Debug("refresh finished", "state", string(state))
	return printer.err
}

func (c *cli) runStatus(ctx context.Context, handle jobclient.JobHandle) error {
	client, err := c.statusClient()
	if err != nil {
		return err
	}
	report, err := client.Describe(ctx, handle)
	if err != nil {
		return err
	}

	status := string(report.Status)
	if !report.Known {
		status += " (unrecognised)"
	}
	fmt.Fprintf(c.stdout, "task %s: %s\n", report.Handle, status)
	if report.Result != "" {
		fmt.Fprintf(c.stdout, "result: %s\n", report.Result)
	}
	return nil
}
