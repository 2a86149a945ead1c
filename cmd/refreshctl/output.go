package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/phrazzld/walletstats/internal/api/shared"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputYAML = "yaml"
)

func validateOutput(format string) error {
	switch format {
	case outputText, outputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, outputText, outputYAML)
	}
}

func writeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return enc.Close()
}

func writeHeader(out io.Writer, address, checked string, isBot, isScammer bool) {
	if checked == "" {
		checked = "never"
	}
	fmt.Fprintf(out, "wallet:      %s\n", address)
	fmt.Fprintf(out, "checked at:  %s\n", checked)
	fmt.Fprintf(out, "bot:         %t\n", isBot)
	fmt.Fprintf(out, "scammer:     %t\n", isScammer)
}

// renderStats writes result in the requested format.
func renderStats(out io.Writer, format string, result *shared.WalletStatsResult) error {
	if format == outputYAML {
		return writeYAML(out, result)
	}
	writeHeader(out, result.Address, result.LastStatsCheck, result.IsBot, result.IsScammer)
	return writePeriods(out, result.Periods)
}

// renderWallet writes a single wallet with whichever periods it has stats for.
func renderWallet(out io.Writer, format string, result *shared.WalletResult) error {
	if format == outputYAML {
		return writeYAML(out, result)
	}
	writeHeader(out, result.Address, result.LastStatsCheck, result.IsBot, result.IsScammer)
	fmt.Fprintf(out, "tracked at:  %s\n", result.CreatedAt)

	var periods []shared.PeriodStatsEntry
	for _, p := range []*shared.PeriodStatsEntry{result.Stats7d, result.Stats30d, result.StatsAll} {
		if p != nil {
			periods = append(periods, *p)
		}
	}
	if len(periods) == 0 {
		fmt.Fprintln(out, "no statistics yet")
		return nil
	}
	return writePeriods(out, periods)
}

func writePeriods(out io.Writer, periods []shared.PeriodStatsEntry) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PERIOD\tTOKENS\tBUYS\tSALES\tPROFIT USD\tMULTIPLIER\tWINRATE")
	for _, p := range periods {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.2f\t%s\t%s\n",
			p.Period,
			p.TotalToken,
			p.TotalBuys,
			p.TotalSales,
			p.TotalProfitUSD,
			formatRatio(p.TotalProfitMultiplier, ""),
			formatRatio(p.Winrate, "%"),
		)
	}
	return tw.Flush()
}

// renderWallets writes one page of the wallet listing.
func renderWallets(out io.Writer, format string, page *shared.WalletsPageResult) error {
	if format == outputYAML {
		return writeYAML(out, page)
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDRESS\tBOT\tSCAMMER\tCHECKED AT\tTRACKED AT")
	for _, w := range page.Wallets {
		checked := w.LastStatsCheck
		if checked == "" {
			checked = "never"
		}
		fmt.Fprintf(tw, "%s\t%t\t%t\t%s\t%s\n", w.Address, w.IsBot, w.IsScammer, checked, w.CreatedAt)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	writePageFooter(out, page.Pagination)
	return nil
}

// renderTokens writes one page of a wallet's token aggregates.
func renderTokens(out io.Writer, format string, page *shared.WalletTokensPageResult) error {
	if format == outputYAML {
		return writeYAML(out, page)
	}
	fmt.Fprintf(out, "wallet:      %s\n", page.Address)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tBUYS\tSALES\tBUY USD\tSELL USD\tPROFIT USD\tPROFIT %\tHOLD SECONDS")
	for _, ts := range page.Tokens {
		hold := "-"
		if ts.FirstBuySellSeconds != nil {
			hold = strconv.FormatInt(*ts.FirstBuySellSeconds, 10)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%.2f\t%.2f\t%s\t%s\n",
			ts.TokenAddress,
			ts.TotalBuys,
			ts.TotalSales,
			ts.TotalBuyAmountUSD,
			ts.TotalSellAmountUSD,
			ts.TotalProfitUSD,
			formatRatio(ts.TotalProfitPercent, "%"),
			hold,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	writePageFooter(out, page.Pagination)
	return nil
}

func writePageFooter(out io.Writer, p shared.PaginationResult) {
	fmt.Fprintf(out, "page %d of %d (%d of %d shown)\n", p.Page, p.TotalPages, p.Count, p.TotalCount)
}

func formatRatio(v *float64, suffix string) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64) + suffix
}
