package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"StockBoard/internal/model"
	"StockBoard/internal/report"
)

type snapshotCmd struct {
	period   string
	interval string
	symbols  string
	raw      bool
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "print the latest price per company" }
func (*snapshotCmd) Usage() string {
	return `stockboard snapshot [-period <p>] [-interval <i>] [-symbols <a,b>] [-raw]

  Fetches the selected companies once and prints the latest price of each.
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", "", "Period: 1mo, 3mo, 6mo, 1y or 5y. Defaults to the configured period.")
	f.StringVar(&c.interval, "interval", "", "Interval: 1d, 1wk or 1mo. Defaults to the configured interval.")
	f.StringVar(&c.symbols, "symbols", "", "Comma separated symbols. Defaults to every configured company.")
	f.BoolVar(&c.raw, "raw", false, "Print Markdown without terminal styling.")
}

func (c *snapshotCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	sel := a.cfg.DefaultSelection()
	if c.period != "" {
		if sel.Period, err = model.ParsePeriod(c.period); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.interval != "" {
		if sel.Interval, err = model.ParseInterval(c.interval); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.symbols != "" {
		var symbols []string
		for _, s := range strings.Split(c.symbols, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
		if sel.Companies, err = a.cfg.SelectCompanies(symbols); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	dash, err := a.collector.Build(ctx, sel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	out := report.LatestMarkdown(dash, a.cfg.Dashboard.Currency)
	if !c.raw {
		if out, err = report.RenderTerminal(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	fmt.Print(out)
	if dash.NoData {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
