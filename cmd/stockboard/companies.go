package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
)

type companiesCmd struct{}

func (*companiesCmd) Name() string     { return "companies" }
func (*companiesCmd) Synopsis() string { return "list the configured companies" }
func (*companiesCmd) Usage() string {
	return `stockboard companies

  Lists the label and ticker symbol of every configured company.
`
}

func (*companiesCmd) SetFlags(*flag.FlagSet) {}

func (*companiesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tSYMBOL")
	for _, co := range cfg.Companies {
		fmt.Fprintf(w, "%s\t%s\n", co.Label, co.Symbol)
	}
	w.Flush()
	return subcommands.ExitSuccess
}
