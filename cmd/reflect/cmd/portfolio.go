package cmd

import (
	"github.com/rustyeddy/reflect/report"
	"github.com/rustyeddy/reflect/sim"
	"github.com/spf13/cobra"
)

var portfolioCmd = &cobra.Command{
	Use:     "portfolio",
	Aliases: []string{"pf"},
	Short:   "Value the portfolio at current prices",
	Long: `Show cash, holdings, and profit and loss at current prices. Holdings
the feed cannot price are listed but left out of the totals.

Examples:
  reflect portfolio
  reflect portfolio --json
  reflect portfolio --record   # also journal an equity snapshot`,
	Args: cobra.NoArgs,
	RunE: runPortfolio,
}

var (
	portfolioJSON   bool
	portfolioRecord bool
)

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.Flags().BoolVar(&portfolioJSON, "json", false, "print JSON instead of a table")
	portfolioCmd.Flags().BoolVar(&portfolioRecord, "record", false, "journal an equity snapshot")
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	s, done, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer done()

	var snap sim.Snapshot
	if portfolioRecord {
		snap, err = s.RecordEquity(cmd.Context())
	} else {
		snap, err = s.Snapshotter.Snapshot(cmd.Context())
	}
	if err != nil {
		return err
	}

	if portfolioJSON {
		return report.JSON(cmd.OutOrStdout(), snap)
	}
	return report.Render(cmd.OutOrStdout(), report.Snapshot(snap))
}
