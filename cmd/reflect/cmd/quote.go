package cmd

import (
	"fmt"

	"github.com/rustyeddy/reflect/currency"
	"github.com/rustyeddy/reflect/market"
	"github.com/spf13/cobra"
)

var quoteCmd = &cobra.Command{
	Use:   "quote <symbol>...",
	Short: "Show current prices",
	Long: `Fetch the current price of one or more instruments from the configured feed.

Example:
  reflect quote 005930 035720`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuote,
}

var instrumentsCmd = &cobra.Command{
	Use:   "instruments",
	Short: "List the built-in instrument catalog",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, sym := range market.Symbols() {
			inst, _ := market.Lookup(sym)
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", inst.Symbol, inst.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(instrumentsCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	s, done, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer done()

	var failed int
	for _, sym := range args {
		inst, _ := market.Lookup(sym)
		q, err := s.Feed.Quote(cmd.Context(), sym)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", sym, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s %s\n", sym, inst.Name, currency.Format(q.Price, s.Currency()))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d quotes unavailable", failed, len(args))
	}
	return nil
}
