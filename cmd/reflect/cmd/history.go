package cmd

import (
	"github.com/rustyeddy/reflect/report"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List executed trades",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var (
	historyJSON  bool
	historyLimit int
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print JSON instead of a table")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "only the most recent n trades")
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, done, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer done()

	trades := s.Account.View().Trades()
	if historyLimit > 0 && len(trades) > historyLimit {
		trades = trades[len(trades)-historyLimit:]
	}

	if historyJSON {
		return report.JSON(cmd.OutOrStdout(), trades)
	}
	return report.Render(cmd.OutOrStdout(), report.History(trades, s.Currency()))
}
