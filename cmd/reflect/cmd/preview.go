package cmd

import (
	"github.com/rustyeddy/reflect/report"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview <symbol> <qty>",
	Short: "Show the expected profit or loss of a sell",
	Long: `Price a sell at the current quote against your average cost without
executing it.

Example:
  reflect preview 005930 4`,
	Args: cobra.ExactArgs(2),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	qty, err := parseQty(args[1])
	if err != nil {
		return err
	}

	s, done, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer done()

	p, err := s.Executor.PreviewSell(cmd.Context(), args[0], qty)
	if err != nil {
		return err
	}
	return report.Render(cmd.OutOrStdout(), report.Preview(p, s.Currency()))
}
