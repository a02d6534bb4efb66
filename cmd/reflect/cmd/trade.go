package cmd

import (
	"fmt"
	"strconv"

	"github.com/rustyeddy/reflect/internal/session"
	"github.com/rustyeddy/reflect/ledger"
	"github.com/rustyeddy/reflect/report"
	"github.com/rustyeddy/reflect/sim"
	"github.com/spf13/cobra"
)

var buyCmd = &cobra.Command{
	Use:   "buy <symbol> <qty>",
	Short: "Buy shares at the current price",
	Long: `Buy whole shares at the feed's current price. The cost is debited from cash.

Examples:
  reflect buy 005930 10
  reflect buy 035720 5 --emotion "#fomo" --memo "everyone is talking about it" --confidence 4`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error { return runTrade(cmd, ledger.Buy, args) },
}

var sellCmd = &cobra.Command{
	Use:   "sell <symbol> <qty>",
	Short: "Sell shares at the current price",
	Long: `Sell whole shares at the feed's current price. A sell below average cost
prints the loss and suggests writing a review note.

Example:
  reflect sell 005930 4 --emotion "#fear" --memo "cutting the loss"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error { return runTrade(cmd, ledger.Sell, args) },
}

var (
	tradeEmotion    string
	tradeMemo       string
	tradeConfidence int
)

func init() {
	for _, c := range []*cobra.Command{buyCmd, sellCmd} {
		rootCmd.AddCommand(c)
		c.Flags().StringVarP(&tradeEmotion, "emotion", "e", "", "emotion tag, e.g. #fear, #greed, #fomo")
		c.Flags().StringVarP(&tradeMemo, "memo", "m", "", "why you are making this trade")
		c.Flags().IntVar(&tradeConfidence, "confidence", 0, "confidence 1-10")
	}
}

func parseQty(s string) (int64, error) {
	qty, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("quantity %q: %w", s, ledger.ErrInvalidQuantity)
	}
	return qty, nil
}

func runTrade(cmd *cobra.Command, side ledger.Side, args []string) error {
	qty, err := parseQty(args[1])
	if err != nil {
		return err
	}

	s, done, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer done()

	rec, err := s.Executor.Execute(cmd.Context(), sim.Order{
		Instrument: args[0],
		Side:       side,
		Quantity:   qty,
		Emotion:    tradeEmotion,
		Memo:       tradeMemo,
		Confidence: tradeConfidence,
	})
	if err != nil {
		if session.IsUserError(err) {
			return fmt.Errorf("order rejected: %w", err)
		}
		return err
	}

	return report.Render(cmd.OutOrStdout(), report.Trade(rec, s.Currency()))
}
