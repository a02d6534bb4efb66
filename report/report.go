// Package report turns snapshots, trade history and review notes into
// markdown for the terminal, or JSON for scripts.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/glamour"
	"github.com/rustyeddy/reflect/currency"
	"github.com/rustyeddy/reflect/ledger"
	"github.com/rustyeddy/reflect/market"
	"github.com/rustyeddy/reflect/review"
	"github.com/rustyeddy/reflect/sim"
	"github.com/shopspring/decimal"
)

const wordWrap = 100

// Render writes md to w, styled for a terminal when glamour can build a
// renderer and as plain markdown otherwise.
func Render(w io.Writer, md string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err == nil {
		if out, err := r.Render(md); err == nil {
			_, err = io.WriteString(w, out)
			return err
		}
	}
	_, err = io.WriteString(w, md)
	return err
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

func money(amount decimal.Decimal, code string) string {
	if strings.EqualFold(code, currency.KRW) {
		return currency.Smart(amount)
	}
	return currency.Format(amount, code)
}

func name(symbol string) string {
	inst, _ := market.Lookup(symbol)
	if inst.Name == symbol {
		return symbol
	}
	return fmt.Sprintf("%s (%s)", inst.Name, symbol)
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Snapshot renders a portfolio valuation.
func Snapshot(s sim.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio %s\n\n", s.AccountID)
	fmt.Fprintf(&b, "_as of %s_\n\n", s.Time.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "| | |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Total value | %s |\n", money(s.TotalValue, s.Currency))
	fmt.Fprintf(&b, "| Cash | %s |\n", money(s.Cash, s.Currency))
	fmt.Fprintf(&b, "| Holdings | %s |\n", money(s.MarketValue, s.Currency))
	fmt.Fprintf(&b, "| Unrealized P&L | %s |\n", currency.Signed(s.UnrealizedPL, s.Currency))
	fmt.Fprintf(&b, "| Realized P&L | %s |\n", currency.Signed(s.RealizedPL, s.Currency))
	fmt.Fprintf(&b, "| Trades | %d |\n\n", s.TradeCount)

	if len(s.Holdings) == 0 {
		b.WriteString("No holdings.\n")
		return b.String()
	}

	b.WriteString("## Holdings\n\n")
	b.WriteString("| Instrument | Qty | Avg cost | Price | Value | P&L | % | Weight |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, v := range s.Holdings {
		if !v.Known {
			fmt.Fprintf(&b, "| %s | %d | %s | n/a | n/a | n/a | n/a | n/a |\n",
				cell(name(v.Instrument)), v.Quantity, currency.Format(v.AvgCost, s.Currency))
			continue
		}
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s | %s%% |\n",
			cell(name(v.Instrument)), v.Quantity,
			currency.Format(v.AvgCost, s.Currency),
			currency.Format(v.Price, s.Currency),
			currency.Format(v.MarketValue, s.Currency),
			currency.Signed(v.UnrealizedPL, s.Currency),
			currency.Percent(v.UnrealizedPct),
			v.Weight.StringFixed(1))
	}
	if !s.Complete() {
		fmt.Fprintf(&b, "\n> No quote for %s; excluded from totals.\n", strings.Join(s.Unpriced, ", "))
	}
	return b.String()
}

// Trade renders one executed trade, with loss details for a losing sell.
func Trade(t ledger.TradeRecord, code string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s %d %s @ %s\n\n", strings.ToUpper(string(t.Side)), t.Quantity,
		name(t.Instrument), currency.Format(t.Price, code))
	fmt.Fprintf(&b, "- id: `%s`\n", t.ID)
	fmt.Fprintf(&b, "- amount: %s\n", currency.Format(t.Amount(), code))
	fmt.Fprintf(&b, "- time: %s\n", t.Time.Format("2006-01-02 15:04:05"))
	if t.Emotion != "" {
		fmt.Fprintf(&b, "- emotion: %s\n", t.Emotion)
	}
	if t.Confidence > 0 {
		fmt.Fprintf(&b, "- confidence: %d/10\n", t.Confidence)
	}
	if t.Memo != "" {
		fmt.Fprintf(&b, "- memo: %s\n", t.Memo)
	}
	if t.Side == ledger.Sell {
		fmt.Fprintf(&b, "- realized P&L: %s\n", currency.Signed(t.RealizedPL, code))
	}
	if l, ok := t.Loss(); ok {
		b.WriteString("\n### Loss\n\n")
		fmt.Fprintf(&b, "Sold at %s against an average cost of %s: %s (%s).\n\n",
			currency.Format(l.SellPrice, code), currency.Format(l.BuyPrice, code),
			money(l.LossAmount, code), currency.Percent(l.LossPercent))
		fmt.Fprintf(&b, "Write it up while it is fresh: `reflect review add %s`\n", t.ID)
	}
	return b.String()
}

// Preview renders the expected outcome of a sell.
func Preview(p sim.Preview, code string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Selling %d of %d %s\n\n", p.Quantity, p.Held, name(p.Instrument))
	fmt.Fprintf(&b, "| | |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Price | %s |\n", currency.Format(p.Price, code))
	fmt.Fprintf(&b, "| Average cost | %s |\n", currency.Format(p.AvgCost, code))
	fmt.Fprintf(&b, "| Proceeds | %s |\n", currency.Format(p.Proceeds, code))
	fmt.Fprintf(&b, "| Expected P&L | %s (%s) |\n", currency.Signed(p.ExpectedPL, code), currency.Percent(p.ExpectedPct))
	if p.IsLoss() {
		b.WriteString("\nThis sell locks in a loss.\n")
	}
	return b.String()
}

// History renders trades oldest first.
func History(trades []ledger.TradeRecord, code string) string {
	var b strings.Builder
	b.WriteString("# Trade history\n\n")
	if len(trades) == 0 {
		b.WriteString("No trades yet.\n")
		return b.String()
	}
	b.WriteString("| Time | Side | Instrument | Qty | Price | Amount | P&L | Emotion |\n")
	b.WriteString("|---|---|---|---:|---:|---:|---:|---|\n")
	for _, t := range trades {
		pl := ""
		if t.Side == ledger.Sell {
			pl = currency.Signed(t.RealizedPL, code)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s | %s | %s |\n",
			t.Time.Format("2006-01-02 15:04"), t.Side, cell(name(t.Instrument)), t.Quantity,
			currency.Format(t.Price, code), currency.Format(t.Amount(), code), pl, cell(t.Emotion))
	}

	st := review.Stats(trades)
	fmt.Fprintf(&b, "\n%d trades, %d sells, win rate %.0f%%, realized %s\n",
		st.Trades, st.Sells, 100*st.WinRate, currency.Signed(st.RealizedPL, code))
	return b.String()
}

// Notes renders review notes as a list of cards.
func Notes(notes []review.Note) string {
	var b strings.Builder
	b.WriteString("# Review notes\n\n")
	if len(notes) == 0 {
		b.WriteString("No notes match.\n")
		return b.String()
	}
	for _, n := range notes {
		star := ""
		if n.Favorite {
			star = " ★"
		}
		fmt.Fprintf(&b, "## %s %s%s\n\n", name(n.Symbol), n.TradeDate.Format("2006-01-02"), star)
		fmt.Fprintf(&b, "- note: `%s` trade: `%s`\n", n.ID, n.TradeID)
		fmt.Fprintf(&b, "- emotion: %s -> %s\n", n.OriginalEmotion, n.ReviewedEmotion)
		if len(n.DecisionBasis) > 0 {
			fmt.Fprintf(&b, "- basis: %s\n", strings.Join(n.DecisionBasis, ", "))
		}
		fmt.Fprintf(&b, "- scores: decision %d/10 (%s), emotion %d/10 (%s)\n\n",
			n.DecisionScore, review.Grade(float64(n.DecisionScore)),
			n.EmotionScore, review.Grade(float64(n.EmotionScore)))
		fmt.Fprintf(&b, "**Lessons.** %s\n\n", n.Lessons)
		if n.Principles != "" {
			fmt.Fprintf(&b, "**Principles.** %s\n\n", n.Principles)
		}
	}
	return b.String()
}

// Stats renders the review summary next to trading results.
func Stats(s review.Summary, ts review.TradeStats, code string) string {
	var b strings.Builder
	b.WriteString("# Review stats\n\n")
	b.WriteString("| | |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Notes | %d |\n", s.Notes)
	fmt.Fprintf(&b, "| Favorites | %d |\n", s.Favorites)
	if s.Notes > 0 {
		fmt.Fprintf(&b, "| Avg decision score | %.1f (%s) |\n", s.AvgDecision, review.Grade(s.AvgDecision))
		fmt.Fprintf(&b, "| Avg emotion score | %.1f (%s) |\n", s.AvgEmotion, review.Grade(s.AvgEmotion))
	}
	if s.TopEmotion != "" {
		fmt.Fprintf(&b, "| Most common emotion | %s (%d) |\n", cell(s.TopEmotion), s.TopEmotionSeen)
	}
	fmt.Fprintf(&b, "| Sells | %d |\n", ts.Sells)
	fmt.Fprintf(&b, "| Win rate | %.0f%% |\n", 100*ts.WinRate)
	fmt.Fprintf(&b, "| Losing trades | %d |\n", ts.Losses)
	fmt.Fprintf(&b, "| Largest loss | %s |\n", currency.Signed(ts.LargestLoss, code))
	fmt.Fprintf(&b, "| Realized P&L | %s |\n", currency.Signed(ts.RealizedPL, code))
	if ts.Sells > 0 {
		fmt.Fprintf(&b, "| Avg return | %s |\n", currency.Percent(ts.AvgReturnPct))
		fmt.Fprintf(&b, "| Worst return | %s |\n", currency.Percent(ts.WorstReturnPct))
	}

	if len(ts.ByEmotion) > 0 {
		b.WriteString("\n## By emotion\n\n")
		b.WriteString("| Emotion | Sells | Win rate | Avg return | Realized P&L |\n")
		b.WriteString("|---|---:|---:|---:|---:|\n")
		for _, e := range ts.ByEmotion {
			fmt.Fprintf(&b, "| %s | %d | %.0f%% | %s | %s |\n", cell(e.Emotion), e.Sells, 100*e.WinRate,
				currency.Percent(e.AvgReturnPct), currency.Signed(e.RealizedPL, code))
		}
	}

	if len(ts.Monthly) > 0 {
		b.WriteString("\n## Trades per month\n\n")
		b.WriteString("| Month | Trades |\n|---|---:|\n")
		for _, m := range ts.Monthly {
			fmt.Fprintf(&b, "| %s | %d |\n", m.Month, m.Trades)
		}
	}
	return b.String()
}
