package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/reflect/ledger"
	"github.com/rustyeddy/reflect/market"
)

// FormatTradeOrg renders a TradeRecord as an Org-mode block for a trading
// journal. Structured facts go in the PROPERTIES drawer; the emotion and memo
// captured at execution seed the Thesis section.
func FormatTradeOrg(t ledger.TradeRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** %s %s x%d (%s)\n", strings.ToUpper(string(t.Side)), t.Instrument, t.Quantity, shortID(t.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRADE_ID: %s\n", t.ID)
	fmt.Fprintf(&b, ":ID: %s\n", t.ID)
	fmt.Fprintf(&b, ":ACCOUNT: %s\n", t.AccountID)
	fmt.Fprintf(&b, ":INSTRUMENT: %s\n", t.Instrument)
	if inst, ok := market.Lookup(t.Instrument); ok {
		fmt.Fprintf(&b, ":NAME: %s\n", inst.Name)
	}
	fmt.Fprintf(&b, ":SIDE: %s\n", t.Side)
	fmt.Fprintf(&b, ":QUANTITY: %d\n", t.Quantity)
	fmt.Fprintf(&b, ":PRICE: %s\n", t.Price.StringFixed(2))
	fmt.Fprintf(&b, ":AMOUNT: %s\n", t.Amount().StringFixed(2))
	fmt.Fprintf(&b, ":TIME: %s\n", t.Time.UTC().Format(time.RFC3339))
	if t.Side == ledger.Sell {
		fmt.Fprintf(&b, ":COST_BASIS: %s\n", t.CostBasis.StringFixed(2))
		fmt.Fprintf(&b, ":REALIZED_PL: %s\n", t.RealizedPL.StringFixed(2))
	}
	if t.Emotion != "" {
		fmt.Fprintf(&b, ":EMOTION: %s\n", t.Emotion)
	}
	if t.Confidence > 0 {
		fmt.Fprintf(&b, ":CONFIDENCE: %d\n", t.Confidence)
	}
	b.WriteString(":END:\n\n")

	b.WriteString("*** Thesis\n")
	if t.Memo != "" {
		fmt.Fprintf(&b, "- %s\n\n", t.Memo)
	} else {
		b.WriteString("- \n\n")
	}
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n")
	if l, ok := t.Loss(); ok {
		fmt.Fprintf(&b, "- Loss of %s (%s%%) against average cost %s\n",
			l.LossAmount.StringFixed(2), l.LossPercent.StringFixed(2), l.BuyPrice.StringFixed(2))
	} else {
		b.WriteString("- \n")
	}
	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []ledger.TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

// shortID keeps the random tail of a ULID; the leading characters encode
// time and repeat across trades made close together.
func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
