package risk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrPolicyViolation = errors.New("policy violation")

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation

	OrderPct    float64
	PositionPct float64
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Err returns nil when allowed, otherwise an error wrapping
// ErrPolicyViolation that lists every violation.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	msgs := make([]string, 0, len(d.Violations))
	for _, v := range d.Violations {
		msgs = append(msgs, v.Code+": "+v.Msg)
	}
	return fmt.Errorf("%w: %s", ErrPolicyViolation, strings.Join(msgs, "; "))
}

func Evaluate(p Policy, in Intent, v View) Decision {
	d := Decision{Allowed: true}

	if in.Emotion != "" && strings.TrimSpace(in.Memo) == "" {
		for _, e := range p.MemoRequiredEmotions {
			if strings.EqualFold(e, in.Emotion) {
				d.add("MEMO_REQUIRED",
					fmt.Sprintf("trades tagged %s need a memo", in.Emotion))
				break
			}
		}
	}

	// Everything below only limits new exposure.
	if !in.Buy {
		return d
	}

	amount := in.Price.Mul(decimal.NewFromInt(in.Quantity))
	d.OrderPct = Pct(amount, v.Cash)
	d.PositionPct = Pct(v.PositionValue.Add(amount), v.TotalValue)

	if p.MaxOrderPct > 0 && d.OrderPct > p.MaxOrderPct {
		d.add("ORDER_TOO_LARGE",
			fmt.Sprintf("order uses %.1f%% of cash, max %.1f%%", 100*d.OrderPct, 100*p.MaxOrderPct))
	}
	if p.MaxPositionPct > 0 && d.PositionPct > p.MaxPositionPct {
		d.add("POSITION_TOO_LARGE",
			fmt.Sprintf("%s would be %.1f%% of the portfolio, max %.1f%%",
				in.Instrument, 100*d.PositionPct, 100*p.MaxPositionPct))
	}

	if p.MaxDailyLossPct > 0 && v.TotalValue.IsPositive() {
		limit := v.TotalValue.Mul(decimal.NewFromFloat(p.MaxDailyLossPct)).Neg()
		if v.DayRealized.LessThanOrEqual(limit) {
			d.add("DAILY_LOSS_LIMIT",
				fmt.Sprintf("realized %s today, limit %s", v.DayRealized.StringFixed(0), limit.StringFixed(0)))
		}
	}

	return d
}
