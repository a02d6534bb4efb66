package review

import (
	"sort"

	"github.com/rustyeddy/reflect/ledger"
	"github.com/shopspring/decimal"
)

// Summary aggregates a set of review notes.
type Summary struct {
	Notes          int
	Favorites      int
	AvgDecision    float64
	AvgEmotion     float64
	TopEmotion     string
	TopEmotionSeen int
}

func Summarize(notes []Note) Summary {
	s := Summary{Notes: len(notes)}
	if len(notes) == 0 {
		return s
	}

	var dec, emo int
	counts := map[string]int{}
	var order []string
	for _, n := range notes {
		if n.Favorite {
			s.Favorites++
		}
		dec += n.DecisionScore
		emo += n.EmotionScore
		if n.ReviewedEmotion != "" {
			if counts[n.ReviewedEmotion] == 0 {
				order = append(order, n.ReviewedEmotion)
			}
			counts[n.ReviewedEmotion]++
		}
	}
	s.AvgDecision = float64(dec) / float64(len(notes))
	s.AvgEmotion = float64(emo) / float64(len(notes))

	// First seen wins ties so the result is stable.
	for _, e := range order {
		if counts[e] > s.TopEmotionSeen {
			s.TopEmotion, s.TopEmotionSeen = e, counts[e]
		}
	}
	return s
}

// Grade buckets an average score.
func Grade(score float64) string {
	switch {
	case score >= 8:
		return "excellent"
	case score >= 6:
		return "good"
	case score >= 4:
		return "fair"
	default:
		return "needs work"
	}
}

// TradeStats summarises executed trades.
type TradeStats struct {
	Trades      int
	Buys        int
	Sells       int
	Wins        int
	Losses      int
	WinRate     float64 // wins / sells
	RealizedPL  decimal.Decimal
	LargestLoss decimal.Decimal // most negative realized P&L, zero if none

	// Percent returns over average cost, across sells that have a cost.
	AvgReturnPct   decimal.Decimal
	WorstReturnPct decimal.Decimal

	ByEmotion []EmotionStats // worst average return first
	Monthly   []MonthCount   // oldest month first
}

// Untagged groups sells recorded without an emotion.
const Untagged = "untagged"

// EmotionStats is how sells tagged with one emotion turned out.
type EmotionStats struct {
	Emotion      string
	Sells        int
	Wins         int
	WinRate      float64
	RealizedPL   decimal.Decimal
	AvgReturnPct decimal.Decimal
}

// MonthCount is the number of trades executed in one calendar month (UTC).
type MonthCount struct {
	Month  string // 2006-01
	Trades int
}

type returns struct {
	sum   decimal.Decimal
	count int64
}

func (r *returns) add(pct decimal.Decimal) {
	r.sum = r.sum.Add(pct)
	r.count++
}

func (r returns) avg() decimal.Decimal {
	if r.count == 0 {
		return decimal.Zero
	}
	return r.sum.Div(decimal.NewFromInt(r.count)).Round(2)
}

func Stats(trades []ledger.TradeRecord) TradeStats {
	s := TradeStats{Trades: len(trades)}

	var all returns
	emotions := map[string]*EmotionStats{}
	emotionReturns := map[string]*returns{}
	months := map[string]int{}

	for _, t := range trades {
		months[t.Time.UTC().Format("2006-01")]++

		if t.Side == ledger.Buy {
			s.Buys++
			continue
		}
		s.Sells++
		s.RealizedPL = s.RealizedPL.Add(t.RealizedPL)

		tag := t.Emotion
		if tag == "" {
			tag = Untagged
		}
		es, ok := emotions[tag]
		if !ok {
			es = &EmotionStats{Emotion: tag}
			emotions[tag] = es
			emotionReturns[tag] = &returns{}
		}
		es.Sells++
		es.RealizedPL = es.RealizedPL.Add(t.RealizedPL)

		switch {
		case t.RealizedPL.IsPositive():
			s.Wins++
			es.Wins++
		case t.RealizedPL.IsNegative():
			s.Losses++
			if t.RealizedPL.LessThan(s.LargestLoss) {
				s.LargestLoss = t.RealizedPL
			}
		}

		if pct, ok := t.ReturnPct(); ok {
			if all.count == 0 || pct.LessThan(s.WorstReturnPct) {
				s.WorstReturnPct = pct
			}
			all.add(pct)
			emotionReturns[tag].add(pct)
		}
	}
	if s.Sells > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Sells)
	}
	s.AvgReturnPct = all.avg()

	for tag, es := range emotions {
		es.WinRate = float64(es.Wins) / float64(es.Sells)
		es.AvgReturnPct = emotionReturns[tag].avg()
		s.ByEmotion = append(s.ByEmotion, *es)
	}
	sort.Slice(s.ByEmotion, func(i, j int) bool {
		a, b := s.ByEmotion[i], s.ByEmotion[j]
		if !a.AvgReturnPct.Equal(b.AvgReturnPct) {
			return a.AvgReturnPct.LessThan(b.AvgReturnPct)
		}
		return a.Emotion < b.Emotion
	})

	for m, n := range months {
		s.Monthly = append(s.Monthly, MonthCount{Month: m, Trades: n})
	}
	sort.Slice(s.Monthly, func(i, j int) bool { return s.Monthly[i].Month < s.Monthly[j].Month })
	return s
}
