package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

// Policy holds pre-trade limits. Zero values disable a check.
type Policy struct {
	// Exposure limits
	MaxPositionPct float64 `json:"max_position_pct" yaml:"max_position_pct"` // 0.30
	MaxOrderPct    float64 `json:"max_order_pct" yaml:"max_order_pct"`       // 0.20

	// Circuit breaker
	MaxDailyLossPct float64 `json:"max_daily_loss_pct" yaml:"max_daily_loss_pct"` // 0.05

	// Trades tagged with one of these emotions need a memo.
	MemoRequiredEmotions []string `json:"memo_required_emotions,omitempty" yaml:"memo_required_emotions,omitempty"`

	// Enforce turns violations into rejections. Otherwise they are warnings.
	Enforce bool `json:"enforce" yaml:"enforce"`
}

// Intent is an order about to be executed at Price.
type Intent struct {
	Now        time.Time
	Instrument string
	Buy        bool
	Quantity   int64
	Price      decimal.Decimal

	Emotion string
	Memo    string
}

// View is the slice of account state the checks need.
type View struct {
	Cash          decimal.Decimal
	PositionValue decimal.Decimal // instrument already held, at Intent.Price
	TotalValue    decimal.Decimal // cash plus holdings
	DayRealized   decimal.Decimal // realized P&L on Intent.Now's day
}
