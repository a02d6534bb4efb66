package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/reflect/internal/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const (
	_quotePath = "/quotes/{symbol}"
)

type quoteResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Time   time.Time       `json:"time"`
}

type quoteErrorResponse struct {
	Message string `json:"message"`
}

// HTTPFeed fetches quotes from a JSON quote service:
//
//	GET {base}/quotes/{symbol} -> {"symbol": "005930", "price": 71000, "time": "..."}
type HTTPFeed struct {
	c           *resty.Client
	rateLimiter ratelimit.Limiter

	logger logger.Logger
}

// NewHTTPFeed builds a feed for baseURL. ratePerMinute <= 0 disables rate
// limiting.
func NewHTTPFeed(baseURL string, ratePerMinute int, timeout time.Duration, logger logger.Logger) *HTTPFeed {
	client := resty.New().
		SetLogger(logger).
		SetBaseURL(strings.TrimRight(baseURL, "/"))
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	rl := ratelimit.NewUnlimited()
	if ratePerMinute > 0 {
		rl = ratelimit.New(ratePerMinute, ratelimit.Per(time.Minute))
	}

	return &HTTPFeed{
		c:           client,
		rateLimiter: rl,
		logger:      logger,
	}
}

func (f *HTTPFeed) Quote(ctx context.Context, symbol string) (Quote, error) {
	if symbol == "" {
		return Quote{}, Unavailable(symbol, fmt.Errorf("empty symbol"))
	}

	// Take can block past the caller's deadline; a request nobody waits
	// for is not sent.
	f.rateLimiter.Take()
	if err := ctx.Err(); err != nil {
		return Quote{}, Unavailable(symbol, err)
	}

	resp, err := f.c.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetResult(&quoteResponse{}).
		SetError(&quoteErrorResponse{}).
		Get(_quotePath)
	if err != nil {
		return Quote{}, Unavailable(symbol, fmt.Errorf("send quote request: %w", err))
	}
	defer resp.Body.Close()

	f.logger.Debugf("got response %s status: %s, %s", resp.Request.URL, resp.Status(), resp.Duration())

	if resp.IsError() {
		msg := resp.Status()
		if e, ok := resp.Error().(*quoteErrorResponse); ok && e.Message != "" {
			msg = e.Message
		}
		return Quote{}, Unavailable(symbol, fmt.Errorf("quote service: %s", msg))
	}
	if !resp.IsSuccess() {
		return Quote{}, Unavailable(symbol, fmt.Errorf("quote service unexpected status: %s", resp.Status()))
	}

	body, ok := resp.Result().(*quoteResponse)
	if !ok || body == nil {
		return Quote{}, Unavailable(symbol, fmt.Errorf("quote service: empty body"))
	}

	inst := body.Symbol
	if inst == "" {
		inst = symbol
	}
	return Quote{Instrument: inst, Price: body.Price, Time: body.Time}, nil
}
