package market

import (
	"context"
	"fmt"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
)

// AlpacaFeed prices instruments from the latest trade reported by the Alpaca
// market data API. Credentials come from APCA_API_KEY_ID / APCA_API_SECRET_KEY.
//
// The Alpaca client takes no context, so wrap this feed in a TimeoutFeed.
type AlpacaFeed struct {
	mdClient *marketdata.Client
}

func NewAlpacaFeed() *AlpacaFeed {
	return &AlpacaFeed{
		mdClient: marketdata.NewClient(marketdata.ClientOpts{}),
	}
}

func (a *AlpacaFeed) Quote(ctx context.Context, symbol string) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, Unavailable(symbol, err)
	}

	trade, err := a.mdClient.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{})
	if err != nil {
		return Quote{}, Unavailable(symbol, err)
	}
	if trade == nil {
		return Quote{}, Unavailable(symbol, fmt.Errorf("no trade found"))
	}

	return Quote{
		Instrument: symbol,
		Price:      decimal.NewFromFloat(trade.Price),
		Time:       trade.Timestamp,
	}, nil
}
