package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/reflect/ledger"
)

var ErrTradeNotFound = errors.New("trade not found")

const (
	_queryTrade = `SELECT ` + _tradeColumns + ` FROM trades WHERE trade_id = ?`

	_queryTradesBetween = `SELECT ` + _tradeColumns + ` FROM trades
		WHERE account_id = ? AND executed_at >= ? AND executed_at < ?
		ORDER BY executed_at ASC, seq ASC`

	_queryEquityBetween = `SELECT account_id, time, cash, market_value, total_value,
		unrealized_pl, realized_pl, unpriced
		FROM equity
		WHERE account_id = ? AND time >= ? AND time < ?
		ORDER BY time ASC`
)

// GetTrade returns a single trade record by ID.
func (j *SQLJournal) GetTrade(ctx context.Context, tradeID string) (ledger.TradeRecord, error) {
	var row tradeRow
	if err := j.db.GetContext(ctx, &row, j.db.Rebind(_queryTrade), tradeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.TradeRecord{}, fmt.Errorf("%w: %q", ErrTradeNotFound, tradeID)
		}
		return ledger.TradeRecord{}, fmt.Errorf("%w: can't query trade", err)
	}
	return row.record()
}

// ListTradesBetween returns the account's trades executed within [start, end).
func (j *SQLJournal) ListTradesBetween(ctx context.Context, accountID string, start, end time.Time) ([]ledger.TradeRecord, error) {
	var rows []tradeRow
	if err := j.db.SelectContext(ctx, &rows, j.db.Rebind(_queryTradesBetween),
		accountID, start.UTC(), end.UTC()); err != nil {
		return nil, fmt.Errorf("%w: can't query trades", err)
	}
	return records(rows)
}

// ListEquityBetween returns equity snapshots taken within [start, end).
func (j *SQLJournal) ListEquityBetween(ctx context.Context, accountID string, start, end time.Time) ([]EquitySnapshot, error) {
	var rows []equityRow
	if err := j.db.SelectContext(ctx, &rows, j.db.Rebind(_queryEquityBetween),
		accountID, start.UTC(), end.UTC()); err != nil {
		return nil, fmt.Errorf("%w: can't query equity", err)
	}
	out := make([]EquitySnapshot, 0, len(rows))
	for _, r := range rows {
		snap := EquitySnapshot(r)
		snap.Time = snap.Time.UTC()
		out = append(out, snap)
	}
	return out, nil
}
