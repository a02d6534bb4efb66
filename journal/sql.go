package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/reflect/ledger"
	"github.com/rustyeddy/reflect/review"
	"github.com/shopspring/decimal"
)

// SQLJournal is a Store backed by SQLite or PostgreSQL. Queries are written
// with ? placeholders and rebound for the driver in use.
type SQLJournal struct {
	db *sqlx.DB
}

// NewSQLite opens (or creates) the database at path. ":memory:" is allowed.
func NewSQLite(path string) (*SQLJournal, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: can't open sqlite journal", err)
	}
	// one connection, so an in-memory database is shared and writes serialize
	db.SetMaxOpenConns(1)
	return newSQL(db, sqliteSchema)
}

func NewPostgres(cfg *PostgresConfig) (*SQLJournal, error) {
	db, err := sqlx.Connect("postgres", cfg.Setup().String())
	if err != nil {
		return nil, fmt.Errorf("%w: can't connect to postgres", err)
	}
	return newSQL(db, postgresSchema)
}

func newSQL(db *sqlx.DB, schema string) (*SQLJournal, error) {
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: can't create journal schema", err)
	}
	return &SQLJournal{db: db}, nil
}

type tradeRow struct {
	ID         string              `db:"trade_id"`
	AccountID  string              `db:"account_id"`
	Instrument string              `db:"instrument"`
	Side       string              `db:"side"`
	Quantity   int64               `db:"quantity"`
	Price      decimal.Decimal     `db:"price"`
	Time       time.Time           `db:"executed_at"`
	CostBasis  decimal.NullDecimal `db:"cost_basis"`
	RealizedPL decimal.NullDecimal `db:"realized_pl"`
	Emotion    string              `db:"emotion"`
	Memo       string              `db:"memo"`
	Confidence int                 `db:"confidence"`
}

func newTradeRow(t ledger.TradeRecord) tradeRow {
	r := tradeRow{
		ID:         t.ID,
		AccountID:  t.AccountID,
		Instrument: t.Instrument,
		Side:       string(t.Side),
		Quantity:   t.Quantity,
		Price:      t.Price,
		Time:       t.Time.UTC(),
		Emotion:    t.Emotion,
		Memo:       t.Memo,
		Confidence: t.Confidence,
	}
	if t.Side == ledger.Sell {
		r.CostBasis = decimal.NewNullDecimal(t.CostBasis)
		r.RealizedPL = decimal.NewNullDecimal(t.RealizedPL)
	}
	return r
}

func (r tradeRow) record() (ledger.TradeRecord, error) {
	side, err := ledger.ParseSide(r.Side)
	if err != nil {
		return ledger.TradeRecord{}, fmt.Errorf("trade %s: %w", r.ID, err)
	}
	return ledger.TradeRecord{
		ID:         r.ID,
		AccountID:  r.AccountID,
		Instrument: r.Instrument,
		Side:       side,
		Quantity:   r.Quantity,
		Price:      r.Price,
		Time:       r.Time.UTC(),
		CostBasis:  r.CostBasis.Decimal,
		RealizedPL: r.RealizedPL.Decimal,
		Emotion:    r.Emotion,
		Memo:       r.Memo,
		Confidence: r.Confidence,
	}, nil
}

func records(rows []tradeRow) ([]ledger.TradeRecord, error) {
	out := make([]ledger.TradeRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

const (
	_tradeColumns = `trade_id, account_id, instrument, side, quantity, price, executed_at,
		cost_basis, realized_pl, emotion, memo, confidence`

	_insertTrade = `INSERT INTO trades (` + _tradeColumns + `)
		VALUES (:trade_id, :account_id, :instrument, :side, :quantity, :price, :executed_at,
		:cost_basis, :realized_pl, :emotion, :memo, :confidence)`

	_queryTrades = `SELECT ` + _tradeColumns + ` FROM trades WHERE account_id = ? ORDER BY seq`

	_insertEquity = `INSERT INTO equity
		(account_id, time, cash, market_value, total_value, unrealized_pl, realized_pl, unpriced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
)

func (j *SQLJournal) RecordTrade(ctx context.Context, t ledger.TradeRecord) error {
	if _, err := j.db.NamedExecContext(ctx, _insertTrade, newTradeRow(t)); err != nil {
		return fmt.Errorf("%w: can't record trade %s", err, t.ID)
	}
	return nil
}

func (j *SQLJournal) RecordEquity(ctx context.Context, e EquitySnapshot) error {
	if _, err := j.db.ExecContext(ctx, j.db.Rebind(_insertEquity),
		e.AccountID, e.Time.UTC(), e.Cash, e.MarketValue, e.TotalValue,
		e.UnrealizedPL, e.RealizedPL, e.Unpriced,
	); err != nil {
		return fmt.Errorf("%w: can't record equity", err)
	}
	return nil
}

// Trades returns the account's trades in the order they were recorded.
func (j *SQLJournal) Trades(ctx context.Context, accountID string) ([]ledger.TradeRecord, error) {
	var rows []tradeRow
	if err := j.db.SelectContext(ctx, &rows, j.db.Rebind(_queryTrades), accountID); err != nil {
		return nil, fmt.Errorf("%w: can't query trades", err)
	}
	return records(rows)
}

type equityRow struct {
	AccountID    string          `db:"account_id"`
	Time         time.Time       `db:"time"`
	Cash         decimal.Decimal `db:"cash"`
	MarketValue  decimal.Decimal `db:"market_value"`
	TotalValue   decimal.Decimal `db:"total_value"`
	UnrealizedPL decimal.Decimal `db:"unrealized_pl"`
	RealizedPL   decimal.Decimal `db:"realized_pl"`
	Unpriced     int             `db:"unpriced"`
}

type noteRow struct {
	ID              string       `db:"note_id"`
	AccountID       string       `db:"account_id"`
	TradeID         string       `db:"trade_id"`
	Symbol          string       `db:"instrument"`
	TradeDate       sql.NullTime `db:"trade_date"`
	OriginalEmotion string       `db:"original_emotion"`
	ReviewedEmotion string       `db:"reviewed_emotion"`
	DecisionBasis   string       `db:"decision_basis"`
	Lessons         string       `db:"lessons"`
	Principles      string       `db:"principles"`
	DecisionScore   int          `db:"decision_score"`
	EmotionScore    int          `db:"emotion_score"`
	Favorite        bool         `db:"favorite"`
	ReviewedAt      sql.NullTime `db:"reviewed_at"`
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func newNoteRow(n review.Note) noteRow {
	return noteRow{
		ID:              n.ID,
		AccountID:       n.AccountID,
		TradeID:         n.TradeID,
		Symbol:          n.Symbol,
		TradeDate:       nullTime(n.TradeDate),
		OriginalEmotion: n.OriginalEmotion,
		ReviewedEmotion: n.ReviewedEmotion,
		DecisionBasis:   strings.Join(n.DecisionBasis, "|"),
		Lessons:         n.Lessons,
		Principles:      n.Principles,
		DecisionScore:   n.DecisionScore,
		EmotionScore:    n.EmotionScore,
		Favorite:        n.Favorite,
		ReviewedAt:      nullTime(n.ReviewedAt),
	}
}

func (r noteRow) note() review.Note {
	n := review.Note{
		ID:              r.ID,
		AccountID:       r.AccountID,
		TradeID:         r.TradeID,
		Symbol:          r.Symbol,
		OriginalEmotion: r.OriginalEmotion,
		ReviewedEmotion: r.ReviewedEmotion,
		Lessons:         r.Lessons,
		Principles:      r.Principles,
		DecisionScore:   r.DecisionScore,
		EmotionScore:    r.EmotionScore,
		Favorite:        r.Favorite,
	}
	if r.DecisionBasis != "" {
		n.DecisionBasis = strings.Split(r.DecisionBasis, "|")
	}
	if r.TradeDate.Valid {
		n.TradeDate = r.TradeDate.Time.UTC()
	}
	if r.ReviewedAt.Valid {
		n.ReviewedAt = r.ReviewedAt.Time.UTC()
	}
	return n
}

const (
	_upsertNote = `INSERT INTO notes (
			note_id, account_id, trade_id, instrument, trade_date, original_emotion,
			reviewed_emotion, decision_basis, lessons, principles, decision_score,
			emotion_score, favorite, reviewed_at
		) VALUES (
			:note_id, :account_id, :trade_id, :instrument, :trade_date, :original_emotion,
			:reviewed_emotion, :decision_basis, :lessons, :principles, :decision_score,
			:emotion_score, :favorite, :reviewed_at
		)
		ON CONFLICT (note_id)
		DO UPDATE SET
			reviewed_emotion = EXCLUDED.reviewed_emotion,
			decision_basis = EXCLUDED.decision_basis,
			lessons = EXCLUDED.lessons,
			principles = EXCLUDED.principles,
			decision_score = EXCLUDED.decision_score,
			emotion_score = EXCLUDED.emotion_score,
			favorite = EXCLUDED.favorite,
			reviewed_at = EXCLUDED.reviewed_at`

	_queryNotes = `SELECT note_id, account_id, trade_id, instrument, trade_date, original_emotion,
		reviewed_emotion, decision_basis, lessons, principles, decision_score,
		emotion_score, favorite, reviewed_at
		FROM notes WHERE account_id = ? ORDER BY note_id`

	_deleteNote = `DELETE FROM notes WHERE account_id = ? AND note_id = ?`
)

func (j *SQLJournal) SaveNote(ctx context.Context, n review.Note) error {
	if _, err := j.db.NamedExecContext(ctx, _upsertNote, newNoteRow(n)); err != nil {
		return fmt.Errorf("%w: can't save note %s", err, n.ID)
	}
	return nil
}

// Notes returns the account's notes ordered by id, which is creation order.
func (j *SQLJournal) Notes(ctx context.Context, accountID string) ([]review.Note, error) {
	var rows []noteRow
	if err := j.db.SelectContext(ctx, &rows, j.db.Rebind(_queryNotes), accountID); err != nil {
		return nil, fmt.Errorf("%w: can't query notes", err)
	}
	out := make([]review.Note, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.note())
	}
	return out, nil
}

func (j *SQLJournal) DeleteNote(ctx context.Context, accountID, noteID string) error {
	res, err := j.db.ExecContext(ctx, j.db.Rebind(_deleteNote), accountID, noteID)
	if err != nil {
		return fmt.Errorf("%w: can't delete note %s", err, noteID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: can't delete note %s", err, noteID)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNoteNotFound, noteID)
	}
	return nil
}

func (j *SQLJournal) Close() error {
	return j.db.Close()
}
