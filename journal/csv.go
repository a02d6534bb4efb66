// journal/csv.go
package journal

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/reflect/ledger"
	"github.com/rustyeddy/reflect/review"
	"github.com/shopspring/decimal"
)

const (
	TradesFile = "trades.csv"
	EquityFile = "equity.csv"
	NotesFile  = "notes.csv"
)

var (
	tradesHeader = []string{"account_id", "trade_id", "time", "instrument", "side", "quantity", "price", "amount",
		"cost_basis", "realized_pl", "emotion", "memo", "confidence"}
	equityHeader = []string{"account_id", "time", "cash", "market_value", "total_value", "unrealized_pl",
		"realized_pl", "unpriced"}
	notesHeader = []string{"note_id", "account_id", "trade_id", "instrument", "trade_date", "original_emotion",
		"reviewed_emotion", "decision_basis", "lessons", "principles", "decision_score", "emotion_score",
		"favorite", "reviewed_at"}
)

// CSVJournal keeps trades, equity snapshots and review notes as append-only
// CSV files in one directory. Files survive between sessions; a header is
// written only when a file is created. Each row goes to disk in one write,
// and a failed write is truncated away so the file never ends in half a row.
type CSVJournal struct {
	mu  sync.Mutex
	dir string

	trades *os.File
	equity *os.File
	notes  *os.File
}

func NewCSV(dir string) (*CSVJournal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	j := &CSVJournal{dir: dir}
	var err error
	if j.trades, err = j.open(TradesFile, tradesHeader); err != nil {
		j.Close()
		return nil, err
	}
	if j.equity, err = j.open(EquityFile, equityHeader); err != nil {
		j.Close()
		return nil, err
	}
	if j.notes, err = j.open(NotesFile, notesHeader); err != nil {
		j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSVJournal) open(name string, header []string) (*os.File, error) {
	path := filepath.Join(j.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.Size() == 0 {
		if err := writeRow(f, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("write %s header: %w", name, err)
		}
	}
	return f, nil
}

// writeRow encodes row in memory and appends it with a single write. If the
// write fails the file is cut back to its previous size.
func writeRow(f *os.File, row []string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		if terr := f.Truncate(info.Size()); terr != nil {
			return errors.Join(err, fmt.Errorf("truncate partial row: %w", terr))
		}
		return err
	}
	return nil
}

func (j *CSVJournal) RecordTrade(ctx context.Context, t ledger.TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return writeRow(j.trades, []string{
		t.AccountID,
		t.ID,
		ts(t.Time),
		t.Instrument,
		string(t.Side),
		strconv.FormatInt(t.Quantity, 10),
		t.Price.String(),
		t.Amount().String(),
		sellOnly(t, t.CostBasis),
		sellOnly(t, t.RealizedPL),
		t.Emotion,
		t.Memo,
		strconv.Itoa(t.Confidence),
	})
}

func (j *CSVJournal) RecordEquity(ctx context.Context, e EquitySnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return writeRow(j.equity, []string{
		e.AccountID,
		ts(e.Time),
		e.Cash.String(),
		e.MarketValue.String(),
		e.TotalValue.String(),
		e.UnrealizedPL.String(),
		e.RealizedPL.String(),
		strconv.Itoa(e.Unpriced),
	})
}

func (j *CSVJournal) SaveNote(ctx context.Context, n review.Note) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return writeRow(j.notes, []string{
		n.ID,
		n.AccountID,
		n.TradeID,
		n.Symbol,
		ts(n.TradeDate),
		n.OriginalEmotion,
		n.ReviewedEmotion,
		strings.Join(n.DecisionBasis, "|"),
		n.Lessons,
		n.Principles,
		strconv.Itoa(n.DecisionScore),
		strconv.Itoa(n.EmotionScore),
		strconv.FormatBool(n.Favorite),
		ts(n.ReviewedAt),
	})
}

// Trades reads back every trade recorded for accountID, in file order.
func (j *CSVJournal) Trades(ctx context.Context, accountID string) ([]ledger.TradeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var out []ledger.TradeRecord
	err := j.scan(TradesFile, len(tradesHeader), func(line int, row []string) error {
		if row[0] != accountID {
			return nil
		}
		t, err := parseTrade(row)
		if err != nil {
			return fmt.Errorf("%s line %d: %w", TradesFile, line, err)
		}
		out = append(out, t)
		return nil
	})
	return out, err
}

// Notes reads back the review notes for accountID. A note saved more than
// once is returned in its latest form, at the position it first appeared.
// A deleted note is dropped; saving its id again starts it over at the end.
func (j *CSVJournal) Notes(ctx context.Context, accountID string) ([]review.Note, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.readNotes(accountID)
}

func (j *CSVJournal) readNotes(accountID string) ([]review.Note, error) {
	var notes []*review.Note
	index := map[string]int{}
	err := j.scan(NotesFile, len(notesHeader), func(line int, row []string) error {
		if row[1] != accountID {
			return nil
		}
		if isTombstone(row) {
			if i, ok := index[row[0]]; ok {
				notes[i] = nil
				delete(index, row[0])
			}
			return nil
		}
		n, err := parseNote(row)
		if err != nil {
			return fmt.Errorf("%s line %d: %w", NotesFile, line, err)
		}
		if i, ok := index[n.ID]; ok {
			notes[i] = &n
			return nil
		}
		index[n.ID] = len(notes)
		notes = append(notes, &n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var out []review.Note
	for _, n := range notes {
		if n != nil {
			out = append(out, *n)
		}
	}
	return out, nil
}

// DeleteNote appends a tombstone row for the note: its id and account with
// every other column empty. Saved notes always carry a decision score, so
// the two never collide.
func (j *CSVJournal) DeleteNote(ctx context.Context, accountID, noteID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	notes, err := j.readNotes(accountID)
	if err != nil {
		return err
	}
	found := false
	for _, n := range notes {
		if n.ID == noteID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrNoteNotFound, noteID)
	}

	row := make([]string, len(notesHeader))
	row[0], row[1] = noteID, accountID
	return writeRow(j.notes, row)
}

func isTombstone(row []string) bool {
	for _, f := range row[2:] {
		if f != "" {
			return false
		}
	}
	return true
}

func (j *CSVJournal) scan(name string, width int, fn func(line int, row []string) error) error {
	f, err := os.Open(filepath.Join(j.dir, name))
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = width
	line := 0
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		line++
		if line == 1 {
			continue // header
		}
		if err := fn(line, row); err != nil {
			return err
		}
	}
}

func (j *CSVJournal) Close() error {
	var errs []error
	for _, f := range []*os.File{j.trades, j.equity, j.notes} {
		if f != nil {
			errs = append(errs, f.Close())
		}
	}
	j.trades, j.equity, j.notes = nil, nil, nil
	return errors.Join(errs...)
}

func parseTrade(row []string) (ledger.TradeRecord, error) {
	var (
		t   ledger.TradeRecord
		err error
	)
	t.AccountID = row[0]
	t.ID = row[1]
	if t.Time, err = time.Parse(time.RFC3339Nano, row[2]); err != nil {
		return t, fmt.Errorf("time: %w", err)
	}
	t.Instrument = row[3]
	if t.Side, err = ledger.ParseSide(row[4]); err != nil {
		return t, err
	}
	if t.Quantity, err = strconv.ParseInt(row[5], 10, 64); err != nil {
		return t, fmt.Errorf("quantity: %w", err)
	}
	if t.Price, err = decimal.NewFromString(row[6]); err != nil {
		return t, fmt.Errorf("price: %w", err)
	}
	if t.CostBasis, err = optDecimal(row[8]); err != nil {
		return t, fmt.Errorf("cost_basis: %w", err)
	}
	if t.RealizedPL, err = optDecimal(row[9]); err != nil {
		return t, fmt.Errorf("realized_pl: %w", err)
	}
	t.Emotion = row[10]
	t.Memo = row[11]
	if row[12] != "" {
		if t.Confidence, err = strconv.Atoi(row[12]); err != nil {
			return t, fmt.Errorf("confidence: %w", err)
		}
	}
	return t, nil
}

func parseNote(row []string) (review.Note, error) {
	var (
		n   review.Note
		err error
	)
	n.ID = row[0]
	n.AccountID = row[1]
	n.TradeID = row[2]
	n.Symbol = row[3]
	if n.TradeDate, err = optTime(row[4]); err != nil {
		return n, fmt.Errorf("trade_date: %w", err)
	}
	n.OriginalEmotion = row[5]
	n.ReviewedEmotion = row[6]
	if row[7] != "" {
		n.DecisionBasis = strings.Split(row[7], "|")
	}
	n.Lessons = row[8]
	n.Principles = row[9]
	if n.DecisionScore, err = strconv.Atoi(row[10]); err != nil {
		return n, fmt.Errorf("decision_score: %w", err)
	}
	if n.EmotionScore, err = strconv.Atoi(row[11]); err != nil {
		return n, fmt.Errorf("emotion_score: %w", err)
	}
	if n.Favorite, err = strconv.ParseBool(row[12]); err != nil {
		return n, fmt.Errorf("favorite: %w", err)
	}
	if n.ReviewedAt, err = optTime(row[13]); err != nil {
		return n, fmt.Errorf("reviewed_at: %w", err)
	}
	return n, nil
}

func ts(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func optTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func optDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func sellOnly(t ledger.TradeRecord, v decimal.Decimal) string {
	if t.Side != ledger.Sell {
		return ""
	}
	return v.String()
}
