package journal

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/rustyeddy/reflect/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewCSV(dir)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	assert.Equal(t, [][]string{tradesHeader}, readCSV(t, filepath.Join(dir, TradesFile)))
	assert.Equal(t, [][]string{equityHeader}, readCSV(t, filepath.Join(dir, EquityFile)))
	assert.Equal(t, [][]string{notesHeader}, readCSV(t, filepath.Join(dir, NotesFile)))
}

func TestCSVJournalStore(t *testing.T) {
	t.Parallel()

	j, err := NewCSV(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	exerciseStore(t, j)
}

func TestCSVJournalRecordTradeRow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewCSV(dir)
	require.NoError(t, err)

	trades := sampleTrades()
	require.NoError(t, j.RecordTrade(context.Background(), trades[0]))
	require.NoError(t, j.RecordTrade(context.Background(), trades[2]))
	require.NoError(t, j.Close())

	rows := readCSV(t, filepath.Join(dir, TradesFile))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"acct", "01HS0000000000000000000001", "2024-03-15T01:30:00Z", "005930", "buy",
		"10", "71000", "710000", "", "", "#greed", "breakout, chasing", "7",
	}, rows[1])
	assert.Equal(t, []string{
		"acct", "01HS0000000000000000000003", "2024-03-15T02:30:00Z", "005930", "sell",
		"4", "68500.5", "274002", "71000", "-9998", "#fear", "", "0",
	}, rows[2])
}

func TestCSVJournalReopenAppends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	trades := sampleTrades()

	j, err := NewCSV(dir)
	require.NoError(t, err)
	require.NoError(t, j.RecordTrade(ctx, trades[0]))
	require.NoError(t, j.Close())

	j, err = NewCSV(dir)
	require.NoError(t, err)
	require.NoError(t, j.RecordTrade(ctx, trades[2]))

	got, err := j.Trades(ctx, "acct")
	require.NoError(t, err)
	require.NoError(t, j.Close())
	assertTradesEqual(t, []ledger.TradeRecord{trades[0], trades[2]}, got)

	// header only once
	rows := readCSV(t, filepath.Join(dir, TradesFile))
	assert.Len(t, rows, 3)
}

func TestCSVJournalRejectsCorruptRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	j, err := NewCSV(dir)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	f, err := os.OpenFile(filepath.Join(dir, TradesFile), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("acct,T1,not-a-time,005930,buy,1,100,100,,,,,0\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	j, err = NewCSV(dir)
	require.NoError(t, err)
	defer j.Close()

	_, err = j.Trades(ctx, "acct")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestCSVJournalDeleteNoteWritesTombstone(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	j, err := NewCSV(dir)
	require.NoError(t, err)
	require.NoError(t, j.SaveNote(ctx, sampleNote("N1", 4)))
	require.NoError(t, j.DeleteNote(ctx, "acct", "N1"))
	require.NoError(t, j.Close())

	rows := readCSV(t, filepath.Join(dir, NotesFile))
	require.Len(t, rows, 3)
	want := make([]string, len(notesHeader))
	want[0], want[1] = "N1", "acct"
	assert.Equal(t, want, rows[2])

	// The deletion survives a reopen.
	j, err = NewCSV(dir)
	require.NoError(t, err)
	defer j.Close()
	notes, err := j.Notes(ctx, "acct")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestCSVJournalFailedWriteLeavesFileReadable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	trades := sampleTrades()

	j, err := NewCSV(dir)
	require.NoError(t, err)
	require.NoError(t, j.RecordTrade(ctx, trades[0]))

	f, err := os.Open(filepath.Join(dir, TradesFile))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Error(t, writeRow(f, []string{"acct", "T9"}))

	require.NoError(t, j.Close())
	assert.Error(t, j.RecordTrade(ctx, trades[2]))

	j, err = NewCSV(dir)
	require.NoError(t, err)
	defer j.Close()
	got, err := j.Trades(ctx, "acct")
	require.NoError(t, err)
	assertTradesEqual(t, trades[:1], got)
}
