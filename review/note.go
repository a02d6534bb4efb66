// Package review keeps the trader's notes on losing trades and summarises
// them.
package review

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/reflect/internal/id"
	"github.com/rustyeddy/reflect/ledger"
)

const (
	MinScore = 1
	MaxScore = 10
)

var ErrInvalidNote = errors.New("invalid review note")

// Note is a trader's written review of one trade.
type Note struct {
	ID        string
	AccountID string
	TradeID   string
	Symbol    string
	TradeDate time.Time

	OriginalEmotion string
	ReviewedEmotion string
	DecisionBasis   []string

	Lessons    string
	Principles string

	DecisionScore int
	EmotionScore  int
	Favorite      bool

	ReviewedAt time.Time
}

// NewNote starts a note for rec, carrying over the emotion recorded at
// trade time.
func NewNote(rec ledger.TradeRecord, now time.Time) Note {
	return Note{
		ID:              id.At(now),
		AccountID:       rec.AccountID,
		TradeID:         rec.ID,
		Symbol:          rec.Instrument,
		TradeDate:       rec.Time,
		OriginalEmotion: rec.Emotion,
		ReviewedEmotion: rec.Emotion,
		ReviewedAt:      now,
	}
}

func (n Note) Validate() error {
	var problems []string
	if n.ID == "" {
		problems = append(problems, "missing id")
	}
	if n.AccountID == "" {
		problems = append(problems, "missing account")
	}
	if n.Symbol == "" {
		problems = append(problems, "missing symbol")
	}
	if n.DecisionScore < MinScore || n.DecisionScore > MaxScore {
		problems = append(problems, fmt.Sprintf("decision score %d outside %d-%d", n.DecisionScore, MinScore, MaxScore))
	}
	if n.EmotionScore < MinScore || n.EmotionScore > MaxScore {
		problems = append(problems, fmt.Sprintf("emotion score %d outside %d-%d", n.EmotionScore, MinScore, MaxScore))
	}
	if strings.TrimSpace(n.Lessons) == "" {
		problems = append(problems, "lessons learned are empty")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidNote, strings.Join(problems, ", "))
	}
	return nil
}

// CanReview reports whether a new note may be written for rec: only losing
// sells are reviewed, and each gets one note. Existing notes are edited
// instead.
func CanReview(rec ledger.TradeRecord, notes []Note) error {
	if !rec.IsLoss() {
		return fmt.Errorf("%w: trade %s is not a losing sell", ErrInvalidNote, rec.ID)
	}
	for _, n := range notes {
		if n.TradeID == rec.ID {
			return fmt.Errorf("%w: trade %s already has note %s", ErrInvalidNote, rec.ID, n.ID)
		}
	}
	return nil
}

// Pending returns the losing sells in trades that have no note yet, oldest
// first.
func Pending(trades []ledger.TradeRecord, notes []Note) []ledger.TradeRecord {
	reviewed := make(map[string]bool, len(notes))
	for _, n := range notes {
		if n.TradeID != "" {
			reviewed[n.TradeID] = true
		}
	}
	var out []ledger.TradeRecord
	for _, t := range trades {
		if t.IsLoss() && !reviewed[t.ID] {
			out = append(out, t)
		}
	}
	return out
}
