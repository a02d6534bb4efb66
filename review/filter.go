package review

import (
	"fmt"
	"sort"
	"strings"
)

type FavoriteFilter int

const (
	AllNotes FavoriteFilter = iota
	FavoritesOnly
	NonFavorites
)

// Filter selects notes. Zero value matches everything.
type Filter struct {
	Emotion  string // reviewed emotion, exact match
	Favorite FavoriteFilter
	Query    string // case-insensitive search in symbol, lessons and principles
}

func (f Filter) Match(n Note) bool {
	if f.Emotion != "" && n.ReviewedEmotion != f.Emotion {
		return false
	}
	switch f.Favorite {
	case FavoritesOnly:
		if !n.Favorite {
			return false
		}
	case NonFavorites:
		if n.Favorite {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(n.Symbol), q) &&
			!strings.Contains(strings.ToLower(n.Lessons), q) &&
			!strings.Contains(strings.ToLower(n.Principles), q) {
			return false
		}
	}
	return true
}

func (f Filter) Apply(notes []Note) []Note {
	var out []Note
	for _, n := range notes {
		if f.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

type Order string

const (
	Latest       Order = "latest"
	DecisionDesc Order = "decision-desc"
	DecisionAsc  Order = "decision-asc"
	EmotionDesc  Order = "emotion-desc"
	EmotionAsc   Order = "emotion-asc"
)

func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(s)); o {
	case "", Latest:
		return Latest, nil
	case DecisionDesc, DecisionAsc, EmotionDesc, EmotionAsc:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// Sort returns a sorted copy of notes. Ties keep their input order.
func Sort(notes []Note, o Order) []Note {
	out := append([]Note(nil), notes...)
	var less func(a, b Note) bool
	switch o {
	case DecisionDesc:
		less = func(a, b Note) bool { return a.DecisionScore > b.DecisionScore }
	case DecisionAsc:
		less = func(a, b Note) bool { return a.DecisionScore < b.DecisionScore }
	case EmotionDesc:
		less = func(a, b Note) bool { return a.EmotionScore > b.EmotionScore }
	case EmotionAsc:
		less = func(a, b Note) bool { return a.EmotionScore < b.EmotionScore }
	default:
		less = func(a, b Note) bool { return a.ReviewedAt.After(b.ReviewedAt) }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
