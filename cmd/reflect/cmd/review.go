package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/reflect/currency"
	"github.com/rustyeddy/reflect/report"
	"github.com/rustyeddy/reflect/review"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Write and read review notes on trades",
	Long: `Review notes record what a losing trade taught you.

Subcommands:
  add      - Write a note for a losing trade
  edit     - Change an existing note
  favorite - Mark or unmark a note as a favorite
  delete   - Remove a note
  list     - List notes, filtered and sorted
  stats    - Summarise notes and trading results
  pending  - Losing trades that still need a note

Examples:
  reflect review pending
  reflect review add 01HS2Z8Q --lessons "sold on fear" --decision 3 --emotion-score 2
  reflect review edit 9KXQ --principles "sleep on it" --decision 4
  reflect review favorite 9KXQ
  reflect review list --favorites only --sort decision-desc`,
}

var reviewAddCmd = &cobra.Command{
	Use:   "add <trade-id>",
	Short: "Write a review note for a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewAdd,
}

var reviewEditCmd = &cobra.Command{
	Use:   "edit <note-id>",
	Short: "Change an existing review note",
	Long: `Update the fields given as flags; the rest of the note is kept.

Example:
  reflect review edit 9KXQ --lessons "set the stop before buying" --emotion "#regret"`,
	Args: cobra.ExactArgs(1),
	RunE: runReviewEdit,
}

var reviewFavoriteCmd = &cobra.Command{
	Use:   "favorite <note-id>",
	Short: "Mark a review note as a favorite (--off to unmark)",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewFavorite,
}

var reviewDeleteCmd = &cobra.Command{
	Use:   "delete <note-id>",
	Short: "Delete a review note",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewDelete,
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List review notes",
	Args:  cobra.NoArgs,
	RunE:  runReviewList,
}

var reviewStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise review notes and trading results",
	Args:  cobra.NoArgs,
	RunE:  runReviewStats,
}

var reviewPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Show losing trades without a review note",
	Args:  cobra.NoArgs,
	RunE:  runReviewPending,
}

var (
	noteLessons      string
	notePrinciples   string
	noteBasis        []string
	noteDecision     int
	noteEmotionScore int
	noteEmotion      string
	noteFavorite     bool
	favoriteOff      bool

	listEmotion   string
	listFavorites string
	listQuery     string
	listSort      string
)

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(reviewAddCmd)
	reviewCmd.AddCommand(reviewEditCmd)
	reviewCmd.AddCommand(reviewFavoriteCmd)
	reviewCmd.AddCommand(reviewDeleteCmd)
	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewStatsCmd)
	reviewCmd.AddCommand(reviewPendingCmd)

	for _, c := range []*cobra.Command{reviewAddCmd, reviewEditCmd} {
		c.Flags().StringVar(&noteLessons, "lessons", "", "what you learned")
		c.Flags().StringVar(&notePrinciples, "principles", "", "principles to keep next time")
		c.Flags().StringSliceVar(&noteBasis, "basis", nil, "what the decision was based on, e.g. news,chart,tip")
		c.Flags().IntVar(&noteDecision, "decision", 5, "decision quality score 1-10")
		c.Flags().IntVar(&noteEmotionScore, "emotion-score", 5, "emotional control score 1-10")
		c.Flags().StringVar(&noteEmotion, "emotion", "", "emotion on reflection (defaults to the trade's)")
		c.Flags().BoolVar(&noteFavorite, "favorite", false, "mark the note as a favorite")
	}
	reviewAddCmd.MarkFlagRequired("lessons")

	reviewFavoriteCmd.Flags().BoolVar(&favoriteOff, "off", false, "remove the favorite mark")

	reviewListCmd.Flags().StringVar(&listEmotion, "emotion", "", "only notes with this reviewed emotion")
	reviewListCmd.Flags().StringVar(&listFavorites, "favorites", "all", "all, only or none")
	reviewListCmd.Flags().StringVarP(&listQuery, "query", "q", "", "search symbol, lessons and principles")
	reviewListCmd.Flags().StringVar(&listSort, "sort", "latest", "latest, decision-desc, decision-asc, emotion-desc, emotion-asc")
}

func runReviewAdd(cmd *cobra.Command, args []string) error {
	s, done, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer done()

	rec, err := s.FindTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	notes, err := s.Store.Notes(cmd.Context(), s.Account.ID)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	if err := review.CanReview(rec, notes); err != nil {
		return err
	}

	n := review.NewNote(rec, time.Now())
	n.Lessons = noteLessons
	n.Principles = notePrinciples
	n.DecisionBasis = noteBasis
	n.DecisionScore = noteDecision
	n.EmotionScore = noteEmotionScore
	n.Favorite = noteFavorite
	if noteEmotion != "" {
		n.ReviewedEmotion = noteEmotion
	}
	if err := n.Validate(); err != nil {
		return err
	}
	if err := s.Store.SaveNote(cmd.Context(), n); err != nil {
		return fmt.Errorf("save note: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved review note %s for trade %s\n", n.ID, rec.ID)
	return nil
}

func runReviewEdit(cmd *cobra.Command, args []string) error {
	s, done, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer done()

	n, err := s.FindNote(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("lessons") {
		n.Lessons = noteLessons
	}
	if flags.Changed("principles") {
		n.Principles = notePrinciples
	}
	if flags.Changed("basis") {
		n.DecisionBasis = noteBasis
	}
	if flags.Changed("decision") {
		n.DecisionScore = noteDecision
	}
	if flags.Changed("emotion-score") {
		n.EmotionScore = noteEmotionScore
	}
	if flags.Changed("emotion") {
		n.ReviewedEmotion = noteEmotion
	}
	if flags.Changed("favorite") {
		n.Favorite = noteFavorite
	}
	n.ReviewedAt = time.Now()

	if err := n.Validate(); err != nil {
		return err
	}
	if err := s.Store.SaveNote(cmd.Context(), n); err != nil {
		return fmt.Errorf("save note: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated review note %s\n", n.ID)
	return nil
}

func runReviewFavorite(cmd *cobra.Command, args []string) error {
	s, done, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer done()

	n, err := s.FindNote(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	n.Favorite = !favoriteOff
	if err := s.Store.SaveNote(cmd.Context(), n); err != nil {
		return fmt.Errorf("save note: %w", err)
	}

	if n.Favorite {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ ★ %s\n", n.ID)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Unmarked %s\n", n.ID)
	}
	return nil
}

func runReviewDelete(cmd *cobra.Command, args []string) error {
	s, done, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer done()

	n, err := s.FindNote(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := s.Store.DeleteNote(cmd.Context(), s.Account.ID, n.ID); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted review note %s\n", n.ID)
	return nil
}

func parseFavorites(s string) (review.FavoriteFilter, error) {
	switch s {
	case "", "all":
		return review.AllNotes, nil
	case "only":
		return review.FavoritesOnly, nil
	case "none":
		return review.NonFavorites, nil
	default:
		return 0, fmt.Errorf("unknown favorites filter %q (want all, only or none)", s)
	}
}

func runReviewList(cmd *cobra.Command, args []string) error {
	fav, err := parseFavorites(listFavorites)
	if err != nil {
		return err
	}
	order, err := review.ParseOrder(listSort)
	if err != nil {
		return err
	}

	s, done, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer done()

	notes, err := s.Store.Notes(cmd.Context(), s.Account.ID)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	f := review.Filter{Emotion: listEmotion, Favorite: fav, Query: listQuery}
	notes = review.Sort(f.Apply(notes), order)

	return report.Render(cmd.OutOrStdout(), report.Notes(notes))
}

func runReviewStats(cmd *cobra.Command, args []string) error {
	s, done, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer done()

	notes, err := s.Store.Notes(cmd.Context(), s.Account.ID)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	ts := review.Stats(s.Account.View().Trades())

	return report.Render(cmd.OutOrStdout(), report.Stats(review.Summarize(notes), ts, s.Currency()))
}

func runReviewPending(cmd *cobra.Command, args []string) error {
	s, done, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer done()

	notes, err := s.Store.Notes(cmd.Context(), s.Account.ID)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	pending := review.Pending(s.Account.View().Trades(), notes)
	if len(pending) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Every losing trade has a review note")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d losing trades need a review:\n", len(pending))
	for _, t := range pending {
		loss, _ := t.Loss()
		fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s %s x%d  %s\n",
			t.ID, t.Time.Local().Format("2006-01-02"), t.Instrument, t.Quantity, currency.Format(loss.LossAmount.Neg(), s.Currency()))
	}
	return nil
}
