package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/hr-console/internal/review"
	"github.com/spf13/cobra"
)

var candidatesReviewCmd = &cobra.Command{
	Use:   "review ID",
	Short: "Show or edit a candidate's criteria review",
	Long: `Opens a candidate's review, applies the requested edits and saves it.

Criteria are addressed by id or by name. Edits apply in this order: deletes,
edits, additions, ratings, comments. Without any edit flag the current review
is printed and nothing is saved.`,
	Example: `  hr_console candidates review 64f1 --rate technical-knowledge=4 --comment "problem-solving=Solid on GST cases"
  hr_console candidates review 64f1 --add "Tally ERP:Hands-on use of Tally" --rate "Tally ERP=3" --draft`,
	Args: cobra.ExactArgs(1),
	RunE: runCandidatesReview,
}

var (
	reviewRatings  []string
	reviewComments []string
	reviewAdds     []string
	reviewEdits    []string
	reviewDeletes  []string
	reviewDraft    bool
)

func init() {
	candidatesReviewCmd.Flags().StringArrayVar(&reviewRatings, "rate", nil, "Rate a criterion: ID=N with N from 0 to 5 (repeatable)")
	candidatesReviewCmd.Flags().StringArrayVar(&reviewComments, "comment", nil, "Comment on a criterion: ID=TEXT (repeatable)")
	candidatesReviewCmd.Flags().StringArrayVar(&reviewAdds, "add", nil, "Add a custom criterion: NAME:DESCRIPTION (repeatable)")
	candidatesReviewCmd.Flags().StringArrayVar(&reviewEdits, "edit", nil, "Edit a criterion: ID=NAME:DESCRIPTION (repeatable)")
	candidatesReviewCmd.Flags().StringArrayVar(&reviewDeletes, "delete", nil, "Delete a criterion by id or name (repeatable)")
	candidatesReviewCmd.Flags().BoolVar(&reviewDraft, "draft", false, "Save as a draft instead of completing the review")

	candidatesCmd.AddCommand(candidatesReviewCmd)
}

func reviewEdited() bool {
	return len(reviewRatings)+len(reviewComments)+len(reviewAdds)+len(reviewEdits)+len(reviewDeletes) > 0 || reviewDraft
}

func runCandidatesReview(cmd *cobra.Command, args []string) error {
	id := args[0]
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.reportMetrics()

	ctl := a.candidates()
	if err := findCandidate(cmd.Context(), ctl, id); err != nil {
		return err
	}

	if !reviewEdited() {
		cand, _ := ctl.Get(id)
		switch {
		case cand.Review.IsStructured():
			a.printer.PrintReview(cand.Review.Snapshot)
		case cand.Review != nil && cand.Review.Legacy != "":
			_, _ = fmt.Fprintf(a.out, "Review: %s\n", cand.Review.Legacy)
		default:
			_, _ = fmt.Fprintln(a.out, "No review yet.")
		}
		return nil
	}

	session, err := ctl.OpenReview(id)
	if err != nil {
		return err
	}
	model, err := session.Model()
	if err != nil {
		return err
	}
	if err := applyReviewEdits(model); err != nil {
		return err
	}

	if !reviewDraft && !model.IsComplete() {
		_, _ = fmt.Fprintf(a.out, "Note: %d of %d criteria rated; saving anyway.\n", model.Completed(), model.Len())
	}
	if err := session.Save(cmd.Context(), reviewDraft, ctl.SaveReview(id)); err != nil {
		return err
	}

	cand, _ := ctl.Get(id)
	if cand.Review.IsStructured() {
		a.printer.PrintReview(cand.Review.Snapshot)
	}
	return nil
}

func applyReviewEdits(model *review.Model) error {
	for _, key := range reviewDeletes {
		c, err := resolveCriterion(model, key)
		if err != nil {
			return err
		}
		model.DeleteCriterion(c.ID)
	}
	for _, raw := range reviewEdits {
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			return fmt.Errorf("invalid --edit %q: want ID=NAME:DESCRIPTION", raw)
		}
		c, err := resolveCriterion(model, key)
		if err != nil {
			return err
		}
		name, desc, ok := strings.Cut(value, ":")
		if !ok || !model.EditCriterion(c.ID, name, desc) {
			return fmt.Errorf("invalid --edit %q: name and description are required", raw)
		}
	}
	for _, raw := range reviewAdds {
		name, desc, ok := strings.Cut(raw, ":")
		if !ok {
			return fmt.Errorf("invalid --add %q: want NAME:DESCRIPTION", raw)
		}
		if _, added := model.AddCriterion(name, desc); !added {
			return fmt.Errorf("invalid --add %q: name (max 50) and description (max 200) are required", raw)
		}
	}
	for _, raw := range reviewRatings {
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			return fmt.Errorf("invalid --rate %q: want ID=N", raw)
		}
		c, err := resolveCriterion(model, key)
		if err != nil {
			return err
		}
		rating, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid --rate %q: %w", raw, err)
		}
		if err := model.SetRating(c.ID, rating); err != nil {
			return fmt.Errorf("invalid --rate %q: %w", raw, err)
		}
	}
	for _, raw := range reviewComments {
		key, text, ok := strings.Cut(raw, "=")
		if !ok {
			return fmt.Errorf("invalid --comment %q: want ID=TEXT", raw)
		}
		c, err := resolveCriterion(model, key)
		if err != nil {
			return err
		}
		model.SetComment(c.ID, text)
	}
	return nil
}

// resolveCriterion finds a criterion by id, then by case-insensitive name.
func resolveCriterion(model *review.Model, key string) (review.Criterion, error) {
	key = strings.TrimSpace(key)
	if c, ok := model.Get(key); ok {
		return c, nil
	}
	for _, c := range model.Criteria() {
		if strings.EqualFold(c.Name, key) {
			return c, nil
		}
	}
	return review.Criterion{}, fmt.Errorf("unknown criterion %q", key)
}
