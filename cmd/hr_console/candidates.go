package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/hr-console/internal/candidates"
	"github.com/jonathan/hr-console/internal/types"
	"github.com/spf13/cobra"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List, search and manage candidates",
}

var candidatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of candidates",
	Long:  "Lists one page of candidates, optionally filtered by status on the server and by free text locally.",
	Args:  cobra.NoArgs,
	RunE:  runCandidatesList,
}

var candidatesSearchCmd = &cobra.Command{
	Use:   "search EMAIL",
	Short: "Search candidates by email",
	Args:  cobra.ExactArgs(1),
	RunE:  runCandidatesSearch,
}

var candidatesStatusCmd = &cobra.Command{
	Use:   "status ID STATUS",
	Short: "Change a candidate's status",
	Long:  "Changes a candidate's status. STATUS is one of in-progress, hold, accepted or rejected.",
	Args:  cobra.ExactArgs(2),
	RunE:  runCandidatesStatus,
}

var candidatesDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a candidate",
	Args:  cobra.ExactArgs(1),
	RunE:  runCandidatesDelete,
}

var (
	candidatesPage   int
	candidatesStatus string
	candidatesFilter string
	candidatesYes    bool
)

func init() {
	candidatesListCmd.Flags().IntVarP(&candidatesPage, "page", "p", 1, "Page number")
	candidatesListCmd.Flags().StringVarP(&candidatesStatus, "status", "s", types.StatusAll, "Status filter (all, in-progress, hold, accepted, rejected)")
	candidatesListCmd.Flags().StringVarP(&candidatesFilter, "filter", "f", "", "Local text filter over name, email, phone, location, title, role and skills")

	candidatesDeleteCmd.Flags().BoolVarP(&candidatesYes, "yes", "y", false, "Delete without asking for confirmation")

	candidatesCmd.AddCommand(candidatesListCmd, candidatesSearchCmd, candidatesStatusCmd, candidatesDeleteCmd)
	rootCmd.AddCommand(candidatesCmd)
}

func runCandidatesList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.reportMetrics()

	ctl := a.candidates()
	if err := ctl.Load(cmd.Context(), candidatesPage, candidatesStatus); err != nil {
		return fmt.Errorf("failed to list candidates: %w", err)
	}
	ctl.SetTextFilter(candidatesFilter)

	view := ctl.View()
	a.printer.PrintCandidates(ctl.Visible(), view.Page, view.Pages, view.Total)
	return nil
}

func runCandidatesSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.reportMetrics()

	ctl := a.candidates()
	if err := ctl.Search(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to search candidates: %w", err)
	}

	view := ctl.View()
	a.printer.PrintCandidates(ctl.Visible(), view.Page, view.Pages, view.Total)
	return nil
}

func runCandidatesStatus(cmd *cobra.Command, args []string) error {
	status, err := parseStatus(args[1])
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.reportMetrics()

	ctl := a.candidates()
	if err := findCandidate(cmd.Context(), ctl, args[0]); err != nil {
		return err
	}
	return ctl.UpdateStatus(cmd.Context(), args[0], status)
}

func runCandidatesDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.reportMetrics()

	ctl := a.candidates()
	if err := findCandidate(cmd.Context(), ctl, args[0]); err != nil {
		return err
	}

	confirmed := false
	confirm := func(c types.Candidate) bool {
		confirmed = candidatesYes || askConfirm(cmd.InOrStdin(), cmd.OutOrStdout(),
			fmt.Sprintf("Are you sure you want to delete %s?", c.PersonalInfo.FullName))
		return confirmed
	}
	if err := ctl.Delete(cmd.Context(), args[0], confirm); err != nil {
		return err
	}
	if !confirmed {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled.")
	}
	return nil
}

// parseStatus accepts the four statuses in any of the spellings the API
// uses, and rejects anything else.
func parseStatus(raw string) (types.CandidateStatus, error) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.NewReplacer(" ", "-", "_", "-").Replace(cleaned)
	if cleaned == "on-hold" {
		cleaned = string(types.StatusHold)
	}
	status := types.CandidateStatus(cleaned)
	if !status.Valid() {
		return "", fmt.Errorf("unknown status %q (want in-progress, hold, accepted or rejected)", raw)
	}
	return status, nil
}

// findCandidate pages through the list until id is loaded into ctl.
func findCandidate(ctx context.Context, ctl *candidates.Controller, id string) error {
	if err := ctl.Load(ctx, 1, types.StatusAll); err != nil {
		return fmt.Errorf("failed to list candidates: %w", err)
	}
	for {
		if _, ok := ctl.Get(id); ok {
			return nil
		}
		view := ctl.View()
		if !view.HasMore {
			return fmt.Errorf("candidate %s: %w", id, candidates.ErrNotFound)
		}
		if err := ctl.GoToPage(ctx, view.Page+1); err != nil {
			return fmt.Errorf("failed to list candidates: %w", err)
		}
		if ctl.View().Page <= view.Page {
			return fmt.Errorf("candidate %s: paging stopped at page %d of %d", id, view.Page, view.Pages)
		}
	}
}

// askConfirm prints question and reads a y/N answer.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func askConfirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
