package main

import (
	"fmt"

	"github.com/jonathan/hr-console/internal/observability"
	"github.com/jonathan/hr-console/internal/schemas"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Work with review snapshot files",
}

var reviewValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Validate a review snapshot JSON file",
	Long:  "Validates a review snapshot JSON file against the embedded review schema and prints it.",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewValidate,
}

func init() {
	reviewCmd.AddCommand(reviewValidateCmd)
	rootCmd.AddCommand(reviewCmd)
}

func runReviewValidate(cmd *cobra.Command, args []string) error {
	snapshot, err := schemas.ValidateReviewSnapshotFile(args[0])
	if err != nil {
		return fmt.Errorf("review snapshot %s is invalid: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Review snapshot %s is valid\n", args[0])
	observability.NewPrinter(out).PrintReview(snapshot)
	return nil
}
