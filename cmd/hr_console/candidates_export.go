package main

import (
	"fmt"

	"github.com/jonathan/hr-console/internal/types"
	"github.com/spf13/cobra"
)

var candidatesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a page of candidates to an Excel workbook",
	Long:  "Writes the listed candidates to an .xlsx workbook with a Candidates sheet and a Reviews sheet.",
	Args:  cobra.NoArgs,
	RunE:  runCandidatesExport,
}

var (
	exportOutput string
	exportPage   int
	exportStatus string
	exportFilter string
)

func init() {
	candidatesExportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Path to the output .xlsx file (required)")
	candidatesExportCmd.Flags().IntVarP(&exportPage, "page", "p", 1, "Page number")
	candidatesExportCmd.Flags().StringVarP(&exportStatus, "status", "s", types.StatusAll, "Status filter")
	candidatesExportCmd.Flags().StringVarP(&exportFilter, "filter", "f", "", "Local text filter")

	if err := candidatesExportCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	candidatesCmd.AddCommand(candidatesExportCmd)
}

func runCandidatesExport(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.reportMetrics()

	ctl := a.candidates()
	if err := ctl.Load(cmd.Context(), exportPage, exportStatus); err != nil {
		return fmt.Errorf("failed to list candidates: %w", err)
	}
	ctl.SetTextFilter(exportFilter)

	if err := ctl.Export(exportOutput); err != nil {
		return fmt.Errorf("failed to export candidates: %w", err)
	}
	_, _ = fmt.Fprintf(a.out, "Exported %d candidates to %s\n", len(ctl.Visible()), exportOutput)
	return nil
}
