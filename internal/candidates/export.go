package candidates

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonathan/hr-console/internal/types"
	"github.com/xuri/excelize/v2"
)

const (
	candidatesSheet = "Candidates"
	reviewsSheet    = "Reviews"
)

// Export writes the visible candidates to an .xlsx workbook.
func (c *Controller) Export(path string) error {
	return ExportToExcel(c.Visible(), path)
}

// ExportToExcel writes candidates to an .xlsx workbook with a Candidates
// sheet and a Reviews sheet holding one row per rated criterion. The
// .xlsx extension is added when missing.
func ExportToExcel(list []types.Candidate, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	if err := f.SetSheetName("Sheet1", candidatesSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(reviewsSheet); err != nil {
		return fmt.Errorf("failed to create reviews sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeCandidatesSheet(f, headerStyle, list); err != nil {
		return fmt.Errorf("failed to create candidates sheet: %w", err)
	}
	if err := writeReviewsSheet(f, headerStyle, list); err != nil {
		return fmt.Errorf("failed to create reviews sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, style int, headers []string) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeCandidatesSheet(f *excelize.File, style int, list []types.Candidate) error {
	headers := []string{"Name", "Email", "Phone", "Location", "Current Title", "Role", "Status", "Skills", "Created", "Overall Rating", "Review"}
	if err := writeHeader(f, candidatesSheet, style, headers); err != nil {
		return err
	}
	if err := f.SetColWidth(candidatesSheet, "A", "K", 20); err != nil {
		return err
	}

	for i, c := range list {
		var rating any = ""
		reviewText := ""
		switch {
		case c.Review.IsStructured():
			rating = c.Review.Snapshot.OverallRating
			reviewText = fmt.Sprintf("%d/%d criteria rated", c.Review.Snapshot.Progress.CompletedCriteria, c.Review.Snapshot.Progress.TotalCriteria)
		case c.Review != nil:
			reviewText = c.Review.Legacy
		}

		values := []any{
			c.PersonalInfo.FullName,
			c.PersonalInfo.Email,
			c.PersonalInfo.Phone,
			c.PersonalInfo.Location,
			c.ProfessionalInfo.CurrentTitle,
			c.RoleName(),
			types.NormalizeStatus(string(c.Status)).Label(),
			strings.Join(c.Skills(), ", "),
			FormatDate(c),
			rating,
			reviewText,
		}
		if err := writeRow(f, candidatesSheet, i+2, values); err != nil {
			return err
		}
	}

	if len(list) > 0 {
		ref := fmt.Sprintf("A1:K%d", len(list)+1)
		if err := f.AutoFilter(candidatesSheet, ref, []excelize.AutoFilterOptions{}); err != nil {
			return err
		}
	}
	return nil
}

func writeReviewsSheet(f *excelize.File, style int, list []types.Candidate) error {
	headers := []string{"Name", "Email", "Criterion", "Description", "Rating", "Feedback", "Default"}
	if err := writeHeader(f, reviewsSheet, style, headers); err != nil {
		return err
	}
	if err := f.SetColWidth(reviewsSheet, "A", "G", 22); err != nil {
		return err
	}

	row := 2
	for _, c := range list {
		if !c.Review.IsStructured() {
			continue
		}
		for _, cr := range c.Review.Snapshot.Criteria {
			values := []any{
				c.PersonalInfo.FullName,
				c.PersonalInfo.Email,
				cr.Title,
				cr.Description,
				cr.Rating,
				cr.Feedback,
				cr.IsDefault,
			}
			if err := writeRow(f, reviewsSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
