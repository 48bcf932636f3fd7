// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/hr-console/internal/candidates"
	"github.com/jonathan/hr-console/internal/interview"
	"github.com/jonathan/hr-console/internal/notify"
	"github.com/jonathan/hr-console/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted terminal output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		line = truncate(line, boxWidth-4)
		fmt.Fprintf(p.out, "│ %s%s │\n", line, strings.Repeat(" ", boxWidth-4-utf8.RuneCountInString(line)))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// Notify prints a notification as a single line, so a Printer can stand in
// for the toast area of the console.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Notify(n notify.Notification) {
	marker := "✓"
	if n.Variant == notify.VariantDestructive {
		marker = "✗"
	}
	fmt.Fprintf(p.out, "%s %s", marker, n.Title)
	if n.Description != "" {
		fmt.Fprintf(p.out, ": %s", strings.ReplaceAll(n.Description, "\n", " "))
	}
	fmt.Fprintln(p.out)
}

// PrintCandidates outputs one page of candidates with their status and skills.
func (p *Printer) PrintCandidates(list []types.Candidate, page, pages, total int) {
	var sb strings.Builder
	if len(list) == 0 {
		sb.WriteString("No candidates found.")
		p.printBox("CANDIDATES", sb.String())
		return
	}

	sb.WriteString(fmt.Sprintf("Page %d of %d (%d total)\n\n", page, pages, total))
	for i, c := range list {
		sb.WriteString(fmt.Sprintf("%s  [%s]\n", c.PersonalInfo.FullName, c.Status.Label()))
		sb.WriteString(fmt.Sprintf("    ID:      %s\n", c.ID))
		sb.WriteString(fmt.Sprintf("    Email:   %s\n", c.PersonalInfo.Email))
		if role := c.RoleName(); role != "" {
			sb.WriteString(fmt.Sprintf("    Role:    %s\n", role))
		}
		sb.WriteString(fmt.Sprintf("    Applied: %s\n", candidates.FormatDate(c)))
		if badges, more := candidates.SkillBadges(c); len(badges) > 0 {
			skills := strings.Join(badges, ", ")
			if more > 0 {
				skills += fmt.Sprintf(" +%d more", more)
			}
			sb.WriteString(fmt.Sprintf("    Skills:  %s\n", skills))
		}
		if i < len(list)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("CANDIDATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRoles outputs every role with its skills.
func (p *Printer) PrintRoles(roles []types.Role) {
	var sb strings.Builder
	if len(roles) == 0 {
		sb.WriteString("No roles defined.")
	}
	for i, r := range roles {
		sb.WriteString(fmt.Sprintf("%s  (%s)\n", r.Role, r.ID))
		if len(r.Skills) == 0 {
			sb.WriteString("    No skills added yet\n")
		} else {
			sb.WriteString(fmt.Sprintf("    %s\n", strings.Join(r.Skills, ", ")))
		}
		if i < len(roles)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("ROLES & SKILLS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintQuestions outputs generated questions, with expected answers when
// withAnswers is set.
func (p *Printer) PrintQuestions(questions []types.Question, withAnswers bool) {
	if len(questions) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generated %d questions:\n\n", len(questions)))
	for i, q := range questions {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, q.Question))
		sb.WriteString(fmt.Sprintf("   %s · %s", q.Type, q.Complexity))
		if len(q.Skills) > 0 {
			sb.WriteString(fmt.Sprintf(" · %s", strings.Join(q.Skills, ", ")))
		}
		sb.WriteString("\n")
		if withAnswers && q.ExpectedAnswer != "" {
			sb.WriteString(fmt.Sprintf("   Answer: %s\n", q.ExpectedAnswer))
		}
		if i < len(questions)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("INTERVIEW QUESTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReview outputs a review snapshot with per-criterion ratings.
func (p *Printer) PrintReview(review *types.ReviewSnapshot) {
	if review == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall:   %.1f / 5\n", review.OverallRating))
	sb.WriteString(fmt.Sprintf("Progress:  %d of %d criteria (%d%%)\n\n",
		review.Progress.CompletedCriteria, review.Progress.TotalCriteria, review.Progress.Percentage))
	for _, c := range review.Criteria {
		stars := strings.Repeat("★", c.Rating) + strings.Repeat("☆", max(5-c.Rating, 0))
		sb.WriteString(fmt.Sprintf("%s %s\n", stars, c.Title))
		if c.Feedback != "" {
			sb.WriteString(fmt.Sprintf("      %s\n", truncate(c.Feedback, 60)))
		}
	}

	p.printBox("CANDIDATE REVIEW", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCompatibility outputs a resume compatibility analysis.
func (p *Printer) PrintCompatibility(result *types.Compatibility) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score: %d%%\n", result.Score))
	if result.OverallAssessment != "" {
		sb.WriteString(fmt.Sprintf("%s\n", result.OverallAssessment))
	}
	sb.WriteString("\n")

	if len(result.SkillMatches) > 0 {
		sb.WriteString("Skills:\n")
		for _, m := range result.SkillMatches {
			mark := "✓"
			if !m.Match {
				mark = "✗"
			}
			sb.WriteString(fmt.Sprintf("  %s %s (%s)\n", mark, m.Skill, m.Proficiency))
		}
		sb.WriteString("\n")
	}

	writeList(&sb, "Strengths", result.Strengths)
	writeList(&sb, "Skills to explore", result.MissingSkills)
	writeList(&sb, "Recommendations", result.Recommendations)

	p.printBox("RESUME COMPATIBILITY", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(title + ":\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
	sb.WriteString("\n")
}

// PrintComplexity outputs the band of a complexity setting.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintComplexity(value int) {
	fmt.Fprintf(p.out, "Complexity %d: %s (%s)\n", value,
		interview.ComplexityLabel(value), interview.ComplexityDescription(value))
}
