package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jonathan/hr-console/internal/interview"
	"github.com/spf13/cobra"
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Generate interview questions and analyze resumes",
}

var interviewGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate interview questions for a role",
	Long:  "Generates interview questions for a role and a subset of its skills, optionally tailored to a resume, and can export them as PDF.",
	Example: `  hr_console interview generate --role 64f1 --skill GST --skill Tally --complexity 70 --count 5
  hr_console interview generate --role 64f1 --skill GST --resume cv.pdf --pdf-dir out --both`,
	Args: cobra.NoArgs,
	RunE: runInterviewGenerate,
}

var interviewCompatibilityCmd = &cobra.Command{
	Use:   "compatibility",
	Short: "Score a resume against a role's skills",
	Args:  cobra.NoArgs,
	RunE:  runInterviewCompatibility,
}

var (
	interviewRole         string
	interviewSkills       []string
	interviewComplexity   int
	interviewCount        int
	interviewInstructions string
	interviewResume       string
	interviewPDFDir       string
	interviewWithAnswers  bool
	interviewBoth         bool
	interviewShowAnswers  bool
)

func init() {
	f := interviewGenerateCmd.Flags()
	f.StringVarP(&interviewRole, "role", "r", "", "Role id (required)")
	f.StringArrayVarP(&interviewSkills, "skill", "s", nil, "Skill of the role to cover (repeatable, required)")
	f.IntVar(&interviewComplexity, "complexity", interview.DefaultComplexity, "Question complexity from 0 to 100")
	f.IntVar(&interviewCount, "count", interview.DefaultCount, "Number of questions from 1 to 20")
	f.StringVar(&interviewInstructions, "instructions", "", "Custom instructions for the generator")
	f.StringVar(&interviewResume, "resume", "", "Resume to tailor questions to (PDF or Word)")
	f.StringVar(&interviewPDFDir, "pdf-dir", "", "Directory to write the questions PDF to")
	f.BoolVar(&interviewWithAnswers, "with-answers", false, "Export the PDF with expected answers")
	f.BoolVar(&interviewBoth, "both", false, "Export both PDF variants")
	f.BoolVar(&interviewShowAnswers, "answers", false, "Print expected answers")
	interviewGenerateCmd.MarkFlagsMutuallyExclusive("with-answers", "both")

	c := interviewCompatibilityCmd.Flags()
	c.StringVarP(&interviewRole, "role", "r", "", "Role id (required)")
	c.StringArrayVarP(&interviewSkills, "skill", "s", nil, "Skill of the role to assess (repeatable, required)")
	c.StringVar(&interviewResume, "resume", "", "Resume to analyze (required)")

	for _, cmd := range []*cobra.Command{interviewGenerateCmd, interviewCompatibilityCmd} {
		for _, name := range []string{"role", "skill"} {
			if err := cmd.MarkFlagRequired(name); err != nil {
				panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
			}
		}
	}
	if err := interviewCompatibilityCmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}

	interviewCmd.AddCommand(interviewGenerateCmd, interviewCompatibilityCmd)
	rootCmd.AddCommand(interviewCmd)
}

// prepareGenerator loads the roles and fills the form from the flags. Skills
// must belong to the role, as the form only offers those.
func prepareGenerator(cmd *cobra.Command, a *app) (*interview.Generator, error) {
	reg := a.roles()
	if err := reg.Load(cmd.Context()); err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	role, ok := reg.Get(interviewRole)
	if !ok {
		return nil, fmt.Errorf("role %s not found", interviewRole)
	}

	gen := a.generator(reg)
	gen.SelectRole(role.ID)
	var selected []string
	for _, skill := range interviewSkills {
		if !slices.Contains(role.Skills, skill) {
			return nil, fmt.Errorf("skill %q is not listed for role %s", skill, role.Role)
		}
		if !slices.Contains(selected, skill) {
			selected = append(selected, skill)
			gen.ToggleSkill(skill)
		}
	}

	if interviewResume != "" {
		if err := gen.AttachDropped(interviewResume); err != nil {
			return nil, err
		}
	}
	return gen, nil
}

func runInterviewGenerate(cmd *cobra.Command, _ []string) error {
	if interviewComplexity < 0 || interviewComplexity > interview.MaxComplexity {
		return fmt.Errorf("--complexity must be between 0 and %d", interview.MaxComplexity)
	}
	if interviewCount < interview.MinCount || interviewCount > interview.MaxCount {
		return fmt.Errorf("--count must be between %d and %d", interview.MinCount, interview.MaxCount)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.reportMetrics()

	gen, err := prepareGenerator(cmd, a)
	if err != nil {
		return err
	}
	gen.SetComplexity(interviewComplexity)
	gen.SetCount(interviewCount)
	gen.SetInstructions(interviewInstructions)
	a.printer.PrintComplexity(interviewComplexity)

	questions, err := gen.Generate(cmd.Context())
	if err != nil {
		var genErr *interview.GenerationError
		if errors.As(err, &genErr) {
			return genErr
		}
		return fmt.Errorf("failed to generate questions: %w", err)
	}
	a.printer.PrintQuestions(questions, interviewShowAnswers)

	if interviewPDFDir == "" {
		return nil
	}
	var paths []string
	if interviewBoth {
		paths, err = gen.DownloadBoth(cmd.Context(), interviewPDFDir)
	} else {
		var path string
		path, err = gen.DownloadPDF(cmd.Context(), interviewWithAnswers, interviewPDFDir)
		paths = []string{path}
	}
	if err != nil {
		return fmt.Errorf("failed to download PDF: %w", err)
	}
	for _, path := range paths {
		_, _ = fmt.Fprintf(a.out, "Wrote %s\n", path)
	}
	return nil
}

func runInterviewCompatibility(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.reportMetrics()

	gen, err := prepareGenerator(cmd, a)
	if err != nil {
		return err
	}
	result, err := gen.AnalyzeCompatibility(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to analyze compatibility: %w", err)
	}
	a.printer.PrintCompatibility(result)
	return nil
}
