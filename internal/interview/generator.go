// Package interview drives interview question generation: the generation
// form, resume attachment, compatibility analysis and PDF export.
package interview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jonathan/hr-console/internal/inflight"
	"github.com/jonathan/hr-console/internal/notify"
	"github.com/jonathan/hr-console/internal/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Form bounds and defaults.
const (
	DefaultComplexity = 50
	DefaultCount      = 10
	MinCount          = 1
	MaxCount          = 20
	MaxComplexity     = 100
)

// PDF file names written by DownloadPDF.
const (
	QuestionsFile            = "interview-questions.pdf"
	QuestionsWithAnswersFile = "interview-questions-with-answers.pdf"
)

// MsgGenerateFailed is shown when generation fails without a backend message.
const MsgGenerateFailed = "Failed to generate questions. Please try again."

var (
	// ErrMissingRequirements is returned by Generate without a role or skills.
	ErrMissingRequirements = errors.New("a role and at least one skill are required")
	// ErrMissingInformation is returned by AnalyzeCompatibility without a
	// resume, role or skills.
	ErrMissingInformation = errors.New("a resume, a role and at least one skill are required")
	// ErrNoQuestions is returned by DownloadPDF before anything was generated.
	ErrNoQuestions = errors.New("no generated questions")
	// ErrInvalidFileType is returned by AttachDropped for non PDF or Word files.
	ErrInvalidFileType = errors.New("resume must be a PDF or Word document")
	// ErrInProgress is returned while the same operation is already running.
	ErrInProgress = errors.New("operation already in progress")
)

// GenerationError carries the backend's explanation for a refused generation.
type GenerationError struct {
	Message string
	Reason  string
}

func (e *GenerationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("question generation failed: %s", e.Message)
	}
	return fmt.Sprintf("question generation failed: %s: %s", e.Message, e.Reason)
}

// API is the part of the HR API the generator needs.
type API interface {
	GenerateQuestions(ctx context.Context, req types.GenerateRequest) (types.GenerateResult, error)
	CheckCompatibility(ctx context.Context, req types.CompatibilityRequest) (*types.CompatibilityReport, error)
	DownloadPDF(ctx context.Context, req types.PDFRequest, withAnswers bool) ([]byte, error)
}

// RoleSource resolves role ids to roles. *roles.Registry satisfies it.
type RoleSource interface {
	Get(id string) (types.Role, bool)
}

// Form is the generation form.
type Form struct {
	File         string
	RoleID       string
	Skills       []string
	Complexity   int
	Count        int
	Instructions string
}

// NewForm returns a form holding the defaults.
func NewForm() Form {
	return Form{Complexity: DefaultComplexity, Count: DefaultCount}
}

// ComplexityLabel names the band of a complexity value.
func ComplexityLabel(v int) string {
	switch {
	case v <= 25:
		return "Easy"
	case v <= 50:
		return "Medium-Low"
	case v <= 75:
		return "Medium-High"
	default:
		return "Hard"
	}
}

// ComplexityDescription describes the band of a complexity value.
func ComplexityDescription(v int) string {
	switch {
	case v <= 25:
		return "Basic concepts and straightforward implementations"
	case v <= 50:
		return "Intermediate concepts with some complexity"
	case v <= 75:
		return "Advanced concepts requiring deeper understanding"
	default:
		return "Expert-level with edge cases and complex scenarios"
	}
}

// Generator holds the form and the latest results. It is safe for
// concurrent use; no lock is held across network calls.
type Generator struct {
	api      API
	roles    RoleSource
	notifier notify.Notifier
	log      zerolog.Logger

	seq inflight.Sequence

	mu            sync.Mutex
	form          Form
	questions     []types.Question
	generating    bool
	analyzing     bool
	compatibility *types.Compatibility
}

// New creates a generator with a default form.
func New(api API, roles RoleSource, n notify.Notifier, logger zerolog.Logger) *Generator {
	return &Generator{
		api:      api,
		roles:    roles,
		notifier: notify.OrDiscard(n),
		log:      logger,
		form:     NewForm(),
	}
}

// Form returns a copy of the current form.
func (g *Generator) Form() Form {
	g.mu.Lock()
	defer g.mu.Unlock()
	f := g.form
	f.Skills = append([]string(nil), g.form.Skills...)
	return f
}

// Reset restores the default form and clears every result.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.form = NewForm()
	g.questions = nil
	g.compatibility = nil
}

// SelectRole picks a role and clears the selected skills.
func (g *Generator) SelectRole(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.form.RoleID = id
	g.form.Skills = nil
}

// ToggleSkill selects skill, or deselects it when already selected.
func (g *Generator) ToggleSkill(skill string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, s := range g.form.Skills {
		if s == skill {
			g.form.Skills = append(g.form.Skills[:i], g.form.Skills[i+1:]...)
			return
		}
	}
	g.form.Skills = append(g.form.Skills, skill)
}

// SetComplexity sets the complexity, clamped to 0..100.
func (g *Generator) SetComplexity(v int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.form.Complexity = min(max(v, 0), MaxComplexity)
}

// SetCount sets the number of questions, clamped to 1..20.
func (g *Generator) SetCount(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.form.Count = min(max(n, MinCount), MaxCount)
}

// SetInstructions sets the free-text instructions.
func (g *Generator) SetInstructions(text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.form.Instructions = text
}

// AttachDropped attaches a resume after checking it is a PDF or Word file.
func (g *Generator) AttachDropped(path string) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		g.notifier.Notify(notify.Error("Invalid file type", "Please upload a PDF or Word document."))
		return fmt.Errorf("failed to read resume: %w", err)
	}
	if !isResumeType(mtype) {
		g.log.Debug().Str("path", path).Str("mime", mtype.String()).Msg("rejected resume")
		g.notifier.Notify(notify.Error("Invalid file type", "Please upload a PDF or Word document."))
		return ErrInvalidFileType
	}
	g.attach(path)
	return nil
}

// AttachPicked attaches a resume chosen through a file picker, whose filter
// already limited the type.
func (g *Generator) AttachPicked(path string) {
	g.attach(path)
}

func (g *Generator) attach(path string) {
	g.mu.Lock()
	g.form.File = path
	g.mu.Unlock()
	g.notifier.Notify(notify.Info("Resume uploaded", fmt.Sprintf("%s has been uploaded successfully.", filepath.Base(path))))
}

func isResumeType(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("application/pdf") || strings.Contains(m.String(), "word") {
			return true
		}
	}
	return false
}

// roleName resolves the selected role. Callers hold mu.
func (g *Generator) roleName() string {
	if g.form.RoleID == "" || g.roles == nil {
		return ""
	}
	role, ok := g.roles.Get(g.form.RoleID)
	if !ok {
		return ""
	}
	return role.Role
}

// Generate requests questions for the current form. Earlier results are
// cleared when the request starts. A response overtaken by a newer
// Generate is dropped.
func (g *Generator) Generate(ctx context.Context) ([]types.Question, error) {
	g.mu.Lock()
	role := g.roleName()
	if role == "" || len(g.form.Skills) == 0 {
		g.mu.Unlock()
		g.notifier.Notify(notify.Error("Missing requirements", "Please select a role and at least one skill."))
		return nil, ErrMissingRequirements
	}
	req := types.GenerateRequest{
		Role:               role,
		Skills:             append([]string(nil), g.form.Skills...),
		QuestionComplexity: g.form.Complexity,
		NumberOfQuestions:  g.form.Count,
		CustomInstructions: g.form.Instructions,
		ResumePath:         g.form.File,
	}
	tok := g.seq.Next()
	g.generating = true
	g.questions = nil
	g.mu.Unlock()

	result, err := g.api.GenerateQuestions(ctx, req)

	g.mu.Lock()
	if !g.seq.Current(tok) {
		g.mu.Unlock()
		g.log.Debug().Str("role", role).Msg("dropping stale generation")
		return nil, nil
	}
	g.generating = false
	if err != nil {
		g.mu.Unlock()
		g.log.Error().Err(err).Str("role", role).Msg("failed to generate questions")
		g.notifier.Notify(notify.Error("Error", MsgGenerateFailed))
		return nil, err
	}
	if !result.OK {
		g.mu.Unlock()
		if result.Error == "" {
			g.notifier.Notify(notify.Error("Error", MsgGenerateFailed))
			return nil, &GenerationError{Message: MsgGenerateFailed}
		}
		g.log.Warn().Str("error", result.Error).Str("reason", result.Reason).Msg("question generation refused")
		g.notifier.Notify(notify.Error("Error Generating Questions", result.Error+"\n"+result.Reason))
		return nil, &GenerationError{Message: result.Error, Reason: result.Reason}
	}
	questions := result.Data.Questions
	if questions == nil {
		questions = []types.Question{}
	}
	g.questions = questions
	out := append([]types.Question(nil), questions...)
	g.mu.Unlock()

	g.notifier.Notify(notify.Info("Questions generated",
		fmt.Sprintf("%d questions have been generated based on your selections.", len(out))))
	return out, nil
}

// Questions returns the latest generated questions.
func (g *Generator) Questions() []types.Question {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]types.Question(nil), g.questions...)
}

// Generating reports whether a generation is running.
func (g *Generator) Generating() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generating
}

// Analyzing reports whether a compatibility analysis is running.
func (g *Generator) Analyzing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.analyzing
}

// Compatibility returns the latest compatibility result, if any.
func (g *Generator) Compatibility() (types.Compatibility, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.compatibility == nil {
		return types.Compatibility{}, false
	}
	return *g.compatibility, true
}

// AnalyzeCompatibility scores the attached resume against the selected role
// and skills. A failure clears any previous result.
func (g *Generator) AnalyzeCompatibility(ctx context.Context) (*types.Compatibility, error) {
	g.mu.Lock()
	role := g.roleName()
	if g.form.File == "" || role == "" || len(g.form.Skills) == 0 {
		g.mu.Unlock()
		g.notifier.Notify(notify.Error("Missing information", "Please upload a resume, select a role, and choose skills first."))
		return nil, ErrMissingInformation
	}
	if g.analyzing {
		g.mu.Unlock()
		return nil, ErrInProgress
	}
	req := types.CompatibilityRequest{
		Role:       role,
		Skills:     append([]string(nil), g.form.Skills...),
		ResumePath: g.form.File,
	}
	g.analyzing = true
	g.mu.Unlock()

	report, err := g.api.CheckCompatibility(ctx, req)

	g.mu.Lock()
	g.analyzing = false
	if err != nil {
		g.compatibility = nil
		g.mu.Unlock()
		g.log.Error().Err(err).Str("role", role).Msg("failed to analyze compatibility")
		g.notifier.Notify(notify.Error("Error", "Failed to analyze compatibility."))
		return nil, err
	}
	result := report.ToCompatibility()
	g.compatibility = &result
	g.mu.Unlock()

	g.notifier.Notify(notify.Info("Analysis complete!", fmt.Sprintf("Compatibility score: %d%%", result.Score)))
	return &result, nil
}

// pdfRequest builds the export payload from the form and the latest
// questions.
func (g *Generator) pdfRequest() (types.PDFRequest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	role := g.roleName()
	if role == "" || len(g.questions) == 0 {
		return types.PDFRequest{}, ErrNoQuestions
	}
	var instructions *string
	if g.form.Instructions != "" {
		text := g.form.Instructions
		instructions = &text
	}
	skills := append([]string{}, g.form.Skills...)
	return types.PDFRequest{
		Role:               role,
		RequestedSkills:    skills,
		QuestionComplexity: g.form.Complexity,
		NumberOfQuestions:  g.form.Count,
		CustomInstructions: instructions,
		Questions:          append([]types.Question(nil), g.questions...),
	}, nil
}

// PDFName returns the file name of an export variant.
func PDFName(withAnswers bool) string {
	if withAnswers {
		return QuestionsWithAnswersFile
	}
	return QuestionsFile
}

// DownloadPDF exports the generated questions as a PDF into dir and returns
// the written path.
func (g *Generator) DownloadPDF(ctx context.Context, withAnswers bool, dir string) (string, error) {
	req, err := g.pdfRequest()
	if err != nil {
		g.notifier.Notify(notify.Error("Missing data", "Please generate questions first."))
		return "", err
	}
	path, err := g.download(ctx, req, withAnswers, dir)
	if err != nil {
		g.log.Error().Err(err).Bool("with_answers", withAnswers).Msg("failed to download PDF")
		g.notifier.Notify(notify.Error("Error", "Failed to download PDF."))
		return "", err
	}
	g.notifier.Notify(notify.Info("Preparing download", "Your download will start shortly..."))
	return path, nil
}

func (g *Generator) download(ctx context.Context, req types.PDFRequest, withAnswers bool, dir string) (string, error) {
	data, err := g.api.DownloadPDF(ctx, req, withAnswers)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, PDFName(withAnswers))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write PDF: %w", err)
	}
	return path, nil
}

// DownloadBoth exports both variants concurrently. It returns the paths
// without and with answers, in that order.
func (g *Generator) DownloadBoth(ctx context.Context, dir string) ([]string, error) {
	paths := make([]string, 2)
	eg, ctx := errgroup.WithContext(ctx)
	for i, withAnswers := range []bool{false, true} {
		eg.Go(func() error {
			path, err := g.DownloadPDF(ctx, withAnswers, dir)
			paths[i] = path
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
