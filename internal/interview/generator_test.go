package interview

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/hr-console/internal/notify"
	"github.com/jonathan/hr-console/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roleMap map[string]types.Role

func (m roleMap) Get(id string) (types.Role, bool) {
	r, ok := m[id]
	return r, ok
}

type fakeAPI struct {
	mu         sync.Mutex
	generateFn func(types.GenerateRequest) (types.GenerateResult, error)
	compatFn   func(types.CompatibilityRequest) (*types.CompatibilityReport, error)
	pdfFn      func(types.PDFRequest, bool) ([]byte, error)
	generated  []types.GenerateRequest
	pdfs       []types.PDFRequest
}

func (f *fakeAPI) GenerateQuestions(_ context.Context, req types.GenerateRequest) (types.GenerateResult, error) {
	f.mu.Lock()
	f.generated = append(f.generated, req)
	fn := f.generateFn
	f.mu.Unlock()
	return fn(req)
}

func (f *fakeAPI) CheckCompatibility(_ context.Context, req types.CompatibilityRequest) (*types.CompatibilityReport, error) {
	return f.compatFn(req)
}

func (f *fakeAPI) DownloadPDF(_ context.Context, req types.PDFRequest, withAnswers bool) ([]byte, error) {
	f.mu.Lock()
	f.pdfs = append(f.pdfs, req)
	f.mu.Unlock()
	return f.pdfFn(req, withAnswers)
}

var testRoles = roleMap{
	"r1": {ID: "r1", Role: "Accountant", Skills: []string{"GST", "Tally"}},
}

func questions(n int) []types.Question {
	out := make([]types.Question, n)
	for i := range out {
		out[i] = types.Question{Question: "Q", Type: "technical", Complexity: "Medium", Skills: []string{"GST"}}
	}
	return out
}

func okResult(n int) func(types.GenerateRequest) (types.GenerateResult, error) {
	return func(req types.GenerateRequest) (types.GenerateResult, error) {
		return types.GenerateResult{OK: true, Data: types.GeneratedQuestions{Role: req.Role, Questions: questions(n)}}, nil
	}
}

func newGenerator(api *fakeAPI) (*Generator, *notify.Recorder) {
	rec := &notify.Recorder{}
	return New(api, testRoles, rec, zerolog.Nop()), rec
}

func ready(g *Generator) {
	g.SelectRole("r1")
	g.ToggleSkill("GST")
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestComplexityBands(t *testing.T) {
	tests := []struct {
		value int
		label string
	}{
		{0, "Easy"}, {25, "Easy"}, {26, "Medium-Low"}, {50, "Medium-Low"},
		{51, "Medium-High"}, {75, "Medium-High"}, {76, "Hard"}, {100, "Hard"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.label, ComplexityLabel(tt.value), "value %d", tt.value)
	}
	assert.Equal(t, "Intermediate concepts with some complexity", ComplexityDescription(DefaultComplexity))
	assert.Equal(t, "Expert-level with edge cases and complex scenarios", ComplexityDescription(90))
}

func TestFormEditing(t *testing.T) {
	g, _ := newGenerator(&fakeAPI{})

	f := g.Form()
	assert.Equal(t, DefaultComplexity, f.Complexity)
	assert.Equal(t, DefaultCount, f.Count)

	g.SelectRole("r1")
	g.ToggleSkill("GST")
	g.ToggleSkill("Tally")
	g.ToggleSkill("GST")
	assert.Equal(t, []string{"Tally"}, g.Form().Skills)

	g.SelectRole("r2")
	assert.Empty(t, g.Form().Skills, "changing role clears skills")

	g.SetComplexity(140)
	g.SetCount(0)
	assert.Equal(t, MaxComplexity, g.Form().Complexity)
	assert.Equal(t, MinCount, g.Form().Count)
	g.SetCount(50)
	assert.Equal(t, MaxCount, g.Form().Count)

	g.SetInstructions("focus on GST")
	g.Reset()
	assert.Equal(t, NewForm(), g.Form())
}

func TestAttachDropped(t *testing.T) {
	g, rec := newGenerator(&fakeAPI{})

	pdf := writeFile(t, "resume.pdf", []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"))
	require.NoError(t, g.AttachDropped(pdf))
	assert.Equal(t, pdf, g.Form().File)
	last, _ := rec.Last()
	assert.Equal(t, "Resume uploaded", last.Title)
	assert.Equal(t, "resume.pdf has been uploaded successfully.", last.Description)

	txt := writeFile(t, "notes.txt", []byte("just some plain text"))
	assert.ErrorIs(t, g.AttachDropped(txt), ErrInvalidFileType)
	assert.Equal(t, pdf, g.Form().File, "rejected file leaves the attachment alone")
	last, _ = rec.Last()
	assert.Equal(t, "Invalid file type", last.Title)
	assert.Equal(t, notify.VariantDestructive, last.Variant)
}

func TestAttachPicked_AcceptsAnything(t *testing.T) {
	g, rec := newGenerator(&fakeAPI{})
	g.AttachPicked("/tmp/cv.txt")
	assert.Equal(t, "/tmp/cv.txt", g.Form().File)
	last, _ := rec.Last()
	assert.Equal(t, "cv.txt has been uploaded successfully.", last.Description)
}

func TestGenerate_MissingRequirements(t *testing.T) {
	api := &fakeAPI{generateFn: okResult(1)}
	g, rec := newGenerator(api)

	_, err := g.Generate(context.Background())
	assert.ErrorIs(t, err, ErrMissingRequirements)

	g.SelectRole("r1")
	_, err = g.Generate(context.Background())
	assert.ErrorIs(t, err, ErrMissingRequirements)

	assert.Empty(t, api.generated)
	last, _ := rec.Last()
	assert.Equal(t, "Missing requirements", last.Title)
	assert.Equal(t, "Please select a role and at least one skill.", last.Description)
}

func TestGenerate_SendsRoleNameAndForm(t *testing.T) {
	api := &fakeAPI{generateFn: okResult(3)}
	g, rec := newGenerator(api)
	ready(g)
	g.SetComplexity(80)
	g.SetCount(3)
	g.SetInstructions("focus on audits")
	g.AttachPicked("/tmp/resume.pdf")

	got, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Len(t, g.Questions(), 3)
	assert.False(t, g.Generating())

	require.Len(t, api.generated, 1)
	req := api.generated[0]
	assert.Equal(t, "Accountant", req.Role)
	assert.Equal(t, []string{"GST"}, req.Skills)
	assert.Equal(t, 80, req.QuestionComplexity)
	assert.Equal(t, 3, req.NumberOfQuestions)
	assert.Equal(t, "focus on audits", req.CustomInstructions)
	assert.Equal(t, "/tmp/resume.pdf", req.ResumePath)

	last, _ := rec.Last()
	assert.Equal(t, "Questions generated", last.Title)
	assert.Equal(t, "3 questions have been generated based on your selections.", last.Description)
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		result  types.GenerateResult
		err     error
		title   string
		desc    string
		backend bool
	}{
		{
			name:    "backend refusal",
			result:  types.GenerateResult{Error: "Bad skills", Reason: "empty array"},
			title:   "Error Generating Questions",
			desc:    "Bad skills\nempty array",
			backend: true,
		},
		{
			name:    "refusal without reason",
			result:  types.GenerateResult{Error: "Bad skills"},
			title:   "Error Generating Questions",
			desc:    "Bad skills\n",
			backend: true,
		},
		{
			name:  "transport failure",
			err:   errors.New("HTTP 500"),
			title: "Error",
			desc:  MsgGenerateFailed,
		},
		{
			name:  "failure without message",
			title: "Error",
			desc:  MsgGenerateFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{generateFn: func(types.GenerateRequest) (types.GenerateResult, error) {
				return tt.result, tt.err
			}}
			g, rec := newGenerator(api)
			ready(g)

			got, err := g.Generate(context.Background())
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Empty(t, g.Questions())

			var genErr *GenerationError
			assert.Equal(t, tt.backend, errors.As(err, &genErr) && genErr.Message == tt.result.Error)

			last, _ := rec.Last()
			assert.Equal(t, tt.title, last.Title)
			assert.Equal(t, tt.desc, last.Description)
			assert.Equal(t, notify.VariantDestructive, last.Variant)
		})
	}
}

func TestGenerate_ClearsPreviousQuestions(t *testing.T) {
	api := &fakeAPI{generateFn: okResult(2)}
	g, _ := newGenerator(api)
	ready(g)
	_, err := g.Generate(context.Background())
	require.NoError(t, err)

	api.generateFn = func(types.GenerateRequest) (types.GenerateResult, error) {
		return types.GenerateResult{}, errors.New("HTTP 502")
	}
	_, err = g.Generate(context.Background())
	require.Error(t, err)
	assert.Empty(t, g.Questions())
}

func TestGenerate_DropsStaleResponse(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var calls int
	var mu sync.Mutex
	api := &fakeAPI{}
	api.generateFn = func(types.GenerateRequest) (types.GenerateResult, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			started <- struct{}{}
			<-release
			return okResult(5)(types.GenerateRequest{})
		}
		return okResult(2)(types.GenerateRequest{})
	}
	g, _ := newGenerator(api)
	ready(g)

	done := make(chan []types.Question, 1)
	go func() {
		got, _ := g.Generate(context.Background())
		done <- got
	}()
	<-started

	_, err := g.Generate(context.Background())
	require.NoError(t, err)
	close(release)

	select {
	case got := <-done:
		assert.Nil(t, got, "stale generation returns nothing")
	case <-time.After(time.Second):
		t.Fatal("stale generation did not return")
	}
	assert.Len(t, g.Questions(), 2)
}

func TestAnalyzeCompatibility(t *testing.T) {
	api := &fakeAPI{compatFn: func(req types.CompatibilityRequest) (*types.CompatibilityReport, error) {
		assert.Equal(t, "Accountant", req.Role)
		assert.Equal(t, "/tmp/resume.pdf", req.ResumePath)
		return &types.CompatibilityReport{
			CompatibilityScore: 72,
			SkillAssessment: []types.SkillAssessment{
				{Skill: "GST", Status: "Strong"},
				{Skill: "Tally", Status: types.SkillNotFound},
			},
		}, nil
	}}
	g, rec := newGenerator(api)

	_, err := g.AnalyzeCompatibility(context.Background())
	assert.ErrorIs(t, err, ErrMissingInformation)
	last, _ := rec.Last()
	assert.Equal(t, "Missing information", last.Title)

	ready(g)
	g.AttachPicked("/tmp/resume.pdf")
	got, err := g.AnalyzeCompatibility(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 72, got.Score)
	require.Len(t, got.SkillMatches, 2)
	assert.True(t, got.SkillMatches[0].Match)
	assert.False(t, got.SkillMatches[1].Match)
	assert.False(t, g.Analyzing())

	last, _ = rec.Last()
	assert.Equal(t, "Analysis complete!", last.Title)
	assert.Equal(t, "Compatibility score: 72%", last.Description)

	api.compatFn = func(types.CompatibilityRequest) (*types.CompatibilityReport, error) {
		return nil, errors.New("HTTP 500")
	}
	_, err = g.AnalyzeCompatibility(context.Background())
	require.Error(t, err)
	_, ok := g.Compatibility()
	assert.False(t, ok, "failure clears the previous result")
	last, _ = rec.Last()
	assert.Equal(t, "Failed to analyze compatibility.", last.Description)
}

func TestDownloadPDF(t *testing.T) {
	api := &fakeAPI{
		generateFn: okResult(2),
		pdfFn: func(_ types.PDFRequest, withAnswers bool) ([]byte, error) {
			if withAnswers {
				return []byte("%PDF answers"), nil
			}
			return []byte("%PDF plain"), nil
		},
	}
	g, rec := newGenerator(api)
	dir := t.TempDir()

	_, err := g.DownloadPDF(context.Background(), false, dir)
	assert.ErrorIs(t, err, ErrNoQuestions)
	last, _ := rec.Last()
	assert.Equal(t, "Missing data", last.Title)
	assert.Empty(t, api.pdfs)

	ready(g)
	_, err = g.Generate(context.Background())
	require.NoError(t, err)

	path, err := g.DownloadPDF(context.Background(), true, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, QuestionsWithAnswersFile), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF answers", string(data))

	require.Len(t, api.pdfs, 1)
	assert.Equal(t, "Accountant", api.pdfs[0].Role)
	assert.Nil(t, api.pdfs[0].CustomInstructions, "blank instructions are sent as null")
	assert.Len(t, api.pdfs[0].Questions, 2)

	last, _ = rec.Last()
	assert.Equal(t, "Preparing download", last.Title)
}

func TestDownloadPDF_Failure(t *testing.T) {
	api := &fakeAPI{
		generateFn: okResult(1),
		pdfFn: func(types.PDFRequest, bool) ([]byte, error) {
			return nil, errors.New("HTTP 500")
		},
	}
	g, rec := newGenerator(api)
	ready(g)
	_, err := g.Generate(context.Background())
	require.NoError(t, err)

	_, err = g.DownloadPDF(context.Background(), false, t.TempDir())
	require.Error(t, err)
	last, _ := rec.Last()
	assert.Equal(t, "Failed to download PDF.", last.Description)
}

func TestDownloadBoth(t *testing.T) {
	api := &fakeAPI{
		generateFn: okResult(1),
		pdfFn: func(types.PDFRequest, bool) ([]byte, error) {
			return []byte("%PDF"), nil
		},
	}
	g, _ := newGenerator(api)
	ready(g)
	_, err := g.Generate(context.Background())
	require.NoError(t, err)

	dir := t.TempDir()
	paths, err := g.DownloadBoth(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, QuestionsFile),
		filepath.Join(dir, QuestionsWithAnswersFile),
	}, paths)
	assert.FileExists(t, paths[0])
	assert.FileExists(t, paths[1])
}
