package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/jonathan/hr-console/internal/config"
	"github.com/jonathan/hr-console/internal/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// backend is an in-memory HR API.
type backend struct {
	mu         sync.Mutex
	candidates []types.Candidate
	roles      []types.Role
	nextRole   int

	generateForm map[string]string
	generateFile string
	generateErr  string
	pdfRequests  []types.PDFRequest
	requests     []string
}

func newBackend() *backend {
	return &backend{
		candidates: []types.Candidate{
			{
				ID:              "c1",
				PersonalInfo:    types.PersonalInfo{FullName: "Asha Rao", Email: "asha@example.com", Location: "Pune"},
				RoleApplied:     &types.RoleApplied{Role: "Accountant"},
				TechnicalSkills: []string{"GST", "Tally"},
				Status:          "In Progress",
				CreatedAt:       "2024-03-05T10:00:00Z",
			},
			{
				ID:           "c2",
				PersonalInfo: types.PersonalInfo{FullName: "Ravi Kumar", Email: "ravi@example.com", Location: "Chennai"},
				Status:       "On Hold",
				Review:       types.LegacyReview("Strong communicator"),
			},
		},
		roles: []types.Role{
			{ID: "r1", Role: "Accountant", Skills: []string{"GST", "Tally"}},
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) candidateIndex(id string) int {
	for i := range b.candidates {
		if b.candidates[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *backend) roleIndex(id string) int {
	for i := range b.roles {
		if b.roles[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/candidate-resumes", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		status := r.URL.Query().Get("status")

		var matched []types.Candidate
		for _, c := range b.candidates {
			if status == "" || string(c.Status) == status {
				matched = append(matched, c)
			}
		}
		pages := max((len(matched)+limit-1)/limit, 1)
		start := min((page-1)*limit, len(matched))
		end := min(start+limit, len(matched))
		writeJSON(w, http.StatusOK, types.CandidatePage{
			Data:       append([]types.Candidate{}, matched[start:end]...),
			Pagination: &types.Pagination{Page: page, Pages: pages, Total: len(matched), Limit: limit},
		})
	})

	mux.HandleFunc("POST /api/candidate-resumes/search", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		var body struct {
			Email string `json:"email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		found := []types.Candidate{}
		for _, c := range b.candidates {
			if strings.EqualFold(c.PersonalInfo.Email, body.Email) {
				found = append(found, c)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": found})
	})

	mux.HandleFunc("PUT /api/candidate-resumes/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		i := b.candidateIndex(r.PathValue("id"))
		if i < 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
			return
		}
		var update types.CandidateUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		b.candidates[i].Status = types.CandidateStatus(update.Status)
		b.candidates[i].Review = update.Review
		writeJSON(w, http.StatusOK, map[string]any{"data": b.candidates[i]})
	})

	mux.HandleFunc("DELETE /api/candidate-resumes/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.requests = append(b.requests, "DELETE "+r.PathValue("id"))
		i := b.candidateIndex(r.PathValue("id"))
		if i < 0 {
			writeJSON(w, http.StatusNotFound, types.DeleteResult{Message: "Candidate not found"})
			return
		}
		b.candidates = append(b.candidates[:i], b.candidates[i+1:]...)
		writeJSON(w, http.StatusOK, types.DeleteResult{Success: true})
	})

	mux.HandleFunc("GET /api/candidate-role-skills", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"data": b.roles})
	})

	mux.HandleFunc("POST /api/candidate-role-skills", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		var req types.CreateRoleRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.nextRole++
		role := types.Role{ID: "new" + strconv.Itoa(b.nextRole), Role: req.Role, Skills: []string{}}
		b.roles = append(b.roles, role)
		writeJSON(w, http.StatusCreated, map[string]any{"data": role})
	})

	mux.HandleFunc("PUT /api/candidate-role-skills/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		i := b.roleIndex(r.PathValue("id"))
		if i < 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
			return
		}
		var req types.UpdateRoleRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Role != nil {
			b.roles[i].Role = *req.Role
		}
		b.roles[i].Skills = req.Skills
		writeJSON(w, http.StatusOK, b.roles[i])
	})

	mux.HandleFunc("DELETE /api/candidate-role-skills/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if i := b.roleIndex(r.PathValue("id")); i >= 0 {
			b.roles = append(b.roles[:i], b.roles[i+1:]...)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	mux.HandleFunc("POST /api/interview-questions/generate", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		b.generateForm = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			b.generateForm[k] = v[0]
		}
		if files := r.MultipartForm.File["pdf"]; len(files) > 0 {
			b.generateFile = files[0].Filename
		}
		if b.generateErr != "" {
			writeJSON(w, http.StatusBadRequest, []map[string]string{{"error": b.generateErr, "reason": "empty array"}})
			return
		}
		count, _ := strconv.Atoi(r.FormValue("numberOfQuestions"))
		questions := make([]types.Question, count)
		for i := range questions {
			questions[i] = types.Question{
				Question:       "Explain input tax credit " + strconv.Itoa(i+1),
				Type:           "technical",
				Complexity:     "Medium",
				ExpectedAnswer: "Credit for tax paid on inputs",
				Skills:         []string{"GST"},
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    types.GeneratedQuestions{Role: r.FormValue("role"), Questions: questions},
		})
	})

	mux.HandleFunc("POST /api/interview-questions/candidate-compatibility", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, types.CompatibilityReport{
			CompatibilityScore:   81,
			CompatibilitySummary: "Strong match for " + r.FormValue("role"),
			KeyStrengths:         []string{"GST returns"},
			SkillAssessment: []types.SkillAssessment{
				{Skill: "GST", Status: "Strong"},
				{Skill: "Tally", Status: types.SkillNotFound},
			},
		})
	})

	mux.HandleFunc("POST /api/interview-questions/download-pdf", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		var req types.PDFRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.pdfRequests = append(b.pdfRequests, req)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 withAnswers=" + r.URL.Query().Get("withAnswers")))
	})

	return mux
}

// startBackend serves b and points the environment at it.
func startBackend(t *testing.T, b *backend) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	for _, name := range []string{
		config.EnvTimeout, config.EnvPageSize, config.EnvAPIToken, config.EnvLogFormat,
		config.EnvJWTSecret, config.EnvJWTSubject, config.EnvJWTExpirationMinutes,
	} {
		t.Setenv(name, "")
	}
	t.Setenv(config.EnvBaseURL, srv.URL)
	t.Setenv(config.EnvLogLevel, "error")
	return srv
}

// resetFlags restores every flag to its default so runs do not leak into
// each other through the package-level flag variables.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes the root command with args, feeding stdin, and returns
// everything written to stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, "", args...)
	require.NoError(t, err, out)
	return out
}
