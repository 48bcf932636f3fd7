package types

import (
	"github.com/go-playground/validator/v10"
)

// Question is a single generated interview question.
type Question struct {
	Question       string   `json:"question"`
	Type           string   `json:"type"`
	Complexity     string   `json:"complexity"`
	ExpectedAnswer string   `json:"expectedAnswer"`
	Skills         []string `json:"skills"`
}

// GeneratedQuestions is the data payload of a successful generation.
type GeneratedQuestions struct {
	Role               string     `json:"role"`
	RequestedSkills    []string   `json:"requestedSkills"`
	QuestionComplexity int        `json:"questionComplexity"`
	NumberOfQuestions  int        `json:"numberOfQuestions"`
	Questions          []Question `json:"questions"`
}

// GenerateResult is the outcome of a generation call. When OK is false,
// Error carries the backend's message and Reason its optional detail; an
// empty Error means the failure had no backend message.
type GenerateResult struct {
	OK     bool
	Data   GeneratedQuestions
	Error  string
	Reason string
}

// GenerateRequest holds the form fields posted to the generation endpoint.
// Role is the role's display name, not its id.
type GenerateRequest struct {
	Role               string   `validate:"required"`
	Skills             []string `validate:"required,min=1,dive,required"`
	QuestionComplexity int      `validate:"min=0,max=100"`
	NumberOfQuestions  int      `validate:"min=1,max=20"`
	CustomInstructions string
	ResumePath         string
}

// Validate validates the GenerateRequest using the validator.
func (r *GenerateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// CompatibilityRequest holds the form fields for a compatibility check.
type CompatibilityRequest struct {
	Role       string   `validate:"required"`
	Skills     []string `validate:"required,min=1,dive,required"`
	ResumePath string   `validate:"required"`
}

// Validate validates the CompatibilityRequest using the validator.
func (r *CompatibilityRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// SkillAssessment is one skill line of a compatibility report.
type SkillAssessment struct {
	Skill  string `json:"skill"`
	Status string `json:"status"`
}

// CompatibilityReport is the raw compatibility endpoint response.
type CompatibilityReport struct {
	CompatibilityScore       int               `json:"compatibilityScore"`
	CompatibilitySummary     string            `json:"compatibilitySummary"`
	KeyStrengths             []string          `json:"keyStrengths"`
	SkillsToExplore          []string          `json:"skillsToExplore"`
	InterviewRecommendations []string          `json:"interviewRecommendations"`
	SkillAssessment          []SkillAssessment `json:"skillAssessment"`
}

// SkillMatch is a skill assessment reduced to matched or not.
type SkillMatch struct {
	Skill       string
	Proficiency string
	Match       bool
}

// Compatibility is the display form of a CompatibilityReport.
type Compatibility struct {
	Score             int
	OverallAssessment string
	Strengths         []string
	MissingSkills     []string
	Recommendations   []string
	SkillMatches      []SkillMatch
}

// SkillNotFound is the assessment status meaning the resume lacks the skill.
const SkillNotFound = "Not found"

// ToCompatibility maps the API report into its display form.
func (r *CompatibilityReport) ToCompatibility() Compatibility {
	matches := make([]SkillMatch, 0, len(r.SkillAssessment))
	for _, s := range r.SkillAssessment {
		matches = append(matches, SkillMatch{
			Skill:       s.Skill,
			Proficiency: s.Status,
			Match:       s.Status != SkillNotFound,
		})
	}
	return Compatibility{
		Score:             r.CompatibilityScore,
		OverallAssessment: r.CompatibilitySummary,
		Strengths:         r.KeyStrengths,
		MissingSkills:     r.SkillsToExplore,
		Recommendations:   r.InterviewRecommendations,
		SkillMatches:      matches,
	}
}

// PDFRequest is the JSON body of the PDF export endpoint.
type PDFRequest struct {
	Role               string     `json:"role"`
	RequestedSkills    []string   `json:"requestedSkills"`
	QuestionComplexity int        `json:"questionComplexity"`
	NumberOfQuestions  int        `json:"numberOfQuestions"`
	CustomInstructions *string    `json:"customInstructions"`
	Questions          []Question `json:"questions"`
}
