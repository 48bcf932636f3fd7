// Package types provides the wire types exchanged with the HR interview API.
package types

import (
	"strings"
	"time"
)

// CandidateStatus is the internal status vocabulary for a candidate.
type CandidateStatus string

// Candidate statuses. Anything the API sends is folded into one of these.
const (
	StatusInProgress CandidateStatus = "in-progress"
	StatusHold       CandidateStatus = "hold"
	StatusAccepted   CandidateStatus = "accepted"
	StatusRejected   CandidateStatus = "rejected"
)

// StatusAll is the filter value meaning "no status filter".
const StatusAll = "all"

// AllStatuses lists the statuses in display order.
var AllStatuses = []CandidateStatus{StatusInProgress, StatusHold, StatusAccepted, StatusRejected}

var statusLabels = map[CandidateStatus]string{
	StatusInProgress: "In Progress",
	StatusHold:       "On Hold",
	StatusAccepted:   "Accepted",
	StatusRejected:   "Rejected",
}

// NormalizeStatus folds a free-text API status ("In Progress", "in_progress",
// "On Hold", ...) into a CandidateStatus. Unknown or empty values become
// StatusInProgress.
func NormalizeStatus(raw string) CandidateStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	switch s {
	case "in-progress":
		return StatusInProgress
	case "hold", "on-hold":
		return StatusHold
	case "accepted":
		return StatusAccepted
	case "rejected":
		return StatusRejected
	default:
		return StatusInProgress
	}
}

// Valid reports whether s is one of the four known statuses.
func (s CandidateStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// APILabel returns the status string the API expects on writes and filters.
func (s CandidateStatus) APILabel() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Label returns the display label.
func (s CandidateStatus) Label() string {
	return s.APILabel()
}

// PersonalInfo holds contact details for a candidate.
type PersonalInfo struct {
	FullName string  `json:"fullName"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Location string  `json:"location,omitempty"`
	LinkedIn *string `json:"linkedin,omitempty"`
}

// ProfessionalInfo holds the candidate's current position and background.
type ProfessionalInfo struct {
	CurrentTitle      string   `json:"currentTitle,omitempty"`
	YearsOfExperience string   `json:"yearsOfExperience,omitempty"`
	Education         string   `json:"education,omitempty"`
	Certifications    []string `json:"certifications,omitempty"`
}

// RoleApplied is the role a candidate applied for.
type RoleApplied struct {
	Role            string   `json:"role,omitempty"`
	RequestedSkills []string `json:"requestedSkills,omitempty"`
}

// WorkExperience is one entry of a candidate's work history.
type WorkExperience struct {
	Title       string  `json:"title,omitempty"`
	Company     string  `json:"company,omitempty"`
	Years       *string `json:"years,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Candidate is a parsed resume record as returned by the API.
type Candidate struct {
	ID                  string           `json:"_id"`
	PersonalInfo        PersonalInfo     `json:"personalInfo"`
	ProfessionalInfo    ProfessionalInfo `json:"professionalInfo"`
	RoleApplied         *RoleApplied     `json:"roleApplied,omitempty"`
	ProfessionalSummary string           `json:"professionalSummary,omitempty"`
	WorkExperience      []WorkExperience `json:"workExperience,omitempty"`
	TechnicalSkills     []string         `json:"technicalSkills,omitempty"`
	SoftSkills          []string         `json:"softSkills,omitempty"`
	Status              CandidateStatus  `json:"status,omitempty"`
	CreatedAt           string           `json:"createdAt,omitempty"`
	Review              *Review          `json:"review,omitempty"`
}

// RoleName returns the applied role, or "" when none is recorded.
func (c *Candidate) RoleName() string {
	if c.RoleApplied == nil {
		return ""
	}
	return c.RoleApplied.Role
}

// Skills returns technical skills followed by soft skills.
func (c *Candidate) Skills() []string {
	skills := make([]string, 0, len(c.TechnicalSkills)+len(c.SoftSkills))
	skills = append(skills, c.TechnicalSkills...)
	return append(skills, c.SoftSkills...)
}

// Created parses CreatedAt. The zero time and false are returned when the
// field is empty or not RFC 3339.
func (c *Candidate) Created() (time.Time, bool) {
	if c.CreatedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, c.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Pagination is the page metadata attached to candidate list responses.
type Pagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
	Limit int `json:"limit,omitempty"`
}

// CandidatePage is the response of the candidate list endpoint.
type CandidatePage struct {
	Data       []Candidate `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// CandidateUpdate is the body of PUT /api/candidate-resumes/:id.
type CandidateUpdate struct {
	Status string  `json:"status"`
	Review *Review `json:"review"`
}

// DeleteResult is the body returned by candidate deletion.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
