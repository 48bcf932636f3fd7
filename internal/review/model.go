// Package review implements the candidate review criteria model and the
// review session that edits and saves it.
package review

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/hr-console/internal/notify"
	"github.com/jonathan/hr-console/internal/types"
	"github.com/shopspring/decimal"
)

// MaxRating is the highest star rating a criterion can receive.
const MaxRating = 5

const (
	// MaxNameLength is the maximum criterion name length in runes.
	MaxNameLength = 50
	// MaxDescriptionLength is the maximum criterion description length in runes.
	MaxDescriptionLength = 200
)

// ErrInvalidRating is returned by SetRating for values outside 0..MaxRating.
var ErrInvalidRating = errors.New("rating must be between 0 and 5")

// Criterion is one rated aspect of a candidate review. A Rating of 0 means
// the criterion has not been rated yet.
type Criterion struct {
	ID          string
	Name        string
	Description string
	Rating      int
	Comment     string
	IsCustom    bool
}

// Rated reports whether the criterion has a rating.
func (c Criterion) Rated() bool {
	return c.Rating > 0
}

// criterionInput mirrors the limits of the add and edit dialogs.
type criterionInput struct {
	Name        string `validate:"required,max=50"`
	Description string `validate:"required,max=200"`
}

var validate = validator.New()

func cleanInput(name, description string) (criterionInput, bool) {
	in := criterionInput{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}
	if err := validate.Struct(in); err != nil {
		return in, false
	}
	return in, true
}

// DefaultCriteria returns the built-in criteria every fresh review starts from.
func DefaultCriteria() []Criterion {
	return []Criterion{
		{ID: "technical-knowledge", Name: "Technical Knowledge", Description: "Accounting principles, GST, Software"},
		{ID: "excel-proficiency", Name: "Excel Proficiency", Description: "VLOOKUP, Pivot Tables, basic formulas"},
		{ID: "communication-clarity", Name: "Communication Clarity", Description: "Explains concepts well"},
		{ID: "professional-attitude", Name: "Professional Attitude", Description: "Punctuality, politeness, interest"},
		{ID: "problem-solving", Name: "Problem-Solving Ability", Description: "Handles real scenarios effectively"},
		{ID: "cultural-fit", Name: "Cultural Fit", Description: "Teamwork, accountability, learning mindset"},
	}
}

// Model is an ordered collection of review criteria with unique ids.
// Insertion order is display order. A Model is not safe for concurrent use.
type Model struct {
	criteria []Criterion
	notifier notify.Notifier
	now      func() time.Time
}

// NewModel creates a model holding the built-in criteria.
func NewModel(n notify.Notifier) *Model {
	return NewModelFrom(DefaultCriteria(), n)
}

// NewModelFrom creates a model holding a copy of criteria.
func NewModelFrom(criteria []Criterion, n notify.Notifier) *Model {
	cp := make([]Criterion, len(criteria))
	copy(cp, criteria)
	return &Model{
		criteria: cp,
		notifier: notify.OrDiscard(n),
		now:      time.Now,
	}
}

// FromSnapshot rebuilds a model from a saved review. Criteria without a
// stored id get a fresh one.
func FromSnapshot(s types.ReviewSnapshot, n notify.Notifier) *Model {
	criteria := make([]Criterion, 0, len(s.Criteria))
	seen := make(map[string]bool, len(s.Criteria))
	for _, c := range s.Criteria {
		id := c.ID
		if id == "" || seen[id] {
			id = "criteria-" + uuid.NewString()
		}
		seen[id] = true
		criteria = append(criteria, Criterion{
			ID:          id,
			Name:        c.Title,
			Description: c.Description,
			Rating:      c.Rating,
			Comment:     c.Feedback,
			IsCustom:    !c.IsDefault,
		})
	}
	return NewModelFrom(criteria, n)
}

// Criteria returns a copy of the criteria in display order.
func (m *Model) Criteria() []Criterion {
	out := make([]Criterion, len(m.criteria))
	copy(out, m.criteria)
	return out
}

// Len returns the number of criteria.
func (m *Model) Len() int {
	return len(m.criteria)
}

// Get returns the criterion with the given id.
func (m *Model) Get(id string) (Criterion, bool) {
	if i := m.index(id); i >= 0 {
		return m.criteria[i], true
	}
	return Criterion{}, false
}

func (m *Model) index(id string) int {
	for i, c := range m.criteria {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (m *Model) newID() string {
	base := fmt.Sprintf("custom-%d", m.now().UnixMilli())
	id := base
	for n := 2; m.index(id) >= 0; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

// AddCriterion appends a custom criterion. Blank or over-long input is
// ignored and reported as false.
func (m *Model) AddCriterion(name, description string) (Criterion, bool) {
	in, ok := cleanInput(name, description)
	if !ok {
		return Criterion{}, false
	}
	c := Criterion{
		ID:          m.newID(),
		Name:        in.Name,
		Description: in.Description,
		IsCustom:    true,
	}
	m.criteria = append(m.criteria, c)
	m.notifier.Notify(notify.Info("Custom criteria added", "You can now rate this new criteria"))
	return c, true
}

// EditCriterion renames a criterion in place. Any edited criterion, built-in
// or not, becomes custom.
func (m *Model) EditCriterion(id, name, description string) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	in, ok := cleanInput(name, description)
	if !ok {
		return false
	}
	m.criteria[i].Name = in.Name
	m.criteria[i].Description = in.Description
	m.criteria[i].IsCustom = true
	m.notifier.Notify(notify.Info("Criteria updated", "Changes have been saved successfully"))
	return true
}

// DeleteCriterion removes a criterion. Unknown ids are ignored.
func (m *Model) DeleteCriterion(id string) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	m.criteria = append(m.criteria[:i], m.criteria[i+1:]...)
	m.notifier.Notify(notify.Info("Criteria deleted", "Review criteria has been removed"))
	return true
}

// SetRating sets a criterion's rating. Zero clears it.
func (m *Model) SetRating(id string, rating int) error {
	if rating < 0 || rating > MaxRating {
		return ErrInvalidRating
	}
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("criterion %q not found", id)
	}
	m.criteria[i].Rating = rating
	return nil
}

// SetComment replaces a criterion's comment.
func (m *Model) SetComment(id, comment string) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	m.criteria[i].Comment = comment
	return true
}

// Completed returns the number of rated criteria.
func (m *Model) Completed() int {
	n := 0
	for _, c := range m.criteria {
		if c.Rated() {
			n++
		}
	}
	return n
}

// OverallRating is the mean of the positive ratings rounded half-up to one
// decimal, or 0 when nothing is rated.
func (m *Model) OverallRating() float64 {
	sum, n := 0, 0
	for _, c := range m.criteria {
		if c.Rated() {
			sum += c.Rating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	avg, _ := decimal.NewFromInt(int64(sum)).DivRound(decimal.NewFromInt(int64(n)), 1).Float64()
	return avg
}

// CompletionPercentage is the share of rated criteria in percent. An empty
// model is 0% complete.
func (m *Model) CompletionPercentage() float64 {
	if len(m.criteria) == 0 {
		return 0
	}
	return float64(m.Completed()) / float64(len(m.criteria)) * 100
}

// roundedPercentage is CompletionPercentage rounded half-up to an integer.
func (m *Model) roundedPercentage() int {
	if len(m.criteria) == 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(m.Completed() * 100)).DivRound(decimal.NewFromInt(int64(len(m.criteria))), 0)
	return int(pct.IntPart())
}

// IsComplete reports whether every criterion is rated.
func (m *Model) IsComplete() bool {
	for _, c := range m.criteria {
		if !c.Rated() {
			return false
		}
	}
	return true
}

// Snapshot converts the model into the persisted review shape. Every
// criterion is stamped with now.
func (m *Model) Snapshot(now time.Time) types.ReviewSnapshot {
	criteria := make([]types.SnapshotCriterion, 0, len(m.criteria))
	for _, c := range m.criteria {
		criteria = append(criteria, types.SnapshotCriterion{
			Title:       c.Name,
			Description: c.Description,
			Rating:      c.Rating,
			Feedback:    c.Comment,
			CreatedAt:   now,
			IsDefault:   !c.IsCustom,
		})
	}
	return types.ReviewSnapshot{
		OverallRating: m.OverallRating(),
		Progress: types.ReviewProgress{
			TotalCriteria:     len(m.criteria),
			CompletedCriteria: m.Completed(),
			Percentage:        m.roundedPercentage(),
		},
		Criteria: criteria,
	}
}
