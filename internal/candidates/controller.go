// Package candidates drives the candidate list: paging, searching,
// filtering, status changes, deletion and reviews.
package candidates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/hr-console/internal/inflight"
	"github.com/jonathan/hr-console/internal/notify"
	"github.com/jonathan/hr-console/internal/review"
	"github.com/jonathan/hr-console/internal/types"
	"github.com/rs/zerolog"
)

// PageSize is the number of candidates requested per page.
const PageSize = 10

// Load failure messages shown in the error state.
const (
	MsgFetchFailed  = "Failed to fetch candidates."
	MsgSearchFailed = "Failed to search candidates."
)

var (
	// ErrNotFound is returned for ids not in the current collection.
	ErrNotFound = errors.New("candidate not found")
	// ErrBusy is returned when the same mutation is already running for a candidate.
	ErrBusy = errors.New("candidate operation already in progress")
	// ErrDeleteRefused is returned when the server answers a delete with success false.
	ErrDeleteRefused = errors.New("candidate deletion refused")
)

// API is the part of the HR API the controller needs.
type API interface {
	ListCandidates(ctx context.Context, page, limit int, status string) (*types.CandidatePage, error)
	SearchCandidates(ctx context.Context, email string) ([]types.Candidate, error)
	UpdateCandidate(ctx context.Context, id string, update types.CandidateUpdate) error
	DeleteCandidate(ctx context.Context, id string) (*types.DeleteResult, error)
}

// ConfirmFunc asks the user to confirm deleting c.
type ConfirmFunc func(c types.Candidate) bool

// State is the load state of the list.
type State int

// List states.
const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Mode says where the collection came from.
type Mode int

// List modes.
const (
	ModePaged Mode = iota
	ModeSearch
)

// Controller owns the candidate collection and its request lifecycle. It
// is safe for concurrent use; no lock is held across network calls.
type Controller struct {
	api      API
	notifier notify.Notifier
	log      zerolog.Logger
	pageSize int

	seq      inflight.Sequence
	deleting *inflight.Tracker
	updating *inflight.Tracker

	mu           sync.Mutex
	candidates   []types.Candidate
	page         int
	pages        int
	total        int
	statusFilter string
	textFilter   string
	searchTerm   string
	mode         Mode
	state        State
	errMsg       string

	// pending is the last load or search issued; it is committed to the
	// fields above only when it succeeds.
	pending request
}

// request describes one load or search.
type request struct {
	mode   Mode
	page   int
	filter string
	term   string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithPageSize overrides PageSize.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// New creates a controller in the idle state showing page 1 of all
// statuses.
func New(api API, n notify.Notifier, opts ...Option) *Controller {
	c := &Controller{
		api:          api,
		notifier:     notify.OrDiscard(n),
		log:          zerolog.Nop(),
		pageSize:     PageSize,
		deleting:     inflight.NewTracker(),
		updating:     inflight.NewTracker(),
		page:         1,
		pages:        1,
		statusFilter: types.StatusAll,
		pending:      request{mode: ModePaged, page: 1, filter: types.StatusAll},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// normalizeFilter maps a filter value to types.StatusAll or a status.
func normalizeFilter(f string) string {
	f = strings.TrimSpace(f)
	if f == "" || strings.EqualFold(f, types.StatusAll) {
		return types.StatusAll
	}
	return string(types.NormalizeStatus(f))
}

func normalizeAll(list []types.Candidate) []types.Candidate {
	out := make([]types.Candidate, len(list))
	for i, c := range list {
		c.Status = types.NormalizeStatus(string(c.Status))
		out[i] = c
	}
	return out
}

// Load fetches a page filtered by status ("all" for none) and leaves
// search mode. On failure the previous page, filter and mode are kept.
func (c *Controller) Load(ctx context.Context, page int, status string) error {
	if page < 1 {
		page = 1
	}
	filter := normalizeFilter(status)

	c.mu.Lock()
	tok := c.seq.Next()
	c.pending = request{mode: ModePaged, page: page, filter: filter}
	c.state = StateLoading
	c.errMsg = ""
	c.mu.Unlock()

	apiStatus := ""
	if filter != types.StatusAll {
		apiStatus = types.CandidateStatus(filter).APILabel()
	}
	result, err := c.api.ListCandidates(ctx, page, c.pageSize, apiStatus)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seq.Current(tok) {
		c.log.Debug().Int("page", page).Msg("dropping stale candidate page")
		return nil
	}
	if err != nil {
		c.fail(MsgFetchFailed, err)
		return err
	}

	c.mode = ModePaged
	c.searchTerm = ""
	c.statusFilter = filter
	c.candidates = normalizeAll(result.Data)
	if p := result.Pagination; p != nil {
		c.page, c.pages, c.total = p.Page, p.Pages, p.Total
	} else {
		c.page, c.pages, c.total = 1, 1, 0
	}
	c.state = StateLoaded
	return nil
}

// fail records a load failure. Callers hold mu.
func (c *Controller) fail(msg string, err error) {
	c.state = StateError
	c.errMsg = msg
	c.log.Error().Err(err).Msg(msg)
	c.notifier.Notify(notify.Error("Error", msg))
}

// Search looks candidates up by email. A blank term leaves search mode and
// reloads page 1.
func (c *Controller) Search(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		c.mu.Lock()
		filter := c.statusFilter
		c.mu.Unlock()
		return c.Load(ctx, 1, filter)
	}

	c.mu.Lock()
	tok := c.seq.Next()
	c.pending = request{mode: ModeSearch, page: 1, filter: c.statusFilter, term: term}
	c.state = StateLoading
	c.errMsg = ""
	c.mu.Unlock()

	found, err := c.api.SearchCandidates(ctx, term)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seq.Current(tok) {
		c.log.Debug().Str("term", term).Msg("dropping stale search result")
		return nil
	}
	if err != nil {
		c.fail(MsgSearchFailed, err)
		return err
	}

	c.mode = ModeSearch
	c.searchTerm = term
	c.candidates = normalizeAll(found)
	c.page, c.pages, c.total = 1, 1, len(found)
	c.state = StateLoaded
	return nil
}

// SetStatusFilter changes the status filter and reloads page 1.
func (c *Controller) SetStatusFilter(ctx context.Context, status string) error {
	return c.Load(ctx, 1, status)
}

// SetTextFilter sets the local text filter applied by Visible.
func (c *Controller) SetTextFilter(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.textFilter = text
}

// GoToPage loads page n. Out-of-range pages and the current page are
// ignored, as is paging while searching.
func (c *Controller) GoToPage(ctx context.Context, n int) error {
	c.mu.Lock()
	if c.mode == ModeSearch || n < 1 || n > c.pages || n == c.page {
		c.mu.Unlock()
		return nil
	}
	filter := c.statusFilter
	c.mu.Unlock()
	return c.Load(ctx, n, filter)
}

// Retry re-issues the last load or search, including one that failed.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	req := c.pending
	c.mu.Unlock()

	if req.mode == ModeSearch {
		return c.Search(ctx, req.term)
	}
	return c.Load(ctx, req.page, req.filter)
}

func (c *Controller) index(id string) int {
	for i := range c.candidates {
		if c.candidates[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the candidate with id from the current collection.
func (c *Controller) Get(id string) (types.Candidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		return c.candidates[i], true
	}
	return types.Candidate{}, false
}

// UpdateStatus sends the new status with the candidate's existing review.
// The local status changes only once the server has accepted it.
func (c *Controller) UpdateStatus(ctx context.Context, id string, status types.CandidateStatus) error {
	cand, ok := c.Get(id)
	if !ok {
		return ErrNotFound
	}
	if !c.updating.Begin(id) {
		return ErrBusy
	}
	defer c.updating.End(id)

	existing := cand.Review
	if existing == nil {
		existing = types.LegacyReview("")
	}
	update := types.CandidateUpdate{Status: status.APILabel(), Review: existing}
	if err := c.api.UpdateCandidate(ctx, id, update); err != nil {
		c.log.Error().Err(err).Str("candidate_id", id).Msg("status update failed")
		c.notifier.Notify(notify.Error("Error", "Failed to update status. Please try again."))
		return err
	}

	c.mu.Lock()
	if i := c.index(id); i >= 0 {
		c.candidates[i].Status = status
	}
	c.mu.Unlock()
	c.notifier.Notify(notify.Info("Status Updated", "Candidate status has been successfully updated."))
	return nil
}

// Delete removes a candidate after confirm approves it. When the deleted
// candidate was the only one on a page after the first, the previous page
// is loaded; otherwise the current page is reloaded. In search mode the
// candidate is dropped from the results instead.
func (c *Controller) Delete(ctx context.Context, id string, confirm ConfirmFunc) error {
	cand, ok := c.Get(id)
	if !ok {
		return ErrNotFound
	}
	if confirm == nil || !confirm(cand) {
		return nil
	}
	if !c.deleting.Begin(id) {
		return ErrBusy
	}
	defer c.deleting.End(id)

	res, err := c.api.DeleteCandidate(ctx, id)
	if err != nil {
		c.log.Error().Err(err).Str("candidate_id", id).Msg("delete failed")
		c.notifier.Notify(notify.Error("Error", "Failed to delete candidate"))
		return err
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Failed to delete candidate"
		}
		c.notifier.Notify(notify.Error("Error", msg))
		return fmt.Errorf("%w: %s", ErrDeleteRefused, msg)
	}
	c.notifier.Notify(notify.Info("Success", "Candidate deleted successfully"))

	c.mu.Lock()
	if c.mode == ModeSearch {
		if i := c.index(id); i >= 0 {
			c.candidates = append(c.candidates[:i], c.candidates[i+1:]...)
			c.total = len(c.candidates)
		}
		c.mu.Unlock()
		return nil
	}
	page := c.page
	if len(c.candidates) == 1 && page > 1 {
		page--
	}
	filter := c.statusFilter
	c.mu.Unlock()

	return c.Load(ctx, page, filter)
}

// Deleting reports whether a delete of id is in flight.
func (c *Controller) Deleting(id string) bool {
	return c.deleting.Active(id)
}

// OpenReview opens a review session for a candidate: rehydrated from a
// structured review, or fresh for none or a legacy text review.
func (c *Controller) OpenReview(id string) (*review.Session, error) {
	cand, ok := c.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	s := review.NewSession(c.notifier)
	if cand.Review.IsStructured() {
		s.Open(cand.Review.Snapshot)
	} else {
		s.Open(nil)
	}
	return s, nil
}

// SaveReview returns the save callback for a candidate's review session. It
// writes the snapshot with the candidate's current status and, on success,
// stores it on the local candidate.
func (c *Controller) SaveReview(id string) review.SaveFunc {
	return func(ctx context.Context, snapshot types.ReviewSnapshot) error {
		cand, ok := c.Get(id)
		if !ok {
			return ErrNotFound
		}
		rev := types.SnapshotReview(snapshot)
		update := types.CandidateUpdate{
			Status: types.NormalizeStatus(string(cand.Status)).APILabel(),
			Review: rev,
		}
		if err := c.api.UpdateCandidate(ctx, id, update); err != nil {
			c.log.Error().Err(err).Str("candidate_id", id).Msg("review save failed")
			return err
		}

		c.mu.Lock()
		if i := c.index(id); i >= 0 {
			c.candidates[i].Review = rev
		}
		c.mu.Unlock()
		c.notifier.Notify(notify.Info("Review Saved", "Candidate review has been successfully saved."))
		return nil
	}
}

// Visible returns the candidates to display: the status filter always
// applies, the text filter only outside search mode.
func (c *Controller) Visible() []types.Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()

	text := strings.ToLower(strings.TrimSpace(c.textFilter))
	out := make([]types.Candidate, 0, len(c.candidates))
	for _, cand := range c.candidates {
		if c.statusFilter != types.StatusAll && string(cand.Status) != c.statusFilter {
			continue
		}
		if c.mode != ModeSearch && text != "" && !matches(cand, text) {
			continue
		}
		out = append(out, cand)
	}
	return out
}

// matches reports whether any searchable field contains needle, which must
// already be lower case.
func matches(c types.Candidate, needle string) bool {
	fields := []string{
		c.PersonalInfo.FullName,
		c.PersonalInfo.Email,
		c.PersonalInfo.Phone,
		c.PersonalInfo.Location,
		c.ProfessionalInfo.CurrentTitle,
		c.RoleName(),
	}
	fields = append(fields, c.Skills()...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// View is a point-in-time copy of the list state.
type View struct {
	State        State
	Mode         Mode
	Error        string
	Page         int
	Pages        int
	Total        int
	HasMore      bool
	StatusFilter string
	SearchTerm   string
}

// View returns the current list state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		State:        c.state,
		Mode:         c.mode,
		Error:        c.errMsg,
		Page:         c.page,
		Pages:        c.pages,
		Total:        c.total,
		HasMore:      c.page < c.pages,
		StatusFilter: c.statusFilter,
		SearchTerm:   c.searchTerm,
	}
}
