package review

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/hr-console/internal/notify"
	"github.com/jonathan/hr-console/internal/schemas"
	"github.com/jonathan/hr-console/internal/types"
)

// State is the lifecycle state of a review session.
type State int

// Session states.
const (
	StateClosed State = iota
	StateOpenFresh
	StateOpenLoaded
)

func (s State) String() string {
	switch s {
	case StateOpenFresh:
		return "open (fresh)"
	case StateOpenLoaded:
		return "open (loaded)"
	default:
		return "closed"
	}
}

var (
	// ErrClosed is returned when a closed session is used.
	ErrClosed = errors.New("review session is closed")
	// ErrSaveInProgress is returned when Save is called while a save is running.
	ErrSaveInProgress = errors.New("review save already in progress")
)

// SaveFunc persists a review snapshot.
type SaveFunc func(ctx context.Context, snapshot types.ReviewSnapshot) error

// Session edits one review at a time. Opening it builds a fresh model;
// closing it discards the model, so nothing survives between openings
// unless it was saved.
type Session struct {
	mu       sync.Mutex
	state    State
	model    *Model
	saving   bool
	notifier notify.Notifier
	now      func() time.Time
}

// NewSession creates a closed session.
func NewSession(n notify.Notifier) *Session {
	return &Session{
		notifier: notify.OrDiscard(n),
		now:      time.Now,
	}
}

// Open starts editing. A nil existing review opens the built-in criteria;
// otherwise the criteria are rebuilt from the snapshot.
func (s *Session) Open(existing *types.ReviewSnapshot) *Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing != nil {
		s.model = FromSnapshot(*existing, s.notifier)
		s.state = StateOpenLoaded
	} else {
		s.model = NewModel(s.notifier)
		s.state = StateOpenFresh
	}
	return s.model
}

// Close discards the model.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.close()
}

func (s *Session) close() {
	s.state = StateClosed
	s.model = nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Model returns the model being edited.
func (s *Session) Model() (*Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil, ErrClosed
	}
	return s.model, nil
}

// Saving reports whether a save is running.
func (s *Session) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// Save snapshots the model and hands it to save. On success the session
// closes; on failure it stays open with the model intact. draft only
// changes the notification text.
func (s *Session) Save(ctx context.Context, draft bool, save SaveFunc) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInProgress
	}
	s.saving = true
	model := s.model
	snapshot := model.Snapshot(s.now())
	s.mu.Unlock()

	err := schemas.ValidateReviewSnapshot(snapshot)
	if err == nil {
		err = save(ctx, snapshot)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if err != nil {
		s.notifier.Notify(notify.Error("Error saving review", "Please try again later"))
		return fmt.Errorf("failed to save review: %w", err)
	}

	// A reopen during the save replaced the model; leave that one alone.
	if s.model == model {
		s.close()
	}
	if draft {
		s.notifier.Notify(notify.Info("Review saved as draft", "You can continue editing this review later"))
	} else {
		s.notifier.Notify(notify.Info("Review completed", "Review has been successfully submitted"))
	}
	return nil
}
