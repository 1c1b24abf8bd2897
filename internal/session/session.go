package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-api/internal/model"
	"github.com/jwalitptl/pharmacy-api/internal/reconcile"
)

// Session is one scan session, alive from image intake until submission or
// close. HTTP handlers and the pipeline goroutine both touch it, so every
// access goes through the mutex; mutations are serialized, which gives the
// form a simple total-order guarantee.
type Session struct {
	ID        uuid.UUID
	State     model.SessionState
	Progress  int
	Document  *model.PrescriptionDocument
	Matches   []model.MatchResult
	Form      *reconcile.State
	Warning   string
	LastError string
	CreatedAt time.Time

	cancel context.CancelFunc
	mu     sync.Mutex
}

// Snapshot is the read-only wire view of a session.
type Snapshot struct {
	ID        string                      `json:"id"`
	State     model.SessionState          `json:"state"`
	Progress  int                         `json:"progress"`
	Document  *model.PrescriptionDocument `json:"document,omitempty"`
	Matches   []model.MatchResult         `json:"matches,omitempty"`
	Form      *reconcile.State            `json:"form,omitempty"`
	Warning   string                      `json:"warning,omitempty"`
	LastError string                      `json:"last_error,omitempty"`
}

func newSession(cancel context.CancelFunc) *Session {
	return &Session{
		ID:        uuid.New(),
		State:     model.SessionStateExtracting,
		CreatedAt: time.Now(),
		cancel:    cancel,
	}
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		ID:        s.ID.String(),
		State:     s.State,
		Progress:  s.Progress,
		Document:  s.Document,
		Matches:   s.Matches,
		Warning:   s.Warning,
		LastError: s.LastError,
	}
	if s.Form != nil {
		form := *s.Form
		form.Items = append([]model.MedicineLineItem(nil), s.Form.Items...)
		snap.Form = &form
	}
	return snap
}

func (s *Session) setProgress(percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	s.Progress = percent
}
