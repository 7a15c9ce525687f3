package state

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/five82/intake/internal/directory"
	"github.com/five82/intake/internal/form"
	"github.com/five82/intake/internal/session"
)

// Snapshot represents the session data available to the UI.
type Snapshot struct {
	Authenticated bool
	User          string
	Directory     directory.Directory
	Form          form.Form
	LoggingIn     bool
	Submitting    bool
	Submissions   int // reports sent this session
	LastSubmitted time.Time
	LastError     error
	LastUpdated   time.Time
}

// CanSubmit reports whether the submit control should be enabled.
func (s Snapshot) CanSubmit() bool {
	return s.Authenticated && !s.Submitting
}

// Store coordinates concurrent updates to the session.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// BeginLogin marks a login as in flight. It returns false when one already is.
func (s *Store) BeginLogin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.LoggingIn {
		return false
	}
	s.snapshot.LoggingIn = true
	s.touch()
	return true
}

// FinishLogin records a login outcome. On error the session stays
// unauthenticated and the previous data is kept.
func (s *Store) FinishLogin(creds session.Credentials, dir directory.Directory, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LoggingIn = false
	s.touch()
	if err != nil {
		s.snapshot.LastError = err
		return
	}
	s.snapshot.Authenticated = true
	s.snapshot.User = strings.TrimSpace(creds.Identifier)
	s.snapshot.Directory = dir.Clone()
	s.snapshot.LastError = nil
}

// Logout clears credentials, directory, form and selections.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = Snapshot{}
	s.touch()
}

// EditForm applies fn to the form under the lock.
func (s *Store) EditForm(fn func(*form.Form)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snapshot.Form)
	s.touch()
}

// ClearForm resets the form and its selections.
func (s *Store) ClearForm() {
	s.EditForm(func(f *form.Form) { f.Clear() })
}

// BeginSubmit marks a submission as in flight. It returns false when one
// already is.
func (s *Store) BeginSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.Submitting {
		return false
	}
	s.snapshot.Submitting = true
	s.touch()
	return true
}

// FinishSubmit records a submission outcome. When resetForm is set, a
// successful submission clears the form if it still equals sent; a form
// edited while the report was in flight is kept. It reports whether the
// form was cleared.
func (s *Store) FinishSubmit(err error, sent form.Form, resetForm bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Submitting = false
	s.touch()
	if err != nil {
		s.snapshot.LastError = err
		return false
	}
	s.snapshot.Submissions++
	s.snapshot.LastSubmitted = s.snapshot.LastUpdated
	s.snapshot.LastError = nil
	if resetForm && s.snapshot.Form == sent {
		s.snapshot.Form.Clear()
		return true
	}
	return false
}

// RecordError stores err as the most recent failure.
func (s *Store) RecordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastError = err
	s.touch()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Directory = s.snapshot.Directory.Clone()
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) touch() {
	s.snapshot.LastUpdated = time.Now()
}
