// Package session keeps per-user conversation state.
//
// The store is shared by the conversation handlers and the dispatch engine.
// All access goes through Update/View, which serialize per user and hand out
// deep copies so callers never alias the stored slices.
package session

import (
	"sync"
	"time"

	"dispatchbot/internal/i18n"
	"dispatchbot/internal/model"
)

type Session struct {
	UserID        int64
	Authenticated bool
	LoginAttempts int
	Language      i18n.Lang
	State         State

	Queue    []model.Row
	Original []model.Row
	Config   model.RunConfig

	SelectedTemplate string
	SendingActive    bool
	SendingPaused    bool

	// Draft is the template being authored; DraftName is set when editing an existing one.
	Draft     *model.Template
	DraftName string

	UpdatedAt time.Time
}

func (s Session) Clone() Session {
	cp := s
	cp.Queue = model.CloneRows(s.Queue)
	cp.Original = model.CloneRows(s.Original)
	if s.Draft != nil {
		d := s.Draft.Clone()
		cp.Draft = &d
	}
	return cp
}

// Store is the session key-value contract.
type Store interface {
	// Update applies fn to the user's session (created if missing) and returns a copy of the result.
	Update(userID int64, fn func(s *Session)) Session
	// View returns a copy of the user's session, creating it if missing.
	View(userID int64) Session
	// Delete drops the session; the next access starts fresh.
	Delete(userID int64)
}

type entry struct {
	mu sync.Mutex
	s  Session
}

type MemoryStore struct {
	mu       sync.Mutex
	sessions map[int64]*entry
	defaults func(userID int64) Session
	now      func() time.Time
}

// NewMemoryStore returns an in-process store. defaults builds a fresh session
// (nil means the zero session in StateLogin).
func NewMemoryStore(defaults func(userID int64) Session) *MemoryStore {
	return &MemoryStore{
		sessions: map[int64]*entry{},
		defaults: defaults,
		now:      time.Now,
	}
}

func (m *MemoryStore) get(userID int64) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.sessions[userID]
	if e == nil {
		var s Session
		if m.defaults != nil {
			s = m.defaults(userID)
		}
		s.UserID = userID
		s.UpdatedAt = m.now()
		e = &entry{s: s}
		m.sessions[userID] = e
	}
	return e
}

func (m *MemoryStore) Update(userID int64, fn func(s *Session)) Session {
	e := m.get(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if fn != nil {
		fn(&e.s)
		e.s.UserID = userID
		e.s.UpdatedAt = m.now()
	}
	return e.s.Clone()
}

func (m *MemoryStore) View(userID int64) Session {
	e := m.get(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.Clone()
}

func (m *MemoryStore) Delete(userID int64) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
