// Package session holds the explicit per-session context that every
// component receives instead of ambient UI state.
package session

import (
	"errors"
	"sync"

	"rural-health-assistant/internal/history"
	"rural-health-assistant/internal/patient"
)

// ErrNoActiveSession is returned when an operation needs an active user and
// none has been started.
var ErrNoActiveSession = errors.New("no active session")

// Session is the context of one signed-in patient: the active user ID, the
// loaded profile and the in-memory chat transcript of the current
// multi-turn consultation. Created at session start, discarded at session
// end.
type Session struct {
	UserID     string
	Profile    *patient.Profile
	Transcript []history.Message
}

// Manager guards the single active session per running instance.
type Manager struct {
	mu      sync.Mutex
	current *Session
}

func NewManager() *Manager {
	return &Manager{}
}

// Start activates a session for the given profile, replacing any previous
// one.
func (m *Manager) Start(p *patient.Profile) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = &Session{
		UserID:     p.UserID,
		Profile:    p,
		Transcript: []history.Message{},
	}
	return m.current
}

// Current returns the active session.
func (m *Manager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, ErrNoActiveSession
	}
	return m.current, nil
}

// End discards the active session.
func (m *Manager) End() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
}

// AppendTranscript records consultation turns in the in-memory transcript.
func (m *Manager) AppendTranscript(msgs ...history.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Transcript = append(m.current.Transcript, msgs...)
	}
}

// Transcript returns a copy of the active transcript.
func (m *Manager) Transcript() []history.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	out := make([]history.Message, len(m.current.Transcript))
	copy(out, m.current.Transcript)
	return out
}

// ClearTranscript empties the in-memory transcript without touching
// committed history entries.
func (m *Manager) ClearTranscript() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Transcript = []history.Message{}
	}
}
