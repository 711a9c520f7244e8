// Package session keeps per-user dialog progress in memory.
package session

import "sync"

// Session is the progress of one user through a flow.
// Flow == "" means the user is idle and Step is empty.
type Session struct {
	Flow   string
	Step   string
	Fields map[string]string
}

// Idle reports whether no flow is active.
func (s Session) Idle() bool { return s.Flow == "" }

// Clone returns a copy that shares no state with s.
func (s Session) Clone() Session {
	out := Session{Flow: s.Flow, Step: s.Step}
	if s.Fields != nil {
		out.Fields = make(map[string]string, len(s.Fields))
		for k, v := range s.Fields {
			out.Fields[k] = v
		}
	}
	return out
}

type entry struct {
	mu   sync.Mutex
	sess Session
}

// Store holds one Session per user. Sessions never expire on their own.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*entry
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*entry)}
}

func (s *Store) entry(userID int64) *entry {
	s.mu.RLock()
	e, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return e
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.sessions[userID]; !ok {
		e = &entry{}
		s.sessions[userID] = e
	}
	return e
}

// Lock serializes work for a single user. Callers must release it with the
// returned func; other users are not blocked.
func (s *Store) Lock(userID int64) (unlock func()) {
	e := s.entry(userID)
	e.mu.Lock()
	return e.mu.Unlock
}

// Get returns a copy of the user's session, empty if none was stored.
func (s *Store) Get(userID int64) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[userID]
	if !ok {
		return Session{}
	}
	return e.sess.Clone()
}

func (s *Store) Set(userID int64, sess Session) {
	e := s.entry(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	e.sess = sess.Clone()
}

// Clear resets the user to an empty session with no active flow.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[userID]; ok {
		e.sess = Session{}
	}
}
