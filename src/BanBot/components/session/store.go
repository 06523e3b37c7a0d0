// Package session holds the transient, per-user state of an in-progress ban
// form. One entry per submitting user; starting a new form overwrites any
// stale one, and entries idle longer than the prompt timeout are evicted so
// abandoned forms don't accumulate.
package session

import (
	"context"
	"log"
	"sync"
	"time"
)

// Player is the snapshot taken when a candidate is selected. It is never
// re-validated against the player source afterwards.
type Player struct {
	Name       string
	Level      int
	LastPlayed string
	BUID       string
}

// UnbanData carries the unban branch's target selection.
type UnbanData struct {
	BanNumberToUnban string
	RemoveStrike     bool
	RelatedBanID     *uint
}

// FormState accumulates one user's choices across the form steps.
type FormState struct {
	Step           string
	SearchTerm     string
	Players        []Player
	Player         *Player
	Offense        string
	OffenseDetail  string
	Strike         string
	Sanction       string
	UnbanData      *UnbanData
	Transcripts    []string
	TranscriptLink string

	updatedAt time.Time
}

// Store is the process-wide form-state map, keyed by Discord user ID.
type Store struct {
	mu    sync.Mutex
	forms map[string]*FormState
	ttl   time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		forms: make(map[string]*FormState),
		ttl:   ttl,
	}
}

// Begin creates a fresh form for the user, discarding any previous one.
func (s *Store) Begin(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms[userID] = &FormState{updatedAt: time.Now()}
}

// Get returns a copy of the user's form state. Mutations go through Update.
func (s *Store) Get(userID string) (FormState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	form, ok := s.forms[userID]
	if !ok {
		return FormState{}, false
	}
	return *form, true
}

// Update applies fn to the user's form under the store lock and refreshes
// its eviction deadline. Returns false when no form exists.
func (s *Store) Update(userID string, fn func(*FormState)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	form, ok := s.forms[userID]
	if !ok {
		return false
	}
	fn(form)
	form.updatedAt = time.Now()
	return true
}

// Clear drops the user's form, if any.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.forms, userID)
}

// Len reports the number of active forms.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}

// StartJanitor evicts idle forms until ctx is done.
func (s *Store) StartJanitor(ctx context.Context) {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.evictStale(time.Now()); n > 0 {
				log.Printf("session: evicted %d stale form(s)", n)
			}
		}
	}
}

func (s *Store) evictStale(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for userID, form := range s.forms {
		if now.Sub(form.updatedAt) > s.ttl {
			delete(s.forms, userID)
			evicted++
		}
	}
	return evicted
}
