// Package session keeps per-sender dialogue state for the booking flow.
// Sessions live for the process lifetime and are mutated only by the
// conversation state machine while it holds the sender's turn lock.
package session

import "sync"

// Stage identifies the session's position in the linear booking dialogue.
type Stage string

const (
	// StageIdle indicates there is no active booking flow with the user.
	StageIdle Stage = "idle"
	// StageAwaitingDeparture waits for the departure city.
	StageAwaitingDeparture Stage = "awaiting_departure"
	// StageAwaitingCountry waits for the destination country or city.
	StageAwaitingCountry Stage = "awaiting_country"
	// StageAwaitingNights waits for the nights range.
	StageAwaitingNights Stage = "awaiting_nights"
	// StageAwaitingAdults waits for the adult count.
	StageAwaitingAdults Stage = "awaiting_adults"
	// StageAwaitingChildren waits for the child count.
	StageAwaitingChildren Stage = "awaiting_children"
	// StageSearching marks a search in flight.
	StageSearching Stage = "searching"
)

// NightsRange is an ordered pair of trip lengths, Min <= Max.
type NightsRange struct {
	Min int
	Max int
}

// Session stores the booking-flow progress of one sender.
type Session struct {
	SenderID        string
	Stage           Stage
	DepartureCity   string
	DestinationCode string
	Nights          NightsRange
	Adults          int
	Children        int
}

// Reset returns the session to idle and clears all tour-flow fields,
// so a fresh booking attempt never inherits data from an abandoned one.
func (s *Session) Reset() {
	s.Stage = StageIdle
	s.DepartureCity = ""
	s.DestinationCode = ""
	s.Nights = NightsRange{}
	s.Adults = 0
	s.Children = 0
}

// Store is a mutex-guarded in-memory session map keyed by sender identifier.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	turns    map[string]*sync.Mutex
}

// NewStore constructs an empty in-memory Store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		turns:    make(map[string]*sync.Mutex),
	}
}

// GetOrCreate returns the session for a sender, lazily creating an idle one.
// The second result reports whether the sender was seen for the first time.
func (s *Store) GetOrCreate(senderID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[senderID]; ok {
		return sess, false
	}
	sess := &Session{SenderID: senderID, Stage: StageIdle}
	s.sessions[senderID] = sess
	return sess, true
}

// Get returns the session for a sender if one exists.
func (s *Store) Get(senderID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[senderID]
	return sess, ok
}

// Len reports the number of known sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// BeginTurn acquires the sender's turn lock and returns its release function.
// A second message arriving for the same sender while a turn is in flight
// blocks here and is processed after the first completes; turns for different
// senders proceed independently.
func (s *Store) BeginTurn(senderID string) func() {
	s.mu.Lock()
	turn, ok := s.turns[senderID]
	if !ok {
		turn = &sync.Mutex{}
		s.turns[senderID] = turn
	}
	s.mu.Unlock()

	turn.Lock()
	return turn.Unlock
}
