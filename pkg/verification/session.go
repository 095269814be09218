package verification

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joelikes8/Bot-Product/pkg/entities"
)

// Mode says whether a session links a fresh account or re-links an existing
// one.
type Mode int

const (
	// ModeVerify creates a new link. Precondition: no existing link.
	ModeVerify Mode = iota

	// ModeUpdate overwrites an existing link. Precondition: a link exists.
	ModeUpdate
)

// DefaultSessionTTL bounds how long an unconfirmed session stays resolvable.
const DefaultSessionTTL = 10 * time.Minute

// Session is the ephemeral state of one verification attempt. It is never
// persisted; it lives in the workflow's registry and is referenced by its ID
// from the interaction components. On escalation to a ticket its fields are
// copied, not moved.
type Session struct {
	// ID is the registry handle for the session.
	ID string

	// DiscordID is the user being verified.
	DiscordID string

	// DiscordUsername is the user's Discord username.
	DiscordUsername string

	// RobloxID is the resolved Roblox user ID.
	RobloxID int64

	// RobloxUsername is the handle the user submitted.
	RobloxUsername string

	// RobloxDisplayName is the resolved display name. Best-effort.
	RobloxDisplayName string

	// PreviousRobloxUsername is the handle of the link being replaced.
	// Only set in update mode.
	PreviousRobloxUsername string

	// Code is the issued challenge code.
	Code string

	// Mode is the session mode.
	Mode Mode

	// ExpiresAt is when the session stops being resolvable.
	ExpiresAt time.Time

	mu sync.Mutex

	// confirmed is set once the challenge has been validated and the link
	// written, making a re-entrant confirm a no-op.
	confirmed bool

	// link is the saved link, returned on re-entrant confirms.
	link *entities.VerifiedLink
}

// registry holds live sessions keyed by ID. Expired entries are dropped on
// access and on insert.
type registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func newRegistry(ttl time.Duration) *registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

func (r *registry) add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, held := range r.sessions {
		if now.After(held.ExpiresAt) {
			delete(r.sessions, id)
		}
	}

	s.ID = uuid.NewString()
	s.ExpiresAt = now.Add(r.ttl)
	r.sessions[s.ID] = s
}

func (r *registry) get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	if time.Now().After(s.ExpiresAt) {
		delete(r.sessions, id)
		return nil, false
	}
	return s, true
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
