// Package verification implements the identity verification workflow: it
// issues one-time challenge codes, checks them against the Roblox profile
// description, and records successful links.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joelikes8/Bot-Product/pkg/custom"
	"github.com/joelikes8/Bot-Product/pkg/entities"
	"github.com/joelikes8/Bot-Product/pkg/logging"
	"github.com/joelikes8/Bot-Product/pkg/roblox"
	"go.mongodb.org/mongo-driver/mongo"
)

// IdentityProvider resolves Roblox handles and checks challenge codes.
type IdentityProvider interface {
	// ResolveHandle resolves a username to a Roblox user.
	ResolveHandle(ctx context.Context, username string) (*roblox.User, error)

	// CheckChallenge reports whether the profile text contains the code.
	CheckChallenge(ctx context.Context, robloxID int64, code string) (bool, error)
}

// LinkStore persists verified links.
type LinkStore interface {
	// SaveLink inserts or fully overwrites the link for a Discord account.
	SaveLink(ctx context.Context, link *entities.VerifiedLink) error

	// GetLinkByDiscordID gets the link for a Discord account.
	GetLinkByDiscordID(ctx context.Context, discordID string) (*entities.VerifiedLink, error)
}

// Workflow drives verification sessions from challenge issue to confirmed
// link. Sessions are held in an in-memory TTL registry; there is no
// cross-session coordination, so two concurrent sessions for the same user
// race to completion independently.
type Workflow struct {
	// l is the logger.
	l *slog.Logger

	// provider is the identity provider client.
	provider IdentityProvider

	// links is the verified link store.
	links LinkStore

	// sessions holds live challenge sessions.
	sessions *registry
}

// NewWorkflow creates a new verification workflow. A non-positive ttl falls
// back to DefaultSessionTTL.
func NewWorkflow(l *slog.Logger, provider IdentityProvider, links LinkStore, ttl time.Duration) *Workflow {
	return &Workflow{
		l:        l.With(slog.String("component", "verification")),
		provider: provider,
		links:    links,
		sessions: newRegistry(ttl),
	}
}

// Start begins a verification session. In verify mode the account must not
// already be linked; in update mode it must be. On success a challenge code
// has been issued and the session is resolvable by ID until it is confirmed,
// cancelled, or expires.
func (w *Workflow) Start(ctx context.Context, discordID, discordUsername, robloxUsername string, mode Mode) (*Session, error) {
	existing, err := w.links.GetLinkByDiscordID(ctx, discordID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error checking existing link: %w", err)
	}

	switch mode {
	case ModeVerify:
		if existing != nil {
			return nil, ErrAlreadyLinked
		}
	case ModeUpdate:
		if existing == nil {
			return nil, ErrNotLinked
		}
	}

	user, err := w.provider.ResolveHandle(ctx, robloxUsername)
	switch {
	case errors.Is(err, roblox.ErrUserNotFound):
		return nil, ErrIdentityNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, err)
	}

	code, err := GenerateCode()
	if err != nil {
		return nil, err
	}

	s := &Session{
		DiscordID:         discordID,
		DiscordUsername:   discordUsername,
		RobloxID:          user.ID,
		RobloxUsername:    user.Name,
		RobloxDisplayName: user.DisplayName,
		Code:              code,
		Mode:              mode,
	}
	if existing != nil {
		s.PreviousRobloxUsername = existing.RobloxUsername
	}

	w.sessions.add(s)

	w.l.Info("Issued verification challenge",
		slog.String(logging.KeyUser, discordID),
		slog.Int64("roblox_id", user.ID),
	)
	return s, nil
}

// Session resolves a session handle, honouring the TTL.
func (w *Workflow) Session(id string) (*Session, error) {
	s, ok := w.sessions.get(id)
	if !ok {
		return nil, ErrSessionExpired
	}
	return s, nil
}

// Confirm checks the challenge and, on success, writes the link and destroys
// the session. Confirming an already-confirmed session is a no-op that
// returns the saved link; it never inserts twice. On a missing challenge the
// session stays alive so the user can retry or escalate.
func (w *Workflow) Confirm(ctx context.Context, s *Session) (*entities.VerifiedLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.confirmed {
		return s.link, nil
	}

	ok, err := w.provider.CheckChallenge(ctx, s.RobloxID, s.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, err)
	}
	if !ok {
		return nil, ErrChallengeNotFound
	}

	link := &entities.VerifiedLink{
		DiscordID:       s.DiscordID,
		DiscordUsername: s.DiscordUsername,
		RobloxID:        s.RobloxID,
		RobloxUsername:  s.RobloxUsername,
		VerifiedAt:      custom.Now(),
	}

	if err := w.links.SaveLink(ctx, link); err != nil {
		return nil, fmt.Errorf("error saving link: %w", err)
	}

	s.confirmed = true
	s.link = link
	w.sessions.remove(s.ID)

	w.l.Info("Verification confirmed",
		slog.String(logging.KeyUser, s.DiscordID),
		slog.Int64("roblox_id", s.RobloxID),
	)
	return link, nil
}

// Cancel destroys the session. Terminal; nothing is persisted.
func (w *Workflow) Cancel(s *Session) {
	w.sessions.remove(s.ID)
}
