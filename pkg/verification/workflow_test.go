package verification

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/joelikes8/Bot-Product/pkg/entities"
	"github.com/joelikes8/Bot-Product/pkg/logging"
	"github.com/joelikes8/Bot-Product/pkg/roblox"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeProvider struct {
	users      map[string]*roblox.User
	profiles   map[int64]string
	resolveErr error
	checkErr   error
}

func (f *fakeProvider) ResolveHandle(_ context.Context, username string) (*roblox.User, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	u, ok := f.users[username]
	if !ok {
		return nil, roblox.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeProvider) CheckChallenge(_ context.Context, robloxID int64, code string) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}
	return strings.Contains(f.profiles[robloxID], code), nil
}

type fakeLinkStore struct {
	links map[string]*entities.VerifiedLink
	saves int
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{links: make(map[string]*entities.VerifiedLink)}
}

func (f *fakeLinkStore) SaveLink(_ context.Context, link *entities.VerifiedLink) error {
	f.saves++
	f.links[link.DiscordID] = link
	return nil
}

func (f *fakeLinkStore) GetLinkByDiscordID(_ context.Context, discordID string) (*entities.VerifiedLink, error) {
	link, ok := f.links[discordID]
	if !ok {
		return nil, fmt.Errorf("error getting link: %w", mongo.ErrNoDocuments)
	}
	return link, nil
}

func newTestWorkflow(t *testing.T, provider *fakeProvider, links *fakeLinkStore) *Workflow {
	t.Helper()

	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	return NewWorkflow(l, provider, links, DefaultSessionTTL)
}

func builderProvider() *fakeProvider {
	return &fakeProvider{
		users: map[string]*roblox.User{
			"Builder123": {ID: 555, Name: "Builder123", DisplayName: "BuilderX"},
		},
		profiles: map[int64]string{},
	}
}

var codePattern = regexp.MustCompile(`^Verify-[A-Z0-9]{4}$`)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Regexp(t, codePattern, code)
		seen[code] = struct{}{}
	}

	// Uniform draws over a 36^4 space should practically never repeat 100
	// times in a row.
	require.Greater(t, len(seen), 1)
}

func TestStart(t *testing.T) {
	t.Run("IssuesChallenge", func(t *testing.T) {
		w := newTestWorkflow(t, builderProvider(), newFakeLinkStore())

		s, err := w.Start(context.Background(), "1001", "gamer42", "Builder123", ModeVerify)
		require.NoError(t, err)
		require.Equal(t, int64(555), s.RobloxID)
		require.Equal(t, "Builder123", s.RobloxUsername)
		require.Equal(t, "BuilderX", s.RobloxDisplayName)
		require.Regexp(t, codePattern, s.Code)
		require.NotEmpty(t, s.ID)

		got, err := w.Session(s.ID)
		require.NoError(t, err)
		require.Same(t, s, got)
	})

	t.Run("AlreadyLinked", func(t *testing.T) {
		links := newFakeLinkStore()
		links.links["1001"] = &entities.VerifiedLink{DiscordID: "1001", RobloxID: 42}
		w := newTestWorkflow(t, builderProvider(), links)

		_, err := w.Start(context.Background(), "1001", "gamer42", "Builder123", ModeVerify)
		require.ErrorIs(t, err, ErrAlreadyLinked)
	})

	t.Run("UpdateRequiresLink", func(t *testing.T) {
		w := newTestWorkflow(t, builderProvider(), newFakeLinkStore())

		_, err := w.Start(context.Background(), "1001", "gamer42", "Builder123", ModeUpdate)
		require.ErrorIs(t, err, ErrNotLinked)
	})

	t.Run("UpdateCarriesPreviousUsername", func(t *testing.T) {
		links := newFakeLinkStore()
		links.links["1001"] = &entities.VerifiedLink{DiscordID: "1001", RobloxID: 42, RobloxUsername: "OldBuilder"}
		w := newTestWorkflow(t, builderProvider(), links)

		s, err := w.Start(context.Background(), "1001", "gamer42", "Builder123", ModeUpdate)
		require.NoError(t, err)
		require.Equal(t, "OldBuilder", s.PreviousRobloxUsername)
	})

	t.Run("IdentityNotFound", func(t *testing.T) {
		w := newTestWorkflow(t, builderProvider(), newFakeLinkStore())

		_, err := w.Start(context.Background(), "1001", "gamer42", "NoSuchUser", ModeVerify)
		require.ErrorIs(t, err, ErrIdentityNotFound)
	})

	t.Run("ProviderUnavailable", func(t *testing.T) {
		provider := builderProvider()
		provider.resolveErr = roblox.ErrUnavailable
		w := newTestWorkflow(t, provider, newFakeLinkStore())

		_, err := w.Start(context.Background(), "1001", "gamer42", "Builder123", ModeVerify)
		require.ErrorIs(t, err, ErrProviderUnavailable)
		require.NotErrorIs(t, err, ErrIdentityNotFound)
	})
}

func TestConfirm(t *testing.T) {
	t.Run("CreatesLink", func(t *testing.T) {
		provider := builderProvider()
		links := newFakeLinkStore()
		w := newTestWorkflow(t, provider, links)

		s, err := w.Start(context.Background(), "1001", "gamer42", "Builder123", ModeVerify)
		require.NoError(t, err)

		provider.profiles[555] = "hi " + s.Code + " bye"

		link, err := w.Confirm(context.Background(), s)
		require.NoError(t, err)
		require.Equal(t, "1001", link.DiscordID)
		require.Equal(t, int64(555), link.RobloxID)
		require.Equal(t, "Builder123", link.RobloxUsername)
		require.False(t, link.VerifiedAt.IsZero())

		// The session is destroyed on confirmation.
		_, err = w.Session(s.ID)
		require.ErrorIs(t, err, ErrSessionExpired)
	})

	t.Run("ChallengeAbsent", func(t *testing.T) {
		provider := builderProvider()
		links := newFakeLinkStore()
		w := newTestWorkflow(t, provider, links)

		s, err := w.Start(context.Background(), "1001", "gamer42", "Builder123", ModeVerify)
		require.NoError(t, err)

		provider.profiles[555] = ""

		_, err = w.Confirm(context.Background(), s)
		require.ErrorIs(t, err, ErrChallengeNotFound)
		require.Empty(t, links.links)

		// The session survives so the user can retry or escalate.
		got, err := w.Session(s.ID)
		require.NoError(t, err)
		require.Same(t, s, got)
	})

	t.Run("Idempotent", func(t *testing.T) {
		provider := builderProvider()
		links := newFakeLinkStore()
		w := newTestWorkflow(t, provider, links)

		s, err := w.Start(context.Background(), "1001", "gamer42", "Builder123", ModeVerify)
		require.NoError(t, err)

		provider.profiles[555] = s.Code

		first, err := w.Confirm(context.Background(), s)
		require.NoError(t, err)

		second, err := w.Confirm(context.Background(), s)
		require.NoError(t, err)
		require.Same(t, first, second)
		require.Equal(t, 1, links.saves)
	})

	t.Run("UpdateOverwrites", func(t *testing.T) {
		provider := builderProvider()
		links := newFakeLinkStore()
		links.links["1001"] = &entities.VerifiedLink{DiscordID: "1001", RobloxID: 42, RobloxUsername: "OldBuilder"}
		w := newTestWorkflow(t, provider, links)

		s, err := w.Start(context.Background(), "1001", "gamer42", "Builder123", ModeUpdate)
		require.NoError(t, err)

		provider.profiles[555] = s.Code

		link, err := w.Confirm(context.Background(), s)
		require.NoError(t, err)
		require.Equal(t, int64(555), link.RobloxID)
		require.Len(t, links.links, 1)
		require.Equal(t, "Builder123", links.links["1001"].RobloxUsername)
	})

	t.Run("ProviderUnavailable", func(t *testing.T) {
		provider := builderProvider()
		links := newFakeLinkStore()
		w := newTestWorkflow(t, provider, links)

		s, err := w.Start(context.Background(), "1001", "gamer42", "Builder123", ModeVerify)
		require.NoError(t, err)

		provider.checkErr = roblox.ErrUnavailable

		_, err = w.Confirm(context.Background(), s)
		require.ErrorIs(t, err, ErrProviderUnavailable)
		require.NotErrorIs(t, err, ErrChallengeNotFound)
		require.Empty(t, links.links)
	})
}

func TestSessionExpiry(t *testing.T) {
	w := newTestWorkflow(t, builderProvider(), newFakeLinkStore())

	s, err := w.Start(context.Background(), "1001", "gamer42", "Builder123", ModeVerify)
	require.NoError(t, err)

	s.ExpiresAt = time.Now().Add(-time.Minute)

	_, err = w.Session(s.ID)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestCancel(t *testing.T) {
	w := newTestWorkflow(t, builderProvider(), newFakeLinkStore())

	s, err := w.Start(context.Background(), "1001", "gamer42", "Builder123", ModeVerify)
	require.NoError(t, err)

	w.Cancel(s)

	_, err = w.Session(s.ID)
	require.ErrorIs(t, err, ErrSessionExpired)
}
