package ticketing

import (
	"context"
	"fmt"
	"testing"

	"github.com/joelikes8/Bot-Product/pkg/entities"
	"github.com/joelikes8/Bot-Product/pkg/logging"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeTicketStore struct {
	tickets []*entities.Ticket
	saves   int
}

func (f *fakeTicketStore) SaveTicket(_ context.Context, ticket *entities.Ticket) error {
	f.saves++
	for i, t := range f.tickets {
		if t.GuildID == ticket.GuildID && t.ChannelID == ticket.ChannelID {
			f.tickets[i] = ticket
			return nil
		}
	}
	f.tickets = append(f.tickets, ticket)
	return nil
}

func (f *fakeTicketStore) GetOpenTicket(_ context.Context, guildID, userID string) (*entities.Ticket, error) {
	for _, t := range f.tickets {
		if t.GuildID == guildID && t.UserID == userID && t.Open() {
			return t, nil
		}
	}
	return nil, fmt.Errorf("error getting open ticket: %w", mongo.ErrNoDocuments)
}

type fakeGuildStore struct {
	guilds map[string]*entities.Guild
}

func (f *fakeGuildStore) GetGuildByID(_ context.Context, id string) (*entities.Guild, error) {
	g, ok := f.guilds[id]
	if !ok {
		return nil, fmt.Errorf("error getting guild: %w", mongo.ErrNoDocuments)
	}
	return g, nil
}

type fakeChannels struct {
	nextID    int
	existing  map[string]bool
	createErr error

	created  []string
	welcomes map[string]string
	messages map[string][]string
	revoked  map[string]string
}

func newFakeChannels() *fakeChannels {
	return &fakeChannels{
		nextID:   100,
		existing: make(map[string]bool),
		welcomes: make(map[string]string),
		messages: make(map[string][]string),
		revoked:  make(map[string]string),
	}
}

func (f *fakeChannels) ChannelExists(_ context.Context, channelID string) bool {
	return f.existing[channelID]
}

func (f *fakeChannels) CreateTicketChannel(_ context.Context, _, name, _, _ string, _ []string, _ string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	id := fmt.Sprintf("%d", f.nextID)
	f.existing[id] = true
	f.created = append(f.created, name)
	return id, nil
}

func (f *fakeChannels) PostWelcome(_ context.Context, channelID, _, content string) error {
	f.welcomes[channelID] = content
	return nil
}

func (f *fakeChannels) PostMessage(_ context.Context, channelID, content string) error {
	f.messages[channelID] = append(f.messages[channelID], content)
	return nil
}

func (f *fakeChannels) RevokeSend(_ context.Context, channelID, userID string) error {
	f.revoked[channelID] = userID
	return nil
}

func newTestWorkflow(t *testing.T, store *fakeTicketStore, guilds *fakeGuildStore, channels *fakeChannels) *Workflow {
	t.Helper()

	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	return NewWorkflow(l, store, guilds, channels)
}

func configuredGuilds() *fakeGuildStore {
	return &fakeGuildStore{guilds: map[string]*entities.Guild{
		"g1": {
			ID: "g1",
			Ticketing: entities.TicketingConfig{
				SupportRoleIDs: []string{"support-role"},
				CategoryID:     "cat-1",
			},
		},
	}}
}

func TestOpen(t *testing.T) {
	t.Run("CreatesTicket", func(t *testing.T) {
		store := new(fakeTicketStore)
		channels := newFakeChannels()
		w := newTestWorkflow(t, store, configuredGuilds(), channels)

		res, err := w.Open(context.Background(), "g1", "u1", "gamer42", entities.TicketTypeGeneral, nil)
		require.NoError(t, err)
		require.False(t, res.Existing)
		require.Equal(t, entities.TicketStatusOpen, res.Ticket.Status)
		require.Equal(t, "ticket-gamer42", res.Ticket.Name())
		require.Len(t, store.tickets, 1)
		require.Contains(t, channels.welcomes[res.Ticket.ChannelID], "describe your issue")

		// General tickets do not ping the support roles.
		require.Empty(t, channels.messages[res.Ticket.ChannelID])
	})

	t.Run("ReturnsExistingOpenTicket", func(t *testing.T) {
		store := new(fakeTicketStore)
		channels := newFakeChannels()
		channels.existing["42"] = true
		store.tickets = append(store.tickets, &entities.Ticket{
			GuildID:   "g1",
			ChannelID: "42",
			UserID:    "u1",
			Username:  "gamer42",
			Status:    entities.TicketStatusOpen,
			Type:      entities.TicketTypeGeneral,
		})
		w := newTestWorkflow(t, store, configuredGuilds(), channels)

		res, err := w.Open(context.Background(), "g1", "u1", "gamer42", entities.TicketTypeGeneral, nil)
		require.NoError(t, err)
		require.True(t, res.Existing)
		require.Equal(t, "42", res.Ticket.ChannelID)
		require.Len(t, store.tickets, 1)
		require.Zero(t, store.saves)
		require.Empty(t, channels.created)
	})

	t.Run("ReconcilesStaleRow", func(t *testing.T) {
		store := new(fakeTicketStore)
		channels := newFakeChannels()
		stale := &entities.Ticket{
			GuildID:   "g1",
			ChannelID: "42",
			UserID:    "u1",
			Username:  "gamer42",
			Status:    entities.TicketStatusOpen,
			Type:      entities.TicketTypeGeneral,
		}
		store.tickets = append(store.tickets, stale)
		w := newTestWorkflow(t, store, configuredGuilds(), channels)

		// Channel 42 no longer exists, so the stale row is closed and a new
		// ticket created.
		res, err := w.Open(context.Background(), "g1", "u1", "gamer42", entities.TicketTypeGeneral, nil)
		require.NoError(t, err)
		require.False(t, res.Existing)
		require.NotEqual(t, "42", res.Ticket.ChannelID)
		require.Equal(t, entities.TicketStatusClosed, stale.Status)
		require.NotNil(t, stale.ClosedAt)
		require.Len(t, store.tickets, 2)
	})

	t.Run("VerificationCarriesContext", func(t *testing.T) {
		store := new(fakeTicketStore)
		channels := newFakeChannels()
		w := newTestWorkflow(t, store, configuredGuilds(), channels)

		res, err := w.Open(context.Background(), "g1", "u1", "gamer42", entities.TicketTypeVerification, &VerificationContext{
			RobloxUsername: "Builder123",
			RobloxID:       555,
			Code:           "Verify-9Q2K",
		})
		require.NoError(t, err)
		require.Equal(t, "verify-gamer42", res.Ticket.Name())

		welcome := channels.welcomes[res.Ticket.ChannelID]
		require.Contains(t, welcome, "Builder123")
		require.Contains(t, welcome, "555")
		require.Contains(t, welcome, "Verify-9Q2K")

		// Verification tickets alert the support roles.
		alerts := channels.messages[res.Ticket.ChannelID]
		require.Len(t, alerts, 1)
		require.Contains(t, alerts[0], "<@&support-role>")
	})

	t.Run("NoAlertWithoutSupportRoles", func(t *testing.T) {
		store := new(fakeTicketStore)
		channels := newFakeChannels()
		guilds := &fakeGuildStore{guilds: map[string]*entities.Guild{}}
		w := newTestWorkflow(t, store, guilds, channels)

		res, err := w.Open(context.Background(), "g1", "u1", "gamer42", entities.TicketTypeVerification, &VerificationContext{
			RobloxUsername: "Builder123",
			RobloxID:       555,
			Code:           "Verify-9Q2K",
		})
		require.NoError(t, err)
		require.Empty(t, channels.messages[res.Ticket.ChannelID])
	})

	t.Run("PermissionDeniedWritesNoRow", func(t *testing.T) {
		store := new(fakeTicketStore)
		channels := newFakeChannels()
		channels.createErr = ErrPermissionDenied
		w := newTestWorkflow(t, store, configuredGuilds(), channels)

		_, err := w.Open(context.Background(), "g1", "u1", "gamer42", entities.TicketTypeGeneral, nil)
		require.ErrorIs(t, err, ErrPermissionDenied)
		require.Empty(t, store.tickets)
	})
}

func TestClose(t *testing.T) {
	openTicket := func() *entities.Ticket {
		return &entities.Ticket{
			GuildID:   "g1",
			ChannelID: "42",
			UserID:    "u1",
			Username:  "gamer42",
			Status:    entities.TicketStatusOpen,
			Type:      entities.TicketTypeGeneral,
		}
	}

	t.Run("RequesterCanClose", func(t *testing.T) {
		store := new(fakeTicketStore)
		channels := newFakeChannels()
		w := newTestWorkflow(t, store, configuredGuilds(), channels)

		ticket := openTicket()
		require.NoError(t, w.Close(context.Background(), ticket, "u1", nil))
		require.Equal(t, entities.TicketStatusClosed, ticket.Status)
		require.NotNil(t, ticket.ClosedAt)
		require.Equal(t, "u1", ticket.ClosedBy)
		require.Equal(t, "u1", channels.revoked["42"])
	})

	t.Run("SupportRoleCanClose", func(t *testing.T) {
		store := new(fakeTicketStore)
		channels := newFakeChannels()
		w := newTestWorkflow(t, store, configuredGuilds(), channels)

		ticket := openTicket()
		require.NoError(t, w.Close(context.Background(), ticket, "staff-1", []string{"support-role"}))
		require.Equal(t, entities.TicketStatusClosed, ticket.Status)
		require.Equal(t, "staff-1", ticket.ClosedBy)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		store := new(fakeTicketStore)
		channels := newFakeChannels()
		w := newTestWorkflow(t, store, configuredGuilds(), channels)

		ticket := openTicket()
		err := w.Close(context.Background(), ticket, "stranger", []string{"some-other-role"})
		require.ErrorIs(t, err, ErrUnauthorized)
		require.Equal(t, entities.TicketStatusOpen, ticket.Status)
		require.Nil(t, ticket.ClosedAt)
		require.Zero(t, store.saves)
	})

	t.Run("CloseTwiceIsNoOp", func(t *testing.T) {
		store := new(fakeTicketStore)
		channels := newFakeChannels()
		w := newTestWorkflow(t, store, configuredGuilds(), channels)

		ticket := openTicket()
		require.NoError(t, w.Close(context.Background(), ticket, "u1", nil))
		closedAt := ticket.ClosedAt

		require.NoError(t, w.Close(context.Background(), ticket, "u1", nil))
		require.Same(t, closedAt, ticket.ClosedAt)
		require.Equal(t, 1, store.saves)
	})
}
