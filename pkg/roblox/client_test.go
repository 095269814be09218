package roblox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joelikes8/Bot-Product/pkg/logging"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	c := NewClient(l)
	c.usersBaseURL = srv.URL
	return c
}

func usersAPI(t *testing.T, users map[string]*User, detailStatus int) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/usernames/users", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req resolveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Usernames, 1)

		resp := resolveResponse{}
		if u, ok := users[req.Usernames[0]]; ok {
			resp.Data = append(resp.Data, struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			}{ID: u.ID, Name: u.Name})
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})
	mux.HandleFunc("/v1/users/", func(w http.ResponseWriter, r *http.Request) {
		if detailStatus != http.StatusOK {
			w.WriteHeader(detailStatus)
			return
		}
		for _, u := range users {
			require.NoError(t, json.NewEncoder(w).Encode(u))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	return mux
}

func TestResolveHandle(t *testing.T) {
	builder := &User{
		ID:          555,
		Name:        "Builder123",
		DisplayName: "BuilderX",
		Description: "hi there",
	}

	t.Run("Resolves", func(t *testing.T) {
		c := newTestClient(t, usersAPI(t, map[string]*User{"Builder123": builder}, http.StatusOK))

		got, err := c.ResolveHandle(context.Background(), "Builder123")
		require.NoError(t, err)
		require.Equal(t, int64(555), got.ID)
		require.Equal(t, "Builder123", got.Name)
		require.Equal(t, "BuilderX", got.DisplayName)
		require.Equal(t, "hi there", got.Description)
	})

	t.Run("NotFound", func(t *testing.T) {
		c := newTestClient(t, usersAPI(t, map[string]*User{}, http.StatusOK))

		_, err := c.ResolveHandle(context.Background(), "NoSuchUser")
		require.ErrorIs(t, err, ErrUserNotFound)
		require.NotErrorIs(t, err, ErrUnavailable)
	})

	t.Run("Unavailable", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		_, err := c.ResolveHandle(context.Background(), "Builder123")
		require.ErrorIs(t, err, ErrUnavailable)
		require.NotErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("DetailFailureDegradesToPartial", func(t *testing.T) {
		c := newTestClient(t, usersAPI(t, map[string]*User{"Builder123": builder}, http.StatusInternalServerError))

		got, err := c.ResolveHandle(context.Background(), "Builder123")
		require.NoError(t, err)
		require.Equal(t, int64(555), got.ID)

		// Display name falls back to the username when the detail step fails.
		require.Equal(t, "Builder123", got.DisplayName)
		require.Empty(t, got.Description)
	})
}

func TestCheckChallenge(t *testing.T) {
	tests := []struct {
		name        string
		description string
		code        string
		want        bool
	}{
		{
			name:        "CodePresent",
			description: "hi Verify-9Q2K bye",
			code:        "Verify-9Q2K",
			want:        true,
		},
		{
			name:        "CodeAbsent",
			description: "nothing to see here",
			code:        "Verify-9Q2K",
			want:        false,
		},
		{
			name:        "EmptyProfile",
			description: "",
			code:        "Verify-9Q2K",
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, usersAPI(t, map[string]*User{
				"Builder123": {ID: 555, Name: "Builder123", Description: tt.description},
			}, http.StatusOK))

			got, err := c.CheckChallenge(context.Background(), 555, tt.code)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCheckChallengeUnavailable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.CheckChallenge(context.Background(), 555, "Verify-9Q2K")
	require.ErrorIs(t, err, ErrUnavailable)
}
