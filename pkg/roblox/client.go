// Package roblox wraps the Roblox users API. It resolves usernames to
// numeric user IDs and reads the free-text profile description that the
// verification flow inspects for challenge codes.
package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joelikes8/Bot-Product/pkg/logging"
	"github.com/joelikes8/Bot-Product/pkg/roblox/monitoring"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

const defaultUsersBaseURL = "https://users.roblox.com"

var (
	// ErrUserNotFound is returned when a username does not resolve to a
	// Roblox account.
	ErrUserNotFound = errors.New("roblox user not found")

	// ErrUnavailable is returned when the Roblox API cannot be reached or
	// answers with an unexpected status. It is kept distinct from
	// ErrUserNotFound so logs and tests can tell true absence from a
	// transient failure, even where the user-facing message is unified.
	ErrUnavailable = errors.New("roblox api unavailable")
)

// User is a Roblox account as returned by the users API.
type User struct {
	// ID is the numeric Roblox user ID.
	ID int64 `json:"id"`

	// Name is the username.
	Name string `json:"name"`

	// DisplayName is the display name. Best-effort; it falls back to the
	// username when the detail lookup fails.
	DisplayName string `json:"displayName"`

	// Description is the free-text profile description.
	Description string `json:"description"`
}

// Client is the Roblox users API client. All transport failures surface as
// ErrUnavailable; the client never panics past its boundary.
type Client struct {
	// l is the logger.
	l *slog.Logger

	// http is the underlying HTTP client. It carries an explicit timeout so
	// a hung provider call cannot hold a handler open indefinitely.
	http *http.Client

	// limiter paces outbound requests to stay under the API rate limits.
	limiter *rate.Limiter

	// usersBaseURL is the base URL of the users API.
	usersBaseURL string
}

// NewClient creates a new Roblox API client.
func NewClient(l *slog.Logger) *Client {
	return &Client{
		l:            l.With(slog.String("component", "roblox_client")),
		http:         &http.Client{Timeout: 10 * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(5), 10),
		usersBaseURL: defaultUsersBaseURL,
	}
}

type resolveRequest struct {
	Usernames          []string `json:"usernames"`
	ExcludeBannedUsers bool     `json:"excludeBannedUsers"`
}

type resolveResponse struct {
	Data []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

// ResolveHandle resolves a username to a Roblox user. Resolution is
// two-step: the bulk username endpoint gives the ID, then the detail
// endpoint fills in the display name and description. If the second step
// fails the partial record from the first step is returned rather than
// failing the whole call, so callers must treat the display name as
// best-effort.
func (c *Client) ResolveHandle(ctx context.Context, username string) (*User, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	monitoring.RobloxTotalRequests.WithLabelValues("usernames", "sent").Inc()
	t := prometheus.NewTimer(monitoring.RobloxLatency.WithLabelValues("usernames"))

	body, err := json.Marshal(resolveRequest{Usernames: []string{username}})
	if err != nil {
		return nil, fmt.Errorf("error encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.usersBaseURL+"/v1/usernames/users", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	t.ObserveDuration()
	if err != nil {
		monitoring.RobloxTotalRequests.WithLabelValues("usernames", "error").Inc()
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		monitoring.RobloxTotalRequests.WithLabelValues("usernames", "error").Inc()
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var resolved resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&resolved); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	if len(resolved.Data) == 0 {
		c.l.Info("No Roblox user found", slog.String("username", username))
		return nil, ErrUserNotFound
	}

	user := &User{
		ID:          resolved.Data[0].ID,
		Name:        resolved.Data[0].Name,
		DisplayName: resolved.Data[0].Name,
	}

	// Second step is best-effort. A failure here degrades to the partial
	// record rather than failing the resolution.
	detail, err := c.userDetail(ctx, user.ID)
	if err != nil {
		c.l.Warn("Failed to get Roblox user details",
			slog.Int64("roblox_id", user.ID),
			slog.String(logging.KeyError, err.Error()),
		)
		return user, nil
	}

	if detail.DisplayName != "" {
		user.DisplayName = detail.DisplayName
	}
	user.Description = detail.Description
	return user, nil
}

// ProfileText returns the free-text profile description for a user. The
// empty string is returned when the profile has no description.
func (c *Client) ProfileText(ctx context.Context, robloxID int64) (string, error) {
	detail, err := c.userDetail(ctx, robloxID)
	if err != nil {
		return "", err
	}
	return detail.Description, nil
}

// CheckChallenge reports whether the user's profile description contains the
// exact challenge code.
func (c *Client) CheckChallenge(ctx context.Context, robloxID int64, code string) (bool, error) {
	text, err := c.ProfileText(ctx, robloxID)
	if err != nil {
		return false, err
	}
	return strings.Contains(text, code), nil
}

// AvatarURL returns the bust thumbnail URL for a user. No request is made;
// the URL is rendered by the chat client.
func (c *Client) AvatarURL(robloxID int64) string {
	return fmt.Sprintf("https://www.roblox.com/bust-thumbnail/image?userId=%d&width=150&height=150", robloxID)
}

func (c *Client) userDetail(ctx context.Context, robloxID int64) (*User, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	monitoring.RobloxTotalRequests.WithLabelValues("user_detail", "sent").Inc()
	t := prometheus.NewTimer(monitoring.RobloxLatency.WithLabelValues("user_detail"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/users/%d", c.usersBaseURL, robloxID), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	t.ObserveDuration()
	if err != nil {
		monitoring.RobloxTotalRequests.WithLabelValues("user_detail", "error").Inc()
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		monitoring.RobloxTotalRequests.WithLabelValues("user_detail", "error").Inc()
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	user := new(User)
	if err := json.NewDecoder(resp.Body).Decode(user); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	return user, nil
}
