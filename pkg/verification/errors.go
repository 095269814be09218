package verification

import "errors"

var (
	// ErrAlreadyLinked is returned when a verify is started for an account
	// that already has a link. The update flow must be used instead.
	ErrAlreadyLinked = errors.New("account is already linked")

	// ErrNotLinked is returned when an update is started for an account
	// that has no existing link.
	ErrNotLinked = errors.New("account is not linked")

	// ErrIdentityNotFound is returned when the Roblox username does not
	// resolve to an account.
	ErrIdentityNotFound = errors.New("roblox identity not found")

	// ErrProviderUnavailable is returned when the identity provider cannot
	// be reached. User-facing copy may unify this with ErrIdentityNotFound,
	// but the two are kept distinct for logs and tests.
	ErrProviderUnavailable = errors.New("identity provider unavailable")

	// ErrChallengeNotFound is returned when the challenge code is absent
	// from the profile text.
	ErrChallengeNotFound = errors.New("challenge code not found in profile")

	// ErrSessionExpired is returned when a session handle no longer resolves,
	// either because its TTL lapsed or because it was cancelled.
	ErrSessionExpired = errors.New("verification session expired")
)
