package logging

const (
	// KeyError is the key used for errors in log attributes.
	KeyError = "err"

	// KeyDal is the key used for the data access layer name.
	KeyDal = "dal"

	// KeyGuild is the key used for guild IDs.
	KeyGuild = "guild_id"

	// KeyUser is the key used for user IDs.
	KeyUser = "user_id"

	// KeyAppName is the key used for the application name.
	KeyAppName = "app"
)
