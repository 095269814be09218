package entities

import (
	"github.com/joelikes8/Bot-Product/pkg/custom"
)

// VerifiedLink links a Discord account to a Roblox account. There is at most
// one link per Discord ID at any time; re-verification overwrites all fields.
type VerifiedLink struct {
	// DiscordID is the ID of the linked Discord account. This is the unique
	// key for the record.
	DiscordID string `json:"discord_id" bson:"discord_id"`

	// DiscordUsername is the Discord username at the time of verification.
	// It is a display label only and may go stale.
	DiscordUsername string `json:"discord_username" bson:"discord_username"`

	// RobloxID is the numeric Roblox user ID. This is the durable external
	// identity.
	RobloxID int64 `json:"roblox_id" bson:"roblox_id"`

	// RobloxUsername is the Roblox username at the time of verification.
	// It is a display label only and may go stale.
	RobloxUsername string `json:"roblox_username" bson:"roblox_username"`

	// VerifiedAt is the time that the link was created or last overwritten.
	VerifiedAt custom.Datetime `json:"verified_at" bson:"verified_at"`
}
