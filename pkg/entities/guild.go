package entities

// Guild is the per-guild configuration.
type Guild struct {
	// ID is the ID of the guild.
	ID string `json:"id" bson:"id"`

	// Verification is the verification configuration.
	Verification VerificationConfig `json:"verification" bson:"verification"`

	// Ticketing is the ticketing configuration.
	Ticketing TicketingConfig `json:"ticketing" bson:"ticketing"`
}

// VerificationConfig is the per-guild verification configuration.
type VerificationConfig struct {
	// VerifiedRoleID is the ID of the role granted on successful
	// verification. Empty when no role is configured.
	VerifiedRoleID string `json:"verified_role_id" bson:"verified_role_id"`
}

// TicketingConfig is the per-guild ticketing configuration.
type TicketingConfig struct {
	// SupportRoleIDs are the roles authorized to view and manage tickets.
	SupportRoleIDs []string `json:"support_role_ids" bson:"support_role_ids"`

	// CategoryID is the category that new ticket channels are placed under.
	// Empty when no category is configured.
	CategoryID string `json:"category_id" bson:"category_id"`

	// PanelChannelID is the channel holding the open-ticket panel message.
	PanelChannelID string `json:"panel_channel_id" bson:"panel_channel_id"`

	// PanelMessageID is the ID of the open-ticket panel message.
	PanelMessageID string `json:"panel_message_id" bson:"panel_message_id"`
}

// HasSupportRole reports whether any of the given role IDs is a configured
// support role.
func (c *TicketingConfig) HasSupportRole(roleIDs []string) bool {
	for _, id := range roleIDs {
		for _, sr := range c.SupportRoleIDs {
			if id == sr {
				return true
			}
		}
	}
	return false
}

// AddSupportRole adds a role to the support role set if not already present.
func (c *TicketingConfig) AddSupportRole(roleID string) {
	for _, sr := range c.SupportRoleIDs {
		if sr == roleID {
			return
		}
	}
	c.SupportRoleIDs = append(c.SupportRoleIDs, roleID)
}
