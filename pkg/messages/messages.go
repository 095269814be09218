// Package messages holds the user facing message strings for the bot.
package messages

const (
	// ErrUserErrorProcessing is sent when a command fails for a reason the
	// user cannot act on.
	ErrUserErrorProcessing = "Something went wrong while processing your request. Please try again later."

	// ErrRobloxUserNotFound is sent when a Roblox username does not resolve.
	ErrRobloxUserNotFound = "Could not find a Roblox user with username: `%s`"

	// ErrAlreadyVerified is sent when a verified user runs /verify again.
	ErrAlreadyVerified = "You are already verified! If you want to change your account, use the `/update` command."

	// ErrNotVerified is sent when an unverified user runs /update.
	ErrNotVerified = "You are not verified! Please use the `/verify` command first."

	// ErrVerificationExpired is sent when a verification button is pressed
	// after the session has expired.
	ErrVerificationExpired = "This verification session has expired. Please run the command again."

	// ErrNoChannelPermission is sent when the bot cannot create channels.
	ErrNoChannelPermission = "I don't have permission to create channels. Please contact an administrator."

	// ErrTicketCloseUnauthorized is sent when a user who is neither the
	// requester nor support staff tries to close a ticket.
	ErrTicketCloseUnauthorized = "Only the ticket creator or support staff can close this ticket."

	// ErrTicketDeleteUnauthorized is sent when a non support-role holder
	// tries to delete a ticket channel.
	ErrTicketDeleteUnauthorized = "You don't have permission to delete this channel."

	// ErrNotTicketChannel is sent when a ticket action is used outside a
	// ticket channel.
	ErrNotTicketChannel = "This channel is not a ticket channel."

	// ErrAdminOnly is sent when a non-administrator runs a setup command.
	ErrAdminOnly = "You must be an administrator to use this command."

	// ErrRobloxUnavailable is sent when the Roblox API cannot be reached.
	ErrRobloxUnavailable = "Roblox seems to be having issues right now. Please try again in a few minutes."

	// ErrCodeNotFound is sent when the challenge code is not found in the
	// user's profile description.
	ErrCodeNotFound = "I couldn't find the code in your profile description. Make sure you saved your profile, then press **Done** again."

	// ErrNotYourSession is sent when someone presses a verification button
	// that belongs to another user's session.
	ErrNotYourSession = "This verification prompt isn't yours."
)

const (
	// VerificationCancelled is shown when the user cancels verification.
	VerificationCancelled = "You've cancelled the verification process."

	// VerificationSuccess is shown once the challenge code has been found
	// and the link saved.
	VerificationSuccess = "You have been verified as **%s**! Welcome!"

	// VerificationHelpTicket is shown after a verification help ticket has
	// been opened.
	VerificationHelpTicket = "A help ticket has been opened for you: <#%s>. A staff member will assist you shortly."

	// WhoisNotVerified is shown when the looked-up user has no link.
	WhoisNotVerified = "<@%s> is not verified."

	// WhoisRobloxNotLinked is shown when no member is linked to the
	// looked-up Roblox account.
	WhoisRobloxNotLinked = "No member here is verified as **%s**."

	// TicketAlreadyOpen is sent when the user already has an open ticket.
	TicketAlreadyOpen = "You already have an open ticket: <#%s>"

	// TicketCreated is sent after a ticket channel has been created.
	TicketCreated = "Your ticket has been created: <#%s>"

	// TicketClosed is posted in the ticket channel once it is closed.
	TicketClosed = "This ticket is now closed. Staff can delete this channel using the button below."
)
