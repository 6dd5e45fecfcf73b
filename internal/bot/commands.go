package bot

// Command constants for Telegram bot commands. The one-letter aliases mirror
// the full commands for fast entry on mobile keyboards.
const (
	CommandStart       = "/start"
	CommandStartAlias  = "/s"
	CommandCancel      = "/cancel"
	CommandCancelAlias = "/q"
)
