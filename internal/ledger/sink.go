package ledger

import "context"

// Sink is the external ledger-append boundary. Appending a record is the
// only persistence step visible outside the bot: on success the caller
// resets the draft, on failure the draft must stay intact for a retry.
type Sink interface {
	Append(ctx context.Context, rec Record) error
}
