package identity

import "context"

// Provider is the chat-identity capability: the external service of record
// for chat presence and message forwarding, independent from the local user
// table.
type Provider interface {
	// UserExists reports whether the provider knows the given user ID.
	UserExists(ctx context.Context, userID string) (bool, error)
	// UpsertUser registers (or refreshes) an identity under the given ID.
	UpsertUser(ctx context.Context, userID, name, email string) error
	// EnsureChannel creates the user's messaging channel if it does not
	// exist yet and returns its ID. The call is idempotent on the provider
	// side.
	EnsureChannel(ctx context.Context, userID string) (string, error)
	// SendMessage appends text to a channel, attributed to senderID.
	SendMessage(ctx context.Context, channelID, text, senderID string) error
}
