package store

import (
	"context"
	"errors"

	"chat-ai-api/internal/model/chat"
)

var (
	// ErrNotFound signals a lookup miss for users and turns alike.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail signals a unique-constraint violation on users.email,
	// typically from two concurrent first-time registrations racing past the
	// lookup. Callers treat it as "someone else won" and re-read.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store is the persistence capability used by the chat service. Both record
// sets are append-only; there are no update or delete operations.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (chat.User, error)
	FindUserByID(ctx context.Context, userID string) (chat.User, error)
	InsertUser(ctx context.Context, user chat.User) (chat.User, error)
	InsertTurn(ctx context.Context, turn chat.Turn) (chat.Turn, error)
	ListTurnsByUser(ctx context.Context, userID string) ([]chat.Turn, error)
}
