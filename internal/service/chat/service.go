package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"chat-ai-api/internal/model/chat"
	"chat-ai-api/internal/service/identity"
	"chat-ai-api/internal/store"
)

var (
	// ErrUserNotRegistered means the chat provider has no record of the user.
	ErrUserNotRegistered = errors.New("user does not exist")
	// ErrUserNotInDatabase means the local store has no record of the user.
	// The provider and the store are checked independently; they can drift.
	ErrUserNotInDatabase = errors.New("user not found in database")
)

// fallbackReply is substituted when the model returns an empty candidate.
const fallbackReply = "Sorry, I couldn't generate a response."

// assistantSenderID attributes forwarded replies in the provider channel.
const assistantSenderID = "ai_assistant"

// Completer is the completion capability consumed by the send pipeline.
type Completer interface {
	Complete(ctx context.Context, message string) (string, error)
}

// Service implements the registration, message-send and history pipelines.
type Service struct {
	store    store.Store
	provider identity.Provider
	ai       Completer
}

// NewService wires the three collaborators. Provider and completer may be nil
// when their credentials are absent; affected operations then fail cleanly.
func NewService(st store.Store, provider identity.Provider, ai Completer) *Service {
	return &Service{
		store:    st,
		provider: provider,
		ai:       ai,
	}
}

// Register onboards a user idempotently: a known email returns the stored
// identity unchanged, an unknown one creates the identity with the provider
// and the store. Emails are normalized before lookup.
func (s *Service) Register(ctx context.Context, name, email string) (chat.User, error) {
	email = NormalizeEmail(email)

	existing, err := s.store.FindUserByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return chat.User{}, fmt.Errorf("user lookup failed: %w", err)
	}

	if s.provider == nil {
		return chat.User{}, errors.New("chat provider is not configured")
	}

	user := chat.User{
		UserID: uuid.NewString(),
		Name:   name,
		Email:  email,
	}

	if err := s.provider.UpsertUser(ctx, user.UserID, user.Name, user.Email); err != nil {
		return chat.User{}, fmt.Errorf("provider registration failed: %w", err)
	}

	inserted, err := s.store.InsertUser(ctx, user)
	if errors.Is(err, store.ErrDuplicateEmail) {
		// A concurrent registration for the same email won the insert.
		// Return its record so both callers see one canonical identity.
		return s.store.FindUserByEmail(ctx, email)
	}
	if err != nil {
		return chat.User{}, fmt.Errorf("user insert failed: %w", err)
	}

	log.Printf("[chat] registered user id=%s", inserted.UserID)
	return inserted, nil
}

// Send runs the fixed message pipeline: provider identity check, local
// existence check, completion, persistence, then channel forwarding. Each
// step short-circuits the rest. Persistence strictly precedes forwarding so
// history never misses a forwarded turn.
func (s *Service) Send(ctx context.Context, userID, message string) (string, error) {
	if s.provider == nil {
		return "", errors.New("chat provider is not configured")
	}

	exists, err := s.provider.UserExists(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("provider user lookup failed: %w", err)
	}
	if !exists {
		return "", ErrUserNotRegistered
	}

	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUserNotInDatabase
		}
		return "", fmt.Errorf("user lookup failed: %w", err)
	}

	if s.ai == nil {
		return "", errors.New("completion provider is not configured")
	}

	reply, err := s.ai.Complete(ctx, message)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		reply = fallbackReply
	}

	if _, err := s.store.InsertTurn(ctx, chat.Turn{
		UserID:  userID,
		Message: message,
		Reply:   reply,
	}); err != nil {
		return "", fmt.Errorf("turn insert failed: %w", err)
	}

	channelID, err := s.provider.EnsureChannel(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("channel setup failed: %w", err)
	}
	if err := s.provider.SendMessage(ctx, channelID, reply, assistantSenderID); err != nil {
		return "", fmt.Errorf("message forwarding failed: %w", err)
	}

	return reply, nil
}

// History returns every persisted turn for the user, oldest first.
func (s *Service) History(ctx context.Context, userID string) ([]chat.Turn, error) {
	turns, err := s.store.ListTurnsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("history lookup failed: %w", err)
	}
	return turns, nil
}

// NormalizeEmail lower-cases and trims an address so lookups and the unique
// constraint agree on a single canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
