package chat

import "time"

// User is the locally persisted identity record. The chat provider keeps a
// parallel record under the same ID; the two are registered together but
// never reconciled afterwards.
type User struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
