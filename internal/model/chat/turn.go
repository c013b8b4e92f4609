package chat

import "time"

// Turn is one message/reply pair, the atomic unit of chat history.
// Turns are append-only: there is no update or delete path.
type Turn struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"createdAt"`
}
