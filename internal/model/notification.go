package model

import "time"

// Notification is a fire-and-forget message to a user. The core only decides
// when one is produced and what it says; delivery is whatever reads the table.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
