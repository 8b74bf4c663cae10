package models

import "time"

// Chat represents a single message in a room. Deletion is soft: the row
// stays in storage and in pagination results with IsDeleted set.
type Chat struct {
	ID         int64     `json:"id"`
	ChatRoomID int64     `json:"chat_room_id"`
	SenderID   int64     `json:"sender_id"`
	Message    string    `json:"message"`
	IsDeleted  bool      `json:"is_deleted"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChatDetail is a chat joined with its sender's display fields, the shape
// returned by history queries.
type ChatDetail struct {
	ChatID       int64
	SenderID     int64
	Username     string
	ProfileImage string
	Message      string
	IsDeleted    bool
	SentAt       time.Time
}
