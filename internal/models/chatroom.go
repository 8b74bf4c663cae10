package models

import "time"

// ChatRoom represents a personal (1:1) or group chat room.
// Personal rooms keep an empty title and are unique per unordered user pair.
type ChatRoom struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Membership links one user to one chat room. The (room, user) pair is
// unique; a membership row is what grants read/write access to the room.
type Membership struct {
	ID         int64     `json:"id"`
	ChatRoomID int64     `json:"chat_room_id"`
	UserID     int64     `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// RoomWithLastChat is the room-list projection: a room the user belongs to
// paired with its latest non-deleted chat. LastChatID is the ordering key
// for seek pagination; zero means the room has no messages yet.
type RoomWithLastChat struct {
	Room        ChatRoom
	LastChatID  int64
	LastMessage string
	LastDeleted bool
	LastSentAt  time.Time
}
