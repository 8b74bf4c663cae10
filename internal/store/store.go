package store

import (
	"context"

	"github.com/seaStamp/YOUng-chat-backend/internal/models"
)

// Store is the narrow repository contract the chat services depend on.
// Lookups return (nil, nil) when the row does not exist; translating absence
// into a domain error is the caller's job.
//
// PostgresStore, SQLiteStore and MemoryStore implement this interface.
type Store interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// WithTx runs fn inside a single transaction. The transaction rides the
	// context: store calls made with the context passed to fn join it.
	// Nested calls reuse the surrounding transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// User operations
	CreateUser(ctx context.Context, email, username, passwordHash, profileImage string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Room operations
	SaveRoom(ctx context.Context, room *models.ChatRoom) error
	GetRoom(ctx context.Context, id int64) (*models.ChatRoom, error)
	UpdateRoomTitle(ctx context.Context, id int64, title string) error
	// DeleteRoom removes the room and cascades to its memberships and chats.
	DeleteRoom(ctx context.Context, id int64) error
	// FindPersonalRoom returns the room whose member set is exactly
	// {userA, userB}, independent of argument order, or nil.
	FindPersonalRoom(ctx context.Context, userA, userB int64) (*models.ChatRoom, error)

	// Membership operations
	SaveMemberships(ctx context.Context, members []models.Membership) error
	IsMember(ctx context.Context, roomID, userID int64) (bool, error)
	GetMembership(ctx context.Context, roomID, userID int64) (*models.Membership, error)
	DeleteMembership(ctx context.Context, roomID, userID int64) error
	CountMembers(ctx context.Context, roomID int64) (int64, error)

	// Chat operations
	SaveChat(ctx context.Context, chat *models.Chat) error
	GetChat(ctx context.Context, id int64) (*models.Chat, error)
	MarkChatDeleted(ctx context.Context, id int64) error
	// ListRoomChats returns the full history of a room, oldest first.
	ListRoomChats(ctx context.Context, roomID int64) ([]models.ChatDetail, error)
	// ListRoomChatsBefore returns up to limit chats with id strictly below
	// beforeID (0 means unbounded), newest first. Soft-deleted rows are
	// included.
	ListRoomChatsBefore(ctx context.Context, roomID, beforeID int64, limit int) ([]models.ChatDetail, error)
	// ListUserRoomsBefore returns up to limit of the user's rooms ordered by
	// latest non-deleted chat id descending, strictly below beforeChatID
	// (0 means unbounded). Rooms without messages sort last with key zero.
	ListUserRoomsBefore(ctx context.Context, userID, beforeChatID int64, limit int) ([]models.RoomWithLastChat, error)
}
