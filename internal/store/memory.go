package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/seaStamp/YOUng-chat-backend/internal/models"
)

// MemoryStore is an in-process Store used by tests and ephemeral dev runs.
// IDs are sequential per entity starting at 1, which makes cursor assertions
// deterministic.
type MemoryStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	nextUserID       int64
	nextRoomID       int64
	nextMembershipID int64
	nextChatID       int64

	users        map[int64]models.User
	usersByEmail map[string]int64
	rooms        map[int64]models.ChatRoom
	memberships  map[int64]models.Membership
	chats        map[int64]models.Chat
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[int64]models.User),
		usersByEmail: make(map[string]int64),
		rooms:        make(map[int64]models.ChatRoom),
		memberships:  make(map[int64]models.Membership),
		chats:        make(map[int64]models.Chat),
	}
}

// Close is a no-op.
func (s *MemoryStore) Close() {}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// WithTx serializes transactional sections against each other. This is
// coarse serialization, not MVCC: a reader outside a transaction can still
// observe intermediate state, which is acceptable for a test double.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

// CreateUser creates a new user record.
func (s *MemoryStore) CreateUser(ctx context.Context, email, username, passwordHash, profileImage string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextUserID++
	user := models.User{
		ID:           s.nextUserID,
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		ProfileImage: profileImage,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[user.ID] = user
	s.usersByEmail[email] = user.ID
	return &user, nil
}

// GetUser retrieves a user by ID.
func (s *MemoryStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, nil
	}
	user := s.users[id]
	return &user, nil
}

// SaveRoom inserts a new room and assigns its ID.
func (s *MemoryStore) SaveRoom(ctx context.Context, room *models.ChatRoom) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRoomID++
	room.ID = s.nextRoomID
	room.CreatedAt = time.Now().UTC()
	s.rooms[room.ID] = *room
	return nil
}

// GetRoom retrieves a room by ID.
func (s *MemoryStore) GetRoom(ctx context.Context, id int64) (*models.ChatRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return nil, nil
	}
	return &room, nil
}

// UpdateRoomTitle sets the room's title.
func (s *MemoryStore) UpdateRoomTitle(ctx context.Context, id int64, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return nil
	}
	room.Title = title
	s.rooms[id] = room
	return nil
}

// DeleteRoom removes the room and cascades to memberships and chats.
func (s *MemoryStore) DeleteRoom(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, id)
	for mid, m := range s.memberships {
		if m.ChatRoomID == id {
			delete(s.memberships, mid)
		}
	}
	for cid, c := range s.chats {
		if c.ChatRoomID == id {
			delete(s.chats, cid)
		}
	}
	return nil
}

// FindPersonalRoom looks up the room whose member set is exactly the two
// given users, in either order.
func (s *MemoryStore) FindPersonalRoom(ctx context.Context, userA, userB int64) (*models.ChatRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make(map[int64][]int64) // room id -> member ids
	for _, m := range s.memberships {
		members[m.ChatRoomID] = append(members[m.ChatRoomID], m.UserID)
	}

	for roomID, ids := range members {
		if len(ids) != 2 {
			continue
		}
		if (ids[0] == userA && ids[1] == userB) || (ids[0] == userB && ids[1] == userA) {
			room := s.rooms[roomID]
			return &room, nil
		}
	}
	return nil, nil
}

// SaveMemberships inserts membership rows in a batch.
func (s *MemoryStore) SaveMemberships(ctx context.Context, members []models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for i := range members {
		s.nextMembershipID++
		members[i].ID = s.nextMembershipID
		members[i].CreatedAt = now
		s.memberships[members[i].ID] = members[i]
	}
	return nil
}

// IsMember reports whether the user has a membership row for the room.
func (s *MemoryStore) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.memberships {
		if m.ChatRoomID == roomID && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// GetMembership retrieves the membership row for (room, user).
func (s *MemoryStore) GetMembership(ctx context.Context, roomID, userID int64) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.memberships {
		if m.ChatRoomID == roomID && m.UserID == userID {
			found := m
			return &found, nil
		}
	}
	return nil, nil
}

// DeleteMembership removes the membership row for (room, user).
func (s *MemoryStore) DeleteMembership(ctx context.Context, roomID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, m := range s.memberships {
		if m.ChatRoomID == roomID && m.UserID == userID {
			delete(s.memberships, id)
		}
	}
	return nil
}

// CountMembers returns the number of memberships for a room.
func (s *MemoryStore) CountMembers(ctx context.Context, roomID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, m := range s.memberships {
		if m.ChatRoomID == roomID {
			count++
		}
	}
	return count, nil
}

// SaveChat inserts a new chat and assigns its ID.
func (s *MemoryStore) SaveChat(ctx context.Context, chat *models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextChatID++
	chat.ID = s.nextChatID
	chat.IsDeleted = false
	chat.CreatedAt = time.Now().UTC()
	s.chats[chat.ID] = *chat
	return nil
}

// GetChat retrieves a chat by ID.
func (s *MemoryStore) GetChat(ctx context.Context, id int64) (*models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chat, ok := s.chats[id]
	if !ok {
		return nil, nil
	}
	return &chat, nil
}

// MarkChatDeleted soft-deletes a chat.
func (s *MemoryStore) MarkChatDeleted(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, ok := s.chats[id]
	if !ok {
		return nil
	}
	chat.IsDeleted = true
	s.chats[id] = chat
	return nil
}

func (s *MemoryStore) chatDetail(c models.Chat) models.ChatDetail {
	sender := s.users[c.SenderID]
	return models.ChatDetail{
		ChatID:       c.ID,
		SenderID:     c.SenderID,
		Username:     sender.Username,
		ProfileImage: sender.ProfileImage,
		Message:      c.Message,
		IsDeleted:    c.IsDeleted,
		SentAt:       c.CreatedAt,
	}
}

// ListRoomChats returns the full history of a room, oldest first.
func (s *MemoryStore) ListRoomChats(ctx context.Context, roomID int64) ([]models.ChatDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.ChatDetail
	for _, c := range s.chats {
		if c.ChatRoomID == roomID {
			result = append(result, s.chatDetail(c))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ChatID < result[j].ChatID })
	return result, nil
}

// ListRoomChatsBefore returns a seek page of a room's chats, newest first.
func (s *MemoryStore) ListRoomChatsBefore(ctx context.Context, roomID, beforeID int64, limit int) ([]models.ChatDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.ChatDetail
	for _, c := range s.chats {
		if c.ChatRoomID != roomID {
			continue
		}
		if beforeID != 0 && c.ID >= beforeID {
			continue
		}
		result = append(result, s.chatDetail(c))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ChatID > result[j].ChatID })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ListUserRoomsBefore returns a seek page of the user's rooms ordered by
// latest non-deleted chat id descending, each joined with that chat.
func (s *MemoryStore) ListUserRoomsBefore(ctx context.Context, userID, beforeChatID int64, limit int) ([]models.RoomWithLastChat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.RoomWithLastChat
	for _, m := range s.memberships {
		if m.UserID != userID {
			continue
		}
		room := s.rooms[m.ChatRoomID]
		rw := models.RoomWithLastChat{Room: room, LastSentAt: room.CreatedAt}
		for _, c := range s.chats {
			if c.ChatRoomID == room.ID && !c.IsDeleted && c.ID > rw.LastChatID {
				rw.LastChatID = c.ID
				rw.LastMessage = c.Message
				rw.LastDeleted = c.IsDeleted
				rw.LastSentAt = c.CreatedAt
			}
		}
		if beforeChatID != 0 && rw.LastChatID >= beforeChatID {
			continue
		}
		result = append(result, rw)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].LastChatID != result[j].LastChatID {
			return result[i].LastChatID > result[j].LastChatID
		}
		return result[i].Room.ID > result[j].Room.ID
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
