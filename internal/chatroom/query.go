package chatroom

import (
	"context"
	"time"

	"github.com/seaStamp/YOUng-chat-backend/internal/apperr"
	"github.com/seaStamp/YOUng-chat-backend/internal/models"
)

// LastChat is the latest non-deleted message shown next to a room in the
// room list.
type LastChat struct {
	ChatID  int64     `json:"chat_id"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// RoomSummary is one entry of the paginated room list. Last is nil for rooms
// without messages.
type RoomSummary struct {
	Room models.ChatRoom `json:"room"`
	Last *LastChat       `json:"last_chat,omitempty"`
}

// ListRooms returns a page of the user's rooms ordered by most recent
// activity, each paired with its latest non-deleted message. The cursor is
// the ordering key of the last item of the previous page; only rooms whose
// key is strictly below it are returned, which keeps pages stable under
// concurrent inserts.
func (s *Service) ListRooms(ctx context.Context, userID, cursor int64, pageSize int) (Slice[RoomSummary], error) {
	pageSize = clampPageSize(pageSize)

	rows, err := s.store.ListUserRoomsBefore(ctx, userID, cursor, pageSize+1)
	if err != nil {
		return Slice[RoomSummary]{}, err
	}

	return MapSlice(CutPage(rows, pageSize), func(rw models.RoomWithLastChat) RoomSummary {
		summary := RoomSummary{Room: rw.Room}
		if rw.LastChatID != 0 {
			summary.Last = &LastChat{
				ChatID:  rw.LastChatID,
				Message: rw.LastMessage,
				SentAt:  rw.LastSentAt,
			}
		}
		return summary
	}), nil
}

// RoomMessages returns a page of a room's history, newest first, strictly
// older than lastChatID when supplied. Soft-deleted chats stay in the page
// with IsDeleted set; the boundary renders them redacted.
func (s *Service) RoomMessages(ctx context.Context, roomID, requesterID, lastChatID int64, pageSize int) (Slice[models.ChatDetail], error) {
	// Existence before membership: a deleted room reports NotFoundChatRoom,
	// not AccessDenied, even though its membership rows are gone too.
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return Slice[models.ChatDetail]{}, err
	}
	if room == nil {
		return Slice[models.ChatDetail]{}, apperr.NotFoundChatRoom
	}

	if err := s.RequireMember(ctx, roomID, requesterID); err != nil {
		return Slice[models.ChatDetail]{}, err
	}

	pageSize = clampPageSize(pageSize)

	rows, err := s.store.ListRoomChatsBefore(ctx, roomID, lastChatID, pageSize+1)
	if err != nil {
		return Slice[models.ChatDetail]{}, err
	}

	return CutPage(rows, pageSize), nil
}

// RoomDetail returns a room with its full history, oldest first. A room with
// zero messages fails with NotFoundChat; the paginated accessor returns an
// empty page instead.
func (s *Service) RoomDetail(ctx context.Context, roomID, requesterID int64) (*models.ChatRoom, []models.ChatDetail, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	if room == nil {
		return nil, nil, apperr.NotFoundChatRoom
	}

	if err := s.RequireMember(ctx, roomID, requesterID); err != nil {
		return nil, nil, err
	}

	chats, err := s.store.ListRoomChats(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	if len(chats) == 0 {
		return nil, nil, apperr.NotFoundChat
	}

	return room, chats, nil
}
