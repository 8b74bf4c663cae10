package chatroom

import (
	"context"

	"github.com/seaStamp/YOUng-chat-backend/internal/apperr"
	"github.com/seaStamp/YOUng-chat-backend/internal/models"
)

// Edit renames a room. Existence is checked before membership, so editing an
// unknown room id reports NotFoundChatRoom even for non-members.
func (s *Service) Edit(ctx context.Context, roomID, requesterID int64, title string) (*models.ChatRoom, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apperr.NotFoundChatRoom
	}

	if err := s.RequireMember(ctx, roomID, requesterID); err != nil {
		return nil, err
	}

	if err := s.store.UpdateRoomTitle(ctx, roomID, title); err != nil {
		return nil, err
	}

	room.Title = title
	return room, nil
}

// Leave removes the requester's membership. The last member to leave deletes
// the room together with its remaining memberships and chats, so a room
// either has at least one member or does not exist. Returns whether the room
// was deleted.
func (s *Service) Leave(ctx context.Context, roomID, requesterID int64) (bool, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	if room == nil {
		return false, apperr.NotFoundChatRoom
	}

	membership, err := s.store.GetMembership(ctx, roomID, requesterID)
	if err != nil {
		return false, err
	}
	if membership == nil {
		return false, apperr.AccessDenied
	}

	deleted := false
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteMembership(ctx, roomID, requesterID); err != nil {
			return err
		}
		remaining, err := s.store.CountMembers(ctx, roomID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			deleted = true
			return s.store.DeleteRoom(ctx, roomID)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	s.logger.Info().
		Int64("room_id", roomID).
		Int64("user_id", requesterID).
		Bool("room_deleted", deleted).
		Msg("user left room")

	return deleted, nil
}
