package chatroom

import (
	"context"

	"github.com/samber/lo"

	"github.com/seaStamp/YOUng-chat-backend/internal/apperr"
	"github.com/seaStamp/YOUng-chat-backend/internal/models"
)

// CreatePersonal creates a 1:1 room between the requester and friend, or
// returns the existing one: at most one personal room exists per unordered
// user pair, and the dedup path performs zero writes.
//
// Two concurrent calls for the same pair with no existing room can both pass
// the lookup and each create a room; the (room, user) uniqueness constraint
// does not cover the pair key. Known narrow race, accepted.
func (s *Service) CreatePersonal(ctx context.Context, requesterID, friendID int64) (*models.ChatRoom, error) {
	if requesterID == friendID {
		return nil, apperr.New(apperr.KindInvalidArgument, "cannot create a personal room with yourself")
	}

	friend, err := s.store.GetUser(ctx, friendID)
	if err != nil {
		return nil, err
	}
	if friend == nil {
		return nil, apperr.NotFoundUser
	}

	existing, err := s.store.FindPersonalRoom(ctx, requesterID, friend.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	// Personal rooms keep an empty title; clients render the peer's name.
	room := &models.ChatRoom{}
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		if err := s.store.SaveRoom(ctx, room); err != nil {
			return err
		}
		return s.store.SaveMemberships(ctx, []models.Membership{
			{ChatRoomID: room.ID, UserID: requesterID},
			{ChatRoomID: room.ID, UserID: friend.ID},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("room_id", room.ID).
		Int64("requester_id", requesterID).
		Int64("friend_id", friend.ID).
		Msg("personal room created")

	return room, nil
}

// CreateGroup creates a group room with the given title and members. The
// requester is always a member; duplicate ids collapse to one membership.
// Group rooms carry no uniqueness constraint, so groups with identical
// member sets may coexist.
func (s *Service) CreateGroup(ctx context.Context, requesterID int64, title string, memberIDs []int64) (*models.ChatRoom, error) {
	ids := lo.Uniq(append([]int64{requesterID}, memberIDs...))

	for _, id := range ids {
		if id == requesterID {
			continue
		}
		user, err := s.store.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apperr.Newf(apperr.KindNotFoundUser, "user %d not found", id)
		}
	}

	room := &models.ChatRoom{Title: title}
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		if err := s.store.SaveRoom(ctx, room); err != nil {
			return err
		}
		members := lo.Map(ids, func(id int64, _ int) models.Membership {
			return models.Membership{ChatRoomID: room.ID, UserID: id}
		})
		return s.store.SaveMemberships(ctx, members)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("room_id", room.ID).
		Int64("requester_id", requesterID).
		Int("members", len(ids)).
		Msg("group room created")

	return room, nil
}
