// Package chatroom implements the chat-room membership and pagination core:
// room provisioning with 1:1 dedup, membership-based access control, room
// mutation and cursor-paginated queries over rooms and history.
package chatroom

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/seaStamp/YOUng-chat-backend/internal/apperr"
	"github.com/seaStamp/YOUng-chat-backend/internal/store"
)

// DefaultPageSize bounds paginated queries when the caller does not ask for
// a specific page size.
const DefaultPageSize = 10

// MaxPageSize caps the page size a caller may request.
const MaxPageSize = 100

// Service is the chat-room façade. It owns the business invariants; all
// persistence goes through the narrow store contract, re-read on every
// operation rather than cached.
type Service struct {
	store  store.Store
	logger zerolog.Logger
}

// NewService creates the chat-room service.
func NewService(st store.Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger.With().Str("component", "chatroom").Logger(),
	}
}

// IsMember reports whether the user has a membership for the room.
// Pure read, no side effects.
func (s *Service) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	return s.store.IsMember(ctx, roomID, userID)
}

// RequireMember fails with AccessDenied unless the user is a member of the
// room. Every member has symmetric rights; there is no owner or admin tier.
func (s *Service) RequireMember(ctx context.Context, roomID, userID int64) error {
	ok, err := s.store.IsMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.AccessDenied
	}
	return nil
}

// clampPageSize normalizes a requested page size into [1, MaxPageSize].
func clampPageSize(pageSize int) int {
	if pageSize <= 0 {
		return DefaultPageSize
	}
	if pageSize > MaxPageSize {
		return MaxPageSize
	}
	return pageSize
}
