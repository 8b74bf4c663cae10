// Package chat implements message posting and soft deletion. Message
// retrieval lives with the pagination engine in the chatroom package.
package chat

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/seaStamp/YOUng-chat-backend/internal/apperr"
	"github.com/seaStamp/YOUng-chat-backend/internal/chatroom"
	"github.com/seaStamp/YOUng-chat-backend/internal/models"
	"github.com/seaStamp/YOUng-chat-backend/internal/store"
)

// MaxMessageLength bounds a single chat message.
const MaxMessageLength = 4096

// Service handles chat writes. Reads go through the chatroom pagination
// engine.
type Service struct {
	store  store.Store
	rooms  *chatroom.Service
	logger zerolog.Logger
}

// NewService creates the chat service.
func NewService(st store.Store, rooms *chatroom.Service, logger zerolog.Logger) *Service {
	return &Service{
		store:  st,
		rooms:  rooms,
		logger: logger.With().Str("component", "chat").Logger(),
	}
}

// Send posts a message to a room on behalf of a member.
func (s *Service) Send(ctx context.Context, roomID, senderID int64, message string) (*models.Chat, error) {
	if message == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "message is required")
	}
	if len(message) > MaxMessageLength {
		return nil, apperr.Newf(apperr.KindInvalidArgument, "message too long (max %d bytes)", MaxMessageLength)
	}

	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apperr.NotFoundChatRoom
	}

	if err := s.rooms.RequireMember(ctx, roomID, senderID); err != nil {
		return nil, err
	}

	chat := &models.Chat{
		ChatRoomID: roomID,
		SenderID:   senderID,
		Message:    message,
	}
	if err := s.store.SaveChat(ctx, chat); err != nil {
		return nil, err
	}

	return chat, nil
}

// Delete soft-deletes a chat. Only the sender may delete their own message;
// the row stays in storage and in pagination results with IsDeleted set.
func (s *Service) Delete(ctx context.Context, chatID, requesterID int64) (*models.Chat, error) {
	chat, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperr.NotFoundChat
	}

	if chat.SenderID != requesterID {
		return nil, apperr.New(apperr.KindAccessDenied, "only the sender can delete a message")
	}

	if err := s.store.MarkChatDeleted(ctx, chatID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("chat_id", chatID).
		Int64("user_id", requesterID).
		Msg("chat soft-deleted")

	chat.IsDeleted = true
	return chat, nil
}
