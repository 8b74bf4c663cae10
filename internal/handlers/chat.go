package handlers

import (
	"net/http"
	"time"

	"github.com/seaStamp/YOUng-chat-backend/internal/api/middleware"
	"github.com/seaStamp/YOUng-chat-backend/internal/metrics"
)

// ChatSendRequest represents the message posting request.
type ChatSendRequest struct {
	Message string `json:"message" validate:"required,min=1,max=4096"`
}

// ChatSendResponse echoes the stored message.
type ChatSendResponse struct {
	ChatID     int64     `json:"chat_id"`
	ChatRoomID int64     `json:"chat_room_id"`
	Message    string    `json:"message"`
	SentAt     time.Time `json:"sent_at"`
}

// ChatDeleteResponse confirms a soft deletion.
type ChatDeleteResponse struct {
	ChatID    int64 `json:"chat_id"`
	IsDeleted bool  `json:"is_deleted"`
}

// PostMessage handles posting a message to a room the caller is a member of.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	roomID, err := pathID(r, "id")
	if err != nil {
		h.Fail(w, err)
		return
	}

	var req ChatSendRequest
	if err := h.decode(r, &req); err != nil {
		h.Fail(w, err)
		return
	}

	chat, err := h.chats.Send(r.Context(), roomID, user.ID, req.Message)
	if err != nil {
		h.Fail(w, err)
		return
	}

	metrics.MessagesPosted.Inc()

	h.JSON(w, http.StatusCreated, ChatSendResponse{
		ChatID:     chat.ID,
		ChatRoomID: chat.ChatRoomID,
		Message:    chat.Message,
		SentAt:     chat.CreatedAt,
	})
}

// DeleteChat handles sender-only soft deletion of a message.
func (h *Handler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	chatID, err := pathID(r, "id")
	if err != nil {
		h.Fail(w, err)
		return
	}

	chat, err := h.chats.Delete(r.Context(), chatID, user.ID)
	if err != nil {
		h.Fail(w, err)
		return
	}

	h.JSON(w, http.StatusOK, ChatDeleteResponse{ChatID: chat.ID, IsDeleted: chat.IsDeleted})
}
