package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/seaStamp/YOUng-chat-backend/internal/api/middleware"
	"github.com/seaStamp/YOUng-chat-backend/internal/apperr"
	"github.com/seaStamp/YOUng-chat-backend/internal/chatroom"
	"github.com/seaStamp/YOUng-chat-backend/internal/metrics"
	"github.com/seaStamp/YOUng-chat-backend/internal/models"
)

// deletedMessagePlaceholder replaces the text of soft-deleted chats in API
// responses; the rows themselves stay in pagination.
const deletedMessagePlaceholder = "This message has been deleted."

// PersonalRoomCreateRequest represents the personal room creation request.
type PersonalRoomCreateRequest struct {
	FriendID int64 `json:"friend_id" validate:"required,gt=0"`
}

// GroupRoomCreateRequest represents the group room creation request.
type GroupRoomCreateRequest struct {
	Title     string  `json:"title" validate:"required,min=1,max=100"`
	MemberIDs []int64 `json:"member_ids" validate:"required,min=1,dive,gt=0"`
}

// RoomCreateResponse echoes the id of the created (or deduplicated) room.
type RoomCreateResponse struct {
	ChatRoomID int64 `json:"chat_room_id"`
}

// RoomEditRequest represents the room rename request.
type RoomEditRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100"`
}

// RoomEditResponse echoes the committed state after a rename.
type RoomEditResponse struct {
	ChatRoomID int64  `json:"chat_room_id"`
	Title      string `json:"title"`
}

// RoomLeaveResponse echoes the left room and whether it was deleted.
type RoomLeaveResponse struct {
	ChatRoomID int64 `json:"chat_room_id"`
	Deleted    bool  `json:"deleted"`
}

// LastChatInfo is the latest message preview in the room list.
type LastChatInfo struct {
	ChatID  int64     `json:"chat_id"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// RoomListItem is one entry of the room list response.
type RoomListItem struct {
	ChatRoomID int64         `json:"chat_room_id"`
	Title      string        `json:"title"`
	LastChat   *LastChatInfo `json:"last_chat,omitempty"`
}

// ChatItem represents a message in API responses.
type ChatItem struct {
	ChatID       int64     `json:"chat_id"`
	SenderID     int64     `json:"sender_id"`
	Username     string    `json:"username"`
	ProfileImage string    `json:"profile_image,omitempty"`
	Message      string    `json:"message"`
	IsDeleted    bool      `json:"is_deleted"`
	SentAt       time.Time `json:"sent_at"`
}

// RoomDetailResponse represents the full-history room view.
type RoomDetailResponse struct {
	ChatRoomID int64      `json:"chat_room_id"`
	Title      string     `json:"title"`
	Chats      []ChatItem `json:"chats"`
}

func toChatItem(c models.ChatDetail) ChatItem {
	message := c.Message
	if c.IsDeleted {
		message = deletedMessagePlaceholder
	}
	return ChatItem{
		ChatID:       c.ChatID,
		SenderID:     c.SenderID,
		Username:     c.Username,
		ProfileImage: c.ProfileImage,
		Message:      message,
		IsDeleted:    c.IsDeleted,
		SentAt:       c.SentAt,
	}
}

// CreatePersonalRoom handles 1:1 room creation. Creating the same pair again
// returns the existing room id without writes.
func (h *Handler) CreatePersonalRoom(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req PersonalRoomCreateRequest
	if err := h.decode(r, &req); err != nil {
		h.Fail(w, err)
		return
	}

	room, err := h.rooms.CreatePersonal(r.Context(), user.ID, req.FriendID)
	if err != nil {
		h.Fail(w, err)
		return
	}

	metrics.RoomsCreated.WithLabelValues("personal").Inc()

	h.JSON(w, http.StatusCreated, RoomCreateResponse{ChatRoomID: room.ID})
}

// CreateGroupRoom handles group room creation.
func (h *Handler) CreateGroupRoom(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req GroupRoomCreateRequest
	if err := h.decode(r, &req); err != nil {
		h.Fail(w, err)
		return
	}

	room, err := h.rooms.CreateGroup(r.Context(), user.ID, req.Title, req.MemberIDs)
	if err != nil {
		h.Fail(w, err)
		return
	}

	metrics.RoomsCreated.WithLabelValues("group").Inc()

	h.JSON(w, http.StatusCreated, RoomCreateResponse{ChatRoomID: room.ID})
}

// ListRooms handles the cursor-paginated room list.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	cursor := queryInt64(r, "cursor")
	limit := queryInt(r, "limit")

	page, err := h.rooms.ListRooms(r.Context(), user.ID, cursor, limit)
	if err != nil {
		h.Fail(w, err)
		return
	}

	resp := chatroom.MapSlice(page, func(s chatroom.RoomSummary) RoomListItem {
		item := RoomListItem{ChatRoomID: s.Room.ID, Title: s.Room.Title}
		if s.Last != nil {
			item.LastChat = &LastChatInfo{
				ChatID:  s.Last.ChatID,
				Message: s.Last.Message,
				SentAt:  s.Last.SentAt,
			}
		}
		return item
	})

	h.JSON(w, http.StatusOK, resp)
}

// GetRoomDetail handles the non-paginated full-history room view.
func (h *Handler) GetRoomDetail(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	roomID, err := pathID(r, "id")
	if err != nil {
		h.Fail(w, err)
		return
	}

	room, chats, err := h.rooms.RoomDetail(r.Context(), roomID, user.ID)
	if err != nil {
		h.Fail(w, err)
		return
	}

	h.JSON(w, http.StatusOK, RoomDetailResponse{
		ChatRoomID: room.ID,
		Title:      room.Title,
		Chats:      lo.Map(chats, func(c models.ChatDetail, _ int) ChatItem { return toChatItem(c) }),
	})
}

// GetRoomMessages handles the cursor-paginated message history.
func (h *Handler) GetRoomMessages(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	roomID, err := pathID(r, "id")
	if err != nil {
		h.Fail(w, err)
		return
	}

	cursor := queryInt64(r, "cursor")
	limit := queryInt(r, "limit")

	page, err := h.rooms.RoomMessages(r.Context(), roomID, user.ID, cursor, limit)
	if err != nil {
		h.Fail(w, err)
		return
	}

	h.JSON(w, http.StatusOK, chatroom.MapSlice(page, toChatItem))
}

// EditRoom handles room rename.
func (h *Handler) EditRoom(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	roomID, err := pathID(r, "id")
	if err != nil {
		h.Fail(w, err)
		return
	}

	var req RoomEditRequest
	if err := h.decode(r, &req); err != nil {
		h.Fail(w, err)
		return
	}

	room, err := h.rooms.Edit(r.Context(), roomID, user.ID, req.Title)
	if err != nil {
		h.Fail(w, err)
		return
	}

	h.JSON(w, http.StatusOK, RoomEditResponse{ChatRoomID: room.ID, Title: room.Title})
}

// LeaveRoom handles a member leaving; the last member's leave deletes the
// room.
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	roomID, err := pathID(r, "id")
	if err != nil {
		h.Fail(w, err)
		return
	}

	deleted, err := h.rooms.Leave(r.Context(), roomID, user.ID)
	if err != nil {
		h.Fail(w, err)
		return
	}

	if deleted {
		metrics.RoomsDeleted.Inc()
	}

	h.JSON(w, http.StatusOK, RoomLeaveResponse{ChatRoomID: roomID, Deleted: deleted})
}

// pathID parses a positive int64 path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Newf(apperr.KindInvalidArgument, "invalid %s", name)
	}
	return id, nil
}

// queryInt64 parses an optional int64 query parameter, 0 when absent.
func queryInt64(r *http.Request, name string) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// queryInt parses an optional int query parameter, 0 when absent.
func queryInt(r *http.Request, name string) int {
	return int(queryInt64(r, name))
}
