package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/seaStamp/YOUng-chat-backend/internal/apperr"
	"github.com/seaStamp/YOUng-chat-backend/internal/auth"
	"github.com/seaStamp/YOUng-chat-backend/internal/chat"
	"github.com/seaStamp/YOUng-chat-backend/internal/chatroom"
	"github.com/seaStamp/YOUng-chat-backend/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store    store.Store
	redis    *store.RedisStore
	rooms    *chatroom.Service
	chats    *chat.Service
	auth     *auth.Service
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewHandler creates a new Handler with the given services.
func NewHandler(st store.Store, redis *store.RedisStore, rooms *chatroom.Service, chats *chat.Service, authSvc *auth.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		store:    st,
		redis:    redis,
		rooms:    rooms,
		chats:    chats,
		auth:     authSvc,
		validate: validator.New(),
		logger:   logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// Fail maps a service error to its transport status. Unrecognized errors are
// internal and never leak their message.
func (h *Handler) Fail(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindNotFoundUser, apperr.KindNotFoundChatRoom, apperr.KindNotFoundChat:
		status = http.StatusNotFound
	case apperr.KindAccessDenied:
		status = http.StatusForbidden
	case apperr.KindInvalidArgument:
		status = http.StatusBadRequest
	case apperr.KindDuplicate:
		status = http.StatusConflict
	case apperr.KindUnauthenticated:
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg("request failed")
		h.JSON(w, status, map[string]string{"error": "internal error", "code": apperr.KindUnknown.String()})
		return
	}

	h.JSON(w, status, map[string]string{"error": err.Error(), "code": kind.String()})
}

// decode parses and validates a JSON request body.
func (h *Handler) decode(r *http.Request, req any) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return apperr.New(apperr.KindInvalidArgument, "invalid JSON body")
	}
	if err := h.validate.Struct(req); err != nil {
		return apperr.Newf(apperr.KindInvalidArgument, "validation failed: %v", err)
	}
	return nil
}
