package handlers

import (
	"net/http"
	"time"

	"github.com/seaStamp/YOUng-chat-backend/internal/api/middleware"
	"github.com/seaStamp/YOUng-chat-backend/internal/metrics"
	"github.com/seaStamp/YOUng-chat-backend/internal/models"
)

// SignupRequest represents the registration request.
type SignupRequest struct {
	Email        string `json:"email" validate:"required,email,max=254"`
	Username     string `json:"username" validate:"required,min=1,max=50"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	ProfileImage string `json:"profile_image" validate:"omitempty,max=500"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserInfo represents a user in API responses.
type UserInfo struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// AuthResponse represents the login response.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

func toUserInfo(user *models.User) UserInfo {
	return UserInfo{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		ProfileImage: user.ProfileImage,
	}
}

// Signup handles user registration.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := h.decode(r, &req); err != nil {
		h.Fail(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Username, req.Password, req.ProfileImage)
	if err != nil {
		h.Fail(w, err)
		return
	}

	metrics.UsersRegistered.Inc()

	h.JSON(w, http.StatusCreated, toUserInfo(user))
}

// Login handles credential verification and token issuance.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decode(r, &req); err != nil {
		h.Fail(w, err)
		return
	}

	token, expiresAt, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.Fail(w, err)
		return
	}

	h.JSON(w, http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserInfo(user),
	})
}

// Me returns the authenticated caller's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.JSON(w, http.StatusOK, toUserInfo(user))
}
