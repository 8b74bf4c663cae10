package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/seaStamp/YOUng-chat-backend/internal/auth"
	"github.com/seaStamp/YOUng-chat-backend/internal/models"
	"github.com/seaStamp/YOUng-chat-backend/internal/store"
)

type contextKey string

const UserContextKey contextKey = "user"

// AuthMiddleware resolves the caller's identity from a bearer token before
// handlers run. Handlers only ever see the resolved user.
type AuthMiddleware struct {
	tokens *auth.TokenManager
	store  store.Store
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(tokens *auth.TokenManager, st store.Store) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, store: st}
}

// RequireAuth verifies the Authorization bearer token and loads the user
// into the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			jsonError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		tokenString := header
		if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
			tokenString = header[7:]
		}

		userID, err := m.tokens.Verify(tokenString)
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		// The token may outlive the account; re-check the user exists.
		user, err := m.store.GetUser(r.Context(), userID)
		if err != nil || user == nil {
			jsonError(w, http.StatusUnauthorized, "user not found")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetUserFromContext retrieves the authenticated user from the request
// context.
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
