package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/seaStamp/YOUng-chat-backend/internal/apperr"
	"github.com/seaStamp/YOUng-chat-backend/internal/store"
)

func newAuthService() (*Service, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return NewService(st, NewTokenManager("test-secret", time.Hour)), st
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alice@Example.com", "alice", "s3cret-pass", "")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.NotEqual(t, "s3cret-pass", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "alice", "s3cret-pass", "")
	require.NoError(t, err)

	// Email comparison is case-insensitive.
	_, err = svc.Register(ctx, "ALICE@example.com", "alice2", "other-pass", "")
	require.ErrorIs(t, err, apperr.Duplicate)
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice@example.com", "alice", "s3cret-pass", "")
	require.NoError(t, err)

	token, expiresAt, user, err := svc.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, expiresAt.After(time.Now()))
	require.Equal(t, registered.ID, user.ID)

	userID, err := svc.Tokens().Verify(token)
	require.NoError(t, err)
	require.Equal(t, registered.ID, userID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "alice", "s3cret-pass", "")
	require.NoError(t, err)

	_, _, _, errUnknown := svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	_, _, _, errWrongPass := svc.Login(ctx, "alice@example.com", "wrong-pass")

	require.ErrorIs(t, errUnknown, apperr.Unauthenticated)
	require.ErrorIs(t, errWrongPass, apperr.Unauthenticated)
	require.Equal(t, errUnknown.Error(), errWrongPass.Error())
}
