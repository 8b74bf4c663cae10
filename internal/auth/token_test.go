package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seaStamp/YOUng-chat-backend/internal/apperr"
)

func TestIssueAndVerify(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, expiresAt, err := tm.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	userID, err := tm.Verify(token)
	require.NoError(t, err)
	require.EqualValues(t, 42, userID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", time.Hour).Issue(1)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).Verify(token)
	require.ErrorIs(t, err, apperr.Unauthenticated)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, _, err := tm.Issue(1)
	require.NoError(t, err)

	_, err = tm.Verify(token)
	require.ErrorIs(t, err, apperr.Unauthenticated)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	_, err := tm.Verify("not.a.token")
	require.ErrorIs(t, err, apperr.Unauthenticated)
}

func TestTokensAreUnique(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	a, _, err := tm.Issue(1)
	require.NoError(t, err)
	b, _, err := tm.Issue(1)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
