package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorsIsMatchesOnKind(t *testing.T) {
	err := Newf(KindNotFoundUser, "user %d not found", 42)
	require.ErrorIs(t, err, NotFoundUser)
	require.NotErrorIs(t, err, NotFoundChatRoom)
}

func TestErrorsIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("loading profile: %w", AccessDenied)
	require.ErrorIs(t, err, AccessDenied)
	require.Equal(t, KindAccessDenied, KindOf(err))
}

func TestKindOfUntaggedError(t *testing.T) {
	require.Equal(t, KindUnknown, KindOf(errors.New("disk on fire")))
	require.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindStringsAreStable(t *testing.T) {
	require.Equal(t, "NOT_FOUND_USER", KindNotFoundUser.String())
	require.Equal(t, "NOT_FOUND_CHATROOM", KindNotFoundChatRoom.String())
	require.Equal(t, "NOT_FOUND_CHAT", KindNotFoundChat.String())
	require.Equal(t, "ACCESS_DENIED", KindAccessDenied.String())
	require.Equal(t, "INVALID_ARGUMENT", KindInvalidArgument.String())
	require.Equal(t, "DUPLICATE", KindDuplicate.String())
	require.Equal(t, "UNAUTHENTICATED", KindUnauthenticated.String())
	require.Equal(t, "UNKNOWN", KindUnknown.String())
}

func TestMessageCarriesThrough(t *testing.T) {
	err := New(KindDuplicate, "email already registered")
	require.EqualError(t, err, "email already registered")
}
