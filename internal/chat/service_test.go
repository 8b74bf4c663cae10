package chat_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/seaStamp/YOUng-chat-backend/internal/apperr"
	"github.com/seaStamp/YOUng-chat-backend/internal/chat"
	"github.com/seaStamp/YOUng-chat-backend/internal/chatroom"
	"github.com/seaStamp/YOUng-chat-backend/internal/models"
	"github.com/seaStamp/YOUng-chat-backend/internal/store"
)

type fixture struct {
	st    *store.MemoryStore
	rooms *chatroom.Service
	chats *chat.Service
	alice *models.User
	bob   *models.User
	room  *models.ChatRoom
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st := store.NewMemoryStore()
	rooms := chatroom.NewService(st, zerolog.Nop())
	chats := chat.NewService(st, rooms, zerolog.Nop())

	alice, err := st.CreateUser(ctx, "alice@example.com", "alice", "hash", "")
	require.NoError(t, err)
	bob, err := st.CreateUser(ctx, "bob@example.com", "bob", "hash", "")
	require.NoError(t, err)

	room, err := rooms.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	return &fixture{st: st, rooms: rooms, chats: chats, alice: alice, bob: bob, room: room}
}

func TestSendStoresMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sent, err := f.chats.Send(ctx, f.room.ID, f.alice.ID, "hello bob")
	require.NoError(t, err)
	require.NotZero(t, sent.ID)
	require.False(t, sent.IsDeleted)

	stored, err := f.st.GetChat(ctx, sent.ID)
	require.NoError(t, err)
	require.Equal(t, "hello bob", stored.Message)
	require.Equal(t, f.alice.ID, stored.SenderID)
}

func TestSendEmptyMessageRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.chats.Send(context.Background(), f.room.ID, f.alice.ID, "")
	require.ErrorIs(t, err, apperr.InvalidArgument)
}

func TestSendOversizedMessageRejected(t *testing.T) {
	f := newFixture(t)

	long := strings.Repeat("x", chat.MaxMessageLength+1)
	_, err := f.chats.Send(context.Background(), f.room.ID, f.alice.ID, long)
	require.ErrorIs(t, err, apperr.InvalidArgument)
}

func TestSendToUnknownRoomReportsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.chats.Send(context.Background(), 999, f.alice.ID, "anyone there?")
	require.ErrorIs(t, err, apperr.NotFoundChatRoom)
}

func TestSendByNonMemberDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mallory, err := f.st.CreateUser(ctx, "mallory@example.com", "mallory", "hash", "")
	require.NoError(t, err)

	_, err = f.chats.Send(ctx, f.room.ID, mallory.ID, "let me in")
	require.ErrorIs(t, err, apperr.AccessDenied)
}

func TestDeleteMarksChatWithoutRemoving(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sent, err := f.chats.Send(ctx, f.room.ID, f.alice.ID, "oops")
	require.NoError(t, err)

	deleted, err := f.chats.Delete(ctx, sent.ID, f.alice.ID)
	require.NoError(t, err)
	require.True(t, deleted.IsDeleted)

	// The row survives and still shows up in history.
	stored, err := f.st.GetChat(ctx, sent.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.True(t, stored.IsDeleted)

	page, err := f.rooms.RoomMessages(ctx, f.room.ID, f.bob.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.True(t, page.Items[0].IsDeleted)
}

func TestDeleteBySomeoneElseDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sent, err := f.chats.Send(ctx, f.room.ID, f.alice.ID, "mine")
	require.NoError(t, err)

	// Bob is a room member but not the sender.
	_, err = f.chats.Delete(ctx, sent.ID, f.bob.ID)
	require.ErrorIs(t, err, apperr.AccessDenied)
}

func TestDeleteUnknownChatReportsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.chats.Delete(context.Background(), 999, f.alice.ID)
	require.ErrorIs(t, err, apperr.NotFoundChat)
}

func TestDeleteIsIdempotentForSender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sent, err := f.chats.Send(ctx, f.room.ID, f.alice.ID, "twice")
	require.NoError(t, err)

	_, err = f.chats.Delete(ctx, sent.ID, f.alice.ID)
	require.NoError(t, err)
	again, err := f.chats.Delete(ctx, sent.ID, f.alice.ID)
	require.NoError(t, err)
	require.True(t, again.IsDeleted)
}
