package chatroom_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/seaStamp/YOUng-chat-backend/internal/apperr"
	"github.com/seaStamp/YOUng-chat-backend/internal/chatroom"
	"github.com/seaStamp/YOUng-chat-backend/internal/models"
	"github.com/seaStamp/YOUng-chat-backend/internal/store"
)

func newTestService(t *testing.T) (*chatroom.Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return chatroom.NewService(st, zerolog.Nop()), st
}

func seedUser(t *testing.T, st *store.MemoryStore, name string) *models.User {
	t.Helper()
	user, err := st.CreateUser(context.Background(), name+"@example.com", name, "hash", "")
	require.NoError(t, err)
	return user
}

func seedChats(t *testing.T, st *store.MemoryStore, roomID, senderID int64, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		chat := &models.Chat{ChatRoomID: roomID, SenderID: senderID, Message: fmt.Sprintf("message %d", i+1)}
		require.NoError(t, st.SaveChat(context.Background(), chat))
		ids = append(ids, chat.ID)
	}
	return ids
}

func TestCreatePersonalReturnsExistingRoom(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	first, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	again, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)

	// Reversed pair resolves to the same room.
	reversed, err := svc.CreatePersonal(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, reversed.ID)

	// No second room was written.
	rooms, err := st.ListUserRoomsBefore(ctx, alice.ID, 0, 100)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
}

func TestCreatePersonalWithSelfRejected(t *testing.T) {
	svc, st := newTestService(t)
	alice := seedUser(t, st, "alice")

	_, err := svc.CreatePersonal(context.Background(), alice.ID, alice.ID)
	require.ErrorIs(t, err, apperr.InvalidArgument)
}

func TestCreatePersonalUnknownFriend(t *testing.T) {
	svc, st := newTestService(t)
	alice := seedUser(t, st, "alice")

	_, err := svc.CreatePersonal(context.Background(), alice.ID, 999)
	require.ErrorIs(t, err, apperr.NotFoundUser)
}

func TestCreatePersonalDistinctPairsGetDistinctRooms(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	carol := seedUser(t, st, "carol")

	ab, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	ac, err := svc.CreatePersonal(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	require.NotEqual(t, ab.ID, ac.ID)
}

func TestCreateGroupCollapsesDuplicateMembers(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	carol := seedUser(t, st, "carol")

	room, err := svc.CreateGroup(ctx, alice.ID, "weekend plans", []int64{bob.ID, carol.ID, bob.ID, alice.ID})
	require.NoError(t, err)
	require.Equal(t, "weekend plans", room.Title)

	count, err := st.CountMembers(ctx, room.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
}

func TestCreateGroupUnknownMember(t *testing.T) {
	svc, st := newTestService(t)
	alice := seedUser(t, st, "alice")

	_, err := svc.CreateGroup(context.Background(), alice.ID, "ghosts", []int64{42})
	require.ErrorIs(t, err, apperr.NotFoundUser)
}

func TestGroupWithBothUsersDoesNotSatisfyPersonalLookup(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	carol := seedUser(t, st, "carol")

	group, err := svc.CreateGroup(ctx, alice.ID, "trio", []int64{bob.ID, carol.ID})
	require.NoError(t, err)

	// A three-member group containing both users is not a personal room.
	personal, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NotEqual(t, group.ID, personal.ID)
}

func TestRequireMemberDeniesOutsider(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	mallory := seedUser(t, st, "mallory")

	room, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RequireMember(ctx, room.ID, alice.ID))
	require.NoError(t, svc.RequireMember(ctx, room.ID, bob.ID))
	require.ErrorIs(t, svc.RequireMember(ctx, room.ID, mallory.ID), apperr.AccessDenied)
}

func TestEditRenamesRoom(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	room, err := svc.CreateGroup(ctx, alice.ID, "old title", []int64{bob.ID})
	require.NoError(t, err)

	edited, err := svc.Edit(ctx, room.ID, bob.ID, "new title")
	require.NoError(t, err)
	require.Equal(t, "new title", edited.Title)

	// Re-applying the same title succeeds and changes nothing further.
	edited, err = svc.Edit(ctx, room.ID, bob.ID, "new title")
	require.NoError(t, err)
	require.Equal(t, "new title", edited.Title)

	stored, err := st.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Equal(t, "new title", stored.Title)
}

func TestEditDeniedForNonMember(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	mallory := seedUser(t, st, "mallory")

	room, err := svc.CreateGroup(ctx, alice.ID, "private", []int64{bob.ID})
	require.NoError(t, err)

	_, err = svc.Edit(ctx, room.ID, mallory.ID, "hijacked")
	require.ErrorIs(t, err, apperr.AccessDenied)
}

func TestEditUnknownRoomReportsNotFound(t *testing.T) {
	svc, st := newTestService(t)
	alice := seedUser(t, st, "alice")

	// Existence wins over membership: an unknown id is NotFound even for a
	// caller who is a member of nothing.
	_, err := svc.Edit(context.Background(), 999, alice.ID, "whatever")
	require.ErrorIs(t, err, apperr.NotFoundChatRoom)
}

func TestLeaveKeepsRoomWhileMembersRemain(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	room, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	deleted, err := svc.Leave(ctx, room.ID, alice.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	stored, err := st.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	// Alice is no longer a member; Bob still is.
	require.ErrorIs(t, svc.RequireMember(ctx, room.ID, alice.ID), apperr.AccessDenied)
	require.NoError(t, svc.RequireMember(ctx, room.ID, bob.ID))
}

func TestLastLeaveDeletesRoomAndHistory(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	room, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	chatIDs := seedChats(t, st, room.ID, alice.ID, 3)

	deleted, err := svc.Leave(ctx, room.ID, alice.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	deleted, err = svc.Leave(ctx, room.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	stored, err := st.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Nil(t, stored)

	for _, id := range chatIDs {
		chat, err := st.GetChat(ctx, id)
		require.NoError(t, err)
		require.Nil(t, chat)
	}
}

func TestLeaveByNonMemberDenied(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	mallory := seedUser(t, st, "mallory")

	room, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.Leave(ctx, room.ID, mallory.ID)
	require.ErrorIs(t, err, apperr.AccessDenied)
}

func TestLeaveUnknownRoomReportsNotFound(t *testing.T) {
	svc, st := newTestService(t)
	alice := seedUser(t, st, "alice")

	_, err := svc.Leave(context.Background(), 999, alice.ID)
	require.ErrorIs(t, err, apperr.NotFoundChatRoom)
}

func TestRoomMessagesPagination(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	room, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	seedChats(t, st, room.ID, alice.ID, 20)

	// First page, no cursor: newest five.
	page, err := svc.RoomMessages(ctx, room.ID, alice.ID, 0, 5)
	require.NoError(t, err)
	require.True(t, page.HasMore)
	require.Equal(t, []int64{20, 19, 18, 17, 16}, chatIDs(page.Items))

	// Cursor is the last id of the previous page, exclusive.
	page, err = svc.RoomMessages(ctx, room.ID, alice.ID, 16, 5)
	require.NoError(t, err)
	require.True(t, page.HasMore)
	require.Equal(t, []int64{15, 14, 13, 12, 11}, chatIDs(page.Items))

	// Final page is short and reports no more.
	page, err = svc.RoomMessages(ctx, room.ID, alice.ID, 3, 5)
	require.NoError(t, err)
	require.False(t, page.HasMore)
	require.Equal(t, []int64{2, 1}, chatIDs(page.Items))
}

func TestRoomMessagesExactPageBoundary(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	room, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	seedChats(t, st, room.ID, alice.ID, 5)

	// Exactly one page of rows: full page, no lookahead row, no more.
	page, err := svc.RoomMessages(ctx, room.ID, alice.ID, 0, 5)
	require.NoError(t, err)
	require.False(t, page.HasMore)
	require.Len(t, page.Items, 5)
}

func TestRoomMessagesEmptyRoom(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	room, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	page, err := svc.RoomMessages(ctx, room.ID, alice.ID, 0, 10)
	require.NoError(t, err)
	require.False(t, page.HasMore)
	require.Empty(t, page.Items)
}

func TestRoomMessagesKeepsDeletedChats(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	room, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	ids := seedChats(t, st, room.ID, alice.ID, 3)
	require.NoError(t, st.MarkChatDeleted(ctx, ids[1]))

	page, err := svc.RoomMessages(ctx, room.ID, alice.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	require.True(t, page.Items[1].IsDeleted)
	require.False(t, page.Items[0].IsDeleted)
	require.False(t, page.Items[2].IsDeleted)
}

func TestRoomMessagesDeniedForNonMember(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	mallory := seedUser(t, st, "mallory")

	room, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	seedChats(t, st, room.ID, alice.ID, 2)

	_, err = svc.RoomMessages(ctx, room.ID, mallory.ID, 0, 10)
	require.ErrorIs(t, err, apperr.AccessDenied)
}

func TestRoomMessagesAfterRoomDeletionReportsNotFound(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	room, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.Leave(ctx, room.ID, alice.ID)
	require.NoError(t, err)
	_, err = svc.Leave(ctx, room.ID, bob.ID)
	require.NoError(t, err)

	// The room is gone; former members get NotFound, not AccessDenied.
	_, err = svc.RoomMessages(ctx, room.ID, alice.ID, 0, 10)
	require.ErrorIs(t, err, apperr.NotFoundChatRoom)
}

func TestRoomDetailReturnsFullHistoryOldestFirst(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	room, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	seedChats(t, st, room.ID, alice.ID, 15)

	got, chats, err := svc.RoomDetail(ctx, room.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, room.ID, got.ID)
	require.Len(t, chats, 15)
	require.Equal(t, []int64{1, 2, 3}, chatIDs(chats[:3]))
	require.Equal(t, "alice", chats[0].Username)
}

func TestRoomDetailEmptyRoomReportsNotFoundChat(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	room, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, _, err = svc.RoomDetail(ctx, room.ID, alice.ID)
	require.ErrorIs(t, err, apperr.NotFoundChat)
}

func TestListRoomsOrderedByLatestActivity(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	carol := seedUser(t, st, "carol")

	first, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	second, err := svc.CreatePersonal(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	empty, err := svc.CreateGroup(ctx, alice.ID, "quiet", []int64{bob.ID})
	require.NoError(t, err)

	seedChats(t, st, first.ID, alice.ID, 1)  // chat 1
	seedChats(t, st, second.ID, carol.ID, 1) // chat 2

	page, err := svc.ListRooms(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	require.False(t, page.HasMore)
	require.Len(t, page.Items, 3)

	// Most recent activity first; the silent room sorts last with no
	// preview.
	require.Equal(t, second.ID, page.Items[0].Room.ID)
	require.Equal(t, first.ID, page.Items[1].Room.ID)
	require.Equal(t, empty.ID, page.Items[2].Room.ID)
	require.NotNil(t, page.Items[0].Last)
	require.EqualValues(t, 2, page.Items[0].Last.ChatID)
	require.Nil(t, page.Items[2].Last)
}

func TestListRoomsIgnoresDeletedChatsInPreview(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	room, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	ids := seedChats(t, st, room.ID, alice.ID, 2)
	require.NoError(t, st.MarkChatDeleted(ctx, ids[1]))

	page, err := svc.ListRooms(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].Last)
	require.Equal(t, ids[0], page.Items[0].Last.ChatID)
}

func TestListRoomsCursorPagination(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	// Six rooms, each with one message; later rooms have higher chat ids.
	roomIDs := make([]int64, 0, 6)
	for i := 0; i < 6; i++ {
		room, err := svc.CreateGroup(ctx, alice.ID, fmt.Sprintf("room %d", i+1), []int64{bob.ID})
		require.NoError(t, err)
		seedChats(t, st, room.ID, alice.ID, 1)
		roomIDs = append(roomIDs, room.ID)
	}

	page, err := svc.ListRooms(ctx, alice.ID, 0, 4)
	require.NoError(t, err)
	require.True(t, page.HasMore)
	require.Len(t, page.Items, 4)
	require.Equal(t, roomIDs[5], page.Items[0].Room.ID)
	require.Equal(t, roomIDs[2], page.Items[3].Room.ID)

	cursor := page.Items[3].Last.ChatID
	page, err = svc.ListRooms(ctx, alice.ID, cursor, 4)
	require.NoError(t, err)
	require.False(t, page.HasMore)
	require.Len(t, page.Items, 2)
	require.Equal(t, roomIDs[1], page.Items[0].Room.ID)
	require.Equal(t, roomIDs[0], page.Items[1].Room.ID)
}

func TestListRoomsOnlyShowsOwnRooms(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	carol := seedUser(t, st, "carol")

	_, err := svc.CreatePersonal(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.CreatePersonal(ctx, bob.ID, carol.ID)
	require.NoError(t, err)

	page, err := svc.ListRooms(ctx, carol.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}

func chatIDs(chats []models.ChatDetail) []int64 {
	ids := make([]int64, len(chats))
	for i, c := range chats {
		ids[i] = c.ChatID
	}
	return ids
}
