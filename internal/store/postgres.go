package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seaStamp/YOUng-chat-backend/internal/models"
)

type pgTxKey struct{}

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	store := &PostgresStore{pool: pool}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		username TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		profile_image TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS chat_rooms (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS memberships (
		id BIGSERIAL PRIMARY KEY,
		chat_room_id BIGINT NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (chat_room_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS chats (
		id BIGSERIAL PRIMARY KEY,
		chat_room_id BIGINT NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
		sender_id BIGINT NOT NULL REFERENCES users(id),
		message TEXT NOT NULL,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_memberships_user ON memberships(user_id);
	CREATE INDEX IF NOT EXISTS idx_chats_room_id ON chats(chat_room_id, id);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// pgQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// q returns the transaction bound to ctx, or the pool.
func (s *PostgresStore) q(ctx context.Context) pgQuerier {
	if tx, ok := ctx.Value(pgTxKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

// WithTx runs fn within a single transaction carried on the context.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(pgTxKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(context.WithValue(ctx, pgTxKey{}, tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateUser creates a new user record.
func (s *PostgresStore) CreateUser(ctx context.Context, email, username, passwordHash, profileImage string) (*models.User, error) {
	user := &models.User{}
	err := s.q(ctx).QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, profile_image)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, username, password_hash, profile_image, created_at
	`, email, username, passwordHash, profileImage).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.ProfileImage,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *PostgresStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.scanUserRow(s.q(ctx).QueryRow(ctx, `
		SELECT id, email, username, password_hash, profile_image, created_at
		FROM users WHERE id = $1
	`, id))
}

// GetUserByEmail retrieves a user by email.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUserRow(s.q(ctx).QueryRow(ctx, `
		SELECT id, email, username, password_hash, profile_image, created_at
		FROM users WHERE email = $1
	`, email))
}

func (s *PostgresStore) scanUserRow(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.ProfileImage,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// SaveRoom inserts a new room and assigns its ID.
func (s *PostgresStore) SaveRoom(ctx context.Context, room *models.ChatRoom) error {
	return s.q(ctx).QueryRow(ctx, `
		INSERT INTO chat_rooms (title)
		VALUES ($1)
		RETURNING id, created_at
	`, room.Title).Scan(&room.ID, &room.CreatedAt)
}

// GetRoom retrieves a room by ID.
func (s *PostgresStore) GetRoom(ctx context.Context, id int64) (*models.ChatRoom, error) {
	room := &models.ChatRoom{}
	err := s.q(ctx).QueryRow(ctx, `
		SELECT id, title, created_at FROM chat_rooms WHERE id = $1
	`, id).Scan(&room.ID, &room.Title, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// UpdateRoomTitle sets the room's title.
func (s *PostgresStore) UpdateRoomTitle(ctx context.Context, id int64, title string) error {
	_, err := s.q(ctx).Exec(ctx, `
		UPDATE chat_rooms SET title = $1 WHERE id = $2
	`, title, id)
	return err
}

// DeleteRoom removes the room; memberships and chats cascade.
func (s *PostgresStore) DeleteRoom(ctx context.Context, id int64) error {
	_, err := s.q(ctx).Exec(ctx, `DELETE FROM chat_rooms WHERE id = $1`, id)
	return err
}

// FindPersonalRoom looks up the room whose member set is exactly the two
// given users, in either order.
func (s *PostgresStore) FindPersonalRoom(ctx context.Context, userA, userB int64) (*models.ChatRoom, error) {
	room := &models.ChatRoom{}
	err := s.q(ctx).QueryRow(ctx, `
		SELECT r.id, r.title, r.created_at
		FROM chat_rooms r
		JOIN memberships m1 ON m1.chat_room_id = r.id AND m1.user_id = $1
		JOIN memberships m2 ON m2.chat_room_id = r.id AND m2.user_id = $2
		WHERE (SELECT COUNT(*) FROM memberships m WHERE m.chat_room_id = r.id) = 2
		LIMIT 1
	`, userA, userB).Scan(&room.ID, &room.Title, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// SaveMemberships inserts membership rows in a batch.
func (s *PostgresStore) SaveMemberships(ctx context.Context, members []models.Membership) error {
	q := s.q(ctx)
	for i := range members {
		err := q.QueryRow(ctx, `
			INSERT INTO memberships (chat_room_id, user_id)
			VALUES ($1, $2)
			RETURNING id, created_at
		`, members[i].ChatRoomID, members[i].UserID).Scan(&members[i].ID, &members[i].CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

// IsMember reports whether the user has a membership row for the room.
func (s *PostgresStore) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	var exists bool
	err := s.q(ctx).QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM memberships WHERE chat_room_id = $1 AND user_id = $2)
	`, roomID, userID).Scan(&exists)
	return exists, err
}

// GetMembership retrieves the membership row for (room, user).
func (s *PostgresStore) GetMembership(ctx context.Context, roomID, userID int64) (*models.Membership, error) {
	m := &models.Membership{}
	err := s.q(ctx).QueryRow(ctx, `
		SELECT id, chat_room_id, user_id, created_at
		FROM memberships WHERE chat_room_id = $1 AND user_id = $2
	`, roomID, userID).Scan(&m.ID, &m.ChatRoomID, &m.UserID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// DeleteMembership removes the membership row for (room, user).
func (s *PostgresStore) DeleteMembership(ctx context.Context, roomID, userID int64) error {
	_, err := s.q(ctx).Exec(ctx, `
		DELETE FROM memberships WHERE chat_room_id = $1 AND user_id = $2
	`, roomID, userID)
	return err
}

// CountMembers returns the number of memberships for a room.
func (s *PostgresStore) CountMembers(ctx context.Context, roomID int64) (int64, error) {
	var count int64
	err := s.q(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM memberships WHERE chat_room_id = $1
	`, roomID).Scan(&count)
	return count, err
}

// SaveChat inserts a new chat and assigns its ID.
func (s *PostgresStore) SaveChat(ctx context.Context, chat *models.Chat) error {
	return s.q(ctx).QueryRow(ctx, `
		INSERT INTO chats (chat_room_id, sender_id, message)
		VALUES ($1, $2, $3)
		RETURNING id, is_deleted, created_at
	`, chat.ChatRoomID, chat.SenderID, chat.Message).Scan(&chat.ID, &chat.IsDeleted, &chat.CreatedAt)
}

// GetChat retrieves a chat by ID.
func (s *PostgresStore) GetChat(ctx context.Context, id int64) (*models.Chat, error) {
	chat := &models.Chat{}
	err := s.q(ctx).QueryRow(ctx, `
		SELECT id, chat_room_id, sender_id, message, is_deleted, created_at
		FROM chats WHERE id = $1
	`, id).Scan(&chat.ID, &chat.ChatRoomID, &chat.SenderID, &chat.Message, &chat.IsDeleted, &chat.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return chat, nil
}

// MarkChatDeleted soft-deletes a chat; the row stays in pagination results.
func (s *PostgresStore) MarkChatDeleted(ctx context.Context, id int64) error {
	_, err := s.q(ctx).Exec(ctx, `
		UPDATE chats SET is_deleted = TRUE WHERE id = $1
	`, id)
	return err
}

// ListRoomChats returns the full history of a room, oldest first.
func (s *PostgresStore) ListRoomChats(ctx context.Context, roomID int64) ([]models.ChatDetail, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT c.id, c.sender_id, u.username, u.profile_image, c.message, c.is_deleted, c.created_at
		FROM chats c
		JOIN users u ON u.id = c.sender_id
		WHERE c.chat_room_id = $1
		ORDER BY c.id ASC
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPgChatDetails(rows)
}

// ListRoomChatsBefore returns a seek page of a room's chats, newest first.
func (s *PostgresStore) ListRoomChatsBefore(ctx context.Context, roomID, beforeID int64, limit int) ([]models.ChatDetail, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT c.id, c.sender_id, u.username, u.profile_image, c.message, c.is_deleted, c.created_at
		FROM chats c
		JOIN users u ON u.id = c.sender_id
		WHERE c.chat_room_id = $1 AND ($2 = 0 OR c.id < $2)
		ORDER BY c.id DESC
		LIMIT $3
	`, roomID, beforeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPgChatDetails(rows)
}

func scanPgChatDetails(rows pgx.Rows) ([]models.ChatDetail, error) {
	var chats []models.ChatDetail
	for rows.Next() {
		var c models.ChatDetail
		err := rows.Scan(
			&c.ChatID,
			&c.SenderID,
			&c.Username,
			&c.ProfileImage,
			&c.Message,
			&c.IsDeleted,
			&c.SentAt,
		)
		if err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// ListUserRoomsBefore returns a seek page of the user's rooms ordered by
// latest non-deleted chat id descending, each joined with that chat.
func (s *PostgresStore) ListUserRoomsBefore(ctx context.Context, userID, beforeChatID int64, limit int) ([]models.RoomWithLastChat, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT r.id, r.title, r.created_at,
		       COALESCE(lc.last_chat_id, 0),
		       COALESCE(c.message, ''), COALESCE(c.is_deleted, FALSE), COALESCE(c.created_at, r.created_at)
		FROM chat_rooms r
		JOIN memberships m ON m.chat_room_id = r.id AND m.user_id = $1
		LEFT JOIN (
			SELECT chat_room_id, MAX(id) AS last_chat_id
			FROM chats WHERE is_deleted = FALSE
			GROUP BY chat_room_id
		) lc ON lc.chat_room_id = r.id
		LEFT JOIN chats c ON c.id = lc.last_chat_id
		WHERE ($2 = 0 OR COALESCE(lc.last_chat_id, 0) < $2)
		ORDER BY COALESCE(lc.last_chat_id, 0) DESC, r.id DESC
		LIMIT $3
	`, userID, beforeChatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.RoomWithLastChat
	for rows.Next() {
		var rw models.RoomWithLastChat
		err := rows.Scan(
			&rw.Room.ID,
			&rw.Room.Title,
			&rw.Room.CreatedAt,
			&rw.LastChatID,
			&rw.LastMessage,
			&rw.LastDeleted,
			&rw.LastSentAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, rw)
	}
	return result, rows.Err()
}
