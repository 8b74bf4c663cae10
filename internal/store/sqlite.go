package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/seaStamp/YOUng-chat-backend/internal/models"
)

type sqliteTxKey struct{}

// SQLiteStore handles SQLite database operations. It is the default backend
// when no DATABASE_URL is configured.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/youngchat.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/youngchat.db"
	}

	// Ensure directory exists, except for in-memory databases
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	// Every pooled connection to :memory: would get its own database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT UNIQUE NOT NULL,
		username TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		profile_image TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS chat_rooms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS memberships (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_room_id INTEGER NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users(id),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (chat_room_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS chats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_room_id INTEGER NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
		sender_id INTEGER NOT NULL REFERENCES users(id),
		message TEXT NOT NULL,
		is_deleted INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_memberships_user ON memberships(user_id);
	CREATE INDEX IF NOT EXISTS idx_chats_room_id ON chats(chat_room_id, id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// sqliteQuerier is satisfied by both *sql.DB and *sql.Tx.
type sqliteQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q returns the transaction bound to ctx, or the plain connection.
func (s *SQLiteStore) q(ctx context.Context) sqliteQuerier {
	if tx, ok := ctx.Value(sqliteTxKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

// WithTx runs fn within a single transaction carried on the context.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(sqliteTxKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(context.WithValue(ctx, sqliteTxKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateUser creates a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, email, username, passwordHash, profileImage string) (*models.User, error) {
	now := time.Now().UTC()

	res, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO users (email, username, password_hash, profile_image, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, email, username, passwordHash, profileImage, now)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:           id,
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		ProfileImage: profileImage,
		CreatedAt:    now,
	}, nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(s.q(ctx).QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, profile_image, created_at
		FROM users WHERE id = ?
	`, id))
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.q(ctx).QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, profile_image, created_at
		FROM users WHERE email = ?
	`, email))
}

func scanUser(row *sql.Row) (*models.User, error) {
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
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// SaveRoom inserts a new room and assigns its ID.
func (s *SQLiteStore) SaveRoom(ctx context.Context, room *models.ChatRoom) error {
	now := time.Now().UTC()

	res, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO chat_rooms (title, created_at) VALUES (?, ?)
	`, room.Title, now)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	room.ID = id
	room.CreatedAt = now
	return nil
}

// GetRoom retrieves a room by ID.
func (s *SQLiteStore) GetRoom(ctx context.Context, id int64) (*models.ChatRoom, error) {
	room := &models.ChatRoom{}
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, title, created_at FROM chat_rooms WHERE id = ?
	`, id).Scan(&room.ID, &room.Title, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// UpdateRoomTitle sets the room's title.
func (s *SQLiteStore) UpdateRoomTitle(ctx context.Context, id int64, title string) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		UPDATE chat_rooms SET title = ? WHERE id = ?
	`, title, id)
	return err
}

// DeleteRoom removes the room; memberships and chats cascade.
func (s *SQLiteStore) DeleteRoom(ctx context.Context, id int64) error {
	_, err := s.q(ctx).ExecContext(ctx, `DELETE FROM chat_rooms WHERE id = ?`, id)
	return err
}

// FindPersonalRoom looks up the room whose member set is exactly the two
// given users, in either order.
func (s *SQLiteStore) FindPersonalRoom(ctx context.Context, userA, userB int64) (*models.ChatRoom, error) {
	room := &models.ChatRoom{}
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT r.id, r.title, r.created_at
		FROM chat_rooms r
		JOIN memberships m1 ON m1.chat_room_id = r.id AND m1.user_id = ?
		JOIN memberships m2 ON m2.chat_room_id = r.id AND m2.user_id = ?
		WHERE (SELECT COUNT(*) FROM memberships m WHERE m.chat_room_id = r.id) = 2
		LIMIT 1
	`, userA, userB).Scan(&room.ID, &room.Title, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// SaveMemberships inserts membership rows in a batch.
func (s *SQLiteStore) SaveMemberships(ctx context.Context, members []models.Membership) error {
	now := time.Now().UTC()
	q := s.q(ctx)

	for i := range members {
		res, err := q.ExecContext(ctx, `
			INSERT INTO memberships (chat_room_id, user_id, created_at)
			VALUES (?, ?, ?)
		`, members[i].ChatRoomID, members[i].UserID, now)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		members[i].ID = id
		members[i].CreatedAt = now
	}
	return nil
}

// IsMember reports whether the user has a membership row for the room.
func (s *SQLiteStore) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	var exists int
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM memberships WHERE chat_room_id = ? AND user_id = ?)
	`, roomID, userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists == 1, nil
}

// GetMembership retrieves the membership row for (room, user).
func (s *SQLiteStore) GetMembership(ctx context.Context, roomID, userID int64) (*models.Membership, error) {
	m := &models.Membership{}
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, chat_room_id, user_id, created_at
		FROM memberships WHERE chat_room_id = ? AND user_id = ?
	`, roomID, userID).Scan(&m.ID, &m.ChatRoomID, &m.UserID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// DeleteMembership removes the membership row for (room, user).
func (s *SQLiteStore) DeleteMembership(ctx context.Context, roomID, userID int64) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		DELETE FROM memberships WHERE chat_room_id = ? AND user_id = ?
	`, roomID, userID)
	return err
}

// CountMembers returns the number of memberships for a room.
func (s *SQLiteStore) CountMembers(ctx context.Context, roomID int64) (int64, error) {
	var count int64
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM memberships WHERE chat_room_id = ?
	`, roomID).Scan(&count)
	return count, err
}

// SaveChat inserts a new chat and assigns its ID.
func (s *SQLiteStore) SaveChat(ctx context.Context, chat *models.Chat) error {
	now := time.Now().UTC()

	res, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO chats (chat_room_id, sender_id, message, is_deleted, created_at)
		VALUES (?, ?, ?, 0, ?)
	`, chat.ChatRoomID, chat.SenderID, chat.Message, now)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	chat.ID = id
	chat.IsDeleted = false
	chat.CreatedAt = now
	return nil
}

// GetChat retrieves a chat by ID.
func (s *SQLiteStore) GetChat(ctx context.Context, id int64) (*models.Chat, error) {
	chat := &models.Chat{}
	var deleted int
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, chat_room_id, sender_id, message, is_deleted, created_at
		FROM chats WHERE id = ?
	`, id).Scan(&chat.ID, &chat.ChatRoomID, &chat.SenderID, &chat.Message, &deleted, &chat.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	chat.IsDeleted = deleted == 1
	return chat, nil
}

// MarkChatDeleted soft-deletes a chat; the row stays in pagination results.
func (s *SQLiteStore) MarkChatDeleted(ctx context.Context, id int64) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		UPDATE chats SET is_deleted = 1 WHERE id = ?
	`, id)
	return err
}

// ListRoomChats returns the full history of a room, oldest first.
func (s *SQLiteStore) ListRoomChats(ctx context.Context, roomID int64) ([]models.ChatDetail, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT c.id, c.sender_id, u.username, u.profile_image, c.message, c.is_deleted, c.created_at
		FROM chats c
		JOIN users u ON u.id = c.sender_id
		WHERE c.chat_room_id = ?
		ORDER BY c.id ASC
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChatDetails(rows)
}

// ListRoomChatsBefore returns a seek page of a room's chats, newest first.
func (s *SQLiteStore) ListRoomChatsBefore(ctx context.Context, roomID, beforeID int64, limit int) ([]models.ChatDetail, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT c.id, c.sender_id, u.username, u.profile_image, c.message, c.is_deleted, c.created_at
		FROM chats c
		JOIN users u ON u.id = c.sender_id
		WHERE c.chat_room_id = ? AND (? = 0 OR c.id < ?)
		ORDER BY c.id DESC
		LIMIT ?
	`, roomID, beforeID, beforeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChatDetails(rows)
}

func scanChatDetails(rows *sql.Rows) ([]models.ChatDetail, error) {
	var chats []models.ChatDetail
	for rows.Next() {
		var c models.ChatDetail
		var deleted int
		err := rows.Scan(
			&c.ChatID,
			&c.SenderID,
			&c.Username,
			&c.ProfileImage,
			&c.Message,
			&deleted,
			&c.SentAt,
		)
		if err != nil {
			return nil, err
		}
		c.IsDeleted = deleted == 1
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// ListUserRoomsBefore returns a seek page of the user's rooms ordered by
// latest non-deleted chat id descending, each joined with that chat.
func (s *SQLiteStore) ListUserRoomsBefore(ctx context.Context, userID, beforeChatID int64, limit int) ([]models.RoomWithLastChat, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT r.id, r.title, r.created_at,
		       COALESCE(lc.last_chat_id, 0),
		       COALESCE(c.message, ''), COALESCE(c.is_deleted, 0), COALESCE(c.created_at, r.created_at)
		FROM chat_rooms r
		JOIN memberships m ON m.chat_room_id = r.id AND m.user_id = ?
		LEFT JOIN (
			SELECT chat_room_id, MAX(id) AS last_chat_id
			FROM chats WHERE is_deleted = 0
			GROUP BY chat_room_id
		) lc ON lc.chat_room_id = r.id
		LEFT JOIN chats c ON c.id = lc.last_chat_id
		WHERE (? = 0 OR COALESCE(lc.last_chat_id, 0) < ?)
		ORDER BY COALESCE(lc.last_chat_id, 0) DESC, r.id DESC
		LIMIT ?
	`, userID, beforeChatID, beforeChatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.RoomWithLastChat
	for rows.Next() {
		var rw models.RoomWithLastChat
		var deleted int
		err := rows.Scan(
			&rw.Room.ID,
			&rw.Room.Title,
			&rw.Room.CreatedAt,
			&rw.LastChatID,
			&rw.LastMessage,
			&deleted,
			&rw.LastSentAt,
		)
		if err != nil {
			return nil, err
		}
		rw.LastDeleted = deleted == 1
		result = append(result, rw)
	}
	return result, rows.Err()
}
