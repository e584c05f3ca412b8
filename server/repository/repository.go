package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ponyo877/signtalk/server/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func storageError(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, domain.ErrStorageFailure, err)
}

func (r *Repository) LookupUser(ctx context.Context, userID string) (domain.User, error) {
	query := "SELECT no, user_id, full_name FROM users WHERE user_id = ?"
	var user domain.User
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&user.No, &user.UserID, &user.FullName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}
		return domain.User{}, storageError("failed to query user", err)
	}
	return user, nil
}

func (r *Repository) CreateUser(ctx context.Context, userID, fullName string) (domain.User, error) {
	query := `
		INSERT INTO users (user_id, full_name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET full_name = excluded.full_name
	`
	if _, err := r.db.ExecContext(ctx, query, userID, fullName, time.Now()); err != nil {
		return domain.User{}, storageError(fmt.Sprintf("failed to insert user '%s'", userID), err)
	}
	return r.LookupUser(ctx, userID)
}

// LookupOrCreateRoom returns the room shared by two users. The pair is stored
// ordered by user number, so either argument order finds the same room.
func (r *Repository) LookupOrCreateRoom(ctx context.Context, userA, userB string) (int, error) {
	a, err := r.LookupUser(ctx, userA)
	if err != nil {
		return 0, notFoundAsUser(err)
	}
	b, err := r.LookupUser(ctx, userB)
	if err != nil {
		return 0, notFoundAsUser(err)
	}
	no1, no2 := a.No, b.No
	if no1 > no2 {
		no1, no2 = no2, no1
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	query := "INSERT OR IGNORE INTO rooms (user_no1, user_no2, created_at) VALUES (?, ?, ?)"
	if _, err := tx.ExecContext(ctx, query, no1, no2, time.Now()); err != nil {
		return 0, storageError("failed to insert room", err)
	}
	var roomID int
	query = "SELECT id FROM rooms WHERE user_no1 = ? AND user_no2 = ?"
	if err := tx.QueryRowContext(ctx, query, no1, no2).Scan(&roomID); err != nil {
		return 0, storageError("failed to query room", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, storageError("failed to commit transaction", err)
	}
	return roomID, nil
}

func notFoundAsUser(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %w", domain.ErrUserNotFound, err)
	}
	return err
}

func (r *Repository) InsertMessage(ctx context.Context, roomID, userNo int, content string) (domain.Message, error) {
	query := `
		INSERT INTO messages (room_id, user_no, content, created_at, create_user)
		SELECT ?, no, ?, ?, user_id FROM users WHERE no = ?
	`
	now := time.Now()
	res, err := r.db.ExecContext(ctx, query, roomID, content, now, userNo)
	if err != nil {
		return domain.Message{}, storageError(fmt.Sprintf("failed to insert message into room %d", roomID), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Message{}, fmt.Errorf("user no %d: %w", userNo, domain.ErrUserNotFound)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Message{}, storageError("failed to read message id", err)
	}
	return domain.Message{
		ID:        int(id),
		RoomID:    roomID,
		Content:   content,
		CreatedAt: now,
	}, nil
}

// ListMessages returns the newest limit messages of a room, oldest first.
func (r *Repository) ListMessages(ctx context.Context, roomID, limit int) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.room_id, u.user_id, u.full_name, m.content, m.created_at
		FROM messages m JOIN users u ON u.no = m.user_no
		WHERE m.room_id = ?
		ORDER BY m.id DESC
		LIMIT ?
	`
	return r.queryMessages(ctx, query, roomID, limit)
}

// SearchMessages returns a room's messages whose content matches pattern,
// a Go regular expression evaluated by the regexp() SQL function.
func (r *Repository) SearchMessages(ctx context.Context, roomID int, pattern string, limit int) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.room_id, u.user_id, u.full_name, m.content, m.created_at
		FROM messages m JOIN users u ON u.no = m.user_no
		WHERE m.room_id = ? AND regexp(?, m.content)
		ORDER BY m.id DESC
		LIMIT ?
	`
	return r.queryMessages(ctx, query, roomID, pattern, limit)
}

func (r *Repository) queryMessages(ctx context.Context, query string, args ...any) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("failed to query messages", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Sender, &m.SenderName, &m.Content, &m.CreatedAt); err != nil {
			return nil, storageError("failed to scan message", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating over messages", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
