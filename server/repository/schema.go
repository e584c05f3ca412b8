package repository

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"sync"

	"github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3_with_go_func"

var registerOnce sync.Once

func regex(re, s string) (bool, error) {
	return regexp.MatchString(re, s)
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	no         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    TEXT NOT NULL UNIQUE,
	full_name  TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS rooms (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_no1   INTEGER NOT NULL REFERENCES users(no),
	user_no2   INTEGER NOT NULL REFERENCES users(no),
	created_at DATETIME NOT NULL,
	UNIQUE (user_no1, user_no2)
);
CREATE TABLE IF NOT EXISTS messages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id     INTEGER NOT NULL REFERENCES rooms(id),
	user_no     INTEGER NOT NULL REFERENCES users(no),
	content     TEXT NOT NULL,
	created_at  DATETIME NOT NULL,
	create_user TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_room ON messages (room_id, id);
CREATE TABLE IF NOT EXISTS corpus (
	word_name TEXT PRIMARY KEY,
	url_path  TEXT NOT NULL
);
`

// Open opens the sqlite database at path with a regexp() SQL function
// available, and creates the tables if needed.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	registerOnce.Do(func() {
		sql.Register(driverName,
			&sqlite3.SQLiteDriver{
				ConnectHook: func(conn *sqlite3.SQLiteConn) error {
					return conn.RegisterFunc("regexp", regex, true)
				},
			})
	})

	params := url.Values{}
	params.Set("_busy_timeout", "5000")
	params.Set("_journal_mode", "WAL")
	params.Set("_foreign_keys", "1")
	conn, err := sql.Open(driverName, "file:"+path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
