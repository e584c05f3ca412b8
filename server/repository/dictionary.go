package repository

import (
	"context"
	"fmt"
	"strings"
)

// LookupWords resolves all words with a single IN query. Words without an
// entry are absent from the result.
func (r *Repository) LookupWords(ctx context.Context, words []string) (map[string]string, error) {
	found := make(map[string]string, len(words))
	if len(words) == 0 {
		return found, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(words)), ",")
	query := "SELECT word_name, url_path FROM corpus WHERE word_name IN (" + placeholders + ")"
	args := make([]any, len(words))
	for i, w := range words {
		args[i] = w
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("failed to query corpus", err)
	}
	defer rows.Close()

	for rows.Next() {
		var word, url string
		if err := rows.Scan(&word, &url); err != nil {
			return nil, storageError("failed to scan corpus row", err)
		}
		found[word] = url
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating over corpus", err)
	}
	return found, nil
}

func (r *Repository) UpsertWords(ctx context.Context, words map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO corpus (word_name, url_path) VALUES (?, ?)
		ON CONFLICT(word_name) DO UPDATE SET url_path = excluded.url_path
	`)
	if err != nil {
		return storageError("failed to prepare corpus upsert", err)
	}
	defer stmt.Close()

	for word, url := range words {
		if _, err := stmt.ExecContext(ctx, word, url); err != nil {
			return storageError(fmt.Sprintf("failed to upsert word '%s'", word), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storageError("failed to commit transaction", err)
	}
	return nil
}

func (r *Repository) ListWords(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT word_name, url_path FROM corpus ORDER BY word_name")
	if err != nil {
		return nil, storageError("failed to query corpus", err)
	}
	defer rows.Close()

	words := make(map[string]string)
	for rows.Next() {
		var word, url string
		if err := rows.Scan(&word, &url); err != nil {
			return nil, storageError("failed to scan corpus row", err)
		}
		words[word] = url
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating over corpus", err)
	}
	return words, nil
}
