package index

import (
	"fmt"
	"time"
)

// PromptRow represents a row in the prompts table.
type PromptRow struct {
	ID        string
	Title     string
	Checksum  string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertPrompt inserts or replaces a prompt and its FTS entry within a
// transaction.
func (db *DB) UpsertPrompt(p PromptRow, content string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO prompts (id, title, content, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title      = excluded.title,
			content    = excluded.content,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, p.ID, p.Title, content, p.Checksum, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert prompt: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, p.ID, p.Title, content); err != nil {
		return err
	}

	return tx.Commit()
}

// DeletePrompt removes a prompt and its FTS entry.
func (db *DB) DeletePrompt(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM prompts WHERE id = ?`, id)

	return tx.Commit()
}

// AllChecksums returns the stored checksum for every indexed prompt.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM prompts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}
