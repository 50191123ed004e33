package index

import (
	"log/slog"
	"time"

	"github.com/dverne/promptdeck/internal/checksum"
	"github.com/dverne/promptdeck/internal/models"
)

// Sync brings the index up to date with the item collection:
//   - new/changed prompts are upserted
//   - prompts no longer in the collection are deleted
//
// Folders never enter the index.
func Sync(db *DB, items []models.Item, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	live := make(map[string]struct{}, len(items))
	for _, it := range items {
		if !it.IsPrompt() {
			continue
		}
		live[it.ID] = struct{}{}

		cs := promptChecksum(it)
		if checksums[it.ID] == cs {
			continue
		}
		if err := IndexItem(db, it); err != nil {
			logger.Warn("sync: index failed", slog.String("id", it.ID), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("id", it.ID))
		}
	}

	// Remove stale entries.
	for id := range checksums {
		if _, ok := live[id]; !ok {
			if err := db.DeletePrompt(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("id", id))
			}
		}
	}

	return nil
}

// IndexItem upserts a single prompt into the index.
func IndexItem(db *DB, it models.Item) error {
	updated := it.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	return db.UpsertPrompt(PromptRow{
		ID:        it.ID,
		Title:     it.Title,
		Checksum:  promptChecksum(it),
		UpdatedAt: updated,
	}, it.Content)
}

func promptChecksum(it models.Item) string {
	return checksum.Sum([]byte(it.Title + "\x00" + it.Content))
}
