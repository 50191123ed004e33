// Package versionstore maintains the append-only content-version log for
// prompts.
package versionstore

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dverne/promptdeck/internal/models"
	"github.com/dverne/promptdeck/internal/storage"
)

// StorageKey is the persistence key for the version log.
const StorageKey = "versions"

// Store owns the flat sequence of Version records. Mutations are serialized
// by an internal mutex; the in-memory log commits before the persisted write
// and a failed write is logged, never rolled back.
type Store struct {
	mu       sync.Mutex
	versions []models.Version // newest first
	provider storage.Provider
	logger   *slog.Logger
}

// Load reads the persisted version log. A read failure substitutes the
// empty log.
func Load(provider storage.Provider, logger *slog.Logger) *Store {
	s := &Store{provider: provider, logger: logger}
	var versions []models.Version
	if err := provider.Load(StorageKey, &versions); err != nil {
		logger.Error("versions: load failed, starting empty", slog.String("error", err.Error()))
		versions = nil
	}
	s.versions = versions
	return s
}

// Reload replaces the in-memory log with the persisted state. Used when the
// backing file changed externally.
func (s *Store) Reload() error {
	var versions []models.Version
	if err := s.provider.Load(StorageKey, &versions); err != nil {
		return err
	}
	s.mu.Lock()
	s.versions = versions
	s.mu.Unlock()
	return nil
}

// Add records a snapshot of content that is about to be replaced. It is a
// no-op when content is blank after trimming, or when the most recent
// version for the prompt already holds identical content (dedup applies to
// the immediately preceding snapshot only). createdAt is the timestamp of
// the edit being captured. Reports whether a version was recorded.
func (s *Store) Add(promptID, content string, createdAt time.Time) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if latest := s.latestLocked(promptID); latest != nil && latest.Content == content {
		return false
	}

	v := models.Version{
		ID:        uuid.NewString(),
		PromptID:  promptID,
		Content:   content,
		CreatedAt: createdAt,
	}
	s.versions = append([]models.Version{v}, s.versions...)
	s.persistLocked()

	s.logger.Debug("versions: recorded", slog.String("prompt_id", promptID), slog.String("version_id", v.ID))
	return true
}

// ForPrompt returns the versions for a prompt, newest first.
func (s *Store) ForPrompt(promptID string) []models.Version {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Version
	for _, v := range s.versions {
		if v.PromptID == promptID {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Count returns the total number of stored versions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.versions)
}

// latestLocked finds the version with the greatest CreatedAt for a prompt.
func (s *Store) latestLocked(promptID string) *models.Version {
	var latest *models.Version
	for i := range s.versions {
		v := &s.versions[i]
		if v.PromptID != promptID {
			continue
		}
		if latest == nil || v.CreatedAt.After(latest.CreatedAt) {
			latest = v
		}
	}
	return latest
}

func (s *Store) persistLocked() {
	if err := s.provider.Save(StorageKey, s.versions); err != nil {
		s.logger.Error("versions: persist failed", slog.String("error", err.Error()))
	}
}
