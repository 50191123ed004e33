// Package itemstore owns the authoritative collection of prompts and
// folders and enforces the tree invariants: unique ids, folder-only
// parentage, and an acyclic parent graph.
package itemstore

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dverne/promptdeck/internal/apperr"
	"github.com/dverne/promptdeck/internal/models"
	"github.com/dverne/promptdeck/internal/storage"
	"github.com/dverne/promptdeck/internal/versionstore"
)

// StorageKey is the persistence key for the item collection.
const StorageKey = "items"

// Position selects where dragged items land relative to the move target.
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
	PositionInside Position = "inside"
)

// Patch carries the mutable fields of an item. Nil fields are left
// untouched. Reparenting goes exclusively through MoveItems.
type Patch struct {
	Title   *string
	Content *string
}

// Store holds the flat ordered item sequence. Mutations are serialized by a
// mutex and applied to memory first; the persisted write follows and its
// failure is logged without rollback.
type Store struct {
	mu       sync.Mutex
	items    []models.Item // newest creations first
	provider storage.Provider
	versions *versionstore.Store
	logger   *slog.Logger
}

// Load reads the persisted collection. A read failure substitutes the empty
// collection.
func Load(provider storage.Provider, versions *versionstore.Store, logger *slog.Logger) *Store {
	s := &Store{provider: provider, versions: versions, logger: logger}
	var items []models.Item
	if err := provider.Load(StorageKey, &items); err != nil {
		logger.Error("items: load failed, starting empty", slog.String("error", err.Error()))
		items = nil
	}
	s.items = items
	return s
}

// Reload replaces the in-memory collection with the persisted state. Used
// when the backing file changed externally.
func (s *Store) Reload() error {
	var items []models.Item
	if err := s.provider.Load(StorageKey, &items); err != nil {
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Items returns a copy of the collection in stored order.
func (s *Store) Items() []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Item, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the item with the given id.
func (s *Store) Get(id string) (models.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOfLocked(id); i >= 0 {
		return s.items[i], true
	}
	return models.Item{}, false
}

// CreatePrompt builds a new empty prompt and prepends it to the collection.
// A parentID that does not resolve to an existing folder falls back to the
// root level rather than failing.
func (s *Store) CreatePrompt(parentID *string) models.Item {
	return s.create(models.KindPrompt, parentID)
}

// CreateFolder builds a new folder and prepends it to the collection, with
// the same root fallback as CreatePrompt.
func (s *Store) CreateFolder(parentID *string) models.Item {
	return s.create(models.KindFolder, parentID)
}

func (s *Store) create(kind string, parentID *string) models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if parentID != nil && !s.isFolderLocked(*parentID) {
		s.logger.Warn("items: invalid parent on create, falling back to root",
			slog.String("kind", kind), slog.String("parent_id", *parentID))
		parentID = nil
	}

	now := time.Now()
	item := models.Item{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     models.NormalizeTitle(kind, ""),
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.items = append([]models.Item{item}, s.items...)
	s.persistLocked()

	s.logger.Info("items: created", slog.String("kind", kind), slog.String("id", item.ID))
	return item
}

// UpdateItem merges the patch into the item and refreshes UpdatedAt. When a
// prompt's content changes and the previous content was non-blank, the
// previous content is snapshotted into the version store with the previous
// UpdatedAt, before the new value is applied. A missing id is a silent
// no-op; the returned bool reports whether the item was found.
func (s *Store) UpdateItem(id string, patch Patch) (models.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return models.Item{}, false
	}
	item := &s.items[i]

	if patch.Content != nil && item.IsPrompt() {
		prev := item.Content
		if strings.TrimSpace(prev) != "" && prev != *patch.Content {
			s.versions.Add(item.ID, prev, item.UpdatedAt)
		}
		item.Content = *patch.Content
	}
	if patch.Title != nil {
		item.Title = models.NormalizeTitle(item.Kind, *patch.Title)
	}
	item.UpdatedAt = time.Now()
	s.persistLocked()

	s.logger.Info("items: updated", slog.String("id", id))
	return *item, true
}

// DeleteItem removes the item and all of its descendants, returning the
// remaining collection. Deleting a nonexistent id is a no-op.
func (s *Store) DeleteItem(id string) []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOfLocked(id) < 0 {
		out := make([]models.Item, len(s.items))
		copy(out, s.items)
		return out
	}

	doomed := s.descendantIDsLocked(id)
	doomed[id] = struct{}{}

	kept := s.items[:0:0]
	for _, it := range s.items {
		if _, gone := doomed[it.ID]; !gone {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.persistLocked()

	s.logger.Info("items: deleted", slog.String("id", id), slog.Int("removed", len(doomed)))

	out := make([]models.Item, len(s.items))
	copy(out, s.items)
	return out
}

// MoveItems reparents and repositions the dragged items as one atomic
// operation. The whole move is rejected (state unchanged) when it would
// create a cycle, when the target does not resolve, or when position is
// "inside" a prompt. An empty drag set is a no-op.
func (s *Store) MoveItems(draggedIDs []string, targetID *string, position Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drag := make(map[string]struct{}, len(draggedIDs))
	for _, id := range draggedIDs {
		drag[id] = struct{}{}
	}

	// Resolve the drag set in stored order so the moved block keeps its
	// relative ordering.
	var dragged []models.Item
	for _, it := range s.items {
		if _, ok := drag[it.ID]; ok {
			dragged = append(dragged, it)
		}
	}
	if len(dragged) == 0 {
		return nil
	}

	// Cycle guard: a folder may never land inside its own subtree.
	for _, it := range dragged {
		if !it.IsFolder() || targetID == nil {
			continue
		}
		if *targetID == it.ID && position == PositionInside {
			s.logger.Warn("items: move rejected, folder into itself", slog.String("id", it.ID))
			return apperr.ErrCyclicMove
		}
		desc := s.descendantIDsLocked(it.ID)
		if _, inside := desc[*targetID]; inside {
			s.logger.Warn("items: move rejected, target inside dragged subtree",
				slog.String("id", it.ID), slog.String("target_id", *targetID))
			return apperr.ErrCyclicMove
		}
	}

	// Determine the new parent for every dragged item.
	var newParent *string
	switch position {
	case PositionInside:
		if targetID != nil {
			target, ok := s.getLocked(*targetID)
			if !ok {
				s.logger.Warn("items: move rejected, missing target", slog.String("target_id", *targetID))
				return apperr.ErrInvalidTarget
			}
			if !target.IsFolder() {
				s.logger.Warn("items: move rejected, target is not a folder", slog.String("target_id", *targetID))
				return apperr.ErrInvalidTarget
			}
			newParent = targetID
		}
	case PositionBefore, PositionAfter:
		if targetID == nil {
			s.logger.Warn("items: move rejected, sibling position without target")
			return apperr.ErrInvalidTarget
		}
		if _, isDragged := drag[*targetID]; isDragged {
			s.logger.Warn("items: move rejected, target is part of the drag set", slog.String("target_id", *targetID))
			return apperr.ErrInvalidTarget
		}
		target, ok := s.getLocked(*targetID)
		if !ok {
			s.logger.Warn("items: move rejected, missing target", slog.String("target_id", *targetID))
			return apperr.ErrInvalidTarget
		}
		newParent = target.ParentID
	default:
		s.logger.Warn("items: move rejected, unknown position", slog.String("position", string(position)))
		return apperr.ErrInvalidTarget
	}

	// Remove the dragged block, then reinsert it contiguously.
	remaining := s.items[:0:0]
	for _, it := range s.items {
		if _, ok := drag[it.ID]; !ok {
			remaining = append(remaining, it)
		}
	}

	now := time.Now()
	for i := range dragged {
		dragged[i].ParentID = newParent
		dragged[i].UpdatedAt = now
	}

	at := len(remaining)
	switch position {
	case PositionBefore:
		if i := indexOf(remaining, *targetID); i >= 0 {
			at = i
		}
	case PositionAfter:
		if i := indexOf(remaining, *targetID); i >= 0 {
			at = i + 1
		}
	case PositionInside:
		if targetID != nil {
			// After the folder's last existing child, or right after the
			// folder itself when it is empty.
			at = indexOf(remaining, *targetID) + 1
			for i, it := range remaining {
				if it.ParentID != nil && *it.ParentID == *targetID && i >= at {
					at = i + 1
				}
			}
		}
	}

	s.items = make([]models.Item, 0, len(remaining)+len(dragged))
	s.items = append(s.items, remaining[:at]...)
	s.items = append(s.items, dragged...)
	s.items = append(s.items, remaining[at:]...)
	s.persistLocked()

	s.logger.Info("items: moved", slog.Int("count", len(dragged)), slog.String("position", string(position)))
	return nil
}

// DescendantIDs returns the ids of every item below the given one, via
// recursive folder traversal. The set never includes the id itself.
func (s *Store) DescendantIDs(id string) map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.descendantIDsLocked(id)
}

func (s *Store) indexOfLocked(id string) int {
	return indexOf(s.items, id)
}

func (s *Store) getLocked(id string) (models.Item, bool) {
	if i := s.indexOfLocked(id); i >= 0 {
		return s.items[i], true
	}
	return models.Item{}, false
}

func (s *Store) isFolderLocked(id string) bool {
	it, ok := s.getLocked(id)
	return ok && it.IsFolder()
}

func (s *Store) persistLocked() {
	if err := s.provider.Save(StorageKey, s.items); err != nil {
		s.logger.Error("items: persist failed", slog.String("error", err.Error()))
	}
}

func indexOf(items []models.Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
