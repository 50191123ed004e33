package api

import (
	"context"
	"log/slog"

	"github.com/dverne/promptdeck/internal/apperr"
	"github.com/dverne/promptdeck/internal/diff"
	"github.com/dverne/promptdeck/internal/index"
	"github.com/dverne/promptdeck/internal/itemstore"
	"github.com/dverne/promptdeck/internal/llm"
	"github.com/dverne/promptdeck/internal/models"
	"github.com/dverne/promptdeck/internal/sse"
	"github.com/dverne/promptdeck/internal/versionstore"
)

// Service coordinates the item store, version log, search index, and
// notification broker for the API layer. It is the only mutation path used
// by presentation code.
type Service struct {
	items    *itemstore.Store
	versions *versionstore.Store
	idx      *index.DB
	broker   *sse.Broker
	llm      *llm.Client
}

// NewService creates a new API service. broker and llmClient may be nil
// (tests, MCP-only mode).
func NewService(items *itemstore.Store, versions *versionstore.Store, idx *index.DB, broker *sse.Broker, llmClient *llm.Client) *Service {
	return &Service{items: items, versions: versions, idx: idx, broker: broker, llm: llmClient}
}

// ListItems returns the flat collection in stored order.
func (s *Service) ListItems() []models.Item {
	return s.items.Items()
}

// Tree returns the derived display forest.
func (s *Service) Tree() []itemstore.Node {
	return s.items.Tree()
}

// GetItem returns a single item by id.
func (s *Service) GetItem(id string) (models.Item, error) {
	it, ok := s.items.Get(id)
	if !ok {
		return models.Item{}, apperr.ErrNotFound
	}
	return it, nil
}

// CreatePrompt creates an empty prompt under the given parent (root when
// nil or invalid) and indexes it.
func (s *Service) CreatePrompt(parentID *string) models.Item {
	it := s.items.CreatePrompt(parentID)
	s.indexPrompt(it)
	s.publish("created", it.ID)
	return it
}

// CreateFolder creates a folder under the given parent.
func (s *Service) CreateFolder(parentID *string) models.Item {
	it := s.items.CreateFolder(parentID)
	s.publish("created", it.ID)
	return it
}

// UpdateItem applies the patch (version capture happens inside the item
// store) and refreshes the index entry.
func (s *Service) UpdateItem(id string, patch itemstore.Patch) (models.Item, error) {
	it, ok := s.items.UpdateItem(id, patch)
	if !ok {
		return models.Item{}, apperr.ErrNotFound
	}
	if it.IsPrompt() {
		s.indexPrompt(it)
	}
	s.publish("updated", it.ID)
	return it, nil
}

// DeleteItem removes the item and its descendants from the collection and
// the index. Versions are deliberately left behind.
func (s *Service) DeleteItem(id string) error {
	it, ok := s.items.Get(id)
	if !ok {
		return apperr.ErrNotFound
	}

	doomed := s.items.DescendantIDs(id)
	doomed[id] = struct{}{}

	s.items.DeleteItem(id)

	for gone := range doomed {
		if err := s.idx.DeletePrompt(gone); err != nil {
			slog.Warn("deindex failed", slog.String("id", gone), slog.String("error", err.Error()))
		}
	}
	s.publish("deleted", it.ID)
	return nil
}

// MoveItems delegates to the item store's atomic move. Every dragged item
// gets its own event so per-item subscribers see the whole drag.
func (s *Service) MoveItems(ids []string, targetID *string, position itemstore.Position) error {
	if err := s.items.MoveItems(ids, targetID, position); err != nil {
		return err
	}
	for _, id := range ids {
		s.publish("moved", id)
	}
	return nil
}

// History returns the displayable timeline for a prompt: live content
// first, then stored versions newest-first.
func (s *Service) History(id string) ([]versionstore.TimelineEntry, error) {
	it, ok := s.items.Get(id)
	if !ok || !it.IsPrompt() {
		return nil, apperr.ErrNotFound
	}
	return s.versions.Timeline(it.ID, it.Content, it.UpdatedAt), nil
}

// Diff runs the line-set comparison between two texts.
func (s *Service) Diff(oldText, newText string) diff.Result {
	return diff.Compare(oldText, newText)
}

// Search delegates full-text search to the index.
func (s *Service) Search(query string, limit int) ([]index.SearchResult, error) {
	return s.idx.Search(query, limit)
}

// Refine asks the LLM service to rewrite prompt text.
func (s *Service) Refine(ctx context.Context, text string) (string, error) {
	return s.llm.Refine(ctx, text)
}

// SuggestTitle asks the LLM service for a title for the text.
func (s *Service) SuggestTitle(ctx context.Context, text string) (string, error) {
	return s.llm.SuggestTitle(ctx, text)
}

// Models lists models available on the LLM service.
func (s *Service) Models(ctx context.Context) ([]string, error) {
	return s.llm.ListModels(ctx)
}

// LLMEnabled reports whether an LLM client is configured.
func (s *Service) LLMEnabled() bool { return s.llm != nil }

func (s *Service) indexPrompt(it models.Item) {
	if err := index.IndexItem(s.idx, it); err != nil {
		slog.Warn("index failed", slog.String("id", it.ID), slog.String("error", err.Error()))
	}
}

func (s *Service) publish(kind, id string) {
	if s.broker != nil {
		s.broker.PublishItemEvent(kind, id)
	}
}
