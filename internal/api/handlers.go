package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dverne/promptdeck/internal/apperr"
	"github.com/dverne/promptdeck/internal/itemstore"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListItems handles GET /api/items.
//
//	@Summary		List the flat item collection in stored order
//	@Tags			items
//	@Produce		json
//	@Success		200	{object}	ItemListResponse
//	@Security		BearerAuth
//	@Router			/items [get]
func (h *Handler) ListItems(w http.ResponseWriter, _ *http.Request) {
	items := h.svc.ListItems()
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(items),
	})
}

// Tree handles GET /api/tree.
//
//	@Summary		Get the derived display tree (folders first, titles sorted)
//	@Tags			items
//	@Produce		json
//	@Success		200	{array}	TreeNode
//	@Security		BearerAuth
//	@Router			/tree [get]
func (h *Handler) Tree(w http.ResponseWriter, _ *http.Request) {
	tree := h.svc.Tree()
	if tree == nil {
		tree = []TreeNode{}
	}
	writeJSON(w, http.StatusOK, tree)
}

// GetItem handles GET /api/items/{id}.
//
//	@Summary		Get a single item by id
//	@Tags			items
//	@Produce		json
//	@Param			id	path		string	true	"Item id"
//	@Success		200	{object}	Item
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id} [get]
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	it, err := h.svc.GetItem(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody(codeNotFound, "not found"))
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// CreatePrompt handles POST /api/prompts.
//
//	@Summary		Create a new empty prompt
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateItemRequest	false	"Optional parent folder"
//	@Success		201		{object}	Item
//	@Security		BearerAuth
//	@Router			/prompts [post]
func (h *Handler) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	h.createItem(w, r, h.svc.CreatePrompt)
}

// CreateFolder handles POST /api/folders.
//
//	@Summary		Create a new folder
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateItemRequest	false	"Optional parent folder"
//	@Success		201		{object}	Item
//	@Security		BearerAuth
//	@Router			/folders [post]
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	h.createItem(w, r, h.svc.CreateFolder)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request, create func(*string) Item) {
	var req CreateItemRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(codeInvalidBody, "invalid JSON body"))
			return
		}
	}
	writeJSON(w, http.StatusCreated, create(req.ParentID))
}

// UpdateItem handles PATCH /api/items/{id}.
//
//	@Summary		Patch an item's title or content
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Item id"
//	@Param			body	body		UpdateItemRequest	true	"Fields to change"
//	@Success		200		{object}	Item
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id} [patch]
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id := chi.URLParam(r, "id")

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(codeInvalidBody, "invalid JSON body"))
		return
	}
	if req.Title == nil && req.Content == nil {
		writeJSON(w, http.StatusBadRequest, errorBody(codeEmptyPatch, "nothing to update"))
		return
	}

	it, err := h.svc.UpdateItem(id, itemstore.Patch{Title: req.Title, Content: req.Content})
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody(codeNotFound, "not found"))
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// DeleteItem handles DELETE /api/items/{id}.
//
//	@Summary		Delete an item and all of its descendants
//	@Tags			items
//	@Param			id	path	string	true	"Item id"
//	@Success		204	"Item deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id} [delete]
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteItem(id); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody(codeNotFound, "not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveItems handles POST /api/items/move.
//
//	@Summary		Move items relative to a target (before/after/inside)
//	@Tags			items
//	@Accept			json
//	@Param			body	body	MoveItemsRequest	true	"Move request"
//	@Success		204		"Items moved"
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/move [post]
func (h *Handler) MoveItems(w http.ResponseWriter, r *http.Request) {
	var req MoveItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(codeInvalidBody, "invalid JSON body"))
		return
	}

	pos := itemstore.Position(req.Position)
	switch pos {
	case itemstore.PositionBefore, itemstore.PositionAfter, itemstore.PositionInside:
	default:
		writeJSON(w, http.StatusBadRequest, errorBody(codeInvalidPosition, "position must be before, after, or inside"))
		return
	}

	if err := h.svc.MoveItems(req.IDs, req.TargetID, pos); err != nil {
		switch {
		case errors.Is(err, apperr.ErrCyclicMove):
			writeJSON(w, http.StatusConflict, errorBody(codeCyclicMove, "move would create a cycle"))
		case errors.Is(err, apperr.ErrInvalidTarget):
			writeJSON(w, http.StatusBadRequest, errorBody(codeInvalidTarget, "invalid move target"))
		default:
			slog.Error("move failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody(codeInternal, "internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /api/prompts/{id}/history.
//
//	@Summary		Get a prompt's version timeline (live content first)
//	@Tags			history
//	@Produce		json
//	@Param			id	path		string	true	"Prompt id"
//	@Success		200	{object}	HistoryResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/prompts/{id}/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entries, err := h.svc.History(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody(codeNotFound, "not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// Diff handles POST /api/diff.
//
//	@Summary		Line-set comparison between two texts
//	@Tags			history
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DiffRequest	true	"Texts to compare"
//	@Success		200		{object}	DiffResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/diff [post]
func (h *Handler) Diff(w http.ResponseWriter, r *http.Request) {
	var req DiffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(codeInvalidBody, "invalid JSON body"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Diff(req.Old, req.New))
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across prompt titles and content
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(codeMissingQuery, "query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(codeInternal, "internal error"))
		return
	}
	if results == nil {
		results = []SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Refine handles POST /api/llm/refine.
//
//	@Summary		Rewrite prompt text via the local LLM service
//	@Tags			llm
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RefineRequest	true	"Text to refine"
//	@Success		200		{object}	RefineResponse
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/llm/refine [post]
func (h *Handler) Refine(w http.ResponseWriter, r *http.Request) {
	h.llmText(w, r, h.svc.Refine)
}

// SuggestTitle handles POST /api/llm/title.
//
//	@Summary		Suggest a title for prompt text via the local LLM service
//	@Tags			llm
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RefineRequest	true	"Text to summarize"
//	@Success		200		{object}	RefineResponse
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/llm/title [post]
func (h *Handler) SuggestTitle(w http.ResponseWriter, r *http.Request) {
	h.llmText(w, r, h.svc.SuggestTitle)
}

// Models handles GET /api/llm/models.
//
//	@Summary		List models available on the local LLM service
//	@Tags			llm
//	@Produce		json
//	@Success		200	{object}	ModelsResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/llm/models [get]
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	if !h.svc.LLMEnabled() {
		writeJSON(w, http.StatusServiceUnavailable, errorBody(codeLLMDisabled, "llm service not configured"))
		return
	}
	models, err := h.svc.Models(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody(codeLLMFailed, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": models})
}

func (h *Handler) llmText(w http.ResponseWriter, r *http.Request, call func(ctx context.Context, text string) (string, error)) {
	if !h.svc.LLMEnabled() {
		writeJSON(w, http.StatusServiceUnavailable, errorBody(codeLLMDisabled, "llm service not configured"))
		return
	}
	var req RefineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(codeInvalidBody, "invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(codeInvalidBody, "content is required"))
		return
	}
	out, err := call(r.Context(), req.Content)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody(codeLLMFailed, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": out})
}
