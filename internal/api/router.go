package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Items.
	r.Get("/items", h.ListItems)
	r.Get("/items/{id}", h.GetItem)
	r.Patch("/items/{id}", h.UpdateItem)
	r.Delete("/items/{id}", h.DeleteItem)
	r.Post("/items/move", h.MoveItems)
	r.Post("/prompts", h.CreatePrompt)
	r.Post("/folders", h.CreateFolder)
	r.Get("/tree", h.Tree)

	// History.
	r.Get("/prompts/{id}/history", h.History)
	r.Post("/diff", h.Diff)

	// Search.
	r.Get("/search", h.Search)

	// LLM service.
	r.Post("/llm/refine", h.Refine)
	r.Post("/llm/title", h.SuggestTitle)
	r.Get("/llm/models", h.Models)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
