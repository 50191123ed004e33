package api

import (
	"github.com/dverne/promptdeck/internal/diff"
	"github.com/dverne/promptdeck/internal/index"
	"github.com/dverne/promptdeck/internal/itemstore"
	"github.com/dverne/promptdeck/internal/models"
	"github.com/dverne/promptdeck/internal/versionstore"
)

// CreateItemRequest is the request body for creating a prompt or folder.
type CreateItemRequest struct {
	ParentID *string `json:"parentId"`
}

// UpdateItemRequest is the request body for patching an item. Absent fields
// are left untouched.
type UpdateItemRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// MoveItemsRequest is the request body for moving items.
type MoveItemsRequest struct {
	IDs      []string `json:"ids" validate:"required"`
	TargetID *string  `json:"targetId"`
	Position string   `json:"position" example:"inside" validate:"required"`
}

// DiffRequest is the request body for comparing two texts.
type DiffRequest struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// RefineRequest is the request body for LLM-backed endpoints.
type RefineRequest struct {
	Content string `json:"content" validate:"required"`
}

// Item is the item response type (aliased from the domain layer).
type Item = models.Item

// TreeNode is one node of the derived tree response.
type TreeNode = itemstore.Node

// TimelineEntry is one entry of a prompt's history response.
type TimelineEntry = versionstore.TimelineEntry

// SearchResult is a single search hit in the API response.
type SearchResult = index.SearchResult

// DiffResult is the two-sided line classification response.
type DiffResult = diff.Result

// ItemListResponse wraps the flat item listing.
type ItemListResponse struct {
	Items []Item `json:"items" validate:"required"`
	Total int    `json:"total" example:"42" validate:"required"`
}

// HistoryResponse wraps a prompt's timeline.
type HistoryResponse struct {
	Entries []TimelineEntry `json:"entries" validate:"required"`
}

// ModelsResponse wraps the LLM model listing.
type ModelsResponse struct {
	Models []string `json:"models" validate:"required"`
}

// RefineResponse wraps LLM refine/title output.
type RefineResponse struct {
	Content string `json:"content" validate:"required"`
}
