// Package models defines the domain types for Promptdeck.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Item kinds.
const (
	KindPrompt = "prompt"
	KindFolder = "folder"
)

// Default titles used when a created or renamed item has a blank title.
const (
	DefaultPromptTitle = "Untitled prompt"
	DefaultFolderTitle = "New folder"
)

// Item is a node in the organizational tree: either a prompt or a folder.
// ParentID is nil for root-level items and must otherwise reference an
// existing folder.
type Item struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	ParentID  *string   `json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsFolder reports whether the item is a folder.
func (i *Item) IsFolder() bool { return i.Kind == KindFolder }

// IsPrompt reports whether the item is a prompt.
func (i *Item) IsPrompt() bool { return i.Kind == KindPrompt }

// UnmarshalJSON fills legacy-record defaults: records persisted before the
// tree existed carry no kind or parentId and are treated as root prompts.
func (i *Item) UnmarshalJSON(data []byte) error {
	type alias Item
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Kind == "" {
		a.Kind = KindPrompt
	}
	*i = Item(a)
	return nil
}

// NormalizeTitle trims the title and substitutes the kind default when the
// result is empty.
func NormalizeTitle(kind, title string) string {
	t := strings.TrimSpace(title)
	if t != "" {
		return t
	}
	if kind == KindFolder {
		return DefaultFolderTitle
	}
	return DefaultPromptTitle
}
