package models

import "time"

// Version is an immutable snapshot of a prompt's content at the moment it
// was replaced. CreatedAt carries the timestamp of the prior edit, i.e. when
// the snapshotted content stopped being current.
//
// Versions deliberately outlive their owning prompt: deleting a prompt does
// not cascade into the version log.
type Version struct {
	ID        string    `json:"id"`
	PromptID  string    `json:"promptId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
