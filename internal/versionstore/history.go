package versionstore

import (
	"time"

	"github.com/dverne/promptdeck/internal/models"
)

// TimelineEntry is one displayable point in a prompt's history. The first
// entry of a timeline is the live content and carries no version id.
type TimelineEntry struct {
	VersionID string    `json:"versionId,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Timeline builds the full displayable history for a prompt: the current
// content first, followed by stored versions newest-first.
func (s *Store) Timeline(promptID, currentContent string, updatedAt time.Time) []TimelineEntry {
	versions := s.ForPrompt(promptID)
	out := make([]TimelineEntry, 0, len(versions)+1)
	out = append(out, TimelineEntry{Content: currentContent, CreatedAt: updatedAt})
	for _, v := range versions {
		out = append(out, timelineEntry(v))
	}
	return out
}

func timelineEntry(v models.Version) TimelineEntry {
	return TimelineEntry{VersionID: v.ID, Content: v.Content, CreatedAt: v.CreatedAt}
}
