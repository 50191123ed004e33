// Package diff implements the line-level set comparison used by the version
// history view.
//
// This is intentionally NOT a sequence alignment: a line on one side is
// "common" when its exact string occurs anywhere on the other side,
// regardless of position or how many times it repeats. Frontends depend on
// this per-line membership semantics, so do not substitute an LCS diff.
package diff

import "strings"

// Status classifies a single line of one side of a comparison.
type Status string

const (
	StatusCommon  Status = "common"
	StatusRemoved Status = "removed"
	StatusAdded   Status = "added"
)

// Line is one line of text with its classification.
type Line struct {
	Text   string `json:"text"`
	Status Status `json:"status"`
}

// Result holds both sides of a comparison: Old lines are marked common or
// removed, New lines common or added.
type Result struct {
	Old []Line `json:"old"`
	New []Line `json:"new"`
}

// Compare splits both texts on newline and classifies each line by set
// membership against the other side.
func Compare(oldText, newText string) Result {
	oldLines := strings.Split(oldText, "\n")
	newLines := strings.Split(newText, "\n")

	inOld := make(map[string]struct{}, len(oldLines))
	for _, l := range oldLines {
		inOld[l] = struct{}{}
	}
	inNew := make(map[string]struct{}, len(newLines))
	for _, l := range newLines {
		inNew[l] = struct{}{}
	}

	res := Result{
		Old: make([]Line, len(oldLines)),
		New: make([]Line, len(newLines)),
	}
	for i, l := range oldLines {
		status := StatusRemoved
		if _, ok := inNew[l]; ok {
			status = StatusCommon
		}
		res.Old[i] = Line{Text: l, Status: status}
	}
	for i, l := range newLines {
		status := StatusAdded
		if _, ok := inOld[l]; ok {
			status = StatusCommon
		}
		res.New[i] = Line{Text: l, Status: status}
	}
	return res
}
