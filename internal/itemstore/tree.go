package itemstore

import (
	"sort"

	"github.com/dverne/promptdeck/internal/models"
)

// Node is one node of the derived display tree.
type Node struct {
	models.Item
	Children []Node `json:"children"`
}

// Tree derives the display forest from the flat collection: items whose
// parentId is nil or does not resolve become roots, and every level is
// sorted folders-first, then lexicographically by title. The tree is built
// per read and never persisted.
func (s *Store) Tree() []Node {
	return BuildTree(s.Items())
}

// BuildTree groups items by parent in two passes (index by id, then group
// children) and assembles the sorted forest.
func BuildTree(items []models.Item) []Node {
	byID := make(map[string]struct{}, len(items))
	for _, it := range items {
		byID[it.ID] = struct{}{}
	}

	children := make(map[string][]models.Item)
	var roots []models.Item
	for _, it := range items {
		if it.ParentID == nil {
			roots = append(roots, it)
			continue
		}
		if _, ok := byID[*it.ParentID]; !ok {
			// Orphaned reference: promote to root rather than dropping.
			roots = append(roots, it)
			continue
		}
		children[*it.ParentID] = append(children[*it.ParentID], it)
	}

	var build func(items []models.Item) []Node
	build = func(items []models.Item) []Node {
		sortSiblings(items)
		nodes := make([]Node, len(items))
		for i, it := range items {
			nodes[i] = Node{Item: it, Children: build(children[it.ID])}
		}
		return nodes
	}
	return build(roots)
}

// sortSiblings applies the display ordering invariant: folders before
// prompts, then by title within each kind. Equal titles keep stored order.
func sortSiblings(items []models.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Kind != items[j].Kind {
			return items[i].IsFolder()
		}
		return items[i].Title < items[j].Title
	})
}

// descendantIDsLocked walks parentId links breadth-first and collects every
// id below the given one. Pure read; callers hold the store mutex.
func (s *Store) descendantIDsLocked(id string) map[string]struct{} {
	childIDs := make(map[string][]string, len(s.items))
	for _, it := range s.items {
		if it.ParentID != nil {
			childIDs[*it.ParentID] = append(childIDs[*it.ParentID], it.ID)
		}
	}

	out := make(map[string]struct{})
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range childIDs[cur] {
			if _, seen := out[child]; seen {
				continue
			}
			out[child] = struct{}{}
			queue = append(queue, child)
		}
	}
	return out
}
