package itemstore

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dverne/promptdeck/internal/apperr"
	"github.com/dverne/promptdeck/internal/models"
	"github.com/dverne/promptdeck/internal/storage"
	"github.com/dverne/promptdeck/internal/versionstore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStores(t *testing.T) (*Store, *versionstore.Store) {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	versions := versionstore.Load(fs, testLogger())
	return Load(fs, versions, testLogger()), versions
}

func str(s string) *string { return &s }

func TestCreatePromptDefaults(t *testing.T) {
	s, _ := testStores(t)
	it := s.CreatePrompt(nil)
	if it.ID == "" {
		t.Error("id should be assigned")
	}
	if it.Kind != models.KindPrompt {
		t.Errorf("kind = %q", it.Kind)
	}
	if it.Title != models.DefaultPromptTitle {
		t.Errorf("title = %q, want %q", it.Title, models.DefaultPromptTitle)
	}
	if it.ParentID != nil {
		t.Errorf("parentId = %v, want nil", it.ParentID)
	}
	if it.CreatedAt.IsZero() || !it.UpdatedAt.Equal(it.CreatedAt) {
		t.Errorf("timestamps = %v / %v", it.CreatedAt, it.UpdatedAt)
	}
}

func TestCreateUnderFolder(t *testing.T) {
	s, _ := testStores(t)
	folder := s.CreateFolder(nil)
	it := s.CreatePrompt(&folder.ID)
	if it.ParentID == nil || *it.ParentID != folder.ID {
		t.Errorf("parentId = %v, want %q", it.ParentID, folder.ID)
	}
}

func TestCreateInvalidParentFallsBackToRoot(t *testing.T) {
	s, _ := testStores(t)
	missing := "no-such-folder"
	it := s.CreatePrompt(&missing)
	if it.ParentID != nil {
		t.Errorf("parentId = %v, want nil (root fallback)", it.ParentID)
	}

	// A prompt is not a valid parent either.
	prompt := s.CreatePrompt(nil)
	it = s.CreateFolder(&prompt.ID)
	if it.ParentID != nil {
		t.Errorf("parentId under prompt = %v, want nil", it.ParentID)
	}
}

func TestUpdateItemTitleAndContent(t *testing.T) {
	s, _ := testStores(t)
	it := s.CreatePrompt(nil)

	got, ok := s.UpdateItem(it.ID, Patch{Title: str("  Greeting  "), Content: str("hello")})
	if !ok {
		t.Fatal("update should find the item")
	}
	if got.Title != "Greeting" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Content != "hello" {
		t.Errorf("content = %q", got.Content)
	}
	if !got.UpdatedAt.After(it.UpdatedAt) && !got.UpdatedAt.Equal(it.UpdatedAt) {
		t.Errorf("updatedAt went backwards: %v -> %v", it.UpdatedAt, got.UpdatedAt)
	}
}

func TestUpdateBlankTitleGetsDefault(t *testing.T) {
	s, _ := testStores(t)
	folder := s.CreateFolder(nil)
	got, _ := s.UpdateItem(folder.ID, Patch{Title: str("   ")})
	if got.Title != models.DefaultFolderTitle {
		t.Errorf("title = %q, want %q", got.Title, models.DefaultFolderTitle)
	}
}

func TestUpdateMissingItemIsNoOp(t *testing.T) {
	s, _ := testStores(t)
	if _, ok := s.UpdateItem("ghost", Patch{Title: str("x")}); ok {
		t.Error("updating a missing id should report not found")
	}
}

func TestUpdateCapturesPreviousContentVersion(t *testing.T) {
	s, versions := testStores(t)
	it := s.CreatePrompt(nil)

	// First content set: previous content is blank, nothing to capture.
	first, _ := s.UpdateItem(it.ID, Patch{Content: str("hello")})
	if versions.Count() != 0 {
		t.Fatalf("count after first set = %d, want 0", versions.Count())
	}

	// Replacing non-blank content snapshots the old text with its old
	// timestamp.
	s.UpdateItem(it.ID, Patch{Content: str("world")})
	got := versions.ForPrompt(it.ID)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Content != "hello" {
		t.Errorf("captured content = %q, want hello", got[0].Content)
	}
	if !got[0].CreatedAt.Equal(first.UpdatedAt) {
		t.Errorf("captured time = %v, want %v", got[0].CreatedAt, first.UpdatedAt)
	}
}

func TestUpdateToEmptyContentCapturesVersion(t *testing.T) {
	s, versions := testStores(t)
	it := s.CreatePrompt(nil)
	prev, _ := s.UpdateItem(it.ID, Patch{Content: str("hello")})

	// Clearing the content still snapshots the old text: the blank-skip rule
	// applies to what is being captured, not to the incoming value.
	s.UpdateItem(it.ID, Patch{Content: str("")})

	got := versions.ForPrompt(it.ID)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Content != "hello" {
		t.Errorf("captured content = %q, want hello", got[0].Content)
	}
	if !got[0].CreatedAt.Equal(prev.UpdatedAt) {
		t.Errorf("captured time = %v, want %v", got[0].CreatedAt, prev.UpdatedAt)
	}
	cur, _ := s.Get(it.ID)
	if cur.Content != "" {
		t.Errorf("live content = %q, want empty", cur.Content)
	}
}

func TestUpdateSameContentCapturesNothing(t *testing.T) {
	s, versions := testStores(t)
	it := s.CreatePrompt(nil)
	s.UpdateItem(it.ID, Patch{Content: str("hello")})
	s.UpdateItem(it.ID, Patch{Content: str("hello")})
	if versions.Count() != 0 {
		t.Errorf("count = %d, want 0", versions.Count())
	}
}

func TestUpdateFolderContentIgnoresVersioning(t *testing.T) {
	s, versions := testStores(t)
	folder := s.CreateFolder(nil)
	s.UpdateItem(folder.ID, Patch{Content: str("x")})
	s.UpdateItem(folder.ID, Patch{Content: str("y")})
	if versions.Count() != 0 {
		t.Errorf("count = %d, want 0 for folders", versions.Count())
	}
}

func TestDeleteCascades(t *testing.T) {
	s, _ := testStores(t)
	root := s.CreateFolder(nil)
	sub := s.CreateFolder(&root.ID)
	inner := s.CreatePrompt(&sub.ID)
	outside := s.CreatePrompt(nil)

	remaining := s.DeleteItem(root.ID)
	if len(remaining) != 1 || remaining[0].ID != outside.ID {
		t.Fatalf("remaining = %+v, want only the outside prompt", remaining)
	}
	for _, id := range []string{root.ID, sub.ID, inner.ID} {
		if _, ok := s.Get(id); ok {
			t.Errorf("item %s should be gone", id)
		}
	}
}

func TestDeleteMissingIsNoOp(t *testing.T) {
	s, _ := testStores(t)
	s.CreatePrompt(nil)
	remaining := s.DeleteItem("ghost")
	if len(remaining) != 1 {
		t.Errorf("remaining = %d, want 1", len(remaining))
	}
}

func TestDeleteKeepsVersions(t *testing.T) {
	s, versions := testStores(t)
	it := s.CreatePrompt(nil)
	s.UpdateItem(it.ID, Patch{Content: str("v1")})
	s.UpdateItem(it.ID, Patch{Content: str("v2")})
	s.DeleteItem(it.ID)
	if got := versions.ForPrompt(it.ID); len(got) != 1 {
		t.Errorf("versions after delete = %d, want 1", len(got))
	}
}

func TestMoveInsideFolder(t *testing.T) {
	s, _ := testStores(t)
	folder := s.CreateFolder(nil)
	p := s.CreatePrompt(nil)

	if err := s.MoveItems([]string{p.ID}, &folder.ID, PositionInside); err != nil {
		t.Fatalf("MoveItems: %v", err)
	}
	got, _ := s.Get(p.ID)
	if got.ParentID == nil || *got.ParentID != folder.ID {
		t.Errorf("parentId = %v, want %q", got.ParentID, folder.ID)
	}
}

func TestMoveInsideNilTargetMeansRoot(t *testing.T) {
	s, _ := testStores(t)
	folder := s.CreateFolder(nil)
	p := s.CreatePrompt(&folder.ID)

	if err := s.MoveItems([]string{p.ID}, nil, PositionInside); err != nil {
		t.Fatalf("MoveItems: %v", err)
	}
	got, _ := s.Get(p.ID)
	if got.ParentID != nil {
		t.Errorf("parentId = %v, want nil", got.ParentID)
	}
}

func TestMoveInsidePromptRejected(t *testing.T) {
	s, _ := testStores(t)
	target := s.CreatePrompt(nil)
	p := s.CreatePrompt(nil)

	err := s.MoveItems([]string{p.ID}, &target.ID, PositionInside)
	if err != apperr.ErrInvalidTarget {
		t.Errorf("err = %v, want ErrInvalidTarget", err)
	}
}

func TestMoveBeforeAndAfterAdoptTargetParent(t *testing.T) {
	s, _ := testStores(t)
	folder := s.CreateFolder(nil)
	sibling := s.CreatePrompt(&folder.ID)
	p := s.CreatePrompt(nil)

	if err := s.MoveItems([]string{p.ID}, &sibling.ID, PositionBefore); err != nil {
		t.Fatalf("before: %v", err)
	}
	got, _ := s.Get(p.ID)
	if got.ParentID == nil || *got.ParentID != folder.ID {
		t.Errorf("parentId after before = %v, want %q", got.ParentID, folder.ID)
	}

	q := s.CreatePrompt(nil)
	if err := s.MoveItems([]string{q.ID}, &sibling.ID, PositionAfter); err != nil {
		t.Fatalf("after: %v", err)
	}
	got, _ = s.Get(q.ID)
	if got.ParentID == nil || *got.ParentID != folder.ID {
		t.Errorf("parentId after after = %v, want %q", got.ParentID, folder.ID)
	}
}

func TestMoveCycleRejected(t *testing.T) {
	s, _ := testStores(t)
	outer := s.CreateFolder(nil)
	inner := s.CreateFolder(&outer.ID)
	deep := s.CreateFolder(&inner.ID)

	// Folder into itself.
	if err := s.MoveItems([]string{outer.ID}, &outer.ID, PositionInside); err != apperr.ErrCyclicMove {
		t.Errorf("self move err = %v, want ErrCyclicMove", err)
	}
	// Folder into its own grandchild.
	if err := s.MoveItems([]string{outer.ID}, &deep.ID, PositionInside); err != apperr.ErrCyclicMove {
		t.Errorf("descendant move err = %v, want ErrCyclicMove", err)
	}
	// Sibling drop onto a descendant is a cycle all the same.
	if err := s.MoveItems([]string{outer.ID}, &deep.ID, PositionAfter); err != apperr.ErrCyclicMove {
		t.Errorf("sibling-of-descendant err = %v, want ErrCyclicMove", err)
	}

	// Nothing changed.
	got, _ := s.Get(outer.ID)
	if got.ParentID != nil {
		t.Errorf("outer parent changed to %v on rejected move", got.ParentID)
	}
}

func TestMoveRejectionsLeaveStateUntouched(t *testing.T) {
	s, _ := testStores(t)
	folder := s.CreateFolder(nil)
	p := s.CreatePrompt(&folder.ID)
	before := s.Items()

	missing := "ghost"
	cases := []struct {
		name     string
		target   *string
		position Position
	}{
		{"missing target inside", &missing, PositionInside},
		{"missing target before", &missing, PositionBefore},
		{"nil target before", nil, PositionBefore},
		{"nil target after", nil, PositionAfter},
		{"target in drag set", &p.ID, PositionAfter},
		{"unknown position", &folder.ID, Position("sideways")},
	}
	for _, c := range cases {
		if err := s.MoveItems([]string{p.ID}, c.target, c.position); err != apperr.ErrInvalidTarget {
			t.Errorf("%s: err = %v, want ErrInvalidTarget", c.name, err)
		}
	}

	after := s.Items()
	if len(after) != len(before) {
		t.Fatalf("item count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Errorf("order changed at %d: %s -> %s", i, before[i].ID, after[i].ID)
		}
	}
}

func TestMoveEmptyDragSetIsNoOp(t *testing.T) {
	s, _ := testStores(t)
	folder := s.CreateFolder(nil)
	if err := s.MoveItems(nil, &folder.ID, PositionInside); err != nil {
		t.Errorf("empty drag set err = %v, want nil", err)
	}
	if err := s.MoveItems([]string{"ghost"}, &folder.ID, PositionInside); err != nil {
		t.Errorf("unresolvable drag set err = %v, want nil", err)
	}
}

func TestMoveKeepsDraggedBlockContiguous(t *testing.T) {
	s, _ := testStores(t)
	// Created newest-first: d, c, b, a in stored order after four creates.
	a := s.CreatePrompt(nil)
	b := s.CreatePrompt(nil)
	c := s.CreatePrompt(nil)
	d := s.CreatePrompt(nil)

	// Drag c and a (stored order: c before a) after d.
	if err := s.MoveItems([]string{a.ID, c.ID}, &d.ID, PositionAfter); err != nil {
		t.Fatalf("MoveItems: %v", err)
	}

	items := s.Items()
	wantOrder := []string{d.ID, c.ID, a.ID, b.ID}
	if len(items) != len(wantOrder) {
		t.Fatalf("len = %d, want %d", len(items), len(wantOrder))
	}
	for i, id := range wantOrder {
		if items[i].ID != id {
			t.Errorf("items[%d] = %s, want %s", i, items[i].ID, id)
		}
	}
}

func TestMoveInsidePlacesAfterLastChild(t *testing.T) {
	s, _ := testStores(t)
	folder := s.CreateFolder(nil)
	existing := s.CreatePrompt(&folder.ID)
	p := s.CreatePrompt(nil)

	if err := s.MoveItems([]string{p.ID}, &folder.ID, PositionInside); err != nil {
		t.Fatalf("MoveItems: %v", err)
	}

	items := s.Items()
	fi := indexOf(items, folder.ID)
	pi := indexOf(items, p.ID)
	if pi <= fi {
		t.Errorf("moved item at %d, folder at %d, want moved after folder", pi, fi)
	}
	got, _ := s.Get(p.ID)
	if got.ParentID == nil || *got.ParentID != folder.ID {
		t.Errorf("parentId = %v, want %q", got.ParentID, folder.ID)
	}
	kept, _ := s.Get(existing.ID)
	if kept.ParentID == nil || *kept.ParentID != folder.ID {
		t.Errorf("existing child parent = %v, want %q", kept.ParentID, folder.ID)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	versions := versionstore.Load(fs, testLogger())

	s := Load(fs, versions, testLogger())
	folder := s.CreateFolder(nil)
	p := s.CreatePrompt(&folder.ID)
	s.UpdateItem(p.ID, Patch{Title: str("Kept"), Content: str("body")})

	reopened := Load(fs, versions, testLogger())
	got, ok := reopened.Get(p.ID)
	if !ok {
		t.Fatal("prompt missing after reopen")
	}
	if got.Title != "Kept" || got.Content != "body" {
		t.Errorf("reopened item = %+v", got)
	}
	if got.ParentID == nil || *got.ParentID != folder.ID {
		t.Errorf("parentId lost: %v", got.ParentID)
	}
}
