package versionstore

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dverne/promptdeck/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(t *testing.T) *Store {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return Load(fs, testLogger())
}

// failingProvider rejects every write but serves empty reads.
type failingProvider struct{}

func (failingProvider) Load(string, any) error { return nil }
func (failingProvider) Save(string, any) error { return errors.New("disk full") }

func TestAddAndForPrompt(t *testing.T) {
	s := testStore(t)
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	if !s.Add("p1", "first", t1) {
		t.Fatal("first add should record")
	}
	if !s.Add("p1", "second", t2) {
		t.Fatal("second add should record")
	}
	s.Add("p2", "other prompt", t1)

	got := s.ForPrompt("p1")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Content != "second" || got[1].Content != "first" {
		t.Errorf("order = %q, %q, want newest first", got[0].Content, got[1].Content)
	}
	for _, v := range got {
		if v.ID == "" {
			t.Error("version id should be assigned")
		}
		if v.PromptID != "p1" {
			t.Errorf("promptId = %q", v.PromptID)
		}
	}
}

func TestAddSkipsBlankContent(t *testing.T) {
	s := testStore(t)
	if s.Add("p1", "", time.Now()) {
		t.Error("empty content should not record")
	}
	if s.Add("p1", "   \n\t ", time.Now()) {
		t.Error("whitespace-only content should not record")
	}
	if s.Count() != 0 {
		t.Errorf("count = %d, want 0", s.Count())
	}
}

func TestAddDedupesAgainstLatestOnly(t *testing.T) {
	s := testStore(t)
	t0 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	s.Add("p1", "alpha", t0)
	if s.Add("p1", "alpha", t0.Add(time.Minute)) {
		t.Error("identical to latest should be skipped")
	}
	s.Add("p1", "beta", t0.Add(2*time.Minute))
	// "alpha" is no longer the latest, so it records again.
	if !s.Add("p1", "alpha", t0.Add(3*time.Minute)) {
		t.Error("content matching an older version should still record")
	}
	if s.Count() != 3 {
		t.Errorf("count = %d, want 3", s.Count())
	}
}

func TestAddDedupScopedPerPrompt(t *testing.T) {
	s := testStore(t)
	now := time.Now()
	s.Add("p1", "same text", now)
	if !s.Add("p2", "same text", now) {
		t.Error("dedup must not cross prompts")
	}
}

func TestAddCommitsDespitePersistFailure(t *testing.T) {
	s := Load(failingProvider{}, testLogger())
	if !s.Add("p1", "survives", time.Now()) {
		t.Fatal("add should succeed in memory")
	}
	if got := s.ForPrompt("p1"); len(got) != 1 {
		t.Errorf("len = %d, want 1 despite failed persist", len(got))
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}

	s := Load(fs, testLogger())
	s.Add("p1", "persisted", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))

	reopened := Load(fs, testLogger())
	got := reopened.ForPrompt("p1")
	if len(got) != 1 || got[0].Content != "persisted" {
		t.Errorf("reopened store = %+v", got)
	}
}

func TestTimeline(t *testing.T) {
	s := testStore(t)
	t0 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	s.Add("p1", "v1", t0)
	s.Add("p1", "v2", t0.Add(time.Hour))

	updated := t0.Add(2 * time.Hour)
	entries := s.Timeline("p1", "live content", updated)
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	if entries[0].VersionID != "" || entries[0].Content != "live content" {
		t.Errorf("first entry should be live content: %+v", entries[0])
	}
	if !entries[0].CreatedAt.Equal(updated) {
		t.Errorf("live entry time = %v, want %v", entries[0].CreatedAt, updated)
	}
	if entries[1].Content != "v2" || entries[2].Content != "v1" {
		t.Errorf("versions out of order: %q, %q", entries[1].Content, entries[2].Content)
	}
	if entries[1].VersionID == "" {
		t.Error("stored versions must carry an id")
	}
}

func TestTimelineNoVersions(t *testing.T) {
	s := testStore(t)
	entries := s.Timeline("p1", "only live", time.Now())
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	if entries[0].Content != "only live" {
		t.Errorf("content = %q", entries[0].Content)
	}
}
