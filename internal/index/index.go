package index

// PromptIndex defines the interface for prompt indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type PromptIndex interface {
	UpsertPrompt(p PromptRow, content string) error
	DeletePrompt(id string) error
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies PromptIndex at compile time.
var _ PromptIndex = (*DB)(nil)
