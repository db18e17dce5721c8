package driven

import "context"

// TextIndex provides full-text keyword search over document titles and
// content. Index maintenance is the storage adapter's concern: the SQLite
// implementation keeps an FTS5 table in sync with the documents table, so
// this port only exposes querying.
type TextIndex interface {
	// Search returns matching document IDs with the store's native
	// relevance score, best match first.
	Search(ctx context.Context, query string, limit int) ([]TextHit, error)
}

// TextHit is a single keyword search result.
type TextHit struct {
	// DocID is the matched document.
	DocID string

	// Score is the relevance score. Higher is more relevant.
	Score float64
}
