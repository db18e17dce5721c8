package driving

import "context"

// ScoredDocument is a search result with its relevance score. For keyword
// search the score is the store's native text-relevance measure; for
// semantic search it is cosine similarity rounded to four decimals.
type ScoredDocument struct {
	DocumentView

	Score float64
}

// SearchService runs keyword and embedding-ranked search over the corpus.
type SearchService interface {
	// Text performs full-text keyword search over title and content,
	// ranked by the store's relevance score, capped at 20 results.
	Text(ctx context.Context, query string) ([]ScoredDocument, error)

	// Semantic embeds the query and ranks every document by cosine
	// similarity, returning the top 20 with scores.
	Semantic(ctx context.Context, query string) ([]ScoredDocument, error)
}
