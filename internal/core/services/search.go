package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/teamhub/internal/core/domain"
	"github.com/custodia-labs/teamhub/internal/core/ports/driven"
	"github.com/custodia-labs/teamhub/internal/core/ports/driving"
	"github.com/custodia-labs/teamhub/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// searchLimit caps both keyword and semantic search results.
const searchLimit = 20

// SearchService runs keyword search against the text index and semantic
// search by ranking stored embeddings against an embedded query.
type SearchService struct {
	docs  driven.DocumentStore
	users driven.UserStore
	index driven.TextIndex
	ai    driven.AIService
}

// NewSearchService creates a new search service.
func NewSearchService(
	docs driven.DocumentStore,
	users driven.UserStore,
	index driven.TextIndex,
	ai driven.AIService,
) *SearchService {
	return &SearchService{
		docs:  docs,
		users: users,
		index: index,
		ai:    ai,
	}
}

// Text performs full-text keyword search over title and content, ranked by
// the store's native relevance score.
func (s *SearchService) Text(ctx context.Context, query string) ([]driving.ScoredDocument, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	hits, err := s.index.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	logger.Debug("text search", "query", query, "hits", len(hits))

	results := make([]driving.ScoredDocument, 0, len(hits))
	for _, hit := range hits {
		doc, err := s.docs.GetDocument(ctx, hit.DocID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Document deleted between index lookup and hydration.
				continue
			}
			return nil, fmt.Errorf("get document %s: %w", hit.DocID, err)
		}
		results = append(results, driving.ScoredDocument{
			DocumentView: s.withCreator(ctx, *doc),
			Score:        hit.Score,
		})
	}
	return results, nil
}

// Semantic embeds the query and ranks every document by cosine similarity,
// returning the top 20 with four-decimal scores. Documents without an
// embedding rank at the bottom with score 0.
func (s *SearchService) Semantic(ctx context.Context, query string) ([]driving.ScoredDocument, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	queryEmbedding, err := s.ai.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	docs, err := s.docs.ListDocuments(ctx, driven.DocumentFilter{})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	ranked := domain.RankBySimilarity(queryEmbedding, docs, searchLimit)
	logger.Debug("semantic search", "query", query, "candidates", len(docs), "returned", len(ranked))

	results := make([]driving.ScoredDocument, len(ranked))
	for i, r := range ranked {
		results[i] = driving.ScoredDocument{
			DocumentView: s.withCreator(ctx, r.Document),
			Score:        domain.RoundScore(r.Score),
		}
	}
	return results, nil
}

// withCreator joins a document with its creator's public details.
func (s *SearchService) withCreator(ctx context.Context, doc domain.Document) driving.DocumentView {
	view := driving.DocumentView{Document: doc}
	if s.users == nil {
		return view
	}
	creator, err := s.users.GetUser(ctx, doc.CreatedBy)
	if err != nil {
		return view
	}
	view.CreatorName = creator.Name
	view.CreatorRole = creator.Role
	return view
}
