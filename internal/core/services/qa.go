package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/teamhub/internal/core/domain"
	"github.com/custodia-labs/teamhub/internal/core/ports/driven"
	"github.com/custodia-labs/teamhub/internal/core/ports/driving"
	"github.com/custodia-labs/teamhub/internal/logger"
)

// Ensure QAService implements the interface.
var _ driving.QAService = (*QAService)(nil)

// qaContextSize is how many documents ground a corpus-wide answer.
const qaContextSize = 5

// QAService answers questions grounded on document context. Retrieval runs
// in one of two modes: corpus-wide (rank all documents against the embedded
// question, keep the top five) or single-document (the caller names the
// document; it is always the full context and its similarity score is
// computed only for reporting).
type QAService struct {
	docs driven.DocumentStore
	ai   driven.AIService
}

// NewQAService creates a new Q&A service.
func NewQAService(docs driven.DocumentStore, ai driven.AIService) *QAService {
	return &QAService{docs: docs, ai: ai}
}

// Ask runs retrieval and answer synthesis. An empty docID selects
// corpus-wide mode.
func (s *QAService) Ask(ctx context.Context, question, docID string) (*driving.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	if docID != "" {
		return s.askDocument(ctx, question, docID)
	}
	return s.askCorpus(ctx, question)
}

// askCorpus embeds the question, ranks the whole corpus, and grounds the
// answer on the top five documents.
func (s *QAService) askCorpus(ctx context.Context, question string) (*driving.Answer, error) {
	queryEmbedding, err := s.ai.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	docs, err := s.docs.ListDocuments(ctx, driven.DocumentFilter{})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no documents available for context", domain.ErrNotFound)
	}

	ranked := domain.RankBySimilarity(queryEmbedding, docs, qaContextSize)

	contextDocs := make([]domain.Document, len(ranked))
	sources := make([]driving.Source, len(ranked))
	for i, r := range ranked {
		contextDocs[i] = r.Document
		sources[i] = driving.Source{
			ID:    r.Document.ID,
			Title: r.Document.Title,
			Score: domain.RoundScore(r.Score),
		}
	}

	return s.synthesize(ctx, question, domain.BuildContext(contextDocs), sources)
}

// askDocument uses exactly one document as context. The similarity score is
// reported but never affects inclusion.
func (s *QAService) askDocument(ctx context.Context, question, docID string) (*driving.Answer, error) {
	doc, err := s.docs.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}

	queryEmbedding, err := s.ai.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	sources := []driving.Source{{
		ID:    doc.ID,
		Title: doc.Title,
		Score: domain.RoundScore(domain.Cosine(queryEmbedding, doc.Embedding)),
	}}

	return s.synthesize(ctx, question, domain.BuildContext([]domain.Document{*doc}), sources)
}

// synthesize makes the single synchronous generative call and assembles the
// response.
func (s *QAService) synthesize(
	ctx context.Context, question, docContext string, sources []driving.Source,
) (*driving.Answer, error) {
	answer, err := s.ai.Answer(ctx, question, docContext)
	if err != nil {
		return nil, fmt.Errorf("answer question: %w", err)
	}
	logger.Debug("question answered", "sources", len(sources), "context_bytes", len(docContext))

	return &driving.Answer{Text: answer, Sources: sources}, nil
}
